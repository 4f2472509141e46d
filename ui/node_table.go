package ui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"

	"overtls-manager/core"
	"overtls-manager/internal/overtls"
)

var nodeColumns = []string{"Remarks", "Server Host", "Server Port", "Tunnel Path"}

var nodeColumnWidths = []float32{220, 260, 110, 320}

// nodeCell returns the text of column col for node.
func nodeCell(node overtls.Config, col int) string {
	switch col {
	case 0:
		return node.Remarks
	case 1:
		if node.Client != nil {
			return node.Client.ServerHost
		}
	case 2:
		if node.Client != nil && node.Client.ServerPort != 0 {
			return strconv.Itoa(int(node.Client.ServerPort))
		}
	case 3:
		return node.TunnelPath.String()
	}
	return ""
}

// NodeTable shows the node list; selecting a row selects the node.
type NodeTable struct {
	table *widget.Table
	ac    *core.AppController
}

// NewNodeTable creates the table bound to the controller's node list.
func NewNodeTable(ac *core.AppController) *NodeTable {
	nt := &NodeTable{ac: ac}
	nt.table = widget.NewTableWithHeaders(
		func() (int, int) { return ac.Nodes.Len(), len(nodeColumns) },
		func() fyne.CanvasObject {
			l := widget.NewLabel("")
			l.Truncation = fyne.TextTruncateEllipsis
			return l
		},
		func(id widget.TableCellID, obj fyne.CanvasObject) {
			node, err := ac.Nodes.Get(id.Row)
			if err != nil {
				obj.(*widget.Label).SetText("")
				return
			}
			obj.(*widget.Label).SetText(nodeCell(node, id.Col))
		},
	)
	nt.table.ShowHeaderColumn = false
	nt.table.UpdateHeader = func(id widget.TableCellID, obj fyne.CanvasObject) {
		if id.Row < 0 && id.Col >= 0 && id.Col < len(nodeColumns) {
			obj.(*widget.Label).SetText(nodeColumns[id.Col])
		}
	}
	for i, w := range nodeColumnWidths {
		nt.table.SetColumnWidth(i, w)
	}
	nt.table.OnSelected = func(id widget.TableCellID) {
		if err := ac.Select(id.Row); err != nil {
			nt.table.UnselectAll()
		}
	}
	return nt
}

// Object returns the widget to embed.
func (nt *NodeTable) Object() fyne.CanvasObject {
	return nt.table
}

// Refresh redraws the rows and mirrors the controller's selection.
func (nt *NodeTable) Refresh() {
	if nt.ac.Selected == nil {
		nt.table.UnselectAll()
	}
	nt.table.Refresh()
}
