package ui

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"overtls-manager/core"
	"overtls-manager/internal/debuglog"
	"overtls-manager/internal/platform"
)

// App is the main window content: the error banner, the node table, the
// log view and the status line.
type App struct {
	window fyne.Window
	core   *core.AppController

	table   *NodeTable
	logView *LogView
	status  *widget.Label
	banner  *ErrorBanner
	content fyne.CanvasObject
}

// NewApp builds the main window content and connects it to the controller.
func NewApp(window fyne.Window, controller *core.AppController) *App {
	a := &App{
		window:  window,
		core:    controller,
		table:   NewNodeTable(controller),
		logView: NewLogView(),
		status:  widget.NewLabel(""),
		banner:  NewErrorBanner("Restart elevated", controller.RestartElevated),
	}

	split := container.NewVSplit(a.table.Object(), a.logView.Object())
	split.Offset = 0.6
	a.content = container.NewBorder(a.banner.GetContainer(), a.status, nil, nil, split)

	controller.RefreshNodesFunc = func() {
		a.table.Refresh()
		a.updateStatus(controller.Runner.Running())
	}
	controller.RefreshLogFunc = func() { a.logView.SetRecords(controller.Logs.Lines()) }
	controller.UpdateStatusFunc = a.updateStatus
	controller.SettingsAppliedFunc = a.updateBanner

	window.SetMainMenu(a.buildMainMenu())
	window.SetOnDropped(a.onDropped)

	if controller.Selected != nil {
		a.table.table.Select(widget.TableCellID{Row: *controller.Selected, Col: 0})
	}
	a.updateStatus(false)
	a.updateBanner()
	return a
}

// Content returns the root object of the main window.
func (a *App) Content() fyne.CanvasObject {
	return a.content
}

func (a *App) updateStatus(running bool) {
	s := a.core.Runner.Current()
	switch {
	case running && s != nil:
		text := fmt.Sprintf("Running: %s since %s", s.Title, s.StartedAt.Format(time.TimeOnly))
		if s.Intercepting {
			text += " (capturing system traffic)"
		}
		a.status.SetText(text)
	default:
		a.status.SetText(fmt.Sprintf("Stopped. %d nodes.", a.core.Nodes.Len()))
	}
}

func (a *App) updateBanner() {
	if a.core.State.SystemSettings.InterceptionEnabled() && !platform.IsElevated() {
		a.banner.SetMessage("Traffic capture is enabled but the manager is not running with administrator rights.")
		return
	}
	a.banner.SetMessage("")
}

func (a *App) onDropped(_ fyne.Position, uris []fyne.URI) {
	paths := make([]string, 0, len(uris))
	for _, u := range uris {
		if u.Scheme() == "file" {
			paths = append(paths, u.Path())
		}
	}
	debuglog.DebugLog("onDropped: %d files", len(paths))
	a.core.ImportFiles(paths)
}
