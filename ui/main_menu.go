package ui

import (
	"fmt"
	"net/url"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"overtls-manager/internal/constants"
	"overtls-manager/internal/dialogs"
	"overtls-manager/internal/overtls"
	"overtls-manager/internal/qrcode"
)

const projectURL = "https://github.com/ShadowsocksR-Live/overtls"

func shortcut(key fyne.KeyName) *desktop.CustomShortcut {
	return &desktop.CustomShortcut{KeyName: key, Modifier: fyne.KeyModifierShortcutDefault}
}

// buildMainMenu creates the File, Edit and Help menus and registers their
// keyboard shortcuts on the window canvas.
func (a *App) buildMainMenu() *fyne.MainMenu {
	scan := fyne.NewMenuItem("Scan QR Code from Screen", a.onScanScreen)
	scan.Shortcut = shortcut(fyne.KeyR)
	newNode := fyne.NewMenuItem("New", a.onNewNode)
	newNode.Shortcut = shortcut(fyne.KeyN)
	quit := fyne.NewMenuItem("Quit", a.core.GracefulExit)
	quit.Shortcut = shortcut(fyne.KeyQ)
	quit.IsQuit = true

	copyURL := fyne.NewMenuItem("Copy", a.onCopy)
	copyURL.Shortcut = shortcut(fyne.KeyC)
	paste := fyne.NewMenuItem("Paste", a.onPaste)
	paste.Shortcut = shortcut(fyne.KeyV)

	file := fyne.NewMenu("File",
		fyne.NewMenuItem("Settings", a.onSettings),
		fyne.NewMenuItemSeparator(),
		scan,
		fyne.NewMenuItem("Import Node from File", a.onImportFile),
		fyne.NewMenuItem("Export Node to File", a.onExportFile),
		fyne.NewMenuItemSeparator(),
		newNode,
		fyne.NewMenuItem("Run", a.core.Run),
		fyne.NewMenuItem("Stop", a.core.Stop),
		fyne.NewMenuItemSeparator(),
		quit,
	)
	edit := fyne.NewMenu("Edit",
		fyne.NewMenuItem("View Details", a.onViewDetails),
		fyne.NewMenuItem("Show QR Code", a.onShowQR),
		fyne.NewMenuItem("Delete", a.onDelete),
		fyne.NewMenuItemSeparator(),
		copyURL,
		paste,
	)
	help := fyne.NewMenu("Help",
		fyne.NewMenuItem("Check Public IP", func() { ShowPublicIPCheck(a.core) }),
		fyne.NewMenuItem("Open Config Folder", a.onOpenConfigFolder),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("About", a.onAbout),
	)

	canvas := a.window.Canvas()
	for _, item := range []*fyne.MenuItem{scan, newNode, quit, copyURL, paste} {
		action := item.Action
		canvas.AddShortcut(item.Shortcut, func(fyne.Shortcut) { action() })
	}
	return fyne.NewMainMenu(file, edit, help)
}

func (a *App) onSettings() {
	a.core.PendingSettings.Add(ShowSettingsDialog(a.window, a.core.State.SystemSettings))
}

func (a *App) onScanScreen() {
	go func() {
		texts, scanErr := qrcode.ScanScreen()
		fyne.Do(func() {
			n, err := a.core.ImportFromScreen(func() ([]string, error) { return texts, scanErr })
			if err != nil {
				dialogs.ShowError(a.window, "Scan QR Code", err)
				return
			}
			dialogs.ShowAutoHideInfo(a.core.UIService.Application, a.window, "Scan QR Code", pluralNodes(n)+" imported.", 0)
		})
	}()
}

func (a *App) onImportFile() {
	showOpenFile(a.window, a.core.State.CurrentSelectionPath, func(path string) {
		if _, err := a.core.ImportFile(path); err != nil {
			dialogs.ShowError(a.window, "Import Node", err)
		}
	})
}

func (a *App) onExportFile() {
	_, node, err := a.core.SelectedNode()
	if err != nil {
		dialogs.ShowError(a.window, "Export Node", err)
		return
	}
	showSaveFile(a.window, a.core.State.CurrentSelectionPath, safeFileName(node.Title())+".json", func(path string) {
		if err := a.core.ExportSelected(path); err != nil {
			dialogs.ShowError(a.window, "Export Node", err)
		}
	})
}

func (a *App) onNewNode() {
	node := overtls.Config{
		TunnelPath: overtls.Single("/"),
		Client:     &overtls.ClientConfig{ServerPort: 443},
	}
	a.core.Pending.AddNew(ShowNodeDialog(a.window, "New Node", node))
}

func (a *App) onViewDetails() {
	i, node, err := a.core.SelectedNode()
	if err != nil {
		dialogs.ShowError(a.window, "View Details", err)
		return
	}
	a.core.Pending.AddEdit(i, ShowNodeDialog(a.window, "Node Details", node))
}

func (a *App) onShowQR() {
	_, node, err := a.core.SelectedNode()
	if err != nil {
		dialogs.ShowError(a.window, "Show QR Code", err)
		return
	}
	link, err := a.core.SelectedURL()
	if err != nil {
		dialogs.ShowError(a.window, "Show QR Code", err)
		return
	}
	ShowQRDialog(a.core.UIService.Application, a.window, node.Title(), link)
}

func (a *App) onDelete() {
	_, node, err := a.core.SelectedNode()
	if err != nil {
		dialogs.ShowError(a.window, "Delete", err)
		return
	}
	dialogs.ShowConfirm(a.window, "Delete", "Delete node '"+node.Title()+"'?", "Delete", "Cancel", func() {
		if err := a.core.DeleteSelected(); err != nil {
			dialogs.ShowError(a.window, "Delete", err)
		}
	})
}

func (a *App) onCopy() {
	link, err := a.core.SelectedURL()
	if err != nil {
		dialogs.ShowError(a.window, "Copy", err)
		return
	}
	a.core.UIService.Application.Clipboard().SetContent(link)
	dialogs.ShowAutoHideInfo(a.core.UIService.Application, a.window, "Copied", "Node link copied to clipboard.", 0)
}

func (a *App) onPaste() {
	text := a.core.UIService.Application.Clipboard().Content()
	if _, err := a.core.Paste(text); err != nil {
		dialogs.ShowError(a.window, "Paste", err)
	}
}

func (a *App) onOpenConfigFolder() {
	if err := a.core.OpenConfigFolder(); err != nil {
		dialogs.ShowError(a.window, "Open Config Folder", err)
	}
}

func (a *App) onAbout() {
	project, _ := url.Parse(projectURL)
	content := container.NewVBox(
		widget.NewLabelWithStyle(constants.AppName, fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle("Version "+constants.AppVersion, fyne.TextAlignCenter, fyne.TextStyle{}),
		widget.NewLabel("Config folder: "+a.core.FileService.ConfigDir),
	)
	if project != nil {
		content.Add(container.NewCenter(widget.NewHyperlink("OverTLS project", project)))
	}
	dialogs.ShowCustom(a.window, "About", "Close", content)
}

func pluralNodes(n int) string {
	if n == 1 {
		return "1 node"
	}
	return fmt.Sprintf("%d nodes", n)
}
