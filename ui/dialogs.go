package ui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"overtls-manager/internal/debuglog"
	"overtls-manager/internal/dialogs"
)

var nodeFileExtensions = []string{".json", ".yaml", ".yml", ".txt", ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// showOpenFile asks for a file to import, starting in dir when it exists.
func showOpenFile(window fyne.Window, dir string, onPicked func(path string)) {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			dialogs.ShowError(window, "Import Node", err)
			return
		}
		if r == nil {
			return
		}
		path := r.URI().Path()
		r.Close()
		onPicked(path)
	}, window)
	d.SetFilter(storage.NewExtensionFileFilter(nodeFileExtensions))
	setDialogLocation(d, dir)
	d.Show()
}

// showSaveFile asks where to export, proposing name inside dir.
func showSaveFile(window fyne.Window, dir, name string, onPicked func(path string)) {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialogs.ShowError(window, "Export Node", err)
			return
		}
		if w == nil {
			return
		}
		path := w.URI().Path()
		w.Close()
		onPicked(path)
	}, window)
	d.SetFileName(name)
	setDialogLocation(d, dir)
	d.Show()
}

func setDialogLocation(d *dialog.FileDialog, dir string) {
	if dir == "" {
		return
	}
	lister, err := storage.ListerForURI(storage.NewFileURI(dir))
	if err != nil {
		debuglog.DebugLog("setDialogLocation: %s not usable: %v", dir, err)
		return
	}
	d.SetLocation(lister)
}

// safeFileName turns a node title into a file name.
func safeFileName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		return "node"
	}
	return name
}
