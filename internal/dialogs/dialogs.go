// Package dialogs wraps the fyne dialogs used across the manager. Every
// helper may be called from any goroutine; the dialog itself is created on
// the GUI goroutine.
package dialogs

import (
	"errors"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"overtls-manager/internal/debuglog"
)

// DefaultAutoHide is how long ShowAutoHideInfo keeps its dialog open.
const DefaultAutoHide = 2 * time.Second

// ShowError logs err and shows it in an error dialog titled title.
func ShowError(window fyne.Window, title string, err error) {
	if err == nil {
		return
	}
	debuglog.ErrorLog("%s: %v", title, err)
	if window == nil {
		return
	}
	fyne.Do(func() {
		d := dialog.NewError(err, window)
		d.Show()
	})
}

// ShowErrorText shows an error dialog with a plain message.
func ShowErrorText(window fyne.Window, title, message string) {
	ShowError(window, title, errors.New(message))
}

// ShowInfo shows an information dialog.
func ShowInfo(window fyne.Window, title, message string) {
	if window == nil {
		return
	}
	fyne.Do(func() {
		dialog.ShowInformation(title, message, window)
	})
}

// ShowCustom shows content in a dialog with a single dismiss button.
func ShowCustom(window fyne.Window, title, dismiss string, content fyne.CanvasObject) {
	if window == nil {
		return
	}
	fyne.Do(func() {
		dialog.ShowCustom(title, dismiss, content, window)
	})
}

// ShowConfirm asks a yes/no question with custom button labels. onConfirm
// runs only when the user confirms.
func ShowConfirm(window fyne.Window, title, message, confirm, dismiss string, onConfirm func()) {
	if window == nil {
		return
	}
	fyne.Do(func() {
		d := dialog.NewConfirm(title, message, func(ok bool) {
			if ok && onConfirm != nil {
				onConfirm()
			}
		}, window)
		if confirm != "" {
			d.SetConfirmText(confirm)
		}
		if dismiss != "" {
			d.SetDismissText(dismiss)
		}
		d.Show()
	})
}

// ShowAutoHideInfo sends a desktop notification and shows a dialog that
// closes itself after d (DefaultAutoHide when zero).
func ShowAutoHideInfo(app fyne.App, window fyne.Window, title, message string, d time.Duration) {
	if d <= 0 {
		d = DefaultAutoHide
	}
	if app != nil {
		app.SendNotification(&fyne.Notification{Title: title, Content: message})
	}
	if window == nil {
		return
	}
	fyne.Do(func() {
		dlg := dialog.NewCustomWithoutButtons(title, widget.NewLabel(message), window)
		dlg.Show()
		time.AfterFunc(d, func() {
			fyne.Do(dlg.Hide)
		})
	})
}

// ShowCopyableText shows read-only text with a button copying it to the
// clipboard.
func ShowCopyableText(app fyne.App, window fyne.Window, title, text string) {
	if window == nil {
		return
	}
	fyne.Do(func() {
		entry := widget.NewMultiLineEntry()
		entry.SetText(text)
		entry.Wrapping = fyne.TextWrapBreak
		entry.Disable()
		copyBtn := widget.NewButton("Copy", func() {
			if app != nil {
				app.Clipboard().SetContent(text)
				debuglog.DebugLog("ShowCopyableText: %d bytes copied", len(text))
			}
		})
		content := container.NewBorder(nil, copyBtn, nil, nil, entry)
		d := dialog.NewCustom(title, "Close", content, window)
		d.Resize(fyne.NewSize(480, 240))
		d.Show()
	})
}
