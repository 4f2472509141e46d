// Package components holds small reusable fyne building blocks.
package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// NewCustom builds a dialog with content in the centre and buttons along the
// bottom edge. With a non-empty dismissText a close button is added on the
// left and Escape closes the dialog too.
func NewCustom(title string, content fyne.CanvasObject, buttons []fyne.CanvasObject, dismissText string, parent fyne.Window) dialog.Dialog {
	var d dialog.Dialog

	row := container.NewHBox(buttons...)
	var bottom fyne.CanvasObject = row
	if dismissText != "" {
		closeButton := widget.NewButton(dismissText, func() {
			if d != nil {
				d.Hide()
			}
		})
		bottom = container.NewBorder(nil, nil, closeButton, row, nil)
	}

	d = dialog.NewCustomWithoutButtons(title, container.NewBorder(nil, bottom, nil, nil, content), parent)

	if dismissText != "" {
		canvas := parent.Canvas()
		previous := canvas.OnTypedKey()
		canvas.SetOnTypedKey(func(key *fyne.KeyEvent) {
			if key.Name == fyne.KeyEscape {
				d.Hide()
				return
			}
			if previous != nil {
				previous(key)
			}
		})
		d.SetOnClosed(func() {
			canvas.SetOnTypedKey(previous)
		})
	}
	return d
}
