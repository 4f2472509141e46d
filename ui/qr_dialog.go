package ui

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"overtls-manager/internal/debuglog"
	"overtls-manager/internal/dialogs"
	"overtls-manager/internal/qrcode"
	"overtls-manager/ui/components"
)

// ShowQRDialog shows url as a QR code with buttons to copy the link and
// save the image.
func ShowQRDialog(app fyne.App, window fyne.Window, title, url string) {
	img, err := qrcode.EncodeImage(url, qrcode.DefaultSize)
	if err != nil {
		dialogs.ShowError(window, "Show QR Code", err)
		return
	}
	qrImage := canvas.NewImageFromImage(img)
	qrImage.FillMode = canvas.ImageFillContain
	qrImage.SetMinSize(fyne.NewSize(qrcode.DefaultSize, qrcode.DefaultSize))

	link := widget.NewLabel(url)
	link.Wrapping = fyne.TextWrapBreak
	link.TextStyle = fyne.TextStyle{Monospace: true}

	copyButton := widget.NewButton("Copy link", func() {
		app.Clipboard().SetContent(url)
		dialogs.ShowAutoHideInfo(app, window, "Copied", "Link copied to clipboard.", 0)
	})
	saveButton := widget.NewButton("Save image...", func() {
		saveQRImage(window, title, url)
	})

	content := container.NewBorder(nil, link, nil, nil, qrImage)
	d := components.NewCustom(title, content, []fyne.CanvasObject{copyButton, saveButton}, "Close", window)
	d.Resize(fyne.NewSize(420, 520))
	d.Show()
}

func saveQRImage(window fyne.Window, title, url string) {
	save := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialogs.ShowError(window, "Save QR Code", err)
			return
		}
		if w == nil {
			return
		}
		path := w.URI().Path()
		w.Close()
		data, err := qrcode.Encode(url, qrcode.DefaultSize)
		if err == nil {
			err = os.WriteFile(path, data, 0o644)
		}
		if err != nil {
			dialogs.ShowError(window, "Save QR Code", fmt.Errorf("saveQRImage: %w", err))
			return
		}
		debuglog.InfoLog("saveQRImage: QR code written to %s", path)
	}, window)
	save.SetFileName(safeFileName(title) + ".png")
	save.Show()
}
