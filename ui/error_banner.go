package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// ErrorBanner is a red strip above the node table with an optional action
// button, hidden until SetMessage is called.
type ErrorBanner struct {
	container *fyne.Container
	text      *widget.Label
	action    *widget.Button
}

// NewErrorBanner creates a hidden banner. actionLabel and onAction may be
// empty/nil for a banner without a button.
func NewErrorBanner(actionLabel string, onAction func()) *ErrorBanner {
	text := widget.NewLabel("")
	text.Wrapping = fyne.TextWrapWord

	rect := canvas.NewRectangle(color.NRGBA{R: 255, G: 200, B: 200, A: 255})
	rect.SetMinSize(fyne.NewSize(0, 40))

	eb := &ErrorBanner{text: text}
	var right fyne.CanvasObject
	if onAction != nil {
		eb.action = widget.NewButton(actionLabel, onAction)
		right = eb.action
	}
	eb.container = container.NewStack(rect, container.NewPadded(container.NewBorder(nil, nil, nil, right, text)))
	eb.container.Hide()
	return eb
}

// GetContainer returns the container for embedding in UI
func (eb *ErrorBanner) GetContainer() *fyne.Container {
	return eb.container
}

// SetMessage shows the banner with message, or hides it when message is empty.
func (eb *ErrorBanner) SetMessage(message string) {
	if message == "" {
		eb.container.Hide()
		return
	}
	eb.text.SetText(message)
	eb.container.Show()
	eb.container.Refresh()
}

// IsVisible returns whether the banner is visible
func (eb *ErrorBanner) IsVisible() bool {
	return eb.container.Visible()
}

// Message returns the text shown.
func (eb *ErrorBanner) Message() string {
	return eb.text.Text
}
