package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"overtls-manager/core"
	"overtls-manager/internal/debuglog"
)

// LogView renders log records as severity-coloured lines.
type LogView struct {
	rich   *widget.RichText
	scroll *container.Scroll
}

// NewLogView creates an empty log view.
func NewLogView() *LogView {
	rich := widget.NewRichText()
	rich.Wrapping = fyne.TextWrapBreak
	return &LogView{rich: rich, scroll: container.NewVScroll(rich)}
}

// Object returns the widget to embed.
func (v *LogView) Object() fyne.CanvasObject {
	return v.scroll
}

// SetRecords replaces the shown lines and scrolls to the newest.
func (v *LogView) SetRecords(records []debuglog.Record) {
	segments := make([]widget.RichTextSegment, 0, len(records))
	for _, r := range records {
		segments = append(segments, &widget.TextSegment{
			Text: core.FormatRecord(r),
			Style: widget.RichTextStyle{
				ColorName: levelColor(r.Level),
				SizeName:  theme.SizeNameText,
				TextStyle: fyne.TextStyle{Monospace: true},
			},
		})
	}
	v.rich.Segments = segments
	v.rich.Refresh()
	v.scroll.ScrollToBottom()
}

func levelColor(level debuglog.Level) fyne.ThemeColorName {
	switch level {
	case debuglog.LevelError:
		return theme.ColorNameError
	case debuglog.LevelWarn:
		return theme.ColorNameWarning
	case debuglog.LevelInfo:
		return theme.ColorNameSuccess
	case debuglog.LevelVerbose:
		return theme.ColorNamePrimary
	case debuglog.LevelTrace:
		return theme.ColorNamePlaceHolder
	default:
		return theme.ColorNameForeground
	}
}
