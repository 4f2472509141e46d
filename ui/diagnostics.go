package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"overtls-manager/core"
	"overtls-manager/core/services"
	"overtls-manager/internal/dialogs"
)

const publicIPTimeout = 10 * time.Second

// ShowPublicIPCheck probes the public address directly and, while a node
// runs, through the tunnel, then shows both results.
func ShowPublicIPCheck(ac *core.AppController) {
	window := ac.UIService.MainWindow
	wait := dialog.NewCustomWithoutButtons("Public IP", widget.NewLabel("Checking, please wait..."), window)
	wait.Show()

	tunnel := ac.TunnelEndpoint()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publicIPTimeout)
		defer cancel()
		report := ac.APIService.CheckPublicIP(ctx, tunnel)

		fyne.Do(func() {
			wait.Hide()
			text := formatPublicIPReport(report, ac.APIService.STUNServer)
			label := widget.NewLabel(text)
			var buttons []fyne.CanvasObject
			if report.Direct != "" {
				direct := report.Direct
				buttons = append(buttons, widget.NewButton("Copy direct IP", func() {
					ac.UIService.Application.Clipboard().SetContent(direct)
					dialogs.ShowAutoHideInfo(ac.UIService.Application, window, "Copied", "IP address copied to clipboard.", 0)
				}))
			}
			if report.Tunnel != "" {
				tunnelled := report.Tunnel
				buttons = append(buttons, widget.NewButton("Copy tunnel IP", func() {
					ac.UIService.Application.Clipboard().SetContent(tunnelled)
					dialogs.ShowAutoHideInfo(ac.UIService.Application, window, "Copied", "IP address copied to clipboard.", 0)
				}))
			}
			dialogs.ShowCustom(window, "Public IP", "Close", container.NewVBox(label, container.NewHBox(buttons...)))
		})
	}()
}

func formatPublicIPReport(r services.PublicIPReport, stunServer string) string {
	var b strings.Builder
	if r.DirectErr != nil {
		fmt.Fprintf(&b, "Direct: check failed (%v)\n", r.DirectErr)
	} else {
		fmt.Fprintf(&b, "Direct: %s\n(determined via [UDP]%s)\n", r.Direct, stunServer)
	}
	switch {
	case !r.TunnelChecked:
		b.WriteString("Tunnel: no node running")
	case r.TunnelErr != nil:
		fmt.Fprintf(&b, "Tunnel: check failed (%v)", r.TunnelErr)
	default:
		fmt.Fprintf(&b, "Tunnel: %s", r.Tunnel)
	}
	return b.String()
}
