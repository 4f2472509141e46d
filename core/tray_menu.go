package core

import (
	"runtime"

	"fyne.io/fyne/v2"

	"overtls-manager/internal/constants"
	"overtls-manager/internal/debuglog"
)

// TrayEvent is a tray menu click, queued for the next Tick.
type TrayEvent int

const (
	TrayShow TrayEvent = iota
	TrayRun
	TrayStop
	TrayQuit
)

func (e TrayEvent) String() string {
	switch e {
	case TrayShow:
		return "show"
	case TrayRun:
		return "run"
	case TrayStop:
		return "stop"
	case TrayQuit:
		return "quit"
	default:
		return "unknown"
	}
}

const trayEventBuffer = 16

// PostTrayEvent queues ev without blocking. Events beyond the buffer are
// dropped.
func (ac *AppController) PostTrayEvent(ev TrayEvent) {
	select {
	case ac.trayEvents <- ev:
	default:
		debuglog.WarnLog("PostTrayEvent: queue full, '%s' dropped", ev)
	}
}

// CreateTrayMenu builds the tray menu for the current running state.
func (ac *AppController) CreateTrayMenu() *fyne.Menu {
	var items []*fyne.MenuItem

	// macOS: separator at top to fix menu positioning
	if runtime.GOOS == "darwin" {
		items = append(items, fyne.NewMenuItemSeparator())
	}

	running := ac.Runner.Running()
	run := fyne.NewMenuItem("Run", func() { ac.PostTrayEvent(TrayRun) })
	run.Disabled = running || ac.Selected == nil
	stop := fyne.NewMenuItem("Stop", func() { ac.PostTrayEvent(TrayStop) })
	stop.Disabled = !running

	items = append(items,
		fyne.NewMenuItem("Show main window", func() { ac.PostTrayEvent(TrayShow) }),
		fyne.NewMenuItemSeparator(),
		run,
		stop,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { ac.PostTrayEvent(TrayQuit) }),
	)
	return fyne.NewMenu(constants.AppName, items...)
}

// drainTrayEvents handles every queued tray event.
func (ac *AppController) drainTrayEvents() {
	for {
		select {
		case ev := <-ac.trayEvents:
			debuglog.DebugLog("drainTrayEvents: %s", ev)
			switch ev {
			case TrayShow:
				if ac.UIService != nil {
					ac.UIService.ShowMainWindow()
				}
			case TrayRun:
				ac.Run()
			case TrayStop:
				ac.Stop()
			case TrayQuit:
				ac.GracefulExit()
				return
			}
		default:
			return
		}
	}
}
