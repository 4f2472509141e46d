package services

import (
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"

	"overtls-manager/internal/constants"
)

// trayMenuDebounce delays tray menu rebuilds so rapid state flips collapse
// into one update.
const trayMenuDebounce = 100 * time.Millisecond

// UIService owns the fyne application, the main window and the tray.
type UIService struct {
	Application fyne.App
	MainWindow  fyne.Window

	AppIcon     fyne.Resource
	IdleIcon    fyne.Resource
	RunningIcon fyne.Resource

	// BuildTrayMenu returns the current tray menu.
	BuildTrayMenu func() *fyne.Menu

	trayMu    sync.Mutex
	trayTimer *time.Timer
}

// NewUIService creates the fyne application with the given icons.
func NewUIService(appIconData, idleIconData, runningIconData []byte) *UIService {
	ui := &UIService{
		AppIcon:     fyne.NewStaticResource("appIcon", appIconData),
		IdleIcon:    fyne.NewStaticResource("trayIcon", idleIconData),
		RunningIcon: fyne.NewStaticResource("runningIcon", runningIconData),
	}
	log.Println("UIService: Initializing Fyne application...")
	ui.Application = app.NewWithID(constants.AppID)
	ui.Application.SetIcon(ui.AppIcon)
	return ui
}

// HasTray reports whether the driver supports a system tray.
func (ui *UIService) HasTray() bool {
	_, ok := ui.Application.(desktop.App)
	return ok
}

// SetRunning switches the tray icon and schedules a tray menu rebuild.
// Must be called on the GUI goroutine.
func (ui *UIService) SetRunning(running bool) {
	if desk, ok := ui.Application.(desktop.App); ok {
		if running {
			desk.SetSystemTrayIcon(ui.RunningIcon)
		} else {
			desk.SetSystemTrayIcon(ui.IdleIcon)
		}
	}
	ui.UpdateTrayMenu()
}

// UpdateTrayMenu rebuilds the tray menu after a short debounce.
func (ui *UIService) UpdateTrayMenu() {
	desk, ok := ui.Application.(desktop.App)
	if !ok || ui.BuildTrayMenu == nil {
		return
	}
	ui.trayMu.Lock()
	defer ui.trayMu.Unlock()
	if ui.trayTimer != nil {
		ui.trayTimer.Stop()
	}
	ui.trayTimer = time.AfterFunc(trayMenuDebounce, func() {
		fyne.Do(func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("UpdateTrayMenu: recovered from panic: %v", r)
				}
			}()
			desk.SetSystemTrayMenu(ui.BuildTrayMenu())
		})
	})
}

// StopTrayMenuUpdateTimer cancels a pending tray rebuild.
func (ui *UIService) StopTrayMenuUpdateTimer() {
	ui.trayMu.Lock()
	defer ui.trayMu.Unlock()
	if ui.trayTimer != nil {
		ui.trayTimer.Stop()
		ui.trayTimer = nil
	}
}

// ShowMainWindow restores and focuses the main window.
func (ui *UIService) ShowMainWindow() {
	if ui.MainWindow == nil {
		return
	}
	ui.MainWindow.Show()
	ui.MainWindow.RequestFocus()
}

// QuitApplication stops the fyne event loop.
func (ui *UIService) QuitApplication() {
	ui.StopTrayMenuUpdateTimer()
	if ui.Application != nil {
		ui.Application.Quit()
	}
}
