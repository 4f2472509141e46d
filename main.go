package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"overtls-manager/cli"
	"overtls-manager/core"
	"overtls-manager/core/services"
	"overtls-manager/internal/constants"
	"overtls-manager/internal/debuglog"
	"overtls-manager/ui"
)

//go:embed assets/app.png
var appIconData []byte

//go:embed assets/off.png
var idleIconData []byte

//go:embed assets/on.png
var runningIconData []byte

// instanceWait covers an elevated restart, where the previous copy is
// still shutting down when this one starts.
const instanceWait = 2 * time.Second

func main() {
	var opts cli.Options
	var configDir string
	var showVersion bool
	flag.BoolVar(&opts.List, "list", false, "list nodes")
	flag.IntVar(&opts.URL, "url", 0, "print the ssr:// link of node `N`")
	flag.BoolVar(&opts.Copy, "copy", false, "with -url, copy the link to the clipboard")
	flag.IntVar(&opts.Export, "export", 0, "write node `N` to the file given by -o")
	flag.StringVar(&opts.Output, "o", "", "output `file` for -export")
	flag.StringVar(&opts.Import, "import", "", "import a node from `file`")
	flag.BoolVar(&opts.Paste, "paste", false, "import a node from the clipboard")
	flag.IntVar(&opts.Run, "run", 0, "run node `N` until interrupted")
	flag.StringVar(&configDir, "config", "", "configuration `dir`")
	flag.BoolVar(&showVersion, "version", false, "print the version")
	flag.Usage = func() { cli.PrintHelp(flag.CommandLine.Output()) }
	flag.Parse()

	if showVersion {
		fmt.Printf("%s %s\n", constants.AppName, constants.AppVersion)
		return
	}

	if opts.Requested() {
		os.Exit(runHeadless(configDir, opts))
	}
	runGUI(configDir)
}

func runHeadless(configDir string, opts cli.Options) int {
	ac, err := core.NewAppController(configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer ac.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.New(ac, os.Stdout).Execute(ctx, opts); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func runGUI(configDir string) {
	ac, err := core.NewAppController(configDir)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	uiService := services.NewUIService(appIconData, idleIconData, runningIconData)
	ac.AttachUI(uiService)

	if core.WaitForOtherInstances(instanceWait) {
		debuglog.WarnLog("main: another instance is running, exiting")
		w := uiService.Application.NewWindow(constants.AppName)
		w.SetContent(container.NewVBox(
			widget.NewLabel(constants.AppName+" is already running.\nUse its tray icon to open it."),
			widget.NewButton("OK", uiService.Application.Quit),
		))
		w.ShowAndRun()
		ac.FileService.CloseLogFiles()
		return
	}

	window := uiService.Application.NewWindow(constants.AppName)
	uiService.MainWindow = window
	window.SetIcon(uiService.AppIcon)
	window.SetMaster()

	app := ui.NewApp(window, ac)
	window.SetContent(app.Content())
	size := ac.State.Window
	window.Resize(fyne.NewSize(float32(size.W), float32(size.H)))
	window.CenterOnScreen()

	window.SetCloseIntercept(func() {
		if uiService.HasTray() {
			if err := ac.SaveState(); err != nil {
				debuglog.ErrorLog("main: %v", err)
			}
			window.Hide()
			return
		}
		ac.GracefulExit()
	})

	if desk, ok := uiService.Application.(desktop.App); ok {
		uiService.Application.Lifecycle().SetOnStarted(func() {
			desk.SetSystemTrayIcon(uiService.IdleIcon)
			uiService.UpdateTrayMenu()
		})
	}

	ticker := time.NewTicker(constants.TickInterval)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			fyne.Do(ac.Tick)
		}
	}()

	window.ShowAndRun()
	debuglog.InfoLog("main: application shutting down")
	ac.Shutdown()
}
