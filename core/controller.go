package core

import (
	"errors"
	"fmt"
	"log"
	"net"
	"path/filepath"
	"strconv"
	"sync"

	"fyne.io/fyne/v2"

	"overtls-manager/api"
	"overtls-manager/core/services"
	"overtls-manager/internal/constants"
	"overtls-manager/internal/debuglog"
	"overtls-manager/internal/dialogs"
	"overtls-manager/internal/overtls"
	"overtls-manager/internal/platform"
)

// AppController - the main structure encapsulating application state and logic.
// Apart from Run's worker and the session goroutine, every method runs on
// the GUI goroutine.
type AppController struct {
	// --- Services ---
	UIService    *services.UIService
	FileService  *services.FileService
	StateService *services.StateService
	SecretStore  *services.SecretStore
	APIService   *services.APIService

	// --- Application state ---
	State    AppState
	Nodes    *NodeList
	Selected *int

	// --- Session and dialog results ---
	Runner          *SessionRunner
	Pending         PendingResults
	PendingSettings PendingSettings

	// --- Logging ---
	Logger    *debuglog.Logger
	Forwarder *debuglog.Forwarder
	Logs      *LogBuffer

	// --- Callbacks for UI logic ---
	RefreshNodesFunc    func()
	RefreshLogFunc      func()
	UpdateStatusFunc    func(running bool)
	SettingsAppliedFunc func()

	trayEvents   chan TrayEvent
	lastRunning  bool
	shutdownOnce sync.Once
}

// NewAppController prepares the directories under configDir (the user
// config dir when empty), opens the log file, loads the saved state and
// installs the logger. No window is created.
func NewAppController(configDir string) (*AppController, error) {
	fs, err := services.NewFileService(configDir)
	if err != nil {
		return nil, fmt.Errorf("NewAppController: %w", err)
	}
	if err := fs.OpenLogFiles(); err != nil {
		log.Printf("NewAppController: logging to stderr: %v", err)
	}

	ac := &AppController{
		FileService:  fs,
		StateService: services.NewStateService(fs.StatePath),
		SecretStore:  services.NewSecretStore(constants.KeyringName),
		APIService:   services.NewAPIService(),
		Logs:         NewLogBuffer(constants.MaxLogLines),
		trayEvents:   make(chan TrayEvent, trayEventBuffer),
	}
	ac.State = LoadAppState(ac.StateService, ac.SecretStore)
	ac.Logger, ac.Forwarder = SetupLogger(ac.State.SystemSettings, nil)
	ac.Nodes = NewNodeList(ac.State.RemoteNodes)
	ac.Selected = ac.State.CurrentNodeIndex
	ac.Runner = NewSessionRunner()
	ac.Runner.OnExit = ac.onSessionExit

	debuglog.InfoLog("NewAppController: %s %s, %d nodes loaded", constants.AppName, constants.AppVersion, ac.Nodes.Len())
	return ac, nil
}

// AttachUI connects the GUI services. Without it the controller runs
// headless and errors are only logged.
func (ac *AppController) AttachUI(ui *services.UIService) {
	ac.UIService = ui
	ui.BuildTrayMenu = ac.CreateTrayMenu
}

func (ac *AppController) window() fyne.Window {
	if ac.UIService == nil {
		return nil
	}
	return ac.UIService.MainWindow
}

func (ac *AppController) app() fyne.App {
	if ac.UIService == nil {
		return nil
	}
	return ac.UIService.Application
}

// runOnUI runs f on the GUI goroutine, or directly when headless.
func (ac *AppController) runOnUI(f func()) {
	if ac.UIService == nil {
		f()
		return
	}
	fyne.Do(f)
}

func (ac *AppController) refreshNodes() {
	if ac.RefreshNodesFunc != nil {
		ac.RefreshNodesFunc()
	}
	if ac.UIService != nil {
		ac.UIService.UpdateTrayMenu()
	}
}

// --- Selection and node list ---

// Select makes node i the current node.
func (ac *AppController) Select(i int) error {
	if i < 0 || i >= ac.Nodes.Len() {
		return fmt.Errorf("Select: %w: index %d of %d", ErrNodeNotFound, i, ac.Nodes.Len())
	}
	ac.Selected = &i
	if ac.UIService != nil {
		ac.UIService.UpdateTrayMenu()
	}
	return nil
}

// ClearSelection leaves no node selected.
func (ac *AppController) ClearSelection() {
	ac.Selected = nil
	if ac.UIService != nil {
		ac.UIService.UpdateTrayMenu()
	}
}

// SelectedNode returns the index and a copy of the current node.
func (ac *AppController) SelectedNode() (int, overtls.Config, error) {
	if ac.Selected == nil {
		return 0, overtls.Config{}, ErrNoSelection
	}
	i := *ac.Selected
	node, err := ac.Nodes.Get(i)
	if err != nil {
		ac.Selected = nil
		return 0, overtls.Config{}, err
	}
	return i, node, nil
}

// AddNode appends node and returns its index.
func (ac *AppController) AddNode(node overtls.Config) int {
	i := ac.Nodes.Add(node)
	debuglog.InfoLog("AddNode: node '%s' added at %d", node.Title(), i)
	ac.refreshNodes()
	return i
}

// DeleteSelected removes the current node. Nothing is selected afterwards.
func (ac *AppController) DeleteSelected() error {
	i, node, err := ac.SelectedNode()
	if err != nil {
		return fmt.Errorf("DeleteSelected: %w", err)
	}
	if err := ac.Nodes.Remove(i); err != nil {
		return fmt.Errorf("DeleteSelected: %w", err)
	}
	ac.Selected = nil
	debuglog.InfoLog("DeleteSelected: node '%s' removed", node.Title())
	ac.refreshNodes()
	return nil
}

// SelectedURL returns the ssr:// URL of the current node.
func (ac *AppController) SelectedURL() (string, error) {
	_, node, err := ac.SelectedNode()
	if err != nil {
		return "", fmt.Errorf("SelectedURL: %w", err)
	}
	url, err := overtls.GenerateSSRURL(node)
	if err != nil {
		return "", fmt.Errorf("SelectedURL: %w", err)
	}
	return url, nil
}

// --- Import and export ---

// Paste adds the node held in text (JSON or URL).
func (ac *AppController) Paste(text string) (int, error) {
	node, err := ImportText(text)
	if err != nil {
		return 0, err
	}
	return ac.AddNode(node), nil
}

// ImportFiles adds a node for every path that holds one and returns how
// many were added. Failures are logged as warnings.
func (ac *AppController) ImportFiles(paths []string) int {
	nodes, errs := ImportFiles(paths)
	for _, node := range nodes {
		ac.Nodes.Add(node)
	}
	if len(paths) > 0 {
		ac.State.CurrentSelectionPath = filepath.Dir(paths[len(paths)-1])
	}
	debuglog.InfoLog("ImportFiles: %d imported, %d failed", len(nodes), len(errs))
	if len(nodes) > 0 {
		ac.refreshNodes()
	}
	return len(nodes)
}

// ImportFile adds the node held in path.
func (ac *AppController) ImportFile(path string) (int, error) {
	node, err := ImportFile(path)
	if err != nil {
		return 0, err
	}
	ac.State.CurrentSelectionPath = filepath.Dir(path)
	return ac.AddNode(node), nil
}

// ImportFromScreen adds every node found in QR codes on screen.
func (ac *AppController) ImportFromScreen(scan ScanFunc) (int, error) {
	nodes, err := ImportFromScreen(scan)
	if err != nil {
		return 0, err
	}
	for _, node := range nodes {
		ac.Nodes.Add(node)
	}
	ac.refreshNodes()
	return len(nodes), nil
}

// ExportSelected writes the current node to path.
func (ac *AppController) ExportSelected(path string) error {
	_, node, err := ac.SelectedNode()
	if err != nil {
		return fmt.Errorf("ExportSelected: %w", err)
	}
	if err := overtls.WriteConfigFile(path, node); err != nil {
		return fmt.Errorf("ExportSelected: %w", err)
	}
	ac.State.CurrentSelectionPath = filepath.Dir(path)
	debuglog.InfoLog("ExportSelected: node '%s' written to %s", node.Title(), path)
	return nil
}

// --- Session ---

// Overridden in tests.
var showInfo = dialogs.ShowInfo

// RunNode starts node i and returns once the session is launched.
func (ac *AppController) RunNode(i int) error {
	node, err := ac.Nodes.Get(i)
	if err != nil {
		return fmt.Errorf("RunNode: %w", err)
	}
	return ac.Runner.Start(node, ac.State.SystemSettings.Clone())
}

// Run starts the current node without blocking the GUI; resolving the
// server may take a while. The outcome is reported on the GUI goroutine.
func (ac *AppController) Run() {
	_, node, err := ac.SelectedNode()
	if err != nil {
		dialogs.ShowError(ac.window(), "Run", err)
		return
	}
	settings := ac.State.SystemSettings.Clone()
	go func() {
		err := ac.Runner.Start(node, settings)
		ac.runOnUI(func() { ac.handleStartResult(node, err) })
	}()
}

func (ac *AppController) handleStartResult(node overtls.Config, err error) {
	switch {
	case err == nil:
		debuglog.DebugLog("Run: node '%s' launched", node.Title())
	case errors.Is(err, ErrElevationRequired):
		debuglog.WarnLog("Run: %v", err)
		dialogs.ShowConfirm(ac.window(), "Administrator rights required",
			"Capturing system traffic needs administrator rights.\nRestart the manager elevated?",
			"Restart", "Cancel", ac.RestartElevated)
	case errors.Is(err, ErrAlreadyRunning):
		showInfo(ac.window(), "Run", "A node is already running. Stop it first.")
	case errors.Is(err, ErrStartCancelled):
		debuglog.DebugLog("Run: %v", err)
	default:
		dialogs.ShowError(ac.window(), fmt.Sprintf("Run '%s'", node.Title()), err)
	}
}

// Stop ends the running session.
func (ac *AppController) Stop() {
	err := ac.Runner.Stop()
	switch {
	case err == nil:
	case errors.Is(err, ErrNoSession):
		showInfo(ac.window(), "Stop", "No running node.")
	default:
		dialogs.ShowError(ac.window(), "Stop", err)
	}
	ac.refreshRunState()
}

func (ac *AppController) onSessionExit(s *Session) {
	if err := s.Err(); err != nil {
		dialogs.ShowError(ac.window(), fmt.Sprintf("Node '%s' stopped", s.Title), err)
	}
}

func (ac *AppController) refreshRunState() {
	running := ac.Runner.Running()
	if running == ac.lastRunning {
		return
	}
	ac.lastRunning = running
	if ac.UIService != nil {
		ac.UIService.SetRunning(running)
	}
	if ac.UpdateStatusFunc != nil {
		ac.UpdateStatusFunc(running)
	}
}

// TunnelEndpoint returns the local SOCKS5 listener of the running session,
// or nil when nothing runs.
func (ac *AppController) TunnelEndpoint() *api.ProxyEndpoint {
	if !ac.Runner.Running() {
		return nil
	}
	s := ac.State.SystemSettings
	return &api.ProxyEndpoint{
		Addr:     net.JoinHostPort(s.ListenHost, strconv.Itoa(int(s.ListenPort))),
		User:     s.ListenUser,
		Password: s.ListenPassword,
	}
}

// --- Settings ---

// ApplySettings replaces the system settings. A running session keeps the
// settings it was started with.
func (ac *AppController) ApplySettings(s SystemSettings) {
	s.Normalize()
	ac.State.SystemSettings = s
	ApplyLogLevels(ac.Logger, s)
	debuglog.InfoLog("ApplySettings: listen %s:%d, interception %v", s.ListenHost, s.ListenPort, s.InterceptionEnabled())
	if ac.SettingsAppliedFunc != nil {
		ac.SettingsAppliedFunc()
	}
	if ac.Runner.Running() {
		dialogs.ShowAutoHideInfo(ac.app(), ac.window(), "Settings", "New settings apply on the next run.", 0)
	}
}

// --- Reconciliation ---

// Tick applies finished dialog results, moves queued log records into the
// log view and handles tray clicks. Called periodically on the GUI goroutine.
func (ac *AppController) Tick() {
	if n := ac.Pending.Drain(ac.Nodes); n > 0 {
		debuglog.DebugLog("Tick: %d node results applied", n)
		ac.refreshNodes()
	}
	if s, ok := ac.PendingSettings.Drain(); ok {
		ac.ApplySettings(*s)
	}
	if ac.Forwarder != nil {
		if records := ac.Forwarder.Drain(); len(records) > 0 {
			ac.Logs.Append(records...)
			if ac.RefreshLogFunc != nil {
				ac.RefreshLogFunc()
			}
		}
	}
	ac.drainTrayEvents()
	ac.refreshRunState()
}

// --- Persistence and exit ---

// SaveState writes the node list, selection, window size and settings.
func (ac *AppController) SaveState() error {
	ac.State.RemoteNodes = ac.Nodes.Snapshot()
	ac.State.CurrentNodeIndex = nil
	if ac.Selected != nil {
		i := *ac.Selected
		ac.State.CurrentNodeIndex = &i
	}
	if w := ac.window(); w != nil {
		size := w.Canvas().Size()
		if int(size.Width) >= constants.MinWindowW && int(size.Height) >= constants.MinWindowH {
			ac.State.Window.W = int(size.Width)
			ac.State.Window.H = int(size.Height)
		}
	}
	if err := SaveAppState(ac.StateService, ac.SecretStore, ac.State); err != nil {
		return fmt.Errorf("SaveState: %w", err)
	}
	debuglog.DebugLog("SaveState: state written to %s", ac.StateService.Path())
	return nil
}

// Shutdown saves the state, then stops the running session. A stop
// timeout is only logged. Later calls do nothing.
func (ac *AppController) Shutdown() {
	ac.shutdownOnce.Do(func() {
		if err := ac.SaveState(); err != nil {
			debuglog.ErrorLog("Shutdown: %v", err)
		}
		if ac.Runner.Current() != nil {
			if err := ac.Runner.Stop(); err != nil && !errors.Is(err, ErrNoSession) {
				debuglog.WarnLog("Shutdown: %v", err)
			}
		}
		debuglog.InfoLog("Shutdown: done")
		ac.FileService.CloseLogFiles()
	})
}

// GracefulExit shuts down and quits the GUI.
func (ac *AppController) GracefulExit() {
	ac.Shutdown()
	if ac.UIService != nil {
		ac.UIService.QuitApplication()
	}
}

// RestartElevated starts an elevated copy of the manager and exits.
func (ac *AppController) RestartElevated() {
	if err := ac.SaveState(); err != nil {
		debuglog.ErrorLog("RestartElevated: %v", err)
	}
	if err := platform.RestartElevated(); err != nil {
		dialogs.ShowError(ac.window(), "Restart elevated", err)
		return
	}
	ac.GracefulExit()
}

// OpenConfigFolder shows the configuration directory in the file manager.
func (ac *AppController) OpenConfigFolder() error {
	return platform.OpenFolder(ac.FileService.ConfigDir)
}
