package core

import (
	"errors"

	"overtls-manager/core/services"
	"overtls-manager/internal/debuglog"
)

const listenPasswordKey = "listen_password"

// savedState mirrors AppState for decoding, so a file without a
// system_settings record can be told apart from one with empty settings.
type savedState struct {
	AppState
	SystemSettings *SystemSettings `json:"system_settings"`
}

// LoadAppState reads the state file. A missing or corrupt file yields the
// defaults; the error is logged, not returned. secrets may be nil.
func LoadAppState(states *services.StateService, secrets *services.SecretStore) AppState {
	var saved savedState
	found, err := states.Load(&saved)
	if err != nil {
		debuglog.WarnLog("LoadAppState: using defaults: %v", err)
		return DefaultAppState()
	}
	if !found {
		debuglog.InfoLog("LoadAppState: no state at %s, using defaults", states.Path())
		return DefaultAppState()
	}

	state := saved.AppState
	if saved.SystemSettings != nil {
		state.SystemSettings = *saved.SystemSettings
	} else {
		state.SystemSettings = DefaultSystemSettings()
	}
	if state.Window == (WindowState{}) {
		state.Window = DefaultWindowState()
	}

	if secrets != nil && state.SystemSettings.ListenPassword == "" {
		password, err := secrets.Get(listenPasswordKey)
		switch {
		case err == nil:
			state.SystemSettings.ListenPassword = password
		case !errors.Is(err, services.ErrSecretNotFound):
			debuglog.WarnLog("LoadAppState: %v", err)
		}
	}

	state.Normalize()
	debuglog.DebugLog("LoadAppState: %d nodes loaded from %s", len(state.RemoteNodes), states.Path())
	return state
}

// SaveAppState writes state. The listen password goes to the keyring when
// one is available and stays in the file otherwise. secrets may be nil.
func SaveAppState(states *services.StateService, secrets *services.SecretStore, state AppState) error {
	out := state
	out.SystemSettings = state.SystemSettings.Clone()

	if secrets != nil {
		password := out.SystemSettings.ListenPassword
		var err error
		if password == "" {
			err = secrets.Delete(listenPasswordKey)
		} else {
			err = secrets.Set(listenPasswordKey, password)
		}
		if err != nil {
			debuglog.WarnLog("SaveAppState: keyring unavailable, password kept in state file: %v", err)
		} else {
			out.SystemSettings.ListenPassword = ""
		}
	}
	return states.Save(out)
}
