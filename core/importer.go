package core

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"overtls-manager/internal/debuglog"
	"overtls-manager/internal/overtls"
	"overtls-manager/internal/qrcode"
)

// ImportText parses pasted text: a JSON node first, then an ssr:// URL.
func ImportText(text string) (overtls.Config, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return overtls.Config{}, errors.New("ImportText: clipboard is empty")
	}
	debuglog.TraceLog("ImportText: %d bytes", len(text))
	cfg, err := overtls.FromText(text)
	if err != nil {
		return overtls.Config{}, fmt.Errorf("ImportText: no valid configuration found: %w", err)
	}
	return cfg, nil
}

// ImportFile reads a node from path, trying in order: a config file, an
// image holding a QR code, and a text file holding a URL. The error of the
// last attempt is returned when all fail.
func ImportFile(path string) (overtls.Config, error) {
	cfg, err := overtls.FromConfigFile(path)
	if err == nil {
		return cfg, nil
	}
	debuglog.TraceLog("ImportFile: %s is not a config file: %v", path, err)

	text, err := qrcode.DecodeFile(path)
	if err == nil {
		debuglog.TraceLog("ImportFile: QR code detected in %s", path)
		cfg, err = overtls.FromSSRURL(text)
		if err != nil {
			return overtls.Config{}, fmt.Errorf("ImportFile: QR code in %s is not a node: %w", path, err)
		}
		return cfg, nil
	}
	debuglog.TraceLog("ImportFile: no QR code in %s: %v", path, err)

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return overtls.Config{}, fmt.Errorf("ImportFile: %w", readErr)
	}
	cfg, err = overtls.FromSSRURL(string(data))
	if err != nil {
		return overtls.Config{}, fmt.Errorf("ImportFile: %s holds no node: %w", path, err)
	}
	return cfg, nil
}

// ImportFiles imports every path, logging and collecting failures.
func ImportFiles(paths []string) ([]overtls.Config, []error) {
	var (
		nodes []overtls.Config
		errs  []error
	)
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		cfg, err := ImportFile(p)
		if err != nil {
			debuglog.WarnLog("ImportFiles: failed to process file: %v", err)
			errs = append(errs, err)
			continue
		}
		nodes = append(nodes, cfg)
	}
	return nodes, errs
}

// ScanFunc returns the texts of QR codes currently visible.
type ScanFunc func() ([]string, error)

// ImportFromScreen scans the screen for QR codes and returns every node
// found. scan defaults to qrcode.ScanScreen.
func ImportFromScreen(scan ScanFunc) ([]overtls.Config, error) {
	if scan == nil {
		scan = qrcode.ScanScreen
	}
	texts, err := scan()
	if err != nil {
		return nil, fmt.Errorf("ImportFromScreen: %w", err)
	}
	var (
		nodes   []overtls.Config
		lastErr error
	)
	for _, text := range texts {
		cfg, err := overtls.FromSSRURL(text)
		if err != nil {
			lastErr = err
			debuglog.DebugLog("ImportFromScreen: QR code is not a node: %v", err)
			continue
		}
		nodes = append(nodes, cfg)
	}
	if len(nodes) == 0 {
		if lastErr == nil {
			lastErr = qrcode.ErrNoCode
		}
		return nil, fmt.Errorf("ImportFromScreen: %w", lastErr)
	}
	return nodes, nil
}
