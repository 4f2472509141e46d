package overtls

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/muhammadmuzzammil1998/jsonc"
	"gopkg.in/yaml.v3"
)

// FromJSON parses a single node from JSON. Comments are tolerated.
func FromJSON(data []byte) (Config, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Config{}, fmt.Errorf("FromJSON: %w: not a JSON object", ErrNotANode)
	}
	var cfg Config
	if err := json.Unmarshal(jsonc.ToJSON(trimmed), &cfg); err != nil {
		return Config{}, fmt.Errorf("FromJSON: %w", err)
	}
	if err := looksLikeNode(cfg); err != nil {
		return Config{}, fmt.Errorf("FromJSON: %w", err)
	}
	return cfg, nil
}

// FromYAML parses a single node from YAML.
func FromYAML(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("FromYAML: %w", err)
	}
	if err := looksLikeNode(cfg); err != nil {
		return Config{}, fmt.Errorf("FromYAML: %w", err)
	}
	return cfg, nil
}

// FromText parses pasted text: a JSON document first, then an ssr:// URL.
func FromText(text string) (Config, error) {
	cfg, jsonErr := FromJSON([]byte(text))
	if jsonErr == nil {
		return cfg, nil
	}
	cfg, urlErr := FromSSRURL(text)
	if urlErr == nil {
		return cfg, nil
	}
	return Config{}, fmt.Errorf("FromText: not a node (json: %v; url: %w)", jsonErr, urlErr)
}

// FromConfigFile reads a node from a .json, .yaml or .yml file.
func FromConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("FromConfigFile: %w", err)
	}
	if isYAMLPath(path) {
		return FromYAML(data)
	}
	return FromJSON(data)
}

// ToJSON renders a node as indented JSON.
func ToJSON(cfg Config) ([]byte, error) {
	return json.MarshalIndent(cfg, "", "  ")
}

// ToYAML renders a node as YAML.
func ToYAML(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// WriteConfigFile exports a node; the format follows the file extension.
func WriteConfigFile(path string, cfg Config) error {
	var (
		data []byte
		err  error
	)
	if isYAMLPath(path) {
		data, err = ToYAML(cfg)
	} else {
		data, err = ToJSON(cfg)
	}
	if err != nil {
		return fmt.Errorf("WriteConfigFile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("WriteConfigFile: %w", err)
	}
	return nil
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

func looksLikeNode(cfg Config) error {
	if cfg.Client == nil || cfg.Client.ServerHost == "" {
		return ErrNotANode
	}
	return nil
}
