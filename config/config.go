// Package config stores credentials and default settings between runs.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const fileName = "config.json"

// Config holds saved credentials and defaults. Flags and environment
// variables take precedence over every field.
type Config struct {
	AccessToken   string `json:"access_token,omitempty"`
	APIKey        string `json:"api_key,omitempty"`
	SpreadsheetID string `json:"spreadsheet_id,omitempty"`
	APIURL        string `json:"api_url,omitempty"`
	RelayURL      string `json:"relay_url,omitempty"`
}

// IsZero reports whether nothing is configured.
func (c Config) IsZero() bool {
	return c == Config{}
}

// Path returns the config file location: $GSHEETS_CONFIG_DIR, then
// $XDG_CONFIG_HOME/gsheets, then ~/.config/gsheets.
func Path() (string, error) {
	if v := os.Getenv("GSHEETS_CONFIG_DIR"); v != "" {
		return filepath.Join(v, fileName), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "gsheets", fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(home, ".config", "gsheets", fileName), nil
}

// Load reads the config file. A missing file is a zero Config.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading %s: %w", p, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", p, err)
	}
	return cfg, nil
}

// Save writes cfg readable by the owner only. The file is replaced in one
// rename so a crash never leaves it half written.
func Save(cfg Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), fileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	// Windows refuses to rename over an existing file.
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("replacing config: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}

// Update loads the config, applies fn and saves the result.
func Update(fn func(*Config)) (Config, error) {
	cfg, err := Load()
	if err != nil {
		return Config{}, err
	}
	fn(&cfg)
	return cfg, Save(cfg)
}

// Delete removes the config file. Deleting a missing file is not an error.
func Delete() error {
	p, err := Path()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting config: %w", err)
	}
	return nil
}
