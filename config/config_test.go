package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileIsZeroConfig(t *testing.T) {
	t.Setenv("GSHEETS_CONFIG_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.IsZero() {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestSaveLoadDelete(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("GSHEETS_CONFIG_DIR", filepath.Join(tmp, "nested"))

	want := Config{AccessToken: "tok", SpreadsheetID: "sheet-123"}
	if err := Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	info, err := os.Stat(filepath.Join(tmp, "nested", "config.json"))
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 permissions, got %o", perm)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}

	if err := Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := Delete(); err != nil {
		t.Fatalf("Delete of missing file failed: %v", err)
	}
}

func TestLoad_XDGConfigHome(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("GSHEETS_CONFIG_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", xdg)

	if err := Save(Config{APIKey: "k"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(xdg, "gsheets", "config.json")); err != nil {
		t.Fatalf("expected config under XDG_CONFIG_HOME: %v", err)
	}
}

func TestLoad_ConfigFileIsDirectory(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("GSHEETS_CONFIG_DIR", tmp)

	cfgPath := filepath.Join(tmp, "config.json")
	if err := os.Mkdir(cfgPath, 0o755); err != nil {
		t.Fatalf("setup config dir: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatalf("expected read error when config file is a directory")
	} else if os.IsNotExist(err) {
		t.Fatalf("expected non-ENOENT error, got %v", err)
	}
}

func TestUpdate_KeepsOtherFields(t *testing.T) {
	t.Setenv("GSHEETS_CONFIG_DIR", t.TempDir())

	if err := Save(Config{AccessToken: "old", RelayURL: "ws://relay.test.local"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Update(func(c *Config) { c.AccessToken = "new" })
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	want := Config{AccessToken: "new", RelayURL: "ws://relay.test.local"}
	if got != want {
		t.Fatalf("Update = %+v, want %+v", got, want)
	}
	if loaded, _ := Load(); loaded != want {
		t.Fatalf("Load after Update = %+v, want %+v", loaded, want)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("GSHEETS_CONFIG_DIR", tmp)
	if err := os.WriteFile(filepath.Join(tmp, "config.json"), []byte("{"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
