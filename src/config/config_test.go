package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

var keys = []string{
	"HOTKEY", "SAVE_DIR", "BASE_FILENAME", "DEFAULT_PEN_SIZE", "DEFAULT_COLOR",
	"COUNTER_START", "MAX_UNDO_STATES", "QUICK_TEXTS", "CAPTURE_SCOPE", "ENABLE_FILE_LOGGING",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadWithOptions(LoadOptions{EnvPath: ""})
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Hotkey != DefaultHotkey {
		t.Errorf("Expected Hotkey %q, got %q", DefaultHotkey, cfg.Hotkey)
	}
	if cfg.PenSize != 2 || cfg.CounterStart != 1 || cfg.MaxUndoStates != 50 {
		t.Errorf("unexpected numeric defaults: %+v", cfg)
	}
	if cfg.Color != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("Expected red default colour, got %v", cfg.Color)
	}
	if cfg.CaptureScope != ScopeAll {
		t.Errorf("Expected scope %q, got %q", ScopeAll, cfg.CaptureScope)
	}
	if cfg.SaveDir == "" {
		t.Error("SaveDir should fall back to the home directory")
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOTKEY", "Ctrl+Shift+T")
	t.Setenv("DEFAULT_PEN_SIZE", "5")
	t.Setenv("DEFAULT_COLOR", "00ff00")
	t.Setenv("QUICK_TEXTS", "Bug here| Fixed |")
	t.Setenv("CAPTURE_SCOPE", "Primary")
	t.Setenv("ENABLE_FILE_LOGGING", "TRUE")
	t.Setenv("MAX_UNDO_STATES", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Hotkey != "Ctrl+Shift+T" {
		t.Errorf("Expected Hotkey to be 'Ctrl+Shift+T', got '%s'", cfg.Hotkey)
	}
	if cfg.PenSize != 5 {
		t.Errorf("Expected PenSize 5, got %d", cfg.PenSize)
	}
	if cfg.Color != (color.NRGBA{G: 255, A: 255}) {
		t.Errorf("Expected green, got %v", cfg.Color)
	}
	if len(cfg.QuickTexts) != 2 || cfg.QuickTexts[1] != "Fixed" {
		t.Errorf("QuickTexts = %q", cfg.QuickTexts)
	}
	if cfg.CaptureScope != ScopePrimary {
		t.Errorf("scope = %q", cfg.CaptureScope)
	}
	if !cfg.EnableFileLogging {
		t.Error("Expected EnableFileLogging to be true")
	}
	if cfg.MaxUndoStates != 50 {
		t.Errorf("out-of-range MAX_UNDO_STATES should be ignored, got %d", cfg.MaxUndoStates)
	}
}

func TestDotenvFileAndOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "snaptrace.env")
	content := "HOTKEY=Ctrl+Alt+P\nSAVE_DIR=/tmp/shots\nCOUNTER_START=10\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadWithOptions(LoadOptions{EnvPath: path, SaveDirOverride: "/srv/out"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Hotkey != "Ctrl+Alt+P" || cfg.CounterStart != 10 {
		t.Errorf("dotenv values not applied: %+v", cfg)
	}
	if cfg.SaveDir != "/srv/out" {
		t.Errorf("override lost: %q", cfg.SaveDir)
	}
}

func TestBadColor(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_COLOR", "#zzzzzz")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an invalid colour")
	}
}
