package config

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	ConfigPathEnvVar = "SNAPTRACE_CONFIG"
	DefaultHotkey    = "Ctrl+Alt+S"
	DefaultBaseName  = "screenshot"
	DefaultColorHex  = "#ff0000"
	ScopeAll         = "all"
	ScopePrimary     = "primary"
)

type LoadOptions struct {
	// EnvPath names a dotenv file to use instead of the usual lookup.
	EnvPath         string
	HotkeyOverride  string
	SaveDirOverride string
}

type Config struct {
	Hotkey            string
	SaveDir           string
	BaseFilename      string
	PenSize           int
	Color             color.NRGBA
	CounterStart      int
	MaxUndoStates     int
	QuickTexts        []string
	CaptureScope      string
	EnableFileLogging bool
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Process environment wins over the dotenv file: godotenv.Load never
	// overwrites variables that are already set.
	envPath := opts.EnvPath
	if envPath == "" {
		envPath = resolveEnvPath()
	}
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("read %s: %w", envPath, err)
		}
		log.Printf("Config: loaded %s", envPath)
	}

	c, err := parseColor(getEnvWithDefault("DEFAULT_COLOR", DefaultColorHex))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Hotkey:            getEnvWithDefault("HOTKEY", DefaultHotkey),
		SaveDir:           resolveSaveDir(os.Getenv("SAVE_DIR")),
		BaseFilename:      getEnvWithDefault("BASE_FILENAME", DefaultBaseName),
		PenSize:           getIntWithDefault("DEFAULT_PEN_SIZE", 2, 1),
		Color:             c,
		CounterStart:      getIntWithDefault("COUNTER_START", 1, 0),
		MaxUndoStates:     getIntWithDefault("MAX_UNDO_STATES", 50, 2),
		QuickTexts:        splitList(os.Getenv("QUICK_TEXTS")),
		CaptureScope:      resolveScope(os.Getenv("CAPTURE_SCOPE")),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
	}
	if v := strings.TrimSpace(opts.HotkeyOverride); v != "" {
		cfg.Hotkey = v
	}
	if v := strings.TrimSpace(opts.SaveDirOverride); v != "" {
		cfg.SaveDir = v
	}
	return cfg, nil
}

func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}
	if alt := os.Getenv(ConfigPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}
	return ""
}

func resolveSaveDir(v string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

func resolveScope(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), ScopePrimary) {
		return ScopePrimary
	}
	return ScopeAll
}

// parseColor accepts #rgb or #rrggbb.
func parseColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimSpace(hex)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("DEFAULT_COLOR %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// splitList splits a '|' separated list, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, "|") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntWithDefault ignores values that fail to parse or fall below min.
func getIntWithDefault(key string, defaultValue, min int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < min {
		log.Printf("Config: ignoring %s=%q", key, v)
		return defaultValue
	}
	return n
}
