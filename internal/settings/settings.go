package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Settings is the explicit app settings object handed to the scheduler and
// service call sites. It is never consulted through ambient globals.
type Settings struct {
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	Theme                string `json:"theme"`
}

func Default() Settings {
	return Settings{
		NotificationsEnabled: true,
		Theme:                "dark",
	}
}

// Store persists settings as a small JSON file.
type Store struct {
	path string
}

func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("settings: empty path")
	}
	return &Store{path: path}, nil
}

// Load reads settings from disk, falling back to defaults when the file does
// not exist yet. Env overrides are applied last.
func (s *Store) Load() (Settings, error) {
	cfg := Default()
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return FromEnv(cfg), nil
		}
		return cfg, fmt.Errorf("settings: read %s: %w", s.path, err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Default(), fmt.Errorf("settings: parse %s: %w", s.path, err)
	}
	if strings.TrimSpace(cfg.Theme) == "" {
		cfg.Theme = Default().Theme
	}
	return FromEnv(cfg), nil
}

func (s *Store) Save(cfg Settings) error {
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("settings: mkdir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("settings: write %s: %w", s.path, err)
	}
	return nil
}

func FromEnv(base Settings) Settings {
	cfg := base
	if v, ok := getEnvBool("DROPD_NOTIFICATIONS"); ok {
		cfg.NotificationsEnabled = v
	}
	if v := strings.TrimSpace(os.Getenv("DROPD_THEME")); v != "" {
		cfg.Theme = v
	}
	return cfg
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
