package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

// HomeEnv overrides the settings directory.
const HomeEnv = "SEASON_REMUX_HOME"

const (
	dirName      = ".season-remux"
	settingsFile = "settings.toml"
	logsDir      = "logs"
)

// Settings holds the persisted operator choices and run knobs.
type Settings struct {
	StartingDir     string `toml:"starting_dir"`
	StorageLocation string `toml:"storage_location"`

	FFmpegPath    string `toml:"ffmpeg_path"`
	FFprobePath   string `toml:"ffprobe_path"`
	Workers       int    `toml:"workers"`
	VerifyStreams bool   `toml:"verify_streams"`
	PruneEmpty    bool   `toml:"prune_empty"`

	EnableLogging    bool `toml:"enable_logging"`
	LogRetentionDays int  `toml:"log_retention_days"`
	LogToFile        bool `toml:"log_to_file"`
}

// DefaultSettings returns settings with no saved paths.
func DefaultSettings() *Settings {
	return &Settings{
		FFmpegPath:       "ffmpeg",
		FFprobePath:      "ffprobe",
		EnableLogging:    true,
		LogRetentionDays: 30,
	}
}

// Dir returns the directory holding settings and logs.
func Dir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, dirName), nil
}

// SettingsPath returns the path to the settings file.
func SettingsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, settingsFile), nil
}

// LogsDir returns the directory holding journal sessions.
func LogsDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logsDir), nil
}

// RunLogPath returns the rotating log file used when log_to_file is set.
func RunLogPath() (string, error) {
	dir, err := LogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "season-remux.log"), nil
}

// Load reads the settings file. A missing or unparseable file yields the
// defaults with saved set to false.
func Load() (cfg *Settings, saved bool) {
	path, err := SettingsPath()
	if err != nil {
		return DefaultSettings(), false
	}
	return LoadFrom(path)
}

// LoadFrom is Load for an explicit path.
func LoadFrom(path string) (*Settings, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultSettings(), false
	}

	cfg := DefaultSettings()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return DefaultSettings(), false
	}

	// Fill in any missing fields with defaults
	defaults := DefaultSettings()
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = defaults.FFmpegPath
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = defaults.FFprobePath
	}
	if cfg.LogRetentionDays <= 0 {
		cfg.LogRetentionDays = defaults.LogRetentionDays
	}
	if cfg.Workers < 0 {
		cfg.Workers = 0
	}

	return cfg, true
}

// HasPaths reports whether both directories were saved.
func (s *Settings) HasPaths() bool {
	return s != nil && s.StartingDir != "" && s.StorageLocation != ""
}

// WorkerCount resolves the transcode pool size.
func (s *Settings) WorkerCount() int {
	if s == nil || s.Workers <= 0 {
		return runtime.NumCPU()
	}
	return s.Workers
}

// Save writes the settings file, creating its directory.
func (s *Settings) Save() error {
	path, err := SettingsPath()
	if err != nil {
		return err
	}
	return s.SaveTo(path)
}

// SaveTo is Save for an explicit path.
func (s *Settings) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// Reset removes the settings file. A missing file is not an error.
func Reset() error {
	path, err := SettingsPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove settings file: %w", err)
	}
	return nil
}

// ValidateDir checks that path names an existing directory.
func ValidateDir(path string) error {
	if path == "" {
		return fmt.Errorf("directory not set")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
