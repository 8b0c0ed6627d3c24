package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Telegram contains chat transport configuration.
type Telegram struct {
	BotToken    string `toml:"bot_token"`
	APIBaseURL  string `toml:"api_base_url"`
	PollTimeout int    `toml:"poll_timeout"`
	SendTimeout int    `toml:"send_timeout"`
}

// Paths contains directory configuration.
type Paths struct {
	DownloadDir string `toml:"download_dir"`
	LogDir      string `toml:"log_dir"`
	CookiesFile string `toml:"cookies_file"`
}

// Extractor contains configuration for the yt-dlp extraction backend.
type Extractor struct {
	Binary             string `toml:"binary"`
	MaxDurationSeconds int    `toml:"max_duration_seconds"`
	MaxFilesizeMB      int    `toml:"max_filesize_mb"`
	SearchTimeout      int    `toml:"search_timeout"`
	FetchTimeout       int    `toml:"fetch_timeout"`
	GeoBypass          bool   `toml:"geo_bypass"`
	PlayerClient       string `toml:"player_client"`
}

// Cache contains configuration for the delivery cache.
type Cache struct {
	Enabled bool `toml:"enabled"`
}

// Notifications contains configuration for ntfy operator alerts.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for tunebot.
//
// Configuration sections by subsystem:
//   - Telegram: bot token, API base URL, polling and upload timeouts
//   - Paths: download/log directories and the optional cookies file
//   - Extractor: yt-dlp binary, duration/size limits, extraction hints
//   - Cache: delivered-audio cache toggle
//   - Notifications: ntfy operator alert settings
//   - Logging: log format, level, and retention
type Config struct {
	Telegram      Telegram      `toml:"telegram"`
	Paths         Paths         `toml:"paths"`
	Extractor     Extractor     `toml:"extractor"`
	Cache         Cache         `toml:"cache"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tunebot/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path, the third reports whether a file was found there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tunebot.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DownloadDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ExtractorBinary returns the yt-dlp executable name.
func (c *Config) ExtractorBinary() string {
	if strings.TrimSpace(c.Extractor.Binary) == "" {
		return "yt-dlp"
	}
	return c.Extractor.Binary
}

// FFmpegBinary returns the ffmpeg executable name yt-dlp uses for transcoding.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// CookiesFileIfPresent returns the configured cookies file path when the
// file exists on disk, or "" otherwise. The cookies file is opportunistic:
// extraction proceeds without it.
func (c *Config) CookiesFileIfPresent() string {
	path := strings.TrimSpace(c.Paths.CookiesFile)
	if path == "" {
		return ""
	}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
