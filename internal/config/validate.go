package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. The bot token is validated
// separately by RequireBotToken so offline commands work without one.
func (c *Config) Validate() error {
	if err := c.validateTelegram(); err != nil {
		return err
	}
	if err := c.validateExtractor(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

// RequireBotToken fails when no bot token is configured. Called before the
// daemon starts; offline commands (search, fetch, cache, config) skip it.
func (c *Config) RequireBotToken() error {
	if c.Telegram.BotToken == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/tunebot/config.toml"
		}
		return fmt.Errorf("telegram.bot_token is required. Set TUNEBOT_BOT_TOKEN env var or edit %s (create with 'tunebot config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateTelegram() error {
	return ensurePositiveMap(map[string]int{
		"telegram.poll_timeout": c.Telegram.PollTimeout,
		"telegram.send_timeout": c.Telegram.SendTimeout,
	})
}

func (c *Config) validateExtractor() error {
	if c.Extractor.Binary == "" {
		return errors.New("extractor.binary must be set")
	}
	return ensurePositiveMap(map[string]int{
		"extractor.max_duration_seconds": c.Extractor.MaxDurationSeconds,
		"extractor.max_filesize_mb":      c.Extractor.MaxFilesizeMB,
		"extractor.search_timeout":       c.Extractor.SearchTimeout,
		"extractor.fetch_timeout":        c.Extractor.FetchTimeout,
	})
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
