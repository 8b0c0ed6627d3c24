package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTelegram()
	c.normalizeExtractor()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CookiesFile) == "" {
		c.Paths.CookiesFile = defaultCookiesFile
	}
	if c.Paths.CookiesFile, err = expandPath(c.Paths.CookiesFile); err != nil {
		return fmt.Errorf("paths.cookies_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeTelegram() {
	c.Telegram.BotToken = strings.TrimSpace(c.Telegram.BotToken)
	if c.Telegram.BotToken == "" {
		if value, ok := os.LookupEnv("TUNEBOT_BOT_TOKEN"); ok {
			c.Telegram.BotToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("BOT_TOKEN"); ok {
			c.Telegram.BotToken = strings.TrimSpace(value)
		}
	}
	c.Telegram.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Telegram.APIBaseURL), "/")
	if c.Telegram.APIBaseURL == "" {
		c.Telegram.APIBaseURL = defaultAPIBaseURL
	}
	if c.Telegram.PollTimeout <= 0 {
		c.Telegram.PollTimeout = defaultPollTimeout
	}
	if c.Telegram.SendTimeout <= 0 {
		c.Telegram.SendTimeout = defaultSendTimeout
	}
}

func (c *Config) normalizeExtractor() {
	c.Extractor.Binary = strings.TrimSpace(c.Extractor.Binary)
	if c.Extractor.Binary == "" {
		c.Extractor.Binary = defaultExtractorBinary
	}
	if c.Extractor.MaxDurationSeconds <= 0 {
		c.Extractor.MaxDurationSeconds = defaultMaxDurationSeconds
	}
	if c.Extractor.MaxFilesizeMB <= 0 {
		c.Extractor.MaxFilesizeMB = defaultMaxFilesizeMB
	}
	if c.Extractor.SearchTimeout <= 0 {
		c.Extractor.SearchTimeout = defaultSearchTimeout
	}
	if c.Extractor.FetchTimeout <= 0 {
		c.Extractor.FetchTimeout = defaultFetchTimeout
	}
	c.Extractor.PlayerClient = strings.TrimSpace(c.Extractor.PlayerClient)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
