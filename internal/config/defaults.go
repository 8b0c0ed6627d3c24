package config

const (
	defaultAPIBaseURL         = "https://api.telegram.org"
	defaultPollTimeout        = 30
	defaultSendTimeout        = 180
	defaultDownloadDir        = "~/.local/share/tunebot/downloads"
	defaultLogDir             = "~/.local/share/tunebot/logs"
	defaultCookiesFile        = "~/.config/tunebot/cookies.txt"
	defaultExtractorBinary    = "yt-dlp"
	defaultMaxDurationSeconds = 900
	defaultMaxFilesizeMB      = 50
	defaultSearchTimeout      = 60
	defaultFetchTimeout       = 600
	defaultPlayerClient       = "android"
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Telegram: Telegram{
			APIBaseURL:  defaultAPIBaseURL,
			PollTimeout: defaultPollTimeout,
			SendTimeout: defaultSendTimeout,
		},
		Paths: Paths{
			DownloadDir: defaultDownloadDir,
			LogDir:      defaultLogDir,
			CookiesFile: defaultCookiesFile,
		},
		Extractor: Extractor{
			Binary:             defaultExtractorBinary,
			MaxDurationSeconds: defaultMaxDurationSeconds,
			MaxFilesizeMB:      defaultMaxFilesizeMB,
			SearchTimeout:      defaultSearchTimeout,
			FetchTimeout:       defaultFetchTimeout,
			GeoBypass:          true,
			PlayerClient:       defaultPlayerClient,
		},
		Cache: Cache{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
