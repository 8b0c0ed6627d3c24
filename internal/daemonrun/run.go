package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"tunebot/internal/artifact"
	"tunebot/internal/bot"
	"tunebot/internal/cache"
	"tunebot/internal/config"
	"tunebot/internal/daemon"
	"tunebot/internal/deps"
	"tunebot/internal/logging"
	"tunebot/internal/notifications"
	"tunebot/internal/pipeline"
	"tunebot/internal/preflight"
	"tunebot/internal/telegram"
	"tunebot/internal/ytdlp"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the bot runtime loop and blocks until a termination signal.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.RequireBotToken(); err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	level := strings.TrimSpace(opts.LogLevel)
	if level == "" {
		level = cfg.Logging.Level
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("tunebot-%s.log", runID))
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update tunebot.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "tunebot-*.log", Exclude: []string{logPath}},
	)

	checks := preflight.RunAll(signalCtx, cfg)
	for _, result := range preflight.Failed(checks) {
		logger.Warn("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
		)
	}
	if fatal := preflight.Fatal(checks); len(fatal) > 0 {
		return fmt.Errorf("preflight failed: %s (%s)", fatal[0].Name, fatal[0].Detail)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "tunebot.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	client, err := telegram.New(telegramConfig(cfg))
	if err != nil {
		return fmt.Errorf("create telegram client: %w", err)
	}

	extractor, err := ytdlp.New(ytdlp.Config{
		Binary:        cfg.ExtractorBinary(),
		CookiesFile:   cfg.CookiesFileIfPresent(),
		GeoBypass:     cfg.Extractor.GeoBypass,
		PlayerClient:  cfg.Extractor.PlayerClient,
		MaxFilesizeMB: cfg.Extractor.MaxFilesizeMB,
		SearchTimeout: time.Duration(cfg.Extractor.SearchTimeout) * time.Second,
		FetchTimeout:  time.Duration(cfg.Extractor.FetchTimeout) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("create extractor: %w", err)
	}

	artifacts, err := artifact.NewStore(cfg.Paths.DownloadDir, logger)
	if err != nil {
		return fmt.Errorf("create artifact store: %w", err)
	}
	artifacts.SweepLeftovers()

	var store *cache.Store
	var deliveries pipeline.DeliveryCache
	if cfg.Cache.Enabled {
		store, err = cache.Open(cfg)
		if err != nil {
			logger.Error("open delivery cache", logging.Error(err))
			return err
		}
		deliveries = store
	}

	notifier := notifications.NewService(cfg)
	pipe, err := pipeline.New(extractor, client, deliveries, artifacts, cfg.Extractor.MaxDurationSeconds, logger,
		pipeline.WithNotifier(notifier))
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	dispatcher := bot.New(client, pipe, logger)

	var daemonOpts []daemon.Option
	if me, err := client.GetMe(signalCtx); err != nil {
		logger.Warn("bot identity check failed", logging.Error(err))
	} else {
		logger.Info("bot authorized", logging.String("username", me.Username))
		daemonOpts = append(daemonOpts, daemon.WithUsername(me.Username))
	}

	d, err := daemon.New(cfg, dispatcher, storeCloser(store), client, notifier, logger, daemonOpts...)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Shutdown()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	logger.Info("termination signal received")
	d.Shutdown()
	return nil
}

// telegramConfig maps config seconds onto the client's settings. Poll
// timeout stays in seconds (it is forwarded to the Bot API); the send
// timeout becomes the upload transport budget.
func telegramConfig(cfg *config.Config) telegram.Config {
	return telegram.Config{
		Token:       cfg.Telegram.BotToken,
		BaseURL:     cfg.Telegram.APIBaseURL,
		PollTimeout: cfg.Telegram.PollTimeout,
		SendTimeout: time.Duration(cfg.Telegram.SendTimeout) * time.Second,
	}
}

// storeCloser keeps a nil *cache.Store from becoming a non-nil interface.
func storeCloser(store *cache.Store) daemon.Closer {
	if store == nil {
		return nil
	}
	return store
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "tunebot.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	extractor := cfg.ExtractorBinary()
	ffmpeg := deps.CheckFFmpeg(extractor)
	logger.Info("dependency snapshot",
		logging.String(logging.FieldEventType, "dependency_snapshot"),
		logging.Bool("bot_token_present", strings.TrimSpace(cfg.Telegram.BotToken) != ""),
		logging.Bool("extractor_available", binaryAvailable(extractor)),
		logging.String("extractor_binary", extractor),
		logging.Bool("ffmpeg_available", ffmpeg.Available),
		logging.String("ffmpeg_binary", ffmpeg.Command),
		logging.Bool("cookies_present", cfg.CookiesFileIfPresent() != ""),
		logging.Bool("cache_enabled", cfg.Cache.Enabled),
	)
}

func binaryAvailable(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
