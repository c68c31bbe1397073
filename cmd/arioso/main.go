package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arioso/internal/config"
	"arioso/internal/library"
	"arioso/internal/lyrics"
	"arioso/internal/mediaindex"
	"arioso/internal/metadata"
	"arioso/internal/repository"
	"arioso/internal/settings"
	musicsync "arioso/internal/sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Optional .env file for path overrides
	_ = godotenv.Load()

	configPath := "./config.toml"
	if envPath := os.Getenv("ARIOSO_CONFIG"); envPath != "" {
		configPath = envPath
	}

	// Initialize basic logger for startup
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Error loading configuration")
	}
	applyLogConfig(logger, cfg.Logging)

	// Open the persistent stores
	settingsStore, err := settings.NewStore(cfg.Settings.Path, logger)
	if err != nil {
		logger.WithError(err).Fatal("Error opening settings store")
	}

	libStore, err := library.NewStore(cfg.Database.Path, cfg.Database.MaxConnections, logger)
	if err != nil {
		logger.WithError(err).Fatal("Error opening library store")
	}
	defer libStore.Close()

	// Media index over the configured library roots
	extractor := metadata.NewExtractor(cfg.Music.SupportedFormats, logger)
	index := mediaindex.NewFilesystemIndex(cfg.Music.LibraryPaths, extractor, cfg.Music.MinDurationSeconds, logger)

	var lyricsClient *lyrics.Client
	if cfg.Lyrics.Enabled {
		lyricsClient = lyrics.NewClient(cfg.Lyrics.BaseURL,
			time.Duration(cfg.Lyrics.TimeoutSeconds)*time.Second, logger)
	}

	editor := metadata.NewEditor(logger)
	repo := repository.New(settingsStore, libStore, index, lyricsClient, extractor, editor, logger)

	// Sync pipeline: engine driven by the scheduler, nudged by the watcher
	engine := musicsync.NewEngine(index, libStore, logger)
	interval := time.Duration(cfg.Music.ScanIntervalMinutes) * time.Minute
	scheduler := musicsync.NewScheduler(engine, interval, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if cfg.Music.ScanOnStartup {
		scheduler.Trigger()
	}

	// Seed the allowed-directories default on a fresh install
	go func() {
		if _, err := repo.DiscoverAudioDirectories(ctx); err != nil {
			logger.WithError(err).Warn("Directory discovery failed")
		}
	}()

	if cfg.Music.WatchForChanges {
		watcher, err := musicsync.NewWatcher(scheduler, extractor, logger)
		if err != nil {
			logger.WithError(err).Fatal("Error creating file watcher")
		}
		if err := watcher.Start(cfg.Music.LibraryPaths); err != nil {
			logger.WithError(err).Warn("File watcher failed to start")
		}
		defer watcher.Stop()
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("Received shutdown signal")
}

// applyLogConfig upgrades the startup logger to the configured level,
// format and destination.
func applyLogConfig(logger *logrus.Logger, cfg config.LoggingConfig) {
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if cfg.File != "" {
		if f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			logger.SetOutput(f)
		} else {
			logger.WithError(err).Warn("Failed to open log file, using stderr")
		}
	}
}
