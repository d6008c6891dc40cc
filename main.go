package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/deutschbot/internal/ai"
	"github.com/example/deutschbot/internal/bot"
	"github.com/example/deutschbot/internal/config"
	"github.com/example/deutschbot/internal/database"
	"github.com/example/deutschbot/internal/health"
	"github.com/example/deutschbot/internal/logging"
	"github.com/example/deutschbot/internal/ocr"
	"github.com/example/deutschbot/internal/scheduler"
	"github.com/example/deutschbot/internal/vocabulary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database and the language model are required, OCR is optional.
	db, err := database.Connect(ctx, database.Config{Driver: cfg.Database.Driver, URL: cfg.Database.URL})
	if err != nil {
		logger.Error("database check failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database ready", "driver", cfg.Database.Driver)

	chatGPT, err := ai.New(ai.Config{
		APIKey:      cfg.OpenAI.APIKey,
		APIURL:      cfg.OpenAI.APIURL,
		Model:       cfg.OpenAI.Model,
		Timeout:     cfg.OpenAI.Timeout,
		Concurrency: cfg.Vocabulary.Concurrency,
	}, logger)
	if err != nil {
		logger.Error("failed to create OpenAI client", "error", err)
		os.Exit(1)
	}
	if err := chatGPT.Ping(ctx); err != nil {
		logger.Error("OpenAI API check failed", "error", err)
		os.Exit(1)
	}
	logger.Info("OpenAI API reachable", "model", cfg.OpenAI.Model)

	ocrEngine, err := ocr.New(cfg.OCR)
	if err != nil {
		logger.Error("failed to create OCR engine", "error", err)
		os.Exit(1)
	}
	if prober, ok := ocrEngine.(ocr.Prober); ok {
		if err := prober.Probe(ctx); err != nil {
			logger.Warn("OCR server check failed (non-blocking)", "engine", ocrEngine.Name(), "error", err)
		}
	}
	logger.Info("OCR engine selected", "engine", ocrEngine.Name())

	users := database.NewUserRepository(db)
	engine := vocabulary.NewEngine(database.NewVocabularyRepository(db), users, chatGPT, vocabulary.Options{
		BatchSize: cfg.Vocabulary.BatchSize,
		Logger:    logger,
	})

	healthServer := health.NewServer(cfg.Server.Port, cfg.Server.Environment, db, logger)
	healthServer.Start()

	sessions := bot.NewSessionStore(cfg.Session.TTL)
	b, err := bot.New(cfg.Telegram.Token, cfg.Telegram.Debug, engine, ocrEngine, sessions, logger)
	if err != nil {
		logger.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(cfg.Reminders, sessions, users, b, logger)
	if err := sched.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}

	logger.Info("bot started, press Ctrl+C to stop")
	if err := b.Start(ctx); err != nil {
		logger.Error("bot error", "error", err)
	}

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := healthServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
	logger.Info("bot stopped successfully")
}
