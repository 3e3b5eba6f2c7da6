// @title         resume-parser API
// @version       1.0
// @description   Загрузка PDF-резюме, извлечение структурированных данных с помощью LLM и просмотр сохранённых результатов.
// @BasePath      /api
// @schemes       http
// @host          localhost:4000
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	_ "github.com/artem13815/resumeparser/docs"

	// internal imports
	"github.com/artem13815/resumeparser/api/http"
	"github.com/artem13815/resumeparser/api/http/handlers"
	"github.com/artem13815/resumeparser/pkg/config"
	"github.com/artem13815/resumeparser/pkg/health"
	"github.com/artem13815/resumeparser/pkg/health/checkers"
	"github.com/artem13815/resumeparser/pkg/llm"
	"github.com/artem13815/resumeparser/pkg/llm/gemini"
	"github.com/artem13815/resumeparser/pkg/llm/openrouter"
	"github.com/artem13815/resumeparser/pkg/logger"
	pgrepo "github.com/artem13815/resumeparser/pkg/repository/postgres"
	sqliterepo "github.com/artem13815/resumeparser/pkg/repository/sqlite"
	"github.com/artem13815/resumeparser/pkg/resume"
	"github.com/artem13815/resumeparser/pkg/storage/local"
	"github.com/artem13815/resumeparser/pkg/storage/postgres"
	"github.com/artem13815/resumeparser/pkg/storage/sqlite"
)

func main() {
	// Load configuration from env/.env
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, readiness, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.DatabaseDriver).Fatal("open storage")
	}
	defer closeStore()

	model, err := newChatModel(ctx, cfg)
	if err != nil {
		log.WithError(err).WithField("provider", cfg.LLMProvider).Fatal("init llm client")
	}

	files, err := local.NewFileStore(cfg.UploadDir)
	if err != nil {
		log.WithError(err).Fatal("init upload dir")
	}

	// Wire dependencies (Clean Architecture)
	uploadUC := resume.NewUploadService(resume.NewPDFExtractor(log), model, repo, log)
	resumesHandler := handlers.NewResumesHandler(uploadUC, repo, files, cfg.MaxUploadBytes, log)
	healthHandler := handlers.NewHealthHandler(readiness)

	app := http.NewApp(http.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		FrontendOrigin: cfg.FrontendOrigin,
	}, log)
	http.Register(app, healthHandler, resumesHandler, files.Dir())

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Error("shutdown")
		}
	}()

	log.WithFields(logrus.Fields{
		"port":     cfg.Port,
		"driver":   cfg.DatabaseDriver,
		"provider": cfg.LLMProvider,
		"model":    cfg.Model(),
	}).Info("HTTP server listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Error("server stopped")
	}
}

// openStore connects the configured database and returns the repository,
// its readiness check and a close func.
func openStore(ctx context.Context, cfg config.Config) (resume.Repository, health.ReadinessUseCase, func(), error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		repo, err := sqliterepo.NewResumeRepository(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		return repo, health.NewService(checkers.NewSQLiteChecker(db, 0)), func() { db.Close() }, nil
	default:
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		repo, err := pgrepo.NewResumeRepository(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return repo, health.NewService(checkers.NewPostgresChecker(pool, 0)), pool.Close, nil
	}
}

func newChatModel(ctx context.Context, cfg config.Config) (llm.ChatModel, error) {
	if cfg.LLMProvider == config.ProviderOpenRouter {
		return openrouter.New(
			cfg.OpenRouterAPIKey,
			cfg.OpenRouterBase,
			cfg.OpenRouterModel,
			cfg.OpenRouterAppTitle,
			cfg.OpenRouterReferer,
			openrouter.WithTemperature(0),
			openrouter.WithMaxTokens(cfg.LLMMaxOutputTokens),
			openrouter.WithTimeout(cfg.LLMTimeout),
		), nil
	}
	return gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTimeout,
		gemini.WithMaxTokens(cfg.LLMMaxOutputTokens),
	)
}
