package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"EnvNewsPipeline/internal/config"
	"EnvNewsPipeline/internal/infrastructure/guardian"
	"EnvNewsPipeline/internal/infrastructure/llm"
	"EnvNewsPipeline/internal/infrastructure/scheduler"
	"EnvNewsPipeline/internal/infrastructure/scraper"
	"EnvNewsPipeline/internal/infrastructure/storage"
	"EnvNewsPipeline/internal/logging"
	"EnvNewsPipeline/internal/ports"
	"EnvNewsPipeline/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	db       *sql.DB
	pipeline *usecase.Pipeline
	runner   *usecase.Scheduler
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := storage.NewPostgresRepository(db, baseLogger.With("component", "storage"))
	extractor := guardian.NewClient(cfg.Guardian, nil, baseLogger.With("component", "extractor"))
	imageFinder := scraper.NewImageFinder(nil,
		cfg.Enrichment.UserAgent,
		time.Duration(cfg.Enrichment.ScrapeTimeoutSec)*time.Second,
		baseLogger.With("component", "scraper"))

	var summarizer ports.Summarizer
	if cfg.ChatGPT.APIKey != "" {
		summarizer = llm.NewSummarizer(cfg.ChatGPT)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Extractor:   extractor,
		ImageFinder: imageFinder,
		Summarizer:  summarizer,
		Store:       store,
		Options: usecase.EnricherOptions{
			MinBodyChars:   cfg.Enrichment.MinBodyChars,
			MaxPromptChars: cfg.Enrichment.MaxPromptChars,
			SummaryDelay:   time.Duration(cfg.Enrichment.SummaryDelayMs) * time.Millisecond,
			ArticleDelay:   time.Duration(cfg.Enrichment.ArticleDelayMs) * time.Millisecond,
		},
		Logger: baseLogger.With("component", "pipeline"),
	})

	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
	runner := usecase.NewScheduler(driver, pipeline, baseLogger.With("component", "scheduler"))

	return &Application{cfg: cfg, db: db, pipeline: pipeline, runner: runner}, nil
}

// RunOnce performs a single pipeline pass for the current day.
func (a *Application) RunOnce(ctx context.Context) error {
	now := time.Now().In(a.cfg.Scheduler.Location())
	_, err := a.pipeline.Run(ctx, now)
	return err
}

// Run starts the cron schedule and blocks until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.runner.Stop(stopCtx)
}

// Close releases the database pool.
func (a *Application) Close() error {
	return a.db.Close()
}
