package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"EnvNewsPipeline/internal/domain"
	"EnvNewsPipeline/internal/ports"
)

// EnricherOptions bounds the best-effort enrichment stage.
type EnricherOptions struct {
	MinBodyChars   int
	MaxPromptChars int
	SummaryDelay   time.Duration
	ArticleDelay   time.Duration
}

// PipelineDeps wires all driven adapters into the ETL pipeline.
type PipelineDeps struct {
	Extractor   ports.ArticleExtractor
	ImageFinder ports.ImageFinder
	Summarizer  ports.Summarizer
	Store       ports.ArticleStore
	Options     EnricherOptions
	Logger      *slog.Logger
}

// Pipeline implements the daily ETL workflow: verify schema, extract,
// normalize, enrich, load, quality-check. Each stage fully consumes the
// previous stage's output before the next one starts.
type Pipeline struct {
	extractor   ports.ArticleExtractor
	imageFinder ports.ImageFinder
	summarizer  ports.Summarizer
	store       ports.ArticleStore
	opts        EnricherOptions
	logger      *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		extractor:   deps.Extractor,
		imageFinder: deps.ImageFinder,
		summarizer:  deps.Summarizer,
		store:       deps.Store,
		opts:        deps.Options,
		logger:      deps.Logger,
	}
}

// Run executes one full pipeline pass for the given trigger time. The date
// window covers yesterday and today inclusive. Only fatal-tier failures are
// returned; degraded records are logged and defaulted inside their stage.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (domain.LoadResult, error) {
	if p.extractor == nil {
		return domain.LoadResult{}, fmt.Errorf("extractor is not configured")
	}

	log := p.log().With("run_id", uuid.NewString())

	if p.store != nil {
		if err := p.store.EnsureSchema(ctx); err != nil {
			return domain.LoadResult{}, fmt.Errorf("verify schema: %w", err)
		}
	}

	window := domain.DateWindow{From: now.AddDate(0, 0, -1), To: now}
	envelope, err := p.extractor.Extract(ctx, window)
	if err != nil {
		return domain.LoadResult{}, fmt.Errorf("extract articles: %w", err)
	}

	articles, err := Normalize(envelope, now, log)
	if err != nil {
		return domain.LoadResult{}, fmt.Errorf("normalize articles: %w", err)
	}
	log.Info("articles normalized", "count", len(articles))

	enriched := p.enrich(ctx, log, articles)

	result := p.load(ctx, log, enriched)

	p.qualityCheck(ctx, log, now)

	return result, nil
}

func (p *Pipeline) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}
