package usecase

import (
	"context"
	"log/slog"

	"EnvNewsPipeline/internal/domain"
)

// load upserts each enriched article, isolating per-record failures so one
// bad row never aborts the batch. Each upsert runs in its own implicit
// transaction; rows committed before a failure stay committed.
func (p *Pipeline) load(ctx context.Context, log *slog.Logger, articles []domain.Article) domain.LoadResult {
	var result domain.LoadResult

	if p.store == nil || len(articles) == 0 {
		log.Info("no articles to load")
		return result
	}

	if err := p.store.EnsureWriteDefaults(ctx); err != nil {
		log.Warn("write defaults setup failed", "error", err)
	}

	for _, article := range articles {
		if err := p.store.Upsert(ctx, article); err != nil {
			log.Error("cannot load article", "url", article.URL, "error", err)
			result.Errors++
			continue
		}

		result.Loaded++
		if article.ImageURL != "" {
			result.WithImage++
		}
		if article.AISummary != "" {
			result.WithSummary++
		}
	}

	log.Info("articles loaded",
		"loaded", result.Loaded,
		"errors", result.Errors,
		"with_image", result.WithImage,
		"with_summary", result.WithSummary)

	return result
}
