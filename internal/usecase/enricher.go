package usecase

import (
	"context"
	"log/slog"
	"time"

	"EnvNewsPipeline/internal/domain"
)

// enrich augments each article with a scraped image and an optional AI
// summary. Both lookups are best-effort: a failed lookup leaves the field
// empty and the loop moves on, so the output is always 1:1 with the input.
// Articles are processed one at a time with enforced delays to bound the
// request rate against the source site and the generation API.
func (p *Pipeline) enrich(ctx context.Context, log *slog.Logger, articles []domain.Article) []domain.Article {
	if len(articles) == 0 {
		return articles
	}

	enriched := make([]domain.Article, len(articles))
	for i, article := range articles {
		enriched[i] = article

		if p.imageFinder != nil && article.URL != "" {
			imageURL, err := p.imageFinder.FindImage(ctx, article.URL)
			if err != nil {
				log.Warn("image discovery failed", "url", article.URL, "error", err)
			} else if imageURL != "" {
				enriched[i].ImageURL = imageURL
			}
		}

		if p.summarizer != nil && len(article.Body) >= p.opts.MinBodyChars {
			prompt := truncate(article.Body, p.opts.MaxPromptChars)
			summary, err := p.summarizer.Summarize(ctx, article.Headline, prompt)
			if err != nil {
				log.Warn("summarization failed", "url", article.URL, "error", err)
			} else if summary != "" {
				enriched[i].AISummary = summary
			}
			if i < len(articles)-1 {
				sleep(ctx, p.opts.SummaryDelay)
			}
		}

		if i < len(articles)-1 {
			sleep(ctx, p.opts.ArticleDelay)
		}
	}

	log.Info("articles enriched", "count", len(enriched))
	return enriched
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
