package ports

import (
	"context"
	"time"

	"EnvNewsPipeline/internal/domain"
)

// ArticleExtractor pulls the raw search payload for a date window.
type ArticleExtractor interface {
	Extract(ctx context.Context, window domain.DateWindow) (domain.SearchEnvelope, error)
}

// ImageFinder locates a representative image on an article page. An empty URL
// with a nil error means no suitable image was found.
type ImageFinder interface {
	FindImage(ctx context.Context, pageURL string) (string, error)
}

// Summarizer produces a short digest of an article body.
type Summarizer interface {
	Summarize(ctx context.Context, headline, body string) (string, error)
}

// ArticleStore persists normalized articles and answers quality queries.
type ArticleStore interface {
	EnsureSchema(ctx context.Context) error
	EnsureWriteDefaults(ctx context.Context) error
	Upsert(ctx context.Context, article domain.Article) error
	QualityReport(ctx context.Context, day time.Time) (domain.QualityReport, error)
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
