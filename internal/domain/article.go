package domain

import "time"

// Source constant and normalization defaults applied by the pipeline.
const (
	SourceGuardianAPI = "guardian_api"

	PlaceholderHeadline = "No headline available"
	PlaceholderBody     = "No content available"
	DefaultSection      = "environment"
)

// Column limits enforced before persistence.
const (
	MaxURLLen      = 2000
	MaxHeadlineLen = 1000
	MaxSectionLen  = 100
)

// Article is the normalized record the pipeline persists, keyed by URL.
// ImageURL and AISummary are enrichment fields: empty means "not found" or
// "not attempted", never an error signal.
type Article struct {
	URL           string
	PublishDate   *time.Time
	ExtractedDate time.Time
	Headline      string
	Body          string
	Section       string
	Source        string
	ImageURL      string
	AISummary     string
}

// DateWindow bounds an extraction query; both ends are inclusive.
type DateWindow struct {
	From time.Time
	To   time.Time
}

// LoadResult aggregates per-run load outcomes.
type LoadResult struct {
	Loaded      int
	Errors      int
	WithImage   int
	WithSummary int
}

// QualityReport collects post-load diagnostics for one extraction day.
type QualityReport struct {
	TotalToday      int
	DuplicateURLs   int
	MissingFields   int
	ImageCoverage   float64
	SummaryCoverage float64
}
