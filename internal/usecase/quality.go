package usecase

import (
	"context"
	"log/slog"
	"time"
)

// qualityCheck logs post-load diagnostics for today's rows. Findings are
// observability only and never fail the run.
func (p *Pipeline) qualityCheck(ctx context.Context, log *slog.Logger, day time.Time) {
	if p.store == nil {
		return
	}

	report, err := p.store.QualityReport(ctx, day)
	if err != nil {
		log.Warn("quality check failed", "error", err)
		return
	}

	if report.DuplicateURLs > 0 {
		log.Warn("duplicate urls detected", "count", report.DuplicateURLs)
	}
	if report.MissingFields > 0 {
		log.Warn("articles with missing headline or body", "count", report.MissingFields)
	}

	log.Info("quality check completed",
		"total_today", report.TotalToday,
		"image_coverage_pct", report.ImageCoverage,
		"summary_coverage_pct", report.SummaryCoverage)
}
