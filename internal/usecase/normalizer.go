package usecase

import (
	"log/slog"
	"time"
	"unicode/utf8"

	"EnvNewsPipeline/internal/domain"
)

// Normalize converts the raw search payload into persisted-shape articles.
// A malformed envelope is the only fatal condition; individual records always
// degrade to defaults instead of dropping out, so the output length equals the
// number of raw results. An empty result set is a valid outcome, not an error.
func Normalize(envelope domain.SearchEnvelope, extractedAt time.Time, logger *slog.Logger) ([]domain.Article, error) {
	if envelope.Response == nil {
		return nil, domain.ErrMissingEnvelope
	}

	results := envelope.Response.Results
	articles := make([]domain.Article, 0, len(results))
	for _, raw := range results {
		articles = append(articles, normalizeRecord(raw, extractedAt, logger))
	}

	return articles, nil
}

func normalizeRecord(raw domain.RawArticle, extractedAt time.Time, logger *slog.Logger) domain.Article {
	// Placeholders stand in for absent keys only; a present-but-empty value
	// passes through so the post-load quality check can observe it.
	headline := domain.PlaceholderHeadline
	body := domain.PlaceholderBody
	if raw.Fields != nil {
		if raw.Fields.Headline != nil {
			headline = *raw.Fields.Headline
		}
		if raw.Fields.BodyText != nil {
			body = *raw.Fields.BodyText
		}
	}

	section := raw.SectionName
	if section == "" {
		section = domain.DefaultSection
	}

	var publishDate *time.Time
	if raw.WebPublicationDate != "" {
		parsed, err := time.Parse(time.RFC3339, raw.WebPublicationDate)
		if err != nil {
			if logger != nil {
				logger.Warn("cannot parse publication date",
					"article", raw.ID, "value", raw.WebPublicationDate)
			}
		} else {
			// Stored zone-naive: normalize to UTC before dropping the zone.
			utc := parsed.UTC()
			publishDate = &utc
		}
	}

	return domain.Article{
		URL:           truncate(raw.WebURL, domain.MaxURLLen),
		PublishDate:   publishDate,
		ExtractedDate: extractedAt,
		Headline:      truncate(headline, domain.MaxHeadlineLen),
		Body:          body,
		Section:       truncate(section, domain.MaxSectionLen),
		Source:        domain.SourceGuardianAPI,
	}
}

// truncate cuts value to at most max bytes without splitting a multi-byte
// rune, so truncated fields stay valid UTF-8 for a UTF8-encoded database.
func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	for max > 0 && !utf8.RuneStart(value[max]) {
		max--
	}
	return value[:max]
}
