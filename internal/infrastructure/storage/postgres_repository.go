package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"EnvNewsPipeline/internal/domain"
	"EnvNewsPipeline/internal/ports"
)

const (
	tableName = "articles"

	pqDuplicateColumn = "42701"
)

var requiredColumns = []string{
	"id", "url", "publish_date", "extracted_date",
	"headline", "body", "section", "source",
}

var enrichmentColumns = []string{"image_url", "ai_summary"}

var indexes = []struct {
	name   string
	column string
}{
	{name: "idx_articles_publish_date", column: "publish_date"},
	{name: "idx_articles_section", column: "section"},
	{name: "idx_articles_url", column: "url"},
}

// PostgresRepository persists normalized articles into Postgres.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	logger  *slog.Logger
}

var _ ports.ArticleStore = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB, log *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		logger:  log,
	}
}

// EnsureSchema verifies the articles table and its required columns, adds the
// enrichment columns when absent, and creates the query indexes. A missing
// table or required column is fatal; an already-present enrichment column or
// index is not.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	var regclass sql.NullString
	if err := r.db.QueryRowContext(ctx, `SELECT to_regclass($1)`, tableName).Scan(&regclass); err != nil {
		return fmt.Errorf("check table: %w", err)
	}
	if !regclass.Valid {
		return domain.ErrMissingTable
	}

	columns, err := r.columnSet(ctx)
	if err != nil {
		return err
	}

	for _, column := range requiredColumns {
		if !columns[column] {
			return fmt.Errorf("table %s is missing required column %s", tableName, column)
		}
	}

	for _, column := range enrichmentColumns {
		if columns[column] {
			continue
		}
		stmt := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s TEXT`, tableName, column)
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			if isDuplicateColumn(err) {
				continue
			}
			return fmt.Errorf("add column %s: %w", column, err)
		}
		r.info("enrichment column added", "column", column)
	}

	for _, idx := range indexes {
		stmt := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (%s)`, idx.name, tableName, idx.column)
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}

	return nil
}

// EnsureWriteDefaults installs the generated-id default and the updated_at
// refresh trigger. The caller treats any failure here as a warning.
func (r *PostgresRepository) EnsureWriteDefaults(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
		fmt.Sprintf(`ALTER TABLE %s ALTER COLUMN id SET DEFAULT gen_random_uuid()`, tableName),
		`CREATE OR REPLACE FUNCTION refresh_updated_at() RETURNS trigger AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ LANGUAGE plpgsql`,
		fmt.Sprintf(`DROP TRIGGER IF EXISTS trg_articles_updated_at ON %s`, tableName),
		fmt.Sprintf(`CREATE TRIGGER trg_articles_updated_at BEFORE UPDATE ON %s
FOR EACH ROW EXECUTE FUNCTION refresh_updated_at()`, tableName),
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("write defaults: %w", err)
		}
	}

	return nil
}

// Upsert inserts the article or refreshes the existing row keyed by URL. The
// row id and the first-seen publish date are never overwritten.
func (r *PostgresRepository) Upsert(ctx context.Context, article domain.Article) error {
	query, args, err := r.builder.
		Insert(tableName).
		Columns("url", "publish_date", "extracted_date", "headline",
			"body", "section", "source", "image_url", "ai_summary").
		Values(
			article.URL,
			nullTime(article.PublishDate),
			article.ExtractedDate,
			article.Headline,
			article.Body,
			article.Section,
			article.Source,
			nullString(article.ImageURL),
			nullString(article.AISummary),
		).
		Suffix(`ON CONFLICT (url) DO UPDATE SET
            extracted_date = EXCLUDED.extracted_date,
            headline = EXCLUDED.headline,
            body = EXCLUDED.body,
            section = EXCLUDED.section,
            image_url = EXCLUDED.image_url,
            ai_summary = EXCLUDED.ai_summary,
            updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert article: %w", err)
	}

	return nil
}

// QualityReport runs the post-load diagnostics for the given extraction day.
func (r *PostgresRepository) QualityReport(ctx context.Context, day time.Time) (domain.QualityReport, error) {
	var report domain.QualityReport

	dayExpr := sq.Expr("extracted_date::date = ?::date", day)

	total, err := r.countWhere(ctx, dayExpr)
	if err != nil {
		return domain.QualityReport{}, err
	}
	report.TotalToday = total

	duplicates, err := r.duplicateURLCount(ctx, day)
	if err != nil {
		return domain.QualityReport{}, err
	}
	report.DuplicateURLs = duplicates

	missing, err := r.countWhere(ctx, sq.And{
		dayExpr,
		sq.Expr("(headline IS NULL OR headline = '' OR body IS NULL OR body = '')"),
	})
	if err != nil {
		return domain.QualityReport{}, err
	}
	report.MissingFields = missing

	withImage, err := r.countWhere(ctx, sq.And{dayExpr, sq.Expr("image_url IS NOT NULL")})
	if err != nil {
		return domain.QualityReport{}, err
	}

	withSummary, err := r.countWhere(ctx, sq.And{dayExpr, sq.Expr("ai_summary IS NOT NULL")})
	if err != nil {
		return domain.QualityReport{}, err
	}

	if total > 0 {
		report.ImageCoverage = float64(withImage) / float64(total) * 100
		report.SummaryCoverage = float64(withSummary) / float64(total) * 100
	}

	return report, nil
}

func (r *PostgresRepository) duplicateURLCount(ctx context.Context, day time.Time) (int, error) {
	inner := r.builder.
		Select("url").
		From(tableName).
		Where(sq.Expr("extracted_date::date = ?::date", day)).
		GroupBy("url").
		Having("COUNT(*) > 1")

	query, args, err := r.builder.
		Select("COUNT(*)").
		FromSelect(inner, "duplicated").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build duplicate query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count duplicates: %w", err)
	}

	return count, nil
}

func (r *PostgresRepository) countWhere(ctx context.Context, pred interface{}) (int, error) {
	query, args, err := r.builder.
		Select("COUNT(*)").
		From(tableName).
		Where(pred).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}

	return count, nil
}

func (r *PostgresRepository) columnSet(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT column_name FROM information_schema.columns WHERE table_name = $1`, tableName)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}

	columns := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan column name: %w", err)
		}
		columns[name] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return columns, nil
}

func (r *PostgresRepository) info(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Info(msg, args...)
	}
}

func isDuplicateColumn(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqDuplicateColumn
	}
	return false
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}
