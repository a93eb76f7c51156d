package guardian

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"EnvNewsPipeline/internal/config"
	"EnvNewsPipeline/internal/domain"
	"EnvNewsPipeline/internal/ports"
)

const (
	searchPath = "/search"
	showFields = "headline,bodyText"

	minPageSize = 20
	maxPageSize = 50

	dateFormat = "2006-01-02"
)

// Client fetches environmental articles from the Guardian content API.
type Client struct {
	endpoint string
	apiKey   string
	section  string
	pageSize int
	client   *http.Client
	logger   *slog.Logger
}

var _ ports.ArticleExtractor = (*Client)(nil)

// NewClient wires an HTTP client; pageSize is clamped into [20, 50].
func NewClient(cfg config.GuardianConfig, client *http.Client, log *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	pageSize := cfg.PageSize
	if pageSize < minPageSize {
		pageSize = minPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		section:  cfg.Section,
		pageSize: pageSize,
		client:   client,
		logger:   log,
	}
}

// Extract issues one paginated search request covering the window and returns
// the raw decoded envelope. Retry on failure is the caller's responsibility.
func (c *Client) Extract(ctx context.Context, window domain.DateWindow) (domain.SearchEnvelope, error) {
	if c.apiKey == "" {
		return domain.SearchEnvelope{}, domain.ErrMissingCredential
	}

	searchURL, err := c.buildSearchURL(window)
	if err != nil {
		return domain.SearchEnvelope{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return domain.SearchEnvelope{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.SearchEnvelope{}, fmt.Errorf("request search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.SearchEnvelope{}, &domain.StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var envelope domain.SearchEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return domain.SearchEnvelope{}, fmt.Errorf("decode search response: %w", err)
	}

	count := 0
	if envelope.Response != nil {
		count = len(envelope.Response.Results)
	}
	c.info("articles extracted",
		"from", window.From.Format(dateFormat),
		"to", window.To.Format(dateFormat),
		"count", count)

	return envelope, nil
}

func (c *Client) buildSearchURL(window domain.DateWindow) (string, error) {
	parsed, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %s: %w", c.endpoint, err)
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/") + searchPath

	query := parsed.Query()
	query.Set("section", c.section)
	query.Set("from-date", window.From.Format(dateFormat))
	query.Set("to-date", window.To.Format(dateFormat))
	query.Set("show-fields", showFields)
	query.Set("api-key", c.apiKey)
	query.Set("page-size", strconv.Itoa(c.pageSize))
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}

func (c *Client) info(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}
