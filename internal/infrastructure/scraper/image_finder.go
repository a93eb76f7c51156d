package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"EnvNewsPipeline/internal/ports"
)

// strategy pairs a selector with the attribute carrying the image URL.
type strategy struct {
	selector string
	attr     string
}

// Ordered from most to least specific. The first strategy producing an
// acceptable candidate wins; later strategies are not consulted.
var strategies = []strategy{
	{selector: `img[data-src]`, attr: "data-src"},
	{selector: `div[class*="img-container"] img`, attr: "src"},
	{selector: `figure img`, attr: "src"},
	{selector: `img[src*="i.guim.co.uk"]`, attr: "src"},
	{selector: `img[alt]`, attr: "src"},
}

var rasterExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// ImageFinder scrapes article pages for a representative raster image.
type ImageFinder struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

var _ ports.ImageFinder = (*ImageFinder)(nil)

// NewImageFinder wires an HTTP client; timeout defaults to 10s.
func NewImageFinder(client *http.Client, userAgent string, timeout time.Duration, log *slog.Logger) *ImageFinder {
	if client == nil {
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &ImageFinder{client: client, userAgent: userAgent, logger: log}
}

// FindImage returns the first acceptable image URL on the page, or "" when
// none is found. Fetch and parse failures also yield "" with a nil error:
// a missing image is a degraded result, not a fault.
func (f *ImageFinder) FindImage(ctx context.Context, pageURL string) (string, error) {
	doc, err := f.fetchDocument(ctx, pageURL)
	if err != nil {
		f.warn("image scrape failed", "url", pageURL, "error", err)
		return "", nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		f.warn("unparsable page url", "url", pageURL, "error", err)
		return "", nil
	}

	for _, s := range strategies {
		if found := firstCandidate(doc, s, base); found != "" {
			return found, nil
		}
	}

	return "", nil
}

func firstCandidate(doc *goquery.Document, s strategy, base *url.URL) string {
	found := ""
	doc.Find(s.selector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		raw, ok := sel.Attr(s.attr)
		if !ok {
			return true
		}

		candidate := absoluteURL(base, strings.TrimSpace(raw))
		if candidate == "" || !isRasterImage(candidate) {
			return true
		}

		found = candidate
		return false
	})
	return found
}

func (f *ImageFinder) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

// absoluteURL resolves protocol-relative and root-relative references against
// the article page; anything else must already be absolute.
func absoluteURL(base *url.URL, raw string) string {
	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(raw, "//"):
		return base.Scheme + ":" + raw
	case strings.HasPrefix(raw, "/"):
		return base.Scheme + "://" + base.Host + raw
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return raw
	default:
		return ""
	}
}

func isRasterImage(candidate string) bool {
	parsed, err := url.Parse(candidate)
	if err != nil {
		return false
	}

	path := strings.ToLower(parsed.Path)
	for _, ext := range rasterExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (f *ImageFinder) warn(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}
