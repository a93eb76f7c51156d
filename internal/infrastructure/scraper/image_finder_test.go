package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func newFinder(server *httptest.Server) *ImageFinder {
	return NewImageFinder(server.Client(), "test-agent", 0, nil)
}

func TestFindImagePrefersLazyAttribute(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<html><body>
		  <figure><img src="https://cdn.example.org/figure.jpg" alt="figure"></figure>
		  <img data-src="https://cdn.example.org/lazy.png" alt="lazy">
		</body></html>`))
	}))
	defer server.Close()

	found, err := newFinder(server).FindImage(context.Background(), server.URL+"/article")
	if err != nil {
		t.Fatalf("FindImage error: %v", err)
	}
	if found != "https://cdn.example.org/lazy.png" {
		t.Fatalf("expected lazy image to win, got %s", found)
	}
}

func TestFindImageFallsThroughStrategies(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<html><body>
		  <img src="https://cdn.example.org/plain.gif" alt="animated">
		  <img src="https://cdn.example.org/tagged.webp" alt="tagged">
		</body></html>`))
	}))
	defer server.Close()

	found, err := newFinder(server).FindImage(context.Background(), server.URL+"/article")
	if err != nil {
		t.Fatalf("FindImage error: %v", err)
	}
	if found != "https://cdn.example.org/tagged.webp" {
		t.Fatalf("expected alt-tagged webp, got %s", found)
	}
}

func TestFindImageResolvesRelativeURLs(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><img data-src="/media/hero.jpeg" alt="hero"></body></html>`))
	}))
	defer server.Close()

	found, err := newFinder(server).FindImage(context.Background(), server.URL+"/article")
	if err != nil {
		t.Fatalf("FindImage error: %v", err)
	}

	parsed, err := url.Parse(found)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if parsed.Path != "/media/hero.jpeg" {
		t.Fatalf("unexpected path: %s", parsed.Path)
	}
	if !strings.HasPrefix(found, server.URL) {
		t.Fatalf("expected absolute URL on page host, got %s", found)
	}
}

func TestFindImageRejectsNonRasterFormats(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<html><body>
		  <img data-src="https://cdn.example.org/vector.svg" alt="vector">
		  <figure><img src="https://cdn.example.org/clip.mp4"></figure>
		</body></html>`))
	}))
	defer server.Close()

	found, err := newFinder(server).FindImage(context.Background(), server.URL+"/article")
	if err != nil {
		t.Fatalf("FindImage error: %v", err)
	}
	if found != "" {
		t.Fatalf("expected no acceptable image, got %s", found)
	}
}

func TestFindImageFetchFailureIsNotAnError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	found, err := newFinder(server).FindImage(context.Background(), server.URL+"/article")
	if err != nil {
		t.Fatalf("expected nil error on fetch failure, got %v", err)
	}
	if found != "" {
		t.Fatalf("expected empty result, got %s", found)
	}
}

func TestAbsoluteURL(t *testing.T) {
	t.Parallel()

	base, _ := url.Parse("https://www.theguardian.com/environment/2026/mar/13/artic")

	cases := []struct {
		raw  string
		want string
	}{
		{"//i.guim.co.uk/img/media/pic.jpg", "https://i.guim.co.uk/img/media/pic.jpg"},
		{"/img/media/pic.jpg", "https://www.theguardian.com/img/media/pic.jpg"},
		{"https://i.guim.co.uk/pic.jpg", "https://i.guim.co.uk/pic.jpg"},
		{"data:image/png;base64,xyz", ""},
		{"", ""},
	}

	for _, tc := range cases {
		if got := absoluteURL(base, tc.raw); got != tc.want {
			t.Fatalf("absoluteURL(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestIsRasterImageIgnoresQueryString(t *testing.T) {
	t.Parallel()

	if !isRasterImage("https://i.guim.co.uk/pic.jpg?width=620&quality=85") {
		t.Fatal("expected jpg with query string to be accepted")
	}
	if isRasterImage("https://i.guim.co.uk/pic?format=jpg") {
		t.Fatal("expected extension-less URL to be rejected")
	}
}

func TestFirstCandidateSkipsUnusableMatches(t *testing.T) {
	t.Parallel()

	html := `
	<html><body>
	  <img data-src="https://cdn.example.org/broken.svg" alt="first">
	  <img data-src="https://cdn.example.org/good.jpg" alt="second">
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	base, _ := url.Parse("https://example.org/article")
	got := firstCandidate(doc, strategies[0], base)
	if got != "https://cdn.example.org/good.jpg" {
		t.Fatalf("expected second candidate within strategy, got %s", got)
	}
}
