package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aptakhin/lala-search/internal/common"
)

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	return NewFetcher("lala-agent-test/1.0", 5*time.Second, common.GetLogger()).(*Fetcher)
}

func TestFetch_InvalidURL(t *testing.T) {
	f := newTestFetcher(t)

	for _, raw := range []string{"not-a-url", "://missing-scheme", "ftp://example.com/x"} {
		result, err := f.Fetch(context.Background(), raw)
		if err != nil {
			t.Fatalf("Fetch(%q) error = %v", raw, err)
		}
		if !result.IsInvalidURL() {
			t.Errorf("Fetch(%q) not classified invalid: %+v", raw, result)
		}
		if result.AllowedByRobots {
			t.Errorf("Fetch(%q) AllowedByRobots = true for invalid URL", raw)
		}
		if result.Content != nil {
			t.Errorf("Fetch(%q) returned content for invalid URL", raw)
		}
	}
}

func TestFetch_HappyPath(t *testing.T) {
	body := `<!doctype html><html><head><title>T</title></head><body>ok</body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("User-Agent"); got != "lala-agent-test/1.0" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Header().Set("X-Robots-Tag", "noindex")
		w.Write([]byte(body))
	}))
	defer server.Close()

	f := newTestFetcher(t)
	result, err := f.Fetch(context.Background(), server.URL+"/page")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if !result.AllowedByRobots {
		t.Error("AllowedByRobots = false, want true (missing robots.txt is permissive)")
	}
	if result.Content == nil || *result.Content != body {
		t.Errorf("Content = %v, want page body", result.Content)
	}
	if result.Error != nil {
		t.Errorf("Error = %q, want nil", *result.Error)
	}
	if result.XRobotsTag == nil || *result.XRobotsTag != "noindex" {
		t.Errorf("XRobotsTag = %v, want noindex", result.XRobotsTag)
	}
}

func TestFetch_RobotsDisallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		w.Write([]byte("should not be fetched"))
	}))
	defer server.Close()

	f := newTestFetcher(t)

	result, err := f.Fetch(context.Background(), server.URL+"/private/page")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if result.AllowedByRobots {
		t.Error("AllowedByRobots = true for disallowed path")
	}
	if result.Content != nil {
		t.Error("Content fetched despite robots denial")
	}

	// Paths outside the disallow rule still fetch.
	allowed, err := f.Fetch(context.Background(), server.URL+"/public")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !allowed.AllowedByRobots || allowed.Content == nil {
		t.Errorf("public path blocked: %+v", allowed)
	}
}

func TestFetch_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	server.Close() // connection refused from here on

	f := newTestFetcher(t)
	result, err := f.Fetch(context.Background(), server.URL+"/page")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	// Unreachable robots.txt is permissive; the page fetch itself fails.
	if !result.AllowedByRobots {
		t.Error("AllowedByRobots = false, want true for network failure")
	}
	if result.Content != nil {
		t.Error("Content set despite network failure")
	}
	if result.Error == nil {
		t.Error("Error = nil, want failure message")
	}
}

func TestFetch_Non2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := newTestFetcher(t)
	result, err := f.Fetch(context.Background(), server.URL+"/broken")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if result.Content != nil {
		t.Error("Content set for 500 response")
	}
	if result.Error == nil {
		t.Error("Error = nil, want status message")
	}
}

func TestFetch_RobotsCached(t *testing.T) {
	robotsHits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsHits++
			w.Write([]byte("User-agent: *\nAllow: /\n"))
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f := newTestFetcher(t)
	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(context.Background(), server.URL+"/page"); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
	}

	if robotsHits != 1 {
		t.Errorf("robots.txt fetched %d times, want 1", robotsHits)
	}
}
