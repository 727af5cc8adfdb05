package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/issuelens/issuelens/internal/cache"
	"github.com/issuelens/issuelens/internal/github"
	"github.com/issuelens/issuelens/internal/summarize"
)

const testIssuesBody = `[
	{
		"number": 12,
		"title": "App crashes on submit",
		"body": "The application crashes when clicking the submit button. This happens on every platform we tested. Restarting the server does not help at all.",
		"state": "open",
		"labels": [{"name": "bug", "color": "d73a4a"}],
		"user": {"login": "reporter", "id": 1},
		"created_at": "2024-01-01T00:00:00Z",
		"updated_at": "2024-01-02T00:00:00Z",
		"html_url": "https://github.com/acme/widgets/issues/12",
		"comments": 3
	},
	{
		"number": 0,
		"title": "",
		"body": "malformed entry that must be dropped",
		"state": "open",
		"created_at": "",
		"updated_at": "",
		"html_url": ""
	}
]`

const testRepoBody = `{
	"name": "widgets",
	"full_name": "acme/widgets",
	"html_url": "https://github.com/acme/widgets",
	"owner": {"login": "acme"},
	"open_issues_count": 7
}`

func newTestAnalyzer(t *testing.T, handler http.Handler) (*Analyzer, *atomic.Int64) {
	t.Helper()

	var issueRequests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/acme/widgets/issues" {
			issueRequests.Add(1)
		}
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	client := github.NewClient("", github.WithBaseURL(server.URL))
	store, err := cache.OpenStore("memory", "")
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	memo := cache.New(store)
	analyzer := New(client, summarize.New(150, 30), memo, WithKeyPrefix("test"))
	return analyzer, &issueRequests
}

func defaultHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/widgets/issues":
			w.Write([]byte(testIssuesBody))
		case "/repos/acme/widgets":
			w.Write([]byte(testRepoBody))
		default:
			t.Errorf("unexpected request path %q", r.URL.Path)
			http.NotFound(w, r)
		}
	})
}

func TestAnalyzeRepository(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t, defaultHandler(t))

	result, err := analyzer.AnalyzeRepository(context.Background(), "https://github.com/acme/widgets", 1, 10)
	if err != nil {
		t.Fatalf("AnalyzeRepository: %v", err)
	}

	if result.Repository.FullName != "acme/widgets" {
		t.Errorf("FullName = %q", result.Repository.FullName)
	}
	if result.Repository.OpenIssues != 7 {
		t.Errorf("OpenIssues = %d, want 7", result.Repository.OpenIssues)
	}
	if result.RequestID == "" {
		t.Error("RequestID is empty")
	}
	if result.CacheHit {
		t.Error("first call should not be a cache hit")
	}
	if result.ProcessingTime < 0 {
		t.Errorf("ProcessingTime = %f", result.ProcessingTime)
	}

	if result.Pagination.CurrentPage != 1 || result.Pagination.PerPage != 10 {
		t.Errorf("pagination = %+v", result.Pagination)
	}
	if result.Pagination.HasPrevious {
		t.Error("page 1 should not have a previous page")
	}

	// The malformed second entry is dropped.
	if len(result.Issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(result.Issues))
	}
	issue := result.Issues[0]
	if issue.Number != 12 || issue.User != "reporter" {
		t.Errorf("unexpected issue %+v", issue)
	}
	if issue.Summary == "" {
		t.Error("summary is empty")
	}
	if len(issue.Labels) != 1 || issue.Labels[0] != "bug" {
		t.Errorf("labels = %v", issue.Labels)
	}
}

func TestAnalyzeRepositoryServesFromCache(t *testing.T) {
	analyzer, issueRequests := newTestAnalyzer(t, defaultHandler(t))
	ctx := context.Background()

	first, err := analyzer.AnalyzeRepository(ctx, "https://github.com/acme/widgets", 1, 10)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := analyzer.AnalyzeRepository(ctx, "https://github.com/acme/widgets", 1, 10)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if !second.CacheHit {
		t.Error("second call should be a cache hit")
	}
	if got := issueRequests.Load(); got != 1 {
		t.Errorf("issue requests = %d, want 1", got)
	}
	if second.RequestID == first.RequestID {
		t.Error("RequestID must be fresh per call")
	}
	if len(second.Issues) != len(first.Issues) {
		t.Errorf("cached issues = %d, want %d", len(second.Issues), len(first.Issues))
	}
}

func TestAnalyzeRepositoryDistinctPagesDistinctEntries(t *testing.T) {
	analyzer, issueRequests := newTestAnalyzer(t, defaultHandler(t))
	ctx := context.Background()

	if _, err := analyzer.AnalyzeRepository(ctx, "https://github.com/acme/widgets", 1, 10); err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if _, err := analyzer.AnalyzeRepository(ctx, "https://github.com/acme/widgets", 2, 10); err != nil {
		t.Fatalf("page 2: %v", err)
	}

	if got := issueRequests.Load(); got != 2 {
		t.Errorf("issue requests = %d, want 2 (different pages must not share a cache entry)", got)
	}
}

func TestAnalyzeRepositoryInvalidURL(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t, defaultHandler(t))

	if _, err := analyzer.AnalyzeRepository(context.Background(), "https://gitlab.com/acme/widgets", 1, 10); err == nil {
		t.Error("AnalyzeRepository should reject a non-GitHub URL")
	}
}

func TestAnalyzeRepositoryNotFound(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := analyzer.AnalyzeRepository(context.Background(), "https://github.com/acme/widgets", 1, 10)
	if !errors.Is(err, github.ErrRepositoryNotFound) {
		t.Errorf("err = %v, want ErrRepositoryNotFound", err)
	}
}

func TestCheckHealth(t *testing.T) {
	analyzer, _ := newTestAnalyzer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resources":{}}`))
	}))

	health := analyzer.CheckHealth(context.Background())
	for _, component := range []string{"github", "summarizer", "cache"} {
		if !health[component] {
			t.Errorf("%s unhealthy", component)
		}
	}
}

func TestCheckHealthReportsSummarizerFault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resources":{}}`))
	}))
	t.Cleanup(server.Close)

	store, err := cache.OpenStore("memory", "")
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	client := github.NewClient("", github.WithBaseURL(server.URL))

	// A length budget too small to hold the ellipsis makes composition fault
	// on any long input, including the health check's fixed text.
	faulty := summarize.New(2, 1)
	analyzer := New(client, faulty, cache.New(store))

	health := analyzer.CheckHealth(context.Background())
	if health["summarizer"] {
		t.Error("faulting summarizer should report unhealthy")
	}
	if !health["github"] || !health["cache"] {
		t.Errorf("unexpected health map %v", health)
	}
}

func TestClearCacheAndStats(t *testing.T) {
	analyzer, issueRequests := newTestAnalyzer(t, defaultHandler(t))
	ctx := context.Background()

	if _, err := analyzer.AnalyzeRepository(ctx, "https://github.com/acme/widgets", 1, 10); err != nil {
		t.Fatalf("AnalyzeRepository: %v", err)
	}
	if !analyzer.ClearCache(ctx) {
		t.Fatal("ClearCache failed")
	}
	if _, err := analyzer.AnalyzeRepository(ctx, "https://github.com/acme/widgets", 1, 10); err != nil {
		t.Fatalf("AnalyzeRepository after clear: %v", err)
	}

	if got := issueRequests.Load(); got != 2 {
		t.Errorf("issue requests = %d, want 2 after cache clear", got)
	}
	stats := analyzer.CacheStats()
	if stats.Hits+stats.Misses == 0 {
		t.Error("stats counters never moved")
	}
}
