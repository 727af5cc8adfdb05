package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const issuesBody = `[
	{
		"number": 12,
		"title": "App crashes on submit",
		"body": "Clicking submit crashes the app every time.",
		"state": "open",
		"labels": [{"name": "bug", "color": "d73a4a"}],
		"user": {"login": "reporter", "id": 1},
		"created_at": "2024-01-01T00:00:00Z",
		"updated_at": "2024-01-02T00:00:00Z",
		"html_url": "https://github.com/acme/widgets/issues/12",
		"comments": 3
	},
	{
		"number": 13,
		"title": "Add dark mode",
		"body": "A PR, not an issue.",
		"state": "open",
		"created_at": "2024-01-01T00:00:00Z",
		"updated_at": "2024-01-02T00:00:00Z",
		"html_url": "https://github.com/acme/widgets/pull/13",
		"pull_request": {"url": "https://api.github.com/repos/acme/widgets/pulls/13"}
	}
]`

const repoBody = `{
	"name": "widgets",
	"full_name": "acme/widgets",
	"html_url": "https://github.com/acme/widgets",
	"owner": {"login": "acme"},
	"open_issues_count": 42
}`

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("test-token", WithBaseURL(server.URL))
}

func TestRepositoryIssues(t *testing.T) {
	var gotAuth, gotAccept string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/widgets/issues":
			gotAuth = r.Header.Get("Authorization")
			gotAccept = r.Header.Get("Accept")
			if got := r.URL.Query().Get("state"); got != "all" {
				t.Errorf("state = %q, want %q", got, "all")
			}
			if got := r.URL.Query().Get("per_page"); got != "10" {
				t.Errorf("per_page = %q, want %q", got, "10")
			}
			w.Header().Set("Link", `<https://api.github.com/x?page=2>; rel="next", <https://api.github.com/x?page=9>; rel="last"`)
			w.Header().Set("X-RateLimit-Remaining", "4999")
			w.Write([]byte(issuesBody))
		case "/repos/acme/widgets":
			w.Write([]byte(repoBody))
		default:
			t.Errorf("unexpected request path %q", r.URL.Path)
			http.NotFound(w, r)
		}
	}))

	page, err := client.RepositoryIssues(context.Background(), "acme", "widgets", 1, 10)
	if err != nil {
		t.Fatalf("RepositoryIssues: %v", err)
	}

	if gotAuth != "token test-token" {
		t.Errorf("Authorization = %q, want token auth", gotAuth)
	}
	if gotAccept != acceptHeader {
		t.Errorf("Accept = %q, want %q", gotAccept, acceptHeader)
	}

	// The pull request entry is filtered out.
	if len(page.Issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(page.Issues))
	}
	issue := page.Issues[0]
	if issue.Number != 12 || issue.Title != "App crashes on submit" {
		t.Errorf("unexpected issue %+v", issue)
	}
	if issue.User == nil || issue.User.Login != "reporter" {
		t.Errorf("unexpected user %+v", issue.User)
	}
	if len(issue.Labels) != 1 || issue.Labels[0].Name != "bug" {
		t.Errorf("unexpected labels %+v", issue.Labels)
	}

	if !page.HasNext {
		t.Error("HasNext = false, want true from Link header")
	}
	if page.TotalCount != 42 {
		t.Errorf("TotalCount = %d, want 42", page.TotalCount)
	}
	if page.RateRemaining != "4999" {
		t.Errorf("RateRemaining = %q, want %q", page.RateRemaining, "4999")
	}
}

func TestRepositoryIssuesCapsPerPage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/acme/widgets/issues" {
			if got := r.URL.Query().Get("per_page"); got != "100" {
				t.Errorf("per_page = %q, want capped to 100", got)
			}
			w.Write([]byte("[]"))
			return
		}
		w.Write([]byte(repoBody))
	}))

	if _, err := client.RepositoryIssues(context.Background(), "acme", "widgets", 1, 500); err != nil {
		t.Fatalf("RepositoryIssues: %v", err)
	}
}

func TestRepositoryIssuesNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.RepositoryIssues(context.Background(), "acme", "missing", 1, 10)
	if !errors.Is(err, ErrRepositoryNotFound) {
		t.Errorf("err = %v, want ErrRepositoryNotFound", err)
	}
}

func TestRepositoryIssuesRateLimited(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "1700000000")
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := client.RepositoryIssues(context.Background(), "acme", "widgets", 1, 10)
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("err = %v, want RateLimitError", err)
	}
	if rateErr.Reset != "1700000000" {
		t.Errorf("Reset = %q, want %q", rateErr.Reset, "1700000000")
	}
}

func TestRepositoryIssuesForbidden(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := client.RepositoryIssues(context.Background(), "acme", "widgets", 1, 10)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestRepositoryIssuesServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream broke"))
	}))

	_, err := client.RepositoryIssues(context.Background(), "acme", "widgets", 1, 10)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Body != "upstream broke" {
		t.Errorf("unexpected APIError %+v", apiErr)
	}
}

func TestRepository(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/widgets" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(repoBody))
	}))

	repo, err := client.Repository(context.Background(), "acme", "widgets")
	if err != nil {
		t.Fatalf("Repository: %v", err)
	}
	if repo.Owner != "acme" || repo.Name != "widgets" || repo.OpenIssues != 42 {
		t.Errorf("unexpected repository %+v", repo)
	}
}

func TestCheckHealth(t *testing.T) {
	healthy := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"resources":{}}`))
	}))
	if !healthy.CheckHealth(context.Background()) {
		t.Error("healthy API should pass")
	}

	down := NewClient("", WithBaseURL("http://127.0.0.1:1"))
	if down.CheckHealth(context.Background()) {
		t.Error("unreachable API should fail")
	}
}

func TestRateLimit(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rate_limit" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"resources":{"core":{"limit":5000,"remaining":4999}}}`))
	}))

	payload, err := client.RateLimit(context.Background())
	if err != nil {
		t.Fatalf("RateLimit: %v", err)
	}
	if _, ok := payload["resources"]; !ok {
		t.Errorf("payload missing resources: %v", payload)
	}
}

func TestLinkHasNext(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected bool
	}{
		{"empty", "", false},
		{"next present", `<https://api.github.com/x?page=2>; rel="next"`, true},
		{"only last", `<https://api.github.com/x?page=9>; rel="last"`, false},
		{"next among many", `<https://a>; rel="prev", <https://b>; rel="next", <https://c>; rel="last"`, true},
		{"malformed", "garbage", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := linkHasNext(tt.header); got != tt.expected {
				t.Errorf("linkHasNext(%q) = %v, want %v", tt.header, got, tt.expected)
			}
		})
	}
}
