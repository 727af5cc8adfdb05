// Package github is a minimal client for the GitHub REST API covering issue
// listing, repository metadata, and rate-limit inspection.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/issuelens/issuelens/internal/models"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second
	acceptHeader   = "application/vnd.github.v3+json"
	userAgent      = "issuelens/1.0"

	// maxPerPage is the API's issues-per-page ceiling.
	maxPerPage = 100
)

// ErrRepositoryNotFound is returned for repositories that do not exist or are private.
var ErrRepositoryNotFound = errors.New("repository not found or is private")

// ErrForbidden is returned when access is denied for reasons other than rate limiting.
var ErrForbidden = errors.New("access forbidden: repository may be private or token invalid")

// RateLimitError is returned when the API rate limit is exhausted.
type RateLimitError struct {
	// Reset is the X-RateLimit-Reset header value (Unix seconds), or
	// "unknown" when absent.
	Reset string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("GitHub API rate limit exceeded, resets at %s", e.Reset)
}

// APIError is returned for unexpected HTTP statuses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error: %d - %s", e.StatusCode, e.Body)
}

// IssuesPage is one page of a repository's issues, pull requests excluded.
type IssuesPage struct {
	Issues        []models.Issue
	HasNext       bool
	TotalCount    int
	RateRemaining string
	RateReset     string
}

// Client talks to the GitHub REST API. A zero token is allowed; requests are
// then unauthenticated and subject to much lower rate limits.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different API root (used in tests).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithClientLogger sets the logger for request reporting.
func WithClientLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a GitHub API client authenticating with token (may be empty).
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// issuePayload wraps models.Issue with the pull_request marker GitHub uses to
// distinguish PRs in the issues listing.
type issuePayload struct {
	models.Issue
	PullRequest json.RawMessage `json:"pull_request,omitempty"`
}

// RepositoryIssues fetches one page of issues for owner/repo, newest-updated
// first, both open and closed. Pull requests are filtered out. perPage is
// capped at 100.
func (c *Client) RepositoryIssues(ctx context.Context, owner, repo string, page, perPage int) (*IssuesPage, error) {
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/issues", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))
	query := url.Values{
		"state":     {"all"},
		"page":      {strconv.Itoa(page)},
		"per_page":  {strconv.Itoa(perPage)},
		"sort":      {"updated"},
		"direction": {"desc"},
	}

	c.logger.Info("fetching issues",
		zap.String("owner", owner),
		zap.String("repo", repo),
		zap.Int("page", page),
	)

	resp, err := c.doGet(ctx, endpoint+"?"+query.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var payloads []issuePayload
	if err := json.NewDecoder(resp.Body).Decode(&payloads); err != nil {
		return nil, fmt.Errorf("failed to decode issues response: %w", err)
	}

	issues := make([]models.Issue, 0, len(payloads))
	for _, p := range payloads {
		// The issues endpoint also lists pull requests; skip them.
		if len(p.PullRequest) > 0 {
			continue
		}
		issues = append(issues, p.Issue)
	}

	result := &IssuesPage{
		Issues:        issues,
		HasNext:       linkHasNext(resp.Header.Get("Link")),
		RateRemaining: resp.Header.Get("X-RateLimit-Remaining"),
		RateReset:     resp.Header.Get("X-RateLimit-Reset"),
	}

	// Total count comes from repository metadata; its absence is not fatal.
	if repository, err := c.Repository(ctx, owner, repo); err == nil {
		result.TotalCount = repository.OpenIssues
	} else {
		c.logger.Warn("could not fetch issue count", zap.Error(err))
	}

	c.logger.Info("fetched issues",
		zap.String("owner", owner),
		zap.String("repo", repo),
		zap.Int("count", len(issues)),
	)
	return result, nil
}

// Repository fetches repository metadata for owner/repo.
func (c *Client) Repository(ctx context.Context, owner, repo string) (*models.Repository, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, url.PathEscape(owner), url.PathEscape(repo))

	resp, err := c.doGet(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var payload struct {
		Name     string `json:"name"`
		FullName string `json:"full_name"`
		HTMLURL  string `json:"html_url"`
		Owner    struct {
			Login string `json:"login"`
		} `json:"owner"`
		OpenIssues int `json:"open_issues_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode repository response: %w", err)
	}

	return &models.Repository{
		Owner:      payload.Owner.Login,
		Name:       payload.Name,
		URL:        payload.HTMLURL,
		FullName:   payload.FullName,
		OpenIssues: payload.OpenIssues,
	}, nil
}

// CheckHealth reports whether the API is reachable.
func (c *Client) CheckHealth(ctx context.Context) bool {
	resp, err := c.doGet(ctx, c.baseURL+"/rate_limit")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// RateLimit returns the decoded /rate_limit response.
func (c *Client) RateLimit(ctx context.Context) (map[string]any, error) {
	resp, err := c.doGet(ctx, c.baseURL+"/rate_limit")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode rate limit response: %w", err)
	}
	return payload, nil
}

func (c *Client) doGet(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GitHub API request failed: %w", err)
	}
	return resp, nil
}

// checkStatus maps non-200 responses to typed errors and drains the body for
// error reporting.
func (c *Client) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrRepositoryNotFound
	case resp.StatusCode == http.StatusForbidden:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			reset := resp.Header.Get("X-RateLimit-Reset")
			if reset == "" {
				reset = "unknown"
			}
			return &RateLimitError{Reset: reset}
		}
		return ErrForbidden
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
}

// linkHasNext reports whether a GitHub Link header advertises a next page.
func linkHasNext(header string) bool {
	if header == "" {
		return false
	}
	for _, link := range strings.Split(header, ",") {
		parts := strings.Split(strings.TrimSpace(link), ";")
		if len(parts) != 2 {
			continue
		}
		rel := strings.TrimSpace(parts[1])
		rel = strings.TrimPrefix(rel, "rel=")
		rel = strings.Trim(rel, `"`)
		if rel == "next" {
			return true
		}
	}
	return false
}
