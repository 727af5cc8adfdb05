// Package service orchestrates the analysis pipeline: fetch a page of issues
// from GitHub, summarize each issue body, and memoize both the page result and
// the per-issue summaries.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/issuelens/issuelens/internal/cache"
	"github.com/issuelens/issuelens/internal/github"
	"github.com/issuelens/issuelens/internal/models"
	"github.com/issuelens/issuelens/internal/summarize"
	"github.com/issuelens/issuelens/internal/validate"
	"github.com/issuelens/issuelens/pkg/utils"
)

const (
	// defaultBatchSize bounds how many issues are summarized concurrently.
	defaultBatchSize = 5
	// bodyPreviewChars is the cap on the original body carried in results.
	bodyPreviewChars = 500
)

// Analyzer wires the GitHub client, summarizer, and cache into the
// repository analysis operation.
type Analyzer struct {
	github     *github.Client
	summarizer *summarize.Summarizer
	cache      *cache.Cache
	batchSize  int
	ttl        time.Duration
	keyPrefix  string
	logger     *zap.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithBatchSize bounds concurrent summarization.
func WithBatchSize(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.batchSize = n
		}
	}
}

// WithTTL sets the cache lifetime for analysis results and summaries.
func WithTTL(ttl time.Duration) Option {
	return func(a *Analyzer) {
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

// WithKeyPrefix namespaces cache keys, so multiple deployments can share a backend.
func WithKeyPrefix(prefix string) Option {
	return func(a *Analyzer) { a.keyPrefix = prefix }
}

// WithLogger sets the logger for pipeline reporting.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Analyzer over the given components.
func New(client *github.Client, summarizer *summarize.Summarizer, memo *cache.Cache, opts ...Option) *Analyzer {
	a := &Analyzer{
		github:     client,
		summarizer: summarizer,
		cache:      memo,
		batchSize:  defaultBatchSize,
		ttl:        cache.DefaultTTL,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeRepository fetches one page of issues for the repository at repoURL
// and returns them with generated summaries. Page results are memoized; a
// repeated request within the TTL is served from the cache with CacheHit set.
// RequestID and ProcessingTime always describe the current call.
func (a *Analyzer) AnalyzeRepository(ctx context.Context, repoURL string, page, perPage int) (*models.AnalysisResult, error) {
	start := time.Now()

	owner, repo, err := validate.ExtractRepo(repoURL)
	if err != nil {
		return nil, err
	}
	page, perPage = validate.ClampPagination(page, perPage)

	key := cache.BuildKey(a.prefixed("issues"), map[string]any{
		"owner":    owner,
		"repo":     repo,
		"page":     page,
		"per_page": perPage,
	})
	result, hit, err := cache.Memoize(ctx, a.cache, key, a.ttl, func() (*models.AnalysisResult, error) {
		return a.analyze(ctx, owner, repo, page, perPage)
	})
	if err != nil {
		return nil, err
	}

	result.RequestID = uuid.NewString()
	result.CacheHit = hit
	result.ProcessingTime = time.Since(start).Seconds()

	a.logger.Info("analysis complete",
		zap.String("repository", owner+"/"+repo),
		zap.Int("page", page),
		zap.Int("issues", len(result.Issues)),
		zap.Bool("cache_hit", hit),
		zap.Float64("seconds", result.ProcessingTime),
	)
	return result, nil
}

func (a *Analyzer) analyze(ctx context.Context, owner, repo string, page, perPage int) (*models.AnalysisResult, error) {
	issuesPage, err := a.github.RepositoryIssues(ctx, owner, repo, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issues: %w", err)
	}

	valid := make([]models.Issue, 0, len(issuesPage.Issues))
	for _, issue := range issuesPage.Issues {
		if !validate.IssuePayload(issue) {
			a.logger.Warn("dropping malformed issue", zap.Int("number", issue.Number))
			continue
		}
		valid = append(valid, issue)
	}

	summaries := make([]models.SummarizedIssue, len(valid))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.batchSize)
	for i, issue := range valid {
		i, issue := i, issue
		g.Go(func() error {
			summary, err := a.summarizeIssue(gctx, issue)
			if err != nil {
				return err
			}
			summaries[i] = summarizedIssue(issue, summary)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.AnalysisResult{
		Repository: models.Repository{
			Owner:      owner,
			Name:       repo,
			FullName:   owner + "/" + repo,
			URL:        "https://github.com/" + owner + "/" + repo,
			OpenIssues: issuesPage.TotalCount,
		},
		Issues: summaries,
		Pagination: models.Pagination{
			CurrentPage: page,
			PerPage:     perPage,
			HasNext:     issuesPage.HasNext,
			HasPrevious: page > 1,
			TotalCount:  issuesPage.TotalCount,
		},
	}, nil
}

// summarizeIssue memoizes the summary keyed by issue number and last update,
// so an edited issue gets a fresh summary while untouched ones stay cached.
func (a *Analyzer) summarizeIssue(ctx context.Context, issue models.Issue) (string, error) {
	key := cache.BuildKey(a.prefixed("summary"), map[string]any{
		"number":     issue.Number,
		"updated_at": issue.UpdatedAt,
	})
	summary, _, err := cache.Memoize(ctx, a.cache, key, a.ttl, func() (string, error) {
		return a.summarizer.Summarize(issue.Body), nil
	})
	return summary, err
}

func summarizedIssue(issue models.Issue, summary string) models.SummarizedIssue {
	labels := make([]string, 0, len(issue.Labels))
	for _, label := range issue.Labels {
		labels = append(labels, label.Name)
	}
	user := ""
	if issue.User != nil {
		user = issue.User.Login
	}
	return models.SummarizedIssue{
		Number:       issue.Number,
		Title:        validate.SanitizeText(issue.Title),
		OriginalBody: utils.Truncate(issue.Body, bodyPreviewChars),
		Summary:      summary,
		State:        issue.State,
		Labels:       labels,
		CreatedAt:    issue.CreatedAt,
		UpdatedAt:    issue.UpdatedAt,
		HTMLURL:      issue.HTMLURL,
		User:         user,
	}
}

func (a *Analyzer) prefixed(kind string) string {
	if a.keyPrefix == "" {
		return kind
	}
	return a.keyPrefix + ":" + kind
}

// CacheStats exposes the underlying cache counters.
func (a *Analyzer) CacheStats() cache.Stats {
	return a.cache.Stats()
}

// ClearCache drops all cached results and summaries.
func (a *Analyzer) ClearCache(ctx context.Context) bool {
	return a.cache.Clear(ctx)
}

// CheckHealth probes each component and reports per-component status. The
// summarizer is fed a fixed text that must yield a real summary; any fallback
// reason marks it unhealthy.
func (a *Analyzer) CheckHealth(ctx context.Context) map[string]bool {
	composed := a.summarizer.Compose(
		"This is a test issue about a bug in the application that crashes on startup when the user clicks submit.")
	return map[string]bool{
		"github":     a.github.CheckHealth(ctx),
		"summarizer": composed.Reason == summarize.ReasonSummary,
		"cache":      a.cache.CheckHealth(ctx),
	}
}
