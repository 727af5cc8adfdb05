// Package validate checks and normalizes user-supplied repository URLs,
// pagination parameters, and display text.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/issuelens/issuelens/internal/models"
)

const (
	// MaxPerPage is the GitHub API's issues-per-page ceiling.
	MaxPerPage = 100
	// DefaultPerPage is used when the caller supplies no usable value.
	DefaultPerPage = 10
	// MaxPage bounds how deep pagination may reach.
	MaxPage = 1000
)

var repoURLRE = regexp.MustCompile(`^https://github\.com/[^/\s]+/[^/\s]+/?$`)

// RepoURL reports whether rawURL is a valid GitHub repository URL of the
// form https://github.com/<owner>/<repo>.
func RepoURL(rawURL string) bool {
	rawURL = strings.TrimSpace(rawURL)
	if !repoURLRE.MatchString(rawURL) {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	return parsed.Scheme == "https" && parsed.Host == "github.com" && len(segments) == 2
}

// NormalizeRepoURL trims trailing slashes and upgrades http to https.
// Invalid URLs are returned unchanged for the caller to reject.
func NormalizeRepoURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if strings.HasPrefix(rawURL, "http://") {
		rawURL = "https://" + strings.TrimPrefix(rawURL, "http://")
	}
	if !RepoURL(rawURL) {
		return rawURL
	}
	return strings.TrimRight(rawURL, "/")
}

// ExtractRepo returns the owner and repository name from a GitHub repository URL.
func ExtractRepo(rawURL string) (owner, repo string, err error) {
	rawURL = NormalizeRepoURL(rawURL)
	if !RepoURL(rawURL) {
		return "", "", fmt.Errorf("invalid GitHub repository URL: %s", rawURL)
	}

	path := strings.TrimRight(rawURL[len("https://github.com/"):], "/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" || parts[0] == "." || parts[1] == "." {
		return "", "", fmt.Errorf("invalid GitHub repository URL: %s", rawURL)
	}
	return parts[0], parts[1], nil
}

// ClampPagination normalizes pagination parameters: page is forced into
// [1, MaxPage], perPage into [1, MaxPerPage] with negatives falling back to
// the default.
func ClampPagination(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}

	switch {
	case perPage < 0:
		perPage = DefaultPerPage
	case perPage == 0:
		perPage = DefaultPerPage
	case perPage > MaxPerPage:
		perPage = MaxPerPage
	}
	return page, perPage
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// SanitizeText strips control characters (keeping tabs and newlines) and
// escapes HTML metacharacters so issue text is safe to display.
func SanitizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r >= 32 || r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(htmlEscaper.Replace(b.String()))
}

// IssuePayload reports whether an issue decoded from the API carries the
// fields the pipeline relies on.
func IssuePayload(issue models.Issue) bool {
	if issue.Number <= 0 {
		return false
	}
	if strings.TrimSpace(issue.Title) == "" {
		return false
	}
	if issue.State != "open" && issue.State != "closed" {
		return false
	}
	if !strings.HasPrefix(issue.HTMLURL, "https://") {
		return false
	}
	if issue.CreatedAt == "" || issue.UpdatedAt == "" {
		return false
	}
	return true
}
