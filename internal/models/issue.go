// Package models defines core data structures for issues, repositories, and analysis results.
package models

// User is the author of an issue as reported by the GitHub API.
type User struct {
	Login     string `json:"login"`
	ID        int64  `json:"id"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// Label is an issue label.
type Label struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description,omitempty"`
}

// Issue is a GitHub issue as returned by the issues listing endpoint.
// Timestamps are kept in the API's RFC 3339 string form; nothing in the
// pipeline does date arithmetic on them.
type Issue struct {
	Number    int     `json:"number"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	State     string  `json:"state"`
	Labels    []Label `json:"labels"`
	User      *User   `json:"user"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
	HTMLURL   string  `json:"html_url"`
	Comments  int     `json:"comments"`
}

// Repository identifies the repository an analysis ran against.
type Repository struct {
	Owner      string `json:"owner"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	FullName   string `json:"full_name"`
	OpenIssues int    `json:"open_issues,omitempty"`
}
