package models

// SummarizedIssue is an issue paired with the generated summary of its body.
type SummarizedIssue struct {
	Number       int      `json:"number"`
	Title        string   `json:"title"`
	OriginalBody string   `json:"original_body"`
	Summary      string   `json:"summary"`
	State        string   `json:"state"`
	Labels       []string `json:"labels"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
	HTMLURL      string   `json:"html_url"`
	User         string   `json:"user"`
}

// Pagination describes the position of a result page within the issue listing.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
	TotalCount  int  `json:"total_count"`
}

// AnalysisResult is the complete outcome of analyzing one page of repository issues.
type AnalysisResult struct {
	RequestID      string            `json:"request_id"`
	Repository     Repository        `json:"repository"`
	Issues         []SummarizedIssue `json:"issues"`
	Pagination     Pagination        `json:"pagination"`
	ProcessingTime float64           `json:"processing_time_seconds"`
	CacheHit       bool              `json:"cache_hit"`
}
