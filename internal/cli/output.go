// Package cli provides output formatting for the issuelens command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/issuelens/issuelens/internal/cache"
	"github.com/issuelens/issuelens/internal/models"
	"github.com/issuelens/issuelens/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteAnalysis writes an analysis result to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteAnalysis(w io.Writer, result *models.AnalysisResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		writeAnalysisText(w, result)
		return nil
	}
}

func writeAnalysisText(w io.Writer, result *models.AnalysisResult) {
	source := "live"
	if result.CacheHit {
		source = "cached"
	}
	fmt.Fprintf(w, "\n%s: %d issues on page %d of %d total (%.2fs, %s)\n\n",
		result.Repository.FullName, len(result.Issues), result.Pagination.CurrentPage,
		result.Pagination.TotalCount, result.ProcessingTime, source)

	for i := range result.Issues {
		writeOneIssue(w, &result.Issues[i])
	}

	if result.Pagination.HasNext {
		fmt.Fprintf(w, "More issues available on page %d\n", result.Pagination.CurrentPage+1)
	}
}

func writeOneIssue(w io.Writer, issue *models.SummarizedIssue) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "#%d [%s] %s\n", issue.Number, issue.State, issue.Title)
	if len(issue.Labels) > 0 {
		fmt.Fprintf(w, "Labels: %s\n", strings.Join(issue.Labels, ", "))
	}
	if issue.User != "" {
		fmt.Fprintf(w, "Opened by: %s\n", issue.User)
	}
	fmt.Fprintf(w, "URL: %s\n", issue.HTMLURL)
	fmt.Fprintf(w, "\n%s\n", issue.Summary)
	if issue.OriginalBody != "" {
		fmt.Fprintf(w, "\n> %s\n", utils.Truncate(issue.OriginalBody, 200))
	}
	fmt.Fprintln(w)
}

// WriteStats writes cache hit/miss counters to w in the given format.
func WriteStats(w io.Writer, stats cache.Stats, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	total := stats.Hits + stats.Misses
	rate := 0.0
	if total > 0 {
		rate = float64(stats.Hits) / float64(total) * 100
	}
	fmt.Fprintf(w, "Cache hits: %d\n", stats.Hits)
	fmt.Fprintf(w, "Cache misses: %d\n", stats.Misses)
	fmt.Fprintf(w, "Hit rate: %.1f%%\n", rate)
	fmt.Fprintf(w, "Default TTL: %s\n", stats.DefaultTTL)
	return nil
}

// WriteHealth writes per-component health status to w. It returns true when
// every component is healthy.
func WriteHealth(w io.Writer, health map[string]bool, format OutputFormat) (bool, error) {
	allHealthy := true
	for _, ok := range health {
		if !ok {
			allHealthy = false
		}
	}

	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return allHealthy, enc.Encode(health)
	}

	// Stable order for humans and tests.
	names := make([]string, 0, len(health))
	for name := range health {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		status := "ok"
		if !health[name] {
			status = "FAIL"
		}
		fmt.Fprintf(w, "%-12s %s\n", name, status)
	}
	return allHealthy, nil
}
