package summarize

// Vocabulary holds the fixed word sets consulted by sentence scoring and
// summary expansion. The sets are data, not tunables: scoring behavior is
// frozen, so callers should only swap vocabularies wholesale (e.g. for a
// different issue domain), never edit weights.
type Vocabulary struct {
	// Technical terms that make a sentence more likely to carry the point
	// of an issue. Matched as substrings of the lower-cased sentence.
	Technical []string
	// Query words signalling a question or a requested action.
	Query []string
	// Problem words signalling a defect report.
	Problem []string
}

// DefaultVocabulary returns the vocabulary tuned for GitHub issue text.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Technical: []string{
			"bug", "error", "fix", "issue", "problem", "feature", "enhancement",
			"request", "implement", "add", "remove", "update", "upgrade", "improve",
			"performance", "security", "documentation", "test", "testing", "refactor",
			"api", "ui", "ux", "database", "server", "client", "frontend", "backend",
			"mobile", "web", "desktop", "crash", "freeze", "slow", "fast", "optimize",
		},
		Query: []string{
			"how", "what", "why", "when", "where", "should", "need", "want",
		},
		Problem: []string{
			"error", "bug", "fail", "issue", "problem", "broken",
		},
	}
}
