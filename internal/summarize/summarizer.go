package summarize

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Fixed fallback messages. Summarization always returns a string; these stand
// in for a summary when no real one can be produced.
const (
	msgEmptyInput    = "No content available to summarize."
	msgNoSentences   = "Unable to analyze the content structure."
	msgInternalFault = "Unable to generate summary. The issue content may be too complex or contain unsupported formatting."
)

const (
	// minSummarizableWords is the word count below which text is returned
	// unchanged instead of summarized.
	minSummarizableWords = 10
	// expansionSourceWords is the minimum source word count before a
	// too-short summary is expanded with related keywords.
	expansionSourceWords = 20
	// maxSelectedSentences caps how many sentences a summary may contain.
	maxSelectedSentences = 3
	// maxExpansionKeywords caps the keywords appended by expansion.
	maxExpansionKeywords = 3
	// defaultExpansionSlack is how far past the minimum length an expansion
	// may push the summary.
	defaultExpansionSlack = 20
)

// Reason classifies how a Result was produced.
type Reason int

const (
	// ReasonSummary means the text was composed from selected sentences.
	ReasonSummary Reason = iota
	// ReasonShortInput means the input had fewer than 10 words and was
	// returned unchanged after normalization.
	ReasonShortInput
	// ReasonEmptyInput means the input was empty or whitespace-only.
	ReasonEmptyInput
	// ReasonNoSentences means the text had content but no usable sentences.
	ReasonNoSentences
	// ReasonInternalFault means composition hit an unexpected fault and the
	// fixed fallback message was returned instead.
	ReasonInternalFault
)

// String returns a string representation of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonSummary:
		return "summary"
	case ReasonShortInput:
		return "short_input"
	case ReasonEmptyInput:
		return "empty_input"
	case ReasonNoSentences:
		return "no_sentences"
	case ReasonInternalFault:
		return "internal_fault"
	default:
		return "unknown"
	}
}

// Result is the outcome of composing a summary. Text is always non-empty for
// non-empty input; Reason says whether it is a real summary or a fallback.
type Result struct {
	Text   string
	Reason Reason
}

// Summarizer produces extractive summaries under a length budget. It is
// stateless apart from its fixed vocabulary and safe for concurrent use.
type Summarizer struct {
	maxLength int
	minLength int
	slack     int
	vocab     Vocabulary
	logger    *zap.Logger
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithLogger sets the logger used for fault reporting.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Summarizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithVocabulary replaces the default vocabulary.
func WithVocabulary(vocab Vocabulary) Option {
	return func(s *Summarizer) { s.vocab = vocab }
}

// WithExpansionSlack overrides how far past minLength an expanded summary may grow.
func WithExpansionSlack(slack int) Option {
	return func(s *Summarizer) { s.slack = slack }
}

// New creates a Summarizer with the given length budget. maxLength and
// minLength are in characters; non-positive values fall back to 150/30.
func New(maxLength, minLength int, opts ...Option) *Summarizer {
	if maxLength <= 0 {
		maxLength = 150
	}
	if minLength <= 0 {
		minLength = 30
	}
	s := &Summarizer{
		maxLength: maxLength,
		minLength: minLength,
		slack:     defaultExpansionSlack,
		vocab:     DefaultVocabulary(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize returns a summary of text, or a fixed fallback message when no
// summary can be produced. It never fails.
func (s *Summarizer) Summarize(text string) string {
	return s.Compose(text).Text
}

// Compose summarizes text and reports how the result was produced. Any
// unexpected fault during composition is converted into the fixed fallback
// message rather than propagated.
func (s *Summarizer) Compose(text string) (result Result) {
	defer func() {
		if cause := recover(); cause != nil {
			s.logger.Error("summary composition failed", zap.Any("cause", cause))
			result = Result{Text: msgInternalFault, Reason: ReasonInternalFault}
		}
	}()

	if strings.TrimSpace(text) == "" {
		return Result{Text: msgEmptyInput, Reason: ReasonEmptyInput}
	}

	normalized := Normalize(text)
	if len(strings.Fields(normalized)) < minSummarizableWords {
		return Result{Text: normalized, Reason: ReasonShortInput}
	}

	draft, ok := s.compose(normalized)
	if !ok {
		return Result{Text: msgNoSentences, Reason: ReasonNoSentences}
	}

	summary := postProcess(draft)
	if utf8.RuneCountInString(summary) < s.minLength && len(strings.Fields(normalized)) > expansionSourceWords {
		summary = s.expand(normalized, summary)
	}

	s.logger.Debug("summary generated",
		zap.Int("summary_chars", len(summary)),
		zap.Int("input_chars", len(normalized)),
	)
	return Result{Text: summary, Reason: ReasonSummary}
}

// compose selects the highest-scoring sentences, restores original order, and
// trims the joined draft to the length budget. Returns false when the text
// yields no usable sentences.
func (s *Summarizer) compose(text string) (string, bool) {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return "", false
	}

	type rankedSentence struct {
		index int
		score float64
	}
	ranked := make([]rankedSentence, len(sentences))
	for i, sentence := range sentences {
		ranked[i] = rankedSentence{index: i, score: ScoreSentence(sentence, text, s.vocab)}
	}

	// Score descending, ties broken by earlier original position.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].index < ranked[j].index
	})

	count := len(sentences) / 3
	if count < 1 {
		count = 1
	}
	if count > maxSelectedSentences {
		count = maxSelectedSentences
	}

	selected := make([]int, count)
	for i := 0; i < count; i++ {
		selected[i] = ranked[i].index
	}
	sort.Ints(selected)

	parts := make([]string, count)
	for i, idx := range selected {
		parts[i] = sentences[idx]
	}
	summary := strings.Join(parts, " ")

	// Length budget is in characters; slice runes so multibyte text is never
	// cut mid-character.
	if runes := []rune(summary); len(runes) > s.maxLength {
		summary = string(runes[:s.maxLength-3]) + "..."
	}
	return summary, true
}

// postProcess collapses whitespace, capitalizes the first character, and
// ensures terminal punctuation.
func postProcess(summary string) string {
	summary = strings.Join(strings.Fields(summary), " ")
	if summary == "" {
		return summary
	}

	runes := []rune(summary)
	if unicode.IsLetter(runes[0]) && unicode.IsLower(runes[0]) {
		runes[0] = unicode.ToUpper(runes[0])
		summary = string(runes)
	}

	switch summary[len(summary)-1] {
	case '.', '!', '?':
	default:
		summary += "."
	}
	return summary
}

// expand appends up to three technical keywords present in the source but
// missing from the summary, provided the addition keeps the summary within
// minLength plus the configured slack.
func (s *Summarizer) expand(text, summary string) string {
	sourceWords := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(text)) {
		sourceWords[word] = struct{}{}
	}
	summaryLower := strings.ToLower(summary)

	var related []string
	for _, keyword := range s.vocab.Technical {
		if _, ok := sourceWords[keyword]; !ok {
			continue
		}
		if strings.Contains(summaryLower, keyword) {
			continue
		}
		related = append(related, keyword)
		if len(related) >= maxExpansionKeywords {
			break
		}
	}
	if len(related) == 0 {
		return summary
	}

	addition := " Related to: " + strings.Join(related, ", ") + "."
	if utf8.RuneCountInString(summary)+len(addition) <= s.minLength+s.slack {
		summary += addition
	}
	return summary
}
