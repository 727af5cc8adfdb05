package summarize

import (
	"regexp"
	"strings"
)

// Scoring weights. These are a frozen behavioral contract: downstream
// consumers rely on summaries staying stable across releases, so the values
// must not be tuned.
const (
	idealLengthBonus = 1.0
	longLengthBonus  = 0.5
	technicalBonus   = 0.5
	positionBonus    = 0.5
	queryBonus       = 0.3
	problemBonus     = 0.4

	// Word-count band that earns the full length bonus.
	idealLengthMin = 5
	idealLengthMax = 20

	// leadWindow is how many characters of the full text count as "the
	// beginning" for the position bonus.
	leadWindow = 200
)

// minSentenceChars drops fragments too short to stand alone as a sentence.
const minSentenceChars = 10

var sentenceSplitRE = regexp.MustCompile(`[.!?]+`)

// SplitSentences breaks normalized text on runs of terminal punctuation and
// returns the trimmed fragments longer than 10 characters, in original order.
func SplitSentences(text string) []string {
	parts := sentenceSplitRE.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if len(part) > minSentenceChars {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// ScoreSentence assigns an additive importance score to a sentence taken from
// fullText. Components are independent and the result has no upper bound:
//
//   - +1.0 for 5-20 words, +0.5 for longer sentences
//   - +0.5 per distinct technical vocabulary term present
//   - +0.5 when the sentence occurs within the first 200 characters of fullText
//   - +0.3 when any query/action word is present
//   - +0.4 when any problem word is present
func ScoreSentence(sentence, fullText string, vocab Vocabulary) float64 {
	score := 0.0
	lower := strings.ToLower(sentence)

	wordCount := len(strings.Fields(sentence))
	switch {
	case wordCount >= idealLengthMin && wordCount <= idealLengthMax:
		score += idealLengthBonus
	case wordCount > idealLengthMax:
		score += longLengthBonus
	}

	for _, term := range vocab.Technical {
		if strings.Contains(lower, term) {
			score += technicalBonus
		}
	}

	lead := fullText
	if len(lead) > leadWindow {
		lead = lead[:leadWindow]
	}
	if strings.Contains(lead, sentence) {
		score += positionBonus
	}

	for _, word := range vocab.Query {
		if strings.Contains(lower, word) {
			score += queryBonus
			break
		}
	}

	for _, word := range vocab.Problem {
		if strings.Contains(lower, word) {
			score += problemBonus
			break
		}
	}

	return score
}
