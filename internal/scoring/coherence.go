package scoring

import "strings"

// Marker phrase lists for coherence heuristics. Lowercase only; matching is
// substring containment over the lowercased text.
var (
	beginningIndicators = []string{
		"was born", "grew up", "began", "started", "originally",
		"in the beginning", "at first",
	}

	endingIndicators = []string{
		"in the end", "eventually", "finally",
		"now", "today", "currently",
	}

	transitionWords = []string{
		"then", "after", "next", "meanwhile",
		"suddenly", "eventually", "later", "however",
	}

	storyTransitionWords = []string{
		"then", "after", "next", "meanwhile",
		"suddenly", "later", "eventually",
		"without warning", "in response", "as they continued",
	}

	actionVerbs = []string{
		"ran", "fought", "escaped", "jumped", "attacked",
		"hid", "chased", "explored", "battled", "discovered",
	}

	nonSequiturPhrases = []string{
		"but then suddenly without reason",
		"for no reason",
		"randomly",
		"out of nowhere",
	}

	storyNonSequiturPhrases = []string{
		"for no reason", "out of nowhere",
		"but suddenly without explanation",
		"but then suddenly with no reason",
	}
)

// edgeWindow is how many characters at each end of the text are scanned for
// beginning/ending structure indicators.
const edgeWindow = 250

// SentenceCoherence scores how much the text reads like a structured
// narrative: a baseline for having at least three sentences, bonuses for
// beginning/ending structure and transition words, penalties for choppy
// sentence openers and non-sequitur phrases.
func SentenceCoherence(text string) float64 {
	textLower := strings.ToLower(text)

	sentences := SplitSentences(text)
	numSentences := len(sentences)

	// Too short for coherence to be strong
	if numSentences < 3 {
		return 0.2
	}

	score := 0.4 // baseline

	head, tail := edgeSlices(textLower)
	if containsAnyOf(head, beginningIndicators) {
		score += 0.15
	}
	if containsAnyOf(tail, endingIndicators) {
		score += 0.15
	}

	transitions := CountContained(textLower, transitionWords)
	if transitions >= 2 {
		score += 0.15
	} else if transitions == 1 {
		score += 0.10
	}

	if choppyStartRatio(sentences) > 0.3 {
		score -= 0.1
	}

	if ContainsAny(textLower, nonSequiturPhrases) {
		score -= 0.1
	}

	return clamp01(score)
}

// StoryCoherence is the adventure-story variant of SentenceCoherence with
// stronger transition weighting and an action-verb density bonus. Texts under
// 30 characters get a fixed low floor.
func StoryCoherence(text string) float64 {
	if len(strings.TrimSpace(text)) < 30 {
		return 0.1
	}

	textLower := strings.ToLower(text)

	sentences := SplitSentences(text)
	numSentences := len(sentences)

	if numSentences < 3 {
		return 0.2
	}

	score := 0.4 // baseline

	transitions := CountContained(textLower, storyTransitionWords)
	switch {
	case transitions >= 3:
		score += 0.25
	case transitions == 2:
		score += 0.18
	case transitions == 1:
		score += 0.10
	}

	actions := CountContained(textLower, actionVerbs)
	if actions >= 3 {
		score += 0.20
	} else if actions >= 1 {
		score += 0.10
	}

	ratio := choppyStartRatio(sentences)
	if ratio > 0.3 {
		score -= 0.12
	} else if ratio > 0.2 {
		score -= 0.08
	}

	if ContainsAny(textLower, storyNonSequiturPhrases) {
		score -= 0.10
	}

	return clamp01(score)
}

func edgeSlices(textLower string) (head, tail string) {
	runes := []rune(textLower)
	if len(runes) <= edgeWindow {
		return textLower, textLower
	}
	return string(runes[:edgeWindow]), string(runes[len(runes)-edgeWindow:])
}

func containsAnyOf(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func choppyStartRatio(sentences []string) float64 {
	if len(sentences) == 0 {
		return 0.0
	}
	choppy := 0
	for _, s := range sentences {
		lower := strings.ToLower(s)
		if strings.HasPrefix(lower, "and ") || strings.HasPrefix(lower, "but ") || strings.HasPrefix(lower, "so ") {
			choppy++
		}
	}
	return float64(choppy) / float64(len(sentences))
}
