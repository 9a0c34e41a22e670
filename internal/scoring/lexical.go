// Package scoring provides pure-function text scoring primitives used by the
// narrative evaluators. All scores are normalized to [0,1] and never NaN.
package scoring

import (
	"regexp"
	"strings"
)

var (
	wordRe       = regexp.MustCompile(`[a-zA-Z]+`)
	whitespaceRe = regexp.MustCompile(` +`)
)

// KeywordScore returns a normalized keyword match score for the text.
// Multi-word phrases match on substring containment; single words match only
// on word boundaries so that "rick" never matches "bedrick". The denominator
// floor of 3 keeps short keyword lists from saturating on a single hit.
func KeywordScore(text string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0.0
	}

	textLower := strings.ToLower(text)
	found := 0

	for _, kw := range keywords {
		kw = strings.ToLower(kw)

		if strings.Contains(kw, " ") {
			if strings.Contains(textLower, kw) {
				found++
			}
		} else if matchesWord(textLower, kw) {
			found++
		}
	}

	denom := len(keywords) / 2
	if denom < 3 {
		denom = 3
	}

	return clamp01(float64(found) / float64(denom))
}

// ContainsExact reports whether value appears in text as a whole word or
// phrase. Matching is case-insensitive; an empty value never matches.
func ContainsExact(text, value string) bool {
	if value == "" {
		return false
	}
	return matchesWord(strings.ToLower(text), strings.ToLower(value))
}

func matchesWord(textLower, valueLower string) bool {
	pattern := `\b` + regexp.QuoteMeta(valueLower) + `\b`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(textLower)
}

// ContainsAny reports whether any of the phrases appears as a substring of the
// lowercased text.
func ContainsAny(text string, phrases []string) bool {
	textLower := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(textLower, p) {
			return true
		}
	}
	return false
}

// CountContained returns how many of the phrases appear as substrings of the
// lowercased text.
func CountContained(text string, phrases []string) int {
	textLower := strings.ToLower(text)
	count := 0
	for _, p := range phrases {
		if strings.Contains(textLower, p) {
			count++
		}
	}
	return count
}

// Tokenize splits text into lowercase alphabetic tokens.
func Tokenize(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

// SplitSentences splits text into sentences on terminal punctuation followed
// by whitespace. Trailing text without terminal punctuation counts as a
// sentence.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)

	for i := 0; i < len(runes); i++ {
		if runes[i] == '.' || runes[i] == '!' || runes[i] == '?' {
			// Consume any run of terminal punctuation
			for i+1 < len(runes) && (runes[i+1] == '.' || runes[i+1] == '!' || runes[i+1] == '?') {
				i++
			}
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				s := strings.TrimSpace(string(runes[start : i+1]))
				if s != "" {
					sentences = append(sentences, s)
				}
				start = i + 1
			}
		}
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}

	return sentences
}

// CleanPrompt collapses whitespace and newlines into single spaces.
func CleanPrompt(text string) string {
	cleaned := strings.ReplaceAll(text, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\t", " ")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0.0
	}
	if v > 1 {
		return 1.0
	}
	return v
}

// Clamp01 clamps a score to [0,1].
func Clamp01(v float64) float64 {
	return clamp01(v)
}
