package eval

import (
	"strings"

	"github.com/loresearch/lore-search/internal/catalog"
	apperrors "github.com/loresearch/lore-search/internal/pkg/errors"
	"github.com/loresearch/lore-search/internal/scoring"
)

// Keyword groups for backstory tone scoring.
var (
	backstorySciFiMarkers = []string{
		"portal", "dimension", "multiverse", "universe", "interdimensional",
		"quantum", "galaxy", "timeline", "rift", "anomaly",
	}

	backstoryHumorMarkers = []string{
		"sarcasm", "sarcastic", "cynical", "absurd", "dark humor",
		"messed up", "oh man", "jeez", "this is crazy", "what the hell",
		"chaotic", "ridiculous",
	}

	backstoryWorldMarkers = []string{
		"rick", "morty", "smith", "c-137", "portal gun",
		"citadel", "council of ricks", "ricks",
	}
)

// Marker lists for the five backstory structure components.
var backstoryComponents = [][]string{
	{ // origin
		"was born", "born", "grew up", "origin", "raised",
		"came from", "started", "in his early life", "in her early life",
	},
	{ // journey
		"became", "transformed", "changed", "evolved",
		"path", "journey", "struggled", "learned",
	},
	{ // events
		"event", "incident", "encountered", "experienced",
		"witnessed", "trauma", "accident",
	},
	{ // turning point
		"because", "due to", "led to", "resulted in",
		"motivated", "inspired", "explains why",
	},
	{ // present state
		"now", "currently", "today", "remains", "ended up",
		"has become", "finds himself", "finds herself",
	},
}

var deepContextMarkers = []string{
	"influenced", "shaped", "defined", "marked by", "backstory",
}

// BackstoryEvaluator scores generated character backstories against a
// catalog character.
type BackstoryEvaluator struct {
	character *catalog.Character
}

// NewBackstoryEvaluator creates a backstory evaluator for the character.
func NewBackstoryEvaluator(c *catalog.Character) (*BackstoryEvaluator, error) {
	if c == nil {
		return nil, apperrors.ValidationError("backstory evaluation requires a character")
	}
	return &BackstoryEvaluator{character: c}, nil
}

// Evaluate returns the heuristic metric map for a generated backstory.
func (e *BackstoryEvaluator) Evaluate(generated string) Metrics {
	return Metrics{
		MetricFactualConsistency: e.factualConsistency(generated),
		MetricToneStyle:          e.toneScore(generated),
		MetricNarrativeCoherence: scoring.SentenceCoherence(generated),
		MetricNarrativeRelevance: e.narrativeRelevance(generated),
	}
}

// SourceContext returns the character context used for semantic alignment.
func (e *BackstoryEvaluator) SourceContext() string {
	return catalog.CleanContext(catalog.BuildCharacterContext(e.character, false))
}

// DefaultWeights returns the backstory weight spec.
func (e *BackstoryEvaluator) DefaultWeights() map[string]float64 {
	return DefaultBackstoryWeights()
}

// factualConsistency checks character attributes with exact matches earning
// full weight and plain substring matches earning 60% partial credit.
// Attributes absent from the record are excluded from the denominator.
func (e *BackstoryEvaluator) factualConsistency(generated string) float64 {
	if generated == "" {
		return 0.0
	}

	c := e.character
	text := strings.ToLower(generated)
	score, totalWeight := 0.0, 0.0

	checks := []struct {
		weight float64
		value  string
	}{
		{0.20, c.Name},
		{0.15, c.Species},
		{0.15, c.Status},
		{0.10, c.Gender},
	}

	for _, check := range checks {
		if check.value == "" {
			continue
		}
		if scoring.ContainsExact(text, check.value) {
			score += check.weight
		} else if strings.Contains(text, strings.ToLower(check.value)) {
			score += check.weight * 0.6
		}
		totalWeight += check.weight
	}

	if scoring.ContainsExact(text, c.Origin.Name) {
		score += 0.10
	}
	totalWeight += 0.10

	if scoring.ContainsExact(text, c.Location.Name) {
		score += 0.10
	}
	totalWeight += 0.10

	// Soften by 20% when the text undermines its own facts
	if scoring.ContainsAny(text, contradictionPhrases) {
		score *= 0.8
	}

	if totalWeight == 0 {
		return 0.0
	}
	return scoring.Clamp01(score / totalWeight)
}

func (e *BackstoryEvaluator) toneScore(generated string) float64 {
	return 0.30*scoring.KeywordScore(generated, backstorySciFiMarkers) +
		0.40*scoring.KeywordScore(generated, backstoryHumorMarkers) +
		0.30*scoring.KeywordScore(generated, backstoryWorldMarkers)
}

// narrativeRelevance checks that the text actually reads as this character's
// backstory: name grounding (0.25), structural components (up to 0.55), and a
// deep-context bonus (0.20), clamped to 1.0.
func (e *BackstoryEvaluator) narrativeRelevance(generated string) float64 {
	if generated == "" {
		return 0.0
	}

	text := strings.ToLower(generated)
	score := 0.0

	if scoring.ContainsExact(text, e.character.Name) {
		score += 0.25
	}

	found := 0
	for _, markers := range backstoryComponents {
		if scoring.ContainsAny(text, markers) {
			found++
		}
	}
	score += float64(found) / float64(len(backstoryComponents)) * 0.55

	if scoring.ContainsAny(text, deepContextMarkers) {
		score += 0.20
	}

	return scoring.Clamp01(score)
}
