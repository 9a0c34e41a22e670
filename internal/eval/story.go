package eval

import (
	"strings"

	"github.com/loresearch/lore-search/internal/catalog"
	apperrors "github.com/loresearch/lore-search/internal/pkg/errors"
	"github.com/loresearch/lore-search/internal/scoring"
)

// Keyword groups for adventure story tone scoring.
var (
	storySciFiMarkers = []string{
		"portal", "dimension", "multiverse", "universe", "interdimensional",
		"galaxy", "cosmic", "quantum", "timeline", "anomaly", "portal gun",
	}

	storyHumorMarkers = []string{
		"sarcasm", "sarcastic", "cynical", "absurd", "dark humor",
		"messed up", "jeez", "oh man", "screw it", "what the hell",
		"ridiculous", "chaotic",
	}

	storyWorldMarkers = []string{
		"rick", "morty", "smith", "c-137", "council of ricks",
		"citadel of ricks", "schwifty", "wubba lubba dub dub",
	}
)

var adventureMarkers = []string{
	"adventure", "journey", "quest", "mission",
	"explore", "explored", "discover", "discovered",
	"encountered", "battled", "fought", "escaped",
	"chased", "danger", "chaos", "threat", "pursued",
}

// StoryEvaluator scores generated adventure stories against a catalog
// location and its residents.
type StoryEvaluator struct {
	location *catalog.Location
}

// NewStoryEvaluator creates a story evaluator for the location.
func NewStoryEvaluator(l *catalog.Location) (*StoryEvaluator, error) {
	if l == nil {
		return nil, apperrors.ValidationError("story evaluation requires a location")
	}
	return &StoryEvaluator{location: l}, nil
}

// Evaluate returns the heuristic metric map for a generated adventure story.
func (e *StoryEvaluator) Evaluate(generated string) Metrics {
	return Metrics{
		MetricFactualConsistency: e.factualConsistency(generated),
		MetricToneStyle:          e.toneScore(generated),
		MetricResidentRelevance:  e.residentRelevance(generated),
		MetricNarrativeRelevance: e.narrativeRelevance(generated),
		MetricNarrativeCoherence: scoring.StoryCoherence(generated),
	}
}

// SourceContext returns the location context used for semantic alignment.
func (e *StoryEvaluator) SourceContext() string {
	return catalog.CleanContext(catalog.BuildLocationContext(e.location, false))
}

// DefaultWeights returns the story weight spec.
func (e *StoryEvaluator) DefaultWeights() map[string]float64 {
	return DefaultStoryWeights()
}

// factualConsistency checks location attributes plus a discrete resident
// mention bonus: one resident mentioned earns 0.10, two or more earn the full
// 0.20. Attribute weights always count toward the denominator.
func (e *StoryEvaluator) factualConsistency(generated string) float64 {
	if generated == "" {
		return 0.0
	}

	l := e.location
	text := strings.ToLower(generated)
	score, totalWeight := 0.0, 0.0

	checks := []struct {
		weight float64
		value  string
	}{
		{0.30, l.Name},
		{0.15, l.Type},
		{0.15, l.Dimension},
	}

	for _, check := range checks {
		if check.value != "" {
			if scoring.ContainsExact(text, check.value) {
				score += check.weight
			} else if strings.Contains(text, strings.ToLower(check.value)) {
				score += check.weight * 0.6
			}
		}
		totalWeight += check.weight
	}

	if len(l.Residents) > 0 {
		switch mentioned := e.mentionedResidents(text); {
		case mentioned >= 2:
			score += 0.20
		case mentioned == 1:
			score += 0.10
		}
		totalWeight += 0.20
	}

	if scoring.ContainsAny(text, contradictionPhrases) {
		score *= 0.8
	}

	if totalWeight == 0 {
		return 0.0
	}
	return scoring.Clamp01(score / totalWeight)
}

func (e *StoryEvaluator) toneScore(generated string) float64 {
	return 0.40*scoring.KeywordScore(generated, storySciFiMarkers) +
		0.35*scoring.KeywordScore(generated, storyHumorMarkers) +
		0.25*scoring.KeywordScore(generated, storyWorldMarkers)
}

// residentRelevance is a discrete scale over resident mentions: none → 0.0,
// one → 0.5, two or more → 1.0. Locations without residents score 0.0.
func (e *StoryEvaluator) residentRelevance(generated string) float64 {
	if len(e.location.Residents) == 0 {
		return 0.0
	}

	switch mentioned := e.mentionedResidents(strings.ToLower(generated)); {
	case mentioned >= 2:
		return 1.0
	case mentioned == 1:
		return 0.5
	default:
		return 0.0
	}
}

// narrativeRelevance checks that the story actually takes place at the
// location: name grounding (0.40), adventure markers (0.40), resident
// involvement (0.20).
func (e *StoryEvaluator) narrativeRelevance(generated string) float64 {
	if generated == "" {
		return 0.0
	}

	l := e.location
	text := strings.ToLower(generated)
	score := 0.0

	if l.Name != "" && strings.Contains(text, strings.ToLower(l.Name)) {
		score += 0.40
	}

	if scoring.ContainsAny(text, adventureMarkers) {
		score += 0.40
	}

	if e.mentionedResidents(text) > 0 {
		score += 0.20
	}

	return scoring.Clamp01(score)
}

// mentionedResidents counts residents whose names appear in the text as
// whole words.
func (e *StoryEvaluator) mentionedResidents(textLower string) int {
	mentioned := 0
	for _, r := range e.location.Residents {
		if scoring.ContainsExact(textLower, r.Name) {
			mentioned++
		}
	}
	return mentioned
}
