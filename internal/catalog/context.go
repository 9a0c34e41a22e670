package catalog

import (
	"fmt"
	"strings"

	"github.com/loresearch/lore-search/internal/scoring"
)

// summaryLimit caps how many related records a short context includes.
const summaryLimit = 5

// BuildCharacterContext builds the structured context string for a character.
// When includeAllEpisodes is false only the first few episode names appear.
func BuildCharacterContext(c *Character, includeAllEpisodes bool) string {
	episodes := c.Episodes

	charType := c.Type
	if charType == "" {
		charType = "Unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Character Name: %s\n", c.Name)
	fmt.Fprintf(&b, "Species: %s\n", c.Species)
	fmt.Fprintf(&b, "Status: %s\n", c.Status)
	fmt.Fprintf(&b, "Gender: %s\n", c.Gender)
	fmt.Fprintf(&b, "Type: %s\n", charType)
	fmt.Fprintf(&b, "Origin: %s (%s)\n", c.Origin.Name, c.Origin.Dimension)
	fmt.Fprintf(&b, "Current Location: %s (%s)\n", c.Location.Name, c.Location.Dimension)
	fmt.Fprintf(&b, "Total Episodes: %d episode(s)\n", len(episodes))

	limit := len(episodes)
	if !includeAllEpisodes && limit > summaryLimit {
		limit = summaryLimit
	}

	names := make([]string, 0, limit)
	for _, ep := range episodes[:limit] {
		names = append(names, ep.Name)
	}

	episodeNames := "None"
	if len(names) > 0 {
		episodeNames = strings.Join(names, ", ")
	}
	fmt.Fprintf(&b, "Episodes Info: %s", episodeNames)

	return strings.TrimSpace(b.String())
}

// BuildLocationContext builds the structured context string for a location.
func BuildLocationContext(l *Location, includeAllResidents bool) string {
	residents := l.Residents

	limit := len(residents)
	if !includeAllResidents && limit > summaryLimit {
		limit = summaryLimit
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Location: %s\n", l.Name)
	fmt.Fprintf(&b, "Type: %s\n", l.Type)
	fmt.Fprintf(&b, "Dimension: %s\n", l.Dimension)
	fmt.Fprintf(&b, "Total Residents: %d\n", len(residents))
	fmt.Fprintf(&b, "Residents Info: %s", FormatResidents(residents, limit))

	return strings.TrimSpace(b.String())
}

// BuildEpisodeContext builds the structured context string for an episode.
func BuildEpisodeContext(e *Episode, includeAllCharacters bool) string {
	characters := e.Characters

	limit := len(characters)
	if !includeAllCharacters && limit > summaryLimit {
		limit = summaryLimit
	}

	names := make([]string, 0, limit)
	for _, c := range characters[:limit] {
		names = append(names, c.Name)
	}

	characterNames := "None"
	if len(names) > 0 {
		characterNames = strings.Join(names, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Episode: %s\n", e.Name)
	fmt.Fprintf(&b, "Episode Number: %s\n", e.Code)
	fmt.Fprintf(&b, "Air Date: %s\n", e.AirDate)
	fmt.Fprintf(&b, "Total Characters: %d\n", len(characters))
	fmt.Fprintf(&b, "Characters Info: %q", characterNames)

	return strings.TrimSpace(b.String())
}

// FormatResidents formats residents into a readable list, one per line.
func FormatResidents(residents []Resident, limit int) string {
	if len(residents) == 0 {
		return "No known residents"
	}

	if limit > len(residents) || limit <= 0 {
		limit = len(residents)
	}

	lines := make([]string, 0, limit)
	for _, r := range residents[:limit] {
		lines = append(lines, fmt.Sprintf("%s (%s, %s)", r.Name, r.Species, r.Status))
	}

	return strings.Join(lines, "\n")
}

// CleanContext collapses a context string into a single whitespace-normalized
// line suitable for prompts and embeddings.
func CleanContext(context string) string {
	return scoring.CleanPrompt(context)
}
