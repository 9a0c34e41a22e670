// Package catalog provides read-only access to the Rick & Morty catalog API
// and the deterministic context strings built from its records.
package catalog

import (
	"fmt"
)

// EntityType identifies the kind of catalog entity. The set is closed:
// characters, locations, and episodes.
type EntityType string

const (
	EntityCharacter EntityType = "character"
	EntityLocation  EntityType = "location"
	EntityEpisode   EntityType = "episode"
)

// ParseEntityType validates a raw entity type string.
func ParseEntityType(s string) (EntityType, error) {
	switch EntityType(s) {
	case EntityCharacter, EntityLocation, EntityEpisode:
		return EntityType(s), nil
	default:
		return "", fmt.Errorf("unsupported entity type: %q", s)
	}
}

// String returns the wire form of the entity type.
func (t EntityType) String() string {
	return string(t)
}

// LocationRef is a character's origin or current location.
type LocationRef struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Dimension string `json:"dimension"`
}

// EpisodeRef is an episode as referenced from a character.
type EpisodeRef struct {
	Name    string `json:"name"`
	AirDate string `json:"air_date"`
}

// Character is a fully detailed character record.
type Character struct {
	ID       int          `json:"id,string"`
	Name     string       `json:"name"`
	Status   string       `json:"status"`
	Species  string       `json:"species"`
	Type     string       `json:"type"`
	Gender   string       `json:"gender"`
	Origin   LocationRef  `json:"origin"`
	Location LocationRef  `json:"location"`
	Image    string       `json:"image"`
	Episodes []EpisodeRef `json:"episode"`
	Created  string       `json:"created"`
}

// CharacterSummary is a character with only list-view fields.
type CharacterSummary struct {
	ID      int    `json:"id,string"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Species string `json:"species"`
	Image   string `json:"image"`
}

// Resident is a character living at a location.
type Resident struct {
	ID      int    `json:"id,string"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Species string `json:"species"`
	Image   string `json:"image"`
}

// Location is a fully detailed location record with residents.
type Location struct {
	ID        int        `json:"id,string"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Dimension string     `json:"dimension"`
	Residents []Resident `json:"residents"`
}

// LocationSummary is a location with only list-view fields.
type LocationSummary struct {
	ID        int    `json:"id,string"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Dimension string `json:"dimension"`
}

// Episode is a fully detailed episode record.
type Episode struct {
	ID         int        `json:"id,string"`
	Name       string     `json:"name"`
	AirDate    string     `json:"air_date"`
	Code       string     `json:"episode"`
	Characters []Resident `json:"characters"`
	Created    string     `json:"created"`
}

// EpisodeSummary is an episode with only list-view fields.
type EpisodeSummary struct {
	ID      int    `json:"id,string"`
	Name    string `json:"name"`
	AirDate string `json:"air_date"`
	Code    string `json:"episode"`
}

// PageInfo carries pagination metadata.
type PageInfo struct {
	Count int  `json:"count"`
	Pages int  `json:"pages"`
	Next  *int `json:"next"`
	Prev  *int `json:"prev"`
}

// CharactersPage is one page of character summaries.
type CharactersPage struct {
	Info    PageInfo           `json:"info"`
	Results []CharacterSummary `json:"results"`
}

// LocationsPage is one page of location summaries.
type LocationsPage struct {
	Info    PageInfo          `json:"info"`
	Results []LocationSummary `json:"results"`
}

// EpisodesPage is one page of episode summaries.
type EpisodesPage struct {
	Info    PageInfo         `json:"info"`
	Results []EpisodeSummary `json:"results"`
}
