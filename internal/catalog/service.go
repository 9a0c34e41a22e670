package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/loresearch/lore-search/internal/cache"
	apperrors "github.com/loresearch/lore-search/internal/pkg/errors"
	"github.com/loresearch/lore-search/internal/pkg/logger"
)

// Service provides typed access to catalog records with read-through caching
// of by-ID fetches.
type Service struct {
	client *Client
	cache  cache.Cache
	log    *logger.Logger
}

// NewService creates a catalog service. The cache may be nil to disable
// caching.
func NewService(client *Client, c cache.Cache, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		client: client,
		cache:  c,
		log:    log,
	}
}

// CharactersPage returns one page of character summaries.
func (s *Service) CharactersPage(ctx context.Context, page int) (*CharactersPage, error) {
	if page < 1 {
		return nil, apperrors.ValidationError("page must be >= 1")
	}

	var payload struct {
		Characters CharactersPage `json:"characters"`
	}
	if err := s.client.Execute(ctx, queryCharactersPage, map[string]any{"page": page}, &payload); err != nil {
		return nil, err
	}

	s.log.Debug("fetched characters page", "page", page, "results", len(payload.Characters.Results))
	return &payload.Characters, nil
}

// Character returns a single character with all details.
func (s *Service) Character(ctx context.Context, id int) (*Character, error) {
	key := cacheKey(EntityCharacter, id)
	if c, ok := cachedAs[Character](ctx, s.cache, key); ok {
		return c, nil
	}

	var payload struct {
		Character *Character `json:"character"`
	}
	if err := s.client.Execute(ctx, queryCharacterByID, map[string]any{"id": strconv.Itoa(id)}, &payload); err != nil {
		return nil, err
	}
	if payload.Character == nil {
		return nil, apperrors.NotFoundError(fmt.Sprintf("character %d", id))
	}

	s.storeCached(ctx, key, payload.Character)
	return payload.Character, nil
}

// LocationsPage returns one page of location summaries.
func (s *Service) LocationsPage(ctx context.Context, page int) (*LocationsPage, error) {
	if page < 1 {
		return nil, apperrors.ValidationError("page must be >= 1")
	}

	var payload struct {
		Locations LocationsPage `json:"locations"`
	}
	if err := s.client.Execute(ctx, queryLocationsPage, map[string]any{"page": page}, &payload); err != nil {
		return nil, err
	}

	s.log.Debug("fetched locations page", "page", page, "results", len(payload.Locations.Results))
	return &payload.Locations, nil
}

// Location returns a single location with residents.
func (s *Service) Location(ctx context.Context, id int) (*Location, error) {
	key := cacheKey(EntityLocation, id)
	if l, ok := cachedAs[Location](ctx, s.cache, key); ok {
		return l, nil
	}

	var payload struct {
		Location *Location `json:"location"`
	}
	if err := s.client.Execute(ctx, queryLocationByID, map[string]any{"id": strconv.Itoa(id)}, &payload); err != nil {
		return nil, err
	}
	if payload.Location == nil {
		return nil, apperrors.NotFoundError(fmt.Sprintf("location %d", id))
	}

	s.storeCached(ctx, key, payload.Location)
	return payload.Location, nil
}

// EpisodesPage returns one page of episode summaries.
func (s *Service) EpisodesPage(ctx context.Context, page int) (*EpisodesPage, error) {
	if page < 1 {
		return nil, apperrors.ValidationError("page must be >= 1")
	}

	var payload struct {
		Episodes EpisodesPage `json:"episodes"`
	}
	if err := s.client.Execute(ctx, queryEpisodesPage, map[string]any{"page": page}, &payload); err != nil {
		return nil, err
	}

	s.log.Debug("fetched episodes page", "page", page, "results", len(payload.Episodes.Results))
	return &payload.Episodes, nil
}

// Episode returns a single episode with its characters.
func (s *Service) Episode(ctx context.Context, id int) (*Episode, error) {
	key := cacheKey(EntityEpisode, id)
	if e, ok := cachedAs[Episode](ctx, s.cache, key); ok {
		return e, nil
	}

	var payload struct {
		Episode *Episode `json:"episode"`
	}
	if err := s.client.Execute(ctx, queryEpisodeByID, map[string]any{"id": strconv.Itoa(id)}, &payload); err != nil {
		return nil, err
	}
	if payload.Episode == nil {
		return nil, apperrors.NotFoundError(fmt.Sprintf("episode %d", id))
	}

	s.storeCached(ctx, key, payload.Episode)
	return payload.Episode, nil
}

// CharacterContext returns the cleaned context string for a character.
func (s *Service) CharacterContext(ctx context.Context, id int, includeAllEpisodes bool) (string, error) {
	c, err := s.Character(ctx, id)
	if err != nil {
		return "", err
	}
	return CleanContext(BuildCharacterContext(c, includeAllEpisodes)), nil
}

// LocationContext returns the cleaned context string for a location.
func (s *Service) LocationContext(ctx context.Context, id int, includeAllResidents bool) (string, error) {
	l, err := s.Location(ctx, id)
	if err != nil {
		return "", err
	}
	return CleanContext(BuildLocationContext(l, includeAllResidents)), nil
}

// EpisodeContext returns the cleaned context string for an episode.
func (s *Service) EpisodeContext(ctx context.Context, id int, includeAllCharacters bool) (string, error) {
	e, err := s.Episode(ctx, id)
	if err != nil {
		return "", err
	}
	return CleanContext(BuildEpisodeContext(e, includeAllCharacters)), nil
}

// EntityContext returns the context string for any entity kind. Characters and
// locations use the short form of their related records; episodes include all
// characters, matching how they are indexed.
func (s *Service) EntityContext(ctx context.Context, entityType EntityType, id int) (string, error) {
	switch entityType {
	case EntityCharacter:
		return s.CharacterContext(ctx, id, false)
	case EntityLocation:
		return s.LocationContext(ctx, id, false)
	case EntityEpisode:
		return s.EpisodeContext(ctx, id, true)
	default:
		return "", apperrors.ValidationError(fmt.Sprintf("unsupported entity type: %q", entityType))
	}
}

// Entity returns the full record for any entity kind as a JSON-encodable
// value, used to enrich search hits.
func (s *Service) Entity(ctx context.Context, entityType EntityType, id int) (any, error) {
	switch entityType {
	case EntityCharacter:
		return s.Character(ctx, id)
	case EntityLocation:
		return s.Location(ctx, id)
	case EntityEpisode:
		return s.Episode(ctx, id)
	default:
		return nil, apperrors.ValidationError(fmt.Sprintf("unsupported entity type: %q", entityType))
	}
}

func cacheKey(entityType EntityType, id int) string {
	return fmt.Sprintf("%s:%d", entityType, id)
}

func cachedAs[T any](ctx context.Context, c cache.Cache, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	data, ok := c.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false
	}
	return &v, true
}

func (s *Service) storeCached(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		s.log.Warn("caching catalog record failed", "key", key, "error", err)
	}
}
