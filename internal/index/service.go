package index

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/loresearch/lore-search/internal/bus"
	"github.com/loresearch/lore-search/internal/catalog"
	apperrors "github.com/loresearch/lore-search/internal/pkg/errors"
	"github.com/loresearch/lore-search/internal/pkg/logger"
)

// Embedder is the embedding side of the text provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SearchHit is one enriched search result.
type SearchHit struct {
	Score      float64            `json:"score"`
	EntityID   int                `json:"entity_id"`
	EntityType catalog.EntityType `json:"entity_type"`
	EntityData any                `json:"entity_data"`
}

// SearchInfo describes one search call.
type SearchInfo struct {
	Query        string `json:"query"`
	Limit        int    `json:"limit"`
	TotalResults int    `json:"total_results"`
}

// SearchResponse is the full search result set.
type SearchResponse struct {
	Info    SearchInfo  `json:"info"`
	Results []SearchHit `json:"results"`
}

// Options tune the index service.
type Options struct {
	DefaultLimit      int
	MaxLimit          int
	EnrichConcurrency int
}

func (o *Options) applyDefaults() {
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = 5
	}
	if o.MaxLimit <= 0 {
		o.MaxLimit = 50
	}
	if o.EnrichConcurrency <= 0 {
		o.EnrichConcurrency = 4
	}
}

// Service ties the vector store, the embedder, and the catalog together.
type Service struct {
	store    VectorStore
	embedder Embedder
	catalog  *catalog.Service
	events   bus.Bus
	log      *logger.Logger
	opts     Options
}

// NewService creates the index service. The events bus may be nil.
func NewService(store VectorStore, embedder Embedder, catalogSvc *catalog.Service, events bus.Bus, log *logger.Logger, opts Options) *Service {
	if log == nil {
		log = logger.Default()
	}
	opts.applyDefaults()
	return &Service{
		store:    store,
		embedder: embedder,
		catalog:  catalogSvc,
		events:   events,
		log:      log,
		opts:     opts,
	}
}

// IndexEntity builds the canonical context string for an entity, embeds it,
// and upserts the record.
func (s *Service) IndexEntity(ctx context.Context, entityType catalog.EntityType, entityID int, additionalContext string) (*Record, error) {
	if entityID < 1 {
		return nil, apperrors.ValidationError("entity id must be >= 1")
	}

	baseContext, err := s.catalog.EntityContext(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}

	fullContext := strings.TrimSpace(fmt.Sprintf("entity_type: %s\n%s\n\n%s", entityType, baseContext, additionalContext))

	embedding, err := s.embedder.Embed(ctx, fullContext)
	if err != nil {
		return nil, err
	}

	rec := Record{
		EntityID:   entityID,
		EntityType: entityType,
		Context:    fullContext,
		Embedding:  embedding,
	}
	if err := s.store.Upsert(ctx, rec); err != nil {
		return nil, apperrors.IndexError("upserting index record", err)
	}

	s.log.WithEntity(entityType.String(), entityID).Info("indexed entity", "context_len", len(fullContext))
	s.publishUpdated(ctx, rec)

	return &rec, nil
}

// SearchQuery embeds the query text, runs k-NN search, and enriches each hit
// with the full catalog record. Enrichment failures degrade to an empty
// payload instead of failing the query.
func (s *Service) SearchQuery(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.ValidationError("query must not be empty")
	}
	if limit <= 0 {
		limit = s.opts.DefaultLimit
	}
	if limit > s.opts.MaxLimit {
		limit = s.opts.MaxLimit
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.store.Search(ctx, vector, limit)
	if err != nil {
		return nil, apperrors.IndexError("searching index", err)
	}

	results := make([]SearchHit, len(hits))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.EnrichConcurrency)
	for i, hit := range hits {
		g.Go(func() error {
			results[i] = s.enrich(gctx, hit)
			return nil
		})
	}
	_ = g.Wait()

	return &SearchResponse{
		Info: SearchInfo{
			Query:        query,
			Limit:        limit,
			TotalResults: len(results),
		},
		Results: results,
	}, nil
}

func (s *Service) enrich(ctx context.Context, hit Hit) SearchHit {
	result := SearchHit{
		Score:      hit.Score,
		EntityID:   hit.Record.EntityID,
		EntityType: hit.Record.EntityType,
		EntityData: map[string]any{},
	}

	entity, err := s.catalog.Entity(ctx, hit.Record.EntityType, hit.Record.EntityID)
	if err != nil {
		s.log.WithEntity(hit.Record.EntityType.String(), hit.Record.EntityID).
			Warn("enriching search hit failed", "error", err)
		return result
	}

	result.EntityData = entity
	return result
}

func (s *Service) publishUpdated(ctx context.Context, rec Record) {
	if s.events == nil {
		return
	}

	event := bus.NewEvent(bus.TopicIndexUpdated, "index", map[string]any{
		"entity_id":   rec.EntityID,
		"entity_type": rec.EntityType,
	})
	if err := s.events.Publish(ctx, bus.TopicIndexUpdated, event); err != nil {
		s.log.Warn("publishing index.updated failed", "error", err)
	}
}
