package index

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/loresearch/lore-search/internal/catalog"
)

const (
	// DefaultCollection is the default Qdrant collection name.
	DefaultCollection = "lore_entities"

	// DefaultQdrantPort is the default Qdrant gRPC port.
	DefaultQdrantPort = 6334

	defaultQdrantTimeout = 30 * time.Second
)

// QdrantConfig holds configuration for the Qdrant-backed store.
type QdrantConfig struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	VectorSize uint64
	Timeout    time.Duration
}

// QdrantStore is a VectorStore backed by a cosine-distance Qdrant
// collection. Point IDs are deterministic UUIDs derived from the
// (entity_type, entity_id) pair, so concurrent upserts of the same entity
// collapse into one point without any application-level lock.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
	timeout    time.Duration

	mu     sync.RWMutex
	closed bool
}

// NewQdrantStore connects to Qdrant and ensures the collection exists.
func NewQdrantStore(ctx context.Context, cfg QdrantConfig) (*QdrantStore, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultQdrantPort
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultQdrantTimeout
	}
	if cfg.VectorSize == 0 {
		return nil, fmt.Errorf("qdrant vector size is required")
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	s := &QdrantStore{
		client:     client,
		collection: cfg.Collection,
		timeout:    cfg.Timeout,
	}

	if err := s.ensureCollection(ctx, cfg.VectorSize); err != nil {
		client.Close()
		return nil, err
	}

	return s, nil
}

func (s *QdrantStore) ensureCollection(ctx context.Context, vectorSize uint64) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
	}
	return nil
}

// pointID derives the deterministic point UUID for an entity.
func pointID(entityType catalog.EntityType, entityID int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(recordKey(entityType, entityID))).String()
}

// Upsert writes the record as a single point keyed by its deterministic ID.
func (s *QdrantStore) Upsert(ctx context.Context, rec Record) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return fmt.Errorf("qdrant store is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := time.Now().UTC()

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(pointID(rec.EntityType, rec.EntityID)),
		Vectors: qdrant.NewVectors(rec.Embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"entity_id":   int64(rec.EntityID),
			"entity_type": string(rec.EntityType),
			"context":     rec.Context,
			"updated_at":  now.Format(time.RFC3339),
		}),
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         []*qdrant.PointStruct{point},
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}
	return nil
}

// Search runs a cosine k-NN query and maps points back to records.
func (s *QdrantStore) Search(ctx context.Context, vector []float32, limit int) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("qdrant store is closed")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if limit <= 0 {
		limit = 5
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQueryDense(vector),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}

	hits := make([]Hit, 0, len(points))
	for _, p := range points {
		payload := p.GetPayload()

		entityType, err := catalog.ParseEntityType(payload["entity_type"].GetStringValue())
		if err != nil {
			continue
		}

		rec := Record{
			EntityID:   int(payload["entity_id"].GetIntegerValue()),
			EntityType: entityType,
			Context:    payload["context"].GetStringValue(),
		}
		if raw := payload["updated_at"].GetStringValue(); raw != "" {
			if ts, err := time.Parse(time.RFC3339, raw); err == nil {
				rec.UpdatedAt = ts
			}
		}

		score := float64(p.GetScore())
		if score < 0 {
			score = 0
		} else if score > 1 {
			score = 1
		}

		hits = append(hits, Hit{Record: rec, Score: score})
	}

	return hits, nil
}

// Close closes the Qdrant connection.
func (s *QdrantStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}
