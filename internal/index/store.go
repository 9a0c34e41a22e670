// Package index implements the semantic entity index: one embedding+context
// record per (entity_id, entity_type) pair with cosine k-NN search and live
// catalog enrichment of results.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/loresearch/lore-search/internal/catalog"
)

// Record is one indexed entity. Exactly one record exists per
// (entity_id, entity_type) pair.
type Record struct {
	EntityID   int                `json:"entity_id"`
	EntityType catalog.EntityType `json:"entity_type"`
	Context    string             `json:"context"`
	Embedding  []float32          `json:"-"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// Key returns the uniqueness key for the record.
func (r Record) Key() string {
	return recordKey(r.EntityType, r.EntityID)
}

func recordKey(entityType catalog.EntityType, entityID int) string {
	return fmt.Sprintf("%s:%d", entityType, entityID)
}

// Hit is one search result before enrichment. Score is the raw cosine
// similarity (1 - cosine distance), clamped to [0,1].
type Hit struct {
	Record Record
	Score  float64
}

// VectorStore is the storage port for the semantic index.
type VectorStore interface {
	// Upsert replaces the record for the (entity_id, entity_type) pair,
	// creating it if absent.
	Upsert(ctx context.Context, rec Record) error

	// Search returns up to limit records ordered by descending similarity
	// to the query vector. Ties keep insertion order.
	Search(ctx context.Context, vector []float32, limit int) ([]Hit, error)

	// Close releases store resources.
	Close() error
}

// MemoryStore is an in-memory VectorStore backed by an exhaustive cosine
// scan. Suitable for tests and deployments without a vector database.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string // insertion order, for stable ties
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
	}
}

// Upsert stores a fully-built copy of the record under the write lock, so a
// concurrent search never observes mismatched context/embedding.
func (s *MemoryStore) Upsert(ctx context.Context, rec Record) error {
	now := time.Now().UTC()

	stored := rec
	stored.Embedding = append([]float32(nil), rec.Embedding...)
	stored.UpdatedAt = now

	key := rec.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[key]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
		s.order = append(s.order, key)
	}

	s.records[key] = &stored
	return nil
}

// Search scans every record and returns the closest matches.
func (s *MemoryStore) Search(ctx context.Context, vector []float32, limit int) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]Hit, 0, len(s.records))
	for _, key := range s.order {
		rec := s.records[key]
		hits = append(hits, Hit{
			Record: *rec,
			Score:  rawCosine(vector, rec.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Len returns the number of indexed records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// rawCosine is the unscaled cosine similarity clamped to [0,1], matching the
// 1 - cosine-distance score a vector database reports. Zero-norm or
// mismatched vectors score 0.
func rawCosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(cos) || cos < 0 {
		return 0.0
	}
	if cos > 1 {
		return 1.0
	}
	return cos
}
