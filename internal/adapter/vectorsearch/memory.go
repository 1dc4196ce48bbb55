package vectorsearch

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"rag/internal/port"
)

// MemoryIndex is a brute-force in-memory vector index. It mirrors the REST
// client's contract (ascending cosine distance) for tests and local runs.
type MemoryIndex struct {
	mu      sync.RWMutex
	records map[string]port.Record
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{records: make(map[string]port.Record)}
}

// Upsert adds or replaces records by ID.
func (m *MemoryIndex) Upsert(records []port.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		if rec.ID == "" {
			return fmt.Errorf("record with empty ID")
		}
		m.records[rec.ID] = rec
	}
	return nil
}

// FindNeighbors returns the k records nearest to the query vector, sorted
// by ascending cosine distance.
func (m *MemoryIndex) FindNeighbors(vector []float32, k int) ([]port.Neighbor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.records) == 0 {
		return nil, nil
	}

	neighbors := make([]port.Neighbor, 0, len(m.records))
	for id, rec := range m.records {
		neighbors = append(neighbors, port.Neighbor{
			ID:       id,
			Distance: 1 - cosineSimilarity(vector, rec.Vector),
		})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})

	if k < len(neighbors) {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

// Count returns the number of stored records.
func (m *MemoryIndex) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
