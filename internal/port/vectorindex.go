package port

// Record is one datapoint destined for the vector index. Records are never
// mutated after upsert, only replaced by re-upsert with the same ID.
type Record struct {
	ID         string            // Globally unique, traceable to (doc, chunk index)
	Vector     []float32         // Embedding vector
	Attributes map[string]string // Source name, chunk index, text preview
}

// Neighbor is one nearest-neighbor match. Transient, produced per query.
type Neighbor struct {
	ID       string
	Distance float64
}

// VectorIndex stores embedding vectors and answers nearest-neighbor queries.
type VectorIndex interface {
	// Upsert writes all records in one batch. All-or-nothing per call.
	Upsert(records []Record) error

	// FindNeighbors returns the k nearest records to the query vector,
	// sorted by ascending distance (nearest first).
	FindNeighbors(vector []float32, k int) ([]Neighbor, error)
}
