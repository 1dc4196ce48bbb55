package port

// PassageStore is the side lookup from record ID to full passage text.
// The vector index only returns IDs and distances, so grounding a query
// answer requires this store, populated during ingest.
type PassageStore interface {
	// Put stores the full text for each record ID.
	Put(passages map[string]string) error

	// GetText returns the stored text for a record ID. The second return
	// is false when the ID is unknown.
	GetText(id string) (string, bool, error)

	Close() error
}
