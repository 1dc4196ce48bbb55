package port

// Intent tags an embedding request so asymmetric models can distinguish
// document-side from query-side vectors.
type Intent string

const (
	IntentDocument Intent = "RETRIEVAL_DOCUMENT"
	IntentQuery    Intent = "RETRIEVAL_QUERY"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts with the given intent.
	// Returns exactly one entry per input, in input order; a nil entry means
	// that specific text failed to embed without failing the whole batch.
	Embed(texts []string, intent Intent) ([][]float32, error)

	// ModelName returns the name of the embedding model.
	ModelName() string
}
