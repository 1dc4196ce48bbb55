package domain

// Passage is a word-bounded contiguous excerpt of a source document.
// Passages are immutable once produced; Index is strictly increasing
// per document.
type Passage struct {
	Text    string
	DocName string
	Index   int
}

// IngestSummary reports the outcome of one ingest run. Skips records the
// per-document soft failures that did not abort the batch.
type IngestSummary struct {
	DocsProcessed   int
	DocsSkipped     int
	ChunksEmbedded  int
	RecordsUpserted int
	UpsertOK        bool
	UpsertError     string
	Skips           []string
}

// Answer is the result of a query: the generated text plus the sorted,
// de-duplicated set of source documents it was grounded on. Grounded is
// false when no neighbors were found and the model answered from general
// knowledge alone.
type Answer struct {
	Text     string
	Sources  []string
	Grounded bool
}
