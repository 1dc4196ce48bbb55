package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"rag/internal/adapter/chunker"
	"rag/internal/domain"
	"rag/internal/port"
)

// Attribute keys carried on every upserted record.
const (
	attrSourceDocument = "source_document_name"
	attrChunkIndex     = "chunk_index"
	attrTextPreview    = "text_preview"
)

// previewRunes bounds the text preview attribute. The vector index is not
// a document store; full text lives in the passage store.
const previewRunes = 200

// ProgressFunc reports ingest progress: documents handled so far, the
// total, and the document currently being processed.
type ProgressFunc func(processed, total int, doc string)

// IngestUseCase runs the ingest pipeline: fetch each document from the
// object store, chunk it, embed the chunks in one batch, and accumulate
// records for a single final upsert into the vector index. Full passage
// text goes to the passage store so queries can ground their answers.
type IngestUseCase struct {
	store        port.ObjectStore
	embedder     port.Embedder
	index        port.VectorIndex
	passages     port.PassageStore
	bucket       string
	chunkSize    int
	chunkOverlap int
	progress     ProgressFunc
}

// NewIngestUseCase wires the collaborators for an ingest run. All of them
// must already be constructed; a collaborator that cannot be built aborts
// the run before this point.
func NewIngestUseCase(
	store port.ObjectStore,
	embedder port.Embedder,
	index port.VectorIndex,
	passages port.PassageStore,
	bucket string,
	chunkSize, chunkOverlap int,
) *IngestUseCase {
	return &IngestUseCase{
		store:        store,
		embedder:     embedder,
		index:        index,
		passages:     passages,
		bucket:       bucket,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// SetProgress installs a progress callback for the document loop.
func (u *IngestUseCase) SetProgress(fn ProgressFunc) {
	u.progress = fn
}

// DiscoverDocuments lists the bucket under the configured prefix and keeps
// the object names matching any of the include patterns. An empty pattern
// list keeps everything.
func (u *IngestUseCase) DiscoverDocuments(prefix string, includes []string) ([]string, error) {
	names, err := u.store.List(u.bucket, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket %s: %w", u.bucket, err)
	}

	if len(includes) == 0 {
		sort.Strings(names)
		return names, nil
	}

	var matched []string
	for _, name := range names {
		for _, pattern := range includes {
			if ok, err := doublestar.Match(pattern, name); err == nil && ok {
				matched = append(matched, name)
				break
			}
		}
	}
	sort.Strings(matched)
	return matched, nil
}

// Ingest processes each named document independently; a failure on one
// document skips only that document. All surviving records are written to
// the vector index in one batch at the end; an upsert failure is reported
// in the summary, not retried.
func (u *IngestUseCase) Ingest(docNames []string) *domain.IngestSummary {
	summary := &domain.IngestSummary{}
	var records []port.Record
	passages := make(map[string]string)

	for i, name := range docNames {
		if u.progress != nil {
			u.progress(i, len(docNames), name)
		}

		embedded, ok := u.ingestDocument(name, &records, passages, summary)
		if !ok {
			summary.DocsSkipped++
			continue
		}
		summary.DocsProcessed++
		summary.ChunksEmbedded += embedded
	}
	if u.progress != nil {
		u.progress(len(docNames), len(docNames), "")
	}

	if len(records) == 0 {
		summary.UpsertOK = true
		return summary
	}

	if err := u.passages.Put(passages); err != nil {
		// The index upsert still proceeds; affected queries fall back to
		// placeholder context fragments.
		summary.Skips = append(summary.Skips, fmt.Sprintf("failed to store passage texts: %v", err))
	}

	if err := u.index.Upsert(records); err != nil {
		summary.UpsertError = err.Error()
		return summary
	}
	summary.UpsertOK = true
	summary.RecordsUpserted = len(records)
	return summary
}

// ingestDocument fetches, chunks and embeds one document, appending its
// records and passage texts. Returns the number of chunks embedded and
// whether the document counts as processed.
func (u *IngestUseCase) ingestDocument(name string, records *[]port.Record, passages map[string]string, summary *domain.IngestSummary) (int, bool) {
	text, found, err := u.store.DownloadText(u.bucket, name)
	if err != nil {
		summary.Skips = append(summary.Skips, fmt.Sprintf("%s: download failed: %v", name, err))
		return 0, false
	}
	if !found || strings.TrimSpace(text) == "" {
		summary.Skips = append(summary.Skips, fmt.Sprintf("%s: missing or empty content", name))
		return 0, false
	}

	chunks, err := chunker.Chunk(text, u.chunkSize, u.chunkOverlap)
	if err != nil {
		summary.Skips = append(summary.Skips, fmt.Sprintf("%s: chunking failed: %v", name, err))
		return 0, false
	}
	if len(chunks) == 0 {
		summary.Skips = append(summary.Skips, fmt.Sprintf("%s: no chunks produced", name))
		return 0, false
	}

	vectors, err := u.embedder.Embed(chunks, port.IntentDocument)
	if err != nil {
		summary.Skips = append(summary.Skips, fmt.Sprintf("%s: embedding failed: %v", name, err))
		return 0, false
	}
	if len(vectors) != len(chunks) {
		// Positional mismatch: vectors can no longer be attributed to
		// passages, so nothing from this document is upserted.
		summary.Skips = append(summary.Skips, fmt.Sprintf("%s: embedding count mismatch: %d chunks, %d vectors", name, len(chunks), len(vectors)))
		return 0, false
	}

	embedded := 0
	for idx, chunkText := range chunks {
		if vectors[idx] == nil {
			summary.Skips = append(summary.Skips, fmt.Sprintf("%s: chunk %d has no embedding", name, idx))
			continue
		}

		id := recordID(name, idx)
		*records = append(*records, port.Record{
			ID:     id,
			Vector: vectors[idx],
			Attributes: map[string]string{
				attrSourceDocument: name,
				attrChunkIndex:     strconv.Itoa(idx),
				attrTextPreview:    preview(chunkText),
			},
		})
		passages[id] = chunkText
		embedded++
	}
	return embedded, true
}

// recordID builds a globally unique record ID that stays traceable to its
// (document, chunk index) origin. The random suffix tolerates re-ingestion
// without ID collisions.
func recordID(docName string, index int) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// Constant suffix keeps the ID usable and traceable.
		return fmt.Sprintf("%s_chunk_%d_0", docName, index)
	}
	return fmt.Sprintf("%s_chunk_%d_%s", docName, index, hex.EncodeToString(buf))
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes]) + "..."
}
