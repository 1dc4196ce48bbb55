package usecase

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"rag/internal/domain"
	"rag/internal/port"
)

const promptPreamble = "You are a helpful AI assistant. Please answer the user's question based ONLY on the following " +
	"provided context. If the context does not contain the information to answer the question, " +
	"please state that you don't have enough information from the provided documents."

// ErrNoAnswer is returned when the completion model produces no output.
var ErrNoAnswer = errors.New("could not generate an answer")

// QueryUseCase runs the query pipeline: embed the question, retrieve the
// nearest passages, build a grounded prompt and generate an answer with
// cited sources. With no neighbors it degrades to an ungrounded
// general-knowledge answer rather than failing.
type QueryUseCase struct {
	embedder  port.Embedder
	index     port.VectorIndex
	passages  port.PassageStore
	completer port.Completer
	topK      int
	params    port.GenerationParams
}

func NewQueryUseCase(
	embedder port.Embedder,
	index port.VectorIndex,
	passages port.PassageStore,
	completer port.Completer,
	topK int,
	params port.GenerationParams,
) *QueryUseCase {
	return &QueryUseCase{
		embedder:  embedder,
		index:     index,
		passages:  passages,
		completer: completer,
		topK:      topK,
		params:    params,
	}
}

// Answer produces a grounded answer for the question, or an ungrounded one
// when the index has nothing relevant.
func (u *QueryUseCase) Answer(question string) (*domain.Answer, error) {
	vectors, err := u.embedder.Embed([]string{question}, port.IntentQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 || vectors[0] == nil {
		return nil, errors.New("failed to embed query: no vector returned")
	}

	neighbors, err := u.index.FindNeighbors(vectors[0], u.topK)
	if err != nil {
		return nil, fmt.Errorf("neighbor search failed: %w", err)
	}

	if len(neighbors) == 0 {
		// Degraded but successful: answer from general knowledge with the
		// bare question, clearly labeled as ungrounded.
		text, err := u.completer.Complete(question, u.params)
		if err != nil {
			return nil, fmt.Errorf("completion failed: %w", err)
		}
		if text == "" {
			return nil, ErrNoAnswer
		}
		return &domain.Answer{Text: text, Grounded: false}, nil
	}

	fragments := make([]string, 0, len(neighbors))
	sourceSet := make(map[string]struct{})
	for _, n := range neighbors {
		fragments = append(fragments, u.contextFragment(n.ID))
		if doc, ok := sourceDocument(n.ID); ok {
			sourceSet[doc] = struct{}{}
		}
	}

	prompt := buildPrompt(strings.Join(fragments, "\n"), question)

	text, err := u.completer.Complete(prompt, u.params)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}
	if text == "" {
		return nil, ErrNoAnswer
	}

	sources := make([]string, 0, len(sourceSet))
	for doc := range sourceSet {
		sources = append(sources, doc)
	}
	sort.Strings(sources)

	return &domain.Answer{Text: text, Sources: sources, Grounded: true}, nil
}

// contextFragment resolves a neighbor ID to its full passage text. When the
// passage store has no entry the fragment degrades to an acknowledgment of
// the ID, which keeps the pipeline running but grounds nothing.
func (u *QueryUseCase) contextFragment(id string) string {
	text, found, err := u.passages.GetText(id)
	if err == nil && found {
		return text
	}
	return fmt.Sprintf("Retrieved information related to ID %s.", id)
}

// sourceDocument parses the document identifier prefix out of a record ID.
func sourceDocument(id string) (string, bool) {
	doc, _, found := strings.Cut(id, "_chunk_")
	return doc, found
}

func buildPrompt(context, question string) string {
	return fmt.Sprintf("%s\n\nCONTEXT:\n%s\n\nQUESTION:\n%s\n\nANSWER:", promptPreamble, context, question)
}
