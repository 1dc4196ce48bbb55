package chunker

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidParams is returned when targetSize is not greater than overlap.
var ErrInvalidParams = errors.New("chunk size must be greater than chunk overlap")

// Chunk splits text into overlapping passages of approximately targetSize
// words each, with overlap words shared between consecutive passages.
//
// The text is split into word and whitespace-run elements so that joining
// a passage's elements reproduces the exact original substring: no synthetic
// spaces are inserted and original spacing and newlines are preserved.
// The last passage may hold fewer than targetSize words, and may overlap its
// predecessor by fewer than overlap words if fewer remain.
//
// Pure function of its arguments: identical inputs always yield identical
// output, which keeps re-ingestion reproducible.
func Chunk(text string, targetSize, overlap int) ([]string, error) {
	if targetSize <= 0 || overlap < 0 || targetSize <= overlap {
		return nil, ErrInvalidParams
	}
	if text == "" {
		return nil, nil
	}

	elements := splitElements(text)
	if len(elements) == 0 {
		return nil, nil
	}

	var chunks []string
	cursor := 0

	for cursor < len(elements) {
		// Accumulate elements until targetSize words are counted or the
		// sequence ends.
		var chunk strings.Builder
		words := 0
		end := cursor
		for end < len(elements) && words < targetSize {
			chunk.WriteString(elements[end])
			if !isWhitespaceElement(elements[end]) {
				words++
			}
			end++
		}
		chunks = append(chunks, chunk.String())

		if end >= len(elements) {
			break
		}

		// Advance by targetSize-overlap words, counting only word elements
		// but stepping over any interleaved whitespace runs. Forced minimum
		// progress of one word prevents non-termination.
		advanceWords := targetSize - overlap
		if advanceWords <= 0 {
			advanceWords = 1
		}

		advanced := 0
		counted := 0
		for i := cursor; i < len(elements) && counted < advanceWords; i++ {
			if !isWhitespaceElement(elements[i]) {
				counted++
			}
			advanced++
		}

		if advanced == 0 {
			cursor++
		} else {
			cursor += advanced
		}
	}

	return chunks, nil
}

// splitElements splits text on whitespace boundaries, keeping each
// whitespace run as its own element. Concatenating the result reproduces
// the input byte for byte.
func splitElements(text string) []string {
	var elements []string
	var current strings.Builder
	currentIsSpace := false

	for _, r := range text {
		isSpace := unicode.IsSpace(r)
		if current.Len() > 0 && isSpace != currentIsSpace {
			elements = append(elements, current.String())
			current.Reset()
		}
		current.WriteRune(r)
		currentIsSpace = isSpace
	}
	if current.Len() > 0 {
		elements = append(elements, current.String())
	}
	return elements
}

// isWhitespaceElement reports whether an element is a whitespace run.
// Elements are homogeneous, so inspecting the first rune suffices.
func isWhitespaceElement(element string) bool {
	r, _ := utf8.DecodeRuneInString(element)
	return unicode.IsSpace(r)
}
