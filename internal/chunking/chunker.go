// Package chunking splits extracted document text into ordered, overlapping
// chunks that prefer to end on sentence boundaries.
package chunking

import (
	"fmt"
	"strings"
)

const (
	// DefaultChunkSize is the default number of characters per chunk.
	DefaultChunkSize = 1000
	// DefaultOverlap is the default number of characters shared by neighbouring chunks.
	DefaultOverlap = 200
)

// sentenceMarkers end a sentence; a cut is placed immediately after one.
var sentenceMarkers = [][]rune{
	[]rune(". "),
	[]rune("! "),
	[]rune("? "),
	[]rune("\n\n"),
}

// span is a half-open range of rune offsets [start, end) into the source text.
type span struct {
	start, end int
}

// Chunk splits text into chunks of at most chunkSize characters, where
// neighbouring chunks share up to overlap characters. Lengths are counted in
// Unicode code points.
//
// Cuts are searched for backwards within the last fifth of each chunk: the
// nearest sentence end wins, then the nearest space, otherwise the chunk is cut
// hard at chunkSize. Every chunk is trimmed of surrounding whitespace. Text no
// longer than chunkSize, including the empty string, yields exactly one chunk.
//
// Chunk panics unless chunkSize > 0 and 0 <= overlap < chunkSize.
func Chunk(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		panic(fmt.Sprintf("chunking: invalid parameters chunkSize=%d overlap=%d", chunkSize, overlap))
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{strings.TrimSpace(text)}
	}

	spans := split(runes, chunkSize, overlap)
	chunks := make([]string, 0, len(spans))
	for _, s := range spans {
		// Whitespace-only spans carry no content.
		if c := strings.TrimSpace(string(runes[s.start:s.end])); c != "" {
			chunks = append(chunks, c)
		}
	}
	if len(chunks) == 0 {
		return []string{""}
	}
	return chunks
}

// split computes the untrimmed chunk spans. Spans are ordered, start strictly
// increases, and each span starts no later than the previous one ended, so the
// spans cover the whole text.
func split(runes []rune, chunkSize, overlap int) []span {
	var spans []span
	start := 0
	for len(runes)-start > chunkSize {
		cut := findCut(runes, start, start+chunkSize, chunkSize)
		spans = append(spans, span{start: start, end: cut})

		next := cut - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return append(spans, span{start: start, end: len(runes)})
}

// findCut returns the exclusive end offset for a chunk beginning at start whose
// tentative end is end.
func findCut(runes []rune, start, end, chunkSize int) int {
	windowStart := end - chunkSize/5
	if windowStart < start {
		windowStart = start
	}
	window := runes[windowStart:end]

	best := -1
	for _, marker := range sentenceMarkers {
		if pos := lastIndex(window, marker); pos >= 0 {
			if cut := windowStart + pos + len(marker); cut > best {
				best = cut
			}
		}
	}
	if best >= 0 {
		return best
	}

	if pos := lastIndex(window, []rune{' '}); pos >= 0 {
		return windowStart + pos + 1
	}
	return end
}

// lastIndex returns the offset of the last occurrence of sub lying entirely
// within s, or -1.
func lastIndex(s, sub []rune) int {
	for i := len(s) - len(sub); i >= 0; i-- {
		match := true
		for j := range sub {
			if s[i+j] != sub[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
