package services

import (
	"strings"
)

const (
	// MaxContextLength caps the context sent with a question, in characters.
	MaxContextLength = 8000
	// MaxSources is how many leading chunks are returned as sources.
	MaxSources = 3

	chunkSeparator   = "\n\n"
	truncationMarker = "..."
)

// BuildContext joins chunks in order and truncates the result to at most budget
// characters. A truncated context ends with "..." and still fits the budget.
func BuildContext(chunks []string, budget int) string {
	joined := strings.Join(chunks, chunkSeparator)
	runes := []rune(joined)
	if len(runes) <= budget {
		return joined
	}
	if budget <= len(truncationMarker) {
		return string(runes[:budget])
	}
	return string(runes[:budget-len(truncationMarker)]) + truncationMarker
}

// leadingSources returns up to MaxSources chunks, copied.
func leadingSources(chunks []string) []string {
	n := len(chunks)
	if n > MaxSources {
		n = MaxSources
	}
	return append([]string{}, chunks[:n]...)
}
