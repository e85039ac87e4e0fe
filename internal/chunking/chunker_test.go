package chunking

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_ExactlyChunkSizeIsSingleChunk(t *testing.T) {
	text := strings.Repeat("abcdefghij", 100)
	require.Len(t, text, 1000)

	chunks := Chunk(text, 1000, 200)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunk_ShortTextIsTrimmed(t *testing.T) {
	chunks := Chunk("  \n A short document.\n\n ", 1000, 200)
	assert.Equal(t, []string{"A short document."}, chunks)
}

func TestChunk_EmptyTextIsSingleEmptyChunk(t *testing.T) {
	assert.Equal(t, []string{""}, Chunk("", 1000, 200))
	assert.Equal(t, []string{""}, Chunk("   \n\t ", 1000, 200))
}

func TestChunk_WhitespaceOnlyLongTextIsSingleEmptyChunk(t *testing.T) {
	assert.Equal(t, []string{""}, Chunk(strings.Repeat(" ", 500), 100, 10))
}

func TestChunk_CountsCharactersNotBytes(t *testing.T) {
	text := strings.Repeat("é", 10)
	require.Equal(t, 20, len(text))

	chunks := Chunk(text, 10, 0)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunk_CutsAfterSentenceBoundary(t *testing.T) {
	text := strings.Repeat("Sentence one. Sentence two. Sentence three. ", 4)
	runes := []rune(text)

	chunks := Chunk(text, 50, 10)
	spans := split(runes, 50, 10)

	require.Greater(t, len(chunks), 1)
	assert.Equal(t, "Sentence one. Sentence two. Sentence three.", chunks[0])
	for _, s := range spans[:len(spans)-1] {
		assert.Equal(t, ' ', runes[s.end-1], "cut at %d splits a word", s.end)
	}
}

func TestChunk_PrefersSentenceOverNearerSpace(t *testing.T) {
	// The window is [80,100). ". " sits at 85, a plain space at 91.
	text := strings.Repeat("a", 85) + ". " + "bbbb " + strings.Repeat("c", 200)

	chunks := Chunk(text, 100, 0)

	assert.Equal(t, strings.Repeat("a", 85)+".", chunks[0])
}

func TestChunk_NearestSentenceMarkerWins(t *testing.T) {
	text := strings.Repeat("a", 82) + "! " + "bbbbbb" + "\n\n" + strings.Repeat("c", 200)

	chunks := Chunk(text, 100, 0)

	assert.Equal(t, strings.Repeat("a", 82)+"! bbbbbb", chunks[0])
}

func TestChunk_FallsBackToWordBoundary(t *testing.T) {
	text := strings.Repeat("words ", 50)

	chunks := Chunk(text, 100, 0)

	require.Greater(t, len(chunks), 1)
	assert.Equal(t, strings.TrimSpace(strings.Repeat("words ", 16)), chunks[0])
	for _, c := range chunks {
		for _, w := range strings.Fields(c) {
			assert.Equal(t, "words", w)
		}
	}
}

func TestChunk_HardCutWithoutWhitespace(t *testing.T) {
	tests := []struct {
		name    string
		overlap int
		lengths []int
	}{
		{"no overlap", 0, []int{100, 100, 50}},
		{"with overlap", 10, []int{100, 100, 70}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chunks := Chunk(strings.Repeat("x", 250), 100, tc.overlap)
			var got []int
			for _, c := range chunks {
				got = append(got, len(c))
			}
			assert.Equal(t, tc.lengths, got)
		})
	}
}

func TestChunk_OverlapRepeatsTailOfPreviousChunk(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 300; i++ {
		b.WriteByte(byte('a' + i%26))
	}

	chunks := Chunk(b.String(), 100, 10)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, chunks[0][90:], chunks[1][:10])
}

func TestChunk_LargeOverlapTerminates(t *testing.T) {
	text := strings.Repeat("a b. ", 400)

	chunks := Chunk(text, 10, 9)

	assert.NotEmpty(t, chunks)
	spans := split([]rune(text), 10, 9)
	for i := 1; i < len(spans); i++ {
		assert.Greater(t, spans[i].start, spans[i-1].start)
	}
}

func TestChunk_PanicsOnInvalidParameters(t *testing.T) {
	assert.Panics(t, func() { Chunk("text", 0, 0) })
	assert.Panics(t, func() { Chunk("text", 10, -1) })
	assert.Panics(t, func() { Chunk("text", 10, 10) })
}

func TestSplit_CoversTextWithoutLoss(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 300; i++ {
		text := randomText(rng, 50+rng.Intn(3000))
		size := 5 + rng.Intn(300)
		overlap := rng.Intn(size)
		runes := []rune(text)
		if len(runes) <= size {
			continue
		}

		spans := split(runes, size, overlap)

		require.NotEmpty(t, spans)
		assert.Equal(t, 0, spans[0].start)
		assert.Equal(t, len(runes), spans[len(spans)-1].end)

		var rebuilt []rune
		covered := 0
		for j, s := range spans {
			require.Greater(t, s.end, s.start)
			require.LessOrEqual(t, s.end-s.start, size)
			if j > 0 {
				require.Greater(t, s.start, spans[j-1].start, "start must advance")
				require.LessOrEqual(t, s.start, covered, "gap before span %d", j)
			}
			if s.end > covered {
				rebuilt = append(rebuilt, runes[max(s.start, covered):s.end]...)
				covered = s.end
			}
		}
		require.Equal(t, text, string(rebuilt), "size=%d overlap=%d", size, overlap)

		for _, c := range Chunk(text, size, overlap) {
			assert.LessOrEqual(t, utf8.RuneCountInString(c), size)
			assert.Equal(t, strings.TrimSpace(c), c)
		}
	}
}

func randomText(rng *rand.Rand, n int) string {
	vocabulary := []string{"alpha", "beta.", "gamma!", "delta?", "\n\n", "épsilon", "z", "longerwordwithoutbreaks", "  "}
	var b strings.Builder
	for count := 0; count < n; {
		word := vocabulary[rng.Intn(len(vocabulary))]
		b.WriteString(word)
		count += utf8.RuneCountInString(word)
		if rng.Intn(4) > 0 {
			b.WriteByte(' ')
			count++
		}
	}
	return b.String()
}
