package analysis_test

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/khongten001/intelephense/analysis"
)

func TestTextDocument_OffsetPositionRoundTrip(t *testing.T) {
	t.Parallel()

	doc := analysis.NewTextDocument("ab\ncde\n\nf")

	for offset := 0; offset <= doc.Len(); offset++ {
		pos := doc.PositionAtOffset(offset)
		back := doc.OffsetAtPosition(pos)
		assert.Equal(t, offset, back, "offset %d -> %+v -> %d", offset, pos, back)
	}
}

func TestTextDocument_OffsetAtPositionClamps(t *testing.T) {
	t.Parallel()

	doc := analysis.NewTextDocument("ab\ncd")

	// Character past line end clamps to the line boundary.
	got := doc.OffsetAtPosition(protocol.Position{Line: 0, Character: 99})
	assert.Equal(t, 3, got)

	// Line past last line clamps to the buffer end.
	got = doc.OffsetAtPosition(protocol.Position{Line: 9, Character: 0})
	assert.Equal(t, doc.Len(), got)
}

func TestTextDocument_LineCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, analysis.NewTextDocument("").LineCount())
	assert.Equal(t, 2, analysis.NewTextDocument("a\nb").LineCount())
	assert.Equal(t, 3, analysis.NewTextDocument("a\nb\n").LineCount())
}

func TestTextDocument_ApplyEdit(t *testing.T) {
	t.Parallel()

	doc := analysis.NewTextDocument("hello world")

	ok := doc.ApplyEdit(protocol.Range{
		Start: protocol.Position{Line: 0, Character: 6},
		End:   protocol.Position{Line: 0, Character: 11},
	}, "there")
	require.True(t, ok)
	assert.Equal(t, "hello there", doc.Text())

	// Insertion at a point range.
	ok = doc.ApplyEdit(protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 0},
	}, "say: ")
	require.True(t, ok)
	assert.Equal(t, "say: hello there", doc.Text())
}

func TestTextDocument_ApplyEditRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	doc := analysis.NewTextDocument("short")

	ok := doc.ApplyEdit(protocol.Range{
		Start: protocol.Position{Line: 3, Character: 0},
		End:   protocol.Position{Line: 4, Character: 0},
	}, "x")
	assert.False(t, ok)
	assert.Equal(t, "short", doc.Text(), "failed edit must not mutate the buffer")
}

func TestTextDocument_ApplyEditAcrossLines(t *testing.T) {
	t.Parallel()

	doc := analysis.NewTextDocument("one\ntwo\nthree")

	ok := doc.ApplyEdit(protocol.Range{
		Start: protocol.Position{Line: 0, Character: 1},
		End:   protocol.Position{Line: 2, Character: 2},
	}, "-")
	require.True(t, ok)
	assert.Equal(t, "o-ree", doc.Text())

	// Line offsets must be recomputed after the splice.
	assert.Equal(t, 1, doc.LineCount())
}

// TestTextDocument_RandomEditsMatchReference feeds batches of random
// disjoint single-line edits through ApplyChanges in shuffled order and
// checks the buffer against a naive string splice. For disjoint edits the
// descending splice equals applying them in true document order, so any
// mismatch means the batch reordering shifted a not-yet-applied range.
func TestTextDocument_RandomEditsMatchReference(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic test data

	for trial := 0; trial < 50; trial++ {
		content := randomLines(rng)

		type edit struct {
			start, end int
			text       string
		}

		// Pick up to 4 disjoint ranges.
		var edits []edit

		cursor := 0
		for len(edits) < 4 && cursor < len(content) {
			start := cursor + rng.Intn(len(content)-cursor+1)
			if start >= len(content) {
				break
			}

			end := start + rng.Intn(min(4, len(content)-start)+1)

			// Keep edits single-line so ranges are easy to build.
			if span := content[start:end]; strings.ContainsRune(span, '\n') {
				cursor = end

				continue
			}

			edits = append(edits, edit{start, end, randomText(rng)})
			cursor = end + 1
		}

		// Reference: splice descending so earlier offsets stay valid.
		expected := content

		sorted := make([]edit, len(edits))
		copy(sorted, edits)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].start > sorted[j].start })

		for _, e := range sorted {
			expected = expected[:e.start] + e.text + expected[e.end:]
		}

		// The batch arrives in arbitrary order; every range addresses
		// the pre-batch document.
		rng.Shuffle(len(edits), func(i, j int) { edits[i], edits[j] = edits[j], edits[i] })

		mapper := analysis.NewTextDocument(content)

		batch := make([]analysis.Edit, 0, len(edits))
		for _, e := range edits {
			batch = append(batch, analysis.Edit{
				Range: protocol.Range{
					Start: mapper.PositionAtOffset(e.start),
					End:   mapper.PositionAtOffset(e.end),
				},
				Text: e.text,
			})
		}

		doc, _ := newTestDocument(t, content)
		doc.ApplyChanges(batch)

		if diff := cmp.Diff(expected, doc.Text()); diff != "" {
			t.Fatalf("trial %d: buffer mismatch (-want +got):\n%s", trial, diff)
		}
	}
}

func randomLines(rng *rand.Rand) string {
	var b strings.Builder

	lines := 1 + rng.Intn(6)
	for i := 0; i < lines; i++ {
		width := rng.Intn(12)
		for j := 0; j < width; j++ {
			b.WriteByte(byte('a' + rng.Intn(26)))
		}

		b.WriteByte('\n')
	}

	return b.String()
}

func randomText(rng *rand.Rand) string {
	var b strings.Builder

	for i := 0; i < rng.Intn(5); i++ {
		b.WriteByte(byte('A' + rng.Intn(26)))
	}

	return b.String()
}
