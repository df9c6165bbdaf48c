package analysis_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/khongten001/intelephense"
	"github.com/khongten001/intelephense/analysis"
)

const testWindow = 250 * time.Millisecond

func newTestDocument(t *testing.T, text string) (*analysis.ParsedDocument, *clock.Mock) {
	t.Helper()

	mock := clock.NewMock()
	doc := analysis.NewParsedDocument("file:///test.php", text, intelephense.Parse, mock, testWindow)

	return doc, mock
}

func newTestDocumentAt(t *testing.T, uri protocol.DocumentURI, text string) *analysis.ParsedDocument {
	t.Helper()

	return analysis.NewParsedDocument(uri, text, intelephense.Parse, clock.NewMock(), testWindow)
}

func pointEdit(line, char uint32, text string) analysis.Edit {
	pos := protocol.Position{Line: line, Character: char}

	return analysis.Edit{Range: protocol.Range{Start: pos, End: pos}, Text: text}
}

func TestParsedDocument_InitialParseIsSynchronous(t *testing.T) {
	t.Parallel()

	doc, _ := newTestDocument(t, "<?php $a;")

	require.NotNil(t, doc.Tree())
	assert.Equal(t, intelephense.PhraseStatementList, doc.Tree().Type)
}

func TestParsedDocument_BufferMutatesImmediately(t *testing.T) {
	t.Parallel()

	doc, _ := newTestDocument(t, "<?php ")
	before := doc.Tree()

	doc.ApplyChanges([]analysis.Edit{pointEdit(0, 6, "$x;")})

	assert.Equal(t, "<?php $x;", doc.Text(), "buffer reflects the edit at once")
	assert.Same(t, before, doc.Tree(), "tree is stale until the window elapses")
}

func TestParsedDocument_DebounceCoalescesBursts(t *testing.T) {
	t.Parallel()

	doc, mock := newTestDocument(t, "<?php ")

	var reparses int

	doc.OnChange(func(analysis.ChangeEvent) { reparses++ })

	// A typing burst: each edit re-arms the timer.
	for i := 0; i < 5; i++ {
		doc.ApplyChanges([]analysis.Edit{pointEdit(0, uint32(6+i), "x")})
		mock.Add(testWindow / 2)
	}

	assert.Equal(t, 0, reparses, "no timer has had a full quiet window yet")

	mock.Add(testWindow)

	assert.Equal(t, 1, reparses, "the burst coalesces into one rebuild")
}

func TestParsedDocument_FlushRebuildsSynchronously(t *testing.T) {
	t.Parallel()

	doc, _ := newTestDocument(t, "<?php ")

	doc.ApplyChanges([]analysis.Edit{pointEdit(0, 6, "$fresh;")})
	doc.Flush()

	// The tree now contains the new variable.
	var found bool

	intelephense.Walk(doc.Tree(), func(n intelephense.Node, _ []intelephense.Node) bool {
		if tok, ok := n.(*intelephense.Token); ok && tok.Type == intelephense.TokenVariableName {
			found = true
		}

		return true
	}, nil)

	assert.True(t, found, "flushed tree must reflect the latest buffer")
}

func TestParsedDocument_FlushAfterTimerIsNoOp(t *testing.T) {
	t.Parallel()

	doc, mock := newTestDocument(t, "<?php ")

	var reparses int

	doc.OnChange(func(analysis.ChangeEvent) { reparses++ })

	doc.ApplyChanges([]analysis.Edit{pointEdit(0, 6, "$x;")})
	mock.Add(testWindow)
	doc.Flush()

	assert.Equal(t, 1, reparses, "flush after the timer fired must not reparse again")
}

func TestParsedDocument_EditBatchOrderIrrelevant(t *testing.T) {
	t.Parallel()

	// Two disjoint edits against the same original text, delivered in
	// ascending order: the batch must be applied so neither invalidates
	// the other's range.
	original := "<?php aa bb cc;"

	editA := analysis.Edit{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 6},
			End:   protocol.Position{Line: 0, Character: 8},
		},
		Text: "XXXX",
	}
	editB := analysis.Edit{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 9},
			End:   protocol.Position{Line: 0, Character: 11},
		},
		Text: "Y",
	}

	want := "<?php XXXX Y cc;"

	for name, batch := range map[string][]analysis.Edit{
		"ascending":  {editA, editB},
		"descending": {editB, editA},
	} {
		doc, _ := newTestDocument(t, original)
		doc.ApplyChanges(batch)

		if diff := cmp.Diff(want, doc.Text()); diff != "" {
			t.Errorf("%s batch: buffer mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestParsedDocument_OnChangeDeliveryIsInline(t *testing.T) {
	t.Parallel()

	doc, _ := newTestDocument(t, "<?php ")

	var events []analysis.ChangeEvent

	doc.OnChange(func(ev analysis.ChangeEvent) { events = append(events, ev) })

	doc.ApplyChanges([]analysis.Edit{pointEdit(0, 6, "$x;")})
	doc.Flush()

	require.Len(t, events, 1, "event arrives during Flush, not after")
	assert.Equal(t, protocol.DocumentURI("file:///test.php"), events[0].URI)
	assert.Same(t, doc.Tree(), events[0].Tree)
}

func TestParsedDocument_OnChangeUnsubscribe(t *testing.T) {
	t.Parallel()

	doc, _ := newTestDocument(t, "<?php ")

	var first, second int

	unsub := doc.OnChange(func(analysis.ChangeEvent) { first++ })
	doc.OnChange(func(analysis.ChangeEvent) { second++ })

	doc.ApplyChanges([]analysis.Edit{pointEdit(0, 6, "a")})
	doc.Flush()

	unsub()

	doc.ApplyChanges([]analysis.Edit{pointEdit(0, 7, "b")})
	doc.Flush()

	assert.Equal(t, 1, first, "unsubscribed handler must not fire again")
	assert.Equal(t, 2, second)
}

func TestParsedDocument_NodeRange(t *testing.T) {
	t.Parallel()

	doc, _ := newTestDocument(t, "<?php\n$abc;")

	var variable *intelephense.Phrase

	intelephense.Walk(doc.Tree(), func(n intelephense.Node, _ []intelephense.Node) bool {
		if ph, ok := n.(*intelephense.Phrase); ok && ph.Type == intelephense.PhraseSimpleVariable {
			variable = ph
		}

		return true
	}, nil)

	require.NotNil(t, variable)

	rng, ok := doc.NodeRange(variable)
	require.True(t, ok)
	assert.Equal(t, protocol.Position{Line: 1, Character: 0}, rng.Start)
	assert.Equal(t, protocol.Position{Line: 1, Character: 4}, rng.End)
}

func TestParsedDocument_NodeRangeEmptySubtree(t *testing.T) {
	t.Parallel()

	doc, _ := newTestDocument(t, "<?php $a;")

	empty := &intelephense.Phrase{Type: intelephense.PhraseMemberName}

	_, ok := doc.NodeRange(empty)
	assert.False(t, ok, "a token-less phrase has no range, and that is not an error")
}

func TestParsedDocument_NodeTextSkipsTrivia(t *testing.T) {
	t.Parallel()

	doc, _ := newTestDocument(t, "<?php Foo :: BAR;")

	var access *intelephense.Phrase

	intelephense.Walk(doc.Tree(), func(n intelephense.Node, _ []intelephense.Node) bool {
		if ph, ok := n.(*intelephense.Phrase); ok && ph.Type == intelephense.PhraseScopedAccessExpression {
			access = ph
		}

		return true
	}, nil)

	require.NotNil(t, access)

	got := doc.NodeText(access,
		intelephense.TokenWhitespace, intelephense.TokenComment, intelephense.TokenDocComment)
	assert.Equal(t, "Foo::BAR", got)
}

func TestParsedDocument_WordAtOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want string
	}{
		{"<?php $myVar", "$myVar"},
		{"<?php $obj->pro", "pro"},
		{"<?php Foo::BA", "BA"},
		{"<?php new \\App\\Mod", "\\App\\Mod"},
		{"<?php ", ""},
	}

	for _, tt := range tests {
		doc, _ := newTestDocument(t, tt.text)
		got := doc.WordAtOffset(len(tt.text))
		assert.Equal(t, tt.want, got, "text %q", tt.text)
	}
}

func TestParsedDocument_AnonymousNamesAreDeterministic(t *testing.T) {
	t.Parallel()

	src := "<?php $a = new class {};"

	build := func() string {
		doc, _ := newTestDocument(t, src)

		var anon *intelephense.Phrase

		intelephense.Walk(doc.Tree(), func(n intelephense.Node, _ []intelephense.Node) bool {
			if ph, ok := n.(*intelephense.Phrase); ok && ph.Type == intelephense.PhraseAnonymousClassDeclaration {
				anon = ph
			}

			return true
		}, nil)

		require.NotNil(t, anon)

		return doc.CreateAnonymousName(anon)
	}

	first := build()
	second := build()

	assert.Equal(t, first, second, "same uri and location must yield the same name")
	assert.Contains(t, first, "#anon#")
	assert.Contains(t, first, "file:///test.php")
}

func TestParsedDocument_AnonymousNamesDifferByLocation(t *testing.T) {
	t.Parallel()

	doc, _ := newTestDocument(t, "<?php $a = new class {}; $b = new class {};")

	var names []string

	intelephense.Walk(doc.Tree(), func(n intelephense.Node, _ []intelephense.Node) bool {
		if ph, ok := n.(*intelephense.Phrase); ok && ph.Type == intelephense.PhraseAnonymousClassDeclaration {
			names = append(names, doc.CreateAnonymousName(ph))
		}

		return true
	}, nil)

	require.Len(t, names, 2)
	assert.NotEqual(t, names[0], names[1], fmt.Sprintf("names %v must differ", names))
}
