package analysis

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.lsp.dev/protocol"

	"github.com/khongten001/intelephense"
)

// Edit is one range replacement from a change notification.
type Edit struct {
	Range protocol.Range
	Text  string
}

// ChangeEvent is emitted after a document reparse. Delivery is synchronous:
// handlers run inline on the reparsing call path and must not block.
type ChangeEvent struct {
	URI  protocol.DocumentURI
	Tree *intelephense.Phrase
}

// ParsedDocument owns one syntax tree and one text buffer for a single
// source unit. Edits mutate the buffer immediately; the tree rebuild is
// deferred behind a debounce window, so Tree reflects the last fully
// reparsed state until the window elapses or Flush is called. Queries that
// must observe the latest edits call Flush first.
type ParsedDocument struct {
	uri     protocol.DocumentURI
	grammar intelephense.Grammar

	mu    sync.Mutex
	buf   *TextDocument
	tree  *intelephense.Phrase
	sched *scheduler

	subMu   sync.Mutex
	subs    map[int]func(ChangeEvent)
	subIDs  []int
	nextSub int
}

// NewParsedDocument creates a document and builds its tree synchronously.
func NewParsedDocument(uri protocol.DocumentURI, text string, grammar intelephense.Grammar, clk clock.Clock, window time.Duration) *ParsedDocument {
	d := &ParsedDocument{
		uri:     uri,
		grammar: grammar,
		buf:     NewTextDocument(text),
		tree:    grammar(text),
		subs:    make(map[int]func(ChangeEvent)),
	}
	d.sched = newScheduler(clk, window, d.reparse)

	return d
}

// URI returns the document identifier.
func (d *ParsedDocument) URI() protocol.DocumentURI {
	return d.uri
}

// Tree returns the current syntax tree. It may lag the buffer by up to the
// debounce window; see Flush.
func (d *ParsedDocument) Tree() *intelephense.Phrase {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.tree
}

// Text returns the current buffer content, which always reflects every
// applied edit.
func (d *ParsedDocument) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.buf.Text()
}

// ApplyChanges applies a batch of range edits to the buffer and schedules a
// debounced reparse. Edits are applied in descending end-position order so
// that an applied edit never shifts the range a pending edit addresses.
// Out-of-range edits are skipped. Does not block on the reparse.
func (d *ParsedDocument) ApplyChanges(edits []Edit) {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)

	// Descending end position: applying an edit then never shifts the
	// range of a not-yet-applied (logically earlier) edit.
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Range.End, sorted[j].Range.End
		if a.Line != b.Line {
			return a.Line > b.Line
		}

		return a.Character > b.Character
	})

	d.mu.Lock()

	for _, e := range sorted {
		d.buf.ApplyEdit(e.Range, e.Text)
	}

	d.mu.Unlock()

	d.sched.Schedule()
}

// Flush forces a pending reparse to run synchronously. A no-op when the
// tree is already current.
func (d *ParsedDocument) Flush() {
	d.sched.Flush()
}

// Close discards any pending reparse. The buffer and the last built tree
// stay readable; a later ApplyChanges re-arms the schedule.
func (d *ParsedDocument) Close() {
	d.sched.Stop()
}

func (d *ParsedDocument) reparse() {
	d.mu.Lock()
	tree := d.grammar(d.buf.Text())
	d.tree = tree
	d.mu.Unlock()

	d.publish(ChangeEvent{URI: d.uri, Tree: tree})
}

// OnChange registers a handler for reparse events and returns its
// unsubscribe function. Handlers run inline, in registration order.
func (d *ParsedDocument) OnChange(fn func(ChangeEvent)) func() {
	d.subMu.Lock()
	defer d.subMu.Unlock()

	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	d.subIDs = append(d.subIDs, id)

	return func() {
		d.subMu.Lock()
		defer d.subMu.Unlock()

		delete(d.subs, id)

		for i, v := range d.subIDs {
			if v == id {
				d.subIDs = append(d.subIDs[:i], d.subIDs[i+1:]...)

				break
			}
		}
	}
}

func (d *ParsedDocument) publish(ev ChangeEvent) {
	d.subMu.Lock()
	handlers := make([]func(ChangeEvent), 0, len(d.subIDs))

	for _, id := range d.subIDs {
		handlers = append(handlers, d.subs[id])
	}
	d.subMu.Unlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

// OffsetAtPosition converts an editor position to a byte offset into the
// current buffer.
func (d *ParsedDocument) OffsetAtPosition(pos protocol.Position) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.buf.OffsetAtPosition(pos)
}

// PositionAtOffset converts a byte offset into an editor position.
func (d *ParsedDocument) PositionAtOffset(offset int) protocol.Position {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.buf.PositionAtOffset(offset)
}

// NodeRange maps a node to its editor-facing range. ok is false when the
// node's subtree contains no tokens, which is how fully erroneous phrases
// present.
func (d *ParsedDocument) NodeRange(n intelephense.Node) (protocol.Range, bool) {
	first := intelephense.FirstToken(n)
	if first == nil {
		return protocol.Range{}, false
	}

	last := intelephense.LastToken(n)

	d.mu.Lock()
	defer d.mu.Unlock()

	return protocol.Range{
		Start: d.buf.PositionAtOffset(first.Offset),
		End:   d.buf.PositionAtOffset(last.End()),
	}, true
}

// NodeText reconstructs the source text spanned by n, skipping tokens whose
// type is in ignore.
func (d *ParsedDocument) NodeText(n intelephense.Node, ignore ...intelephense.TokenType) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []byte

	intelephense.Walk(n, func(node intelephense.Node, _ []intelephense.Node) bool {
		tok, ok := node.(*intelephense.Token)
		if !ok {
			return true
		}

		for _, ig := range ignore {
			if tok.Type == ig {
				return true
			}
		}

		out = append(out, d.buf.TextAtOffset(tok.Offset, tok.Length)...)

		return true
	}, nil)

	return string(out)
}

// TokenText returns the source text of a single token.
func (d *ParsedDocument) TokenText(t *intelephense.Token) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.buf.TextAtOffset(t.Offset, t.Length)
}

// WordAtOffset returns the longest identifier-like suffix of the line
// ending at offset: name characters, namespace separators, and an optional
// leading variable sigil. Works off the raw buffer so completion has a
// query string even when the tree at the cursor is broken.
func (d *ParsedDocument) WordAtOffset(offset int) string {
	d.mu.Lock()
	line := d.buf.LineSubstring(offset)
	d.mu.Unlock()

	start := len(line)

	for start > 0 {
		c := line[start-1]
		if isWordChar(c) || c == '\\' {
			start--

			continue
		}

		break
	}

	if start > 0 && line[start-1] == '$' {
		start--
	}

	return line[start:]
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c >= 0x80
}

// CreateAnonymousName derives a deterministic synthetic identifier for an
// unnamed construct from its start and end positions, so the same source
// location yields the same identifier across reparses.
func (d *ParsedDocument) CreateAnonymousName(n intelephense.Node) string {
	rng, ok := d.NodeRange(n)
	if !ok {
		return fmt.Sprintf("#anon#%s#", d.uri)
	}

	return fmt.Sprintf("#anon#%s#%d:%d-%d:%d", d.uri,
		rng.Start.Line, rng.Start.Character, rng.End.Line, rng.End.Character)
}

// Traverser returns a new traverser over the current tree.
func (d *ParsedDocument) Traverser() *intelephense.Traverser {
	return intelephense.NewTraverser(d.Tree())
}
