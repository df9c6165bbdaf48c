// Package completion implements context-sensitive code completion: a
// router over syntax tree shapes that dispatches to one of several
// specialized strategies.
package completion

import (
	"go.lsp.dev/protocol"

	"github.com/khongten001/intelephense"
	"github.com/khongten001/intelephense/analysis"
)

// Context is the read-only per-request snapshot the strategies work from.
// It is built after the document has been flushed, so the tree reflects
// every edit the editor has sent.
type Context struct {
	Doc      *analysis.ParsedDocument
	Index    analysis.Index
	Resolver analysis.ExprTypeResolver
	File     *analysis.FileContext

	Position protocol.Position
	Offset   int

	// Word is the identifier-like text immediately before the cursor,
	// recovered from the raw line so it survives a broken parse.
	Word string

	MaxItems int

	traverser *intelephense.Traverser
	token     *intelephense.Token
}

// NewContext builds a completion context for a cursor position.
func NewContext(doc *analysis.ParsedDocument, index analysis.Index, pos protocol.Position, maxItems int) *Context {
	doc.Flush()

	offset := doc.OffsetAtPosition(pos)
	resolver := analysis.NewResolver(doc, index)

	c := &Context{
		Doc:       doc,
		Index:     index,
		Resolver:  resolver,
		File:      resolver.FileContext(),
		Position:  pos,
		Offset:    offset,
		Word:      doc.WordAtOffset(offset),
		MaxItems:  maxItems,
		traverser: doc.Traverser(),
	}

	// The cursor sits between characters; the token of interest is the
	// one ending at (or spanning) the cursor.
	if offset > 0 {
		if n := c.traverser.Find(offset - 1); n != nil {
			c.token, _ = n.(*intelephense.Token)
		}
	}

	return c
}

// Token returns the token immediately before the cursor, or nil when the
// cursor is not over a token.
func (c *Context) Token() *intelephense.Token {
	return c.token
}

// TokenText returns the source text of the cursor token.
func (c *Context) TokenText() string {
	if c.token == nil {
		return ""
	}

	return c.Doc.TokenText(c.token)
}

// Parent returns the cursor token's immediate parent phrase.
func (c *Context) Parent() *intelephense.Phrase {
	if c.token == nil {
		return nil
	}

	return c.traverser.Parent()
}

// Ancestor returns the cursor token's ancestor at an explicit depth
// (1 is the parent).
func (c *Context) Ancestor(depth int) *intelephense.Phrase {
	if c.token == nil {
		return nil
	}

	return c.traverser.Ancestor(depth)
}

// AncestorMatching returns the nearest ancestor of the cursor token for
// which pred holds.
func (c *Context) AncestorMatching(pred func(*intelephense.Phrase) bool) *intelephense.Phrase {
	if c.token == nil {
		return nil
	}

	return c.traverser.AncestorMatching(pred)
}

// NameContext returns the innermost qualified-name phrase enclosing the
// cursor together with the phrase enclosing that name, or nils when the
// cursor is not inside a name.
func (c *Context) NameContext() (name, encl *intelephense.Phrase) {
	if c.token == nil {
		return nil, nil
	}

	spine := c.traverser.Spine()

	for i := len(spine) - 1; i >= 0; i-- {
		ph, ok := spine[i].(*intelephense.Phrase)
		if !ok {
			continue
		}

		switch ph.Type {
		case intelephense.PhraseNamespaceName:
			continue
		case intelephense.PhraseQualifiedName,
			intelephense.PhraseFullyQualifiedName,
			intelephense.PhraseRelativeQualifiedName:
			if i > 0 {
				encl, _ = spine[i-1].(*intelephense.Phrase)
			}

			return ph, encl
		default:
			return nil, nil
		}
	}

	return nil, nil
}

// EnclosingClass returns the class declaration enclosing the cursor, or
// nil at file scope.
func (c *Context) EnclosingClass() *analysis.ClassRef {
	if c.Offset == 0 {
		return nil
	}

	return c.File.EnclosingClassAt(c.Offset - 1)
}

// EnclosingScope returns the function-like phrase (or the root) whose
// variable bindings are visible at the cursor.
func (c *Context) EnclosingScope() *intelephense.Phrase {
	scope := c.AncestorMatching(func(ph *intelephense.Phrase) bool {
		switch ph.Type {
		case intelephense.PhraseFunctionDeclaration,
			intelephense.PhraseMethodDeclaration,
			intelephense.PhraseAnonymousFunctionCreationExpression:
			return true
		}

		return false
	})
	if scope != nil {
		return scope
	}

	return c.Doc.Tree()
}
