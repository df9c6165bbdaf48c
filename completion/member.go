package completion

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/khongten001/intelephense"
	"github.com/khongten001/intelephense/analysis"
)

// visibilityTier classifies the accessed type relative to the requesting
// scope's enclosing class.
type visibilityTier int

const (
	tierUnrelated visibilityTier = iota
	tierBase
	tierOwn
)

// ScopedAccessStrategy completes the member name after ::. Only static
// members and class constants qualify.
type ScopedAccessStrategy struct{}

func (ScopedAccessStrategy) Name() string { return "scopedAccess" }

func (ScopedAccessStrategy) CanSuggest(c *Context) bool {
	tok := c.Token()
	if tok == nil {
		return false
	}

	if tok.Type == intelephense.TokenColonColon {
		parent := c.Parent()

		return parent != nil && parent.Type == intelephense.PhraseScopedAccessExpression
	}

	if parent := c.Parent(); parent != nil {
		if parent.Type == intelephense.PhraseScopedMemberName {
			return true
		}

		if parent.Type == intelephense.PhraseSimpleVariable {
			a := c.Ancestor(2)

			return a != nil && a.Type == intelephense.PhraseScopedMemberName
		}
	}

	return false
}

func (s ScopedAccessStrategy) Completions(c *Context) *protocol.CompletionList {
	return memberCompletions(c, intelephense.PhraseScopedAccessExpression, false)
}

// ObjectAccessStrategy completes the member name after ->. Static members
// are excluded and property labels drop the sigil.
type ObjectAccessStrategy struct{}

func (ObjectAccessStrategy) Name() string { return "objectAccess" }

func (ObjectAccessStrategy) CanSuggest(c *Context) bool {
	tok := c.Token()
	if tok == nil {
		return false
	}

	if tok.Type == intelephense.TokenArrow {
		parent := c.Parent()

		return parent != nil && parent.Type == intelephense.PhraseObjectAccessExpression
	}

	parent := c.Parent()

	return parent != nil && parent.Type == intelephense.PhraseMemberName
}

func (s ObjectAccessStrategy) Completions(c *Context) *protocol.CompletionList {
	return memberCompletions(c, intelephense.PhraseObjectAccessExpression, true)
}

// memberCompletions resolves the access expression's left-hand type and
// queries the index with per-type visibility predicates.
func memberCompletions(c *Context, accessType intelephense.PhraseType, instance bool) *protocol.CompletionList {
	access := c.AncestorMatching(func(ph *intelephense.Phrase) bool {
		return ph.Type == accessType
	})
	if access == nil {
		return emptyResult()
	}

	lhs := accessSubject(access)
	if lhs == nil {
		return emptyResult()
	}

	t := c.Resolver.ResolveExpressionType(lhs)
	if t.IsEmpty() {
		return emptyResult()
	}

	parentAccess := !instance && isParentKeyword(c, lhs)
	encl := c.EnclosingClass()

	queries := make([]analysis.MemberQuery, 0, len(t.AtomicClassNames()))
	for _, typeName := range t.AtomicClassNames() {
		queries = append(queries, analysis.MemberQuery{
			TypeName: typeName,
			Accept:   memberPredicate(c, typeName, encl, instance, parentAccess),
		})
	}

	members := c.Index.MembersOfTypes(queries)

	items := make([]protocol.CompletionItem, 0, len(members))
	for _, m := range members {
		items = append(items, memberItem(m, !instance))
	}

	return truncate(items, c.MaxItems)
}

// memberPredicate encodes the own/base/unrelated tier rules plus the
// static/instance split and the cursor word filter.
func memberPredicate(c *Context, typeName string, encl *analysis.ClassRef, instance, parentAccess bool) func(*analysis.Symbol) bool {
	tier := tierUnrelated

	switch {
	case encl != nil && sameFQN(typeName, encl.Name):
		tier = tierOwn
	case encl != nil && encl.Base != "" && sameFQN(typeName, encl.Base):
		tier = tierBase
	}

	// Foo::$ narrows the request to static properties.
	wantProperty := !instance && strings.HasPrefix(c.Word, "$")

	return func(s *analysis.Symbol) bool {
		if !matchesWord(s.Name, c.Word) {
			return false
		}

		if wantProperty && s.Kind != analysis.KindProperty {
			return false
		}

		switch s.Kind {
		case analysis.KindMethod, analysis.KindProperty:
			// parent::method() may target an instance method; every
			// other scoped access is statics only.
			if instance == s.Has(analysis.ModifierStatic) && !(parentAccess && s.Kind == analysis.KindMethod) {
				return false
			}
		case analysis.KindClassConstant:
			// Constants are implicitly static.
			if instance {
				return false
			}
		default:
			return false
		}

		// parent:: always sees public and protected, never private.
		if parentAccess {
			return s.Visibility() != analysis.ModifierPrivate
		}

		switch tier {
		case tierOwn:
			if s.Visibility() == analysis.ModifierPrivate {
				return encl != nil && sameFQN(s.Scope, encl.Name)
			}

			return true
		case tierBase:
			return s.Visibility() != analysis.ModifierPrivate
		default:
			return s.Visibility() == analysis.ModifierPublic
		}
	}
}

// accessSubject returns the expression node on the left of the access
// operator.
func accessSubject(access *intelephense.Phrase) intelephense.Node {
	for _, child := range access.Children {
		switch n := child.(type) {
		case *intelephense.Phrase:
			return n
		case *intelephense.Token:
			switch n.Type {
			case intelephense.TokenWhitespace, intelephense.TokenComment, intelephense.TokenDocComment:
				continue
			case intelephense.TokenArrow, intelephense.TokenColonColon:
				return nil
			default:
				return n
			}
		}
	}

	return nil
}

// isParentKeyword reports whether the accessed expression is the bare
// parent keyword.
func isParentKeyword(c *Context, lhs intelephense.Node) bool {
	ph, ok := lhs.(*intelephense.Phrase)
	if !ok || ph.Type != intelephense.PhraseQualifiedName {
		return false
	}

	text := c.Doc.NodeText(ph, intelephense.TokenWhitespace, intelephense.TokenComment, intelephense.TokenDocComment)

	return strings.EqualFold(text, "parent")
}

func sameFQN(a, b string) bool {
	return strings.EqualFold(strings.TrimPrefix(a, "\\"), strings.TrimPrefix(b, "\\"))
}
