package completion

import (
	"go.lsp.dev/protocol"

	"github.com/khongten001/intelephense"
)

// VariableStrategy completes a simple variable from the names already
// bound in the enclosing scope, plus the superglobals.
type VariableStrategy struct{}

func (VariableStrategy) Name() string { return "simpleVariable" }

func (VariableStrategy) CanSuggest(c *Context) bool {
	tok := c.Token()
	if tok == nil {
		return false
	}

	switch tok.Type {
	case intelephense.TokenVariableName, intelephense.TokenDollar:
		// Foo::$bar belongs to the scoped access strategy.
		if a := c.Ancestor(2); a != nil && a.Type == intelephense.PhraseScopedMemberName {
			return false
		}

		return true
	}

	return false
}

func (VariableStrategy) Completions(c *Context) *protocol.CompletionList {
	scope := c.EnclosingScope()

	var items []protocol.CompletionItem

	seen := make(map[string]bool)

	add := func(name, detail string) {
		if name == "" || name == "$" || seen[name] || !matchesWord(name, c.Word) {
			return
		}

		seen[name] = true

		items = append(items, variableItem(name, detail))
	}

	if c.EnclosingClass() != nil && scope.Type == intelephense.PhraseMethodDeclaration {
		add("$this", "current instance")
	}

	intelephense.Walk(scope, func(n intelephense.Node, spine []intelephense.Node) bool {
		ph, ok := n.(*intelephense.Phrase)
		if !ok {
			return true
		}

		switch ph.Type {
		case intelephense.PhraseFunctionDeclaration,
			intelephense.PhraseMethodDeclaration,
			intelephense.PhraseAnonymousFunctionCreationExpression:
			// Inner scopes do not leak their bindings.
			if ph != scope {
				return false
			}
		case intelephense.PhraseParameterDeclaration:
			add(parameterName(c, ph), "parameter")

			return false
		case intelephense.PhraseSimpleVariable:
			// Foo::$x names a static property of Foo, not a binding
			// in this scope.
			if len(spine) > 0 {
				if parent, ok := spine[len(spine)-1].(*intelephense.Phrase); ok && parent.Type == intelephense.PhraseScopedMemberName {
					return false
				}
			}

			add(c.Doc.NodeText(ph, intelephense.TokenWhitespace, intelephense.TokenComment, intelephense.TokenDocComment), "variable")

			return false
		}

		return true
	}, nil)

	for _, g := range superglobals {
		if !seen[g] && matchesWord(g, c.Word) {
			items = append(items, variableItem(g, "superglobal"))
		}
	}

	return truncate(items, c.MaxItems)
}

// parameterName extracts the variable name token of a parameter
// declaration.
func parameterName(c *Context, param *intelephense.Phrase) string {
	for _, child := range param.Children {
		if tok, ok := child.(*intelephense.Token); ok && tok.Type == intelephense.TokenVariableName {
			return c.Doc.TokenText(tok)
		}
	}

	return ""
}
