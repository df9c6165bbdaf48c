package completion

import (
	"fmt"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/khongten001/intelephense"
	"github.com/khongten001/intelephense/analysis"
)

// superglobals are always in scope for variable completion.
var superglobals = []string{
	"$GLOBALS", "$_SERVER", "$_GET", "$_POST", "$_FILES",
	"$_REQUEST", "$_SESSION", "$_ENV", "$_COOKIE", "$argc", "$argv",
}

// statementKeywords are offered at statement position.
var statementKeywords = []string{
	"abstract", "class", "const", "echo", "final", "for", "foreach",
	"function", "global", "if", "interface", "namespace", "new",
	"return", "static", "switch", "throw", "trait", "try", "use", "while",
}

// expressionKeywords are offered inside an expression.
var expressionKeywords = []string{
	"array", "clone", "false", "function", "instanceof", "new", "null",
	"parent", "self", "static", "true",
}

// emptyResult is the fail-closed answer: no items, not incomplete.
func emptyResult() *protocol.CompletionList {
	return &protocol.CompletionList{Items: []protocol.CompletionItem{}}
}

// truncate caps items at max and flags the result incomplete iff the true
// match count exceeded the cap. Index ordering is preserved.
func truncate(items []protocol.CompletionItem, max int) *protocol.CompletionList {
	if max > 0 && len(items) > max {
		return &protocol.CompletionList{IsIncomplete: true, Items: items[:max]}
	}

	return &protocol.CompletionList{Items: items}
}

func keywordItem(kw string) protocol.CompletionItem {
	return protocol.CompletionItem{
		Label:  kw,
		Kind:   protocol.CompletionItemKindKeyword,
		Detail: "keyword",
	}
}

func variableItem(name, detail string) protocol.CompletionItem {
	return protocol.CompletionItem{
		Label:  name,
		Kind:   protocol.CompletionItemKindVariable,
		Detail: detail,
	}
}

// classItem presents a class-like symbol in a name position, applying the
// name-shortening rule.
func classItem(c *Context, s *analysis.Symbol, nameForm intelephense.PhraseType) protocol.CompletionItem {
	label, detail := shortenName(c, s.Name, nameForm)

	kind := protocol.CompletionItemKindClass
	if s.Kind == analysis.KindInterface {
		kind = protocol.CompletionItemKindInterface
	}

	item := protocol.CompletionItem{
		Label:  label,
		Kind:   kind,
		Detail: detail,
	}

	if item.Detail == "" {
		item.Detail = s.Detail
	}

	attachDoc(&item, s)

	return item
}

// attachDoc adds the symbol's documentation as markdown when present.
func attachDoc(item *protocol.CompletionItem, s *analysis.Symbol) {
	if s.Doc == "" {
		return
	}

	item.Documentation = &protocol.MarkupContent{
		Kind:  protocol.Markdown,
		Value: s.Doc,
	}
}

// shortenName maps a symbol FQN to a display label: the current namespace
// prefix is dropped; an import alias uses the alias with the original name
// as detail; otherwise a leading separator is prepended unless the typed
// form is already fully qualified.
func shortenName(c *Context, fqn string, nameForm intelephense.PhraseType) (label, detail string) {
	fqn = strings.TrimPrefix(fqn, "\\")

	if ns := c.File.Namespace; ns != "" && strings.HasPrefix(strings.ToLower(fqn), strings.ToLower(ns)+"\\") {
		return fqn[len(ns)+1:], ""
	}

	if alias, ok := c.File.AliasFor(fqn); ok {
		return alias, fqn
	}

	if nameForm == intelephense.PhraseFullyQualifiedName {
		return fqn, ""
	}

	return "\\" + fqn, ""
}

// nameSymbolItem presents a class, function or constant in a general name
// position. Any other kind here is an index/strategy contract violation.
func nameSymbolItem(c *Context, s *analysis.Symbol, nameForm intelephense.PhraseType) protocol.CompletionItem {
	switch s.Kind {
	case analysis.KindClass, analysis.KindInterface, analysis.KindTrait:
		return classItem(c, s, nameForm)
	case analysis.KindFunction:
		label, detail := shortenName(c, s.Name, nameForm)
		if detail == "" {
			detail = s.Detail
		}

		item := protocol.CompletionItem{
			Label:  label,
			Kind:   protocol.CompletionItemKindFunction,
			Detail: detail,
		}
		attachDoc(&item, s)

		return item
	case analysis.KindConstant:
		label, detail := shortenName(c, s.Name, nameForm)
		if detail == "" {
			detail = s.Detail
		}

		item := protocol.CompletionItem{
			Label:  label,
			Kind:   protocol.CompletionItemKindConstant,
			Detail: detail,
		}
		attachDoc(&item, s)

		return item
	default:
		panic(fmt.Sprintf("completion: symbol kind %d cannot be presented in a name position", s.Kind))
	}
}

// memberItem presents a class member. scoped selects the Foo::$bar
// presentation; object access drops the property sigil. A symbol that is
// neither constant, method nor property here means the index and the
// strategy disagree about an invariant, which is fatal.
func memberItem(s *analysis.Symbol, scoped bool) protocol.CompletionItem {
	detail := s.Detail
	if detail == "" && s.Scope != "" {
		detail = s.Scope
	}

	var item protocol.CompletionItem

	switch s.Kind {
	case analysis.KindMethod:
		item = protocol.CompletionItem{
			Label:  s.Name,
			Kind:   protocol.CompletionItemKindMethod,
			Detail: detail,
		}
	case analysis.KindProperty:
		label := s.Name
		if !scoped {
			label = strings.TrimPrefix(label, "$")
		}

		item = protocol.CompletionItem{
			Label:  label,
			Kind:   protocol.CompletionItemKindProperty,
			Detail: detail,
		}
	case analysis.KindClassConstant:
		item = protocol.CompletionItem{
			Label:  s.Name,
			Kind:   protocol.CompletionItemKindConstant,
			Detail: detail,
		}
	default:
		panic(fmt.Sprintf("completion: symbol kind %d cannot be presented as a member", s.Kind))
	}

	attachDoc(&item, s)

	return item
}
