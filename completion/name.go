package completion

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/khongten001/intelephense"
	"github.com/khongten001/intelephense/analysis"
)

// NameStrategy is the fallback for any qualified or relative name not
// claimed by a more specific strategy: it offers keywords plus classes,
// functions and constants from the index.
type NameStrategy struct{}

func (NameStrategy) Name() string { return "name" }

func (NameStrategy) CanSuggest(c *Context) bool {
	name, _ := c.NameContext()

	return name != nil
}

func (NameStrategy) Completions(c *Context) *protocol.CompletionList {
	name, encl := c.NameContext()
	if name == nil {
		return emptyResult()
	}

	word := strings.TrimPrefix(c.Word, "\\")

	var items []protocol.CompletionItem

	// Statement keywords only make sense where a statement can start.
	keywords := expressionKeywords
	if encl != nil && encl.Type == intelephense.PhraseExpressionStatement {
		keywords = statementKeywords
	}

	for _, kw := range keywords {
		if matchesWord(kw, word) {
			items = append(items, keywordItem(kw))
		}
	}

	matches := c.Index.Match(word, func(s *analysis.Symbol) bool {
		switch s.Kind {
		case analysis.KindClass, analysis.KindInterface, analysis.KindTrait,
			analysis.KindFunction, analysis.KindConstant:
			return true
		}

		return false
	})

	for _, s := range matches {
		items = append(items, nameSymbolItem(c, s, name.Type))
	}

	return truncate(items, c.MaxItems)
}
