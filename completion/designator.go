package completion

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/khongten001/intelephense"
	"github.com/khongten001/intelephense/analysis"
)

// ClassTypeDesignatorStrategy completes the class name after new. Only
// concrete, instantiable classes are offered.
type ClassTypeDesignatorStrategy struct{}

func (ClassTypeDesignatorStrategy) Name() string { return "classTypeDesignator" }

func (ClassTypeDesignatorStrategy) CanSuggest(c *Context) bool {
	if name, encl := c.NameContext(); name != nil {
		return encl != nil && encl.Type == intelephense.PhraseClassTypeDesignator
	}

	// new | with no name typed yet: the cursor trivia is kept inside
	// the empty designator phrase.
	parent := c.Parent()

	return parent != nil && parent.Type == intelephense.PhraseClassTypeDesignator
}

func (ClassTypeDesignatorStrategy) Completions(c *Context) *protocol.CompletionList {
	nameForm := intelephense.PhraseQualifiedName
	if name, _ := c.NameContext(); name != nil {
		nameForm = name.Type
	}

	word := strings.TrimPrefix(c.Word, "\\")

	matches := c.Index.Match(word, func(s *analysis.Symbol) bool {
		return s.Kind == analysis.KindClass &&
			!s.Has(analysis.ModifierAbstract) &&
			!s.Has(analysis.ModifierAnonymous)
	})

	items := make([]protocol.CompletionItem, 0, len(matches))
	for _, s := range matches {
		items = append(items, classItem(c, s, nameForm))
	}

	return truncate(items, c.MaxItems)
}
