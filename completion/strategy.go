package completion

import (
	"strings"

	"go.lsp.dev/protocol"
)

// Strategy is one completion behavior, keyed to a syntactic cursor shape.
// Strategies are stateless; both methods read only the per-request Context.
type Strategy interface {
	// Name identifies the strategy in logs and tests.
	Name() string

	// CanSuggest reports whether the cursor shape belongs to this
	// strategy.
	CanSuggest(c *Context) bool

	// Completions produces the capped item list for the cursor.
	Completions(c *Context) *protocol.CompletionList
}

// matchesWord is the prefix filter strategies apply to member names. It is
// case-insensitive and ignores a leading property sigil on either side, so
// typing "na" offers both name() and $name.
func matchesWord(name, word string) bool {
	if word == "" {
		return true
	}

	name = strings.TrimPrefix(name, "$")
	word = strings.TrimPrefix(word, "$")

	return len(name) >= len(word) && strings.EqualFold(name[:len(word)], word)
}
