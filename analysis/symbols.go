package analysis

import (
	"strings"
	"sync"
)

// SymbolKind classifies an indexed declaration.
type SymbolKind int

// Symbol kinds.
const (
	KindNone SymbolKind = iota
	KindClass
	KindInterface
	KindTrait
	KindFunction
	KindConstant
	KindMethod
	KindProperty
	KindClassConstant
	KindParameter
	KindVariable
)

// Modifier is a bitset of declaration modifiers.
type Modifier uint16

// Modifiers.
const (
	ModifierPublic Modifier = 1 << iota
	ModifierProtected
	ModifierPrivate
	ModifierStatic
	ModifierAbstract
	ModifierFinal
	ModifierAnonymous
)

// Symbol is one indexed declaration. Top-level symbols (classes,
// interfaces, traits, functions, constants) carry fully qualified names;
// members carry their bare name (properties include the $ sigil) and the
// owning class FQN in Scope.
type Symbol struct {
	Kind      SymbolKind
	Name      string
	Scope     string
	Modifiers Modifier

	// BaseClass is the FQN of the immediate base, for class-like symbols.
	BaseClass string

	// TypeName is the declared or inferred type FQN, for members,
	// parameters and functions (return type).
	TypeName string

	Detail string
	Doc    string
}

// Has reports whether the symbol carries the given modifier.
func (s *Symbol) Has(m Modifier) bool {
	return s.Modifiers&m != 0
}

// Visibility returns the symbol's visibility modifier, defaulting to
// public when none is set.
func (s *Symbol) Visibility() Modifier {
	switch {
	case s.Has(ModifierPrivate):
		return ModifierPrivate
	case s.Has(ModifierProtected):
		return ModifierProtected
	default:
		return ModifierPublic
	}
}

// ShortName returns the unqualified final segment of the symbol name.
func (s *Symbol) ShortName() string {
	if i := strings.LastIndexByte(s.Name, '\\'); i >= 0 {
		return s.Name[i+1:]
	}

	return s.Name
}

// MemberQuery pairs a type name with an acceptance predicate encoding the
// visibility rules of the requesting context.
type MemberQuery struct {
	TypeName string
	Accept   func(*Symbol) bool
}

// Index is the symbol index consumed by the completion engine. Both
// methods preserve the index's natural (insertion) ordering; the
// completion layer imposes no re-sort of its own.
type Index interface {
	// Match returns symbols whose name matches text (case-insensitive
	// prefix of either the full name or its final segment; empty text
	// matches everything), filtered by pred.
	Match(text string, pred func(*Symbol) bool) []*Symbol

	// MembersOfTypes returns the members of each queried type, walking
	// base-class chains. Redeclarations shadow inherited members of the
	// same name; each query's predicate is applied per candidate.
	MembersOfTypes(queries []MemberQuery) []*Symbol
}

// MemoryIndex is an insertion-ordered in-memory Index.
type MemoryIndex struct {
	mu      sync.RWMutex
	symbols []*Symbol
	classes map[string]*Symbol   // lower FQN -> class-like symbol
	members map[string][]*Symbol // lower owner FQN -> members in order
}

// NewMemoryIndex creates an empty index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		classes: make(map[string]*Symbol),
		members: make(map[string][]*Symbol),
	}
}

// Add appends a symbol to the index.
func (ix *MemoryIndex) Add(symbols ...*Symbol) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for _, s := range symbols {
		ix.symbols = append(ix.symbols, s)

		switch s.Kind {
		case KindClass, KindInterface, KindTrait:
			ix.classes[lowerFQN(s.Name)] = s
		case KindMethod, KindProperty, KindClassConstant:
			key := lowerFQN(s.Scope)
			ix.members[key] = append(ix.members[key], s)
		}
	}
}

// Match implements Index.
func (ix *MemoryIndex) Match(text string, pred func(*Symbol) bool) []*Symbol {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var out []*Symbol

	for _, s := range ix.symbols {
		if !nameMatches(s, text) {
			continue
		}

		if pred != nil && !pred(s) {
			continue
		}

		out = append(out, s)
	}

	return out
}

// MembersOfTypes implements Index.
func (ix *MemoryIndex) MembersOfTypes(queries []MemberQuery) []*Symbol {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var out []*Symbol

	for _, q := range queries {
		seen := make(map[string]bool)
		name := lowerFQN(q.TypeName)

		// Bounded walk in case of an inheritance cycle in a broken
		// workspace.
		for depth := 0; name != "" && depth < 16; depth++ {
			for _, m := range ix.members[name] {
				key := strings.ToLower(m.Name)
				if seen[key] {
					continue
				}

				seen[key] = true

				if q.Accept == nil || q.Accept(m) {
					out = append(out, m)
				}
			}

			cls := ix.classes[name]
			if cls == nil {
				break
			}

			name = lowerFQN(cls.BaseClass)
		}
	}

	return out
}

// Class returns the class-like symbol for an FQN, or nil.
func (ix *MemoryIndex) Class(fqn string) *Symbol {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return ix.classes[lowerFQN(fqn)]
}

// Len returns the number of indexed symbols.
func (ix *MemoryIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	return len(ix.symbols)
}

func lowerFQN(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, "\\"))
}

func nameMatches(s *Symbol, text string) bool {
	if text == "" {
		return true
	}

	text = strings.ToLower(strings.TrimPrefix(text, "\\"))
	full := lowerFQN(s.Name)

	if strings.HasPrefix(full, text) {
		return true
	}

	short := strings.ToLower(s.ShortName())

	// Variables and properties carry a $ sigil; let a bare prefix match
	// them too.
	if strings.HasPrefix(short, text) {
		return true
	}

	return strings.HasPrefix(strings.TrimPrefix(short, "$"), strings.TrimPrefix(text, "$"))
}
