package completion

import (
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/khongten001/intelephense/analysis"
)

// Provider routes a completion request to the first strategy whose
// predicate accepts the cursor shape. The strategy order is fixed, most
// syntactically specific first, so a broad matcher never shadows a
// narrower one that fires on the same node:
//
//  1. class-type designator
//  2. simple variable
//  3. scoped (static) access
//  4. object (instance) access
//  5. general name
type Provider struct {
	store    *analysis.Store
	index    analysis.Index
	maxItems int
	logger   *zap.Logger

	strategies []Strategy
}

// NewProvider builds a provider over a document store and symbol index.
// maxItems caps every result; zero or negative disables the cap.
func NewProvider(store *analysis.Store, index analysis.Index, maxItems int, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		store:    store,
		index:    index,
		maxItems: maxItems,
		logger:   logger,
		strategies: []Strategy{
			ClassTypeDesignatorStrategy{},
			VariableStrategy{},
			ScopedAccessStrategy{},
			ObjectAccessStrategy{},
			NameStrategy{},
		},
	}
}

// Complete answers a completion request. An unknown document or a cursor
// no strategy claims yields the empty, complete result.
func (p *Provider) Complete(uri protocol.DocumentURI, pos protocol.Position) *protocol.CompletionList {
	doc := p.store.Find(uri)
	if doc == nil {
		p.logger.Debug("completion for unknown document", zap.String("uri", string(uri)))

		return emptyResult()
	}

	c := NewContext(doc, p.index, pos, p.maxItems)

	for _, s := range p.strategies {
		if !s.CanSuggest(c) {
			continue
		}

		list := s.Completions(c)

		p.logger.Debug("completion",
			zap.String("uri", string(uri)),
			zap.String("strategy", s.Name()),
			zap.Int("items", len(list.Items)),
			zap.Bool("incomplete", list.IsIncomplete),
		)

		return list
	}

	return emptyResult()
}
