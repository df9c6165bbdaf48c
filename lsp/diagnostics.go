package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/khongten001/intelephense"
	"github.com/khongten001/intelephense/analysis"
)

// publishDiagnostics walks the document's current tree and reports every
// parse error the error-tolerant parser recorded.
func (s *Server) publishDiagnostics(ctx context.Context, doc *analysis.ParsedDocument) {
	diagnostics := collectParseErrors(doc)

	s.logger.Debug("publishing diagnostics",
		zap.String("uri", string(doc.URI())),
		zap.Int("count", len(diagnostics)))

	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         doc.URI(),
		Diagnostics: diagnostics,
	})
	if err != nil {
		s.logger.Error("failed to publish diagnostics", zap.Error(err))
	}
}

// collectParseErrors flattens the tree's embedded parse errors into LSP
// diagnostics, in document order.
func collectParseErrors(doc *analysis.ParsedDocument) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	intelephense.Walk(doc.Tree(), func(n intelephense.Node, _ []intelephense.Node) bool {
		ph, ok := n.(*intelephense.Phrase)
		if !ok {
			return true
		}

		for _, perr := range ph.Errors {
			pos := doc.PositionAtOffset(perr.Offset)

			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    protocol.Range{Start: pos, End: pos},
				Severity: protocol.DiagnosticSeverityError,
				Source:   "phpls",
				Message:  perr.Error(),
			})
		}

		return true
	}, nil)

	return diagnostics
}
