package analysis_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khongten001/intelephense"
	"github.com/khongten001/intelephense/analysis"
)

// resolveAt parses src, locates needle's simple variable or expression
// phrase, and resolves its type against the given index.
func resolveVariable(t *testing.T, src, needle string, index analysis.Index) analysis.TypeRef {
	t.Helper()

	doc, _ := newTestDocument(t, src)

	offset := strings.LastIndex(src, needle)
	require.GreaterOrEqual(t, offset, 0, "needle %q not in source", needle)

	tr := doc.Traverser()
	require.NotNil(t, tr.Find(offset), "no node at needle offset")

	sv := tr.AncestorMatching(func(ph *intelephense.Phrase) bool {
		return ph.Type == intelephense.PhraseSimpleVariable
	})
	require.NotNil(t, sv, "needle %q is not inside a simple variable", needle)

	resolver := analysis.NewResolver(doc, index)

	return resolver.ResolveExpressionType(sv)
}

func TestResolver_ThisIsEnclosingClass(t *testing.T) {
	t.Parallel()

	src := "<?php\nnamespace App;\nclass Svc {\n\tpublic function go() { $this; }\n}\n"

	got := resolveVariable(t, src, "$this;", analysis.NewMemoryIndex())
	assert.Equal(t, []string{"App\\Svc"}, got.AtomicClassNames())
}

func TestResolver_TypedParameter(t *testing.T) {
	t.Parallel()

	src := "<?php\nnamespace App;\nfunction handle(Request $req) { $req; }\n"

	got := resolveVariable(t, src, "$req;", analysis.NewMemoryIndex())
	assert.Equal(t, []string{"App\\Request"}, got.AtomicClassNames())
}

func TestResolver_AssignmentFromNew(t *testing.T) {
	t.Parallel()

	src := "<?php\nnamespace App;\n$svc = new Mailer();\n$svc;\n"

	got := resolveVariable(t, src, "$svc;", analysis.NewMemoryIndex())
	assert.Equal(t, []string{"App\\Mailer"}, got.AtomicClassNames())
}

func TestResolver_InnerScopeDoesNotLeakOut(t *testing.T) {
	t.Parallel()

	// The assignment inside the closure must not type $v at file scope.
	src := "<?php\n$f = function () { $v = new Inner(); };\n$v;\n"

	got := resolveVariable(t, src, "$v;", analysis.NewMemoryIndex())
	assert.True(t, got.IsEmpty(), "got %v", got.AtomicClassNames())
}

func TestResolver_PropertyChain(t *testing.T) {
	t.Parallel()

	index := analysis.NewMemoryIndex()
	index.Add(
		&analysis.Symbol{Kind: analysis.KindClass, Name: "App\\Svc"},
		&analysis.Symbol{Kind: analysis.KindClass, Name: "App\\Repo"},
		&analysis.Symbol{Kind: analysis.KindProperty, Name: "$repo", Scope: "App\\Svc", TypeName: "App\\Repo"},
	)

	src := "<?php\nnamespace App;\nclass Svc {\n\tpublic function go() { $x = $this->repo; $x; }\n}\n"

	got := resolveVariable(t, src, "$x;", index)
	assert.Equal(t, []string{"App\\Repo"}, got.AtomicClassNames())
}

func TestResolver_FunctionCallReturnType(t *testing.T) {
	t.Parallel()

	index := analysis.NewMemoryIndex()
	index.Add(
		&analysis.Symbol{Kind: analysis.KindFunction, Name: "App\\makeClient", TypeName: "App\\Client"},
		&analysis.Symbol{Kind: analysis.KindClass, Name: "App\\Client"},
	)

	src := "<?php\nnamespace App;\n$c = makeClient();\n$c;\n"

	got := resolveVariable(t, src, "$c;", index)
	assert.Equal(t, []string{"App\\Client"}, got.AtomicClassNames())
}

func TestResolver_MethodReturnType(t *testing.T) {
	t.Parallel()

	index := analysis.NewMemoryIndex()
	index.Add(
		&analysis.Symbol{Kind: analysis.KindClass, Name: "App\\Repo"},
		&analysis.Symbol{Kind: analysis.KindClass, Name: "App\\User"},
		&analysis.Symbol{Kind: analysis.KindMethod, Name: "find", Scope: "App\\Repo", TypeName: "App\\User"},
	)

	src := "<?php\nnamespace App;\nfunction f(Repo $r) { $u = $r->find(1); $u; }\n"

	got := resolveVariable(t, src, "$u;", index)
	assert.Equal(t, []string{"App\\User"}, got.AtomicClassNames())
}

func TestResolver_UnknownHasNoType(t *testing.T) {
	t.Parallel()

	src := "<?php $mystery;"

	got := resolveVariable(t, src, "$mystery;", analysis.NewMemoryIndex())
	assert.True(t, got.IsEmpty(), "an undeterminable type is empty, not an error")
}

func TestTypeRef_WithDeduplicates(t *testing.T) {
	t.Parallel()

	ref := analysis.NewTypeRef("A").With("B").With("a").With("\\B")
	assert.Len(t, ref.AtomicClassNames(), 2)
}

func TestTypeRef_Merge(t *testing.T) {
	t.Parallel()

	merged := analysis.NewTypeRef("A").Merge(analysis.NewTypeRef("B", "A"))
	assert.ElementsMatch(t, []string{"A", "B"}, merged.AtomicClassNames())
}
