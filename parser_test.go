package intelephense_test

import (
	"testing"

	"github.com/khongten001/intelephense"
)

// findPhrase returns the first phrase of the given type in depth-first
// order, or nil.
func findPhrase(root *intelephense.Phrase, typ intelephense.PhraseType) *intelephense.Phrase {
	var found *intelephense.Phrase

	intelephense.Walk(root, func(n intelephense.Node, _ []intelephense.Node) bool {
		if found != nil {
			return false
		}

		if ph, ok := n.(*intelephense.Phrase); ok && ph.Type == typ {
			found = ph

			return false
		}

		return true
	}, nil)

	return found
}

// collectErrors gathers every parse error recorded anywhere in the tree.
func collectErrors(root *intelephense.Phrase) []intelephense.ParseError {
	var errs []intelephense.ParseError

	intelephense.Walk(root, func(n intelephense.Node, _ []intelephense.Node) bool {
		if ph, ok := n.(*intelephense.Phrase); ok {
			errs = append(errs, ph.Errors...)
		}

		return true
	}, nil)

	return errs
}

func TestParse_AlwaysReturnsStatementList(t *testing.T) {
	t.Parallel()

	for _, src := range []string{"", "<?php", "garbage )))", "<?php class {{{"} {
		root := intelephense.Parse(src)
		if root == nil {
			t.Fatalf("Parse(%q) = nil", src)
		}

		if root.Type != intelephense.PhraseStatementList {
			t.Errorf("Parse(%q) root = %v, want statement list", src, root.Type)
		}
	}
}

func TestParse_TreeCoversSource(t *testing.T) {
	t.Parallel()

	src := "<?php\nnamespace App;\n\nclass Foo extends Bar {\n\tpublic function baz($x) { return $x; }\n}\n"
	root := intelephense.Parse(src)

	covered := 0

	intelephense.Walk(root, func(n intelephense.Node, _ []intelephense.Node) bool {
		if tok, ok := n.(*intelephense.Token); ok && tok.Type != intelephense.TokenEndOfFile {
			covered += tok.Length
		}

		return true
	}, nil)

	if covered != len(src) {
		t.Errorf("tree tokens cover %d bytes, source has %d", covered, len(src))
	}
}

func TestParse_ClassWithMethod(t *testing.T) {
	t.Parallel()

	src := "<?php class Widget { public function render(): void {} private $name; const LIMIT = 3; }"
	root := intelephense.Parse(src)

	if findPhrase(root, intelephense.PhraseClassDeclaration) == nil {
		t.Fatal("no class declaration parsed")
	}

	if findPhrase(root, intelephense.PhraseMethodDeclaration) == nil {
		t.Error("no method declaration parsed")
	}

	if findPhrase(root, intelephense.PhrasePropertyDeclaration) == nil {
		t.Error("no property declaration parsed")
	}

	if findPhrase(root, intelephense.PhraseClassConstDeclaration) == nil {
		t.Error("no class constant declaration parsed")
	}
}

func TestParse_NamespaceAndUse(t *testing.T) {
	t.Parallel()

	src := "<?php\nnamespace App\\Http;\nuse App\\Models\\User as U;\nuse Psr\\Log\\LoggerInterface;\n"
	root := intelephense.Parse(src)

	if findPhrase(root, intelephense.PhraseNamespaceDefinition) == nil {
		t.Fatal("no namespace definition parsed")
	}

	if findPhrase(root, intelephense.PhraseNamespaceUseDeclaration) == nil {
		t.Fatal("no use declaration parsed")
	}

	if findPhrase(root, intelephense.PhraseNamespaceAliasingClause) == nil {
		t.Error("no aliasing clause parsed for `as U`")
	}
}

func TestParse_DanglingObjectOperator(t *testing.T) {
	t.Parallel()

	// The cursor shape completion depends on: member name is an empty
	// phrase carrying an error, not a dropped node.
	src := "<?php $foo->"
	root := intelephense.Parse(src)

	access := findPhrase(root, intelephense.PhraseObjectAccessExpression)
	if access == nil {
		t.Fatal("no object access expression parsed")
	}

	member := findPhrase(access, intelephense.PhraseMemberName)
	if member == nil {
		t.Fatal("no member name phrase")
	}

	if len(member.Errors) == 0 {
		t.Error("empty member name should carry a parse error")
	}
}

func TestParse_DanglingScopeOperator(t *testing.T) {
	t.Parallel()

	src := "<?php Foo::"
	root := intelephense.Parse(src)

	access := findPhrase(root, intelephense.PhraseScopedAccessExpression)
	if access == nil {
		t.Fatal("no scoped access expression parsed")
	}

	member := findPhrase(access, intelephense.PhraseScopedMemberName)
	if member == nil {
		t.Fatal("no scoped member name phrase")
	}

	if len(member.Errors) == 0 {
		t.Error("empty scoped member name should carry a parse error")
	}
}

func TestParse_BareDollarAfterDoubleColon(t *testing.T) {
	t.Parallel()

	src := "<?php Counter::$"
	root := intelephense.Parse(src)

	member := findPhrase(root, intelephense.PhraseScopedMemberName)
	if member == nil {
		t.Fatal("no scoped member name phrase")
	}

	variable := findPhrase(member, intelephense.PhraseSimpleVariable)
	if variable == nil {
		t.Fatal("bare $ after :: should parse as an incomplete simple variable")
	}

	if len(variable.Errors) == 0 {
		t.Error("incomplete variable should carry a parse error")
	}
}

func TestParse_DanglingNew(t *testing.T) {
	t.Parallel()

	src := "<?php $x = new "
	root := intelephense.Parse(src)

	creation := findPhrase(root, intelephense.PhraseObjectCreationExpression)
	if creation == nil {
		t.Fatal("no object creation expression parsed")
	}

	designator := findPhrase(creation, intelephense.PhraseClassTypeDesignator)
	if designator == nil {
		t.Fatal("no class type designator phrase")
	}
}

func TestParse_ErrorRecoveryKeepsFollowingStatements(t *testing.T) {
	t.Parallel()

	src := "<?php $a = ; $b = 2;"
	root := intelephense.Parse(src)

	if len(collectErrors(root)) == 0 {
		t.Error("broken assignment should record a parse error")
	}

	// The statement after the error must still parse.
	var assignments int

	intelephense.Walk(root, func(n intelephense.Node, _ []intelephense.Node) bool {
		if ph, ok := n.(*intelephense.Phrase); ok && ph.Type == intelephense.PhraseAssignmentExpression {
			assignments++
		}

		return true
	}, nil)

	if assignments < 2 {
		t.Errorf("parsed %d assignments, want 2", assignments)
	}
}

func TestParse_QualifiedNameForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want intelephense.PhraseType
	}{
		{"<?php foo();", intelephense.PhraseQualifiedName},
		{"<?php \\App\\foo();", intelephense.PhraseFullyQualifiedName},
		{"<?php namespace\\foo();", intelephense.PhraseRelativeQualifiedName},
	}

	for _, tt := range tests {
		root := intelephense.Parse(tt.src)
		if findPhrase(root, tt.want) == nil {
			t.Errorf("Parse(%q): no %v phrase", tt.src, tt.want)
		}
	}
}

func TestParse_FunctionCallChain(t *testing.T) {
	t.Parallel()

	src := "<?php $repo->find(1)->getName();"
	root := intelephense.Parse(src)

	if findPhrase(root, intelephense.PhraseFunctionCallExpression) == nil {
		t.Error("no function call expression parsed")
	}

	if findPhrase(root, intelephense.PhraseObjectAccessExpression) == nil {
		t.Error("no object access expression parsed")
	}
}
