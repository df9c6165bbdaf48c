package analysis_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khongten001/intelephense/analysis"
)

func newFileContext(t *testing.T, src string) *analysis.FileContext {
	t.Helper()

	doc, _ := newTestDocument(t, src)

	return analysis.NewFileContext(doc)
}

func TestFileContext_Namespace(t *testing.T) {
	t.Parallel()

	fc := newFileContext(t, "<?php\nnamespace App\\Http\\Controllers;\n")
	assert.Equal(t, "App\\Http\\Controllers", fc.Namespace)

	fc = newFileContext(t, "<?php $x;")
	assert.Equal(t, "", fc.Namespace, "no namespace declaration means global")
}

func TestFileContext_ResolveName(t *testing.T) {
	t.Parallel()

	src := "<?php\nnamespace App;\nuse Vendor\\Package\\Widget;\nuse Vendor\\Other\\Thing as Gadget;\n"
	fc := newFileContext(t, src)

	tests := []struct {
		name string
		want string
	}{
		{"\\Global\\Thing", "Global\\Thing"},
		{"Widget", "Vendor\\Package\\Widget"},
		{"Widget\\Sub", "Vendor\\Package\\Widget\\Sub"},
		{"Gadget", "Vendor\\Other\\Thing"},
		{"namespace\\Helper", "App\\Helper"},
		{"Local", "App\\Local"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, fc.ResolveName(tt.name), "ResolveName(%q)", tt.name)
	}
}

func TestFileContext_ResolveNameGlobalNamespace(t *testing.T) {
	t.Parallel()

	fc := newFileContext(t, "<?php $x;")
	assert.Equal(t, "Foo", fc.ResolveName("Foo"))
}

func TestFileContext_AliasFor(t *testing.T) {
	t.Parallel()

	src := "<?php\nnamespace App;\nuse Vendor\\Other\\Thing as Gadget;\n"
	fc := newFileContext(t, src)

	alias, ok := fc.AliasFor("Vendor\\Other\\Thing")
	require.True(t, ok)
	assert.Equal(t, "Gadget", alias, "alias keeps its source spelling")

	_, ok = fc.AliasFor("Never\\Imported")
	assert.False(t, ok)
}

func TestFileContext_EnclosingClassAt(t *testing.T) {
	t.Parallel()

	src := "<?php\nnamespace App;\nclass Child extends Base {\n\tpublic function m() { $x; }\n}\n$outside;\n"
	fc := newFileContext(t, src)

	inside := strings.Index(src, "$x")
	ref := fc.EnclosingClassAt(inside)
	require.NotNil(t, ref)
	assert.Equal(t, "App\\Child", ref.Name)
	assert.Equal(t, "App\\Base", ref.Base, "extends resolves through the namespace")

	outside := strings.Index(src, "$outside")
	assert.Nil(t, fc.EnclosingClassAt(outside))
}

func TestFileContext_EnclosingAnonymousClass(t *testing.T) {
	t.Parallel()

	src := "<?php $h = new class { public function go() { $y; } };"
	fc := newFileContext(t, src)

	ref := fc.EnclosingClassAt(strings.Index(src, "$y"))
	require.NotNil(t, ref)
	assert.Contains(t, ref.Name, "#anon#", "anonymous classes get synthetic names")
}
