package analysis

import (
	"strings"

	"github.com/khongten001/intelephense"
)

// FileContext captures the name-resolution environment of one document:
// its namespace and use-declaration alias table.
type FileContext struct {
	doc *ParsedDocument

	// Namespace is the document's namespace FQN without a leading
	// backslash; empty for the global namespace.
	Namespace string

	aliases    map[string]string // lower alias -> FQN
	aliasNames map[string]string // lower alias -> alias as written
}

// NewFileContext scans the document's tree for namespace and use
// declarations.
func NewFileContext(doc *ParsedDocument) *FileContext {
	fc := &FileContext{
		doc:        doc,
		aliases:    make(map[string]string),
		aliasNames: make(map[string]string),
	}

	root := doc.Tree()
	for _, child := range root.Children {
		ph, ok := child.(*intelephense.Phrase)
		if !ok {
			continue
		}

		switch ph.Type {
		case intelephense.PhraseNamespaceDefinition:
			if name := childPhrase(ph, intelephense.PhraseNamespaceName); name != nil {
				fc.Namespace = fc.nameText(name)
			}
		case intelephense.PhraseNamespaceUseDeclaration:
			fc.addUseClauses(ph)
		}
	}

	return fc
}

func (fc *FileContext) addUseClauses(decl *intelephense.Phrase) {
	for _, child := range decl.Children {
		clause, ok := child.(*intelephense.Phrase)
		if !ok || clause.Type != intelephense.PhraseNamespaceUseClause {
			continue
		}

		var fqn, alias string

		for _, cc := range clause.Children {
			ph, ok := cc.(*intelephense.Phrase)
			if !ok {
				continue
			}

			switch ph.Type {
			case intelephense.PhraseQualifiedName,
				intelephense.PhraseFullyQualifiedName,
				intelephense.PhraseRelativeQualifiedName:
				fqn = strings.TrimPrefix(fc.nameText(ph), "\\")
			case intelephense.PhraseNamespaceAliasingClause:
				if tok := intelephense.LastToken(ph); tok != nil && tok.Type == intelephense.TokenName {
					alias = fc.doc.TokenText(tok)
				}
			}
		}

		if fqn == "" {
			continue
		}

		if alias == "" {
			if i := strings.LastIndexByte(fqn, '\\'); i >= 0 {
				alias = fqn[i+1:]
			} else {
				alias = fqn
			}
		}

		key := strings.ToLower(alias)
		fc.aliases[key] = fqn
		fc.aliasNames[key] = alias
	}
}

// nameText is NodeText with trivia stripped.
func (fc *FileContext) nameText(n intelephense.Node) string {
	return fc.doc.NodeText(n,
		intelephense.TokenWhitespace, intelephense.TokenComment, intelephense.TokenDocComment)
}

// ResolveName resolves a (possibly qualified) name as written in source to
// an FQN without a leading backslash, applying the PHP rules: explicit
// root, use aliases, namespace-relative, then current namespace.
func (fc *FileContext) ResolveName(name string) string {
	if name == "" {
		return ""
	}

	if strings.HasPrefix(name, "\\") {
		return name[1:]
	}

	first := name
	rest := ""

	if i := strings.IndexByte(name, '\\'); i >= 0 {
		first, rest = name[:i], name[i:]
	}

	if strings.EqualFold(first, "namespace") {
		return fc.Namespace + rest
	}

	if fqn, ok := fc.aliases[strings.ToLower(first)]; ok {
		return fqn + rest
	}

	if fc.Namespace == "" {
		return name
	}

	return fc.Namespace + "\\" + name
}

// AliasFor returns the use alias under which an FQN is imported, as
// written in the use declaration, if any.
func (fc *FileContext) AliasFor(fqn string) (string, bool) {
	fqn = strings.TrimPrefix(fqn, "\\")

	for key, target := range fc.aliases {
		if strings.EqualFold(target, fqn) {
			return fc.aliasNames[key], true
		}
	}

	return "", false
}

// ClassRef identifies a class declaration: its FQN and its immediate base
// class FQN, both without leading backslashes. Base is empty when there is
// no extends clause.
type ClassRef struct {
	Name string
	Base string
}

// EnclosingClassAt returns the class-like declaration enclosing offset, or
// nil when the offset is not inside one. Anonymous classes get their
// deterministic synthetic name.
func (fc *FileContext) EnclosingClassAt(offset int) *ClassRef {
	tr := fc.doc.Traverser()
	if tr.Find(offset) == nil {
		return nil
	}

	decl := tr.AncestorMatching(func(ph *intelephense.Phrase) bool {
		switch ph.Type {
		case intelephense.PhraseClassDeclaration,
			intelephense.PhraseInterfaceDeclaration,
			intelephense.PhraseTraitDeclaration,
			intelephense.PhraseAnonymousClassDeclaration:
			return true
		}

		return false
	})
	if decl == nil {
		return nil
	}

	return fc.classRef(decl)
}

func (fc *FileContext) classRef(decl *intelephense.Phrase) *ClassRef {
	ref := &ClassRef{}

	header := childPhrase(decl, intelephense.PhraseClassDeclarationHeader)
	if header == nil {
		return ref
	}

	if decl.Type == intelephense.PhraseAnonymousClassDeclaration {
		ref.Name = fc.doc.CreateAnonymousName(decl)
	} else {
		for _, child := range header.Children {
			if tok, ok := child.(*intelephense.Token); ok && tok.Type == intelephense.TokenName {
				ref.Name = fc.ResolveName(fc.doc.TokenText(tok))

				break
			}
		}
	}

	if base := childPhrase(header, intelephense.PhraseClassBaseClause); base != nil {
		for _, child := range base.Children {
			if ph, ok := child.(*intelephense.Phrase); ok && isQualifiedName(ph.Type) {
				ref.Base = fc.ResolveName(fc.nameText(ph))

				break
			}
		}
	}

	return ref
}

func isQualifiedName(t intelephense.PhraseType) bool {
	switch t {
	case intelephense.PhraseQualifiedName,
		intelephense.PhraseFullyQualifiedName,
		intelephense.PhraseRelativeQualifiedName:
		return true
	}

	return false
}

// childPhrase returns the first direct child phrase of the given type.
func childPhrase(ph *intelephense.Phrase, t intelephense.PhraseType) *intelephense.Phrase {
	for _, child := range ph.Children {
		if sub, ok := child.(*intelephense.Phrase); ok && sub.Type == t {
			return sub
		}
	}

	return nil
}
