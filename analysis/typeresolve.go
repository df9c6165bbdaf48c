package analysis

import (
	"strings"

	"github.com/khongten001/intelephense"
)

// TypeRef is a resolved expression type: a possibly empty union of class
// FQNs. "No determinable type" is the empty TypeRef, never an error.
type TypeRef struct {
	names []string
}

// NewTypeRef builds a TypeRef from class FQNs, dropping empties and
// duplicates while preserving order.
func NewTypeRef(names ...string) TypeRef {
	var t TypeRef

	for _, n := range names {
		t = t.With(n)
	}

	return t
}

// With returns the union of t and one more class name.
func (t TypeRef) With(name string) TypeRef {
	name = strings.TrimPrefix(name, "\\")
	if name == "" {
		return t
	}

	for _, existing := range t.names {
		if strings.EqualFold(existing, name) {
			return t
		}
	}

	return TypeRef{names: append(append([]string(nil), t.names...), name)}
}

// Merge returns the union of two TypeRefs.
func (t TypeRef) Merge(other TypeRef) TypeRef {
	out := t
	for _, n := range other.names {
		out = out.With(n)
	}

	return out
}

// AtomicClassNames enumerates the union's class FQNs.
func (t TypeRef) AtomicClassNames() []string {
	return append([]string(nil), t.names...)
}

// IsEmpty reports whether no class type could be determined.
func (t TypeRef) IsEmpty() bool {
	return len(t.names) == 0
}

// ExprTypeResolver resolves the type of an expression node.
type ExprTypeResolver interface {
	ResolveExpressionType(n intelephense.Node) TypeRef
}

// maxResolveDepth bounds recursion through assignment chains.
const maxResolveDepth = 8

// Resolver determines expression types from a single document's tree and
// the symbol index. Resolution is local: assignments, parameters, member
// and return type declarations. Cross-function inference is out of scope.
type Resolver struct {
	doc   *ParsedDocument
	index Index
	fc    *FileContext
}

// NewResolver creates a resolver for one document snapshot.
func NewResolver(doc *ParsedDocument, index Index) *Resolver {
	return &Resolver{doc: doc, index: index, fc: NewFileContext(doc)}
}

// FileContext returns the document's name-resolution environment.
func (r *Resolver) FileContext() *FileContext {
	return r.fc
}

// ResolveExpressionType implements ExprTypeResolver.
func (r *Resolver) ResolveExpressionType(n intelephense.Node) TypeRef {
	return r.resolve(n, 0)
}

func (r *Resolver) resolve(n intelephense.Node, depth int) TypeRef {
	if depth > maxResolveDepth {
		return TypeRef{}
	}

	ph, ok := n.(*intelephense.Phrase)
	if !ok {
		return TypeRef{}
	}

	switch ph.Type {
	case intelephense.PhraseSimpleVariable:
		return r.variableType(ph, depth)
	case intelephense.PhraseQualifiedName,
		intelephense.PhraseFullyQualifiedName,
		intelephense.PhraseRelativeQualifiedName:
		return r.nameType(ph)
	case intelephense.PhraseObjectCreationExpression:
		return r.creationType(ph, depth)
	case intelephense.PhraseEncapsulatedExpression:
		if inner := firstChildPhrase(ph); inner != nil {
			return r.resolve(inner, depth+1)
		}
	case intelephense.PhraseAssignmentExpression:
		if rhs := lastChildPhrase(ph); rhs != nil {
			return r.resolve(rhs, depth+1)
		}
	case intelephense.PhraseObjectAccessExpression:
		return r.memberType(ph, intelephense.PhraseMemberName, depth)
	case intelephense.PhraseScopedAccessExpression:
		return r.memberType(ph, intelephense.PhraseScopedMemberName, depth)
	case intelephense.PhraseFunctionCallExpression:
		return r.callReturnType(ph)
	case intelephense.PhraseAnonymousClassDeclaration:
		return NewTypeRef(r.doc.CreateAnonymousName(ph))
	}

	return TypeRef{}
}

// nameType resolves a name used in type position, handling the relative
// class keywords.
func (r *Resolver) nameType(name *intelephense.Phrase) TypeRef {
	text := r.fc.nameText(name)

	switch strings.ToLower(text) {
	case "parent":
		if cls := r.enclosingClassOf(name); cls != nil && cls.Base != "" {
			return NewTypeRef(cls.Base)
		}

		return TypeRef{}
	case "self", "static":
		if cls := r.enclosingClassOf(name); cls != nil {
			return NewTypeRef(cls.Name)
		}

		return TypeRef{}
	default:
		return NewTypeRef(r.fc.ResolveName(text))
	}
}

func (r *Resolver) creationType(creation *intelephense.Phrase, depth int) TypeRef {
	designator := childPhrase(creation, intelephense.PhraseClassTypeDesignator)
	if designator == nil {
		if anon := childPhrase(creation, intelephense.PhraseAnonymousClassDeclaration); anon != nil {
			return NewTypeRef(r.doc.CreateAnonymousName(anon))
		}

		return TypeRef{}
	}

	for _, child := range designator.Children {
		ph, ok := child.(*intelephense.Phrase)
		if !ok {
			continue
		}

		if isQualifiedName(ph.Type) {
			return r.nameType(ph)
		}

		if ph.Type == intelephense.PhraseSimpleVariable {
			return r.resolve(ph, depth+1)
		}
	}

	return TypeRef{}
}

// memberType resolves the type of a member access by looking the member up
// on the lhs expression's type.
func (r *Resolver) memberType(access *intelephense.Phrase, nameType intelephense.PhraseType, depth int) TypeRef {
	if len(access.Children) == 0 {
		return TypeRef{}
	}

	lhsType := r.resolve(access.Children[0], depth+1)
	if lhsType.IsEmpty() {
		return TypeRef{}
	}

	memberName := ""
	if name := childPhrase(access, nameType); name != nil {
		memberName = r.fc.nameText(name)
	}

	if memberName == "" {
		return TypeRef{}
	}

	queries := make([]MemberQuery, 0, len(lhsType.AtomicClassNames()))
	for _, cls := range lhsType.AtomicClassNames() {
		queries = append(queries, MemberQuery{TypeName: cls, Accept: func(s *Symbol) bool {
			return strings.EqualFold(strings.TrimPrefix(s.Name, "$"), strings.TrimPrefix(memberName, "$"))
		}})
	}

	result := TypeRef{}
	for _, m := range r.index.MembersOfTypes(queries) {
		result = result.With(m.TypeName)
	}

	return result
}

func (r *Resolver) callReturnType(call *intelephense.Phrase) TypeRef {
	callee := firstChildPhrase(call)
	if callee == nil || !isQualifiedName(callee.Type) {
		return TypeRef{}
	}

	fqn := r.fc.ResolveName(r.fc.nameText(callee))

	result := TypeRef{}

	for _, s := range r.index.Match(fqn, func(s *Symbol) bool {
		return s.Kind == KindFunction && strings.EqualFold(strings.TrimPrefix(s.Name, "\\"), fqn)
	}) {
		result = result.With(s.TypeName)
	}

	return result
}

// variableType resolves a simple variable from its enclosing scope:
// $this, typed parameters, and prior new-expression assignments.
func (r *Resolver) variableType(sv *intelephense.Phrase, depth int) TypeRef {
	name := r.fc.nameText(sv)
	if name == "" {
		return TypeRef{}
	}

	if strings.EqualFold(name, "$this") {
		if cls := r.enclosingClassOf(sv); cls != nil {
			return NewTypeRef(cls.Name)
		}

		return TypeRef{}
	}

	scope := r.enclosingScopeOf(sv)
	if scope == nil {
		return TypeRef{}
	}

	result := TypeRef{}

	intelephense.Walk(scope, func(n intelephense.Node, _ []intelephense.Node) bool {
		ph, ok := n.(*intelephense.Phrase)
		if !ok {
			return false
		}

		switch ph.Type {
		case intelephense.PhraseParameterDeclaration:
			result = result.Merge(r.parameterType(ph, name))

			return false
		case intelephense.PhraseAssignmentExpression:
			result = result.Merge(r.assignmentType(ph, name, depth))

			return true
		case intelephense.PhraseFunctionDeclaration,
			intelephense.PhraseMethodDeclaration,
			intelephense.PhraseAnonymousFunctionCreationExpression,
			intelephense.PhraseClassDeclaration,
			intelephense.PhraseAnonymousClassDeclaration:
			// Nested scopes do not contribute bindings.
			return ph == scope
		}

		return true
	}, nil)

	return result
}

func (r *Resolver) parameterType(param *intelephense.Phrase, varName string) TypeRef {
	declared := ""

	for _, child := range param.Children {
		if tok, ok := child.(*intelephense.Token); ok && tok.Type == intelephense.TokenVariableName {
			declared = r.doc.TokenText(tok)

			break
		}
	}

	if !strings.EqualFold(declared, varName) {
		return TypeRef{}
	}

	typ := childPhrase(param, intelephense.PhraseTypeDeclaration)
	if typ == nil {
		return TypeRef{}
	}

	if name := firstChildPhrase(typ); name != nil && isQualifiedName(name.Type) {
		return r.nameType(name)
	}

	return TypeRef{}
}

func (r *Resolver) assignmentType(assign *intelephense.Phrase, varName string, depth int) TypeRef {
	lhs := firstChildPhrase(assign)
	if lhs == nil || lhs.Type != intelephense.PhraseSimpleVariable {
		return TypeRef{}
	}

	if !strings.EqualFold(r.fc.nameText(lhs), varName) {
		return TypeRef{}
	}

	if rhs := lastChildPhrase(assign); rhs != nil && rhs != lhs {
		return r.resolve(rhs, depth+1)
	}

	return TypeRef{}
}

// enclosingClassOf returns the class declaration enclosing a node.
func (r *Resolver) enclosingClassOf(n *intelephense.Phrase) *ClassRef {
	tok := intelephense.FirstToken(n)
	if tok == nil {
		return nil
	}

	return r.fc.EnclosingClassAt(tok.Offset)
}

// enclosingScopeOf returns the function-like body (or the root statement
// list) whose bindings are visible to the node.
func (r *Resolver) enclosingScopeOf(n *intelephense.Phrase) *intelephense.Phrase {
	tok := intelephense.FirstToken(n)
	if tok == nil {
		return nil
	}

	tr := r.doc.Traverser()
	if tr.Find(tok.Offset) == nil {
		return nil
	}

	scope := tr.AncestorMatching(func(ph *intelephense.Phrase) bool {
		switch ph.Type {
		case intelephense.PhraseFunctionDeclaration,
			intelephense.PhraseMethodDeclaration,
			intelephense.PhraseAnonymousFunctionCreationExpression:
			return true
		}

		return false
	})
	if scope != nil {
		return scope
	}

	return r.doc.Tree()
}

func firstChildPhrase(ph *intelephense.Phrase) *intelephense.Phrase {
	for _, child := range ph.Children {
		if sub, ok := child.(*intelephense.Phrase); ok {
			return sub
		}
	}

	return nil
}

func lastChildPhrase(ph *intelephense.Phrase) *intelephense.Phrase {
	for i := len(ph.Children) - 1; i >= 0; i-- {
		if sub, ok := ph.Children[i].(*intelephense.Phrase); ok {
			return sub
		}
	}

	return nil
}
