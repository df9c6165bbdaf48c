package intelephense

// Error-tolerant recursive-descent parser. Parse always returns a tree: the
// root is a StatementList phrase spanning the whole source, unexpected input
// is wrapped in Error phrases, and missing tokens are recorded as ParseError
// markers on the enclosing phrase. Trivia tokens (whitespace, comments,
// script tags) are kept in the tree so concatenating descendant tokens
// reconstructs the source exactly.

// Grammar is the contract the document layer consumes the parser through.
// It must be deterministic and total.
type Grammar func(src string) *Phrase

type parserState struct {
	tokens []*Token
	pos    int
}

// Parse builds a syntax tree for src. It never fails.
func Parse(src string) *Phrase {
	p := &parserState{tokens: Lex(src)}
	root := p.statementList(TokenEndOfFile)

	// Trailing trivia belongs to the root.
	for p.tokens[p.pos].Type != TokenEndOfFile {
		root.Children = append(root.Children, p.tokens[p.pos])
		p.pos++
	}

	return root
}

// peek returns the next significant token without consuming anything.
func (p *parserState) peek() *Token {
	for i := p.pos; ; i++ {
		tok := p.tokens[i]
		if !isTrivia(tok.Type) || tok.Type == TokenEndOfFile {
			return tok
		}
	}
}

// peek2 returns the second significant token.
func (p *parserState) peek2() *Token {
	seen := false

	for i := p.pos; ; i++ {
		tok := p.tokens[i]
		if tok.Type == TokenEndOfFile {
			return tok
		}

		if isTrivia(tok.Type) {
			continue
		}

		if seen {
			return tok
		}

		seen = true
	}
}

func isTrivia(t TokenType) bool {
	return t == TokenWhitespace || t == TokenComment || t == TokenDocComment
}

// take consumes pending trivia plus the next significant token and returns
// them in document order. At end of input it returns nil.
func (p *parserState) take() []Node {
	var nodes []Node

	for {
		tok := p.tokens[p.pos]
		if tok.Type == TokenEndOfFile {
			return nodes
		}

		p.pos++
		nodes = append(nodes, tok)

		if !isTrivia(tok.Type) {
			return nodes
		}
	}
}

// takeTrivia moves any pending trivia into ph without consuming a
// significant token. Incomplete phrases keep the whitespace after their
// operator this way, which positions the cursor inside them.
func (p *parserState) takeTrivia(ph *Phrase) {
	for isTrivia(p.tokens[p.pos].Type) {
		ph.Children = append(ph.Children, p.tokens[p.pos])
		p.pos++
	}
}

// eat consumes the next significant token into ph and returns it.
func (p *parserState) eat(ph *Phrase) *Token {
	nodes := p.take()
	ph.Children = append(ph.Children, nodes...)

	if len(nodes) == 0 {
		return nil
	}

	if tok, ok := nodes[len(nodes)-1].(*Token); ok && !isTrivia(tok.Type) {
		return tok
	}

	return nil
}

// expect eats a token of the given type, or records a missing-token error on
// ph and consumes nothing.
func (p *parserState) expect(ph *Phrase, t TokenType) *Token {
	next := p.peek()
	if next.Type == t {
		return p.eat(ph)
	}

	ph.Errors = append(ph.Errors, ParseError{Offset: next.Offset, Expected: t, Found: next.Type})

	return nil
}

func (p *parserState) statementList(stop ...TokenType) *Phrase {
	list := &Phrase{Type: PhraseStatementList}

	for {
		next := p.peek()
		if next.Type == TokenEndOfFile {
			return list
		}

		for _, s := range stop {
			if next.Type == s {
				return list
			}
		}

		list.Children = append(list.Children, p.statement())
	}
}

func (p *parserState) statement() Node {
	switch p.peek().Type {
	case TokenNamespace:
		if p.peek2().Type == TokenBackslash {
			// Relative name in expression position.
			return p.expressionStatement()
		}

		return p.namespaceDefinition()
	case TokenUse:
		return p.namespaceUseDeclaration()
	case TokenAbstract, TokenFinal, TokenClass:
		return p.classDeclaration()
	case TokenInterface:
		return p.typeLikeDeclaration(PhraseInterfaceDeclaration, TokenInterface)
	case TokenTrait:
		return p.typeLikeDeclaration(PhraseTraitDeclaration, TokenTrait)
	case TokenFunction:
		if p.peek2().Type == TokenName {
			return p.functionDeclaration()
		}

		return p.expressionStatement()
	case TokenConst:
		return p.constDeclaration()
	case TokenIf:
		return p.ifStatement()
	case TokenWhile:
		return p.whileStatement()
	case TokenEcho:
		return p.echoIntrinsic()
	case TokenReturn:
		return p.returnStatement()
	case TokenGlobal:
		return p.globalDeclaration()
	case TokenOpenBrace:
		return p.compoundStatement()
	case TokenSemicolon:
		st := &Phrase{Type: PhraseExpressionStatement}
		p.eat(st)

		return st
	case TokenCloseBrace, TokenCloseParen, TokenCloseBracket:
		// Stray closer: wrap it so the caller makes progress.
		return p.errorPhrase()
	default:
		return p.expressionStatement()
	}
}

// errorPhrase consumes a single token into an Error phrase.
func (p *parserState) errorPhrase() *Phrase {
	ph := &Phrase{Type: PhraseError}
	tok := p.eat(ph)

	if tok != nil {
		ph.Errors = append(ph.Errors, ParseError{Offset: tok.Offset, Found: tok.Type})
	}

	return ph
}

func (p *parserState) namespaceDefinition() *Phrase {
	ph := &Phrase{Type: PhraseNamespaceDefinition}
	p.eat(ph) // namespace

	if p.peek().Type == TokenName {
		ph.Children = append(ph.Children, p.namespaceName())
	}

	if p.peek().Type == TokenOpenBrace {
		ph.Children = append(ph.Children, p.compoundStatement())
	} else {
		p.expect(ph, TokenSemicolon)
	}

	return ph
}

func (p *parserState) namespaceUseDeclaration() *Phrase {
	ph := &Phrase{Type: PhraseNamespaceUseDeclaration}
	p.eat(ph) // use

	// `use function` / `use const` import forms.
	if t := p.peek().Type; t == TokenFunction || t == TokenConst {
		p.eat(ph)
	}

	for {
		ph.Children = append(ph.Children, p.namespaceUseClause())

		if p.peek().Type != TokenComma {
			break
		}

		p.eat(ph)
	}

	p.expect(ph, TokenSemicolon)

	return ph
}

func (p *parserState) namespaceUseClause() *Phrase {
	ph := &Phrase{Type: PhraseNamespaceUseClause}
	ph.Children = append(ph.Children, p.qualifiedName())

	if p.peek().Type == TokenAs {
		alias := &Phrase{Type: PhraseNamespaceAliasingClause}
		p.eat(alias) // as
		p.expect(alias, TokenName)
		ph.Children = append(ph.Children, alias)
	}

	return ph
}

func (p *parserState) classDeclaration() *Phrase {
	ph := &Phrase{Type: PhraseClassDeclaration}
	header := &Phrase{Type: PhraseClassDeclarationHeader}

	for {
		if t := p.peek().Type; t == TokenAbstract || t == TokenFinal {
			p.eat(header)

			continue
		}

		break
	}

	p.expect(header, TokenClass)
	p.expect(header, TokenName)
	p.baseAndInterfaceClauses(header)
	ph.Children = append(ph.Children, header)
	ph.Children = append(ph.Children, p.classBody())

	return ph
}

// typeLikeDeclaration parses interface and trait declarations, which share
// the class declaration shape.
func (p *parserState) typeLikeDeclaration(typ PhraseType, kw TokenType) *Phrase {
	ph := &Phrase{Type: typ}
	header := &Phrase{Type: PhraseClassDeclarationHeader}
	p.expect(header, kw)
	p.expect(header, TokenName)
	p.baseAndInterfaceClauses(header)
	ph.Children = append(ph.Children, header)
	ph.Children = append(ph.Children, p.classBody())

	return ph
}

func (p *parserState) baseAndInterfaceClauses(header *Phrase) {
	if p.peek().Type == TokenExtends {
		base := &Phrase{Type: PhraseClassBaseClause}
		p.eat(base) // extends

		for {
			base.Children = append(base.Children, p.qualifiedName())

			if p.peek().Type != TokenComma {
				break
			}

			p.eat(base)
		}

		header.Children = append(header.Children, base)
	}

	if p.peek().Type == TokenImplements {
		impl := &Phrase{Type: PhraseClassInterfaceClause}
		p.eat(impl)

		for {
			impl.Children = append(impl.Children, p.qualifiedName())

			if p.peek().Type != TokenComma {
				break
			}

			p.eat(impl)
		}

		header.Children = append(header.Children, impl)
	}
}

func (p *parserState) classBody() *Phrase {
	body := &Phrase{Type: PhraseClassMemberDeclarationList}
	p.expect(body, TokenOpenBrace)

	for {
		switch p.peek().Type {
		case TokenCloseBrace, TokenEndOfFile:
			p.expect(body, TokenCloseBrace)

			return body
		default:
			body.Children = append(body.Children, p.classMember())
		}
	}
}

func (p *parserState) classMember() Node {
	modifiers := &Phrase{Type: PhraseMemberModifierList}

	for {
		switch p.peek().Type {
		case TokenPublic, TokenProtected, TokenPrivate, TokenStatic, TokenAbstract, TokenFinal, TokenVar:
			p.eat(modifiers)

			continue
		}

		break
	}

	hasModifiers := len(modifiers.Children) > 0

	switch p.peek().Type {
	case TokenFunction:
		return p.methodDeclaration(modifiers)
	case TokenConst:
		return p.classConstDeclaration(modifiers)
	case TokenVariableName:
		return p.propertyDeclaration(modifiers)
	case TokenUse:
		// Trait use; reuse the namespace-use shape.
		decl := p.namespaceUseDeclaration()
		if hasModifiers {
			modifiers.Children = append(modifiers.Children, decl)

			return modifiers
		}

		return decl
	default:
		if hasModifiers {
			// Modifiers with nothing to modify; keep what we have.
			tok := p.peek()
			modifiers.Errors = append(modifiers.Errors,
				ParseError{Offset: tok.Offset, Expected: TokenFunction, Found: tok.Type})

			return modifiers
		}

		return p.errorPhrase()
	}
}

func (p *parserState) methodDeclaration(modifiers *Phrase) *Phrase {
	ph := &Phrase{Type: PhraseMethodDeclaration}
	header := &Phrase{Type: PhraseMethodDeclarationHeader}

	if len(modifiers.Children) > 0 {
		header.Children = append(header.Children, modifiers)
	}

	p.expect(header, TokenFunction)
	p.expect(header, TokenName)
	header.Children = append(header.Children, p.parameterList())
	p.returnTypeClause(header)
	ph.Children = append(ph.Children, header)

	body := &Phrase{Type: PhraseMethodDeclarationBody}
	if p.peek().Type == TokenSemicolon {
		p.eat(body) // abstract or interface method
	} else {
		body.Children = append(body.Children, p.compoundStatement())
	}

	ph.Children = append(ph.Children, body)

	return ph
}

func (p *parserState) returnTypeClause(header *Phrase) {
	if tok := p.peek(); tok.Type == TokenColon {
		p.eat(header)

		typ := &Phrase{Type: PhraseTypeDeclaration}
		if p.peek().Type == TokenOperator { // nullable ?
			p.eat(typ)
		}

		typ.Children = append(typ.Children, p.qualifiedName())
		header.Children = append(header.Children, typ)
	}
}

func (p *parserState) classConstDeclaration(modifiers *Phrase) *Phrase {
	ph := &Phrase{Type: PhraseClassConstDeclaration}

	if len(modifiers.Children) > 0 {
		ph.Children = append(ph.Children, modifiers)
	}

	p.expect(ph, TokenConst)

	for {
		el := &Phrase{Type: PhraseClassConstElement}
		p.expect(el, TokenName)

		if p.peek().Type == TokenEquals {
			p.eat(el)
			el.Children = append(el.Children, p.expression())
		}

		ph.Children = append(ph.Children, el)

		if p.peek().Type != TokenComma {
			break
		}

		p.eat(ph)
	}

	p.expect(ph, TokenSemicolon)

	return ph
}

func (p *parserState) propertyDeclaration(modifiers *Phrase) *Phrase {
	ph := &Phrase{Type: PhrasePropertyDeclaration}

	if len(modifiers.Children) > 0 {
		ph.Children = append(ph.Children, modifiers)
	}

	for {
		el := &Phrase{Type: PhrasePropertyElement}
		p.expect(el, TokenVariableName)

		if p.peek().Type == TokenEquals {
			p.eat(el)
			el.Children = append(el.Children, p.expression())
		}

		ph.Children = append(ph.Children, el)

		if p.peek().Type != TokenComma {
			break
		}

		p.eat(ph)
	}

	p.expect(ph, TokenSemicolon)

	return ph
}

func (p *parserState) functionDeclaration() *Phrase {
	ph := &Phrase{Type: PhraseFunctionDeclaration}
	header := &Phrase{Type: PhraseFunctionDeclarationHeader}
	p.expect(header, TokenFunction)
	p.expect(header, TokenName)
	header.Children = append(header.Children, p.parameterList())
	p.returnTypeClause(header)
	ph.Children = append(ph.Children, header)

	body := &Phrase{Type: PhraseFunctionDeclarationBody}
	body.Children = append(body.Children, p.compoundStatement())
	ph.Children = append(ph.Children, body)

	return ph
}

func (p *parserState) parameterList() *Phrase {
	list := &Phrase{Type: PhraseParameterList}
	p.expect(list, TokenOpenParen)

	for {
		switch p.peek().Type {
		case TokenCloseParen, TokenEndOfFile, TokenOpenBrace:
			p.expect(list, TokenCloseParen)

			return list
		case TokenComma:
			p.eat(list)
		default:
			before := p.pos
			list.Children = append(list.Children, p.parameterDeclaration())

			if p.pos == before {
				// Unparseable token; consume it so the loop advances.
				list.Children = append(list.Children, p.errorPhrase())
			}
		}
	}
}

func (p *parserState) parameterDeclaration() *Phrase {
	ph := &Phrase{Type: PhraseParameterDeclaration}

	if t := p.peek().Type; t == TokenName || t == TokenBackslash || t == TokenOperator {
		typ := &Phrase{Type: PhraseTypeDeclaration}
		if p.peek().Type == TokenOperator { // nullable ?
			p.eat(typ)
		}

		typ.Children = append(typ.Children, p.qualifiedName())
		ph.Children = append(ph.Children, typ)
	}

	p.expect(ph, TokenVariableName)

	if p.peek().Type == TokenEquals {
		p.eat(ph)
		ph.Children = append(ph.Children, p.expression())
	}

	return ph
}

func (p *parserState) constDeclaration() *Phrase {
	ph := &Phrase{Type: PhraseConstDeclaration}
	p.eat(ph) // const

	for {
		el := &Phrase{Type: PhraseConstElement}
		p.expect(el, TokenName)

		if p.peek().Type == TokenEquals {
			p.eat(el)
			el.Children = append(el.Children, p.expression())
		}

		ph.Children = append(ph.Children, el)

		if p.peek().Type != TokenComma {
			break
		}

		p.eat(ph)
	}

	p.expect(ph, TokenSemicolon)

	return ph
}

func (p *parserState) ifStatement() *Phrase {
	ph := &Phrase{Type: PhraseIfStatement}
	p.eat(ph) // if
	p.expect(ph, TokenOpenParen)
	ph.Children = append(ph.Children, p.expression())
	p.expect(ph, TokenCloseParen)
	ph.Children = append(ph.Children, p.statement())

	if p.peek().Type == TokenElse {
		p.eat(ph)
		ph.Children = append(ph.Children, p.statement())
	}

	return ph
}

func (p *parserState) whileStatement() *Phrase {
	ph := &Phrase{Type: PhraseWhileStatement}
	p.eat(ph) // while
	p.expect(ph, TokenOpenParen)
	ph.Children = append(ph.Children, p.expression())
	p.expect(ph, TokenCloseParen)
	ph.Children = append(ph.Children, p.statement())

	return ph
}

func (p *parserState) echoIntrinsic() *Phrase {
	ph := &Phrase{Type: PhraseEchoIntrinsic}
	p.eat(ph) // echo

	for {
		ph.Children = append(ph.Children, p.expression())

		if p.peek().Type != TokenComma {
			break
		}

		p.eat(ph)
	}

	p.expect(ph, TokenSemicolon)

	return ph
}

func (p *parserState) returnStatement() *Phrase {
	ph := &Phrase{Type: PhraseReturnStatement}
	p.eat(ph) // return

	if p.peek().Type != TokenSemicolon {
		ph.Children = append(ph.Children, p.expression())
	}

	p.expect(ph, TokenSemicolon)

	return ph
}

func (p *parserState) globalDeclaration() *Phrase {
	ph := &Phrase{Type: PhraseGlobalDeclaration}
	p.eat(ph) // global

	for {
		sv := &Phrase{Type: PhraseSimpleVariable}
		p.expect(sv, TokenVariableName)
		ph.Children = append(ph.Children, sv)

		if p.peek().Type != TokenComma {
			break
		}

		p.eat(ph)
	}

	p.expect(ph, TokenSemicolon)

	return ph
}

func (p *parserState) compoundStatement() *Phrase {
	ph := &Phrase{Type: PhraseCompoundStatement}
	p.expect(ph, TokenOpenBrace)
	ph.Children = append(ph.Children, p.statementList(TokenCloseBrace))
	p.expect(ph, TokenCloseBrace)

	return ph
}

func (p *parserState) expressionStatement() *Phrase {
	ph := &Phrase{Type: PhraseExpressionStatement}
	ph.Children = append(ph.Children, p.expression())
	p.expect(ph, TokenSemicolon)

	return ph
}

func (p *parserState) expression() Node {
	lhs := p.unaryExpression()

	switch p.peek().Type {
	case TokenEquals:
		ph := &Phrase{Type: PhraseAssignmentExpression}
		ph.Children = append(ph.Children, lhs)
		p.eat(ph)
		ph.Children = append(ph.Children, p.expression())

		return ph
	case TokenOperator:
		ph := &Phrase{Type: PhraseBinaryExpression}
		ph.Children = append(ph.Children, lhs)

		for p.peek().Type == TokenOperator {
			p.eat(ph)
			ph.Children = append(ph.Children, p.unaryExpression())
		}

		return ph
	default:
		return lhs
	}
}

func (p *parserState) unaryExpression() Node {
	return p.postfix(p.primary())
}

func (p *parserState) postfix(lhs Node) Node {
	for {
		switch p.peek().Type {
		case TokenArrow:
			ph := &Phrase{Type: PhraseObjectAccessExpression}
			ph.Children = append(ph.Children, lhs)
			p.eat(ph) // ->
			ph.Children = append(ph.Children, p.memberName(PhraseMemberName))
			p.callArguments(ph)
			lhs = ph
		case TokenColonColon:
			ph := &Phrase{Type: PhraseScopedAccessExpression}
			ph.Children = append(ph.Children, lhs)
			p.eat(ph) // ::
			ph.Children = append(ph.Children, p.memberName(PhraseScopedMemberName))
			p.callArguments(ph)
			lhs = ph
		case TokenOpenParen:
			ph := &Phrase{Type: PhraseFunctionCallExpression}
			ph.Children = append(ph.Children, lhs)
			ph.Children = append(ph.Children, p.argumentList())
			lhs = ph
		default:
			return lhs
		}
	}
}

// memberName parses the name position after -> or ::. The phrase may be
// empty (with an error marker) when the cursor sits right after the
// operator; completion relies on that shape.
func (p *parserState) memberName(typ PhraseType) *Phrase {
	ph := &Phrase{Type: typ}

	switch p.peek().Type {
	case TokenName, TokenClass: // Foo::class
		p.eat(ph)
	case TokenVariableName:
		sv := &Phrase{Type: PhraseSimpleVariable}
		p.eat(sv)
		ph.Children = append(ph.Children, sv)
	case TokenDollar:
		// Foo::$ with the variable name still to come.
		sv := &Phrase{Type: PhraseSimpleVariable}
		tok := p.eat(sv)
		sv.Errors = append(sv.Errors, ParseError{Offset: tok.Offset + tok.Length, Expected: TokenVariableName, Found: p.peek().Type})
		ph.Children = append(ph.Children, sv)
	default:
		p.takeTrivia(ph)
		tok := p.peek()
		ph.Errors = append(ph.Errors, ParseError{Offset: tok.Offset, Expected: TokenName, Found: tok.Type})
	}

	return ph
}

func (p *parserState) callArguments(ph *Phrase) {
	if p.peek().Type == TokenOpenParen {
		ph.Children = append(ph.Children, p.argumentList())
	}
}

func (p *parserState) argumentList() *Phrase {
	list := &Phrase{Type: PhraseArgumentExpressionList}
	p.expect(list, TokenOpenParen)

	for {
		switch p.peek().Type {
		case TokenCloseParen, TokenEndOfFile, TokenSemicolon, TokenCloseBrace:
			p.expect(list, TokenCloseParen)

			return list
		case TokenComma:
			p.eat(list)
		default:
			list.Children = append(list.Children, p.expression())
		}
	}
}

func (p *parserState) primary() Node {
	switch p.peek().Type {
	case TokenVariableName:
		sv := &Phrase{Type: PhraseSimpleVariable}
		p.eat(sv)

		return sv
	case TokenDollar:
		sv := &Phrase{Type: PhraseSimpleVariable}
		tok := p.eat(sv)
		sv.Errors = append(sv.Errors, ParseError{Offset: tok.Offset + tok.Length, Expected: TokenVariableName, Found: p.peek().Type})

		return sv
	case TokenName, TokenBackslash, TokenNamespace:
		return p.qualifiedName()
	case TokenNew:
		return p.objectCreationExpression()
	case TokenFunction:
		return p.anonymousFunction()
	case TokenStatic:
		// static:: access or static closure; treat the keyword as the
		// scope expression.
		if p.peek2().Type == TokenFunction {
			return p.anonymousFunction()
		}

		ph := &Phrase{Type: PhraseQualifiedName}
		name := &Phrase{Type: PhraseNamespaceName}
		p.eat(name)
		ph.Children = append(ph.Children, name)

		return ph
	case TokenOpenParen:
		ph := &Phrase{Type: PhraseEncapsulatedExpression}
		p.eat(ph)
		ph.Children = append(ph.Children, p.expression())
		p.expect(ph, TokenCloseParen)

		return ph
	case TokenStringLiteral, TokenIntegerLiteral, TokenFloatLiteral:
		nodes := p.take()
		if len(nodes) == 1 {
			// Literals need no wrapper phrase.
			return nodes[0]
		}

		// Leading trivia travels with the literal.
		return &Phrase{Type: PhraseEncapsulatedExpression, Children: nodes}
	case TokenOperator: // unary ! - ~ @ etc.
		ph := &Phrase{Type: PhraseBinaryExpression}
		p.eat(ph)
		ph.Children = append(ph.Children, p.unaryExpression())

		return ph
	default:
		return p.errorPhrase()
	}
}

func (p *parserState) objectCreationExpression() *Phrase {
	ph := &Phrase{Type: PhraseObjectCreationExpression}
	p.eat(ph) // new

	if p.peek().Type == TokenClass {
		ph.Children = append(ph.Children, p.anonymousClass())

		return ph
	}

	designator := &Phrase{Type: PhraseClassTypeDesignator}

	switch p.peek().Type {
	case TokenName, TokenBackslash, TokenNamespace, TokenStatic:
		designator.Children = append(designator.Children, p.qualifiedName())
	case TokenVariableName:
		sv := &Phrase{Type: PhraseSimpleVariable}
		p.eat(sv)
		designator.Children = append(designator.Children, sv)
	default:
		p.takeTrivia(designator)
		tok := p.peek()
		designator.Errors = append(designator.Errors,
			ParseError{Offset: tok.Offset, Expected: TokenName, Found: tok.Type})
	}

	ph.Children = append(ph.Children, designator)
	p.callArguments(ph)

	return ph
}

func (p *parserState) anonymousClass() *Phrase {
	ph := &Phrase{Type: PhraseAnonymousClassDeclaration}
	header := &Phrase{Type: PhraseClassDeclarationHeader}
	p.expect(header, TokenClass)

	if p.peek().Type == TokenOpenParen {
		header.Children = append(header.Children, p.argumentList())
	}

	p.baseAndInterfaceClauses(header)
	ph.Children = append(ph.Children, header)
	ph.Children = append(ph.Children, p.classBody())

	return ph
}

func (p *parserState) anonymousFunction() *Phrase {
	ph := &Phrase{Type: PhraseAnonymousFunctionCreationExpression}

	if p.peek().Type == TokenStatic {
		p.eat(ph)
	}

	p.expect(ph, TokenFunction)
	ph.Children = append(ph.Children, p.parameterList())

	if p.peek().Type == TokenUse {
		p.eat(ph)
		ph.Children = append(ph.Children, p.parameterList())
	}

	p.returnTypeClause(ph)
	ph.Children = append(ph.Children, p.compoundStatement())

	return ph
}

// qualifiedName parses \A\B, A\B, or namespace\A forms. A trailing backslash
// with no following name is recorded as a missing-token error, which is the
// shape produced while a name is being typed.
func (p *parserState) qualifiedName() *Phrase {
	var ph *Phrase

	switch p.peek().Type {
	case TokenBackslash:
		ph = &Phrase{Type: PhraseFullyQualifiedName}
		p.eat(ph)
	case TokenNamespace:
		ph = &Phrase{Type: PhraseRelativeQualifiedName}
		p.eat(ph)
		p.expect(ph, TokenBackslash)
	default:
		ph = &Phrase{Type: PhraseQualifiedName}
	}

	ph.Children = append(ph.Children, p.namespaceName())

	return ph
}

func (p *parserState) namespaceName() *Phrase {
	name := &Phrase{Type: PhraseNamespaceName}
	p.expect(name, TokenName)

	for p.peek().Type == TokenBackslash {
		p.eat(name)

		if p.peek().Type == TokenName {
			p.eat(name)
		} else {
			tok := p.peek()
			name.Errors = append(name.Errors,
				ParseError{Offset: tok.Offset, Expected: TokenName, Found: tok.Type})

			break
		}
	}

	return name
}
