// Package intelephense provides the syntax tree model and error-tolerant
// parser used by the PHP source-analysis core.
package intelephense

import "fmt"

// TokenType identifies the lexical class of a Token.
type TokenType int

// Token types. Unknown is used for characters the lexer cannot classify;
// they still produce tokens so the tree always spans the full source.
const (
	TokenUnknown TokenType = iota
	TokenEndOfFile
	TokenWhitespace
	TokenComment
	TokenDocComment

	TokenName
	TokenVariableName
	TokenIntegerLiteral
	TokenFloatLiteral
	TokenStringLiteral

	// Keywords.
	TokenAbstract
	TokenAs
	TokenClass
	TokenConst
	TokenEcho
	TokenElse
	TokenExtends
	TokenFinal
	TokenFor
	TokenForeach
	TokenFunction
	TokenGlobal
	TokenIf
	TokenImplements
	TokenInterface
	TokenNamespace
	TokenNew
	TokenPrivate
	TokenProtected
	TokenPublic
	TokenReturn
	TokenStatic
	TokenSwitch
	TokenThrow
	TokenTrait
	TokenTry
	TokenUse
	TokenVar
	TokenWhile

	// Punctuation.
	TokenArrow      // ->
	TokenColonColon // ::
	TokenBackslash  // \
	TokenOpenBrace
	TokenCloseBrace
	TokenOpenParen
	TokenCloseParen
	TokenOpenBracket
	TokenCloseBracket
	TokenSemicolon
	TokenComma
	TokenColon
	TokenEquals
	TokenDollar   // bare $ with no name after it
	TokenOperator // any other operator or punctuation
)

// PhraseType identifies the grammar production a Phrase represents.
type PhraseType int

// Phrase types.
const (
	PhraseUnknown PhraseType = iota
	PhraseError               // recovery wrapper around unexpected tokens

	PhraseStatementList
	PhraseNamespaceDefinition
	PhraseNamespaceName
	PhraseNamespaceUseDeclaration
	PhraseNamespaceUseClause
	PhraseNamespaceAliasingClause

	PhraseQualifiedName
	PhraseFullyQualifiedName
	PhraseRelativeQualifiedName

	PhraseClassDeclaration
	PhraseClassDeclarationHeader
	PhraseClassBaseClause
	PhraseClassInterfaceClause
	PhraseClassMemberDeclarationList
	PhraseInterfaceDeclaration
	PhraseTraitDeclaration
	PhraseAnonymousClassDeclaration

	PhraseConstDeclaration
	PhraseConstElement
	PhraseClassConstDeclaration
	PhraseClassConstElement
	PhrasePropertyDeclaration
	PhrasePropertyElement
	PhraseMemberModifierList
	PhraseMethodDeclaration
	PhraseMethodDeclarationHeader
	PhraseMethodDeclarationBody

	PhraseFunctionDeclaration
	PhraseFunctionDeclarationHeader
	PhraseFunctionDeclarationBody
	PhraseAnonymousFunctionCreationExpression
	PhraseParameterList
	PhraseParameterDeclaration
	PhraseTypeDeclaration

	PhraseCompoundStatement
	PhraseExpressionStatement
	PhraseEchoIntrinsic
	PhraseReturnStatement
	PhraseIfStatement
	PhraseWhileStatement
	PhraseGlobalDeclaration

	PhraseAssignmentExpression
	PhraseBinaryExpression
	PhraseSimpleVariable
	PhraseObjectCreationExpression
	PhraseClassTypeDesignator
	PhraseArgumentExpressionList
	PhraseFunctionCallExpression
	PhraseObjectAccessExpression
	PhraseMemberName
	PhraseScopedAccessExpression
	PhraseScopedMemberName
	PhraseEncapsulatedExpression
)

// Node is the closed union of syntax tree node shapes: every Node is either
// a *Token leaf or a *Phrase composite. Traversal code switches exhaustively
// on these two types.
type Node interface {
	isNode()
}

// Token is a leaf node covering one lexical unit. Offset and Length address
// the source text the token was lexed from; tokens are immutable once
// produced.
type Token struct {
	Type   TokenType
	Offset int
	Length int
}

func (*Token) isNode() {}

// End returns the offset one past the last character of the token.
func (t *Token) End() int {
	return t.Offset + t.Length
}

func (t *Token) String() string {
	return fmt.Sprintf("Token(%d @%d+%d)", t.Type, t.Offset, t.Length)
}

// Phrase is a composite node covering one grammar production. Children are
// ordered by source position and include trivia tokens, so concatenating the
// text of every descendant token reconstructs the spanned source exactly.
type Phrase struct {
	Type     PhraseType
	Children []Node

	// Errors records parse errors recovered inside this phrase. A phrase
	// with errors is still a valid tree node; consumers treat missing
	// tokens as "no result", never as a failure.
	Errors []ParseError
}

func (*Phrase) isNode() {}

func (p *Phrase) String() string {
	return fmt.Sprintf("Phrase(%d, %d children)", p.Type, len(p.Children))
}

// ParseError marks a recovered parse error: the parser expected a token of
// one type and found another at the given offset.
type ParseError struct {
	Offset   int
	Expected TokenType
	Found    TokenType
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: expected token %d, found %d", e.Offset, e.Expected, e.Found)
}
