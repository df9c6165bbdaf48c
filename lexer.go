package intelephense

import (
	"strings"
	"unicode/utf8"
)

// keywords maps lower-cased keyword spellings to their token types. PHP
// keywords are case-insensitive. Contextual names like self and parent stay
// TokenName; consumers inspect their text.
var keywords = map[string]TokenType{
	"abstract":   TokenAbstract,
	"as":         TokenAs,
	"class":      TokenClass,
	"const":      TokenConst,
	"echo":       TokenEcho,
	"else":       TokenElse,
	"extends":    TokenExtends,
	"final":      TokenFinal,
	"for":        TokenFor,
	"foreach":    TokenForeach,
	"function":   TokenFunction,
	"global":     TokenGlobal,
	"if":         TokenIf,
	"implements": TokenImplements,
	"interface":  TokenInterface,
	"namespace":  TokenNamespace,
	"new":        TokenNew,
	"private":    TokenPrivate,
	"protected":  TokenProtected,
	"public":     TokenPublic,
	"return":     TokenReturn,
	"static":     TokenStatic,
	"switch":     TokenSwitch,
	"throw":      TokenThrow,
	"trait":      TokenTrait,
	"try":        TokenTry,
	"use":        TokenUse,
	"var":        TokenVar,
	"while":      TokenWhile,
}

// lexerState scans one source string into a token stream. The stream covers
// the entire input: trivia (whitespace, comments, script tags) and
// unclassifiable characters all become tokens, so the parser can build trees
// whose token offsets tile the source without gaps.
type lexerState struct {
	src string
	pos int
}

// Lex scans src and returns the full token stream, terminated by a
// zero-length TokenEndOfFile token. Lexing never fails; malformed input
// produces TokenUnknown tokens.
func Lex(src string) []*Token {
	l := &lexerState{src: src}

	var tokens []*Token

	for {
		tok := l.next()
		tokens = append(tokens, tok)

		if tok.Type == TokenEndOfFile {
			return tokens
		}
	}
}

func (l *lexerState) next() *Token {
	if l.pos >= len(l.src) {
		return &Token{Type: TokenEndOfFile, Offset: l.pos}
	}

	start := l.pos
	ch := l.src[l.pos]

	switch {
	case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
		return l.lexWhitespace(start)
	case ch == '<' && strings.HasPrefix(l.src[l.pos:], "<?php"):
		// Script open tags are treated as trivia.
		l.pos += len("<?php")
		return &Token{Type: TokenComment, Offset: start, Length: l.pos - start}
	case ch == '?' && strings.HasPrefix(l.src[l.pos:], "?>"):
		l.pos += len("?>")
		return &Token{Type: TokenComment, Offset: start, Length: l.pos - start}
	case ch == '/' && l.peekAt(1) == '/':
		return l.lexLineComment(start)
	case ch == '#':
		return l.lexLineComment(start)
	case ch == '/' && l.peekAt(1) == '*':
		return l.lexBlockComment(start)
	case ch == '$':
		return l.lexVariable(start)
	case ch == '\'' || ch == '"':
		return l.lexString(start, ch)
	case ch >= '0' && ch <= '9':
		return l.lexNumber(start)
	case isNameStart(ch):
		return l.lexName(start)
	default:
		return l.lexPunctuation(start)
	}
}

func (l *lexerState) peekAt(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}

	return l.src[l.pos+n]
}

func (l *lexerState) lexWhitespace(start int) *Token {
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if ch != ' ' && ch != '\t' && ch != '\n' && ch != '\r' {
			break
		}

		l.pos++
	}

	return &Token{Type: TokenWhitespace, Offset: start, Length: l.pos - start}
}

func (l *lexerState) lexLineComment(start int) *Token {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}

	return &Token{Type: TokenComment, Offset: start, Length: l.pos - start}
}

func (l *lexerState) lexBlockComment(start int) *Token {
	typ := TokenComment
	if strings.HasPrefix(l.src[l.pos:], "/**") {
		typ = TokenDocComment
	}

	l.pos += 2
	for l.pos < len(l.src) {
		if l.src[l.pos] == '*' && l.peekAt(1) == '/' {
			l.pos += 2

			break
		}

		l.pos++
	}

	// An unterminated comment runs to end of input.
	return &Token{Type: typ, Offset: start, Length: l.pos - start}
}

func (l *lexerState) lexVariable(start int) *Token {
	l.pos++ // $

	if l.pos >= len(l.src) || !isNameStart(l.src[l.pos]) {
		// A bare dollar sign is not yet a variable.
		return &Token{Type: TokenDollar, Offset: start, Length: l.pos - start}
	}

	for l.pos < len(l.src) && isNamePart(l.src[l.pos]) {
		l.pos++
	}

	return &Token{Type: TokenVariableName, Offset: start, Length: l.pos - start}
}

func (l *lexerState) lexString(start int, quote byte) *Token {
	l.pos++

	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if ch == '\\' && l.pos+1 < len(l.src) {
			l.pos += 2

			continue
		}

		l.pos++

		if ch == quote {
			break
		}
	}

	// An unterminated string still yields a string token.
	return &Token{Type: TokenStringLiteral, Offset: start, Length: l.pos - start}
}

func (l *lexerState) lexNumber(start int) *Token {
	typ := TokenIntegerLiteral

	if l.src[l.pos] == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.pos += 2
		for l.pos < len(l.src) && isHexDigit(l.src[l.pos]) {
			l.pos++
		}

		return &Token{Type: typ, Offset: start, Length: l.pos - start}
	}

	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}

	if l.pos < len(l.src) && l.src[l.pos] == '.' && isDigit(l.peekAt(1)) {
		typ = TokenFloatLiteral
		l.pos++

		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}

	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		n := 1
		if l.peekAt(1) == '+' || l.peekAt(1) == '-' {
			n = 2
		}

		if isDigit(l.peekAt(n)) {
			typ = TokenFloatLiteral
			l.pos += n

			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		}
	}

	return &Token{Type: typ, Offset: start, Length: l.pos - start}
}

func (l *lexerState) lexName(start int) *Token {
	for l.pos < len(l.src) && isNamePart(l.src[l.pos]) {
		l.pos++
	}

	text := l.src[start:l.pos]
	if typ, ok := keywords[strings.ToLower(text)]; ok {
		return &Token{Type: typ, Offset: start, Length: l.pos - start}
	}

	return &Token{Type: TokenName, Offset: start, Length: l.pos - start}
}

// twoCharOperators are operator spellings that must be matched before their
// single-character prefixes.
var twoCharOperators = []string{
	"===", "!==", "<=>", "**=", "...", "?->",
	"->", "::", "==", "!=", "<>", "<=", ">=", "&&", "||", "++", "--",
	"+=", "-=", "*=", "/=", ".=", "%=", "=>", "**", "??", "<<", ">>",
}

func (l *lexerState) lexPunctuation(start int) *Token {
	for _, op := range twoCharOperators {
		if strings.HasPrefix(l.src[l.pos:], op) {
			l.pos += len(op)

			typ := TokenOperator

			switch op {
			case "->", "?->":
				typ = TokenArrow
			case "::":
				typ = TokenColonColon
			}

			return &Token{Type: typ, Offset: start, Length: l.pos - start}
		}
	}

	var typ TokenType

	switch l.src[l.pos] {
	case '\\':
		typ = TokenBackslash
	case '{':
		typ = TokenOpenBrace
	case '}':
		typ = TokenCloseBrace
	case '(':
		typ = TokenOpenParen
	case ')':
		typ = TokenCloseParen
	case '[':
		typ = TokenOpenBracket
	case ']':
		typ = TokenCloseBracket
	case ';':
		typ = TokenSemicolon
	case ',':
		typ = TokenComma
	case ':':
		typ = TokenColon
	case '=':
		typ = TokenEquals
	case '+', '-', '*', '/', '.', '%', '<', '>', '!', '?', '&', '|', '^', '~', '@':
		typ = TokenOperator
	default:
		// Unclassifiable byte; consume a full rune so multi-byte
		// characters produce one token.
		_, size := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += size

		return &Token{Type: TokenUnknown, Offset: start, Length: l.pos - start}
	}

	l.pos++

	return &Token{Type: typ, Offset: start, Length: l.pos - start}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// PHP identifiers admit bytes 0x80 and above.
func isNameStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch >= 0x80
}

func isNamePart(ch byte) bool {
	return isNameStart(ch) || isDigit(ch)
}
