// Package tql implements the Tag Query Language: boolean expression trees
// over tags, their evaluation against a tag collection, and a small text
// syntax for authoring them.
package tql

import "strings"

// TokenType represents the type of lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	// Literals
	TokenIdent  // unquoted tag names
	TokenString // "quoted" or 'quoted'

	// Delimiters
	TokenLParen // (
	TokenRParen // )
	TokenComma  // ,

	// Logical operators (keywords)
	TokenAnd // and
	TokenOr  // or
	TokenNot // not

	// Tag list functions
	TokenAny  // any
	TokenAll  // all
	TokenNone // none

	// Expression list functions
	TokenAnyOf  // anyof
	TokenAllOf  // allof
	TokenNoneOf // noneof
)

// String returns the string representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIllegal:
		return "ILLEGAL"
	case TokenIdent:
		return "IDENT"
	case TokenString:
		return "STRING"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenComma:
		return ","
	case TokenAnd:
		return "AND"
	case TokenOr:
		return "OR"
	case TokenNot:
		return "NOT"
	case TokenAny:
		return "ANY"
	case TokenAll:
		return "ALL"
	case TokenNone:
		return "NONE"
	case TokenAnyOf:
		return "ANYOF"
	case TokenAllOf:
		return "ALLOF"
	case TokenNoneOf:
		return "NONEOF"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int // Position in input for error reporting
}

// keywords maps keyword strings to their token types.
var keywords = map[string]TokenType{
	"and":    TokenAnd,
	"or":     TokenOr,
	"not":    TokenNot,
	"any":    TokenAny,
	"all":    TokenAll,
	"none":   TokenNone,
	"anyof":  TokenAnyOf,
	"allof":  TokenAllOf,
	"noneof": TokenNoneOf,
}

// LookupKeyword returns the token type for the given identifier.
// If the identifier is a keyword, returns the keyword token type.
// Otherwise, returns TokenIdent.
func LookupKeyword(ident string) TokenType {
	if tok, ok := keywords[strings.ToLower(ident)]; ok {
		return tok
	}
	return TokenIdent
}

// IsKeyword reports whether the token type is a reserved word.
func (t TokenType) IsKeyword() bool {
	return t >= TokenAnd && t <= TokenNoneOf
}

// IsTagFunc reports whether the token opens a tag list function.
func (t TokenType) IsTagFunc() bool {
	return t == TokenAny || t == TokenAll || t == TokenNone
}

// IsExprFunc reports whether the token opens an expression list function.
func (t TokenType) IsExprFunc() bool {
	return t == TokenAnyOf || t == TokenAllOf || t == TokenNoneOf
}
