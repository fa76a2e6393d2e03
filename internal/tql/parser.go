package tql

import (
	"fmt"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
)

// Parser parses TQL tokens into an expression tree.
//
//	expression = term { "or" term }
//	term       = factor { "and" factor }
//	factor     = "not" factor | "(" expression ")" | call
//	call       = ("any" | "all" | "none") "(" [ tag { "," tag } ] ")"
//	           | ("anyof" | "allof" | "noneof") "(" expression { "," expression } ")"
//
// A chain of two or more "or" terms becomes one AnyExpressionsMatch node and
// a chain of "and" factors one AllExpressionsMatch node.
type Parser struct {
	lexer   *Lexer
	current Token
	peek    Token
}

// NewParser creates a parser for the input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	// Prime the parser with two tokens
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses TQL text into an expression tree.
func Parse(input string) (*Expression, error) {
	return NewParser(input).Parse()
}

// MustParse is like Parse but panics on error.
func MustParse(input string) *Expression {
	e, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return e
}

// Parse parses the whole input as a single expression.
func (p *Parser) Parse() (*Expression, error) {
	if p.current.Type == TokenEOF {
		return nil, fmt.Errorf("%w: empty query", ErrSyntax)
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.current.Type != TokenEOF {
		return nil, p.errorf("unexpected token %q at position %d", p.current.Literal, p.current.Pos)
	}
	return expr, nil
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.current = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrSyntax}, args...)...)
}

// parseExpression parses OR-separated terms.
func (p *Parser) parseExpression() (*Expression, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenOr {
		return first, nil
	}

	terms := []*Expression{first}
	for p.current.Type == TokenOr {
		p.nextToken() // consume OR
		next, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	return AnyOf(terms...), nil
}

// parseTerm parses AND-separated factors.
func (p *Parser) parseTerm() (*Expression, error) {
	first, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	if p.current.Type != TokenAnd {
		return first, nil
	}

	factors := []*Expression{first}
	for p.current.Type == TokenAnd {
		p.nextToken() // consume AND
		next, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		factors = append(factors, next)
	}
	return AllOf(factors...), nil
}

// parseFactor parses NOT, parenthesized expressions, or function calls.
func (p *Parser) parseFactor() (*Expression, error) {
	switch {
	case p.current.Type == TokenNot:
		p.nextToken() // consume NOT
		expr, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return Not(expr), nil

	case p.current.Type == TokenLParen:
		p.nextToken() // consume (
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.current.Type != TokenRParen {
			return nil, p.errorf("expected ')' at position %d, got %q", p.current.Pos, p.current.Literal)
		}
		p.nextToken() // consume )
		return expr, nil

	case p.current.Type.IsTagFunc():
		return p.parseTagCall()

	case p.current.Type.IsExprFunc():
		return p.parseExprCall()

	case p.current.Type == TokenIdent || p.current.Type == TokenString:
		return nil, p.errorf("bare tag %q at position %d; wrap it in any(...), all(...) or none(...)",
			p.current.Literal, p.current.Pos)

	default:
		return nil, p.errorf("expected expression at position %d, got %q", p.current.Pos, p.current.Literal)
	}
}

// parseTagCall parses any(...), all(...) or none(...).
func (p *Parser) parseTagCall() (*Expression, error) {
	var kind Kind
	switch p.current.Type {
	case TokenAny:
		kind = KindAnyTagsMatch
	case TokenAll:
		kind = KindAllTagsMatch
	default:
		kind = KindNoTagsMatch
	}
	p.nextToken() // consume function name

	if err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	var list []tags.Tag
	for p.current.Type != TokenRParen {
		tag, err := p.parseTag()
		if err != nil {
			return nil, err
		}
		list = append(list, tag)

		if p.current.Type == TokenComma {
			p.nextToken() // consume comma
			continue
		}
		break
	}

	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return &Expression{Kind: kind, Tags: list}, nil
}

// parseTag accepts identifiers, quoted strings and keywords used as tag names.
func (p *Parser) parseTag() (tags.Tag, error) {
	tok := p.current
	if tok.Type != TokenIdent && tok.Type != TokenString && !tok.Type.IsKeyword() {
		return tags.Tag{}, p.errorf("expected tag at position %d, got %q", tok.Pos, tok.Literal)
	}
	tag, err := tags.Parse(tok.Literal)
	if err != nil {
		return tags.Tag{}, fmt.Errorf("%w: invalid tag at position %d: %w", ErrSyntax, tok.Pos, err)
	}
	p.nextToken()
	return tag, nil
}

// parseExprCall parses anyof(...), allof(...) or noneof(...).
func (p *Parser) parseExprCall() (*Expression, error) {
	var kind Kind
	switch p.current.Type {
	case TokenAnyOf:
		kind = KindAnyExpressionsMatch
	case TokenAllOf:
		kind = KindAllExpressionsMatch
	default:
		kind = KindNoExpressionsMatch
	}
	name := p.current.Literal
	p.nextToken() // consume function name

	if err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	if p.current.Type == TokenRParen {
		return nil, p.errorf("%s() needs at least one expression at position %d", name, p.current.Pos)
	}

	var children []*Expression
	for {
		child, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		children = append(children, child)

		if p.current.Type == TokenComma {
			p.nextToken() // consume comma
			continue
		}
		break
	}

	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return &Expression{Kind: kind, Expressions: children}, nil
}

func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		return p.errorf("expected '%s' at position %d, got %q", tt, p.current.Pos, p.current.Literal)
	}
	p.nextToken()
	return nil
}
