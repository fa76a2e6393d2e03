package tql

// Lexer tokenizes TQL input.
type Lexer struct {
	input string
	pos   int  // current position in input
	ch    byte // current character under examination
}

// NewLexer creates a new lexer for the input string.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Pos: l.pos}

	switch l.ch {
	case '(':
		tok.Type = TokenLParen
		tok.Literal = "("
	case ')':
		tok.Type = TokenRParen
		tok.Literal = ")"
	case ',':
		tok.Type = TokenComma
		tok.Literal = ","
	case '"', '\'':
		quote := l.ch
		lit, closed := l.readString(quote)
		if !closed {
			tok.Type = TokenIllegal
			tok.Literal = string(quote) + lit
			return tok
		}
		tok.Type = TokenString
		tok.Literal = lit
		return tok
	case 0:
		tok.Type = TokenEOF
		tok.Literal = ""
		return tok
	default:
		if isTagChar(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupKeyword(tok.Literal)
			return tok
		}
		tok.Type = TokenIllegal
		tok.Literal = string(l.ch)
	}

	l.readChar()
	return tok
}

// readChar reads the next character and advances position.
func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.pos]
	}
	l.pos++
}

// skipWhitespace advances past whitespace characters.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readIdentifier reads a run of letters, digits and dots. Tag syntax is
// checked by the parser so that errors name the whole tag.
func (l *Lexer) readIdentifier() string {
	start := l.pos - 1
	for isTagChar(l.ch) {
		l.readChar()
	}
	return l.input[start : l.pos-1]
}

// readString reads a quoted string and reports whether it was terminated.
func (l *Lexer) readString(quote byte) (string, bool) {
	l.readChar() // skip opening quote
	start := l.pos - 1
	for l.ch != quote && l.ch != 0 {
		l.readChar()
	}
	str := l.input[start : l.pos-1]
	if l.ch != quote {
		return str, false
	}
	l.readChar() // skip closing quote
	return str, true
}

func isTagChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '.'
}
