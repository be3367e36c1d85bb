// Package lexer converts source text into a stream of tokens.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/deepnoodle-ai/superpipe/internal/token"
)

// Lexer holds the lexing state for a single input string.
type Lexer struct {
	input string

	// byte offset of the current rune
	position int

	// byte offset of the next rune
	readPosition int

	// current rune; 0 at end of input
	ch rune

	line      int
	lineStart int
	file      string

	// open brackets, innermost last. Newlines are only significant when
	// the innermost bracket is a brace, or when no bracket is open.
	nesting []rune
}

// New returns a Lexer for the given input.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// SetFilename sets the filename attached to token positions.
func (l *Lexer) SetFilename(file string) {
	l.file = file
}

// Filename returns the filename attached to token positions.
func (l *Lexer) Filename() string {
	return l.file
}

// GetLineText returns the full line of source text containing the token.
func (l *Lexer) GetLineText(tok token.Token) string {
	start := tok.StartPosition.LineStart
	if start < 0 || start > len(l.input) {
		return ""
	}
	end := strings.IndexByte(l.input[start:], '\n')
	if end < 0 {
		return l.input[start:]
	}
	return l.input[start : start+end]
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) pos() token.Position {
	return token.Position{
		Char:      l.position,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.position - l.lineStart,
		File:      l.file,
	}
}

func (l *Lexer) newline() {
	l.line++
	l.lineStart = l.position + 1
}

func (l *Lexer) newlineSignificant() bool {
	if len(l.nesting) == 0 {
		return true
	}
	return l.nesting[len(l.nesting)-1] == '{'
}

func (l *Lexer) open(ch rune) {
	l.nesting = append(l.nesting, ch)
}

func (l *Lexer) close() {
	if len(l.nesting) > 0 {
		l.nesting = l.nesting[:len(l.nesting)-1]
	}
}

// Next returns the next token from the input. At the end of the input an
// EOF token is returned, repeatedly.
func (l *Lexer) Next() (token.Token, error) {
	for {
		l.skipWhitespace()
		switch {
		case l.ch == '#' || (l.ch == '/' && l.peekChar() == '/'):
			l.skipComment()
			continue
		case l.ch == '\n' && !l.newlineSignificant():
			l.newline()
			l.readChar()
			continue
		}
		break
	}

	start := l.pos()
	simple := func(t token.Type, literal string) (token.Token, error) {
		for range utf8.RuneCountInString(literal) {
			l.readChar()
		}
		return token.Token{Type: t, Literal: literal, StartPosition: start, EndPosition: l.pos()}, nil
	}

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, StartPosition: start, EndPosition: start}, nil
	case '\n':
		tok, err := simple(token.NEWLINE, "\n")
		l.line++
		l.lineStart = l.position
		return tok, err
	case ';':
		return simple(token.SEMICOLON, ";")
	case ',':
		return simple(token.COMMA, ",")
	case ':':
		return simple(token.COLON, ":")
	case '.':
		return simple(token.PERIOD, ".")
	case '@':
		return simple(token.AT, "@")
	case '+':
		return simple(token.PLUS, "+")
	case '-':
		return simple(token.MINUS, "-")
	case '/':
		return simple(token.SLASH, "/")
	case '%':
		return simple(token.MOD, "%")
	case '(':
		l.open('(')
		return simple(token.LPAREN, "(")
	case '[':
		l.open('[')
		return simple(token.LBRACKET, "[")
	case '{':
		l.open('{')
		return simple(token.LBRACE, "{")
	case ')':
		l.close()
		return simple(token.RPAREN, ")")
	case ']':
		l.close()
		return simple(token.RBRACKET, "]")
	case '}':
		l.close()
		return simple(token.RBRACE, "}")
	case '*':
		if l.peekChar() == '*' {
			return simple(token.POW, "**")
		}
		return simple(token.ASTERISK, "*")
	case '=':
		switch l.peekChar() {
		case '=':
			return simple(token.EQ, "==")
		case '>':
			return simple(token.ARROW, "=>")
		}
		return simple(token.ASSIGN, "=")
	case '!':
		if l.peekChar() == '=' {
			return simple(token.NOT_EQ, "!=")
		}
		return simple(token.BANG, "!")
	case '<':
		switch l.peekChar() {
		case '<':
			return simple(token.LT_LT, "<<")
		case '=':
			return simple(token.LT_EQUALS, "<=")
		}
		return simple(token.LT, "<")
	case '>':
		switch l.peekChar() {
		case '>':
			return simple(token.GT_GT, ">>")
		case '=':
			return simple(token.GT_EQUALS, ">=")
		}
		return simple(token.GT, ">")
	case '&':
		if l.peekChar() == '&' {
			return simple(token.AND, "&&")
		}
	case '|':
		if l.peekChar() == '|' {
			return simple(token.OR, "||")
		}
	case '"', '\'':
		return l.readString(start)
	case '`':
		return l.readTemplate(start)
	default:
		if isDigit(l.ch) {
			return l.readNumber(start)
		}
		if isIdentStart(l.ch) {
			ident := l.readIdentifier()
			return token.Token{
				Type:          token.LookupIdentifier(ident),
				Literal:       ident,
				StartPosition: start,
				EndPosition:   l.pos(),
			}, nil
		}
	}
	return simple(token.ILLEGAL, string(l.ch))
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) skipComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentStart(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber(start token.Position) (token.Token, error) {
	begin := l.position
	tokType := token.INT
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) {
			l.readChar()
		}
	} else {
		for isDigit(l.ch) {
			l.readChar()
		}
		if l.ch == '.' && isDigit(l.peekChar()) {
			tokType = token.FLOAT
			l.readChar()
			for isDigit(l.ch) {
				l.readChar()
			}
		}
		if l.ch == 'e' || l.ch == 'E' {
			tokType = token.FLOAT
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	literal := l.input[begin:l.position]
	tok := token.Token{Type: tokType, Literal: literal, StartPosition: start, EndPosition: l.pos()}
	if isIdentStart(l.ch) {
		return tok, fmt.Errorf("invalid number literal: %s%c", literal, l.ch)
	}
	return tok, nil
}

// readString reads a single or double quoted string. The token literal is
// the unescaped string value.
func (l *Lexer) readString(start token.Position) (token.Token, error) {
	quote := l.ch
	l.readChar() // opening quote
	var out strings.Builder
	for {
		switch l.ch {
		case 0, '\n':
			tok := token.Token{Type: token.ILLEGAL, Literal: out.String(), StartPosition: start, EndPosition: l.pos()}
			return tok, fmt.Errorf("unterminated string literal")
		case quote:
			l.readChar() // closing quote
			return token.Token{Type: token.STRING, Literal: out.String(), StartPosition: start, EndPosition: l.pos()}, nil
		case '\\':
			rest := l.input[l.position:]
			value, _, tail, err := strconv.UnquoteChar(rest, byte(quote))
			if err != nil {
				tok := token.Token{Type: token.ILLEGAL, Literal: out.String(), StartPosition: start, EndPosition: l.pos()}
				return tok, fmt.Errorf("invalid escape sequence in string literal")
			}
			out.WriteRune(value)
			consumed := len(rest) - len(tail)
			for end := l.position + consumed; l.position < end; {
				l.readChar()
			}
		default:
			out.WriteRune(l.ch)
			l.readChar()
		}
	}
}

// readTemplate reads a backtick string. No escapes are processed and the
// string may span lines.
func (l *Lexer) readTemplate(start token.Position) (token.Token, error) {
	l.readChar() // opening backtick
	begin := l.position
	for l.ch != '`' {
		if l.ch == 0 {
			tok := token.Token{Type: token.ILLEGAL, Literal: l.input[begin:l.position], StartPosition: start, EndPosition: l.pos()}
			return tok, fmt.Errorf("unterminated template string")
		}
		if l.ch == '\n' {
			l.newline()
		}
		l.readChar()
	}
	literal := l.input[begin:l.position]
	l.readChar() // closing backtick
	return token.Token{Type: token.TEMPLATE, Literal: literal, StartPosition: start, EndPosition: l.pos()}, nil
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}
