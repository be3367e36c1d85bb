// Package parser is used to generate the abstract syntax tree (AST) for a program.
//
// A parser is created by calling New() with a lexer as input. The parser should
// then be used only once, by calling parser.Parse() to produce the AST.
package parser

import (
	"context"
	"fmt"

	"github.com/deepnoodle-ai/superpipe/ast"
	"github.com/deepnoodle-ai/superpipe/errors"
	"github.com/deepnoodle-ai/superpipe/internal/lexer"
	"github.com/deepnoodle-ai/superpipe/internal/token"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// statementTerminators defines tokens that can end a statement.
//
// A trailing binary operator continues an expression onto the next line, so
// "x >>\nf" is one expression while "x\n>> f" is a syntax error. Newlines
// inside parentheses and brackets are dropped by the lexer.
var statementTerminators = map[token.Type]bool{
	token.SEMICOLON: true,
	token.NEWLINE:   true,
	token.RBRACE:    true,
	token.EOF:       true,
}

// Parse the provided input as source code and return the AST. This is
// shorthand way to create a Lexer and Parser and then call Parse on that.
func Parse(ctx context.Context, input string, options ...Option) (*ast.Program, error) {
	// Apply options to a probe first so the lexer knows the filename before
	// the first tokens are read.
	var probe Parser
	for _, opt := range options {
		opt(&probe)
	}
	l := lexer.New(input)
	if probe.filename != "" {
		l.SetFilename(probe.filename)
	}
	p := New(l, options...)
	return p.Parse(ctx)
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name attached to positions and errors.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum nesting depth for the parser.
// This prevents stack overflow on deeply nested input.
// The default is 500.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// DefaultMaxDepth is the default maximum nesting depth for parsing.
const DefaultMaxDepth = 500

// MaxErrors is the maximum number of errors to collect before stopping.
const MaxErrors = 10

// Parser object
type Parser struct {
	// the Context supplied in the Parse() call
	ctx context.Context

	// l is our lexer
	l *lexer.Lexer

	// prevToken holds the previous token, which we already processed.
	prevToken token.Token

	// curToken holds the current token from the lexer.
	curToken token.Token

	// peekToken holds the next token from the lexer.
	peekToken token.Token

	// parsing errors collected during parsing
	errors []ParserError

	// error count at the start of the current statement
	stmtErrorCount int

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn

	// The filename of the input
	filename string

	// Current recursion depth
	depth int

	// Maximum allowed recursion depth
	maxDepth int
}

// New returns a Parser for the program provided by the given Lexer.
func New(l *lexer.Lexer, options ...Option) *Parser {
	p := &Parser{
		l:              l,
		prefixParseFns: map[token.Type]prefixParseFn{},
		infixParseFns:  map[token.Type]infixParseFn{},
		maxDepth:       DefaultMaxDepth,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.filename != "" && l.Filename() == "" {
		l.SetFilename(p.filename)
	}

	// Prime the token pump
	p.nextToken() // makes curToken=<empty>, peekToken=token[0]
	p.nextToken() // makes curToken=token[0], peekToken=token[1]

	// Register prefix-functions
	p.registerPrefix(token.BANG, p.parsePrefixExpr)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.FLOAT, p.parseFloat)
	p.registerPrefix(token.FUNCTION, p.parseFunc)
	p.registerPrefix(token.IDENT, p.parseIdent)
	p.registerPrefix(token.ILLEGAL, p.illegalToken)
	p.registerPrefix(token.INT, p.parseInt)
	p.registerPrefix(token.LBRACE, p.parseMapOrSet)
	p.registerPrefix(token.LBRACKET, p.parseList)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpr)
	p.registerPrefix(token.MINUS, p.parsePrefixExpr)
	p.registerPrefix(token.NIL, p.parseNil)
	p.registerPrefix(token.NOT, p.parsePrefixExpr)
	p.registerPrefix(token.STRING, p.parseString)
	p.registerPrefix(token.TEMPLATE, p.parseString)
	p.registerPrefix(token.TRUE, p.parseBoolean)

	// Register infix functions
	p.registerInfix(token.AND, p.parseInfixExpr)
	p.registerInfix(token.ASTERISK, p.parseInfixExpr)
	p.registerInfix(token.EQ, p.parseInfixExpr)
	p.registerInfix(token.GT_EQUALS, p.parseInfixExpr)
	p.registerInfix(token.GT_GT, p.parseInfixExpr)
	p.registerInfix(token.GT, p.parseInfixExpr)
	p.registerInfix(token.LBRACKET, p.parseIndex)
	p.registerInfix(token.LPAREN, p.parseCall)
	p.registerInfix(token.LT_EQUALS, p.parseInfixExpr)
	p.registerInfix(token.LT_LT, p.parseInfixExpr)
	p.registerInfix(token.LT, p.parseInfixExpr)
	p.registerInfix(token.MINUS, p.parseInfixExpr)
	p.registerInfix(token.MOD, p.parseInfixExpr)
	p.registerInfix(token.NOT_EQ, p.parseInfixExpr)
	p.registerInfix(token.OR, p.parseInfixExpr)
	p.registerInfix(token.PERIOD, p.parseGetAttr)
	p.registerInfix(token.PLUS, p.parseInfixExpr)
	p.registerInfix(token.POW, p.parseInfixExpr)
	p.registerInfix(token.SLASH, p.parseInfixExpr)
	return p
}

// advanceToken moves to the next token from the lexer without error checking.
// Used internally by synchronize() during error recovery.
func (p *Parser) advanceToken() {
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken, _ = p.l.Next()
}

// nextToken moves to the next token from the lexer, updating all of
// prevToken, curToken, and peekToken.
func (p *Parser) nextToken() error {
	var err error
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken, err = p.l.Next()
	if err == nil {
		return nil
	}
	// The lexer encountered an error. We consider all lexer errors
	// "syntax errors" and parsing will now be considered broken.
	p.addError(NewSyntaxError(ErrorOpts{
		Code:          lexerErrorCode(p.peekToken),
		Cause:         err,
		File:          p.l.Filename(),
		StartPosition: p.peekToken.StartPosition,
		EndPosition:   p.peekToken.EndPosition,
		SourceCode:    p.l.GetLineText(p.peekToken),
	}))
	return err
}

func lexerErrorCode(t token.Token) errors.ErrorCode {
	switch t.Type {
	case token.ILLEGAL:
		return errors.E1002
	case token.INT, token.FLOAT:
		return errors.E1008
	}
	return errors.E1003
}

// Parse the program that is provided via the lexer.
// Returns the AST and any errors encountered. If there are errors, the AST
// may be partial (containing only successfully parsed statements).
func (p *Parser) Parse(ctx context.Context) (*ast.Program, error) {
	p.ctx = ctx
	// It's possible for errors to already exist because we read tokens from
	// the lexer in the constructor.
	if p.hasErrors() {
		return nil, NewErrors(p.errors)
	}
	var statements []ast.Node
	for p.curToken.Type != token.EOF {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if p.tooManyErrors() {
			break
		}
		p.stmtErrorCount = len(p.errors)
		stmt := p.parseStatementStrict()
		if stmt != nil {
			statements = append(statements, stmt)
		} else if p.hadNewError() {
			p.synchronize()
		}
		p.nextToken()
	}
	if p.hasErrors() {
		return &ast.Program{Stmts: statements}, NewErrors(p.errors)
	}
	return &ast.Program{Stmts: statements}, nil
}

// registerPrefix registers a function for handling a prefix-based expression.
func (p *Parser) registerPrefix(tokenType token.Type, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

// registerInfix registers a function for handling an infix-based expression.
func (p *Parser) registerInfix(tokenType token.Type, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) addError(err ParserError) {
	p.errors = append(p.errors, err)
}

func (p *Parser) hasErrors() bool {
	return len(p.errors) > 0
}

func (p *Parser) tooManyErrors() bool {
	return len(p.errors) >= MaxErrors
}

// hadNewError returns true if an error was added during the current statement.
func (p *Parser) hadNewError() bool {
	return len(p.errors) > p.stmtErrorCount
}

// synchronize skips tokens until a statement boundary is reached.
// This is used for error recovery to continue parsing after an error.
func (p *Parser) synchronize() {
	for !p.curTokenIs(token.EOF) {
		if statementTerminators[p.curToken.Type] {
			return
		}
		prevPos := p.curToken.StartPosition
		p.advanceToken()
		// Safety: if we didn't advance (lexer stuck), bail out
		if p.curToken.StartPosition == prevPos {
			return
		}
	}
}

func (p *Parser) noPrefixParseFnError(t token.Token) {
	p.addError(NewParserError(ErrorOpts{
		ErrType:       "parse error",
		Code:          errors.E1003,
		Message:       fmt.Sprintf("invalid syntax (unexpected %s)", tokenDescription(t)),
		File:          p.l.Filename(),
		StartPosition: t.StartPosition,
		EndPosition:   t.EndPosition,
		SourceCode:    p.l.GetLineText(t),
	}))
}

// peekError raises an error if the next token is not the expected type.
func (p *Parser) peekError(context string, expected token.Type, got token.Token) {
	p.addError(NewParserError(ErrorOpts{
		ErrType: "parse error",
		Code:    errors.E1001,
		Message: fmt.Sprintf("unexpected %s while parsing %s (expected %s)",
			tokenDescription(got), context, tokenTypeDescription(expected)),
		File:          p.l.Filename(),
		StartPosition: got.StartPosition,
		EndPosition:   got.EndPosition,
		SourceCode:    p.l.GetLineText(got),
	}))
}

func (p *Parser) setTokenError(t token.Token, code errors.ErrorCode, msg string, args ...any) {
	p.addError(NewParserError(ErrorOpts{
		ErrType:       "parse error",
		Code:          code,
		Message:       fmt.Sprintf(msg, args...),
		File:          p.l.Filename(),
		StartPosition: t.StartPosition,
		EndPosition:   t.EndPosition,
		SourceCode:    p.l.GetLineText(t),
	}))
}

func (p *Parser) parseStatementStrict() ast.Node {
	stmt := p.parseStatement()
	if stmt == nil || p.hadNewError() {
		return nil
	}
	// statement should end with a semicolon or the next token should be
	// a statement terminator
	if !p.curTokenIs(token.SEMICOLON) && !statementTerminators[p.peekToken.Type] {
		p.setTokenError(p.peekToken, errors.E1001,
			"unexpected %s following statement", tokenDescription(p.peekToken))
		return nil
	}
	return stmt
}

func (p *Parser) parseStatement() ast.Node {
	var stmt ast.Node
	switch p.curToken.Type {
	case token.LET:
		if s := p.parseLet(); s != nil {
			stmt = s
		}
	case token.RETURN:
		if s := p.parseReturn(); s != nil {
			stmt = s
		}
	case token.AT:
		stmt = p.parseDecorated()
	case token.CLASS:
		if s := p.parseClass(); s != nil {
			stmt = s
		}
	case token.NEWLINE, token.SEMICOLON:
		return nil
	default:
		stmt = p.parseExpressionStatement()
	}
	// Consume trailing semicolon if present
	if stmt != nil && p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

// parseExpression is the core of the Pratt parser. It parses a prefix
// expression and then folds in infix operators that bind tighter than the
// given precedence.
func (p *Parser) parseExpression(precedence int) ast.Expr {
	if p.hadNewError() {
		return nil
	}
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		p.setTokenError(p.curToken, errors.E1009, "maximum nesting depth exceeded")
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if p.hadNewError() || leftExp == nil {
		return nil
	}
	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		if err := p.nextToken(); err != nil {
			return nil
		}
		leftExp = infix(leftExp)
		if p.hadNewError() || leftExp == nil {
			return nil
		}
	}
	return leftExp
}

func (p *Parser) illegalToken() ast.Expr {
	p.setTokenError(p.curToken, errors.E1003, "illegal token %s", p.curToken.Literal)
	return nil
}

// newIdent creates a new Ident node from a token.
func (p *Parser) newIdent(tok token.Token) *ast.Ident {
	return &ast.Ident{NamePos: tok.StartPosition, Name: tok.Literal}
}

func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

// expectPeek advances if the next token has the given type, and records an
// error otherwise.
func (p *Parser) expectPeek(context string, t token.Type) bool {
	if p.peekTokenIs(t) {
		if err := p.nextToken(); err != nil {
			return false
		}
		return true
	}
	p.peekError(context, t, p.peekToken)
	return false
}

// skipPeekNewlines advances past newline tokens that follow the current token.
func (p *Parser) skipPeekNewlines() {
	for p.peekTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}
