package parser

import (
	"github.com/deepnoodle-ai/superpipe/ast"
	"github.com/deepnoodle-ai/superpipe/errors"
	"github.com/deepnoodle-ai/superpipe/internal/token"
)

func (p *Parser) parseLet() *ast.Var {
	letPos := p.curToken.StartPosition
	if !p.expectPeek("let statement", token.IDENT) {
		return nil
	}
	name := p.newIdent(p.curToken)
	if !p.expectPeek("let statement", token.ASSIGN) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	return &ast.Var{Let: letPos, Name: name, Value: value}
}

func (p *Parser) parseReturn() *ast.Return {
	ret := &ast.Return{Return: p.curToken.StartPosition}
	if statementTerminators[p.peekToken.Type] {
		return ret
	}
	p.nextToken()
	ret.Value = p.parseExpression(LOWEST)
	if ret.Value == nil {
		return nil
	}
	return ret
}

func (p *Parser) parseExpressionStatement() ast.Node {
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.peekTokenIs(token.ASSIGN) {
		return expr
	}
	switch expr.(type) {
	case *ast.Ident, *ast.GetAttr, *ast.Index:
	default:
		p.setTokenError(p.peekToken, errors.E1005, "invalid assignment target %s", expr.String())
		return nil
	}
	p.nextToken()
	opPos := p.curToken.StartPosition
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	return &ast.Assign{Target: expr, OpPos: opPos, Value: value}
}

// parseDecorated parses one or more "@expr" lines followed by the function
// or class definition they decorate.
func (p *Parser) parseDecorated() ast.Node {
	var decorators []*ast.Decorator
	for p.curTokenIs(token.AT) {
		at := p.curToken.StartPosition
		p.nextToken()
		x := p.parseExpression(LOWEST)
		if x == nil {
			return nil
		}
		decorators = append(decorators, &ast.Decorator{At: at, X: x})
		if !p.expectPeek("decorator", token.NEWLINE) {
			return nil
		}
		p.skipPeekNewlines()
		p.nextToken()
	}
	switch p.curToken.Type {
	case token.FUNCTION:
		fn, ok := p.parseFunc().(*ast.Func)
		if !ok {
			return nil
		}
		if fn.Name == nil {
			p.setTokenError(p.curToken, errors.E1006, "decorated function must have a name")
			return nil
		}
		fn.Decorators = decorators
		return fn
	case token.CLASS:
		class := p.parseClass()
		if class == nil {
			return nil
		}
		class.Decorators = decorators
		return class
	}
	p.setTokenError(p.curToken, errors.E1001,
		"unexpected %s after decorator (expected function or class)", tokenDescription(p.curToken))
	return nil
}

func (p *Parser) parseClass() *ast.Class {
	class := &ast.Class{Class: p.curToken.StartPosition}
	if !p.expectPeek("class", token.IDENT) {
		return nil
	}
	class.Name = p.newIdent(p.curToken)
	if !p.expectPeek("class", token.LBRACE) {
		return nil
	}
	class.Lbrace = p.curToken.StartPosition
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		switch p.curToken.Type {
		case token.NEWLINE, token.SEMICOLON:
			p.nextToken()
			continue
		case token.EOF:
			p.setTokenError(p.curToken, errors.E1007, "unterminated class body")
			return nil
		case token.AT, token.FUNCTION:
		default:
			p.setTokenError(p.curToken, errors.E1001,
				"unexpected %s in class body (expected method)", tokenDescription(p.curToken))
			return nil
		}
		var member ast.Node
		if p.curTokenIs(token.AT) {
			member = p.parseDecorated()
		} else {
			member = p.parseFunc()
		}
		method, ok := member.(*ast.Func)
		if !ok || p.hadNewError() {
			if !p.hadNewError() {
				p.setTokenError(p.curToken, errors.E1001, "expected method definition")
			}
			return nil
		}
		if method.Name == nil {
			p.setTokenError(p.curToken, errors.E1006, "method must have a name")
			return nil
		}
		class.Methods = append(class.Methods, method)
		p.nextToken()
	}
	class.Rbrace = p.curToken.StartPosition
	return class
}

// parseBlock parses statements up to the closing brace. The current token
// must be the opening brace.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Lbrace: p.curToken.StartPosition}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.setTokenError(p.curToken, errors.E1007, "unterminated block (expected })")
			return nil
		}
		stmt := p.parseStatementStrict()
		if p.hadNewError() {
			return nil
		}
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		p.nextToken()
	}
	block.Rbrace = p.curToken.StartPosition
	return block
}
