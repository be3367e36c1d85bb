package parser

import (
	"github.com/deepnoodle-ai/superpipe/ast"
	"github.com/deepnoodle-ai/superpipe/errors"
	"github.com/deepnoodle-ai/superpipe/internal/token"
)

func (p *Parser) parseIdent() ast.Expr {
	ident := p.newIdent(p.curToken)
	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		return p.parseArrowBody(ident.Pos(), []*ast.Ident{ident})
	}
	return ident
}

func (p *Parser) parsePrefixExpr() ast.Expr {
	opTok := p.curToken
	p.nextToken()
	right := p.parseExpression(PREFIX)
	if right == nil {
		return nil
	}
	return &ast.Prefix{OpPos: opTok.StartPosition, Op: opTok.Literal, X: right}
}

func (p *Parser) parseInfixExpr(left ast.Expr) ast.Expr {
	opTok := p.curToken
	precedence := p.curPrecedence()
	if opTok.Type == token.POW {
		precedence-- // right associative
	}
	p.nextToken()
	// A trailing operator continues the expression on the next line
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &ast.Infix{X: left, OpPos: opTok.StartPosition, Op: opTok.Literal, Y: right}
}

func (p *Parser) parseGetAttr(obj ast.Expr) ast.Expr {
	period := p.curToken.StartPosition
	if !p.expectPeek("attribute", token.IDENT) {
		return nil
	}
	return &ast.GetAttr{X: obj, Period: period, Attr: p.newIdent(p.curToken)}
}

func (p *Parser) parseIndex(obj ast.Expr) ast.Expr {
	lbrack := p.curToken.StartPosition
	var low ast.Expr
	if !p.peekTokenIs(token.COLON) {
		p.nextToken()
		low = p.parseExpression(LOWEST)
		if low == nil {
			return nil
		}
		if !p.peekTokenIs(token.COLON) {
			if !p.expectPeek("index", token.RBRACKET) {
				return nil
			}
			return &ast.Index{X: obj, Lbrack: lbrack, Index: low, Rbrack: p.curToken.StartPosition}
		}
	}
	p.nextToken() // ":"
	var high ast.Expr
	if !p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		high = p.parseExpression(LOWEST)
		if high == nil {
			return nil
		}
	}
	if !p.expectPeek("slice", token.RBRACKET) {
		return nil
	}
	return &ast.Slice{X: obj, Lbrack: lbrack, Low: low, High: high, Rbrack: p.curToken.StartPosition}
}

// parseElement parses an expression that may be prefixed by a spread
// operator. Double spreads are only accepted where allowDouble is set.
func (p *Parser) parseElement(allowDouble bool) ast.Expr {
	switch p.curToken.Type {
	case token.ASTERISK, token.POW:
		star := p.curToken
		double := star.Type == token.POW
		if double && !allowDouble {
			p.setTokenError(star, errors.E1003, "mapping spread is not allowed here")
			return nil
		}
		p.nextToken()
		x := p.parseExpression(PREFIX)
		if x == nil {
			return nil
		}
		return &ast.Spread{Star: star.StartPosition, Double: double, X: x}
	}
	return p.parseExpression(LOWEST)
}

func (p *Parser) parseCall(fn ast.Expr) ast.Expr {
	call := &ast.Call{Fun: fn, Lparen: p.curToken.StartPosition}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		call.Rparen = p.curToken.StartPosition
		return call
	}
	for {
		p.nextToken()
		switch {
		case p.curTokenIs(token.POW):
			value := p.parseElement(true)
			if value == nil {
				return nil
			}
			call.Kwargs = append(call.Kwargs, &ast.Keyword{Value: value})
		case p.curTokenIs(token.IDENT) && p.peekTokenIs(token.ASSIGN):
			name := p.newIdent(p.curToken)
			p.nextToken()
			p.nextToken()
			value := p.parseElement(false)
			if value == nil {
				return nil
			}
			call.Kwargs = append(call.Kwargs, &ast.Keyword{Name: name, Value: value})
		default:
			argTok := p.curToken
			arg := p.parseElement(false)
			if arg == nil {
				return nil
			}
			if len(call.Kwargs) > 0 {
				p.setTokenError(argTok, errors.E1003, "positional argument follows keyword argument")
				return nil
			}
			call.Args = append(call.Args, arg)
		}
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		if p.peekTokenIs(token.RPAREN) {
			break
		}
	}
	if !p.expectPeek("call arguments", token.RPAREN) {
		return nil
	}
	call.Rparen = p.curToken.StartPosition
	return call
}

// parseGroupedExpr handles everything that starts with "(": grouping,
// tuples, generator expressions and arrow function parameter lists.
func (p *Parser) parseGroupedExpr() ast.Expr {
	lparen := p.curToken
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		if p.peekTokenIs(token.ARROW) {
			p.nextToken()
			return p.parseArrowBody(lparen.StartPosition, nil)
		}
		return &ast.Tuple{Lparen: lparen.StartPosition, Rparen: p.curToken.StartPosition}
	}
	p.nextToken()
	first := p.parseElement(false)
	if first == nil {
		return nil
	}
	if p.peekTokenIs(token.FOR) {
		return p.parseComprehension(ast.GeneratorComp, lparen, first, nil, token.RPAREN)
	}
	if !p.peekTokenIs(token.COMMA) {
		if !p.expectPeek("grouped expression", token.RPAREN) {
			return nil
		}
		if _, isSpread := first.(*ast.Spread); isSpread {
			p.setTokenError(lparen, errors.E1003, "spread is not allowed here")
			return nil
		}
		if p.peekTokenIs(token.ARROW) {
			return p.parseArrowParams(lparen, []ast.Expr{first})
		}
		return first
	}
	items := []ast.Expr{first}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if p.peekTokenIs(token.RPAREN) {
			break
		}
		p.nextToken()
		item := p.parseElement(false)
		if item == nil {
			return nil
		}
		items = append(items, item)
	}
	if !p.expectPeek("tuple", token.RPAREN) {
		return nil
	}
	if p.peekTokenIs(token.ARROW) {
		return p.parseArrowParams(lparen, items)
	}
	return &ast.Tuple{Lparen: lparen.StartPosition, Items: items, Rparen: p.curToken.StartPosition}
}

// parseArrowParams validates a parenthesized list as arrow function
// parameters. The next token must be "=>".
func (p *Parser) parseArrowParams(lparen token.Token, items []ast.Expr) ast.Expr {
	params := make([]*ast.Ident, 0, len(items))
	for _, item := range items {
		ident, ok := item.(*ast.Ident)
		if !ok {
			p.setTokenError(lparen, errors.E1006, "invalid arrow function parameter %s", item.String())
			return nil
		}
		params = append(params, ident)
	}
	p.nextToken() // "=>"
	return p.parseArrowBody(lparen.StartPosition, params)
}

// parseArrowBody parses the body of an arrow function. The current token
// must be "=>".
func (p *Parser) parseArrowBody(start token.Position, params []*ast.Ident) ast.Expr {
	fn := &ast.Func{Func: start, Params: params}
	p.nextToken()
	if p.curTokenIs(token.LBRACE) {
		body := p.parseBlock()
		if body == nil {
			return nil
		}
		fn.Body = body
		return fn
	}
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	ret := &ast.Return{Return: value.Pos(), Value: value}
	fn.Body = &ast.Block{Lbrace: value.Pos(), Stmts: []ast.Node{ret}, Rbrace: value.End()}
	fn.Arrow = true
	return fn
}

func (p *Parser) parseFunc() ast.Expr {
	fn := &ast.Func{Func: p.curToken.StartPosition}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		fn.Name = p.newIdent(p.curToken)
	}
	if !p.expectPeek("function", token.LPAREN) {
		return nil
	}
	fn.Lparen = p.curToken.StartPosition
	for !p.peekTokenIs(token.RPAREN) {
		if !p.expectPeek("function parameters", token.IDENT) {
			return nil
		}
		fn.Params = append(fn.Params, p.newIdent(p.curToken))
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek("function parameters", token.RPAREN) {
		return nil
	}
	fn.Rparen = p.curToken.StartPosition
	if !p.expectPeek("function", token.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	fn.Body = body
	return fn
}

// parseComprehension parses the "for ... in ... if ..." clauses that follow
// the element (or key and value) of a comprehension, and the closing bracket.
func (p *Parser) parseComprehension(kind ast.ComprehensionKind, open token.Token, elt, value ast.Expr, closing token.Type) ast.Expr {
	if _, isSpread := elt.(*ast.Spread); isSpread {
		p.setTokenError(open, errors.E1003, "spread is not allowed in a comprehension element")
		return nil
	}
	comp := &ast.Comprehension{Kind: kind, Open: open.StartPosition}
	if kind == ast.MapComp {
		comp.Key = elt
		comp.Value = value
	} else {
		comp.Elt = elt
	}
	for p.peekTokenIs(token.FOR) {
		p.nextToken()
		gen := &ast.ComprehensionFor{For: p.curToken.StartPosition}
		for {
			if !p.expectPeek("comprehension target", token.IDENT) {
				return nil
			}
			gen.Targets = append(gen.Targets, p.newIdent(p.curToken))
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
		if !p.expectPeek("comprehension", token.IN) {
			return nil
		}
		p.nextToken()
		gen.Iter = p.parseExpression(LOWEST)
		if gen.Iter == nil {
			return nil
		}
		for p.peekTokenIs(token.IF) {
			p.nextToken()
			p.nextToken()
			cond := p.parseExpression(LOWEST)
			if cond == nil {
				return nil
			}
			gen.Ifs = append(gen.Ifs, cond)
		}
		comp.Generators = append(comp.Generators, gen)
		if closing == token.RBRACE {
			p.skipPeekNewlines()
		}
	}
	if !p.expectPeek("comprehension", closing) {
		return nil
	}
	comp.Close = p.curToken.StartPosition
	return comp
}
