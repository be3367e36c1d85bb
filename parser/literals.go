package parser

import (
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/superpipe/ast"
	"github.com/deepnoodle-ai/superpipe/errors"
	"github.com/deepnoodle-ai/superpipe/internal/lexer"
	"github.com/deepnoodle-ai/superpipe/internal/tmpl"
	"github.com/deepnoodle-ai/superpipe/internal/token"
)

func (p *Parser) parseInt() ast.Expr {
	tok := p.curToken
	value, err := strconv.ParseInt(tok.Literal, 0, 64)
	if err != nil {
		p.setTokenError(tok, errors.E1008, "invalid integer: %s", tok.Literal)
		return nil
	}
	return &ast.Int{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: value}
}

func (p *Parser) parseFloat() ast.Expr {
	tok := p.curToken
	value, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.setTokenError(tok, errors.E1008, "invalid float: %s", tok.Literal)
		return nil
	}
	return &ast.Float{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: value}
}

func (p *Parser) parseBoolean() ast.Expr {
	tok := p.curToken
	return &ast.Bool{ValuePos: tok.StartPosition, Literal: tok.Literal, Value: tok.Type == token.TRUE}
}

func (p *Parser) parseNil() ast.Expr {
	return &ast.Nil{NilPos: p.curToken.StartPosition}
}

func (p *Parser) parseString() ast.Expr {
	strToken := p.curToken
	// STRING (single or double quotes) - plain strings, no interpolation
	if strToken.Type == token.STRING || !strings.Contains(strToken.Literal, "${") {
		return &ast.String{
			ValuePos: strToken.StartPosition,
			ValueEnd: strToken.EndPosition,
			Literal:  strToken.Literal,
			Value:    strToken.Literal,
		}
	}
	// Template string with ${expr} interpolation
	template, err := tmpl.Parse(strToken.Literal)
	if err != nil {
		p.setTokenError(strToken, errors.E1007, "%s", err.Error())
		return nil
	}
	var exprs []ast.Expr
	for _, frag := range template.Fragments() {
		if !frag.IsVariable() {
			continue
		}
		expr, ok := p.parseTemplateHole(strToken, frag.Value())
		if !ok {
			return nil
		}
		exprs = append(exprs, expr)
	}
	return &ast.String{
		ValuePos: strToken.StartPosition,
		ValueEnd: strToken.EndPosition,
		Literal:  strToken.Literal,
		Value:    strToken.Literal,
		Template: template,
		Exprs:    exprs,
	}
}

// parseTemplateHole parses the source inside one "${...}" hole. A hole holds
// a single expression, optionally spread.
func (p *Parser) parseTemplateHole(strToken token.Token, src string) (ast.Expr, bool) {
	if strings.TrimSpace(src) == "" {
		p.setTokenError(strToken, errors.E1004, "empty expression in template string")
		return nil, false
	}
	sub := New(lexer.New(src), WithFilename(p.l.Filename()), WithMaxDepth(p.maxDepth-p.depth))
	sub.ctx = p.ctx
	if sub.hasErrors() {
		p.setTokenError(strToken, errors.E1003, "in template interpolation: %s", sub.errors[0].Message())
		return nil, false
	}
	expr := sub.parseElement(false)
	if expr == nil || sub.hasErrors() {
		msg := "invalid expression"
		if sub.hasErrors() {
			msg = sub.errors[0].Message()
		}
		p.setTokenError(strToken, errors.E1003, "in template interpolation: %s", msg)
		return nil, false
	}
	if !sub.peekTokenIs(token.EOF) {
		p.setTokenError(strToken, errors.E1003,
			"in template interpolation: unexpected %s", tokenDescription(sub.peekToken))
		return nil, false
	}
	return expr, true
}

func (p *Parser) parseList() ast.Expr {
	lbrack := p.curToken
	if p.peekTokenIs(token.RBRACKET) {
		p.nextToken()
		return &ast.List{Lbrack: lbrack.StartPosition, Rbrack: p.curToken.StartPosition}
	}
	p.nextToken()
	first := p.parseElement(false)
	if first == nil {
		return nil
	}
	if p.peekTokenIs(token.FOR) {
		return p.parseComprehension(ast.ListComp, lbrack, first, nil, token.RBRACKET)
	}
	items := []ast.Expr{first}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if p.peekTokenIs(token.RBRACKET) {
			break
		}
		p.nextToken()
		item := p.parseElement(false)
		if item == nil {
			return nil
		}
		items = append(items, item)
	}
	if !p.expectPeek("list", token.RBRACKET) {
		return nil
	}
	return &ast.List{Lbrack: lbrack.StartPosition, Items: items, Rbrack: p.curToken.StartPosition}
}

// parseMapOrSet parses "{...}" as a map, a set, or a set or map
// comprehension, depending on the first item. "{}" is an empty map.
func (p *Parser) parseMapOrSet() ast.Expr {
	lbrace := p.curToken
	p.skipPeekNewlines()
	if p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		return &ast.Map{Lbrace: lbrace.StartPosition, Rbrace: p.curToken.StartPosition}
	}
	p.nextToken()
	key, value, ok := p.parseMapOrSetItem(true, true)
	if !ok {
		return nil
	}
	isMap := value != nil || isDoubleSpread(key)
	p.skipPeekNewlines()
	if p.peekTokenIs(token.FOR) {
		if isMap && value == nil {
			p.setTokenError(lbrace, errors.E1003, "spread is not allowed in a comprehension element")
			return nil
		}
		if isMap {
			return p.parseComprehension(ast.MapComp, lbrace, key, value, token.RBRACE)
		}
		return p.parseComprehension(ast.SetComp, lbrace, key, nil, token.RBRACE)
	}
	var mapItems []ast.MapItem
	var setItems []ast.Expr
	add := func(k, v ast.Expr) {
		switch {
		case !isMap:
			setItems = append(setItems, k)
		case v == nil:
			mapItems = append(mapItems, ast.MapItem{Value: k})
		default:
			mapItems = append(mapItems, ast.MapItem{Key: k, Value: v})
		}
	}
	add(key, value)
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.skipPeekNewlines()
		if p.peekTokenIs(token.RBRACE) {
			break
		}
		p.nextToken()
		k, v, ok := p.parseMapOrSetItem(isMap, !isMap)
		if !ok {
			return nil
		}
		add(k, v)
		p.skipPeekNewlines()
	}
	if !p.expectPeek("map or set", token.RBRACE) {
		return nil
	}
	if isMap {
		return &ast.Map{Lbrace: lbrace.StartPosition, Items: mapItems, Rbrace: p.curToken.StartPosition}
	}
	return &ast.Set{Lbrace: lbrace.StartPosition, Items: setItems, Rbrace: p.curToken.StartPosition}
}

// parseMapOrSetItem parses "key: value", "**spread", or a set element.
// The value is nil for spreads and set elements.
func (p *Parser) parseMapOrSetItem(allowMap, allowSet bool) (ast.Expr, ast.Expr, bool) {
	if p.curTokenIs(token.POW) {
		if !allowMap {
			p.setTokenError(p.curToken, errors.E1003, "mapping spread is not allowed in a set")
			return nil, nil, false
		}
		spread := p.parseElement(true)
		return spread, nil, spread != nil
	}
	key := p.parseElement(false)
	if key == nil {
		return nil, nil, false
	}
	p.skipPeekNewlines()
	if !p.peekTokenIs(token.COLON) {
		if !allowSet {
			p.peekError("map", token.COLON, p.peekToken)
			return nil, nil, false
		}
		return key, nil, true
	}
	if !allowMap {
		p.setTokenError(p.peekToken, errors.E1001, "unexpected : in set")
		return nil, nil, false
	}
	if _, isSpread := key.(*ast.Spread); isSpread {
		p.setTokenError(p.peekToken, errors.E1003, "spread is not allowed as a map key")
		return nil, nil, false
	}
	p.nextToken() // ":"
	p.skipPeekNewlines()
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil, nil, false
	}
	return key, value, true
}

func isDoubleSpread(expr ast.Expr) bool {
	spread, ok := expr.(*ast.Spread)
	return ok && spread.Double
}
