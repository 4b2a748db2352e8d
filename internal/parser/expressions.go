package parser

import (
	"strconv"

	"github.com/lucklove/dyon/internal/ast"
	"github.com/lucklove/dyon/internal/token"
)

func (p *Parser) parseNumberLiteral() ast.Expression {
	pos := p.curToken.Pos
	v, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addErrorf(pos, "invalid number literal %q", p.curToken.Literal)
		return nil
	}
	return &ast.NumberLiteral{Position: pos, Value: v}
}

func (p *Parser) parseTextLiteral() ast.Expression {
	return &ast.TextLiteral{Position: p.curToken.Pos, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	return &ast.BoolLiteral{Position: p.curToken.Pos, Value: p.curToken.Type == token.TRUE}
}

func (p *Parser) parseUnaryOp() ast.Expression {
	pos, op := p.curToken.Pos, p.curToken.Literal
	p.nextToken()
	expr := p.parseExpression(PREFIX)
	return &ast.UnaryOp{Position: pos, Op: op, Expr: expr}
}

func (p *Parser) parseGroupedExpr() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseBinaryOp(left ast.Expression) ast.Expression {
	pos, op, prec := p.curToken.Pos, p.curToken.Literal, p.curPrecedence()
	p.nextToken()
	rightPrec := prec
	if op == "**" {
		// `**` is right-associative: parse its right operand one level lower
		// so a following `**` folds into the right operand.
		rightPrec = prec - 1
	}
	right := p.parseExpression(rightPrec)
	return &ast.BinaryOp{Position: pos, Op: op, Left: left, Right: right}
}

func (p *Parser) parseCompare(left ast.Expression) ast.Expression {
	pos, op, prec := p.curToken.Pos, p.curToken.Literal, p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	return &ast.Compare{Position: pos, Op: op, Left: left, Right: right}
}

// parseAssign handles `:= = += -= *= /= %= **=` as a low-precedence infix
// operator whose left operand must already be a parsed *ast.Item.
func (p *Parser) parseAssign(left ast.Expression) ast.Expression {
	item, ok := left.(*ast.Item)
	if !ok {
		p.addErrorf(p.curToken.Pos, "left side of %s must be an assignable path", p.curToken.Literal)
		return nil
	}
	pos, op := p.curToken.Pos, assignOps[p.curToken.Type]
	p.nextToken()
	right := p.parseExpression(ASSIGNMENT)
	return &ast.Assign{Position: pos, Op: op, Left: item, Right: right}
}

// parseIdentOrCall disambiguates a bare identifier from a call by one token
// of lookahead: IDENT immediately followed by "(" is a Call, otherwise it is
// an Item optionally followed by a dotted/indexed path.
func (p *Parser) parseIdentOrCall() ast.Expression {
	pos, name := p.curToken.Pos, p.curToken.Literal
	if p.peekIs(token.LPAREN) {
		p.nextToken()
		return p.parseCallArgs(pos, name)
	}
	return p.parseItemPath(pos, name)
}

func (p *Parser) parseCallArgs(pos token.Position, name string) ast.Expression {
	call := &ast.Call{Position: pos, Name: name}
	if p.peekIs(token.RPAREN) {
		p.nextToken()
		return call
	}
	p.nextToken()
	call.Args = append(call.Args, p.parseExpression(LOWEST))
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		call.Args = append(call.Args, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(token.RPAREN) {
		return call
	}
	return call
}

// parseItemPath parses the `.key` / `[expr]` path segments following a bare
// name.
func (p *Parser) parseItemPath(pos token.Position, name string) ast.Expression {
	item := &ast.Item{Position: pos, Name: name}
	for {
		switch {
		case p.peekIs(token.DOT):
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return item
			}
			item.Ids = append(item.Ids, ast.Id{Kind: ast.IdKey, Key: p.curToken.Literal})
		case p.peekIs(token.LBRACKET):
			p.nextToken()
			p.nextToken()
			expr := p.parseExpression(LOWEST)
			if !p.expectPeek(token.RBRACKET) {
				return item
			}
			if num, ok := expr.(*ast.NumberLiteral); ok {
				item.Ids = append(item.Ids, ast.Id{Kind: ast.IdIndex, Index: num.Value})
			} else {
				item.Ids = append(item.Ids, ast.Id{Kind: ast.IdExpr, Expr: expr})
			}
		default:
			return item
		}
	}
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	obj := &ast.ObjectLiteral{Position: p.curToken.Pos}
	if p.peekIs(token.RBRACE) {
		p.nextToken()
		return obj
	}
	p.nextToken()
	obj.Fields = append(obj.Fields, p.parseObjectField())
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		obj.Fields = append(obj.Fields, p.parseObjectField())
	}
	if !p.expectPeek(token.RBRACE) {
		return obj
	}
	return obj
}

func (p *Parser) parseObjectField() ast.ObjectField {
	if !p.curIs(token.IDENT) && !p.curIs(token.STRING) {
		p.addErrorf(p.curToken.Pos, "expected object key, got %s", p.curToken.Type)
		return ast.ObjectField{}
	}
	key := p.curToken.Literal
	if !p.expectPeek(token.COLON) {
		return ast.ObjectField{Key: key}
	}
	p.nextToken()
	return ast.ObjectField{Key: key, Value: p.parseExpression(LOWEST)}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	arr := &ast.ArrayLiteral{Position: p.curToken.Pos}
	if p.peekIs(token.RBRACKET) {
		p.nextToken()
		return arr
	}
	p.nextToken()
	arr.Elements = append(arr.Elements, p.parseExpression(LOWEST))
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		arr.Elements = append(arr.Elements, p.parseExpression(LOWEST))
	}
	if !p.expectPeek(token.RBRACKET) {
		return arr
	}
	return arr
}
