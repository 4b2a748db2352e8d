package parser

import (
	"github.com/lucklove/dyon/internal/ast"
	"github.com/lucklove/dyon/internal/token"
)

// parseIfExpr parses `if cond { ... }` with an optional `else { ... }` or
// `else if ...` chain. The condition is parsed as a plain expression; `{`
// only begins an ObjectLiteral in primary position, so no ambiguity arises
// here since `{` is not registered as an infix operator.
func (p *Parser) parseIfExpr() ast.Expression {
	pos := p.curToken.Pos
	p.nextToken()
	cond := p.parseExpression(LOWEST)

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	trueBlock := p.parseBlock()

	node := &ast.If{Position: pos, Cond: cond, TrueBlock: trueBlock}

	if p.peekIs(token.ELSE) {
		p.nextToken()
		if p.peekIs(token.IF) {
			p.nextToken()
			elseExpr := p.parseIfExpr()
			node.ElseBlock = &ast.Block{Position: elseExpr.Pos(), Expressions: []ast.Expression{elseExpr}}
		} else if p.expectPeek(token.LBRACE) {
			node.ElseBlock = p.parseBlock()
		}
	}
	return node
}

// parseForExpr parses an unlabeled `for init; cond; step { block }`.
func (p *Parser) parseForExpr() ast.Expression {
	return p.parseForWithLabel(p.curToken.Pos, "")
}

// parseLabeledFor parses `'label: for init; cond; step { block }`.
func (p *Parser) parseLabeledFor() ast.Expression {
	pos := p.curToken.Pos
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	label := p.curToken.Literal
	if !p.expectPeek(token.COLON) {
		return nil
	}
	if !p.expectPeek(token.FOR) {
		return nil
	}
	return p.parseForWithLabel(pos, label)
}

func (p *Parser) parseForWithLabel(pos token.Position, label string) ast.Expression {
	f := &ast.For{Position: pos, Label: label}

	p.nextToken()
	f.Init = p.parseExpression(LOWEST)
	if !p.expectPeek(token.SEMI) {
		return f
	}
	p.nextToken()
	f.Cond = p.parseExpression(LOWEST)
	if !p.expectPeek(token.SEMI) {
		return f
	}
	p.nextToken()
	f.Step = p.parseExpression(LOWEST)
	if !p.expectPeek(token.LBRACE) {
		return f
	}
	f.Block = p.parseBlock()
	return f
}

// parseReturnExpr parses either `return expr` / bare `return` (an
// ast.Return), or `return = expr` / `return += expr` / etc — the function's
// return slot is bound to the local name "return" (see callUserFunction),
// so assigning through it is itself the spec's return mechanism (see
// spec.md §8 example 5: `fn square(x) -> { return = x * x }`).
func (p *Parser) parseReturnExpr() ast.Expression {
	pos := p.curToken.Pos
	if _, isAssignOp := assignOps[p.peekToken.Type]; isAssignOp {
		item := &ast.Item{Position: pos, Name: "return"}
		p.nextToken()
		return p.parseAssign(item)
	}
	if p.peekIs(token.SEMI) || p.peekIs(token.RBRACE) {
		return &ast.Return{Position: pos}
	}
	p.nextToken()
	return &ast.Return{Position: pos, Expr: p.parseExpression(LOWEST)}
}

func (p *Parser) parseBreakExpr() ast.Expression {
	pos := p.curToken.Pos
	if !p.peekIs(token.QUOTE) {
		return &ast.Break{Position: pos}
	}
	p.nextToken()
	if !p.expectPeek(token.IDENT) {
		return &ast.Break{Position: pos}
	}
	return &ast.Break{Position: pos, Label: p.curToken.Literal}
}

func (p *Parser) parseContinueExpr() ast.Expression {
	pos := p.curToken.Pos
	if !p.peekIs(token.QUOTE) {
		return &ast.Continue{Position: pos}
	}
	p.nextToken()
	if !p.expectPeek(token.IDENT) {
		return &ast.Continue{Position: pos}
	}
	return &ast.Continue{Position: pos, Label: p.curToken.Literal}
}
