// Package parser implements a Pratt-style recursive-descent parser that
// turns a token stream from internal/lexer into the internal/ast tree the
// evaluator consumes.
package parser

import (
	"fmt"

	"github.com/lucklove/dyon/internal/ast"
	"github.com/lucklove/dyon/internal/lexer"
	"github.com/lucklove/dyon/internal/token"
)

// Precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	ASSIGNMENT  // := = += -= *= /= %= **=
	EQUALS      // == !=
	LESSGREATER // < <= > >=
	SUM         // + -
	PRODUCT     // * / %
	POWER       // **
	PREFIX      // !x
	CALL        // f(x)
)

var precedences = map[token.Type]int{
	token.DECLARE:    ASSIGNMENT,
	token.ASSIGN:     ASSIGNMENT,
	token.PLUS_EQ:    ASSIGNMENT,
	token.MINUS_EQ:   ASSIGNMENT,
	token.STAR_EQ:    ASSIGNMENT,
	token.SLASH_EQ:   ASSIGNMENT,
	token.PERCENT_EQ: ASSIGNMENT,
	token.POW_EQ:     ASSIGNMENT,
	token.EQ:         EQUALS,
	token.NEQ:        EQUALS,
	token.LT:         LESSGREATER,
	token.LTE:        LESSGREATER,
	token.GT:         LESSGREATER,
	token.GTE:        LESSGREATER,
	token.PLUS:       SUM,
	token.MINUS:      SUM,
	token.STAR:       PRODUCT,
	token.SLASH:      PRODUCT,
	token.PERCENT:    PRODUCT,
	token.POW:        POWER,
	token.LPAREN:     CALL,
}

var assignOps = map[token.Type]string{
	token.DECLARE:    ":=",
	token.ASSIGN:     "=",
	token.PLUS_EQ:    "+=",
	token.MINUS_EQ:   "-=",
	token.STAR_EQ:    "*=",
	token.SLASH_EQ:   "/=",
	token.PERCENT_EQ: "%=",
	token.POW_EQ:     "**=",
}

type prefixParseFn func() ast.Expression
type infixParseFn func(ast.Expression) ast.Expression

// Parser turns a token stream into an *ast.Program.
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []string

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New returns a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = map[token.Type]prefixParseFn{
		token.NUMBER:   p.parseNumberLiteral,
		token.STRING:   p.parseTextLiteral,
		token.TRUE:     p.parseBoolLiteral,
		token.FALSE:    p.parseBoolLiteral,
		token.IDENT:    p.parseIdentOrCall,
		token.NOT:      p.parseUnaryOp,
		token.LPAREN:   p.parseGroupedExpr,
		token.LBRACE:   p.parseObjectLiteral,
		token.LBRACKET: p.parseArrayLiteral,
		token.IF:       p.parseIfExpr,
		token.FOR:      p.parseForExpr,
		token.RETURN:   p.parseReturnExpr,
		token.BREAK:    p.parseBreakExpr,
		token.CONTINUE: p.parseContinueExpr,
		token.QUOTE:    p.parseLabeledFor,
	}

	p.infixParseFns = map[token.Type]infixParseFn{
		token.PLUS:    p.parseBinaryOp,
		token.MINUS:   p.parseBinaryOp,
		token.STAR:    p.parseBinaryOp,
		token.SLASH:   p.parseBinaryOp,
		token.PERCENT: p.parseBinaryOp,
		token.POW:     p.parseBinaryOp,
		token.EQ:      p.parseCompare,
		token.NEQ:     p.parseCompare,
		token.LT:      p.parseCompare,
		token.LTE:     p.parseCompare,
		token.GT:      p.parseCompare,
		token.GTE:     p.parseCompare,

		token.DECLARE:    p.parseAssign,
		token.ASSIGN:     p.parseAssign,
		token.PLUS_EQ:    p.parseAssign,
		token.MINUS_EQ:   p.parseAssign,
		token.STAR_EQ:    p.parseAssign,
		token.SLASH_EQ:   p.parseAssign,
		token.PERCENT_EQ: p.parseAssign,
		token.POW_EQ:     p.parseAssign,
	}

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns accumulated parse errors, each formatted "message at
// line:column" so internal/errors.FromStringErrors can render them.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) addErrorf(pos token.Position, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, fmt.Sprintf("%s at %d:%d", msg, pos.Line, pos.Column))
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekIs(t) {
		p.nextToken()
		return true
	}
	p.addErrorf(p.peekToken.Pos, "expected %s, got %s", t, p.peekToken.Type)
	return false
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// skipSemis consumes any number of statement separators between expressions.
func (p *Parser) skipSemis() {
	for p.curIs(token.SEMI) {
		p.nextToken()
	}
}

// ParseProgram parses a full source file into the top-level function table.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	for !p.curIs(token.EOF) {
		if p.curIs(token.FN) {
			if fn := p.parseFunctionDecl(); fn != nil {
				program.Functions = append(program.Functions, fn)
			}
			// Step past the body's closing `}` (or the token a failed
			// declaration stopped on).
			p.nextToken()
		} else {
			p.addErrorf(p.curToken.Pos, "expected function declaration, got %s", p.curToken.Type)
			p.nextToken()
		}
	}
	return program
}

// parseFunctionDecl parses `fn name(params) { body }` or `fn name(params) -> { body }`.
func (p *Parser) parseFunctionDecl() *ast.FunctionDecl {
	fn := &ast.FunctionDecl{Position: p.curToken.Pos}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	fn.Name = p.curToken.Literal

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	fn.Parameters = p.parseParameterList()

	if p.peekIs(token.ARROW) {
		p.nextToken()
		fn.Returns = true
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlock()
	return fn
}

func (p *Parser) parseParameterList() []string {
	var params []string
	if p.peekIs(token.RPAREN) {
		p.nextToken()
		return params
	}
	p.nextToken()
	params = append(params, p.curToken.Literal)
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		params = append(params, p.curToken.Literal)
	}
	if !p.expectPeek(token.RPAREN) {
		return params
	}
	return params
}

// parseBlock parses `{ expr; expr; ... }`. curToken is the opening `{` on
// entry; on exit curToken is the closing `}`.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Position: p.curToken.Pos}
	p.nextToken()
	p.skipSemis()

	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		expr := p.parseExpression(LOWEST)
		if expr != nil {
			block.Expressions = append(block.Expressions, expr)
		}
		p.nextToken()
		p.skipSemis()
	}
	if !p.curIs(token.RBRACE) {
		p.addErrorf(p.curToken.Pos, "expected }, got %s", p.curToken.Type)
	}
	return block
}

// parseExpression is the Pratt precedence-climbing core: a prefix parser
// produces the left operand, then infix parsers fold in operators whose
// precedence exceeds the caller's floor.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix, ok := p.prefixParseFns[p.curToken.Type]
	if !ok {
		p.addErrorf(p.curToken.Pos, "unexpected token %s", p.curToken.Type)
		return nil
	}
	left := prefix()

	for !p.peekIs(token.SEMI) && !p.peekIs(token.RBRACE) && precedence < p.peekPrecedence() {
		infix, ok := p.infixParseFns[p.peekToken.Type]
		if !ok {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}
