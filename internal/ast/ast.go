// Package ast defines the abstract syntax tree consumed by the evaluator,
// per the AST contract: a list of functions, each a name, parameter names,
// a declared-return flag and a block body, built from expression nodes.
package ast

import (
	"fmt"
	"strings"

	"github.com/lucklove/dyon/internal/token"
)

// Node is any AST node: an expression, a block, or a top-level function.
type Node interface {
	Pos() token.Position
	String() string
}

// Expression is any node that can appear where a value is expected.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root of a parsed source file: a list of function
// declarations registered into the function table before "main" runs.
type Program struct {
	Functions []*FunctionDecl
}

func (p *Program) Pos() token.Position { return token.Position{Line: 1, Column: 1} }
func (p *Program) String() string {
	var sb strings.Builder
	for _, f := range p.Functions {
		sb.WriteString(f.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// FunctionDecl is "fn name(params) { body }" or "fn name(params) -> { body }"
// when Returns is true (the function declares a return slot).
type FunctionDecl struct {
	Position   token.Position
	Name       string
	Parameters []string
	Body       *Block
	Returns    bool
}

func (f *FunctionDecl) Pos() token.Position { return f.Position }
func (f *FunctionDecl) String() string {
	arrow := ""
	if f.Returns {
		arrow = " -> "
	}
	return fmt.Sprintf("fn %s(%s)%s%s", f.Name, strings.Join(f.Parameters, ", "), arrow, f.Body.String())
}

// Block is a sequence of expressions evaluated left to right; it is itself
// an expression so it can be used as an if/for body or a function body.
type Block struct {
	Position    token.Position
	Expressions []Expression
}

func (b *Block) Pos() token.Position { return b.Position }
func (b *Block) expressionNode()     {}
func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("{ ")
	for i, e := range b.Expressions {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteString(" }")
	return sb.String()
}

// ---- Literals ----

type NumberLiteral struct {
	Position token.Position
	Value    float64
}

func (n *NumberLiteral) Pos() token.Position { return n.Position }
func (n *NumberLiteral) expressionNode()     {}
func (n *NumberLiteral) String() string      { return fmt.Sprintf("%g", n.Value) }

type TextLiteral struct {
	Position token.Position
	Value    string
}

func (t *TextLiteral) Pos() token.Position { return t.Position }
func (t *TextLiteral) expressionNode()     {}
func (t *TextLiteral) String() string      { return fmt.Sprintf("%q", t.Value) }

type BoolLiteral struct {
	Position token.Position
	Value    bool
}

func (b *BoolLiteral) Pos() token.Position { return b.Position }
func (b *BoolLiteral) expressionNode()     {}
func (b *BoolLiteral) String() string      { return fmt.Sprintf("%t", b.Value) }

// ObjectField is one key/value pair of an ObjectLiteral.
type ObjectField struct {
	Key   string
	Value Expression
}

type ObjectLiteral struct {
	Position token.Position
	Fields   []ObjectField
}

func (o *ObjectLiteral) Pos() token.Position { return o.Position }
func (o *ObjectLiteral) expressionNode()     {}
func (o *ObjectLiteral) String() string {
	parts := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Key, f.Value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

type ArrayLiteral struct {
	Position token.Position
	Elements []Expression
}

func (a *ArrayLiteral) Pos() token.Position { return a.Position }
func (a *ArrayLiteral) expressionNode()     {}
func (a *ArrayLiteral) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ---- Item (variable access / l-value path) ----

// IdKind distinguishes the three forms a path segment can take.
type IdKind int

const (
	IdKey   IdKind = iota // literal object key
	IdIndex               // literal array index
	IdExpr                // bracketed expression, resolved at eval time
)

// Id is one path segment of an Item.
type Id struct {
	Kind  IdKind
	Key   string     // valid when Kind == IdKey
	Index float64    // valid when Kind == IdIndex
	Expr  Expression // valid when Kind == IdExpr
}

func (id Id) String() string {
	switch id.Kind {
	case IdKey:
		return "." + id.Key
	case IdIndex:
		return fmt.Sprintf("[%g]", id.Index)
	default:
		return "[" + id.Expr.String() + "]"
	}
}

// Item is a local-variable reference optionally followed by a dotted/indexed
// path, e.g. `o.x`, `a[i]`, `bare_name`.
type Item struct {
	Position token.Position
	Name     string
	Ids      []Id
}

func (i *Item) Pos() token.Position { return i.Position }
func (i *Item) expressionNode()     {}
func (i *Item) String() string {
	var sb strings.Builder
	sb.WriteString(i.Name)
	for _, id := range i.Ids {
		sb.WriteString(id.String())
	}
	return sb.String()
}

// ---- Operators ----

type UnaryOp struct {
	Position token.Position
	Op       string // "!"
	Expr     Expression
}

func (u *UnaryOp) Pos() token.Position { return u.Position }
func (u *UnaryOp) expressionNode()     {}
func (u *UnaryOp) String() string      { return u.Op + u.Expr.String() }

type BinaryOp struct {
	Position    token.Position
	Op          string // + - * / % **
	Left, Right Expression
}

func (b *BinaryOp) Pos() token.Position { return b.Position }
func (b *BinaryOp) expressionNode()     {}
func (b *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Op, b.Right.String())
}

type Compare struct {
	Position    token.Position
	Op          string // < <= > >= == !=
	Left, Right Expression
}

func (c *Compare) Pos() token.Position { return c.Position }
func (c *Compare) expressionNode()     {}
func (c *Compare) String() string {
	return fmt.Sprintf("(%s %s %s)", c.Left.String(), c.Op, c.Right.String())
}

// ---- Assignment ----

type Assign struct {
	Position token.Position
	Op       string // := = += -= *= /= %= **=
	Left     *Item
	Right    Expression
}

func (a *Assign) Pos() token.Position { return a.Position }
func (a *Assign) expressionNode()     {}
func (a *Assign) String() string {
	return fmt.Sprintf("%s %s %s", a.Left.String(), a.Op, a.Right.String())
}

// ---- Calls ----

type Call struct {
	Position token.Position
	Name     string
	Args     []Expression
}

func (c *Call) Pos() token.Position { return c.Position }
func (c *Call) expressionNode()     {}
func (c *Call) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(parts, ", "))
}

// ---- Control flow ----

type If struct {
	Position  token.Position
	Cond      Expression
	TrueBlock *Block
	ElseBlock *Block // nil when there is no else
}

func (i *If) Pos() token.Position { return i.Position }
func (i *If) expressionNode()     {}
func (i *If) String() string {
	s := fmt.Sprintf("if %s %s", i.Cond.String(), i.TrueBlock.String())
	if i.ElseBlock != nil {
		s += " else " + i.ElseBlock.String()
	}
	return s
}

type For struct {
	Position          token.Position
	Label             string // "" when unlabeled
	Init, Cond, Step  Expression
	Block             *Block
}

func (f *For) Pos() token.Position { return f.Position }
func (f *For) expressionNode()     {}
func (f *For) String() string {
	label := ""
	if f.Label != "" {
		label = "'" + f.Label + ": "
	}
	return fmt.Sprintf("%sfor %s; %s; %s %s", label, f.Init.String(), f.Cond.String(), f.Step.String(), f.Block.String())
}

type Return struct {
	Position token.Position
	Expr     Expression // nil for a bare `return`
}

func (r *Return) Pos() token.Position { return r.Position }
func (r *Return) expressionNode()     {}
func (r *Return) String() string {
	if r.Expr == nil {
		return "return"
	}
	return "return " + r.Expr.String()
}

type Break struct {
	Position token.Position
	Label    string // "" when unlabeled
}

func (b *Break) Pos() token.Position { return b.Position }
func (b *Break) expressionNode()     {}
func (b *Break) String() string {
	if b.Label == "" {
		return "break"
	}
	return "break '" + b.Label
}

type Continue struct {
	Position token.Position
	Label    string // "" when unlabeled
}

func (c *Continue) Pos() token.Position { return c.Position }
func (c *Continue) expressionNode()     {}
func (c *Continue) String() string {
	if c.Label == "" {
		return "continue"
	}
	return "continue '" + c.Label
}
