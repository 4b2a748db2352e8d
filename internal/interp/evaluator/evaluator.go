// Package evaluator implements the tree-walking evaluation rules of spec §4:
// the per-node-kind Production/Flow contract, l-value resolution, the
// assignment engine, control flow, and function calls, all threaded through
// a single explicit Context rather than any global state.
package evaluator

import (
	"github.com/lucklove/dyon/internal/ast"
	ierr "github.com/lucklove/dyon/internal/interp/errors"
	"github.com/lucklove/dyon/internal/interp/runtime"
)

// Eval dispatches node to its evaluation rule, per the node-kind table in
// spec §4.1. side only affects Item resolution; every other node kind
// ignores it and behaves as a Right-side read.
func Eval(node ast.Node, side Side, ctx *Context) (Production, Flow, error) {
	switch n := node.(type) {
	case *ast.NumberLiteral:
		ctx.Values.Push(runtime.Number(n.Value))
		return Something, Cont, nil

	case *ast.TextLiteral:
		ctx.Values.Push(runtime.NewText(n.Value))
		return Something, Cont, nil

	case *ast.BoolLiteral:
		ctx.Values.Push(runtime.Bool(n.Value))
		return Something, Cont, nil

	case *ast.ObjectLiteral:
		return evalObjectLiteral(n, ctx)

	case *ast.ArrayLiteral:
		return evalArrayLiteral(n, ctx)

	case *ast.Item:
		return evalItem(n, side, ctx)

	case *ast.UnaryOp:
		return evalUnaryOp(n, ctx)

	case *ast.BinaryOp:
		return evalBinaryOp(n, ctx)

	case *ast.Compare:
		return evalCompare(n, ctx)

	case *ast.Assign:
		return evalAssign(n, ctx)

	case *ast.Call:
		return evalCall(n, ctx)

	case *ast.Block:
		return evalBlock(n, ctx)

	case *ast.If:
		return evalIf(n, ctx)

	case *ast.For:
		return evalFor(n, ctx)

	case *ast.Return:
		return evalReturn(n, ctx)

	case *ast.Break:
		return evalBreak(n)

	case *ast.Continue:
		return evalContinue(n)

	default:
		return Nothing, Cont, ierr.UnknownNodeError(node.Pos(), node)
	}
}

// evalObjectLiteral evaluates each field's value expression left to right
// and assembles a fresh Object.
func evalObjectLiteral(node *ast.ObjectLiteral, ctx *Context) (Production, Flow, error) {
	obj := runtime.NewObject()
	for _, field := range node.Fields {
		prod, flow, err := Eval(field.Value, Right, ctx)
		if err != nil || !flow.IsContinue() {
			return Nothing, flow, err
		}
		if prod != Something {
			return Nothing, Cont, ierr.NewStackContractErrorf(field.Value.Pos(), ierr.ErrMsgExpressionNoValue)
		}
		v := resolveStackRef(ctx, ctx.Values.Pop())
		*obj.Slot(field.Key, true) = v
	}
	ctx.Values.Push(obj)
	return Something, Cont, nil
}

// evalArrayLiteral evaluates each element left to right and assembles a
// fresh Array.
func evalArrayLiteral(node *ast.ArrayLiteral, ctx *Context) (Production, Flow, error) {
	items := make([]runtime.Value, 0, len(node.Elements))
	for _, elem := range node.Elements {
		prod, flow, err := Eval(elem, Right, ctx)
		if err != nil || !flow.IsContinue() {
			return Nothing, flow, err
		}
		if prod != Something {
			return Nothing, Cont, ierr.NewStackContractErrorf(elem.Pos(), ierr.ErrMsgExpressionNoValue)
		}
		items = append(items, resolveStackRef(ctx, ctx.Values.Pop()))
	}
	ctx.Values.Push(runtime.NewArray(items))
	return Something, Cont, nil
}
