package evaluator

import (
	"github.com/lucklove/dyon/internal/ast"
	ierr "github.com/lucklove/dyon/internal/interp/errors"
	"github.com/lucklove/dyon/internal/interp/runtime"
)

// evalCall implements Function Call (spec §4.5), resolving against the
// user function table first and falling back to built-ins (§4.6).
func evalCall(node *ast.Call, ctx *Context) (Production, Flow, error) {
	if fn, ok := ctx.Functions[node.Name]; ok {
		return callUserFunction(fn, node, ctx)
	}
	if b, ok := ctx.Builtins[node.Name]; ok {
		return callBuiltin(b, node, ctx)
	}
	return Nothing, Cont, ierr.UnknownFunctionError(node.Position, node.Name)
}

func callUserFunction(fn *ast.FunctionDecl, node *ast.Call, ctx *Context) (Production, Flow, error) {
	callBase := ctx.Values.Len()

	returnSlot := -1
	if fn.Returns {
		returnSlot = ctx.Values.Push(runtime.Return{})
	}

	argBase := ctx.Values.Len()
	for _, argExpr := range node.Args {
		prod, flow, err := Eval(argExpr, Right, ctx)
		if err != nil {
			ctx.Values.Truncate(callBase)
			return Nothing, Cont, err
		}
		if !flow.IsContinue() {
			ctx.Values.Truncate(callBase)
			return Nothing, flow, nil
		}
		if prod != Something {
			ctx.Values.Truncate(callBase)
			return Nothing, Cont, ierr.NewStackContractErrorf(argExpr.Pos(), ierr.ErrMsgExpressionNoValue)
		}
	}

	argc := len(node.Args)
	if argc != len(fn.Parameters) {
		ctx.Values.Truncate(callBase)
		return Nothing, Cont, ierr.WrongArgCountError(node.Position, node.Name, len(fn.Parameters), argc)
	}

	frame, err := ctx.Calls.Push(fn.Name, returnSlot, fn.Returns)
	if err != nil {
		ctx.Values.Truncate(callBase)
		return Nothing, Cont, ierr.NewStackContractErrorf(node.Position, "%s", err.Error())
	}
	if fn.Returns {
		frame.Declare("return", returnSlot)
	}
	for i, param := range fn.Parameters {
		idx := argBase + i
		ctx.Values.Set(idx, shallowDerefOnce(ctx, ctx.Values.Get(idx)))
		frame.Declare(param, idx)
	}

	prodBody, flowBody, err := evalBlock(fn.Body, ctx)
	if err != nil {
		if ee, ok := err.(*ierr.EvalError); ok {
			ee.AppendFrame(fn.Name, node.Position)
		}
		ctx.Calls.Pop()
		ctx.Values.Truncate(callBase)
		return Nothing, Cont, err
	}
	if !flowBody.IsContinue() {
		ctx.Calls.Pop()
		ctx.Values.Truncate(callBase)
		switch flowBody.Kind {
		case FlowBreak:
			return Nothing, Cont, ierr.BreakEscapesFunctionError(node.Position, flowBody.Label)
		case FlowContinueLoop:
			return Nothing, Cont, ierr.ContinueEscapesFunctionError(node.Position, flowBody.Label)
		}
		// FlowReturn: expected, fall through to the return-contract checks below.
	}

	if fn.Returns {
		v := ctx.Values.Get(returnSlot)
		if _, isSentinel := v.(runtime.Return); isSentinel {
			ctx.Calls.Pop()
			ctx.Values.Truncate(callBase)
			return Nothing, Cont, ierr.ReturnSlotEmptyError(node.Position, fn.Name)
		}
		ctx.Calls.Pop()
		ctx.Values.Truncate(callBase)
		ctx.Values.Push(v)
		return Something, Cont, nil
	}

	if prodBody == Something {
		ctx.Calls.Pop()
		ctx.Values.Truncate(callBase)
		return Nothing, Cont, ierr.ShouldNotReturnError(node.Position, fn.Name)
	}
	ctx.Calls.Pop()
	ctx.Values.Truncate(callBase)
	return Nothing, Cont, nil
}

func callBuiltin(b *Builtin, node *ast.Call, ctx *Context) (Production, Flow, error) {
	args := make([]runtime.Value, 0, len(node.Args))
	for _, argExpr := range node.Args {
		prod, flow, err := Eval(argExpr, Right, ctx)
		if err != nil || !flow.IsContinue() {
			return Nothing, flow, err
		}
		if prod != Something {
			return Nothing, Cont, ierr.NewStackContractErrorf(argExpr.Pos(), ierr.ErrMsgExpressionNoValue)
		}
		args = append(args, resolveStackRef(ctx, ctx.Values.Pop()))
	}

	if len(args) != b.Arity {
		return Nothing, Cont, ierr.WrongArgCountError(node.Position, node.Name, b.Arity, len(args))
	}

	result, err := b.Fn(ctx, node.Position, args)
	if err != nil {
		return Nothing, Cont, err
	}
	if b.Returns {
		ctx.Values.Push(result)
		return Something, Cont, nil
	}
	return Nothing, Cont, nil
}
