package evaluator

import (
	"github.com/lucklove/dyon/internal/ast"
	ierr "github.com/lucklove/dyon/internal/interp/errors"
	"github.com/lucklove/dyon/internal/interp/runtime"
)

// evalBlock implements Block (spec §4.4): it evaluates its children
// left-to-right, discarding every intermediate value, and on any exit path
// (normal or otherwise) unwinds back to the local-binding height it was
// entered with, preserving only its own Production's value, if any.
func evalBlock(node *ast.Block, ctx *Context) (Production, Flow, error) {
	frame := ctx.Calls.Current()
	valueMark := ctx.Values.Len()
	declMark := frame.declMark()

	production := Nothing
	var flow Flow = Cont

	for i, expr := range node.Expressions {
		var prod Production
		var err error
		prod, flow, err = Eval(expr, Right, ctx)
		if err != nil {
			frame.unwind(declMark)
			ctx.Values.Truncate(valueMark)
			return Nothing, Cont, err
		}
		if !flow.IsContinue() {
			// Return/Break/ContinueLoop never leave a stack value in this
			// design (see evalReturn): Production is always Nothing here.
			frame.unwind(declMark)
			ctx.Values.Truncate(valueMark)
			return Nothing, flow, nil
		}
		if i < len(node.Expressions)-1 {
			if prod == Something {
				ctx.Values.Pop()
			}
		} else {
			production = prod
		}
	}

	var result runtime.Value
	if production == Something {
		// Materialize a StackRef first: the slot it names may be one of this
		// block's own locals, which the truncation below discards.
		result = shallowDerefOnce(ctx, ctx.Values.Pop())
	}
	frame.unwind(declMark)
	ctx.Values.Truncate(valueMark)
	if production == Something {
		ctx.Values.Push(result)
	}
	return production, Cont, nil
}

// evalIf implements If (spec §4.4): it passes its chosen branch's
// Production and Flow through unchanged.
func evalIf(node *ast.If, ctx *Context) (Production, Flow, error) {
	prod, flow, err := Eval(node.Cond, Right, ctx)
	if err != nil || !flow.IsContinue() {
		return Nothing, flow, err
	}
	if prod != Something {
		return Nothing, Cont, ierr.NewStackContractErrorf(node.Cond.Pos(), ierr.ErrMsgExpressionNoValue)
	}
	cond := resolveStackRef(ctx, ctx.Values.Pop())
	b, ok := cond.(runtime.Bool)
	if !ok {
		return Nothing, Cont, ierr.ExpectedBoolError(node.Cond.Pos(), runtime.TypeName(cond))
	}

	if bool(b) {
		return evalBlock(node.TrueBlock, ctx)
	}
	if node.ElseBlock != nil {
		return evalBlock(node.ElseBlock, ctx)
	}
	return Nothing, Cont, nil
}

// evalFor implements For (spec §4.4): init runs once in the enclosing
// frame, then cond/block/step repeat; stacks are truncated to the
// post-init height after every iteration and to the pre-loop height on
// exit, whichever flow triggered it.
func evalFor(node *ast.For, ctx *Context) (Production, Flow, error) {
	frame := ctx.Calls.Current()
	priorValueLen := ctx.Values.Len()
	priorDeclMark := frame.declMark()

	unwindToPrior := func() {
		frame.unwind(priorDeclMark)
		ctx.Values.Truncate(priorValueLen)
	}

	if node.Init != nil {
		prod, flow, err := Eval(node.Init, Right, ctx)
		if err != nil {
			unwindToPrior()
			return Nothing, Cont, err
		}
		if !flow.IsContinue() {
			unwindToPrior()
			return Nothing, flow, nil
		}
		if prod == Something {
			ctx.Values.Pop()
		}
	}

	postInitValueLen := ctx.Values.Len()
	postInitDeclMark := frame.declMark()

	for {
		if node.Cond != nil {
			prod, flow, err := Eval(node.Cond, Right, ctx)
			if err != nil {
				unwindToPrior()
				return Nothing, Cont, err
			}
			if !flow.IsContinue() {
				unwindToPrior()
				return Nothing, flow, nil
			}
			if prod != Something {
				unwindToPrior()
				return Nothing, Cont, ierr.NewStackContractErrorf(node.Cond.Pos(), ierr.ErrMsgExpressionNoValue)
			}
			cond := resolveStackRef(ctx, ctx.Values.Pop())
			b, ok := cond.(runtime.Bool)
			if !ok {
				unwindToPrior()
				return Nothing, Cont, ierr.ExpectedBoolError(node.Cond.Pos(), runtime.TypeName(cond))
			}
			if !bool(b) {
				break
			}
		}

		prod, flow, err := Eval(node.Block, Right, ctx)
		if err != nil {
			unwindToPrior()
			return Nothing, Cont, err
		}
		if prod == Something {
			ctx.Values.Pop()
		}

		switch flow.Kind {
		case FlowContinue:
			// fall through to step below

		case FlowReturn:
			unwindToPrior()
			return Nothing, flow, nil

		case FlowBreak:
			if flow.Label == "" || flow.Label == node.Label {
				unwindToPrior()
				return Nothing, Cont, nil
			}
			unwindToPrior()
			return Nothing, flow, nil

		case FlowContinueLoop:
			if flow.Label != "" && flow.Label != node.Label {
				unwindToPrior()
				return Nothing, flow, nil
			}
			// matching or unlabeled: fall through to step below
		}

		if node.Step != nil {
			prod, flow, err := Eval(node.Step, Right, ctx)
			if err != nil {
				unwindToPrior()
				return Nothing, Cont, err
			}
			if !flow.IsContinue() {
				unwindToPrior()
				return Nothing, flow, nil
			}
			if prod == Something {
				ctx.Values.Pop()
			}
		}

		frame.unwind(postInitDeclMark)
		ctx.Values.Truncate(postInitValueLen)
	}

	unwindToPrior()
	return Nothing, Cont, nil
}

// evalReturn implements Return (spec §4.4/§4.5): it writes directly into
// the current frame's reserved return slot rather than leaving a value on
// the generic stack, matching the stack contract table's "Return: 0".
func evalReturn(node *ast.Return, ctx *Context) (Production, Flow, error) {
	frame := ctx.Calls.Current()
	if node.Expr == nil {
		return Nothing, ReturnFlow(), nil
	}
	if frame.ReturnSlot < 0 {
		return Nothing, Cont, ierr.ShouldNotReturnError(node.Position, frame.FunctionName)
	}

	prod, flow, err := Eval(node.Expr, Right, ctx)
	if err != nil || !flow.IsContinue() {
		return Nothing, flow, err
	}
	if prod != Something {
		return Nothing, Cont, ierr.NewStackContractErrorf(node.Expr.Pos(), ierr.ErrMsgExpressionNoValue)
	}
	v := resolveStackRef(ctx, ctx.Values.Pop())
	ctx.Values.Set(frame.ReturnSlot, v)
	return Nothing, ReturnFlow(), nil
}

func evalBreak(node *ast.Break) (Production, Flow, error) {
	return Nothing, BreakFlow(node.Label), nil
}

func evalContinue(node *ast.Continue) (Production, Flow, error) {
	return Nothing, ContinueLoopFlow(node.Label), nil
}
