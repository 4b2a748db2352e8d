package evaluator

import (
	"math"

	"github.com/lucklove/dyon/internal/ast"
	ierr "github.com/lucklove/dyon/internal/interp/errors"
	"github.com/lucklove/dyon/internal/interp/runtime"
	"github.com/lucklove/dyon/internal/token"
)

func evalUnaryOp(node *ast.UnaryOp, ctx *Context) (Production, Flow, error) {
	prod, flow, err := Eval(node.Expr, Right, ctx)
	if err != nil || !flow.IsContinue() {
		return prod, flow, err
	}
	if prod != Something {
		return Nothing, Cont, ierr.NewStackContractErrorf(node.Position, ierr.ErrMsgExpressionNoValue)
	}
	v := resolveStackRef(ctx, ctx.Values.Pop())

	switch node.Op {
	case "!":
		b, ok := v.(runtime.Bool)
		if !ok {
			return Nothing, Cont, ierr.NewTypeErrorf(node.Position, ierr.ErrMsgSegmentOnNonBool, runtime.TypeName(v))
		}
		ctx.Values.Push(runtime.Bool(!bool(b)))
		return Something, Cont, nil
	default:
		return Nothing, Cont, ierr.NewTypeErrorf(node.Position, ierr.ErrMsgUnknownBinaryOp, "", node.Op, runtime.TypeName(v))
	}
}

func evalBinaryOp(node *ast.BinaryOp, ctx *Context) (Production, Flow, error) {
	left, flow, err := evalOperand(node.Left, ctx)
	if err != nil || !flow.IsContinue() {
		return Nothing, flow, err
	}
	right, flow, err := evalOperand(node.Right, ctx)
	if err != nil || !flow.IsContinue() {
		return Nothing, flow, err
	}

	result, err := applyBinaryOp(node.Position, node.Op, left, right)
	if err != nil {
		return Nothing, Cont, err
	}
	ctx.Values.Push(result)
	return Something, Cont, nil
}

// evalOperand evaluates an operand expression on the Right side, asserts it
// produced a value, and returns the popped, StackRef-resolved Value.
func evalOperand(expr ast.Expression, ctx *Context) (runtime.Value, Flow, error) {
	prod, flow, err := Eval(expr, Right, ctx)
	if err != nil || !flow.IsContinue() {
		return nil, flow, err
	}
	if prod != Something {
		return nil, Cont, ierr.NewStackContractErrorf(expr.Pos(), ierr.ErrMsgExpressionNoValue)
	}
	return resolveStackRef(ctx, ctx.Values.Pop()), Cont, nil
}

// applyBinaryOp implements +, -, *, /, %, ** for Number/Number, + for
// Text/Text (concatenation), and +, -, *, ** for Bool/Bool (logical
// or/and-not/and/xor), matching the assignment engine's typed-op table
// (spec §4.3) generalized to plain expression evaluation.
func applyBinaryOp(pos token.Position, op string, left, right runtime.Value) (runtime.Value, error) {
	if lt, ok := left.(runtime.Text); ok {
		rt, ok := right.(runtime.Text)
		if !ok || op != "+" {
			return nil, ierr.TypeMismatchError(pos, runtime.TypeName(left), op, runtime.TypeName(right))
		}
		return runtime.NewText(lt.Value() + rt.Value()), nil
	}

	if lb, ok := left.(runtime.Bool); ok {
		rb, ok := right.(runtime.Bool)
		if !ok {
			return nil, ierr.TypeMismatchError(pos, runtime.TypeName(left), op, runtime.TypeName(right))
		}
		a, b := bool(lb), bool(rb)
		switch op {
		case "+":
			return runtime.Bool(a || b), nil
		case "-":
			return runtime.Bool(a && !b), nil
		case "*":
			return runtime.Bool(a && b), nil
		case "**":
			return runtime.Bool(a != b), nil
		default:
			return nil, ierr.NewTypeErrorf(pos, ierr.ErrMsgUnknownBinaryOp, "Bool", op, "Bool")
		}
	}

	ln, ok := left.(runtime.Number)
	if !ok {
		return nil, ierr.TypeMismatchError(pos, runtime.TypeName(left), op, runtime.TypeName(right))
	}
	rn, ok := right.(runtime.Number)
	if !ok {
		return nil, ierr.TypeMismatchError(pos, runtime.TypeName(left), op, runtime.TypeName(right))
	}

	l, r := float64(ln), float64(rn)
	switch op {
	case "+":
		return runtime.Number(l + r), nil
	case "-":
		return runtime.Number(l - r), nil
	case "*":
		return runtime.Number(l * r), nil
	case "/":
		return runtime.Number(l / r), nil
	case "%":
		return runtime.Number(math.Mod(l, r)), nil
	case "**":
		return runtime.Number(math.Pow(l, r)), nil
	default:
		return nil, ierr.NewTypeErrorf(pos, ierr.ErrMsgUnknownBinaryOp, "Number", op, "Number")
	}
}

func evalCompare(node *ast.Compare, ctx *Context) (Production, Flow, error) {
	left, flow, err := evalOperand(node.Left, ctx)
	if err != nil || !flow.IsContinue() {
		return Nothing, flow, err
	}
	right, flow, err := evalOperand(node.Right, ctx)
	if err != nil || !flow.IsContinue() {
		return Nothing, flow, err
	}

	result, err := applyCompare(node.Position, node.Op, left, right)
	if err != nil {
		return Nothing, Cont, err
	}
	ctx.Values.Push(runtime.Bool(result))
	return Something, Cont, nil
}

func applyCompare(pos token.Position, op string, left, right runtime.Value) (bool, error) {
	switch op {
	case "==":
		return valuesEqual(left, right), nil
	case "!=":
		return !valuesEqual(left, right), nil
	}

	switch l := left.(type) {
	case runtime.Number:
		r, ok := right.(runtime.Number)
		if !ok {
			return false, ierr.NewTypeErrorf(pos, ierr.ErrMsgUnknownCompareOp, runtime.TypeName(left), op, runtime.TypeName(right))
		}
		return numericCompare(op, float64(l), float64(r))
	case runtime.Text:
		r, ok := right.(runtime.Text)
		if !ok {
			return false, ierr.NewTypeErrorf(pos, ierr.ErrMsgUnknownCompareOp, runtime.TypeName(left), op, runtime.TypeName(right))
		}
		return textCompare(op, l.Value(), r.Value())
	default:
		return false, ierr.NewTypeErrorf(pos, ierr.ErrMsgUnknownCompareOp, runtime.TypeName(left), op, runtime.TypeName(right))
	}
}

func numericCompare(op string, l, r float64) (bool, error) {
	switch op {
	case "<":
		return l < r, nil
	case "<=":
		return l <= r, nil
	case ">":
		return l > r, nil
	case ">=":
		return l >= r, nil
	default:
		return false, nil
	}
}

func textCompare(op string, l, r string) (bool, error) {
	switch op {
	case "<":
		return l < r, nil
	case "<=":
		return l <= r, nil
	case ">":
		return l > r, nil
	case ">=":
		return l >= r, nil
	default:
		return false, nil
	}
}

// valuesEqual implements structural equality for ==/!=: values of
// different kinds are simply unequal rather than a type error, matching
// the language's dynamic, value-typed comparison semantics (spec §3.1).
func valuesEqual(a, b runtime.Value) bool {
	switch av := a.(type) {
	case runtime.Bool:
		bv, ok := b.(runtime.Bool)
		return ok && av == bv
	case runtime.Number:
		bv, ok := b.(runtime.Number)
		return ok && av == bv
	case runtime.Text:
		bv, ok := b.(runtime.Text)
		return ok && av.Value() == bv.Value()
	case runtime.Array:
		bv, ok := b.(runtime.Array)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for i := 0; i < av.Len(); i++ {
			ea, _ := av.At(i)
			eb, _ := bv.At(i)
			if !valuesEqual(ea, eb) {
				return false
			}
		}
		return true
	case runtime.Object:
		bv, ok := b.(runtime.Object)
		if !ok || len(av.Keys()) != len(bv.Keys()) {
			return false
		}
		for _, k := range av.Keys() {
			va, _ := av.Get(k)
			vb, ok := bv.Get(k)
			if !ok || !valuesEqual(va, vb) {
				return false
			}
		}
		return true
	case runtime.Return:
		_, ok := b.(runtime.Return)
		return ok
	default:
		return false
	}
}

// resolveStackRef dereferences a StackRef into its concrete (live) Value;
// callers that need an independent copy call runtime.DeepClone on the
// result themselves (this only unwraps the indirection, it never clones).
func resolveStackRef(ctx *Context, v runtime.Value) runtime.Value {
	if ref, ok := v.(runtime.StackRef); ok {
		return ctx.Values.Get(ref.Index)
	}
	return v
}
