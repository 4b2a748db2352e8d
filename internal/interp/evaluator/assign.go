package evaluator

import (
	"math"

	"github.com/lucklove/dyon/internal/ast"
	ierr "github.com/lucklove/dyon/internal/interp/errors"
	"github.com/lucklove/dyon/internal/interp/runtime"
	"github.com/lucklove/dyon/internal/token"
)

// evalAssign implements the assignment engine (spec §4.3). Assign always
// has Production Nothing: it leaves nothing on the value stack.
func evalAssign(node *ast.Assign, ctx *Context) (Production, Flow, error) {
	if node.Op == ":=" {
		return evalDeclaringAssign(node, ctx)
	}
	return evalUpdatingAssign(node, ctx)
}

// evalDeclaringAssign handles `:=`: only ever targets a bare name.
func evalDeclaringAssign(node *ast.Assign, ctx *Context) (Production, Flow, error) {
	if len(node.Left.Ids) != 0 {
		return Nothing, Cont, ierr.NewShapeErrorf(node.Position, "declaring assignment requires a bare name, got a path")
	}

	prod, flow, err := Eval(node.Right, Right, ctx)
	if err != nil || !flow.IsContinue() {
		return Nothing, flow, err
	}
	if prod != Something {
		return Nothing, Cont, ierr.NewStackContractErrorf(node.Right.Pos(), ierr.ErrMsgExpressionNoValue)
	}

	v := shallowDerefOnce(ctx, ctx.Values.Pop())
	index := ctx.Values.Push(v)
	ctx.Calls.Current().Declare(node.Left.Name, index)
	return Nothing, Cont, nil
}

// evalUpdatingAssign handles `=`, `+=`, `-=`, `*=`, `/=`, `%=`, `**=`.
func evalUpdatingAssign(node *ast.Assign, ctx *Context) (Production, Flow, error) {
	prod, flow, err := Eval(node.Right, Right, ctx)
	if err != nil || !flow.IsContinue() {
		return Nothing, flow, err
	}
	if prod != Something {
		return Nothing, Cont, ierr.NewStackContractErrorf(node.Right.Pos(), ierr.ErrMsgExpressionNoValue)
	}
	right := resolveStackRef(ctx, ctx.Values.Pop())

	prod, flow, err = evalItem(node.Left, LeftInsert(node.Op == "="), ctx)
	if err != nil || !flow.IsContinue() {
		return Nothing, flow, err
	}
	if prod != Something {
		return Nothing, Cont, ierr.NewStackContractErrorf(node.Left.Pos(), ierr.ErrMsgExpressionNoValue)
	}
	handle := ctx.Values.Pop().(runtime.RawRef)

	if err := commitAssign(ctx, node.Position, node.Op, handle.Target, right); err != nil {
		return Nothing, Cont, err
	}
	return Nothing, Cont, nil
}

// shallowDerefOnce materializes a StackRef result by copying the value it
// names (bumping the backing Text buffer's refcount if it is one); any
// other value is already concrete and passes through unchanged.
func shallowDerefOnce(ctx *Context, v runtime.Value) runtime.Value {
	ref, ok := v.(runtime.StackRef)
	if !ok {
		return v
	}
	return runtime.Share(ctx.Values.Get(ref.Index))
}

// commitAssign dispatches an updating assignment by the right operand's
// concrete type (spec §4.3's typed-op table), writing through target.
//
// Aliasing safety (spec §4.3): target could in principle itself still hold
// a StackRef if some future l-value or literal-assembly path started
// leaving one behind in a container or local slot — resolveStackRef calls
// in evalObjectLiteral/evalArrayLiteral, shallowDerefOnce on every write to
// a bare-name slot (`:=` in evalDeclaringAssign, parameter binding in
// calls.go) mean that never happens today, but dispatching typed ops
// directly against a live StackRef would silently alias a read target
// instead of erroring, so the materialization step below is unconditional
// rather than relying on that invariant holding forever.
func commitAssign(ctx *Context, pos token.Position, op string, target *runtime.Value, right runtime.Value) error {
	if ref, ok := (*target).(runtime.StackRef); ok {
		*target = runtime.ShallowClone(ctx.Values.Get(ref.Index))
	}

	if _, isSentinel := (*target).(runtime.Return); isSentinel {
		if op != "=" {
			return ierr.ReturnHasNoValueError(pos)
		}
		*target = right
		return nil
	}

	switch r := right.(type) {
	case runtime.Number:
		cur, ok := (*target).(runtime.Number)
		if !ok {
			return ierr.ExpectedAssignTypeError(pos, "Number", runtime.TypeName(*target))
		}
		result, err := applyCompoundNumber(pos, op, cur, r)
		if err != nil {
			return err
		}
		*target = result
		return nil

	case runtime.Bool:
		if _, ok := (*target).(runtime.Bool); !ok {
			return ierr.ExpectedAssignTypeError(pos, "Bool", runtime.TypeName(*target))
		}
		if op != "=" {
			return ierr.UnknownCompoundOpError(pos, op, "Bool")
		}
		*target = r
		return nil

	case runtime.Text:
		if _, ok := (*target).(runtime.Text); !ok {
			return ierr.ExpectedAssignTypeError(pos, "Text", runtime.TypeName(*target))
		}
		switch op {
		case "=":
			*target = r
		case "+=":
			runtime.TextConcatAssign(target, r.Value())
		default:
			return ierr.UnknownCompoundOpError(pos, op, "Text")
		}
		return nil

	case runtime.Array:
		cur, ok := (*target).(runtime.Array)
		if !ok {
			return ierr.ExpectedAssignTypeError(pos, "Array", runtime.TypeName(*target))
		}
		if op != "=" {
			return ierr.UnknownCompoundOpError(pos, op, "Array")
		}
		if runtime.SameArray(cur, r) {
			return nil
		}
		*target = runtime.ShallowClone(r)
		return nil

	case runtime.Object:
		cur, ok := (*target).(runtime.Object)
		if !ok {
			return ierr.ExpectedAssignTypeError(pos, "Object", runtime.TypeName(*target))
		}
		if op != "=" {
			return ierr.UnknownCompoundOpError(pos, op, "Object")
		}
		if runtime.SameObject(cur, r) {
			return nil
		}
		*target = runtime.ShallowClone(r)
		return nil

	default:
		return ierr.NewTypeErrorf(pos, ierr.ErrMsgExpectedAssignType, runtime.TypeName(*target), runtime.TypeName(right))
	}
}

func applyCompoundNumber(pos token.Position, op string, cur, r runtime.Number) (runtime.Number, error) {
	switch op {
	case "=":
		return r, nil
	case "+=":
		return cur + r, nil
	case "-=":
		return cur - r, nil
	case "*=":
		return cur * r, nil
	case "/=":
		return cur / r, nil
	case "%=":
		return runtime.Number(math.Mod(float64(cur), float64(r))), nil
	case "**=":
		return runtime.Number(math.Pow(float64(cur), float64(r))), nil
	default:
		return 0, ierr.UnknownCompoundOpError(pos, op, "Number")
	}
}
