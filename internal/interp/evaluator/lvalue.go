package evaluator

import (
	"math"

	"github.com/lucklove/dyon/internal/ast"
	ierr "github.com/lucklove/dyon/internal/interp/errors"
	"github.com/lucklove/dyon/internal/interp/runtime"
	"github.com/lucklove/dyon/internal/token"
)

// evalItem implements the l-value resolver (spec §4.2). A bare name pushes
// a StackRef to its local's slot (Right) or a RawRef handle onto that slot
// (LeftInsert). A name with a dotted/indexed path is walked and, per side,
// pushes a deep clone of the referred value (Right) or a RawRef handle onto
// its backing slot (LeftInsert).
func evalItem(node *ast.Item, side Side, ctx *Context) (Production, Flow, error) {
	frame := ctx.Calls.Current()

	if len(node.Ids) == 0 {
		idx, ok := frame.Lookup(node.Name)
		if !ok {
			return Nothing, Cont, ierr.UnknownLocalError(node.Position, node.Name)
		}
		if side.IsLeft() {
			ctx.Values.Push(runtime.RawRef{Target: ctx.Values.Slot(idx)})
		} else {
			ctx.Values.Push(runtime.StackRef{Index: idx})
		}
		return Something, Cont, nil
	}

	idx, ok := frame.Lookup(node.Name)
	if !ok {
		return Nothing, Cont, ierr.UnknownLocalError(node.Position, node.Name)
	}

	exprBase := ctx.Values.Len()
	for _, id := range node.Ids {
		if id.Kind != ast.IdExpr {
			continue
		}
		prod, flow, err := Eval(id.Expr, Right, ctx)
		if err != nil || !flow.IsContinue() {
			ctx.Values.Truncate(exprBase)
			return Nothing, flow, err
		}
		if prod != Something {
			ctx.Values.Truncate(exprBase)
			return Nothing, Cont, ierr.NewStackContractErrorf(id.Expr.Pos(), ierr.ErrMsgExpressionNoValue)
		}
	}

	slot := ctx.Values.Slot(idx)
	exprIdx := exprBase
	last := len(node.Ids) - 1

	for i, id := range node.Ids {
		isLast := i == last

		// Copy-on-write anchor: on any non-last segment, transparently
		// follow a StackRef to the slot it names before applying the
		// segment; the last segment keeps the handle pointing at the slot
		// that actually holds the StackRef, so a write commits there.
		if !isLast {
			for {
				ref, ok := (*slot).(runtime.StackRef)
				if !ok {
					break
				}
				slot = ctx.Values.Slot(ref.Index)
			}
		}

		switch cur := (*slot).(type) {
		case runtime.Object:
			key, err := objectKey(ctx, node.Position, id, &exprIdx)
			if err != nil {
				ctx.Values.Truncate(exprBase)
				return Nothing, Cont, err
			}
			fieldSlot := cur.Slot(key, isLast && side.IsLeft() && side.InsertAbsent())
			if fieldSlot == nil {
				ctx.Values.Truncate(exprBase)
				return Nothing, Cont, ierr.MissingKeyError(node.Position, key)
			}
			slot = fieldSlot

		case runtime.Array:
			index, err := arrayIndex(ctx, node.Position, id, &exprIdx)
			if err != nil {
				ctx.Values.Truncate(exprBase)
				return Nothing, Cont, err
			}
			if index < 0 || index >= cur.Len() {
				ctx.Values.Truncate(exprBase)
				return Nothing, Cont, ierr.IndexOutOfRangeError(node.Position, index, cur.Len())
			}
			slot = cur.Slot(index)

		default:
			ctx.Values.Truncate(exprBase)
			return Nothing, Cont, ierr.NotIndexableError(node.Position, runtime.TypeName(*slot))
		}
	}

	ctx.Values.Truncate(exprBase)
	if side.IsLeft() {
		ctx.Values.Push(runtime.RawRef{Target: slot})
	} else {
		ctx.Values.Push(runtime.DeepClone(*slot))
	}
	return Something, Cont, nil
}

// objectKey resolves one path segment against an Object: a literal key, or
// a bracket expression that must have resolved to Text (spec §4.2 note). A
// literal numeric segment applied to an Object is also a computed-key
// error, since the grammar never produces one validly in that position.
func objectKey(ctx *Context, pos token.Position, id ast.Id, exprIdx *int) (string, error) {
	switch id.Kind {
	case ast.IdKey:
		return id.Key, nil
	case ast.IdExpr:
		v := resolveStackRef(ctx, ctx.Values.Get(*exprIdx))
		*exprIdx++
		text, ok := v.(runtime.Text)
		if !ok {
			return "", ierr.ComputedKeyNonTextError(id.Expr.Pos(), runtime.TypeName(v))
		}
		return text.Value(), nil
	default: // ast.IdIndex
		return "", ierr.ComputedKeyNonTextError(pos, "Number")
	}
}

// arrayIndex resolves one path segment against an Array: a literal index,
// or a bracket expression that must have resolved to a Number, truncated
// toward zero (spec §4.2). A literal text segment applied to an Array is
// likewise a type error.
func arrayIndex(ctx *Context, pos token.Position, id ast.Id, exprIdx *int) (int, error) {
	switch id.Kind {
	case ast.IdIndex:
		return int(math.Trunc(id.Index)), nil
	case ast.IdExpr:
		v := resolveStackRef(ctx, ctx.Values.Get(*exprIdx))
		*exprIdx++
		n, ok := v.(runtime.Number)
		if !ok {
			return 0, ierr.ArraySegmentNonNumberError(id.Expr.Pos(), runtime.TypeName(v))
		}
		return int(math.Trunc(float64(n))), nil
	default: // ast.IdKey
		return 0, ierr.ArraySegmentNonNumberError(pos, "Text")
	}
}
