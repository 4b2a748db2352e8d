package builtins

import (
	"math"

	ierr "github.com/lucklove/dyon/internal/interp/errors"
	"github.com/lucklove/dyon/internal/interp/evaluator"
	"github.com/lucklove/dyon/internal/interp/runtime"
	"github.com/lucklove/dyon/internal/token"
)

// mathBuiltins registers sqrt/sin/cos/tan/asin/acos/atan/exp/ln/log2/log10,
// round, and random (spec §6.2).
func mathBuiltins() []*evaluator.Builtin {
	unary := map[string]func(float64) float64{
		"sqrt":  math.Sqrt,
		"sin":   math.Sin,
		"cos":   math.Cos,
		"tan":   math.Tan,
		"asin":  math.Asin,
		"acos":  math.Acos,
		"atan":  math.Atan,
		"exp":   math.Exp,
		"ln":    math.Log,
		"log2":  math.Log2,
		"log10": math.Log10,
	}

	out := make([]*evaluator.Builtin, 0, len(unary)+2)
	for name, fn := range unary {
		name, fn := name, fn
		out = append(out, &evaluator.Builtin{
			Name: name, Arity: 1, Returns: true,
			Fn: func(ctx *evaluator.Context, pos token.Position, args []runtime.Value) (runtime.Value, error) {
				n, err := requireNumber(pos, name, args[0])
				if err != nil {
					return nil, err
				}
				return runtime.Number(fn(float64(n))), nil
			},
		})
	}

	out = append(out, &evaluator.Builtin{
		Name: "round", Arity: 1, Returns: true,
		Fn: func(ctx *evaluator.Context, pos token.Position, args []runtime.Value) (runtime.Value, error) {
			n, err := requireNumber(pos, "round", args[0])
			if err != nil {
				return nil, err
			}
			return runtime.Number(math.Round(float64(n))), nil
		},
	})

	out = append(out, &evaluator.Builtin{
		Name: "random", Arity: 0, Returns: true,
		Fn: func(ctx *evaluator.Context, pos token.Position, args []runtime.Value) (runtime.Value, error) {
			return runtime.Number(ctx.Rand.Float64()), nil
		},
	})

	return out
}

func requireNumber(pos token.Position, builtin string, v runtime.Value) (runtime.Number, error) {
	n, ok := v.(runtime.Number)
	if !ok {
		return 0, ierr.ExpectedNumberError(pos, builtin, runtime.TypeName(v))
	}
	return n, nil
}

func requireText(pos token.Position, builtin string, v runtime.Value) (runtime.Text, error) {
	t, ok := v.(runtime.Text)
	if !ok {
		return runtime.Text{}, ierr.ExpectedTextError(pos, builtin, runtime.TypeName(v))
	}
	return t, nil
}
