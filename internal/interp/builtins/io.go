package builtins

import (
	"strconv"
	"strings"
	"time"

	ierr "github.com/lucklove/dyon/internal/interp/errors"
	"github.com/lucklove/dyon/internal/interp/evaluator"
	"github.com/lucklove/dyon/internal/interp/runtime"
	"github.com/lucklove/dyon/internal/token"
)

// ioBuiltins registers print, println, sleep, len, read_line, read_number,
// trim_right, to_string (spec §6.2).
func ioBuiltins() []*evaluator.Builtin {
	return []*evaluator.Builtin{
		{
			Name: "print", Arity: 1, Returns: false,
			Fn: func(ctx *evaluator.Context, pos token.Position, args []runtime.Value) (runtime.Value, error) {
				ctx.Output.WriteString(canonicalString(args[0]))
				return nil, nil
			},
		},
		{
			Name: "println", Arity: 1, Returns: false,
			Fn: func(ctx *evaluator.Context, pos token.Position, args []runtime.Value) (runtime.Value, error) {
				ctx.Output.WriteString(canonicalString(args[0]))
				ctx.Output.WriteByte('\n')
				return nil, nil
			},
		},
		{
			Name: "sleep", Arity: 1, Returns: false,
			Fn: func(ctx *evaluator.Context, pos token.Position, args []runtime.Value) (runtime.Value, error) {
				n, err := requireNumber(pos, "sleep", args[0])
				if err != nil {
					return nil, err
				}
				if n <= 0 {
					return nil, nil
				}
				time.Sleep(time.Duration(float64(n) * float64(time.Second)))
				return nil, nil
			},
		},
		{
			Name: "len", Arity: 1, Returns: true,
			Fn: func(ctx *evaluator.Context, pos token.Position, args []runtime.Value) (runtime.Value, error) {
				a, ok := args[0].(runtime.Array)
				if !ok {
					return nil, ierr.ExpectedArrayError(pos, runtime.TypeName(args[0]))
				}
				return runtime.Number(a.Len()), nil
			},
		},
		{
			Name: "read_line", Arity: 0, Returns: true,
			Fn: func(ctx *evaluator.Context, pos token.Position, args []runtime.Value) (runtime.Value, error) {
				if err := ctx.Output.Flush(); err != nil {
					return nil, ierr.NewIOErrorf(pos, err, "read_line: flush: %s", err.Error())
				}
				line, err := ctx.Input.ReadString('\n')
				if err != nil && line == "" {
					return nil, ierr.NewIOErrorf(pos, err, "read_line: %s", err.Error())
				}
				return runtime.NewText(line), nil
			},
		},
		{
			Name: "read_number", Arity: 1, Returns: true,
			Fn: func(ctx *evaluator.Context, pos token.Position, args []runtime.Value) (runtime.Value, error) {
				msg, err := requireText(pos, "read_number", args[0])
				if err != nil {
					return nil, err
				}
				for {
					if err := ctx.Output.Flush(); err != nil {
						return nil, ierr.NewIOErrorf(pos, err, "read_number: flush: %s", err.Error())
					}
					line, err := ctx.Input.ReadString('\n')
					if err != nil && line == "" {
						return nil, ierr.NewIOErrorf(pos, err, "read_number: %s", err.Error())
					}
					n, parseErr := strconv.ParseFloat(strings.TrimSpace(line), 64)
					if parseErr == nil {
						return runtime.Number(n), nil
					}
					ctx.Output.WriteString(msg.Value())
					ctx.Output.WriteByte('\n')
				}
			},
		},
		{
			Name: "trim_right", Arity: 1, Returns: true,
			Fn: func(ctx *evaluator.Context, pos token.Position, args []runtime.Value) (runtime.Value, error) {
				t, err := requireText(pos, "trim_right", args[0])
				if err != nil {
					return nil, err
				}
				return runtime.NewText(strings.TrimRight(t.Value(), " \t\r\n")), nil
			},
		},
		{
			Name: "to_string", Arity: 1, Returns: true,
			Fn: func(ctx *evaluator.Context, pos token.Position, args []runtime.Value) (runtime.Value, error) {
				switch v := args[0].(type) {
				case runtime.Text:
					return v, nil
				case runtime.Number:
					return runtime.NewText(v.String()), nil
				default:
					return nil, ierr.NewTypeErrorf(pos, ierr.ErrMsgExpectedAssignType, "Text or Number", runtime.TypeName(v))
				}
			},
		},
	}
}

// canonicalString renders v per spec §6.2's canonical textual form.
func canonicalString(v runtime.Value) string {
	return v.String()
}
