package builtins

import (
	"github.com/goccy/go-yaml"

	"github.com/lucklove/dyon/internal/interp/evaluator"
	"github.com/lucklove/dyon/internal/interp/runtime"
	"github.com/lucklove/dyon/internal/token"
)

// miscBuiltins registers clone, debug, backtrace (spec §6.2).
func miscBuiltins() []*evaluator.Builtin {
	return []*evaluator.Builtin{
		{
			Name: "clone", Arity: 1, Returns: true,
			Fn: func(ctx *evaluator.Context, pos token.Position, args []runtime.Value) (runtime.Value, error) {
				return runtime.DeepClone(args[0]), nil
			},
		},
		{
			Name: "debug", Arity: 0, Returns: false,
			Fn: func(ctx *evaluator.Context, pos token.Position, args []runtime.Value) (runtime.Value, error) {
				return nil, dumpDebug(ctx)
			},
		},
		{
			Name: "backtrace", Arity: 0, Returns: false,
			Fn: func(ctx *evaluator.Context, pos token.Position, args []runtime.Value) (runtime.Value, error) {
				return nil, dumpBacktrace(ctx)
			},
		},
	}
}

// debugDump is the structured snapshot `debug` marshals via goccy/go-yaml:
// the live value stack plus the current frame's local bindings.
type debugDump struct {
	Function string            `yaml:"function"`
	Locals   map[string]string `yaml:"locals"`
	Stack    []string          `yaml:"stack"`
}

func dumpDebug(ctx *evaluator.Context) error {
	frame := ctx.Calls.Current()
	dump := debugDump{Locals: make(map[string]string)}
	if frame != nil {
		dump.Function = frame.FunctionName
		for _, b := range frame.Bindings() {
			dump.Locals[b.Name] = ctx.Values.Get(b.Index).String()
		}
	}
	for _, v := range ctx.Values.Snapshot() {
		dump.Stack = append(dump.Stack, v.String())
	}

	out, err := yaml.Marshal(dump)
	if err != nil {
		return err
	}
	ctx.Output.Write(out)
	return nil
}

// backtraceDump is the structured snapshot `backtrace` marshals via
// goccy/go-yaml: every active call frame, outermost first.
type backtraceDump struct {
	Frames []backtraceFrame `yaml:"frames"`
}

type backtraceFrame struct {
	Function string `yaml:"function"`
	Returns  bool   `yaml:"returns"`
}

func dumpBacktrace(ctx *evaluator.Context) error {
	dump := backtraceDump{}
	for _, f := range ctx.Calls.Frames() {
		dump.Frames = append(dump.Frames, backtraceFrame{Function: f.FunctionName, Returns: f.Returns})
	}

	out, err := yaml.Marshal(dump)
	if err != nil {
		return err
	}
	ctx.Output.Write(out)
	return nil
}
