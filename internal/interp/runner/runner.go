// Package runner wires the lexer, parser and evaluator together into a
// single entry point: parse a source string into a Program, register its
// functions, and invoke "main" per spec.md §6.3.
package runner

import (
	"fmt"
	"io"

	"github.com/lucklove/dyon/internal/ast"
	ierr "github.com/lucklove/dyon/internal/errors"
	"github.com/lucklove/dyon/internal/interp/builtins"
	"github.com/lucklove/dyon/internal/interp/evaluator"
	"github.com/lucklove/dyon/internal/lexer"
	"github.com/lucklove/dyon/internal/parser"
	"github.com/lucklove/dyon/internal/token"
)

// ParseErrors reports every lex/parse diagnostic gathered from one source,
// each rendered with a source line and caret via internal/errors.
type ParseErrors struct {
	Errors []*ierr.CompilerError
}

func (e *ParseErrors) Error() string {
	return ierr.FormatErrors(e.Errors, false)
}

// Parse lexes and parses source into a Program, or a *ParseErrors describing
// every lex/parse failure found.
func Parse(source, file string) (*ast.Program, error) {
	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()

	var stringErrs []string
	for _, le := range l.Errors() {
		stringErrs = append(stringErrs, fmt.Sprintf("%s at %d:%d", le.Message, le.Pos.Line, le.Pos.Column))
	}
	stringErrs = append(stringErrs, p.Errors()...)

	if len(stringErrs) > 0 {
		return nil, &ParseErrors{Errors: ierr.FromStringErrors(stringErrs, source, file)}
	}
	return program, nil
}

// Run parses source, builds a Context configured per cfg, and invokes
// "main" with no arguments.
func Run(source, file string, cfg evaluator.Config, out io.Writer, in io.Reader) error {
	program, err := Parse(source, file)
	if err != nil {
		return err
	}
	return RunProgram(program, cfg, out, in)
}

// RunProgram runs an already-parsed Program, for callers (the `run` CLI
// command with --dump-ast) that need the AST before execution starts. It
// flushes ctx.Output before returning, even on error, so partial output is
// never lost.
func RunProgram(program *ast.Program, cfg evaluator.Config, out io.Writer, in io.Reader) error {
	if _, ok := findMain(program); !ok {
		return fmt.Errorf("no main() function declared")
	}

	ctx := evaluator.NewContextWithConfig(program, builtins.Table(), out, in, cfg)
	defer ctx.Output.Flush()

	call := &ast.Call{Position: token.Position{Line: 1, Column: 1}, Name: "main"}
	_, _, evalErr := evaluator.Eval(call, evaluator.Right, ctx)
	if flushErr := ctx.Output.Flush(); flushErr != nil && evalErr == nil {
		return flushErr
	}
	return evalErr
}

func findMain(program *ast.Program) (*ast.FunctionDecl, bool) {
	for _, fn := range program.Functions {
		if fn.Name == "main" {
			return fn, true
		}
	}
	return nil, false
}
