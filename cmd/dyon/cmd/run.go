package cmd

import (
	"fmt"
	"os"

	ierr "github.com/lucklove/dyon/internal/errors"
	"github.com/lucklove/dyon/internal/interp/evaluator"
	ivmerr "github.com/lucklove/dyon/internal/interp/errors"
	"github.com/lucklove/dyon/internal/interp/runner"

	"github.com/spf13/cobra"
)

var (
	evalExpr string
	dumpAST  bool
	trace    bool
	seed     int64
	maxDepth int
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a dyon program from a file or inline expression",
	Long: `Execute a dyon program from a file or inline expression.

Examples:
  # Run a script file
  dyon run script.dyon

  # Evaluate inline source
  dyon run -e 'fn main() { println("Hello, World!") }'

  # Run with AST dump (for debugging)
  dyon run --dump-ast script.dyon`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	cfg := evaluator.DefaultConfig()
	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline source instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST (for debugging)")
	runCmd.Flags().BoolVar(&trace, "trace", false, "announce entry to the running program (for debugging)")
	runCmd.Flags().Int64Var(&seed, "seed", cfg.Seed, "RNG seed used by random()")
	runCmd.Flags().IntVar(&maxDepth, "max-depth", cfg.MaxCallDepth, "maximum function-call recursion depth")
}

func runScript(_ *cobra.Command, args []string) error {
	var source, filename string

	switch {
	case evalExpr != "":
		source, filename = evalExpr, "<eval>"
	case len(args) == 1:
		filename = args[0]
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		source = string(content)
	default:
		return fmt.Errorf("either provide a file path or use -e for inline source")
	}

	program, err := runner.Parse(source, filename)
	if err != nil {
		if pe, ok := err.(*runner.ParseErrors); ok {
			fmt.Fprint(os.Stderr, ierr.FormatErrors(pe.Errors, true))
			fmt.Fprintln(os.Stderr)
		}
		return fmt.Errorf("parsing failed")
	}

	if dumpAST {
		fmt.Println("AST:")
		fmt.Println(program.String())
		fmt.Println()
	}

	if trace {
		fmt.Fprintf(os.Stderr, "[trace] running %s\n", filename)
	}

	cfg := evaluator.DefaultConfig()
	cfg.SourceName = filename
	cfg.Seed = seed
	cfg.MaxCallDepth = maxDepth

	if err := runner.RunProgram(program, cfg, os.Stdout, os.Stdin); err != nil {
		if ee, ok := err.(*ivmerr.EvalError); ok && len(ee.Trace) > 0 {
			fmt.Fprintln(os.Stderr, "backtrace:")
			fmt.Fprintln(os.Stderr, ee.Trace.String())
		}
		return fmt.Errorf("execution failed: %w", err)
	}
	return nil
}
