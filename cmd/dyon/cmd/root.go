package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// verbose is bound to the global -v/--verbose flag; commands consult it
// directly rather than re-reading it from cobra's flag set each time.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "dyon",
	Short: "dyon interpreter",
	Long: `dyon is a tree-walking interpreter for a small imperative scripting
language: numbers, booleans, text, arrays, objects, block expressions,
labeled loops, if-expressions, function calls with optional return values,
local bindings, and compound assignment through nested field/index paths.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
