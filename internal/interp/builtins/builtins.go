// Package builtins implements the fixed table of intrinsic procedures (spec
// §6.2): math, I/O, clone, length, sleep, random and the debug/backtrace
// diagnostic dumps.
package builtins

import (
	"github.com/lucklove/dyon/internal/interp/evaluator"
)

// Table returns the fixed, immutable name->Builtin map every Context is
// wired with, matching the teacher's registerXBuiltins split into one
// file per concern (math, string/io, misc).
func Table() map[string]*evaluator.Builtin {
	table := make(map[string]*evaluator.Builtin)
	register := func(b *evaluator.Builtin) { table[b.Name] = b }

	for _, b := range mathBuiltins() {
		register(b)
	}
	for _, b := range ioBuiltins() {
		register(b)
	}
	for _, b := range miscBuiltins() {
		register(b)
	}
	return table
}
