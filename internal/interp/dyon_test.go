package interp_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	ierr "github.com/lucklove/dyon/internal/interp/errors"
	"github.com/lucklove/dyon/internal/interp/evaluator"
	"github.com/lucklove/dyon/internal/interp/runner"
)

// TestMain lets go-snaps detect obsolete snapshots across the whole package
// once every fixture test has run.
func TestMain(m *testing.M) {
	code := m.Run()
	snaps.Clean(m)
	os.Exit(code)
}

// fixtures pairs each testdata program with the spec §8 property it
// demonstrates; the snapshot is the authority on exact output, these names
// are just for -run targeting and failure messages.
var fixtures = []string{
	"arithmetic",
	"objects_and_paths",
	"arrays_and_len",
	"labeled_break",
	"return_value",
	"copy_on_write",
}

func TestFixtures(t *testing.T) {
	for _, name := range fixtures {
		t.Run(name, func(t *testing.T) {
			source, err := os.ReadFile("testdata/" + name + ".dyon")
			if err != nil {
				t.Fatalf("reading fixture: %v", err)
			}

			var out bytes.Buffer
			cfg := evaluator.DefaultConfig()
			cfg.SourceName = name + ".dyon"
			if err := runner.Run(string(source), cfg.SourceName, cfg, &out, bytes.NewReader(nil)); err != nil {
				t.Fatalf("running %s: %v", name, err)
			}

			snaps.MatchSnapshot(t, out.String())
		})
	}
}

// TestFixtureErrorsSurfaceBacktrace exercises the fatal-error path end to
// end: a builtin call with a mismatched argument type, several frames deep,
// must report a backtrace through every user function on the stack.
func TestFixtureErrorsSurfaceBacktrace(t *testing.T) {
	source := `
fn inner(x) -> {
	return = sqrt(x)
}

fn outer(x) -> {
	return = inner(x)
}

fn main() {
	println(outer("not a number"))
}
`
	var out bytes.Buffer
	cfg := evaluator.DefaultConfig()
	cfg.SourceName = "backtrace.dyon"
	err := runner.Run(source, cfg.SourceName, cfg, &out, bytes.NewReader(nil))
	if err == nil {
		t.Fatalf("expected a type error, got none (output: %q)", out.String())
	}
	ee, ok := err.(*ierr.EvalError)
	if !ok {
		t.Fatalf("expected an *EvalError, got %T: %v", err, err)
	}

	snaps.MatchSnapshot(t, err.Error(), ee.Trace.String())
}

func TestFixtureParseErrorReportsPosition(t *testing.T) {
	source := `fn main() { 1 = 2 }`
	_, err := runner.Parse(source, "bad.dyon")
	if err == nil {
		t.Fatalf("expected a parse error")
	}
	snaps.MatchSnapshot(t, err.Error())
}
