package evaluator

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lucklove/dyon/internal/ast"
	"github.com/lucklove/dyon/internal/interp/runtime"
	"github.com/lucklove/dyon/internal/token"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	ctx := NewContext(&ast.Program{}, map[string]*Builtin{}, &bytes.Buffer{}, strings.NewReader(""), 1)
	if _, err := ctx.Calls.Push("test", -1, false); err != nil {
		t.Fatalf("pushing test frame: %v", err)
	}
	return ctx
}

func pos() token.Position { return token.Position{Line: 1, Column: 1} }

func num(n float64) *ast.NumberLiteral { return &ast.NumberLiteral{Position: pos(), Value: n} }

func evalExpr(t *testing.T, ctx *Context, node ast.Expression) runtime.Value {
	t.Helper()
	prod, flow, err := Eval(node, Right, ctx)
	if err != nil {
		t.Fatalf("eval error: %v", err)
	}
	if !flow.IsContinue() {
		t.Fatalf("unexpected flow: %+v", flow)
	}
	if prod != Something {
		t.Fatalf("expected Something, got Nothing")
	}
	return resolveStackRef(ctx, ctx.Values.Pop())
}

func TestEvalArithmetic(t *testing.T) {
	ctx := newTestContext(t)
	node := &ast.BinaryOp{Position: pos(), Op: "+", Left: num(3), Right: &ast.BinaryOp{Position: pos(), Op: "*", Left: num(4), Right: num(2)}}
	got := evalExpr(t, ctx, node)
	n, ok := got.(runtime.Number)
	if !ok || n != 11 {
		t.Fatalf("got %#v, want Number(11)", got)
	}
}

func TestEvalPowerAndModulo(t *testing.T) {
	ctx := newTestContext(t)
	pow := evalExpr(t, ctx, &ast.BinaryOp{Position: pos(), Op: "**", Left: num(2), Right: num(10)})
	if pow.(runtime.Number) != 1024 {
		t.Fatalf("got %#v, want 1024", pow)
	}

	ctx = newTestContext(t)
	mod := evalExpr(t, ctx, &ast.BinaryOp{Position: pos(), Op: "%", Left: num(7), Right: num(3)})
	if mod.(runtime.Number) != 1 {
		t.Fatalf("got %#v, want 1", mod)
	}
}

func TestEvalBoolArithmetic(t *testing.T) {
	cases := []struct {
		op       string
		a, b     bool
		wantBool bool
	}{
		{"+", false, false, false}, // or
		{"+", true, false, true},
		{"-", true, false, true}, // and-not
		{"-", true, true, false},
		{"*", true, true, true}, // and
		{"*", true, false, false},
		{"**", true, false, true}, // xor
		{"**", true, true, false},
	}
	for _, c := range cases {
		ctx := newTestContext(t)
		node := &ast.BinaryOp{
			Position: pos(), Op: c.op,
			Left:  &ast.BoolLiteral{Position: pos(), Value: c.a},
			Right: &ast.BoolLiteral{Position: pos(), Value: c.b},
		}
		got := evalExpr(t, ctx, node)
		if got.(runtime.Bool) != runtime.Bool(c.wantBool) {
			t.Errorf("%v %s %v = %v, want %v", c.a, c.op, c.b, got, c.wantBool)
		}
	}
}

func TestEvalBoolArithmeticRejectsDivAndMod(t *testing.T) {
	for _, op := range []string{"/", "%"} {
		ctx := newTestContext(t)
		node := &ast.BinaryOp{
			Position: pos(), Op: op,
			Left:  &ast.BoolLiteral{Position: pos(), Value: true},
			Right: &ast.BoolLiteral{Position: pos(), Value: false},
		}
		if _, _, err := Eval(node, Right, ctx); err == nil {
			t.Errorf("expected an error for Bool %s Bool", op)
		}
	}
}

func TestEvalMixedNumberBoolArithmeticIsError(t *testing.T) {
	ctx := newTestContext(t)
	node := &ast.BinaryOp{
		Position: pos(), Op: "+",
		Left:  num(1),
		Right: &ast.BoolLiteral{Position: pos(), Value: true},
	}
	if _, _, err := Eval(node, Right, ctx); err == nil {
		t.Fatalf("expected a type error mixing Number and Bool")
	}
}

func TestEvalCompare(t *testing.T) {
	ctx := newTestContext(t)
	node := &ast.Compare{Position: pos(), Op: "<=", Left: num(3), Right: num(3)}
	got := evalExpr(t, ctx, node)
	if got.(runtime.Bool) != true {
		t.Fatalf("got %#v, want true", got)
	}
}

func TestEvalUnaryNot(t *testing.T) {
	ctx := newTestContext(t)
	node := &ast.UnaryOp{Position: pos(), Op: "!", Expr: &ast.BoolLiteral{Position: pos(), Value: false}}
	got := evalExpr(t, ctx, node)
	if got.(runtime.Bool) != true {
		t.Fatalf("got %#v, want true", got)
	}
}

func TestEvalDeclareAndReadLocal(t *testing.T) {
	ctx := newTestContext(t)
	decl := &ast.Assign{Position: pos(), Op: ":=", Left: &ast.Item{Position: pos(), Name: "x"}, Right: num(42)}
	if _, _, err := Eval(decl, Right, ctx); err != nil {
		t.Fatalf("declaring x: %v", err)
	}

	got := evalExpr(t, ctx, &ast.Item{Position: pos(), Name: "x"})
	if got.(runtime.Number) != 42 {
		t.Fatalf("got %#v, want 42", got)
	}
}

func TestEvalCompoundAssignThroughPath(t *testing.T) {
	ctx := newTestContext(t)
	decl := &ast.Assign{Position: pos(), Op: ":=", Left: &ast.Item{Position: pos(), Name: "o"}, Right: &ast.ObjectLiteral{Position: pos()}}
	if _, _, err := Eval(decl, Right, ctx); err != nil {
		t.Fatalf("declaring o: %v", err)
	}

	setField := &ast.Assign{
		Position: pos(), Op: "=",
		Left:  &ast.Item{Position: pos(), Name: "o", Ids: []ast.Id{{Kind: ast.IdKey, Key: "count"}}},
		Right: num(1),
	}
	if _, _, err := Eval(setField, Right, ctx); err != nil {
		t.Fatalf("setting o.count: %v", err)
	}

	addField := &ast.Assign{
		Position: pos(), Op: "+=",
		Left:  &ast.Item{Position: pos(), Name: "o", Ids: []ast.Id{{Kind: ast.IdKey, Key: "count"}}},
		Right: num(4),
	}
	if _, _, err := Eval(addField, Right, ctx); err != nil {
		t.Fatalf("adding to o.count: %v", err)
	}

	got := evalExpr(t, ctx, &ast.Item{Position: pos(), Name: "o", Ids: []ast.Id{{Kind: ast.IdKey, Key: "count"}}})
	if got.(runtime.Number) != 5 {
		t.Fatalf("got %#v, want 5", got)
	}
}

func TestEvalIfBranches(t *testing.T) {
	ctx := newTestContext(t)
	node := &ast.If{
		Position:  pos(),
		Cond:      &ast.BoolLiteral{Position: pos(), Value: true},
		TrueBlock: &ast.Block{Position: pos(), Expressions: []ast.Expression{num(1)}},
		ElseBlock: &ast.Block{Position: pos(), Expressions: []ast.Expression{num(2)}},
	}
	got := evalExpr(t, ctx, node)
	if got.(runtime.Number) != 1 {
		t.Fatalf("got %#v, want 1 (true branch)", got)
	}

	ctx = newTestContext(t)
	node.Cond = &ast.BoolLiteral{Position: pos(), Value: false}
	got = evalExpr(t, ctx, node)
	if got.(runtime.Number) != 2 {
		t.Fatalf("got %#v, want 2 (else branch)", got)
	}
}

func TestEvalForAccumulates(t *testing.T) {
	// Hand-built AST for:
	//   sum := 0
	//   for i := 0; i < 5; i += 1 { sum += i }
	ctx := newTestContext(t)

	initAssign := &ast.Assign{Position: pos(), Op: ":=", Left: &ast.Item{Position: pos(), Name: "i"}, Right: num(0)}
	cond := &ast.Compare{Position: pos(), Op: "<", Left: &ast.Item{Position: pos(), Name: "i"}, Right: num(5)}
	step := &ast.Assign{Position: pos(), Op: "+=", Left: &ast.Item{Position: pos(), Name: "i"}, Right: num(1)}
	body := &ast.Block{Position: pos(), Expressions: []ast.Expression{
		&ast.Assign{Position: pos(), Op: "+=", Left: &ast.Item{Position: pos(), Name: "sum"}, Right: &ast.Item{Position: pos(), Name: "i"}},
	}}
	loop := &ast.For{Position: pos(), Init: initAssign, Cond: cond, Step: step, Block: body}

	decl := &ast.Assign{Position: pos(), Op: ":=", Left: &ast.Item{Position: pos(), Name: "sum"}, Right: num(0)}
	if _, _, err := Eval(decl, Right, ctx); err != nil {
		t.Fatalf("declaring sum: %v", err)
	}
	if _, flow, err := Eval(loop, Right, ctx); err != nil || !flow.IsContinue() {
		t.Fatalf("running loop: flow=%+v err=%v", flow, err)
	}

	got := evalExpr(t, ctx, &ast.Item{Position: pos(), Name: "sum"})
	if got.(runtime.Number) != 10 {
		t.Fatalf("got %#v, want 10 (0+1+2+3+4)", got)
	}
}

func TestEvalLabeledBreakEscapesOnlyItsLoop(t *testing.T) {
	ctx := newTestContext(t)

	innerBody := &ast.Block{Position: pos(), Expressions: []ast.Expression{
		&ast.If{
			Position:  pos(),
			Cond:      &ast.Compare{Position: pos(), Op: "==", Left: &ast.Item{Position: pos(), Name: "k"}, Right: num(2)},
			TrueBlock: &ast.Block{Position: pos(), Expressions: []ast.Expression{&ast.Break{Position: pos(), Label: "outer"}}},
		},
		&ast.Assign{Position: pos(), Op: "+=", Left: &ast.Item{Position: pos(), Name: "i"}, Right: num(1)},
	}}
	inner := &ast.For{
		Position: pos(),
		Init:     &ast.Assign{Position: pos(), Op: ":=", Left: &ast.Item{Position: pos(), Name: "k"}, Right: num(0)},
		Cond:     &ast.Compare{Position: pos(), Op: "<", Left: &ast.Item{Position: pos(), Name: "k"}, Right: num(10)},
		Step:     &ast.Assign{Position: pos(), Op: "+=", Left: &ast.Item{Position: pos(), Name: "k"}, Right: num(1)},
		Block:    innerBody,
	}
	outer := &ast.For{
		Position: pos(), Label: "outer",
		Init:  &ast.Assign{Position: pos(), Op: ":=", Left: &ast.Item{Position: pos(), Name: "j"}, Right: num(0)},
		Cond:  &ast.Compare{Position: pos(), Op: "<", Left: &ast.Item{Position: pos(), Name: "j"}, Right: num(10)},
		Step:  &ast.Assign{Position: pos(), Op: "+=", Left: &ast.Item{Position: pos(), Name: "j"}, Right: num(1)},
		Block: &ast.Block{Position: pos(), Expressions: []ast.Expression{inner}},
	}

	decl := &ast.Assign{Position: pos(), Op: ":=", Left: &ast.Item{Position: pos(), Name: "i"}, Right: num(0)}
	if _, _, err := Eval(decl, Right, ctx); err != nil {
		t.Fatalf("declaring i: %v", err)
	}
	if _, flow, err := Eval(outer, Right, ctx); err != nil || !flow.IsContinue() {
		t.Fatalf("running outer loop: flow=%+v err=%v", flow, err)
	}

	got := evalExpr(t, ctx, &ast.Item{Position: pos(), Name: "i"})
	if got.(runtime.Number) != 2 {
		t.Fatalf("got %#v, want 2 (breaks out of outer on the first pass, k hit 2 at i==2)", got)
	}
}

func TestEvalAssignTypeMismatchIsError(t *testing.T) {
	ctx := newTestContext(t)
	decl := &ast.Assign{Position: pos(), Op: ":=", Left: &ast.Item{Position: pos(), Name: "x"}, Right: num(1)}
	if _, _, err := Eval(decl, Right, ctx); err != nil {
		t.Fatalf("declaring x: %v", err)
	}

	bad := &ast.Assign{Position: pos(), Op: "=", Left: &ast.Item{Position: pos(), Name: "x"}, Right: &ast.TextLiteral{Position: pos(), Value: "nope"}}
	if _, _, err := Eval(bad, Right, ctx); err == nil {
		t.Fatalf("expected a type error assigning Text over a Number")
	}
}

func TestEvalUnknownLocalIsResolutionError(t *testing.T) {
	ctx := newTestContext(t)
	if _, _, err := Eval(&ast.Item{Position: pos(), Name: "nope"}, Right, ctx); err == nil {
		t.Fatalf("expected a resolution error for an undeclared name")
	}
}

func TestEvalCallUserFunction(t *testing.T) {
	square := &ast.FunctionDecl{
		Position: pos(), Name: "square", Parameters: []string{"x"}, Returns: true,
		Body: &ast.Block{Position: pos(), Expressions: []ast.Expression{
			&ast.Assign{
				Position: pos(), Op: "=",
				Left:  &ast.Item{Position: pos(), Name: "return"},
				Right: &ast.BinaryOp{Position: pos(), Op: "*", Left: &ast.Item{Position: pos(), Name: "x"}, Right: &ast.Item{Position: pos(), Name: "x"}},
			},
		}},
	}
	program := &ast.Program{Functions: []*ast.FunctionDecl{square}}
	ctx := NewContext(program, map[string]*Builtin{}, &bytes.Buffer{}, strings.NewReader(""), 1)

	call := &ast.Call{Position: pos(), Name: "square", Args: []ast.Expression{num(6)}}
	got := evalExpr(t, ctx, call)
	if got.(runtime.Number) != 36 {
		t.Fatalf("got %#v, want 36", got)
	}
}

func TestEvalCallArityMismatchIsShapeError(t *testing.T) {
	fn := &ast.FunctionDecl{Position: pos(), Name: "f", Parameters: []string{"a", "b"}, Body: &ast.Block{Position: pos()}}
	program := &ast.Program{Functions: []*ast.FunctionDecl{fn}}
	ctx := NewContext(program, map[string]*Builtin{}, &bytes.Buffer{}, strings.NewReader(""), 1)

	call := &ast.Call{Position: pos(), Name: "f", Args: []ast.Expression{num(1)}}
	if _, _, err := Eval(call, Right, ctx); err == nil {
		t.Fatalf("expected a shape error for a 1-arg call to a 2-param function")
	}
}

func TestEvalCallBuiltin(t *testing.T) {
	double := &Builtin{
		Name: "double", Arity: 1, Returns: true,
		Fn: func(ctx *Context, pos token.Position, args []runtime.Value) (runtime.Value, error) {
			n := args[0].(runtime.Number)
			return n * 2, nil
		},
	}
	ctx := NewContext(&ast.Program{}, map[string]*Builtin{"double": double}, &bytes.Buffer{}, strings.NewReader(""), 1)

	call := &ast.Call{Position: pos(), Name: "double", Args: []ast.Expression{num(21)}}
	got := evalExpr(t, ctx, call)
	if got.(runtime.Number) != 42 {
		t.Fatalf("got %#v, want 42", got)
	}
}

func TestEvalUnknownFunctionIsResolutionError(t *testing.T) {
	ctx := NewContext(&ast.Program{}, map[string]*Builtin{}, &bytes.Buffer{}, strings.NewReader(""), 1)
	call := &ast.Call{Position: pos(), Name: "nosuch"}
	if _, _, err := Eval(call, Right, ctx); err == nil {
		t.Fatalf("expected a resolution error calling an unknown function")
	}
}
