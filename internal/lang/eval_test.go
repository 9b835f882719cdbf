package lang

import "testing"

func mustEval(t *testing.T, src string) Value {
	t.Helper()
	expr, err := Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	v, err := Eval(expr, NewEnv(), NewCtx("A", nil))
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return v
}

func TestArithmeticPrecedence(t *testing.T) {
	v := mustEval(t, "(10 + 5) * 2")
	if v.Kind != KindInt || v.Int != 30 {
		t.Fatalf("got %v", v)
	}
}

func TestRecordLitAndFieldAccess(t *testing.T) {
	v := mustEval(t, `let stats = { strength: 15, dexterity: 12 } in stats.strength`)
	if v.Kind != KindInt || v.Int != 15 {
		t.Fatalf("got %v", v)
	}
}

func TestRecordMergeRightBias(t *testing.T) {
	v := mustEval(t, `{strength:10, dexterity:10} // {strength:12}`)
	if v.Kind != KindRecord {
		t.Fatalf("got %v", v)
	}
	s, _ := v.Record.Get("strength")
	d, _ := v.Record.Get("dexterity")
	if s.Int != 12 || d.Int != 10 {
		t.Fatalf("got strength=%v dexterity=%v", s, d)
	}
}

func TestCurriedLambda(t *testing.T) {
	v := mustEval(t, `let double = (fn(x)->fn(y)->x*y)(2) in double(10)`)
	if v.Kind != KindInt || v.Int != 20 {
		t.Fatalf("got %v", v)
	}
}

func TestLexicalCapture(t *testing.T) {
	v := mustEval(t, `let x = 1 in let f = fn(y) -> x + y in let x = 99 in f(1)`)
	if v.Kind != KindInt || v.Int != 2 {
		t.Fatalf("got %v", v)
	}
}

func TestShortCircuitAnd(t *testing.T) {
	v := mustEval(t, `false and ([1][5] == 1)`)
	if v.Kind != KindBool || v.Bool {
		t.Fatalf("got %v", v)
	}
}

func TestMapFilterFoldOnLists(t *testing.T) {
	v := mustEval(t, `fold(fn(acc)->fn(x)->acc+x, 0, map(fn(x)->x*2, [1,2,3]))`)
	if v.Kind != KindInt || v.Int != 12 {
		t.Fatalf("got %v", v)
	}
	v = mustEval(t, `filter(fn(x)->x > 1, [1,2,3])`)
	if v.Kind != KindList || len(v.List) != 2 {
		t.Fatalf("got %v", v)
	}
}

func TestMapOnRecordPreservesKeys(t *testing.T) {
	v := mustEval(t, `map(fn(x)->x+1, {a:1, b:2})`)
	if v.Kind != KindRecord {
		t.Fatalf("got %v", v)
	}
	a, _ := v.Record.Get("a")
	b, _ := v.Record.Get("b")
	if a.Int != 2 || b.Int != 3 {
		t.Fatalf("got a=%v b=%v", a, b)
	}
}

func TestIndexOutOfRange(t *testing.T) {
	_, err := Parse(`[1,2,3][5]`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	expr, _ := Parse(`[1,2,3][5]`)
	_, err = Eval(expr, NewEnv(), NewCtx("A", nil))
	if err == nil {
		t.Fatal("expected IndexError")
	}
	if ee, ok := err.(*EvalError); !ok || ee.Kind != ErrIndexError {
		t.Fatalf("got %v", err)
	}
}

func TestOverflow(t *testing.T) {
	expr, err := Parse(`9223372036854775807 + 1`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = Eval(expr, NewEnv(), NewCtx("A", nil))
	if ee, ok := err.(*EvalError); !ok || ee.Kind != ErrOverflowError {
		t.Fatalf("got %v", err)
	}
}

func TestDynamicPushTargetRejected(t *testing.T) {
	expr, err := Parse(`let t = "C" in push(t, 1)`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := AnalyzeDeps(expr); err == nil {
		t.Fatal("expected DynamicPushTargetError")
	}
}

func TestPushDependencyAnalysis(t *testing.T) {
	expr, err := Parse(`push("C", 1); push("D", 2)`)
	if err == nil {
		t.Fatal("expected parse error: ';' outside let is not a valid top-level sequence")
	}
	expr, err = Parse(`let a = push("C", 1) in push("D", 2)`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	deps, err := AnalyzeDeps(expr)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(deps.PushesTo) != 2 || deps.PushesTo[0] != "C" || deps.PushesTo[1] != "D" {
		t.Fatalf("got %v", deps.PushesTo)
	}
}
