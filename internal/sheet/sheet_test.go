package sheet

import (
	"testing"

	"github.com/arcanetools/cellweave/internal/lang"
)

func mustGet(t *testing.T, s *Sheet, id CellId) lang.Value {
	t.Helper()
	v, err, found := s.Get(id)
	if !found {
		t.Fatalf("cell %s not found", id)
	}
	if err != nil {
		t.Fatalf("cell %s has error: %v", id, err)
	}
	return v
}

func TestArithmeticPrecedenceScenario(t *testing.T) {
	s := NewSheet()
	if _, err := s.SetSource("A", "(10 + 5) * 2"); err != nil {
		t.Fatal(err)
	}
	v := mustGet(t, s, "A")
	if v.Kind != lang.KindInt || v.Int != 30 {
		t.Fatalf("A = %s, want 30", v)
	}
}

func TestRecordMergeScenario(t *testing.T) {
	s := NewSheet()
	if _, err := s.SetSource("A", `{strength:10, dexterity:10} // {strength:12}`); err != nil {
		t.Fatal(err)
	}
	v := mustGet(t, s, "A")
	if got := EncodeValue(v); got != `{"dexterity":10,"strength":12}` {
		t.Fatalf("A = %s, want {\"dexterity\":10,\"strength\":12}", got)
	}
}

func TestPushReadAcrossCells(t *testing.T) {
	s := NewSheet()
	if _, err := s.SetSource("A", `push("C", 10)`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetSource("B", `push("C", "Hello")`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetSource("C", `read()`); err != nil {
		t.Fatal(err)
	}
	if v := mustGet(t, s, "A"); v.Int != 10 {
		t.Fatalf("A = %s, want 10", v)
	}
	if v := mustGet(t, s, "B"); v.Str != "Hello" {
		t.Fatalf("B = %s, want Hello", v)
	}
	if v := mustGet(t, s, "C"); EncodeValue(v) != `[10,"Hello"]` {
		t.Fatalf("C = %s, want [10,\"Hello\"]", EncodeValue(v))
	}
}

func TestPushOrderingWithinSource(t *testing.T) {
	s := NewSheet()
	if _, err := s.SetSource("A", `push("C", 1)`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetSource("B", `let first = push("C", 2) in push("C", 3)`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetSource("C", `read()`); err != nil {
		t.Fatal(err)
	}
	if got := EncodeValue(mustGet(t, s, "C")); got != "[1,2,3]" {
		t.Fatalf("C = %s, want [1,2,3]", got)
	}
}

func TestCycleRejectedAtomically(t *testing.T) {
	s := NewSheet()
	if _, err := s.SetSource("A", `push("B", 1)`); err != nil {
		t.Fatal(err)
	}
	// B does not exist, so A holds a PushToMissingCell error; compare both
	// value and error across the rejected edit.
	beforeA, beforeErr, _ := s.Get("A")

	_, err := s.SetSource("B", `push("A", 1)`)
	if err == nil {
		t.Fatal("expected CycleError, got nil")
	}
	if _, ok := err.(*CycleError); !ok {
		t.Fatalf("expected *CycleError, got %T: %v", err, err)
	}

	if _, _, found := s.Get("B"); found {
		t.Fatal("rejected edit should not have created cell B")
	}
	afterA, afterErr, _ := s.Get("A")
	if !lang.Equal(beforeA, afterA) || DescribeError(beforeErr) != DescribeError(afterErr) {
		t.Fatalf("A changed across a rejected edit: %s (%v) -> %s (%v)", beforeA, beforeErr, afterA, afterErr)
	}
}

func TestCurriedLambdaScenario(t *testing.T) {
	s := NewSheet()
	if _, err := s.SetSource("A", "let double = (fn(x)->fn(y)->x*y)(2) in double(10)"); err != nil {
		t.Fatal(err)
	}
	if v := mustGet(t, s, "A"); v.Int != 20 {
		t.Fatalf("A = %s, want 20", v)
	}
}

func TestPurityUnrelatedEditDoesNotChangeValue(t *testing.T) {
	s := NewSheet()
	if _, err := s.SetSource("A", "1 + 1"); err != nil {
		t.Fatal(err)
	}
	before := mustGet(t, s, "A")

	if _, err := s.SetSource("B", `"anything, unrelated to A"`); err != nil {
		t.Fatal(err)
	}

	after := mustGet(t, s, "A")
	if !lang.Equal(before, after) {
		t.Fatalf("A changed after an unrelated edit: %s -> %s", before, after)
	}
}

func TestEditingPushTargetClearsStalePush(t *testing.T) {
	s := NewSheet()
	if _, err := s.SetSource("A", `push("C", 1)`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetSource("C", `read()`); err != nil {
		t.Fatal(err)
	}
	if got := EncodeValue(mustGet(t, s, "C")); got != "[1]" {
		t.Fatalf("C = %s, want [1]", got)
	}

	if _, err := s.SetSource("A", "99"); err != nil {
		t.Fatal(err)
	}
	if got := EncodeValue(mustGet(t, s, "C")); got != "[]" {
		t.Fatalf("C after A stopped pushing = %s, want []", got)
	}
}

func TestPushToMissingCellIsEvalTimeError(t *testing.T) {
	s := NewSheet()
	if _, err := s.SetSource("A", `push("Z", 1)`); err != nil {
		t.Fatal(err)
	}
	_, getErr, found := s.Get("A")
	if !found {
		t.Fatal("cell A should exist")
	}
	if getErr == nil {
		t.Fatal("expected a PushToMissingCell error on A")
	}
	ee, ok := getErr.(*lang.EvalError)
	if !ok || ee.Kind != lang.ErrPushToMissingCell {
		t.Fatalf("expected PushToMissingCell, got %v", getErr)
	}
}

func TestDeleteRecomputesDependents(t *testing.T) {
	s := NewSheet()
	if _, err := s.SetSource("A", `push("C", 1)`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetSource("C", `read()`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Delete("A"); err != nil {
		t.Fatal(err)
	}
	if got := EncodeValue(mustGet(t, s, "C")); got != "[]" {
		t.Fatalf("C after deleting A = %s, want []", got)
	}
}

func TestRunnableSheetChain(t *testing.T) {
	logs := []string{}
	printLn := func(s string) { logs = append(logs, s) }

	result, err := NewRunnableSheet(printLn).
		SetSource("A", "10").
		SetSource("B", "A_DOES_NOT_EXIST_SO_THIS_IS_FINE_AS_A_LITERAL").
		OnError(func(e error) error { return e }).
		Run()
	if err != nil {
		t.Fatal(err)
	}
	if _, _, found := result.Get("B"); !found {
		t.Fatal("B should exist")
	}
}

func TestRunnableSheetStopsChainOnError(t *testing.T) {
	_, err := NewRunnableSheet(func(string) {}).
		SetSource("A", `push("B", 1)`).
		SetSource("B", `push("A", 1)`).
		Run()
	if err == nil {
		t.Fatal("expected the chain to surface the CycleError")
	}
	if _, ok := err.(*CycleError); !ok {
		t.Fatalf("expected *CycleError, got %T", err)
	}
}
