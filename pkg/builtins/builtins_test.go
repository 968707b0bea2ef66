package builtins_test

import (
	"bytes"
	"testing"

	"github.com/caralang/cara/pkg/builtins"
	"github.com/caralang/cara/pkg/diagnostics"
	"github.com/caralang/cara/pkg/evaluator"
)

// intArray builds an array value from integer elements.
func intArray(ns ...int64) *evaluator.Array {
	items := make([]evaluator.Value, 0, len(ns))
	for _, n := range ns {
		items = append(items, evaluator.NewInt(n))
	}
	return evaluator.NewArray(items)
}

// newRegistry builds a registry with print captured into a buffer.
func newRegistry() (*builtins.Registry, *bytes.Buffer) {
	var out bytes.Buffer
	reg := builtins.NewRegistry()
	builtins.RegisterDefaults(reg, &out)
	return reg, &out
}

// call invokes a registered builtin and fails the test if it is missing.
func call(t *testing.T, reg *builtins.Registry, name string, args ...evaluator.Value) (evaluator.Value, error) {
	t.Helper()
	fn := reg.Get(name)
	if fn == nil {
		t.Fatalf("builtin %s not registered", name)
	}
	return fn.Execute(args)
}

// mustCall is like call but fails on error.
func mustCall(t *testing.T, reg *builtins.Registry, name string, args ...evaluator.Value) evaluator.Value {
	t.Helper()
	val, err := call(t, reg, name, args...)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", name, err)
	}
	return val
}

// expectCode asserts err is a RuntimeError with the given code.
func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %s, got nil", code)
	}
	rtErr, ok := err.(*evaluator.RuntimeError)
	if !ok {
		t.Fatalf("expected *RuntimeError, got %T", err)
	}
	if rtErr.Code != code {
		t.Fatalf("expected %s, got %s (%s)", code, rtErr.Code, rtErr.Message)
	}
}

func TestDefaultsRegistered(t *testing.T) {
	reg, _ := newRegistry()
	for _, name := range []string{"print", "len", "insert", "remove", "append"} {
		if reg.Get(name) == nil {
			t.Errorf("builtin %s missing", name)
		}
	}
	if len(reg.All()) != 5 {
		t.Errorf("registry size: got %d, want 5", len(reg.All()))
	}
}

func TestPrint(t *testing.T) {
	reg, out := newRegistry()

	val := mustCall(t, reg, "print", evaluator.NewInt(1), intArray(2, 3))
	if _, ok := val.(evaluator.Unit); !ok {
		t.Errorf("print result: got %T, want Unit", val)
	}
	if out.String() != "1 [2, 3]\n" {
		t.Errorf("output: got %q", out.String())
	}

	out.Reset()
	mustCall(t, reg, "print")
	if out.String() != "\n" {
		t.Errorf("empty print: got %q", out.String())
	}
}

func TestLen(t *testing.T) {
	reg, _ := newRegistry()

	val := mustCall(t, reg, "len", intArray(1, 2, 3))
	if n := val.(evaluator.Int); n.Value != 3 {
		t.Errorf("got %d, want 3", n.Value)
	}

	_, err := call(t, reg, "len")
	expectCode(t, err, diagnostics.EArity)

	_, err = call(t, reg, "len", evaluator.NewInt(1))
	expectCode(t, err, diagnostics.EType)
}

func TestInsert(t *testing.T) {
	reg, _ := newRegistry()
	arr := intArray(1, 3)

	mustCall(t, reg, "insert", arr, evaluator.NewInt(1), evaluator.NewInt(2))
	if evaluator.Render(arr) != "[1, 2, 3]" {
		t.Errorf("after middle insert: %s", evaluator.Render(arr))
	}

	// Index len(arr) appends.
	mustCall(t, reg, "insert", arr, evaluator.NewInt(3), evaluator.NewInt(4))
	if evaluator.Render(arr) != "[1, 2, 3, 4]" {
		t.Errorf("after end insert: %s", evaluator.Render(arr))
	}

	mustCall(t, reg, "insert", arr, evaluator.NewInt(0), evaluator.NewInt(0))
	if evaluator.Render(arr) != "[0, 1, 2, 3, 4]" {
		t.Errorf("after front insert: %s", evaluator.Render(arr))
	}
}

func TestInsertErrors(t *testing.T) {
	reg, _ := newRegistry()
	arr := intArray(1)

	_, err := call(t, reg, "insert", arr, evaluator.NewInt(2), evaluator.NewInt(9))
	expectCode(t, err, diagnostics.EIndex)

	_, err = call(t, reg, "insert", arr, evaluator.NewInt(-1), evaluator.NewInt(9))
	expectCode(t, err, diagnostics.EIndex)

	_, err = call(t, reg, "insert", arr, evaluator.NewInt(0))
	expectCode(t, err, diagnostics.EArity)

	_, err = call(t, reg, "insert", evaluator.NewInt(1), evaluator.NewInt(0), evaluator.NewInt(0))
	expectCode(t, err, diagnostics.EType)
}

func TestRemove(t *testing.T) {
	reg, _ := newRegistry()
	arr := intArray(10, 20, 30)

	val := mustCall(t, reg, "remove", arr, evaluator.NewInt(1))
	if n := val.(evaluator.Int); n.Value != 20 {
		t.Errorf("removed: got %d, want 20", n.Value)
	}
	if evaluator.Render(arr) != "[10, 30]" {
		t.Errorf("after remove: %s", evaluator.Render(arr))
	}
}

func TestRemoveErrors(t *testing.T) {
	reg, _ := newRegistry()
	arr := intArray(1)

	// Unlike insert, index len(arr) is out of bounds for remove.
	_, err := call(t, reg, "remove", arr, evaluator.NewInt(1))
	expectCode(t, err, diagnostics.EIndex)

	empty := evaluator.NewArray(nil)
	_, err = call(t, reg, "remove", empty, evaluator.NewInt(0))
	expectCode(t, err, diagnostics.EIndex)

	_, err = call(t, reg, "remove", arr)
	expectCode(t, err, diagnostics.EArity)
}

func TestAppend(t *testing.T) {
	reg, _ := newRegistry()
	arr := evaluator.NewArray(nil)

	mustCall(t, reg, "append", arr, evaluator.NewInt(1))
	mustCall(t, reg, "append", arr, evaluator.NewInt(2))
	if evaluator.Render(arr) != "[1, 2]" {
		t.Errorf("after appends: %s", evaluator.Render(arr))
	}

	// Appending an array stores its handle, not a copy.
	inner := intArray(9)
	mustCall(t, reg, "append", arr, inner)
	inner.Items[0] = evaluator.NewInt(8)
	if evaluator.Render(arr) != "[1, 2, [8]]" {
		t.Errorf("after array append: %s", evaluator.Render(arr))
	}
}

func TestInsertArrayValue(t *testing.T) {
	reg, _ := newRegistry()
	arr := intArray(1)
	inner := intArray(4, 5)

	mustCall(t, reg, "insert", arr, evaluator.NewInt(0), inner)
	if evaluator.Render(arr) != "[[4, 5], 1]" {
		t.Errorf("after insert: %s", evaluator.Render(arr))
	}

	val := mustCall(t, reg, "remove", arr, evaluator.NewInt(0))
	if got, ok := val.(*evaluator.Array); !ok || got != inner {
		t.Error("remove did not return the inserted array handle")
	}
}

func TestInsertRemoveRoundTrip(t *testing.T) {
	reg, _ := newRegistry()
	arr := intArray(1, 2, 3)

	mustCall(t, reg, "insert", arr, evaluator.NewInt(1), evaluator.NewInt(99))
	val := mustCall(t, reg, "remove", arr, evaluator.NewInt(1))
	if n := val.(evaluator.Int); n.Value != 99 {
		t.Errorf("round trip removed %d, want 99", n.Value)
	}
	if evaluator.Render(arr) != "[1, 2, 3]" {
		t.Errorf("array changed after round trip: %s", evaluator.Render(arr))
	}
}
