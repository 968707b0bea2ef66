package builtins

import (
	"fmt"
	"io"
	"strings"

	"github.com/caralang/cara/pkg/diagnostics"
	"github.com/caralang/cara/pkg/evaluator"
)

// RegisterDefaults adds all built-in functions. Output from print goes
// to out.
func RegisterDefaults(r *Registry, out io.Writer) {
	r.Register(evaluator.BuiltinFn{Name: "print", Execute: makePrint(out)})
	r.Register(evaluator.BuiltinFn{Name: "len", Execute: builtinLen})
	r.Register(evaluator.BuiltinFn{Name: "insert", Execute: builtinInsert})
	r.Register(evaluator.BuiltinFn{Name: "remove", Execute: builtinRemove})
	r.Register(evaluator.BuiltinFn{Name: "append", Execute: builtinAppend})
}

func arityError(name string, want string, got int) error {
	return &evaluator.RuntimeError{
		Code:    diagnostics.EArity,
		Message: fmt.Sprintf("%s expects %s argument(s), got %d", name, want, got),
	}
}

func typeError(name, what, want string, got evaluator.Value) error {
	return &evaluator.RuntimeError{
		Code:    diagnostics.EType,
		Message: fmt.Sprintf("%s: %s must be %s, got %s", name, what, want, evaluator.TypeName(got)),
	}
}

// makePrint builds the print built-in over the given writer. Arguments
// are rendered and joined with single spaces; a newline is appended.
// With no arguments it prints a bare newline.
func makePrint(out io.Writer) func(args []evaluator.Value) (evaluator.Value, error) {
	return func(args []evaluator.Value) (evaluator.Value, error) {
		var sb strings.Builder
		for i, arg := range args {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(evaluator.Render(arg))
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(out, sb.String()); err != nil {
			return nil, &evaluator.RuntimeError{
				Code:    diagnostics.EIO,
				Message: fmt.Sprintf("print: %v", err),
			}
		}
		return evaluator.Unit{}, nil
	}
}

func builtinLen(args []evaluator.Value) (evaluator.Value, error) {
	if len(args) != 1 {
		return nil, arityError("len", "1", len(args))
	}
	arr, ok := args[0].(*evaluator.Array)
	if !ok {
		return nil, typeError("len", "argument", "array", args[0])
	}
	return evaluator.NewInt(int64(len(arr.Items))), nil
}

// builtinInsert inserts a value before the given index. Index len(arr)
// appends; anything past that is out of bounds.
func builtinInsert(args []evaluator.Value) (evaluator.Value, error) {
	if len(args) != 3 {
		return nil, arityError("insert", "3", len(args))
	}
	arr, ok := args[0].(*evaluator.Array)
	if !ok {
		return nil, typeError("insert", "first argument", "array", args[0])
	}
	idx, ok := args[1].(evaluator.Int)
	if !ok {
		return nil, typeError("insert", "index", "int", args[1])
	}
	val := args[2]

	if idx.Value < 0 || idx.Value > int64(len(arr.Items)) {
		return nil, &evaluator.RuntimeError{
			Code:    diagnostics.EIndex,
			Message: fmt.Sprintf("insert index %d out of bounds for array of length %d", idx.Value, len(arr.Items)),
		}
	}

	i := int(idx.Value)
	arr.Items = append(arr.Items, nil)
	copy(arr.Items[i+1:], arr.Items[i:])
	arr.Items[i] = val
	return evaluator.Unit{}, nil
}

// builtinRemove removes the element at the given index and returns it.
func builtinRemove(args []evaluator.Value) (evaluator.Value, error) {
	if len(args) != 2 {
		return nil, arityError("remove", "2", len(args))
	}
	arr, ok := args[0].(*evaluator.Array)
	if !ok {
		return nil, typeError("remove", "first argument", "array", args[0])
	}
	idx, ok := args[1].(evaluator.Int)
	if !ok {
		return nil, typeError("remove", "index", "int", args[1])
	}

	if idx.Value < 0 || idx.Value >= int64(len(arr.Items)) {
		return nil, &evaluator.RuntimeError{
			Code:    diagnostics.EIndex,
			Message: fmt.Sprintf("remove index %d out of bounds for array of length %d", idx.Value, len(arr.Items)),
		}
	}

	i := int(idx.Value)
	removed := arr.Items[i]
	arr.Items = append(arr.Items[:i], arr.Items[i+1:]...)
	return removed, nil
}

func builtinAppend(args []evaluator.Value) (evaluator.Value, error) {
	if len(args) != 2 {
		return nil, arityError("append", "2", len(args))
	}
	arr, ok := args[0].(*evaluator.Array)
	if !ok {
		return nil, typeError("append", "first argument", "array", args[0])
	}
	arr.Items = append(arr.Items, args[1])
	return evaluator.Unit{}, nil
}
