// Package evaluator implements the Cara runtime evaluator.
package evaluator

import (
	"strconv"
	"strings"
)

// Value is the interface for all Cara runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	caravalue() // sealed marker
}

// Int represents a 64-bit signed integer. Integers have copy
// semantics: binding one to a new variable produces an independent
// value.
type Int struct {
	Value int64
}

func (Int) caravalue() {}

// Array represents a mutable sequence of values. Arrays have
// reference semantics: the *Array pointer is the handle, so two
// bindings to the same array observe each other's mutations. Elements
// may themselves be arrays; nested arrays are shared handles too.
type Array struct {
	Items []Value
}

func (*Array) caravalue() {}

// Unit is the result of expressions that produce nothing useful, such
// as a print call. It cannot be stored in a variable or an array.
type Unit struct{}

func (Unit) caravalue() {}

// NewInt creates an integer value.
func NewInt(n int64) Value {
	return Int{Value: n}
}

// NewArray creates a fresh array handle over the given items. The
// slice is owned by the array afterwards.
func NewArray(items []Value) *Array {
	return &Array{Items: items}
}

// Render formats a value the way print shows it: integers in decimal,
// arrays as a bracketed, comma-separated element list, rendered
// recursively.
func Render(v Value) string {
	switch val := v.(type) {
	case Int:
		return strconv.FormatInt(val.Value, 10)
	case *Array:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, item := range val.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(Render(item))
		}
		sb.WriteByte(']')
		return sb.String()
	case Unit:
		return "()"
	default:
		return "<unknown>"
	}
}

// TypeName returns the user-facing name of a value's type, used in
// type mismatch diagnostics.
func TypeName(v Value) string {
	switch v.(type) {
	case Int:
		return "int"
	case *Array:
		return "array"
	case Unit:
		return "unit"
	default:
		return "unknown"
	}
}

// Truthiness returns the boolean interpretation of a value. Zero is
// falsy, every other integer is truthy. Arrays and unit have no
// truthiness; callers must reject them before asking.
func Truthiness(v Value) bool {
	if n, ok := v.(Int); ok {
		return n.Value != 0
	}
	return false
}
