// Package builtins provides the Cara built-in function registry.
package builtins

import (
	"github.com/caralang/cara/pkg/evaluator"
)

// Registry holds registered built-in functions.
type Registry struct {
	fns map[string]*evaluator.BuiltinFn
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns: make(map[string]*evaluator.BuiltinFn),
	}
}

// Register adds a built-in function to the registry.
func (r *Registry) Register(fn evaluator.BuiltinFn) {
	r.fns[fn.Name] = &fn
}

// Get retrieves a built-in function by name.
func (r *Registry) Get(name string) *evaluator.BuiltinFn {
	return r.fns[name]
}

// All returns all registered built-in functions.
func (r *Registry) All() map[string]*evaluator.BuiltinFn {
	return r.fns
}
