package evaluator

// binding pairs a value with its mutability.
type binding struct {
	value    Value
	constant bool
}

// Env is a scoped environment for variable bindings.
// It supports parent-chained lookup for lexical scoping.
type Env struct {
	bindings map[string]binding
	parent   *Env
}

// NewEnv creates a new environment with an optional parent scope.
func NewEnv(parent *Env) *Env {
	return &Env{
		bindings: make(map[string]binding),
		parent:   parent,
	}
}

// Child creates a new child scope whose parent is this environment.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// Get looks up a variable by name, traversing parent scopes.
func (e *Env) Get(name string) (Value, bool) {
	if b, ok := e.bindings[name]; ok {
		return b.value, true
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return nil, false
}

// Declare binds a new variable in this scope. Redeclaring a name in
// the same scope replaces the old binding; shadowing an outer scope is
// allowed.
func (e *Env) Declare(name string, val Value, constant bool) {
	e.bindings[name] = binding{value: val, constant: constant}
}

// AssignStatus reports the outcome of an Assign.
type AssignStatus int

const (
	AssignOK AssignStatus = iota
	AssignUndeclared
	AssignConst
)

// Assign rebinds an existing variable, searching parent scopes. The
// variable must already be declared and must not be a constant.
func (e *Env) Assign(name string, val Value) AssignStatus {
	for scope := e; scope != nil; scope = scope.parent {
		if b, ok := scope.bindings[name]; ok {
			if b.constant {
				return AssignConst
			}
			scope.bindings[name] = binding{value: val}
			return AssignOK
		}
	}
	return AssignUndeclared
}

// Has checks whether a variable is defined in this scope or any parent.
func (e *Env) Has(name string) bool {
	if _, ok := e.bindings[name]; ok {
		return true
	}
	if e.parent != nil {
		return e.parent.Has(name)
	}
	return false
}
