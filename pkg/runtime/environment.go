package runtime

import (
	"fmt"
	"sort"
	"sync"
)

// Environment provides lexical scoping for RocketLang values. Background
// tasks read ancestor scopes concurrently, so access is lock-guarded.
type Environment struct {
	mu     sync.RWMutex
	values map[string]any
	consts map[string]struct{}
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]any),
		consts: make(map[string]struct{}),
		parent: parent,
	}
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Define inserts or shadows a binding in the current scope.
func (e *Environment) Define(name string, value any) {
	e.mu.Lock()
	e.values[name] = value
	e.mu.Unlock()
}

// DefineConst inserts a binding that rejects later reassignment. Declaring a
// constant over an existing constant in the same scope is an error too.
func (e *Environment) DefineConst(name string, value any) error {
	e.mu.Lock()
	if _, isConst := e.consts[name]; isConst {
		e.mu.Unlock()
		return fmt.Errorf("runtime: cannot redefine constant '%s'", name)
	}
	e.values[name] = value
	e.consts[name] = struct{}{}
	e.mu.Unlock()
	return nil
}

// Assign updates an existing binding in the first scope where it appears.
// Reassignment semantics, not redeclaration: a child scope never gains a
// binding from assigning to a name declared in a parent.
func (e *Environment) Assign(name string, value any) error {
	e.mu.Lock()
	if _, ok := e.values[name]; ok {
		if _, isConst := e.consts[name]; isConst {
			e.mu.Unlock()
			return fmt.Errorf("runtime: cannot reassign constant '%s'", name)
		}
		e.values[name] = value
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()
	if e.parent != nil {
		return e.parent.Assign(name, value)
	}
	return fmt.Errorf("runtime: undefined variable '%s'", name)
}

// Get retrieves a binding, searching outward through the scope chain.
func (e *Environment) Get(name string) (any, error) {
	e.mu.RLock()
	if v, ok := e.values[name]; ok {
		e.mu.RUnlock()
		return v, nil
	}
	e.mu.RUnlock()
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return nil, fmt.Errorf("runtime: undefined variable '%s'", name)
}

// Has reports whether the name is bound anywhere in the chain.
func (e *Environment) Has(name string) bool {
	_, err := e.Get(name)
	return err == nil
}

// Keys returns the local bindings in sorted order (determinism for tests).
func (e *Environment) Keys() []string {
	e.mu.RLock()
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	e.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Extend clones the current environment into a new child scope.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}
