package runtime

import "sync/atomic"

// ---------------------------------------------------------------------------
// Environment: shared lexical scope nodes
// ---------------------------------------------------------------------------

// thisState tracks the frame's `this` binding for function environments.
type thisState int

const (
	// thisNone: this environment carries no `this` binding of its own;
	// reads delegate to the parent chain (block scopes, arrow frames).
	thisNone thisState = iota
	// thisUnbound: a derived-constructor frame before super() has run.
	thisUnbound
	// thisBound: `this` is resolved and readable.
	thisBound
)

// Environment is one node of the scope chain. Bindings are cells, so every
// closure over the same node observes writes made through any sibling.
// Nodes are reference counted: a node lives as long as its longest holder
// (the defining frame, or any closure that captured it), and holding a
// child keeps the whole parent chain alive.
type Environment struct {
	parent *Environment
	cells  map[string]*Cell
	refs   atomic.Int32
	reg    *Registry

	this      Value
	thisState thisState
}

// Parent returns the enclosing scope node, or nil at the root.
func (env *Environment) Parent() *Environment {
	return env.parent
}

// Define creates (or overwrites) a binding in this node and returns its cell.
func (env *Environment) Define(name string, v Value) *Cell {
	cell := NewCell(v)
	env.cells[name] = cell
	return cell
}

// DefineCell installs an existing cell under a name. Sibling closures that
// share the cell observe each other's writes regardless of which scope node
// the name resolves through.
func (env *Environment) DefineCell(name string, cell *Cell) {
	env.cells[name] = cell
}

// Lookup resolves a name through the scope chain and returns its cell.
func (env *Environment) Lookup(name string) (*Cell, bool) {
	for e := env; e != nil; e = e.parent {
		if cell, ok := e.cells[name]; ok {
			return cell, true
		}
	}
	return nil, false
}

// Get reads a binding through the scope chain.
// The second result is false if the name is not bound.
func (env *Environment) Get(name string) (Value, bool) {
	cell, ok := env.Lookup(name)
	if !ok {
		return Undefined, false
	}
	return cell.Get(), true
}

// Set writes a binding through the scope chain.
// Returns false if the name is not bound anywhere.
func (env *Environment) Set(name string, v Value) bool {
	cell, ok := env.Lookup(name)
	if !ok {
		return false
	}
	cell.Set(v)
	return true
}

// ---------------------------------------------------------------------------
// this binding
// ---------------------------------------------------------------------------

// BindThis resolves the frame's `this`. For derived-constructor frames this
// is the side effect of the super() step. Binding twice is a
// ReferenceError, matching `super()` called twice.
func (env *Environment) BindThis(v Value) error {
	if env.thisState == thisBound {
		return NewReferenceError("'this' is already bound")
	}
	env.this = v
	env.thisState = thisBound
	return nil
}

// This reads the frame's `this` binding, delegating through the chain for
// nodes that carry none. Reading an unbound derived-constructor `this` is
// the UnboundThis failure.
func (env *Environment) This() (Value, error) {
	for e := env; e != nil; e = e.parent {
		switch e.thisState {
		case thisBound:
			return e.this, nil
		case thisUnbound:
			return Undefined, unboundThis()
		}
	}
	return Undefined, nil
}

// HasBoundThis reports whether `this` is readable without delegation.
func (env *Environment) HasBoundThis() bool {
	return env.thisState == thisBound
}

// ---------------------------------------------------------------------------
// Reference counting
// ---------------------------------------------------------------------------

// Retain adds a reference to the node (and transitively its parents, which
// it already holds).
func (env *Environment) Retain() *Environment {
	env.refs.Add(1)
	return env
}

// Release drops a reference. When the last reference is gone the node is
// removed from the registry and its hold on the parent chain is released.
func (env *Environment) Release() {
	n := env.refs.Add(-1)
	if n < 0 {
		panic("Environment.Release: over-released")
	}
	if n == 0 {
		if env.reg != nil {
			env.reg.unregisterEnvironment(env)
		}
		if env.parent != nil {
			env.parent.Release()
		}
	}
}

// Refs returns the current reference count.
func (env *Environment) Refs() int32 {
	return env.refs.Load()
}
