package runtime

// ---------------------------------------------------------------------------
// ArgumentsObject: the per-call array-like argument record
// ---------------------------------------------------------------------------

// ArgumentsObject maps ordinal indices to the actual argument values of one
// invocation. Excess actuals are kept; missing ones are absent (the frame's
// parameter binding defaults them, this object does not).
//
// In a sloppy-mode call of a function whose formals are all simple, indices
// that correspond to a named parameter alias the parameter's binding:
// writes through either name are observable through the other. The alias is
// a lookup relation into the frame scope, never a second owner, and the
// callee reference is a registry ID, so an escaping arguments object cannot
// form a retain cycle.
type ArgumentsObject struct {
	elements []Value
	calleeID uint32
	mapped   map[int]string // index → formal binding name
	scope    *Environment   // non-owning: alias lookups only
}

func (a *ArgumentsObject) ObjectKind() ObjectKind { return ObjectKindArguments }

// Length returns the number of actual arguments.
func (a *ArgumentsObject) Length() int {
	return len(a.elements)
}

// Callee returns the invoked function value.
func (a *ArgumentsObject) Callee() Value {
	return FromFunctionID(a.calleeID)
}

// IsMapped reports whether index i aliases a named parameter binding.
func (a *ArgumentsObject) IsMapped(i int) bool {
	_, ok := a.mapped[i]
	return ok
}

// Get reads index i. Mapped indices read through the parameter binding;
// the second result is false past the end.
func (a *ArgumentsObject) Get(i int) (Value, bool) {
	if i < 0 || i >= len(a.elements) {
		return Undefined, false
	}
	if name, ok := a.mapped[i]; ok {
		if cell, ok := a.scope.Lookup(name); ok {
			return cell.Get(), true
		}
	}
	return a.elements[i], true
}

// Set writes index i. Mapped indices write through the parameter binding.
// Returns false past the end.
func (a *ArgumentsObject) Set(i int, v Value) bool {
	if i < 0 || i >= len(a.elements) {
		return false
	}
	if name, ok := a.mapped[i]; ok {
		if cell, ok := a.scope.Lookup(name); ok {
			cell.Set(v)
			return true
		}
	}
	a.elements[i] = v
	return true
}

// ---------------------------------------------------------------------------
// Materializer
// ---------------------------------------------------------------------------

// Materialize builds the arguments object for a frame, registers it, and
// installs the `arguments` binding in the frame scope. Called once at call
// entry for every non-lexical ordinary invocation.
//
// The mapping rule follows the source semantics: strict bodies (marked, or
// via the engine-wide strict default) and lexical-this functions never get
// the alias relation, and neither does any function with a default, rest,
// or pattern parameter. With duplicate
// parameter names only the last occurrence is the live binding, so only its
// index aliases.
func (e *Engine) Materialize(fr *Frame) Value {
	f := fr.callee
	a := &ArgumentsObject{
		elements: make([]Value, len(fr.actuals)),
		calleeID: f.id,
	}
	copy(a.elements, fr.actuals)

	if !e.strictBody(f) && f.thisMode != ThisLexical && f.body.SimpleParameters() {
		// Last duplicate wins: map each name to its final index among
		// the positions that have an actual to alias.
		last := make(map[string]int)
		for i, p := range f.body.Params {
			if i >= len(fr.actuals) {
				break
			}
			last[p.Name] = i
		}
		if len(last) > 0 {
			a.mapped = make(map[int]string, len(last))
			for name, i := range last {
				a.mapped[i] = name
			}
			a.scope = fr.scope
		}
	}

	v := e.registry.RegisterObject(a)
	fr.argsValue = v
	fr.argsID = v.ObjectID()
	fr.scope.Define("arguments", v)
	return v
}
