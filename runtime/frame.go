package runtime

// ---------------------------------------------------------------------------
// Frame: per-invocation state
// ---------------------------------------------------------------------------

// Frame is the execution state of a single invocation of an ordinary
// function: the callee, the actual arguments, the fresh scope linked to the
// captured environment, and the materialized arguments object. The
// execution engine's body hook receives the frame and reads everything
// through it.
type Frame struct {
	engine  *Engine
	callee  *FunctionObject
	actuals []Value
	scope   *Environment

	argsValue   Value // boxed arguments object, Undefined for lexical frames
	argsID      uint32
	argsEscaped bool

	restValue   Value // boxed rest-parameter object, Undefined if none
	restID      uint32
	restEscaped bool

	construct bool
	derived   bool
	newTarget Value
	allocated Value // base-construct `this`, for unwind bookkeeping
}

// Engine returns the owning engine.
func (fr *Frame) Engine() *Engine { return fr.engine }

// Callee returns the invoked function.
func (fr *Frame) Callee() *FunctionObject { return fr.callee }

// Scope returns the frame's scope node.
func (fr *Frame) Scope() *Environment { return fr.scope }

// ArgCount returns the number of actual arguments.
func (fr *Frame) ArgCount() int { return len(fr.actuals) }

// Arg returns the i-th actual argument, or Undefined past the end.
func (fr *Frame) Arg(i int) Value {
	if i < 0 || i >= len(fr.actuals) {
		return Undefined
	}
	return fr.actuals[i]
}

// Args returns the actual argument list.
func (fr *Frame) Args() []Value { return fr.actuals }

// This resolves the frame's receiver. For a derived-constructor frame it
// fails with a ReferenceError-class signal until BindThis has run.
func (fr *Frame) This() (Value, error) {
	return fr.scope.This()
}

// BindThis binds the frame's receiver. This is the super() step of a
// derived constructor, modeled as a scope mutation.
func (fr *Frame) BindThis(v Value) error {
	return fr.scope.BindThis(v)
}

// IsConstruct reports whether the frame is a [[Construct]] invocation.
func (fr *Frame) IsConstruct() bool { return fr.construct }

// NewTarget returns the construct target, or Undefined for plain calls.
func (fr *Frame) NewTarget() Value { return fr.newTarget }

// Arguments returns the boxed arguments object, or Undefined for frames
// that have none (lexical-this functions).
func (fr *Frame) Arguments() Value { return fr.argsValue }

// RetainArguments marks the arguments object as escaped: frame teardown
// will leave it registered so references stored by the body stay valid.
func (fr *Frame) RetainArguments() Value {
	fr.argsEscaped = true
	return fr.argsValue
}

// Rest returns the boxed rest-parameter object, or Undefined if the callee
// declares no rest parameter.
func (fr *Frame) Rest() Value { return fr.restValue }

// RetainRest marks the rest-parameter object as escaped, like
// RetainArguments does for the arguments object.
func (fr *Frame) RetainRest() Value {
	fr.restEscaped = true
	return fr.restValue
}

// ---------------------------------------------------------------------------
// Parameter binding
// ---------------------------------------------------------------------------

// bindParameters installs the formal parameter bindings into the frame
// scope. Missing actuals default to Undefined here (default initializers
// are the body's job); a rest parameter collects the remaining actuals into
// an indexed object; destructuring patterns bind nothing, the body
// destructures from the actuals itself.
func (fr *Frame) bindParameters() {
	params := fr.callee.body.Params
	for i, p := range params {
		switch {
		case p.Pattern:
			// no named binding
		case p.Rest:
			fr.scope.Define(p.Name, fr.collectRest(i))
		default:
			fr.scope.Define(p.Name, fr.Arg(i))
		}
	}
}

// collectRest builds the indexed object holding actuals from position i on.
// The frame owns the registration until the value escapes, mirroring the
// arguments object.
func (fr *Frame) collectRest(i int) Value {
	rest := NewPlainObject(Undefined)
	n := 0
	for ; i < len(fr.actuals); i++ {
		rest.Set(indexKey(n), fr.actuals[i])
		n++
	}
	rest.Set("length", FromSmallInt(int64(n)))

	v := fr.engine.registry.RegisterObject(rest)
	fr.restValue = v
	fr.restID = v.ObjectID()
	return v
}

// teardown drops the frame's own holds: the scope reference and, unless
// they escaped, the arguments and rest object registrations. Runs on both
// the normal and the abrupt exit path, so a failed call leaves the
// registries exactly as it found them.
func (fr *Frame) teardown() {
	if fr.argsID != 0 && !fr.argsEscaped {
		fr.engine.registry.UnregisterObject(fr.argsID)
		fr.argsID = 0
	}
	if fr.restID != 0 && !fr.restEscaped {
		fr.engine.registry.UnregisterObject(fr.restID)
		fr.restID = 0
	}
	if fr.scope != nil {
		fr.scope.Release()
		fr.scope = nil
	}
}

// indexKey formats a non-negative index as a property key.
func indexKey(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}
