package runtime

// ---------------------------------------------------------------------------
// Call / Construct dispatch
// ---------------------------------------------------------------------------

// Call invokes a function value with the given receiver and arguments.
// Dispatch is a single switch over the kind tag. The receiver is resolved
// per the callee's this mode before the body sees it; abrupt completions
// from the body pass through unchanged.
func (e *Engine) Call(callee Value, this Value, args []Value) (Value, error) {
	f := e.FunctionFromValue(callee)
	if f == nil {
		return Undefined, NewTypeError("value is not a function")
	}
	if err := e.enter(); err != nil {
		return Undefined, err
	}
	defer e.leave()

	e.tracer.traceCall(f, len(args))

	switch f.kind {
	case KindNative:
		return f.native(e, e.resolveThis(f, this), args, f.capture)
	case KindOrdinary:
		return e.callOrdinary(f, e.resolveThis(f, this), args)
	case KindGenerator:
		// Calling a generator function allocates the generator without
		// running the body; resumption is a later extension point.
		g := &GeneratorObject{calleeID: f.id, receiver: e.resolveThis(f, this)}
		return e.registry.RegisterObject(g), nil
	default:
		panic("Engine.Call: unknown function kind")
	}
}

// Construct invokes a function value as a constructor. Functions whose
// constructor kind is NonConstructor (and generator functions) fail with a
// TypeError-class signal before any body runs; the failure is never
// downgraded to a plain call.
func (e *Engine) Construct(callee Value, args []Value, newTarget Value) (Value, error) {
	f := e.FunctionFromValue(callee)
	if f == nil {
		return Undefined, NewTypeError("value is not a constructor")
	}
	if !f.IsConstructor() || f.kind == KindGenerator {
		return Undefined, notConstructable(f.name)
	}
	if err := e.enter(); err != nil {
		return Undefined, err
	}
	defer e.leave()

	if newTarget.IsUndefined() {
		newTarget = f.Value()
	}
	e.tracer.traceConstruct(f, len(args))

	if f.kind == KindNative {
		return e.constructNative(f, args)
	}
	return e.constructOrdinary(f, args, newTarget)
}

// ---------------------------------------------------------------------------
// Receiver resolution
// ---------------------------------------------------------------------------

// resolveThis applies the callee's this mode to the call-time receiver.
func (e *Engine) resolveThis(f *FunctionObject, callTime Value) Value {
	switch f.thisMode {
	case ThisLexical:
		// Resolved once at creation; the call-time receiver is ignored.
		return f.lexicalThis
	case ThisStrict:
		return callTime
	case ThisGlobal:
		if callTime.IsNullOrUndefined() {
			return e.globalThis
		}
		return callTime
	default:
		return callTime
	}
}

// ---------------------------------------------------------------------------
// Ordinary dispatch
// ---------------------------------------------------------------------------

// newFrame builds the invocation frame: a fresh scope node linked to the
// callee's captured environment.
func (e *Engine) newFrame(f *FunctionObject, args []Value) *Frame {
	return &Frame{
		engine:    e,
		callee:    f,
		actuals:   args,
		scope:     e.registry.NewEnvironment(f.scope),
		argsValue: Undefined,
		restValue: Undefined,
		newTarget: Undefined,
	}
}

func (e *Engine) callOrdinary(f *FunctionObject, this Value, args []Value) (Value, error) {
	fr := e.newFrame(f, args)
	fr.scope.this = this
	fr.scope.thisState = thisBound

	fr.bindParameters()
	if f.thisMode != ThisLexical {
		e.Materialize(fr)
	}

	result, err := f.body.Exec(e, fr)
	fr.teardown()
	if err != nil {
		return Undefined, err
	}
	return result, nil
}

func (e *Engine) constructOrdinary(f *FunctionObject, args []Value, newTarget Value) (Value, error) {
	fr := e.newFrame(f, args)
	fr.construct = true
	fr.newTarget = newTarget

	if f.ctorKind == BaseConstructor {
		// Base constructors create `this` before the body runs.
		fr.allocated = e.NewObject(f.prototype)
		fr.scope.this = fr.allocated
		fr.scope.thisState = thisBound
	} else {
		// Derived constructors leave `this` unbound until super().
		fr.derived = true
		fr.scope.thisState = thisUnbound
	}

	fr.bindParameters()
	e.Materialize(fr)

	result, err := f.body.Exec(e, fr)
	if err != nil {
		// Unwind: drop the partially constructed `this` and the frame's
		// own references, then pass the completion through unchanged.
		if fr.allocated.IsObject() {
			e.registry.UnregisterObject(fr.allocated.ObjectID())
		}
		fr.teardown()
		return Undefined, err
	}

	// An explicit object result overrides the constructed `this`.
	if result.IsObject() {
		fr.teardown()
		return result, nil
	}

	thisVal, thisErr := fr.This()
	fr.teardown()
	if thisErr != nil {
		// Derived constructor completed without ever running super().
		return Undefined, thisErr
	}
	return thisVal, nil
}

// ---------------------------------------------------------------------------
// Native construction
// ---------------------------------------------------------------------------

func (e *Engine) constructNative(f *FunctionObject, args []Value) (Value, error) {
	// The registration factory only admits Base native constructors, so
	// `this` is always allocated here.
	obj := e.NewObject(f.prototype)

	result, err := f.native(e, obj, args, f.capture)
	if err != nil {
		e.registry.UnregisterObject(obj.ObjectID())
		return Undefined, err
	}
	if result.IsObject() {
		if result != obj {
			e.registry.UnregisterObject(obj.ObjectID())
		}
		return result, nil
	}
	return obj, nil
}

// ---------------------------------------------------------------------------
// Depth accounting
// ---------------------------------------------------------------------------

func (e *Engine) enter() error {
	if e.depth >= e.limits.MaxCallDepth {
		return NewRangeError("maximum call depth exceeded (%d)", e.limits.MaxCallDepth)
	}
	e.depth++
	return nil
}

func (e *Engine) leave() {
	e.depth--
}
