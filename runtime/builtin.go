package runtime

// ---------------------------------------------------------------------------
// Registration factories
// ---------------------------------------------------------------------------

// MakeNativeFunction wraps a native function pointer and its metadata into a
// function value ready to be installed as an object property. The initial
// capture state (if any) is wrapped in a fresh cell owned by the returned
// function; clones of the function share that one cell.
//
// Native functions are NonConstructor or BaseConstructor only; a derived
// native constructor is a registration defect and panics.
func (e *Engine) MakeNativeFunction(name string, length int, ctor ConstructorKind, mode ThisMode, fn NativeFunc, state interface{}) Value {
	var cell *Capture
	if state != nil {
		cell = NewCapture(state)
	}
	return e.makeNative(name, length, ctor, mode, fn, cell)
}

// MakeClosureFunction installs a native/capture pair produced by Closure.
func (e *Engine) MakeClosureFunction(name string, length int, ctor ConstructorKind, mode ThisMode, fn NativeFunc, cell *Capture) Value {
	return e.makeNative(name, length, ctor, mode, fn, cell)
}

func (e *Engine) makeNative(name string, length int, ctor ConstructorKind, mode ThisMode, fn NativeFunc, cell *Capture) Value {
	if fn == nil {
		panic("MakeNativeFunction: nil function pointer")
	}
	if ctor == DerivedConstructor {
		panic("MakeNativeFunction: native functions cannot be derived constructors")
	}

	f := &FunctionObject{
		kind:        KindNative,
		name:        name,
		length:      length,
		ctorKind:    ctor,
		thisMode:    mode,
		native:      fn,
		capture:     cell,
		lexicalThis: Undefined,
		prototype:   Undefined,
	}
	if ctor != NonConstructor {
		f.prototype = e.NewObject(Undefined)
	}
	if cell != nil {
		e.registry.registerCapture(cell)
	}
	return e.registry.RegisterFunction(f)
}

// NewOrdinaryFunction creates a source-defined function closing over scope.
// For ThisLexical functions the receiver is resolved here, once, from the
// defining scope, and never again.
func (e *Engine) NewOrdinaryFunction(name string, body *Body, scope *Environment, ctor ConstructorKind, mode ThisMode) Value {
	return e.newOrdinary(KindOrdinary, name, body, scope, ctor, mode)
}

// NewGeneratorFunction creates a generator-kind function. Generator
// functions are never constructors.
func (e *Engine) NewGeneratorFunction(name string, body *Body, scope *Environment) Value {
	return e.newOrdinary(KindGenerator, name, body, scope, NonConstructor, ThisStrict)
}

func (e *Engine) newOrdinary(kind Kind, name string, body *Body, scope *Environment, ctor ConstructorKind, mode ThisMode) Value {
	if body == nil || body.Exec == nil {
		panic("NewOrdinaryFunction: nil body")
	}
	if mode == ThisLexical && ctor != NonConstructor {
		// Arrow-like functions have no own `this` to construct with.
		panic("NewOrdinaryFunction: lexical-this functions cannot be constructors")
	}
	if scope == nil {
		scope = e.globalEnv
	}

	f := &FunctionObject{
		kind:        kind,
		name:        name,
		length:      body.DeclaredLength(),
		ctorKind:    ctor,
		thisMode:    mode,
		body:        body,
		scope:       scope.Retain(),
		lexicalThis: Undefined,
		prototype:   Undefined,
	}
	if mode == ThisLexical {
		// Arrow-like: whatever `this` the defining scope sees right now
		// is the receiver for every future call.
		if this, err := scope.This(); err == nil {
			f.lexicalThis = this
		}
	}
	if ctor != NonConstructor {
		f.prototype = e.NewObject(Undefined)
	}
	return e.registry.RegisterFunction(f)
}

// ---------------------------------------------------------------------------
// Arity-specialized native wrappers
// ---------------------------------------------------------------------------
//
// Convenience adapters so hosts can register small builtins without slicing
// the argument list themselves. Missing actuals arrive as Undefined; excess
// actuals are dropped.

// Native0Func is a native callback taking no arguments.
type Native0Func func(e *Engine, this Value, cap *Capture) (Value, error)

// Native1Func is a native callback taking one argument.
type Native1Func func(e *Engine, this Value, arg1 Value, cap *Capture) (Value, error)

// Native2Func is a native callback taking two arguments.
type Native2Func func(e *Engine, this Value, arg1, arg2 Value, cap *Capture) (Value, error)

// Native3Func is a native callback taking three arguments.
type Native3Func func(e *Engine, this Value, arg1, arg2, arg3 Value, cap *Capture) (Value, error)

func argOr(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}

// Native0 adapts a zero-argument callback to the native signature.
func Native0(fn Native0Func) NativeFunc {
	return func(e *Engine, this Value, args []Value, cap *Capture) (Value, error) {
		return fn(e, this, cap)
	}
}

// Native1 adapts a one-argument callback to the native signature.
func Native1(fn Native1Func) NativeFunc {
	return func(e *Engine, this Value, args []Value, cap *Capture) (Value, error) {
		return fn(e, this, argOr(args, 0), cap)
	}
}

// Native2 adapts a two-argument callback to the native signature.
func Native2(fn Native2Func) NativeFunc {
	return func(e *Engine, this Value, args []Value, cap *Capture) (Value, error) {
		return fn(e, this, argOr(args, 0), argOr(args, 1), cap)
	}
}

// Native3 adapts a three-argument callback to the native signature.
func Native3(fn Native3Func) NativeFunc {
	return func(e *Engine, this Value, args []Value, cap *Capture) (Value, error) {
		return fn(e, this, argOr(args, 0), argOr(args, 1), argOr(args, 2), cap)
	}
}
