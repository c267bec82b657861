package runtime

// ---------------------------------------------------------------------------
// Engine: the subsystem's host handle
// ---------------------------------------------------------------------------

// Limits are the engine's resource limits, typically loaded from
// beatrice.toml by the host.
type Limits struct {
	// MaxCallDepth bounds Call/Construct nesting. Exceeding it fails the
	// call with a RangeError-class signal.
	MaxCallDepth int
}

// DefaultLimits returns the limits used when the host supplies none.
func DefaultLimits() Limits {
	return Limits{MaxCallDepth: 512}
}

// Engine owns the registries, the global this substitute, and the call
// dispatch state for one isolate. Execution is single-threaded and
// cooperative: one call stack runs at a time, and dispatch never suspends.
type Engine struct {
	registry *Registry
	limits   Limits
	tracer   Tracer

	globalThis Value
	globalEnv  *Environment

	// strictDefault treats every compiled body as strict even when its
	// Strict flag is unset. Hosts load it from configuration.
	strictDefault bool

	depth int // current Call/Construct nesting
}

// NewEngine creates and bootstraps an engine with default limits.
func NewEngine() *Engine {
	return NewEngineWithLimits(DefaultLimits())
}

// NewEngineWithLimits creates and bootstraps an engine.
func NewEngineWithLimits(limits Limits) *Engine {
	if limits.MaxCallDepth <= 0 {
		limits.MaxCallDepth = DefaultLimits().MaxCallDepth
	}
	e := &Engine{
		registry: NewRegistry(),
		limits:   limits,
	}

	// The global object doubles as the Global this-mode substitute.
	e.globalThis = e.registry.RegisterObject(NewPlainObject(Undefined))

	// Root scope: `this` is the global object.
	e.globalEnv = e.registry.NewEnvironment(nil)
	e.globalEnv.this = e.globalThis
	e.globalEnv.thisState = thisBound

	return e
}

// Registry returns the engine's registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Limits returns the engine's resource limits.
func (e *Engine) Limits() Limits {
	return e.limits
}

// GlobalThis returns the global this substitute used by Global this-mode
// resolution when the call-time receiver is null or undefined.
func (e *Engine) GlobalThis() Value {
	return e.globalThis
}

// GlobalEnv returns the root scope node.
func (e *Engine) GlobalEnv() *Environment {
	return e.globalEnv
}

// Depth returns the current Call/Construct nesting depth.
func (e *Engine) Depth() int {
	return e.depth
}

// SetStrictDefault enables or disables engine-wide strict mode. When set,
// bodies compiled without an explicit strict marking behave as strict,
// which among other things disables arguments-to-parameter aliasing.
func (e *Engine) SetStrictDefault(strict bool) {
	e.strictDefault = strict
}

// StrictDefault reports whether engine-wide strict mode is enabled.
func (e *Engine) StrictDefault() bool {
	return e.strictDefault
}

// strictBody reports whether f's body runs strict, either by its own
// marking or by the engine-wide default.
func (e *Engine) strictBody(f *FunctionObject) bool {
	return f.body.Strict || e.strictDefault
}

// ---------------------------------------------------------------------------
// Value helpers
// ---------------------------------------------------------------------------

// NewObject allocates an empty plain object with the given prototype and
// returns its boxed value.
func (e *Engine) NewObject(proto Value) Value {
	return e.registry.RegisterObject(NewPlainObject(proto))
}

// FunctionFromValue resolves a function value to its backing object.
// Returns nil if v is not a live function.
func (e *Engine) FunctionFromValue(v Value) *FunctionObject {
	if !v.IsFunction() {
		return nil
	}
	return e.registry.GetFunction(v.FunctionID())
}

// ObjectFromValue resolves an object value to its backing object.
// Returns nil if v is not a live object.
func (e *Engine) ObjectFromValue(v Value) Object {
	if !v.IsObject() {
		return nil
	}
	return e.registry.GetObject(v.ObjectID())
}

// PlainObjectFromValue resolves an object value to a *PlainObject.
// Returns nil if v is not a live plain object.
func (e *Engine) PlainObjectFromValue(v Value) *PlainObject {
	o, _ := e.ObjectFromValue(v).(*PlainObject)
	return o
}

// ArgumentsFromValue resolves an object value to an *ArgumentsObject.
// Returns nil if v is not a live arguments object.
func (e *Engine) ArgumentsFromValue(v Value) *ArgumentsObject {
	o, _ := e.ObjectFromValue(v).(*ArgumentsObject)
	return o
}

// Str interns a Go string and returns its boxed value.
func (e *Engine) Str(s string) Value {
	return e.registry.InternString(s)
}

// StringContent returns the Go string behind a string value.
func (e *Engine) StringContent(v Value) string {
	return e.registry.StringContent(v)
}

// ---------------------------------------------------------------------------
// Function lifecycle
// ---------------------------------------------------------------------------

// CloneFunction creates a new function value that shares the original's
// body, capture cell, and captured scope. Mutating state through one
// clone's capture is visible through the other.
func (e *Engine) CloneFunction(f *FunctionObject) Value {
	clone := &FunctionObject{
		kind:        f.kind,
		name:        f.name,
		length:      f.length,
		ctorKind:    f.ctorKind,
		thisMode:    f.thisMode,
		native:      f.native,
		body:        f.body,
		lexicalThis: f.lexicalThis,
		prototype:   f.prototype,
	}
	if f.capture != nil {
		clone.capture = f.capture.Retain()
	}
	if f.scope != nil {
		clone.scope = f.scope.Retain()
	}
	return e.registry.RegisterFunction(clone)
}

// ReleaseFunction removes a function from the registry and drops its holds
// on the capture cell and captured scope. The cell dies with its last
// holding function value.
func (e *Engine) ReleaseFunction(f *FunctionObject) {
	e.registry.UnregisterFunction(f.id)
	if f.capture != nil {
		if f.capture.Release() {
			e.registry.unregisterCapture(f.capture)
		}
		f.capture = nil
	}
	if f.scope != nil {
		f.scope.Release()
		f.scope = nil
	}
}
