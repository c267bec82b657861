package runtime

// ---------------------------------------------------------------------------
// FunctionObject: the single callable entity type
// ---------------------------------------------------------------------------

// Kind is the variant tag of a function value. The set is closed; dispatch
// is an explicit switch, never an interface hierarchy.
type Kind int

const (
	KindNative Kind = iota
	KindOrdinary
	KindGenerator
)

func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindOrdinary:
		return "ordinary"
	case KindGenerator:
		return "generator"
	default:
		return "unknown"
	}
}

// ConstructorKind governs whether and how a function may be invoked with
// `new`. It is set once at creation from the syntactic or registration
// context and never mutated.
type ConstructorKind int

const (
	// NonConstructor rejects `new` outright (arrow-like functions, plain
	// native callbacks, accessors).
	NonConstructor ConstructorKind = iota
	// BaseConstructor allocates `this` itself before the body runs.
	BaseConstructor
	// DerivedConstructor leaves `this` unbound until super() runs.
	DerivedConstructor
)

func (k ConstructorKind) String() string {
	switch k {
	case NonConstructor:
		return "non-constructor"
	case BaseConstructor:
		return "base"
	case DerivedConstructor:
		return "derived"
	default:
		return "unknown"
	}
}

// ThisMode governs how the receiver is resolved per call.
type ThisMode int

const (
	// ThisLexical: `this` was resolved once at creation from the defining
	// scope; the call-time receiver is ignored.
	ThisLexical ThisMode = iota
	// ThisStrict: the call-time receiver passes through verbatim,
	// undefined and null included.
	ThisStrict
	// ThisGlobal: undefined or null receivers are replaced with the
	// engine's global this substitute.
	ThisGlobal
)

func (m ThisMode) String() string {
	switch m {
	case ThisLexical:
		return "lexical"
	case ThisStrict:
		return "strict"
	case ThisGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// NativeFunc is the fixed calling convention every host function satisfies:
// engine context, resolved receiver, actual arguments, and the capture cell
// attached at registration. The cell is how a plain function pointer
// carries per-registration state.
type NativeFunc func(e *Engine, this Value, args []Value, cap *Capture) (Value, error)

// ---------------------------------------------------------------------------
// Compiled bodies (supplied by the execution engine)
// ---------------------------------------------------------------------------

// Param describes one declared formal parameter of an ordinary function.
type Param struct {
	Name       string
	HasDefault bool // has a default initializer
	Rest       bool // ...rest parameter
	Pattern    bool // destructuring pattern (carries no single name)
}

// Simple reports whether the parameter is a plain named binding. Only
// functions whose formals are all simple get a mapped arguments object.
func (p Param) Simple() bool {
	return !p.HasDefault && !p.Rest && !p.Pattern
}

// ExecFunc runs a compiled body against an invocation frame. The execution
// engine supplies it; this subsystem only dispatches to it and passes its
// outcome through unchanged.
type ExecFunc func(e *Engine, fr *Frame) (Value, error)

// Body is the compiled body of an ordinary function: the formal parameter
// shape, the execution hook, and the metadata the function table exposes.
type Body struct {
	Params []Param
	Source string
	Strict bool
	Exec   ExecFunc
}

// SimpleParameters reports whether every formal is a simple named binding
// (no defaults, no rest, no patterns).
func (b *Body) SimpleParameters() bool {
	for _, p := range b.Params {
		if !p.Simple() {
			return false
		}
	}
	return true
}

// DeclaredLength returns the parameter count before the first default or
// rest parameter, which is what the `length` property reports.
func (b *Body) DeclaredLength() int {
	n := 0
	for _, p := range b.Params {
		if p.HasDefault || p.Rest {
			break
		}
		n++
	}
	return n
}

// ---------------------------------------------------------------------------
// FunctionObject
// ---------------------------------------------------------------------------

// FunctionObject is the backing record of a function Value. One object type
// covers all three variants; the kind tag selects which body fields are
// live. The rest of the engine holds functions as NaN-boxed registry IDs
// and never sees the variant split.
type FunctionObject struct {
	id       uint32
	kind     Kind
	name     string
	length   int
	ctorKind ConstructorKind
	thisMode ThisMode

	// Native variant
	native  NativeFunc
	capture *Capture

	// Ordinary / generator variant
	body  *Body
	scope *Environment // captured defining scope, shared with siblings

	// Resolved once at creation for ThisLexical functions.
	lexicalThis Value

	// The object installed as the `prototype` property source for base
	// construction. Undefined for non-constructors.
	prototype Value
}

// ID returns the function's registry ID.
func (f *FunctionObject) ID() uint32 { return f.id }

// Kind returns the variant tag.
func (f *FunctionObject) Kind() Kind { return f.kind }

// Name returns the display name used for stack traces and toString.
func (f *FunctionObject) Name() string { return f.name }

// SetName sets the display name. Names are definition-time data: renaming
// after the function has been handed out is a host defect.
func (f *FunctionObject) SetName(name string) {
	f.name = name
}

// Length returns the declared parameter count, fixed at creation.
func (f *FunctionObject) Length() int { return f.length }

// ConstructorKind returns the constructor classification.
func (f *FunctionObject) ConstructorKind() ConstructorKind { return f.ctorKind }

// ThisMode returns the receiver-resolution classification.
func (f *FunctionObject) ThisMode() ThisMode { return f.thisMode }

// IsConstructor reports whether `new` is accepted at all.
func (f *FunctionObject) IsConstructor() bool {
	return f.ctorKind != NonConstructor
}

// Capture returns the attached capture cell (nil for ordinary functions).
func (f *FunctionObject) Capture() *Capture { return f.capture }

// Body returns the compiled body (nil for natives).
func (f *FunctionObject) Body() *Body { return f.body }

// Scope returns the captured defining environment (nil for natives).
func (f *FunctionObject) Scope() *Environment { return f.scope }

// Prototype returns the prototype-source object value, or Undefined.
func (f *FunctionObject) Prototype() Value { return f.prototype }

// LexicalThis returns the receiver captured at creation. Meaningful only
// when ThisMode is ThisLexical.
func (f *FunctionObject) LexicalThis() Value { return f.lexicalThis }

// Value returns the NaN-boxed function value for this object.
func (f *FunctionObject) Value() Value {
	return FromFunctionID(f.id)
}
