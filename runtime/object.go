package runtime

// ---------------------------------------------------------------------------
// Heap objects
// ---------------------------------------------------------------------------
//
// The full property/object model is an external collaborator: this
// subsystem only needs enough of an object to allocate `this` for base
// construction, hold the global this substitute, and back the arguments
// object. Property semantics beyond ordered own-data storage stay outside.

// ObjectKind identifies what is behind an object Value.
type ObjectKind int

const (
	ObjectKindPlain ObjectKind = iota
	ObjectKindArguments
	ObjectKindGenerator
)

// Object is anything storable behind an object-tagged Value.
type Object interface {
	ObjectKind() ObjectKind
}

// ---------------------------------------------------------------------------
// PlainObject
// ---------------------------------------------------------------------------

// PlainObject is a minimal ordered property map with a prototype reference.
type PlainObject struct {
	proto Value
	props map[string]Value
	keys  []string // insertion order
}

// NewPlainObject creates an empty object with the given prototype value.
func NewPlainObject(proto Value) *PlainObject {
	return &PlainObject{
		proto: proto,
		props: make(map[string]Value),
	}
}

func (o *PlainObject) ObjectKind() ObjectKind { return ObjectKindPlain }

// Proto returns the prototype reference.
func (o *PlainObject) Proto() Value { return o.proto }

// Get returns an own property. The second result is false if absent.
func (o *PlainObject) Get(name string) (Value, bool) {
	v, ok := o.props[name]
	return v, ok
}

// Set creates or overwrites an own property.
func (o *PlainObject) Set(name string, v Value) {
	if _, exists := o.props[name]; !exists {
		o.keys = append(o.keys, name)
	}
	o.props[name] = v
}

// Keys returns own property names in insertion order.
func (o *PlainObject) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the own property count.
func (o *PlainObject) Len() int {
	return len(o.props)
}

// ---------------------------------------------------------------------------
// GeneratorObject
// ---------------------------------------------------------------------------

// GeneratorObject is the inert result of calling a generator-kind function.
// It records the callee and receiver so a later resumption extension can
// pick them up; iteration itself is outside this subsystem.
type GeneratorObject struct {
	calleeID uint32
	receiver Value
}

func (g *GeneratorObject) ObjectKind() ObjectKind { return ObjectKindGenerator }

// Callee returns the function value the generator was created from.
func (g *GeneratorObject) Callee() Value {
	return FromFunctionID(g.calleeID)
}

// Receiver returns the `this` the generator was created with.
func (g *GeneratorObject) Receiver() Value {
	return g.receiver
}
