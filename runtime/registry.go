package runtime

import (
	"sort"
	"sync"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// Registry: engine-local bookkeeping for boxed values
// ---------------------------------------------------------------------------

// Registry manages every table an engine boxes IDs against: functions,
// heap objects, interned strings, capture cells, and scope nodes. The
// capture and environment tables double as live-reference accounting: the
// unwind path of a failed call must leave their counts exactly where they
// were before the call.
type Registry struct {
	// Function registry
	functions   map[uint32]*FunctionObject
	functionsMu sync.RWMutex
	functionID  atomic.Uint32

	// Object registry
	objects   map[uint32]Object
	objectsMu sync.RWMutex
	objectID  atomic.Uint32

	// Interned strings
	strings   map[uint32]string
	stringIDs map[string]uint32
	stringsMu sync.RWMutex
	stringID  atomic.Uint32

	// Capture cell registry (no ID counter; cells register by pointer)
	captures   map[*Capture]struct{}
	capturesMu sync.Mutex

	// Environment registry
	environments   map[*Environment]struct{}
	environmentsMu sync.Mutex
}

// NewRegistry creates a Registry with all tables initialized.
func NewRegistry() *Registry {
	r := &Registry{
		functions:    make(map[uint32]*FunctionObject),
		objects:      make(map[uint32]Object),
		strings:      make(map[uint32]string),
		stringIDs:    make(map[string]uint32),
		captures:     make(map[*Capture]struct{}),
		environments: make(map[*Environment]struct{}),
	}

	// Start IDs at 1 (0 could be confused with nil/uninitialized)
	r.functionID.Store(1)
	r.objectID.Store(1)
	r.stringID.Store(1)

	return r
}

// ---------------------------------------------------------------------------
// Function registry
// ---------------------------------------------------------------------------

// RegisterFunction adds a function to the registry, assigns its ID, and
// returns the boxed value.
func (r *Registry) RegisterFunction(f *FunctionObject) Value {
	id := r.functionID.Add(1) - 1

	r.functionsMu.Lock()
	f.id = id
	r.functions[id] = f
	r.functionsMu.Unlock()

	return FromFunctionID(id)
}

// GetFunction retrieves a function by its ID, or nil.
func (r *Registry) GetFunction(id uint32) *FunctionObject {
	r.functionsMu.RLock()
	defer r.functionsMu.RUnlock()
	return r.functions[id]
}

// UnregisterFunction removes a function from the registry.
func (r *Registry) UnregisterFunction(id uint32) {
	r.functionsMu.Lock()
	defer r.functionsMu.Unlock()
	delete(r.functions, id)
}

// FunctionCount returns the number of registered functions.
func (r *Registry) FunctionCount() int {
	r.functionsMu.RLock()
	defer r.functionsMu.RUnlock()
	return len(r.functions)
}

// Functions returns the registered functions in ascending ID order.
func (r *Registry) Functions() []*FunctionObject {
	r.functionsMu.RLock()
	defer r.functionsMu.RUnlock()

	out := make([]*FunctionObject, 0, len(r.functions))
	for _, f := range r.functions {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// ---------------------------------------------------------------------------
// Object registry
// ---------------------------------------------------------------------------

// RegisterObject adds an object to the registry and returns its boxed value.
func (r *Registry) RegisterObject(o Object) Value {
	id := r.objectID.Add(1) - 1

	r.objectsMu.Lock()
	r.objects[id] = o
	r.objectsMu.Unlock()

	return FromObjectID(id)
}

// GetObject retrieves an object by its ID, or nil.
func (r *Registry) GetObject(id uint32) Object {
	r.objectsMu.RLock()
	defer r.objectsMu.RUnlock()
	return r.objects[id]
}

// UnregisterObject removes an object from the registry.
func (r *Registry) UnregisterObject(id uint32) {
	r.objectsMu.Lock()
	defer r.objectsMu.Unlock()
	delete(r.objects, id)
}

// ObjectCount returns the number of registered objects.
func (r *Registry) ObjectCount() int {
	r.objectsMu.RLock()
	defer r.objectsMu.RUnlock()
	return len(r.objects)
}

// ---------------------------------------------------------------------------
// Interned strings
// ---------------------------------------------------------------------------

// InternString returns the boxed value for s, interning it on first use.
func (r *Registry) InternString(s string) Value {
	r.stringsMu.RLock()
	id, ok := r.stringIDs[s]
	r.stringsMu.RUnlock()
	if ok {
		return FromStringID(id)
	}

	r.stringsMu.Lock()
	defer r.stringsMu.Unlock()
	if id, ok := r.stringIDs[s]; ok {
		return FromStringID(id)
	}
	id = r.stringID.Add(1) - 1
	r.strings[id] = s
	r.stringIDs[s] = id
	return FromStringID(id)
}

// StringContent returns the Go string behind a string value.
// Returns "" if v is not a string or is unknown.
func (r *Registry) StringContent(v Value) string {
	if !v.IsString() {
		return ""
	}
	r.stringsMu.RLock()
	defer r.stringsMu.RUnlock()
	return r.strings[v.StringID()]
}

// StringCount returns the number of interned strings.
func (r *Registry) StringCount() int {
	r.stringsMu.RLock()
	defer r.stringsMu.RUnlock()
	return len(r.strings)
}

// ---------------------------------------------------------------------------
// Capture cell registry
// ---------------------------------------------------------------------------

// registerCapture tracks a live capture cell.
func (r *Registry) registerCapture(c *Capture) {
	r.capturesMu.Lock()
	r.captures[c] = struct{}{}
	r.capturesMu.Unlock()
}

// unregisterCapture removes a capture cell from tracking.
func (r *Registry) unregisterCapture(c *Capture) {
	r.capturesMu.Lock()
	delete(r.captures, c)
	r.capturesMu.Unlock()
}

// HasCapture checks whether a cell is live.
func (r *Registry) HasCapture(c *Capture) bool {
	r.capturesMu.Lock()
	defer r.capturesMu.Unlock()
	_, exists := r.captures[c]
	return exists
}

// CaptureCount returns the number of live capture cells.
func (r *Registry) CaptureCount() int {
	r.capturesMu.Lock()
	defer r.capturesMu.Unlock()
	return len(r.captures)
}

// ---------------------------------------------------------------------------
// Environment registry
// ---------------------------------------------------------------------------

// NewEnvironment creates a scope node under parent with one reference and
// registers it. The parent gains a reference held by the child.
func (r *Registry) NewEnvironment(parent *Environment) *Environment {
	env := &Environment{
		parent: parent,
		cells:  make(map[string]*Cell),
		reg:    r,
	}
	env.refs.Store(1)
	if parent != nil {
		parent.Retain()
	}

	r.environmentsMu.Lock()
	r.environments[env] = struct{}{}
	r.environmentsMu.Unlock()

	return env
}

// unregisterEnvironment removes a scope node from tracking.
func (r *Registry) unregisterEnvironment(env *Environment) {
	r.environmentsMu.Lock()
	delete(r.environments, env)
	r.environmentsMu.Unlock()
}

// EnvironmentCount returns the number of live scope nodes.
func (r *Registry) EnvironmentCount() int {
	r.environmentsMu.Lock()
	defer r.environmentsMu.Unlock()
	return len(r.environments)
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns counts of all registered entities. The unwind-safety tests
// compare snapshots of this map across a failed call.
func (r *Registry) Stats() map[string]int {
	return map[string]int{
		"functions":    r.FunctionCount(),
		"objects":      r.ObjectCount(),
		"strings":      r.StringCount(),
		"captures":     r.CaptureCount(),
		"environments": r.EnvironmentCount(),
	}
}
