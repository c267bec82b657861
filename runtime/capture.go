package runtime

import "sync/atomic"

// ---------------------------------------------------------------------------
// Capture: type-erased shared state for native functions
// ---------------------------------------------------------------------------

// Capture is a reference-counted, type-erased container for auxiliary state
// attached to a native function. It is what lets a fixed-signature function
// pointer behave like a closure: the registration factory wraps arbitrary
// state once, and every function value cloned from that registration shares
// the one cell until the last holder releases it.
//
// The concrete shape of the state is erased from the native signature. The
// only typed access paths are Closure (at registration time) and
// CaptureState (inside a native call); both panic on a shape mismatch,
// because a mismatch is a defect in the registering host code, not a
// recoverable script error.
type Capture struct {
	state interface{}
	refs  atomic.Int32
}

// NewCapture wraps state in a fresh capture cell with one reference.
func NewCapture(state interface{}) *Capture {
	c := &Capture{state: state}
	c.refs.Store(1)
	return c
}

// Retain adds a reference and returns the same cell. Cloning a function
// value retains its capture; the underlying state is never copied.
func (c *Capture) Retain() *Capture {
	c.refs.Add(1)
	return c
}

// Release drops a reference. It returns true when the last reference is
// gone, at which point the state is cleared so the host heap can reclaim it.
func (c *Capture) Release() bool {
	n := c.refs.Add(-1)
	if n < 0 {
		panic("Capture.Release: over-released")
	}
	if n == 0 {
		c.state = nil
		return true
	}
	return false
}

// Refs returns the current reference count.
func (c *Capture) Refs() int32 {
	return c.refs.Load()
}

// CaptureState returns the state as *S. Valid only for cells created with a
// *S state (which is what Closure and MakeNativeFunction store).
// Panics if the cell holds a different shape.
func CaptureState[S any](c *Capture) *S {
	if c == nil {
		panic("CaptureState: nil capture cell")
	}
	s, ok := c.state.(*S)
	if !ok {
		panic("CaptureState: capture cell shape mismatch")
	}
	return s
}

// ---------------------------------------------------------------------------
// Closure: typed calling convention over the erased cell
// ---------------------------------------------------------------------------

// ClosureFunc is the calling convention for an engine-managed closure: the
// native signature with typed access to the captured state in place of the
// opaque cell.
type ClosureFunc[S any] func(e *Engine, this Value, args []Value, state *S) (Value, error)

// Closure adapts a typed closure to the native signature, pairing it with
// the capture cell that owns its state. The returned pair is what the
// registration factory installs; no caller outside the registering code can
// name S, which keeps the cell's shape private.
func Closure[S any](fn ClosureFunc[S], state S) (NativeFunc, *Capture) {
	cell := NewCapture(&state)
	native := func(e *Engine, this Value, args []Value, c *Capture) (Value, error) {
		return fn(e, this, args, CaptureState[S](c))
	}
	return native, cell
}
