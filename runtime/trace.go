package runtime

import (
	"sync/atomic"

	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Call tracing
// ---------------------------------------------------------------------------

var log = commonlog.GetLogger("beatrice.runtime")

// Tracer emits a debug log line per Call/Construct dispatch when enabled.
// Off by default; hosts flip it from configuration. The backend is whatever
// the embedding process configured through commonlog.
type Tracer struct {
	enabled atomic.Bool
}

// SetTraceCalls enables or disables call tracing.
func (e *Engine) SetTraceCalls(enabled bool) {
	e.tracer.enabled.Store(enabled)
}

// TraceCalls reports whether call tracing is enabled.
func (e *Engine) TraceCalls() bool {
	return e.tracer.enabled.Load()
}

func (t *Tracer) traceCall(f *FunctionObject, argc int) {
	if !t.enabled.Load() {
		return
	}
	log.Debugf("call %s %q argc=%d", f.kind, f.name, argc)
}

func (t *Tracer) traceConstruct(f *FunctionObject, argc int) {
	if !t.enabled.Load() {
		return
	}
	log.Debugf("construct %s %q (%s) argc=%d", f.kind, f.name, f.ctorKind, argc)
}
