package runtime

import (
	"errors"
	"testing"
)

func TestCallNonFunctionIsTypeError(t *testing.T) {
	e := NewEngine()
	_, err := e.Call(FromSmallInt(42), Undefined, nil)
	if !SignalClass(err, ClassTypeError) {
		t.Errorf("calling a non-function: got %v, want TypeError", err)
	}
	_, err = e.Construct(Undefined, nil, Undefined)
	if !SignalClass(err, ClassTypeError) {
		t.Errorf("constructing a non-function: got %v, want TypeError", err)
	}
}

func TestNativeCallArguments(t *testing.T) {
	e := NewEngine()
	v := e.MakeNativeFunction("add", 2, NonConstructor, ThisStrict,
		Native2(func(e *Engine, this, a, b Value, cap *Capture) (Value, error) {
			return FromSmallInt(a.SmallInt() + b.SmallInt()), nil
		}), nil)

	r, err := e.Call(v, Undefined, []Value{FromSmallInt(2), FromSmallInt(3)})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if r.SmallInt() != 5 {
		t.Errorf("add(2, 3) = %d, want 5", r.SmallInt())
	}
}

func TestThisModeResolution(t *testing.T) {
	e := NewEngine()
	identThis := func(mode ThisMode) Value {
		return e.MakeNativeFunction("self", 0, NonConstructor, mode,
			Native0(func(e *Engine, this Value, cap *Capture) (Value, error) {
				return this, nil
			}), nil)
	}

	obj := e.NewObject(Undefined)

	// Strict: the receiver passes through verbatim.
	strict := identThis(ThisStrict)
	for _, recv := range []Value{Undefined, Null, obj} {
		got, err := e.Call(strict, recv, nil)
		if err != nil {
			t.Fatalf("strict call failed: %v", err)
		}
		if got != recv {
			t.Errorf("strict mode altered the receiver: got %v, want %v", uint64(got), uint64(recv))
		}
	}

	// Global: null and undefined are substituted, objects pass through.
	global := identThis(ThisGlobal)
	for _, recv := range []Value{Undefined, Null} {
		got, err := e.Call(global, recv, nil)
		if err != nil {
			t.Fatalf("global call failed: %v", err)
		}
		if got != e.GlobalThis() {
			t.Error("global mode should substitute the global this")
		}
	}
	got, err := e.Call(global, obj, nil)
	if err != nil {
		t.Fatalf("global call failed: %v", err)
	}
	if got != obj {
		t.Error("global mode must not replace a real receiver")
	}
}

func TestConstructNonConstructorFails(t *testing.T) {
	e := NewEngine()
	ran := false
	v := e.MakeNativeFunction("plain", 0, NonConstructor, ThisStrict,
		Native0(func(e *Engine, this Value, cap *Capture) (Value, error) {
			ran = true
			return Undefined, nil
		}), nil)

	_, err := e.Construct(v, nil, Undefined)
	if !SignalClass(err, ClassTypeError) {
		t.Errorf("got %v, want TypeError", err)
	}
	if ran {
		t.Error("the body must never run for a failed construct")
	}

	gen := e.NewGeneratorFunction("gen", nopBody(), nil)
	if _, err := e.Construct(gen, nil, Undefined); !SignalClass(err, ClassTypeError) {
		t.Errorf("constructing a generator: got %v, want TypeError", err)
	}
}

func TestBaseConstructAllocatesThis(t *testing.T) {
	e := NewEngine()
	body := &Body{
		Params: []Param{{Name: "x"}},
		Exec: func(e *Engine, fr *Frame) (Value, error) {
			this, err := fr.This()
			if err != nil {
				return Undefined, err
			}
			e.PlainObjectFromValue(this).Set("x", fr.Arg(0))
			return Undefined, nil
		},
	}
	ctor := e.NewOrdinaryFunction("Point", body, nil, BaseConstructor, ThisGlobal)

	p, err := e.Construct(ctor, []Value{FromSmallInt(9)}, Undefined)
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	if !p.IsObject() {
		t.Fatal("construct should return the allocated object")
	}
	if x, _ := e.PlainObjectFromValue(p).Get("x"); x.SmallInt() != 9 {
		t.Errorf("x = %d, want 9", x.SmallInt())
	}
	if e.PlainObjectFromValue(p).Proto() != e.FunctionFromValue(ctor).Prototype() {
		t.Error("allocated this should use the constructor's prototype")
	}
}

func TestConstructObjectResultOverridesThis(t *testing.T) {
	e := NewEngine()
	var override Value
	body := &Body{
		Exec: func(e *Engine, fr *Frame) (Value, error) {
			override = e.NewObject(Undefined)
			return override, nil
		},
	}
	ctor := e.NewOrdinaryFunction("C", body, nil, BaseConstructor, ThisGlobal)

	r, err := e.Construct(ctor, nil, Undefined)
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	if r != override {
		t.Error("explicit object result should override the allocated this")
	}
}

func TestDerivedConstructRequiresSuper(t *testing.T) {
	e := NewEngine()

	// Body that never binds this.
	noSuper := e.NewOrdinaryFunction("D", &Body{
		Exec: func(e *Engine, fr *Frame) (Value, error) {
			return Undefined, nil
		},
	}, nil, DerivedConstructor, ThisGlobal)

	_, err := e.Construct(noSuper, nil, Undefined)
	if !SignalClass(err, ClassReferenceError) {
		t.Errorf("derived construct without super: got %v, want ReferenceError", err)
	}

	// Body that reads this before binding it.
	readsEarly := e.NewOrdinaryFunction("E", &Body{
		Exec: func(e *Engine, fr *Frame) (Value, error) {
			return fr.This()
		},
	}, nil, DerivedConstructor, ThisGlobal)
	if _, err := e.Construct(readsEarly, nil, Undefined); !SignalClass(err, ClassReferenceError) {
		t.Errorf("early this read: got %v, want ReferenceError", err)
	}

	// Body that binds this and then uses it.
	binds := e.NewOrdinaryFunction("F", &Body{
		Exec: func(e *Engine, fr *Frame) (Value, error) {
			if err := fr.BindThis(e.NewObject(Undefined)); err != nil {
				return Undefined, err
			}
			this, err := fr.This()
			if err != nil {
				return Undefined, err
			}
			e.PlainObjectFromValue(this).Set("ok", True)
			return Undefined, nil
		},
	}, nil, DerivedConstructor, ThisGlobal)

	r, err := e.Construct(binds, nil, Undefined)
	if err != nil {
		t.Fatalf("derived construct failed: %v", err)
	}
	if ok, _ := e.PlainObjectFromValue(r).Get("ok"); ok != True {
		t.Error("bound this should flow out as the result")
	}
}

func TestNewTargetDefaultsToCallee(t *testing.T) {
	e := NewEngine()
	var seen Value
	ctor := e.NewOrdinaryFunction("C", &Body{
		Exec: func(e *Engine, fr *Frame) (Value, error) {
			seen = fr.NewTarget()
			return Undefined, nil
		},
	}, nil, BaseConstructor, ThisGlobal)

	if _, err := e.Construct(ctor, nil, Undefined); err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	if seen != ctor {
		t.Error("new.target should default to the callee")
	}

	other := e.MakeNativeFunction("other", 0, BaseConstructor, ThisStrict,
		Native0(func(e *Engine, this Value, cap *Capture) (Value, error) {
			return Undefined, nil
		}), nil)
	if _, err := e.Construct(ctor, nil, other); err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	if seen != other {
		t.Error("explicit new.target should pass through")
	}
}

func TestAbruptCompletionPassesThrough(t *testing.T) {
	e := NewEngine()
	thrown := FromSmallInt(13)
	v := e.NewOrdinaryFunction("boom", &Body{
		Exec: func(e *Engine, fr *Frame) (Value, error) {
			return Undefined, Throw(thrown)
		},
	}, nil, NonConstructor, ThisGlobal)

	_, err := e.Call(v, Undefined, nil)
	var th *Thrown
	if !errors.As(err, &th) {
		t.Fatalf("got %v, want a thrown value", err)
	}
	if th.Value != thrown {
		t.Error("thrown value altered on the way out")
	}
}

func TestUnwindRestoresRegistryCounts(t *testing.T) {
	e := NewEngine()
	boom := e.NewOrdinaryFunction("boom", &Body{
		Params: []Param{{Name: "a"}},
		Exec: func(e *Engine, fr *Frame) (Value, error) {
			return Undefined, NewTypeError("mid-body failure")
		},
	}, nil, BaseConstructor, ThisGlobal)

	before := e.Registry().Stats()

	if _, err := e.Call(boom, Undefined, []Value{FromSmallInt(1)}); err == nil {
		t.Fatal("call should fail")
	}
	if _, err := e.Construct(boom, []Value{FromSmallInt(1)}, Undefined); err == nil {
		t.Fatal("construct should fail")
	}

	after := e.Registry().Stats()
	for k, n := range before {
		if after[k] != n {
			t.Errorf("%s count: before=%d after=%d (unwind leaked)", k, n, after[k])
		}
	}
	if e.Depth() != 0 {
		t.Errorf("depth after unwind = %d, want 0", e.Depth())
	}
}

func TestRestObjectReleasedWithFrame(t *testing.T) {
	e := NewEngine()
	boom := e.NewOrdinaryFunction("boom", &Body{
		Params: []Param{{Name: "a"}, {Name: "rest", Rest: true}},
		Exec: func(e *Engine, fr *Frame) (Value, error) {
			return Undefined, NewTypeError("mid-body failure")
		},
	}, nil, NonConstructor, ThisGlobal)
	ok := e.NewOrdinaryFunction("ok", &Body{
		Params: []Param{{Name: "rest", Rest: true}},
		Exec: func(e *Engine, fr *Frame) (Value, error) {
			return Undefined, nil
		},
	}, nil, NonConstructor, ThisGlobal)

	before := e.Registry().Stats()

	if _, err := e.Call(boom, Undefined, []Value{FromSmallInt(1), FromSmallInt(2)}); err == nil {
		t.Fatal("call should fail")
	}
	for i := 0; i < 100; i++ {
		if _, err := e.Call(ok, Undefined, []Value{FromSmallInt(1)}); err != nil {
			t.Fatalf("call failed: %v", err)
		}
	}

	after := e.Registry().Stats()
	for k, n := range before {
		if after[k] != n {
			t.Errorf("%s count: before=%d after=%d (rest object leaked)", k, n, after[k])
		}
	}
}

func TestCallDepthLimit(t *testing.T) {
	e := NewEngineWithLimits(Limits{MaxCallDepth: 8})

	var self Value
	self = e.NewOrdinaryFunction("loop", &Body{
		Exec: func(e *Engine, fr *Frame) (Value, error) {
			return e.Call(self, Undefined, nil)
		},
	}, nil, NonConstructor, ThisGlobal)

	_, err := e.Call(self, Undefined, nil)
	if !SignalClass(err, ClassRangeError) {
		t.Errorf("unbounded recursion: got %v, want RangeError", err)
	}
	if e.Depth() != 0 {
		t.Errorf("depth after limit failure = %d, want 0", e.Depth())
	}
}

func TestGeneratorCallReturnsInertObject(t *testing.T) {
	e := NewEngine()
	ran := false
	gen := e.NewGeneratorFunction("gen", &Body{
		Exec: func(e *Engine, fr *Frame) (Value, error) {
			ran = true
			return Undefined, nil
		},
	}, nil)

	r, err := e.Call(gen, e.GlobalThis(), nil)
	if err != nil {
		t.Fatalf("generator call failed: %v", err)
	}
	if ran {
		t.Error("the body must not run on generator creation")
	}
	g, ok := e.ObjectFromValue(r).(*GeneratorObject)
	if !ok {
		t.Fatal("generator call should yield a generator object")
	}
	if g.Callee() != gen {
		t.Error("generator should record its callee")
	}
	if g.Receiver() != e.GlobalThis() {
		t.Error("generator should record its receiver")
	}
}

func TestNativeConstructorResultRules(t *testing.T) {
	e := NewEngine()

	// Non-object result: the allocated this wins.
	c1 := e.MakeNativeFunction("C1", 0, BaseConstructor, ThisStrict,
		Native0(func(e *Engine, this Value, cap *Capture) (Value, error) {
			e.PlainObjectFromValue(this).Set("tag", FromSmallInt(1))
			return FromSmallInt(99), nil
		}), nil)
	r, err := e.Construct(c1, nil, Undefined)
	if err != nil {
		t.Fatalf("construct failed: %v", err)
	}
	if tag, _ := e.PlainObjectFromValue(r).Get("tag"); tag.SmallInt() != 1 {
		t.Error("non-object result should not override the allocated this")
	}

	// Failure drops the allocated this.
	before := e.Registry().ObjectCount()
	c2 := e.MakeNativeFunction("C2", 0, BaseConstructor, ThisStrict,
		Native0(func(e *Engine, this Value, cap *Capture) (Value, error) {
			return Undefined, NewTypeError("nope")
		}), nil)
	if _, err := e.Construct(c2, nil, Undefined); err == nil {
		t.Fatal("construct should fail")
	}
	if e.Registry().ObjectCount() != before {
		t.Error("failed native construct leaked the allocated this")
	}
}
