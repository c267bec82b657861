package runtime

import "testing"

func TestEnvironmentLookupChain(t *testing.T) {
	r := NewRegistry()
	outer := r.NewEnvironment(nil)
	inner := r.NewEnvironment(outer)

	outer.Define("x", FromSmallInt(1))
	inner.Define("y", FromSmallInt(2))

	if v, ok := inner.Get("x"); !ok || v.SmallInt() != 1 {
		t.Error("inner scope should resolve outer binding")
	}
	if v, ok := inner.Get("y"); !ok || v.SmallInt() != 2 {
		t.Error("inner scope should resolve own binding")
	}
	if _, ok := outer.Get("y"); ok {
		t.Error("outer scope must not see inner binding")
	}
	if _, ok := inner.Get("z"); ok {
		t.Error("unbound name should not resolve")
	}
}

func TestEnvironmentSetWritesThroughChain(t *testing.T) {
	r := NewRegistry()
	outer := r.NewEnvironment(nil)
	inner := r.NewEnvironment(outer)

	outer.Define("x", FromSmallInt(1))
	if !inner.Set("x", FromSmallInt(10)) {
		t.Fatal("Set should find the outer binding")
	}
	if v, _ := outer.Get("x"); v.SmallInt() != 10 {
		t.Error("write from inner scope not visible in outer")
	}
	if inner.Set("missing", FromSmallInt(0)) {
		t.Error("Set on an unbound name should fail")
	}
}

func TestSiblingClosuresShareCells(t *testing.T) {
	e := NewEngine()
	shared := e.Registry().NewEnvironment(e.GlobalEnv())
	shared.Define("count", FromSmallInt(0))

	bump := &Body{
		Source: "function bump() { return ++count; }",
		Exec: func(e *Engine, fr *Frame) (Value, error) {
			cell, _ := fr.Scope().Lookup("count")
			cell.Set(FromSmallInt(cell.Get().SmallInt() + 1))
			return cell.Get(), nil
		},
	}
	read := &Body{
		Source: "function read() { return count; }",
		Exec: func(e *Engine, fr *Frame) (Value, error) {
			v, _ := fr.Scope().Get("count")
			return v, nil
		},
	}

	fBump := e.NewOrdinaryFunction("bump", bump, shared, NonConstructor, ThisGlobal)
	fRead := e.NewOrdinaryFunction("read", read, shared, NonConstructor, ThisGlobal)

	for i := 0; i < 3; i++ {
		if _, err := e.Call(fBump, Undefined, nil); err != nil {
			t.Fatalf("bump failed: %v", err)
		}
	}
	v, err := e.Call(fRead, Undefined, nil)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if v.SmallInt() != 3 {
		t.Errorf("sibling closure read %d, want 3", v.SmallInt())
	}
}

func TestEnvironmentRefCounting(t *testing.T) {
	r := NewRegistry()
	parent := r.NewEnvironment(nil)
	child := r.NewEnvironment(parent)

	if r.EnvironmentCount() != 2 {
		t.Fatalf("environment count = %d, want 2", r.EnvironmentCount())
	}

	// The child holds the parent, so releasing the creator's reference to
	// the parent keeps it alive.
	parent.Release()
	if r.EnvironmentCount() != 2 {
		t.Error("parent must survive while the child holds it")
	}

	child.Release()
	if r.EnvironmentCount() != 0 {
		t.Errorf("environment count after teardown = %d, want 0", r.EnvironmentCount())
	}
}

func TestBindThisTwiceFails(t *testing.T) {
	r := NewRegistry()
	env := r.NewEnvironment(nil)
	env.thisState = thisUnbound

	if _, err := env.This(); !SignalClass(err, ClassReferenceError) {
		t.Error("reading unbound this should be a ReferenceError")
	}
	if err := env.BindThis(FromSmallInt(1)); err != nil {
		t.Fatalf("first bind failed: %v", err)
	}
	if v, err := env.This(); err != nil || v.SmallInt() != 1 {
		t.Error("bound this should read back")
	}
	if err := env.BindThis(FromSmallInt(2)); !SignalClass(err, ClassReferenceError) {
		t.Error("second bind should be a ReferenceError")
	}
}
