package runtime

import "testing"

func nopBody(params ...Param) *Body {
	return &Body{
		Params: params,
		Exec: func(e *Engine, fr *Frame) (Value, error) {
			return Undefined, nil
		},
	}
}

func TestMakeNativeFunctionMetadata(t *testing.T) {
	e := NewEngine()
	v := e.MakeNativeFunction("greet", 2, NonConstructor, ThisGlobal,
		Native0(func(e *Engine, this Value, cap *Capture) (Value, error) {
			return Undefined, nil
		}), nil)

	if !v.IsFunction() {
		t.Fatal("factory should return a function value")
	}
	f := e.FunctionFromValue(v)
	if f.Name() != "greet" || f.Length() != 2 {
		t.Errorf("metadata: name=%q length=%d", f.Name(), f.Length())
	}
	if f.Kind() != KindNative || f.ConstructorKind() != NonConstructor || f.ThisMode() != ThisGlobal {
		t.Error("classification not preserved")
	}
	if f.IsConstructor() {
		t.Error("NonConstructor must not report constructable")
	}
	if !f.Prototype().IsUndefined() {
		t.Error("non-constructor should have no prototype object")
	}
}

func TestNativeDerivedConstructorPanics(t *testing.T) {
	e := NewEngine()
	defer func() {
		if recover() == nil {
			t.Error("derived native constructor registration should panic")
		}
	}()
	e.MakeNativeFunction("bad", 0, DerivedConstructor, ThisStrict,
		Native0(func(e *Engine, this Value, cap *Capture) (Value, error) {
			return Undefined, nil
		}), nil)
}

func TestDeclaredLength(t *testing.T) {
	cases := []struct {
		params []Param
		want   int
	}{
		{nil, 0},
		{[]Param{{Name: "a"}, {Name: "b"}}, 2},
		{[]Param{{Name: "a"}, {Name: "b", HasDefault: true}, {Name: "c"}}, 1},
		{[]Param{{Name: "a"}, {Name: "r", Rest: true}}, 1},
		{[]Param{{Name: "r", Rest: true}}, 0},
	}
	for i, c := range cases {
		b := &Body{Params: c.params, Exec: func(e *Engine, fr *Frame) (Value, error) { return Undefined, nil }}
		if got := b.DeclaredLength(); got != c.want {
			t.Errorf("case %d: DeclaredLength = %d, want %d", i, got, c.want)
		}
	}
}

func TestOrdinaryFunctionCapturesScope(t *testing.T) {
	e := NewEngine()
	scope := e.Registry().NewEnvironment(e.GlobalEnv())

	v := e.NewOrdinaryFunction("f", nopBody(Param{Name: "a"}), scope, NonConstructor, ThisGlobal)
	f := e.FunctionFromValue(v)

	if f.Scope() != scope {
		t.Error("function should capture the supplied scope")
	}
	if f.Length() != 1 {
		t.Errorf("length = %d, want 1", f.Length())
	}
	// Creator's ref plus the function's hold.
	if scope.Refs() != 2 {
		t.Errorf("scope refs = %d, want 2", scope.Refs())
	}

	e.ReleaseFunction(f)
	if scope.Refs() != 1 {
		t.Errorf("scope refs after release = %d, want 1", scope.Refs())
	}
}

func TestLexicalThisResolvedAtCreation(t *testing.T) {
	e := NewEngine()

	// The defining scope's `this` is the global object at creation time.
	v := e.NewOrdinaryFunction("arrow", &Body{
		Exec: func(e *Engine, fr *Frame) (Value, error) {
			return fr.This()
		},
	}, nil, NonConstructor, ThisLexical)

	f := e.FunctionFromValue(v)
	if f.LexicalThis() != e.GlobalThis() {
		t.Error("lexical this should snapshot the defining scope's receiver")
	}

	// A later receiver is ignored.
	other := e.NewObject(Undefined)
	got, err := e.Call(v, other, nil)
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if got != e.GlobalThis() {
		t.Error("call-time receiver must not override lexical this")
	}
}

func TestCloneSharesBodyAndScope(t *testing.T) {
	e := NewEngine()
	scope := e.Registry().NewEnvironment(e.GlobalEnv())
	v := e.NewOrdinaryFunction("f", nopBody(), scope, BaseConstructor, ThisGlobal)
	f := e.FunctionFromValue(v)

	cv := e.CloneFunction(f)
	c := e.FunctionFromValue(cv)

	if cv == v {
		t.Fatal("clone must be a distinct function value")
	}
	if c.Body() != f.Body() || c.Scope() != f.Scope() {
		t.Error("clone should share body and scope")
	}
	if c.Name() != f.Name() || c.ConstructorKind() != f.ConstructorKind() {
		t.Error("clone should copy metadata")
	}
	if e.Registry().FunctionCount() != 2 {
		t.Errorf("function count = %d, want 2", e.Registry().FunctionCount())
	}
}

func TestLexicalConstructorPanics(t *testing.T) {
	e := NewEngine()
	defer func() {
		if recover() == nil {
			t.Error("lexical-this constructor registration should panic")
		}
	}()
	e.NewOrdinaryFunction("arrow", nopBody(), nil, BaseConstructor, ThisLexical)
}

func TestGeneratorFunctionIsNotConstructor(t *testing.T) {
	e := NewEngine()
	v := e.NewGeneratorFunction("gen", nopBody(), nil)
	f := e.FunctionFromValue(v)

	if f.Kind() != KindGenerator {
		t.Error("kind should be generator")
	}
	if f.IsConstructor() {
		t.Error("generator functions are never constructors")
	}
}
