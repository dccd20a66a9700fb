package typesystem_test

import (
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/wippyai/nativeformat/typesystem"
)

func TestMethodForInstantiatedType(t *testing.T) {
	e := newEnv(t)
	ctx := e.ctx
	listOfString := e.inst(e.list, e.str)

	add := ctx.GetMethodForInstantiatedType(e.listAdd, listOfString)
	if again := ctx.GetMethodForInstantiatedType(e.listAdd, listOfString); again != add {
		t.Error("GetMethodForInstantiatedType not interned")
	}
	if got := listOfString.GetMethod("Add", nil); got != add {
		t.Errorf("GetMethod(Add) = %v", got)
	}
	if got := typesystem.FindMethod(listOfString, "Add", e.listAdd.Signature()); got != typesystem.MethodDesc(add) {
		t.Errorf("FindMethod(Add) = %v", got)
	}
	if got := typesystem.FindMethod(e.list, "Missing", nil); got != nil {
		t.Errorf("FindMethod(Missing) = %v", got)
	}

	sig := add.Signature()
	if sig.ReturnType != typesystem.TypeDesc(e.void) || len(sig.Parameters) != 1 || sig.Parameters[0] != typesystem.TypeDesc(e.str) {
		t.Errorf("Signature() = %s", sig)
	}
	if add.Signature() != sig {
		t.Error("substituted signature not cached")
	}
	if add.GetTypicalMethodDefinition() != typesystem.MethodDesc(e.listAdd) {
		t.Error("typical definition is not the declared method")
	}
	if add.HasInstantiation() {
		t.Error("Add reports method arguments")
	}

	want := "System.Collections.Generic.List`1<System.String>.Add(System.String)"
	if got := add.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	ms := listOfString.Methods()
	if len(ms) != 2 || ms[0] != add || ms[1].Name() != "Map" {
		t.Errorf("Methods() = %v", ms)
	}

	mustPanic(t, "foreign owner", func() {
		ctx.GetMethodForInstantiatedType(e.listAdd, e.inst(e.pair, e.str, e.str))
	})
}

func TestIsCanonicalMethod(t *testing.T) {
	e := newEnv(t)
	ctx := e.ctx
	canon, u := ctx.CanonType(), ctx.UniversalCanonType()

	tests := []struct {
		name                string
		m                   typesystem.MethodDesc
		specific, universal bool
	}{
		{"List<__Canon>.Add", ctx.GetMethodForInstantiatedType(e.listAdd, e.inst(e.list, canon)), true, false},
		{"List<String>.Add", ctx.GetMethodForInstantiatedType(e.listAdd, e.inst(e.list, e.str)), false, false},
		{"List<__UniversalCanon>.Add", ctx.GetMethodForInstantiatedType(e.listAdd, e.inst(e.list, u)), false, true},
		{"Util.Echo<__Canon>", ctx.GetInstantiatedMethod(e.utilEcho, typesystem.NewInstantiation(canon)), true, false},
		{"Util.Echo<Int32>", ctx.GetInstantiatedMethod(e.utilEcho, typesystem.NewInstantiation(e.int32)), false, false},
		{"Util.Echo", e.utilEcho, false, false},
		{"Util.Echo<List<__Canon>>", ctx.GetInstantiatedMethod(e.utilEcho, typesystem.NewInstantiation(e.inst(e.list, canon))), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.IsCanonicalMethod(typesystem.CanonicalFormSpecific); got != tt.specific {
				t.Errorf("Specific = %v", got)
			}
			if got := tt.m.IsCanonicalMethod(typesystem.CanonicalFormUniversal); got != tt.universal {
				t.Errorf("Universal = %v", got)
			}
			if got := tt.m.IsCanonicalMethod(typesystem.CanonicalFormAny); got != (tt.specific || tt.universal) {
				t.Errorf("Any = %v", got)
			}
		})
	}
}

func TestGetCanonMethodTarget(t *testing.T) {
	e := newEnv(t)
	ctx := e.ctx
	canon, u := ctx.CanonType(), ctx.UniversalCanonType()
	specific := typesystem.CanonicalFormSpecific

	t.Run("instantiated owner", func(t *testing.T) {
		add := ctx.GetMethodForInstantiatedType(e.listAdd, e.inst(e.list, e.str))
		want := ctx.GetMethodForInstantiatedType(e.listAdd, e.inst(e.list, canon))
		if got := add.GetCanonMethodTarget(specific); got != typesystem.MethodDesc(want) {
			t.Errorf("target = %s, want %s", got, want)
		}
		if got := want.GetCanonMethodTarget(specific); got != typesystem.MethodDesc(want) {
			t.Errorf("canonical method moved to %s", got)
		}

		valueAdd := ctx.GetMethodForInstantiatedType(e.listAdd, e.inst(e.list, e.int32))
		if got := valueAdd.GetCanonMethodTarget(specific); got != typesystem.MethodDesc(valueAdd) {
			t.Errorf("List<Int32>.Add target = %s", got)
		}
		wantU := ctx.GetMethodForInstantiatedType(e.listAdd, e.inst(e.list, u))
		if got := valueAdd.GetCanonMethodTarget(typesystem.CanonicalFormUniversal); got != typesystem.MethodDesc(wantU) {
			t.Errorf("universal target = %s, want %s", got, wantU)
		}
	})

	t.Run("generic method", func(t *testing.T) {
		echo := ctx.GetInstantiatedMethod(e.utilEcho, typesystem.NewInstantiation(e.str))
		want := ctx.GetInstantiatedMethod(e.utilEcho, typesystem.NewInstantiation(canon))
		if got := echo.GetCanonMethodTarget(specific); got != typesystem.MethodDesc(want) {
			t.Errorf("target = %s, want %s", got, want)
		}
		if sig := echo.Signature(); sig.ReturnType != typesystem.TypeDesc(e.str) || sig.Parameters[0] != typesystem.TypeDesc(e.str) {
			t.Errorf("Echo<String> signature = %s", sig)
		}

		echoInt := ctx.GetInstantiatedMethod(e.utilEcho, typesystem.NewInstantiation(e.int32))
		if got := echoInt.GetCanonMethodTarget(specific); got != typesystem.MethodDesc(echoInt) {
			t.Errorf("Echo<Int32> target = %s", got)
		}
		if got := e.utilEcho.GetCanonMethodTarget(specific); got != typesystem.MethodDesc(e.utilEcho) {
			t.Errorf("definition target = %s", got)
		}
	})

	t.Run("generic method on generic type", func(t *testing.T) {
		owner := ctx.GetMethodForInstantiatedType(e.listMap, e.inst(e.list, e.str))
		m := ctx.GetInstantiatedMethod(owner, typesystem.NewInstantiation(e.str))

		canonOwner := ctx.GetMethodForInstantiatedType(e.listMap, e.inst(e.list, canon))
		want := ctx.GetInstantiatedMethod(canonOwner, typesystem.NewInstantiation(canon))
		got := m.GetCanonMethodTarget(specific)
		if got != typesystem.MethodDesc(want) {
			t.Fatalf("target = %s, want %s", got, want)
		}
		if got.GetTypicalMethodDefinition() != typesystem.MethodDesc(e.listMap) {
			t.Error("target lost its typical definition")
		}
		if got.GetMethodDefinition() != typesystem.MethodDesc(canonOwner) {
			t.Error("target's method definition is not on List<__Canon>")
		}
		sig := got.Signature()
		if sig.ReturnType != typesystem.TypeDesc(ctx.GetArrayType(canon)) || sig.Parameters[0] != typesystem.TypeDesc(canon) {
			t.Errorf("canonical signature = %s", sig)
		}

		// Only the method argument needs sharing.
		mixed := ctx.GetInstantiatedMethod(
			ctx.GetMethodForInstantiatedType(e.listMap, e.inst(e.list, e.int32)),
			typesystem.NewInstantiation(e.str))
		wantMixed := ctx.GetInstantiatedMethod(
			ctx.GetMethodForInstantiatedType(e.listMap, e.inst(e.list, e.int32)),
			typesystem.NewInstantiation(canon))
		if got := mixed.GetCanonMethodTarget(specific); got != typesystem.MethodDesc(wantMixed) {
			t.Errorf("mixed target = %s, want %s", got, wantMixed)
		}
	})

	t.Run("universal placeholder", func(t *testing.T) {
		onU := ctx.GetMethodForInstantiatedType(e.listMap, e.inst(e.list, u))
		m := ctx.GetInstantiatedMethod(onU, typesystem.NewInstantiation(e.str))
		want := ctx.GetInstantiatedMethod(onU, typesystem.NewInstantiation(u))
		if got := m.GetCanonMethodTarget(specific); got != typesystem.MethodDesc(want) {
			t.Errorf("List<__UniversalCanon>.Map<String> target = %s, want %s", got, want)
		}

		echo := ctx.GetInstantiatedMethod(e.utilEcho, typesystem.NewInstantiation(e.inst(e.pair, u, e.str)))
		wantEcho := ctx.GetInstantiatedMethod(e.utilEcho, typesystem.NewInstantiation(u))
		if got := echo.GetCanonMethodTarget(specific); got != typesystem.MethodDesc(wantEcho) {
			t.Errorf("Echo<Pair<__UniversalCanon,String>> target = %s, want %s", got, wantEcho)
		}

		onStr := ctx.GetMethodForInstantiatedType(e.listMap, e.inst(e.list, e.str))
		viaArg := ctx.GetInstantiatedMethod(onStr, typesystem.NewInstantiation(u))
		if got := viaArg.GetCanonMethodTarget(specific); got != typesystem.MethodDesc(want) {
			t.Errorf("List<String>.Map<__UniversalCanon> target = %s, want %s", got, want)
		}
	})

	t.Run("arity", func(t *testing.T) {
		mustPanic(t, "Echo<String,String>", func() {
			ctx.GetInstantiatedMethod(e.utilEcho, typesystem.NewInstantiation(e.str, e.str))
		})
	})
}

func TestCanonMethodTargetConcurrent(t *testing.T) {
	const workers = 16
	e := newEnv(t)
	ctx := e.ctx
	m := ctx.GetInstantiatedMethod(
		ctx.GetMethodForInstantiatedType(e.listMap, e.inst(e.list, e.shape)),
		typesystem.NewInstantiation(e.inst(e.list, e.str)))

	got := make([]typesystem.MethodDesc, workers)
	var g errgroup.Group
	for w := range workers {
		g.Go(func() error {
			got[w] = m.GetCanonMethodTarget(typesystem.CanonicalFormSpecific)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	for w := 1; w < workers; w++ {
		if got[w] != got[0] {
			t.Fatalf("worker %d got %s, worker 0 got %s", w, got[w], got[0])
		}
	}
	if !got[0].IsCanonicalMethod(typesystem.CanonicalFormSpecific) {
		t.Errorf("%s is not canonical", got[0])
	}
}
