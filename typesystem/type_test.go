package typesystem_test

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/nativeformat/errors"
	"github.com/wippyai/nativeformat/typesystem"
)

func TestCategories(t *testing.T) {
	e := newEnv(t)
	ctx := e.ctx

	tests := []struct {
		typ       typesystem.TypeDesc
		want      typesystem.TypeFlags
		valueType bool
	}{
		{e.object, typesystem.CategoryClass, false},
		{e.str, typesystem.CategoryClass, false},
		{e.valueType, typesystem.CategoryClass, false},
		{e.enum, typesystem.CategoryClass, false},
		{e.void, typesystem.CategoryVoid, false},
		{e.int32, typesystem.CategoryInt32, true},
		{e.boolean, typesystem.CategoryBoolean, true},
		{e.point, typesystem.CategoryValueType, true},
		{e.color, typesystem.CategoryEnum, true},
		{e.nullable, typesystem.CategoryNullable, true},
		{e.disposable, typesystem.CategoryInterface, false},
		{e.inst(e.pair, e.str, e.int32), typesystem.CategoryValueType, true},
		{e.inst(e.list, e.int32), typesystem.CategoryClass, false},
		{ctx.GetArrayType(e.int32), typesystem.CategorySzArray, false},
		{ctx.GetMDArrayType(e.int32, 1), typesystem.CategoryArray, false},
		{ctx.GetByRefType(e.int32), typesystem.CategoryByRef, false},
		{ctx.GetPointerType(e.int32), typesystem.CategoryPointer, false},
		{ctx.GetSignatureVariable(0, false), typesystem.CategorySignatureTypeVariable, false},
		{ctx.GetSignatureVariable(0, true), typesystem.CategorySignatureMethodVariable, false},
		{e.list.GenericParameters()[0], typesystem.CategoryGenericParameter, false},
		{ctx.CanonType(), typesystem.CategoryClass, false},
		{ctx.UniversalCanonType(), typesystem.CategoryValueType, true},
	}
	for _, tt := range tests {
		if got := tt.typ.Category(); got != tt.want {
			t.Errorf("%s: category %s, want %s", tt.typ, got.CategoryName(), tt.want.CategoryName())
		}
		if got := tt.typ.IsValueType(); got != tt.valueType {
			t.Errorf("%s: IsValueType = %v", tt.typ, got)
		}
	}

	if !e.int32.IsPrimitive() || e.point.IsPrimitive() {
		t.Error("IsPrimitive misclassifies Int32 or Point")
	}
	if !ctx.GetArrayType(e.str).IsArray() || !ctx.GetMDArrayType(e.str, 2).IsArray() {
		t.Error("arrays not reported by IsArray")
	}
	if !e.disposable.IsInterface() {
		t.Error("IDisposable is not an interface")
	}
}

func TestCategoryOutsideSystemModule(t *testing.T) {
	e := newEnv(t)
	other := &testModule{name: "Demo", types: map[string]*typesystem.MetadataType{}}
	fake := e.ctx.NewMetadataType(typesystem.MetadataTypeInfo{
		Module: other, Namespace: "System", Name: "Int32", BaseType: e.valueType,
	})
	if got := fake.Category(); got != typesystem.CategoryValueType {
		t.Errorf("System.Int32 outside the system module has category %s", got.CategoryName())
	}

	forced := e.ctx.NewMetadataType(typesystem.MetadataTypeInfo{
		Module: other, Namespace: "Demo", Name: "Forced", Category: typesystem.CategoryDouble,
	})
	if got := forced.Category(); got != typesystem.CategoryDouble {
		t.Errorf("explicit category ignored: %s", got.CategoryName())
	}
}

func TestInterning(t *testing.T) {
	e := newEnv(t)
	ctx := e.ctx

	if e.inst(e.list, e.str) != e.inst(e.list, e.str) {
		t.Error("instantiated types not interned")
	}
	if e.inst(e.list, e.str) == e.inst(e.list, e.int32) {
		t.Error("different arguments share an instantiation")
	}
	if ctx.GetArrayType(e.str) != ctx.GetArrayType(e.str) {
		t.Error("SZ arrays not interned")
	}
	if ctx.GetArrayType(e.str) == ctx.GetMDArrayType(e.str, 1) {
		t.Error("rank-1 MD array is the SZ array")
	}
	if ctx.GetMDArrayType(e.str, 2) == ctx.GetMDArrayType(e.str, 3) {
		t.Error("ranks share an array type")
	}
	if ctx.GetByRefType(e.str) != ctx.GetByRefType(e.str) || ctx.GetPointerType(e.str) != ctx.GetPointerType(e.str) {
		t.Error("byref or pointer types not interned")
	}
	if ctx.GetSignatureVariable(1, false) == ctx.GetSignatureVariable(1, true) {
		t.Error("!1 and !!1 are the same variable")
	}
	if ctx.CanonType() != ctx.CanonType() {
		t.Error("CanonType is not a singleton")
	}
	mustPanic(t, "rank 0", func() { ctx.GetMDArrayType(e.str, 0) })
}

func TestNames(t *testing.T) {
	e := newEnv(t)
	ctx := e.ctx
	nested := ctx.NewMetadataType(typesystem.MetadataTypeInfo{Module: e.sys, Name: "Inner"})
	nested.SetEnclosingType(e.shape)

	tests := []struct {
		typ  typesystem.TypeDesc
		want string
	}{
		{e.str, "System.String"},
		{e.inst(e.pair, e.str, e.int32), "Demo.Pair`2<System.String,System.Int32>"},
		{ctx.GetArrayType(e.str), "System.String[]"},
		{ctx.GetMDArrayType(e.str, 1), "System.String[*]"},
		{ctx.GetMDArrayType(e.str, 3), "System.String[,,]"},
		{ctx.GetByRefType(e.int32), "System.Int32&"},
		{ctx.GetPointerType(e.point), "Demo.Point*"},
		{ctx.GetSignatureVariable(2, false), "!2"},
		{ctx.GetSignatureVariable(0, true), "!!0"},
		{ctx.CanonType(), "System.__Canon"},
		{ctx.UniversalCanonType(), "System.__UniversalCanon"},
		{nested, "Demo.Shape+Inner"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestBaseTypes(t *testing.T) {
	e := newEnv(t)
	ctx := e.ctx

	derived := e.inst(e.derived, e.str)
	if got, want := derived.BaseType(), e.inst(e.list, e.str); got != typesystem.TypeDesc(want) {
		t.Errorf("Derived<String>.BaseType() = %v, want %s", got, want)
	}
	if got := e.derived.BaseType(); !got.ContainsSignatureVariables() {
		t.Errorf("open base %s has no signature variables", got)
	}
	if derived.BaseType().ContainsSignatureVariables() {
		t.Error("closed base still has signature variables")
	}
	if got := ctx.GetArrayType(e.str).BaseType(); got == nil || got.String() != "System.Array" {
		t.Errorf("array base = %v", got)
	}
	if got := ctx.CanonType().BaseType(); got != typesystem.TypeDesc(e.object) {
		t.Errorf("__Canon base = %v", got)
	}
	if got := ctx.GetByRefType(e.str).BaseType(); got != nil {
		t.Errorf("byref base = %v", got)
	}
	if derived.TypeDefinition() != typesystem.TypeDesc(e.derived) || e.str.TypeDefinition() != typesystem.TypeDesc(e.str) {
		t.Error("TypeDefinition mismatch")
	}
}

func TestFields(t *testing.T) {
	e := newEnv(t)
	ctx := e.ctx

	typical := e.list.GetField("_items")
	if typical == nil {
		t.Fatal("_items not declared")
	}
	if typical.FieldType() != typesystem.TypeDesc(ctx.GetArrayType(ctx.GetSignatureVariable(0, false))) {
		t.Errorf("typical field type = %s", typical.FieldType())
	}

	fields := e.inst(e.list, e.point).Fields()
	if len(fields) != 1 {
		t.Fatalf("got %d fields", len(fields))
	}
	f := fields[0]
	if f.FieldType() != typesystem.TypeDesc(ctx.GetArrayType(e.point)) {
		t.Errorf("field type = %s", f.FieldType())
	}
	if f.GetTypicalFieldDefinition() != typical || f.IsStatic() {
		t.Error("instantiated field lost its definition or gained static")
	}
	if got := f.String(); got != "System.Collections.Generic.List`1<Demo.Point>._items" {
		t.Errorf("String() = %q", got)
	}
}

func TestInstantiateSignature(t *testing.T) {
	e := newEnv(t)
	ctx := e.ctx
	t0 := ctx.GetSignatureVariable(0, false)
	m0 := ctx.GetSignatureVariable(0, true)
	typeInst := typesystem.NewInstantiation(e.str)
	methodInst := typesystem.NewInstantiation(e.int32)

	tests := []struct {
		in, want typesystem.TypeDesc
	}{
		{t0, e.str},
		{m0, e.int32},
		{ctx.GetSignatureVariable(3, false), ctx.GetSignatureVariable(3, false)},
		{ctx.GetArrayType(t0), ctx.GetArrayType(e.str)},
		{ctx.GetByRefType(m0), ctx.GetByRefType(e.int32)},
		{e.inst(e.pair, t0, m0), e.inst(e.pair, e.str, e.int32)},
		{e.point, e.point},
	}
	for _, tt := range tests {
		if got := tt.in.InstantiateSignature(typeInst, methodInst); got != tt.want {
			t.Errorf("%s → %s, want %s", tt.in, got, tt.want)
		}
	}

	closed := e.inst(e.pair, e.str, e.int32)
	if closed.InstantiateSignature(typeInst, methodInst) != typesystem.TypeDesc(closed) {
		t.Error("closed type rebuilt by substitution")
	}
}

func TestWellKnownTypes(t *testing.T) {
	e := newEnv(t)
	got, err := e.ctx.GetWellKnownType(typesystem.WellKnownString)
	if err != nil || got != e.str {
		t.Fatalf("GetWellKnownType(String) = %v, %v", got, err)
	}
	if got, _ := e.ctx.GetWellKnownType(typesystem.WellKnownString); got != e.str {
		t.Error("cached well-known type changed")
	}

	bare := typesystem.NewContext(typesystem.DefaultOptions())
	if _, err := bare.GetWellKnownType(typesystem.WellKnownObject); !stderrors.Is(err, &errors.Error{Kind: errors.KindPrecondition}) {
		t.Errorf("no system module: err = %v", err)
	}
	if bare.CanonType().BaseType() != nil {
		t.Error("__Canon has a base type without a system module")
	}

	missing := &testModule{name: "System.Runtime", types: map[string]*typesystem.MetadataType{}}
	bare.SetSystemModule(missing)
	if _, err := bare.GetWellKnownType(typesystem.WellKnownObject); err == nil {
		t.Error("missing System.Object resolved")
	}
}
