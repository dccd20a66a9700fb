package typesystem_test

import (
	"testing"

	"github.com/wippyai/nativeformat/errors"
	"github.com/wippyai/nativeformat/metadata"
	"github.com/wippyai/nativeformat/typesystem"
)

type testModule struct {
	name  string
	types map[string]*typesystem.MetadataType
}

func (m *testModule) Name() string { return m.name }

func (m *testModule) GetType(namespace, name string) (*typesystem.MetadataType, error) {
	if t, ok := m.types[namespace+"."+name]; ok {
		return t, nil
	}
	return nil, errors.NotFound(errors.PhaseResolve, "type", namespace+"."+name)
}

// env is a small System.Runtime plus a few user types.
type env struct {
	ctx *typesystem.Context
	sys *testModule

	object, valueType, enum, void    *typesystem.MetadataType
	str, int32, boolean, nullable    *typesystem.MetadataType
	list, pair, derived, util, shape *typesystem.MetadataType
	point, color, disposable         *typesystem.MetadataType

	listAdd, listMap, utilEcho *typesystem.MetadataMethod
}

func (e *env) add(info typesystem.MetadataTypeInfo) *typesystem.MetadataType {
	info.Module = e.sys
	if info.Namespace == "" {
		info.Namespace = "System"
	}
	t := e.ctx.NewMetadataType(info)
	e.sys.types[info.Namespace+"."+info.Name] = t
	return t
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		ctx: typesystem.NewContext(typesystem.DefaultOptions()),
		sys: &testModule{name: "System.Runtime", types: map[string]*typesystem.MetadataType{}},
	}
	e.ctx.SetSystemModule(e.sys)

	e.object = e.add(typesystem.MetadataTypeInfo{Name: "Object"})
	e.valueType = e.add(typesystem.MetadataTypeInfo{Name: "ValueType", BaseType: e.object})
	e.enum = e.add(typesystem.MetadataTypeInfo{Name: "Enum", BaseType: e.valueType})
	e.void = e.add(typesystem.MetadataTypeInfo{Name: "Void", BaseType: e.valueType})
	e.str = e.add(typesystem.MetadataTypeInfo{Name: "String", BaseType: e.object})
	e.int32 = e.add(typesystem.MetadataTypeInfo{Name: "Int32", BaseType: e.valueType})
	e.boolean = e.add(typesystem.MetadataTypeInfo{Name: "Boolean", BaseType: e.valueType})
	e.nullable = e.add(typesystem.MetadataTypeInfo{Name: "Nullable`1", BaseType: e.valueType, GenericParameters: []string{"T"}})
	e.add(typesystem.MetadataTypeInfo{Name: "Array", BaseType: e.object})

	t0 := e.ctx.GetSignatureVariable(0, false)
	m0 := e.ctx.GetSignatureVariable(0, true)

	e.list = e.add(typesystem.MetadataTypeInfo{
		Namespace: "System.Collections.Generic", Name: "List`1",
		BaseType: e.object, GenericParameters: []string{"T"},
	})
	e.listAdd = e.list.AddMethod(typesystem.MethodInfo{
		Name:      "Add",
		Signature: &typesystem.MethodSignature{ReturnType: e.void, Parameters: []typesystem.TypeDesc{t0}},
	})
	e.listMap = e.list.AddMethod(typesystem.MethodInfo{
		Name: "Map",
		Signature: &typesystem.MethodSignature{
			ReturnType:            e.ctx.GetArrayType(m0),
			Parameters:            []typesystem.TypeDesc{t0},
			GenericParameterCount: 1,
		},
		GenericParameters: []string{"U"},
	})
	e.list.AddField("_items", e.ctx.GetArrayType(t0), metadata.FieldAttributePrivate)

	e.pair = e.add(typesystem.MetadataTypeInfo{
		Namespace: "Demo", Name: "Pair`2",
		BaseType: e.valueType, GenericParameters: []string{"K", "V"},
	})
	e.derived = e.add(typesystem.MetadataTypeInfo{
		Namespace: "Demo", Name: "Derived`1", GenericParameters: []string{"T"},
	})
	e.derived.SetBaseType(e.ctx.GetInstantiatedType(e.list, typesystem.NewInstantiation(e.ctx.GetSignatureVariable(0, false))))

	e.util = e.add(typesystem.MetadataTypeInfo{Namespace: "Demo", Name: "Util", BaseType: e.object})
	e.utilEcho = e.util.AddMethod(typesystem.MethodInfo{
		Name: "Echo",
		Signature: &typesystem.MethodSignature{
			ReturnType:            m0,
			Parameters:            []typesystem.TypeDesc{m0},
			GenericParameterCount: 1,
			Flags:                 typesystem.SignatureStatic,
		},
		GenericParameters: []string{"T"},
	})

	e.shape = e.add(typesystem.MetadataTypeInfo{Namespace: "Demo", Name: "Shape", BaseType: e.object})
	e.point = e.add(typesystem.MetadataTypeInfo{Namespace: "Demo", Name: "Point", BaseType: e.valueType})
	e.color = e.add(typesystem.MetadataTypeInfo{Namespace: "Demo", Name: "Color", BaseType: e.enum})
	e.disposable = e.add(typesystem.MetadataTypeInfo{
		Namespace: "Demo", Name: "IDisposable",
		Attributes: metadata.TypeAttributeInterface | metadata.TypeAttributeAbstract,
	})
	return e
}

func (e *env) inst(def *typesystem.MetadataType, args ...typesystem.TypeDesc) *typesystem.InstantiatedType {
	return e.ctx.GetInstantiatedType(def, typesystem.NewInstantiation(args...))
}

func mustPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	f()
}
