package typesystem

import "strings"

// InstantiatedType is a generic definition applied to type arguments.
type InstantiatedType struct {
	typeBase

	def  *MetadataType
	inst Instantiation

	baseType lazy[TypeDesc]
	methods  lazy[[]*MethodForInstantiatedType]
	fields   lazy[[]*FieldDesc]
}

func newInstantiatedType(ctx *Context, def *MetadataType, inst Instantiation) *InstantiatedType {
	t := &InstantiatedType{def: def, inst: inst}
	t.init(ctx, t)
	return t
}

func (t *InstantiatedType) Instantiation() Instantiation { return t.inst }
func (t *InstantiatedType) IsDefType() bool              { return true }
func (t *InstantiatedType) TypeDefinition() TypeDesc     { return t.def }

// Definition returns the generic type definition.
func (t *InstantiatedType) Definition() *MetadataType { return t.def }

func (t *InstantiatedType) Namespace() string { return t.def.namespace }
func (t *InstantiatedType) Name() string      { return t.def.name }

func (t *InstantiatedType) computeCategory() TypeFlags { return t.def.Category() }

func (t *InstantiatedType) components() []TypeDesc { return t.inst.types }

// BaseType returns the definition's base type with this type's arguments
// substituted.
func (t *InstantiatedType) BaseType() TypeDesc {
	return t.baseType.get(func() TypeDesc {
		base := t.def.BaseType()
		if base == nil {
			return nil
		}
		return base.InstantiateSignature(t.inst, Instantiation{})
	})
}

// Methods returns the definition's methods as members of t.
func (t *InstantiatedType) Methods() []*MethodForInstantiatedType {
	return t.methods.get(func() []*MethodForInstantiatedType {
		out := make([]*MethodForInstantiatedType, len(t.def.methods))
		for i, m := range t.def.methods {
			out[i] = t.ctx.GetMethodForInstantiatedType(m, t)
		}
		return out
	})
}

// Fields returns the definition's fields with types substituted for t.
func (t *InstantiatedType) Fields() []*FieldDesc {
	return t.fields.get(func() []*FieldDesc {
		out := make([]*FieldDesc, len(t.def.fields))
		for i, f := range t.def.fields {
			out[i] = &FieldDesc{
				owner:     t,
				typical:   f,
				name:      f.name,
				fieldType: f.fieldType.InstantiateSignature(t.inst, Instantiation{}),
				attrs:     f.attrs,
			}
		}
		return out
	})
}

// GetMethod returns the method named name whose uninstantiated signature
// equals sig. A nil sig matches any signature.
func (t *InstantiatedType) GetMethod(name string, sig *MethodSignature) *MethodForInstantiatedType {
	typical := t.def.GetMethod(name, sig)
	if typical == nil {
		return nil
	}
	return t.ctx.GetMethodForInstantiatedType(typical, t)
}

func (t *InstantiatedType) InstantiateSignature(typeInst, methodInst Instantiation) TypeDesc {
	inst := t.inst.Instantiate(typeInst, methodInst)
	if inst.Same(t.inst) {
		return t
	}
	return t.ctx.GetInstantiatedType(t.def, inst)
}

func (t *InstantiatedType) convertToCanonFormImpl(kind CanonicalFormKind) TypeDesc {
	inst, changed := t.ctx.ConvertInstantiationToCanonForm(t.inst, kind)
	if !changed {
		return t
	}
	return t.ctx.GetInstantiatedType(t.def, inst)
}

func (t *InstantiatedType) String() string {
	var b strings.Builder
	t.def.writeName(&b)
	t.inst.writeTo(&b)
	return b.String()
}
