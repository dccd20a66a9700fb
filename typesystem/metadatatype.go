package typesystem

import (
	"strings"

	"github.com/wippyai/nativeformat/metadata"
)

// MetadataTypeInfo describes a named type definition.
type MetadataTypeInfo struct {
	Module     Module
	BaseType   TypeDesc
	Namespace  string
	Name       string
	Attributes metadata.TypeAttributes
	// Category overrides the category derived from Attributes and BaseType.
	Category TypeFlags
	// GenericParameters names the type's generic parameters in order.
	GenericParameters []string
}

// MetadataType is a named type definition. A generic MetadataType is the
// open definition; its Instantiation holds its own generic parameters.
type MetadataType struct {
	typeBase

	module        Module
	baseType      TypeDesc
	namespace     string
	name          string
	attrs         metadata.TypeAttributes
	category      TypeFlags
	genericParams []*GenericParameterDesc
	inst          Instantiation
	enclosing     *MetadataType

	methods []*MetadataMethod
	fields  []*FieldDesc
}

// NewMetadataType creates a type definition. Definitions are not interned;
// modules keep one MetadataType per definition record.
func (c *Context) NewMetadataType(info MetadataTypeInfo) *MetadataType {
	t := &MetadataType{
		module:    info.Module,
		baseType:  info.BaseType,
		namespace: info.Namespace,
		name:      info.Name,
		attrs:     info.Attributes,
		category:  info.Category & CategoryMask,
	}
	t.init(c, t)
	if len(info.GenericParameters) > 0 {
		t.genericParams = make([]*GenericParameterDesc, len(info.GenericParameters))
		args := make([]TypeDesc, len(info.GenericParameters))
		for i, name := range info.GenericParameters {
			p := newGenericParameter(c, metadata.GenericParameterKindType, i, name)
			t.genericParams[i] = p
			args[i] = p
		}
		t.inst = Instantiation{types: args}
	}
	return t
}

// SetBaseType sets the base type. It must be called before the type's
// category is first queried.
func (t *MetadataType) SetBaseType(base TypeDesc) { t.baseType = base }

// SetEnclosingType records the type this one is nested in.
func (t *MetadataType) SetEnclosingType(e *MetadataType) { t.enclosing = e }

// AddMethod declares a method on t.
func (t *MetadataType) AddMethod(info MethodInfo) *MetadataMethod {
	m := newMetadataMethod(t.ctx, t, info)
	t.methods = append(t.methods, m)
	return m
}

// AddField declares a field on t. Field types may use !N for t's generic
// parameters.
func (t *MetadataType) AddField(name string, fieldType TypeDesc, attrs metadata.FieldAttributes) *FieldDesc {
	f := &FieldDesc{owner: t, name: name, fieldType: fieldType, attrs: attrs}
	t.fields = append(t.fields, f)
	return f
}

func (t *MetadataType) Module() Module                      { return t.module }
func (t *MetadataType) Namespace() string                   { return t.namespace }
func (t *MetadataType) Name() string                        { return t.name }
func (t *MetadataType) Attributes() metadata.TypeAttributes { return t.attrs }
func (t *MetadataType) EnclosingType() *MetadataType        { return t.enclosing }
func (t *MetadataType) Methods() []*MetadataMethod          { return t.methods }
func (t *MetadataType) Fields() []*FieldDesc                { return t.fields }

// GenericParameters returns the declared generic parameters.
func (t *MetadataType) GenericParameters() []*GenericParameterDesc { return t.genericParams }

func (t *MetadataType) Instantiation() Instantiation { return t.inst }
func (t *MetadataType) IsDefType() bool              { return true }

// IsGenericDefinition reports whether t declares generic parameters.
func (t *MetadataType) IsGenericDefinition() bool { return len(t.genericParams) > 0 }

func (t *MetadataType) BaseType() TypeDesc { return t.baseType }

func (t *MetadataType) computeCategory() TypeFlags {
	if t.category != CategoryUnknown {
		return t.category
	}
	if t.ctx.IsSystemModule(t.module) && t.namespace == "System" && t.enclosing == nil {
		if c, ok := primitiveCategories[t.name]; ok {
			return c
		}
		if t.name == WellKnownNullable.Name() {
			return CategoryNullable
		}
	}
	if t.attrs.IsInterface() {
		return CategoryInterface
	}
	if base, ok := t.baseType.(*MetadataType); ok && t.ctx.IsSystemModule(base.module) && base.namespace == "System" {
		switch {
		case base.name == WellKnownEnum.Name():
			return CategoryEnum
		case base.name == WellKnownValueType.Name() && !t.isSystem(WellKnownEnum):
			return CategoryValueType
		}
	}
	return CategoryClass
}

func (t *MetadataType) isSystem(wk WellKnownType) bool {
	return t.ctx.IsSystemModule(t.module) && t.namespace == "System" && t.name == wk.Name()
}

// GetMethod returns the first method named name whose signature equals sig.
// A nil sig matches any signature.
func (t *MetadataType) GetMethod(name string, sig *MethodSignature) *MetadataMethod {
	for _, m := range t.methods {
		if m.name == name && (sig == nil || m.sig.Equal(sig)) {
			return m
		}
	}
	return nil
}

// GetField returns the field named name.
func (t *MetadataType) GetField(name string) *FieldDesc {
	for _, f := range t.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

func (t *MetadataType) convertToCanonFormImpl(CanonicalFormKind) TypeDesc { return t }

func (t *MetadataType) String() string {
	var b strings.Builder
	t.writeName(&b)
	return b.String()
}

func (t *MetadataType) writeName(b *strings.Builder) {
	if t.enclosing != nil {
		t.enclosing.writeName(b)
		b.WriteByte('+')
	} else if t.namespace != "" {
		b.WriteString(t.namespace)
		b.WriteByte('.')
	}
	b.WriteString(t.name)
}
