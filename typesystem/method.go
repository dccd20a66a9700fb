package typesystem

import (
	"fmt"
	"strings"

	"github.com/wippyai/nativeformat/metadata"
)

// MethodDesc is any method known to a Context.
type MethodDesc interface {
	fmt.Stringer

	Context() *Context
	Name() string
	OwningType() TypeDesc
	Signature() *MethodSignature
	// Instantiation returns the method's own generic arguments.
	Instantiation() Instantiation
	HasInstantiation() bool

	// GetTypicalMethodDefinition returns the method on the open type
	// definition with no method arguments applied.
	GetTypicalMethodDefinition() MethodDesc
	// GetMethodDefinition returns the method with its own arguments removed
	// but the owning type's kept.
	GetMethodDefinition() MethodDesc

	IsCanonicalMethod(policy CanonicalFormKind) bool
	GetCanonMethodTarget(kind CanonicalFormKind) MethodDesc

	id() uint64
}

// MethodInfo describes a method declaration.
type MethodInfo struct {
	Signature         *MethodSignature
	Name              string
	Attributes        metadata.MethodAttributes
	ImplAttributes    metadata.MethodImplAttributes
	GenericParameters []string
}

type methodBase struct {
	ctx   *Context
	ident uint64
}

func (b *methodBase) init(ctx *Context) {
	b.ctx = ctx
	b.ident = ctx.nextID.Add(1)
}

func (b *methodBase) Context() *Context { return b.ctx }
func (b *methodBase) id() uint64        { return b.ident }

// canonCache memoizes GetCanonMethodTarget per kind.
type canonCache struct {
	specific  lazy[MethodDesc]
	universal lazy[MethodDesc]
}

func (c *canonCache) get(kind CanonicalFormKind, compute func() MethodDesc) MethodDesc {
	switch kind {
	case CanonicalFormSpecific:
		return c.specific.get(compute)
	case CanonicalFormUniversal:
		return c.universal.get(compute)
	}
	panic(fmt.Sprintf("typesystem: GetCanonMethodTarget called with %s", kind))
}

// MetadataMethod is a method declared on a MetadataType.
type MetadataMethod struct {
	methodBase
	owner         *MetadataType
	sig           *MethodSignature
	name          string
	attrs         metadata.MethodAttributes
	implAttrs     metadata.MethodImplAttributes
	genericParams []*GenericParameterDesc
	inst          Instantiation
}

func newMetadataMethod(ctx *Context, owner *MetadataType, info MethodInfo) *MetadataMethod {
	m := &MetadataMethod{
		owner:     owner,
		sig:       info.Signature,
		name:      info.Name,
		attrs:     info.Attributes,
		implAttrs: info.ImplAttributes,
	}
	m.init(ctx)
	if len(info.GenericParameters) > 0 {
		m.genericParams = make([]*GenericParameterDesc, len(info.GenericParameters))
		args := make([]TypeDesc, len(info.GenericParameters))
		for i, name := range info.GenericParameters {
			p := newGenericParameter(ctx, metadata.GenericParameterKindMethod, i, name)
			m.genericParams[i] = p
			args[i] = p
		}
		m.inst = Instantiation{types: args}
	}
	if m.sig == nil {
		m.sig = &MethodSignature{}
	}
	return m
}

func (m *MetadataMethod) Name() string                                  { return m.name }
func (m *MetadataMethod) OwningType() TypeDesc                          { return m.owner }
func (m *MetadataMethod) Owner() *MetadataType                          { return m.owner }
func (m *MetadataMethod) Signature() *MethodSignature                   { return m.sig }
func (m *MetadataMethod) Attributes() metadata.MethodAttributes         { return m.attrs }
func (m *MetadataMethod) ImplAttributes() metadata.MethodImplAttributes { return m.implAttrs }
func (m *MetadataMethod) Instantiation() Instantiation                  { return m.inst }
func (m *MetadataMethod) HasInstantiation() bool                        { return !m.inst.IsEmpty() }
func (m *MetadataMethod) GetTypicalMethodDefinition() MethodDesc        { return m }
func (m *MetadataMethod) GetMethodDefinition() MethodDesc               { return m }

// GenericParameters returns the method's declared generic parameters.
func (m *MetadataMethod) GenericParameters() []*GenericParameterDesc { return m.genericParams }

func (m *MetadataMethod) IsCanonicalMethod(policy CanonicalFormKind) bool {
	return isCanonicalMethod(m, policy)
}

// GetCanonMethodTarget returns m: a method on a definition has no
// arguments to canonicalize.
func (m *MetadataMethod) GetCanonMethodTarget(CanonicalFormKind) MethodDesc { return m }

func (m *MetadataMethod) String() string { return methodString(m) }

// MethodForInstantiatedType is a method of a generic definition viewed as a
// member of one instantiation, e.g. List<int>.Add.
type MethodForInstantiatedType struct {
	methodBase
	typical *MetadataMethod
	owner   *InstantiatedType
	sig     lazy[*MethodSignature]
	canon   canonCache
}

func newMethodForInstantiatedType(ctx *Context, typical *MetadataMethod, owner *InstantiatedType) *MethodForInstantiatedType {
	m := &MethodForInstantiatedType{typical: typical, owner: owner}
	m.init(ctx)
	return m
}

func (m *MethodForInstantiatedType) Name() string                           { return m.typical.name }
func (m *MethodForInstantiatedType) OwningType() TypeDesc                   { return m.owner }
func (m *MethodForInstantiatedType) Instantiation() Instantiation           { return m.typical.inst }
func (m *MethodForInstantiatedType) HasInstantiation() bool                 { return m.typical.HasInstantiation() }
func (m *MethodForInstantiatedType) GetTypicalMethodDefinition() MethodDesc { return m.typical }
func (m *MethodForInstantiatedType) GetMethodDefinition() MethodDesc        { return m }

// Typical returns the method on the generic definition.
func (m *MethodForInstantiatedType) Typical() *MetadataMethod { return m.typical }

// Signature returns the typical signature with the owner's arguments substituted.
func (m *MethodForInstantiatedType) Signature() *MethodSignature {
	return m.sig.get(func() *MethodSignature {
		return m.typical.sig.Instantiate(m.owner.inst, Instantiation{})
	})
}

func (m *MethodForInstantiatedType) IsCanonicalMethod(policy CanonicalFormKind) bool {
	return isCanonicalMethod(m, policy)
}

// GetCanonMethodTarget returns the same method on the canonical form of the
// owning type.
func (m *MethodForInstantiatedType) GetCanonMethodTarget(kind CanonicalFormKind) MethodDesc {
	return m.canon.get(kind, func() MethodDesc {
		owner := m.owner.ConvertToCanonForm(kind)
		if owner == TypeDesc(m.owner) {
			return m
		}
		return m.ctx.GetMethodForInstantiatedType(m.typical, owner.(*InstantiatedType))
	})
}

func (m *MethodForInstantiatedType) String() string { return methodString(m) }

// InstantiatedMethod is a generic method definition applied to method
// arguments, e.g. Enumerable.Select<int,string>.
type InstantiatedMethod struct {
	methodBase
	def   MethodDesc
	inst  Instantiation
	sig   lazy[*MethodSignature]
	canon canonCache
}

func newInstantiatedMethod(ctx *Context, def MethodDesc, inst Instantiation) *InstantiatedMethod {
	m := &InstantiatedMethod{def: def, inst: inst}
	m.init(ctx)
	return m
}

func (m *InstantiatedMethod) Name() string                           { return m.def.Name() }
func (m *InstantiatedMethod) OwningType() TypeDesc                   { return m.def.OwningType() }
func (m *InstantiatedMethod) Instantiation() Instantiation           { return m.inst }
func (m *InstantiatedMethod) HasInstantiation() bool                 { return true }
func (m *InstantiatedMethod) GetTypicalMethodDefinition() MethodDesc { return m.def.GetTypicalMethodDefinition() }
func (m *InstantiatedMethod) GetMethodDefinition() MethodDesc        { return m.def }

// Signature returns the definition's signature with the method arguments
// substituted.
func (m *InstantiatedMethod) Signature() *MethodSignature {
	return m.sig.get(func() *MethodSignature {
		return m.def.Signature().Instantiate(m.OwningType().Instantiation(), m.inst)
	})
}

func (m *InstantiatedMethod) IsCanonicalMethod(policy CanonicalFormKind) bool {
	return isCanonicalMethod(m, policy)
}

// GetCanonMethodTarget canonicalizes the method arguments and the
// definition's owning type, and re-instantiates only if either changed.
// Under Specific, if either side reaches __UniversalCanon both are
// canonicalized under Universal.
func (m *InstantiatedMethod) GetCanonMethodTarget(kind CanonicalFormKind) MethodDesc {
	return m.canon.get(kind, func() MethodDesc {
		inst, changed, k := m.ctx.convertInstantiation(m.inst, kind)
		def := m.def.GetCanonMethodTarget(k)
		if k == CanonicalFormSpecific && def.OwningType().IsCanonicalSubtype(CanonicalFormUniversal) {
			k = CanonicalFormUniversal
			inst, changed, _ = m.ctx.convertInstantiation(m.inst, k)
			def = m.def.GetCanonMethodTarget(k)
		}
		if !changed && def == m.def {
			return m
		}
		return m.ctx.GetInstantiatedMethod(def, inst)
	})
}

func (m *InstantiatedMethod) String() string { return methodString(m) }

func isCanonicalMethod(m MethodDesc, policy CanonicalFormKind) bool {
	if m.OwningType().IsCanonicalSubtype(policy) {
		return true
	}
	return m.Instantiation().Any(func(t TypeDesc) bool {
		return t.IsCanonicalSubtype(policy)
	})
}

func methodString(m MethodDesc) string {
	var b strings.Builder
	b.WriteString(m.OwningType().String())
	b.WriteByte('.')
	b.WriteString(m.Name())
	if m.HasInstantiation() {
		m.Instantiation().writeTo(&b)
	}
	b.WriteByte('(')
	for i, p := range m.Signature().Parameters {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	return b.String()
}

// FindMethod looks up a method by name and uninstantiated signature on a
// MetadataType or an InstantiatedType. A nil sig matches the first method
// with the name.
func FindMethod(owner TypeDesc, name string, sig *MethodSignature) MethodDesc {
	switch t := owner.(type) {
	case *MetadataType:
		if m := t.GetMethod(name, sig); m != nil {
			return m
		}
	case *InstantiatedType:
		if m := t.GetMethod(name, sig); m != nil {
			return m
		}
	}
	return nil
}
