package typesystem

import (
	"fmt"
	"sync/atomic"
)

// TypeDesc is any type known to a Context. Types are interned: within one
// Context two TypeDescs denote the same type iff they are the same object.
type TypeDesc interface {
	fmt.Stringer

	Context() *Context
	// GetTypeFlags returns the requested flag groups, computing them on first use.
	GetTypeFlags(mask TypeFlags) TypeFlags
	Category() TypeFlags

	Instantiation() Instantiation
	HasInstantiation() bool

	IsValueType() bool
	IsPrimitive() bool
	IsDefType() bool
	IsInterface() bool
	IsArray() bool
	IsByRef() bool
	IsPointer() bool
	IsSignatureVariable() bool
	IsGenericParameter() bool
	ContainsSignatureVariables() bool

	// BaseType returns nil for types without a base.
	BaseType() TypeDesc
	// TypeDefinition returns the uninstantiated definition, or the type itself.
	TypeDefinition() TypeDesc

	ConvertToCanonForm(kind CanonicalFormKind) TypeDesc
	IsCanonicalSubtype(policy CanonicalFormKind) bool

	// InstantiateSignature substitutes !N with typeInst[N] and !!N with
	// methodInst[N]. The receiver is returned when nothing changes.
	InstantiateSignature(typeInst, methodInst Instantiation) TypeDesc

	id() uint64
	computeCategory() TypeFlags
	components() []TypeDesc
	convertToCanonFormImpl(kind CanonicalFormKind) TypeDesc
}

// typeBase carries the state shared by every TypeDesc implementation.
type typeBase struct {
	ctx   *Context
	self  TypeDesc
	flags atomic.Uint32
	ident uint64

	specificCanon  lazy[TypeDesc]
	universalCanon lazy[TypeDesc]
}

func (b *typeBase) init(ctx *Context, self TypeDesc) {
	b.ctx = ctx
	b.self = self
	b.ident = ctx.nextID.Add(1)
}

func (b *typeBase) id() uint64 { return b.ident }

func (b *typeBase) Context() *Context { return b.ctx }

func (b *typeBase) publish(bits TypeFlags) TypeFlags {
	return TypeFlags(b.flags.Or(uint32(bits))) | bits
}

func (b *typeBase) GetTypeFlags(mask TypeFlags) TypeFlags {
	f := TypeFlags(b.flags.Load())

	if mask&CategoryMask != 0 && f&CategoryComputed == 0 {
		f = b.publish(b.self.computeCategory()&CategoryMask | CategoryComputed)
	}

	if mask&ContainsSignatureVariables != 0 && f&ContainsSignatureVariablesComputed == 0 {
		bits := ContainsSignatureVariablesComputed
		if b.self.IsSignatureVariable() {
			bits |= ContainsSignatureVariables
		} else {
			for _, c := range b.self.components() {
				if c.ContainsSignatureVariables() {
					bits |= ContainsSignatureVariables
					break
				}
			}
		}
		f = b.publish(bits)
	}

	if mask&(CanonicalSpecificSubtype|CanonicalUniversalSubtype) != 0 && f&CanonicalSubtypeComputed == 0 {
		bits := CanonicalSubtypeComputed
		switch b.self.(type) {
		case *CanonType:
			bits |= CanonicalSpecificSubtype
		case *UniversalCanonType:
			bits |= CanonicalUniversalSubtype
		default:
			for _, c := range b.self.components() {
				bits |= c.GetTypeFlags(CanonicalSpecificSubtype | CanonicalUniversalSubtype)
			}
		}
		f = b.publish(bits)
	}

	return f & mask
}

func (b *typeBase) Category() TypeFlags { return b.GetTypeFlags(CategoryMask) }

func (b *typeBase) Instantiation() Instantiation { return Instantiation{} }

func (b *typeBase) HasInstantiation() bool { return !b.self.Instantiation().IsEmpty() }

func (b *typeBase) IsValueType() bool { return IsValueTypeCategory(b.Category()) }

func (b *typeBase) IsPrimitive() bool { return IsPrimitiveCategory(b.Category()) }

func (b *typeBase) IsDefType() bool { return false }

func (b *typeBase) IsInterface() bool { return b.Category() == CategoryInterface }

func (b *typeBase) IsArray() bool {
	c := b.Category()
	return c == CategoryArray || c == CategorySzArray
}

func (b *typeBase) IsByRef() bool { return b.Category() == CategoryByRef }

func (b *typeBase) IsPointer() bool { return b.Category() == CategoryPointer }

func (b *typeBase) IsSignatureVariable() bool {
	c := b.Category()
	return c == CategorySignatureTypeVariable || c == CategorySignatureMethodVariable
}

func (b *typeBase) IsGenericParameter() bool { return b.Category() == CategoryGenericParameter }

func (b *typeBase) ContainsSignatureVariables() bool {
	return b.GetTypeFlags(ContainsSignatureVariables) != 0
}

func (b *typeBase) BaseType() TypeDesc { return nil }

func (b *typeBase) TypeDefinition() TypeDesc { return b.self }

func (b *typeBase) components() []TypeDesc { return nil }

func (b *typeBase) InstantiateSignature(_, _ Instantiation) TypeDesc { return b.self }

// ConvertToCanonForm returns the canonical form of this type under kind.
// The result is computed once per kind and cached on the type.
func (b *typeBase) ConvertToCanonForm(kind CanonicalFormKind) TypeDesc {
	switch kind {
	case CanonicalFormSpecific:
		return b.specificCanon.get(func() TypeDesc { return b.self.convertToCanonFormImpl(kind) })
	case CanonicalFormUniversal:
		return b.universalCanon.get(func() TypeDesc { return b.self.convertToCanonFormImpl(kind) })
	}
	panic(fmt.Sprintf("typesystem: ConvertToCanonForm called with %s", kind))
}

// IsCanonicalSubtype reports whether this type is, or is built over, the
// canonical placeholder selected by policy.
func (b *typeBase) IsCanonicalSubtype(policy CanonicalFormKind) bool {
	switch policy {
	case CanonicalFormSpecific:
		return b.GetTypeFlags(CanonicalSpecificSubtype) != 0
	case CanonicalFormUniversal:
		return b.GetTypeFlags(CanonicalUniversalSubtype) != 0
	case CanonicalFormAny:
		return b.GetTypeFlags(CanonicalSpecificSubtype|CanonicalUniversalSubtype) != 0
	}
	panic(fmt.Sprintf("typesystem: unknown canonical form kind %d", int(policy)))
}
