package typesystem

import "strings"

// ArrayType is T[] (rank -1, the SZ array) or T[,...] of a fixed rank.
type ArrayType struct {
	typeBase
	elem TypeDesc
	rank int
}

func newArrayType(ctx *Context, elem TypeDesc, rank int) *ArrayType {
	t := &ArrayType{elem: elem, rank: rank}
	t.init(ctx, t)
	return t
}

// ElementType returns the element type.
func (t *ArrayType) ElementType() TypeDesc { return t.elem }

// Rank returns the number of dimensions.
func (t *ArrayType) Rank() int {
	if t.rank < 0 {
		return 1
	}
	return t.rank
}

// IsSzArray reports whether t is a single-dimensional zero-based array.
func (t *ArrayType) IsSzArray() bool { return t.rank < 0 }

func (t *ArrayType) computeCategory() TypeFlags {
	if t.rank < 0 {
		return CategorySzArray
	}
	return CategoryArray
}

func (t *ArrayType) components() []TypeDesc { return []TypeDesc{t.elem} }

func (t *ArrayType) BaseType() TypeDesc { return t.ctx.wellKnownOrNil(WellKnownArray) }

func (t *ArrayType) rebuild(elem TypeDesc) TypeDesc {
	if elem == t.elem {
		return t
	}
	return t.ctx.getArrayType(elem, t.rank)
}

func (t *ArrayType) InstantiateSignature(typeInst, methodInst Instantiation) TypeDesc {
	return t.rebuild(t.elem.InstantiateSignature(typeInst, methodInst))
}

func (t *ArrayType) convertToCanonFormImpl(kind CanonicalFormKind) TypeDesc {
	return t.rebuild(t.ctx.ConvertToCanon(t.elem, kind))
}

func (t *ArrayType) String() string {
	var b strings.Builder
	b.WriteString(t.elem.String())
	b.WriteByte('[')
	if t.rank == 1 {
		b.WriteByte('*')
	}
	for i := 1; i < t.rank; i++ {
		b.WriteByte(',')
	}
	b.WriteByte(']')
	return b.String()
}

// ByRefType is a managed reference T&.
type ByRefType struct {
	typeBase
	elem TypeDesc
}

func newByRefType(ctx *Context, elem TypeDesc) *ByRefType {
	t := &ByRefType{elem: elem}
	t.init(ctx, t)
	return t
}

func (t *ByRefType) ParameterType() TypeDesc    { return t.elem }
func (t *ByRefType) computeCategory() TypeFlags { return CategoryByRef }
func (t *ByRefType) components() []TypeDesc     { return []TypeDesc{t.elem} }
func (t *ByRefType) String() string             { return t.elem.String() + "&" }

func (t *ByRefType) InstantiateSignature(typeInst, methodInst Instantiation) TypeDesc {
	if elem := t.elem.InstantiateSignature(typeInst, methodInst); elem != t.elem {
		return t.ctx.GetByRefType(elem)
	}
	return t
}

func (t *ByRefType) convertToCanonFormImpl(kind CanonicalFormKind) TypeDesc {
	if elem := t.ctx.ConvertToCanon(t.elem, kind); elem != t.elem {
		return t.ctx.GetByRefType(elem)
	}
	return t
}

// PointerType is an unmanaged pointer T*.
type PointerType struct {
	typeBase
	elem TypeDesc
}

func newPointerType(ctx *Context, elem TypeDesc) *PointerType {
	t := &PointerType{elem: elem}
	t.init(ctx, t)
	return t
}

func (t *PointerType) ParameterType() TypeDesc    { return t.elem }
func (t *PointerType) computeCategory() TypeFlags { return CategoryPointer }
func (t *PointerType) components() []TypeDesc     { return []TypeDesc{t.elem} }
func (t *PointerType) String() string             { return t.elem.String() + "*" }

func (t *PointerType) InstantiateSignature(typeInst, methodInst Instantiation) TypeDesc {
	if elem := t.elem.InstantiateSignature(typeInst, methodInst); elem != t.elem {
		return t.ctx.GetPointerType(elem)
	}
	return t
}

func (t *PointerType) convertToCanonFormImpl(kind CanonicalFormKind) TypeDesc {
	if elem := t.ctx.ConvertToCanon(t.elem, kind); elem != t.elem {
		return t.ctx.GetPointerType(elem)
	}
	return t
}
