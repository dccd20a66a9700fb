package typesystem

import (
	"strconv"

	"github.com/wippyai/nativeformat/metadata"
)

// GenericParameterDesc is a generic parameter declared by a type or method
// definition. It is the element of a definition's own Instantiation.
type GenericParameterDesc struct {
	typeBase
	kind  metadata.GenericParameterKind
	index int
	name  string
}

func newGenericParameter(ctx *Context, kind metadata.GenericParameterKind, index int, name string) *GenericParameterDesc {
	p := &GenericParameterDesc{kind: kind, index: index, name: name}
	p.init(ctx, p)
	return p
}

func (p *GenericParameterDesc) Kind() metadata.GenericParameterKind { return p.kind }
func (p *GenericParameterDesc) Index() int                          { return p.index }
func (p *GenericParameterDesc) Name() string                        { return p.name }
func (p *GenericParameterDesc) String() string                      { return p.name }
func (p *GenericParameterDesc) computeCategory() TypeFlags          { return CategoryGenericParameter }

func (p *GenericParameterDesc) InstantiateSignature(typeInst, methodInst Instantiation) TypeDesc {
	return substitute(p, p.kind == metadata.GenericParameterKindMethod, p.index, typeInst, methodInst)
}

func (p *GenericParameterDesc) convertToCanonFormImpl(CanonicalFormKind) TypeDesc { return p }

// SignatureVariable is a positional reference to a generic argument inside a
// signature: !N for the owning type's arguments, !!N for the method's.
type SignatureVariable struct {
	typeBase
	index  int
	method bool
}

func newSignatureVariable(ctx *Context, index int, method bool) *SignatureVariable {
	v := &SignatureVariable{index: index, method: method}
	v.init(ctx, v)
	return v
}

// Index returns N.
func (v *SignatureVariable) Index() int { return v.index }

// IsMethodSignatureVariable reports whether v is !!N.
func (v *SignatureVariable) IsMethodSignatureVariable() bool { return v.method }

func (v *SignatureVariable) computeCategory() TypeFlags {
	if v.method {
		return CategorySignatureMethodVariable
	}
	return CategorySignatureTypeVariable
}

func (v *SignatureVariable) InstantiateSignature(typeInst, methodInst Instantiation) TypeDesc {
	return substitute(v, v.method, v.index, typeInst, methodInst)
}

func (v *SignatureVariable) convertToCanonFormImpl(CanonicalFormKind) TypeDesc { return v }

func (v *SignatureVariable) String() string {
	if v.method {
		return "!!" + strconv.Itoa(v.index)
	}
	return "!" + strconv.Itoa(v.index)
}

// substitute picks the argument a variable refers to. Variables past the end
// of the instantiation are left in place.
func substitute(self TypeDesc, method bool, index int, typeInst, methodInst Instantiation) TypeDesc {
	inst := typeInst
	if method {
		inst = methodInst
	}
	if index < inst.Len() {
		return inst.At(index)
	}
	return self
}
