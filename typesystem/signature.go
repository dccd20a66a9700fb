package typesystem

import "strings"

// MethodSignatureFlags holds calling-convention bits relevant to the type system.
type MethodSignatureFlags uint8

const (
	SignatureStatic MethodSignatureFlags = 1 << iota
)

// MethodSignature is a method's return and parameter types. Signatures of
// definitions use !N and !!N for generic arguments.
type MethodSignature struct {
	ReturnType            TypeDesc
	Parameters            []TypeDesc
	GenericParameterCount int
	Flags                 MethodSignatureFlags
}

// IsStatic reports whether the signature has no this parameter.
func (s *MethodSignature) IsStatic() bool { return s.Flags&SignatureStatic != 0 }

// Equal compares flags, arity and every type by identity.
func (s *MethodSignature) Equal(o *MethodSignature) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil {
		return false
	}
	if s.Flags != o.Flags || s.GenericParameterCount != o.GenericParameterCount ||
		s.ReturnType != o.ReturnType || len(s.Parameters) != len(o.Parameters) {
		return false
	}
	for i, p := range s.Parameters {
		if p != o.Parameters[i] {
			return false
		}
	}
	return true
}

// Instantiate substitutes signature variables. s is returned when nothing
// changes.
func (s *MethodSignature) Instantiate(typeInst, methodInst Instantiation) *MethodSignature {
	if s == nil {
		return nil
	}
	ret := s.ReturnType
	if ret != nil {
		ret = ret.InstantiateSignature(typeInst, methodInst)
	}
	params, changed := Instantiation{types: s.Parameters}.mapTypesChanged(func(t TypeDesc) TypeDesc {
		return t.InstantiateSignature(typeInst, methodInst)
	})
	if !changed && ret == s.ReturnType {
		return s
	}
	return &MethodSignature{
		ReturnType:            ret,
		Parameters:            params.types,
		GenericParameterCount: s.GenericParameterCount,
		Flags:                 s.Flags,
	}
}

func (s *MethodSignature) String() string {
	var b strings.Builder
	if s.ReturnType != nil {
		b.WriteString(s.ReturnType.String())
	} else {
		b.WriteString("void")
	}
	b.WriteByte('(')
	for i, p := range s.Parameters {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	return b.String()
}
