package loader

import (
	"github.com/wippyai/nativeformat/errors"
	"github.com/wippyai/nativeformat/metadata"
	"github.com/wippyai/nativeformat/typesystem"
)

func (m *Module) resolveMethod(h metadata.Handle, depth int) (typesystem.MethodDesc, error) {
	if depth > maxSignatureDepth {
		return nil, badMetadata(h, "method instantiation nested deeper than %d", maxSignatureDepth)
	}

	switch h.HandleType() {
	case metadata.HandleTypeMethod:
		mm, err := m.methodDefinition(metadata.MethodHandle(h))
		if err != nil {
			return nil, err
		}
		return mm, nil

	case metadata.HandleTypeMemberReference:
		return m.memberReference(metadata.MemberReferenceHandle(h), depth)

	case metadata.HandleTypeMethodInstantiation:
		rec, err := m.reader.GetMethodInstantiation(metadata.MethodInstantiationHandle(h))
		if err != nil {
			return nil, err
		}
		def, err := m.resolveMethod(rec.Method, depth+1)
		if err != nil {
			return nil, err
		}
		if want := def.GetMethodDefinition().Instantiation().Len(); want != len(rec.GenericTypeArguments) {
			return nil, badMetadata(h, "%s takes %d method arguments, got %d", def, want, len(rec.GenericTypeArguments))
		}
		args, err := m.resolveTypes(rec.GenericTypeArguments, depth+1)
		if err != nil {
			return nil, err
		}
		return m.ctx.GetInstantiatedMethod(def, typesystem.NewInstantiation(args...)), nil
	}

	if h.IsNil() {
		return nil, badMetadata(h, "nil method handle")
	}
	return nil, errors.TagMismatch("method", h.HandleType().String(), uint32(h))
}

// methodDefinition returns a method declared in this scope. Method records
// carry no owner, so the first declaring type found by the index is used.
func (m *Module) methodDefinition(h metadata.MethodHandle) (*typesystem.MetadataMethod, error) {
	owner, ok := m.owners[h]
	if !ok {
		return nil, badMetadata(metadata.Handle(h), "method %s is not declared by any type of %s", metadata.Handle(h), m.name)
	}
	if _, err := m.loadType(owner); err != nil {
		return nil, err
	}
	key := methodKey{owner, h}
	if mm, ok := m.methods[key]; ok {
		return mm, nil
	}
	if err, ok := m.dropped[key]; ok {
		return nil, err
	}
	return nil, badMetadata(metadata.Handle(h), "method %s was not loaded", metadata.Handle(h))
}

// memberReference looks a method up by name and uninstantiated signature
// on its parent type, which may live in another module.
func (m *Module) memberReference(h metadata.MemberReferenceHandle, depth int) (typesystem.MethodDesc, error) {
	rec, err := m.reader.GetMemberReference(h)
	if err != nil {
		return nil, err
	}
	name, err := m.reader.GetString(rec.Name)
	if err != nil {
		return nil, err
	}
	parent, err := m.resolveType(rec.Parent, depth+1)
	if err != nil {
		return nil, err
	}
	sigHandle, err := metadata.As[metadata.MethodSignatureHandle](rec.Signature)
	if err != nil || sigHandle == 0 {
		return nil, badMetadata(metadata.Handle(h), "member reference %q has no method signature", name)
	}
	sig, err := m.methodSignature(sigHandle, depth+1)
	if err != nil {
		return nil, err
	}

	if md := typesystem.FindMethod(parent, name, sig); md != nil {
		return md, nil
	}
	return nil, errors.MissingType(scopeOf(parent, m.name), parent.String()+"::"+name+sig.String())
}

// scopeOf names the module defining t, falling back to def.
func scopeOf(t typesystem.TypeDesc, def string) string {
	if mt, ok := t.TypeDefinition().(*typesystem.MetadataType); ok && mt.Module() != nil {
		return mt.Module().Name()
	}
	return def
}
