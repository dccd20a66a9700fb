package loader

import (
	"go.uber.org/zap"

	"github.com/wippyai/nativeformat/errors"
	"github.com/wippyai/nativeformat/metadata"
	"github.com/wippyai/nativeformat/typesystem"
)

// maxSignatureDepth bounds signature nesting so a corrupt blob cannot
// recurse without end.
const maxSignatureDepth = 64

// loadType materializes a type definition. The shell is published before
// the base type and members are resolved so that self-referencing
// signatures find it.
func (m *Module) loadType(h metadata.TypeDefinitionHandle) (*typesystem.MetadataType, error) {
	if t, ok := m.types[h]; ok {
		return t, m.failed[h]
	}
	e, ok := m.entries[h]
	if !ok {
		if other := m.resolver.owner(m.reader, h); other != nil {
			return other.loadType(h)
		}
		return nil, badMetadata(metadata.Handle(h), "type definition %s is not declared by any scope", metadata.Handle(h))
	}

	params, err := m.genericParameterNames(e.rec.GenericParameters)
	if err != nil {
		return nil, err
	}
	var enclosing *typesystem.MetadataType
	if !e.rec.EnclosingType.IsNil() {
		if enclosing, err = m.loadType(e.rec.EnclosingType); err != nil {
			return nil, err
		}
	}

	t := m.ctx.NewMetadataType(typesystem.MetadataTypeInfo{
		Module:            m,
		Namespace:         e.namespace,
		Name:              e.name,
		Attributes:        e.rec.Flags,
		GenericParameters: params,
	})
	if enclosing != nil {
		t.SetEnclosingType(enclosing)
	}
	m.types[h] = t
	m.handles[t] = h

	if err := m.fillType(t, h, e); err != nil {
		m.failed[h] = err
		return t, err
	}

	Logger().Debug("type loaded",
		zap.String("module", m.name),
		zap.Stringer("type", t),
		zap.Int("methods", len(t.Methods())),
		zap.Int("fields", len(t.Fields())))
	return t, nil
}

func (m *Module) fillType(t *typesystem.MetadataType, h metadata.TypeDefinitionHandle, e *typeEntry) error {
	if !e.rec.BaseType.IsNil() {
		base, err := m.resolveType(e.rec.BaseType, 0)
		switch {
		case err == nil:
			t.SetBaseType(base)
		case m.tolerate(err):
			Logger().Debug("base type dropped", zap.Stringer("type", t), zap.Error(err))
		default:
			return err
		}
	}

	for _, fh := range e.rec.Fields {
		f, err := m.reader.GetField(fh)
		if err != nil {
			return err
		}
		name, err := m.reader.GetString(f.Name)
		if err != nil {
			return err
		}
		sig, err := m.reader.GetFieldSignature(f.Signature)
		if err != nil {
			return err
		}
		ft, err := m.resolveType(sig.Type, 0)
		if err != nil {
			if m.tolerate(err) {
				Logger().Debug("field dropped", zap.Stringer("type", t), zap.String("field", name), zap.Error(err))
				continue
			}
			return err
		}
		t.AddField(name, ft, f.Flags)
	}

	for _, mh := range e.rec.Methods {
		key := methodKey{h, mh}
		info, err := m.methodInfo(mh)
		if err != nil {
			if m.tolerate(err) {
				Logger().Debug("method dropped", zap.Stringer("type", t), zap.Error(err))
				m.dropped[key] = err
				continue
			}
			return err
		}
		m.methods[key] = t.AddMethod(info)
	}
	return nil
}

func (m *Module) genericParameterNames(hs []metadata.GenericParameterHandle) ([]string, error) {
	if len(hs) == 0 {
		return nil, nil
	}
	names := make([]string, len(hs))
	for i, gh := range hs {
		gp, err := m.reader.GetGenericParameter(gh)
		if err != nil {
			return nil, err
		}
		if int(gp.Number) != i {
			return nil, badMetadata(metadata.Handle(gh), "generic parameter %d declared at position %d", gp.Number, i)
		}
		if names[i], err = m.reader.GetString(gp.Name); err != nil {
			return nil, err
		}
	}
	return names, nil
}

func (m *Module) methodInfo(h metadata.MethodHandle) (typesystem.MethodInfo, error) {
	var info typesystem.MethodInfo
	rec, err := m.reader.GetMethod(h)
	if err != nil {
		return info, err
	}
	if info.Name, err = m.reader.GetString(rec.Name); err != nil {
		return info, err
	}
	if info.GenericParameters, err = m.genericParameterNames(rec.GenericParameters); err != nil {
		return info, err
	}
	if rec.Signature == 0 {
		return info, badMetadata(metadata.Handle(h), "method %q has no signature", info.Name)
	}
	if info.Signature, err = m.methodSignature(rec.Signature, 0); err != nil {
		return info, err
	}
	if info.Signature.GenericParameterCount != len(info.GenericParameters) {
		return info, badMetadata(metadata.Handle(h), "method %q declares %d generic parameters, signature has %d",
			info.Name, len(info.GenericParameters), info.Signature.GenericParameterCount)
	}
	info.Attributes = rec.Flags
	info.ImplAttributes = rec.ImplFlags
	return info, nil
}

func (m *Module) methodSignature(h metadata.MethodSignatureHandle, depth int) (*typesystem.MethodSignature, error) {
	rec, err := m.reader.GetMethodSignature(h)
	if err != nil {
		return nil, err
	}
	sig := &typesystem.MethodSignature{
		GenericParameterCount: int(rec.GenericParameterCount),
	}
	if rec.CallingConvention&metadata.CallingConventionHasThis == 0 {
		sig.Flags |= typesystem.SignatureStatic
	}
	if !rec.ReturnType.IsNil() {
		if sig.ReturnType, err = m.resolveType(rec.ReturnType, depth+1); err != nil {
			return nil, err
		}
	}
	if len(rec.Parameters) > 0 {
		sig.Parameters = make([]typesystem.TypeDesc, len(rec.Parameters))
		for i, p := range rec.Parameters {
			if sig.Parameters[i], err = m.resolveType(p, depth+1); err != nil {
				return nil, err
			}
		}
	}
	return sig, nil
}

func (m *Module) resolveType(h metadata.Handle, depth int) (typesystem.TypeDesc, error) {
	if depth > maxSignatureDepth {
		return nil, badMetadata(h, "signature nested deeper than %d", maxSignatureDepth)
	}
	r := m.reader

	switch h.HandleType() {
	case metadata.HandleTypeTypeDefinition:
		t, err := m.loadType(metadata.TypeDefinitionHandle(h))
		if err != nil {
			return nil, err
		}
		return t, nil

	case metadata.HandleTypeTypeReference:
		t, err := m.resolveTypeRef(metadata.TypeReferenceHandle(h), depth)
		if err != nil {
			return nil, err
		}
		return t, nil

	case metadata.HandleTypeTypeSpecification:
		rec, err := r.GetTypeSpecification(metadata.TypeSpecificationHandle(h))
		if err != nil {
			return nil, err
		}
		return m.resolveType(rec.Signature, depth+1)

	case metadata.HandleTypeTypeInstantiationSignature:
		rec, err := r.GetTypeInstantiationSignature(metadata.TypeInstantiationSignatureHandle(h))
		if err != nil {
			return nil, err
		}
		generic, err := m.resolveType(rec.GenericType, depth+1)
		if err != nil {
			return nil, err
		}
		def, ok := generic.(*typesystem.MetadataType)
		if !ok || len(def.GenericParameters()) != len(rec.GenericTypeArguments) {
			return nil, badMetadata(h, "%s cannot be instantiated over %d arguments", generic, len(rec.GenericTypeArguments))
		}
		args, err := m.resolveTypes(rec.GenericTypeArguments, depth+1)
		if err != nil {
			return nil, err
		}
		return m.ctx.GetInstantiatedType(def, typesystem.NewInstantiation(args...)), nil

	case metadata.HandleTypeSZArraySignature:
		rec, err := r.GetSZArraySignature(metadata.SZArraySignatureHandle(h))
		if err != nil {
			return nil, err
		}
		elem, err := m.resolveType(rec.ElementType, depth+1)
		if err != nil {
			return nil, err
		}
		return m.ctx.GetArrayType(elem), nil

	case metadata.HandleTypeArraySignature:
		rec, err := r.GetArraySignature(metadata.ArraySignatureHandle(h))
		if err != nil {
			return nil, err
		}
		if rec.Rank == 0 || rec.Rank > 32 {
			return nil, badMetadata(h, "array rank %d", rec.Rank)
		}
		elem, err := m.resolveType(rec.ElementType, depth+1)
		if err != nil {
			return nil, err
		}
		return m.ctx.GetMDArrayType(elem, int(rec.Rank)), nil

	case metadata.HandleTypeByReferenceSignature:
		rec, err := r.GetByReferenceSignature(metadata.ByReferenceSignatureHandle(h))
		if err != nil {
			return nil, err
		}
		elem, err := m.resolveType(rec.Type, depth+1)
		if err != nil {
			return nil, err
		}
		return m.ctx.GetByRefType(elem), nil

	case metadata.HandleTypePointerSignature:
		rec, err := r.GetPointerSignature(metadata.PointerSignatureHandle(h))
		if err != nil {
			return nil, err
		}
		elem, err := m.resolveType(rec.Type, depth+1)
		if err != nil {
			return nil, err
		}
		return m.ctx.GetPointerType(elem), nil

	case metadata.HandleTypeTypeVariableSignature:
		rec, err := r.GetTypeVariableSignature(metadata.TypeVariableSignatureHandle(h))
		if err != nil {
			return nil, err
		}
		return m.ctx.GetSignatureVariable(int(rec.Number), false), nil

	case metadata.HandleTypeMethodTypeVariableSignature:
		rec, err := r.GetMethodTypeVariableSignature(metadata.MethodTypeVariableSignatureHandle(h))
		if err != nil {
			return nil, err
		}
		return m.ctx.GetSignatureVariable(int(rec.Number), true), nil
	}

	if h.IsNil() {
		return nil, badMetadata(h, "nil type handle")
	}
	return nil, errors.TagMismatch("type", h.HandleType().String(), uint32(h))
}

func (m *Module) resolveTypes(hs []metadata.Handle, depth int) ([]typesystem.TypeDesc, error) {
	out := make([]typesystem.TypeDesc, len(hs))
	for i, h := range hs {
		t, err := m.resolveType(h, depth)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

// resolveTypeRef finds the definition a type reference names, through the
// resolver for namespace-qualified names or through the enclosing type for
// nested ones.
func (m *Module) resolveTypeRef(h metadata.TypeReferenceHandle, depth int) (*typesystem.MetadataType, error) {
	if depth > maxSignatureDepth {
		return nil, badMetadata(metadata.Handle(h), "type reference nested deeper than %d", maxSignatureDepth)
	}
	rec, err := m.reader.GetTypeReference(h)
	if err != nil {
		return nil, err
	}
	name, err := m.reader.GetString(rec.TypeName)
	if err != nil {
		return nil, err
	}

	parent := rec.ParentNamespaceOrType
	switch parent.HandleType() {
	case metadata.HandleTypeTypeReference:
		enclosing, err := m.resolveTypeRef(metadata.TypeReferenceHandle(parent), depth+1)
		if err != nil {
			return nil, err
		}
		return nestedType(enclosing, name)

	case metadata.HandleTypeTypeDefinition:
		enclosing, err := m.loadType(metadata.TypeDefinitionHandle(parent))
		if err != nil {
			return nil, err
		}
		return nestedType(enclosing, name)

	case metadata.HandleTypeNamespaceReference:
		namespace, scope, err := m.namespaceRef(metadata.NamespaceReferenceHandle(parent))
		if err != nil {
			return nil, err
		}
		target := m.resolver.Module(scope)
		if target == nil {
			return nil, errors.MissingType(scope, qualify(namespace, name))
		}
		return target.getType(namespace, name)
	}
	return nil, badMetadata(metadata.Handle(h), "type reference %q has parent %s", name, parent.HandleType())
}

func nestedType(enclosing *typesystem.MetadataType, name string) (*typesystem.MetadataType, error) {
	owner, ok := enclosing.Module().(*Module)
	if !ok {
		return nil, errors.MissingType(enclosing.Module().Name(), enclosing.String()+"+"+name)
	}
	eh, ok := owner.handles[enclosing]
	if !ok {
		return nil, errors.MissingType(owner.name, enclosing.String()+"+"+name)
	}
	h, ok := owner.nested[nestedKey{eh, name}]
	if !ok {
		return nil, errors.MissingType(owner.name, enclosing.String()+"+"+name)
	}
	return owner.loadType(h)
}

// namespaceRef walks a namespace reference chain up to its scope reference.
func (m *Module) namespaceRef(h metadata.NamespaceReferenceHandle) (namespace, scope string, err error) {
	var parts []string
	cur := metadata.Handle(h)
	for range maxSignatureDepth {
		switch cur.HandleType() {
		case metadata.HandleTypeNamespaceReference:
			rec, err := m.reader.GetNamespaceReference(metadata.NamespaceReferenceHandle(cur))
			if err != nil {
				return "", "", err
			}
			name, err := m.reader.GetString(rec.Name)
			if err != nil {
				return "", "", err
			}
			parts = append(parts, name)
			cur = rec.ParentScopeOrNamespace

		case metadata.HandleTypeScopeReference:
			rec, err := m.reader.GetScopeReference(metadata.ScopeReferenceHandle(cur))
			if err != nil {
				return "", "", err
			}
			if scope, err = m.reader.GetString(rec.Name); err != nil {
				return "", "", err
			}
			for i := len(parts) - 1; i >= 0; i-- {
				namespace = joinNamespace(namespace, parts[i])
			}
			return namespace, scope, nil

		default:
			return "", "", badMetadata(cur, "namespace reference chain ends at %s", cur.HandleType())
		}
	}
	return "", "", badMetadata(metadata.Handle(h), "namespace reference chain longer than %d", maxSignatureDepth)
}
