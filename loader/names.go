package loader

import (
	"slices"

	"github.com/wippyai/nativeformat/errors"
	"github.com/wippyai/nativeformat/typename"
	"github.com/wippyai/nativeformat/typesystem"
)

// LookupType resolves a parsed type name against the registered modules.
// A named type without a scope prefix is searched in every module in name
// order.
func (r *Resolver) LookupType(e *typename.Expr) (typesystem.TypeDesc, error) {
	ctx, err := r.context()
	if err != nil {
		return nil, err
	}
	r.load.Lock()
	defer r.load.Unlock()
	return r.lookupType(ctx, e)
}

// LookupMethod resolves Owner::Name<Args>(Params). Without a parameter list
// the first method with the name is used; with one, parameter types must
// match the declaration exactly, !N and !!N included.
func (r *Resolver) LookupMethod(m *typename.Method) (typesystem.MethodDesc, error) {
	ctx, err := r.context()
	if err != nil {
		return nil, err
	}
	r.load.Lock()
	defer r.load.Unlock()

	owner, err := r.lookupType(ctx, m.Owner)
	if err != nil {
		return nil, err
	}
	def, ok := owner.TypeDefinition().(*typesystem.MetadataType)
	if !ok {
		return nil, errors.InvalidInput(errors.PhaseResolve, owner.String()+" has no methods")
	}

	var params []typesystem.TypeDesc
	if m.HasParams {
		if params, err = r.lookupTypes(ctx, m.Params); err != nil {
			return nil, err
		}
	}
	var typical *typesystem.MetadataMethod
	for _, cand := range def.Methods() {
		if cand.Name() == m.Name && (!m.HasParams || slices.Equal(cand.Signature().Parameters, params)) {
			typical = cand
			break
		}
	}
	if typical == nil {
		return nil, errors.MissingType(scopeOf(owner, ""), owner.String()+"::"+m.Name)
	}

	var md typesystem.MethodDesc = typical
	if inst, ok := owner.(*typesystem.InstantiatedType); ok {
		md = ctx.GetMethodForInstantiatedType(typical, inst)
	}
	if len(m.Args) == 0 {
		return md, nil
	}
	if want := typical.Instantiation().Len(); want != len(m.Args) {
		return nil, errors.InvalidInput(errors.PhaseResolve, m.String()+": wrong number of method arguments")
	}
	args, err := r.lookupTypes(ctx, m.Args)
	if err != nil {
		return nil, err
	}
	return ctx.GetInstantiatedMethod(md, typesystem.NewInstantiation(args...)), nil
}

func (r *Resolver) context() (*typesystem.Context, error) {
	mods := r.Modules()
	if len(mods) == 0 {
		return nil, errors.Precondition(errors.PhaseResolve, "no modules registered")
	}
	return mods[0].ctx, nil
}

func (r *Resolver) lookupTypes(ctx *typesystem.Context, es []*typename.Expr) ([]typesystem.TypeDesc, error) {
	out := make([]typesystem.TypeDesc, len(es))
	for i, e := range es {
		t, err := r.lookupType(ctx, e)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func (r *Resolver) lookupType(ctx *typesystem.Context, e *typename.Expr) (typesystem.TypeDesc, error) {
	switch e.Kind {
	case typename.KindNamed:
		return r.lookupNamed(e)
	case typename.KindTypeVar:
		return ctx.GetSignatureVariable(e.Index, false), nil
	case typename.KindMethodVar:
		return ctx.GetSignatureVariable(e.Index, true), nil
	case typename.KindInstantiation:
		def, err := r.lookupNamed(e.Elem)
		if err != nil {
			return nil, err
		}
		if len(def.GenericParameters()) != len(e.Args) {
			return nil, errors.InvalidInput(errors.PhaseResolve, e.String()+": wrong number of type arguments")
		}
		args, err := r.lookupTypes(ctx, e.Args)
		if err != nil {
			return nil, err
		}
		return ctx.GetInstantiatedType(def, typesystem.NewInstantiation(args...)), nil
	}

	elem, err := r.lookupType(ctx, e.Elem)
	if err != nil {
		return nil, err
	}
	switch e.Kind {
	case typename.KindSZArray:
		return ctx.GetArrayType(elem), nil
	case typename.KindArray:
		return ctx.GetMDArrayType(elem, e.Rank), nil
	case typename.KindByRef:
		return ctx.GetByRefType(elem), nil
	case typename.KindPointer:
		return ctx.GetPointerType(elem), nil
	}
	return nil, errors.Unsupported(errors.PhaseResolve, "type name kind "+e.Kind.String())
}

func (r *Resolver) lookupNamed(e *typename.Expr) (*typesystem.MetadataType, error) {
	if e.Kind != typename.KindNamed {
		return nil, errors.InvalidInput(errors.PhaseResolve, e.String()+" is not a named type")
	}
	mods := r.Modules()
	if e.Scope != "" {
		m := r.Module(e.Scope)
		if m == nil {
			return nil, errors.MissingType(e.Scope, e.FullName())
		}
		mods = []*Module{m}
	}

	for _, m := range mods {
		h, ok := m.topLevel[qualify(e.Namespace, e.Name)]
		if !ok {
			continue
		}
		for _, n := range e.Nested {
			if h, ok = m.nested[nestedKey{h, n}]; !ok {
				return nil, errors.MissingType(m.name, e.FullName())
			}
		}
		return m.loadType(h)
	}
	return nil, errors.MissingType(e.Scope, e.FullName())
}
