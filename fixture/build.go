package fixture

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"go.uber.org/zap"

	"github.com/wippyai/nativeformat/errors"
	"github.com/wippyai/nativeformat/metadata"
	"github.com/wippyai/nativeformat/metadata/writer"
	"github.com/wippyai/nativeformat/typename"
)

// Fixture is a built document: a writer over its scopes plus its roots.
type Fixture struct {
	Writer *writer.Writer
	Roots  []NamedRoot
}

// NamedRoot is a root record and the scope it is resolved in.
type NamedRoot struct {
	Scope  string
	Name   string
	Record writer.Record
}

// Bytes writes the blob. Root handles are available from Handle afterwards.
func (f *Fixture) Bytes() ([]byte, error) {
	return f.Writer.Write()
}

// Handle returns the handle the last Bytes call assigned to root i.
func (f *Fixture) Handle(i int) (metadata.Handle, bool) {
	return f.Writer.HandleOf(f.Roots[i].Record)
}

type typeState struct {
	doc *Type
	def *writer.TypeDefinition
	// namespace of the outermost enclosing type; path holds the simple
	// names from it inward.
	namespace string
	path      []string
}

type scopeState struct {
	doc        *Scope
	def        *writer.ScopeDefinition
	namespaces map[string]*writer.NamespaceDefinition
	types      map[string]*typeState
	order      []*typeState

	scopeRefs map[string]*writer.ScopeReference
	nsRefs    map[string]*writer.NamespaceReference
	typeRefs  map[string]*writer.TypeReference
}

type builder struct {
	scopes []*scopeState
	byName map[string]*scopeState
}

// Build creates the record graph. Every name is checked; the first unknown
// name or malformed entry is returned as an invalid-input error.
func (d *Document) Build() (*Fixture, error) {
	b := &builder{byName: make(map[string]*scopeState)}
	for _, s := range d.Scopes {
		if err := b.declareScope(s); err != nil {
			return nil, err
		}
	}
	for _, s := range b.scopes {
		for _, t := range s.order {
			if err := b.fillType(s, t); err != nil {
				return nil, err
			}
		}
	}
	for _, s := range b.scopes {
		if s.doc.EntryPoint == "" {
			continue
		}
		m, err := b.entryPoint(s)
		if err != nil {
			return nil, err
		}
		s.def.EntryPoint = m
	}

	f := &Fixture{Writer: writer.New(writer.DefaultOptions())}
	for _, s := range b.scopes {
		f.Writer.ScopeDefinitions = append(f.Writer.ScopeDefinitions, s.def)
	}
	for i, r := range d.Roots {
		rec, err := b.root(r)
		if err != nil {
			return nil, fmt.Errorf("root %d: %w", i, err)
		}
		f.Roots = append(f.Roots, NamedRoot{Scope: r.Scope, Name: r.Method, Record: rec})
		f.Writer.AdditionalRootRecords = append(f.Writer.AdditionalRootRecords, rec)
	}

	Logger().Debug("fixture built",
		zap.Int("scopes", len(b.scopes)),
		zap.Int("roots", len(f.Roots)))
	return f, nil
}

func invalid(path []string, format string, args ...any) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidInput).
		Record("fixture").
		Path(path...).
		Detail(format, args...).
		Build()
}

func (b *builder) declareScope(doc *Scope) error {
	if doc.Name == "" {
		return invalid(nil, "scope without a name")
	}
	if _, dup := b.byName[doc.Name]; dup {
		return invalid([]string{doc.Name}, "duplicate scope")
	}
	def := &writer.ScopeDefinition{Name: doc.Name, Culture: doc.Culture}
	if err := parseVersion(doc.Version, def); err != nil {
		return invalid([]string{doc.Name}, "version %q: %v", doc.Version, err)
	}
	root := &writer.NamespaceDefinition{ParentScopeOrNamespace: def}
	def.RootNamespaceDefinition = root

	s := &scopeState{
		doc:        doc,
		def:        def,
		namespaces: map[string]*writer.NamespaceDefinition{"": root},
		types:      make(map[string]*typeState),
		scopeRefs:  make(map[string]*writer.ScopeReference),
		nsRefs:     make(map[string]*writer.NamespaceReference),
		typeRefs:   make(map[string]*writer.TypeReference),
	}
	b.scopes = append(b.scopes, s)
	b.byName[doc.Name] = s

	for _, t := range doc.Types {
		e, err := typename.Parse(t.Name)
		if err != nil || e.Kind != typename.KindNamed || e.Scope != "" || len(e.Nested) > 0 {
			return invalid([]string{doc.Name, t.Name}, "type name must be Namespace.Name")
		}
		ns := s.namespace(e.Namespace)
		def := &writer.TypeDefinition{
			Name:                e.Name,
			NamespaceDefinition: ns,
			Flags:               typeFlags(t, false),
			Size:                t.Size,
		}
		ns.TypeDefinitions = append(ns.TypeDefinitions, def)
		if err := s.declareType(t, def, e.Namespace, []string{e.Name}); err != nil {
			return err
		}
	}
	return nil
}

func (s *scopeState) declareType(doc *Type, def *writer.TypeDefinition, namespace string, path []string) error {
	ts := &typeState{doc: doc, def: def, namespace: namespace, path: path}
	key := ts.fullName()
	if _, dup := s.types[key]; dup {
		return invalid([]string{s.doc.Name, key}, "duplicate type")
	}
	s.types[key] = ts
	s.order = append(s.order, ts)

	gps, err := genericParams(doc.Generic, metadata.GenericParameterKindType)
	if err != nil {
		return invalid([]string{s.doc.Name, key}, "%v", err)
	}
	def.GenericParameters = gps
	for _, n := range doc.Nested {
		if strings.ContainsAny(n.Name, ".+<>[],&*!") || n.Name == "" {
			return invalid([]string{s.doc.Name, key, n.Name}, "nested type name must be simple")
		}
		nd := &writer.TypeDefinition{
			Name:                n.Name,
			NamespaceDefinition: def.NamespaceDefinition,
			EnclosingType:       def,
			Flags:               typeFlags(n, true),
			Size:                n.Size,
		}
		def.NestedTypes = append(def.NestedTypes, nd)
		if err := s.declareType(n, nd, namespace, append(path[:len(path):len(path)], n.Name)); err != nil {
			return err
		}
	}
	return nil
}

func (t *typeState) fullName() string {
	name := strings.Join(t.path, "+")
	if t.namespace == "" {
		return name
	}
	return t.namespace + "." + name
}

func typeFlags(t *Type, nested bool) metadata.TypeAttributes {
	flags := metadata.TypeAttributePublic
	if nested {
		flags = metadata.TypeAttributeNestedPublic
	}
	if t.Interface {
		flags |= metadata.TypeAttributeInterface | metadata.TypeAttributeAbstract
	}
	if t.Abstract {
		flags |= metadata.TypeAttributeAbstract
	}
	if t.Sealed {
		flags |= metadata.TypeAttributeSealed
	}
	return flags
}

// namespace returns the definition for a dotted namespace, creating the
// chain below the root as needed.
func (s *scopeState) namespace(name string) *writer.NamespaceDefinition {
	if ns, ok := s.namespaces[name]; ok {
		return ns
	}
	parent, last := "", name
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		parent, last = name[:i], name[i+1:]
	}
	p := s.namespace(parent)
	ns := &writer.NamespaceDefinition{ParentScopeOrNamespace: p, Name: last}
	p.NamespaceDefinitions = append(p.NamespaceDefinitions, ns)
	s.namespaces[name] = ns
	return ns
}

func (b *builder) fillType(s *scopeState, t *typeState) error {
	path := []string{s.doc.Name, t.fullName()}
	doc, def := t.doc, t.def

	if doc.Base != "" {
		base, err := b.typeName(s, doc.Base)
		if err != nil {
			return invalid(path, "base: %v", err)
		}
		def.BaseType = asTypeRecord(base)
	}
	for _, name := range doc.Interfaces {
		iface, err := b.typeName(s, name)
		if err != nil {
			return invalid(path, "interface: %v", err)
		}
		def.Interfaces = append(def.Interfaces, asTypeRecord(iface))
	}

	for _, f := range doc.Fields {
		typ, err := b.typeName(s, f.Type)
		if err != nil {
			return invalid(append(path, f.Name), "%v", err)
		}
		flags := metadata.FieldAttributePublic
		if f.Static {
			flags |= metadata.FieldAttributeStatic
		}
		def.Fields = append(def.Fields, &writer.Field{
			Name:      f.Name,
			Flags:     flags,
			Signature: &writer.FieldSignature{Type: typ},
		})
	}

	for _, m := range doc.Methods {
		sig, err := b.signature(s, m.Static, len(m.Generic), m.Returns, m.Params)
		if err != nil {
			return invalid(append(path, m.Name), "%v", err)
		}
		flags := metadata.MethodAttributePublic
		if m.Static {
			flags |= metadata.MethodAttributeStatic
		}
		if m.Virtual {
			flags |= metadata.MethodAttributeVirtual
		}
		if m.Abstract {
			flags |= metadata.MethodAttributeAbstract | metadata.MethodAttributeVirtual
		}
		gps, err := genericParams(m.Generic, metadata.GenericParameterKindMethod)
		if err != nil {
			return invalid(append(path, m.Name), "%v", err)
		}
		def.Methods = append(def.Methods, &writer.Method{
			Name:              m.Name,
			Flags:             flags,
			Signature:         sig,
			GenericParameters: gps,
		})
	}
	return nil
}

func genericParams(names []string, kind metadata.GenericParameterKind) ([]*writer.GenericParameter, error) {
	out := make([]*writer.GenericParameter, 0, len(names))
	for i, name := range names {
		n, err := safecast.Conv[uint16](i)
		if err != nil {
			return nil, fmt.Errorf("too many generic parameters")
		}
		out = append(out, &writer.GenericParameter{Name: name, Number: n, Kind: kind})
	}
	return out, nil
}

// asTypeRecord wraps signatures so they can stand where a type definition
// or reference is expected.
func asTypeRecord(r writer.Record) writer.Record {
	switch r.(type) {
	case *writer.TypeDefinition, *writer.TypeReference:
		return r
	}
	return &writer.TypeSpecification{Signature: r}
}

func (b *builder) signature(s *scopeState, static bool, generic int, returns string, params []string) (*writer.MethodSignature, error) {
	sig := &writer.MethodSignature{GenericParameterCount: uint32(generic)}
	if !static {
		sig.CallingConvention |= metadata.CallingConventionHasThis
	}
	if generic > 0 {
		sig.CallingConvention |= metadata.CallingConventionGeneric
	}
	if returns != "" {
		ret, err := b.typeName(s, returns)
		if err != nil {
			return nil, fmt.Errorf("returns: %w", err)
		}
		sig.ReturnType = ret
	}
	for _, p := range params {
		rec, err := b.typeName(s, p)
		if err != nil {
			return nil, fmt.Errorf("param: %w", err)
		}
		sig.Parameters = append(sig.Parameters, rec)
	}
	return sig, nil
}

func (b *builder) typeName(s *scopeState, name string) (writer.Record, error) {
	e, err := typename.Parse(name)
	if err != nil {
		return nil, err
	}
	return b.typeRecord(s, e)
}

// typeRecord builds the record for e as written in scope s.
func (b *builder) typeRecord(s *scopeState, e *typename.Expr) (writer.Record, error) {
	switch e.Kind {
	case typename.KindNamed:
		return b.named(s, e)
	case typename.KindTypeVar:
		return &writer.TypeVariableSignature{Number: uint32(e.Index)}, nil
	case typename.KindMethodVar:
		return &writer.MethodTypeVariableSignature{Number: uint32(e.Index)}, nil
	case typename.KindInstantiation:
		generic, err := b.named(s, e.Elem)
		if err != nil {
			return nil, err
		}
		inst := &writer.TypeInstantiationSignature{GenericType: generic}
		for _, a := range e.Args {
			rec, err := b.typeRecord(s, a)
			if err != nil {
				return nil, err
			}
			inst.GenericTypeArguments = append(inst.GenericTypeArguments, rec)
		}
		return inst, nil
	}

	elem, err := b.typeRecord(s, e.Elem)
	if err != nil {
		return nil, err
	}
	switch e.Kind {
	case typename.KindSZArray:
		return &writer.SZArraySignature{ElementType: elem}, nil
	case typename.KindArray:
		return &writer.ArraySignature{ElementType: elem, Rank: uint32(e.Rank)}, nil
	case typename.KindByRef:
		return &writer.ByReferenceSignature{Type: elem}, nil
	case typename.KindPointer:
		return &writer.PointerSignature{Type: elem}, nil
	}
	return nil, fmt.Errorf("unsupported type name %s", e)
}

// lookup finds the type definition e names, preferring scope s.
func (b *builder) lookup(s *scopeState, e *typename.Expr) (*typeState, string) {
	full := e.FullName()
	if e.Scope != "" {
		target, ok := b.byName[e.Scope]
		if !ok {
			return nil, e.Scope
		}
		return target.types[full], e.Scope
	}
	if t, ok := s.types[full]; ok {
		return t, s.doc.Name
	}
	for _, o := range b.scopes {
		if t, ok := o.types[full]; ok {
			return t, o.doc.Name
		}
	}
	return nil, ""
}

func (b *builder) named(s *scopeState, e *typename.Expr) (writer.Record, error) {
	if e.Kind != typename.KindNamed {
		return nil, fmt.Errorf("%s is not a named type", e)
	}
	t, scope := b.lookup(s, e)
	switch {
	case scope == "":
		return nil, fmt.Errorf("unknown type %s", e.FullName())
	case scope == s.doc.Name && t == nil:
		return nil, fmt.Errorf("scope %s does not define %s", scope, e.FullName())
	case scope == s.doc.Name:
		return t.def, nil
	}

	namespace, path := e.Namespace, append([]string{e.Name}, e.Nested...)
	if t != nil {
		namespace, path = t.namespace, t.path
	}
	return s.typeRef(scope, namespace, path), nil
}

// typeRef returns the reference chain for a type of another scope.
func (s *scopeState) typeRef(scope, namespace string, path []string) *writer.TypeReference {
	key := scope + "/" + namespace + "/" + strings.Join(path, "+")
	if r, ok := s.typeRefs[key]; ok {
		return r
	}
	var parent writer.Record
	if len(path) == 1 {
		parent = s.nsRef(scope, namespace)
	} else {
		parent = s.typeRef(scope, namespace, path[:len(path)-1])
	}
	r := &writer.TypeReference{ParentNamespaceOrType: parent, TypeName: path[len(path)-1]}
	s.typeRefs[key] = r
	return r
}

func (s *scopeState) nsRef(scope, namespace string) *writer.NamespaceReference {
	key := scope + "/" + namespace
	if r, ok := s.nsRefs[key]; ok {
		return r
	}
	var r *writer.NamespaceReference
	if namespace == "" {
		sr, ok := s.scopeRefs[scope]
		if !ok {
			sr = &writer.ScopeReference{Name: scope}
			s.scopeRefs[scope] = sr
		}
		r = &writer.NamespaceReference{ParentScopeOrNamespace: sr}
	} else {
		parent, last := "", namespace
		if i := strings.LastIndexByte(namespace, '.'); i >= 0 {
			parent, last = namespace[:i], namespace[i+1:]
		}
		r = &writer.NamespaceReference{ParentScopeOrNamespace: s.nsRef(scope, parent), Name: last}
	}
	s.nsRefs[key] = r
	return r
}

// declared finds the method of t named m, matching parameters when m has a
// parameter list.
func (b *builder) declared(t *typeState, m *typename.Method) (*writer.Method, error) {
	for i, dm := range t.doc.Methods {
		if dm.Name != m.Name {
			continue
		}
		if m.HasParams {
			if len(dm.Params) != len(m.Params) {
				continue
			}
			same := true
			for j, p := range dm.Params {
				pe, err := typename.Parse(p)
				if err != nil {
					return nil, err
				}
				if pe.String() != m.Params[j].String() {
					same = false
					break
				}
			}
			if !same {
				continue
			}
		}
		return t.def.Methods[i], nil
	}
	return nil, nil
}

func (b *builder) entryPoint(s *scopeState) (*writer.Method, error) {
	path := []string{s.doc.Name, "entrypoint"}
	m, err := typename.ParseMethod(s.doc.EntryPoint)
	if err != nil {
		return nil, invalid(path, "%v", err)
	}
	if m.Owner.Kind != typename.KindNamed || len(m.Args) > 0 {
		return nil, invalid(path, "entry point must name a method of a type definition")
	}
	t, scope := b.lookup(s, m.Owner)
	if t == nil || scope != s.doc.Name {
		return nil, invalid(path, "%s is not defined by %s", m.Owner, s.doc.Name)
	}
	wm, err := b.declared(t, m)
	if err != nil || wm == nil {
		return nil, invalid(path, "%s does not declare %s", m.Owner, m.Name)
	}
	return wm, nil
}

func (b *builder) root(r *Root) (writer.Record, error) {
	s, ok := b.byName[r.Scope]
	if !ok {
		return nil, invalid([]string{r.Scope}, "root scope is not defined")
	}
	path := []string{r.Scope, r.Method}
	m, err := typename.ParseMethod(r.Method)
	if err != nil {
		return nil, invalid(path, "%v", err)
	}

	owner, err := b.typeRecord(s, m.Owner)
	if err != nil {
		return nil, invalid(path, "%v", err)
	}
	declaring := m.Owner
	if declaring.Kind == typename.KindInstantiation {
		declaring = declaring.Elem
	}
	var wm *writer.Method
	if declaring.Kind == typename.KindNamed {
		if t, _ := b.lookup(s, declaring); t != nil {
			if wm, err = b.declared(t, m); err != nil {
				return nil, invalid(path, "%v", err)
			}
		}
	}

	var base writer.Record
	def := b.defOf(s, m.Owner)
	switch {
	case wm != nil && def != nil && owner == writer.Record(def):
		base = wm
	case wm != nil:
		base = &writer.MemberReference{Parent: owner, Name: m.Name, Signature: wm.Signature}
	case m.HasParams:
		params := make([]string, len(m.Params))
		for i, p := range m.Params {
			params[i] = p.String()
		}
		sig, err := b.signature(s, r.Static, 0, r.Returns, params)
		if err != nil {
			return nil, invalid(path, "%v", err)
		}
		base = &writer.MemberReference{Parent: owner, Name: m.Name, Signature: sig}
	default:
		return nil, invalid(path, "%s does not declare %s; give a parameter list to reference it anyway", m.Owner, m.Name)
	}

	if len(m.Args) == 0 {
		return base, nil
	}
	inst := &writer.MethodInstantiation{Method: base}
	for _, a := range m.Args {
		rec, err := b.typeRecord(s, a)
		if err != nil {
			return nil, invalid(path, "%v", err)
		}
		inst.GenericTypeArguments = append(inst.GenericTypeArguments, rec)
	}
	return inst, nil
}

// defOf returns the definition e names when it is a plain named type of s.
func (b *builder) defOf(s *scopeState, e *typename.Expr) *writer.TypeDefinition {
	if e.Kind != typename.KindNamed {
		return nil
	}
	if t, scope := b.lookup(s, e); t != nil && scope == s.doc.Name {
		return t.def
	}
	return nil
}

func parseVersion(v string, def *writer.ScopeDefinition) error {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ".")
	if len(parts) > 4 {
		return fmt.Errorf("more than four components")
	}
	dst := []*uint16{&def.MajorVersion, &def.MinorVersion, &def.BuildNumber, &def.RevisionNumber}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return err
		}
		*dst[i] = uint16(n)
	}
	return nil
}
