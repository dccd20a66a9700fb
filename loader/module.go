package loader

import (
	"slices"
	"sync"

	"github.com/hashicorp/go-set/v3"
	"go.uber.org/zap"

	"github.com/wippyai/nativeformat/errors"
	"github.com/wippyai/nativeformat/metadata"
	"github.com/wippyai/nativeformat/typesystem"
)

// Options configures module loading.
type Options struct {
	// Resolver receives the new modules and resolves their type references.
	// A private Resolver is created when nil.
	Resolver *Resolver

	// StrictReferences fails a type load when its base type, a field or a
	// method refers to metadata that is not loaded. When unset such members
	// are dropped and logged, and the base type is left nil.
	StrictReferences bool
}

// DefaultOptions returns the default loader configuration.
func DefaultOptions() Options {
	return Options{
		StrictReferences: true,
	}
}

// Resolver maps scope names to loaded modules. Type loads across all of its
// modules are serialized by one lock, so reference cycles between modules
// are resolved without deadlock.
type Resolver struct {
	load sync.Mutex

	mu      sync.RWMutex
	modules map[string]*Module
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{modules: make(map[string]*Module)}
}

// Register makes m available to type references naming its scope.
func (r *Resolver) Register(m *Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.modules[m.name]; dup {
		return errors.InvalidInput(errors.PhaseLoad, "duplicate scope "+m.name)
	}
	r.modules[m.name] = m
	return nil
}

// Module returns the module registered for a scope name, or nil.
func (r *Resolver) Module(name string) *Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.modules[name]
}

// Modules returns the registered modules sorted by name.
func (r *Resolver) Modules() []*Module {
	r.mu.RLock()
	out := make([]*Module, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Module) int {
		switch {
		case a.name < b.name:
			return -1
		case a.name > b.name:
			return 1
		}
		return 0
	})
	return out
}

// owner finds the module of the same blob whose scope declares h.
func (r *Resolver) owner(reader *metadata.Reader, h metadata.TypeDefinitionHandle) *Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.modules {
		if m.reader == reader {
			if _, ok := m.entries[h]; ok {
				return m
			}
		}
	}
	return nil
}

type typeEntry struct {
	rec       metadata.TypeDefinition
	namespace string
	name      string
}

type nestedKey struct {
	enclosing metadata.TypeDefinitionHandle
	name      string
}

type methodKey struct {
	owner  metadata.TypeDefinitionHandle
	method metadata.MethodHandle
}

// Module is one scope definition of a blob, exposed to the type system.
// Types are materialized on first use. Safe for concurrent use.
type Module struct {
	ctx      *typesystem.Context
	reader   *metadata.Reader
	resolver *Resolver
	opts     Options
	scope    metadata.ScopeDefinition
	name     string

	// Built once by NewModule.
	entries  map[metadata.TypeDefinitionHandle]*typeEntry
	order    []metadata.TypeDefinitionHandle
	topLevel map[string]metadata.TypeDefinitionHandle
	nested   map[nestedKey]metadata.TypeDefinitionHandle
	owners   map[metadata.MethodHandle]metadata.TypeDefinitionHandle

	// Guarded by resolver.load.
	types   map[metadata.TypeDefinitionHandle]*typesystem.MetadataType
	handles map[*typesystem.MetadataType]metadata.TypeDefinitionHandle
	failed  map[metadata.TypeDefinitionHandle]error
	methods map[methodKey]*typesystem.MetadataMethod
	dropped map[methodKey]error
}

// NewModule indexes the scope definition h of reader and registers the
// module with opts.Resolver. The module named by the context's
// SystemModuleName becomes the context's system module.
func NewModule(ctx *typesystem.Context, reader *metadata.Reader, h metadata.ScopeDefinitionHandle, opts Options) (*Module, error) {
	scope, err := reader.GetScopeDefinition(h)
	if err != nil {
		return nil, err
	}
	name, err := reader.GetString(scope.Name)
	if err != nil {
		return nil, err
	}
	if opts.Resolver == nil {
		opts.Resolver = NewResolver()
	}

	m := &Module{
		ctx:      ctx,
		reader:   reader,
		resolver: opts.Resolver,
		opts:     opts,
		scope:    scope,
		name:     name,
		entries:  make(map[metadata.TypeDefinitionHandle]*typeEntry),
		topLevel: make(map[string]metadata.TypeDefinitionHandle),
		nested:   make(map[nestedKey]metadata.TypeDefinitionHandle),
		owners:   make(map[metadata.MethodHandle]metadata.TypeDefinitionHandle),
		types:    make(map[metadata.TypeDefinitionHandle]*typesystem.MetadataType),
		handles:  make(map[*typesystem.MetadataType]metadata.TypeDefinitionHandle),
		failed:   make(map[metadata.TypeDefinitionHandle]error),
		methods:  make(map[methodKey]*typesystem.MetadataMethod),
		dropped:  make(map[methodKey]error),
	}
	if err := m.index(); err != nil {
		return nil, err
	}
	if err := m.resolver.Register(m); err != nil {
		return nil, err
	}
	if name == ctx.Options().SystemModuleName {
		ctx.SetSystemModule(m)
	}

	Logger().Debug("module indexed",
		zap.String("module", name),
		zap.Int("types", len(m.order)))
	return m, nil
}

// Load creates a module for every scope definition of reader. All modules
// share opts.Resolver, or one new Resolver when it is nil.
func Load(ctx *typesystem.Context, reader *metadata.Reader, opts Options) ([]*Module, error) {
	if opts.Resolver == nil {
		opts.Resolver = NewResolver()
	}
	scopes := reader.ScopeDefinitions()
	out := make([]*Module, 0, scopes.Count())
	for h := range scopes.All() {
		m, err := NewModule(ctx, reader, h, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// index walks the namespace tree and records every type definition.
func (m *Module) index() error {
	if m.scope.RootNamespaceDefinition.IsNil() {
		return nil
	}
	seen := set.New[metadata.Handle](16)
	return m.indexNamespace(m.scope.RootNamespaceDefinition, "", seen)
}

func (m *Module) indexNamespace(h metadata.NamespaceDefinitionHandle, prefix string, seen *set.Set[metadata.Handle]) error {
	if !seen.Insert(metadata.Handle(h)) {
		return badMetadata(metadata.Handle(h), "namespace tree revisits %s", metadata.Handle(h))
	}
	ns, err := m.reader.GetNamespaceDefinition(h)
	if err != nil {
		return err
	}
	name, err := m.reader.GetString(ns.Name)
	if err != nil {
		return err
	}
	full := joinNamespace(prefix, name)

	for _, th := range ns.TypeDefinitions {
		if err := m.indexType(th, full, nil, seen); err != nil {
			return err
		}
	}
	for _, child := range ns.NamespaceDefinitions {
		if err := m.indexNamespace(child, full, seen); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) indexType(h metadata.TypeDefinitionHandle, namespace string, enclosing *metadata.TypeDefinitionHandle, seen *set.Set[metadata.Handle]) error {
	if !seen.Insert(metadata.Handle(h)) {
		return badMetadata(metadata.Handle(h), "type %s listed twice", metadata.Handle(h))
	}
	rec, err := m.reader.GetTypeDefinition(h)
	if err != nil {
		return err
	}
	name, err := m.reader.GetString(rec.Name)
	if err != nil {
		return err
	}

	e := &typeEntry{rec: rec, name: name}
	if enclosing == nil {
		e.namespace = namespace
		m.topLevel[qualify(namespace, name)] = h
	} else {
		m.nested[nestedKey{*enclosing, name}] = h
	}
	m.entries[h] = e
	m.order = append(m.order, h)

	for _, mh := range rec.Methods {
		if _, ok := m.owners[mh]; !ok {
			m.owners[mh] = h
		}
	}
	for _, nh := range rec.NestedTypes {
		if err := m.indexType(nh, "", &h, seen); err != nil {
			return err
		}
	}
	return nil
}

// Name returns the scope name.
func (m *Module) Name() string { return m.name }

// Scope returns the decoded scope definition record.
func (m *Module) Scope() metadata.ScopeDefinition { return m.scope }

// Reader returns the reader the module was loaded from.
func (m *Module) Reader() *metadata.Reader { return m.reader }

// Context returns the type system context the module populates.
func (m *Module) Context() *typesystem.Context { return m.ctx }

// TypeCount returns the number of type definitions in the scope, nested
// types included.
func (m *Module) TypeCount() int { return len(m.order) }

// GetType returns the top-level type namespace.name. A name the scope does
// not define yields a missing-metadata error.
func (m *Module) GetType(namespace, name string) (*typesystem.MetadataType, error) {
	m.resolver.load.Lock()
	defer m.resolver.load.Unlock()
	return m.getType(namespace, name)
}

// ResolveType materializes the type a handle denotes: a type definition,
// reference or specification, or any type signature.
func (m *Module) ResolveType(h metadata.Handle) (typesystem.TypeDesc, error) {
	m.resolver.load.Lock()
	defer m.resolver.load.Unlock()
	return m.resolveType(h, 0)
}

// ResolveMethod materializes the method a Method, MemberReference or
// MethodInstantiation handle denotes. A shared Method record resolves to
// the first type in the scope that declares it.
func (m *Module) ResolveMethod(h metadata.Handle) (typesystem.MethodDesc, error) {
	m.resolver.load.Lock()
	defer m.resolver.load.Unlock()
	return m.resolveMethod(h, 0)
}

// Types loads every type definition of the scope in declaration order.
func (m *Module) Types() ([]*typesystem.MetadataType, error) {
	m.resolver.load.Lock()
	defer m.resolver.load.Unlock()
	out := make([]*typesystem.MetadataType, 0, len(m.order))
	for _, h := range m.order {
		t, err := m.loadType(h)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// HandleOf returns the definition handle t was loaded from.
func (m *Module) HandleOf(t *typesystem.MetadataType) (metadata.TypeDefinitionHandle, bool) {
	m.resolver.load.Lock()
	defer m.resolver.load.Unlock()
	h, ok := m.handles[t]
	return h, ok
}

func (m *Module) getType(namespace, name string) (*typesystem.MetadataType, error) {
	h, ok := m.topLevel[qualify(namespace, name)]
	if !ok {
		return nil, errors.MissingType(m.name, qualify(namespace, name))
	}
	return m.loadType(h)
}

func (m *Module) tolerate(err error) bool {
	return !m.opts.StrictReferences && errors.IsMissingMetadata(err)
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

func joinNamespace(prefix, name string) string {
	switch {
	case name == "":
		return prefix
	case prefix == "":
		return name
	}
	return prefix + "." + name
}

func badMetadata(h metadata.Handle, format string, args ...any) *errors.Error {
	return errors.New(errors.PhaseLoad, errors.KindBadMetadata).
		Record(h.HandleType().String()).
		Detail(format, args...).
		Value(uint32(h)).
		Build()
}
