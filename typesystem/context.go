package typesystem

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/wippyai/nativeformat/errors"
)

// Options configures a Context.
type Options struct {
	// SystemModuleName names the module whose System namespace defines
	// Object, ValueType, Enum and the primitive types.
	SystemModuleName string
}

// DefaultOptions returns the default context configuration.
func DefaultOptions() Options {
	return Options{SystemModuleName: "System.Runtime"}
}

// Module is a source of type definitions.
type Module interface {
	Name() string
	GetType(namespace, name string) (*MetadataType, error)
}

// Context owns every TypeDesc and MethodDesc of one compilation. Lookups
// never block: interned entities are published through sync.Map and a
// racing constructor's duplicate is dropped.
type Context struct {
	opts   Options
	nextID atomic.Uint64

	system    atomic.Pointer[moduleRef]
	wellKnown [wellKnownCount]atomic.Pointer[MetadataType]

	canon          lazy[*CanonType]
	universalCanon lazy[*UniversalCanonType]

	instantiatedTypes   sync.Map // key -> *InstantiatedType
	arrayTypes          sync.Map // key -> *ArrayType
	byRefTypes          sync.Map // key -> *ByRefType
	pointerTypes        sync.Map // key -> *PointerType
	signatureVariables  sync.Map // key -> *SignatureVariable
	methodsForInstTypes sync.Map // key -> *MethodForInstantiatedType
	instantiatedMethods sync.Map // key -> *InstantiatedMethod
}

type moduleRef struct {
	m Module
}

// NewContext creates an empty Context.
func NewContext(opts Options) *Context {
	if opts.SystemModuleName == "" {
		opts.SystemModuleName = DefaultOptions().SystemModuleName
	}
	return &Context{opts: opts}
}

// Options returns the configuration the context was created with.
func (c *Context) Options() Options { return c.opts }

// SetSystemModule installs the module that well-known types resolve against.
func (c *Context) SetSystemModule(m Module) {
	c.system.Store(&moduleRef{m: m})
}

// SystemModule returns the installed system module or nil.
func (c *Context) SystemModule() Module {
	if r := c.system.Load(); r != nil {
		return r.m
	}
	return nil
}

// IsSystemModule reports whether m is named like the system module.
func (c *Context) IsSystemModule(m Module) bool {
	return m != nil && m.Name() == c.opts.SystemModuleName
}

// GetWellKnownType resolves a System type through the system module.
func (c *Context) GetWellKnownType(wk WellKnownType) (*MetadataType, error) {
	if wk < 0 || wk >= wellKnownCount {
		return nil, errors.InvalidInput(errors.PhaseLoad, "unknown well-known type "+strconv.Itoa(int(wk)))
	}
	if t := c.wellKnown[wk].Load(); t != nil {
		return t, nil
	}
	m := c.SystemModule()
	if m == nil {
		return nil, errors.Precondition(errors.PhaseLoad, "no system module installed")
	}
	t, err := m.GetType("System", wk.Name())
	if err != nil {
		return nil, err
	}
	if !c.wellKnown[wk].CompareAndSwap(nil, t) {
		t = c.wellKnown[wk].Load()
	}
	return t, nil
}

// wellKnownOrNil is for callers that treat a missing system module as "no
// such type".
func (c *Context) wellKnownOrNil(wk WellKnownType) TypeDesc {
	t, err := c.GetWellKnownType(wk)
	if err != nil || t == nil {
		return nil
	}
	return t
}

// CanonType returns the __Canon placeholder of this context.
func (c *Context) CanonType() *CanonType {
	return c.canon.get(func() *CanonType { return newCanonType(c) })
}

// UniversalCanonType returns the __UniversalCanon placeholder of this context.
func (c *Context) UniversalCanonType() *UniversalCanonType {
	return c.universalCanon.get(func() *UniversalCanonType { return newUniversalCanonType(c) })
}

// intern returns the value stored under key, creating it with create on a
// miss. create may run more than once under contention; only one result is
// ever returned.
func intern[T any](m *sync.Map, key string, create func() T) T {
	if v, ok := m.Load(key); ok {
		return v.(T)
	}
	v, _ := m.LoadOrStore(key, create())
	return v.(T)
}

func appendID(dst []byte, id uint64) []byte {
	dst = strconv.AppendUint(dst, id, 36)
	return append(dst, ',')
}

func typeKey(prefix byte, ids ...uint64) []byte {
	key := make([]byte, 0, 2+len(ids)*8)
	key = append(key, prefix, ':')
	for _, id := range ids {
		key = appendID(key, id)
	}
	return key
}

func appendInstantiation(key []byte, inst Instantiation) []byte {
	key = append(key, '<')
	for _, t := range inst.types {
		key = appendID(key, t.id())
	}
	return append(key, '>')
}

// GetInstantiatedType returns def instantiated over inst. The argument
// count must match def's generic parameter count.
func (c *Context) GetInstantiatedType(def *MetadataType, inst Instantiation) *InstantiatedType {
	if inst.Len() != len(def.genericParams) {
		panic("typesystem: instantiation of " + def.String() + " with " +
			strconv.Itoa(inst.Len()) + " arguments")
	}
	key := string(appendInstantiation(typeKey('I', def.id()), inst))
	return intern(&c.instantiatedTypes, key, func() *InstantiatedType {
		return newInstantiatedType(c, def, inst)
	})
}

// GetArrayType returns the single-dimensional zero-based array of elem.
func (c *Context) GetArrayType(elem TypeDesc) *ArrayType {
	return c.getArrayType(elem, -1)
}

// GetMDArrayType returns the multi-dimensional array of elem with rank
// dimensions. A rank-1 MD array is distinct from the SZ array.
func (c *Context) GetMDArrayType(elem TypeDesc, rank int) *ArrayType {
	if rank < 1 {
		panic("typesystem: array rank must be positive")
	}
	return c.getArrayType(elem, rank)
}

func (c *Context) getArrayType(elem TypeDesc, rank int) *ArrayType {
	key := string(strconv.AppendInt(typeKey('A', elem.id()), int64(rank), 10))
	return intern(&c.arrayTypes, key, func() *ArrayType {
		return newArrayType(c, elem, rank)
	})
}

// GetByRefType returns the managed reference to t.
func (c *Context) GetByRefType(t TypeDesc) *ByRefType {
	return intern(&c.byRefTypes, string(typeKey('R', t.id())), func() *ByRefType {
		return newByRefType(c, t)
	})
}

// GetPointerType returns the unmanaged pointer to t.
func (c *Context) GetPointerType(t TypeDesc) *PointerType {
	return intern(&c.pointerTypes, string(typeKey('P', t.id())), func() *PointerType {
		return newPointerType(c, t)
	})
}

// GetSignatureVariable returns !index, or !!index when method is set.
func (c *Context) GetSignatureVariable(index int, method bool) *SignatureVariable {
	prefix := byte('T')
	if method {
		prefix = 'M'
	}
	key := string(strconv.AppendInt([]byte{prefix, ':'}, int64(index), 10))
	return intern(&c.signatureVariables, key, func() *SignatureVariable {
		return newSignatureVariable(c, index, method)
	})
}

// GetMethodForInstantiatedType returns typical as a member of owner, which
// must be an instantiation of typical's owning type.
func (c *Context) GetMethodForInstantiatedType(typical *MetadataMethod, owner *InstantiatedType) *MethodForInstantiatedType {
	if owner.def != typical.owner {
		panic("typesystem: " + typical.String() + " is not a member of " + owner.def.String())
	}
	key := string(typeKey('F', typical.id(), owner.id()))
	return intern(&c.methodsForInstTypes, key, func() *MethodForInstantiatedType {
		return newMethodForInstantiatedType(c, typical, owner)
	})
}

// GetInstantiatedMethod returns the generic method definition def
// instantiated over inst.
func (c *Context) GetInstantiatedMethod(def MethodDesc, inst Instantiation) *InstantiatedMethod {
	if inst.Len() != def.GetMethodDefinition().Instantiation().Len() {
		panic("typesystem: instantiation of " + def.String() + " with " +
			strconv.Itoa(inst.Len()) + " arguments")
	}
	key := string(appendInstantiation(typeKey('G', def.id()), inst))
	return intern(&c.instantiatedMethods, key, func() *InstantiatedMethod {
		return newInstantiatedMethod(c, def, inst)
	})
}
