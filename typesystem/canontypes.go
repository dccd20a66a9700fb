package typesystem

// CanonType is __Canon, the stand-in for any reference type in code shared
// under the Specific policy.
type CanonType struct {
	typeBase
}

func newCanonType(ctx *Context) *CanonType {
	t := &CanonType{}
	t.init(ctx, t)
	return t
}

func (t *CanonType) IsDefType() bool            { return true }
func (t *CanonType) computeCategory() TypeFlags { return CategoryClass }
func (t *CanonType) Namespace() string          { return "System" }
func (t *CanonType) Name() string               { return "__Canon" }
func (t *CanonType) String() string             { return "System.__Canon" }

// BaseType returns System.Object, or nil when no system module is installed.
func (t *CanonType) BaseType() TypeDesc { return t.ctx.wellKnownOrNil(WellKnownObject) }

func (t *CanonType) convertToCanonFormImpl(kind CanonicalFormKind) TypeDesc {
	if kind == CanonicalFormUniversal {
		return t.ctx.UniversalCanonType()
	}
	return t
}

// UniversalCanonType is __UniversalCanon, the stand-in for any type,
// including value types of unknown size, under the Universal policy.
type UniversalCanonType struct {
	typeBase
}

func newUniversalCanonType(ctx *Context) *UniversalCanonType {
	t := &UniversalCanonType{}
	t.init(ctx, t)
	return t
}

func (t *UniversalCanonType) IsDefType() bool            { return true }
func (t *UniversalCanonType) computeCategory() TypeFlags { return CategoryValueType }
func (t *UniversalCanonType) Namespace() string          { return "System" }
func (t *UniversalCanonType) Name() string               { return "__UniversalCanon" }
func (t *UniversalCanonType) String() string             { return "System.__UniversalCanon" }

// BaseType panics: __UniversalCanon has no layout and no base type.
func (t *UniversalCanonType) BaseType() TypeDesc {
	panic("typesystem: BaseType is not supported on __UniversalCanon")
}

func (t *UniversalCanonType) convertToCanonFormImpl(CanonicalFormKind) TypeDesc { return t }
