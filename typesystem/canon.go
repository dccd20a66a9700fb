package typesystem

import (
	"fmt"
	"strings"
)

// CanonicalFormKind selects a canonicalization policy.
type CanonicalFormKind int

const (
	// CanonicalFormSpecific collapses reference types to __Canon.
	CanonicalFormSpecific CanonicalFormKind = iota
	// CanonicalFormUniversal collapses every type to __UniversalCanon.
	CanonicalFormUniversal
	// CanonicalFormAny matches either placeholder. Query-only: conversions
	// panic when given it.
	CanonicalFormAny
)

func (k CanonicalFormKind) String() string {
	switch k {
	case CanonicalFormSpecific:
		return "Specific"
	case CanonicalFormUniversal:
		return "Universal"
	case CanonicalFormAny:
		return "Any"
	}
	return fmt.Sprintf("CanonicalFormKind(%d)", int(k))
}

// ParseCanonicalFormKind accepts "specific", "universal" and "any" in any case.
func ParseCanonicalFormKind(s string) (CanonicalFormKind, bool) {
	switch {
	case strings.EqualFold(s, "specific"):
		return CanonicalFormSpecific, true
	case strings.EqualFold(s, "universal"):
		return CanonicalFormUniversal, true
	case strings.EqualFold(s, "any"):
		return CanonicalFormAny, true
	}
	return 0, false
}

// IsCanonicalDefinitionType reports whether t is the placeholder selected
// by kind. Comparison is by identity.
func (c *Context) IsCanonicalDefinitionType(t TypeDesc, kind CanonicalFormKind) bool {
	switch kind {
	case CanonicalFormAny:
		return t == TypeDesc(c.CanonType()) || t == TypeDesc(c.UniversalCanonType())
	case CanonicalFormSpecific:
		return t == TypeDesc(c.CanonType())
	case CanonicalFormUniversal:
		return t == TypeDesc(c.UniversalCanonType())
	}
	return false
}

// ConvertToCanon returns the type that stands for t in code shared under
// kind. Specific and Universal forms are never mixed: under Specific, a type
// whose canonical form reaches __UniversalCanon collapses to
// __UniversalCanon itself.
func (c *Context) ConvertToCanon(t TypeDesc, kind CanonicalFormKind) TypeDesc {
	return c.convertToCanon(t, &kind)
}

// convertToCanon switches *kind from Specific to Universal when t reaches
// __UniversalCanon. Callers converting a list restart it under Universal.
func (c *Context) convertToCanon(t TypeDesc, kind *CanonicalFormKind) TypeDesc {
	switch *kind {
	case CanonicalFormUniversal:
		return c.UniversalCanonType()

	case CanonicalFormSpecific:
		if t == TypeDesc(c.UniversalCanonType()) {
			*kind = CanonicalFormUniversal
			return t
		}
		if t.IsSignatureVariable() {
			return t
		}
		if t.IsDefType() {
			if !t.IsValueType() {
				return c.CanonType()
			}
			if t.HasInstantiation() {
				return c.escalate(t.ConvertToCanonForm(CanonicalFormSpecific), kind)
			}
			return t
		}
		if t.IsArray() {
			return c.CanonType()
		}
		return c.escalate(t.ConvertToCanonForm(CanonicalFormSpecific), kind)
	}
	panic(fmt.Sprintf("typesystem: ConvertToCanon called with %s", *kind))
}

func (c *Context) escalate(converted TypeDesc, kind *CanonicalFormKind) TypeDesc {
	if converted.IsCanonicalSubtype(CanonicalFormUniversal) {
		*kind = CanonicalFormUniversal
		return c.UniversalCanonType()
	}
	return converted
}

// ConvertInstantiationToCanonForm canonicalizes every argument of inst. If
// no argument changes, inst itself is returned with changed == false. Under
// Specific, an argument that reaches __UniversalCanon turns the whole
// instantiation Universal.
func (c *Context) ConvertInstantiationToCanonForm(inst Instantiation, kind CanonicalFormKind) (Instantiation, bool) {
	if kind != CanonicalFormSpecific && kind != CanonicalFormUniversal {
		panic(fmt.Sprintf("typesystem: ConvertInstantiationToCanonForm called with %s", kind))
	}
	out, changed, _ := c.convertInstantiation(inst, kind)
	return out, changed
}

// convertInstantiation also returns the kind the result was built under.
func (c *Context) convertInstantiation(inst Instantiation, kind CanonicalFormKind) (Instantiation, bool, CanonicalFormKind) {
	k := kind
	convert := func(t TypeDesc) TypeDesc { return c.convertToCanon(t, &k) }
	out, changed := inst.mapTypesChanged(convert)
	if k != kind {
		out, changed = inst.mapTypesChanged(convert)
	}
	return out, changed, k
}
