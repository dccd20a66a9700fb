package typesystem

import (
	"iter"
	"strings"
)

// Instantiation is an immutable list of type arguments. Copies share the
// backing array, so Same tells whether two values came from one allocation.
type Instantiation struct {
	types []TypeDesc
}

// NewInstantiation copies types into a new Instantiation.
func NewInstantiation(types ...TypeDesc) Instantiation {
	if len(types) == 0 {
		return Instantiation{}
	}
	return Instantiation{types: append([]TypeDesc(nil), types...)}
}

// Len returns the number of arguments.
func (i Instantiation) Len() int { return len(i.types) }

// IsEmpty reports whether there are no arguments.
func (i Instantiation) IsEmpty() bool { return len(i.types) == 0 }

// At returns the n-th argument.
func (i Instantiation) At(n int) TypeDesc { return i.types[n] }

// All iterates the arguments with their positions.
func (i Instantiation) All() iter.Seq2[int, TypeDesc] {
	return func(yield func(int, TypeDesc) bool) {
		for n, t := range i.types {
			if !yield(n, t) {
				return
			}
		}
	}
}

// Same reports whether i and o are the same instantiation object. Two empty
// instantiations are the same.
func (i Instantiation) Same(o Instantiation) bool {
	if len(i.types) != len(o.types) {
		return false
	}
	return len(i.types) == 0 || &i.types[0] == &o.types[0]
}

// Equal reports element-wise identity.
func (i Instantiation) Equal(o Instantiation) bool {
	if len(i.types) != len(o.types) {
		return false
	}
	for n, t := range i.types {
		if t != o.types[n] {
			return false
		}
	}
	return true
}

// Any reports whether pred holds for some argument.
func (i Instantiation) Any(pred func(TypeDesc) bool) bool {
	for _, t := range i.types {
		if pred(t) {
			return true
		}
	}
	return false
}

// Instantiate substitutes signature variables in every argument. The
// receiver is returned unchanged when no argument changes.
func (i Instantiation) Instantiate(typeInst, methodInst Instantiation) Instantiation {
	return i.mapTypes(func(t TypeDesc) TypeDesc {
		return t.InstantiateSignature(typeInst, methodInst)
	})
}

// mapTypes applies f to each argument, allocating only if some result
// differs from its input.
func (i Instantiation) mapTypes(f func(TypeDesc) TypeDesc) Instantiation {
	out, _ := i.mapTypesChanged(f)
	return out
}

func (i Instantiation) mapTypesChanged(f func(TypeDesc) TypeDesc) (Instantiation, bool) {
	var mapped []TypeDesc
	for n, t := range i.types {
		m := f(t)
		if mapped == nil {
			if m == t {
				continue
			}
			mapped = make([]TypeDesc, len(i.types))
			copy(mapped, i.types[:n])
		}
		mapped[n] = m
	}
	if mapped == nil {
		return i, false
	}
	return Instantiation{types: mapped}, true
}

func (i Instantiation) String() string {
	var b strings.Builder
	i.writeTo(&b)
	return b.String()
}

func (i Instantiation) writeTo(b *strings.Builder) {
	b.WriteByte('<')
	for n, t := range i.types {
		if n > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t.String())
	}
	b.WriteByte('>')
}
