package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode  Phase = "decode"  // blob to records
	PhaseEncode  Phase = "encode"  // records to blob
	PhaseLoad    Phase = "load"    // records to type system entities
	PhaseResolve Phase = "resolve" // cross-module reference resolution
	PhaseCanon   Phase = "canon"   // canonical form computation
	PhaseParse   Phase = "parse"   // fixture and command line parsing
)

// Kind categorizes the error
type Kind string

const (
	KindBadMetadata     Kind = "bad_metadata"
	KindMissingMetadata Kind = "missing_metadata"
	KindTagMismatch     Kind = "tag_mismatch"
	KindOutOfBounds     Kind = "out_of_bounds"
	KindOverflow        Kind = "overflow"
	KindInvalidUTF8     Kind = "invalid_utf8"
	KindPrecondition    Kind = "precondition"
	KindCycle           Kind = "cycle"
	KindNotFound        Kind = "not_found"
	KindInvalidInput    Kind = "invalid_input"
	KindUnsupported     Kind = "unsupported"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Record string
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Record != "" || e.Type != "" {
		b.WriteString(": ")
		if e.Record != "" && e.Type != "" {
			b.WriteString("record ")
			b.WriteString(e.Record)
			b.WriteString(", type ")
			b.WriteString(e.Type)
		} else if e.Record != "" {
			b.WriteString("record ")
			b.WriteString(e.Record)
		} else {
			b.WriteString("type ")
			b.WriteString(e.Type)
		}
	}

	if e.Detail != "" {
		if e.Record != "" || e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Phase matches any phase of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase == "" {
			return e.Kind == t.Kind
		}
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Sentinels matching every phase of a kind.
var (
	ErrBadMetadata     = &Error{Kind: KindBadMetadata}
	ErrMissingMetadata = &Error{Kind: KindMissingMetadata}
)

// IsBadMetadata reports whether err is, or wraps, a corrupt-blob error.
// Tag mismatches and codec overflows count as corruption.
func IsBadMetadata(err error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			switch e.Kind {
			case KindBadMetadata, KindTagMismatch, KindOverflow, KindOutOfBounds, KindInvalidUTF8:
				if e.Phase == PhaseDecode || e.Kind == KindBadMetadata {
					return true
				}
			}
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// IsMissingMetadata reports whether err is, or wraps, a missing-metadata error.
func IsMissingMetadata(err error) bool {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			if e.Kind == KindMissingMetadata {
				return true
			}
		case *MissingMetadataError:
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Record sets the record kind name
func (b *Builder) Record(r string) *Builder {
	b.err.Record = r
	return b
}

// Type sets the type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// BadMetadata creates a corrupt-blob error for the given record kind
func BadMetadata(record string, offset int, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindBadMetadata,
		Record: record,
		Detail: fmt.Sprintf("at offset %d", offset),
		Value:  offset,
		Cause:  cause,
	}
}

// TagMismatch creates an error for a handle whose tag is not the expected one
func TagMismatch(expected, got string, raw uint32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindTagMismatch,
		Record: expected,
		Detail: fmt.Sprintf("handle 0x%08x has tag %s", raw, got),
		Value:  raw,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, target string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Type:   target,
		Detail: fmt.Sprintf("value %v overflows %s", value, target),
		Value:  value,
	}
}

// Precondition creates an error for writer or loader misuse
func Precondition(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindPrecondition,
		Detail: detail,
	}
}

// Cycle creates an error for a reference cycle the format cannot express
func Cycle(phase Phase, record string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCycle,
		Record: record,
		Detail: "reference cycle through structural records",
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// MissingReference represents a single unresolved type reference
type MissingReference struct {
	Scope string // e.g., "System.Runtime"
	Type  string // e.g., "System.Collections.Generic.List`1"
}

// MissingMetadataError is returned when a reference points at metadata that
// is not loaded. Callers may tolerate it and skip the affected entity.
type MissingMetadataError struct {
	Refs []MissingReference
}

// NewMissingMetadataError creates an error from a list of "scope#type" strings
func NewMissingMetadataError(refs []string) *MissingMetadataError {
	result := &MissingMetadataError{
		Refs: make([]MissingReference, 0, len(refs)),
	}
	for _, ref := range refs {
		scope, typ := parseRefKey(ref)
		result.Refs = append(result.Refs, MissingReference{
			Scope: scope,
			Type:  typ,
		})
	}
	return result
}

// MissingType creates a single-reference missing metadata error
func MissingType(scope, typeName string) *MissingMetadataError {
	return &MissingMetadataError{
		Refs: []MissingReference{{Scope: scope, Type: typeName}},
	}
}

func parseRefKey(key string) (scope, typ string) {
	s, t, found := strings.Cut(key, "#")
	if found {
		return s, t
	}
	return key, ""
}

func (e *MissingMetadataError) Error() string {
	if len(e.Refs) == 0 {
		return "[resolve] missing_metadata: no references specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "missing %d type(s):\n", len(e.Refs))

	byScope := make(map[string][]string)
	var scopeOrder []string
	for _, ref := range e.Refs {
		if _, exists := byScope[ref.Scope]; !exists {
			scopeOrder = append(scopeOrder, ref.Scope)
		}
		byScope[ref.Scope] = append(byScope[ref.Scope], ref.Type)
	}

	for _, scope := range scopeOrder {
		b.WriteString("\n  ")
		if scope == "" {
			b.WriteString("<unknown scope>")
		} else {
			b.WriteString(scope)
		}
		b.WriteString(":\n")
		for _, typ := range byScope[scope] {
			b.WriteString("    - ")
			b.WriteString(typ)
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type.
// It also matches ErrMissingMetadata.
func (e *MissingMetadataError) Is(target error) bool {
	switch t := target.(type) {
	case *MissingMetadataError:
		return true
	case *Error:
		return t.Kind == KindMissingMetadata && (t.Phase == "" || t.Phase == PhaseResolve)
	}
	return false
}
