// Package typename parses textual type names such as
//
//	System.Collections.Generic.List`1<System.String>[]
//	[System.Runtime]System.Collections.Generic.List`1+Enumerator
//	!0&  !!1*  System.Int32[,]  System.String[*]
//
// A name may start with a bracketed scope. Nested types follow their
// enclosing type after '+'. Type arguments apply to the whole named type.
// The suffixes "[]", "[,...]", "[*]", "&" and "*" apply left to right.
package typename

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/nativeformat/errors"
)

// Kind is the shape of an Expr.
type Kind uint8

const (
	KindNamed Kind = iota
	KindTypeVar
	KindMethodVar
	KindInstantiation
	KindSZArray
	KindArray
	KindByRef
	KindPointer
)

var kindNames = [...]string{
	KindNamed:         "named",
	KindTypeVar:       "type variable",
	KindMethodVar:     "method variable",
	KindInstantiation: "instantiation",
	KindSZArray:       "array",
	KindArray:         "multi-dimensional array",
	KindByRef:         "byref",
	KindPointer:       "pointer",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Expr is a parsed type name.
type Expr struct {
	// Elem is the element, pointee or generic type.
	Elem *Expr
	// Args are the type arguments of an instantiation.
	Args []*Expr

	// Scope is the bracketed scope prefix, if any.
	Scope string
	// Namespace and Name locate the outermost named type; Nested lists the
	// nested type names inside it.
	Namespace string
	Name      string
	Nested    []string

	// Index is the variable number; Rank the array rank.
	Index int
	Rank  int
	Kind  Kind
}

// FullName returns Namespace.Name+Nested... of a named expression.
func (e *Expr) FullName() string {
	var b strings.Builder
	if e.Namespace != "" {
		b.WriteString(e.Namespace)
		b.WriteByte('.')
	}
	b.WriteString(e.Name)
	for _, n := range e.Nested {
		b.WriteByte('+')
		b.WriteString(n)
	}
	return b.String()
}

// String formats e back into the syntax Parse accepts.
func (e *Expr) String() string {
	var b strings.Builder
	e.format(&b)
	return b.String()
}

func (e *Expr) format(b *strings.Builder) {
	switch e.Kind {
	case KindNamed:
		if e.Scope != "" {
			b.WriteByte('[')
			b.WriteString(e.Scope)
			b.WriteByte(']')
		}
		b.WriteString(e.FullName())
	case KindTypeVar:
		fmt.Fprintf(b, "!%d", e.Index)
	case KindMethodVar:
		fmt.Fprintf(b, "!!%d", e.Index)
	case KindInstantiation:
		e.Elem.format(b)
		b.WriteByte('<')
		for i, a := range e.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			a.format(b)
		}
		b.WriteByte('>')
	case KindSZArray:
		e.Elem.format(b)
		b.WriteString("[]")
	case KindArray:
		e.Elem.format(b)
		if e.Rank == 1 {
			b.WriteString("[*]")
		} else {
			b.WriteByte('[')
			b.WriteString(strings.Repeat(",", e.Rank-1))
			b.WriteByte(']')
		}
	case KindByRef:
		e.Elem.format(b)
		b.WriteByte('&')
	case KindPointer:
		e.Elem.format(b)
		b.WriteByte('*')
	}
}

// Walk calls fn for e and every expression below it, parents first.
func (e *Expr) Walk(fn func(*Expr)) {
	fn(e)
	if e.Elem != nil {
		e.Elem.Walk(fn)
	}
	for _, a := range e.Args {
		a.Walk(fn)
	}
}

// MaxRank is the largest array rank Parse accepts.
const MaxRank = 32

// Parse parses a single type name.
func Parse(s string) (*Expr, error) {
	p := &parser{src: s}
	e, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return e, nil
}

// MustParse is Parse for names known to be valid. It panics on error.
func MustParse(s string) *Expr {
	e, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return e
}

// ParseList parses a comma separated list of type names, as found between
// the parentheses of a method signature. An empty string yields no names.
func ParseList(s string) ([]*Expr, error) {
	p := &parser{src: s}
	p.skipSpace()
	if p.eof() {
		return nil, nil
	}
	out, err := p.parseArgs(0)
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return out, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		if p.eof() {
			return p.errorf("expected %q, got end of input", c)
		}
		return p.errorf("expected %q, got %q", c, p.peek())
	}
	p.pos++
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidInput).
		Record("type name").
		Detail("offset %d: %s", p.pos, fmt.Sprintf(format, args...)).
		Value(p.src).
		Build()
}

// parseArgs reads type names up to, not including, end. end 0 means end of
// input.
func (p *parser) parseArgs(end byte) ([]*Expr, error) {
	var out []*Expr
	for {
		e, err := p.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		p.skipSpace()
		if p.peek() != ',' {
			break
		}
		p.pos++
	}
	if end != 0 && p.peek() != end {
		return nil, p.expect(end)
	}
	return out, nil
}

func (p *parser) parseType() (*Expr, error) {
	p.skipSpace()
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parseSuffixes(e)
}

func (p *parser) parsePrimary() (*Expr, error) {
	if p.peek() == '!' {
		p.pos++
		kind := KindTypeVar
		if p.peek() == '!' {
			p.pos++
			kind = KindMethodVar
		}
		start := p.pos
		for !p.eof() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		if start == p.pos {
			return nil, p.errorf("variable without a number")
		}
		n, err := strconv.Atoi(p.src[start:p.pos])
		if err != nil {
			return nil, p.errorf("variable number %q: %v", p.src[start:p.pos], err)
		}
		return &Expr{Kind: kind, Index: n}, nil
	}

	e := &Expr{Kind: KindNamed}
	if p.peek() == '[' {
		p.pos++
		end := strings.IndexByte(p.src[p.pos:], ']')
		if end <= 0 {
			return nil, p.errorf("unterminated scope")
		}
		e.Scope = strings.TrimSpace(p.src[p.pos : p.pos+end])
		p.pos += end + 1
	}

	full := p.ident()
	if full == "" {
		return nil, p.errorf("expected a type name")
	}
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		e.Namespace, e.Name = full[:i], full[i+1:]
	} else {
		e.Name = full
	}
	if e.Name == "" {
		return nil, p.errorf("type name %q ends with '.'", full)
	}
	for p.peek() == '+' {
		p.pos++
		n := p.ident()
		if n == "" || strings.Contains(n, ".") {
			return nil, p.errorf("bad nested type name %q", n)
		}
		e.Nested = append(e.Nested, n)
	}

	p.skipSpace()
	if p.peek() == '<' {
		p.pos++
		args, err := p.parseArgs('>')
		if err != nil {
			return nil, err
		}
		p.pos++
		return &Expr{Kind: KindInstantiation, Elem: e, Args: args}, nil
	}
	return e, nil
}

func (p *parser) parseSuffixes(e *Expr) (*Expr, error) {
	for {
		p.skipSpace()
		switch p.peek() {
		case '&':
			p.pos++
			e = &Expr{Kind: KindByRef, Elem: e}
		case '*':
			p.pos++
			e = &Expr{Kind: KindPointer, Elem: e}
		case '[':
			p.pos++
			rank, sz := 1, true
			for p.peek() == ',' || p.peek() == '*' {
				if p.peek() == ',' {
					rank++
				}
				sz = false
				p.pos++
			}
			if err := p.expect(']'); err != nil {
				return nil, err
			}
			if sz {
				e = &Expr{Kind: KindSZArray, Elem: e}
				continue
			}
			if rank > MaxRank {
				return nil, p.errorf("array rank %d exceeds %d", rank, MaxRank)
			}
			e = &Expr{Kind: KindArray, Elem: e, Rank: rank}
		default:
			return e, nil
		}
	}
}

// ident reads a dotted identifier. Backticks and digits are allowed so that
// generic arity suffixes such as List`1 stay part of the name.
func (p *parser) ident() string {
	start := p.pos
	for !p.eof() {
		switch p.src[p.pos] {
		case '<', '>', '[', ']', ',', '&', '*', '+', '!', ' ', '\t', '(', ')', ':':
			return p.src[start:p.pos]
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// Method is a parsed method name: Owner::Name, optionally followed by
// method type arguments and a parenthesized parameter list.
type Method struct {
	Owner *Expr
	Name  string
	Args  []*Expr
	// Params is nil when the name carries no parameter list.
	Params []*Expr
	// HasParams distinguishes "()" from no parameter list.
	HasParams bool
}

func (m *Method) String() string {
	var b strings.Builder
	m.Owner.format(&b)
	b.WriteString("::")
	b.WriteString(m.Name)
	if len(m.Args) > 0 {
		b.WriteByte('<')
		for i, a := range m.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			a.format(&b)
		}
		b.WriteByte('>')
	}
	if m.HasParams {
		b.WriteByte('(')
		for i, a := range m.Params {
			if i > 0 {
				b.WriteByte(',')
			}
			a.format(&b)
		}
		b.WriteByte(')')
	}
	return b.String()
}

// ParseMethod parses Owner::Name<Args>(Params).
func ParseMethod(s string) (*Method, error) {
	p := &parser{src: s}
	owner, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(p.src[p.pos:], "::") {
		return nil, p.errorf("expected \"::\" after the owning type")
	}
	p.pos += 2
	m := &Method{Owner: owner, Name: p.ident()}
	if m.Name == "" {
		return nil, p.errorf("expected a method name")
	}
	p.skipSpace()
	if p.peek() == '<' {
		p.pos++
		if m.Args, err = p.parseArgs('>'); err != nil {
			return nil, err
		}
		p.pos++
	}
	p.skipSpace()
	if p.peek() == '(' {
		p.pos++
		m.HasParams = true
		p.skipSpace()
		if p.peek() != ')' {
			if m.Params, err = p.parseArgs(')'); err != nil {
				return nil, err
			}
		}
		p.pos++
	}
	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return m, nil
}
