package typename

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/nativeformat/errors"
)

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"System.Object", "System.Object"},
		{"Object", "Object"},
		{"System.Collections.Generic.List`1<System.String>", "System.Collections.Generic.List`1<System.String>"},
		{"System.Collections.Generic.Dictionary`2< System.String , !0 >", "System.Collections.Generic.Dictionary`2<System.String,!0>"},
		{"[System.Runtime]System.Collections.Generic.List`1+Enumerator", "[System.Runtime]System.Collections.Generic.List`1+Enumerator"},
		{"!!1*", "!!1*"},
		{"System.Int32[,]", "System.Int32[,]"},
		{"System.String[*]", "System.String[*]"},
		{"System.String[][]&", "System.String[][]&"},
		{"A.B`1<C.D`1<!0>[]>", "A.B`1<C.D`1<!0>[]>"},
	}
	for _, tt := range tests {
		e, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.in, err)
			continue
		}
		if got := e.String(); got != tt.want {
			t.Errorf("Parse(%q).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseShape(t *testing.T) {
	e := MustParse("[Lib]Demo.Outer+Inner<!0>[,,]&")
	if e.Kind != KindByRef {
		t.Fatalf("outer kind = %s", e.Kind)
	}
	arr := e.Elem
	if arr.Kind != KindArray || arr.Rank != 3 {
		t.Fatalf("array = %s rank %d", arr.Kind, arr.Rank)
	}
	inst := arr.Elem
	if inst.Kind != KindInstantiation || len(inst.Args) != 1 || inst.Args[0].Kind != KindTypeVar {
		t.Fatalf("instantiation = %+v", inst)
	}
	named := inst.Elem
	if named.Scope != "Lib" || named.Namespace != "Demo" || named.Name != "Outer" ||
		len(named.Nested) != 1 || named.Nested[0] != "Inner" {
		t.Errorf("named = %+v", named)
	}
	if named.FullName() != "Demo.Outer+Inner" {
		t.Errorf("FullName = %q", named.FullName())
	}

	var kinds []Kind
	e.Walk(func(x *Expr) { kinds = append(kinds, x.Kind) })
	want := []Kind{KindByRef, KindArray, KindInstantiation, KindNamed, KindTypeVar}
	if len(kinds) != len(want) {
		t.Fatalf("Walk visited %v", kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("Walk[%d] = %s, want %s", i, kinds[i], want[i])
		}
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"",
		"!",
		"!!x",
		"List<",
		"List<A",
		"List<A B>",
		"[Lib",
		"System.",
		"A+",
		"A+B.C",
		"A[",
		"A[,x]",
		"A::B",
		"A[" + strings.Repeat(",", MaxRank) + "]",
	}
	for _, s := range bad {
		_, err := Parse(s)
		if err == nil {
			t.Errorf("Parse(%q) succeeded", s)
			continue
		}
		if !stderrors.Is(err, &errors.Error{Kind: errors.KindInvalidInput}) {
			t.Errorf("Parse(%q) error kind: %v", s, err)
		}
	}
}

func TestParseList(t *testing.T) {
	got, err := ParseList(" System.String, !!0[] ,System.Int32&")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[1].String() != "!!0[]" || got[2].Kind != KindByRef {
		t.Errorf("ParseList = %v", got)
	}
	if got, err := ParseList("  "); err != nil || got != nil {
		t.Errorf("empty list = %v, %v", got, err)
	}
	if _, err := ParseList("A,"); err == nil {
		t.Error("trailing comma accepted")
	}
}

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in        string
		owner     string
		name      string
		args      int
		params    int
		hasParams bool
	}{
		{"System.Collections.Generic.List`1<System.String>::Add", "System.Collections.Generic.List`1<System.String>", "Add", 0, 0, false},
		{"Demo.Util::Echo<System.String>(!!0)", "Demo.Util", "Echo", 1, 1, true},
		{"Demo.Box::Fill()", "Demo.Box", "Fill", 0, 0, true},
		{"[Lib]Gone.Thing::Run(System.Int32, System.String[])", "[Lib]Gone.Thing", "Run", 0, 2, true},
	}
	for _, tt := range tests {
		m, err := ParseMethod(tt.in)
		if err != nil {
			t.Errorf("ParseMethod(%q): %v", tt.in, err)
			continue
		}
		if m.Owner.String() != tt.owner || m.Name != tt.name || len(m.Args) != tt.args ||
			len(m.Params) != tt.params || m.HasParams != tt.hasParams {
			t.Errorf("ParseMethod(%q) = %+v", tt.in, m)
		}
	}

	if m := mustMethod(t, "Demo.Util::Echo<System.String>(!!0)"); m.String() != "Demo.Util::Echo<System.String>(!!0)" {
		t.Errorf("String = %q", m.String())
	}

	for _, s := range []string{"Demo.Util", "Demo.Util::", "Demo.Util::Echo(", "Demo.Util::Echo()x"} {
		if _, err := ParseMethod(s); err == nil {
			t.Errorf("ParseMethod(%q) succeeded", s)
		}
	}
}

func mustMethod(t *testing.T, s string) *Method {
	t.Helper()
	m, err := ParseMethod(s)
	if err != nil {
		t.Fatal(err)
	}
	return m
}
