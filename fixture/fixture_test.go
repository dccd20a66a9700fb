package fixture_test

import (
	stderrors "errors"
	"os"
	"strings"
	"testing"

	"github.com/wippyai/nativeformat/errors"
	"github.com/wippyai/nativeformat/fixture"
	"github.com/wippyai/nativeformat/loader"
	"github.com/wippyai/nativeformat/metadata"
	"github.com/wippyai/nativeformat/metadata/writer"
	"github.com/wippyai/nativeformat/typename"
	"github.com/wippyai/nativeformat/typesystem"
)

type built struct {
	fix      *fixture.Fixture
	reader   *metadata.Reader
	ctx      *typesystem.Context
	resolver *loader.Resolver
}

func buildSample(t *testing.T) *built {
	t.Helper()
	data, err := os.ReadFile("testdata/sample.yaml")
	if err != nil {
		t.Fatal(err)
	}
	fix, err := fixture.Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	blob, err := fix.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	r, err := metadata.NewReader(blob, metadata.DefaultOptions())
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	ctx := typesystem.NewContext(typesystem.DefaultOptions())
	opts := loader.DefaultOptions()
	opts.Resolver = loader.NewResolver()
	if _, err := loader.Load(ctx, r, opts); err != nil {
		t.Fatalf("loader.Load: %v", err)
	}
	return &built{fix: fix, reader: r, ctx: ctx, resolver: opts.Resolver}
}

func (b *built) lookup(t *testing.T, name string) typesystem.TypeDesc {
	t.Helper()
	typ, err := b.resolver.LookupType(typename.MustParse(name))
	if err != nil {
		t.Fatalf("LookupType(%s): %v", name, err)
	}
	return typ
}

func TestSampleScopes(t *testing.T) {
	b := buildSample(t)
	sys := b.resolver.Module("System.Runtime")
	app := b.resolver.Module("App")
	if sys == nil || app == nil {
		t.Fatalf("modules = %v", b.resolver.Modules())
	}
	if v := sys.Scope().MajorVersion; v != 8 {
		t.Errorf("System.Runtime major version = %d", v)
	}
	if s := app.Scope(); s.MajorVersion != 1 || s.MinorVersion != 2 {
		t.Errorf("App version = %d.%d", s.MajorVersion, s.MinorVersion)
	}
	if sys.TypeCount() != 11 || app.TypeCount() != 4 {
		t.Errorf("type counts = %d, %d", sys.TypeCount(), app.TypeCount())
	}
	if b.ctx.SystemModule() != typesystem.Module(sys) {
		t.Error("system module not installed")
	}
}

func TestSampleTypes(t *testing.T) {
	b := buildSample(t)

	categories := []struct {
		name string
		want typesystem.TypeFlags
	}{
		{"System.Int32", typesystem.CategoryInt32},
		{"System.Boolean", typesystem.CategoryBoolean},
		{"System.String", typesystem.CategoryClass},
		{"System.Collections.Generic.IEnumerable`1", typesystem.CategoryInterface},
		{"System.Collections.Generic.List`1+Enumerator", typesystem.CategoryValueType},
		{"Demo.Circle", typesystem.CategoryClass},
		{"Demo.Color", typesystem.CategoryEnum},
	}
	for _, tt := range categories {
		mt, ok := b.lookup(t, tt.name).(*typesystem.MetadataType)
		if !ok {
			t.Errorf("%s is not a definition", tt.name)
			continue
		}
		if got := mt.Category(); got != tt.want {
			t.Errorf("%s category = %s, want %s", tt.name, got.CategoryName(), tt.want.CategoryName())
		}
	}

	circle := b.lookup(t, "Demo.Circle").(*typesystem.MetadataType)
	if circle.BaseType() != b.lookup(t, "Demo.Shape") {
		t.Errorf("Circle base = %v", circle.BaseType())
	}

	program := b.lookup(t, "Demo.Program").(*typesystem.MetadataType)
	shapes := program.GetField("Shapes")
	if shapes == nil || shapes.FieldType() != b.lookup(t, "System.Collections.Generic.List`1<Demo.Shape>") {
		t.Errorf("Shapes = %v", shapes)
	}
	if grid := program.GetField("Grid"); grid == nil || grid.FieldType() != b.lookup(t, "System.Int32[,]") {
		t.Errorf("Grid = %v", grid)
	}

	echo := program.GetMethod("Echo", nil)
	if echo == nil || len(echo.GenericParameters()) != 1 || !echo.Signature().IsStatic() {
		t.Fatalf("Echo = %v", echo)
	}
	if p := echo.Signature().Parameters[0]; p != b.lookup(t, "!!0&") {
		t.Errorf("Echo parameter = %s", p)
	}
}

func TestSampleEntryPoint(t *testing.T) {
	b := buildSample(t)
	app := b.resolver.Module("App")
	ep := app.Scope().EntryPoint
	if ep.IsNil() {
		t.Fatal("no entry point")
	}
	m, err := app.ResolveMethod(metadata.Handle(ep))
	if err != nil {
		t.Fatalf("ResolveMethod(entry point): %v", err)
	}
	if m.String() != "Demo.Program.Main(System.String[])" {
		t.Errorf("entry point = %s", m)
	}
}

func TestSampleRoots(t *testing.T) {
	b := buildSample(t)
	app := b.resolver.Module("App")
	want := []string{
		"Demo.Program.Main(System.String[])",
		"System.Collections.Generic.List`1<System.String>.Add(System.String)",
		"System.Collections.Generic.List`1<Demo.Shape>.Add(Demo.Shape)",
		"System.Collections.Generic.List`1<System.Int32>.Add(System.Int32)",
		"Demo.Program.Echo<System.String>(System.String&)",
	}
	if len(b.fix.Roots) != len(want)+1 {
		t.Fatalf("roots = %d", len(b.fix.Roots))
	}
	for i, w := range want {
		h, ok := b.fix.Handle(i)
		if !ok {
			t.Fatalf("root %d has no handle", i)
		}
		m, err := app.ResolveMethod(h)
		if err != nil {
			t.Errorf("root %s: %v", b.fix.Roots[i].Name, err)
			continue
		}
		if m.String() != w {
			t.Errorf("root %d = %s, want %s", i, m, w)
		}
	}

	h, _ := b.fix.Handle(len(want))
	_, err := app.ResolveMethod(h)
	var missing *errors.MissingMetadataError
	if !stderrors.As(err, &missing) || missing.Refs[0].Scope != "Missing.Lib" {
		t.Errorf("missing root: err = %v", err)
	}

	if _, ok := b.fix.Roots[1].Record.(*writer.MemberReference); !ok {
		t.Errorf("List<String>.Add root is %T", b.fix.Roots[1].Record)
	}
	if _, ok := b.fix.Roots[0].Record.(*writer.Method); !ok {
		t.Errorf("Main root is %T", b.fix.Roots[0].Record)
	}
}

func TestLookupMethod(t *testing.T) {
	b := buildSample(t)
	m, err := b.resolver.LookupMethod(mustMethod(t, "System.Collections.Generic.List`1<System.String>::ConvertAll<System.Int32>"))
	if err != nil {
		t.Fatalf("LookupMethod: %v", err)
	}
	if got := m.Signature().ReturnType; got != b.lookup(t, "System.Collections.Generic.List`1<System.Int32>") {
		t.Errorf("ConvertAll<Int32> returns %s", got)
	}
	if _, err := b.resolver.LookupMethod(mustMethod(t, "System.Collections.Generic.List`1<System.String>::Add(System.String)")); !errors.IsMissingMetadata(err) {
		t.Errorf("instantiated parameter list matched: err = %v", err)
	}
	if m, err := b.resolver.LookupMethod(mustMethod(t, "System.Collections.Generic.List`1<System.String>::Add(!0)")); err != nil || m.Name() != "Add" {
		t.Errorf("Add(!0) = %v, %v", m, err)
	}
	if _, err := b.resolver.LookupMethod(mustMethod(t, "Demo.Program::Echo<System.String,System.Int32>")); !stderrors.Is(err, &errors.Error{Kind: errors.KindInvalidInput}) {
		t.Errorf("method arity mismatch: err = %v", err)
	}
	if _, err := b.resolver.LookupType(typename.MustParse("[Nope]A.B")); !errors.IsMissingMetadata(err) {
		t.Errorf("unknown scope: err = %v", err)
	}
	if _, err := b.resolver.LookupType(typename.MustParse("System.Collections.Generic.List`1<System.String,System.Int32>")); err == nil {
		t.Error("type arity mismatch accepted")
	}
}

func mustMethod(t *testing.T, s string) *typename.Method {
	t.Helper()
	m, err := typename.ParseMethod(s)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"no scopes", "roots: []", "no scopes"},
		{"unknown key", "scopes: [{name: A, colour: red}]", "parse fixture"},
		{"duplicate scope", "scopes: [{name: A}, {name: A}]", "duplicate scope"},
		{"bad version", "scopes: [{name: A, version: 1.x}]", "version"},
		{"unknown base", "scopes: [{name: A, types: [{name: N.T, base: N.Missing}]}]", "unknown type N.Missing"},
		{"duplicate type", "scopes: [{name: A, types: [{name: N.T}, {name: N.T}]}]", "duplicate type"},
		{"nested name", "scopes: [{name: A, types: [{name: N.T, nested: [{name: X.Y}]}]}]", "nested type name"},
		{"qualified type name", "scopes: [{name: A, types: [{name: \"[B]N.T\"}]}]", "Namespace.Name"},
		{"bad field type", "scopes: [{name: A, types: [{name: N.T, fields: [{name: f, type: \"N.T<\"}]}]}]", "f"},
		{"entry point", "scopes: [{name: A, entrypoint: \"N.T::Main\", types: [{name: N.T}]}]", "does not declare"},
		{"root scope", "scopes: [{name: A}]\nroots: [{scope: B, method: \"N.T::M\"}]", "root scope"},
		{"undeclared root", "scopes: [{name: A, types: [{name: N.T}]}]\nroots: [{scope: A, method: \"N.T::M\"}]", "parameter list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fixture.Load([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !stderrors.Is(err, &errors.Error{Kind: errors.KindInvalidInput}) {
				t.Errorf("error kind: %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestReferencesAreShared(t *testing.T) {
	doc := `
scopes:
  - name: Core
    types:
      - name: Core.Base
  - name: User
    types:
      - name: User.A
        base: Core.Base
      - name: User.B
        base: "[Core]Core.Base"
`
	fix, err := fixture.Load([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	user := fix.Writer.ScopeDefinitions[1]
	types := user.RootNamespaceDefinition.NamespaceDefinitions[0].TypeDefinitions
	if len(types) != 2 {
		t.Fatalf("User types = %d", len(types))
	}
	if types[0].BaseType != types[1].BaseType {
		t.Error("references to Core.Base not shared")
	}
	ref, ok := types[0].BaseType.(*writer.TypeReference)
	if !ok || ref.TypeName != "Base" {
		t.Fatalf("base = %#v", types[0].BaseType)
	}
	ns, ok := ref.ParentNamespaceOrType.(*writer.NamespaceReference)
	if !ok || ns.Name != "Core" {
		t.Fatalf("namespace reference = %#v", ref.ParentNamespaceOrType)
	}
}
