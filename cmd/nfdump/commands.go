package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-set/v3"
	"golang.org/x/term"

	"github.com/wippyai/nativeformat"
	"github.com/wippyai/nativeformat/codec"
	"github.com/wippyai/nativeformat/fixture"
	"github.com/wippyai/nativeformat/loader"
	"github.com/wippyai/nativeformat/metadata"
	"github.com/wippyai/nativeformat/rooting"
	"github.com/wippyai/nativeformat/typesystem"
)

var (
	scopeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	memberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// render applies style only when stdout is a terminal.
func render(style lipgloss.Style, s string) string {
	if !stdoutIsTerminal() {
		return s
	}
	return style.Render(s)
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// session is a loaded blob. YAML input is built in memory first.
type session struct {
	*nativeformat.Image
	path string
	fix  *fixture.Fixture
}

func isBlob(data []byte) bool {
	r := codec.NewReader(data, 0)
	sig, err := r.ReadU32LE()
	return err == nil && sig == metadata.Signature
}

func open(path string, strict bool) (*session, error) {
	if path == "" {
		return nil, fmt.Errorf("-in is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	s := &session{path: path}
	if !isBlob(data) {
		if s.fix, err = fixture.Load(data); err != nil {
			return nil, err
		}
		if data, err = s.fix.Bytes(); err != nil {
			return nil, fmt.Errorf("write blob: %w", err)
		}
	}

	opts := nativeformat.DefaultOptions()
	opts.StrictReferences = strict
	if s.Image, err = nativeformat.Open(data, opts); err != nil {
		return nil, err
	}
	return s, nil
}

func parseKind(s string) (typesystem.CanonicalFormKind, error) {
	kind, ok := typesystem.ParseCanonicalFormKind(s)
	if !ok {
		return 0, fmt.Errorf("unknown canonical form %q", s)
	}
	return kind, nil
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	in := fs.String("in", "", "YAML scope description")
	out := fs.String("out", "", "Output blob path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return fmt.Errorf("build needs -in and -out")
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	fix, err := fixture.Load(data)
	if err != nil {
		return err
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	n, err := fix.Writer.WriteTo(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	fmt.Printf("Wrote %s: %d bytes, %d scopes, %d roots\n",
		*out, n, len(fix.Writer.ScopeDefinitions), len(fix.Roots))
	return nil
}

func runDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	in := fs.String("in", "", "Blob or YAML scope description")
	scope := fs.String("scope", "", "Only dump this scope")
	strict := fs.Bool("strict", false, "Fail on references to scopes that are not loaded")
	interactive := fs.Bool("i", false, "Interactive type browser")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := open(*in, *strict)
	if err != nil {
		return err
	}
	if *interactive {
		if !stdoutIsTerminal() {
			return fmt.Errorf("-i needs a terminal")
		}
		return runBrowser(s)
	}

	found := false
	for _, m := range s.Modules {
		if *scope != "" && m.Name() != *scope {
			continue
		}
		found = true
		if err := dumpModule(os.Stdout, m); err != nil {
			return err
		}
	}
	if !found {
		return fmt.Errorf("no scope %q", *scope)
	}
	return nil
}

func version(sd metadata.ScopeDefinition) string {
	return fmt.Sprintf("%d.%d.%d.%d", sd.MajorVersion, sd.MinorVersion, sd.BuildNumber, sd.RevisionNumber)
}

func dumpModule(w io.Writer, m *loader.Module) error {
	sd := m.Scope()
	fmt.Fprintf(w, "%s v%s, %d types\n", render(scopeStyle, m.Name()), version(sd), m.TypeCount())

	types, err := m.Types()
	if err != nil {
		return err
	}
	for _, t := range types {
		fmt.Fprintf(w, "  %s\n", typeHeader(t))
		for _, line := range typeMembers(t) {
			fmt.Fprintf(w, "      %s\n", line)
		}
	}
	fmt.Fprintln(w)
	return nil
}

func typeHeader(t *typesystem.MetadataType) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(t.Category().CategoryName()))
	b.WriteByte(' ')
	b.WriteString(render(typeStyle, t.String()))
	if ps := t.GenericParameters(); len(ps) > 0 {
		names := make([]string, len(ps))
		for i, p := range ps {
			names[i] = p.Name()
		}
		b.WriteString("<" + strings.Join(names, ",") + ">")
	}
	if base := t.BaseType(); base != nil {
		b.WriteString(" : ")
		b.WriteString(base.String())
	}
	return b.String()
}

func typeMembers(t *typesystem.MetadataType) []string {
	var out []string
	for _, f := range t.Fields() {
		mod := ""
		if f.IsStatic() {
			mod = "static "
		}
		out = append(out, fmt.Sprintf("field %s%s %s", mod, f.FieldType(), render(memberStyle, f.Name())))
	}
	for _, m := range t.Methods() {
		sig := m.Signature()
		mod := ""
		if sig.IsStatic() {
			mod = "static "
		}
		ret := "<none>"
		if sig.ReturnType != nil {
			ret = sig.ReturnType.String()
		}
		params := make([]string, len(sig.Parameters))
		for i, p := range sig.Parameters {
			params[i] = p.String()
		}
		name := m.Name()
		if gps := m.GenericParameters(); len(gps) > 0 {
			names := make([]string, len(gps))
			for i, p := range gps {
				names[i] = p.Name()
			}
			name += "<" + strings.Join(names, ",") + ">"
		}
		out = append(out, fmt.Sprintf("method %s%s %s(%s)", mod, ret, render(memberStyle, name), strings.Join(params, ", ")))
	}
	return out
}

func runCanon(args []string) error {
	fs := flag.NewFlagSet("canon", flag.ContinueOnError)
	in := fs.String("in", "", "Blob or YAML scope description")
	typeName := fs.String("type", "", "Type name, e.g. System.Collections.Generic.List`1<System.String>")
	methodName := fs.String("method", "", "Method name, e.g. Demo.Program::Echo<System.String>")
	kindName := fs.String("kind", "specific", "Canonical form: specific, universal or any")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*typeName == "") == (*methodName == "") {
		return fmt.Errorf("canon needs exactly one of -type and -method")
	}
	kind, err := parseKind(*kindName)
	if err != nil {
		return err
	}
	s, err := open(*in, true)
	if err != nil {
		return err
	}

	if *typeName != "" {
		t, err := s.Type(*typeName)
		if err != nil {
			return err
		}
		fmt.Printf("type:      %s\n", t)
		fmt.Printf("canonical: %t\n", t.IsCanonicalSubtype(kind))
		if kind != typesystem.CanonicalFormAny {
			fmt.Printf("%-10s %s\n", kind.String()+":", t.ConvertToCanonForm(kind))
		}
		return nil
	}

	if kind == typesystem.CanonicalFormAny {
		return fmt.Errorf("method targets need a specific or universal form")
	}
	m, err := s.Method(*methodName)
	if err != nil {
		return err
	}
	fmt.Printf("method: %s\n", m)
	fmt.Printf("target: %s\n", m.GetCanonMethodTarget(kind))
	return nil
}

func runRoot(args []string) error {
	fs := flag.NewFlagSet("root", flag.ContinueOnError)
	in := fs.String("in", "", "Blob or YAML scope description")
	kindName := fs.String("kind", "specific", "Canonical form: specific or universal")
	workers := fs.Int("workers", 0, "Parallel workers (0 = GOMAXPROCS)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	kind, err := parseKind(*kindName)
	if err != nil {
		return err
	}
	s, err := open(*in, true)
	if err != nil {
		return err
	}

	roots, err := s.roots()
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		return fmt.Errorf("%s has no roots and no entry points", s.path)
	}
	res, err := rooting.New(rooting.Options{Workers: *workers, Kind: kind}).Root(context.Background(), roots)
	if err != nil {
		return err
	}

	fmt.Printf("%d roots, %d bodies (%s)\n", len(roots), len(res.Bodies), kind)
	for _, body := range res.Bodies {
		fmt.Printf("  %s", render(memberStyle, body.String()))
		if n := res.Shared(body); n > 1 {
			fmt.Printf("  %s", render(helpStyle, fmt.Sprintf("shared by %d roots", n)))
		}
		fmt.Println()
	}
	if len(res.Skipped) > 0 {
		fmt.Printf("%d skipped\n", len(res.Skipped))
		for _, sk := range res.Skipped {
			fmt.Printf("  %s: %s\n", sk.Root, render(errorStyle, sk.Err.Error()))
		}
	}
	return nil
}

// roots collects the fixture roots, if any, and every scope's entry point.
func (s *session) roots() ([]rooting.Root, error) {
	var out []rooting.Root
	seen := set.New[rooting.Root](8)
	add := func(r rooting.Root) {
		if seen.Insert(r) {
			out = append(out, r)
		}
	}
	if s.fix != nil {
		for i, nr := range s.fix.Roots {
			m := s.Module(nr.Scope)
			h, ok := s.fix.Handle(i)
			if m == nil || !ok {
				return nil, fmt.Errorf("root %s has no handle in scope %s", nr.Name, nr.Scope)
			}
			add(rooting.Root{Module: m, Method: h})
		}
	}
	for _, r := range s.EntryPoints() {
		add(r)
	}
	return out, nil
}
