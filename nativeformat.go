package nativeformat

import (
	"github.com/wippyai/nativeformat/loader"
	"github.com/wippyai/nativeformat/metadata"
	"github.com/wippyai/nativeformat/rooting"
	"github.com/wippyai/nativeformat/typename"
	"github.com/wippyai/nativeformat/typesystem"
)

// Options configures Open.
type Options struct {
	Reader     metadata.Options
	TypeSystem typesystem.Options
	// StrictReferences fails type loads that refer to scopes outside the
	// blob. See loader.Options.
	StrictReferences bool
}

// DefaultOptions returns strict loading with default reader and type
// system settings.
func DefaultOptions() Options {
	return Options{
		Reader:           metadata.DefaultOptions(),
		TypeSystem:       typesystem.DefaultOptions(),
		StrictReferences: true,
	}
}

// Image is a blob with one module loaded per scope definition. All modules
// share a Context and a Resolver.
type Image struct {
	Reader   *metadata.Reader
	Context  *typesystem.Context
	Resolver *loader.Resolver
	Modules  []*loader.Module
}

// Open validates the blob header and indexes every scope. Types are loaded
// on first use.
func Open(data []byte, opts Options) (*Image, error) {
	r, err := metadata.NewReader(data, opts.Reader)
	if err != nil {
		return nil, err
	}
	img := &Image{
		Reader:   r,
		Context:  typesystem.NewContext(opts.TypeSystem),
		Resolver: loader.NewResolver(),
	}
	img.Modules, err = loader.Load(img.Context, r, loader.Options{
		Resolver:         img.Resolver,
		StrictReferences: opts.StrictReferences,
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Module returns the module of a scope, or nil.
func (img *Image) Module(scope string) *loader.Module {
	return img.Resolver.Module(scope)
}

// Type resolves a type name such as
// System.Collections.Generic.List`1<System.String>[].
func (img *Image) Type(name string) (typesystem.TypeDesc, error) {
	e, err := typename.Parse(name)
	if err != nil {
		return nil, err
	}
	return img.Resolver.LookupType(e)
}

// Method resolves a method name such as Demo.Program::Echo<System.String>.
func (img *Image) Method(name string) (typesystem.MethodDesc, error) {
	m, err := typename.ParseMethod(name)
	if err != nil {
		return nil, err
	}
	return img.Resolver.LookupMethod(m)
}

// EntryPoints returns the entry point root of every scope that has one.
func (img *Image) EntryPoints() []rooting.Root {
	var out []rooting.Root
	for _, m := range img.Modules {
		if r, ok := rooting.EntryPoint(m); ok {
			out = append(out, r)
		}
	}
	return out
}
