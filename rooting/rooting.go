// Package rooting collapses a program's root methods to the canonical
// bodies that must be compiled for them.
//
// Each Root names a method handle of a loaded module. The driver resolves
// every root, asks for its canonical method target under the configured
// policy and reports the distinct targets. Roots whose metadata is not
// loaded are skipped and reported; corrupt metadata aborts the run.
package rooting

import (
	"context"
	"fmt"
	"runtime"

	"github.com/hashicorp/go-set/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/nativeformat/errors"
	"github.com/wippyai/nativeformat/loader"
	"github.com/wippyai/nativeformat/metadata"
	"github.com/wippyai/nativeformat/typesystem"
)

// Options configures a Driver.
type Options struct {
	// Workers bounds the number of roots processed at once. Values below 1
	// use GOMAXPROCS.
	Workers int
	// Kind is the canonicalization policy. CanonicalFormAny is rejected.
	Kind typesystem.CanonicalFormKind
}

// DefaultOptions returns Specific canonicalization over GOMAXPROCS workers.
func DefaultOptions() Options {
	return Options{
		Workers: runtime.GOMAXPROCS(0),
		Kind:    typesystem.CanonicalFormSpecific,
	}
}

// Root is a method handle of a module: a Method, MemberReference or
// MethodInstantiation.
type Root struct {
	Module *loader.Module
	Method metadata.Handle
}

func (r Root) String() string {
	return fmt.Sprintf("%s!%s", r.Module.Name(), r.Method)
}

// EntryPoint returns the root for the scope's entry point, if it has one.
func EntryPoint(m *loader.Module) (Root, bool) {
	h := m.Scope().EntryPoint
	if h.IsNil() {
		return Root{}, false
	}
	return Root{Module: m, Method: metadata.Handle(h)}, true
}

// Skip records a root left out because its metadata is not loaded.
type Skip struct {
	Root Root
	Err  error
}

// Result is the outcome of a rooting run.
type Result struct {
	// Bodies lists the distinct canonical bodies in order of first use.
	Bodies []typesystem.MethodDesc
	// Targets maps every resolved root to its canonical body.
	Targets map[Root]typesystem.MethodDesc
	// Skipped lists the roots with missing metadata, in input order.
	Skipped []Skip
}

// Driver resolves and canonicalizes roots.
type Driver struct {
	opts Options
}

// New creates a Driver.
func New(opts Options) *Driver {
	if opts.Workers < 1 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Driver{opts: opts}
}

type outcome struct {
	target typesystem.MethodDesc
	skip   error
}

// Root processes roots in parallel. The first bad-metadata error cancels
// the remaining work and is returned.
func (d *Driver) Root(ctx context.Context, roots []Root) (*Result, error) {
	kind := d.opts.Kind
	if kind != typesystem.CanonicalFormSpecific && kind != typesystem.CanonicalFormUniversal {
		return nil, errors.Precondition(errors.PhaseCanon, "rooting needs a Specific or Universal policy, got "+kind.String())
	}

	for i, root := range roots {
		if root.Module == nil {
			return nil, errors.Precondition(errors.PhaseCanon, fmt.Sprintf("root %d has no module", i))
		}
	}

	outcomes := make([]outcome, len(roots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)
	for i, root := range roots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := root.Module.ResolveMethod(root.Method)
			if err != nil {
				if errors.IsMissingMetadata(err) {
					outcomes[i].skip = err
					return nil
				}
				return fmt.Errorf("root %s: %w", root, err)
			}
			outcomes[i].target = m.GetCanonMethodTarget(kind)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Targets: make(map[Root]typesystem.MethodDesc, len(roots))}
	seen := set.New[typesystem.MethodDesc](len(roots))
	for i, o := range outcomes {
		if o.skip != nil {
			res.Skipped = append(res.Skipped, Skip{Root: roots[i], Err: o.skip})
			Logger().Debug("root skipped",
				zap.Stringer("root", roots[i]),
				zap.Error(o.skip))
			continue
		}
		res.Targets[roots[i]] = o.target
		if seen.Insert(o.target) {
			res.Bodies = append(res.Bodies, o.target)
		}
	}

	Logger().Debug("rooting finished",
		zap.Int("roots", len(roots)),
		zap.Int("bodies", len(res.Bodies)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Stringer("kind", kind))
	return res, nil
}

// Shared reports how many resolved roots map to body.
func (r *Result) Shared(body typesystem.MethodDesc) int {
	n := 0
	for _, t := range r.Targets {
		if t == body {
			n++
		}
	}
	return n
}
