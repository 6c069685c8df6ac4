// Package resolver turns symbolic derived paths into concrete store paths once
// the outputs they name have been built.
package resolver

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/zerr"
)

// Resolver resolves derived paths against an output map provider.
type Resolver struct {
	outputs ports.OutputMapProvider
	dir     domain.StoreDir
}

// NewResolver creates a new Resolver.
func NewResolver(outputs ports.OutputMapProvider, dir domain.StoreDir) *Resolver {
	return &Resolver{outputs: outputs, dir: dir}
}

// ResolveStrict returns the concrete path p denotes. Every output along the
// chain must be declared and built; an unbuilt one is domain.ErrOutputNotBuilt.
func (r *Resolver) ResolveStrict(ctx context.Context, p domain.SingleDerivedPath) (domain.StorePath, error) {
	switch v := p.(type) {
	case domain.SingleDerivedPathOpaque:
		return v.Path, nil
	case domain.SingleDerivedPathBuilt:
		drv, err := r.ResolveStrict(ctx, v.DrvPath)
		if err != nil {
			return domain.StorePath{}, err
		}
		outs, err := r.query(ctx, drv)
		if err != nil {
			return domain.StorePath{}, err
		}
		return r.bound(drv, outs, v.Output)
	default:
		return domain.StorePath{}, zerr.Wrap(domain.ErrInvalidDerivedPath, "unknown derived path")
	}
}

// ResolveBestEffort resolves p as far as the built outputs allow. When some
// output on the chain is not built yet, or names a recipe whose outputs are
// not registered yet, p is returned unchanged. Every other failure is
// reported as in ResolveStrict.
func (r *Resolver) ResolveBestEffort(ctx context.Context, p domain.SingleDerivedPath) (domain.SingleDerivedPath, error) {
	resolved, err := r.ResolveStrict(ctx, p)
	if pending(err) {
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	return domain.SingleDerivedPathOpaque{Path: resolved}, nil
}

// ResolveDerivedPath resolves dp strictly. For "*" every declared output must be built.
func (r *Resolver) ResolveDerivedPath(ctx context.Context, dp domain.DerivedPath) (domain.BuiltPath, error) {
	switch v := dp.(type) {
	case domain.DerivedPathOpaque:
		return domain.BuiltPathOpaque{Path: v.Path}, nil
	case domain.DerivedPathBuilt:
		drv, err := r.ResolveStrict(ctx, v.DrvPath)
		if err != nil {
			return nil, err
		}
		outs, err := r.query(ctx, drv)
		if err != nil {
			return nil, err
		}

		names := v.Outputs.Names.Sorted()
		if v.Outputs.All {
			names = slices.Sorted(maps.Keys(outs))
		}
		built := domain.BuiltPathBuilt{DrvPath: drv, Outputs: make(map[string]domain.StorePath, len(names))}
		for _, name := range names {
			p, err := r.bound(drv, outs, name)
			if err != nil {
				return nil, err
			}
			built.Outputs[name] = p
		}
		return built, nil
	default:
		return nil, zerr.Wrap(domain.ErrInvalidDerivedPath, "unknown derived path")
	}
}

// ResolveDerivedPathBestEffort is ResolveDerivedPath where an unbuilt output
// or an unregistered recipe yields ok == false instead of an error.
func (r *Resolver) ResolveDerivedPathBestEffort(ctx context.Context, dp domain.DerivedPath) (bp domain.BuiltPath, ok bool, err error) {
	bp, err = r.ResolveDerivedPath(ctx, dp)
	if pending(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return bp, true, nil
}

// ResolveDerivation replaces every input recipe of drv by the paths of the
// outputs it uses. Those paths join the input sources, and the downstream
// placeholders standing for them are rewritten in the builder, the arguments
// and the environment.
func (r *Resolver) ResolveDerivation(ctx context.Context, drv *domain.Derivation) (*domain.BasicDerivation, error) {
	resolved := drv.BasicDerivation.Clone()
	var rewrites []string

	for _, input := range slices.SortedFunc(maps.Keys(drv.InputDrvs), domain.StorePath.Compare) {
		for _, name := range drv.InputDrvs[input].Sorted() {
			p, err := r.ResolveStrict(ctx, domain.SingleDerivedPathBuilt{
				DrvPath: domain.SingleDerivedPathOpaque{Path: input},
				Output:  name,
			})
			if err != nil {
				return nil, zerr.With(err, "recipe", drv.Name)
			}
			resolved.InputSrcs[p] = struct{}{}
			rewrites = append(rewrites, domain.DownstreamPlaceholder(input, name), r.dir.Print(p))
		}
	}

	if len(rewrites) > 0 {
		rep := strings.NewReplacer(rewrites...)
		resolved.Builder = rep.Replace(resolved.Builder)
		for i, a := range resolved.Args {
			resolved.Args[i] = rep.Replace(a)
		}
		env := make(map[string]string, len(resolved.Env))
		for k, v := range resolved.Env {
			env[rep.Replace(k)] = rep.Replace(v)
		}
		resolved.Env = env
	}
	return &resolved, nil
}

// pending reports whether err only means the chain cannot be resolved yet.
func pending(err error) bool {
	return errors.Is(err, domain.ErrOutputNotBuilt) || errors.Is(err, domain.ErrUnknownDerivation)
}

func (r *Resolver) query(ctx context.Context, drv domain.StorePath) (map[string]*domain.StorePath, error) {
	if !drv.IsDerivation() {
		return nil, zerr.With(zerr.Wrap(domain.ErrNotADerivation, "outputs requested from a non-derivation"), "path", drv.String())
	}
	outs, err := r.outputs.QueryOutputs(ctx, drv)
	if err != nil {
		return nil, zerr.With(err, "drv_path", drv.String())
	}
	return outs, nil
}

func (r *Resolver) bound(drv domain.StorePath, outs map[string]*domain.StorePath, name string) (domain.StorePath, error) {
	p, declared := outs[name]
	if !declared {
		return domain.StorePath{}, zerr.With(zerr.With(zerr.Wrap(domain.ErrNoSuchOutput, "resolve output"), "drv_path", drv.String()), "output", name)
	}
	if p == nil {
		return domain.StorePath{}, zerr.With(zerr.With(zerr.Wrap(domain.ErrOutputNotBuilt, "resolve output"), "drv_path", drv.String()), "output", name)
	}
	return *p, nil
}
