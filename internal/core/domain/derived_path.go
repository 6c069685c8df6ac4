package domain

import (
	"maps"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

const (
	derivedPathSep  = "!"
	allOutputsToken = "*"
)

// SingleDerivedPath is either an opaque store path or one named output of a
// recipe that is itself denoted by a SingleDerivedPath.
type SingleDerivedPath interface {
	// Render returns the textual form, e.g. "/nix/store/…-a.drv!out".
	Render(dir StoreDir) string
	isSingleDerivedPath()
}

// SingleDerivedPathOpaque is a concrete, already known path.
type SingleDerivedPathOpaque struct {
	Path StorePath
}

// SingleDerivedPathBuilt is output Output of the recipe DrvPath denotes.
type SingleDerivedPathBuilt struct {
	DrvPath SingleDerivedPath
	Output  string
}

func (SingleDerivedPathOpaque) isSingleDerivedPath() {}
func (SingleDerivedPathBuilt) isSingleDerivedPath()  {}

// Render implements SingleDerivedPath.
func (o SingleDerivedPathOpaque) Render(dir StoreDir) string { return dir.Print(o.Path) }

// Render implements SingleDerivedPath.
func (b SingleDerivedPathBuilt) Render(dir StoreDir) string {
	return b.DrvPath.Render(dir) + derivedPathSep + b.Output
}

// BaseStorePath returns the innermost opaque path of a chain.
func BaseStorePath(p SingleDerivedPath) StorePath {
	for {
		switch v := p.(type) {
		case SingleDerivedPathOpaque:
			return v.Path
		case SingleDerivedPathBuilt:
			p = v.DrvPath
		default:
			return StorePath{}
		}
	}
}

// OutputsSpec selects either every output of a recipe or a set of names.
type OutputsSpec struct {
	All   bool
	Names OutputNameSet
}

// AllOutputs selects every declared output.
func AllOutputs() OutputsSpec { return OutputsSpec{All: true} }

// OutputNames selects the given outputs.
func OutputNames(names ...string) OutputsSpec {
	return OutputsSpec{Names: NewOutputNameSet(names...)}
}

// String renders "*" or the sorted, comma separated names.
func (s OutputsSpec) String() string {
	if s.All {
		return allOutputsToken
	}
	return strings.Join(s.Names.Sorted(), ",")
}

// Contains reports whether name is selected.
func (s OutputsSpec) Contains(name string) bool {
	return s.All || s.Names.Has(name)
}

// Union merges two selections.
func (s OutputsSpec) Union(other OutputsSpec) OutputsSpec {
	if s.All || other.All {
		return AllOutputs()
	}
	names := maps.Clone(s.Names)
	if names == nil {
		names = make(OutputNameSet)
	}
	maps.Copy(names, other.Names)
	return OutputsSpec{Names: names}
}

// Equal reports structural equality.
func (s OutputsSpec) Equal(other OutputsSpec) bool {
	if s.All || other.All {
		return s.All == other.All
	}
	return slices.Equal(s.Names.Sorted(), other.Names.Sorted())
}

// ParseOutputsSpec parses "*" or "a,b,c".
func ParseOutputsSpec(s string) (OutputsSpec, error) {
	if s == allOutputsToken {
		return AllOutputs(), nil
	}
	names := strings.Split(s, ",")
	for _, n := range names {
		if err := validateOutputName(n); err != nil {
			return OutputsSpec{}, zerr.With(err, "outputs", s)
		}
	}
	return OutputNames(names...), nil
}

func validateOutputName(n string) error {
	if n == "" || n == allOutputsToken || strings.ContainsAny(n, "!,/") {
		return zerr.With(zerr.Wrap(ErrInvalidDerivedPath, "illegal output name"), "output", n)
	}
	return nil
}

// DerivedPath is an opaque store path or a set of outputs of a recipe.
type DerivedPath interface {
	Render(dir StoreDir) string
	isDerivedPath()
}

// DerivedPathOpaque is a concrete, already known path.
type DerivedPathOpaque struct {
	Path StorePath
}

// DerivedPathBuilt is the selected outputs of the recipe DrvPath denotes.
type DerivedPathBuilt struct {
	DrvPath SingleDerivedPath
	Outputs OutputsSpec
}

func (DerivedPathOpaque) isDerivedPath() {}
func (DerivedPathBuilt) isDerivedPath()  {}

// Render implements DerivedPath.
func (o DerivedPathOpaque) Render(dir StoreDir) string { return dir.Print(o.Path) }

// Render implements DerivedPath.
func (b DerivedPathBuilt) Render(dir StoreDir) string {
	return b.DrvPath.Render(dir) + derivedPathSep + b.Outputs.String()
}

// ParseSingleDerivedPath parses "<path>" or "<inner>!<output>", splitting at the last '!'.
// The innermost path of a chain must name recipe text.
func ParseSingleDerivedPath(dir StoreDir, s string) (SingleDerivedPath, error) {
	parts := strings.Split(s, derivedPathSep)
	base, err := dir.ParseStorePath(parts[0])
	if err != nil {
		return nil, zerr.With(zerr.Wrap(ErrInvalidDerivedPath, err.Error()), "derived_path", s)
	}

	var out SingleDerivedPath = SingleDerivedPathOpaque{Path: base}
	if len(parts) > 1 && !base.IsDerivation() {
		return nil, zerr.With(zerr.Wrap(ErrInvalidDerivedPath, "outputs requested from a non-derivation path"), "derived_path", s)
	}
	for _, output := range parts[1:] {
		if err := validateOutputName(output); err != nil {
			return nil, zerr.With(err, "derived_path", s)
		}
		out = SingleDerivedPathBuilt{DrvPath: out, Output: output}
	}
	return out, nil
}

// ParseDerivedPath parses "<path>", "<inner>!<names>" or "<inner>!*".
func ParseDerivedPath(dir StoreDir, s string) (DerivedPath, error) {
	i := strings.LastIndex(s, derivedPathSep)
	if i < 0 {
		p, err := dir.ParseStorePath(s)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(ErrInvalidDerivedPath, err.Error()), "derived_path", s)
		}
		return DerivedPathOpaque{Path: p}, nil
	}
	inner, err := ParseSingleDerivedPath(dir, s[:i])
	if err != nil {
		return nil, err
	}
	spec, err := ParseOutputsSpec(s[i+1:])
	if err != nil {
		return nil, zerr.With(err, "derived_path", s)
	}
	if _, ok := inner.(SingleDerivedPathOpaque); ok && !BaseStorePath(inner).IsDerivation() {
		return nil, zerr.With(zerr.Wrap(ErrInvalidDerivedPath, "outputs requested from a non-derivation path"), "derived_path", s)
	}
	return DerivedPathBuilt{DrvPath: inner, Outputs: spec}, nil
}

// BuiltPath is the resolved form of a DerivedPath.
type BuiltPath interface {
	// Paths returns every concrete path the value stands for.
	Paths() []StorePath
	isBuiltPath()
}

// BuiltPathOpaque is a plain store path.
type BuiltPathOpaque struct {
	Path StorePath
}

// BuiltPathBuilt is a recipe together with the concrete paths of the selected outputs.
type BuiltPathBuilt struct {
	DrvPath StorePath
	Outputs map[string]StorePath
}

func (BuiltPathOpaque) isBuiltPath() {}
func (BuiltPathBuilt) isBuiltPath()  {}

// Paths implements BuiltPath.
func (o BuiltPathOpaque) Paths() []StorePath { return []StorePath{o.Path} }

// Paths implements BuiltPath, ordered by output name.
func (b BuiltPathBuilt) Paths() []StorePath {
	out := make([]StorePath, 0, len(b.Outputs))
	for _, name := range slices.Sorted(maps.Keys(b.Outputs)) {
		out = append(out, b.Outputs[name])
	}
	return out
}
