package domain

import (
	"maps"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// OutputNameSet is a set of output names.
type OutputNameSet map[string]struct{}

// NewOutputNameSet returns a set holding names.
func NewOutputNameSet(names ...string) OutputNameSet {
	s := make(OutputNameSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Sorted returns the names in ascending order.
func (s OutputNameSet) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// Has reports whether name is in the set.
func (s OutputNameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// StorePathSet is a set of store paths.
type StorePathSet map[StorePath]struct{}

// NewStorePathSet returns a set holding paths.
func NewStorePathSet(paths ...StorePath) StorePathSet {
	s := make(StorePathSet, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}
	return s
}

// Sorted returns the paths ordered by base name.
func (s StorePathSet) Sorted() []StorePath {
	return slices.SortedFunc(maps.Keys(s), StorePath.Compare)
}

// DerivationOutput is one of InputAddressedOutput, CAFixedOutput,
// CAFloatingOutput or DeferredOutput.
type DerivationOutput interface {
	isDerivationOutput()
}

// InputAddressedOutput has a path computed from the recipe graph.
type InputAddressedOutput struct {
	Path StorePath
}

// CAFixedOutput has a content address declared up front.
type CAFixedOutput struct {
	CA ContentAddress
}

// CAFloatingOutput is content addressed, but the digest is only known after the build.
type CAFloatingOutput struct {
	Method ContentAddressMethod
	Algo   HashAlgorithm
}

// DeferredOutput is input addressed, but its path depends on a floating input.
type DeferredOutput struct{}

func (InputAddressedOutput) isDerivationOutput() {}
func (CAFixedOutput) isDerivationOutput()        {}
func (CAFloatingOutput) isDerivationOutput()     {}
func (DeferredOutput) isDerivationOutput()       {}

// Path returns the fixed path of output outputName of the recipe drvName.
func (o CAFixedOutput) Path(dir StoreDir, drvName, outputName string) (StorePath, error) {
	return dir.MakeFixedOutputPath(OutputPathName(drvName, outputName), ContentAddressWithReferences{ContentAddress: o.CA})
}

// OutputPath returns the statically known path of an output, if it has one.
func OutputPath(dir StoreDir, out DerivationOutput, drvName, outputName string) (StorePath, bool, error) {
	switch o := out.(type) {
	case InputAddressedOutput:
		return o.Path, true, nil
	case CAFixedOutput:
		p, err := o.Path(dir, drvName, outputName)
		if err != nil {
			return StorePath{}, false, err
		}
		return p, true, nil
	default:
		return StorePath{}, false, nil
	}
}

// BasicDerivation is a recipe without input recipes.
type BasicDerivation struct {
	// Name is the recipe name without the ".drv" suffix. It is not part of the text form.
	Name      string
	Outputs   map[string]DerivationOutput
	InputSrcs StorePathSet
	Platform  string
	Builder   string
	Args      []string
	Env       map[string]string
}

// Derivation is a recipe: a BasicDerivation plus the outputs it needs from other recipes.
type Derivation struct {
	BasicDerivation
	InputDrvs map[StorePath]OutputNameSet
}

// NewDerivation returns a derivation with every map initialised.
func NewDerivation(name, platform, builder string) *Derivation {
	return &Derivation{
		BasicDerivation: BasicDerivation{
			Name:      name,
			Outputs:   make(map[string]DerivationOutput),
			InputSrcs: make(StorePathSet),
			Platform:  platform,
			Builder:   builder,
			Env:       make(map[string]string),
		},
		InputDrvs: make(map[StorePath]OutputNameSet),
	}
}

// OutputNames returns the declared output names in ascending order.
func (d *BasicDerivation) OutputNames() []string {
	return slices.Sorted(maps.Keys(d.Outputs))
}

// IsFixedOutput reports whether the recipe has exactly one output, named "out",
// whose content address is declared up front.
func (d *BasicDerivation) IsFixedOutput() bool {
	if len(d.Outputs) != 1 {
		return false
	}
	_, ok := d.Outputs[DefaultOutputName].(CAFixedOutput)
	return ok
}

// Clone returns a deep copy of d.
func (d *BasicDerivation) Clone() BasicDerivation {
	c := *d
	c.Outputs = maps.Clone(d.Outputs)
	c.InputSrcs = maps.Clone(d.InputSrcs)
	c.Args = slices.Clone(d.Args)
	c.Env = maps.Clone(d.Env)
	if c.Outputs == nil {
		c.Outputs = make(map[string]DerivationOutput)
	}
	if c.InputSrcs == nil {
		c.InputSrcs = make(StorePathSet)
	}
	if c.Env == nil {
		c.Env = make(map[string]string)
	}
	return c
}

// Clone returns a deep copy of d.
func (d *Derivation) Clone() *Derivation {
	c := &Derivation{
		BasicDerivation: d.BasicDerivation.Clone(),
		InputDrvs:       make(map[StorePath]OutputNameSet, len(d.InputDrvs)),
	}
	for p, names := range d.InputDrvs {
		c.InputDrvs[p] = maps.Clone(names)
	}
	return c
}

// References returns the reference set of the recipe text: input sources plus input recipes.
func (d *Derivation) References() []StorePath {
	refs := maps.Clone(d.InputSrcs)
	if refs == nil {
		refs = make(StorePathSet)
	}
	for p := range d.InputDrvs {
		refs[p] = struct{}{}
	}
	return refs.Sorted()
}

// Validate checks the structural rules every recipe must satisfy.
func (d *Derivation) Validate() error {
	if err := ValidateName(d.Name + DerivationExt); err != nil {
		return zerr.With(zerr.Wrap(ErrInvalidDerivation, err.Error()), "name", d.Name)
	}
	if len(d.Outputs) == 0 {
		return zerr.With(zerr.Wrap(ErrInvalidDerivation, "no outputs"), "name", d.Name)
	}
	for name, out := range d.Outputs {
		if _, fixed := out.(CAFixedOutput); fixed && (len(d.Outputs) != 1 || name != DefaultOutputName) {
			return zerr.With(zerr.Wrap(ErrInvalidDerivation, "a fixed output must be the only output and named out"), "output", name)
		}
		if name == "" || strings.ContainsAny(name, "!,*/") {
			return zerr.With(zerr.Wrap(ErrInvalidDerivation, "illegal output name"), "output", name)
		}
		if err := ValidateName(OutputPathName(d.Name, name)); err != nil {
			return zerr.With(zerr.Wrap(ErrInvalidDerivation, err.Error()), "output", name)
		}
	}
	for p, names := range d.InputDrvs {
		if !p.IsDerivation() {
			return zerr.With(zerr.Wrap(ErrNotADerivation, "input recipe is not a .drv path"), "path", p.String())
		}
		if len(names) == 0 {
			return zerr.With(zerr.Wrap(ErrInvalidDerivation, "input recipe requests no outputs"), "path", p.String())
		}
	}
	return nil
}

// DerivationPath computes the store path of the recipe text of d.
func DerivationPath(dir StoreDir, d *Derivation) (StorePath, error) {
	text, err := d.Unparse(dir, false)
	if err != nil {
		return StorePath{}, err
	}
	return dir.ComputeStorePathForText(d.Name+DerivationExt, text, d.References())
}
