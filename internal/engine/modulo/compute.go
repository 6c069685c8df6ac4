package modulo

import (
	"maps"
	"slices"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/zerr"
)

// LookupFunc returns the memoized modulo hash of an input recipe.
type LookupFunc func(drvPath domain.StorePath) (DrvHash, bool)

// Compute returns the modulo hash of drv given the modulo hashes of its input
// recipes. A fixed-output recipe hashes to its declared content address and
// output path, so changes to how it is fetched never reach its dependents.
// Every other recipe hashes its text with each input recipe path replaced by
// the base-16 hash of the requested outputs.
func Compute(dir domain.StoreDir, drv *domain.Derivation, mask bool, lookup LookupFunc) (DrvHash, error) {
	if drv.IsFixedOutput() {
		return computeFixed(dir, drv)
	}

	kind := Regular
	for _, out := range drv.Outputs {
		if _, ok := out.(domain.CAFloatingOutput); ok {
			kind = Deferred
		}
	}

	inputs := make(map[string]domain.OutputNameSet, len(drv.InputDrvs))
	for _, drvPath := range slices.SortedFunc(maps.Keys(drv.InputDrvs), domain.StorePath.Compare) {
		res, ok := lookup(drvPath)
		if !ok {
			return DrvHash{}, zerr.With(
				zerr.With(zerr.Wrap(domain.ErrRecipeNotFound, "input recipe not hashed"), "drv_path", drvPath.String()),
				"required_by", drv.Name,
			)
		}
		if res.Kind == Deferred {
			kind = Deferred
		}
		for _, name := range drv.InputDrvs[drvPath].Sorted() {
			h, ok := res.Hash(name)
			if !ok {
				return DrvHash{}, zerr.With(
					zerr.With(zerr.Wrap(domain.ErrNoSuchOutput, "input recipe has no such output"), "drv_path", drvPath.String()),
					"output", name,
				)
			}
			key := domain.FormatDigest(h, domain.Base16)
			if inputs[key] == nil {
				inputs[key] = make(domain.OutputNameSet)
			}
			inputs[key][name] = struct{}{}
		}
	}

	text, err := drv.UnparseWithInputs(dir, mask, inputs)
	if err != nil {
		return DrvHash{}, err
	}
	h := domain.HashString(text)

	hashes := make(map[string]domain.Hash, len(drv.Outputs))
	for name := range drv.Outputs {
		hashes[name] = h
	}
	return DrvHash{Hashes: hashes, Kind: kind}, nil
}

func computeFixed(dir domain.StoreDir, drv *domain.Derivation) (DrvHash, error) {
	out, _ := drv.Outputs[domain.DefaultOutputName].(domain.CAFixedOutput)
	p, err := out.Path(dir, drv.Name, domain.DefaultOutputName)
	if err != nil {
		return DrvHash{}, err
	}
	payload := "fixed:out:" + out.CA.PrintMethodAlgo() + ":" +
		domain.FormatDigest(out.CA.Hash(), domain.Base16) + ":" + dir.Print(p)
	return DrvHash{
		Hashes: map[string]domain.Hash{domain.DefaultOutputName: domain.HashString(payload)},
		Kind:   Regular,
	}, nil
}
