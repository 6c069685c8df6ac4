package modulo

import (
	"context"

	"go.trai.ch/cask/internal/core/domain"
)

// FillOutputPaths completes a freshly written recipe before it is stored:
// fixed outputs get their path in the environment, floating outputs get a
// hash placeholder, and input-addressed outputs get the path derived from the
// masked modulo hash. When an input is deferred the input-addressed outputs
// stay deferred. drv is modified in place.
func (h *Hasher) FillOutputPaths(ctx context.Context, drv *domain.Derivation) error {
	dir := h.store.StoreDir()
	if drv.Env == nil {
		drv.Env = make(map[string]string)
	}
	var pending []string
	for _, name := range drv.OutputNames() {
		switch out := drv.Outputs[name].(type) {
		case domain.CAFixedOutput:
			p, err := out.Path(dir, drv.Name, name)
			if err != nil {
				return err
			}
			drv.Env[name] = dir.Print(p)
		case domain.CAFloatingOutput:
			drv.Env[name] = domain.HashPlaceholder(name)
		default:
			drv.Outputs[name] = domain.DeferredOutput{}
			drv.Env[name] = ""
			pending = append(pending, name)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	mh, err := h.HashDerivationModulo(ctx, drv, true)
	if err != nil {
		return err
	}
	if mh.Kind == Deferred {
		return nil
	}
	for _, name := range pending {
		hash, _ := mh.Hash(name)
		p, err := dir.MakeOutputPath(name, hash, drv.Name)
		if err != nil {
			return err
		}
		drv.Outputs[name] = domain.InputAddressedOutput{Path: p}
		drv.Env[name] = dir.Print(p)
	}
	return nil
}
