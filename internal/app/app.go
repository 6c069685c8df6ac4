// Package app implements the application layer for cask.
package app

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/cask/internal/engine/modulo"
	"go.trai.ch/cask/internal/engine/resolver"
	"go.trai.ch/cask/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	cfg       *domain.Config
	store     ports.RecipeStore
	hasher    *modulo.Hasher
	scheduler *scheduler.Scheduler
	resolver  *resolver.Resolver
	registry  ports.OutputRegistry
	ingestor  ports.Ingestor
	logger    ports.Logger
}

// New creates a new App instance.
func New(
	cfg *domain.Config,
	store ports.RecipeStore,
	hasher *modulo.Hasher,
	sched *scheduler.Scheduler,
	res *resolver.Resolver,
	registry ports.OutputRegistry,
	ingestor ports.Ingestor,
	logger ports.Logger,
) *App {
	return &App{
		cfg:       cfg,
		store:     store,
		hasher:    hasher,
		scheduler: sched,
		resolver:  res,
		registry:  registry,
		ingestor:  ingestor,
		logger:    logger,
	}
}

// StoreDir returns the store directory every path is printed in.
func (a *App) StoreDir() domain.StoreDir {
	return a.store.StoreDir()
}

// StorePathRequest describes a content-addressed object by its address.
type StorePathRequest struct {
	ContentAddress string
	Name           string
	References     []string
	Self           bool
}

// StorePath computes the store path of a content-addressed object.
func (a *App) StorePath(_ context.Context, req StorePathRequest) (string, error) {
	ca, err := domain.ParseContentAddress(req.ContentAddress)
	if err != nil {
		return "", err
	}
	refs, err := a.parsePaths(req.References)
	if err != nil {
		return "", err
	}
	p, err := a.StoreDir().MakeFixedOutputPath(req.Name, domain.ContentAddressWithReferences{
		ContentAddress: ca,
		References:     domain.StoreReferences{Others: refs, Self: req.Self},
	})
	if err != nil {
		return "", err
	}
	return a.StoreDir().Print(p), nil
}

// IngestRequest describes a filesystem object to address.
type IngestRequest struct {
	Path string
	// Name defaults to the sanitized base name of Path.
	Name   string
	Method string
	Algo   string
	// SelfHashPart is the hash part the object was built under. When set, its
	// occurrences are hashed modulo and reported as a self reference.
	SelfHashPart string
	// Candidates are the store paths the object may reference.
	Candidates []string
}

// IngestResult is the address and path of an ingested object.
type IngestResult struct {
	ContentAddress string
	Path           string
	References     []string
	Self           bool
}

// Ingest serializes a filesystem object, hashes it and computes its store path.
func (a *App) Ingest(ctx context.Context, req IngestRequest) (IngestResult, error) {
	method, err := domain.ParseContentAddressMethod(req.Method)
	if err != nil {
		return IngestResult{}, err
	}
	algo, err := domain.ParseHashAlgorithm(req.Algo)
	if err != nil {
		return IngestResult{}, err
	}
	name := req.Name
	if name == "" {
		name = domain.SanitizeName(filepath.Base(req.Path))
	}
	candidates, err := a.parsePaths(req.Candidates)
	if err != nil {
		return IngestResult{}, err
	}

	var (
		ca   domain.ContentAddress
		self domain.StorePath
	)
	if req.SelfHashPart != "" {
		self, err = domain.ParseStorePathBase(req.SelfHashPart + "-" + name)
		if err != nil {
			return IngestResult{}, err
		}
		candidates = append(candidates, self)
		ca, err = a.ingestor.IngestModulo(ctx, req.Path, method, algo, req.SelfHashPart)
	} else {
		ca, err = a.ingestor.Ingest(ctx, req.Path, method, algo)
	}
	if err != nil {
		return IngestResult{}, err
	}

	var found []domain.StorePath
	if len(candidates) > 0 {
		found, err = a.ingestor.ScanReferences(ctx, req.Path, candidates)
		if err != nil {
			return IngestResult{}, err
		}
	}
	refs := domain.SplitSelfReference(self, found)

	dir := a.StoreDir()
	p, err := dir.MakeFixedOutputPath(name, domain.ContentAddressWithReferences{ContentAddress: ca, References: refs})
	if err != nil {
		return IngestResult{}, zerr.With(err, "path", req.Path)
	}

	res := IngestResult{
		ContentAddress: ca.String(),
		Path:           dir.Print(p),
		References:     make([]string, 0, len(refs.Others)),
		Self:           refs.Self,
	}
	for _, r := range refs.SortedOthers() {
		res.References = append(res.References, dir.Print(r))
	}
	return res, nil
}

// AddRecipe parses a recipe in its JSON form, fills in its output paths,
// stores it and declares its outputs. It returns the recipe path.
func (a *App) AddRecipe(ctx context.Context, data []byte) (string, error) {
	dir := a.StoreDir()
	drv, err := domain.UnmarshalDerivationJSON(dir, data)
	if err != nil {
		return "", err
	}
	if err := a.hasher.FillOutputPaths(ctx, drv); err != nil {
		return "", zerr.With(err, "name", drv.Name)
	}
	p, err := a.store.WriteRecipe(ctx, drv)
	if err != nil {
		return "", err
	}
	if err := a.registry.Declare(ctx, p, drv.OutputNames()); err != nil {
		return "", err
	}
	a.logger.Info("added recipe " + dir.Print(p))
	return dir.Print(p), nil
}

// ShowRecipe returns the JSON form of a stored recipe.
func (a *App) ShowRecipe(ctx context.Context, drvPath string) ([]byte, error) {
	p, drv, err := a.readRecipe(ctx, drvPath)
	if err != nil {
		return nil, err
	}
	data, err := domain.MarshalDerivationJSON(a.StoreDir(), drv)
	if err != nil {
		return nil, zerr.With(err, "drv_path", a.StoreDir().Print(p))
	}
	return data, nil
}

// ResolveRecipe renders the recipe at drvPath with every input recipe replaced
// by the built paths of the outputs it uses. Every such output must be built.
func (a *App) ResolveRecipe(ctx context.Context, drvPath string) ([]byte, error) {
	p, drv, err := a.readRecipe(ctx, drvPath)
	if err != nil {
		return nil, err
	}
	basic, err := a.resolver.ResolveDerivation(ctx, drv)
	if err != nil {
		return nil, zerr.With(err, "drv_path", a.StoreDir().Print(p))
	}
	resolved := &domain.Derivation{
		BasicDerivation: *basic,
		InputDrvs:       make(map[domain.StorePath]domain.OutputNameSet),
	}
	return domain.MarshalDerivationJSON(a.StoreDir(), resolved)
}

// OutputHash is the modulo hash of one output.
type OutputHash struct {
	Output string
	Hash   string
}

// RecipeHash is the modulo hash of one recipe.
type RecipeHash struct {
	DrvPath string
	Kind    string
	Outputs []OutputHash
}

// HashRecipe returns the modulo hash of the recipes at drvPaths. With closure
// set, every recipe they depend on is hashed and reported as well.
func (a *App) HashRecipe(ctx context.Context, drvPaths []string, closure bool) ([]RecipeHash, error) {
	roots, err := a.parsePaths(drvPaths)
	if err != nil {
		return nil, err
	}

	hashes := make(map[domain.StorePath]modulo.DrvHash, len(roots))
	if closure {
		hashes, err = a.scheduler.HashClosure(ctx, roots, a.cfg.Workers(), nil)
		if err != nil {
			return nil, err
		}
	} else {
		for _, p := range roots {
			h, err := a.hasher.PathDerivationModulo(ctx, p)
			if err != nil {
				return nil, err
			}
			hashes[p] = h
		}
	}

	paths := make([]domain.StorePath, 0, len(hashes))
	for p := range hashes {
		paths = append(paths, p)
	}
	slices.SortFunc(paths, domain.StorePath.Compare)

	out := make([]RecipeHash, 0, len(paths))
	for _, p := range paths {
		h := hashes[p]
		rh := RecipeHash{DrvPath: a.StoreDir().Print(p), Kind: h.Kind.String()}
		for _, name := range slices.Sorted(maps.Keys(h.Hashes)) {
			rh.Outputs = append(rh.Outputs, OutputHash{Output: name, Hash: domain.FormatHash(h.Hashes[name], domain.Base32)})
		}
		out = append(out, rh)
	}
	return out, nil
}

// OutputPath is one output of a recipe. Path is empty when it is not known.
type OutputPath struct {
	Output string
	Path   string
}

// RecipePaths returns the statically known output paths of a stored recipe.
func (a *App) RecipePaths(ctx context.Context, drvPath string) ([]OutputPath, error) {
	_, drv, err := a.readRecipe(ctx, drvPath)
	if err != nil {
		return nil, err
	}
	dir := a.StoreDir()
	out := make([]OutputPath, 0, len(drv.Outputs))
	for _, name := range drv.OutputNames() {
		p, ok, err := domain.OutputPath(dir, drv.Outputs[name], drv.Name, name)
		if err != nil {
			return nil, zerr.With(err, "output", name)
		}
		op := OutputPath{Output: name}
		if ok {
			op.Path = dir.Print(p)
		}
		out = append(out, op)
	}
	return out, nil
}

// RegisterOutput records that output of drvPath was built at path.
func (a *App) RegisterOutput(ctx context.Context, drvPath, output, path string) error {
	dir := a.StoreDir()
	drv, err := dir.ParseStorePath(drvPath)
	if err != nil {
		return err
	}
	p, err := dir.ParseStorePath(path)
	if err != nil {
		return err
	}
	if err := a.registry.Register(ctx, drv, output, p); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("registered %s!%s", dir.Print(drv), output))
	return nil
}

// QueryOutputs returns every declared output of drvPath. Unbuilt outputs have an empty Path.
func (a *App) QueryOutputs(ctx context.Context, drvPath string) ([]OutputPath, error) {
	dir := a.StoreDir()
	drv, err := dir.ParseStorePath(drvPath)
	if err != nil {
		return nil, err
	}
	outs, err := a.registry.QueryOutputs(ctx, drv)
	if err != nil {
		return nil, err
	}
	res := make([]OutputPath, 0, len(outs))
	for _, name := range slices.Sorted(maps.Keys(outs)) {
		op := OutputPath{Output: name}
		if p := outs[name]; p != nil {
			op.Path = dir.Print(*p)
		}
		res = append(res, op)
	}
	return res, nil
}

// Resolve turns a derived path into the store paths it denotes. In
// best-effort mode a reference with unbuilt outputs is returned unchanged.
func (a *App) Resolve(ctx context.Context, ref string, bestEffort bool) ([]string, error) {
	dir := a.StoreDir()
	dp, err := domain.ParseDerivedPath(dir, ref)
	if err != nil {
		return nil, err
	}

	var bp domain.BuiltPath
	if bestEffort {
		var ok bool
		bp, ok, err = a.resolver.ResolveDerivedPathBestEffort(ctx, dp)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []string{dp.Render(dir)}, nil
		}
	} else {
		bp, err = a.resolver.ResolveDerivedPath(ctx, dp)
		if err != nil {
			return nil, err
		}
	}

	paths := bp.Paths()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, dir.Print(p))
	}
	return out, nil
}

// Missing lists every output needed to build drvPaths that is not built yet:
// all outputs of the roots plus the outputs each recipe in their closure
// takes from its inputs.
func (a *App) Missing(ctx context.Context, drvPaths []string) ([]string, error) {
	roots, err := a.parsePaths(drvPaths)
	if err != nil {
		return nil, err
	}
	g, err := a.scheduler.LoadClosure(ctx, roots, a.cfg.Workers())
	if err != nil {
		return nil, err
	}

	wanted := domain.NewDerivedPathMap[bool]()
	for _, p := range roots {
		drv, _ := g.Recipe(p)
		for _, name := range drv.OutputNames() {
			wanted.EnsureSlot(builtOutput(p, name)).Value = true
		}
	}
	for _, drv := range g.Walk() {
		for input, names := range drv.InputDrvs {
			for name := range names {
				wanted.EnsureSlot(builtOutput(input, name)).Value = true
			}
		}
	}

	dir := a.StoreDir()
	var (
		missing []string
		walkErr error
	)
	wanted.Walk(func(k domain.SingleDerivedPath, n *domain.DerivedPathMapNode[bool]) bool {
		if !n.Value {
			return true
		}
		resolved, err := a.resolver.ResolveBestEffort(ctx, k)
		if err != nil {
			walkErr = err
			return false
		}
		if _, built := resolved.(domain.SingleDerivedPathOpaque); !built {
			missing = append(missing, k.Render(dir))
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return missing, nil
}

func builtOutput(drv domain.StorePath, output string) domain.SingleDerivedPath {
	return domain.SingleDerivedPathBuilt{DrvPath: domain.SingleDerivedPathOpaque{Path: drv}, Output: output}
}

func (a *App) readRecipe(ctx context.Context, drvPath string) (domain.StorePath, *domain.Derivation, error) {
	p, err := a.StoreDir().ParseStorePath(drvPath)
	if err != nil {
		return domain.StorePath{}, nil, err
	}
	if !p.IsDerivation() {
		return domain.StorePath{}, nil, zerr.With(zerr.Wrap(domain.ErrNotADerivation, "not a recipe path"), "drv_path", drvPath)
	}
	drv, err := a.store.ReadRecipe(ctx, p)
	if err != nil {
		return domain.StorePath{}, nil, err
	}
	return p, drv, nil
}

func (a *App) parsePaths(in []string) ([]domain.StorePath, error) {
	out := make([]domain.StorePath, 0, len(in))
	for _, s := range in {
		p, err := a.StoreDir().ParseStorePath(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
