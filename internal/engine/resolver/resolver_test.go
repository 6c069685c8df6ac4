package resolver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports/mocks"
	"go.trai.ch/cask/internal/engine/resolver"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

const storeDir = domain.DefaultStoreDir

func mustParse(t *testing.T, base string) domain.StorePath {
	t.Helper()
	p, err := domain.ParseStorePathBase(base)
	require.NoError(t, err)
	return p
}

type fixture struct {
	libDrv, libOut, genDrv, genBin domain.StorePath
	stageDrv                       domain.StorePath
	provider                       *mocks.MockOutputMapProvider
	resolver                       *resolver.Resolver
}

// newFixture registers libfoo.drv (out built, dev not built) and gen.drv, whose
// "out" output is itself a recipe (gen-out.drv) with a built "bin" output.
// stage.drv has built its "out" recipe, which is not registered yet.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		libDrv:   mustParse(t, "gbb2fhy0jpixfkw810ay3qzgm3j4aind-libfoo.drv"),
		libOut:   mustParse(t, "hmkivscqbw66kp5fkq0sgm80s9gvzd9z-libfoo"),
		genDrv:   mustParse(t, "5824psh4k4mlx1hxqawapbidy2g3l2dc-gen.drv"),
		genBin:   mustParse(t, "hiw1ny7x7janmbshsvql2k6kx6wyjqxb-app"),
		stageDrv: mustParse(t, "0r5g6wgqzmcj7jh16ai6pbqz4yj0zqj6-stage.drv"),
		provider: mocks.NewMockOutputMapProvider(ctrl),
	}
	genOut := mustParse(t, "x8w05bc8gw6nhdf9gs7p64vc9gd9w96f-gen-out.drv")
	stageOut := mustParse(t, "15snahvclpkrn2lbf8d22gpv7hxlmpsa-stage-out.drv")

	outputs := map[domain.StorePath]map[string]*domain.StorePath{
		f.libDrv:   {"out": &f.libOut, "dev": nil},
		f.genDrv:   {"out": &genOut},
		genOut:     {"bin": &f.genBin},
		f.stageDrv: {"out": &stageOut},
	}
	f.provider.EXPECT().QueryOutputs(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p domain.StorePath) (map[string]*domain.StorePath, error) {
			outs, ok := outputs[p]
			if !ok {
				return nil, zerr.With(zerr.Wrap(domain.ErrUnknownDerivation, "no registered outputs"), "drv_path", p.String())
			}
			return outs, nil
		}).AnyTimes()

	f.resolver = resolver.NewResolver(f.provider, storeDir)
	return f
}

func built(drv domain.SingleDerivedPath, outputs ...string) domain.SingleDerivedPath {
	for _, o := range outputs {
		drv = domain.SingleDerivedPathBuilt{DrvPath: drv, Output: o}
	}
	return drv
}

func opaque(p domain.StorePath) domain.SingleDerivedPath {
	return domain.SingleDerivedPathOpaque{Path: p}
}

func TestResolveStrict(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	got, err := f.resolver.ResolveStrict(ctx, opaque(f.libOut))
	require.NoError(t, err)
	assert.Equal(t, f.libOut, got)

	got, err = f.resolver.ResolveStrict(ctx, built(opaque(f.libDrv), "out"))
	require.NoError(t, err)
	assert.Equal(t, f.libOut, got)

	got, err = f.resolver.ResolveStrict(ctx, built(opaque(f.genDrv), "out", "bin"))
	require.NoError(t, err)
	assert.Equal(t, f.genBin, got)
}

func TestResolveStrict_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	unknown := mustParse(t, "3l48w6inh026dicjrjxqx40nznqc9n7h-unknown.drv")

	tests := []struct {
		name   string
		path   domain.SingleDerivedPath
		want   error
		output string
	}{
		{name: "unbuilt", path: built(opaque(f.libDrv), "dev"), want: domain.ErrOutputNotBuilt, output: "dev"},
		{name: "undeclared", path: built(opaque(f.libDrv), "doc"), want: domain.ErrNoSuchOutput, output: "doc"},
		{name: "unknown recipe", path: built(opaque(unknown), "out"), want: domain.ErrUnknownDerivation},
		{name: "output of a non-recipe", path: built(opaque(f.libDrv), "out", "bin"), want: domain.ErrNotADerivation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := f.resolver.ResolveStrict(ctx, tt.path)
			require.ErrorIs(t, err, tt.want)
			if tt.output != "" {
				zErr, ok := err.(*zerr.Error)
				require.True(t, ok, "expected *zerr.Error, got %T", err)
				assert.Equal(t, tt.output, zErr.Metadata()["output"])
				assert.Equal(t, f.libDrv.String(), zErr.Metadata()["drv_path"])
			}
		})
	}
}

func TestResolveBestEffort(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	unbuilt := built(opaque(f.libDrv), "dev")
	got, err := f.resolver.ResolveBestEffort(ctx, unbuilt)
	require.NoError(t, err)
	assert.Equal(t, unbuilt, got, "unbuilt outputs are left unchanged")

	nested := built(opaque(f.genDrv), "out", "bin")
	got, err = f.resolver.ResolveBestEffort(ctx, nested)
	require.NoError(t, err)
	assert.Equal(t, opaque(f.genBin), got)

	// Malformed references still fail.
	_, err = f.resolver.ResolveBestEffort(ctx, built(opaque(f.libDrv), "doc"))
	require.ErrorIs(t, err, domain.ErrNoSuchOutput)
	_, err = f.resolver.ResolveBestEffort(ctx, built(opaque(f.libOut), "out"))
	require.ErrorIs(t, err, domain.ErrNotADerivation)
}

func TestResolveBestEffort_PartialChains(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		path domain.SingleDerivedPath
	}{
		{name: "unbuilt inner link", path: built(opaque(f.libDrv), "dev", "bin")},
		{name: "unbuilt link deep in the chain", path: built(opaque(f.libDrv), "dev", "bin", "man")},
		{name: "inner recipe not registered", path: built(opaque(f.stageDrv), "out", "bin")},
		{name: "recipe not registered", path: built(opaque(mustParse(t, "3l48w6inh026dicjrjxqx40nznqc9n7h-unknown.drv")), "out")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := f.resolver.ResolveStrict(ctx, tt.path)
			require.Error(t, err)

			got, err := f.resolver.ResolveBestEffort(ctx, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.path, got)
			assert.Equal(t, tt.path.Render(storeDir), got.Render(storeDir))

			_, ok, err := f.resolver.ResolveDerivedPathBestEffort(ctx, domain.DerivedPathBuilt{
				DrvPath: tt.path,
				Outputs: domain.AllOutputs(),
			})
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}

	// A built output that is not a recipe is malformed, not pending.
	_, err := f.resolver.ResolveBestEffort(ctx, built(opaque(f.libDrv), "out", "bin"))
	require.ErrorIs(t, err, domain.ErrNotADerivation)
}

func TestResolveBestEffort_AgreesWithStrict(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	for _, p := range []domain.SingleDerivedPath{
		opaque(f.libOut),
		built(opaque(f.libDrv), "out"),
		built(opaque(f.genDrv), "out"),
		built(opaque(f.genDrv), "out", "bin"),
	} {
		strict, err := f.resolver.ResolveStrict(ctx, p)
		require.NoError(t, err)

		best, err := f.resolver.ResolveBestEffort(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, opaque(strict), best, p.Render(storeDir))

		again, err := f.resolver.ResolveBestEffort(ctx, best)
		require.NoError(t, err)
		assert.Equal(t, best, again, "best effort is idempotent")
	}
}

func TestResolveDerivedPath(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	bp, err := f.resolver.ResolveDerivedPath(ctx, domain.DerivedPathOpaque{Path: f.libOut})
	require.NoError(t, err)
	assert.Equal(t, domain.BuiltPathOpaque{Path: f.libOut}, bp)

	bp, err = f.resolver.ResolveDerivedPath(ctx, domain.DerivedPathBuilt{
		DrvPath: opaque(f.libDrv),
		Outputs: domain.OutputNames("out"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BuiltPathBuilt{
		DrvPath: f.libDrv,
		Outputs: map[string]domain.StorePath{"out": f.libOut},
	}, bp)

	_, err = f.resolver.ResolveDerivedPath(ctx, domain.DerivedPathBuilt{
		DrvPath: opaque(f.libDrv),
		Outputs: domain.AllOutputs(),
	})
	require.ErrorIs(t, err, domain.ErrOutputNotBuilt, "dev is not built")

	bp, ok, err := f.resolver.ResolveDerivedPathBestEffort(ctx, domain.DerivedPathBuilt{
		DrvPath: built(opaque(f.genDrv), "out"),
		Outputs: domain.AllOutputs(),
	})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []domain.StorePath{f.genBin}, bp.Paths())

	_, ok, err = f.resolver.ResolveDerivedPathBestEffort(ctx, domain.DerivedPathBuilt{
		DrvPath: opaque(f.libDrv),
		Outputs: domain.OutputNames("out", "dev"),
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveDerivation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	placeholder := domain.DownstreamPlaceholder(f.libDrv, "out")

	src := mustParse(t, "ph1qsb7h3l3bzsrkaws7drh38ijqfziv-source.tar.gz")
	drv := domain.NewDerivation("app", "x86_64-linux", placeholder+"/bin/sh")
	drv.Outputs["out"] = domain.CAFloatingOutput{Method: domain.FixedMethod(domain.FileIngestionRecursive), Algo: domain.SHA256}
	drv.InputSrcs[src] = struct{}{}
	drv.InputDrvs[f.libDrv] = domain.NewOutputNameSet("out")
	drv.Args = []string{"-c", "echo " + placeholder + "/lib"}
	drv.Env["lib"] = placeholder
	drv.Env["out"] = domain.HashPlaceholder("out")

	res, err := f.resolver.ResolveDerivation(ctx, drv)
	require.NoError(t, err)

	libPath := storeDir.Print(f.libOut)
	assert.Equal(t, libPath+"/bin/sh", res.Builder)
	assert.Equal(t, []string{"-c", "echo " + libPath + "/lib"}, res.Args)
	assert.Equal(t, libPath, res.Env["lib"])
	assert.Equal(t, domain.HashPlaceholder("out"), res.Env["out"], "own outputs stay placeholders")
	assert.Equal(t, []domain.StorePath{f.libOut, src}, res.InputSrcs.Sorted())

	// The input recipe is untouched.
	assert.Equal(t, placeholder, drv.Env["lib"])
	assert.Len(t, drv.InputSrcs, 1)

	drv.InputDrvs[f.libDrv] = domain.NewOutputNameSet("out", "dev")
	_, err = f.resolver.ResolveDerivation(ctx, drv)
	require.ErrorIs(t, err, domain.ErrOutputNotBuilt)
}
