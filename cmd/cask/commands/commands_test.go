package commands_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cask/cmd/cask/commands"
	"go.trai.ch/cask/internal/app"
	"go.trai.ch/cask/internal/build"
)

const (
	drvPath = "/nix/store/gbb2fhy0jpixfkw810ay3qzgm3j4aind-libfoo.drv"
	outPath = "/nix/store/hmkivscqbw66kp5fkq0sgm80s9gvzd9z-libfoo"
)

type mockApp struct {
	storePathFunc   func(ctx context.Context, req app.StorePathRequest) (string, error)
	ingestFunc      func(ctx context.Context, req app.IngestRequest) (app.IngestResult, error)
	addRecipeFunc   func(ctx context.Context, data []byte) (string, error)
	showRecipeFunc  func(ctx context.Context, drvPath string) ([]byte, error)
	resolveDrvFunc  func(ctx context.Context, drvPath string) ([]byte, error)
	hashRecipeFunc  func(ctx context.Context, drvPaths []string, closure bool) ([]app.RecipeHash, error)
	recipePathsFunc func(ctx context.Context, drvPath string) ([]app.OutputPath, error)
	registerFunc    func(ctx context.Context, drvPath, output, path string) error
	queryFunc       func(ctx context.Context, drvPath string) ([]app.OutputPath, error)
	resolveFunc     func(ctx context.Context, ref string, bestEffort bool) ([]string, error)
	missingFunc     func(ctx context.Context, drvPaths []string) ([]string, error)
}

func (m *mockApp) StorePath(ctx context.Context, req app.StorePathRequest) (string, error) {
	return m.storePathFunc(ctx, req)
}

func (m *mockApp) Ingest(ctx context.Context, req app.IngestRequest) (app.IngestResult, error) {
	return m.ingestFunc(ctx, req)
}

func (m *mockApp) AddRecipe(ctx context.Context, data []byte) (string, error) {
	return m.addRecipeFunc(ctx, data)
}

func (m *mockApp) ShowRecipe(ctx context.Context, p string) ([]byte, error) {
	return m.showRecipeFunc(ctx, p)
}

func (m *mockApp) ResolveRecipe(ctx context.Context, p string) ([]byte, error) {
	return m.resolveDrvFunc(ctx, p)
}

func (m *mockApp) HashRecipe(ctx context.Context, drvPaths []string, closure bool) ([]app.RecipeHash, error) {
	return m.hashRecipeFunc(ctx, drvPaths, closure)
}

func (m *mockApp) RecipePaths(ctx context.Context, p string) ([]app.OutputPath, error) {
	return m.recipePathsFunc(ctx, p)
}

func (m *mockApp) RegisterOutput(ctx context.Context, p, output, path string) error {
	return m.registerFunc(ctx, p, output, path)
}

func (m *mockApp) QueryOutputs(ctx context.Context, p string) ([]app.OutputPath, error) {
	return m.queryFunc(ctx, p)
}

func (m *mockApp) Resolve(ctx context.Context, ref string, bestEffort bool) ([]string, error) {
	return m.resolveFunc(ctx, ref, bestEffort)
}

func (m *mockApp) Missing(ctx context.Context, drvPaths []string) ([]string, error) {
	return m.missingFunc(ctx, drvPaths)
}

// execute runs args against a CLI backed by m and returns stdout.
func execute(t *testing.T, m *mockApp, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(m)
	out := new(bytes.Buffer)
	cli.SetOutput(out, new(bytes.Buffer))
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return out.String(), err
}

func TestCommands_Path(t *testing.T) {
	var captured app.StorePathRequest
	m := &mockApp{
		storePathFunc: func(_ context.Context, req app.StorePathRequest) (string, error) {
			captured = req
			return outPath, nil
		},
	}

	out, err := execute(t, m, "path", "fixed:r:sha256:abc", "libfoo", "--ref", drvPath, "--self")
	require.NoError(t, err)
	assert.Equal(t, outPath+"\n", out)
	assert.Equal(t, app.StorePathRequest{
		ContentAddress: "fixed:r:sha256:abc",
		Name:           "libfoo",
		References:     []string{drvPath},
		Self:           true,
	}, captured)

	_, err = execute(t, m, "path", "only-one-arg")
	require.Error(t, err)
}

func TestCommands_Ingest(t *testing.T) {
	var captured app.IngestRequest
	m := &mockApp{
		ingestFunc: func(_ context.Context, req app.IngestRequest) (app.IngestResult, error) {
			captured = req
			return app.IngestResult{
				ContentAddress: "fixed:r:sha256:abc",
				Path:           outPath,
				References:     []string{drvPath},
				Self:           true,
			}, nil
		},
	}

	out, err := execute(t, m, "ingest", "./result", "--method", "flat", "--self", "ph1qsb7h3l3bzsrkaws7drh38ijqfziv", "-r", drvPath)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		outPath,
		"fixed:r:sha256:abc",
		"reference " + drvPath,
		"reference self",
		"",
	}, "\n"), out)
	assert.Equal(t, app.IngestRequest{
		Path:         "./result",
		Method:       "flat",
		Algo:         "sha256",
		SelfHashPart: "ph1qsb7h3l3bzsrkaws7drh38ijqfziv",
		Candidates:   []string{drvPath},
	}, captured)
}

func TestCommands_DrvAdd(t *testing.T) {
	var captured []byte
	m := &mockApp{
		addRecipeFunc: func(_ context.Context, data []byte) (string, error) {
			captured = data
			return drvPath, nil
		},
	}

	t.Run("reads a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "libfoo.json")
		require.NoError(t, os.WriteFile(file, []byte(`{"name":"libfoo"}`), 0o600))

		out, err := execute(t, m, "drv", "add", file)
		require.NoError(t, err)
		assert.Equal(t, drvPath+"\n", out)
		assert.JSONEq(t, `{"name":"libfoo"}`, string(captured))
	})

	t.Run("reads stdin", func(t *testing.T) {
		cli := commands.New(m)
		out := new(bytes.Buffer)
		cli.SetOutput(out, new(bytes.Buffer))
		cli.SetInput(strings.NewReader(`{"name":"stdin"}`))
		cli.SetArgs([]string{"drv", "add", "-"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.JSONEq(t, `{"name":"stdin"}`, string(captured))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, m, "drv", "add", filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read recipe")
	})
}

func TestCommands_DrvShowHashPaths(t *testing.T) {
	var closure bool
	m := &mockApp{
		showRecipeFunc: func(_ context.Context, _ string) ([]byte, error) {
			return []byte(`{"name":"libfoo"}`), nil
		},
		resolveDrvFunc: func(_ context.Context, _ string) ([]byte, error) {
			return []byte(`{"name":"libfoo","inputDrvs":{}}`), nil
		},
		hashRecipeFunc: func(_ context.Context, drvPaths []string, c bool) ([]app.RecipeHash, error) {
			closure = c
			return []app.RecipeHash{{
				DrvPath: drvPaths[0],
				Kind:    "regular",
				Outputs: []app.OutputHash{{Output: "dev", Hash: "sha256:1"}, {Output: "out", Hash: "sha256:2"}},
			}}, nil
		},
		recipePathsFunc: func(_ context.Context, _ string) ([]app.OutputPath, error) {
			return []app.OutputPath{{Output: "dev"}, {Output: "out", Path: outPath}}, nil
		},
	}

	out, err := execute(t, m, "drv", "show", drvPath)
	require.NoError(t, err)
	assert.Equal(t, "{\"name\":\"libfoo\"}\n", out)

	out, err = execute(t, m, "drv", "resolve", drvPath)
	require.NoError(t, err)
	assert.Equal(t, "{\"name\":\"libfoo\",\"inputDrvs\":{}}\n", out)

	out, err = execute(t, m, "drv", "hash", drvPath, "--closure")
	require.NoError(t, err)
	assert.True(t, closure)
	assert.Equal(t, drvPath+"!dev sha256:1 regular\n"+drvPath+"!out sha256:2 regular\n", out)

	out, err = execute(t, m, "drv", "paths", drvPath)
	require.NoError(t, err)
	assert.Equal(t, "dev (known after build)\nout "+outPath+"\n", out)
}

func TestCommands_Outputs(t *testing.T) {
	var registered []string
	m := &mockApp{
		registerFunc: func(_ context.Context, p, output, path string) error {
			registered = []string{p, output, path}
			return nil
		},
		queryFunc: func(_ context.Context, _ string) ([]app.OutputPath, error) {
			return []app.OutputPath{{Output: "dev"}, {Output: "out", Path: outPath}}, nil
		},
	}

	_, err := execute(t, m, "outputs", "register", drvPath, "out", outPath)
	require.NoError(t, err)
	assert.Equal(t, []string{drvPath, "out", outPath}, registered)

	out, err := execute(t, m, "outputs", "query", drvPath)
	require.NoError(t, err)
	assert.Equal(t, "dev (not built)\nout "+outPath+"\n", out)
}

func TestCommands_Resolve(t *testing.T) {
	t.Run("passes the best-effort flag", func(t *testing.T) {
		var bestEffort bool
		m := &mockApp{
			resolveFunc: func(_ context.Context, ref string, be bool) ([]string, error) {
				bestEffort = be
				return []string{ref}, nil
			},
		}

		out, err := execute(t, m, "resolve", drvPath+"!out", "--best-effort")
		require.NoError(t, err)
		assert.True(t, bestEffort)
		assert.Equal(t, drvPath+"!out\n", out)
	})

	t.Run("returns error on resolve failure", func(t *testing.T) {
		m := &mockApp{
			resolveFunc: func(_ context.Context, _ string, _ bool) ([]string, error) {
				return nil, errors.New("simulated error")
			},
		}

		_, err := execute(t, m, "resolve", drvPath+"!out")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Missing(t *testing.T) {
	m := &mockApp{
		missingFunc: func(_ context.Context, drvPaths []string) ([]string, error) {
			return []string{drvPaths[0] + "!dev", drvPaths[1] + "!out"}, nil
		},
	}

	out, err := execute(t, m, "missing", drvPath, "/nix/store/3vrqr933piqxrv5sx6bym2247z7wfkmy-app.drv")
	require.NoError(t, err)
	assert.Equal(t, drvPath+"!dev\n/nix/store/3vrqr933piqxrv5sx6bym2247z7wfkmy-app.drv!out\n", out)

	_, err = execute(t, m, "missing")
	require.Error(t, err)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
	assert.Contains(t, out, "cask version")
}
