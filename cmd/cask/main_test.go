package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/cask/internal/adapters/cas"
	"go.trai.ch/cask/internal/adapters/fs"
	"go.trai.ch/cask/internal/adapters/outputs"
	"go.trai.ch/cask/internal/adapters/telemetry"
	"go.trai.ch/cask/internal/app"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports/mocks"
	"go.trai.ch/cask/internal/engine/modulo"
	"go.trai.ch/cask/internal/engine/resolver"
	"go.trai.ch/cask/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

func newProvider(t *testing.T, log *mocks.MockLogger) ComponentProvider {
	t.Helper()

	cfg := domain.DefaultConfig()
	store := cas.NewMemoryStore(cfg.StoreDir)
	hasher := modulo.NewHasher(store, modulo.NewCache())
	registry, err := outputs.NewRegistry("", nil)
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}

	tel := telemetry.New()
	application := app.New(
		cfg,
		store,
		hasher,
		scheduler.NewScheduler(store, hasher, log).WithTelemetry(tel),
		resolver.NewResolver(registry, cfg.StoreDir),
		registry,
		fs.NewIngestor(),
		log,
	)
	return func(_ context.Context) (*app.Components, func(), error) {
		return app.NewComponents(application, log, cfg, tel), func() { _ = tel.Close() }, nil
	}
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{
		"path", "fixed:sha256:0ix4jahrkll5zg01wandq78jw3ab30q4nscph67rniqg5x7r0j59", "hello.txt",
	}, strings.NewReader(""), stdout, new(bytes.Buffer), newProvider(t, log))

	assert.Equal(t, 0, exitCode)
	assert.Equal(t, "/nix/store/d5n8kjrd1ilw3mxdk83c446nyigj8pci-hello.txt\n", stdout.String())
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, strings.NewReader(""), new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 and logs when the command fails.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrOutputNotBuilt)
	}).Times(1)
	log.EXPECT().Info(gomock.Any()).AnyTimes()

	provider := newProvider(t, log)
	recipe := `{"name":"hello","outputs":{"out":{}},"system":"x86_64-linux","builder":"/bin/sh","env":{"out":""}}`

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"drv", "add", "-"}, strings.NewReader(recipe), stdout, new(bytes.Buffer), provider)
	assert.Equal(t, 0, exitCode)

	drv := strings.TrimSpace(stdout.String())
	exitCode = run(context.Background(), []string{"resolve", drv + "!out"}, strings.NewReader(""), new(bytes.Buffer), new(bytes.Buffer), provider)
	assert.Equal(t, 1, exitCode)
}
