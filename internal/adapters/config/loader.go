// Package config provides the configuration loader for cask.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
	// Filename is looked up in the working directory when no explicit file is named.
	Filename string
	// Getenv reads the environment. Nil means os.Getenv.
	Getenv func(string) string
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, Filename: domain.DefaultConfigFile, Getenv: os.Getenv}
}

// Load resolves the configuration for the working directory cwd.
//
// $CASK_CONFIG names an explicit file, which must exist. Otherwise cask.yaml in
// cwd is used if present, and the defaults apply if it is not.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	path, explicit := l.configPath(cwd)

	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		cfg := domain.DefaultConfig()
		cfg.StateDir = filepath.Join(cwd, cfg.StateDir)
		return cfg, nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
	}

	var file Caskfile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", path)
	}

	cfg, err := apply(domain.DefaultConfig(), &file)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	if !filepath.IsAbs(cfg.StateDir) {
		cfg.StateDir = filepath.Join(cwd, cfg.StateDir)
	}
	if l.Logger != nil {
		l.Logger.Info("loaded config " + path)
	}
	return cfg, nil
}

func (l *Loader) configPath(cwd string) (path string, explicit bool) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if p := getenv(domain.ConfigEnvVar); p != "" {
		if !filepath.IsAbs(p) {
			p = filepath.Join(cwd, p)
		}
		return p, true
	}
	name := l.Filename
	if name == "" {
		name = domain.DefaultConfigFile
	}
	return filepath.Join(cwd, name), false
}

func apply(cfg *domain.Config, file *Caskfile) (*domain.Config, error) {
	if file.StoreDir != nil {
		dir := *file.StoreDir
		if !filepath.IsAbs(dir) || strings.HasSuffix(dir, "/") {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "store_dir must be absolute without a trailing slash"), "store_dir", dir)
		}
		cfg.StoreDir = domain.StoreDir(dir)
	}
	if file.StateDir != nil {
		if *file.StateDir == "" {
			return nil, zerr.Wrap(domain.ErrInvalidConfig, "state_dir must not be empty")
		}
		cfg.StateDir = *file.StateDir
	}
	if file.RecipeCacheSize != nil {
		if *file.RecipeCacheSize <= 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "recipe_cache_size must be positive"), "recipe_cache_size", *file.RecipeCacheSize)
		}
		cfg.RecipeCacheSize = *file.RecipeCacheSize
	}
	if file.Parallelism != nil {
		if *file.Parallelism < 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "parallelism must not be negative"), "parallelism", *file.Parallelism)
		}
		cfg.Parallelism = *file.Parallelism
	}
	if file.LogFormat != nil {
		switch *file.LogFormat {
		case domain.LogFormatText, domain.LogFormatJSON:
			cfg.LogFormat = *file.LogFormat
		default:
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "log_format must be text or json"), "log_format", *file.LogFormat)
		}
	}
	return cfg, nil
}
