package domain

import "runtime"

// Config defaults.
const (
	// DefaultConfigFile is the name of the configuration file looked up in the working directory.
	DefaultConfigFile = "cask.yaml"
	// ConfigEnvVar names an explicit configuration file.
	ConfigEnvVar = "CASK_CONFIG"
	// DefaultStateDir holds the recipe store and the output registry.
	DefaultStateDir = ".cask"
	// DefaultRecipeCacheSize is the number of parsed recipes kept in memory.
	DefaultRecipeCacheSize = 1024

	// LogFormatText selects human-readable log lines.
	LogFormatText = "text"
	// LogFormatJSON selects one JSON object per log line.
	LogFormatJSON = "json"
)

// Config is the resolved configuration of one cask invocation.
type Config struct {
	StoreDir        StoreDir
	StateDir        string
	RecipeCacheSize int
	Parallelism     int
	LogFormat       string
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		StoreDir:        DefaultStoreDir,
		StateDir:        DefaultStateDir,
		RecipeCacheSize: DefaultRecipeCacheSize,
		LogFormat:       LogFormatText,
	}
}

// Workers returns the effective parallelism, falling back to the CPU count.
func (c *Config) Workers() int {
	if c.Parallelism > 0 {
		return c.Parallelism
	}
	return runtime.NumCPU()
}
