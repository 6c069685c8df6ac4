package config

// Caskfile represents the structure of the cask.yaml configuration file.
// Every field is optional; nil means "use the default".
type Caskfile struct {
	StoreDir        *string `yaml:"store_dir"`
	StateDir        *string `yaml:"state_dir"`
	RecipeCacheSize *int    `yaml:"recipe_cache_size"`
	Parallelism     *int    `yaml:"parallelism"`
	LogFormat       *string `yaml:"log_format"`
}
