package domain

import "go.trai.ch/zerr"

// Format errors.
var (
	// ErrInvalidHash is returned when a hash string is malformed or its digest has the wrong length.
	ErrInvalidHash = zerr.New("invalid hash")

	// ErrUnsupportedHashAlgorithm is returned when a hash algorithm is unknown or not allowed in a context.
	ErrUnsupportedHashAlgorithm = zerr.New("unsupported hash algorithm")

	// ErrInvalidContentAddress is returned when a content address string cannot be parsed.
	ErrInvalidContentAddress = zerr.New("invalid content address")

	// ErrInvalidCID is returned when an IPFS content identifier cannot be decoded or has an unexpected shape.
	ErrInvalidCID = zerr.New("invalid content identifier")

	// ErrInvalidStorePath is returned when a path is not a well-formed store path.
	ErrInvalidStorePath = zerr.New("invalid store path")

	// ErrInvalidStorePathName is returned when the name part of a store path violates the naming rules.
	ErrInvalidStorePathName = zerr.New("invalid store path name")

	// ErrInvalidDerivation is returned when derivation text or JSON is malformed.
	ErrInvalidDerivation = zerr.New("invalid derivation")

	// ErrInvalidDerivedPath is returned when a derived path string cannot be parsed.
	ErrInvalidDerivedPath = zerr.New("invalid derived path")

	// ErrInvalidPlaceholder is returned when a self-reference placeholder is empty or contains NUL bytes.
	ErrInvalidPlaceholder = zerr.New("invalid self-reference placeholder")
)

// Lookup errors.
var (
	// ErrUnknownDerivation is returned when a recipe has no registered outputs.
	ErrUnknownDerivation = zerr.New("unknown derivation")

	// ErrNoSuchOutput is returned when an output name is not declared by a recipe.
	ErrNoSuchOutput = zerr.New("no such output")

	// ErrRecipeNotFound is returned when a recipe is not present in the recipe store.
	ErrRecipeNotFound = zerr.New("recipe not found")

	// ErrDuplicateRecipe is returned when a recipe graph already holds a path.
	ErrDuplicateRecipe = zerr.New("recipe already in graph")
)

// Resolution errors.
var (
	// ErrOutputNotBuilt is returned when a declared output has no concrete path yet.
	ErrOutputNotBuilt = zerr.New("output not yet built")

	// ErrNotADerivation is returned when a reference expected to denote a recipe resolves to another path.
	ErrNotADerivation = zerr.New("path is not a derivation")
)

// Invariant violations.
var (
	// ErrCyclicDependency is returned when the input recipes of a derivation form a cycle.
	ErrCyclicDependency = zerr.New("cyclic dependency")

	// ErrLiteralSelfReference is returned when an object lists its own path in its reference set.
	ErrLiteralSelfReference = zerr.New("self reference must use the self flag")

	// ErrReferencesNotAllowed is returned when a content address kind cannot carry references.
	ErrReferencesNotAllowed = zerr.New("content address does not allow references")

	// ErrSelfReferenceNotAllowed is returned when a content address kind cannot reference itself.
	ErrSelfReferenceNotAllowed = zerr.New("content address does not allow self references")
)

// Adapter errors.
var (
	// ErrStoreReadFailed is returned when a recipe cannot be read from the recipe store.
	ErrStoreReadFailed = zerr.New("failed to read recipe")

	// ErrStoreWriteFailed is returned when a recipe cannot be written to the recipe store.
	ErrStoreWriteFailed = zerr.New("failed to write recipe")

	// ErrRegistryReadFailed is returned when the output registry file cannot be loaded.
	ErrRegistryReadFailed = zerr.New("failed to read output registry")

	// ErrRegistryWriteFailed is returned when the output registry file cannot be saved.
	ErrRegistryWriteFailed = zerr.New("failed to write output registry")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a config value is out of range.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrIngestFailed is returned when a filesystem object cannot be serialised for hashing.
	ErrIngestFailed = zerr.New("failed to ingest path")
)
