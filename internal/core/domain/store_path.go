package domain

import (
	"crypto/sha256"
	"io"
	"path"
	"slices"
	"strings"

	"go.trai.ch/zerr"
	"zombiezen.com/go/nix"
	"zombiezen.com/go/nix/nixbase32"
)

const (
	// HashPartLen is the length of the base-32 hash part of a store path.
	HashPartLen = 32

	// MaxNameLen is the longest allowed name part.
	MaxNameLen = 211

	// DefaultStoreDir is the conventional store root.
	DefaultStoreDir StoreDir = "/nix/store"

	// DerivationExt is the suffix of recipe-text store paths.
	DerivationExt = ".drv"

	// DefaultOutputName is the canonical output name.
	DefaultOutputName = "out"

	compressedHashLen = 20
)

// StorePath is a hash part plus a name, independent of any store directory.
type StorePath struct {
	hashPart string
	name     string
}

// HashPart returns the 32 character base-32 hash part.
func (p StorePath) HashPart() string { return p.hashPart }

// Name returns the human readable part.
func (p StorePath) Name() string { return p.name }

// BaseName returns "<hashPart>-<name>".
func (p StorePath) BaseName() string {
	if p.hashPart == "" {
		return ""
	}
	return p.hashPart + "-" + p.name
}

// String returns the base name; use StoreDir.Print for the absolute form.
func (p StorePath) String() string { return p.BaseName() }

// IsZero reports whether p is the zero value.
func (p StorePath) IsZero() bool { return p.hashPart == "" }

// IsDerivation reports whether p names recipe text.
func (p StorePath) IsDerivation() bool { return strings.HasSuffix(p.name, DerivationExt) }

// DerivationName strips the ".drv" suffix from the name.
func (p StorePath) DerivationName() string { return strings.TrimSuffix(p.name, DerivationExt) }

// Compare orders store paths by base name.
func (p StorePath) Compare(other StorePath) int {
	return strings.Compare(p.BaseName(), other.BaseName())
}

// ParseStorePathBase parses "<hashPart>-<name>".
func ParseStorePathBase(base string) (StorePath, error) {
	if len(base) < HashPartLen+2 || base[HashPartLen] != '-' {
		return StorePath{}, zerr.With(zerr.Wrap(ErrInvalidStorePath, "malformed base name"), "path", base)
	}
	hashPart := base[:HashPartLen]
	for i := 0; i < len(hashPart); i++ {
		if !IsBase32Char(hashPart[i]) {
			return StorePath{}, zerr.With(zerr.Wrap(ErrInvalidStorePath, "illegal hash part"), "path", base)
		}
	}
	name := base[HashPartLen+1:]
	if err := ValidateName(name); err != nil {
		return StorePath{}, zerr.With(err, "path", base)
	}
	return StorePath{hashPart: hashPart, name: name}, nil
}

// StoreDir is the absolute directory under which store paths live.
type StoreDir string

// Print renders p as an absolute path.
func (d StoreDir) Print(p StorePath) string {
	return string(d) + "/" + p.BaseName()
}

// ParseStorePath parses an absolute path directly inside d.
func (d StoreDir) ParseStorePath(s string) (StorePath, error) {
	cleaned := path.Clean(s)
	dir, base := path.Split(cleaned)
	if cleaned != s || strings.TrimSuffix(dir, "/") != string(d) {
		return StorePath{}, zerr.With(
			zerr.With(zerr.Wrap(ErrInvalidStorePath, "not in store directory"), "path", s),
			"store_dir", string(d),
		)
	}
	return ParseStorePathBase(base)
}

// IsStorePath reports whether s parses as a store path of d.
func (d StoreDir) IsStorePath(s string) bool {
	_, err := d.ParseStorePath(s)
	return err == nil
}

// MakeStorePath computes the store path for a fingerprint type, an inner digest and a name.
// The fingerprint is "<type>:<algo>:<hex digest>:<storeDir>:<name>", hashed with SHA-256,
// compressed to 20 bytes and base-32 encoded.
func (d StoreDir) MakeStorePath(typ string, h Hash, name string) (StorePath, error) {
	if err := ValidateName(name); err != nil {
		return StorePath{}, err
	}
	digest := sha256.New()
	_, _ = io.WriteString(digest, typ)
	_, _ = io.WriteString(digest, ":")
	_, _ = io.WriteString(digest, FormatHash(h, Base16))
	_, _ = io.WriteString(digest, ":")
	_, _ = io.WriteString(digest, string(d))
	_, _ = io.WriteString(digest, ":")
	_, _ = io.WriteString(digest, name)
	compressed := make([]byte, compressedHashLen)
	nix.CompressHash(compressed, digest.Sum(nil))
	return StorePath{hashPart: nixbase32.EncodeToString(compressed), name: name}, nil
}

// makeType appends the sorted reference paths and the self marker to a base type.
func (d StoreDir) makeType(base string, refs StoreReferences) string {
	var sb strings.Builder
	sb.WriteString(base)
	for _, ref := range refs.SortedOthers() {
		sb.WriteString(":")
		sb.WriteString(d.Print(ref))
	}
	if refs.Self {
		sb.WriteString(":self")
	}
	return sb.String()
}

// MakeTextPath computes the path of a text object. Text objects never reference themselves.
func (d StoreDir) MakeTextPath(name string, h Hash, refs []StorePath) (StorePath, error) {
	if h.Type() != SHA256 {
		return StorePath{}, zerr.With(
			zerr.Wrap(ErrUnsupportedHashAlgorithm, "text paths require sha256"),
			"algorithm", h.Type().String(),
		)
	}
	return d.MakeStorePath(d.makeType("text", StoreReferences{Others: refs}), h, name)
}

// ComputeStorePathForText hashes text and returns its text path.
func (d StoreDir) ComputeStorePathForText(name, text string, refs []StorePath) (StorePath, error) {
	return d.MakeTextPath(name, HashString(text), refs)
}

// MakeFixedOutputPath computes the path of a content-addressed object with references.
func (d StoreDir) MakeFixedOutputPath(name string, info ContentAddressWithReferences) (StorePath, error) {
	if err := info.Validate(); err != nil {
		return StorePath{}, zerr.With(err, "name", name)
	}

	ca := info.ContentAddress
	var (
		p   StorePath
		err error
	)
	switch {
	case ca.method.IsText():
		p, err = d.MakeTextPath(name, ca.hash, info.References.Others)
	case ca.method.IsIPFS():
		p, err = d.MakeStorePath(d.makeType("ipfs", info.References), ca.hash, name)
	case ca.method.ingestion == FileIngestionRecursive && ca.hash.Type() == SHA256:
		p, err = d.MakeStorePath(d.makeType("source", info.References), ca.hash, name)
	default:
		payload := "fixed:out:" + ca.method.ingestion.Prefix() + FormatHash(ca.hash, Base16) + ":"
		p, err = d.MakeStorePath("output:out", HashString(payload), name)
	}
	if err != nil {
		return StorePath{}, err
	}

	if slices.ContainsFunc(info.References.Others, func(ref StorePath) bool { return ref == p }) {
		return StorePath{}, zerr.With(zerr.Wrap(ErrLiteralSelfReference, "computed path is listed as a reference"), "path", d.Print(p))
	}
	return p, nil
}

// MakeOutputPath computes the input-addressed path of output id of a recipe named name.
func (d StoreDir) MakeOutputPath(id string, h Hash, name string) (StorePath, error) {
	return d.MakeStorePath("output:"+id, h, OutputPathName(name, id))
}

// OutputPathName returns the name part of output id of a recipe named drvName.
func OutputPathName(drvName, id string) string {
	if id == DefaultOutputName {
		return drvName
	}
	return drvName + "-" + id
}

func isNameChar(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("+-._?=", c) >= 0
}

// ValidateName checks the store path name grammar.
func ValidateName(name string) error {
	if name == "" {
		return zerr.Wrap(ErrInvalidStorePathName, "empty name")
	}
	if len(name) > MaxNameLen {
		return zerr.With(zerr.Wrap(ErrInvalidStorePathName, "name too long"), "name", name)
	}
	if name[0] == '.' {
		return zerr.With(zerr.Wrap(ErrInvalidStorePathName, "leading dot"), "name", name)
	}
	for i := 0; i < len(name); i++ {
		if !isNameChar(name[i]) {
			return zerr.With(
				zerr.With(zerr.Wrap(ErrInvalidStorePathName, "illegal character"), "name", name),
				"char", string(name[i]),
			)
		}
	}
	return nil
}

// SanitizeName turns an arbitrary string into a valid name part. It strips leading dots,
// replaces illegal bytes with '_' and truncates to MaxNameLen. An empty result becomes "unnamed".
func SanitizeName(s string) string {
	s = strings.TrimLeft(s, ".")
	b := []byte(s)
	for i, c := range b {
		if !isNameChar(c) {
			b[i] = '_'
		}
	}
	if len(b) > MaxNameLen {
		b = b[:MaxNameLen]
	}
	if len(b) == 0 {
		return "unnamed"
	}
	return string(b)
}
