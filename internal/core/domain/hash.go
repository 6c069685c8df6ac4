package domain

import (
	"bytes"
	"crypto/md5"  //nolint:gosec // md5 is a legacy store hash algorithm, not used for security
	"crypto/sha1" //nolint:gosec // sha1 is required by git ingestion
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"hash"
	"strings"

	"go.trai.ch/zerr"
	"zombiezen.com/go/nix"
	"zombiezen.com/go/nix/nixbase32"
)

// Hash is an algorithm tag plus digest bytes.
type Hash = nix.Hash

// HashAlgorithm identifies a digest algorithm.
type HashAlgorithm = nix.HashType

// Supported hash algorithms.
const (
	MD5    HashAlgorithm = nix.MD5
	SHA1   HashAlgorithm = nix.SHA1
	SHA256 HashAlgorithm = nix.SHA256
	SHA512 HashAlgorithm = nix.SHA512
)

// HashEncoding selects the textual form of a digest.
type HashEncoding uint8

const (
	// Base16 is lowercase hexadecimal.
	Base16 HashEncoding = iota
	// Base32 is the store's base-32 alphabet (no e, o, u, t).
	Base32
	// Base64 is standard padded base64.
	Base64
	// SRI is "<algo>-<base64>" as used by subresource integrity.
	SRI
)

// base32Alphabet is the alphabet of store base-32 digests.
const base32Alphabet = "0123456789abcdfghijklmnpqrsvwxyz"

// IsBase32Char reports whether c may appear in a base-32 digest.
func IsBase32Char(c byte) bool {
	return strings.IndexByte(base32Alphabet, c) >= 0
}

// ParseHashAlgorithm parses an algorithm name such as "sha256".
func ParseHashAlgorithm(s string) (HashAlgorithm, error) {
	algo, err := nix.ParseHashType(s)
	if err != nil {
		return algo, zerr.With(zerr.Wrap(ErrUnsupportedHashAlgorithm, "parse hash algorithm"), "algorithm", s)
	}
	return algo, nil
}

// NewDigest returns a streaming hasher for algo.
func NewDigest(algo HashAlgorithm) (hash.Hash, error) {
	switch algo {
	case MD5:
		return md5.New(), nil //nolint:gosec // see import
	case SHA1:
		return sha1.New(), nil //nolint:gosec // see import
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	default:
		return nil, zerr.With(zerr.Wrap(ErrUnsupportedHashAlgorithm, "new digest"), "algorithm", algo.String())
	}
}

// HashBytes hashes data with algo.
func HashBytes(algo HashAlgorithm, data []byte) (Hash, error) {
	h, err := NewDigest(algo)
	if err != nil {
		return Hash{}, err
	}
	_, _ = h.Write(data)
	return nix.NewHash(algo, h.Sum(nil)), nil
}

// HashString hashes s with SHA-256. Every fingerprint in the store model uses it.
func HashString(s string) Hash {
	sum := sha256.Sum256([]byte(s))
	return nix.NewHash(SHA256, sum[:])
}

// HashFromDigest wraps raw digest bytes produced by a hasher of algo.
func HashFromDigest(algo HashAlgorithm, digest []byte) (Hash, error) {
	if len(digest) != algo.Size() {
		return Hash{}, zerr.With(zerr.Wrap(ErrInvalidHash, "digest length mismatch"), "algorithm", algo.String())
	}
	return nix.NewHash(algo, digest), nil
}

// HashEqual reports whether a and b have the same algorithm and digest.
func HashEqual(a, b Hash) bool {
	return a.Type() == b.Type() && bytes.Equal(a.Bytes(nil), b.Bytes(nil))
}

// FormatDigest renders only the digest of h.
func FormatDigest(h Hash, enc HashEncoding) string {
	raw := h.Bytes(nil)
	switch enc {
	case Base32:
		return nixbase32.EncodeToString(raw)
	case Base64:
		return base64.StdEncoding.EncodeToString(raw)
	case SRI:
		return h.Type().String() + "-" + base64.StdEncoding.EncodeToString(raw)
	default:
		return hex.EncodeToString(raw)
	}
}

// FormatHash renders h as "<algo>:<digest>", or "<algo>-<base64>" for SRI.
func FormatHash(h Hash, enc HashEncoding) string {
	if enc == SRI {
		return FormatDigest(h, SRI)
	}
	return h.Type().String() + ":" + FormatDigest(h, enc)
}

// ParseHash parses "<algo>:<digest>" or an SRI string.
// The digest may be base16, base32 or base64; its length must match the algorithm.
func ParseHash(s string) (Hash, error) {
	if algoName, digest, ok := strings.Cut(s, ":"); ok {
		algo, err := ParseHashAlgorithm(algoName)
		if err != nil {
			return Hash{}, err
		}
		return ParseDigest(algo, digest)
	}
	return ParseSRI(s)
}

// ParseSRI parses "<algo>-<base64>".
func ParseSRI(s string) (Hash, error) {
	algoName, digest, ok := strings.Cut(s, "-")
	if !ok {
		return Hash{}, zerr.With(zerr.Wrap(ErrInvalidHash, "missing algorithm"), "hash", s)
	}
	algo, err := ParseHashAlgorithm(algoName)
	if err != nil {
		return Hash{}, err
	}
	raw, err := base64.StdEncoding.DecodeString(digest)
	if err != nil || len(raw) != algo.Size() {
		return Hash{}, zerr.With(zerr.Wrap(ErrInvalidHash, "bad SRI digest"), "hash", s)
	}
	return nix.NewHash(algo, raw), nil
}

// ParseDigest decodes a digest of algo, selecting the encoding from the length.
func ParseDigest(algo HashAlgorithm, digest string) (Hash, error) {
	size := algo.Size()
	var (
		raw []byte
		err error
	)
	switch len(digest) {
	case hex.EncodedLen(size):
		raw, err = hex.DecodeString(digest)
	case base32EncodedLen(size):
		raw, err = nixbase32.DecodeString(digest)
	case base64.StdEncoding.EncodedLen(size):
		raw, err = base64.StdEncoding.DecodeString(digest)
	default:
		return Hash{}, zerr.With(
			zerr.With(zerr.Wrap(ErrInvalidHash, "wrong digest length"), "algorithm", algo.String()),
			"digest", digest,
		)
	}
	if err != nil || len(raw) != size {
		return Hash{}, zerr.With(zerr.Wrap(ErrInvalidHash, "undecodable digest"), "digest", digest)
	}
	return nix.NewHash(algo, raw), nil
}

func base32EncodedLen(n int) int {
	return (n*8-1)/5 + 1
}
