package domain

import (
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"go.trai.ch/zerr"
)

// FileIngestionMethod describes how a filesystem object is serialised before hashing.
type FileIngestionMethod uint8

const (
	// FileIngestionFlat hashes the bytes of a single regular file.
	FileIngestionFlat FileIngestionMethod = iota
	// FileIngestionRecursive hashes the archive serialisation of a whole tree.
	FileIngestionRecursive
	// FileIngestionGit hashes the git object encoding of a tree or blob.
	FileIngestionGit
)

// Prefix returns the textual prefix of the method in content address strings.
func (m FileIngestionMethod) Prefix() string {
	switch m {
	case FileIngestionRecursive:
		return "r:"
	case FileIngestionGit:
		return "git:"
	default:
		return ""
	}
}

// String returns the JSON name of the method.
func (m FileIngestionMethod) String() string {
	switch m {
	case FileIngestionRecursive:
		return "nar"
	case FileIngestionGit:
		return "git"
	default:
		return "flat"
	}
}

type methodKind uint8

const (
	methodText methodKind = iota
	methodFixed
	methodIPFS
)

// ContentAddressMethod is one of Text, Fixed(ingestion) or IPFS.
// The zero value is Text.
type ContentAddressMethod struct {
	kind      methodKind
	ingestion FileIngestionMethod
}

// TextMethod is the method of recipe-text and other flat text objects.
func TextMethod() ContentAddressMethod {
	return ContentAddressMethod{kind: methodText}
}

// FixedMethod is the method of fixed-output objects ingested with m.
func FixedMethod(m FileIngestionMethod) ContentAddressMethod {
	return ContentAddressMethod{kind: methodFixed, ingestion: m}
}

// IPFSMethod is the method of objects addressed by an IPFS content identifier.
func IPFSMethod() ContentAddressMethod {
	return ContentAddressMethod{kind: methodIPFS}
}

// IsText reports whether m is the text method.
func (m ContentAddressMethod) IsText() bool { return m.kind == methodText }

// IsFixed reports whether m is a fixed-output method.
func (m ContentAddressMethod) IsFixed() bool { return m.kind == methodFixed }

// IsIPFS reports whether m is the IPFS method.
func (m ContentAddressMethod) IsIPFS() bool { return m.kind == methodIPFS }

// Ingestion returns the file ingestion method of a fixed method.
func (m ContentAddressMethod) Ingestion() (FileIngestionMethod, bool) {
	return m.ingestion, m.kind == methodFixed
}

// Prefix returns the method prefix used in derivation output fields.
func (m ContentAddressMethod) Prefix() string {
	switch m.kind {
	case methodText:
		return "text:"
	case methodIPFS:
		return "ipfs:"
	default:
		return m.ingestion.Prefix()
	}
}

// String returns the JSON name of the method.
func (m ContentAddressMethod) String() string {
	switch m.kind {
	case methodText:
		return "text"
	case methodIPFS:
		return "ipfs"
	default:
		return m.ingestion.String()
	}
}

// ParseContentAddressMethod parses a JSON method name.
func ParseContentAddressMethod(s string) (ContentAddressMethod, error) {
	switch s {
	case "text":
		return TextMethod(), nil
	case "flat":
		return FixedMethod(FileIngestionFlat), nil
	case "nar", "recursive":
		return FixedMethod(FileIngestionRecursive), nil
	case "git":
		return FixedMethod(FileIngestionGit), nil
	case "ipfs":
		return IPFSMethod(), nil
	default:
		return ContentAddressMethod{}, zerr.With(zerr.Wrap(ErrInvalidContentAddress, "unknown method"), "method", s)
	}
}

// PrintMethodAlgo renders a method and algorithm as "<prefix><algo>", e.g. "r:sha256".
func PrintMethodAlgo(m ContentAddressMethod, algo HashAlgorithm) string {
	return m.Prefix() + algo.String()
}

// ParseMethodAlgo is the inverse of PrintMethodAlgo.
func ParseMethodAlgo(s string) (ContentAddressMethod, HashAlgorithm, error) {
	method := FixedMethod(FileIngestionFlat)
	rest := s
	switch {
	case strings.HasPrefix(s, "r:"):
		method, rest = FixedMethod(FileIngestionRecursive), s[len("r:"):]
	case strings.HasPrefix(s, "git:"):
		method, rest = FixedMethod(FileIngestionGit), s[len("git:"):]
	case strings.HasPrefix(s, "text:"):
		method, rest = TextMethod(), s[len("text:"):]
	case strings.HasPrefix(s, "ipfs:"):
		method, rest = IPFSMethod(), s[len("ipfs:"):]
	}
	algo, err := ParseHashAlgorithm(rest)
	if err != nil {
		return ContentAddressMethod{}, algo, zerr.With(err, "method_algo", s)
	}
	return method, algo, nil
}

// ContentAddress is the claim "this object's digest, computed by Method, is Hash".
type ContentAddress struct {
	method ContentAddressMethod
	hash   Hash
}

// NewTextContentAddress returns a text content address. Text hashes are always SHA-256.
func NewTextContentAddress(h Hash) (ContentAddress, error) {
	if h.Type() != SHA256 {
		return ContentAddress{}, zerr.With(
			zerr.Wrap(ErrUnsupportedHashAlgorithm, "text content address requires sha256"),
			"algorithm", h.Type().String(),
		)
	}
	return ContentAddress{method: TextMethod(), hash: h}, nil
}

// NewFixedContentAddress returns a fixed-output content address.
func NewFixedContentAddress(m FileIngestionMethod, h Hash) (ContentAddress, error) {
	if m == FileIngestionGit && h.Type() != SHA1 && h.Type() != SHA256 {
		return ContentAddress{}, zerr.With(
			zerr.Wrap(ErrUnsupportedHashAlgorithm, "git ingestion requires sha1 or sha256"),
			"algorithm", h.Type().String(),
		)
	}
	return ContentAddress{method: FixedMethod(m), hash: h}, nil
}

// NewIPFSContentAddress returns an IPFS content address. The digest must be SHA-256.
func NewIPFSContentAddress(h Hash) (ContentAddress, error) {
	if h.Type() != SHA256 {
		return ContentAddress{}, zerr.With(
			zerr.Wrap(ErrUnsupportedHashAlgorithm, "ipfs content address requires sha256"),
			"algorithm", h.Type().String(),
		)
	}
	return ContentAddress{method: IPFSMethod(), hash: h}, nil
}

// NewContentAddress dispatches on m.
func NewContentAddress(m ContentAddressMethod, h Hash) (ContentAddress, error) {
	switch m.kind {
	case methodText:
		return NewTextContentAddress(h)
	case methodIPFS:
		return NewIPFSContentAddress(h)
	default:
		return NewFixedContentAddress(m.ingestion, h)
	}
}

// Method returns how the digest was computed.
func (ca ContentAddress) Method() ContentAddressMethod { return ca.method }

// Hash returns the digest.
func (ca ContentAddress) Hash() Hash { return ca.hash }

// PrintMethodAlgo renders the method and hash algorithm, e.g. "r:sha256".
func (ca ContentAddress) PrintMethodAlgo() string {
	return PrintMethodAlgo(ca.method, ca.hash.Type())
}

// String renders the content address:
// "text:sha256:<base32>", "fixed:<r:|git:|>algo:<base32>" or "ipfs:<cid>".
func (ca ContentAddress) String() string {
	switch ca.method.kind {
	case methodText:
		return "text:" + FormatHash(ca.hash, Base32)
	case methodIPFS:
		return "ipfs:" + ca.cid().String()
	default:
		return "fixed:" + ca.method.ingestion.Prefix() + FormatHash(ca.hash, Base32)
	}
}

func (ca ContentAddress) cid() cid.Cid {
	// Encode only fails for unknown codes; SHA2_256 is always registered.
	mh, _ := multihash.Encode(ca.hash.Bytes(nil), multihash.SHA2_256)
	return cid.NewCidV1(cid.Raw, multihash.Multihash(mh))
}

// ParseContentAddress parses the textual form produced by String.
func ParseContentAddress(s string) (ContentAddress, error) {
	prefix, rest, ok := strings.Cut(s, ":")
	if !ok {
		return ContentAddress{}, zerr.With(zerr.Wrap(ErrInvalidContentAddress, "missing prefix"), "content_address", s)
	}

	switch prefix {
	case "text":
		h, err := parseTypedHash(rest, s)
		if err != nil {
			return ContentAddress{}, err
		}
		return NewTextContentAddress(h)
	case "fixed":
		method := FileIngestionFlat
		switch {
		case strings.HasPrefix(rest, "r:"):
			method, rest = FileIngestionRecursive, rest[len("r:"):]
		case strings.HasPrefix(rest, "git:"):
			method, rest = FileIngestionGit, rest[len("git:"):]
		}
		h, err := parseTypedHash(rest, s)
		if err != nil {
			return ContentAddress{}, err
		}
		return NewFixedContentAddress(method, h)
	case "ipfs":
		return parseIPFS(rest)
	default:
		return ContentAddress{}, zerr.With(zerr.Wrap(ErrInvalidContentAddress, "unknown prefix"), "content_address", s)
	}
}

// parseTypedHash requires the "<algo>:<digest>" form; SRI is not part of the grammar here.
func parseTypedHash(s, whole string) (Hash, error) {
	if !strings.Contains(s, ":") {
		return Hash{}, zerr.With(zerr.Wrap(ErrInvalidContentAddress, "missing hash algorithm"), "content_address", whole)
	}
	h, err := ParseHash(s)
	if err != nil {
		return Hash{}, zerr.With(err, "content_address", whole)
	}
	return h, nil
}

func parseIPFS(s string) (ContentAddress, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return ContentAddress{}, zerr.With(zerr.Wrap(ErrInvalidCID, err.Error()), "cid", s)
	}
	if c.Type() != cid.Raw {
		return ContentAddress{}, zerr.With(zerr.Wrap(ErrInvalidCID, "codec must be raw"), "cid", s)
	}
	decoded, err := multihash.Decode(c.Hash())
	if err != nil {
		return ContentAddress{}, zerr.With(zerr.Wrap(ErrInvalidCID, err.Error()), "cid", s)
	}
	if decoded.Code != multihash.SHA2_256 {
		return ContentAddress{}, zerr.With(zerr.Wrap(ErrInvalidCID, "multihash must be sha2-256"), "cid", s)
	}
	h, err := HashFromDigest(SHA256, decoded.Digest)
	if err != nil {
		return ContentAddress{}, zerr.With(err, "cid", s)
	}
	return NewIPFSContentAddress(h)
}

// Equal reports structural equality.
func (ca ContentAddress) Equal(other ContentAddress) bool {
	return ca.method == other.method && HashEqual(ca.hash, other.hash)
}

// MarshalText implements encoding.TextMarshaler; JSON uses the same grammar.
func (ca ContentAddress) MarshalText() ([]byte, error) {
	return []byte(ca.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ca *ContentAddress) UnmarshalText(text []byte) error {
	parsed, err := ParseContentAddress(string(text))
	if err != nil {
		return err
	}
	*ca = parsed
	return nil
}
