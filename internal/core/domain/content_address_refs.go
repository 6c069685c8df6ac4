package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// StoreReferences is the reference set of a store object. A reference to the
// object itself is expressed only through Self.
type StoreReferences struct {
	Others []StorePath
	Self   bool
}

// SortedOthers returns a sorted, deduplicated copy of Others.
func (r StoreReferences) SortedOthers() []StorePath {
	out := slices.Clone(r.Others)
	slices.SortFunc(out, StorePath.Compare)
	return slices.Compact(out)
}

// SplitSelfReference builds the references of the object at self from a literal
// reference list, turning an entry for self into the Self flag.
func SplitSelfReference(self StorePath, refs []StorePath) StoreReferences {
	out := StoreReferences{Others: make([]StorePath, 0, len(refs))}
	for _, r := range refs {
		if r == self {
			out.Self = true
			continue
		}
		out.Others = append(out.Others, r)
	}
	return out
}

// IsEmpty reports whether there are no references at all.
func (r StoreReferences) IsEmpty() bool {
	return len(r.Others) == 0 && !r.Self
}

// ContentAddressWithReferences is a content address plus the references of the object.
type ContentAddressWithReferences struct {
	ContentAddress
	References StoreReferences
}

// Validate checks which reference shapes the content address method allows.
func (c ContentAddressWithReferences) Validate() error {
	switch {
	case c.method.IsText():
		if c.References.Self {
			return zerr.Wrap(ErrSelfReferenceNotAllowed, "text objects cannot reference themselves")
		}
		if c.hash.Type() != SHA256 {
			return zerr.With(zerr.Wrap(ErrUnsupportedHashAlgorithm, "text objects require sha256"), "algorithm", c.hash.Type().String())
		}
	case c.method.IsIPFS():
	case c.method.ingestion == FileIngestionRecursive && c.hash.Type() == SHA256:
	default:
		if !c.References.IsEmpty() {
			return zerr.With(
				zerr.Wrap(ErrReferencesNotAllowed, "only recursive sha256 objects may have references"),
				"method_algo", c.PrintMethodAlgo(),
			)
		}
	}
	return nil
}
