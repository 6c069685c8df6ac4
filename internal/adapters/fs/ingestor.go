// Package fs turns filesystem objects into content addresses.
package fs

import (
	"context"
	"io"
	"os"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/cask/internal/core/ports"
	"go.trai.ch/cask/internal/engine/selfref" //nolint:depguard // selfref is a pure stream transform
	"go.trai.ch/zerr"
	"zombiezen.com/go/nix/nar"
)

var _ ports.Ingestor = (*Ingestor)(nil)

// Ingestor serialises paths (flat, archive or git) and hashes the result.
type Ingestor struct{}

// NewIngestor creates a new Ingestor.
func NewIngestor() *Ingestor {
	return &Ingestor{}
}

// Ingest hashes path as method prescribes.
//
// Flat and text ingestion read a single regular file. IPFS ingestion hashes the
// bytes of a regular file, or the archive of anything else.
func (i *Ingestor) Ingest(
	ctx context.Context,
	path string,
	method domain.ContentAddressMethod,
	algo domain.HashAlgorithm,
) (domain.ContentAddress, error) {
	if ingestion, ok := method.Ingestion(); ok && ingestion == domain.FileIngestionGit {
		g := &gitHasher{algo: algo, check: func() error { return checkCtx(ctx) }}
		id, _, err := g.objectID(path)
		if err != nil {
			return domain.ContentAddress{}, err
		}
		h, err := domain.HashFromDigest(algo, id)
		if err != nil {
			return domain.ContentAddress{}, err
		}
		return domain.NewFixedContentAddress(domain.FileIngestionGit, h)
	}

	d, err := domain.NewDigest(algo)
	if err != nil {
		return domain.ContentAddress{}, err
	}
	if err := serialise(ctx, &ctxWriter{ctx: ctx, w: d}, path, method); err != nil {
		return domain.ContentAddress{}, err
	}
	h, err := domain.HashFromDigest(algo, d.Sum(nil))
	if err != nil {
		return domain.ContentAddress{}, err
	}
	return domain.NewContentAddress(method, h)
}

// IngestModulo is Ingest with every occurrence of selfHashPart erased first.
// Only recursive SHA-256 and IPFS addresses may refer to themselves.
func (i *Ingestor) IngestModulo(
	ctx context.Context,
	path string,
	method domain.ContentAddressMethod,
	algo domain.HashAlgorithm,
	selfHashPart string,
) (domain.ContentAddress, error) {
	if !allowsSelfReference(method, algo) {
		return domain.ContentAddress{}, zerr.With(
			zerr.Wrap(domain.ErrSelfReferenceNotAllowed, "ingest modulo self reference"),
			"method", domain.PrintMethodAlgo(method, algo),
		)
	}

	w, err := selfref.NewHashModuloWriter(algo, selfHashPart)
	if err != nil {
		return domain.ContentAddress{}, err
	}
	if err := serialise(ctx, &ctxWriter{ctx: ctx, w: w}, path, method); err != nil {
		return domain.ContentAddress{}, err
	}
	h, _, err := w.Sum()
	if err != nil {
		return domain.ContentAddress{}, err
	}
	return domain.NewContentAddress(method, h)
}

// ScanReferences reports which candidates occur in the archive of path.
func (i *Ingestor) ScanReferences(ctx context.Context, path string, candidates []domain.StorePath) ([]domain.StorePath, error) {
	byHash := make(map[string][]domain.StorePath, len(candidates))
	hashParts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, seen := byHash[c.HashPart()]; !seen {
			hashParts = append(hashParts, c.HashPart())
		}
		byHash[c.HashPart()] = append(byHash[c.HashPart()], c)
	}

	scanner := selfref.NewRefScanner(hashParts)
	if err := dumpArchive(&ctxWriter{ctx: ctx, w: scanner}, path); err != nil {
		return nil, wrapCtx(ctx, err)
	}

	found := make(domain.StorePathSet)
	for _, hp := range scanner.Found() {
		for _, p := range byHash[hp] {
			found[p] = struct{}{}
		}
	}
	return found.Sorted(), nil
}

func allowsSelfReference(method domain.ContentAddressMethod, algo domain.HashAlgorithm) bool {
	if method.IsIPFS() {
		return true
	}
	ingestion, ok := method.Ingestion()
	return ok && ingestion == domain.FileIngestionRecursive && algo == domain.SHA256
}

// serialise writes the byte stream that method hashes.
func serialise(ctx context.Context, w io.Writer, path string, method domain.ContentAddressMethod) error {
	ingestion, fixed := method.Ingestion()
	switch {
	case fixed && ingestion == domain.FileIngestionRecursive:
		return wrapCtx(ctx, dumpArchive(w, path))
	case method.IsIPFS():
		info, err := os.Lstat(path)
		if err != nil {
			return zerr.With(zerr.Wrap(domain.ErrIngestFailed, err.Error()), "path", path)
		}
		if !info.Mode().IsRegular() {
			return wrapCtx(ctx, dumpArchive(w, path))
		}
		return wrapCtx(ctx, copyFlat(w, path))
	default:
		return wrapCtx(ctx, copyFlat(w, path))
	}
}

// dumpArchive writes the nix-archive-1 serialisation of path.
func dumpArchive(w io.Writer, path string) error {
	if err := nar.DumpPath(w, path); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrIngestFailed, err.Error()), "path", path)
	}
	return nil
}

// copyFlat copies the bytes of a regular file.
func copyFlat(w io.Writer, path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrIngestFailed, err.Error()), "path", path)
	}
	if !info.Mode().IsRegular() {
		return zerr.With(zerr.Wrap(domain.ErrIngestFailed, "flat ingestion requires a regular file"), "path", path)
	}

	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrIngestFailed, err.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	if _, err := io.Copy(w, f); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrIngestFailed, err.Error()), "path", path)
	}
	return nil
}

// ctxWriter fails writes once ctx is done, so long serialisations stop early.
type ctxWriter struct {
	ctx context.Context
	w   io.Writer
}

func (c *ctxWriter) Write(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.w.Write(p)
}

func checkCtx(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return zerr.Wrap(err, "ingestion cancelled")
	}
	return nil
}

// wrapCtx reports cancellation in preference to the I/O error it caused.
func wrapCtx(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if cerr := checkCtx(ctx); cerr != nil {
		return cerr
	}
	return err
}
