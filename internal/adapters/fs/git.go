package fs

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/zerr"
)

type gitEntry struct {
	mode filemode.FileMode
	name string
	id   []byte
}

// sortKey orders entries the way git does: trees compare as if their name ended in "/".
func (e gitEntry) sortKey() string {
	if e.mode == filemode.Dir {
		return e.name + "/"
	}
	return e.name
}

// gitHasher computes git object ids with a configurable digest.
type gitHasher struct {
	algo  domain.HashAlgorithm
	check func() error
}

// objectID returns the git object id of path: a blob for files and symlinks,
// a tree for directories.
func (g *gitHasher) objectID(path string) (id []byte, mode filemode.FileMode, err error) {
	if err := g.check(); err != nil {
		return nil, filemode.Empty, err
	}

	info, err := os.Lstat(path)
	if err != nil {
		return nil, filemode.Empty, zerr.With(zerr.Wrap(domain.ErrIngestFailed, err.Error()), "path", path)
	}
	mode, err = filemode.NewFromOSFileMode(info.Mode())
	if err != nil {
		return nil, filemode.Empty, zerr.With(zerr.With(zerr.Wrap(domain.ErrIngestFailed, "unsupported file type"), "path", path), "mode", info.Mode().String())
	}

	switch mode {
	case filemode.Dir:
		id, err = g.tree(path)
	case filemode.Symlink:
		// Symlinks are blobs holding their target, as git stores them.
		var target string
		target, err = os.Readlink(path)
		if err != nil {
			return nil, filemode.Empty, zerr.With(zerr.Wrap(domain.ErrIngestFailed, err.Error()), "path", path)
		}
		id, err = g.object(plumbing.BlobObject, int64(len(target)), strings.NewReader(target))
	default:
		id, err = g.blob(path, info.Size())
	}
	return id, mode, err
}

func (g *gitHasher) blob(path string, size int64) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrIngestFailed, err.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	id, err := g.object(plumbing.BlobObject, size, io.LimitReader(f, size))
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return id, nil
}

func (g *gitHasher) tree(path string) ([]byte, error) {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrIngestFailed, err.Error()), "path", path)
	}

	entries := make([]gitEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		id, mode, err := g.objectID(filepath.Join(path, de.Name()))
		if err != nil {
			return nil, err
		}
		entries = append(entries, gitEntry{mode: mode, name: de.Name(), id: id})
	}
	slices.SortFunc(entries, func(a, b gitEntry) int {
		return strings.Compare(a.sortKey(), b.sortKey())
	})

	var body []byte
	for _, e := range entries {
		body = strconv.AppendUint(body, uint64(e.mode), 8)
		body = append(body, ' ')
		body = append(body, e.name...)
		body = append(body, 0)
		body = append(body, e.id...)
	}
	return g.object(plumbing.TreeObject, int64(len(body)), strings.NewReader(string(body)))
}

// object hashes one git object. SHA-1 ids come from go-git's hasher; other
// digests get the same "<type> <size>\x00" header.
func (g *gitHasher) object(t plumbing.ObjectType, size int64, r io.Reader) ([]byte, error) {
	if g.algo == domain.SHA1 {
		h := plumbing.NewHasher(t, size)
		if err := copyObject(h, size, r); err != nil {
			return nil, err
		}
		sum := h.Sum()
		return sum[:], nil
	}

	h, err := domain.NewDigest(g.algo)
	if err != nil {
		return nil, err
	}
	_, _ = h.Write(t.Bytes())
	_, _ = io.WriteString(h, " "+strconv.FormatInt(size, 10)+"\x00")
	if err := copyObject(h, size, r); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

func copyObject(w io.Writer, size int64, r io.Reader) error {
	n, err := io.Copy(w, r)
	if err != nil {
		return zerr.Wrap(domain.ErrIngestFailed, err.Error())
	}
	if n != size {
		return zerr.Wrap(domain.ErrIngestFailed, "file changed while reading")
	}
	return nil
}
