// Package selfref erases and restores an artifact's own hash part inside its byte stream.
package selfref

import (
	"bytes"
	"io"

	"go.trai.ch/cask/internal/core/domain"
	"go.trai.ch/zerr"
)

// Rewriter is an io.WriteCloser that replaces every non-overlapping occurrence
// of a pattern with zero bytes before passing data on. It holds back
// len(pattern)-1 bytes between writes so occurrences spanning two writes are
// found. Close flushes the held-back tail.
type Rewriter struct {
	w       io.Writer
	pattern []byte
	buf     []byte
	// base is the absolute offset of buf[0].
	base int64
	// next is the index in buf where scanning resumes.
	next    int
	offsets []int64
	closed  bool
}

// NewRewriter returns a Rewriter writing to w. The pattern must be non-empty
// and must not contain zero bytes, so a replaced run never matches again.
func NewRewriter(w io.Writer, pattern string) (*Rewriter, error) {
	if pattern == "" || bytes.IndexByte([]byte(pattern), 0) >= 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidStorePath, "rewrite pattern must be non-empty and free of NUL"), "pattern", pattern)
	}
	return &Rewriter{w: w, pattern: []byte(pattern)}, nil
}

// Write implements io.Writer.
func (r *Rewriter) Write(p []byte) (int, error) {
	if r.closed {
		return 0, zerr.New("write to closed rewriter")
	}
	r.buf = append(r.buf, p...)
	r.scan()

	keep := len(r.pattern) - 1
	if flush := len(r.buf) - keep; flush > 0 {
		if err := r.emit(flush); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Close flushes the remaining bytes. It does not close the underlying writer.
func (r *Rewriter) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.emit(len(r.buf))
}

// Offsets returns the absolute offsets of every replaced occurrence, ascending.
func (r *Rewriter) Offsets() []int64 {
	return r.offsets
}

func (r *Rewriter) scan() {
	for {
		i := bytes.Index(r.buf[r.next:], r.pattern)
		if i < 0 {
			return
		}
		start := r.next + i
		clear(r.buf[start : start+len(r.pattern)])
		r.offsets = append(r.offsets, r.base+int64(start))
		r.next = start + len(r.pattern)
	}
}

func (r *Rewriter) emit(n int) error {
	if n == 0 {
		return nil
	}
	if _, err := r.w.Write(r.buf[:n]); err != nil {
		return err
	}
	r.buf = append(r.buf[:0], r.buf[n:]...)
	r.base += int64(n)
	r.next = max(r.next-n, 0)
	return nil
}
