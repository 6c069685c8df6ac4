package selfref

import (
	"io"
	"slices"
)

// Restorer is an io.Writer that writes hashPart at the recorded offsets of the
// stream passing through it, undoing a Rewriter.
type Restorer struct {
	w        io.Writer
	hashPart []byte
	offsets  []int64
	pos      int64
	scratch  []byte
}

// NewRestorer returns a Restorer writing to w.
func NewRestorer(w io.Writer, offsets []int64, hashPart string) *Restorer {
	sorted := slices.Clone(offsets)
	slices.Sort(sorted)
	return &Restorer{w: w, hashPart: []byte(hashPart), offsets: sorted}
}

// Write implements io.Writer.
func (r *Restorer) Write(p []byte) (int, error) {
	start, end := r.pos, r.pos+int64(len(p))
	out := p
	copied := false
	for len(r.offsets) > 0 && r.offsets[0] < end {
		off := r.offsets[0]
		if off+int64(len(r.hashPart)) <= start {
			r.offsets = r.offsets[1:]
			continue
		}
		if !copied {
			r.scratch = append(r.scratch[:0], p...)
			out = r.scratch
			copied = true
		}
		patch(out, start, off, r.hashPart)
		if off+int64(len(r.hashPart)) > end {
			break
		}
		r.offsets = r.offsets[1:]
	}
	r.pos = end
	return r.w.Write(out)
}

// Restore writes hashPart at every offset of buf in place.
func Restore(buf []byte, offsets []int64, hashPart string) {
	for _, off := range offsets {
		patch(buf, 0, off, []byte(hashPart))
	}
}

// patch copies the part of hashPart placed at absolute offset off that falls
// inside chunk, which starts at absolute offset base.
func patch(chunk []byte, base, off int64, hashPart []byte) {
	from := max(off, base)
	to := min(off+int64(len(hashPart)), base+int64(len(chunk)))
	if from >= to {
		return
	}
	copy(chunk[from-base:to-base], hashPart[from-off:to-off])
}
