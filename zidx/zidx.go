// Package zidx builds random-access indexes over in-memory zlib buffers.
// One full decode records, at DEFLATE block boundaries, the bit position of
// the stream, the output offset, and the trailing window of output; later
// reads resume from the nearest recorded point instead of decoding from the
// start. The approach follows Mark Adler's zran.
package zidx

import (
	"errors"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/coreos/pkg/capnslog"

	"github.com/coreos/inflate/flate"
	"github.com/coreos/inflate/zlib"
)

var plog = capnslog.NewPackageLogger("github.com/coreos/inflate", "zidx")

// DefaultSpan is the minimum distance between checkpoints in the
// uncompressed output.
const DefaultSpan = 1 << 20

// Back-references reach at most 32 KiB behind the cursor, so a checkpoint
// never needs more history than that.
const maxWindow = 32 << 10

// ErrMismatch is returned by Extract when the index was built from a
// different buffer than the one presented.
var ErrMismatch = errors.New("zidx: index does not match buffer")

type checkpoint struct {
	bitpos int64  // bit offset into the DEFLATE payload
	out    int64  // uncompressed bytes produced before this point
	window []byte // trailing output, at most maxWindow bytes
}

// An Index records resumable positions within one zlib buffer. It holds a
// fingerprint of the buffer it was built from, and Extract refuses any
// other.
type Index struct {
	sum    uint64
	size   int64
	points []checkpoint
}

// Build fully decodes the zlib buffer in data and records a checkpoint at
// the first block boundary after every span uncompressed bytes. A span of
// zero or less selects DefaultSpan. Denser checkpoints make Extract faster
// and the index larger; each checkpoint carries up to 32 KiB of window.
func Build(data []byte, span int) (*Index, error) {
	if span <= 0 {
		span = DefaultSpan
	}
	if _, err := zlib.ParseHeader(data); err != nil {
		return nil, err
	}
	idx := &Index{sum: xxhash.Sum64(data)}
	d := flate.NewDecoder(data[2:])
	idx.addPoint(d)
	for {
		final, err := d.Next()
		if err != nil {
			return nil, err
		}
		if final {
			break
		}
		if int64(len(d.Out))-idx.points[len(idx.points)-1].out >= int64(span) {
			idx.addPoint(d)
		}
	}
	idx.size = int64(len(d.Out))
	plog.Debugf("indexed %d compressed bytes: %d checkpoints over %d output bytes",
		len(data), len(idx.points), idx.size)
	return idx, nil
}

func (x *Index) addPoint(d *flate.Decoder) {
	w := len(d.Out)
	if w > maxWindow {
		w = maxWindow
	}
	x.points = append(x.points, checkpoint{
		bitpos: d.Br.BitPos(),
		out:    int64(len(d.Out)),
		window: append([]byte(nil), d.Out[len(d.Out)-w:]...),
	})
}

// Size reports the total uncompressed size of the indexed buffer.
func (x *Index) Size() int64 {
	return x.size
}

// Extract decompresses length bytes starting offset bytes into the
// uncompressed data, resuming from the nearest checkpoint at or before
// offset. A request reaching past the end returns the available bytes and
// io.EOF, as does an offset at or past the end.
func (x *Index) Extract(data []byte, offset, length int64) ([]byte, error) {
	if xxhash.Sum64(data) != x.sum {
		return nil, ErrMismatch
	}
	if offset < 0 || length < 0 {
		return nil, errors.New("zidx: negative offset or length")
	}
	if offset >= x.size {
		return nil, io.EOF
	}

	pt := x.points[0]
	for _, p := range x.points[1:] {
		if p.out > offset {
			break
		}
		pt = p
	}
	plog.Debugf("extract [%d,%d) resuming at output offset %d", offset, offset+length, pt.out)

	// d.Out[0] corresponds to absolute output offset base.
	base := pt.out - int64(len(pt.window))
	d := flate.NewDecoderAt(data[2:], pt.bitpos, pt.window)
	end := offset + length
	for int64(len(d.Out))+base < end {
		final, err := d.Next()
		if err != nil {
			return nil, err
		}
		if final {
			break
		}
	}

	have := base + int64(len(d.Out))
	if have > end {
		have = end
	}
	out := append([]byte(nil), d.Out[offset-base:have-base]...)
	if have < end {
		return out, io.EOF
	}
	return out, nil
}
