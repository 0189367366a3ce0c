// Package zlib decodes zlib-wrapped DEFLATE streams as specified in RFC
// 1950: a two-byte header, a DEFLATE payload, and a big-endian Adler-32
// checksum of the uncompressed data. Decoding is single-shot and in-memory;
// the flate package does the actual decompression.
package zlib

import (
	"errors"
	"hash/adler32"

	"github.com/coreos/inflate/flate"
)

// ErrHeader is returned when reading data whose header check bits do not
// validate.
var ErrHeader = errors.New("zlib: invalid header")

const (
	methodDeflate = 8
	flagDict      = 0x20
)

// A Header holds the decoded fields of a zlib stream header.
type Header struct {
	WindowSize int // LZ77 window size declared by the compressor
	Level      int // compression level hint, 0 (fastest) to 3 (best)
}

// ParseHeader validates the two-byte header at the start of data. The check
// bits must satisfy the mod-31 rule, the compression method must be
// DEFLATE, and the preset-dictionary flag must be clear; preset
// dictionaries are not supported.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < 2 {
		return nil, flate.ErrInputTooShort
	}
	cmf, flg := data[0], data[1]
	if (uint16(cmf)<<8|uint16(flg))%31 != 0 {
		return nil, ErrHeader
	}
	if cmf&0x0f != methodDeflate {
		return nil, flate.ErrUnsupported
	}
	if flg&flagDict != 0 {
		return nil, flate.ErrUnsupported
	}
	return &Header{
		WindowSize: 1 << (8 + cmf>>4),
		Level:      int(flg >> 6),
	}, nil
}

// Inflate decompresses a complete zlib stream held in data, returning the
// uncompressed bytes. The first violation found aborts decoding; no partial
// output is returned.
func Inflate(data []byte) ([]byte, error) {
	return InflateLimit(data, 0)
}

// InflateLimit is Inflate with a cap on the decompressed size: decoding
// fails with flate.ErrOutputOverflow as soon as the output would exceed
// limit bytes. A limit of zero means no cap.
func InflateLimit(data []byte, limit int) ([]byte, error) {
	if _, err := ParseHeader(data); err != nil {
		return nil, err
	}
	d := flate.NewDecoder(data[2:])
	d.Limit = limit
	for {
		final, err := d.Next()
		if err != nil {
			return nil, err
		}
		if final {
			break
		}
	}
	if err := checkTrailer(d); err != nil {
		return nil, err
	}
	return d.Out, nil
}

// checkTrailer reads the four checksum bytes that follow the final block
// and verifies them against the Adler-32 of the output.
func checkTrailer(d *flate.Decoder) error {
	d.Br.AlignToByte()
	var sum uint32
	for i := 0; i < 4; i++ {
		b, err := d.Br.ReadByte()
		if err != nil {
			return err
		}
		sum = sum<<8 | uint32(b)
	}
	if sum != adler32.Checksum(d.Out) {
		return flate.ErrBadBlockData
	}
	return nil
}
