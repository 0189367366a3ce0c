package zlib_test

import (
	"bytes"
	stdzlib "compress/zlib"
	"fmt"
	"testing"

	"github.com/coreos/inflate/flate"
	"github.com/coreos/inflate/zlib"
)

func compress(t *testing.T, data []byte, level int) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := stdzlib.NewWriterLevel(&buf, level)
	if err != nil {
		t.Fatalf("NewWriterLevel: %v", err)
	}
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func pseudorandom(n int) []byte {
	b := make([]byte, n)
	s := uint32(1)
	for i := range b {
		s = s*1664525 + 1013904223
		b[i] = byte(s >> 24)
	}
	return b
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		level   int
	}{
		{"empty", nil, stdzlib.DefaultCompression},
		{"stored", []byte("AAAA"), stdzlib.NoCompression},
		{"fox", []byte("The quick brown fox jumps over the lazy dog"), stdzlib.DefaultCompression},
		{"repetitive", bytes.Repeat([]byte("Hello WORLD '123456' ABCDEFGHIJKLMNOPQRSTUVWXYZ\n"), 1000), stdzlib.DefaultCompression},
		{"repetitive-best", bytes.Repeat([]byte("Hello WORLD '123456' ABCDEFGHIJKLMNOPQRSTUVWXYZ\n"), 1000), stdzlib.BestCompression},
		{"incompressible", pseudorandom(100000), stdzlib.BestCompression},
		{"incompressible-fast", pseudorandom(100000), stdzlib.BestSpeed},
	}
	for _, tt := range tests {
		c := compress(t, tt.payload, tt.level)
		out, err := zlib.Inflate(c)
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if !bytes.Equal(out, tt.payload) {
			t.Errorf("%s: output differs", tt.name)
		}
		// decoding is a pure function of the input
		again, err := zlib.Inflate(c)
		if err != nil || !bytes.Equal(again, out) {
			t.Errorf("%s: second decode differs (err=%v)", tt.name, err)
		}
	}
}

func TestParseHeader(t *testing.T) {
	h, err := zlib.ParseHeader([]byte{0x78, 0x9c})
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.WindowSize != 32768 {
		t.Errorf("WindowSize = %d, want 32768", h.WindowSize)
	}
	if h.Level != 2 {
		t.Errorf("Level = %d, want 2", h.Level)
	}
}

// Every (CMF, FLG) pair failing the mod-31 check is rejected before anything
// else is looked at.
func TestHeaderCheckBits(t *testing.T) {
	payload := []byte{0, 0, 0, 0, 0, 0}
	for cmf := 0; cmf < 256; cmf++ {
		for flg := 0; flg < 256; flg++ {
			if (uint16(cmf)<<8|uint16(flg))%31 == 0 {
				continue
			}
			data := append([]byte{byte(cmf), byte(flg)}, payload...)
			if _, err := zlib.Inflate(data); err != zlib.ErrHeader {
				t.Fatalf("cmf=%#x flg=%#x: err = %v, want ErrHeader", cmf, flg, err)
			}
		}
	}
}

func TestHeaderUnsupported(t *testing.T) {
	// valid check bits, compression method 9
	if _, err := zlib.Inflate([]byte{0x79, 0x18, 0, 0, 0, 0}); err != flate.ErrUnsupported {
		t.Errorf("bad method: err = %v, want ErrUnsupported", err)
	}
	// valid check bits, preset dictionary requested
	if _, err := zlib.Inflate([]byte{0x78, 0x20, 0, 0, 0, 0}); err != flate.ErrUnsupported {
		t.Errorf("FDICT: err = %v, want ErrUnsupported", err)
	}
}

func TestShortInput(t *testing.T) {
	for _, data := range [][]byte{nil, {0x78}} {
		if _, err := zlib.Inflate(data); err != flate.ErrInputTooShort {
			t.Errorf("%v: err = %v, want ErrInputTooShort", data, err)
		}
	}
}

func TestChecksumMismatch(t *testing.T) {
	c := compress(t, []byte("The quick brown fox jumps over the lazy dog"), stdzlib.DefaultCompression)
	c[len(c)-1] ^= 0xff
	if _, err := zlib.Inflate(c); err != flate.ErrBadBlockData {
		t.Fatalf("err = %v, want ErrBadBlockData", err)
	}
}

func TestTruncation(t *testing.T) {
	c := compress(t, []byte("The quick brown fox jumps over the lazy dog"), stdzlib.DefaultCompression)
	for cut := 1; cut < len(c); cut++ {
		if out, err := zlib.Inflate(c[:len(c)-cut]); err == nil {
			t.Errorf("cut %d bytes: decoded %d bytes, expected an error", cut, len(out))
		}
	}
}

func TestOutputLimit(t *testing.T) {
	payload := bytes.Repeat([]byte("y"), 4096)
	c := compress(t, payload, stdzlib.DefaultCompression)
	if _, err := zlib.InflateLimit(c, 100); err != flate.ErrOutputOverflow {
		t.Fatalf("err = %v, want ErrOutputOverflow", err)
	}
	if out, err := zlib.InflateLimit(c, len(payload)); err != nil || !bytes.Equal(out, payload) {
		t.Fatalf("exact limit: err = %v", err)
	}
}

func ExampleInflate() {
	var b bytes.Buffer
	w := stdzlib.NewWriter(&b)
	w.Write([]byte("hello, hello, hello"))
	w.Close()

	out, err := zlib.Inflate(b.Bytes())
	if err != nil {
		panic(err)
	}
	fmt.Printf("%s\n", out)
	// Output: hello, hello, hello
}
