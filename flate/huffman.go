package flate

const (
	// maxCodeBits is the longest code length DEFLATE permits.
	maxCodeBits = 15

	// Table entries pack the decoded symbol and its code length into one
	// word: symbol<<huffValueShift | length. Zero marks a peek value with no
	// assigned code.
	huffCountMask  = 15
	huffValueShift = 4
)

// A HuffmanTable resolves one canonical Huffman code per lookup. The table
// is indexed by a maxBits-wide LSB-first peek; codes shorter than maxBits
// appear at every peek value sharing their low bits, so a single lookup
// settles both the symbol and how many bits it spent.
type HuffmanTable struct {
	maxBits uint
	table   []uint32
}

// NewHuffmanTable builds a decode table from the per-symbol code lengths of
// a canonical code, assigning code values by the RFC 1951 section 3.2.2
// recurrence. Lengths over 15 are rejected, as are length multisets that
// over- or under-subscribe the code space. Alphabets with at most one code
// are the exception: DEFLATE emits those for sparsely used distance
// alphabets, and the unassigned part of the code space simply stays
// undecodable.
func NewHuffmanTable(lengths []byte) (*HuffmanTable, error) {
	var count [maxCodeBits + 1]int
	var maxBits uint
	ncodes := 0
	for _, n := range lengths {
		if n == 0 {
			continue
		}
		if uint(n) > maxCodeBits {
			return nil, ErrBadHuffmanCode
		}
		if uint(n) > maxBits {
			maxBits = uint(n)
		}
		count[n]++
		ncodes++
	}
	if maxBits == 0 {
		maxBits = 1
	}

	// left counts the code values still available at each length; going
	// negative means the lengths oversubscribe the code space, ending
	// positive means the code is incomplete.
	left := 1
	for i := uint(1); i <= maxBits; i++ {
		left <<= 1
		left -= count[i]
		if left < 0 {
			return nil, ErrBadHuffmanCode
		}
	}
	if left > 0 && ncodes > 1 {
		return nil, ErrBadHuffmanCode
	}

	// Smallest canonical code value per length.
	var nextcode [maxCodeBits + 1]uint32
	code := uint32(0)
	for i := uint(1); i <= maxBits; i++ {
		code = (code + uint32(count[i-1])) << 1
		nextcode[i] = code
	}

	h := &HuffmanTable{maxBits: maxBits, table: make([]uint32, 1<<maxBits)}
	for sym, n := range lengths {
		if n == 0 {
			continue
		}
		width := uint(n)
		c := nextcode[width]
		nextcode[width]++
		// Codes travel MSB-first on the wire but the BitReader delivers
		// bits LSB-first, so the bit-reversed code value is what a peek
		// actually produces.
		rev := reverseBits(c, width)
		entry := uint32(sym)<<huffValueShift | uint32(width)
		for off := rev; off < uint32(len(h.table)); off += 1 << width {
			h.table[off] = entry
		}
	}
	return h, nil
}

// ReadSymbol decodes the next symbol from br.
func (h *HuffmanTable) ReadSymbol(br *BitReader) (int, error) {
	v, err := br.PeekBits(h.maxBits)
	if err != nil {
		// The final code of a stream may be followed by fewer than maxBits
		// bits. The missing high bits of the peek are zero either way.
		n := br.available()
		if n == 0 {
			return 0, ErrInputTooShort
		}
		v, _ = br.PeekBits(n)
	}
	entry := h.table[v]
	if entry == 0 {
		return 0, ErrBadHuffmanCode
	}
	if _, err := br.ReadBits(uint(entry & huffCountMask)); err != nil {
		return 0, err
	}
	return int(entry >> huffValueShift), nil
}

func reverseBits(v uint32, width uint) uint32 {
	var r uint32
	for i := uint(0); i < width; i++ {
		r = r<<1 | v&1
		v >>= 1
	}
	return r
}
