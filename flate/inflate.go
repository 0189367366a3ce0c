// Package flate implements a single-shot, in-memory decoder for the DEFLATE
// compressed data format described in RFC 1951. The zlib package wraps it
// with RFC 1950 framing; the zidx package builds random-access indexes on
// top of it.
package flate

// Length and distance code resolution, RFC 1951 section 3.2.5. A
// literal/length symbol of 257+i selects lengthBase[i] plus lengthExtra[i]
// further bits; a distance symbol of i selects distBase[i] plus
// distExtra[i] further bits.
var (
	lengthBase = [29]int{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
	lengthExtra = [29]uint{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	}
	distBase = [30]int{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
	}
	distExtra = [30]uint{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
)

// codeOrder is the order in which code lengths of the code length alphabet
// are transmitted, RFC 1951 section 3.2.7.
var codeOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// A Decoder holds the state of one in-progress DEFLATE decode. Br and Out
// are exported so that callers such as zidx can record block-boundary
// positions between Next calls and later resume from them.
type Decoder struct {
	Br  *BitReader
	Out []byte

	// Limit caps the number of output bytes; zero means no cap.
	Limit int
}

// NewDecoder returns a Decoder positioned at the start of a raw DEFLATE
// stream.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{Br: NewBitReader(data)}
}

// NewDecoderAt returns a Decoder resuming at a block boundary bitpos bits
// into data, with window seeding the back-reference history produced before
// that boundary.
func NewDecoderAt(data []byte, bitpos int64, window []byte) *Decoder {
	return &Decoder{
		Br:  NewBitReaderAt(data, bitpos),
		Out: append([]byte(nil), window...),
	}
}

// Inflate decompresses a complete raw DEFLATE stream held in data.
func Inflate(data []byte) ([]byte, error) {
	return InflateLimit(data, 0)
}

// InflateLimit is Inflate with a cap on the decompressed size: decoding
// fails with ErrOutputOverflow as soon as the output would exceed limit
// bytes. A limit of zero means no cap.
func InflateLimit(data []byte, limit int) ([]byte, error) {
	d := NewDecoder(data)
	d.Limit = limit
	for {
		final, err := d.Next()
		if err != nil {
			return nil, err
		}
		if final {
			return d.Out, nil
		}
	}
}

// Next decodes one block and reports whether it carried the final-block
// flag. Bits beyond the final block are left unread.
func (d *Decoder) Next() (bool, error) {
	bfinal, err := d.Br.ReadBits(1)
	if err != nil {
		return false, err
	}
	btype, err := d.Br.ReadBits(2)
	if err != nil {
		return false, err
	}
	switch btype {
	case 0:
		err = d.storedBlock()
	case 1:
		err = d.huffmanBlock(fixedLitLen, fixedDist)
	case 2:
		litlen, dist, terr := d.readTables()
		if terr != nil {
			return false, terr
		}
		err = d.huffmanBlock(litlen, dist)
	default:
		// block type 3 is reserved
		err = ErrUnsupported
	}
	if err != nil {
		return false, err
	}
	return bfinal == 1, nil
}

func (d *Decoder) grow(n int) error {
	if d.Limit > 0 && len(d.Out)+n > d.Limit {
		return ErrOutputOverflow
	}
	return nil
}

// storedBlock copies a literal run: byte alignment, then LEN and its ones'
// complement NLEN, then LEN raw bytes.
func (d *Decoder) storedBlock() error {
	d.Br.AlignToByte()
	length, err := d.readUint16()
	if err != nil {
		return err
	}
	nlength, err := d.readUint16()
	if err != nil {
		return err
	}
	if nlength != ^length {
		return ErrBadBlockData
	}
	if err := d.grow(int(length)); err != nil {
		return err
	}
	for i := 0; i < int(length); i++ {
		b, err := d.Br.ReadByte()
		if err != nil {
			return err
		}
		d.Out = append(d.Out, b)
	}
	return nil
}

// readUint16 reads a little-endian 16-bit field from a byte-aligned stream.
func (d *Decoder) readUint16() (uint16, error) {
	lo, err := d.Br.ReadByte()
	if err != nil {
		return 0, err
	}
	hi, err := d.Br.ReadByte()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// readTables decodes a dynamic block's table definition: HLIT, HDIST and
// HCLEN, the code length alphabet in codeOrder, and then the combined
// literal/length plus distance code length vector it encodes, RFC 1951
// section 3.2.7.
func (d *Decoder) readTables() (litlen, dist *HuffmanTable, err error) {
	hlit, err := d.Br.ReadBits(5)
	if err != nil {
		return nil, nil, err
	}
	hdist, err := d.Br.ReadBits(5)
	if err != nil {
		return nil, nil, err
	}
	hclen, err := d.Br.ReadBits(4)
	if err != nil {
		return nil, nil, err
	}
	nlit := int(hlit) + 257
	ndist := int(hdist) + 1
	nclen := int(hclen) + 4

	var clens [19]byte
	for i := 0; i < nclen; i++ {
		v, err := d.Br.ReadBits(3)
		if err != nil {
			return nil, nil, err
		}
		clens[codeOrder[i]] = byte(v)
	}
	cl, err := NewHuffmanTable(clens[:])
	if err != nil {
		return nil, nil, err
	}

	// The two length vectors are decoded as one: a repeat-previous code may
	// begin the distance run, and its predecessor then lives at the tail of
	// the literal/length run.
	lens := make([]byte, nlit+ndist)
	for i := 0; i < len(lens); {
		sym, err := cl.ReadSymbol(d.Br)
		if err != nil {
			return nil, nil, err
		}
		var rep int
		var fill byte
		switch {
		case sym < 16:
			lens[i] = byte(sym)
			i++
			continue
		case sym == 16:
			if i == 0 {
				return nil, nil, ErrBadHuffmanCode
			}
			if rep, err = d.repeat(2, 3); err != nil {
				return nil, nil, err
			}
			fill = lens[i-1]
		case sym == 17:
			if rep, err = d.repeat(3, 3); err != nil {
				return nil, nil, err
			}
		default: // 18
			if rep, err = d.repeat(7, 11); err != nil {
				return nil, nil, err
			}
		}
		if i+rep > len(lens) {
			return nil, nil, ErrBadHuffmanCode
		}
		for ; rep > 0; rep-- {
			lens[i] = fill
			i++
		}
	}

	if litlen, err = NewHuffmanTable(lens[:nlit]); err != nil {
		return nil, nil, err
	}
	if dist, err = NewHuffmanTable(lens[nlit:]); err != nil {
		return nil, nil, err
	}
	return litlen, dist, nil
}

// repeat reads the extra-bit count of a run-length code and returns the run.
func (d *Decoder) repeat(bits uint, base int) (int, error) {
	v, err := d.Br.ReadBits(bits)
	if err != nil {
		return 0, err
	}
	return base + int(v), nil
}

// huffmanBlock runs the literal/length symbol loop until the end-of-block
// code.
func (d *Decoder) huffmanBlock(litlen, dist *HuffmanTable) error {
	for {
		sym, err := litlen.ReadSymbol(d.Br)
		if err != nil {
			return err
		}
		switch {
		case sym < 256:
			if err := d.grow(1); err != nil {
				return err
			}
			d.Out = append(d.Out, byte(sym))
		case sym == 256:
			return nil
		case sym <= 285:
			if err := d.copyMatch(sym, dist); err != nil {
				return err
			}
		default:
			// 286 and 287 have fixed-table codes but never appear in a
			// valid stream
			return ErrBadHuffmanCode
		}
	}
}

// copyMatch resolves one length/distance pair and replays length bytes from
// distance positions back in the output. The byte-at-a-time append makes a
// copy observe its own output, so a distance shorter than the length
// extends a run.
func (d *Decoder) copyMatch(sym int, dist *HuffmanTable) error {
	extra, err := d.Br.ReadBits(lengthExtra[sym-257])
	if err != nil {
		return err
	}
	length := lengthBase[sym-257] + int(extra)

	dsym, err := dist.ReadSymbol(d.Br)
	if err != nil {
		return err
	}
	if dsym > 29 {
		return ErrBadHuffmanCode
	}
	extra, err = d.Br.ReadBits(distExtra[dsym])
	if err != nil {
		return err
	}
	distance := distBase[dsym] + int(extra)
	if distance > len(d.Out) {
		return ErrBadBlockData
	}
	if err := d.grow(length); err != nil {
		return err
	}
	for i := 0; i < length; i++ {
		d.Out = append(d.Out, d.Out[len(d.Out)-distance])
	}
	return nil
}
