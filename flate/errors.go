package flate

import "errors"

// The decode error set is closed: every way a stream can be rejected maps to
// one of these values.
var (
	// ErrInputTooShort is returned when the stream ends before a required
	// field was fully read.
	ErrInputTooShort = errors.New("flate: unexpected end of input")
	// ErrBadHuffmanCode is returned for code lengths that do not describe a
	// usable canonical code, and for coded symbols outside their alphabet.
	ErrBadHuffmanCode = errors.New("flate: invalid huffman code")
	// ErrBadBlockData is returned for structurally corrupt block contents,
	// such as a stored-block length check failure or a back-reference
	// reaching before the start of the output.
	ErrBadBlockData = errors.New("flate: corrupt block data")
	// ErrUnsupported is returned for well-formed input that asks for a
	// feature outside this decoder, such as the reserved block type.
	ErrUnsupported = errors.New("flate: unsupported stream feature")
	// ErrOutputOverflow is returned when decoding would exceed the caller's
	// output size cap.
	ErrOutputOverflow = errors.New("flate: output size limit exceeded")
)

// An InternalError reports misuse of the decoder itself rather than corrupt
// input.
type InternalError string

func (e InternalError) Error() string {
	return "flate: internal error: " + string(e)
}
