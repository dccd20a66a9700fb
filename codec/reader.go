package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned by ReadString for malformed string payloads.
var ErrInvalidUTF8 = errors.New("invalid UTF-8 in string")

// Reader decodes primitives from an immutable byte slice at a moving offset.
// It is a small value type; copy it to fork a cursor.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader positioned at off.
func NewReader(data []byte, off int) Reader {
	return Reader{data: data, pos: off}
}

// Offset returns the current byte position.
func (r *Reader) Offset() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	if r.pos >= len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos < 0 || r.pos >= len(r.data) {
		return 0, r.wrapError(ErrTruncated)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBool reads a byte that must be 0 or 1.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, r.wrapError(fmt.Errorf("invalid bool byte 0x%02x", b))
}

// ReadU32 reads an unsigned varint.
func (r *Reader) ReadU32() (uint32, error) {
	v, next, err := DecodeUnsigned(r.data, r.pos)
	if err != nil {
		return 0, r.wrapError(err)
	}
	r.pos = next
	return v, nil
}

// ReadU16 reads an unsigned varint that must fit in 16 bits.
func (r *Reader) ReadU16() (uint16, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	if v > 0xffff {
		return 0, r.wrapError(fmt.Errorf("%w: %d exceeds u16", ErrOverflow, v))
	}
	return uint16(v), nil
}

// ReadU8 reads an unsigned varint that must fit in 8 bits.
func (r *Reader) ReadU8() (uint8, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	if v > 0xff {
		return 0, r.wrapError(fmt.Errorf("%w: %d exceeds u8", ErrOverflow, v))
	}
	return uint8(v), nil
}

// ReadU64 reads an unsigned 64-bit varint.
func (r *Reader) ReadU64() (uint64, error) {
	v, next, err := DecodeUnsigned64(r.data, r.pos)
	if err != nil {
		return 0, r.wrapError(err)
	}
	r.pos = next
	return v, nil
}

// ReadS32 reads a signed varint.
func (r *Reader) ReadS32() (int32, error) {
	v, next, err := DecodeSigned(r.data, r.pos)
	if err != nil {
		return 0, r.wrapError(err)
	}
	r.pos = next
	return v, nil
}

// ReadS64 reads a signed 64-bit varint.
func (r *Reader) ReadS64() (int64, error) {
	v, next, err := DecodeSigned64(r.data, r.pos)
	if err != nil {
		return 0, r.wrapError(err)
	}
	r.pos = next
	return v, nil
}

// ReadCount reads an element count for a sequence whose elements take at
// least minElem bytes each. Counts that cannot fit in the rest of the buffer
// are rejected before any allocation happens.
func (r *Reader) ReadCount(minElem int) (int, error) {
	n, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	if minElem < 1 {
		minElem = 1
	}
	if uint64(n)*uint64(minElem) > uint64(r.Remaining()) {
		return 0, r.wrapError(fmt.Errorf("%w: count %d exceeds remaining %d bytes", ErrOverflow, n, r.Remaining()))
	}
	return int(n), nil
}

// ReadBytes returns the next n bytes without copying.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, r.wrapError(ErrTruncated)
	}
	b := r.data[r.pos : r.pos+n : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadBlob reads a count-prefixed byte sequence. Empty blobs return nil.
func (r *Reader) ReadBlob() ([]byte, error) {
	n, err := r.ReadCount(1)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return r.ReadBytes(n)
}

// ReadString reads a count-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	data, err := r.ReadBlob()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", r.wrapError(ErrInvalidUTF8)
	}
	return string(data), nil
}

// ReadU32LE reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32LE() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

func (r *Reader) wrapError(err error) error {
	return &PositionError{Position: r.pos, Err: err}
}

// PositionError carries the offset at which decoding failed.
type PositionError struct {
	Err      error
	Position int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("at position %d: %v", e.Position, e.Err)
}

func (e *PositionError) Unwrap() error {
	return e.Err
}
