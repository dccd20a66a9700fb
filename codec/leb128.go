package codec

import "errors"

// Variable-length integer encoding used by every NativeFormat record.
//
// Each byte carries 7 value bits in its low bits; bit 7 set means another
// byte follows. Groups are stored least significant first.

var (
	// ErrOverflow is returned when an encoding exceeds the byte budget of its width.
	ErrOverflow = errors.New("varint: overflow")
	// ErrTruncated is returned when the buffer ends inside an encoding.
	ErrTruncated = errors.New("varint: truncated")
)

const (
	// MaxLen32 is the longest valid encoding of a 32-bit value.
	MaxLen32 = 5
	// MaxLen64 is the longest valid encoding of a 64-bit value.
	MaxLen64 = 10
)

// DecodeUnsigned decodes an unsigned 32-bit value starting at off.
// It returns the value and the offset just past the encoding.
func DecodeUnsigned(buf []byte, off int) (uint32, int, error) {
	if off < 0 || off >= len(buf) {
		return 0, off, ErrTruncated
	}
	var result uint32
	var shift uint
	for i := 0; i < MaxLen32; i++ {
		if off+i >= len(buf) {
			return 0, off, ErrTruncated
		}
		b := buf[off+i]
		if i == MaxLen32-1 && b&0xf0 != 0 {
			// the fifth group holds only the top 4 bits
			return 0, off, ErrOverflow
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, off + i + 1, nil
		}
		shift += 7
	}
	return 0, off, ErrOverflow
}

// DecodeUnsigned64 decodes an unsigned 64-bit value starting at off.
func DecodeUnsigned64(buf []byte, off int) (uint64, int, error) {
	if off < 0 || off >= len(buf) {
		return 0, off, ErrTruncated
	}
	var result uint64
	var shift uint
	for i := 0; i < MaxLen64; i++ {
		if off+i >= len(buf) {
			return 0, off, ErrTruncated
		}
		b := buf[off+i]
		if i == MaxLen64-1 && b > 0x01 {
			return 0, off, ErrOverflow
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, off + i + 1, nil
		}
		shift += 7
	}
	return 0, off, ErrOverflow
}

// DecodeSigned decodes a signed 32-bit value starting at off.
func DecodeSigned(buf []byte, off int) (int32, int, error) {
	if off < 0 || off >= len(buf) {
		return 0, off, ErrTruncated
	}
	var result int32
	var shift uint
	var b byte
	n := 0
	for {
		if n == MaxLen32 {
			return 0, off, ErrOverflow
		}
		if off+n >= len(buf) {
			return 0, off, ErrTruncated
		}
		b = buf[off+n]
		n++
		result |= int32(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	// Sign extend
	if shift < 32 && b&0x40 != 0 {
		result |= ^int32(0) << shift
	}
	return result, off + n, nil
}

// DecodeSigned64 decodes a signed 64-bit value starting at off.
func DecodeSigned64(buf []byte, off int) (int64, int, error) {
	if off < 0 || off >= len(buf) {
		return 0, off, ErrTruncated
	}
	var result int64
	var shift uint
	var b byte
	n := 0
	for {
		if n == MaxLen64 {
			return 0, off, ErrOverflow
		}
		if off+n >= len(buf) {
			return 0, off, ErrTruncated
		}
		b = buf[off+n]
		n++
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= ^int64(0) << shift
	}
	return result, off + n, nil
}

// AppendUnsigned appends the encoding of v to dst.
func AppendUnsigned(dst []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
		if v == 0 {
			return dst
		}
	}
}

// AppendUnsigned64 appends the encoding of a 64-bit v to dst.
func AppendUnsigned64(dst []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
		if v == 0 {
			return dst
		}
	}
}

// AppendSigned appends the encoding of a signed v to dst.
func AppendSigned(dst []byte, v int32) []byte {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}

// AppendSigned64 appends the encoding of a signed 64-bit v to dst.
func AppendSigned64(dst []byte, v int64) []byte {
	more := true
	for more {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			more = false
		} else {
			b |= 0x80
		}
		dst = append(dst, b)
	}
	return dst
}

// EncodeUnsigned returns the encoding of v.
func EncodeUnsigned(v uint32) []byte {
	return AppendUnsigned(make([]byte, 0, MaxLen32), v)
}

// EncodeUnsigned64 returns the encoding of a 64-bit v.
func EncodeUnsigned64(v uint64) []byte {
	return AppendUnsigned64(make([]byte, 0, MaxLen64), v)
}

// EncodedLen returns the number of bytes AppendUnsigned writes for v.
func EncodedLen(v uint32) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
