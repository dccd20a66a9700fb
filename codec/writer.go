package codec

import (
	"encoding/binary"
)

// Writer appends NativeFormat primitives to a growing buffer.
type Writer struct {
	buf []byte
}

// NewWriter creates a Writer with the given capacity hint.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reset truncates the buffer, keeping its storage.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// WriteByte writes a single byte.
func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

// WriteBool writes 1 or 0.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteU32 writes an unsigned varint.
func (w *Writer) WriteU32(v uint32) {
	w.buf = AppendUnsigned(w.buf, v)
}

// WriteU64 writes an unsigned 64-bit varint.
func (w *Writer) WriteU64(v uint64) {
	w.buf = AppendUnsigned64(w.buf, v)
}

// WriteS32 writes a signed varint.
func (w *Writer) WriteS32(v int32) {
	w.buf = AppendSigned(w.buf, v)
}

// WriteS64 writes a signed 64-bit varint.
func (w *Writer) WriteS64(v int64) {
	w.buf = AppendSigned64(w.buf, v)
}

// WriteBytes writes raw bytes with no prefix.
func (w *Writer) WriteBytes(data []byte) {
	w.buf = append(w.buf, data...)
}

// WriteBlob writes a count-prefixed byte sequence.
func (w *Writer) WriteBlob(data []byte) {
	w.WriteU32(uint32(len(data)))
	w.buf = append(w.buf, data...)
}

// WriteString writes a count-prefixed UTF-8 string.
func (w *Writer) WriteString(s string) {
	w.WriteU32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteU32LE writes a little-endian uint32 (fixed 4 bytes).
func (w *Writer) WriteU32LE(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}
