package metadata

import (
	"github.com/wippyai/nativeformat/codec"
)

// decoder reads the fields of one record. The first failure sticks and every
// later read returns a zero value, so record decoders read straight through
// and check d.err once.
type decoder struct {
	err error
	r   codec.Reader
}

func (d *decoder) fail(err error) {
	if d.err == nil && err != nil {
		d.err = err
	}
}

func (d *decoder) u8() uint8 {
	if d.err != nil {
		return 0
	}
	v, err := d.r.ReadU8()
	d.fail(err)
	return v
}

func (d *decoder) u16() uint16 {
	if d.err != nil {
		return 0
	}
	v, err := d.r.ReadU16()
	d.fail(err)
	return v
}

func (d *decoder) u32() uint32 {
	if d.err != nil {
		return 0
	}
	v, err := d.r.ReadU32()
	d.fail(err)
	return v
}

func (d *decoder) blob() []byte {
	if d.err != nil {
		return nil
	}
	v, err := d.r.ReadBlob()
	d.fail(err)
	return v
}

func (d *decoder) str() string {
	if d.err != nil {
		return ""
	}
	v, err := d.r.ReadString()
	d.fail(err)
	return v
}

// readEnum reinterprets an unsigned value as an enum. Range checks belong to
// the consumer of the enum.
func readEnum[T ~uint8 | ~uint16 | ~uint32](d *decoder) T {
	return T(d.u32())
}

func readHandle(d *decoder) Handle {
	return Handle(d.u32())
}

func readTypedHandle[T TypedHandle](d *decoder) T {
	raw := readHandle(d)
	if d.err != nil {
		return 0
	}
	h, err := As[T](raw)
	d.fail(err)
	return h
}

// readHandles reads a count-prefixed handle array. A zero count returns nil.
func readHandles(d *decoder) []Handle {
	n := d.count()
	if n == 0 {
		return nil
	}
	out := make([]Handle, n)
	for i := range out {
		out[i] = readHandle(d)
	}
	if d.err != nil {
		return nil
	}
	return out
}

func readTypedHandles[T TypedHandle](d *decoder) []T {
	n := d.count()
	if n == 0 {
		return nil
	}
	out := make([]T, n)
	for i := range out {
		out[i] = readTypedHandle[T](d)
	}
	if d.err != nil {
		return nil
	}
	return out
}

func (d *decoder) count() int {
	if d.err != nil {
		return 0
	}
	n, err := d.r.ReadCount(1)
	d.fail(err)
	return n
}
