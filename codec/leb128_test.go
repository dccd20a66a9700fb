package codec_test

import (
	"bytes"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/wippyai/nativeformat/codec"
)

func TestUnsigned(t *testing.T) {
	tests := []struct {
		encoded []byte
		value   uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xff, 0x01}, 255},
		{[]byte{0x80, 0x02}, 256},
		{[]byte{0xff, 0x7f}, 16383},
		{[]byte{0x80, 0x80, 0x01}, 16384},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
		{[]byte{0x80, 0x80, 0x80, 0x08}, 0x01000000},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			got := codec.EncodeUnsigned(tt.value)
			if !bytes.Equal(got, tt.encoded) {
				t.Errorf("encode %d: got %v, want %v", tt.value, got, tt.encoded)
			}
			if n := codec.EncodedLen(tt.value); n != len(tt.encoded) {
				t.Errorf("EncodedLen(%d) = %d, want %d", tt.value, n, len(tt.encoded))
			}

			v, next, err := codec.DecodeUnsigned(tt.encoded, 0)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if v != tt.value {
				t.Errorf("decode: got %d, want %d", v, tt.value)
			}
			if next != len(tt.encoded) {
				t.Errorf("decode consumed %d bytes, want %d", next, len(tt.encoded))
			}
		})
	}
}

func TestUnsignedRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	values := []uint32{0, 1, 0x7f, 0x80, 0x3fff, 0x4000, 0x1fffff, 0x200000, 0x0fffffff, 0x10000000, math.MaxUint32}
	for range 2000 {
		values = append(values, rng.Uint32()>>rng.UintN(32))
	}

	// Prefix and suffix bytes make sure decoding honours the offset and stops exactly.
	for _, v := range values {
		buf := []byte{0xaa}
		buf = codec.AppendUnsigned(buf, v)
		end := len(buf)
		buf = append(buf, 0xff, 0xff)

		got, next, err := codec.DecodeUnsigned(buf, 1)
		if err != nil {
			t.Fatalf("decode %d: %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip %d: got %d", v, got)
		}
		if next != end {
			t.Fatalf("value %d: next = %d, want %d", v, next, end)
		}
	}
}

func TestUnsigned64RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, math.MaxUint32, math.MaxUint32 + 1, 1 << 56, math.MaxUint64}
	for _, v := range values {
		buf := codec.EncodeUnsigned64(v)
		got, next, err := codec.DecodeUnsigned64(buf, 0)
		if err != nil {
			t.Fatalf("decode %d: %v", v, err)
		}
		if got != v || next != len(buf) {
			t.Errorf("round trip %d: got %d, consumed %d of %d", v, got, next, len(buf))
		}
	}
	if len(codec.EncodeUnsigned64(math.MaxUint64)) != codec.MaxLen64 {
		t.Errorf("max uint64 should take %d bytes", codec.MaxLen64)
	}
}

func TestSignedRoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 63, 64, -64, -65, 127, -128, math.MaxInt32, math.MinInt32}
	for _, v := range values {
		buf := codec.AppendSigned(nil, v)
		got, next, err := codec.DecodeSigned(buf, 0)
		if err != nil {
			t.Fatalf("decode %d: %v", v, err)
		}
		if got != v || next != len(buf) {
			t.Errorf("round trip %d: got %d, consumed %d of %d", v, got, next, len(buf))
		}
	}

	values64 := []int64{0, -1, math.MaxInt64, math.MinInt64, 1 << 40, -(1 << 40)}
	for _, v := range values64 {
		buf := codec.AppendSigned64(nil, v)
		got, next, err := codec.DecodeSigned64(buf, 0)
		if err != nil {
			t.Fatalf("decode %d: %v", v, err)
		}
		if got != v || next != len(buf) {
			t.Errorf("round trip %d: got %d, consumed %d of %d", v, got, next, len(buf))
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		off  int
		want error
	}{
		{"empty", nil, 0, codec.ErrTruncated},
		{"offset past end", []byte{0x01}, 1, codec.ErrTruncated},
		{"negative offset", []byte{0x01}, -1, codec.ErrTruncated},
		{"unterminated", []byte{0x80, 0x80}, 0, codec.ErrTruncated},
		{"continuation never clears", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, 0, codec.ErrOverflow},
		{"fifth byte too wide", []byte{0xff, 0xff, 0xff, 0xff, 0x1f}, 0, codec.ErrOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, next, err := codec.DecodeUnsigned(tt.data, tt.off)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if next != tt.off {
				t.Errorf("failed decode moved offset to %d", next)
			}
		})
	}

	long := bytes.Repeat([]byte{0x80}, 20)
	if _, _, err := codec.DecodeUnsigned64(long, 0); !errors.Is(err, codec.ErrOverflow) {
		t.Errorf("DecodeUnsigned64: got %v, want overflow", err)
	}
	if _, _, err := codec.DecodeSigned(long, 0); !errors.Is(err, codec.ErrOverflow) {
		t.Errorf("DecodeSigned: got %v, want overflow", err)
	}
	if _, _, err := codec.DecodeSigned64(long, 0); !errors.Is(err, codec.ErrOverflow) {
		t.Errorf("DecodeSigned64: got %v, want overflow", err)
	}
}
