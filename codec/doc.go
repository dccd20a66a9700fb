// Package codec implements the primitive layer of the NativeFormat metadata
// encoding: variable-length integers and a bounded cursor over a byte slice.
//
// Unsigned values use base-128 groups, least significant first, with bit 7 as
// the continuation flag:
//
//	buf := codec.AppendUnsigned(nil, 624485) // e5 8e 26
//	v, next, err := codec.DecodeUnsigned(buf, 0)
//
// Every decoder bounds its loop (5 bytes for 32-bit values, 10 for 64-bit)
// and reports ErrOverflow instead of scanning past the budget. Reader wraps
// failures in a PositionError carrying the offset.
package codec
