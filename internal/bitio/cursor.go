// Package bitio provides the endian-aware binary reader primitives shared by
// every container format in this module: the regulation cipher's plaintext,
// BND4 archives, and PARAM tables all read through a Cursor.
package bitio

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/scigolib/paramdex/internal/utils"
)

// Order selects the byte order used to interpret a multi-byte integer.
// BND4 and PARAM tables each carry their own endianness flag, so callers
// pass Order explicitly per read rather than fixing it for a whole Cursor.
type Order uint8

const (
	LittleEndian Order = iota
	BigEndian
)

func (o Order) byteOrder() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// nativeIsLittleEndian reports whether the host CPU is little-endian.
// Used only by ReadBitReversedByte, mirroring the original tool's
// compile-time target_endian check with a runtime equivalent.
var nativeIsLittleEndian = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// Cursor is a read-only view over an in-memory byte buffer with an
// advancing position, used to parse BND4/PARAM/DCX headers without copying
// the source buffer. Cursor never mutates the backing slice.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor creates a Cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the current read position.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the total length of the backing buffer.
func (c *Cursor) Len() int { return len(c.buf) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Bytes returns the whole backing buffer (not a copy). Callers must not
// mutate it.
func (c *Cursor) Bytes() []byte { return c.buf }

// SeekAbs moves the cursor to an absolute position.
func (c *Cursor) SeekAbs(pos int) error {
	if pos < 0 || pos > len(c.buf) {
		return utils.UnexpectedEOF("seek")
	}
	c.pos = pos
	return nil
}

// SeekRel moves the cursor by a relative offset.
func (c *Cursor) SeekRel(delta int) error {
	return c.SeekAbs(c.pos + delta)
}

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, utils.UnexpectedEOF("read")
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadFixed reads n raw bytes and advances the cursor. The returned slice
// aliases the backing buffer.
func (c *Cursor) ReadFixed(n int) ([]byte, error) {
	return c.take(n)
}

// ReadU8 reads an unsigned 8-bit integer.
func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadI8 reads a signed 8-bit integer.
func (c *Cursor) ReadI8() (int8, error) {
	v, err := c.ReadU8()
	return int8(v), err
}

// ReadU16 reads an unsigned 16-bit integer in the given byte order.
func (c *Cursor) ReadU16(order Order) (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return order.byteOrder().Uint16(b), nil
}

// ReadI16 reads a signed 16-bit integer in the given byte order.
func (c *Cursor) ReadI16(order Order) (int16, error) {
	v, err := c.ReadU16(order)
	return int16(v), err
}

// ReadU32 reads an unsigned 32-bit integer in the given byte order.
func (c *Cursor) ReadU32(order Order) (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return order.byteOrder().Uint32(b), nil
}

// ReadI32 reads a signed 32-bit integer in the given byte order.
func (c *Cursor) ReadI32(order Order) (int32, error) {
	v, err := c.ReadU32(order)
	return int32(v), err
}

// ReadU64 reads an unsigned 64-bit integer in the given byte order.
func (c *Cursor) ReadU64(order Order) (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return order.byteOrder().Uint64(b), nil
}

// ReadI64 reads a signed 64-bit integer in the given byte order.
func (c *Cursor) ReadI64(order Order) (int64, error) {
	v, err := c.ReadU64(order)
	return int64(v), err
}

// ReadCString reads a NUL-terminated ASCII/UTF-8 string, rejecting a string
// longer than utils.MaxStringSize so a missing terminator in corrupt input
// can't be read as an unbounded string.
func (c *Cursor) ReadCString() (string, error) {
	start := c.pos
	for {
		b, err := c.ReadU8()
		if err != nil {
			return "", utils.WrapError("reading cstring", err)
		}
		if b == 0 {
			if size := uint64(c.pos - 1 - start); size > 0 {
				if err := utils.ValidateBufferSize(size, utils.MaxStringSize, "string"); err != nil {
					return "", utils.WrapError("reading cstring", err)
				}
			}
			return string(c.buf[start : c.pos-1]), nil
		}
	}
}

// ReadWideCString reads a NUL-terminated UTF-16 string (two-byte NUL
// terminator) in the given byte order, rejecting a string longer than
// utils.MaxStringSize for the same reason as ReadCString.
func (c *Cursor) ReadWideCString(order Order) (string, error) {
	var units []uint16
	for {
		u, err := c.ReadU16(order)
		if err != nil {
			return "", utils.WrapError("reading wide cstring", err)
		}
		if u == 0 {
			if size := uint64(len(units)) * 2; size > 0 {
				if err := utils.ValidateBufferSize(size, utils.MaxStringSize, "string"); err != nil {
					return "", utils.WrapError("reading wide cstring", err)
				}
			}
			return string(utf16.Decode(units)), nil
		}
		units = append(units, u)
	}
}

// ReadBitReversedByte reads a single byte whose bits are stored in the
// platform's natural bit order for the given archive endianness: if the
// archive's declared order disagrees with the host's native order, the
// bits are reversed before being returned. This is used for the BND4
// `format` byte and per-file `flags` byte (§4.4).
func (c *Cursor) ReadBitReversedByte(order Order) (byte, error) {
	b, err := c.ReadU8()
	if err != nil {
		return 0, err
	}
	archiveIsLittleEndian := order == LittleEndian
	if archiveIsLittleEndian == nativeIsLittleEndian {
		return b, nil
	}
	return reverseBits(b), nil
}

func reverseBits(b byte) byte {
	var r byte
	for range 8 {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}

// At saves the current position, seeks to pos, runs fn, and restores the
// original position unconditionally — including when fn or the seek itself
// fails. This is the read-at-offset-then-restore primitive required by
// §4.1/§5 ("Scoped acquisition").
func At[T any](c *Cursor, pos int, fn func(*Cursor) (T, error)) (T, error) {
	saved := c.pos
	defer func() { c.pos = saved }()

	var zero T
	if err := c.SeekAbs(pos); err != nil {
		return zero, err
	}
	return fn(c)
}

// AtErr is the error-only variant of At, for side-effecting reads that
// don't need a return value (e.g. validating a reserved field in place).
func AtErr(c *Cursor, pos int, fn func(*Cursor) error) error {
	_, err := At(c, pos, func(c *Cursor) (struct{}, error) {
		return struct{}{}, fn(c)
	})
	return err
}
