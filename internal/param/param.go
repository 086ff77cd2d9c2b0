// Package param reads PARAM table files: the row-oriented, schema-less data
// tables embedded in a BND4 archive (regulation.bin) or standalone on disk.
// A PARAM file is a header plus a row directory plus the raw row bytes;
// interpreting those bytes requires a paramdef layout from the schema
// package (§4.5/§4.7).
package param

import (
	"bytes"

	"github.com/scigolib/paramdex/internal/bitio"
	"github.com/scigolib/paramdex/internal/utils"
)

// Header is the PARAM file preamble. Several fields are only meaningful for
// certain format_flags_2d combinations, matching the on-disk layout's own
// conditional structure (§4.5).
type Header struct {
	StringsOffset       uint32
	ShortDataOffset     uint16
	Unk06               uint16
	ParamdefDataVersion uint16
	RowCount            uint16
	ParamType           string
	BigEndian           bool
	FormatFlags2D       uint8
	Is64Bit             bool
	IsUnicode           bool
	ParamdefVersion     uint8
	DataOffset          *uint64
}

// Row is one PARAM table entry: an ID, an optional name (present only when
// the row directory carries a valid name offset), and the row's raw bytes.
// Interpreting Data requires a matching paramdef layout.
type Row struct {
	ID   uint32
	Name string
	Data []byte
}

// Table is a fully parsed PARAM file.
type Table struct {
	Header Header
	// RowSize is the per-row byte width inferred from the gap between the
	// first two rows' data offsets. Present only when RowCount >= 2 — a
	// single-row table has no gap to measure, so its row is read out to
	// the end of the buffer instead (§4.5 edge case).
	RowSize *uint64
	Rows    []Row
}

func endianOf(bigEndian bool) bitio.Order {
	if bigEndian {
		return bitio.BigEndian
	}
	return bitio.LittleEndian
}

func cStringFromFixed(raw []byte) string {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		return string(raw[:i])
	}
	return string(raw)
}

// readHeader parses the PARAM header and leaves c positioned at the start
// of the row directory.
func readHeader(c *bitio.Cursor) (*Header, error) {
	bigEndianByte, err := bitio.At(c, 0x2C, func(c *bitio.Cursor) (byte, error) { return c.ReadU8() })
	if err != nil {
		return nil, utils.WrapError("param big_endian flag", err)
	}
	bigEndian := bigEndianByte != 0
	order := endianOf(bigEndian)

	f2d, err := bitio.At(c, 0x2D, func(c *bitio.Cursor) (byte, error) { return c.ReadU8() })
	if err != nil {
		return nil, utils.WrapError("param format_flags_2d", err)
	}

	if err := c.SeekAbs(0); err != nil {
		return nil, err
	}

	h := &Header{BigEndian: bigEndian, FormatFlags2D: f2d, Is64Bit: f2d&4 != 0}

	if h.StringsOffset, err = c.ReadU32(order); err != nil {
		return nil, err
	}
	if h.ShortDataOffset, err = c.ReadU16(order); err != nil {
		return nil, err
	}
	if h.Unk06, err = c.ReadU16(order); err != nil {
		return nil, err
	}
	if h.ParamdefDataVersion, err = c.ReadU16(order); err != nil {
		return nil, err
	}
	if h.RowCount, err = c.ReadU16(order); err != nil {
		return nil, err
	}

	if f2d&0x80 != 0 {
		if err := c.SeekRel(4); err != nil { // padding before the extended name pointer
			return nil, err
		}
		nameOffset, err := c.ReadU64(order)
		if err != nil {
			return nil, err
		}
		h.ParamType, err = bitio.At(c, int(nameOffset), func(c *bitio.Cursor) (string, error) { return c.ReadCString() })
		if err != nil {
			return nil, utils.WrapError("param param_type", err)
		}
		if err := c.SeekRel(0x14); err != nil { // trailing padding
			return nil, err
		}
	} else {
		raw, err := c.ReadFixed(0x20)
		if err != nil {
			return nil, err
		}
		h.ParamType = cStringFromFixed(raw)
	}

	// These two bytes were already peeked above; re-read them sequentially
	// now that the cursor has caught up to offset 0x2C/0x2D.
	if _, err := c.ReadU8(); err != nil {
		return nil, err
	}
	if _, err := c.ReadU8(); err != nil {
		return nil, err
	}

	unicodeByte, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	h.IsUnicode = unicodeByte&1 != 0

	if h.ParamdefVersion, err = c.ReadU8(); err != nil {
		return nil, err
	}

	switch {
	case f2d&3 == 3:
		d, err := c.ReadU32(order)
		if err != nil {
			return nil, err
		}
		v := uint64(d)
		h.DataOffset = &v
		if err := c.SeekRel(12); err != nil {
			return nil, err
		}
	case f2d&4 != 0:
		v, err := c.ReadU64(order)
		if err != nil {
			return nil, err
		}
		h.DataOffset = &v
		if err := c.SeekRel(8); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// Read parses a PARAM table from data.
func Read(data []byte) (*Table, error) {
	c := bitio.NewCursor(data)
	header, err := readHeader(c)
	if err != nil {
		return nil, utils.WrapError("param header", err)
	}
	order := endianOf(header.BigEndian)
	rowsStart := c.Pos()

	rowSize, err := inferRowSize(c, header, order, rowsStart)
	if err != nil {
		return nil, utils.WrapError("param row size", err)
	}

	rows, err := readRows(c, header, order, rowSize)
	if err != nil {
		return nil, utils.WrapError("param rows", err)
	}

	return &Table{Header: *header, RowSize: rowSize, Rows: rows}, nil
}

// rowEntryStride64/32 are the byte widths of one row-directory entry for
// 64-bit rows {id:u32, pad:u32, data_offset:u64, name_offset:i64} and
// 32-bit rows {id:u32, data_offset:u32, name_offset:i32} respectively.
const (
	rowEntryStride64      = 24
	rowEntryStride32      = 12
	rowDataOffsetField64  = 8 // id(4) + pad(4)
	rowDataOffsetField32  = 4 // id(4)
)

// inferRowSize computes the per-row byte width from the gap between the
// first two rows' data offsets, when at least two rows exist.
//
// Deviation from the source tool: its 32-bit branch reuses the 64-bit row
// stride (rows_start + 8 + 0x18) to locate the second row's data_offset
// field, which only lands on the correct field for 64-bit rows (24-byte
// stride, field at +8). For 32-bit rows (12-byte stride, field at +4) that
// offset overshoots into the third row. This implementation uses the
// correct per-width stride instead of reproducing that overshoot.
func inferRowSize(c *bitio.Cursor, header *Header, order bitio.Order, rowsStart int) (*uint64, error) {
	if header.RowCount < 2 {
		return nil, nil
	}

	if header.Is64Bit {
		o1, err := bitio.At(c, rowsStart+rowDataOffsetField64, func(c *bitio.Cursor) (uint64, error) { return c.ReadU64(order) })
		if err != nil {
			return nil, err
		}
		o2, err := bitio.At(c, rowsStart+rowEntryStride64+rowDataOffsetField64, func(c *bitio.Cursor) (uint64, error) { return c.ReadU64(order) })
		if err != nil {
			return nil, err
		}
		size := o2 - o1
		return &size, nil
	}

	o1, err := bitio.At(c, rowsStart+rowDataOffsetField32, func(c *bitio.Cursor) (uint32, error) { return c.ReadU32(order) })
	if err != nil {
		return nil, err
	}
	o2, err := bitio.At(c, rowsStart+rowEntryStride32+rowDataOffsetField32, func(c *bitio.Cursor) (uint32, error) { return c.ReadU32(order) })
	if err != nil {
		return nil, err
	}
	size := uint64(o2 - o1)
	return &size, nil
}

func readRows(c *bitio.Cursor, header *Header, order bitio.Order, rowSize *uint64) ([]Row, error) {
	rows := make([]Row, 0, min(uint32(header.RowCount), uint32(utils.MaxRowCount)))

	for i := uint16(0); i < header.RowCount; i++ {
		id, err := c.ReadU32(order)
		if err != nil {
			return nil, err
		}

		var dataOffset uint64
		var nameOffset int64
		if header.Is64Bit {
			if err := c.SeekRel(4); err != nil {
				return nil, err
			}
			v, err := c.ReadU64(order)
			if err != nil {
				return nil, err
			}
			dataOffset = v
			n, err := c.ReadI64(order)
			if err != nil {
				return nil, err
			}
			nameOffset = n
		} else {
			v, err := c.ReadU32(order)
			if err != nil {
				return nil, err
			}
			dataOffset = uint64(v)
			n, err := c.ReadI32(order)
			if err != nil {
				return nil, err
			}
			nameOffset = int64(n)
		}

		width := uint64(c.Len()) - dataOffset
		if rowSize != nil {
			width = *rowSize
		}
		if err := utils.ValidateRowSpan(uint64(c.Len()), dataOffset, width); err != nil {
			return nil, utils.WrapError("param row data span", err)
		}
		data, err := bitio.At(c, int(dataOffset), func(c *bitio.Cursor) ([]byte, error) {
			raw, err := c.ReadFixed(int(width))
			if err != nil {
				return nil, err
			}
			out := make([]byte, len(raw))
			copy(out, raw)
			return out, nil
		})
		if err != nil {
			return nil, utils.WrapError("param row data", err)
		}

		var name string
		if nameOffset != -1 {
			name, err = bitio.At(c, int(nameOffset), func(c *bitio.Cursor) (string, error) {
				if header.IsUnicode {
					return c.ReadWideCString(order)
				}
				return c.ReadCString()
			})
			if err != nil {
				return nil, utils.WrapError("param row name", err)
			}
		}

		rows = append(rows, Row{ID: id, Name: name, Data: data})
	}

	return rows, nil
}
