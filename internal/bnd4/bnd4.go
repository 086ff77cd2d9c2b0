// Package bnd4 reads BND4 archives: the container format used for
// regulation.bin and most other FromSoftware game archives. A BND4 archive
// is a flat file table (§4.4): a header, one fixed-size entry per embedded
// file, an optional name, and the file's raw bytes.
package bnd4

import (
	"bytes"

	"github.com/scigolib/paramdex/internal/bitio"
	"github.com/scigolib/paramdex/internal/dcx"
	"github.com/scigolib/paramdex/internal/utils"
)

// Format flag bits carried in Header.Format, controlling which optional
// per-file fields are present.
const (
	FormatCompressed  = 0b0010_0000
	FormatHash        = 0b0000_0010
	FormatHasID       = 0b0000_0110
	FormatNames       = 0b0000_1100
	FormatNameSpecial = 0b0000_0100
)

// Header is the fixed 0x40-byte BND4 preamble.
type Header struct {
	BigEndian       bool
	FileCount       uint32
	HeaderSize      uint64
	Version         [8]byte
	FileHeadersSize uint64
	FileHeadersEnd  uint64
	Unicode         bool
	Format          uint8
	Extended        uint8
	BucketOffset    uint64
}

// File is one embedded archive entry. UncompressedSize and ID are nil when
// the archive's Format doesn't carry that field; Name is empty for the same
// reason.
type File struct {
	Flags            uint8
	UncompressedSize *uint64
	ID               *uint32
	Name             string
	Data             []byte
}

// Bucket is one entry of the optional hash-bucket lookup table.
type Bucket struct {
	Count uint32
	Index uint32
}

// HashEntry is one entry of the optional per-file hash table, indexed by
// bucket ranges.
type HashEntry struct {
	Hash  uint32
	Index uint32
}

// Archive is a fully parsed BND4 container.
type Archive struct {
	Header  Header
	Files   []File
	Buckets []Bucket
	Hashes  []HashEntry
}

// Is reports whether data begins with the BND4 magic.
func Is(data []byte) bool {
	return bytes.HasPrefix(data, []byte("BND4"))
}

// Read parses a BND4 archive from data. If data is itself a DCX/DCP
// envelope around a BND4 archive, Read transparently decompresses it first
// (§4.4 "DCX-wrapped archives").
func Read(data []byte) (*Archive, error) {
	if !Is(data) {
		if !dcx.HasEnvelope(data) {
			return nil, utils.InvalidDataf("bnd4", "missing BND4 magic and no recognized compression envelope")
		}
		decompressed, err := dcx.Decompress(data)
		if err != nil {
			return nil, utils.WrapError("bnd4 dcx envelope", err)
		}
		return Read(decompressed)
	}

	c := bitio.NewCursor(data)
	header, err := readHeader(c)
	if err != nil {
		return nil, utils.WrapError("bnd4 header", err)
	}
	order := endianOf(header.BigEndian)

	files, err := readFiles(c, header, order)
	if err != nil {
		return nil, utils.WrapError("bnd4 files", err)
	}

	buckets, hashes, err := readBuckets(c, header, order)
	if err != nil {
		return nil, utils.WrapError("bnd4 buckets", err)
	}

	return &Archive{Header: *header, Files: files, Buckets: buckets, Hashes: hashes}, nil
}

func endianOf(bigEndian bool) bitio.Order {
	if bigEndian {
		return bitio.BigEndian
	}
	return bitio.LittleEndian
}

func expectByte(c *bitio.Cursor, context string, ok func(byte) bool) error {
	b, err := c.ReadU8()
	if err != nil {
		return err
	}
	if !ok(b) {
		return utils.InvalidDataf(context, "unexpected value 0x%02X", b)
	}
	return nil
}

func readHeader(c *bitio.Cursor) (*Header, error) {
	magic, err := c.ReadFixed(4)
	if err != nil {
		return nil, err
	}
	if string(magic) != "BND4" {
		return nil, utils.InvalidDataf("bnd4 magic", "expected BND4, got %q", magic)
	}

	isBool := func(b byte) bool { return b == 0 || b == 1 }
	isZero := func(b byte) bool { return b == 0 }

	if err := expectByte(c, "bnd4 unk04", isBool); err != nil {
		return nil, err
	}
	if err := expectByte(c, "bnd4 unk05", isBool); err != nil {
		return nil, err
	}
	if err := expectByte(c, "bnd4 unk06", isZero); err != nil {
		return nil, err
	}
	if err := expectByte(c, "bnd4 unk07", isZero); err != nil {
		return nil, err
	}
	if err := expectByte(c, "bnd4 unk08", isZero); err != nil {
		return nil, err
	}

	bigEndianByte, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	h := &Header{BigEndian: bigEndianByte != 0}
	order := endianOf(h.BigEndian)

	if err := expectByte(c, "bnd4 unk0A", isBool); err != nil {
		return nil, err
	}
	if err := expectByte(c, "bnd4 unk0B", isZero); err != nil {
		return nil, err
	}

	if h.FileCount, err = c.ReadU32(order); err != nil {
		return nil, err
	}
	if h.HeaderSize, err = c.ReadU64(order); err != nil {
		return nil, err
	}
	if h.HeaderSize != 0x40 {
		return nil, utils.InvalidDataf("bnd4 header_size", "expected 0x40, got 0x%X", h.HeaderSize)
	}

	version, err := c.ReadFixed(8)
	if err != nil {
		return nil, err
	}
	copy(h.Version[:], version)

	if h.FileHeadersSize, err = c.ReadU64(order); err != nil {
		return nil, err
	}
	if h.FileHeadersEnd, err = c.ReadU64(order); err != nil {
		return nil, err
	}

	unicodeByte, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	h.Unicode = unicodeByte != 0

	if h.Format, err = c.ReadBitReversedByte(order); err != nil {
		return nil, err
	}

	if h.Extended, err = c.ReadU8(); err != nil {
		return nil, err
	}
	if h.Extended != 0 && h.Extended != 4 {
		return nil, utils.InvalidDataf("bnd4 extended", "expected 0 or 4, got %d", h.Extended)
	}

	if err := expectByte(c, "bnd4 unk33", isZero); err != nil {
		return nil, err
	}
	unk34, err := c.ReadU32(order)
	if err != nil {
		return nil, err
	}
	if unk34 != 0 {
		return nil, utils.InvalidDataf("bnd4 unk34", "expected zero, got %d", unk34)
	}

	if h.BucketOffset, err = c.ReadU64(order); err != nil {
		return nil, err
	}

	return h, nil
}

func readFiles(c *bitio.Cursor, header *Header, order bitio.Order) ([]File, error) {
	files := make([]File, 0, min(header.FileCount, utils.MaxRowCount))

	for i := uint32(0); i < header.FileCount; i++ {
		flags, err := c.ReadBitReversedByte(order)
		if err != nil {
			return nil, err
		}

		zeros, err := c.ReadFixed(3)
		if err != nil {
			return nil, err
		}
		if !bytes.Equal(zeros, []byte{0, 0, 0}) {
			return nil, utils.InvalidDataf("bnd4 file header", "expected reserved zeros, got % x", zeros)
		}

		negOne, err := c.ReadI32(order)
		if err != nil {
			return nil, err
		}
		if negOne != -1 {
			return nil, utils.InvalidDataf("bnd4 file header", "expected -1 sentinel, got %d", negOne)
		}

		diskSize, err := c.ReadU64(order)
		if err != nil {
			return nil, err
		}

		var uncompressedSize *uint64
		if header.Format&FormatCompressed != 0 {
			v, err := c.ReadU64(order)
			if err != nil {
				return nil, err
			}
			uncompressedSize = &v
		}

		dataOffset32, err := c.ReadU32(order)
		if err != nil {
			return nil, err
		}
		dataOffset := uint64(dataOffset32)

		var id *uint32
		if header.Format&FormatHash != 0 {
			v, err := c.ReadU32(order)
			if err != nil {
				return nil, err
			}
			id = &v
		}

		var name string
		if header.Format&FormatNames != 0 {
			nameOffset32, err := c.ReadU32(order)
			if err != nil {
				return nil, err
			}
			name, err = bitio.At(c, int(nameOffset32), func(c *bitio.Cursor) (string, error) {
				if header.Unicode {
					return c.ReadWideCString(order)
				}
				return c.ReadCString()
			})
			if err != nil {
				return nil, utils.WrapError("bnd4 file name", err)
			}
		}

		if header.Format == FormatNameSpecial {
			v, err := c.ReadU32(order)
			if err != nil {
				return nil, err
			}
			id = &v
			zero, err := c.ReadU32(order)
			if err != nil {
				return nil, err
			}
			if zero != 0 {
				return nil, utils.InvalidDataf("bnd4 file header", "expected zero after special id, got %d", zero)
			}
		}

		if diskSize > 0 {
			if err := utils.ValidateBufferSize(diskSize, utils.MaxFileSize, "bnd4 file data"); err != nil {
				return nil, utils.WrapError("bnd4 file size", err)
			}
		}
		if err := utils.ValidateRowSpan(uint64(c.Len()), dataOffset, diskSize); err != nil {
			return nil, utils.WrapError("bnd4 file data span", err)
		}
		data, err := bitio.At(c, int(dataOffset), func(c *bitio.Cursor) ([]byte, error) {
			raw, err := c.ReadFixed(int(diskSize))
			if err != nil {
				return nil, err
			}
			out := make([]byte, len(raw))
			copy(out, raw)
			return out, nil
		})
		if err != nil {
			return nil, utils.WrapError("bnd4 file data", err)
		}

		files = append(files, File{
			Flags:            flags,
			UncompressedSize: uncompressedSize,
			ID:               id,
			Name:             name,
			Data:             data,
		})
	}

	return files, nil
}

func readBuckets(c *bitio.Cursor, header *Header, order bitio.Order) ([]Bucket, []HashEntry, error) {
	if header.BucketOffset == 0 {
		return nil, nil, nil
	}

	var buckets []Bucket
	var hashes []HashEntry

	err := bitio.AtErr(c, int(header.BucketOffset), func(c *bitio.Cursor) error {
		hashesOffset, err := c.ReadU64(order)
		if err != nil {
			return err
		}
		bucketCount, err := c.ReadU32(order)
		if err != nil {
			return err
		}

		if err := expectByte(c, "bnd4 bucket header size[0]", func(b byte) bool { return b == 0x10 }); err != nil {
			return err
		}
		if err := expectByte(c, "bnd4 bucket header size[1]", func(b byte) bool { return b == 8 }); err != nil {
			return err
		}
		if err := expectByte(c, "bnd4 bucket header size[2]", func(b byte) bool { return b == 8 }); err != nil {
			return err
		}
		if err := expectByte(c, "bnd4 bucket unk0F", func(b byte) bool { return b == 0 }); err != nil {
			return err
		}

		buckets = make([]Bucket, 0, bucketCount)
		for i := uint32(0); i < bucketCount; i++ {
			count, err := c.ReadU32(order)
			if err != nil {
				return err
			}
			index, err := c.ReadU32(order)
			if err != nil {
				return err
			}
			buckets = append(buckets, Bucket{Count: count, Index: index})
		}

		return bitio.AtErr(c, int(hashesOffset), func(c *bitio.Cursor) error {
			hashes = make([]HashEntry, 0, header.FileCount)
			for i := uint32(0); i < header.FileCount; i++ {
				hash, err := c.ReadU32(order)
				if err != nil {
					return err
				}
				index, err := c.ReadU32(order)
				if err != nil {
					return err
				}
				hashes = append(hashes, HashEntry{Hash: hash, Index: index})
			}
			return nil
		})
	})
	if err != nil {
		return nil, nil, err
	}

	return buckets, hashes, nil
}
