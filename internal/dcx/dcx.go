// Package dcx decodes the DCX/DCP compression envelopes that wrap BND4
// archives and, sometimes, individual PARAM files.
package dcx

import (
	"bytes"
	"io"

	"github.com/scigolib/paramdex/internal/bitio"
	"github.com/scigolib/paramdex/internal/utils"
)

// Kind identifies the compression envelope detected at the start of a
// byte stream.
type Kind uint8

const (
	KindNone Kind = iota
	KindDCPDFLT
	KindDCPEdge
	KindDCXDFLT
	KindDCXEdge
	KindDCXKRAK
	KindZlib
	KindUnknown
)

func isZlibPair(b0, b1 byte) bool {
	return b0 == 0x78 && (b1 == 0x01 || b1 == 0x5E || b1 == 0x9C || b1 == 0xDA)
}

// HasEnvelope reports whether data begins with a recognized DCX/DCP/zlib
// signature (§4.2 Detection). When false, upstream readers treat the
// stream as already decompressed.
func HasEnvelope(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	magic := data[0:4]
	if bytes.Equal(magic, []byte("DCP\x00")) || bytes.Equal(magic, []byte("DCX\x00")) {
		return true
	}
	return isZlibPair(data[0], data[1])
}

// Codec abstracts the DEFLATE decoder backend used for the zlib-wrapped
// payloads inside DCP/DCX envelopes and for bare zlib streams.
type Codec interface {
	Inflate(r io.Reader, sizeHint int) ([]byte, error)
}

// Decompress detects the envelope kind at the start of data and returns the
// decompressed payload, or data itself (no copy) if no envelope is present.
// All multi-byte integers inside DCX/DCP headers are big-endian (§4.2).
func Decompress(data []byte) ([]byte, error) {
	return DecompressWith(defaultCodec, data)
}

// DecompressWith is Decompress with an explicit Codec, used by tests to
// exercise the envelope framing without depending on a specific backend.
func DecompressWith(codec Codec, data []byte) ([]byte, error) {
	if !HasEnvelope(data) {
		return data, nil
	}

	c := bitio.NewCursor(data)
	magic, err := c.ReadFixed(4)
	if err != nil {
		return nil, utils.WrapError("dcx envelope", err)
	}

	switch {
	case bytes.Equal(magic, []byte("DCP\x00")):
		return decompressDCP(codec, c)
	case bytes.Equal(magic, []byte("DCX\x00")):
		return decompressDCX(codec, c)
	default:
		if isZlibPair(data[0], data[1]) {
			return codec.Inflate(bytes.NewReader(data), 0)
		}
		return nil, utils.InvalidDataf("dcx envelope", "unrecognized signature % x", data[0:4])
	}
}

func decompressDCP(codec Codec, c *bitio.Cursor) ([]byte, error) {
	tag, err := c.ReadFixed(4)
	if err != nil {
		return nil, utils.WrapError("dcp tag", err)
	}

	uncompressedSize, err := bitio.At(c, 0x1C, func(c *bitio.Cursor) (uint32, error) { return c.ReadU32(bitio.BigEndian) })
	if err != nil {
		return nil, utils.WrapError("dcp uncompressed size", err)
	}
	compressedSize, err := bitio.At(c, 0x20, func(c *bitio.Cursor) (uint32, error) { return c.ReadU32(bitio.BigEndian) })
	if err != nil {
		return nil, utils.WrapError("dcp compressed size", err)
	}

	switch string(tag) {
	case "DFLT":
		body, err := bitio.At(c, 0x24, func(c *bitio.Cursor) ([]byte, error) { return c.ReadFixed(c.Remaining()) })
		if err != nil {
			return nil, utils.WrapError("dcp dflt body", err)
		}
		return inflateZlib(codec, body, compressedSize, int(uncompressedSize))
	case "EDGE":
		return decompressEdge(c, 0x24)
	default:
		return nil, utils.InvalidDataf("dcp tag", "unknown DCP algorithm tag %q", tag)
	}
}

func decompressDCX(codec Codec, c *bitio.Cursor) ([]byte, error) {
	tag, err := bitio.At(c, 0x28, func(c *bitio.Cursor) ([]byte, error) { return c.ReadFixed(4) })
	if err != nil {
		return nil, utils.WrapError("dcx algorithm tag", err)
	}

	uncompressedSize, err := bitio.At(c, 0x1C, func(c *bitio.Cursor) (uint32, error) { return c.ReadU32(bitio.BigEndian) })
	if err != nil {
		return nil, utils.WrapError("dcx uncompressed size", err)
	}
	compressedSize, err := bitio.At(c, 0x20, func(c *bitio.Cursor) (uint32, error) { return c.ReadU32(bitio.BigEndian) })
	if err != nil {
		return nil, utils.WrapError("dcx compressed size", err)
	}

	switch string(tag) {
	case "DFLT":
		body, err := bitio.At(c, 0x4C, func(c *bitio.Cursor) ([]byte, error) { return c.ReadFixed(c.Remaining()) })
		if err != nil {
			return nil, utils.WrapError("dcx dflt body", err)
		}
		return inflateZlib(codec, body, compressedSize, int(uncompressedSize))
	case "EDGE":
		return decompressEdge(c, 0x4C)
	case "KRAK":
		return nil, utils.Unsupportedf("dcx krak", "Oodle/KRAK compression is not supported")
	default:
		return nil, utils.InvalidDataf("dcx tag", "unknown DCX algorithm tag %q", tag)
	}
}

// edgeChunkHeader is the per-chunk directory entry inside an EDGE envelope's
// EgdT table (§4.2 "EDGE chunked decoder").
type edgeChunkHeader struct {
	offset     uint32
	size       uint32
	compressed bool
}

// decompressEdge validates the EgdT chunk directory but cannot decode the
// chunk payload itself — the original tool leaves this as an unimplemented
// stub (§9 Open Questions), so this surfaces ErrUnsupported rather than
// guess at an undocumented per-chunk codec. bodyOffset is where the DCA\0
// sub-header begins, mirroring the DFLT body offset for the same envelope
// (0x24 for DCP, 0x4C for DCX).
func decompressEdge(c *bitio.Cursor, bodyOffset int) ([]byte, error) {
	if err := bitio.AtErr(c, bodyOffset, func(c *bitio.Cursor) error {
		dcaTag, err := c.ReadFixed(4)
		if err != nil {
			return err
		}
		if string(dcaTag) != "DCA\x00" {
			return utils.InvalidDataf("edge DCA tag", "expected DCA\\0, got %q", dcaTag)
		}
		if _, err := c.ReadU32(bitio.BigEndian); err != nil { // dca_size
			return err
		}

		egdtTag, err := c.ReadFixed(4)
		if err != nil {
			return err
		}
		if string(egdtTag) != "EgdT" {
			return utils.InvalidDataf("edge EgdT tag", "expected EgdT, got %q", egdtTag)
		}

		for _, want := range [4]uint32{0x00010000, 0x20, 0x10, 0x10000} {
			got, err := c.ReadU32(bitio.BigEndian)
			if err != nil {
				return err
			}
			if got != want {
				return utils.InvalidDataf("edge EgdT prologue", "expected 0x%X, got 0x%X", want, got)
			}
		}

		egdtSize, err := c.ReadU32(bitio.BigEndian)
		if err != nil {
			return err
		}
		chunkCount, err := c.ReadU32(bitio.BigEndian)
		if err != nil {
			return err
		}
		if v, err := c.ReadU32(bitio.BigEndian); err != nil || v != 0x100000 {
			if err != nil {
				return err
			}
			return utils.InvalidDataf("edge EgdT constant", "expected 0x100000, got 0x%X", v)
		}

		if err := utils.ValidateEdgeChunkGeometry(egdtSize, chunkCount); err != nil {
			return utils.InvalidDataf("edge EgdT size", "%v", err)
		}

		chunks := make([]edgeChunkHeader, 0, chunkCount)
		for range chunkCount {
			zero, err := c.ReadU32(bitio.BigEndian)
			if err != nil {
				return err
			}
			if zero != 0 {
				return utils.InvalidDataf("edge chunk header", "expected reserved zero, got %d", zero)
			}
			offset, err := c.ReadU32(bitio.BigEndian)
			if err != nil {
				return err
			}
			size, err := c.ReadU32(bitio.BigEndian)
			if err != nil {
				return err
			}
			flag, err := c.ReadU32(bitio.BigEndian)
			if err != nil {
				return err
			}
			chunks = append(chunks, edgeChunkHeader{offset: offset, size: size, compressed: flag != 0})
		}
		_ = chunks
		return nil
	}); err != nil {
		return nil, err
	}

	return nil, utils.Unsupportedf("dcx edge", "EDGE chunk payload decoding is not implemented")
}

func inflateZlib(codec Codec, body []byte, compressedSize uint32, uncompressedSizeHint int) ([]byte, error) {
	if int(compressedSize) > len(body) {
		return nil, utils.InvalidDataf("zlib body", "compressed size %d exceeds available %d bytes", compressedSize, len(body))
	}
	return codec.Inflate(bytes.NewReader(body[:compressedSize]), uncompressedSizeHint)
}
