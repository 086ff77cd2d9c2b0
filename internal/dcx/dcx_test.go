package dcx

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scigolib/paramdex/internal/utils"
)

// zlibAbc is a literal zlib stream (header 0x78 0x9C) that inflates to "abc".
var zlibAbc = []byte{0x78, 0x9C, 0x4B, 0x4C, 0x4A, 0x06, 0x00, 0x02, 0x4D, 0x01, 0x27}

func putU32BE(buf []byte, offset int, v uint32) {
	binary.BigEndian.PutUint32(buf[offset:offset+4], v)
}

func TestHasEnvelope(t *testing.T) {
	require.True(t, HasEnvelope([]byte("DCP\x00rest")))
	require.True(t, HasEnvelope([]byte("DCX\x00rest")))
	require.True(t, HasEnvelope(zlibAbc))
	require.False(t, HasEnvelope([]byte("BND4")))
	require.False(t, HasEnvelope([]byte{0x01}))
}

func TestDecompress_BareZlib(t *testing.T) {
	out, err := Decompress(zlibAbc)
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), out)
}

func TestDecompress_NoEnvelopePassesThrough(t *testing.T) {
	raw := []byte("BND4 plain bytes")
	out, err := Decompress(raw)
	require.NoError(t, err)
	require.Equal(t, raw, out)
}

func buildDCPDFLT(body []byte) []byte {
	buf := make([]byte, 0x24+len(body))
	copy(buf[0:4], "DCP\x00")
	copy(buf[4:8], "DFLT")
	putU32BE(buf, 0x1C, 3)
	putU32BE(buf, 0x20, uint32(len(body)))
	copy(buf[0x24:], body)
	return buf
}

func TestDecompress_DCPDFLT(t *testing.T) {
	out, err := Decompress(buildDCPDFLT(zlibAbc))
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), out)
}

func buildDCXDFLT(body []byte) []byte {
	buf := make([]byte, 0x4C+len(body))
	copy(buf[0:4], "DCX\x00")
	putU32BE(buf, 0x1C, 3)
	putU32BE(buf, 0x20, uint32(len(body)))
	copy(buf[0x28:0x2C], "DFLT")
	copy(buf[0x4C:], body)
	return buf
}

func TestDecompress_DCXDFLT(t *testing.T) {
	out, err := Decompress(buildDCXDFLT(zlibAbc))
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), out)
}

func TestDecompress_DCXKRAKIsUnsupported(t *testing.T) {
	buf := make([]byte, 0x2C)
	copy(buf[0:4], "DCX\x00")
	putU32BE(buf, 0x1C, 3)
	putU32BE(buf, 0x20, 11)
	copy(buf[0x28:0x2C], "KRAK")

	_, err := Decompress(buf)
	require.Error(t, err)
	require.True(t, errors.Is(err, utils.ErrUnsupported))
}

func TestDecompress_DCPEdgeIsUnsupported(t *testing.T) {
	buf := buildEdgeBody("DCP\x00", nil, 0x24, 0)

	_, err := Decompress(buf)
	require.Error(t, err)
	require.True(t, errors.Is(err, utils.ErrUnsupported))
}

// buildEdgeBody constructs a full DCP\0 or DCX\0 envelope around a valid
// EDGE chunk directory (DCA\0/EgdT) with chunkCount entries. algoTagAt, when
// non-nil, is written at 0x28 (the DCX-only algorithm tag field).
func buildEdgeBody(magic string, algoTagAt []byte, bodyOffset int, chunkCount uint32) []byte {
	egdtSize := 0x20 + 16*chunkCount
	total := bodyOffset + 4 + 4 + 4 + 16 + 4 + 4 + 4 + 16*int(chunkCount)
	buf := make([]byte, total)
	copy(buf[0:4], magic)
	putU32BE(buf, 0x1C, 0)
	putU32BE(buf, 0x20, 0)
	if magic == "DCP\x00" {
		copy(buf[4:8], "EDGE")
	} else if algoTagAt != nil {
		copy(buf[0x28:0x2C], algoTagAt)
	}

	p := bodyOffset
	copy(buf[p:p+4], "DCA\x00")
	p += 4
	putU32BE(buf, p, uint32(len(buf)-bodyOffset))
	p += 4
	copy(buf[p:p+4], "EgdT")
	p += 4
	for _, v := range [4]uint32{0x00010000, 0x20, 0x10, 0x10000} {
		putU32BE(buf, p, v)
		p += 4
	}
	putU32BE(buf, p, egdtSize)
	p += 4
	putU32BE(buf, p, chunkCount)
	p += 4
	putU32BE(buf, p, 0x100000)
	p += 4
	for range chunkCount {
		putU32BE(buf, p, 0) // reserved zero
		p += 4
		putU32BE(buf, p, 0) // offset
		p += 4
		putU32BE(buf, p, 0) // size
		p += 4
		putU32BE(buf, p, 0) // compressed flag
		p += 4
	}
	return buf
}

func TestDecompress_DCXEdgeValidatesHeaderThenIsUnsupported(t *testing.T) {
	_, err := Decompress(buildEdgeBody("DCX\x00", []byte("EDGE"), 0x4C, 2))
	require.Error(t, err)
	require.True(t, errors.Is(err, utils.ErrUnsupported))
}

func TestDecompress_DCXEdgeBadGeometryIsInvalidData(t *testing.T) {
	buf := buildEdgeBody("DCX\x00", []byte("EDGE"), 0x4C, 2)
	// egdt_size sits at bodyOffset(0x4C) + 4(DCA\0) + 4(dca_size) + 4(EgdT)
	// + 16(four prologue constants) = 0x4C + 28.
	putU32BE(buf, 0x4C+28, 0xFF)

	_, err := Decompress(buf)
	require.Error(t, err)
	require.True(t, errors.Is(err, utils.ErrInvalidData))
}

func TestDecompress_CorruptZlibStream(t *testing.T) {
	// Valid zlib magic pair but garbage beyond it: not an envelope format
	// error, but the codec must still surface a wrapped failure.
	_, err := Decompress([]byte{0x78, 0x9C, 0xFF, 0xFF, 0xFF, 0xFF})
	require.Error(t, err)
}

func TestDecompress_UnknownDCXTag(t *testing.T) {
	buf := make([]byte, 0x2C)
	copy(buf[0:4], "DCX\x00")
	copy(buf[0x28:0x2C], "ZZZZ")
	_, err := Decompress(buf)
	require.Error(t, err)
	require.True(t, errors.Is(err, utils.ErrInvalidData))
}

func TestInflateZlib_CompressedSizeExceedsBody(t *testing.T) {
	buf := buildDCPDFLT(zlibAbc)
	putU32BE(buf, 0x20, 9999) // compressed size larger than actual body
	_, err := Decompress(buf)
	require.Error(t, err)
	require.True(t, errors.Is(err, utils.ErrInvalidData))
}
