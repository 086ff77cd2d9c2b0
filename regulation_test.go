package paramdex

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func putU32LE(buf []byte, offset int, v uint32) {
	binary.LittleEndian.PutUint32(buf[offset:offset+4], v)
}

func putU64LE(buf []byte, offset int, v uint64) {
	binary.LittleEndian.PutUint64(buf[offset:offset+8], v)
}

// buildMinimalArchive builds a single-file, little-endian, unhashed,
// unnamed, uncompressed BND4 archive so Open's BND4 short-circuit (no
// decryption) can be exercised directly (§4.3 "if the input already begins
// with BND4, no decryption is performed").
func buildMinimalArchive(fileData []byte) []byte {
	const headerLen = 0x40
	const fileEntryLen = 1 + 3 + 4 + 8 + 4
	dataOffset := headerLen + fileEntryLen

	buf := make([]byte, dataOffset+len(fileData))
	copy(buf[0:4], "BND4")
	putU32LE(buf, 12, 1)
	putU64LE(buf, 16, 0x40)
	putU64LE(buf, 32, fileEntryLen)
	putU64LE(buf, 40, uint64(dataOffset))

	p := headerLen
	buf[p] = 0
	p++
	p += 3
	binary.LittleEndian.PutUint32(buf[p:p+4], uint32(int32(-1)))
	p += 4
	putU64LE(buf, p, uint64(len(fileData)))
	p += 8
	putU32LE(buf, p, uint32(dataOffset))

	copy(buf[dataOffset:], fileData)
	return buf
}

func TestOpen_BND4ShortCircuit(t *testing.T) {
	archive := buildMinimalArchive([]byte("hello"))

	reg, err := Open(ER, archive)
	require.NoError(t, err)
	require.Len(t, reg.Archive.Files, 1)
	require.Equal(t, []byte("hello"), reg.Archive.Files[0].Data)
}

func TestOpen_UnrecognizedGameWithoutBND4Magic(t *testing.T) {
	_, err := Open(Game(99), []byte("not a bnd4 and not encrypted either"))
	require.Error(t, err)
}

func TestRegulation_Files(t *testing.T) {
	reg, err := Open(ER, buildMinimalArchive([]byte("abc")))
	require.NoError(t, err)
	require.Equal(t, []string{""}, reg.Files())
}

func TestRegulation_ParamNotFound(t *testing.T) {
	reg, err := Open(ER, buildMinimalArchive([]byte("abc")))
	require.NoError(t, err)
	_, err = reg.Param("MISSING_PARAM")
	require.Error(t, err)
}
