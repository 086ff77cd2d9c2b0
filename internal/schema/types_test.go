package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefType_Scalar(t *testing.T) {
	dt, err := ParseDefType("u8 flags")
	require.NoError(t, err)
	require.Equal(t, "flags", dt.Name)
	require.Equal(t, BaseU8, dt.Base)
	require.Equal(t, ModNone, dt.Modifier.Kind)
}

func TestParseDefType_Array(t *testing.T) {
	dt, err := ParseDefType("f32 position[3]")
	require.NoError(t, err)
	require.Equal(t, BaseF32, dt.Base)
	require.Equal(t, ModArray, dt.Modifier.Kind)
	require.Equal(t, 3, dt.Modifier.Length)
}

func TestParseDefType_Bitfield(t *testing.T) {
	dt, err := ParseDefType("u8 b:3")
	require.NoError(t, err)
	require.Equal(t, BaseU8, dt.Base)
	require.Equal(t, ModBitfield, dt.Modifier.Kind)
	require.Equal(t, 3, dt.Modifier.Width)
}

func TestParseDefType_WithDefaultValue(t *testing.T) {
	dt, err := ParseDefType("s32 someField = -1")
	require.NoError(t, err)
	require.Equal(t, "someField", dt.Name)
	require.Equal(t, BaseS32, dt.Base)
}

func TestParseDefType_UnknownBaseType(t *testing.T) {
	_, err := ParseDefType("weird field")
	require.Error(t, err)
}

func TestParseDefType_Malformed(t *testing.T) {
	_, err := ParseDefType("")
	require.Error(t, err)
}

func TestDefBaseType_Storage(t *testing.T) {
	require.Equal(t, StorageU8, BaseDummy8.Storage())
	require.Equal(t, StorageU8, BaseU8.Storage())
	require.Equal(t, StorageI16, BaseS16.Storage())
	require.Equal(t, StorageF32, BaseF32.Storage())
	require.Equal(t, StorageI8, BaseFixstr.Storage())
	require.Equal(t, StorageI16, BaseFixstrW.Storage())
}

func TestStorageType_SizeBits(t *testing.T) {
	require.Equal(t, 8, StorageU8.SizeBits())
	require.Equal(t, 16, StorageI16.SizeBits())
	require.Equal(t, 32, StorageF32.SizeBits())
}
