package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func field(decl string) *DefField {
	dt, err := ParseDefType(decl)
	if err != nil {
		panic(err)
	}
	return &DefField{FieldDef: dt}
}

func bitOffsetOf(f *DefField) int {
	if f.BitOffset == nil {
		panic("bit offset not computed")
	}
	return *f.BitOffset
}

// TestComputeLayout_S3 is the literal scenario from the testable-properties
// list: u8 a, u8 b:3, u8 c:5, u16 d resolves to {a:0, b:8, c:11, d:16} and
// size_bytes=4.
func TestComputeLayout_S3(t *testing.T) {
	def := &Paramdef{}
	def.Fields.Field = []*DefField{
		field("u8 a"),
		field("u8 b:3"),
		field("u8 c:5"),
		field("u16 d"),
	}

	require.NoError(t, ComputeLayout(def))
	require.Equal(t, 0, bitOffsetOf(def.Fields.Field[0]))
	require.Equal(t, 8, bitOffsetOf(def.Fields.Field[1]))
	require.Equal(t, 11, bitOffsetOf(def.Fields.Field[2]))
	require.Equal(t, 16, bitOffsetOf(def.Fields.Field[3]))
	require.Equal(t, 4, def.SizeBytes)
}

// TestComputeLayout_S4 is the literal scenario: u8 a:4, u16 b:4 resolves to
// {a:0, b:16} and size_bytes=4 — the wider storage type forces
// re-alignment even though there was room left in the byte.
func TestComputeLayout_S4(t *testing.T) {
	def := &Paramdef{}
	def.Fields.Field = []*DefField{
		field("u8 a:4"),
		field("u16 b:4"),
	}

	require.NoError(t, ComputeLayout(def))
	require.Equal(t, 0, bitOffsetOf(def.Fields.Field[0]))
	require.Equal(t, 16, bitOffsetOf(def.Fields.Field[1]))
	require.Equal(t, 4, def.SizeBytes)
}

func TestComputeLayout_BitfieldWidthExceedsStorage(t *testing.T) {
	def := &Paramdef{}
	def.Fields.Field = []*DefField{field("u8 a:9")}
	require.Error(t, ComputeLayout(def))
}

func TestComputeLayout_ArrayContributesLenTimesElemSize(t *testing.T) {
	def := &Paramdef{}
	def.Fields.Field = []*DefField{
		field("u8 a"),
		field("f32 position[3]"),
	}
	require.NoError(t, ComputeLayout(def))
	require.Equal(t, 0, bitOffsetOf(def.Fields.Field[0]))
	require.Equal(t, 32, bitOffsetOf(def.Fields.Field[1])) // aligned up to f32's 32-bit alignment
	require.Equal(t, 16, def.SizeBytes)                    // 32 + 3*32 = 128 bits = 16 bytes
}

// TestComputeLayout_BitfieldPackingProperty checks testable property 2: for
// a run of same-storage bitfields whose widths sum within storage_bits, all
// fields share the same read_offset and each offset equals the previous
// plus the previous width.
func TestComputeLayout_BitfieldPackingProperty(t *testing.T) {
	def := &Paramdef{}
	def.Fields.Field = []*DefField{
		field("u32 a:5"),
		field("u32 b:5"),
		field("u32 c:5"),
	}
	require.NoError(t, ComputeLayout(def))

	readOffset := func(f *DefField) int { return (bitOffsetOf(f) / 32) * 32 }
	ro0 := readOffset(def.Fields.Field[0])
	for _, f := range def.Fields.Field[1:] {
		require.Equal(t, ro0, readOffset(f))
	}
	require.Equal(t, 0, bitOffsetOf(def.Fields.Field[0]))
	require.Equal(t, 5, bitOffsetOf(def.Fields.Field[1]))
	require.Equal(t, 10, bitOffsetOf(def.Fields.Field[2]))
}

func TestComputeLayout_BitfieldRunOverflowsIntoNewWord(t *testing.T) {
	def := &Paramdef{}
	def.Fields.Field = []*DefField{
		field("u8 a:5"),
		field("u8 b:5"), // 5+5=10 > 8, must start a new storage word
	}
	require.NoError(t, ComputeLayout(def))
	require.Equal(t, 0, bitOffsetOf(def.Fields.Field[0]))
	require.Equal(t, 8, bitOffsetOf(def.Fields.Field[1]))
	require.Equal(t, 2, def.SizeBytes)
}

func TestComputeLayout_EmptyFields(t *testing.T) {
	def := &Paramdef{}
	require.NoError(t, ComputeLayout(def))
	require.Equal(t, 0, def.SizeBytes)
}
