package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scigolib/paramdex/internal/schema"
)

func parseRunField(t *testing.T, decl string) *schema.DefField {
	t.Helper()
	dt, err := schema.ParseDefType(decl)
	require.NoError(t, err)
	return &schema.DefField{FieldDef: dt}
}

func TestGroupFields_MergesConsecutiveBitfields(t *testing.T) {
	def := &schema.Paramdef{}
	def.Fields.Field = []*schema.DefField{
		parseRunField(t, "u8 a"),
		parseRunField(t, "u8 flag1:3"),
		parseRunField(t, "u8 flag2:5"),
		parseRunField(t, "u16 d"),
	}
	require.NoError(t, schema.ComputeLayout(def))

	items := groupFields(def.Fields.Field)
	require.Len(t, items, 3)
	require.NotNil(t, items[0].field)
	require.Nil(t, items[1].field)
	require.Len(t, items[1].run, 2)
	require.NotNil(t, items[2].field)
}

func TestRunSpan_SameStorageType(t *testing.T) {
	def := &schema.Paramdef{}
	def.Fields.Field = []*schema.DefField{
		parseRunField(t, "u8 flag1:3"),
		parseRunField(t, "u8 flag2:5"),
	}
	require.NoError(t, schema.ComputeLayout(def))

	start, end := runSpan(def.Fields.Field)
	require.Equal(t, 0, start)
	require.Equal(t, 1, end)
}

func TestRunSpan_RealignsOnWiderStorage(t *testing.T) {
	// u8 a:4 then u16 b:4 forces b into its own aligned storage word (S4).
	def := &schema.Paramdef{}
	def.Fields.Field = []*schema.DefField{
		parseRunField(t, "u8 a:4"),
		parseRunField(t, "u16 b:4"),
	}
	require.NoError(t, schema.ComputeLayout(def))

	start, end := runSpan(def.Fields.Field)
	require.Equal(t, 0, start)
	require.Equal(t, 4, end)
}
