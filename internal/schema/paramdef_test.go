package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const samplePARAMDEF = `<?xml version="1.0" encoding="utf-8"?>
<PARAMDEF>
  <ParamType>TEST_PARAM_ST</ParamType>
  <DataVersion>1</DataVersion>
  <BigEndian>False</BigEndian>
  <Unicode>True</Unicode>
  <FormatVersion>100</FormatVersion>
  <Fields>
    <Field Def="u8 enabled:1">
      <DisplayName>Enabled</DisplayName>
      <Description>Whether this row is active.</Description>
    </Field>
    <Field Def="u8 reserved:7">
      <DisplayName>Reserved</DisplayName>
    </Field>
    <Field Def="s32 amount = 0">
      <DisplayName>Amount</DisplayName>
      <Minimum>-1</Minimum>
      <Maximum>999</Maximum>
    </Field>
  </Fields>
</PARAMDEF>`

func TestParseParamdef(t *testing.T) {
	def, err := ParseParamdef([]byte(samplePARAMDEF))
	require.NoError(t, err)
	require.Equal(t, "TEST_PARAM_ST", def.ParamType)
	require.EqualValues(t, 1, def.DataVersion)
	require.False(t, bool(def.BigEndian))
	require.True(t, bool(def.Unicode))
	require.Len(t, def.Fields.Field, 3)

	require.True(t, def.Fields.Field[0].IsBitfield())
	require.Equal(t, "Enabled", def.Fields.Field[0].DisplayName)
	require.NotNil(t, def.Fields.Field[0].BitOffset)
	require.Equal(t, 0, *def.Fields.Field[0].BitOffset)
	require.Equal(t, 1, *def.Fields.Field[1].BitOffset)

	amount := def.Fields.Field[2]
	require.False(t, amount.IsBitfield())
	require.Equal(t, BaseS32, amount.FieldDef.Base)
	require.NotNil(t, amount.Minimum)
	require.Equal(t, -1.0, *amount.Minimum)
	require.Equal(t, 999.0, *amount.Maximum)
	require.Equal(t, 32, *amount.BitOffset) // the s32 field re-aligns past the bitfield byte

	require.Equal(t, 8, def.SizeBytes)
}

func TestParseParamdef_MalformedFieldDeclRejected(t *testing.T) {
	bad := `<PARAMDEF><Fields><Field Def="not a valid decl !!"></Field></Fields></PARAMDEF>`
	_, err := ParseParamdef([]byte(bad))
	require.Error(t, err)
}
