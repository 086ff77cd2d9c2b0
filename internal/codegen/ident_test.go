package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExportName(t *testing.T) {
	require.Equal(t, "Equip_PARAM_WEAPON_ST", exportName("equip_PARAM_WEAPON_ST"))
	require.Equal(t, "EQUIP_PARAM_WEAPON_ST", exportName("EQUIP_PARAM_WEAPON_ST"))
	require.Equal(t, "Foo", exportName("foo"))
	require.Equal(t, "X1abc", exportName("1abc"))
	require.Equal(t, "Field", exportName(""))
}

func TestPrivateName(t *testing.T) {
	require.Equal(t, "pad", privateName("pad"))
	require.Equal(t, "reserved_1", privateName("Reserved_1"))
	require.Equal(t, "x1abc", privateName("1abc"))
}

func TestSanitizeIdent(t *testing.T) {
	require.Equal(t, "NoneType", sanitizeIdent("None_Type"))
	require.Equal(t, "Fire", sanitizeIdent("Fire!"))
	require.Equal(t, "X123", sanitizeIdent("123"))
}
