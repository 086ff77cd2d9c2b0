package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRowNames(t *testing.T) {
	data := []byte("100 Longsword\n0x65 Shortsword\n010 Dagger\n\nno-space-line\n200 Spear+1\n")
	names, err := ParseRowNames(data)
	require.NoError(t, err)

	require.Equal(t, "Longsword", names[100])
	require.Equal(t, "Shortsword", names[0x65])
	require.Equal(t, "Dagger", names[0o10])
	require.Equal(t, "Spear+1", names[200])
	require.Len(t, names, 4)
}

func TestParseRowNames_Empty(t *testing.T) {
	names, err := ParseRowNames([]byte(""))
	require.NoError(t, err)
	require.Empty(t, names)
}
