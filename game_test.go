package paramdex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGame_String(t *testing.T) {
	require.Equal(t, "DS2", DS2.String())
	require.Equal(t, "DS3", DS3.String())
	require.Equal(t, "ER", ER.String())
	require.Equal(t, "unknown", Game(99).String())
}
