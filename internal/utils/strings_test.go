package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrimCString(t *testing.T) {
	require.Equal(t, "abc", TrimCString([]byte("abc\x00\x00")))
	require.Equal(t, "abc", TrimCString([]byte("abc")))
	require.Equal(t, "", TrimCString([]byte{0, 'x'}))
}

func TestTrimWideCString(t *testing.T) {
	// "ab" little-endian UTF-16 followed by a NUL unit.
	le := []byte{'a', 0, 'b', 0, 0, 0}
	require.Equal(t, "ab", TrimWideCString(le, false))

	be := []byte{0, 'a', 0, 'b', 0, 0}
	require.Equal(t, "ab", TrimWideCString(be, true))
}
