package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandStr(t *testing.T) {
	s := RandStr(10)
	require.Len(t, s, 10)

	for _, r := range s {
		require.True(t, strings.ContainsRune(alphabet, r))
	}

	require.Empty(t, RandStr(0))
	require.NotEqual(t, RandStr(16), RandStr(16))
}
