package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAckFPort(t *testing.T) {
	p, err := ackFPort(1)
	require.NoError(t, err)
	require.Equal(t, uint8(1), p)

	p, err = ackFPort(223)
	require.NoError(t, err)
	require.Equal(t, uint8(223), p)

	for _, bad := range []int{0, -1, 224, 256, 257} {
		_, err := ackFPort(bad)
		require.Error(t, err, "port %d", bad)
	}
}
