package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akhenakh/gridcube/payload"
)

func TestNewSample(t *testing.T) {
	s, err := newSample(7, 255, 0, math.MaxUint32, 1, 2, -128, "")
	require.NoError(t, err)
	require.Equal(t, payload.ConnectionInfo, s.Type)
	require.Equal(t, uint8(255), s.MessageNumber)
	require.Equal(t, uint32(math.MaxUint32), s.GPSTime)
	require.Equal(t, int8(-128), s.RSSI)

	s, err = newSample(0, 1, 1<<48-1, 0, 0, 0, 0, "")
	require.NoError(t, err)
	require.Equal(t, uint64(1<<48-1), s.Value)
}

func TestNewSampleOutOfRange(t *testing.T) {
	tests := []struct {
		name    string
		typ     int
		msgNum  int
		value   uint64
		gps     int64
		state   int
		network int
		rssi    int
	}{
		{name: "unknown type", typ: 9},
		{name: "type wraps to a known one", typ: 256},
		{name: "message number", msgNum: 256},
		{name: "negative message number", msgNum: -1},
		{name: "value wider than 6 bytes", value: 1 << 48},
		{name: "gps past uint32", gps: math.MaxUint32 + 1},
		{name: "state", state: 300},
		{name: "network type", network: 256},
		{name: "rssi", rssi: 128},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newSample(tt.typ, tt.msgNum, tt.value, tt.gps, tt.state, tt.network, tt.rssi, "")
			require.Error(t, err)
		})
	}
}
