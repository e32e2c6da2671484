package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadIntegers(t *testing.T) {
	buf := []byte{0x06, 0x01, 0xCE, 0x64, 0x6a, 0xb6, 0x2b}

	v8, err := ReadUint8(buf, 1)
	require.NoError(t, err)
	require.Equal(t, uint8(1), v8)

	i8, err := ReadInt8(buf, 2)
	require.NoError(t, err)
	require.Equal(t, int8(-50), i8)

	v32, err := ReadUint32BE(buf, 3)
	require.NoError(t, err)
	require.Equal(t, uint32(0x646ab62b), v32)
	require.Equal(t, uint32(1684715051), v32)
}

func TestReadUintBE(t *testing.T) {
	buf := []byte{0xFF, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	v, err := ReadUintBE(buf, 1, 6)
	require.NoError(t, err)
	require.Equal(t, uint64(0x010203040506), v)

	_, err = ReadUintBE(buf, 2, 6)
	require.ErrorIs(t, err, ErrOutOfBounds)

	for _, w := range []int{0, 7, 8} {
		_, err = ReadUintBE(buf, 0, w)
		require.ErrorIs(t, err, ErrInvalidWidth)
	}
}

func TestReadASCIITail(t *testing.T) {
	buf := append([]byte{3, 7}, "GC-100"...)
	s, err := ReadASCIITail(buf, 2)
	require.NoError(t, err)
	require.Equal(t, "GC-100", s)

	s, err = ReadASCIITail(buf, len(buf))
	require.NoError(t, err)
	require.Empty(t, s)

	_, err = ReadASCIITail(buf, len(buf)+1)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestOutOfBounds(t *testing.T) {
	buf := []byte{0}
	_, err := ReadUint8(buf, 1)
	require.ErrorIs(t, err, ErrOutOfBounds)
	_, err = ReadUint32BE(buf, 0)
	require.ErrorIs(t, err, ErrOutOfBounds)
	_, err = ReadInt8(buf, -1)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestWriterRoundTrip(t *testing.T) {
	b := NewWriter(12).Uint8(0).Uint8(9).UintBE(123456789012, 6).Uint32BE(42).Bytes()
	require.Len(t, b, 12)

	v, err := ReadUintBE(b, 2, 6)
	require.NoError(t, err)
	require.Equal(t, uint64(123456789012), v)

	ts, err := ReadUint32BE(b, 8)
	require.NoError(t, err)
	require.Equal(t, uint32(42), ts)
}

func TestWriterInvalidWidth(t *testing.T) {
	require.Panics(t, func() { NewWriter(8).UintBE(1, MaxUintWidth+1) })
	require.Panics(t, func() { NewWriter(8).UintBE(1, 0) })
}
