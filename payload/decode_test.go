package payload

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akhenakh/gridcube/codec"
)

func TestDecodeCounters(t *testing.T) {
	for _, typ := range []Type{InstantPower, CumulativeEnergy} {
		in := &Sample{Type: typ, MessageNumber: 42, Value: 0xA1B2C3D4E5F6, GPSTime: 1684818475}
		buf := Encode(in)
		require.Len(t, buf, 12)

		s, err := Decode("dev1", buf)
		require.NoError(t, err)
		require.Equal(t, typ, s.Type)
		require.Equal(t, "dev1", s.DeviceID)
		require.Equal(t, uint8(42), s.MessageNumber)
		require.Equal(t, in.Value, s.Value)
		require.Equal(t, in.GPSTime, s.GPSTime)
	}
}

func TestDecodeOperationalState(t *testing.T) {
	buf, err := hex.DecodeString("060101646ab62b")
	require.NoError(t, err)

	s, err := Decode("dev1", buf)
	require.NoError(t, err)
	require.Equal(t, OperationalStateReport, s.Type)
	require.Equal(t, uint8(1), s.MessageNumber)
	require.Equal(t, StateRunningNormal, s.State)
	require.Equal(t, "RUNNING_NORMAL", s.State.String())
	require.Equal(t, uint32(0x646ab62b), s.GPSTime)
	require.Equal(t, time.Unix(0x646ab62b+315964800, 0).UTC(), s.Time())
	require.Equal(t, []Measure{{Name: MeasureOperationalState, Value: 1}}, s.Measures())
	require.Equal(t, uint8(0), s.AckTag())
}

func TestStateNames(t *testing.T) {
	require.Equal(t, "IDLE_PRICE_STREAM", OperationalState(14).String())
	require.True(t, OperationalState(14).Known())

	buf := codec.NewWriter(7).Uint8(6).Uint8(3).Uint8(99).Uint32BE(10).Bytes()
	s, err := Decode("dev1", buf)
	require.NoError(t, err)
	require.False(t, s.State.Known())
	require.Equal(t, "UNKNOWN", s.State.String())
	require.Equal(t, int64(99), s.Measures()[0].Value)
}

func TestDecodeConnectionInfo(t *testing.T) {
	buf := []byte{7, 9, 2, 0xCE, 0x64, 0x6a, 0xb6, 0x2b}
	s, err := Decode("dev1", buf)
	require.NoError(t, err)
	require.Equal(t, uint8(2), s.NetworkType)
	require.Equal(t, int8(-50), s.RSSI)
	require.Equal(t, []Measure{
		{Name: MeasureNetworkType, Value: 2},
		{Name: MeasureRSSI, Value: -50},
	}, s.Measures())
}

func TestDecodeText(t *testing.T) {
	for typ, attr := range map[Type]string{
		ModelNumber:             AttrModelNumber,
		SerialNumber:            AttrSerialNumber,
		FirmwareVersion:         AttrFirmwareVersion,
		GridcubeFirmwareVersion: AttrGridcubeFirmwareVersion,
	} {
		buf := append([]byte{byte(typ), 5}, "v1.2.3"...)
		s, err := Decode("dev1", buf)
		require.NoError(t, err)
		require.Equal(t, "v1.2.3", s.Text)
		require.False(t, s.Timestamped())
		require.Nil(t, s.Measures())

		name, value, ok := s.Attribute()
		require.True(t, ok)
		require.Equal(t, attr, name)
		require.Equal(t, "v1.2.3", value)
	}
}

func TestDecodeInfoRequest(t *testing.T) {
	s, err := Decode("dev1", []byte{2, 77})
	require.NoError(t, err)
	require.Equal(t, uint8(77), s.MessageNumber)
	require.Equal(t, uint8(2), s.AckTag())
	require.Nil(t, s.Measures())
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode("dev1", []byte{0})
	require.ErrorIs(t, err, codec.ErrOutOfBounds)

	_, err = Decode("dev1", []byte{0, 1, 0, 0, 0, 0, 0, 1, 0, 0})
	require.ErrorIs(t, err, codec.ErrOutOfBounds)

	_, err = Decode("dev1", []byte{7, 1, 2, 0xCE})
	require.ErrorIs(t, err, codec.ErrOutOfBounds)

	_, err = Decode("dev1", nil)
	require.ErrorIs(t, err, ErrEmpty)
}

func TestDecodeUnknown(t *testing.T) {
	_, err := Decode("dev1", []byte{99, 1, 2, 3})
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestReplyTags(t *testing.T) {
	want := map[Type]uint8{
		InstantPower:            2,
		CumulativeEnergy:        1,
		InfoRequest:             2,
		ModelNumber:             3,
		SerialNumber:            4,
		FirmwareVersion:         5,
		OperationalStateReport:  0,
		ConnectionInfo:          7,
		GridcubeFirmwareVersion: 8,
	}
	for typ, tag := range want {
		got, ok := ReplyTag(typ)
		require.True(t, ok, typ.String())
		require.Equal(t, tag, got, typ.String())
	}

	_, ok := ReplyTag(Type(9))
	require.False(t, ok)
}
