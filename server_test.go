package gridcube

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/TheThingsNetwork/ttn/core/types"
	log "github.com/go-kit/kit/log"
	"github.com/stretchr/testify/require"

	"github.com/akhenakh/gridcube/ack"
	"github.com/akhenakh/gridcube/payload"
	"github.com/akhenakh/gridcube/storage"
)

type memStore struct {
	points  []storage.Point
	latest  []storage.LatestSample
	touches []string
	tsErr   error
}

func (m *memStore) WritePoint(ctx context.Context, p storage.Point) error {
	if m.tsErr != nil {
		return m.tsErr
	}
	m.points = append(m.points, p)
	return nil
}

func (m *memStore) PutLatest(ctx context.Context, s storage.LatestSample) error {
	m.latest = append(m.latest, s)
	return nil
}

func (m *memStore) TouchDevice(ctx context.Context, deviceID string, at time.Time, attrs map[string]string) error {
	m.touches = append(m.touches, deviceID)
	return nil
}

type memTransmitter struct {
	msgs []*ack.Message
}

func (m *memTransmitter) Transmit(ctx context.Context, msg *ack.Message) error {
	m.msgs = append(m.msgs, msg)
	return nil
}

type panicWriter struct{}

func (panicWriter) Write(ctx context.Context, s *payload.Sample) error {
	panic("boom")
}

func newTestServer() (*Server, *memStore, *memTransmitter) {
	logger := log.NewNopLogger()
	m := &memStore{}
	tx := &memTransmitter{}
	sink := storage.NewSink(logger, m, m, m, storage.SinkConfig{})
	s := NewServer("test", logger, sink, ack.NewSender(logger, tx), Config{})
	return s, m, tx
}

func envelope(deviceID string, b []byte) Envelope {
	return Envelope{Uplink: Uplink{
		WirelessDeviceID: deviceID,
		PayloadData:      base64.StdEncoding.EncodeToString(b),
	}}
}

func TestHandleUplinkOperationalState(t *testing.T) {
	s, m, tx := newTestServer()

	env := Envelope{Uplink: Uplink{WirelessDeviceID: "dev1", PayloadData: "BgEBZGq2Kw=="}}
	resp, err := s.HandleUplink(context.Background(), env)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, resp.Body.Success)
	require.Equal(t, MessageSuccess, resp.Body.Message)
	require.Equal(t, "dev1", resp.Body.DeviceID)

	require.Len(t, tx.msgs, 1)
	require.Equal(t, []byte{13, 0, 1}, tx.msgs[0].Frame)
	require.Equal(t, "dev1", tx.msgs[0].DeviceID)

	require.Len(t, m.points, 1)
	require.Equal(t, time.Unix(0x646ab62b+315964800, 0).UTC(), m.points[0].Time.UTC())
	require.Equal(t, []payload.Measure{{Name: payload.MeasureOperationalState, Value: 1}}, m.points[0].Measures)
	require.Len(t, m.latest, 1)
	require.Equal(t, []string{"dev1"}, m.touches)
}

func TestHandleUplinkMalformed(t *testing.T) {
	s, m, tx := newTestServer()

	resp, err := s.HandleUplink(context.Background(), envelope("dev1", []byte{0}))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.False(t, resp.Body.Success)
	require.Equal(t, MessageFailure, resp.Body.Message)
	require.NotEmpty(t, resp.Body.Error)

	require.Empty(t, tx.msgs)
	require.Empty(t, m.points)
	require.Empty(t, m.touches)
}

func TestHandleUplinkUnknownType(t *testing.T) {
	s, m, tx := newTestServer()

	resp, err := s.HandleUplink(context.Background(), envelope("dev1", []byte{99, 1, 2, 3}))
	require.NoError(t, err)
	require.True(t, resp.Body.Success)

	require.Empty(t, tx.msgs)
	require.Empty(t, m.points)
	require.Empty(t, m.latest)
	require.Empty(t, m.touches)
}

func TestHandleUplinkInvalidEnvelope(t *testing.T) {
	s, _, tx := newTestServer()

	tests := []struct {
		name string
		env  Envelope
	}{
		{"no device", Envelope{Uplink: Uplink{PayloadData: "AAE="}}},
		{"no payload", Envelope{Uplink: Uplink{WirelessDeviceID: "dev1"}}},
		{"not base64", Envelope{Uplink: Uplink{WirelessDeviceID: "dev1", PayloadData: "!!"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.env.Payload()
			require.True(t, errors.Is(err, ErrInvalidEnvelope))

			resp, err := s.HandleUplink(context.Background(), tt.env)
			require.NoError(t, err)
			require.False(t, resp.Body.Success)
		})
	}
	require.Empty(t, tx.msgs)
}

func TestHandleUplinkStoreError(t *testing.T) {
	s, m, tx := newTestServer()
	m.tsErr = errors.New("throttled")

	b := payload.Encode(&payload.Sample{Type: payload.CumulativeEnergy, MessageNumber: 3, Value: 10, GPSTime: 1})
	resp, err := s.HandleUplink(context.Background(), envelope("dev1", b))
	require.NoError(t, err)
	require.False(t, resp.Body.Success)
	require.Contains(t, resp.Body.Error, "throttled")
	require.Empty(t, tx.msgs)
}

func TestHandleUplinkRecoversPanic(t *testing.T) {
	logger := log.NewNopLogger()
	tx := &memTransmitter{}
	s := NewServer("test", logger, panicWriter{}, ack.NewSender(logger, tx), Config{})

	b := payload.Encode(&payload.Sample{Type: payload.InstantPower, MessageNumber: 1, Value: 5, GPSTime: 1})
	resp, err := s.HandleUplink(context.Background(), envelope("dev1", b))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Contains(t, resp.Body.Error, "boom")
	require.Empty(t, tx.msgs)
}

func TestRouteAckTags(t *testing.T) {
	tests := []struct {
		typ payload.Type
		tag uint8
	}{
		{payload.InstantPower, 2},
		{payload.CumulativeEnergy, 1},
		{payload.InfoRequest, 2},
		{payload.ModelNumber, 3},
		{payload.SerialNumber, 4},
		{payload.FirmwareVersion, 5},
		{payload.OperationalStateReport, 0},
		{payload.ConnectionInfo, 7},
		{payload.GridcubeFirmwareVersion, 8},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			s, _, tx := newTestServer()
			in := &payload.Sample{Type: tt.typ, MessageNumber: 9, Value: 1, GPSTime: 1, Text: "v1"}
			require.NoError(t, s.Route(context.Background(), "dev1", payload.Encode(in)))
			require.Len(t, tx.msgs, 1)
			require.Equal(t, []byte{13, tt.tag, 9}, tx.msgs[0].Frame)
		})
	}
}

func TestHandleMessage(t *testing.T) {
	s, m, tx := newTestServer()

	b := payload.Encode(&payload.Sample{Type: payload.InstantPower, MessageNumber: 4, Value: 1200, GPSTime: 1})
	s.HandleMessage(context.Background(), &types.UplinkMessage{DevID: "ttn-dev", PayloadRaw: b})

	require.Len(t, m.points, 1)
	require.Equal(t, "ttn-dev", m.points[0].DeviceID)
	require.Len(t, tx.msgs, 1)
	require.Equal(t, []byte{13, 2, 4}, tx.msgs[0].Frame)
}
