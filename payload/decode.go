package payload

import (
	"errors"
	"fmt"

	"github.com/akhenakh/gridcube/codec"
)

const (
	offType          = 0
	offMessageNumber = 1

	valueWidth = 6
)

var (
	ErrEmpty       = errors.New("empty payload")
	ErrUnknownType = errors.New("unknown payload type")
)

type decodeFunc func(buf []byte, s *Sample) error

var decoders = [...]decodeFunc{
	InstantPower:            decodeCounter,
	CumulativeEnergy:        decodeCounter,
	InfoRequest:             decodeNothing,
	ModelNumber:             decodeText,
	SerialNumber:            decodeText,
	FirmwareVersion:         decodeText,
	OperationalStateReport:  decodeState,
	ConnectionInfo:          decodeConnection,
	GridcubeFirmwareVersion: decodeText,
}

// PeekType returns the type tag without decoding the rest.
func PeekType(buf []byte) (Type, error) {
	if len(buf) == 0 {
		return 0, ErrEmpty
	}
	return Type(buf[offType]), nil
}

// Decode parses a full payload. It has no side effect, every field is read
// before anything is returned so a short buffer never yields a partial sample.
// Unknown tags return ErrUnknownType.
func Decode(deviceID string, buf []byte) (*Sample, error) {
	t, err := PeekType(buf)
	if err != nil {
		return nil, err
	}
	if !t.Known() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}

	s := &Sample{DeviceID: deviceID, Type: t}
	s.MessageNumber, err = codec.ReadUint8(buf, offMessageNumber)
	if err != nil {
		return nil, fmt.Errorf("decoding %s message number: %w", t, err)
	}

	if err := decoders[t](buf, s); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", t, err)
	}
	return s, nil
}

func decodeNothing(buf []byte, s *Sample) error {
	return nil
}

// tag(1) msg(1) value(6) gps(4)
func decodeCounter(buf []byte, s *Sample) (err error) {
	if s.Value, err = codec.ReadUintBE(buf, 2, valueWidth); err != nil {
		return err
	}
	s.GPSTime, err = codec.ReadUint32BE(buf, 8)
	return err
}

// tag(1) msg(1) text...
func decodeText(buf []byte, s *Sample) (err error) {
	s.Text, err = codec.ReadASCIITail(buf, 2)
	return err
}

// tag(1) msg(1) state(1) gps(4)
func decodeState(buf []byte, s *Sample) error {
	st, err := codec.ReadUint8(buf, 2)
	if err != nil {
		return err
	}
	s.State = OperationalState(st)
	s.GPSTime, err = codec.ReadUint32BE(buf, 3)
	return err
}

// tag(1) msg(1) network(1) rssi(1, signed) gps(4)
func decodeConnection(buf []byte, s *Sample) (err error) {
	if s.NetworkType, err = codec.ReadUint8(buf, 2); err != nil {
		return err
	}
	if s.RSSI, err = codec.ReadInt8(buf, 3); err != nil {
		return err
	}
	s.GPSTime, err = codec.ReadUint32BE(buf, 4)
	return err
}
