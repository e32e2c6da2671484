package payload

import "github.com/akhenakh/gridcube/codec"

// Encode builds the wire form of s, it is the device side of Decode and is
// used by the payload tooling and tests.
func Encode(s *Sample) []byte {
	w := codec.NewWriter(12).Uint8(uint8(s.Type)).Uint8(s.MessageNumber)
	switch s.Type {
	case InstantPower, CumulativeEnergy:
		w.UintBE(s.Value, valueWidth).Uint32BE(s.GPSTime)
	case OperationalStateReport:
		w.Uint8(uint8(s.State)).Uint32BE(s.GPSTime)
	case ConnectionInfo:
		w.Uint8(s.NetworkType).Int8(s.RSSI).Uint32BE(s.GPSTime)
	case ModelNumber, SerialNumber, FirmwareVersion, GridcubeFirmwareVersion:
		w.String(s.Text)
	}
	return w.Bytes()
}
