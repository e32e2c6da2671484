package payload

import (
	"time"

	"github.com/akhenakh/gridcube/gpstime"
)

// Measure names as stored in the time series and latest sample stores.
const (
	MeasureInstantPower     = "instant_power"
	MeasureCumulativeEnergy = "cumulative_energy"
	MeasureNetworkType      = "network_type"
	MeasureRSSI             = "rssi"
	MeasureOperationalState = "operational_state"
)

// AllMeasures lists every measure a latest sample record can hold.
var AllMeasures = []string{
	MeasureInstantPower,
	MeasureCumulativeEnergy,
	MeasureNetworkType,
	MeasureRSSI,
	MeasureOperationalState,
}

// Device info attributes written by text payloads.
const (
	AttrModelNumber             = "modelNumber"
	AttrSerialNumber            = "serialNumber"
	AttrFirmwareVersion         = "firmwareVersion"
	AttrGridcubeFirmwareVersion = "gridcubeFirmwareVersion"
)

type Measure struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// Sample is one decoded uplink, only the fields of its Type are meaningful.
type Sample struct {
	DeviceID      string           `json:"device_id"`
	Type          Type             `json:"type"`
	MessageNumber uint8            `json:"message_number"`
	Value         uint64           `json:"value,omitempty"`
	GPSTime       uint32           `json:"gps_time,omitempty"`
	State         OperationalState `json:"state,omitempty"`
	NetworkType   uint8            `json:"network_type,omitempty"`
	RSSI          int8             `json:"rssi,omitempty"`
	Text          string           `json:"text,omitempty"`
}

// Timestamped reports whether the payload carries a GPS timestamp.
func (s *Sample) Timestamped() bool {
	switch s.Type {
	case InstantPower, CumulativeEnergy, OperationalStateReport, ConnectionInfo:
		return true
	}
	return false
}

// Time is the device timestamp converted to Unix time, zero when the payload
// has none.
func (s *Sample) Time() time.Time {
	if !s.Timestamped() {
		return time.Time{}
	}
	return gpstime.ToTime(s.GPSTime)
}

// AckTag is the tag to reply with.
func (s *Sample) AckTag() uint8 {
	t, _ := ReplyTag(s.Type)
	return t
}

// Measures projects the sample into time series measures, nil for payloads
// that are not persisted as measures.
func (s *Sample) Measures() []Measure {
	switch s.Type {
	case InstantPower:
		return []Measure{{Name: MeasureInstantPower, Value: int64(s.Value)}}
	case CumulativeEnergy:
		return []Measure{{Name: MeasureCumulativeEnergy, Value: int64(s.Value)}}
	case OperationalStateReport:
		return []Measure{{Name: MeasureOperationalState, Value: int64(s.State)}}
	case ConnectionInfo:
		return []Measure{
			{Name: MeasureNetworkType, Value: int64(s.NetworkType)},
			{Name: MeasureRSSI, Value: int64(s.RSSI)},
		}
	}
	return nil
}

// Attribute returns the device info attribute set by a text payload.
func (s *Sample) Attribute() (name, value string, ok bool) {
	switch s.Type {
	case ModelNumber:
		return AttrModelNumber, s.Text, true
	case SerialNumber:
		return AttrSerialNumber, s.Text, true
	case FirmwareVersion:
		return AttrFirmwareVersion, s.Text, true
	case GridcubeFirmwareVersion:
		return AttrGridcubeFirmwareVersion, s.Text, true
	}
	return "", "", false
}
