package payload

import "fmt"

// Type is the payload type tag carried in byte 0 of every uplink.
type Type uint8

const (
	InstantPower Type = iota
	CumulativeEnergy
	InfoRequest
	ModelNumber
	SerialNumber
	FirmwareVersion
	OperationalStateReport
	ConnectionInfo
	GridcubeFirmwareVersion
)

var typeNames = [...]string{
	InstantPower:            "instant_power",
	CumulativeEnergy:        "cumulative_energy",
	InfoRequest:             "info_request",
	ModelNumber:             "model_number",
	SerialNumber:            "serial_number",
	FirmwareVersion:         "firmware_version",
	OperationalStateReport:  "operational_state",
	ConnectionInfo:          "connection_info",
	GridcubeFirmwareVersion: "gridcube_firmware_version",
}

// replyTags maps a request type to the tag the firmware expects in the ack.
// Instant power and operational state do not echo their own tag.
var replyTags = [...]uint8{
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

func (t Type) Known() bool {
	return int(t) < len(typeNames)
}

func (t Type) String() string {
	if !t.Known() {
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
	return typeNames[t]
}

// ReplyTag returns the ack tag for t, ok is false for unknown types.
func ReplyTag(t Type) (uint8, bool) {
	if !t.Known() {
		return 0, false
	}
	return replyTags[t], true
}

// IsText reports whether t carries a free form string to the end of the buffer.
func (t Type) IsText() bool {
	switch t {
	case ModelNumber, SerialNumber, FirmwareVersion, GridcubeFirmwareVersion:
		return true
	}
	return false
}
