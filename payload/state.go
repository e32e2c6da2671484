package payload

// OperationalState is the operating mode reported by a Gridcube.
type OperationalState uint8

const (
	StateOff OperationalState = iota
	StateRunningNormal
	StateRunningCurtailed
	StateRunningBoosted
	StateRunningPriceStream
	StateIdleNormal
	StateIdleCurtailed
	StateIdleBoosted
	StateFault
	StateOverrideOn
	StateOverrideOff
	StateCommissioning
	StateFirmwareUpdate
	StateStandby
	StateIdlePriceStream
)

const unknownState = "UNKNOWN"

var stateNames = [...]string{
	StateOff:                "OFF",
	StateRunningNormal:      "RUNNING_NORMAL",
	StateRunningCurtailed:   "RUNNING_CURTAILED",
	StateRunningBoosted:     "RUNNING_BOOSTED",
	StateRunningPriceStream: "RUNNING_PRICE_STREAM",
	StateIdleNormal:         "IDLE_NORMAL",
	StateIdleCurtailed:      "IDLE_CURTAILED",
	StateIdleBoosted:        "IDLE_BOOSTED",
	StateFault:              "FAULT",
	StateOverrideOn:         "OVERRIDE_ON",
	StateOverrideOff:        "OVERRIDE_OFF",
	StateCommissioning:      "COMMISSIONING",
	StateFirmwareUpdate:     "FIRMWARE_UPDATE",
	StateStandby:            "STANDBY",
	StateIdlePriceStream:    "IDLE_PRICE_STREAM",
}

// Known is false for state bytes the firmware does not define, those are
// still stored with their raw value.
func (s OperationalState) Known() bool {
	return int(s) < len(stateNames)
}

func (s OperationalState) String() string {
	if !s.Known() {
		return unknownState
	}
	return stateNames[s]
}
