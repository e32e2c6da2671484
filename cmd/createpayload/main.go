package main

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/akhenakh/gridcube"
	"github.com/akhenakh/gridcube/codec"
	"github.com/akhenakh/gridcube/gpstime"
	"github.com/akhenakh/gridcube/payload"
)

var (
	deviceID = flag.String("deviceID", "test-device", "The wireless device id used in the envelope")
	typ      = flag.Int("type", int(payload.InstantPower), "The payload type tag, 0 to 8")
	msgNum   = flag.Int("msg", 1, "The message number")
	value    = flag.Uint64("value", 0, "Value for instant power and cumulative energy, 48 bits")
	state    = flag.Int("state", int(payload.StateRunningNormal), "The operational state")
	network  = flag.Int("network", 1, "The network type for connection info")
	rssi     = flag.Int("rssi", -70, "The RSSI for connection info")
	text     = flag.String("text", "", "The string for model, serial and firmware payloads")
	gps      = flag.Int64("gps", -1, "The GPS epoch timestamp, now when negative")
)

func main() {
	flag.Parse()

	ts := *gps
	if ts < 0 {
		ts = int64(gpstime.FromTime(time.Now()))
	}

	sample, err := newSample(*typ, *msgNum, *value, ts, *state, *network, *rssi, *text)
	if err != nil {
		log.Fatal(err)
	}
	t := sample.Type
	b := payload.Encode(sample)

	env := gridcube.Envelope{Uplink: gridcube.Uplink{
		WirelessDeviceID: *deviceID,
		PayloadData:      base64.StdEncoding.EncodeToString(b),
	}}
	envb, err := json.Marshal(env)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Type", t)
	fmt.Println("Data", hex.EncodeToString(b))
	fmt.Println("Base64", env.Uplink.PayloadData)
	fmt.Println("Envelope", string(envb))
}

// newSample range checks the flag values before narrowing them to the wire
// widths.
func newSample(typ, msgNum int, value uint64, gps int64, state, network, rssi int, text string) (*payload.Sample, error) {
	if typ < 0 || typ > math.MaxUint8 || !payload.Type(typ).Known() {
		return nil, fmt.Errorf("unknown payload type %d", typ)
	}
	if msgNum < 0 || msgNum > math.MaxUint8 {
		return nil, fmt.Errorf("message number %d out of range 0..255", msgNum)
	}
	if value >= 1<<(8*codec.MaxUintWidth) {
		return nil, fmt.Errorf("value %d does not fit in %d bytes", value, codec.MaxUintWidth)
	}
	if gps < 0 || gps > math.MaxUint32 {
		return nil, fmt.Errorf("gps timestamp %d out of range 0..%d", gps, uint32(math.MaxUint32))
	}
	if state < 0 || state > math.MaxUint8 {
		return nil, fmt.Errorf("state %d out of range 0..255", state)
	}
	if network < 0 || network > math.MaxUint8 {
		return nil, fmt.Errorf("network type %d out of range 0..255", network)
	}
	if rssi < math.MinInt8 || rssi > math.MaxInt8 {
		return nil, fmt.Errorf("rssi %d out of range -128..127", rssi)
	}

	return &payload.Sample{
		Type:          payload.Type(typ),
		MessageNumber: uint8(msgNum),
		Value:         value,
		GPSTime:       uint32(gps),
		State:         payload.OperationalState(state),
		NetworkType:   uint8(network),
		RSSI:          int8(rssi),
		Text:          text,
	}, nil
}
