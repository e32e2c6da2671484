package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"time"
)

const Prefix = "GC"

const (
	pointKind  = "P"
	sampleKind = "S"
	infoKind   = "I"
	listKind   = "L"
)

var errShortKey = errors.New("key too short")

// deviceKey returns Prefix+kind+len(device)+device, the length keeps one
// device's prefix from matching another id that extends it.
func deviceKey(kind, deviceID string, extra int) []byte {
	k := make([]byte, 0, len(Prefix)+len(kind)+2+len(deviceID)+extra)
	k = append(k, Prefix+kind...)
	k = append(k, byte(len(deviceID)>>8), byte(len(deviceID)))
	k = append(k, deviceID...)
	return k
}

// PointKey is the time series key PointPrefix+reverse ts+measure,
// the reverse timestamp makes iteration newest first.
func PointKey(deviceID string, t time.Time, measure string) []byte {
	pk := deviceKey(pointKind, deviceID, 8+len(measure))
	pk = append(pk, int64tob(math.MaxInt64-t.UnixNano())...)
	pk = append(pk, measure...)
	return pk
}

// PointPrefix returns the prefix of every point for deviceID.
func PointPrefix(deviceID string) []byte {
	return deviceKey(pointKind, deviceID, 0)
}

// ReadPointKey returns device, time, measure
func ReadPointKey(pk []byte) (string, time.Time, string, error) {
	var t time.Time
	if len(pk) < len(Prefix)+1+2 {
		return "", t, "", errShortKey
	}
	body := pk[len(Prefix)+1:]
	n := int(binary.BigEndian.Uint16(body))
	body = body[2:]
	if len(body) < n+8 {
		return "", t, "", errShortKey
	}

	var ts int64
	if err := binary.Read(bytes.NewReader(body[n:n+8]), binary.BigEndian, &ts); err != nil {
		return "", t, "", err
	}
	// reverse ts back
	t = time.Unix(0, math.MaxInt64-ts).UTC()

	return string(body[:n]), t, string(body[n+8:]), nil
}

// SampleKey is the latest sample key SamplePrefix+reverse ts.
func SampleKey(deviceID string, t time.Time) []byte {
	sk := deviceKey(sampleKind, deviceID, 8)
	sk = append(sk, int64tob(math.MaxInt64-t.UnixNano())...)
	return sk
}

func SamplePrefix(deviceID string) []byte {
	return deviceKey(sampleKind, deviceID, 0)
}

// ReadSampleKey returns the time of a sample key.
func ReadSampleKey(sk []byte) (time.Time, error) {
	if len(sk) < 8 {
		return time.Time{}, errShortKey
	}
	ts := int64(binary.BigEndian.Uint64(sk[len(sk)-8:]))
	return time.Unix(0, math.MaxInt64-ts).UTC(), nil
}

// InfoKey is the device info key Prefix+"I"+device.
func InfoKey(deviceID string) []byte {
	return []byte(Prefix + infoKind + deviceID)
}

// ListKey returns the key used to list all devices
func ListKey(deviceID string) []byte {
	// a key Prefix+"L"+key
	return []byte(Prefix + listKind + deviceID)
}

func ListPrefix() []byte {
	return []byte(Prefix + listKind)
}
