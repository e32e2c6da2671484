package gpstime

import "time"

// EraStartUnix is 1980-01-06T00:00:00Z expressed in Unix seconds, the GPS epoch
// used by the device firmware.
const EraStartUnix = 315964800

// ToUnixSeconds converts device GPS seconds to Unix seconds.
// No leap second correction is applied, the firmware does not apply one either.
func ToUnixSeconds(gps uint32) uint64 {
	return uint64(gps) + EraStartUnix
}

// ToTime returns the UTC time for device GPS seconds.
func ToTime(gps uint32) time.Time {
	return time.Unix(int64(ToUnixSeconds(gps)), 0).UTC()
}

// FromTime is the inverse of ToTime, times before the GPS era or past the
// uint32 range are clamped.
func FromTime(t time.Time) uint32 {
	s := t.Unix() - EraStartUnix
	if s < 0 {
		return 0
	}
	if s > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(s)
}
