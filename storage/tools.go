package storage

import "encoding/binary"

func int64tob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

// Int64tob encodes a measure value.
func Int64tob(v int64) []byte {
	return int64tob(v)
}

// Btoint64 decodes a measure value, short slices decode to 0.
func Btoint64(b []byte) int64 {
	if len(b) < 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}
