// Package codec reads fixed width big endian fields out of device payloads.
//
// Readers never panic: every access past the end of the buffer returns
// ErrOutOfBounds, callers are expected to know the layout of what they read.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds  = errors.New("read out of bounds")
	ErrInvalidWidth = errors.New("invalid integer width")
)

func check(buf []byte, offset, width int) error {
	if offset < 0 || width < 0 || offset+width > len(buf) {
		return fmt.Errorf("%w: %d bytes at offset %d, buffer is %d bytes", ErrOutOfBounds, width, offset, len(buf))
	}
	return nil
}

func ReadUint8(buf []byte, offset int) (uint8, error) {
	if err := check(buf, offset, 1); err != nil {
		return 0, err
	}
	return buf[offset], nil
}

func ReadInt8(buf []byte, offset int) (int8, error) {
	v, err := ReadUint8(buf, offset)
	return int8(v), err
}

func ReadUint32BE(buf []byte, offset int) (uint32, error) {
	if err := check(buf, offset, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[offset:]), nil
}

// MaxUintWidth is the widest integer on the wire, the energy counters.
const MaxUintWidth = 6

// ReadUintBE reads an unsigned big endian integer of width bytes (1 to
// MaxUintWidth).
func ReadUintBE(buf []byte, offset, width int) (uint64, error) {
	if width < 1 || width > MaxUintWidth {
		return 0, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
	if err := check(buf, offset, width); err != nil {
		return 0, err
	}
	var v uint64
	for _, b := range buf[offset : offset+width] {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

// ReadASCIITail returns everything from offset to the end as a string.
// There is no length prefix and no null termination handling, an offset equal
// to the buffer length yields an empty string.
func ReadASCIITail(buf []byte, offset int) (string, error) {
	if err := check(buf, offset, 0); err != nil {
		return "", err
	}
	return string(buf[offset:]), nil
}
