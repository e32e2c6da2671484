package codec

import "fmt"

// Writer appends big endian fields, it mirrors the readers and is used to build
// acknowledgment frames and test payloads.
type Writer struct {
	buf []byte
}

func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

func (w *Writer) Uint8(v uint8) *Writer {
	w.buf = append(w.buf, v)
	return w
}

func (w *Writer) Int8(v int8) *Writer {
	return w.Uint8(uint8(v))
}

func (w *Writer) Uint32BE(v uint32) *Writer {
	return w.UintBE(uint64(v), 4)
}

// UintBE appends the width lowest bytes of v, it panics on a width outside 1..MaxUintWidth
// since that is a programming error.
func (w *Writer) UintBE(v uint64, width int) *Writer {
	if width < 1 || width > MaxUintWidth {
		panic(fmt.Sprintf("codec: invalid width %d", width))
	}
	for i := width - 1; i >= 0; i-- {
		w.buf = append(w.buf, byte(v>>(8*uint(i))))
	}
	return w
}

func (w *Writer) String(s string) *Writer {
	w.buf = append(w.buf, s...)
	return w
}

func (w *Writer) Bytes() []byte {
	return w.buf
}
