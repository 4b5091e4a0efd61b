package cdr

import (
	"encoding/binary"
	"math"
)

// Encoder appends little-endian CDR primitives to a growing buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder with the CDR_LE encapsulation header written.
func NewEncoder() *Encoder {
	buf := make([]byte, HeaderSize, 64)
	binary.BigEndian.PutUint16(buf[0:2], EncapsulationCDRLE)
	return &Encoder{buf: buf}
}

// Bytes returns the encoded buffer.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

func (e *Encoder) align(n int) {
	for (len(e.buf)-HeaderSize)%n != 0 {
		e.buf = append(e.buf, 0)
	}
}

func (e *Encoder) WriteUint8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *Encoder) WriteInt32(v int32) {
	e.WriteUint32(uint32(v))
}

func (e *Encoder) WriteUint32(v uint32) {
	e.align(4)
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *Encoder) WriteFloat64(v float64) {
	e.align(8)
	e.buf = binary.LittleEndian.AppendUint64(e.buf, math.Float64bits(v))
}

// WriteString writes a uint32 length that counts the trailing NUL, the UTF-8
// bytes, then the NUL.
func (e *Encoder) WriteString(s string) {
	e.WriteUint32(uint32(len(s) + 1))
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0)
}
