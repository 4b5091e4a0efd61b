package cdr

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Decoder reads CDR primitives from a single buffer. The first error is sticky:
// later reads return zero values and Err reports the original failure.
type Decoder struct {
	data  []byte
	pos   int
	order binary.ByteOrder
	err   error
}

// NewDecoder validates the encapsulation header and positions the decoder at
// the start of the body.
func NewDecoder(data []byte) (*Decoder, error) {
	if len(data) < HeaderSize {
		return nil, &DecodeError{Offset: len(data), Err: ErrTruncated}
	}

	var order binary.ByteOrder
	switch binary.BigEndian.Uint16(data[0:2]) {
	case EncapsulationCDRLE:
		order = binary.LittleEndian
	case EncapsulationCDRBE:
		order = binary.BigEndian
	default:
		return nil, &DecodeError{Offset: 0, Err: ErrEncapsulation}
	}

	return &Decoder{data: data, pos: HeaderSize, order: order}, nil
}

// Err returns the first error encountered, if any.
func (d *Decoder) Err() error {
	return d.err
}

// Remaining reports the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.pos
}

func (d *Decoder) fail(field string, err error) {
	if d.err == nil {
		d.err = &DecodeError{Offset: d.pos, Field: field, Err: err}
	}
}

// take aligns to n and returns the next size bytes, or nil after failing.
func (d *Decoder) take(field string, align, size int) []byte {
	if d.err != nil {
		return nil
	}
	pos := d.pos
	if rem := (pos - HeaderSize) % align; rem != 0 {
		pos += align - rem
	}
	if pos > len(d.data) || len(d.data)-pos < size {
		d.fail(field, ErrTruncated)
		return nil
	}
	d.pos = pos + size
	return d.data[pos:d.pos]
}

func (d *Decoder) Uint8(field string) uint8 {
	b := d.take(field, 1, 1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *Decoder) Int32(field string) int32 {
	return int32(d.Uint32(field))
}

func (d *Decoder) Uint32(field string) uint32 {
	b := d.take(field, 4, 4)
	if b == nil {
		return 0
	}
	return d.order.Uint32(b)
}

func (d *Decoder) Float64(field string) float64 {
	b := d.take(field, 8, 8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(d.order.Uint64(b))
}

// String reads a length-prefixed, NUL-terminated UTF-8 string. A zero length
// is accepted as the empty string.
func (d *Decoder) String(field string) string {
	n := d.Uint32(field)
	if d.err != nil || n == 0 {
		return ""
	}
	if uint64(n) > uint64(d.Remaining()) {
		d.fail(field, ErrTruncated)
		return ""
	}
	b := d.data[d.pos : d.pos+int(n)]
	if b[len(b)-1] != 0 {
		d.fail(field, ErrMissingTerminator)
		return ""
	}
	if !utf8.Valid(b[:len(b)-1]) {
		d.fail(field, ErrInvalidString)
		return ""
	}
	d.pos += int(n)
	return string(b[:len(b)-1])
}
