// Package cdr implements the OMG Common Data Representation used on the wire by
// ROS2 peers: a 4-byte encapsulation header followed by a body whose primitives
// are aligned to their own size relative to the start of the body.
package cdr

import (
	"errors"
	"fmt"
)

// Encapsulation identifiers carried in the first two header bytes.
const (
	EncapsulationCDRBE uint16 = 0x0000
	EncapsulationCDRLE uint16 = 0x0001
)

// HeaderSize is the length of the encapsulation header preceding the body.
const HeaderSize = 4

// Common errors
var (
	// ErrDecode is matched by every error returned while decoding.
	ErrDecode = errors.New("cdr decode error")

	ErrTruncated         = errors.New("buffer truncated")
	ErrEncapsulation     = errors.New("unsupported encapsulation")
	ErrInvalidString     = errors.New("invalid string")
	ErrMissingTerminator = errors.New("string missing NUL terminator")
)

// DecodeError describes where in a buffer decoding failed.
type DecodeError struct {
	Offset int    // byte offset into the full buffer, header included
	Field  string // field being decoded, empty for the header
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("cdr: %v at offset %d", e.Err, e.Offset)
	}
	return fmt.Sprintf("cdr: %s: %v at offset %d", e.Field, e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports ErrDecode so callers can match any decode failure.
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// Marshaler is implemented by records that can write themselves to an Encoder.
type Marshaler interface {
	MarshalCDR(e *Encoder)
}

// Unmarshaler is implemented by records that can read themselves from a Decoder.
type Unmarshaler interface {
	UnmarshalCDR(d *Decoder) error
}

// Marshal encodes v as little-endian CDR, header included.
func Marshal(v Marshaler) []byte {
	e := NewEncoder()
	v.MarshalCDR(e)
	return e.Bytes()
}

// Unmarshal decodes a single self-contained buffer into v. Trailing bytes after
// the record are ignored, since peers may pad the body to a 4-byte boundary.
func Unmarshal(data []byte, v Unmarshaler) error {
	d, err := NewDecoder(data)
	if err != nil {
		return err
	}
	return v.UnmarshalCDR(d)
}
