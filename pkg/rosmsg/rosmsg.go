// Package rosmsg mirrors the ROS2 message types exchanged with the turtlesim
// network and their CDR encodings.
package rosmsg

import (
	"fmt"

	"github.com/open-teleop/turtlebridge/pkg/cdr"
)

// Vector3 matches geometry_msgs/msg/Vector3.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Twist matches geometry_msgs/msg/Twist.
type Twist struct {
	Linear  Vector3 `json:"linear"`
	Angular Vector3 `json:"angular"`
}

// Time matches builtin_interfaces/msg/Time.
type Time struct {
	Sec     int32  `json:"sec"`
	Nanosec uint32 `json:"nanosec"`
}

// Log matches rcl_interfaces/msg/Log, as published on /rosout.
type Log struct {
	Stamp    Time   `json:"stamp"`
	Level    uint8  `json:"level"`
	Name     string `json:"name"`
	Msg      string `json:"msg"`
	File     string `json:"file"`
	Function string `json:"function"`
	Line     uint32 `json:"line"`
}

// Log severity levels as defined by rcl_interfaces/msg/Log.
const (
	LogDebug uint8 = 10
	LogInfo  uint8 = 20
	LogWarn  uint8 = 30
	LogError uint8 = 40
	LogFatal uint8 = 50
)

func (v *Vector3) marshal(e *cdr.Encoder) {
	e.WriteFloat64(v.X)
	e.WriteFloat64(v.Y)
	e.WriteFloat64(v.Z)
}

func (v *Vector3) unmarshal(d *cdr.Decoder, field string) {
	v.X = d.Float64(field + ".x")
	v.Y = d.Float64(field + ".y")
	v.Z = d.Float64(field + ".z")
}

// MarshalCDR implements cdr.Marshaler.
func (t *Twist) MarshalCDR(e *cdr.Encoder) {
	t.Linear.marshal(e)
	t.Angular.marshal(e)
}

// UnmarshalCDR implements cdr.Unmarshaler.
func (t *Twist) UnmarshalCDR(d *cdr.Decoder) error {
	t.Linear.unmarshal(d, "linear")
	t.Angular.unmarshal(d, "angular")
	return d.Err()
}

// MarshalCDR implements cdr.Marshaler.
func (l *Log) MarshalCDR(e *cdr.Encoder) {
	e.WriteInt32(l.Stamp.Sec)
	e.WriteUint32(l.Stamp.Nanosec)
	e.WriteUint8(l.Level)
	e.WriteString(l.Name)
	e.WriteString(l.Msg)
	e.WriteString(l.File)
	e.WriteString(l.Function)
	e.WriteUint32(l.Line)
}

// UnmarshalCDR implements cdr.Unmarshaler.
func (l *Log) UnmarshalCDR(d *cdr.Decoder) error {
	l.Stamp.Sec = d.Int32("stamp.sec")
	l.Stamp.Nanosec = d.Uint32("stamp.nanosec")
	l.Level = d.Uint8("level")
	l.Name = d.String("name")
	l.Msg = d.String("msg")
	l.File = d.String("file")
	l.Function = d.String("function")
	l.Line = d.Uint32("line")
	return d.Err()
}

// String renders the entry the way it is shown on the console.
func (l Log) String() string {
	return fmt.Sprintf("[%d.%d] [%s]: %s", l.Stamp.Sec, l.Stamp.Nanosec, l.Name, l.Msg)
}

// EncodeTwist returns the CDR encoding of t.
func EncodeTwist(t Twist) []byte {
	return cdr.Marshal(&t)
}

// DecodeTwist decodes a CDR-encoded Twist.
func DecodeTwist(data []byte) (Twist, error) {
	var t Twist
	if err := cdr.Unmarshal(data, &t); err != nil {
		return Twist{}, fmt.Errorf("failed to decode Twist (%d bytes): %w", len(data), err)
	}
	return t, nil
}

// EncodeLog returns the CDR encoding of l.
func EncodeLog(l Log) []byte {
	return cdr.Marshal(&l)
}

// DecodeLog decodes a CDR-encoded Log.
func DecodeLog(data []byte) (Log, error) {
	var l Log
	if err := cdr.Unmarshal(data, &l); err != nil {
		return Log{}, fmt.Errorf("failed to decode Log (%d bytes): %w", len(data), err)
	}
	return l, nil
}
