package rosmsg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/open-teleop/turtlebridge/pkg/cdr"
)

func TestEncodeTwistLayout(t *testing.T) {
	data := EncodeTwist(Twist{Linear: Vector3{X: 5}, Angular: Vector3{Z: 2}})

	if len(data) != 52 {
		t.Fatalf("Expected 52 bytes (4 header + 6 float64), got %d", len(data))
	}
	if !bytes.Equal(data[:4], []byte{0x00, 0x01, 0x00, 0x00}) {
		t.Errorf("Unexpected header % x", data[:4])
	}

	fields := make([]float64, 6)
	for i := range fields {
		fields[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[4+8*i:]))
	}
	expected := []float64{5, 0, 0, 0, 0, 2}
	for i := range expected {
		if fields[i] != expected[i] {
			t.Errorf("Field %d: expected %v, got %v", i, expected[i], fields[i])
		}
	}
}

func TestEncodeLogLayout(t *testing.T) {
	data := EncodeLog(Log{
		Stamp:    Time{Sec: 1, Nanosec: 2},
		Level:    LogInfo,
		Name:     "n",
		Msg:      "hi",
		File:     "",
		Function: "f",
		Line:     7,
	})

	expected := []byte{
		0x00, 0x01, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00, // sec
		0x02, 0x00, 0x00, 0x00, // nanosec
		0x14, 0x00, 0x00, 0x00, // level + pad
		0x02, 0x00, 0x00, 0x00, 'n', 0x00, 0x00, 0x00, // name
		0x03, 0x00, 0x00, 0x00, 'h', 'i', 0x00, 0x00, // msg
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // file
		0x02, 0x00, 0x00, 0x00, 'f', 0x00, 0x00, 0x00, // function
		0x07, 0x00, 0x00, 0x00, // line
	}
	if !bytes.Equal(data, expected) {
		t.Fatalf("Unexpected encoding:\n got  % x\n want % x", data, expected)
	}
}

func TestTwistRoundTrip(t *testing.T) {
	twists := []Twist{
		{},
		{Linear: Vector3{X: 5}, Angular: Vector3{Z: 2}},
		// Peers may populate the planar-unused fields; they must survive untouched.
		{Linear: Vector3{X: -1.5, Y: 0.25, Z: 3}, Angular: Vector3{X: 1e-9, Y: -7, Z: math.Pi}},
		{Linear: Vector3{X: math.MaxFloat64}, Angular: Vector3{Z: math.Inf(-1)}},
	}

	for _, in := range twists {
		out, err := DecodeTwist(EncodeTwist(in))
		if err != nil {
			t.Fatalf("DecodeTwist failed for %+v: %v", in, err)
		}
		if out != in {
			t.Errorf("Round trip mismatch: got %+v, want %+v", out, in)
		}
	}
}

func TestLogRoundTrip(t *testing.T) {
	logs := []Log{
		{},
		{
			Stamp:    Time{Sec: -3, Nanosec: 999999999},
			Level:    LogFatal,
			Name:     "turtlesim",
			Msg:      "Spawning turtle [turtle1] at x=[5.544445], y=[5.544445]",
			File:     "/opt/ros/humble/src/turtle_frame.cpp",
			Function: "spawnTurtle",
			Line:     math.MaxUint32,
		},
		{Name: "ünïcødé", Msg: "✓"},
	}

	for _, in := range logs {
		out, err := DecodeLog(EncodeLog(in))
		if err != nil {
			t.Fatalf("DecodeLog failed for %+v: %v", in, err)
		}
		if out != in {
			t.Errorf("Round trip mismatch: got %+v, want %+v", out, in)
		}
	}
}

func TestDecodeTruncatedBuffers(t *testing.T) {
	twist := EncodeTwist(Twist{Linear: Vector3{X: 1}})
	for n := 0; n < len(twist); n++ {
		if _, err := DecodeTwist(twist[:n]); !errors.Is(err, cdr.ErrDecode) {
			t.Fatalf("Twist truncated to %d bytes: expected ErrDecode, got %v", n, err)
		}
	}

	log := EncodeLog(Log{Name: "node", Msg: "message", File: "file.cpp", Function: "fn", Line: 1})
	for n := 0; n < len(log); n++ {
		if _, err := DecodeLog(log[:n]); !errors.Is(err, cdr.ErrDecode) {
			t.Fatalf("Log truncated to %d bytes: expected ErrDecode, got %v", n, err)
		}
	}
}

func TestDecodeLogThreeBytes(t *testing.T) {
	_, err := DecodeLog([]byte{0x00, 0x01, 0x00})
	if !errors.Is(err, cdr.ErrTruncated) {
		t.Fatalf("Expected ErrTruncated, got %v", err)
	}
}

func TestDecodeIsIndependentPerBuffer(t *testing.T) {
	if _, err := DecodeTwist([]byte{0xde, 0xad}); err == nil {
		t.Fatalf("Expected error for garbage buffer")
	}
	want := Twist{Linear: Vector3{X: 3}, Angular: Vector3{Z: -1}}
	got, err := DecodeTwist(EncodeTwist(want))
	if err != nil {
		t.Fatalf("Decode after failure should succeed, got %v", err)
	}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestLogString(t *testing.T) {
	l := Log{Stamp: Time{Sec: 12, Nanosec: 500}, Name: "turtlesim", Msg: "hello"}
	if got := l.String(); got != "[12.500] [turtlesim]: hello" {
		t.Errorf("Unexpected rendering %q", got)
	}
}
