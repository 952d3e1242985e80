package tle

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/orbitviz/trajgo/internal/transform"
)

// ISS element set with a mid-2024 epoch (day 100.5 = April 9, 12:00 UTC).
const (
	issLine1 = "1 25544U 98067A   24100.50000000  .00016717  00000-0  10270-3 0  9005"
	issLine2 = "2 25544  51.6400 100.0000 0001000   0.0000   0.0000 15.50000000    09"
)

func TestParse(t *testing.T) {
	e, err := Parse(issLine1, issLine2)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if e.NORADID != 25544 {
		t.Errorf("NORADID = %d, want 25544", e.NORADID)
	}

	// 24100.5 → 2024, day 100 at 12:00 UTC (2024 is a leap year; day 100 = April 9).
	want := time.Date(2024, 4, 9, 12, 0, 0, 0, time.UTC)
	if !e.Epoch.Equal(want) {
		t.Errorf("Epoch = %v, want %v", e.Epoch, want)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		line1 string
		line2 string
	}{
		{name: "short line1", line1: "1 25544U", line2: issLine2},
		{name: "short line2", line1: issLine1, line2: "2 25544"},
		{name: "swapped prefixes", line1: issLine2, line2: issLine1},
		{name: "empty", line1: "", line2: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.line1, tt.line2)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("error %v is not ErrInvalid", err)
			}
		})
	}
}

func TestParseEpochCentury(t *testing.T) {
	// Year 98 → 1998.
	got, err := parseEpoch("98001.00000000")
	if err != nil {
		t.Fatalf("parseEpoch: %v", err)
	}
	if got.Year() != 1998 {
		t.Errorf("year = %d, want 1998", got.Year())
	}

	// Year 56 → 2056.
	got, err = parseEpoch("56001.00000000")
	if err != nil {
		t.Fatalf("parseEpoch: %v", err)
	}
	if got.Year() != 2056 {
		t.Errorf("year = %d, want 2056", got.Year())
	}
}

func TestStateVectorAtEpoch(t *testing.T) {
	e, err := Parse(issLine1, issLine2)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	state, err := e.StateVector(e.Epoch)
	if err != nil {
		t.Fatalf("StateVector: %v", err)
	}

	// ISS altitude ~420 km → geocentric radius ~6800 km.
	r := state.Position.Norm()
	if r < 6500 || r > 7100 {
		t.Errorf("position magnitude %.1f km outside LEO range", r)
	}

	// LEO orbital speed is ~7.7 km/s.
	v := state.Velocity.Norm()
	if v < 7.0 || v > 8.2 {
		t.Errorf("velocity magnitude %.2f km/s outside LEO range", v)
	}

	if !transform.ValidOrbit(state.Position) {
		t.Error("state failed orbit validity check")
	}

	if math.IsNaN(state.Position.X) {
		t.Error("NaN position component")
	}
}
