// Package tle validates two-line element sets and derives the satellite's
// epoch and state vector from them.
//
// Propagation uses github.com/joshuaferrara/go-satellite, which outputs TEME
// states. Propagate() takes the Satellite by value, so SGP4 error codes are
// not visible to the caller; propagation failures are detected by checking
// the output for NaN/Inf and unreasonable position magnitudes. The library
// calls log.Fatal on malformed input, so lines are strictly validated before
// they ever reach it.
package tle

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/orbitviz/trajgo/internal/transform"
)

// ErrInvalid marks a TLE that failed validation or SGP4 initialization.
// Surfaced to callers as a bad-request condition.
var ErrInvalid = errors.New("invalid TLE")

// MinLineLength is the shortest line accepted at the API boundary. Standard
// TLE lines are exactly 69 characters; requests are rejected earlier, with a
// clearer message, when a line cannot possibly be complete.
const MinLineLength = 60

const lineLength = 69

// TLE is a validated two-line element set.
type TLE struct {
	Line1 string
	Line2 string
	// NORADID is the catalog number from columns 3-7 of line 1.
	NORADID int
	// Epoch is the element-set reference epoch from columns 19-32 of line 1,
	// interpreted in UTC.
	Epoch time.Time
}

// Parse validates the two lines and extracts the catalog number and epoch.
func Parse(line1, line2 string) (TLE, error) {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if err := validateLines(line1, line2); err != nil {
		return TLE{}, fmt.Errorf("%w: %s", ErrInvalid, err)
	}

	noradStr := strings.TrimSpace(line1[2:7])
	noradID, err := strconv.Atoi(noradStr)
	if err != nil {
		return TLE{}, fmt.Errorf("%w: catalog number %q", ErrInvalid, noradStr)
	}

	epoch, err := parseEpoch(strings.TrimSpace(line1[18:32]))
	if err != nil {
		return TLE{}, fmt.Errorf("%w: %s", ErrInvalid, err)
	}

	return TLE{Line1: line1, Line2: line2, NORADID: noradID, Epoch: epoch}, nil
}

// validateLines performs the format checks required before the lines can be
// handed to go-satellite.
func validateLines(line1, line2 string) error {
	if len(line1) != lineLength {
		return fmt.Errorf("line1 length %d, expected %d", len(line1), lineLength)
	}
	if len(line2) != lineLength {
		return fmt.Errorf("line2 length %d, expected %d", len(line2), lineLength)
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got %q", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got %q", line2[0])
	}
	return nil
}

// parseEpoch converts a TLE epoch string in YYDDD.DDDDDDDD format to time.Time.
// Year 00-56 → 2000s, 57-99 → 1900s.
func parseEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch string too short: %q", s)
	}

	year, err := strconv.Atoi(s[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("epoch year %q: %v", s[:2], err)
	}
	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	dayOfYear, err := strconv.ParseFloat(s[2:], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("epoch day %q: %v", s[2:], err)
	}

	// Day 1 = Jan 1.
	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return t.Add(time.Duration((dayOfYear - 1) * float64(24*time.Hour))), nil
}

// StateVector propagates the element set to time t and returns the TEME
// state in km and km/s.
func (e TLE) StateVector(t time.Time) (transform.State, error) {
	sat := satellite.TLEToSat(e.Line1, e.Line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return transform.State{}, fmt.Errorf("%w: sgp4 init failed for NORAD %d: code=%d %s",
			ErrInvalid, e.NORADID, sat.Error, sat.ErrorStr)
	}

	t = t.UTC()
	pos, vel := satellite.Propagate(sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	p := transform.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z}
	if !transform.ValidOrbit(p) {
		return transform.State{}, fmt.Errorf("%w: sgp4 propagation failed for NORAD %d at %s: implausible position",
			ErrInvalid, e.NORADID, t.Format(time.RFC3339))
	}

	return transform.State{
		Position: p,
		Velocity: transform.Vec3{X: vel.X, Y: vel.Y, Z: vel.Z},
	}, nil
}
