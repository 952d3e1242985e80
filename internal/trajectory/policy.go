package trajectory

import (
	"errors"
	"fmt"
	"time"
)

// Sampling bounds. The HTTP surface rejects out-of-range values before the
// generator runs; the constructors re-check so the package is safe on its own.
const (
	MinPoints          = 2
	MaxPoints          = 100
	MinIntervalSeconds = 1.0
	MaxIntervalSeconds = 86400.0
)

// ErrInvalidSampling marks an out-of-range sampling parameter.
var ErrInvalidSampling = errors.New("invalid sampling")

// SamplingPolicy describes how the computed trajectory's validity interval
// is sampled: either a fixed number of evenly spaced points, or a fixed time
// step from start to end.
type SamplingPolicy struct {
	points   int
	interval time.Duration
}

// ByCount returns a policy sampling n evenly spaced points, n in [2,100].
func ByCount(n int) (SamplingPolicy, error) {
	if n < MinPoints || n > MaxPoints {
		return SamplingPolicy{}, fmt.Errorf("%w: points must be between %d and %d, got %d",
			ErrInvalidSampling, MinPoints, MaxPoints, n)
	}
	return SamplingPolicy{points: n}, nil
}

// ByInterval returns a policy stepping by the given number of seconds,
// in [1,86400].
func ByInterval(seconds float64) (SamplingPolicy, error) {
	if seconds < MinIntervalSeconds || seconds > MaxIntervalSeconds {
		return SamplingPolicy{}, fmt.Errorf("%w: time interval must be between %g and %g seconds, got %g",
			ErrInvalidSampling, MinIntervalSeconds, MaxIntervalSeconds, seconds)
	}
	return SamplingPolicy{interval: time.Duration(seconds * float64(time.Second))}, nil
}

// Grid builds the sample epochs over [start, end]. Count policies divide the
// interval evenly, including both endpoints. Interval policies step from
// start and always include end, so the final spacing may be shorter than the
// step.
func (p SamplingPolicy) Grid(start, end time.Time) []time.Time {
	if !end.After(start) {
		return []time.Time{start}
	}

	if p.points > 0 {
		grid := make([]time.Time, p.points)
		span := end.Sub(start)
		for i := 0; i < p.points-1; i++ {
			grid[i] = start.Add(span * time.Duration(i) / time.Duration(p.points-1))
		}
		grid[p.points-1] = end
		return grid
	}

	var grid []time.Time
	for ts := start; ts.Before(end); ts = ts.Add(p.interval) {
		grid = append(grid, ts)
	}
	return append(grid, end)
}

// fallbackCount is the number of points in a synthetic fallback trajectory:
// the requested count for count policies, a fixed size for interval policies
// (the real count is unknowable without a computed validity interval).
func (p SamplingPolicy) fallbackCount() int {
	if p.points > 0 {
		return p.points
	}
	return fallbackIntervalPoints
}
