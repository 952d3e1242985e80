package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitviz/trajgo/internal/transform"
)

const earthMu = 398600.4418

var epoch = time.Date(2024, 4, 9, 12, 0, 0, 0, time.UTC)

// circularState returns a prograde circular equatorial orbit of radius r km.
func circularState(r float64) transform.State {
	return transform.State{
		Position: transform.Vec3{X: r},
		Velocity: transform.Vec3{Y: math.Sqrt(earthMu / r)},
	}
}

func TestElementsRoundTripAtEpoch(t *testing.T) {
	tests := []struct {
		name  string
		state transform.State
	}{
		{
			name:  "circular equatorial",
			state: circularState(7000),
		},
		{
			// Vallado "Fundamentals of Astrodynamics" Example 2-5 state:
			// an inclined, eccentric orbit well away from the singular cases.
			name: "Vallado example 2-5",
			state: transform.State{
				Position: transform.Vec3{X: 6524.834, Y: 6862.875, Z: 6448.296},
				Velocity: transform.Vec3{X: 4.901327, Y: 5.533756, Z: -1.976341},
			},
		},
		{
			name: "circular polar",
			state: transform.State{
				Position: transform.Vec3{X: 7200},
				Velocity: transform.Vec3{Z: math.Sqrt(earthMu / 7200)},
			},
		},
		{
			name: "eccentric equatorial",
			state: transform.State{
				Position: transform.Vec3{X: 6700},
				Velocity: transform.Vec3{Y: 1.05 * math.Sqrt(earthMu/6700)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, err := elementsFromState(tt.state, epoch, earthMu)
			require.NoError(t, err)

			got := el.stateAt(epoch)
			assert.InDelta(t, tt.state.Position.X, got.Position.X, 1e-6)
			assert.InDelta(t, tt.state.Position.Y, got.Position.Y, 1e-6)
			assert.InDelta(t, tt.state.Position.Z, got.Position.Z, 1e-6)
			assert.InDelta(t, tt.state.Velocity.X, got.Velocity.X, 1e-9)
			assert.InDelta(t, tt.state.Velocity.Y, got.Velocity.Y, 1e-9)
			assert.InDelta(t, tt.state.Velocity.Z, got.Velocity.Z, 1e-9)
		})
	}
}

func TestCircularOrbitQuarterPeriod(t *testing.T) {
	state := circularState(7000)
	el, err := elementsFromState(state, epoch, earthMu)
	require.NoError(t, err)

	period := twoPi / el.meanMotion()
	got := el.stateAt(epoch.Add(time.Duration(period / 4 * float64(time.Second))))

	// Prograde equatorial circle: a quarter period moves +X to +Y.
	assert.InDelta(t, 0, got.Position.X, 1e-3)
	assert.InDelta(t, 7000, got.Position.Y, 1e-3)
	assert.InDelta(t, 0, got.Position.Z, 1e-9)
}

func TestOrbitPeriodicity(t *testing.T) {
	state := transform.State{
		Position: transform.Vec3{X: 6524.834, Y: 6862.875, Z: 6448.296},
		Velocity: transform.Vec3{X: 4.901327, Y: 5.533756, Z: -1.976341},
	}
	el, err := elementsFromState(state, epoch, earthMu)
	require.NoError(t, err)

	period := twoPi / el.meanMotion()
	got := el.stateAt(epoch.Add(time.Duration(period * float64(time.Second))))

	// One full period returns to the initial position; tolerance reflects
	// the sub-second truncation of the period duration.
	assert.InDelta(t, state.Position.X, got.Position.X, 0.1)
	assert.InDelta(t, state.Position.Y, got.Position.Y, 0.1)
	assert.InDelta(t, state.Position.Z, got.Position.Z, 0.1)
}

func TestRadiusBoundsOverOrbit(t *testing.T) {
	state := transform.State{
		Position: transform.Vec3{X: 6524.834, Y: 6862.875, Z: 6448.296},
		Velocity: transform.Vec3{X: 4.901327, Y: 5.533756, Z: -1.976341},
	}
	el, err := elementsFromState(state, epoch, earthMu)
	require.NoError(t, err)

	rp := el.a * (1 - el.e)
	ra := el.a * (1 + el.e)

	period := twoPi / el.meanMotion()
	for i := 0; i < 32; i++ {
		ts := epoch.Add(time.Duration(period * float64(i) / 32 * float64(time.Second)))
		r := el.stateAt(ts).Position.Norm()
		assert.GreaterOrEqual(t, r, rp-1e-6)
		assert.LessOrEqual(t, r, ra+1e-6)
	}
}

func TestElementsFromStateRejectsUnbound(t *testing.T) {
	// Above escape velocity at 7000 km.
	state := transform.State{
		Position: transform.Vec3{X: 7000},
		Velocity: transform.Vec3{Y: 12.0},
	}
	_, err := elementsFromState(state, epoch, earthMu)
	assert.Error(t, err)
}

func TestElementsFromStateRejectsDegenerate(t *testing.T) {
	_, err := elementsFromState(transform.State{}, epoch, earthMu)
	assert.Error(t, err, "zero position")

	// Radial trajectory has zero angular momentum.
	_, err = elementsFromState(transform.State{
		Position: transform.Vec3{X: 7000},
		Velocity: transform.Vec3{X: 1},
	}, epoch, earthMu)
	assert.Error(t, err)
}

func TestKeplerSolverHighEccentricity(t *testing.T) {
	// Kepler's equation must converge for highly eccentric orbits.
	for _, m := range []float64{0.1, 1.0, math.Pi, 5.0} {
		ea := eccentricFromMean(m, 0.95)
		back := normalizeAngle(ea - 0.95*math.Sin(ea))
		assert.InDelta(t, m, back, 1e-10, "m=%f", m)
	}
}
