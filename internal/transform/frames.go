// Package transform provides coordinate frame conversions for spacecraft state
// vectors.
//
// The primary transforms are TEME (True Equator Mean Equinox, the SGP4 output
// frame) to and from ITRF (the Earth-fixed terrestrial frame expected by the
// propagation engine's dynamics). The rotation uses GMST only (TEME → PEF ≈
// ITRF), ignoring polar motion and the equation of the equinoxes. That
// introduces at most a few tens of meters of error, acceptable for trajectory
// visualization.
//
// All states are kilometers and kilometers per second.
//
// Reference: Vallado, "Fundamentals of Astrodynamics and Applications", Ch. 3.
package transform

import (
	"math"
	"time"
)

// Vec3 is a cartesian vector in kilometers (or km/s for velocities).
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the Euclidean magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// State is a position/velocity pair in a single reference frame.
type State struct {
	Position Vec3 // km
	Velocity Vec3 // km/s
}

// rotZ rotates v about the Z axis by angle theta (radians).
func rotZ(v Vec3, theta float64) Vec3 {
	c := math.Cos(theta)
	s := math.Sin(theta)
	return Vec3{
		X: v.X*c + v.Y*s,
		Y: -v.X*s + v.Y*c,
		Z: v.Z,
	}
}

// TEMEToITRF rotates a TEME state into the Earth-fixed ITRF frame at time t.
//
// Position: r_itrf = R3(θ) r_teme
// Velocity: v_itrf = R3(θ) v_teme − ω × r_itrf
// with θ = GMST(t) and ω = [0, 0, ω_earth].
func TEMEToITRF(s State, t time.Time) State {
	gmst := GMST(t)

	r := rotZ(s.Position, gmst)
	v := rotZ(s.Velocity, gmst)

	// ω × r_itrf = [-ω·y, ω·x, 0]
	v.X += OmegaEarth * r.Y
	v.Y -= OmegaEarth * r.X

	return State{Position: r, Velocity: v}
}

// ITRFToTEME rotates an Earth-fixed ITRF state into the TEME frame at time t.
// Inverse of TEMEToITRF: the Earth-rotation term is added back before the
// inverse rotation is applied.
func ITRFToTEME(s State, t time.Time) State {
	gmst := GMST(t)

	v := s.Velocity
	v.X -= OmegaEarth * s.Position.Y
	v.Y += OmegaEarth * s.Position.X

	return State{
		Position: rotZ(s.Position, -gmst),
		Velocity: rotZ(v, -gmst),
	}
}

// RotateFrame rotates a bare position vector from TEME to ITRF at time t.
func RotateFrame(p Vec3, t time.Time) Vec3 {
	return rotZ(p, GMST(t))
}

// ValidOrbit reports whether a position is physically plausible for an
// Earth-orbiting spacecraft: finite components with a magnitude between
// 6200 km (just below LEO) and 50000 km (above GEO).
func ValidOrbit(p Vec3) bool {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
		return false
	}
	if math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) || math.IsInf(p.Z, 0) {
		return false
	}
	mag := p.Norm()
	return mag >= 6200.0 && mag <= 50000.0
}
