package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/orbitviz/trajgo/internal/transform"
)

const twoPi = 2 * math.Pi

// small is the threshold below which eccentricity or node magnitude is
// treated as zero, switching to the singularity-free element forms.
const small = 1e-10

// elements are classical orbital elements referenced to an epoch, in the
// engine's inertial frame. Angles in radians, semi-major axis in km.
type elements struct {
	a     float64 // semi-major axis, km
	e     float64 // eccentricity, 0 <= e < 1
	i     float64 // inclination
	raan  float64 // right ascension of the ascending node
	argp  float64 // argument of periapsis
	m0    float64 // mean anomaly at epoch
	epoch time.Time
	mu    float64 // gravitational parameter, km^3/s^2
}

func dot(a, b transform.Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func cross(a, b transform.Vec3) transform.Vec3 {
	return transform.Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func scale(v transform.Vec3, s float64) transform.Vec3 {
	return transform.Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	return a
}

// elementsFromState converts an inertial state vector to classical elements
// using the standard Vallado RV→COE algorithm, with the usual guards for
// circular and equatorial orbits. Unbound (parabolic/hyperbolic) states are
// rejected: the engine only models closed orbits.
func elementsFromState(s transform.State, epoch time.Time, mu float64) (elements, error) {
	r := s.Position
	v := s.Velocity
	rn := r.Norm()
	if rn < small {
		return elements{}, fmt.Errorf("degenerate state: zero position")
	}
	vn2 := dot(v, v)

	h := cross(r, v)
	hn := h.Norm()
	if hn < small {
		return elements{}, fmt.Errorf("degenerate state: zero angular momentum")
	}

	// Node vector k × h.
	node := transform.Vec3{X: -h.Y, Y: h.X}
	nn := node.Norm()

	// Eccentricity vector.
	evec := scale(
		transform.Vec3{
			X: r.X*(vn2-mu/rn) - v.X*dot(r, v),
			Y: r.Y*(vn2-mu/rn) - v.Y*dot(r, v),
			Z: r.Z*(vn2-mu/rn) - v.Z*dot(r, v),
		},
		1/mu,
	)
	ecc := evec.Norm()

	energy := vn2/2 - mu/rn
	if energy >= 0 || ecc >= 1-1e-8 {
		return elements{}, fmt.Errorf("unbound orbit: e=%.6f, specific energy=%.3f km^2/s^2", ecc, energy)
	}
	a := -mu / (2 * energy)

	inc := math.Acos(clamp(h.Z / hn))

	equatorial := nn < small
	circular := ecc < small

	var raan, argp, nu float64
	switch {
	case !equatorial && !circular:
		raan = math.Acos(clamp(node.X / nn))
		if node.Y < 0 {
			raan = twoPi - raan
		}
		argp = math.Acos(clamp(dot(node, evec) / (nn * ecc)))
		if evec.Z < 0 {
			argp = twoPi - argp
		}
		nu = math.Acos(clamp(dot(evec, r) / (ecc * rn)))
		if dot(r, v) < 0 {
			nu = twoPi - nu
		}
	case equatorial && !circular:
		// True longitude of periapsis stands in for RAAN+argp.
		argp = normalizeAngle(math.Atan2(evec.Y, evec.X))
		if h.Z < 0 {
			argp = twoPi - argp
		}
		nu = math.Acos(clamp(dot(evec, r) / (ecc * rn)))
		if dot(r, v) < 0 {
			nu = twoPi - nu
		}
	case !equatorial && circular:
		// Argument of latitude stands in for argp+nu.
		raan = math.Acos(clamp(node.X / nn))
		if node.Y < 0 {
			raan = twoPi - raan
		}
		nu = math.Acos(clamp(dot(node, r) / (nn * rn)))
		if r.Z < 0 {
			nu = twoPi - nu
		}
	default:
		// Circular equatorial: true longitude.
		nu = normalizeAngle(math.Atan2(r.Y, r.X))
		if h.Z < 0 {
			nu = twoPi - nu
		}
	}

	ea := eccentricFromTrue(nu, ecc)
	m0 := normalizeAngle(ea - ecc*math.Sin(ea))

	return elements{
		a:     a,
		e:     ecc,
		i:     inc,
		raan:  raan,
		argp:  argp,
		m0:    m0,
		epoch: epoch,
		mu:    mu,
	}, nil
}

// meanMotion returns the mean motion in rad/s.
func (el elements) meanMotion() float64 {
	return math.Sqrt(el.mu / (el.a * el.a * el.a))
}

// stateAt propagates the elements to time t with the closed-form two-body
// model and returns the inertial state.
func (el elements) stateAt(t time.Time) transform.State {
	dt := t.Sub(el.epoch).Seconds()
	m := normalizeAngle(el.m0 + el.meanMotion()*dt)
	ea := eccentricFromMean(m, el.e)
	nu := trueFromEccentric(ea, el.e)

	r := el.a * (1 - el.e*math.Cos(ea))
	p := el.a * (1 - el.e*el.e)

	// Perifocal position and velocity.
	cosNu := math.Cos(nu)
	sinNu := math.Sin(nu)
	px := r * cosNu
	py := r * sinNu
	vc := math.Sqrt(el.mu / p)
	pvx := -vc * sinNu
	pvy := vc * (el.e + cosNu)

	// Perifocal → inertial: R3(-Ω) R1(-i) R3(-ω).
	cosO := math.Cos(el.raan)
	sinO := math.Sin(el.raan)
	cosI := math.Cos(el.i)
	sinI := math.Sin(el.i)
	cosW := math.Cos(el.argp)
	sinW := math.Sin(el.argp)

	r11 := cosO*cosW - sinO*sinW*cosI
	r12 := -cosO*sinW - sinO*cosW*cosI
	r21 := sinO*cosW + cosO*sinW*cosI
	r22 := -sinO*sinW + cosO*cosW*cosI
	r31 := sinW * sinI
	r32 := cosW * sinI

	return transform.State{
		Position: transform.Vec3{
			X: r11*px + r12*py,
			Y: r21*px + r22*py,
			Z: r31*px + r32*py,
		},
		Velocity: transform.Vec3{
			X: r11*pvx + r12*pvy,
			Y: r21*pvx + r22*pvy,
			Z: r31*pvx + r32*pvy,
		},
	}
}

// eccentricFromMean solves Kepler's equation with Newton-Raphson iteration.
func eccentricFromMean(m, e float64) float64 {
	if e == 0 {
		return normalizeAngle(m)
	}

	m = normalizeAngle(m)
	ea := m
	if e >= 0.8 {
		if m < math.Pi {
			ea = m + e/2
		} else {
			ea = m - e/2
		}
	}

	for i := 0; i < 50; i++ {
		f := ea - e*math.Sin(ea) - m
		fp := 1 - e*math.Cos(ea)
		delta := f / fp
		ea -= delta
		if math.Abs(delta) < 1e-12 {
			break
		}
	}
	return normalizeAngle(ea)
}

// trueFromEccentric converts an eccentric anomaly to the true anomaly.
func trueFromEccentric(ea, e float64) float64 {
	if e == 0 {
		return normalizeAngle(ea)
	}
	sinE := math.Sin(ea)
	cosE := math.Cos(ea)
	sq := math.Sqrt(1 - e*e)
	return normalizeAngle(math.Atan2(sq*sinE, cosE-e))
}

// eccentricFromTrue converts a true anomaly to the eccentric anomaly.
func eccentricFromTrue(nu, e float64) float64 {
	if e == 0 {
		return normalizeAngle(nu)
	}
	sq := math.Sqrt(1 - e*e)
	return normalizeAngle(math.Atan2(sq*math.Sin(nu), e+math.Cos(nu)))
}
