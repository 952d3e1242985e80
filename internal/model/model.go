// Package model defines the response schema served by the trajectory API.
package model

// Status values reported in TrajectoryResult.
const (
	StatusSuccess  = "success"
	StatusFallback = "fallback"
)

// CartesianPoint is a position in kilometers.
type CartesianPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// SphericalPoint is a ground-track position in degrees, derived from the
// Earth-fixed position vector.
type SphericalPoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// TrajectoryPoint is a single sampled state of the spacecraft.
// Spherical is omitted when the Earth-fixed vector could not be resolved
// for that epoch or when ground-track output is disabled.
type TrajectoryPoint struct {
	Epoch     string          `json:"epoch"`
	MJD       float64         `json:"mjd"`
	Cartesian CartesianPoint  `json:"cartesian"`
	Spherical *SphericalPoint `json:"spherical,omitempty"`
}

// TrajectoryResult is the response envelope for all trajectory endpoints.
// PointCount always equals len(Points). Status is "success" or "fallback";
// Message carries the original error text when the fallback was used.
type TrajectoryResult struct {
	Points     []TrajectoryPoint `json:"points"`
	StartTime  string            `json:"start_time"`
	EndTime    string            `json:"end_time"`
	PointCount int               `json:"point_count"`
	Status     string            `json:"status"`
	Message    string            `json:"message,omitempty"`
}

// TLERequest is the body of POST /trajectory/from-tle.
type TLERequest struct {
	TLELine1     string  `json:"tle_line1"`
	TLELine2     string  `json:"tle_line2"`
	TimeInterval float64 `json:"time_interval"`
}

// OrbitParameters is an initial state for the placeholder propagation endpoint.
type OrbitParameters struct {
	Epoch string   `json:"epoch"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
	Z     *float64 `json:"z,omitempty"`
	VX    *float64 `json:"vx,omitempty"`
	VY    *float64 `json:"vy,omitempty"`
	VZ    *float64 `json:"vz,omitempty"`
}

// PropagationOptions controls the placeholder propagation endpoint.
type PropagationOptions struct {
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	StepSize  float64 `json:"step_size"`
}

// PropagationRequest is the body of POST /propagation/orbit.
type PropagationRequest struct {
	InitialState OrbitParameters    `json:"initial_state"`
	Options      PropagationOptions `json:"options"`
}

// PropagationResponse echoes the initial state as a one-point trajectory.
// The endpoint is a placeholder and is not wired to the propagation engine.
type PropagationResponse struct {
	Trajectory []map[string]any `json:"trajectory"`
	Events     []map[string]any `json:"events"`
}
