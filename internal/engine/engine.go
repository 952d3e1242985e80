// Package engine is the propagation-engine boundary of the service. It
// consumes the declarative universe and trajectory documents and exposes the
// engine's query surface: Load, NewTrajectory, Compute, Range and Vector3.
//
// The implementation propagates the scenario's start control state with a
// closed-form two-body Keplerian model. Integration settings in the document
// (stepper, tolerances, step counts) are validated and carried but act as the
// external integrator's knobs; no numerical integration happens here. Frame
// queries support the inertial frame (ICRF, realized as the TEME-based
// pseudo-inertial frame the state vectors arrive in) and the Earth-fixed
// frame (ITRF, a GMST-only rotation).
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/orbitviz/trajgo/internal/scenario"
	"github.com/orbitviz/trajgo/internal/transform"
)

var (
	// ErrConfig marks an invalid universe or trajectory document.
	ErrConfig = errors.New("engine configuration")
	// ErrCompute marks a propagation setup failure.
	ErrCompute = errors.New("engine compute")
	// ErrNotComputed is returned when a trajectory is queried before Compute.
	ErrNotComputed = errors.New("trajectory not computed")
	// ErrQuery marks a single-epoch frame/vector query failure.
	ErrQuery = errors.New("vector query")
)

// Frame type strings accepted in universe documents.
const (
	frameInertial  = "inertial"
	frameBodyFixed = "bodyFixed"
)

// Universe is the loaded environment: frames, the central body, and the
// ephemeris points registered by computed trajectories.
type Universe struct {
	frames   map[string]scenario.FrameDef
	dynamics map[string]bool
	body     string
	mu       float64 // km^3/s^2

	mtx    sync.RWMutex
	points map[string]elements
}

// Load builds a Universe from its document. The document must declare at
// least one inertial frame, a central body, and a resolvable point-mass mu.
func Load(doc *scenario.UniverseDescription) (*Universe, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil universe document", ErrConfig)
	}
	if len(doc.Bodies) == 0 {
		return nil, fmt.Errorf("%w: universe declares no bodies", ErrConfig)
	}

	frames := make(map[string]scenario.FrameDef, len(doc.Frames))
	inertial := false
	for _, f := range doc.Frames {
		frames[f.Name] = f
		if f.Type == frameInertial {
			inertial = true
		}
	}
	if !inertial {
		return nil, fmt.Errorf("%w: universe declares no inertial frame", ErrConfig)
	}

	gravity := make(map[string]scenario.GravityDef, len(doc.Gravity))
	for _, g := range doc.Gravity {
		gravity[g.Name] = g
	}

	body := doc.Bodies[0]
	mu, err := resolveMu(body, gravity)
	if err != nil {
		return nil, err
	}

	dynamics := make(map[string]bool, len(doc.Dynamics))
	for _, d := range doc.Dynamics {
		dynamics[d.Name] = true
	}

	return &Universe{
		frames:   frames,
		dynamics: dynamics,
		body:     body.Name,
		mu:       mu,
		points:   make(map[string]elements),
	}, nil
}

func resolveMu(body scenario.BodyDef, gravity map[string]scenario.GravityDef) (float64, error) {
	for _, name := range body.Gravity {
		g, ok := gravity[name]
		if !ok {
			return 0, fmt.Errorf("%w: body %s references unknown gravity model %q", ErrConfig, body.Name, name)
		}
		if g.Mu == "" {
			continue
		}
		mu, _, err := scenario.ParseQuantity(g.Mu)
		if err != nil {
			return 0, fmt.Errorf("%w: gravity model %s: %v", ErrConfig, name, err)
		}
		if mu <= 0 {
			return 0, fmt.Errorf("%w: gravity model %s: mu must be positive", ErrConfig, name)
		}
		return mu, nil
	}
	return 0, fmt.Errorf("%w: body %s has no point-mass gravity model", ErrConfig, body.Name)
}

// Body returns the central body name.
func (u *Universe) Body() string {
	return u.body
}

// Trajectory is a scenario bound to a universe, queryable after Compute.
type Trajectory struct {
	uni *Universe
	doc *scenario.Description

	computed bool
	point    string
	start    time.Time
	end      time.Time
}

// NewTrajectory binds a trajectory document to a loaded universe, checking
// that the document's frames, dynamics and central body are all declared.
func NewTrajectory(uni *Universe, doc *scenario.Description) (*Trajectory, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil trajectory document", ErrConfig)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	ctrl := doc.Timeline[0].State[0]
	if _, ok := uni.frames[ctrl.Axes]; !ok {
		return nil, fmt.Errorf("%w: control state uses undeclared axes %q", ErrConfig, ctrl.Axes)
	}
	if ctrl.Body != uni.body {
		return nil, fmt.Errorf("%w: control state body %q, universe central body is %q", ErrConfig, ctrl.Body, uni.body)
	}
	if !uni.dynamics[ctrl.Dynamics] {
		return nil, fmt.Errorf("%w: control state uses undeclared dynamics %q", ErrConfig, ctrl.Dynamics)
	}

	return &Trajectory{uni: uni, doc: doc, point: ctrl.Name}, nil
}

// Compute propagates the scenario and registers its spacecraft point in the
// universe's frame registry. The partials flag requests partial-derivative
// computation; this engine has nothing to compute for it and ignores it.
func (t *Trajectory) Compute(partials bool) error {
	_ = partials

	ctrl := t.doc.Timeline[0].State[0]
	epoch, _, err := scenario.ParseEpoch(t.doc.Timeline[0].Epoch)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCompute, err)
	}
	end, _, err := scenario.ParseEpoch(t.doc.Timeline[len(t.doc.Timeline)-1].Point.Epoch)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCompute, err)
	}

	state, err := parseState(ctrl.Value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCompute, err)
	}

	// The start state arrives in the frame named by the control axes; the
	// Kepler model needs it inertial.
	if t.uni.frames[ctrl.Axes].Type == frameBodyFixed {
		state = transform.ITRFToTEME(state, epoch)
	}

	el, err := elementsFromState(state, epoch, t.uni.mu)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCompute, err)
	}

	t.uni.mtx.Lock()
	t.uni.points[ctrl.Name] = el
	t.uni.mtx.Unlock()

	t.start = epoch
	t.end = end
	t.computed = true
	return nil
}

// Range returns the validity interval of the computed trajectory.
func (t *Trajectory) Range() (time.Time, time.Time, error) {
	if !t.computed {
		return time.Time{}, time.Time{}, ErrNotComputed
	}
	return t.start, t.end, nil
}

// Point returns the spacecraft point name registered by this trajectory.
func (t *Trajectory) Point() string {
	return t.point
}

// Vector3 returns the position of target relative to origin in the named
// frame at the given epoch, in kilometers.
func (u *Universe) Vector3(origin, target, frame string, epoch time.Time) (transform.Vec3, error) {
	if origin != u.body {
		return transform.Vec3{}, fmt.Errorf("%w: unknown origin %q", ErrQuery, origin)
	}

	f, ok := u.frames[frame]
	if !ok {
		return transform.Vec3{}, fmt.Errorf("%w: unknown frame %q", ErrQuery, frame)
	}

	u.mtx.RLock()
	el, ok := u.points[target]
	u.mtx.RUnlock()
	if !ok {
		return transform.Vec3{}, fmt.Errorf("%w: unknown point %q", ErrQuery, target)
	}

	pos := el.stateAt(epoch).Position
	if !transform.ValidOrbit(pos) {
		return transform.Vec3{}, fmt.Errorf("%w: implausible position for %q at %s", ErrQuery, target, epoch.Format(time.RFC3339))
	}

	if f.Type == frameBodyFixed {
		pos = transform.RotateFrame(pos, epoch)
	}
	return pos, nil
}

func parseState(v scenario.StateValue) (transform.State, error) {
	var s transform.State
	var err error

	read := func(q, wantUnit string, dst *float64) {
		if err != nil {
			return
		}
		var val float64
		var unit string
		val, unit, err = scenario.ParseQuantity(q)
		if err != nil {
			return
		}
		if unit != wantUnit {
			err = fmt.Errorf("quantity %q: expected unit %s", q, wantUnit)
			return
		}
		*dst = val
	}

	read(v.PosX, "km", &s.Position.X)
	read(v.PosY, "km", &s.Position.Y)
	read(v.PosZ, "km", &s.Position.Z)
	read(v.VelX, "km/s", &s.Velocity.X)
	read(v.VelY, "km/s", &s.Velocity.Y)
	read(v.VelZ, "km/s", &s.Velocity.Z)

	return s, err
}
