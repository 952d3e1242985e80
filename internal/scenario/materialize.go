package scenario

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/orbitviz/trajgo/internal/tle"
	"github.com/orbitviz/trajgo/internal/transform"
)

// Integrator defaults carried into every materialized document.
const (
	defaultSteps       = 100000
	defaultMethod      = "adams"
	defaultInitialStep = "10 s"
	defaultTolerance   = 1e-9
)

// Names used for the single spacecraft entity and its dynamics. The engine
// resolves the spacecraft point as "<group>_<point>".
const (
	SpacecraftGroup = "SC"
	SpacecraftPoint = "SC_center"
	CentralBody     = "Earth"
	stateAxes       = "ITRF"
	stateDynamics   = "EMS_combined"
)

// propagationSpan is the distance between the start control event and the
// end marker of a materialized document.
const propagationSpan = 24 * time.Hour

// Materializer turns a TLE pair into a trajectory document the engine can
// consume. The document's time scale is fixed at construction and used
// consistently for the declared timeScale and every embedded epoch string.
type Materializer struct {
	store     *Store
	timeScale string
	logger    *slog.Logger
}

// NewMaterializer creates a Materializer writing through store.
func NewMaterializer(store *Store, timeScale string, logger *slog.Logger) *Materializer {
	return &Materializer{store: store, timeScale: timeScale, logger: logger}
}

// Materialize parses the TLE, computes the Earth-fixed state at its epoch,
// and writes a trajectory document spanning one day from that epoch.
// Returns the path of the written document.
//
// Fails with tle.ErrInvalid for a malformed TLE and ErrStorage when the
// document cannot be persisted.
func (m *Materializer) Materialize(line1, line2 string) (string, error) {
	elements, err := tle.Parse(line1, line2)
	if err != nil {
		return "", err
	}

	// State at the element-set epoch, in TEME from SGP4, rotated to the
	// Earth-fixed frame the engine's declared dynamics expect.
	teme, err := elements.StateVector(elements.Epoch)
	if err != nil {
		return "", err
	}
	itrf := transform.TEMEToITRF(teme, elements.Epoch)

	doc := NewTLEDescription(itrf, elements.Epoch, m.timeScale)

	path, err := m.store.Write(doc)
	if err != nil {
		return "", err
	}

	m.logger.Info("materialized scenario from TLE",
		"norad_id", elements.NORADID,
		"epoch", FormatEpoch(elements.Epoch, m.timeScale),
		"path", path,
	)
	return path, nil
}

// NewTLEDescription builds a trajectory document from an Earth-fixed state
// at epoch, with the standard integrator defaults and a one-day span.
func NewTLEDescription(state transform.State, epoch time.Time, timeScale string) *Description {
	return &Description{
		Settings: Settings{
			Steps:       defaultSteps,
			Stepper:     Stepper{Method: defaultMethod},
			InitialStep: defaultInitialStep,
			RelTol:      defaultTolerance,
			AbsTol:      defaultTolerance,
			TimeScale:   timeScale,
		},
		Setup: []Entity{
			{
				Name:       SpacecraftGroup,
				Type:       "group",
				Spacecraft: SpacecraftGroup,
				Input: []Entity{
					{Name: "center", Type: "point"},
				},
			},
		},
		Timeline: []Event{
			{
				Type:  "control",
				Name:  "start",
				Epoch: FormatEpoch(epoch, timeScale),
				State: []ControlState{
					{
						Name:     SpacecraftPoint,
						Body:     CentralBody,
						Axes:     stateAxes,
						Dynamics: stateDynamics,
						Value: StateValue{
							PosX: FormatQuantity(state.Position.X, "km"),
							PosY: FormatQuantity(state.Position.Y, "km"),
							PosZ: FormatQuantity(state.Position.Z, "km"),
							VelX: FormatQuantity(state.Velocity.X, "km/s"),
							VelY: FormatQuantity(state.Velocity.Y, "km/s"),
							VelZ: FormatQuantity(state.Velocity.Z, "km/s"),
						},
					},
				},
			},
			{
				Type:  "point",
				Name:  "end",
				Input: SpacecraftGroup,
				Point: &PointMarker{
					Epoch: FormatEpoch(epoch.Add(propagationSpan), timeScale),
				},
			},
		},
	}
}

// Validate checks the structural invariants the engine relies on: a start
// control event with a full state, an end marker, and epochs that are
// strictly increasing across every timeline event in the document's single
// time scale.
func (d *Description) Validate() error {
	if len(d.Timeline) < 2 {
		return fmt.Errorf("timeline must contain a start control event and an end marker, got %d events", len(d.Timeline))
	}

	start := d.Timeline[0]
	if start.Type != "control" || len(start.State) == 0 {
		return fmt.Errorf("first timeline event must be a control event carrying a state")
	}
	if start.Epoch == "" {
		return fmt.Errorf("start event carries no epoch")
	}
	end := d.Timeline[len(d.Timeline)-1]
	if end.Point == nil || end.Point.Epoch == "" {
		return fmt.Errorf("last timeline event must be an end marker carrying an epoch")
	}

	var prev time.Time
	seen := false
	for i, ev := range d.Timeline {
		epochStr := ev.Epoch
		if ev.Point != nil {
			epochStr = ev.Point.Epoch
		}
		if epochStr == "" {
			continue
		}

		epoch, scale, err := ParseEpoch(epochStr)
		if err != nil {
			return fmt.Errorf("timeline event %d (%s): %w", i, ev.Name, err)
		}
		if scale != d.Settings.TimeScale {
			return fmt.Errorf("timeline event %d (%s): epoch scale %q does not match document timeScale %q",
				i, ev.Name, scale, d.Settings.TimeScale)
		}
		if seen && !epoch.After(prev) {
			return fmt.Errorf("timeline event %d (%s): epoch %s is not after the preceding event's epoch",
				i, ev.Name, epochStr)
		}
		prev, seen = epoch, true
	}
	return nil
}
