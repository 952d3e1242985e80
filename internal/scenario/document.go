// Package scenario defines the declarative documents consumed by the
// propagation engine: a universe description (bodies, frames, dynamics) and a
// trajectory description (integrator settings, spacecraft setup, timeline).
// It also materializes trajectory documents from two-line element sets and
// resolves document paths across candidate locations.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNotFound marks a scenario document that could not be read.
var ErrNotFound = errors.New("scenario document not found")

// epochLayout is the calendar part of an engine epoch string, always paired
// with a trailing time-scale token ("2024-04-09T12:00:00.000 UTC").
const epochLayout = "2006-01-02T15:04:05.000"

// Description is a trajectory scenario document.
//
// The timeline must contain at least a start control event carrying a full
// six-component state and an end marker carrying only an end epoch, with
// monotonically increasing epochs in the document's single time scale.
type Description struct {
	Settings Settings `yaml:"settings"`
	Setup    []Entity `yaml:"setup"`
	Timeline []Event  `yaml:"timeline"`
}

// Settings holds the integrator configuration for the external engine.
type Settings struct {
	Steps       int     `yaml:"steps"`
	Stepper     Stepper `yaml:"stepper"`
	InitialStep string  `yaml:"initialStep"`
	RelTol      float64 `yaml:"relTol"`
	AbsTol      float64 `yaml:"absTol"`
	TimeScale   string  `yaml:"timeScale"`
}

// Stepper names the integration method.
type Stepper struct {
	Method string `yaml:"method"`
}

// Entity is a named spacecraft or body entry in the setup hierarchy.
type Entity struct {
	Name       string   `yaml:"name"`
	Type       string   `yaml:"type"`
	Spacecraft string   `yaml:"spacecraft,omitempty"`
	Input      []Entity `yaml:"input,omitempty"`
}

// Event is a timeline entry. Control events carry an epoch and a state;
// point events carry an end marker.
type Event struct {
	Type  string         `yaml:"type"`
	Name  string         `yaml:"name"`
	Epoch string         `yaml:"epoch,omitempty"`
	State []ControlState `yaml:"state,omitempty"`
	Input string         `yaml:"input,omitempty"`
	Point *PointMarker   `yaml:"point,omitempty"`
}

// ControlState fixes a named point's state at a control event.
type ControlState struct {
	Name     string     `yaml:"name"`
	Body     string     `yaml:"body"`
	Axes     string     `yaml:"axes"`
	Dynamics string     `yaml:"dynamics"`
	Value    StateValue `yaml:"value"`
}

// StateValue is a six-component state with units, e.g. "6778.0 km".
type StateValue struct {
	PosX string `yaml:"pos_x"`
	PosY string `yaml:"pos_y"`
	PosZ string `yaml:"pos_z"`
	VelX string `yaml:"vel_x"`
	VelY string `yaml:"vel_y"`
	VelZ string `yaml:"vel_z"`
}

// PointMarker carries the end epoch of the propagation span.
type PointMarker struct {
	Epoch string `yaml:"epoch"`
}

// UniverseDescription declares the environment the engine propagates in.
type UniverseDescription struct {
	Version  string        `yaml:"version"`
	Frames   []FrameDef    `yaml:"frames"`
	Bodies   []BodyDef     `yaml:"bodies"`
	Gravity  []GravityDef  `yaml:"gravity"`
	Dynamics []DynamicsDef `yaml:"dynamics"`
}

// FrameDef declares a reference frame, either inertial or fixed to a body.
type FrameDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Body string `yaml:"body,omitempty"`
}

// BodyDef declares a central body and the gravity models attached to it.
type BodyDef struct {
	Name    string   `yaml:"name"`
	Gravity []string `yaml:"gravity,omitempty"`
}

// GravityDef declares a gravity model, e.g. a point mass with its mu.
type GravityDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Mu   string `yaml:"mu,omitempty"`
}

// DynamicsDef names a dynamics configuration referenced by control states.
type DynamicsDef struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Gravity []string `yaml:"gravity,omitempty"`
}

// LoadDescription reads and parses a trajectory document.
func LoadDescription(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading trajectory document %s: %w", path, err)
	}

	var doc Description
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing trajectory document %s: %w", path, err)
	}
	return &doc, nil
}

// LoadUniverse reads and parses a universe document.
func LoadUniverse(path string) (*UniverseDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading universe document %s: %w", path, err)
	}

	var doc UniverseDescription
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing universe document %s: %w", path, err)
	}
	return &doc, nil
}

// FormatEpoch renders a timestamp as an engine epoch string in the given
// time scale. The timestamp is always taken in UTC; declaring a different
// scale is the caller's explicit, consistent choice for the whole document.
func FormatEpoch(t time.Time, scale string) string {
	return t.UTC().Format(epochLayout) + " " + scale
}

// ParseEpoch parses an engine epoch string, returning the timestamp and its
// time-scale token.
func ParseEpoch(s string) (time.Time, string, error) {
	i := strings.LastIndexByte(s, ' ')
	if i < 0 {
		return time.Time{}, "", fmt.Errorf("epoch %q missing time scale", s)
	}
	stamp, scale := s[:i], s[i+1:]

	for _, layout := range []string{epochLayout, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, stamp); err == nil {
			return t.UTC(), scale, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("epoch %q has unrecognized timestamp format", s)
}

// FormatQuantity renders a value with its unit, e.g. "6778.000000 km".
func FormatQuantity(v float64, unit string) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + unit
}

// ParseQuantity parses a value-with-unit string. The unit is returned as-is;
// validating it against the expected dimension is the caller's concern.
func ParseQuantity(s string) (float64, string, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, "", fmt.Errorf("quantity %q must be \"<value> <unit>\"", s)
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, "", fmt.Errorf("quantity %q: %v", s, err)
	}
	return v, fields[1], nil
}
