package trajectory

import (
	"time"

	"github.com/orbitviz/trajgo/internal/engine"
	"github.com/orbitviz/trajgo/internal/scenario"
	"github.com/orbitviz/trajgo/internal/transform"
)

// DefaultBuild runs the real engine sequence: load both documents, construct
// the universe and trajectory, and compute with partial derivatives disabled
// (the result is only sampled, never differentiated).
func DefaultBuild(universePath, trajectoryPath string) (Computed, error) {
	universeDoc, err := scenario.LoadUniverse(universePath)
	if err != nil {
		return nil, err
	}
	trajectoryDoc, err := scenario.LoadDescription(trajectoryPath)
	if err != nil {
		return nil, err
	}

	uni, err := engine.Load(universeDoc)
	if err != nil {
		return nil, err
	}
	tra, err := engine.NewTrajectory(uni, trajectoryDoc)
	if err != nil {
		return nil, err
	}
	if err := tra.Compute(false); err != nil {
		return nil, err
	}

	return &computedTrajectory{uni: uni, tra: tra}, nil
}

// computedTrajectory adapts the engine's concrete types to the Computed
// query surface.
type computedTrajectory struct {
	uni *engine.Universe
	tra *engine.Trajectory
}

func (c *computedTrajectory) Range() (time.Time, time.Time, error) {
	return c.tra.Range()
}

func (c *computedTrajectory) Vector3(origin, target, frame string, epoch time.Time) (transform.Vec3, error) {
	return c.uni.Vector3(origin, target, frame, epoch)
}

func (c *computedTrajectory) Origin() string {
	return c.uni.Body()
}

func (c *computedTrajectory) Target() string {
	return c.tra.Point()
}
