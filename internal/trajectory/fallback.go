package trajectory

import (
	"fmt"
	"math"

	"github.com/orbitviz/trajgo/internal/model"
)

// Fallback trajectory parameters: a planar circular orbit at a
// representative LEO radius, so downstream consumers never receive an empty
// trajectory.
const (
	fallbackRadiusKm       = 7000.0
	fallbackIntervalPoints = 20
	fallbackBaseMJD        = 59500.0
)

// Fallback builds the synthetic trajectory served when generation fails
// outright. It is pure closed-form trigonometry and cannot itself fail. The
// angles span a full turn including both endpoints, so the points always
// form a closed circle. The cause is embedded in the message for diagnosis;
// clients distinguish this output solely via the status field.
func Fallback(policy SamplingPolicy, cause error) model.TrajectoryResult {
	n := policy.fallbackCount()

	points := make([]model.TrajectoryPoint, n)
	for i := range points {
		angle := 2 * math.Pi * float64(i) / float64(n-1)
		points[i] = model.TrajectoryPoint{
			Epoch: fmt.Sprintf("Point_%d", i),
			MJD:   fallbackBaseMJD + float64(i)/100.0,
			Cartesian: model.CartesianPoint{
				X: fallbackRadiusKm * math.Cos(angle),
				Y: fallbackRadiusKm * math.Sin(angle),
				Z: 0,
			},
		}
	}
	// sin(2π) carries a rounding residual at the final index; pin the last
	// point to the first so the circle closes exactly.
	points[n-1].Cartesian = points[0].Cartesian

	return model.TrajectoryResult{
		Points:     points,
		StartTime:  "Fallback_start",
		EndTime:    "Fallback_end",
		PointCount: n,
		Status:     model.StatusFallback,
		Message:    fmt.Sprintf("Used fallback due to error: %v", cause),
	}
}
