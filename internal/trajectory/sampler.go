package trajectory

import (
	"context"
	"sync"
	"time"

	"github.com/orbitviz/trajgo/internal/metrics"
	"github.com/orbitviz/trajgo/internal/model"
	"github.com/orbitviz/trajgo/internal/scenario"
	"github.com/orbitviz/trajgo/internal/transform"
)

// sampleJob is one grid epoch to resolve.
type sampleJob struct {
	idx   int
	epoch time.Time
}

// sampleResult carries the resolved point, or the error that skipped it.
type sampleResult struct {
	idx   int
	point model.TrajectoryPoint
	err   error
}

// sample queries the engine for every grid epoch using a bounded worker pool
// and returns the resolved points in grid order. A failed cartesian query is
// non-fatal: the point is logged, counted, and skipped. A failed ground-track
// query only drops that point's spherical output.
func (g *Generator) sample(ctx context.Context, computed Computed, grid []time.Time) []model.TrajectoryPoint {
	jobs := make(chan sampleJob, g.cfg.Workers*2)
	results := make(chan sampleResult, g.cfg.Workers*2)

	var wg sync.WaitGroup
	for i := 0; i < g.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				res := g.samplePoint(computed, job)
				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, epoch := range grid {
			select {
			case jobs <- sampleJob{idx: i, epoch: epoch}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	resolved := make([]*model.TrajectoryPoint, len(grid))
	var skipped int
	for res := range results {
		if res.err != nil {
			skipped++
			metrics.RecordPointSkip()
			g.logger.Warn("frame query failed, skipping point",
				"epoch", res.point.Epoch,
				"error", res.err,
			)
			continue
		}
		p := res.point
		resolved[res.idx] = &p
	}

	points := make([]model.TrajectoryPoint, 0, len(grid)-skipped)
	for _, p := range resolved {
		if p != nil {
			points = append(points, *p)
		}
	}
	return points
}

// samplePoint resolves a single grid epoch into a trajectory point.
func (g *Generator) samplePoint(computed Computed, job sampleJob) sampleResult {
	origin := computed.Origin()
	target := computed.Target()

	res := sampleResult{idx: job.idx}
	res.point.Epoch = scenario.FormatEpoch(job.epoch, g.cfg.TimeScale)
	res.point.MJD = transform.MJD(job.epoch)

	pos, err := computed.Vector3(origin, target, g.cfg.Frame, job.epoch)
	if err != nil {
		res.err = err
		return res
	}
	res.point.Cartesian = model.CartesianPoint{X: pos.X, Y: pos.Y, Z: pos.Z}

	if g.cfg.GroundTrack {
		fixed, err := computed.Vector3(origin, target, g.cfg.GroundFrame, job.epoch)
		if err != nil {
			// Cartesian output survives without its ground track.
			g.logger.Warn("ground-track query failed",
				"epoch", res.point.Epoch,
				"error", err,
			)
			return res
		}
		if ll, ok := transform.CartesianToSpherical(fixed); ok {
			res.point.Spherical = &model.SphericalPoint{
				Longitude: ll.LonDeg,
				Latitude:  ll.LatDeg,
			}
		}
	}
	return res
}
