// Package trajectory orchestrates the propagation engine: it resolves and
// loads scenario documents, drives the engine's compute step, samples the
// resulting trajectory on a time grid, and assembles the response envelope.
// Whole-request failures degrade to a synthetic circular-orbit fallback;
// single-epoch query failures only cost the affected point.
package trajectory

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/orbitviz/trajgo/internal/metrics"
	"github.com/orbitviz/trajgo/internal/model"
	"github.com/orbitviz/trajgo/internal/scenario"
	"github.com/orbitviz/trajgo/internal/transform"
)

// Computed is the engine's query surface for a computed trajectory.
type Computed interface {
	// Range returns the validity interval of the computed trajectory.
	Range() (start, end time.Time, err error)
	// Vector3 returns target's position relative to origin in a frame, km.
	Vector3(origin, target, frame string, epoch time.Time) (transform.Vec3, error)
	// Origin is the central body name, Target the spacecraft point name.
	Origin() string
	Target() string
}

// BuildFunc loads both documents and runs the engine's construction and
// compute sequence. Injected so tests can simulate engine failures.
type BuildFunc func(universePath, trajectoryPath string) (Computed, error)

// Config holds the generator's fixed choices.
type Config struct {
	UniverseFile   string // universe document, resolved per request
	TrajectoryFile string // default trajectory document for GET /trajectory
	Frame          string // frame for cartesian output
	GroundFrame    string // Earth-fixed frame for ground-track output
	GroundTrack    bool   // attach longitude/latitude to points
	TimeScale      string // time-scale label on formatted epochs
	Workers        int    // parallel per-point queries
}

// Generator produces trajectory results from scenario documents.
type Generator struct {
	resolver *scenario.Resolver
	build    BuildFunc
	cfg      Config
	logger   *slog.Logger
}

// NewGenerator creates a Generator. A nil build uses the real engine.
func NewGenerator(resolver *scenario.Resolver, build BuildFunc, cfg Config, logger *slog.Logger) *Generator {
	if build == nil {
		build = DefaultBuild
	}
	if cfg.Frame == "" {
		cfg.Frame = "ICRF"
	}
	if cfg.GroundFrame == "" {
		cfg.GroundFrame = "ITRF"
	}
	if cfg.TimeScale == "" {
		cfg.TimeScale = "UTC"
	}
	if cfg.Workers < 1 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Generator{resolver: resolver, build: build, cfg: cfg, logger: logger}
}

// Generate produces a trajectory from the generator's default scenario
// document, sampled per policy.
func (g *Generator) Generate(ctx context.Context, policy SamplingPolicy) model.TrajectoryResult {
	return g.GenerateFrom(ctx, g.cfg.TrajectoryFile, policy)
}

// GenerateFrom produces a trajectory from the given scenario document.
//
// Any failure before sampling begins (document missing, engine construction,
// compute divergence) replaces the whole result with the synthetic fallback,
// labeled via the status field; the fallback itself cannot fail. Per-epoch
// query failures during sampling only skip the affected point.
func (g *Generator) GenerateFrom(ctx context.Context, trajectoryFile string, policy SamplingPolicy) model.TrajectoryResult {
	start := time.Now()

	result, err := g.compute(ctx, trajectoryFile, policy)
	if err != nil {
		metrics.RecordFallback()
		g.logger.Warn("trajectory generation failed, serving fallback",
			"trajectory_file", trajectoryFile,
			"error", err,
		)
		return Fallback(policy, err)
	}

	metrics.RecordGeneration(time.Since(start), result.PointCount)
	return result
}

func (g *Generator) compute(ctx context.Context, trajectoryFile string, policy SamplingPolicy) (model.TrajectoryResult, error) {
	universePath := g.resolver.Resolve(g.cfg.UniverseFile)
	trajectoryPath := g.resolver.Resolve(trajectoryFile)

	g.logger.Debug("loading scenario documents",
		"universe", universePath,
		"trajectory", trajectoryPath,
	)

	computed, err := g.build(universePath, trajectoryPath)
	if err != nil {
		return model.TrajectoryResult{}, err
	}

	first, last, err := computed.Range()
	if err != nil {
		return model.TrajectoryResult{}, fmt.Errorf("reading trajectory range: %w", err)
	}

	grid := policy.Grid(first, last)
	points := g.sample(ctx, computed, grid)

	g.logger.Debug("trajectory sampled",
		"grid_size", len(grid),
		"points", len(points),
		"skipped", len(grid)-len(points),
	)

	return model.TrajectoryResult{
		Points:     points,
		StartTime:  scenario.FormatEpoch(first, g.cfg.TimeScale),
		EndTime:    scenario.FormatEpoch(last, g.cfg.TimeScale),
		PointCount: len(points),
		Status:     model.StatusSuccess,
	}, nil
}
