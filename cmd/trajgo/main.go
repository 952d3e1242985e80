package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/orbitviz/trajgo/internal/api"
	"github.com/orbitviz/trajgo/internal/scenario"
	"github.com/orbitviz/trajgo/internal/trajectory"
)

const version = "1.1.0"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	addr := os.Getenv("TRAJGO_HTTP_ADDR")
	if addr == "" {
		addr = ":8000"
	}

	scenarioCfg := loadScenarioConfig(logger)
	store := scenario.NewStore(scenarioCfg.Dir, scenarioCfg.MaxFiles)
	materializer := scenario.NewMaterializer(store, scenarioCfg.TimeScale, logger)
	resolver := scenario.NewResolver(scenarioCfg.ConfigDir)

	genCfg := loadGeneratorConfig(logger, scenarioCfg.TimeScale)
	generator := trajectory.NewGenerator(resolver, nil, genCfg, logger)

	trustProxy := false
	if v := os.Getenv("TRAJGO_TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid TRAJGO_TRUST_PROXY value, defaulting to false", "value", v)
		} else {
			trustProxy = b
		}
	}

	srv := api.NewServer(api.Config{
		Addr:       addr,
		Version:    version,
		TrustProxy: trustProxy,
	}, logger, generator, materializer)

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server",
			"addr", addr,
			"universe_file", genCfg.UniverseFile,
			"trajectory_file", genCfg.TrajectoryFile,
			"time_scale", scenarioCfg.TimeScale,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

type scenarioConfig struct {
	Dir       string
	MaxFiles  int
	TimeScale string
	ConfigDir string
}

func loadScenarioConfig(logger *slog.Logger) scenarioConfig {
	cfg := scenarioConfig{
		Dir:       "/tmp/trajgo/scenarios",
		MaxFiles:  20,
		TimeScale: "UTC",
		ConfigDir: ".",
	}

	if v := os.Getenv("TRAJGO_SCENARIO_DIR"); v != "" {
		cfg.Dir = v
	}

	if v := os.Getenv("TRAJGO_SCENARIO_MAX_FILES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid TRAJGO_SCENARIO_MAX_FILES value, using default", "value", v, "default", cfg.MaxFiles)
		} else {
			cfg.MaxFiles = n
		}
	}

	if v := os.Getenv("TRAJGO_TIME_SCALE"); v != "" {
		if v != "UTC" && v != "TDB" {
			logger.Warn("invalid TRAJGO_TIME_SCALE value, using default", "value", v, "default", cfg.TimeScale)
		} else {
			cfg.TimeScale = v
		}
	}

	if v := os.Getenv("TRAJGO_CONFIG_DIR"); v != "" {
		cfg.ConfigDir = v
	}

	logger.Info("scenario config",
		"dir", cfg.Dir,
		"max_files", cfg.MaxFiles,
		"time_scale", cfg.TimeScale,
		"config_dir", cfg.ConfigDir,
	)

	return cfg
}

func loadGeneratorConfig(logger *slog.Logger, timeScale string) trajectory.Config {
	cfg := trajectory.Config{
		UniverseFile:   "config/universe.yml",
		TrajectoryFile: "config/trajectory_leo.yml",
		Frame:          "ICRF",
		GroundFrame:    "ITRF",
		GroundTrack:    true,
		TimeScale:      timeScale,
		Workers:        runtime.NumCPU(),
	}

	if v := os.Getenv("TRAJGO_UNIVERSE_FILE"); v != "" {
		cfg.UniverseFile = v
	}

	if v := os.Getenv("TRAJGO_TRAJECTORY_FILE"); v != "" {
		cfg.TrajectoryFile = v
	}

	if v := os.Getenv("TRAJGO_FRAME"); v != "" {
		cfg.Frame = v
	}

	if v := os.Getenv("TRAJGO_GROUND_TRACK"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid TRAJGO_GROUND_TRACK value, using default", "value", v, "default", cfg.GroundTrack)
		} else {
			cfg.GroundTrack = b
		}
	}

	if v := os.Getenv("TRAJGO_SAMPLER_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid TRAJGO_SAMPLER_WORKERS value, using default", "value", v, "default", cfg.Workers)
		} else {
			cfg.Workers = n
		}
	}

	logger.Info("generator config",
		"universe_file", cfg.UniverseFile,
		"trajectory_file", cfg.TrajectoryFile,
		"frame", cfg.Frame,
		"ground_track", cfg.GroundTrack,
		"workers", cfg.Workers,
	)

	return cfg
}
