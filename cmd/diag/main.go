package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/orbitviz/trajgo/internal/scenario"
	"github.com/orbitviz/trajgo/internal/trajectory"
)

// Reads a two-line element set from a file (two non-comment lines) and runs
// the full materialize-and-sample pipeline against the local config, printing
// the sampled points. Useful for checking a scenario setup without the HTTP
// server.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if len(os.Args) < 2 {
		fmt.Println("usage: diag <tle-file> [points]")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Println("ERROR reading TLE file:", err)
		os.Exit(1)
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, "1 ") || strings.HasPrefix(line, "2 ") {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		fmt.Println("ERROR: file does not contain two TLE lines")
		os.Exit(1)
	}

	dir, err := os.MkdirTemp("", "trajgo-diag")
	if err != nil {
		fmt.Println("ERROR creating scenario dir:", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	store := scenario.NewStore(dir, 5)
	materializer := scenario.NewMaterializer(store, "UTC", logger)

	path, err := materializer.Materialize(lines[0], lines[1])
	if err != nil {
		fmt.Println("ERROR materializing scenario:", err)
		os.Exit(1)
	}
	fmt.Printf("Scenario written: %s\n", filepath.Base(path))

	gen := trajectory.NewGenerator(scenario.NewResolver("."), nil, trajectory.Config{
		UniverseFile: "config/universe.yml",
		GroundTrack:  true,
		TimeScale:    "UTC",
	}, logger)

	points := 10
	if len(os.Args) > 2 {
		fmt.Sscanf(os.Args[2], "%d", &points)
	}
	policy, err := trajectory.ByCount(points)
	if err != nil {
		fmt.Println("ERROR:", err)
		os.Exit(1)
	}

	result := gen.GenerateFrom(context.Background(), path, policy)

	fmt.Printf("Status: %s\n", result.Status)
	if result.Message != "" {
		fmt.Printf("Message: %s\n", result.Message)
	}
	fmt.Printf("Range: %s -> %s\n", result.StartTime, result.EndTime)
	for _, p := range result.Points {
		fmt.Printf("  %s  mjd=%.5f  pos=(%.1f, %.1f, %.1f)",
			p.Epoch, p.MJD, p.Cartesian.X, p.Cartesian.Y, p.Cartesian.Z)
		if p.Spherical != nil {
			fmt.Printf("  lon=%.2f° lat=%.2f°", p.Spherical.Longitude, p.Spherical.Latitude)
		}
		fmt.Println()
	}
	fmt.Printf("\nTotal points: %d\n", result.PointCount)
}
