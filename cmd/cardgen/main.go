// cardgen prints a batch of student ID cards to a PDF, pulling the
// students of one school (or all schools) from the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"madaris/internal/assets"
	"madaris/internal/config"
	"madaris/internal/infrastructure"
	"madaris/internal/render"
	"madaris/internal/store"
	"madaris/pkg/contracts"
)

func main() {
	configFile := flag.String("config", "", "optional yaml config file")
	baseDir := flag.String("base", "", "application base directory (defaults to executable dir)")
	schoolID := flag.Int64("school", 0, "school id (0 = all schools)")
	year := flag.String("year", "", "academic year label printed on each card")
	out := flag.String("out", "", "output pdf path (defaults under data/exports/prints)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetVersionInfo())
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if _, err := infrastructure.InitializeLogger(cfg.Logging); err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	paths, err := config.GetPaths(*baseDir)
	if err != nil {
		slog.Error("failed to resolve paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirs(); err != nil {
		slog.Error("failed to create directories", "error", err)
		os.Exit(1)
	}
	if *out == "" {
		*out = paths.PrintFile("cards", time.Now())
	}

	db, err := store.Open(cfg.DB)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	students, err := db.ListStudents(ctx, *schoolID)
	if err != nil {
		slog.Error("failed to load students", "error", err)
		os.Exit(1)
	}
	if len(students) == 0 {
		slog.Warn("no students matched", "school_id", *schoolID)
		fmt.Println("no students to print")
		return
	}

	registry := assets.NewRegistry(paths)
	for _, warning := range registry.Degraded() {
		slog.Warn("degraded rendering", "reason", warning)
	}

	engine, err := render.NewEngine(registry, cfg.Cards, *year)
	if err != nil {
		slog.Error("failed to build card engine", "error", err)
		os.Exit(1)
	}
	if err := engine.RenderToFile(students, *out); err != nil {
		slog.Error("failed to render cards", "error", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d cards to %s\n", len(students), *out)
}
