// Command hobbitsim runs the Hobbit Home colony simulation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/hobbit-home/internal/agents"
	"github.com/talgya/hobbit-home/internal/api"
	"github.com/talgya/hobbit-home/internal/config"
	"github.com/talgya/hobbit-home/internal/engine"
	"github.com/talgya/hobbit-home/internal/persistence"
	"github.com/talgya/hobbit-home/internal/snapshot"
	"github.com/talgya/hobbit-home/internal/world"
)

// keepSnapshots is how many autosaves are kept per colony.
const keepSnapshots = 20

func main() {
	configPath := flag.String("config", "", "config file (.toml, .yaml or .yml)")
	importPath := flag.String("import", "", "start from this snapshot file instead of the database")
	exportPath := flag.String("export", "", "write a snapshot file on shutdown")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	slog.SetDefault(newLogger(cfg, os.Stdout))

	slog.Info("Hobbit Home colony simulation", "config", cfg.Path)

	// ── Database ──────────────────────────────────────────────────────
	if err := ensureDir(cfg.DBPath); err != nil {
		slog.Error("failed to create database directory", "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	colonyID, seed := colonyIdentity(db, cfg.Seed)

	// ── Load or Found the Colony ─────────────────────────────────────
	state, err := loadColony(db, colonyID, *importPath)
	switch {
	case err == nil:
		state.Tuning = cfg.Tuning()
		slog.Info("colony restored",
			"colony", colonyID,
			"tick", state.Clock.Ticks,
			"hobbits", len(state.Hobbits),
			"buildings", len(state.Buildings),
			"orders", state.Queue.Len(),
		)
	case errors.Is(err, persistence.ErrNoSnapshot):
		slog.Info("no saved colony found, founding a new one...")
		state = foundColony(cfg, seed)
	default:
		slog.Error("failed to load colony", "error", err)
		os.Exit(1)
	}

	sim := engine.NewSimulation(state)
	sim.WorkTime = cfg.Sim.WorkTime

	save := func() {
		if err := db.SaveColony(colonyID, seed, sim); err != nil {
			slog.Error("save failed", "error", err)
			return
		}
		if n, err := db.PruneSnapshots(colonyID, keepSnapshots); err != nil {
			slog.Warn("prune failed", "error", err)
		} else if n > 0 {
			slog.Debug("pruned snapshots", "count", n)
		}
	}
	if state.Clock.Ticks == 0 {
		save()
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine(cfg.Sim.FramesPerSecond)
	eng.SetSpeed(cfg.Sim.Speed)
	eng.OnTick = func(uint64) { sim.Step() }
	eng.AutosaveEvery = uint64(cfg.AutosaveSeconds * cfg.Sim.FramesPerSecond)
	eng.OnAutosave = func(uint64) { save() }

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.API.AdminKey == "" {
		slog.Warn(config.EnvAdminKey + " not set, admin POST endpoints are disabled")
	}
	apiServer := &api.Server{
		Sim:      sim,
		Eng:      eng,
		DB:       db,
		ColonyID: colonyID,
		Seed:     seed,
		Port:     cfg.API.Port,
		AdminKey: cfg.API.AdminKey,
	}
	httpServer := apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nHobbit Home is alive: %d hobbits on a %dx%d map.\n",
		len(state.Hobbits), state.Map.Width, state.Map.Height)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	if state.Clock.Ticks > 0 {
		fmt.Printf("Resuming from tick %d\n", state.Clock.Ticks)
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown", "error", err)
	}

	// Final save on shutdown.
	slog.Info("final save...")
	save()
	if *exportPath != "" {
		snap := snapshot.FromState(colonyID, seed, sim.State())
		if err := snapshot.WriteFile(*exportPath, snap); err != nil {
			slog.Error("export failed", "path", *exportPath, "error", err)
		} else {
			slog.Info("snapshot exported", "path", *exportPath, "tick", snap.Header.Tick)
		}
	}

	fmt.Println("Simulation stopped. Colony saved.")
}

// newLogger builds the process logger at the configured level. An
// unparseable level falls back to info and is reported through the logger.
func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	if err != nil {
		logger.Warn("falling back to info logging", "error", err)
	}
	return logger
}

// ensureDir creates the directory holding path.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// colonyIdentity returns the colony's ID and seed, minting and recording
// them on first run.
func colonyIdentity(db *persistence.DB, seed int64) (string, int64) {
	id, err := db.GetMeta(persistence.MetaColonyID)
	if err != nil || id == "" {
		id = uuid.NewString()
		if err := db.SaveMeta(persistence.MetaColonyID, id); err != nil {
			slog.Warn("failed to record colony id", "error", err)
		}
		if err := db.SaveMeta(persistence.MetaSeed, strconv.FormatInt(seed, 10)); err != nil {
			slog.Warn("failed to record seed", "error", err)
		}
		return id, seed
	}
	if v, err := db.GetMeta(persistence.MetaSeed); err == nil {
		if s, err := strconv.ParseInt(v, 10, 64); err == nil {
			seed = s
		}
	}
	return id, seed
}

// loadColony restores from importPath if set, else from the newest
// snapshot in the database.
func loadColony(db *persistence.DB, colonyID, importPath string) (*engine.State, error) {
	var (
		snap snapshot.SnapshotV1
		err  error
	)
	if importPath != "" {
		snap, err = snapshot.ReadFile(importPath)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", importPath, err)
		}
	} else {
		snap, err = db.LoadLatest(colonyID)
		if err != nil {
			return nil, err
		}
	}
	return snapshot.Restore(snap)
}

// foundColony builds a fresh colony: the standard map and hobbits, or a
// generated map with a spawned colony.
func foundColony(cfg config.Config, seed int64) *engine.State {
	if !cfg.Map.Generate {
		return engine.NewState(world.DefaultMap(), agents.DefaultColony(), cfg.Tuning(), seed)
	}

	gen := cfg.GenConfig()
	if gen.Seed == 0 {
		gen.Seed = seed
	}
	m := world.Generate(gen)
	cells := world.PlaceColony(m, cfg.Map.Colony, 2, gen.Seed)
	hobbits := agents.NewSpawner(gen.Seed).SpawnColony(cells)
	slog.Info("map generated",
		"width", m.Width,
		"height", m.Height,
		"walls", m.Count(world.Wall),
		"floor", m.Count(world.Floor),
		"hobbits", len(hobbits),
	)
	for _, h := range hobbits {
		slog.Info("hobbit", "name", h.FullName, "position", h.Position.String(), "mood", h.Mood.String())
	}
	return engine.NewState(m, hobbits, cfg.Tuning(), seed)
}
