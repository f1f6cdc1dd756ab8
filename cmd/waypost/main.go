package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/waypost/engine/internal/agent"
	"github.com/waypost/engine/internal/behavior"
	"github.com/waypost/engine/internal/config"
	"github.com/waypost/engine/internal/core/event"
	"github.com/waypost/engine/internal/data"
	"github.com/waypost/engine/internal/nav"
	"github.com/waypost/engine/internal/persist"
	"github.com/waypost/engine/internal/scripting"
	"github.com/waypost/engine/internal/sim"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/waypost.toml"
	if p := os.Getenv("WAYPOST_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Optional PostgreSQL for snapshots and the interaction journal
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		db          *persist.DB
		agentRepo   *persist.AgentRepo
		journalRepo *persist.JournalRepo
	)
	if cfg.Database.Enabled {
		db, err = persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		agentRepo = persist.NewAgentRepo(db)
		journalRepo = persist.NewJournalRepo(db)
		log.Info("database ready")
	}

	// 4. Load world definition
	world, err := data.LoadWorld(cfg.Sim.WorldFile)
	if err != nil {
		return fmt.Errorf("load world: %w", err)
	}

	grid, err := buildGrid(cfg.Grid, world)
	if err != nil {
		return fmt.Errorf("build grid: %w", err)
	}
	log.Info("grid built",
		zap.Int("width", grid.Width()),
		zap.Int("height", grid.Height()),
		zap.Float64("cell_size", grid.CellSize()))

	// 5. Behavior library: built-ins plus Lua-defined leaves
	lib := behavior.NewLibrary()
	if err := behavior.RegisterBuiltins(lib); err != nil {
		return fmt.Errorf("register builtins: %w", err)
	}

	luaEngine, err := scripting.NewEngine(cfg.Sim.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	if err := luaEngine.Bind(lib); err != nil {
		return fmt.Errorf("bind lua leaves: %w", err)
	}

	// 6. Engine, trees, agents
	engine := sim.New(grid, lib, log)

	for _, t := range world.Trees {
		if err := engine.AddTree(t.ID, t.Root.Behavior()); err != nil {
			return fmt.Errorf("tree %q: %w", t.ID, err)
		}
	}
	log.Info("trees compiled", zap.Int("count", len(world.Trees)))

	spawned, err := spawnAgents(ctx, engine, world, agentRepo, log)
	if err != nil {
		return err
	}
	log.Info("agents spawned", zap.Int("count", spawned))

	// 7. Capture interaction events for the journal
	var journal []persist.JournalEntry
	event.Subscribe(engine.Bus(), func(ev event.InteractionTriggered) {
		log.Debug("interaction",
			zap.Uint64("agent", ev.AgentID),
			zap.String("target", ev.Target))
		if journalRepo != nil {
			journal = append(journal, persist.JournalEntry{
				Tick:     engine.TickCount(),
				AgentUID: ev.AgentUID,
				Target:   ev.Target,
				X:        ev.X,
				Z:        ev.Z,
			})
		}
	})
	event.Subscribe(engine.Bus(), func(ev event.AgentRemoved) {
		log.Info("agent removed", zap.Uint64("agent", ev.AgentID))
	})

	// 8. Tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sim.TickRate)
	defer ticker.Stop()

	dt := cfg.Sim.TickRate.Seconds()
	log.Info("tick loop started", zap.Duration("tick_rate", cfg.Sim.TickRate))

	snapshotCounter := 0
	for {
		select {
		case <-ticker.C:
			engine.Tick(dt)

			if agentRepo != nil && cfg.Sim.SnapshotInterval > 0 {
				snapshotCounter++
				if snapshotCounter >= cfg.Sim.SnapshotInterval {
					snapshotCounter = 0
					saveSnapshot(engine, agentRepo, journalRepo, &journal, log)
				}
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			if agentRepo != nil {
				saveSnapshot(engine, agentRepo, journalRepo, &journal, log)
			}
			log.Info("stopped", zap.Uint64("ticks", engine.TickCount()))
			return nil
		}
	}
}

// buildGrid constructs the navigation grid. World-file dimensions override
// the config section; per-cell overrides apply after the build.
func buildGrid(cfg config.GridConfig, world *data.WorldDef) (*nav.Grid, error) {
	width, height, cellSize := cfg.Width, cfg.Height, cfg.CellSize
	if world.Grid.Width > 0 {
		width = world.Grid.Width
	}
	if world.Grid.Height > 0 {
		height = world.Grid.Height
	}
	if world.Grid.CellSize > 0 {
		cellSize = world.Grid.CellSize
	}

	grid, err := nav.Build(width, height, cellSize)
	if err != nil {
		return nil, err
	}
	for _, c := range world.Cells {
		if c.Walkable != nil {
			if err := grid.SetWalkable(c.IX, c.IZ, *c.Walkable); err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", c.IX, c.IZ, err)
			}
		}
		if c.Cost != nil {
			if err := grid.SetCost(c.IX, c.IZ, *c.Cost); err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", c.IX, c.IZ, err)
			}
		}
	}
	return grid, nil
}

// spawnAgents restores persisted agents when a database is configured,
// falling back to the world file's spawn list on a fresh run.
func spawnAgents(ctx context.Context, engine *sim.Engine, world *data.WorldDef, repo *persist.AgentRepo, log *zap.Logger) (int, error) {
	if repo != nil {
		rows, err := repo.LoadAll(ctx)
		if err != nil {
			return 0, fmt.Errorf("load agents: %w", err)
		}
		if len(rows) > 0 {
			count := 0
			for _, r := range rows {
				def := agent.Definition{
					UID:            r.UID,
					Name:           r.Name,
					X:              r.X,
					Y:              r.Y,
					Z:              r.Z,
					Heading:        r.Heading,
					Speed:          r.Speed,
					Health:         r.Health,
					InteractRadius: r.InteractRadius,
					TreeID:         r.TreeID,
				}
				if _, err := engine.Spawn(def); err != nil {
					log.Warn("restore agent failed",
						zap.String("name", r.Name), zap.Error(err))
					continue
				}
				count++
			}
			return count, nil
		}
	}

	count := 0
	for _, s := range world.Spawns {
		def := agent.Definition{
			UID:            uuid.Nil,
			Name:           s.Name,
			X:              s.X,
			Y:              s.Y,
			Z:              s.Z,
			Heading:        s.Heading,
			Speed:          s.Speed,
			Health:         s.Health,
			InteractRadius: s.InteractRadius,
			TreeID:         s.Tree,
		}
		if _, err := engine.Spawn(def); err != nil {
			return count, fmt.Errorf("spawn %q: %w", s.Name, err)
		}
		count++
	}
	return count, nil
}

// saveSnapshot persists the live directory and drains the journal buffer.
func saveSnapshot(engine *sim.Engine, agentRepo *persist.AgentRepo, journalRepo *persist.JournalRepo, journal *[]persist.JournalEntry, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rows := make([]persist.AgentRow, 0, engine.Agents().Len())
	for _, s := range engine.Agents().Snapshot() {
		a, ok := engine.Agents().Get(s.ID)
		if !ok {
			continue
		}
		rows = append(rows, persist.AgentRow{
			UID:            a.UID,
			Name:           a.Name,
			X:              a.X,
			Y:              a.Y,
			Z:              a.Z,
			Heading:        a.Heading,
			Speed:          a.Speed,
			Health:         a.Health,
			InteractRadius: a.InteractRadius,
			TreeID:         a.TreeID,
			Tick:           engine.TickCount(),
		})
	}
	if err := agentRepo.SaveAll(ctx, rows); err != nil {
		log.Error("agent snapshot failed", zap.Error(err))
		return
	}

	if journalRepo != nil && len(*journal) > 0 {
		if err := journalRepo.Append(ctx, *journal); err != nil {
			log.Error("journal append failed", zap.Error(err))
			return
		}
		*journal = (*journal)[:0]
	}
	log.Info("snapshot saved", zap.Int("agents", len(rows)))
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
