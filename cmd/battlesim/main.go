// Package main provides the battle simulator CLI. It runs battles from a
// roster file, records them, verifies recordings and optionally stores them
// in PostgreSQL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/config"
	"github.com/cory-johannsen/battlecore/internal/driver"
	"github.com/cory-johannsen/battlecore/internal/game/catalog"
	"github.com/cory-johannsen/battlecore/internal/observability"
	"github.com/cory-johannsen/battlecore/internal/replay"
	"github.com/cory-johannsen/battlecore/internal/roster"
	"github.com/cory-johannsen/battlecore/internal/scripting"
	"github.com/cory-johannsen/battlecore/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	rosterPath := flag.String("roster", "", "path to roster YAML file")
	seed := flag.Uint64("seed", 0, "random seed (0 = config value, or random)")
	tickMs := flag.Int64("tick", 0, "tick delta in milliseconds (0 = config value)")
	maxTicks := flag.Int("max-ticks", 0, "tick limit per battle (0 = config value)")
	battles := flag.Int("battles", 1, "number of battles to run concurrently, seeded seed, seed+1, ...")
	outPath := flag.String("out", "", "write the recording to this YAML file (single battle only)")
	verifyPath := flag.String("verify", "", "verify a recording file instead of running a battle")
	verifyID := flag.String("verify-id", "", "verify a stored recording by id (requires -store)")
	store := flag.Bool("store", false, "save recordings to PostgreSQL")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *seed != 0 {
		cfg.Battle.Seed = *seed
	}
	if *tickMs != 0 {
		cfg.Battle.TickMs = *tickMs
	}
	if *maxTicks != 0 {
		cfg.Battle.MaxTicks = *maxTicks
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("validating flags: %v", err)
	}
	if *battles > 1 && *outPath != "" {
		log.Fatalf("validating flags: -out writes a single recording and cannot be combined with -battles %d", *battles)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.LoadDirectory(cfg.Battle.ContentDir)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	scripts, err := loadScripts(cfg.Battle, logger)
	if err != nil {
		logger.Fatal("loading scripts", zap.Error(err))
	}
	defer scripts.Close()
	logger.Info("content loaded",
		zap.String("dir", cfg.Battle.ContentDir),
		zap.Int("skills", len(cat.Skills())),
		zap.Int("buffs", len(cat.Buffs())),
		zap.Int("affinities", cat.Affinity().Len()),
		zap.Strings("scripts", scripts.Names()),
	)

	settings := cfg.Damage.Settings()
	builder := roster.NewBuilder(cat, scripts, logger)

	var repo *postgres.ReplayRepository
	if *store || *verifyID != "" {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		repo = postgres.NewReplayRepository(pool.DB())
	}

	switch {
	case *verifyPath != "" || *verifyID != "":
		rec, err := loadRecording(ctx, *verifyPath, *verifyID, repo)
		if err != nil {
			logger.Fatal("loading recording", zap.Error(err))
		}
		if err := driver.Verify(ctx, rec, cat, settings, builder, logger); err != nil {
			logger.Fatal("verification failed", zap.Error(err))
		}
		fmt.Fprintf(os.Stdout, "verified %s seed=%d outcome=%s digest=%s\n", rec.ID, rec.Seed, rec.Outcome, rec.Digest)
	default:
		if *rosterPath == "" {
			log.Fatal("-roster is required")
		}
		if *battles < 1 {
			log.Fatal("-battles must be >= 1")
		}
		if *outPath != "" && *battles > 1 {
			log.Fatal("-out supports a single battle")
		}
		f, err := roster.Load(*rosterPath)
		if err != nil {
			logger.Fatal("loading roster", zap.Error(err))
		}
		if err := runBattles(ctx, cfg.Battle, *battles, f, cat, settings, builder, repo, *outPath, logger); err != nil {
			logger.Fatal("running battles", zap.Error(err))
		}
	}

	logger.Info("done", zap.Duration("elapsed", time.Since(start)))
}

func loadScripts(cfg config.BattleConfig, logger *zap.Logger) (*scripting.Manager, error) {
	mgr := scripting.NewManager(cfg.InstructionLimit, logger)
	if cfg.ScriptDir == "" {
		return mgr, nil
	}
	if _, err := os.Stat(cfg.ScriptDir); errors.Is(err, os.ErrNotExist) {
		logger.Info("script dir not found, scripting disabled", zap.String("dir", cfg.ScriptDir))
		return mgr, nil
	}
	if err := mgr.LoadDir(cfg.ScriptDir); err != nil {
		mgr.Close()
		return nil, err
	}
	return mgr, nil
}

func loadRecording(ctx context.Context, path, id string, repo *postgres.ReplayRepository) (*replay.Recording, error) {
	if path != "" {
		return replay.ReadFile(path)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parsing -verify-id: %w", err)
	}
	return repo.Load(ctx, parsed)
}

func runBattles(
	ctx context.Context,
	cfg config.BattleConfig,
	n int,
	f *roster.File,
	cat *catalog.Catalog,
	settings *catalog.Settings,
	builder *roster.Builder,
	repo *postgres.ReplayRepository,
	outPath string,
	logger *zap.Logger,
) error {
	reg := driver.NewRegistry()
	sessions := make(map[uuid.UUID]*driver.Session, n)
	for i := 0; i < n; i++ {
		seed := cfg.Seed
		if seed != 0 {
			seed += uint64(i)
		}
		s, err := driver.New(cat, settings, builder, f, driver.Options{
			Seed:           seed,
			ControlPlayers: cfg.ControlPlayers,
			LogDraws:       cfg.LogDraws,
		}, logger)
		if err != nil {
			for id := range sessions {
				reg.End(id)
			}
			return err
		}
		if err := reg.Start(s); err != nil {
			s.Close()
			return err
		}
		sessions[s.ID()] = s
	}

	for _, r := range reg.RunAll(ctx, cfg.TickMs, cfg.MaxTicks) {
		if r.Err != nil {
			return fmt.Errorf("session %s: %w", r.ID, r.Err)
		}
		rec := sessions[r.ID].Recording()
		fmt.Fprintf(os.Stdout, "%s seed=%d outcome=%s turns=%d digest=%s\n", rec.ID, rec.Seed, rec.Outcome, rec.Turns, rec.Digest)
		if outPath != "" {
			if err := replay.WriteFile(outPath, rec); err != nil {
				return err
			}
			logger.Info("recording written", zap.String("path", outPath))
		}
		if repo != nil {
			if err := repo.Save(ctx, rec); err != nil {
				return err
			}
			logger.Info("recording stored", zap.String("id", rec.ID.String()))
		}
	}
	return nil
}
