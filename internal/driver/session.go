// Package driver runs battles: it collects inputs, advances the rules
// engine, checks for an outcome and records every tick for replay.
//
// The rules core never logs; the driver logs each tick. Each Session owns its
// own engine and random stream, so sessions may run concurrently.
package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/ai"
	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/catalog"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/rules"
	"github.com/cory-johannsen/battlecore/internal/game/victory"
	"github.com/cory-johannsen/battlecore/internal/replay"
	"github.com/cory-johannsen/battlecore/internal/roster"
)

// InputSource proposes action inputs for a tick. ai.Provider is one.
type InputSource interface {
	CollectInputs(s *battle.State, rng ai.RNG) []battle.ActionInput
}

// Options configures a Session.
type Options struct {
	// Seed of the battle's random stream. 0 draws a random seed, which is
	// then recorded.
	Seed uint64
	// ControlPlayers lets the AI drive the player side too.
	ControlPlayers bool
	// Sources run before the AI each tick, in order.
	Sources []InputSource
	// LogDraws logs every random draw at debug level.
	LogDraws bool
}

// StepResult describes one processed tick.
type StepResult struct {
	Turn     int64
	Inputs   []battle.ActionInput
	Events   []battle.Event
	Outcome  battle.Outcome
	Finished bool
}

// Session is one battle in progress.
//
// A Session is not safe for concurrent use.
type Session struct {
	id      uuid.UUID
	seed    uint64
	engine  *rules.Engine
	state   *battle.State
	sources []InputSource
	rec     *replay.Recorder
	outcome battle.Outcome
	release func()
	logger  *zap.Logger
}

// New builds a Session from a roster file. Scripts referenced by the roster
// run in VMs private to the session; Close releases them.
//
// Precondition: cat, settings, builder, f and logger must be non-nil.
// Postcondition: Returns a preparing Session, or an error if the roster
// cannot be built or the engine cannot be constructed.
func New(cat *catalog.Catalog, settings *catalog.Settings, builder *roster.Builder, f *roster.File, opts Options, logger *zap.Logger) (*Session, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = dice.NewSeed()
	}
	var src dice.Source = dice.NewSeededSource(seed)
	if opts.LogDraws {
		src = dice.NewLoggedSource(src, logger)
	}
	engine, err := rules.New(settings, cat, src)
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}
	builder, release, err := builder.Fork()
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}
	state, err := builder.Build(f)
	if err != nil {
		release()
		return nil, fmt.Errorf("driver: %w", err)
	}
	id := uuid.New()
	sources := append(append([]InputSource(nil), opts.Sources...), ai.Provider{ControlPlayers: opts.ControlPlayers})
	return &Session{
		id:      id,
		seed:    seed,
		engine:  engine,
		state:   state,
		sources: sources,
		rec:     replay.NewRecorder(seed, opts.ControlPlayers, f),
		outcome: battle.OutcomeOngoing,
		release: release,
		logger:  logger.With(zap.String("session", id.String()), zap.Uint64("seed", seed)),
	}, nil
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID { return s.id }

// Seed returns the seed of the session's random stream.
func (s *Session) Seed() uint64 { return s.seed }

// State returns the current snapshot. Callers must not mutate it.
func (s *Session) State() *battle.State { return s.state }

// Outcome returns the outcome as of the last tick.
func (s *Session) Outcome() battle.Outcome { return s.outcome }

// Recording returns the battle recorded so far.
func (s *Session) Recording() *replay.Recording { return s.rec.Finish(s.outcome) }

// Close releases the session's script VMs. Stepping a closed session whose
// roster uses scripts leaves those modifiers inert.
func (s *Session) Close() {
	if s.release != nil {
		s.release()
		s.release = nil
	}
}

// Step advances the battle by deltaMs: collect inputs, process the tick,
// then check for an outcome.
//
// Postcondition: The first step moves the battle from preparing to ongoing;
// a decisive outcome moves it to finished. Stepping a finished battle does
// nothing.
func (s *Session) Step(deltaMs int64) StepResult {
	if s.state.Status == battle.StatusFinished {
		return StepResult{Turn: s.state.Turn, Outcome: s.outcome, Finished: true}
	}

	var inputs []battle.ActionInput
	for _, src := range s.sources {
		inputs = append(inputs, src.CollectInputs(s.state, s.engine)...)
	}
	next, events := s.engine.ProcessTick(s.state, rules.ActionsFromInputs(inputs), deltaMs)
	next.Status = battle.StatusOngoing
	s.outcome = victory.Check(next)
	if s.outcome != battle.OutcomeOngoing {
		next.Status = battle.StatusFinished
	}
	s.state = next
	s.rec.Record(deltaMs, inputs, next.Turn, events)
	s.rec.RecordState(next)

	if ce := s.logger.Check(zap.DebugLevel, "tick"); ce != nil {
		ce.Write(
			zap.Int64("turn", next.Turn),
			zap.Int64("elapsed_ms", next.ElapsedMs),
			zap.Int("inputs", len(inputs)),
			zap.Stringers("events", events),
		)
	}
	if next.Status == battle.StatusFinished {
		s.logger.Info("battle finished",
			zap.Stringer("outcome", s.outcome),
			zap.Int64("turns", next.Turn),
			zap.Int64("elapsed_ms", next.ElapsedMs),
		)
	}
	return StepResult{
		Turn:     next.Turn,
		Inputs:   inputs,
		Events:   events,
		Outcome:  s.outcome,
		Finished: next.Status == battle.StatusFinished,
	}
}

// Run steps the battle until it finishes, maxTicks ticks have run, or ctx is
// cancelled.
//
// Precondition: deltaMs > 0 and maxTicks > 0.
// Postcondition: Returns the outcome reached. The error is ctx.Err() on
// cancellation and nil otherwise; an undecided battle returns OutcomeOngoing.
func (s *Session) Run(ctx context.Context, deltaMs int64, maxTicks int) (battle.Outcome, error) {
	if deltaMs <= 0 || maxTicks <= 0 {
		return s.outcome, errors.New("driver: delta_ms and max_ticks must be positive")
	}
	for i := 0; i < maxTicks; i++ {
		if err := ctx.Err(); err != nil {
			return s.outcome, err
		}
		if s.Step(deltaMs).Finished {
			return s.outcome, nil
		}
	}
	s.logger.Warn("battle hit tick limit",
		zap.Int("max_ticks", maxTicks),
		zap.Int64("turns", s.state.Turn),
	)
	return s.outcome, nil
}
