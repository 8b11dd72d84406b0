package driver

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/game/catalog"
	"github.com/cory-johannsen/battlecore/internal/replay"
	"github.com/cory-johannsen/battlecore/internal/roster"
)

// ErrMismatch is wrapped by every Verify failure caused by a divergent re-run.
var ErrMismatch = errors.New("replay mismatch")

// Verify re-runs a recording from its seed and roster and checks that the
// re-run produced the same inputs on every tick, the same event digest and
// the same outcome.
//
// Inputs are regenerated by the AI rather than fed back from the recording:
// the AI draws from the battle's random stream, so reproducing its choices
// is what keeps the damage rolls aligned.
//
// Precondition: rec must be non-nil with a non-zero seed; cat, settings,
// builder and logger must be non-nil.
// Postcondition: Returns nil when the re-run matches; otherwise an error
// wrapping ErrMismatch that names the first divergence, or a setup error.
func Verify(ctx context.Context, rec *replay.Recording, cat *catalog.Catalog, settings *catalog.Settings, builder *roster.Builder, logger *zap.Logger) error {
	if rec.Seed == 0 {
		return errors.New("driver: recording has no seed")
	}
	s, err := New(cat, settings, builder, rec.Roster, Options{
		Seed:           rec.Seed,
		ControlPlayers: rec.ControlPlayers,
	}, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	for i, tick := range rec.Ticks {
		if err := ctx.Err(); err != nil {
			return err
		}
		r := s.Step(tick.DeltaMs)
		if got := replay.EncodeInputs(r.Inputs); !sameInputs(got, tick.Inputs) {
			return fmt.Errorf("%w: tick %d inputs %v, recorded %v", ErrMismatch, i+1, got, tick.Inputs)
		}
		if r.Finished && i != len(rec.Ticks)-1 {
			return fmt.Errorf("%w: re-run finished at tick %d of %d", ErrMismatch, i+1, len(rec.Ticks))
		}
	}

	got := s.Recording()
	if got.Digest != rec.Digest {
		return fmt.Errorf("%w: digest %s, recorded %s", ErrMismatch, got.Digest, rec.Digest)
	}
	if got.Outcome != rec.Outcome {
		return fmt.Errorf("%w: outcome %s, recorded %s", ErrMismatch, got.Outcome, rec.Outcome)
	}
	logger.Info("replay verified",
		zap.Uint64("seed", rec.Seed),
		zap.Int("ticks", len(rec.Ticks)),
		zap.String("digest", got.Digest),
	)
	return nil
}

func sameInputs(a, b []replay.Input) bool {
	return slices.EqualFunc(a, b, func(x, y replay.Input) bool {
		if x.Type != y.Type || x.Actor != y.Actor || !slices.Equal(x.Targets, y.Targets) {
			return false
		}
		if x.Skill == nil || y.Skill == nil {
			return x.Skill == y.Skill
		}
		return *x.Skill == *y.Skill
	})
}
