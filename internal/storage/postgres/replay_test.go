package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/replay"
	"github.com/cory-johannsen/battlecore/internal/roster"
	"github.com/cory-johannsen/battlecore/internal/storage/postgres"
	"github.com/cory-johannsen/battlecore/internal/testutil"
)

func makeRecording(seed uint64, outcome battle.Outcome) *replay.Recording {
	f := &roster.File{
		Players: []roster.Character{{Name: "imp", Element: stat.Fire, Stats: stat.Stats{stat.MaxHP: 100, stat.Attack: 20}}},
		Enemies: []roster.Character{{Name: "slime", Stats: stat.Stats{stat.MaxHP: 40}}},
	}
	rec := replay.NewRecorder(seed, true, f)
	rec.Record(100, []battle.ActionInput{battle.NewAttackInput(1, 2)}, 1, []battle.Event{battle.DamageEvent(2, 20)})
	rec.Record(100, nil, 2, nil)
	return rec.Finish(outcome)
}

func TestReplayRepository(t *testing.T) {
	repo := postgres.NewReplayRepository(testutil.NewPool(t))
	ctx := context.Background()

	t.Run("save and load", func(t *testing.T) {
		rec := makeRecording(1<<63+5, battle.OutcomeVictory)
		require.NoError(t, repo.Save(ctx, rec))

		got, err := repo.Load(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, rec.Seed, got.Seed, "seeds above MaxInt64 survive")
		assert.Equal(t, rec.Digest, got.Digest)
		assert.Equal(t, rec.Ticks, got.Ticks)
		assert.Equal(t, rec.Roster, got.Roster)
		assert.Equal(t, battle.OutcomeVictory, got.Outcome)
	})

	t.Run("duplicate id", func(t *testing.T) {
		rec := makeRecording(2, battle.OutcomeDefeat)
		require.NoError(t, repo.Save(ctx, rec))
		assert.ErrorIs(t, repo.Save(ctx, rec), postgres.ErrReplayExists)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.Load(ctx, uuid.New())
		assert.ErrorIs(t, err, postgres.ErrReplayNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), postgres.ErrReplayNotFound)
	})

	t.Run("list by outcome", func(t *testing.T) {
		ids := map[uuid.UUID]bool{}
		for i := 0; i < 3; i++ {
			rec := makeRecording(uint64(100+i), battle.OutcomeOngoing)
			require.NoError(t, repo.Save(ctx, rec))
			ids[rec.ID] = true
		}
		got, err := repo.ListByOutcome(ctx, battle.OutcomeOngoing, 10)
		require.NoError(t, err)
		require.Len(t, got, 3)
		for _, s := range got {
			assert.True(t, ids[s.ID])
			assert.Equal(t, battle.OutcomeOngoing, s.Outcome)
			assert.Equal(t, int64(2), s.Turns)
		}

		limited, err := repo.ListByOutcome(ctx, battle.OutcomeOngoing, 2)
		require.NoError(t, err)
		assert.Len(t, limited, 2)
	})

	t.Run("delete", func(t *testing.T) {
		rec := makeRecording(7, battle.OutcomeVictory)
		require.NoError(t, repo.Save(ctx, rec))
		require.NoError(t, repo.Delete(ctx, rec.ID))
		_, err := repo.Load(ctx, rec.ID)
		assert.ErrorIs(t, err, postgres.ErrReplayNotFound)
	})

	t.Run("property: any seed round-trips", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			seed := rapid.Uint64Min(1).Draw(rt, "seed")
			rec := makeRecording(seed, battle.OutcomeDefeat)
			require.NoError(rt, repo.Save(ctx, rec))
			got, err := repo.Load(ctx, rec.ID)
			require.NoError(rt, err)
			if got.Seed != seed {
				rt.Fatalf("seed %d came back as %d", seed, got.Seed)
			}
		})
	})
}
