package driver_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/driver"
	"github.com/cory-johannsen/battlecore/internal/game/ai"
	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/catalog"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/replay"
	"github.com/cory-johannsen/battlecore/internal/roster"
	"github.com/cory-johannsen/battlecore/internal/scripting"
)

const tickMs = 100

// testingT is satisfied by both *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

type fixture struct {
	cat      *catalog.Catalog
	settings *catalog.Settings
	builder  *roster.Builder
}

func newFixture(logger *zap.Logger) fixture {
	cat := catalog.New()
	return fixture{
		cat:      cat,
		settings: catalog.DefaultSettings(),
		builder:  roster.NewBuilder(cat, nil, logger),
	}
}

func skirmish(critRate int64) *roster.File {
	return &roster.File{
		Players: []roster.Character{
			{Name: "imp", Level: 1, Stats: stat.Stats{stat.MaxHP: 300, stat.Attack: 60, stat.CritRate: critRate}},
			{Name: "ghoul", Level: 1, Stats: stat.Stats{stat.MaxHP: 250, stat.Attack: 45}},
		},
		Enemies: []roster.Character{
			{Name: "slime", Level: 1, Stats: stat.Stats{stat.MaxHP: 120, stat.Attack: 30, stat.Defense: 5}},
			{Name: "bat", Level: 1, Stats: stat.Stats{stat.MaxHP: 90, stat.Attack: 25, stat.CritRate: critRate}},
		},
	}
}

func newSession(t testingT, fx fixture, f *roster.File, opts driver.Options, logger *zap.Logger) *driver.Session {
	t.Helper()
	s, err := driver.New(fx.cat, fx.settings, fx.builder, f, opts, logger)
	require.NoError(t, err)
	return s
}

func TestSession_AIControlledPlayersWin(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	fx := newFixture(logger)
	s := newSession(t, fx, skirmish(0), driver.Options{Seed: 7, ControlPlayers: true}, logger)
	assert.Equal(t, battle.StatusPreparing, s.State().Status)

	outcome, err := s.Run(context.Background(), tickMs, 1000)
	require.NoError(t, err)
	assert.Equal(t, battle.OutcomeVictory, outcome)
	assert.Equal(t, battle.StatusFinished, s.State().Status)
	assert.Equal(t, 1, logs.FilterMessage("battle finished").Len())

	turn := s.State().Turn
	r := s.Step(tickMs)
	assert.True(t, r.Finished)
	assert.Equal(t, turn, r.Turn)
	assert.Empty(t, r.Events)
}

func TestSession_IdlePlayersLose(t *testing.T) {
	logger := zap.NewNop()
	fx := newFixture(logger)
	s := newSession(t, fx, skirmish(0), driver.Options{Seed: 7}, logger)

	outcome, err := s.Run(context.Background(), tickMs, 2000)
	require.NoError(t, err)
	assert.Equal(t, battle.OutcomeDefeat, outcome)
}

func TestSession_FirstStepStartsBattle(t *testing.T) {
	logger := zap.NewNop()
	fx := newFixture(logger)
	s := newSession(t, fx, skirmish(0), driver.Options{Seed: 3, ControlPlayers: true}, logger)

	r := s.Step(tickMs)
	assert.False(t, r.Finished)
	assert.Equal(t, int64(1), r.Turn)
	assert.Equal(t, battle.StatusOngoing, s.State().Status)
	assert.NotEmpty(t, r.Inputs, "every unit is off cooldown on the first tick")
}

func TestSession_ZeroSeedIsReplaced(t *testing.T) {
	logger := zap.NewNop()
	fx := newFixture(logger)
	s := newSession(t, fx, skirmish(0), driver.Options{}, logger)
	assert.NotZero(t, s.Seed())
	assert.Equal(t, s.Seed(), s.Recording().Seed)
}

func TestSession_ExtraSourcesRunFirst(t *testing.T) {
	logger := zap.NewNop()
	fx := newFixture(logger)
	src := &countingSource{}
	s := newSession(t, fx, skirmish(0), driver.Options{Seed: 5, Sources: []driver.InputSource{src}}, logger)
	s.Step(tickMs)
	s.Step(tickMs)
	assert.Equal(t, 2, src.calls)
}

type countingSource struct{ calls int }

func (c *countingSource) CollectInputs(*battle.State, ai.RNG) []battle.ActionInput {
	c.calls++
	return nil
}

func TestSession_RunRejectsNonPositiveLimits(t *testing.T) {
	logger := zap.NewNop()
	fx := newFixture(logger)
	s := newSession(t, fx, skirmish(0), driver.Options{Seed: 1}, logger)
	_, err := s.Run(context.Background(), tickMs, 0)
	assert.Error(t, err)
	_, err = s.Run(context.Background(), 0, 10)
	assert.Error(t, err)
}

func TestSession_RunHonoursCancellation(t *testing.T) {
	logger := zap.NewNop()
	fx := newFixture(logger)
	s := newSession(t, fx, skirmish(0), driver.Options{Seed: 1, ControlPlayers: true}, logger)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcome, err := s.Run(ctx, tickMs, 100)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, battle.OutcomeOngoing, outcome)
	assert.Equal(t, int64(0), s.State().Turn)
}

func TestSession_TickLimitLeavesOngoing(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)
	fx := newFixture(logger)
	s := newSession(t, fx, skirmish(0), driver.Options{Seed: 1, ControlPlayers: true}, logger)
	outcome, err := s.Run(context.Background(), tickMs, 2)
	require.NoError(t, err)
	assert.Equal(t, battle.OutcomeOngoing, outcome)
	assert.Equal(t, 1, logs.FilterMessage("battle hit tick limit").Len())
}

func TestSession_SameSeedSameRecording(t *testing.T) {
	logger := zap.NewNop()
	fx := newFixture(logger)
	run := func() *replay.Recording {
		s := newSession(t, fx, skirmish(2500), driver.Options{Seed: 99, ControlPlayers: true}, logger)
		_, err := s.Run(context.Background(), tickMs, 1000)
		require.NoError(t, err)
		return s.Recording()
	}
	a, b := run(), run()
	assert.Equal(t, a.Digest, b.Digest)
	assert.Equal(t, a.Outcome, b.Outcome)
	assert.Equal(t, a.Ticks, b.Ticks)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestVerify_AcceptsOwnRecording(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	fx := newFixture(logger)
	s := newSession(t, fx, skirmish(2500), driver.Options{Seed: 11, ControlPlayers: true}, logger)
	_, err := s.Run(context.Background(), tickMs, 1000)
	require.NoError(t, err)

	data, err := replay.Marshal(s.Recording())
	require.NoError(t, err)
	rec, err := replay.Unmarshal(data)
	require.NoError(t, err)

	require.NoError(t, driver.Verify(context.Background(), rec, fx.cat, fx.settings, fx.builder, logger))
	assert.Equal(t, 1, logs.FilterMessage("replay verified").Len())
}

func TestVerify_DetectsTampering(t *testing.T) {
	logger := zap.NewNop()
	fx := newFixture(logger)
	s := newSession(t, fx, skirmish(2500), driver.Options{Seed: 11, ControlPlayers: true}, logger)
	_, err := s.Run(context.Background(), tickMs, 1000)
	require.NoError(t, err)

	cases := map[string]func(r *replay.Recording){
		"digest":      func(r *replay.Recording) { r.Digest = "0000000000000000" },
		"outcome":     func(r *replay.Recording) { r.Outcome = battle.OutcomeDefeat },
		"inputs":      func(r *replay.Recording) { r.Ticks[0].Inputs = nil },
		"delta":       func(r *replay.Recording) { r.Ticks[2].DeltaMs = 5000 },
		"first delta": func(r *replay.Recording) { r.Ticks[0].DeltaMs = tickMs + 1 },
		"extended": func(r *replay.Recording) {
			r.Ticks = append(r.Ticks, replay.Tick{DeltaMs: tickMs})
		},
	}
	for name, tamper := range cases {
		t.Run(name, func(t *testing.T) {
			rec := s.Recording()
			tamper(rec)
			err := driver.Verify(context.Background(), rec, fx.cat, fx.settings, fx.builder, logger)
			assert.ErrorIs(t, err, driver.ErrMismatch)
		})
	}
}

func TestVerify_RejectsZeroSeed(t *testing.T) {
	logger := zap.NewNop()
	fx := newFixture(logger)
	rec := &replay.Recording{Roster: skirmish(0)}
	err := driver.Verify(context.Background(), rec, fx.cat, fx.settings, fx.builder, logger)
	require.Error(t, err)
	assert.NotErrorIs(t, err, driver.ErrMismatch)
}

func TestRegistry_StartGetEnd(t *testing.T) {
	logger := zap.NewNop()
	fx := newFixture(logger)
	reg := driver.NewRegistry()
	s := newSession(t, fx, skirmish(0), driver.Options{Seed: 1}, logger)

	require.NoError(t, reg.Start(s))
	assert.Error(t, reg.Start(s))
	got, ok := reg.Get(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)

	reg.End(s.ID())
	_, ok = reg.Get(s.ID())
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_RunAllMatchesSequentialRuns(t *testing.T) {
	logger := zap.NewNop()
	fx := newFixture(logger)
	reg := driver.NewRegistry()
	want := map[uint64]battle.Outcome{}
	for seed := uint64(1); seed <= 8; seed++ {
		solo := newSession(t, fx, skirmish(3000), driver.Options{Seed: seed, ControlPlayers: true}, logger)
		outcome, err := solo.Run(context.Background(), tickMs, 1000)
		require.NoError(t, err)
		want[seed] = outcome
		require.NoError(t, reg.Start(newSession(t, fx, skirmish(3000), driver.Options{Seed: seed, ControlPlayers: true}, logger)))
	}

	results := reg.RunAll(context.Background(), tickMs, 1000)
	require.Len(t, results, 8)
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, want[r.Seed], r.Outcome, "seed %d", r.Seed)
		assert.Positive(t, r.Turns)
	}
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_RunAllReturnsRegistrationOrder(t *testing.T) {
	logger := zap.NewNop()
	fx := newFixture(logger)
	reg := driver.NewRegistry()
	var ids []uuid.UUID
	for seed := uint64(20); seed < 36; seed++ {
		s := newSession(t, fx, skirmish(0), driver.Options{Seed: seed, ControlPlayers: true}, logger)
		require.NoError(t, reg.Start(s))
		ids = append(ids, s.ID())
	}
	reg.End(ids[3])
	ids = append(ids[:3], ids[4:]...)

	results := reg.RunAll(context.Background(), tickMs, 1000)
	require.Len(t, results, len(ids))
	for i, r := range results {
		assert.Equal(t, ids[i], r.ID, "result %d", i)
	}
}

// scriptedFixture binds every player to a script that keeps a hit counter in
// a Lua global and to one that tries to use Lua's own random numbers.
func scriptedFixture(t *testing.T, logger *zap.Logger) (fixture, *roster.File) {
	t.Helper()
	mgr := scripting.NewManager(0, logger)
	t.Cleanup(mgr.Close)
	require.NoError(t, mgr.Load("stacking", `
		hits = 0
		function modify_damage(damage, ctx)
			hits = hits + 1
			return damage + hits
		end
	`))
	require.NoError(t, mgr.Load("dice", `
		function modify_damage(damage, ctx)
			return damage + math.random(0, 50)
		end
	`))
	fx := newFixture(logger)
	fx.builder = roster.NewBuilder(fx.cat, mgr, logger)
	f := skirmish(2000)
	for i := range f.Players {
		f.Players[i].Scripts = []roster.ScriptRef{{Name: "stacking"}, {Name: "dice", Priority: 200}}
	}
	return fx, f
}

func TestSession_ScriptedBattlesAreIndependentAndReplay(t *testing.T) {
	logger := zap.NewNop()
	fx, f := scriptedFixture(t, logger)

	var digests []string
	for i := 0; i < 3; i++ {
		s := newSession(t, fx, f, driver.Options{Seed: 7, ControlPlayers: true}, logger)
		_, err := s.Run(context.Background(), tickMs, 1000)
		require.NoError(t, err)
		rec := s.Recording()
		s.Close()
		digests = append(digests, rec.Digest)
		require.NoError(t, driver.Verify(context.Background(), rec, fx.cat, fx.settings, fx.builder, logger))
	}
	assert.Equal(t, digests[0], digests[1])
	assert.Equal(t, digests[0], digests[2])
}

func TestRegistry_RunAllScriptedMatchesSequentialRuns(t *testing.T) {
	logger := zap.NewNop()
	fx, f := scriptedFixture(t, logger)
	reg := driver.NewRegistry()
	want := map[uint64]string{}
	sessions := map[uuid.UUID]*driver.Session{}
	for seed := uint64(1); seed <= 6; seed++ {
		solo := newSession(t, fx, f, driver.Options{Seed: seed, ControlPlayers: true}, logger)
		_, err := solo.Run(context.Background(), tickMs, 1000)
		require.NoError(t, err)
		want[seed] = solo.Recording().Digest
		solo.Close()
		s := newSession(t, fx, f, driver.Options{Seed: seed, ControlPlayers: true}, logger)
		sessions[s.ID()] = s
		require.NoError(t, reg.Start(s))
	}

	for _, r := range reg.RunAll(context.Background(), tickMs, 1000) {
		require.NoError(t, r.Err)
		assert.Equal(t, want[r.Seed], sessions[r.ID].Recording().Digest, "seed %d", r.Seed)
	}
}

// Property: any recorded battle verifies against itself.
func TestPropertyVerify_RecordingReplays(t *testing.T) {
	logger := zap.NewNop()
	fx := newFixture(logger)
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Uint64Range(1, 1<<62).Draw(t, "seed")
		crit := rapid.Int64Range(0, 10000).Draw(t, "crit_rate")
		control := rapid.Bool().Draw(t, "control_players")
		delta := rapid.Int64Range(50, 500).Draw(t, "delta_ms")

		s := newSession(t, fx, skirmish(crit), driver.Options{Seed: seed, ControlPlayers: control}, logger)
		_, err := s.Run(context.Background(), delta, 300)
		require.NoError(t, err)
		if err := driver.Verify(context.Background(), s.Recording(), fx.cat, fx.settings, fx.builder, logger); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
	})
}
