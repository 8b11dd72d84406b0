package skill_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/catalog"
	"github.com/cory-johannsen/battlecore/internal/game/skill"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
)

// fakeEnv deals a fixed amount per hit and records buff applications.
type fakeEnv struct {
	perHit int64
	hits   int
	buffs  []int64
}

func (f *fakeEnv) Calculate(_, _ *battle.Combatant, _ *catalog.Skill) int64 {
	f.hits++
	return f.perHit
}

func (f *fakeEnv) ApplyBuff(s *battle.State, _, targetID, buffID int64) []battle.Event {
	f.buffs = append(f.buffs, buffID)
	ev := battle.BuffApplyEvent(targetID, buffID, 1)
	s.Emit(ev)
	return []battle.Event{ev}
}

func newState(targetHP int64) *battle.State {
	return battle.NewState([]*battle.Combatant{
		{InstanceID: 1, Player: true, CurrentHP: 100, Stats: stat.Stats{stat.MaxHP: 100}},
		{InstanceID: 2, CurrentHP: targetHP, Stats: stat.Stats{stat.MaxHP: 100}},
	}, nil)
}

func TestDispatch(t *testing.T) {
	assert.Equal(t, skill.StrategyDamage, skill.Dispatch(catalog.EffectDamage))
	assert.Equal(t, skill.StrategyHeal, skill.Dispatch(catalog.EffectHeal))
	assert.Equal(t, skill.StrategyBuff, skill.Dispatch(catalog.EffectBuff))
	for _, t2 := range []catalog.EffectType{catalog.EffectStun, catalog.EffectShield, catalog.EffectStatus, 999} {
		assert.Equal(t, skill.StrategyNoop, skill.Dispatch(t2), t2.String())
	}
}

func TestExecute_DamageStopsAtDeath(t *testing.T) {
	s := newState(50)
	env := &fakeEnv{perHit: 30}
	sk := &catalog.Skill{ID: 5, HitCount: 4}

	events := skill.Execute(s, env, 1, 2, sk, catalog.Effect{Type: catalog.EffectDamage})

	assert.Equal(t, 2, env.hits)
	assert.Equal(t, []battle.Event{
		battle.DamageEvent(2, 30),
		battle.DamageEvent(2, 30),
		battle.DeathEvent(2),
	}, events)
	assert.Equal(t, events, s.Events)
	assert.Equal(t, int64(0), s.Character(2).CurrentHP)
}

func TestExecute_DamageOnDeadTarget_NoEvents(t *testing.T) {
	s := newState(0)
	env := &fakeEnv{perHit: 30}
	assert.Empty(t, skill.Execute(s, env, 1, 2, &catalog.Skill{HitCount: 2}, catalog.Effect{Type: catalog.EffectDamage}))
	assert.Zero(t, env.hits)
}

func TestExecute_HealCapsAtMax(t *testing.T) {
	s := newState(80)
	events := skill.Execute(s, &fakeEnv{}, 1, 2, &catalog.Skill{}, catalog.Effect{Type: catalog.EffectHeal, Values: []int64{50}})
	assert.Equal(t, []battle.Event{battle.HealEvent(2, 20)}, events)
	assert.Equal(t, int64(100), s.Character(2).CurrentHP)
}

func TestExecute_HealNoOps(t *testing.T) {
	heal := catalog.Effect{Type: catalog.EffectHeal, Values: []int64{50}}
	assert.Empty(t, skill.Execute(newState(100), &fakeEnv{}, 1, 2, &catalog.Skill{}, heal), "full HP")
	assert.Empty(t, skill.Execute(newState(0), &fakeEnv{}, 1, 2, &catalog.Skill{}, heal), "dead")
	assert.Empty(t, skill.Execute(newState(10), &fakeEnv{}, 1, 2, &catalog.Skill{}, catalog.Effect{Type: catalog.EffectHeal}), "no amount")
}

func TestExecute_Buff(t *testing.T) {
	env := &fakeEnv{}
	s := newState(100)
	events := skill.Execute(s, env, 1, 2, &catalog.Skill{}, catalog.Effect{Type: catalog.EffectBuff, BuffID: 4})
	require.Len(t, events, 1)
	assert.Equal(t, []int64{4}, env.buffs)

	assert.Empty(t, skill.Execute(s, env, 1, 2, &catalog.Skill{}, catalog.Effect{Type: catalog.EffectBuff}))
	assert.Empty(t, skill.Execute(newState(0), env, 1, 2, &catalog.Skill{}, catalog.Effect{Type: catalog.EffectBuff, BuffID: 4}))
	assert.Len(t, env.buffs, 1)
}

func TestExecute_MissingCombatantOrUnknownEffect_NoOp(t *testing.T) {
	s := newState(100)
	env := &fakeEnv{perHit: 10}
	assert.Nil(t, skill.Execute(s, env, 1, 99, &catalog.Skill{}, catalog.Effect{Type: catalog.EffectDamage}))
	assert.Nil(t, skill.Execute(s, env, 99, 2, &catalog.Skill{}, catalog.Effect{Type: catalog.EffectDamage}))
	assert.Nil(t, skill.Execute(s, env, 1, 2, &catalog.Skill{}, catalog.Effect{Type: catalog.EffectTeleport}))
	assert.Empty(t, s.Events)
	assert.Zero(t, env.hits)
}

// Property: a multi-hit damage effect never emits more than one death event
// and never leaves HP outside [0, MaxHP].
func TestPropertyExecute_DamageKeepsHPInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		hp := rapid.Int64Range(1, 100).Draw(t, "hp")
		s := newState(hp)
		env := &fakeEnv{perHit: rapid.Int64Range(1, 60).Draw(t, "per_hit")}
		sk := &catalog.Skill{HitCount: rapid.IntRange(1, 8).Draw(t, "hits")}
		events := skill.Execute(s, env, 1, 2, sk, catalog.Effect{Type: catalog.EffectDamage})
		deaths := 0
		for _, ev := range events {
			if ev.Type == battle.EventDeath {
				deaths++
			}
		}
		if deaths > 1 {
			t.Fatalf("%d death events", deaths)
		}
		if got := s.Character(2).CurrentHP; got < 0 || got > 100 {
			t.Fatalf("HP %d out of range", got)
		}
	})
}
