// Package skill resolves the typed effects of a skill against a battle state.
package skill

import (
	"fmt"

	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/catalog"
)

// Strategy is the closed set of effect resolvers.
type Strategy int

const (
	// StrategyNoop ignores the effect. Every effect type without a concrete
	// resolver maps here.
	StrategyNoop Strategy = iota
	StrategyDamage
	StrategyHeal
	StrategyBuff
)

func (s Strategy) String() string {
	switch s {
	case StrategyNoop:
		return "noop"
	case StrategyDamage:
		return "damage"
	case StrategyHeal:
		return "heal"
	case StrategyBuff:
		return "buff"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// Dispatch maps an effect type to the strategy that resolves it.
//
// Postcondition: Never fails; unrecognized types return StrategyNoop.
func Dispatch(t catalog.EffectType) Strategy {
	switch t {
	case catalog.EffectDamage:
		return StrategyDamage
	case catalog.EffectHeal:
		return StrategyHeal
	case catalog.EffectBuff:
		return StrategyBuff
	default:
		return StrategyNoop
	}
}

// Env is the slice of the rules engine a strategy needs.
type Env interface {
	// Calculate runs the damage pipeline for one hit.
	Calculate(attacker, defender *battle.Combatant, skill *catalog.Skill) int64
	// ApplyBuff applies or reapplies buffID on targetID and emits its events.
	ApplyBuff(s *battle.State, casterID, targetID, buffID int64) []battle.Event
}

// Execute resolves one effect of sk cast by casterID on targetID.
//
// The caster and target are looked up in s on every call, so an effect always
// sees the result of the effects before it.
//
// Precondition: s is owned by the caller and may be mutated; effect values
// are already scaled for the caster's skill level.
// Postcondition: Returns the emitted events, which are also appended to
// s.Events. A missing caster or target is a no-op.
func Execute(s *battle.State, env Env, casterID, targetID int64, sk *catalog.Skill, effect catalog.Effect) []battle.Event {
	caster := s.Combatant(casterID)
	target := s.Combatant(targetID)
	if caster == nil || target == nil {
		return nil
	}
	switch Dispatch(effect.Type) {
	case StrategyDamage:
		return damage(s, env, caster, target, sk)
	case StrategyHeal:
		return heal(s, target, effect)
	case StrategyBuff:
		return applyBuff(s, env, caster, target, effect)
	case StrategyNoop:
	}
	return nil
}

// damage hits target sk.HitCount times, stopping once it is dead.
func damage(s *battle.State, env Env, caster, target *battle.Combatant, sk *catalog.Skill) []battle.Event {
	var events []battle.Event
	hits := max(sk.HitCount, 1)
	for i := 0; i < hits && target.IsAlive(); i++ {
		amount := env.Calculate(caster, target, sk)
		died := target.ApplyDamage(amount)
		events = append(events, battle.DamageEvent(target.InstanceID, amount))
		if died {
			events = append(events, battle.DeathEvent(target.InstanceID))
		}
	}
	s.Emit(events...)
	return events
}

func heal(s *battle.State, target *battle.Combatant, effect catalog.Effect) []battle.Event {
	if !target.IsAlive() || target.CurrentHP >= target.MaxHP() {
		return nil
	}
	amount := effect.Value(0, 0)
	if amount <= 0 {
		return nil
	}
	ev := battle.HealEvent(target.InstanceID, target.Heal(amount))
	s.Emit(ev)
	return []battle.Event{ev}
}

func applyBuff(s *battle.State, env Env, caster, target *battle.Combatant, effect catalog.Effect) []battle.Event {
	if !target.IsAlive() || effect.BuffID <= 0 {
		return nil
	}
	return env.ApplyBuff(s, caster.InstanceID, target.InstanceID, effect.BuffID)
}
