// Package buff applies, stacks, ticks and expires buffs on combatants.
//
// Every operation mutates the *battle.State it is given. Callers pass a state
// they own, normally the clone under construction inside a tick.
package buff

import (
	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/catalog"
)

// Engine resolves buff ids against a catalog and drives the effect lifecycle.
type Engine struct {
	cat *catalog.Catalog
}

// NewEngine creates an Engine over cat.
//
// Precondition: cat must be non-nil.
func NewEngine(cat *catalog.Catalog) *Engine {
	return &Engine{cat: cat}
}

// Apply puts buffID on targetID, or reapplies it if already present.
//
// A new instance starts at one stack with ScaledDurationMs(1). A reapplication
// raises the stack count by one up to MaxStacks, applies only the incremental
// effect for the new stack, and resets the duration to ScaledDurationMs of the
// new stack count. At MaxStacks a reapplication only refreshes the duration.
//
// Postcondition: Returns the emitted events (also appended to s.Events); nil
// when the target is missing or dead or the buff is not in the catalog.
func (e *Engine) Apply(s *battle.State, casterID, targetID, buffID int64) []battle.Event {
	target := s.Combatant(targetID)
	if target == nil || !target.IsAlive() {
		return nil
	}
	def, ok := e.cat.Buff(buffID)
	if !ok {
		return nil
	}

	var ev battle.Event
	if idx := target.FindBuff(buffID); idx >= 0 {
		inst := &target.Buffs[idx]
		if inst.Stacks < def.MaxStacks {
			inst.Stacks++
			reapply(target, def, inst.Stacks)
		}
		inst.RemainingDurationMs = def.ScaledDurationMs(inst.Stacks)
		ev = battle.BuffApplyEvent(targetID, buffID, inst.Stacks)
	} else {
		target.Buffs = append(target.Buffs, battle.BuffInstance{
			BuffID:              buffID,
			CasterID:            casterID,
			TargetID:            targetID,
			RemainingDurationMs: def.ScaledDurationMs(1),
			Stacks:              1,
		})
		apply(target, def)
		ev = battle.BuffApplyEvent(targetID, buffID, 1)
	}
	s.Emit(ev)
	return []battle.Event{ev}
}

// TickAll advances every buff on every combatant by deltaMs, characters first
// and then demon lords, each in roster order.
//
// Postcondition: Every remaining instance has RemainingDurationMs > 0. Returns
// the emitted events in order (also appended to s.Events).
func (e *Engine) TickAll(s *battle.State, deltaMs int64) []battle.Event {
	var events []battle.Event
	for _, c := range s.Characters {
		events = append(events, e.tickCombatant(c, deltaMs)...)
	}
	for _, d := range s.DemonLords {
		events = append(events, e.tickCombatant(d, deltaMs)...)
	}
	s.Emit(events...)
	return events
}

// tickCombatant runs on_tick for each buff, then counts down its duration and
// removes it when expired. Buffs no longer in the catalog are dropped silently.
func (e *Engine) tickCombatant(c *battle.Combatant, deltaMs int64) []battle.Event {
	if len(c.Buffs) == 0 {
		return nil
	}
	var events []battle.Event
	kept := make([]battle.BuffInstance, 0, len(c.Buffs))
	for _, inst := range c.Buffs {
		def, ok := e.cat.Buff(inst.BuffID)
		if !ok {
			continue
		}
		events = append(events, tick(c, def, &inst, deltaMs)...)
		inst.RemainingDurationMs -= deltaMs
		if inst.RemainingDurationMs > 0 {
			kept = append(kept, inst)
			continue
		}
		remove(c, def, inst.Stacks)
		events = append(events, battle.BuffRemoveEvent(c.InstanceID, inst.BuffID))
	}
	c.Buffs = kept
	return events
}

// RemoveAll strips every buff from targetID, undoing stat changes and
// emitting a remove event per instance.
func (e *Engine) RemoveAll(s *battle.State, targetID int64) []battle.Event {
	target := s.Combatant(targetID)
	if target == nil || len(target.Buffs) == 0 {
		return nil
	}
	var events []battle.Event
	for _, inst := range target.Buffs {
		if def, ok := e.cat.Buff(inst.BuffID); ok {
			remove(target, def, inst.Stacks)
		}
		events = append(events, battle.BuffRemoveEvent(targetID, inst.BuffID))
	}
	target.Buffs = nil
	s.Emit(events...)
	return events
}
