package buff

import (
	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/catalog"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
)

// The four lifecycle hooks below switch over every catalog.BuffKind.
// BuffNoop and unknown kinds do nothing.

func apply(target *battle.Combatant, def *catalog.Buff) {
	switch def.Kind {
	case catalog.BuffStatChange:
		addStat(target, def.TargetStat, def.ScaledValue(1))
	case catalog.BuffDamageOverTime, catalog.BuffNoop:
	}
}

// reapply adds only the difference between the previous and the new stack level.
func reapply(target *battle.Combatant, def *catalog.Buff, stacks int) {
	switch def.Kind {
	case catalog.BuffStatChange:
		if stacks <= 1 {
			apply(target, def)
			return
		}
		addStat(target, def.TargetStat, def.ScaledValue(stacks)-def.ScaledValue(stacks-1))
	case catalog.BuffDamageOverTime, catalog.BuffNoop:
	}
}

// remove undoes the full effect accumulated at stacks.
func remove(target *battle.Combatant, def *catalog.Buff, stacks int) {
	switch def.Kind {
	case catalog.BuffStatChange:
		addStat(target, def.TargetStat, -def.ScaledValue(stacks))
	case catalog.BuffDamageOverTime, catalog.BuffNoop:
	}
}

func tick(target *battle.Combatant, def *catalog.Buff, inst *battle.BuffInstance, deltaMs int64) []battle.Event {
	switch def.Kind {
	case catalog.BuffDamageOverTime:
		var events []battle.Event
		inst.TickElapsedMs += deltaMs
		for inst.TickElapsedMs >= def.TickIntervalMs {
			inst.TickElapsedMs -= def.TickIntervalMs
			if !target.IsAlive() {
				continue
			}
			amount := max(def.ScaledValue(inst.Stacks), 0)
			died := target.ApplyDamage(amount)
			events = append(events, battle.DamageEvent(target.InstanceID, amount))
			if died {
				events = append(events, battle.DeathEvent(target.InstanceID))
			}
		}
		return events
	case catalog.BuffStatChange, catalog.BuffNoop:
	}
	return nil
}

func addStat(target *battle.Combatant, t stat.Type, delta int64) {
	if target.Stats == nil {
		target.Stats = stat.Stats{}
	}
	target.Stats.Add(t, delta)
	if t == stat.MaxHP {
		target.ClampHP()
	}
}
