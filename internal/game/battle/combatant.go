package battle

import (
	"maps"
	"slices"

	"github.com/cory-johannsen/battlecore/internal/game/catalog"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
)

// BuffInstance is one buff currently applied to a combatant.
//
// Invariant: 1 <= Stacks <= the buff's MaxStacks.
type BuffInstance struct {
	BuffID              int64
	CasterID            int64
	TargetID            int64
	RemainingDurationMs int64
	Stacks              int
	// TickElapsedMs carries time toward the next periodic tick of a
	// damage-over-time effect.
	TickElapsedMs int64
}

// Combatant is one unit in a battle: a character or a demon lord.
//
// Demon lords leave BlueprintID, Element, Grade and Skills at their zero values.
//
// Invariant: 0 <= CurrentHP <= MaxHP(); AttackCooldownMs >= 0; every
// SkillCooldowns value is > 0.
type Combatant struct {
	InstanceID  int64
	BlueprintID int64
	Kind        Kind
	Name        string
	Player      bool
	Element     stat.Element
	DefenseType stat.DefenseType
	Grade       stat.Grade
	Level       int
	CurrentHP   int64
	Stats       stat.Stats

	Skills           []*catalog.Skill
	SkillLevels      map[int64]int
	SkillCooldowns   map[int64]int64
	AttackCooldownMs int64

	Buffs     []BuffInstance
	Modifiers []Modifier
}

// MaxHP returns the MaxHP stat.
func (c *Combatant) MaxHP() int64 {
	return c.Stats.Get(stat.MaxHP)
}

// IsAlive reports whether CurrentHP > 0.
func (c *Combatant) IsAlive() bool {
	return c.CurrentHP > 0
}

// ApplyDamage subtracts amount from CurrentHP, flooring at zero.
//
// Precondition: amount >= 0.
// Postcondition: CurrentHP >= 0. Returns true if this call brought HP to zero.
func (c *Combatant) ApplyDamage(amount int64) bool {
	wasAlive := c.CurrentHP > 0
	c.CurrentHP -= amount
	if c.CurrentHP < 0 {
		c.CurrentHP = 0
	}
	return wasAlive && c.CurrentHP == 0
}

// Heal adds amount to CurrentHP, capping at MaxHP.
//
// Precondition: amount >= 0.
// Postcondition: CurrentHP <= MaxHP(). Returns the HP actually restored.
func (c *Combatant) Heal(amount int64) int64 {
	before := c.CurrentHP
	c.CurrentHP = min(c.CurrentHP+amount, c.MaxHP())
	if c.CurrentHP < before {
		c.CurrentHP = before
	}
	return c.CurrentHP - before
}

// ClampHP restores the HP invariant after a MaxHP change.
//
// Postcondition: 0 <= CurrentHP <= max(MaxHP(), 0).
func (c *Combatant) ClampHP() {
	c.CurrentHP = max(min(c.CurrentHP, c.MaxHP()), 0)
}

// SkillLevel returns the level of skill id, defaulting to 1.
func (c *Combatant) SkillLevel(id int64) int {
	if lvl, ok := c.SkillLevels[id]; ok && lvl > 0 {
		return lvl
	}
	return 1
}

// SkillReady reports whether skill id has no cooldown pending.
func (c *Combatant) SkillReady(id int64) bool {
	return c.SkillCooldowns[id] <= 0
}

// SetSkillCooldown records a cooldown for skill id. Non-positive values clear it.
func (c *Combatant) SetSkillCooldown(id, ms int64) {
	if ms <= 0 {
		delete(c.SkillCooldowns, id)
		return
	}
	if c.SkillCooldowns == nil {
		c.SkillCooldowns = make(map[int64]int64)
	}
	c.SkillCooldowns[id] = ms
}

// TickCooldowns advances every cooldown by deltaMs.
//
// Postcondition: AttackCooldownMs >= 0 and no SkillCooldowns entry is <= 0.
func (c *Combatant) TickCooldowns(deltaMs int64) {
	c.AttackCooldownMs = max(c.AttackCooldownMs-deltaMs, 0)
	for id, ms := range c.SkillCooldowns {
		if ms-deltaMs <= 0 {
			delete(c.SkillCooldowns, id)
		} else {
			c.SkillCooldowns[id] = ms - deltaMs
		}
	}
}

// FindBuff returns the index of buffID in Buffs, or -1.
func (c *Combatant) FindBuff(buffID int64) int {
	return slices.IndexFunc(c.Buffs, func(b BuffInstance) bool { return b.BuffID == buffID })
}

// Clone returns a deep copy. Skill definitions and modifiers are shared
// because they are never mutated.
//
// Postcondition: Mutating the clone never affects c.
func (c *Combatant) Clone() *Combatant {
	cp := *c
	cp.Stats = c.Stats.Clone()
	cp.Skills = slices.Clone(c.Skills)
	cp.SkillLevels = maps.Clone(c.SkillLevels)
	cp.SkillCooldowns = maps.Clone(c.SkillCooldowns)
	if cp.SkillCooldowns == nil {
		cp.SkillCooldowns = make(map[int64]int64)
	}
	cp.Buffs = slices.Clone(c.Buffs)
	cp.Modifiers = slices.Clone(c.Modifiers)
	return &cp
}
