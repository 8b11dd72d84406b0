// Package equipment holds equipment effects that change stats when equipped
// and, for unique effects, take part in the damage pipeline.
package equipment

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
)

// UniquePriority is the modifier priority of every unique effect.
const UniquePriority = 100

// UniqueKind identifies a unique equipment effect.
type UniqueKind int

const (
	Berserker UniqueKind = iota
	Vampire
	Guardian
	Assassin
	Elemental
	Rapid
	Fortress
	Custom
)

var uniqueKindNames = []string{"berserker", "vampire", "guardian", "assassin", "elemental", "rapid", "fortress", "custom"}

func (k UniqueKind) String() string {
	if k >= 0 && int(k) < len(uniqueKindNames) {
		return uniqueKindNames[k]
	}
	return fmt.Sprintf("unique(%d)", int(k))
}

// UnmarshalYAML decodes a unique effect name.
func (k *UniqueKind) UnmarshalYAML(node *yaml.Node) error {
	for i, n := range uniqueKindNames {
		if n == node.Value {
			*k = UniqueKind(i)
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown unique effect %q", node.Line, node.Value)
}

// MarshalYAML encodes the unique effect name.
func (k UniqueKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// UniqueEffect is a special effect carried by high-grade equipment.
//
// Primary and Secondary are the level-1 values; Level is the equipment level.
type UniqueEffect struct {
	Kind      UniqueKind `yaml:"kind"`
	Primary   int64      `yaml:"primary"`
	Secondary int64      `yaml:"secondary"`
	Level     int        `yaml:"level"`
}

// Priority implements battle.Modifier.
func (u *UniqueEffect) Priority() int { return UniquePriority }

// ModifyDamage implements battle.Modifier.
//
// Berserker raises damage by primary/100 percent per missing HP percent once
// the attacker is at or below half HP, capped at +primary percent. Assassin
// raises critical hits by primary percent. Every other kind acts through stats
// only and returns damage unchanged.
func (u *UniqueEffect) ModifyDamage(damage int64, attacker, _ *battle.Combatant, hit battle.HitContext) int64 {
	switch u.Kind {
	case Berserker:
		maxHP := attacker.MaxHP()
		if maxHP <= 0 {
			return damage
		}
		hpPct := attacker.CurrentHP * 100 / maxHP
		if hpPct > 50 {
			return damage
		}
		bonus := min(100+(50-hpPct)*u.Primary/100, 100+u.Primary)
		return damage * bonus / 100
	case Assassin:
		if hit.Critical {
			return damage * (100 + u.Primary) / 100
		}
		return damage
	case Vampire, Guardian, Elemental, Rapid, Fortress, Custom:
	}
	return damage
}

// scaled grows v by 10% per equipment level above 1.
func (u *UniqueEffect) scaled(v int64) int64 {
	lvl := int64(max(u.Level, 1))
	return v * (100 + (lvl-1)*10) / 100
}

// Equip adds the effect's stat bonuses to s.
//
// Postcondition: Unequip with the same receiver restores s exactly, provided
// nothing else changed the stats the bonuses were computed from.
func (u *UniqueEffect) Equip(s stat.Stats) {
	u.shift(s, 1)
}

// Unequip removes the stat bonuses added by Equip.
func (u *UniqueEffect) Unequip(s stat.Stats) {
	u.shift(s, -1)
}

func (u *UniqueEffect) shift(s stat.Stats, sign int64) {
	p, q := sign*u.scaled(u.Primary), sign*u.scaled(u.Secondary)
	switch u.Kind {
	case Berserker:
		s.Add(stat.Attack, p)
	case Vampire:
		s.Add(stat.LifeSteal, p)
	case Guardian:
		s.Add(stat.MaxHP, s.Get(stat.Defense)*p/100)
	case Assassin:
		s.Add(stat.CritRate, p)
		s.Add(stat.CooldownReduction, q)
	case Elemental:
		for _, e := range []stat.Type{
			stat.FireDamageBonus, stat.WaterDamageBonus, stat.WindDamageBonus,
			stat.EarthDamageBonus, stat.LightDamageBonus, stat.DarkDamageBonus,
		} {
			s.Add(e, p)
		}
		s.Add(stat.PenetrationRate, q)
	case Rapid:
		s.Add(stat.AttackSpeed, p)
		s.Add(stat.DamageBonus, q)
	case Fortress:
		s.Add(stat.DamageReductionRate, p)
	case Custom:
	}
}
