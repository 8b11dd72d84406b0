package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlecore/internal/game/scaling"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
)

// EffectType identifies what one skill effect does.
type EffectType int

const (
	EffectDamage        EffectType = 100
	EffectHeal          EffectType = 101
	EffectBuff          EffectType = 102
	EffectAttackBuff    EffectType = 103
	EffectDefenseBuff   EffectType = 104
	EffectSpeedBuff     EffectType = 105
	EffectAttackDebuff  EffectType = 106
	EffectDefenseDebuff EffectType = 107
	EffectSpeedDebuff   EffectType = 108
	EffectStun          EffectType = 109
	EffectPoison        EffectType = 110
	EffectShield        EffectType = 111
	EffectSummon        EffectType = 112
	EffectTeleport      EffectType = 113
	EffectStatus        EffectType = 114
)

var effectTypeNames = map[EffectType]string{
	EffectDamage:        "damage",
	EffectHeal:          "heal",
	EffectBuff:          "buff",
	EffectAttackBuff:    "attack_buff",
	EffectDefenseBuff:   "defense_buff",
	EffectSpeedBuff:     "speed_buff",
	EffectAttackDebuff:  "attack_debuff",
	EffectDefenseDebuff: "defense_debuff",
	EffectSpeedDebuff:   "speed_debuff",
	EffectStun:          "stun",
	EffectPoison:        "poison",
	EffectShield:        "shield",
	EffectSummon:        "summon",
	EffectTeleport:      "teleport",
	EffectStatus:        "status_effect",
}

// String returns the content-file name of the effect type.
func (e EffectType) String() string {
	if n, ok := effectTypeNames[e]; ok {
		return n
	}
	return fmt.Sprintf("effect(%d)", int(e))
}

// UnmarshalYAML decodes an effect type by name. Unknown names are rejected at
// load time; unknown numeric values reaching the dispatcher are a no-op.
func (e *EffectType) UnmarshalYAML(node *yaml.Node) error {
	for t, n := range effectTypeNames {
		if n == node.Value {
			*e = t
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown effect type %q", node.Line, node.Value)
}

// MarshalYAML encodes the effect type name.
func (e EffectType) MarshalYAML() (interface{}, error) {
	return e.String(), nil
}

// Effect is one typed step of a skill.
//
// Values[0] is the fixed amount used by heal effects.
type Effect struct {
	Type   EffectType `yaml:"type"`
	Values []int64    `yaml:"values,omitempty"`
	BuffID int64      `yaml:"buff_id,omitempty"`
}

// Value returns Values[i], or def when the index is out of range.
func (e Effect) Value(i int, def int64) int64 {
	if i >= 0 && i < len(e.Values) {
		return e.Values[i]
	}
	return def
}

// MinCooldownMs is the floor applied to every scaled skill cooldown.
const MinCooldownMs = 100

// Skill is the static definition of a skill.
//
// Coefficient is scaled by 100 (120 = 1.2x attack).
type Skill struct {
	ID              int64         `yaml:"id"`
	Name            string        `yaml:"name"`
	Element         stat.Element  `yaml:"element"`
	Coefficient     int64         `yaml:"coefficient"`
	HitCount        int           `yaml:"hit_count"`
	CooldownMs      int64         `yaml:"cooldown_ms"`
	CooldownScaling scaling.Curve `yaml:"cooldown_scaling"`
	MaxLevel        int           `yaml:"max_level"`
	RequiredLevel   int           `yaml:"required_level"`
	Effects         []Effect      `yaml:"effects"`
}

// ClampLevel bounds level to [1, MaxLevel].
func (s *Skill) ClampLevel(level int) int {
	return min(max(level, 1), max(s.MaxLevel, 1))
}

// ScaledEffects returns the effect list with every value grown by 10% per
// level above 1.
//
// Postcondition: The result is a fresh slice; s.Effects is never modified.
func (s *Skill) ScaledEffects(level int) []Effect {
	level = s.ClampLevel(level)
	factor := int64(100 + (level-1)*10)
	out := make([]Effect, len(s.Effects))
	for i, e := range s.Effects {
		vals := make([]int64, len(e.Values))
		for j, v := range e.Values {
			vals[j] = v * factor / 100
		}
		out[i] = Effect{Type: e.Type, Values: vals, BuffID: e.BuffID}
	}
	return out
}

// ScaledCooldownMs returns the cooldown for level, never below MinCooldownMs.
func (s *Skill) ScaledCooldownMs(level int) int64 {
	level = s.ClampLevel(level)
	return max(s.CooldownMs+s.CooldownScaling.At(level, s.MaxLevel), MinCooldownMs)
}

func (s *Skill) applyDefaults() {
	if s.Coefficient == 0 {
		s.Coefficient = 100
	}
	if s.HitCount < 1 {
		s.HitCount = 1
	}
	if s.MaxLevel < 1 {
		s.MaxLevel = 10
	}
}

// BasicAttackID is the id of the built-in basic attack skill.
const BasicAttackID int64 = 0

// DefaultBasicAttack builds the built-in basic attack: a single normal-element
// hit at 1.0x attack with no effects and no cooldown of its own.
func DefaultBasicAttack() *Skill {
	return &Skill{
		ID:          BasicAttackID,
		Name:        "basic_attack",
		Element:     stat.Normal,
		Coefficient: 100,
		HitCount:    1,
		MaxLevel:    1,
	}
}
