// Package stat defines the combatant stat vocabulary and the fixed-point stat map.
//
// Every value is an integer. Percentages are scaled by 100 and high-precision
// rates (critical rate) by 10000.
package stat

import (
	"fmt"
	"maps"

	"gopkg.in/yaml.v3"
)

// Type identifies one stat in a combatant's stat map.
type Type int

const (
	Level      Type = 0
	Experience Type = 1

	MaxHP               Type = 100
	Defense             Type = 101
	ProtectionRate      Type = 102
	DamageReductionRate Type = 103
	DamageReduction     Type = 104
	EvasionRate         Type = 105
	HealBonus           Type = 106
	LifeOnKill          Type = 107

	Attack            Type = 200
	CritRate          Type = 201 // ×10000
	CritMultiplier    Type = 202 // ×100
	DamageBonus       Type = 203
	Penetration       Type = 204
	PenetrationRate   Type = 205
	LifeSteal         Type = 206
	AttackSpeed       Type = 207 // ×100 attacks per second
	CooldownReduction Type = 208

	FireDamageBonus  Type = 300
	WaterDamageBonus Type = 301
	WindDamageBonus  Type = 302
	EarthDamageBonus Type = 303
	LightDamageBonus Type = 304
	DarkDamageBonus  Type = 305
)

var typeNames = map[Type]string{
	Level:               "level",
	Experience:          "experience",
	MaxHP:               "max_hp",
	Defense:             "defense",
	ProtectionRate:      "protection_rate",
	DamageReductionRate: "damage_reduction_rate",
	DamageReduction:     "damage_reduction",
	EvasionRate:         "evasion_rate",
	HealBonus:           "heal_bonus",
	LifeOnKill:          "life_on_kill",
	Attack:              "attack",
	CritRate:            "crit_rate",
	CritMultiplier:      "crit_multiplier",
	DamageBonus:         "damage_bonus",
	Penetration:         "penetration",
	PenetrationRate:     "penetration_rate",
	LifeSteal:           "life_steal",
	AttackSpeed:         "attack_speed",
	CooldownReduction:   "cooldown_reduction",
	FireDamageBonus:     "fire_damage_bonus",
	WaterDamageBonus:    "water_damage_bonus",
	WindDamageBonus:     "wind_damage_bonus",
	EarthDamageBonus:    "earth_damage_bonus",
	LightDamageBonus:    "light_damage_bonus",
	DarkDamageBonus:     "dark_damage_bonus",
}

// String returns the snake_case name used in content files.
func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("stat(%d)", int(t))
}

// ParseType resolves a content-file stat name.
//
// Postcondition: Returns the matching Type or a non-nil error naming the unknown value.
func ParseType(s string) (Type, error) {
	for t, n := range typeNames {
		if n == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown stat %q", s)
}

// UnmarshalYAML decodes a stat name.
func (t *Type) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseType(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*t = parsed
	return nil
}

// MarshalYAML encodes the stat name.
func (t Type) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// Stats maps a stat to its fixed-point value. A missing entry reads as zero.
type Stats map[Type]int64

// Get returns the value for t, or 0 when absent.
func (s Stats) Get(t Type) int64 {
	return s[t]
}

// GetOr returns the value for t, or def when t is absent.
func (s Stats) GetOr(t Type, def int64) int64 {
	if v, ok := s[t]; ok {
		return v
	}
	return def
}

// Has reports whether t has an explicit entry.
func (s Stats) Has(t Type) bool {
	_, ok := s[t]
	return ok
}

// Add adds delta to the value for t, creating the entry if needed.
//
// Precondition: s must be non-nil.
func (s Stats) Add(t Type, delta int64) {
	s[t] += delta
}

// Clone returns an independent copy.
//
// Postcondition: Mutating the result never affects s.
func (s Stats) Clone() Stats {
	if s == nil {
		return Stats{}
	}
	return maps.Clone(s)
}
