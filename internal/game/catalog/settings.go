package catalog

import (
	"fmt"
	"strings"
)

// Settings holds the tunable damage-pipeline constants.
//
// Rates are scaled by 100 except MaxCritChance, which is scaled by 10000.
type Settings struct {
	MinimumDamage          int64
	MaxCritChance          int64
	DefaultCritMultiplier  int64
	MaxCritMultiplier      int64
	MaxProtectionRate      int64
	MaxDamageReductionRate int64
	DefaultAttackSpeed     int64
}

// DefaultSettings returns the stock constants.
//
// Postcondition: The result passes Validate.
func DefaultSettings() *Settings {
	return &Settings{
		MinimumDamage:          1,
		MaxCritChance:          10000,
		DefaultCritMultiplier:  150,
		MaxCritMultiplier:      300,
		MaxProtectionRate:      90,
		MaxDamageReductionRate: 80,
		DefaultAttackSpeed:     100,
	}
}

// Validate checks every constant is in range.
//
// Postcondition: Returns nil if s is usable, or an error describing all violations.
func (s *Settings) Validate() error {
	var errs []string
	if s.MinimumDamage < 1 {
		errs = append(errs, fmt.Sprintf("minimum_damage must be >= 1, got %d", s.MinimumDamage))
	}
	if s.MaxCritChance < 0 || s.MaxCritChance > 10000 {
		errs = append(errs, fmt.Sprintf("max_crit_chance must be 0-10000, got %d", s.MaxCritChance))
	}
	if s.DefaultCritMultiplier < 100 {
		errs = append(errs, fmt.Sprintf("default_crit_multiplier must be >= 100, got %d", s.DefaultCritMultiplier))
	}
	if s.MaxCritMultiplier < s.DefaultCritMultiplier {
		errs = append(errs, "max_crit_multiplier must not be below default_crit_multiplier")
	}
	if s.MaxProtectionRate < 0 || s.MaxProtectionRate > 100 {
		errs = append(errs, fmt.Sprintf("max_protection_rate must be 0-100, got %d", s.MaxProtectionRate))
	}
	if s.MaxDamageReductionRate < 0 || s.MaxDamageReductionRate > 100 {
		errs = append(errs, fmt.Sprintf("max_damage_reduction_rate must be 0-100, got %d", s.MaxDamageReductionRate))
	}
	if s.DefaultAttackSpeed < 1 {
		errs = append(errs, fmt.Sprintf("default_attack_speed must be >= 1, got %d", s.DefaultAttackSpeed))
	}
	if len(errs) > 0 {
		return fmt.Errorf("damage settings invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}
