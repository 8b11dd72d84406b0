// Package ai chooses actions for computer-controlled characters.
package ai

import (
	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/catalog"
)

// RNG is the random stream targeting draws from. The rules engine satisfies it.
type RNG interface {
	RandomInt(lo, hi int) int
}

// Provider chooses action inputs for computer-controlled characters.
//
// By default it controls enemy characters only. ControlPlayers makes it drive
// player characters too, for headless simulation.
type Provider struct {
	ControlPlayers bool
}

// CollectInputs returns this tick's inputs for every controlled, living
// character, in roster order.
//
// A character uses its first skill that is off cooldown and skips its basic
// attack; otherwise it attacks when its attack cooldown has elapsed. Each
// decision draws one target from rng.
//
// Postcondition: s is not modified.
func (p Provider) CollectInputs(s *battle.State, rng RNG) []battle.ActionInput {
	var inputs []battle.ActionInput
	for _, c := range s.Characters {
		if (c.Player && !p.ControlPlayers) || !c.IsAlive() {
			continue
		}
		if sk := readySkill(c); sk != nil {
			if target := pickTarget(s, c, rng); target != nil {
				inputs = append(inputs, battle.NewSkillInput(c.InstanceID, target.InstanceID, sk))
				continue
			}
		}
		if c.AttackCooldownMs <= 0 {
			if target := pickTarget(s, c, rng); target != nil {
				inputs = append(inputs, battle.NewAttackInput(c.InstanceID, target.InstanceID))
			}
		}
	}
	return inputs
}

// readySkill returns c's first usable skill, ignoring the basic attack.
func readySkill(c *battle.Combatant) *catalog.Skill {
	for _, sk := range c.Skills {
		if sk == nil || sk.ID == catalog.BasicAttackID {
			continue
		}
		if sk.RequiredLevel > 0 && c.Level < sk.RequiredLevel {
			continue
		}
		if c.SkillReady(sk.ID) {
			return sk
		}
	}
	return nil
}

// pickTarget draws a uniform living opponent of c. Demon lords are only
// targeted once no opposing character is left standing.
func pickTarget(s *battle.State, c *battle.Combatant, rng RNG) *battle.Combatant {
	foes := s.LivingCharacters(!c.Player)
	if len(foes) == 0 {
		foes = s.LivingDemonLords(!c.Player)
	}
	if len(foes) == 0 {
		return nil
	}
	return foes[rng.RandomInt(0, len(foes))]
}
