// Package victory decides whether a battle has ended.
package victory

import "github.com/cory-johannsen/battlecore/internal/game/battle"

// Check returns the outcome of s from the player's side.
//
// A player demon lord at zero HP is defeat. Without a player demon lord, no
// living player character is defeat. No living enemy character and no living
// enemy demon lord is victory. Anything else is ongoing.
func Check(s *battle.State) battle.Outcome {
	hasPlayerLord := false
	for _, d := range s.DemonLords {
		if !d.Player {
			continue
		}
		hasPlayerLord = true
		if !d.IsAlive() {
			return battle.OutcomeDefeat
		}
	}
	if !hasPlayerLord && len(s.LivingCharacters(true)) == 0 {
		return battle.OutcomeDefeat
	}
	if len(s.LivingCharacters(false)) == 0 && len(s.LivingDemonLords(false)) == 0 {
		return battle.OutcomeVictory
	}
	return battle.OutcomeOngoing
}
