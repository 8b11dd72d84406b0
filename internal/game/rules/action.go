package rules

import (
	"slices"

	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/catalog"
	"github.com/cory-johannsen/battlecore/internal/game/skill"
)

// Action is one command resolved during a tick.
//
// Execute never mutates s. It returns a new state and the events this action
// alone produced, or s itself and no events when it does nothing.
type Action interface {
	Type() battle.ActionType
	Execute(s *battle.State, e *Engine) (*battle.State, []battle.Event)
}

// AttackAction is a basic attack by ActorID on TargetID.
type AttackAction struct {
	ActorID  int64
	TargetID int64
}

// Type returns battle.ActionAttack.
func (AttackAction) Type() battle.ActionType { return battle.ActionAttack }

// Execute runs one hit of the actor's basic attack, or deals
// FallbackAttackDamage when none is configured, then sets the actor's attack
// cooldown.
//
// Postcondition: A missing or dead actor or target leaves s unchanged.
func (a AttackAction) Execute(s *battle.State, e *Engine) (*battle.State, []battle.Event) {
	if !bothAlive(s, a.ActorID, a.TargetID) {
		return s, nil
	}
	next := s.Clone()
	mark := len(next.Events)
	actor := next.Combatant(a.ActorID)
	target := next.Combatant(a.TargetID)

	amount := int64(FallbackAttackDamage)
	if sk := e.BasicAttack(actor); sk != nil {
		amount = e.Calculate(actor, target, sk)
	}
	died := target.ApplyDamage(amount)
	next.Emit(battle.DamageEvent(target.InstanceID, amount))
	if died {
		next.Emit(battle.DeathEvent(target.InstanceID))
	}
	actor.AttackCooldownMs = e.AttackCooldownMs(actor)
	return next, slices.Clone(next.Events[mark:])
}

// SkillAction is CasterID using Skill on TargetID.
type SkillAction struct {
	CasterID int64
	TargetID int64
	Skill    *catalog.Skill
}

// Type returns battle.ActionSkill.
func (SkillAction) Type() battle.ActionType { return battle.ActionSkill }

// Execute resolves every effect of the skill, scaled for the caster's level,
// then sets the caster's attack cooldown and the skill's own cooldown.
//
// Postcondition: A nil skill, a missing target, or a missing or dead caster
// leaves s unchanged. A dead target still puts the skill on cooldown.
func (a SkillAction) Execute(s *battle.State, e *Engine) (*battle.State, []battle.Event) {
	if a.Skill == nil {
		return s, nil
	}
	if c := s.Combatant(a.CasterID); c == nil || !c.IsAlive() || s.Combatant(a.TargetID) == nil {
		return s, nil
	}
	next := s.Clone()
	mark := len(next.Events)
	level := next.Combatant(a.CasterID).SkillLevel(a.Skill.ID)

	for _, eff := range a.Skill.ScaledEffects(level) {
		skill.Execute(next, e, a.CasterID, a.TargetID, a.Skill, eff)
	}

	caster := next.Combatant(a.CasterID)
	caster.AttackCooldownMs = e.AttackCooldownMs(caster)
	if cd := a.Skill.ScaledCooldownMs(level); cd > 0 {
		caster.SetSkillCooldown(a.Skill.ID, cd)
	}
	return next, slices.Clone(next.Events[mark:])
}

func bothAlive(s *battle.State, actorID, targetID int64) bool {
	actor := s.Combatant(actorID)
	target := s.Combatant(targetID)
	return actor != nil && target != nil && actor.IsAlive() && target.IsAlive()
}

// ActionsFromInputs turns inputs into actions, one per target id, preserving
// order. Move and guard inputs yield no action; a skill input without a skill
// becomes a basic attack.
func ActionsFromInputs(inputs []battle.ActionInput) []Action {
	var out []Action
	for _, in := range inputs {
		for _, target := range in.TargetIDs {
			switch in.Type {
			case battle.ActionAttack:
				out = append(out, AttackAction{ActorID: in.ActorID, TargetID: target})
			case battle.ActionSkill:
				if in.Skill == nil {
					out = append(out, AttackAction{ActorID: in.ActorID, TargetID: target})
				} else {
					out = append(out, SkillAction{CasterID: in.ActorID, TargetID: target, Skill: in.Skill})
				}
			case battle.ActionMove, battle.ActionGuard:
			}
		}
	}
	return out
}
