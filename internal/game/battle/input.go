package battle

import "github.com/cory-johannsen/battlecore/internal/game/catalog"

// ActionInput is a request, from a player or the AI, to act this tick.
//
// Skill is only consulted for ActionSkill.
type ActionInput struct {
	Type      ActionType
	ActorID   int64
	TargetIDs []int64
	Skill     *catalog.Skill
}

// NewAttackInput requests a basic attack by actor against target.
func NewAttackInput(actor, target int64) ActionInput {
	return ActionInput{Type: ActionAttack, ActorID: actor, TargetIDs: []int64{target}}
}

// NewSkillInput requests actor use skill on target.
func NewSkillInput(actor, target int64, skill *catalog.Skill) ActionInput {
	return ActionInput{Type: ActionSkill, ActorID: actor, TargetIDs: []int64{target}, Skill: skill}
}
