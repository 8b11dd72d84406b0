package battle

// HitContext describes the hit a Modifier is adjusting. It is read-only.
type HitContext struct {
	Critical         bool
	SkillName        string
	SkillCoefficient int64
}

// Modifier adjusts damage in the final stage of the damage pipeline.
//
// Modifiers come from equipment, unique effects and scripts. They run in
// ascending Priority order; ties keep attacker-then-defender order.
type Modifier interface {
	Priority() int
	ModifyDamage(damage int64, attacker, defender *Combatant, hit HitContext) int64
}
