// Package damage implements the ordered damage calculation pipeline.
package damage

// Step is one stage of the pipeline. The set of steps is closed; a
// Calculator runs them through an exhaustive switch.
type Step int

const (
	StepBase Step = iota
	StepCritical
	StepElementalBonus
	StepFlatBonus
	StepPenetration
	StepDefense
	StepReduction
	StepElementalAffinity
	StepModifier
)

var stepNames = []string{
	"base", "critical", "elemental_bonus", "flat_bonus", "penetration",
	"defense", "reduction", "elemental_affinity", "modifier",
}

// String returns the step name.
func (s Step) String() string {
	if s >= 0 && int(s) < len(stepNames) {
		return stepNames[s]
	}
	return "unknown"
}

// DefaultSteps returns the standard pipeline order.
//
// Postcondition: The result is a fresh slice in base, critical, elemental
// bonus, flat bonus, penetration, defense, reduction, elemental affinity,
// modifier order.
func DefaultSteps() []Step {
	return []Step{
		StepBase,
		StepCritical,
		StepElementalBonus,
		StepFlatBonus,
		StepPenetration,
		StepDefense,
		StepReduction,
		StepElementalAffinity,
		StepModifier,
	}
}
