package damage

import (
	"errors"
	"fmt"
	"slices"

	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/catalog"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
)

// CritRollBound is the exclusive upper bound of the critical roll.
const CritRollBound = 10000

// Context is the scratch state shared by the steps of one calculation.
type Context struct {
	Attacker     *battle.Combatant
	Defender     *battle.Combatant
	Skill        *catalog.Skill
	Damage       int64
	FinalDefense int64
	Critical     bool
	CritRoll     int
}

// Calculator runs a fixed list of steps. It owns no RNG; it draws from the
// Source it was built with, which is the rules engine's single stream.
type Calculator struct {
	steps    []Step
	settings *catalog.Settings
	affinity catalog.AffinityTable
	src      dice.Source
}

// NewCalculator builds a Calculator. An empty steps list selects DefaultSteps.
//
// Precondition: settings and src must be non-nil.
// Postcondition: Returns a ready Calculator or an error for nil inputs or an
// unknown step.
func NewCalculator(settings *catalog.Settings, affinity catalog.AffinityTable, src dice.Source, steps ...Step) (*Calculator, error) {
	if settings == nil {
		return nil, errors.New("damage: settings must not be nil")
	}
	if src == nil {
		return nil, errors.New("damage: random source must not be nil")
	}
	if len(steps) == 0 {
		steps = DefaultSteps()
	}
	for _, s := range steps {
		if s < StepBase || s > StepModifier {
			return nil, fmt.Errorf("damage: unknown step %d", int(s))
		}
	}
	return &Calculator{
		steps:    slices.Clone(steps),
		settings: settings,
		affinity: affinity,
		src:      src,
	}, nil
}

// Calculate returns the damage one hit of skill deals from attacker to defender.
//
// Precondition: attacker and defender must be non-nil.
// Postcondition: Returns >= settings.MinimumDamage. A nil skill returns
// settings.MinimumDamage without drawing from the RNG.
func (c *Calculator) Calculate(attacker, defender *battle.Combatant, skill *catalog.Skill) int64 {
	return c.CalculateDetailed(attacker, defender, skill).Damage
}

// CalculateDetailed is Calculate but returns the final scratch context.
//
// Postcondition: ctx.Damage >= settings.MinimumDamage.
func (c *Calculator) CalculateDetailed(attacker, defender *battle.Combatant, skill *catalog.Skill) Context {
	ctx := Context{Attacker: attacker, Defender: defender, Skill: skill}
	if skill == nil {
		ctx.Damage = c.settings.MinimumDamage
		return ctx
	}
	for _, s := range c.steps {
		c.run(s, &ctx)
	}
	ctx.Damage = max(ctx.Damage, c.settings.MinimumDamage)
	return ctx
}

func (c *Calculator) run(s Step, ctx *Context) {
	atk := ctx.Attacker.Stats
	def := ctx.Defender.Stats
	switch s {
	case StepBase:
		ctx.Damage = atk.Get(stat.Attack) * ctx.Skill.Coefficient / 100

	case StepCritical:
		rate := min(atk.Get(stat.CritRate), c.settings.MaxCritChance)
		mult := min(atk.GetOr(stat.CritMultiplier, c.settings.DefaultCritMultiplier), c.settings.MaxCritMultiplier)
		ctx.CritRoll = c.src.Intn(CritRollBound)
		if int64(ctx.CritRoll) < rate {
			ctx.Damage = ctx.Damage * mult / 100
			ctx.Critical = true
		}

	case StepElementalBonus:
		if bonusStat, ok := ctx.Skill.Element.BonusStat(); ok {
			if bonus := atk.Get(bonusStat); bonus > 0 {
				ctx.Damage = ctx.Damage * (100 + bonus) / 100
			}
		}

	case StepFlatBonus:
		if bonus := atk.Get(stat.DamageBonus); bonus > 0 {
			ctx.Damage = ctx.Damage * (100 + bonus) / 100
		}

	case StepPenetration:
		reduced := def.Get(stat.Defense) * (100 - atk.Get(stat.PenetrationRate)) / 100
		ctx.FinalDefense = max(reduced-atk.Get(stat.Penetration), 0)

	case StepDefense:
		ctx.Damage -= ctx.FinalDefense

	case StepReduction:
		if pr := min(def.Get(stat.ProtectionRate), c.settings.MaxProtectionRate); pr > 0 {
			ctx.Damage = ctx.Damage * (100 - pr) / 100
		}
		if dr := min(def.Get(stat.DamageReductionRate), c.settings.MaxDamageReductionRate); dr > 0 {
			ctx.Damage = ctx.Damage * (100 - dr) / 100
		}
		ctx.Damage -= def.Get(stat.DamageReduction)

	case StepElementalAffinity:
		ctx.Damage = ctx.Damage * c.affinity.Multiplier(ctx.Attacker.Element, ctx.Defender.Element) / 100

	case StepModifier:
		mods := make([]battle.Modifier, 0, len(ctx.Attacker.Modifiers)+len(ctx.Defender.Modifiers))
		mods = append(mods, ctx.Attacker.Modifiers...)
		mods = append(mods, ctx.Defender.Modifiers...)
		if len(mods) == 0 {
			return
		}
		slices.SortStableFunc(mods, func(a, b battle.Modifier) int { return a.Priority() - b.Priority() })
		hit := battle.HitContext{
			Critical:         ctx.Critical,
			SkillName:        ctx.Skill.Name,
			SkillCoefficient: ctx.Skill.Coefficient,
		}
		for _, m := range mods {
			ctx.Damage = m.ModifyDamage(ctx.Damage, ctx.Attacker, ctx.Defender, hit)
		}
	}
}
