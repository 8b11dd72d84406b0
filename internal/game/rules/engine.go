// Package rules advances a battle one tick at a time.
//
// The engine owns the only random stream a battle uses. Every random decision
// (critical rolls, AI targeting) draws from it in a fixed order, so the same
// seed, roster and inputs always produce the same states and events.
package rules

import (
	"errors"
	"slices"

	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/buff"
	"github.com/cory-johannsen/battlecore/internal/game/catalog"
	"github.com/cory-johannsen/battlecore/internal/game/damage"
	"github.com/cory-johannsen/battlecore/internal/game/dice"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
)

// FallbackAttackDamage is dealt by a basic attack when no basic attack skill
// is configured.
const FallbackAttackDamage = 1

// Option customizes an Engine.
type Option func(*options)

type options struct {
	steps []damage.Step
}

// WithSteps overrides the damage pipeline step list.
func WithSteps(steps ...damage.Step) Option {
	return func(o *options) { o.steps = steps }
}

// Engine resolves ticks against one catalog, one settings object and one RNG.
type Engine struct {
	settings *catalog.Settings
	cat      *catalog.Catalog
	src      dice.Source
	calc     *damage.Calculator
	buffs    *buff.Engine
}

// New builds an Engine.
//
// Precondition: settings, cat and src must be non-nil.
// Postcondition: Returns a ready Engine, or an error when any input is nil or
// the damage pipeline cannot be built.
func New(settings *catalog.Settings, cat *catalog.Catalog, src dice.Source, opts ...Option) (*Engine, error) {
	if settings == nil {
		return nil, errors.New("rules: settings must not be nil")
	}
	if cat == nil {
		return nil, errors.New("rules: catalog must not be nil")
	}
	if src == nil {
		return nil, errors.New("rules: random source must not be nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	calc, err := damage.NewCalculator(settings, cat.Affinity(), src, o.steps...)
	if err != nil {
		return nil, err
	}
	return &Engine{
		settings: settings,
		cat:      cat,
		src:      src,
		calc:     calc,
		buffs:    buff.NewEngine(cat),
	}, nil
}

// Settings returns the damage settings the engine was built with.
func (e *Engine) Settings() *catalog.Settings { return e.settings }

// Catalog returns the content catalog the engine resolves ids against.
func (e *Engine) Catalog() *catalog.Catalog { return e.cat }

// Buffs returns the buff engine.
func (e *Engine) Buffs() *buff.Engine { return e.buffs }

// ProcessTick produces the snapshot that follows s after deltaMs.
//
// Order: clone, advance clock and turn, tick buffs (characters then demon
// lords), tick cooldowns, then execute actions in the order given, each
// against the result of the one before.
//
// Precondition: deltaMs >= 0.
// Postcondition: s is not modified. The returned state's Events equal the
// returned event slice, which holds only this tick's events in order.
func (e *Engine) ProcessTick(s *battle.State, actions []Action, deltaMs int64) (*battle.State, []battle.Event) {
	next := s.Clone()
	next.Events = nil
	next.Turn++
	next.ElapsedMs += deltaMs

	e.buffs.TickAll(next, deltaMs)
	for _, c := range next.Characters {
		c.TickCooldowns(deltaMs)
	}
	for _, d := range next.DemonLords {
		d.TickCooldowns(deltaMs)
	}

	for _, a := range actions {
		next, _ = a.Execute(next, e)
	}
	return next, slices.Clone(next.Events)
}

// RandomInt returns a uniform value in [lo, hi). It returns lo when the range
// is empty.
func (e *Engine) RandomInt(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + e.src.Intn(hi-lo)
}

// Calculate runs the damage pipeline for one hit.
func (e *Engine) Calculate(attacker, defender *battle.Combatant, sk *catalog.Skill) int64 {
	return e.calc.Calculate(attacker, defender, sk)
}

// ApplyBuff applies buffID through the buff engine.
func (e *Engine) ApplyBuff(s *battle.State, casterID, targetID, buffID int64) []battle.Event {
	return e.buffs.Apply(s, casterID, targetID, buffID)
}

// AttackCooldownMs returns the delay between two basic attacks of c:
// 1000 * 100 / attackSpeed, where attackSpeed 100 is one attack per second.
func (e *Engine) AttackCooldownMs(c *battle.Combatant) int64 {
	speed := c.Stats.GetOr(stat.AttackSpeed, e.settings.DefaultAttackSpeed)
	if speed <= 0 {
		speed = e.settings.DefaultAttackSpeed
	}
	if speed <= 0 {
		speed = 100
	}
	return 1000 * 100 / speed
}

// BasicAttack returns the basic attack c uses: its own skill with id
// catalog.BasicAttackID if it carries one, else the catalog's. nil means
// none is configured.
func (e *Engine) BasicAttack(c *battle.Combatant) *catalog.Skill {
	for _, sk := range c.Skills {
		if sk != nil && sk.ID == catalog.BasicAttackID {
			return sk
		}
	}
	return e.cat.BasicAttack()
}
