// Package roster turns a YAML roster file into the starting state of a battle.
package roster

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/catalog"
	"github.com/cory-johannsen/battlecore/internal/game/equipment"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
	"github.com/cory-johannsen/battlecore/internal/scripting"
)

// DefaultScriptPriority orders script modifiers after unique effects.
const DefaultScriptPriority = 200

// SkillRef names a catalog skill and the level the character knows it at.
type SkillRef struct {
	ID    int64 `yaml:"id"`
	Level int   `yaml:"level,omitempty"`
}

// ScriptRef binds a loaded Lua modifier script.
type ScriptRef struct {
	Name     string `yaml:"name"`
	Priority int    `yaml:"priority,omitempty"`
}

// Character is one resolved character stat block.
type Character struct {
	Name        string                   `yaml:"name"`
	Blueprint   int64                    `yaml:"blueprint,omitempty"`
	Element     stat.Element             `yaml:"element,omitempty"`
	DefenseType stat.DefenseType         `yaml:"defense_type,omitempty"`
	Grade       stat.Grade               `yaml:"grade,omitempty"`
	Level       int                      `yaml:"level,omitempty"`
	HP          int64                    `yaml:"hp,omitempty"`
	Stats       stat.Stats               `yaml:"stats"`
	Skills      []SkillRef               `yaml:"skills,omitempty"`
	Uniques     []equipment.UniqueEffect `yaml:"uniques,omitempty"`
	Scripts     []ScriptRef              `yaml:"scripts,omitempty"`
}

// DemonLord is one demon lord stat block with its permanent equipment.
type DemonLord struct {
	Name      string                   `yaml:"name"`
	Player    bool                     `yaml:"player"`
	Level     int                      `yaml:"level,omitempty"`
	HP        int64                    `yaml:"hp,omitempty"`
	Stats     stat.Stats               `yaml:"stats"`
	Modifiers []equipment.StatModifier `yaml:"modifiers,omitempty"`
	Scripts   []ScriptRef              `yaml:"scripts,omitempty"`
}

// File is the on-disk roster.
type File struct {
	Players    []Character `yaml:"players"`
	Enemies    []Character `yaml:"enemies"`
	DemonLords []DemonLord `yaml:"demon_lords,omitempty"`
}

// Parse decodes a roster document, rejecting unknown fields.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("roster: decoding: %w", err)
	}
	return &f, nil
}

// Load reads and parses the roster file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("roster: reading %q: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return f, nil
}

// Allocator issues battle instance ids. Ids start at 1 and are never reused.
//
// Allocator is safe for concurrent use.
type Allocator struct {
	last atomic.Int64
}

// Next returns a fresh id.
func (a *Allocator) Next() int64 {
	return a.last.Add(1)
}

// Builder resolves roster files against a catalog and a script manager.
type Builder struct {
	cat     *catalog.Catalog
	scripts *scripting.Manager
	logger  *zap.Logger
}

// NewBuilder creates a Builder. scripts may be nil when no roster entry
// references a script.
//
// Precondition: cat and logger must be non-nil.
func NewBuilder(cat *catalog.Catalog, scripts *scripting.Manager, logger *zap.Logger) *Builder {
	return &Builder{cat: cat, scripts: scripts, logger: logger}
}

// Fork returns a Builder bound to a fresh copy of b's scripts, so that script
// globals written during one battle never reach another. release closes the
// copied scripts and must be called once the battle is over.
//
// Postcondition: With no script manager, returns b itself and a no-op release.
func (b *Builder) Fork() (fork *Builder, release func(), err error) {
	if b.scripts == nil {
		return b, func() {}, nil
	}
	scripts, err := b.scripts.Fork()
	if err != nil {
		return nil, nil, fmt.Errorf("roster: %w", err)
	}
	return &Builder{cat: b.cat, scripts: scripts, logger: b.logger}, scripts.Close, nil
}

// Build creates a preparing battle from f. Characters are players then
// enemies, each in file order; ids come from a fresh Allocator, so building
// the same file twice yields identical states.
//
// Postcondition: Returns an error naming the first entry that references an
// unknown skill or script or has no positive max_hp.
func (b *Builder) Build(f *File) (*battle.State, error) {
	var alloc Allocator
	var chars []*battle.Combatant
	for _, side := range []struct {
		player  bool
		entries []Character
	}{{true, f.Players}, {false, f.Enemies}} {
		for i := range side.entries {
			c, err := b.character(&side.entries[i], side.player, alloc.Next())
			if err != nil {
				return nil, err
			}
			chars = append(chars, c)
		}
	}
	var lords []*battle.Combatant
	for i := range f.DemonLords {
		d, err := b.demonLord(&f.DemonLords[i], alloc.Next())
		if err != nil {
			return nil, err
		}
		lords = append(lords, d)
	}
	b.logger.Debug("roster built",
		zap.Int("characters", len(chars)),
		zap.Int("demon_lords", len(lords)),
	)
	return battle.NewState(chars, lords), nil
}

func (b *Builder) character(e *Character, player bool, id int64) (*battle.Combatant, error) {
	c := &battle.Combatant{
		InstanceID:     id,
		BlueprintID:    e.Blueprint,
		Kind:           battle.KindCharacter,
		Name:           e.Name,
		Player:         player,
		Element:        e.Element,
		DefenseType:    e.DefenseType,
		Grade:          e.Grade,
		Level:          e.Level,
		Stats:          e.Stats.Clone(),
		SkillLevels:    make(map[int64]int),
		SkillCooldowns: make(map[int64]int64),
	}
	for _, ref := range e.Skills {
		sk, err := b.skill(ref.ID)
		if err != nil {
			return nil, fmt.Errorf("roster: character %q: %w", e.Name, err)
		}
		c.Skills = append(c.Skills, sk)
		if ref.Level > 0 {
			if ref.Level > sk.MaxLevel {
				b.logger.Warn("roster: skill level above max, clamped",
					zap.String("character", e.Name),
					zap.Int64("skill", ref.ID),
					zap.Int("level", ref.Level),
					zap.Int("max_level", sk.MaxLevel),
				)
			}
			c.SkillLevels[ref.ID] = sk.ClampLevel(ref.Level)
		}
	}
	for i := range e.Uniques {
		u := e.Uniques[i]
		u.Equip(c.Stats)
		c.Modifiers = append(c.Modifiers, &u)
	}
	mods, err := b.scriptModifiers(e.Scripts)
	if err != nil {
		return nil, fmt.Errorf("roster: character %q: %w", e.Name, err)
	}
	c.Modifiers = append(c.Modifiers, mods...)
	if err := setHP(c, e.HP); err != nil {
		return nil, fmt.Errorf("roster: character %q: %w", e.Name, err)
	}
	return c, nil
}

func (b *Builder) demonLord(e *DemonLord, id int64) (*battle.Combatant, error) {
	d := &battle.Combatant{
		InstanceID:     id,
		Kind:           battle.KindDemonLord,
		Name:           e.Name,
		Player:         e.Player,
		Level:          e.Level,
		Stats:          e.Stats.Clone(),
		SkillCooldowns: make(map[int64]int64),
	}
	equipment.ApplyAll(d.Stats, e.Modifiers)
	mods, err := b.scriptModifiers(e.Scripts)
	if err != nil {
		return nil, fmt.Errorf("roster: demon lord %q: %w", e.Name, err)
	}
	d.Modifiers = mods
	if err := setHP(d, e.HP); err != nil {
		return nil, fmt.Errorf("roster: demon lord %q: %w", e.Name, err)
	}
	return d, nil
}

func (b *Builder) skill(id int64) (*catalog.Skill, error) {
	if id == catalog.BasicAttackID {
		if sk := b.cat.BasicAttack(); sk != nil {
			return sk, nil
		}
		return nil, errors.New("basic attack is disabled")
	}
	sk, ok := b.cat.Skill(id)
	if !ok {
		return nil, fmt.Errorf("unknown skill id %d", id)
	}
	return sk, nil
}

func (b *Builder) scriptModifiers(refs []ScriptRef) ([]battle.Modifier, error) {
	var out []battle.Modifier
	for _, ref := range refs {
		if b.scripts == nil || !b.scripts.Has(ref.Name) {
			return nil, fmt.Errorf("unknown script %q", ref.Name)
		}
		prio := ref.Priority
		if prio == 0 {
			prio = DefaultScriptPriority
		}
		out = append(out, scripting.NewModifier(b.scripts, ref.Name, prio))
	}
	return out, nil
}

// setHP starts c at hp, or at full health when hp is unset.
func setHP(c *battle.Combatant, hp int64) error {
	if c.MaxHP() <= 0 {
		return fmt.Errorf("max_hp must be positive, got %d", c.MaxHP())
	}
	c.CurrentHP = c.MaxHP()
	if hp > 0 {
		c.CurrentHP = min(hp, c.MaxHP())
	}
	return nil
}
