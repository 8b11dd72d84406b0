// Package catalog holds the read-only battle content: skill definitions, buff
// definitions, the elemental affinity table and the damage constants.
//
// A Catalog is built once before a battle and shared by reference with the
// rules engine and every effect. Nothing mutates it after loading.
package catalog

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog indexes skills and buffs by id.
type Catalog struct {
	skills      map[int64]*Skill
	buffs       map[int64]*Buff
	affinity    AffinityTable
	basicAttack *Skill
}

// New returns an empty Catalog whose basic attack is DefaultBasicAttack.
func New() *Catalog {
	return &Catalog{
		skills:      make(map[int64]*Skill),
		buffs:       make(map[int64]*Buff),
		affinity:    NewAffinityTable(nil),
		basicAttack: DefaultBasicAttack(),
	}
}

// RegisterSkill adds s, filling unset fields with defaults. A skill with
// BasicAttackID replaces the built-in basic attack.
//
// Precondition: s must be non-nil.
// Postcondition: Skill(s.ID) returns s, or an error is returned for a duplicate id
// or an invalid cooldown curve.
func (c *Catalog) RegisterSkill(s *Skill) error {
	if s.ID == BasicAttackID {
		s.applyDefaults()
		c.basicAttack = s
		return nil
	}
	if _, dup := c.skills[s.ID]; dup {
		return fmt.Errorf("duplicate skill id %d", s.ID)
	}
	if err := s.CooldownScaling.Validate(); err != nil {
		return fmt.Errorf("skill %d cooldown_scaling: %w", s.ID, err)
	}
	s.applyDefaults()
	c.skills[s.ID] = s
	return nil
}

// RegisterBuff adds b, filling unset fields with defaults.
//
// Precondition: b must be non-nil.
// Postcondition: Buff(b.ID) returns b, or an error is returned for a duplicate or
// non-positive id or an invalid curve.
func (c *Catalog) RegisterBuff(b *Buff) error {
	if b.ID <= 0 {
		return fmt.Errorf("buff id must be positive, got %d", b.ID)
	}
	if _, dup := c.buffs[b.ID]; dup {
		return fmt.Errorf("duplicate buff id %d", b.ID)
	}
	if err := errors.Join(b.DurationScaling.Validate(), b.ValueScaling.Validate()); err != nil {
		return fmt.Errorf("buff %d scaling: %w", b.ID, err)
	}
	b.applyDefaults()
	c.buffs[b.ID] = b
	return nil
}

// SetAffinity replaces the elemental affinity table.
func (c *Catalog) SetAffinity(t AffinityTable) {
	c.affinity = t
}

// SetBasicAttack replaces the basic attack skill. nil disables it, which makes
// every basic attack deal the fixed fallback damage.
func (c *Catalog) SetBasicAttack(s *Skill) {
	if s != nil {
		s.applyDefaults()
	}
	c.basicAttack = s
}

// Skill returns the skill with id, if registered.
func (c *Catalog) Skill(id int64) (*Skill, bool) {
	s, ok := c.skills[id]
	return s, ok
}

// Buff returns the buff with id, if registered.
func (c *Catalog) Buff(id int64) (*Buff, bool) {
	b, ok := c.buffs[id]
	return b, ok
}

// Affinity returns the elemental affinity table.
func (c *Catalog) Affinity() AffinityTable {
	return c.affinity
}

// BasicAttack returns the basic attack skill, or nil when none is configured.
func (c *Catalog) BasicAttack() *Skill {
	return c.basicAttack
}

// Skills returns all registered skills ordered by id.
func (c *Catalog) Skills() []*Skill {
	out := make([]*Skill, 0, len(c.skills))
	for _, s := range c.skills {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *Skill) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Buffs returns all registered buffs ordered by id.
func (c *Catalog) Buffs() []*Buff {
	out := make([]*Buff, 0, len(c.buffs))
	for _, b := range c.buffs {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b *Buff) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// LoadDirectory reads a content tree:
//
//	<dir>/skills/*.yaml   one or more skill documents per file
//	<dir>/buffs/*.yaml    one or more buff documents per file
//	<dir>/affinity.yaml   optional list of affinity rows
//
// Unknown YAML fields are rejected.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a populated Catalog or a non-nil error naming the offending file.
func LoadDirectory(dir string) (*Catalog, error) {
	c := New()

	err := eachDocument(filepath.Join(dir, "skills"), func(dec *yaml.Decoder) error {
		var s Skill
		if err := dec.Decode(&s); err != nil {
			return err
		}
		return c.RegisterSkill(&s)
	})
	if err != nil {
		return nil, err
	}

	err = eachDocument(filepath.Join(dir, "buffs"), func(dec *yaml.Decoder) error {
		var b Buff
		if err := dec.Decode(&b); err != nil {
			return err
		}
		return c.RegisterBuff(&b)
	})
	if err != nil {
		return nil, err
	}

	affPath := filepath.Join(dir, "affinity.yaml")
	data, err := os.ReadFile(affPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading %q: %w", affPath, err)
	default:
		var rows []AffinityEntry
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&rows); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing %q: %w", affPath, err)
		}
		c.SetAffinity(NewAffinityTable(rows))
	}

	return c, nil
}

// eachDocument calls decode once per YAML document in every *.yaml file of dir,
// visiting files in lexicographic order. A missing dir is treated as empty.
func eachDocument(dir string, decode func(dec *yaml.Decoder) error) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading content dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		for {
			err := decode(dec)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return fmt.Errorf("loading %q: %w", path, err)
			}
		}
	}
	return nil
}
