package equipment

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlecore/internal/game/stat"
)

// ModifierKind selects how a StatModifier combines with the base stat.
type ModifierKind int

const (
	// Additive adds Value to the stat.
	Additive ModifierKind = iota
	// Multiplicative adds Value percent of the current stat.
	Multiplicative
)

func (k ModifierKind) String() string {
	switch k {
	case Additive:
		return "additive"
	case Multiplicative:
		return "multiplicative"
	}
	return fmt.Sprintf("modifier_kind(%d)", int(k))
}

// UnmarshalYAML decodes a modifier kind name. An empty value is Additive.
func (k *ModifierKind) UnmarshalYAML(node *yaml.Node) error {
	switch node.Value {
	case "", "additive":
		*k = Additive
	case "multiplicative":
		*k = Multiplicative
	default:
		return fmt.Errorf("line %d: unknown modifier kind %q", node.Line, node.Value)
	}
	return nil
}

// MarshalYAML encodes the modifier kind name.
func (k ModifierKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// StatModifier is a permanent demon lord equipment bonus to one stat.
type StatModifier struct {
	Stat  stat.Type    `yaml:"stat"`
	Kind  ModifierKind `yaml:"kind"`
	Value int64        `yaml:"value"`
}

// Apply adds the modifier to s.
//
// Precondition: s must be non-nil.
func (m StatModifier) Apply(s stat.Stats) {
	switch m.Kind {
	case Additive:
		s.Add(m.Stat, m.Value)
	case Multiplicative:
		s.Add(m.Stat, s.Get(m.Stat)*m.Value/100)
	}
}

// ApplyAll applies mods to s in order.
func ApplyAll(s stat.Stats, mods []StatModifier) {
	for _, m := range mods {
		m.Apply(s)
	}
}
