package stat

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Element is the elemental attribute of a combatant or a skill.
type Element int

const (
	Normal Element = iota
	Fire
	Water
	Wind
	Earth
	Light
	Dark
)

var elementNames = []string{"normal", "fire", "water", "wind", "earth", "light", "dark"}

// String returns the lower-case element name.
func (e Element) String() string {
	if e >= 0 && int(e) < len(elementNames) {
		return elementNames[e]
	}
	return fmt.Sprintf("element(%d)", int(e))
}

// BonusStat returns the attacker stat that boosts damage of element e.
//
// Postcondition: ok is false for Normal and for unknown elements.
func (e Element) BonusStat() (t Type, ok bool) {
	switch e {
	case Fire:
		return FireDamageBonus, true
	case Water:
		return WaterDamageBonus, true
	case Wind:
		return WindDamageBonus, true
	case Earth:
		return EarthDamageBonus, true
	case Light:
		return LightDamageBonus, true
	case Dark:
		return DarkDamageBonus, true
	default:
		return 0, false
	}
}

// UnmarshalYAML decodes an element name.
func (e *Element) UnmarshalYAML(node *yaml.Node) error {
	for i, n := range elementNames {
		if n == node.Value {
			*e = Element(i)
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown element %q", node.Line, node.Value)
}

// MarshalYAML encodes the element name.
func (e Element) MarshalYAML() (interface{}, error) {
	return e.String(), nil
}

// DefenseType classifies how a combatant mitigates damage.
type DefenseType int

const (
	DefenseNone DefenseType = iota
	DefensePhysical
	DefenseMagical
	DefenseMixed
)

var defenseNames = []string{"none", "physical", "magical", "mixed"}

// String returns the lower-case defense type name.
func (d DefenseType) String() string {
	if d >= 0 && int(d) < len(defenseNames) {
		return defenseNames[d]
	}
	return fmt.Sprintf("defense(%d)", int(d))
}

// UnmarshalYAML decodes a defense type name.
func (d *DefenseType) UnmarshalYAML(node *yaml.Node) error {
	for i, n := range defenseNames {
		if n == node.Value {
			*d = DefenseType(i)
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown defense type %q", node.Line, node.Value)
}

// MarshalYAML encodes the defense type name.
func (d DefenseType) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Grade is a combatant rarity tier.
type Grade int

const (
	GradeC Grade = iota
	GradeUC
	GradeR
	GradeSR
	GradeUR
)

var gradeNames = []string{"C", "UC", "R", "SR", "UR"}

// String returns the grade label.
func (g Grade) String() string {
	if g >= 0 && int(g) < len(gradeNames) {
		return gradeNames[g]
	}
	return fmt.Sprintf("grade(%d)", int(g))
}

// UnmarshalYAML decodes a grade label.
func (g *Grade) UnmarshalYAML(node *yaml.Node) error {
	for i, n := range gradeNames {
		if n == node.Value {
			*g = Grade(i)
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown grade %q", node.Line, node.Value)
}

// MarshalYAML encodes the grade label.
func (g Grade) MarshalYAML() (interface{}, error) {
	return g.String(), nil
}
