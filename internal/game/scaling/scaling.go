// Package scaling evaluates level-scaling curves in integer arithmetic.
//
// A Curve yields the amount added to a base value at a given level. Level 1
// is the reference point and always yields 0 for every curve except Step.
package scaling

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type selects the scaling formula.
type Type int

const (
	None Type = iota
	Linear
	Exponential
	Logarithmic
	Step
	Custom
)

var typeNames = []string{"none", "linear", "exponential", "logarithmic", "step", "custom"}

// String returns the lower-case curve name.
func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("scaling(%d)", int(t))
}

// UnmarshalYAML decodes a curve name. An empty value decodes as None.
func (t *Type) UnmarshalYAML(node *yaml.Node) error {
	if node.Value == "" {
		*t = None
		return nil
	}
	for i, n := range typeNames {
		if n == node.Value {
			*t = Type(i)
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown scaling type %q", node.Line, node.Value)
}

// MarshalYAML encodes the curve name.
func (t Type) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

const (
	// DefaultExponentialBase is 1.1 scaled by 100.
	DefaultExponentialBase = 110
	// DefaultLogarithmicBase is 2.0 scaled by 100.
	DefaultLogarithmicBase = 200
)

// Curve describes one scaling formula and its parameters.
//
// Base and Multipliers are scaled by 100.
type Curve struct {
	Type        Type    `yaml:"type"`
	PerLevel    int64   `yaml:"per_level"`
	Base        int64   `yaml:"base,omitempty"`
	StepLevels  []int   `yaml:"step_levels,omitempty"`
	StepValues  []int64 `yaml:"step_values,omitempty"`
	Multipliers []int64 `yaml:"multipliers,omitempty"`
}

// At returns the scaling amount for level out of maxLevel.
//
// Precondition: c passed Validate.
// Postcondition: Returns 0 for None and for level <= 1 on Linear, Exponential,
// Logarithmic and Custom curves.
func (c Curve) At(level, maxLevel int) int64 {
	diff := int64(level - 1)
	switch c.Type {
	case Linear:
		return c.PerLevel * diff
	case Exponential:
		if diff <= 0 {
			return 0
		}
		base := c.baseOr(DefaultExponentialBase)
		acc := int64(10000)
		for i := int64(0); i < diff; i++ {
			acc = acc * base / 100
		}
		return c.PerLevel * (acc - 10000) / 10000
	case Logarithmic:
		if diff <= 0 {
			return 0
		}
		return c.PerLevel * log100(100*(1+diff), c.baseOr(DefaultLogarithmicBase)) / 100
	case Step:
		var total int64
		for i := 0; i < len(c.StepLevels) && i < len(c.StepValues); i++ {
			if level >= c.StepLevels[i] {
				total += c.StepValues[i]
			}
		}
		return total
	case Custom:
		if len(c.Multipliers) == 0 || level <= 1 {
			return 0
		}
		idx := min(max(level-1, 0), len(c.Multipliers)-1)
		return c.PerLevel * (c.Multipliers[idx] - 100) / 100
	default:
		return 0
	}
}

func (c Curve) baseOr(def int64) int64 {
	if c.Base == 0 {
		return def
	}
	return c.Base
}

// log100 returns log_base(x) scaled by 100, where x and base are both scaled
// by 100. The integer part is exact; the fraction is interpolated linearly
// between successive powers of base.
//
// Precondition: x >= 100; base > 100.
func log100(x, base int64) int64 {
	if base <= 100 {
		return 0
	}
	var k int64
	p := int64(100)
	for {
		next := p * base / 100
		if next <= p {
			return k * 100
		}
		if next > x {
			return k*100 + (x-p)*100/(next-p)
		}
		p = next
		k++
	}
}

// Validate checks the parameters required by the selected formula.
//
// Postcondition: Returns nil if At is well defined for c, or an error listing every violation.
func (c Curve) Validate() error {
	var errs []string
	switch c.Type {
	case None, Linear:
	case Exponential:
		if c.Base != 0 && c.Base <= 100 {
			errs = append(errs, fmt.Sprintf("exponential base must exceed 100, got %d", c.Base))
		}
	case Logarithmic:
		if c.Base != 0 && c.Base <= 110 {
			errs = append(errs, fmt.Sprintf("logarithmic base must exceed 110, got %d", c.Base))
		}
	case Step:
		if len(c.StepLevels) != len(c.StepValues) {
			errs = append(errs, "step_levels and step_values must have equal length")
		}
		for i := 1; i < len(c.StepLevels); i++ {
			if c.StepLevels[i] <= c.StepLevels[i-1] {
				errs = append(errs, "step_levels must be strictly ascending")
				break
			}
		}
	case Custom:
		if len(c.Multipliers) == 0 {
			errs = append(errs, "custom scaling requires multipliers")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown scaling type %d", int(c.Type)))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
