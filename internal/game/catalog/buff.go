package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlecore/internal/game/scaling"
	"github.com/cory-johannsen/battlecore/internal/game/stat"
)

// BuffKind selects the effect implementation a buff uses.
type BuffKind int

const (
	// BuffNoop has no effect on apply, tick, reapply or remove.
	BuffNoop BuffKind = iota
	// BuffStatChange adds a stack-scaled amount to one stat while active.
	BuffStatChange
	// BuffDamageOverTime deals a stack-scaled amount of damage every tick.
	BuffDamageOverTime
)

var buffKindNames = []string{"noop", "stat_change", "damage_over_time"}

// String returns the content-file name of the kind.
func (k BuffKind) String() string {
	if k >= 0 && int(k) < len(buffKindNames) {
		return buffKindNames[k]
	}
	return fmt.Sprintf("buff_kind(%d)", int(k))
}

// UnmarshalYAML decodes a buff kind name.
func (k *BuffKind) UnmarshalYAML(node *yaml.Node) error {
	for i, n := range buffKindNames {
		if n == node.Value {
			*k = BuffKind(i)
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown buff kind %q", node.Line, node.Value)
}

// MarshalYAML encodes the buff kind name.
func (k BuffKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// DefaultTickIntervalMs is the period of a damage-over-time buff that does
// not set one.
const DefaultTickIntervalMs = 1000

// Buff is the static definition of a buff or debuff.
//
// Stack count doubles as the scaling level: a buff at 3 stacks uses
// ScaledValue(3) and ScaledDurationMs(3).
type Buff struct {
	ID              int64         `yaml:"id"`
	Name            string        `yaml:"name"`
	Kind            BuffKind      `yaml:"kind"`
	Debuff          bool          `yaml:"debuff"`
	MaxStacks       int           `yaml:"max_stacks"`
	BaseDurationMs  int64         `yaml:"duration_ms"`
	TargetStat      stat.Type     `yaml:"target_stat"`
	Value           int64         `yaml:"value"`
	TickIntervalMs  int64         `yaml:"tick_interval_ms"`
	DurationScaling scaling.Curve `yaml:"duration_scaling"`
	ValueScaling    scaling.Curve `yaml:"value_scaling"`
}

// ScaledValue returns the total effect amount at the given stack level.
func (b *Buff) ScaledValue(level int) int64 {
	return b.Value + b.ValueScaling.At(level, b.MaxStacks)
}

// ScaledDurationMs returns the duration granted at the given stack level.
func (b *Buff) ScaledDurationMs(level int) int64 {
	return b.BaseDurationMs + b.DurationScaling.At(level, b.MaxStacks)
}

func (b *Buff) applyDefaults() {
	if b.MaxStacks < 1 {
		b.MaxStacks = 1
	}
	if b.TickIntervalMs <= 0 {
		b.TickIntervalMs = DefaultTickIntervalMs
	}
}
