package battle

import "fmt"

// Event is one observable occurrence produced during a tick.
//
// Value is the damage or heal amount for damage and heal events and the buff
// id for buff events. Stacks is set on buff-applied events only.
type Event struct {
	Type     EventType `yaml:"type" json:"type"`
	TargetID int64     `yaml:"target" json:"target"`
	Value    int64     `yaml:"value,omitempty" json:"value,omitempty"`
	Stacks   int       `yaml:"stacks,omitempty" json:"stacks,omitempty"`
}

// DamageEvent reports amount damage dealt to target.
func DamageEvent(target, amount int64) Event {
	return Event{Type: EventDamage, TargetID: target, Value: amount}
}

// HealEvent reports amount HP restored to target.
func HealEvent(target, amount int64) Event {
	return Event{Type: EventHeal, TargetID: target, Value: amount}
}

// DeathEvent reports that target reached zero HP.
func DeathEvent(target int64) Event {
	return Event{Type: EventDeath, TargetID: target}
}

// BuffApplyEvent reports buffID applied to target, now at stacks.
func BuffApplyEvent(target, buffID int64, stacks int) Event {
	return Event{Type: EventBuffApply, TargetID: target, Value: buffID, Stacks: stacks}
}

// BuffRemoveEvent reports buffID expiring on target.
func BuffRemoveEvent(target, buffID int64) Event {
	return Event{Type: EventBuffRemove, TargetID: target, Value: buffID}
}

// String renders the event for logs.
func (e Event) String() string {
	switch e.Type {
	case EventBuffApply:
		return fmt.Sprintf("%s target=%d buff=%d stacks=%d", e.Type, e.TargetID, e.Value, e.Stacks)
	case EventBuffRemove:
		return fmt.Sprintf("%s target=%d buff=%d", e.Type, e.TargetID, e.Value)
	case EventDeath:
		return fmt.Sprintf("%s target=%d", e.Type, e.TargetID)
	default:
		return fmt.Sprintf("%s target=%d value=%d", e.Type, e.TargetID, e.Value)
	}
}
