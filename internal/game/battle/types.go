// Package battle defines the battle state snapshot and the records it holds.
//
// A *State handed to a caller is never mutated again. Code that needs a
// different state clones first and mutates the clone.
package battle

// Kind distinguishes ordinary characters from demon lords.
type Kind int

const (
	KindCharacter Kind = iota
	KindDemonLord
)

// String returns "character" or "demon_lord".
func (k Kind) String() string {
	if k == KindDemonLord {
		return "demon_lord"
	}
	return "character"
}

// Status is the lifecycle phase of a battle.
type Status int

const (
	StatusPreparing Status = 0
	StatusOngoing   Status = 1
	// StatusInProgress is a second name for StatusOngoing, not a separate phase.
	StatusInProgress Status = StatusOngoing
	StatusFinished   Status = 2
)

// String returns a lower-case status label.
func (s Status) String() string {
	switch s {
	case StatusPreparing:
		return "preparing"
	case StatusOngoing:
		return "ongoing"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Outcome is the verdict of the victory check.
type Outcome int

const (
	OutcomeOngoing Outcome = 100
	OutcomeVictory Outcome = 101
	OutcomeDefeat  Outcome = 102
)

// String returns a lower-case outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomeOngoing:
		return "ongoing"
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// ActionType identifies what an ActionInput requests.
type ActionType int

const (
	ActionAttack ActionType = 100
	ActionSkill  ActionType = 200
	ActionMove   ActionType = 300
	ActionGuard  ActionType = 400
)

// String returns a lower-case action label.
func (a ActionType) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionSkill:
		return "skill"
	case ActionMove:
		return "move"
	case ActionGuard:
		return "guard"
	default:
		return "unknown"
	}
}

// EventType identifies what a battle Event reports.
type EventType int

const (
	EventDamage EventType = iota
	EventHeal
	EventBuffApply
	EventBuffRemove
	EventDeath
)

// String returns a lower-case event label.
func (e EventType) String() string {
	switch e {
	case EventDamage:
		return "damage"
	case EventHeal:
		return "heal"
	case EventBuffApply:
		return "buff_apply"
	case EventBuffRemove:
		return "buff_remove"
	case EventDeath:
		return "death"
	default:
		return "unknown"
	}
}
