package battle

// State is one consistent snapshot of a battle.
//
// Characters and DemonLords keep roster order; every iteration over them is
// in that order. Events holds only the events produced by the tick that
// created this snapshot.
type State struct {
	Characters []*Combatant
	DemonLords []*Combatant
	Status     Status
	ElapsedMs  int64
	Turn       int64
	Events     []Event
}

// NewState builds a preparing battle from the given rosters.
//
// Postcondition: Status == StatusPreparing; the records are owned by the state.
func NewState(characters, demonLords []*Combatant) *State {
	return &State{
		Characters: characters,
		DemonLords: demonLords,
		Status:     StatusPreparing,
	}
}

// Clone returns a deep copy of s.
//
// Postcondition: No mutation of the clone is visible through s.
func (s *State) Clone() *State {
	cp := &State{
		Characters: make([]*Combatant, len(s.Characters)),
		DemonLords: make([]*Combatant, len(s.DemonLords)),
		Status:     s.Status,
		ElapsedMs:  s.ElapsedMs,
		Turn:       s.Turn,
		Events:     append([]Event(nil), s.Events...),
	}
	for i, c := range s.Characters {
		cp.Characters[i] = c.Clone()
	}
	for i, d := range s.DemonLords {
		cp.DemonLords[i] = d.Clone()
	}
	return cp
}

// Character returns the character with id, or nil.
func (s *State) Character(id int64) *Combatant {
	for _, c := range s.Characters {
		if c.InstanceID == id {
			return c
		}
	}
	return nil
}

// DemonLord returns the demon lord with id, or nil.
func (s *State) DemonLord(id int64) *Combatant {
	for _, d := range s.DemonLords {
		if d.InstanceID == id {
			return d
		}
	}
	return nil
}

// Combatant returns the character or demon lord with id, or nil.
func (s *State) Combatant(id int64) *Combatant {
	if c := s.Character(id); c != nil {
		return c
	}
	return s.DemonLord(id)
}

// Emit appends events to the pending event buffer.
func (s *State) Emit(events ...Event) {
	s.Events = append(s.Events, events...)
}

// LivingCharacters returns the living characters on the given side, in roster order.
func (s *State) LivingCharacters(player bool) []*Combatant {
	var out []*Combatant
	for _, c := range s.Characters {
		if c.Player == player && c.IsAlive() {
			out = append(out, c)
		}
	}
	return out
}

// LivingDemonLords returns the living demon lords on the given side, in roster order.
func (s *State) LivingDemonLords(player bool) []*Combatant {
	var out []*Combatant
	for _, d := range s.DemonLords {
		if d.Player == player && d.IsAlive() {
			out = append(out, d)
		}
	}
	return out
}
