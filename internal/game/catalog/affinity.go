package catalog

import "github.com/cory-johannsen/battlecore/internal/game/stat"

// AffinityEntry is one row of the elemental affinity table as written in content.
type AffinityEntry struct {
	Attacker   stat.Element `yaml:"attacker"`
	Defender   stat.Element `yaml:"defender"`
	Multiplier int64        `yaml:"multiplier"`
}

type elementPair struct {
	atk stat.Element
	def stat.Element
}

// AffinityTable maps an attacker/defender element pair to a damage multiplier
// scaled by 100. Pairs absent from the table are neutral (100).
type AffinityTable struct {
	entries map[elementPair]int64
}

// NewAffinityTable builds a table from content rows. A later row for the
// same pair replaces an earlier one.
func NewAffinityTable(rows []AffinityEntry) AffinityTable {
	t := AffinityTable{entries: make(map[elementPair]int64, len(rows))}
	for _, r := range rows {
		t.entries[elementPair{r.Attacker, r.Defender}] = r.Multiplier
	}
	return t
}

// Multiplier returns the multiplier for atk hitting def.
//
// Postcondition: Returns 100 when the pair is not in the table.
func (t AffinityTable) Multiplier(atk, def stat.Element) int64 {
	if m, ok := t.entries[elementPair{atk, def}]; ok {
		return m
	}
	return 100
}

// Len returns the number of explicit entries.
func (t AffinityTable) Len() int {
	return len(t.entries)
}
