package replay

import (
	"encoding/binary"
	"fmt"
	"maps"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/cory-johannsen/battlecore/internal/game/battle"
)

// Digest is a running xxhash of a battle's event stream and of the state
// after each tick. Two runs with equal digests produced the same events in
// the same ticks and passed through the same states.
type Digest struct {
	h   *xxhash.Digest
	buf [8]byte
}

// NewDigest returns an empty Digest.
func NewDigest() *Digest {
	return &Digest{h: xxhash.New()}
}

// Add folds one tick's events into the digest.
func (d *Digest) Add(turn int64, events []battle.Event) {
	d.put(uint64(turn))
	d.put(uint64(len(events)))
	for _, ev := range events {
		d.put(uint64(ev.Type))
		d.put(uint64(ev.TargetID))
		d.put(uint64(ev.Value))
		d.put(uint64(ev.Stacks))
	}
}

// AddState folds the parts of s that drive later ticks into the digest: the
// clock, then every combatant's hp, stats, cooldowns and buffs in roster
// order.
func (d *Digest) AddState(s *battle.State) {
	d.put(uint64(s.Status))
	d.put(uint64(s.ElapsedMs))
	for _, group := range [][]*battle.Combatant{s.Characters, s.DemonLords} {
		d.put(uint64(len(group)))
		for _, c := range group {
			d.addCombatant(c)
		}
	}
}

func (d *Digest) addCombatant(c *battle.Combatant) {
	d.put(uint64(c.InstanceID))
	d.put(uint64(c.CurrentHP))
	d.put(uint64(c.AttackCooldownMs))
	d.put(uint64(len(c.Stats)))
	for _, k := range slices.Sorted(maps.Keys(c.Stats)) {
		d.put(uint64(k))
		d.put(uint64(c.Stats[k]))
	}
	d.put(uint64(len(c.SkillCooldowns)))
	for _, id := range slices.Sorted(maps.Keys(c.SkillCooldowns)) {
		d.put(uint64(id))
		d.put(uint64(c.SkillCooldowns[id]))
	}
	d.put(uint64(len(c.Buffs)))
	for _, b := range c.Buffs {
		d.put(uint64(b.BuffID))
		d.put(uint64(b.CasterID))
		d.put(uint64(b.RemainingDurationMs))
		d.put(uint64(b.Stacks))
		d.put(uint64(b.TickElapsedMs))
	}
}

func (d *Digest) put(v uint64) {
	binary.LittleEndian.PutUint64(d.buf[:], v)
	_, _ = d.h.Write(d.buf[:])
}

// Sum returns the digest as 16 hex digits.
func (d *Digest) Sum() string {
	return fmt.Sprintf("%016x", d.h.Sum64())
}
