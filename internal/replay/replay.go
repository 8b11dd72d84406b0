// Package replay records battles so they can be stored, shared and re-run.
//
// A recording holds everything needed to reproduce a battle: the seed, the
// roster, whether the AI drove the player side, and each tick's delta and
// inputs. The digest fingerprints the full event stream.
package replay

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/game/catalog"
	"github.com/cory-johannsen/battlecore/internal/roster"
)

// Input is the serialized form of a battle.ActionInput. Skill is the skill
// id, absent for non-skill inputs.
type Input struct {
	Type    battle.ActionType `yaml:"type" json:"type"`
	Actor   int64             `yaml:"actor" json:"actor"`
	Targets []int64           `yaml:"targets" json:"targets"`
	Skill   *int64            `yaml:"skill,omitempty" json:"skill,omitempty"`
}

// Tick is one recorded call to the rules engine.
type Tick struct {
	DeltaMs int64   `yaml:"delta_ms" json:"delta_ms"`
	Inputs  []Input `yaml:"inputs,omitempty" json:"inputs,omitempty"`
}

// Recording is a complete, reproducible battle.
type Recording struct {
	ID             uuid.UUID      `yaml:"id" json:"id"`
	CreatedAt      time.Time      `yaml:"created_at" json:"created_at"`
	Seed           uint64         `yaml:"seed" json:"seed"`
	ControlPlayers bool           `yaml:"control_players" json:"control_players"`
	Roster         *roster.File   `yaml:"roster" json:"roster"`
	Ticks          []Tick         `yaml:"ticks" json:"ticks"`
	Outcome        battle.Outcome `yaml:"outcome" json:"outcome"`
	Turns          int64          `yaml:"turns" json:"turns"`
	Digest         string         `yaml:"digest" json:"digest"`
}

// EncodeInputs converts action inputs to their recorded form.
func EncodeInputs(inputs []battle.ActionInput) []Input {
	if len(inputs) == 0 {
		return nil
	}
	out := make([]Input, len(inputs))
	for i, in := range inputs {
		out[i] = Input{
			Type:    in.Type,
			Actor:   in.ActorID,
			Targets: append([]int64(nil), in.TargetIDs...),
		}
		if in.Skill != nil {
			id := in.Skill.ID
			out[i].Skill = &id
		}
	}
	return out
}

// DecodeInputs resolves recorded inputs against cat.
//
// Postcondition: Returns an error naming the first unknown skill id.
func DecodeInputs(cat *catalog.Catalog, inputs []Input) ([]battle.ActionInput, error) {
	out := make([]battle.ActionInput, len(inputs))
	for i, in := range inputs {
		out[i] = battle.ActionInput{
			Type:      in.Type,
			ActorID:   in.Actor,
			TargetIDs: append([]int64(nil), in.Targets...),
		}
		if in.Skill == nil {
			continue
		}
		if *in.Skill == catalog.BasicAttackID {
			out[i].Skill = cat.BasicAttack()
			continue
		}
		sk, ok := cat.Skill(*in.Skill)
		if !ok {
			return nil, fmt.Errorf("replay: input %d: unknown skill id %d", i, *in.Skill)
		}
		out[i].Skill = sk
	}
	return out, nil
}

// Recorder accumulates a Recording tick by tick.
type Recorder struct {
	rec    Recording
	digest *Digest
}

// NewRecorder starts a recording with a fresh id.
//
// Precondition: f must be the roster the battle was built from.
func NewRecorder(seed uint64, controlPlayers bool, f *roster.File) *Recorder {
	return &Recorder{
		rec: Recording{
			ID:             uuid.New(),
			CreatedAt:      time.Now().UTC(),
			Seed:           seed,
			ControlPlayers: controlPlayers,
			Roster:         f,
			Outcome:        battle.OutcomeOngoing,
		},
		digest: NewDigest(),
	}
}

// Record appends one tick.
func (r *Recorder) Record(deltaMs int64, inputs []battle.ActionInput, turn int64, events []battle.Event) {
	r.rec.Ticks = append(r.rec.Ticks, Tick{DeltaMs: deltaMs, Inputs: EncodeInputs(inputs)})
	r.digest.Add(turn, events)
	r.rec.Turns = turn
}

// RecordState folds the state reached by the last recorded tick into the
// digest.
func (r *Recorder) RecordState(s *battle.State) {
	r.digest.AddState(s)
}

// Finish stamps the outcome and digest and returns the recording.
//
// Postcondition: The Recorder may keep recording; later calls to Finish
// return an updated copy.
func (r *Recorder) Finish(outcome battle.Outcome) *Recording {
	out := r.rec
	out.Ticks = append([]Tick(nil), r.rec.Ticks...)
	out.Outcome = outcome
	out.Digest = r.digest.Sum()
	return &out
}

// Marshal encodes rec as YAML.
func Marshal(rec *Recording) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("replay: encoding %s: %w", rec.ID, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("replay: encoding %s: %w", rec.ID, err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a YAML recording, rejecting unknown fields.
func Unmarshal(data []byte) (*Recording, error) {
	var rec Recording
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("replay: decoding: %w", err)
	}
	if rec.Roster == nil {
		return nil, fmt.Errorf("replay: recording %s has no roster", rec.ID)
	}
	return &rec, nil
}

// WriteFile writes rec to path as YAML.
func WriteFile(path string, rec *Recording) error {
	data, err := Marshal(rec)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("replay: writing %q: %w", path, err)
	}
	return nil
}

// ReadFile reads a YAML recording from path.
func ReadFile(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("replay: reading %q: %w", path, err)
	}
	return Unmarshal(data)
}
