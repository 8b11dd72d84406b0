package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/battlecore/internal/game/battle"
	"github.com/cory-johannsen/battlecore/internal/replay"
)

// ErrReplayNotFound is returned when a replay lookup yields no results.
var ErrReplayNotFound = errors.New("replay not found")

// ErrReplayExists is returned when saving a replay whose id is taken.
var ErrReplayExists = errors.New("replay already exists")

// ReplaySummary is the indexed part of a stored replay.
type ReplaySummary struct {
	ID        uuid.UUID
	Seed      uint64
	Outcome   battle.Outcome
	Turns     int64
	Digest    string
	CreatedAt time.Time
}

// ReplayRepository provides replay persistence operations.
type ReplayRepository struct {
	db *pgxpool.Pool
}

// NewReplayRepository creates a ReplayRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewReplayRepository(db *pgxpool.Pool) *ReplayRepository {
	return &ReplayRepository{db: db}
}

// Save inserts rec. The full recording is stored as JSONB.
//
// Precondition: rec must be non-nil with a non-nil ID.
// Postcondition: Returns ErrReplayExists if rec.ID is already stored.
func (r *ReplayRepository) Save(ctx context.Context, rec *replay.Recording) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding replay: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO battle_replays (id, seed, outcome, turns, digest, recording, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, int64(rec.Seed), int16(rec.Outcome), rec.Turns, rec.Digest, body, rec.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrReplayExists
		}
		return fmt.Errorf("inserting replay: %w", err)
	}
	return nil
}

// Load retrieves the recording stored under id.
//
// Postcondition: Returns the Recording or ErrReplayNotFound.
func (r *ReplayRepository) Load(ctx context.Context, id uuid.UUID) (*replay.Recording, error) {
	var body []byte
	err := r.db.QueryRow(ctx,
		`SELECT recording FROM battle_replays WHERE id = $1`, id,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReplayNotFound
		}
		return nil, fmt.Errorf("querying replay: %w", err)
	}
	var rec replay.Recording
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("decoding replay %s: %w", id, err)
	}
	return &rec, nil
}

// ListByOutcome returns up to limit summaries with the given outcome,
// newest first.
//
// Precondition: limit > 0.
func (r *ReplayRepository) ListByOutcome(ctx context.Context, outcome battle.Outcome, limit int) ([]ReplaySummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, seed, outcome, turns, digest, created_at
		 FROM battle_replays WHERE outcome = $1
		 ORDER BY created_at DESC, id
		 LIMIT $2`,
		int16(outcome), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing replays: %w", err)
	}
	defer rows.Close()

	var out []ReplaySummary
	for rows.Next() {
		var (
			s    ReplaySummary
			seed int64
			code int16
		)
		if err := rows.Scan(&s.ID, &seed, &code, &s.Turns, &s.Digest, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning replay: %w", err)
		}
		s.Seed = uint64(seed)
		s.Outcome = battle.Outcome(code)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating replays: %w", err)
	}
	return out, nil
}

// Delete removes the replay stored under id.
//
// Postcondition: Returns ErrReplayNotFound if nothing was deleted.
func (r *ReplayRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM battle_replays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting replay: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReplayNotFound
	}
	return nil
}

func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
