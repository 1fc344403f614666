package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/sepset/internal/graph"
)

// RunRecorder writes the actions of one run. It satisfies the engine's
// Recorder interface, so a Runner configured with it persists every applied
// action as it happens.
type RunRecorder struct {
	store *Store
	ctx   context.Context
	id    string
}

// ID returns the run's identifier, a v7 UUID.
func (r *RunRecorder) ID() string { return r.id }

// BeginRun registers a new run and returns its recorder. The context is
// retained for the recorder's writes, which happen inside the engine's
// apply phase.
func (s *Store) BeginRun(ctx context.Context, algorithm string) (*RunRecorder, error) {
	id := uuid.Must(uuid.NewV7()).String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, algorithm, started_at)
		VALUES (?, ?, ?)
	`, id, algorithm, time.Now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	return &RunRecorder{store: s, ctx: ctx, id: id}, nil
}

// RecordAction persists one applied action under the run's logical
// sequence number and indexes it per edge direction: both orderings for
// symmetric actions, only X→Y for directed ones. Mirrors how the in-memory
// graph appends edge history.
func (r *RunRecorder) RecordAction(step string, seq int64, result *graph.TestResult) error {
	var data any
	if len(result.Data) > 0 {
		encoded, err := json.Marshal(result.Data)
		if err != nil {
			return fmt.Errorf("record action: encode data: %w", err)
		}
		data = string(encoded)
	}

	tx, err := r.store.db.BeginTx(r.ctx, nil)
	if err != nil {
		return fmt.Errorf("record action: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(r.ctx, `
		INSERT INTO actions (run_id, seq, step, action, x, y, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, r.id, seq, step, string(result.Action), result.X, result.Y, data)
	if err != nil {
		return fmt.Errorf("record action: %w", err)
	}

	pairs := [][2]string{{result.X, result.Y}}
	if !result.Action.Directed() {
		pairs = append(pairs, [2]string{result.Y, result.X})
	}
	for _, p := range pairs {
		_, err = tx.ExecContext(r.ctx, `
			INSERT INTO edge_history (run_id, u, v, seq)
			VALUES (?, ?, ?, ?)
		`, r.id, p[0], p[1], seq)
		if err != nil {
			return fmt.Errorf("record action: index edge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record action: %w", err)
	}
	return nil
}

// Finish stamps the run as completed.
func (r *RunRecorder) Finish(ctx context.Context) error {
	_, err := r.store.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ? WHERE id = ?
	`, time.Now().UnixMilli(), r.id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}
