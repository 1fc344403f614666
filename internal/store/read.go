package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/sepset/internal/graph"
)

// Run is one row of the runs table.
type Run struct {
	ID         string
	Algorithm  string
	StartedAt  int64
	FinishedAt int64
}

// Finished reports whether the run recorded a completion timestamp.
func (r Run) Finished() bool { return r.FinishedAt != 0 }

// ActionRecord is one persisted applied action.
type ActionRecord struct {
	Seq    int64
	Step   string
	Action graph.Action
	X      string
	Y      string
	Data   graph.Payload
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, algorithm, started_at, COALESCE(finished_at, 0)
		FROM runs
		ORDER BY started_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Algorithm, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	runs, err := s.ListRuns(ctx)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("no runs recorded")
	}
	return runs[0], nil
}

// Actions returns every applied action of a run in sequence order.
func (s *Store) Actions(ctx context.Context, runID string) ([]ActionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, step, action, x, y, data
		FROM actions
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("actions of %s: %w", runID, err)
	}
	defer rows.Close()
	return scanActions(rows)
}

// EdgeTrace returns the actions that touched the ordered pair (u, v),
// in sequence order. Symmetric actions are indexed under both orderings,
// so querying either direction of an undirected removal finds it.
func (s *Store) EdgeTrace(ctx context.Context, runID, u, v string) ([]ActionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.seq, a.step, a.action, a.x, a.y, a.data
		FROM edge_history h
		JOIN actions a ON a.run_id = h.run_id AND a.seq = h.seq
		WHERE h.run_id = ? AND h.u = ? AND h.v = ?
		ORDER BY a.seq
	`, runID, u, v)
	if err != nil {
		return nil, fmt.Errorf("edge trace %s %s-%s: %w", runID, u, v, err)
	}
	defer rows.Close()
	return scanActions(rows)
}

func scanActions(rows *sql.Rows) ([]ActionRecord, error) {
	var records []ActionRecord
	for rows.Next() {
		var (
			rec    ActionRecord
			action string
			data   sql.NullString
		)
		if err := rows.Scan(&rec.Seq, &rec.Step, &action, &rec.X, &rec.Y, &data); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		rec.Action = graph.Action(action)
		if data.Valid && data.String != "" {
			if err := json.Unmarshal([]byte(data.String), &rec.Data); err != nil {
				return nil, fmt.Errorf("decode action data at seq %d: %w", rec.Seq, err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
