package persist

import (
	"context"
	"fmt"
)

// ScoreEvent is one append-only journal entry: a scoring line clear as it
// happened, written before the periodic save so a crash between saves loses
// progress but not history.
type ScoreEvent struct {
	AccountName string
	Lines       int
	Points      int64
	Combo       int
	Level       int
}

type EventRepo struct {
	db *DB
}

func NewEventRepo(db *DB) *EventRepo {
	return &EventRepo{db: db}
}

// WriteBatch atomically appends a batch of score events in a single
// transaction. Returns nil on success.
func (r *EventRepo) WriteBatch(ctx context.Context, events []ScoreEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("events begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range events {
		if _, err := tx.Exec(ctx,
			`INSERT INTO score_events (account_name, lines, points, combo, level)
			 VALUES ($1, $2, $3, $4, $5)`,
			e.AccountName, e.Lines, e.Points, e.Combo, e.Level,
		); err != nil {
			return fmt.Errorf("events insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// MarkProcessed marks all journal entries as processed (called after the
// periodic batch save lands).
func (r *EventRepo) MarkProcessed(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE score_events SET processed = TRUE WHERE NOT processed`,
	)
	return err
}
