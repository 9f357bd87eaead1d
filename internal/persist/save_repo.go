package persist

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// SaveRow holds the persisted progress of one player's game: the seed and RNG
// state pin the piece stream, so a resumed game draws the same sequence the
// interrupted one would have.
type SaveRow struct {
	AccountName string
	Seed        uint64
	RngState    uint64
	Score       int64
	Level       int
	Lines       int
	UpdatedAt   time.Time
}

type SaveRepo struct {
	db *DB
}

func NewSaveRepo(db *DB) *SaveRepo {
	return &SaveRepo{db: db}
}

func (r *SaveRepo) Load(ctx context.Context, accountName string) (*SaveRow, error) {
	row := &SaveRow{}
	var seed, rngState int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT account_name, seed, rng_state, score, level, lines, updated_at
		 FROM game_saves WHERE account_name = $1`, accountName,
	).Scan(
		&row.AccountName, &seed, &rngState, &row.Score, &row.Level, &row.Lines,
		&row.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	row.Seed = uint64(seed)
	row.RngState = uint64(rngState)
	return row, nil
}

func (r *SaveRepo) Upsert(ctx context.Context, row *SaveRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO game_saves (account_name, seed, rng_state, score, level, lines, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 ON CONFLICT (account_name) DO UPDATE SET
		   seed = EXCLUDED.seed,
		   rng_state = EXCLUDED.rng_state,
		   score = EXCLUDED.score,
		   level = EXCLUDED.level,
		   lines = EXCLUDED.lines,
		   updated_at = NOW()`,
		row.AccountName, int64(row.Seed), int64(row.RngState),
		row.Score, row.Level, row.Lines,
	)
	return err
}

func (r *SaveRepo) Delete(ctx context.Context, accountName string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM game_saves WHERE account_name = $1`, accountName,
	)
	return err
}
