package store

import (
	"context"
	"time"
)

const createRound = `
INSERT INTO rounds (id, season_id, position, sport, max_bids_per_team, status, finalization_mode, end_time)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateRoundParams struct {
	ID               string
	SeasonID         string
	Position         string
	Sport            string
	MaxBidsPerTeam   int64
	Status           string
	FinalizationMode string
	EndTime          time.Time
}

func (q *Queries) CreateRound(ctx context.Context, arg CreateRoundParams) error {
	_, err := q.db.ExecContext(ctx, createRound,
		arg.ID,
		arg.SeasonID,
		arg.Position,
		arg.Sport,
		arg.MaxBidsPerTeam,
		arg.Status,
		arg.FinalizationMode,
		arg.EndTime,
	)
	return err
}

const getRound = `
SELECT id, season_id, position, sport, max_bids_per_team, status, finalization_mode, end_time, created_at, updated_at
FROM rounds
WHERE id = ?
`

func (q *Queries) GetRound(ctx context.Context, id string) (Round, error) {
	row := q.db.QueryRowContext(ctx, getRound, id)
	var r Round
	err := row.Scan(
		&r.ID,
		&r.SeasonID,
		&r.Position,
		&r.Sport,
		&r.MaxBidsPerTeam,
		&r.Status,
		&r.FinalizationMode,
		&r.EndTime,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

const updateRoundStatus = `
UPDATE rounds
SET status = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

func (q *Queries) UpdateRoundStatus(ctx context.Context, id, status string) error {
	_, err := q.db.ExecContext(ctx, updateRoundStatus, status, id)
	return err
}

const listExpiredManualRounds = `
SELECT id, season_id, position, sport, max_bids_per_team, status, finalization_mode, end_time, created_at, updated_at
FROM rounds
WHERE status = 'active'
  AND finalization_mode = 'manual'
  AND end_time <= ?
ORDER BY end_time
`

// ListExpiredManualRounds returns manual-mode rounds still marked active
// whose end time has passed.
func (q *Queries) ListExpiredManualRounds(ctx context.Context, now time.Time) ([]Round, error) {
	rows, err := q.db.QueryContext(ctx, listExpiredManualRounds, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []Round
	for rows.Next() {
		var r Round
		if err := rows.Scan(
			&r.ID,
			&r.SeasonID,
			&r.Position,
			&r.Sport,
			&r.MaxBidsPerTeam,
			&r.Status,
			&r.FinalizationMode,
			&r.EndTime,
			&r.CreatedAt,
			&r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	return rounds, rows.Err()
}
