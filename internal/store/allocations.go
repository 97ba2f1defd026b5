package store

import (
	"context"
	"database/sql"
)

const insertPendingAllocation = `
INSERT INTO pending_allocations (round_id, team_id, team_name, player_id, player_name, amount, bid_id, phase)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertPendingAllocationParams struct {
	RoundID    string
	TeamID     string
	TeamName   string
	PlayerID   string
	PlayerName string
	Amount     int64
	BidID      sql.NullString
	Phase      string
}

func (q *Queries) InsertPendingAllocation(ctx context.Context, arg InsertPendingAllocationParams) error {
	_, err := q.db.ExecContext(ctx, insertPendingAllocation,
		arg.RoundID,
		arg.TeamID,
		arg.TeamName,
		arg.PlayerID,
		arg.PlayerName,
		arg.Amount,
		arg.BidID,
		arg.Phase,
	)
	return err
}

const listPendingAllocations = `
SELECT id, round_id, team_id, team_name, player_id, player_name, amount, bid_id, phase, created_at
FROM pending_allocations
WHERE round_id = ?
ORDER BY amount DESC
`

func (q *Queries) ListPendingAllocations(ctx context.Context, roundID string) ([]PendingAllocation, error) {
	rows, err := q.db.QueryContext(ctx, listPendingAllocations, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocations []PendingAllocation
	for rows.Next() {
		var pa PendingAllocation
		if err := rows.Scan(
			&pa.ID,
			&pa.RoundID,
			&pa.TeamID,
			&pa.TeamName,
			&pa.PlayerID,
			&pa.PlayerName,
			&pa.Amount,
			&pa.BidID,
			&pa.Phase,
			&pa.CreatedAt,
		); err != nil {
			return nil, err
		}
		allocations = append(allocations, pa)
	}
	return allocations, rows.Err()
}

const deletePendingAllocations = `
DELETE FROM pending_allocations WHERE round_id = ?
`

func (q *Queries) DeletePendingAllocations(ctx context.Context, roundID string) error {
	_, err := q.db.ExecContext(ctx, deletePendingAllocations, roundID)
	return err
}
