package store

import (
	"context"
	"database/sql"
)

const createBid = `
INSERT INTO bids (id, round_id, team_id, team_name, player_id, player_name, amount)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type CreateBidParams struct {
	ID         string
	RoundID    string
	TeamID     string
	TeamName   string
	PlayerID   string
	PlayerName string
	Amount     int64
}

func (q *Queries) CreateBid(ctx context.Context, arg CreateBidParams) error {
	_, err := q.db.ExecContext(ctx, createBid,
		arg.ID,
		arg.RoundID,
		arg.TeamID,
		arg.TeamName,
		arg.PlayerID,
		arg.PlayerName,
		arg.Amount,
	)
	return err
}

const getBid = `
SELECT id, round_id, team_id, team_name, player_id, player_name, amount, status, phase, actual_bid_amount
FROM bids
WHERE id = ?
`

func (q *Queries) GetBid(ctx context.Context, id string) (Bid, error) {
	row := q.db.QueryRowContext(ctx, getBid, id)
	var b Bid
	err := row.Scan(
		&b.ID,
		&b.RoundID,
		&b.TeamID,
		&b.TeamName,
		&b.PlayerID,
		&b.PlayerName,
		&b.Amount,
		&b.Status,
		&b.Phase,
		&b.ActualBidAmount,
	)
	return b, err
}

const listActiveBidsForRound = `
SELECT id, round_id, team_id, team_name, player_id, player_name, amount, status, phase, actual_bid_amount
FROM bids
WHERE round_id = ? AND status = 'active'
ORDER BY amount DESC
`

func (q *Queries) ListActiveBidsForRound(ctx context.Context, roundID string) ([]Bid, error) {
	rows, err := q.db.QueryContext(ctx, listActiveBidsForRound, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []Bid
	for rows.Next() {
		var b Bid
		if err := rows.Scan(
			&b.ID,
			&b.RoundID,
			&b.TeamID,
			&b.TeamName,
			&b.PlayerID,
			&b.PlayerName,
			&b.Amount,
			&b.Status,
			&b.Phase,
			&b.ActualBidAmount,
		); err != nil {
			return nil, err
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

const markBidWon = `
UPDATE bids
SET status = 'won', phase = ?, actual_bid_amount = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

// MarkBidWon records a winning bid. For incomplete-phase winners the
// original bid amount is preserved in actual_bid_amount since the charged
// price differs from what the team bid.
func (q *Queries) MarkBidWon(ctx context.Context, id, phase string, actualBidAmount sql.NullInt64) error {
	_, err := q.db.ExecContext(ctx, markBidWon, phase, actualBidAmount, id)
	return err
}

const markRemainingBidsLost = `
UPDATE bids
SET status = 'lost', updated_at = CURRENT_TIMESTAMP
WHERE round_id = ? AND status = 'active'
`

// MarkRemainingBidsLost marks every still-active bid for the round as lost.
// Winners must be marked won before this runs.
func (q *Queries) MarkRemainingBidsLost(ctx context.Context, roundID string) error {
	_, err := q.db.ExecContext(ctx, markRemainingBidsLost, roundID)
	return err
}
