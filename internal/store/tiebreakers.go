package store

import (
	"context"
)

const createTiebreaker = `
INSERT INTO tiebreakers (id, round_id, player_id, player_name, original_amount, status)
VALUES (?, ?, ?, ?, ?, 'pending')
`

type CreateTiebreakerParams struct {
	ID             string
	RoundID        string
	PlayerID       string
	PlayerName     string
	OriginalAmount int64
}

func (q *Queries) CreateTiebreaker(ctx context.Context, arg CreateTiebreakerParams) error {
	_, err := q.db.ExecContext(ctx, createTiebreaker,
		arg.ID,
		arg.RoundID,
		arg.PlayerID,
		arg.PlayerName,
		arg.OriginalAmount,
	)
	return err
}

const addTiebreakerTeam = `
INSERT INTO tiebreaker_teams (tiebreaker_id, team_id, team_name, original_bid_id)
VALUES (?, ?, ?, ?)
`

type AddTiebreakerTeamParams struct {
	TiebreakerID  string
	TeamID        string
	TeamName      string
	OriginalBidID string
}

func (q *Queries) AddTiebreakerTeam(ctx context.Context, arg AddTiebreakerTeamParams) error {
	_, err := q.db.ExecContext(ctx, addTiebreakerTeam,
		arg.TiebreakerID,
		arg.TeamID,
		arg.TeamName,
		arg.OriginalBidID,
	)
	return err
}

const getTiebreaker = `
SELECT id, round_id, player_id, player_name, original_amount, status, created_at
FROM tiebreakers
WHERE id = ?
`

func (q *Queries) GetTiebreaker(ctx context.Context, id string) (Tiebreaker, error) {
	row := q.db.QueryRowContext(ctx, getTiebreaker, id)
	var t Tiebreaker
	err := row.Scan(
		&t.ID,
		&t.RoundID,
		&t.PlayerID,
		&t.PlayerName,
		&t.OriginalAmount,
		&t.Status,
		&t.CreatedAt,
	)
	return t, err
}

const listPendingTiebreakersForRound = `
SELECT id, round_id, player_id, player_name, original_amount, status, created_at
FROM tiebreakers
WHERE round_id = ? AND status = 'pending'
`

func (q *Queries) ListPendingTiebreakersForRound(ctx context.Context, roundID string) ([]Tiebreaker, error) {
	rows, err := q.db.QueryContext(ctx, listPendingTiebreakersForRound, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiebreakers []Tiebreaker
	for rows.Next() {
		var t Tiebreaker
		if err := rows.Scan(
			&t.ID,
			&t.RoundID,
			&t.PlayerID,
			&t.PlayerName,
			&t.OriginalAmount,
			&t.Status,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}
		tiebreakers = append(tiebreakers, t)
	}
	return tiebreakers, rows.Err()
}

const updateTiebreakerStatus = `
UPDATE tiebreakers
SET status = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

func (q *Queries) UpdateTiebreakerStatus(ctx context.Context, id, status string) error {
	_, err := q.db.ExecContext(ctx, updateTiebreakerStatus, status, id)
	return err
}

const listTiebreakerTeams = `
SELECT id, tiebreaker_id, team_id, team_name, original_bid_id, submitted
FROM tiebreaker_teams
WHERE tiebreaker_id = ?
`

func (q *Queries) ListTiebreakerTeams(ctx context.Context, tiebreakerID string) ([]TiebreakerTeam, error) {
	rows, err := q.db.QueryContext(ctx, listTiebreakerTeams, tiebreakerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []TiebreakerTeam
	for rows.Next() {
		var tt TiebreakerTeam
		if err := rows.Scan(
			&tt.ID,
			&tt.TiebreakerID,
			&tt.TeamID,
			&tt.TeamName,
			&tt.OriginalBidID,
			&tt.Submitted,
		); err != nil {
			return nil, err
		}
		teams = append(teams, tt)
	}
	return teams, rows.Err()
}
