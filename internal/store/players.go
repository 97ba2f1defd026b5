package store

import (
	"context"
)

const createPlayer = `
INSERT INTO players (id, season_id, name, position)
VALUES (?, ?, ?, ?)
`

type CreatePlayerParams struct {
	ID       string
	SeasonID string
	Name     string
	Position string
}

func (q *Queries) CreatePlayer(ctx context.Context, arg CreatePlayerParams) error {
	_, err := q.db.ExecContext(ctx, createPlayer, arg.ID, arg.SeasonID, arg.Name, arg.Position)
	return err
}

const getPlayer = `
SELECT id, season_id, name, position, is_sold, team_id, acquisition_value, round_id
FROM players
WHERE id = ?
`

func (q *Queries) GetPlayer(ctx context.Context, id string) (Player, error) {
	row := q.db.QueryRowContext(ctx, getPlayer, id)
	var p Player
	err := row.Scan(
		&p.ID,
		&p.SeasonID,
		&p.Name,
		&p.Position,
		&p.IsSold,
		&p.TeamID,
		&p.AcquisitionValue,
		&p.RoundID,
	)
	return p, err
}

const markPlayerSold = `
UPDATE players
SET is_sold = 1,
    team_id = ?,
    acquisition_value = ?,
    round_id = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

type MarkPlayerSoldParams struct {
	PlayerID         string
	TeamID           string
	AcquisitionValue int64
	RoundID          string
}

func (q *Queries) MarkPlayerSold(ctx context.Context, arg MarkPlayerSoldParams) error {
	_, err := q.db.ExecContext(ctx, markPlayerSold,
		arg.TeamID,
		arg.AcquisitionValue,
		arg.RoundID,
		arg.PlayerID,
	)
	return err
}
