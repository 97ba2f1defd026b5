package store

import (
	"context"
	"fmt"
)

const createTeam = `
INSERT INTO teams (id, season_id, name, currency_system, budget, football_budget, cricket_budget)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type CreateTeamParams struct {
	ID             string
	SeasonID       string
	Name           string
	CurrencySystem string
	Budget         int64
	FootballBudget int64
	CricketBudget  int64
}

func (q *Queries) CreateTeam(ctx context.Context, arg CreateTeamParams) error {
	_, err := q.db.ExecContext(ctx, createTeam,
		arg.ID,
		arg.SeasonID,
		arg.Name,
		arg.CurrencySystem,
		arg.Budget,
		arg.FootballBudget,
		arg.CricketBudget,
	)
	return err
}

const getTeam = `
SELECT id, season_id, name, currency_system, budget, football_budget, cricket_budget
FROM teams
WHERE id = ?
`

func (q *Queries) GetTeam(ctx context.Context, id string) (Team, error) {
	row := q.db.QueryRowContext(ctx, getTeam, id)
	var t Team
	err := row.Scan(
		&t.ID,
		&t.SeasonID,
		&t.Name,
		&t.CurrencySystem,
		&t.Budget,
		&t.FootballBudget,
		&t.CricketBudget,
	)
	return t, err
}

const countTeamsInSeason = `
SELECT COUNT(*) FROM teams WHERE season_id = ?
`

func (q *Queries) CountTeamsInSeason(ctx context.Context, seasonID string) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTeamsInSeason, seasonID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

// DeductBudget subtracts amount from the named budget column. The column is
// selected from the BudgetField enum, never from caller-supplied strings.
func (q *Queries) DeductBudget(ctx context.Context, teamID string, field BudgetField, amount int64) error {
	query := fmt.Sprintf(
		"UPDATE teams SET %s = %s - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		field.column(), field.column(),
	)
	result, err := q.db.ExecContext(ctx, query, amount, teamID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("team %s not found", teamID)
	}
	return nil
}

const addTeamPlayer = `
INSERT INTO team_players (team_id, player_id, player_name, purchase_price, round_id)
VALUES (?, ?, ?, ?, ?)
`

type AddTeamPlayerParams struct {
	TeamID        string
	PlayerID      string
	PlayerName    string
	PurchasePrice int64
	RoundID       string
}

func (q *Queries) AddTeamPlayer(ctx context.Context, arg AddTeamPlayerParams) error {
	_, err := q.db.ExecContext(ctx, addTeamPlayer,
		arg.TeamID,
		arg.PlayerID,
		arg.PlayerName,
		arg.PurchasePrice,
		arg.RoundID,
	)
	return err
}

const listTeamPlayers = `
SELECT id, team_id, player_id, player_name, purchase_price, round_id, acquired_at
FROM team_players
WHERE team_id = ?
ORDER BY acquired_at
`

func (q *Queries) ListTeamPlayers(ctx context.Context, teamID string) ([]TeamPlayer, error) {
	rows, err := q.db.QueryContext(ctx, listTeamPlayers, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []TeamPlayer
	for rows.Next() {
		var tp TeamPlayer
		if err := rows.Scan(
			&tp.ID,
			&tp.TeamID,
			&tp.PlayerID,
			&tp.PlayerName,
			&tp.PurchasePrice,
			&tp.RoundID,
			&tp.AcquiredAt,
		); err != nil {
			return nil, err
		}
		players = append(players, tp)
	}
	return players, rows.Err()
}
