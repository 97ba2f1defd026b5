package auction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Shamsear/ssleague-sub005/internal/store"
)

// TeamLookup provides current team balances. *store.Queries satisfies it;
// tests can substitute an in-memory implementation.
type TeamLookup interface {
	GetTeam(ctx context.Context, id string) (store.Team, error)
}

// ValidationResult holds every problem found in a single validation pass.
type ValidationResult struct {
	Errors []string
}

func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// ValidateBudgets checks each allocation against the team's current balance
// for the round's sport. It accumulates all failures instead of stopping at
// the first, so a committee operator sees every problem at once: a missing
// team records a distinct "not found" error and validation moves on to the
// next allocation. Infrastructure failures other than a missing row abort
// the pass.
func ValidateBudgets(ctx context.Context, teams TeamLookup, sport string, allocations []store.PendingAllocation) (ValidationResult, error) {
	var result ValidationResult
	for _, allocation := range allocations {
		team, err := teams.GetTeam(ctx, allocation.TeamID)
		if errors.Is(err, sql.ErrNoRows) {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Team %s (%s) not found in season",
				allocation.TeamName, allocation.TeamID,
			))
			continue
		}
		if err != nil {
			return ValidationResult{}, fmt.Errorf("look up team %s: %w", allocation.TeamID, err)
		}

		available := team.Balance().Available(sport)
		if available < allocation.Amount {
			shortfall := allocation.Amount - available
			result.Errors = append(result.Errors, fmt.Sprintf(
				"Team %s has insufficient funds. Required: £%d, Available: £%d, Shortfall: £%d",
				allocation.TeamName, allocation.Amount, available, shortfall,
			))
		}
	}
	return result, nil
}
