package auction

import (
	"sort"

	"github.com/Shamsear/ssleague-sub005/internal/store"
)

// fallbackIncompleteAmount is charged to incomplete teams when no regular
// allocation exists to average over.
const fallbackIncompleteAmount = 1000

// Allocation is one proposed team-player settlement produced by a preview.
type Allocation struct {
	TeamID     string `json:"team_id"`
	TeamName   string `json:"team_name"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Amount     int64  `json:"amount"`
	BidID      string `json:"bid_id,omitempty"`
	Phase      string `json:"phase"`
}

// ComputeAllocations settles a round's bid set into proposed allocations.
//
// Teams that submitted the round's required bid count are settled greedily:
// the highest bid wins, the winning player and team drop out of the pool,
// and the pool is re-ranked until every complete team holds a player.
// Teams with fewer bids than required receive their highest still-available
// bid priced at the average regular winning amount.
//
// If at any step the top amount for a player is shared by two or more
// remaining bids, settlement stops and the tied bids are returned so the
// caller can open a tiebreaker. Ties can surface mid-settlement even when
// the full bid set had a unique top bid per player, because removing a
// winning team can leave two equal bids at the top for another player.
func ComputeAllocations(round store.Round, bids []store.Bid) ([]Allocation, []store.Bid) {
	bidsPerTeam := make(map[string]int)
	for _, bid := range bids {
		bidsPerTeam[bid.TeamID]++
	}

	completeTeams := make(map[string]bool)
	incompleteTeams := make(map[string]bool)
	for teamID, count := range bidsPerTeam {
		if count >= int(round.MaxBidsPerTeam) {
			completeTeams[teamID] = true
		} else {
			incompleteTeams[teamID] = true
		}
	}

	var allocations []Allocation
	allocatedPlayers := make(map[string]bool)
	allocatedTeams := make(map[string]bool)

	pool := make([]store.Bid, 0, len(bids))
	for _, bid := range bids {
		if completeTeams[bid.TeamID] {
			pool = append(pool, bid)
		}
	}

	for len(pool) > 0 && len(allocatedTeams) < len(completeTeams) {
		sortBidsByAmountDesc(pool)

		top := pool[0]
		var tiedBids []store.Bid
		for _, bid := range pool {
			if bid.Amount == top.Amount && bid.PlayerID == top.PlayerID {
				tiedBids = append(tiedBids, bid)
			}
		}
		if len(tiedBids) > 1 {
			return nil, tiedBids
		}

		allocations = append(allocations, Allocation{
			TeamID:     top.TeamID,
			TeamName:   top.TeamName,
			PlayerID:   top.PlayerID,
			PlayerName: top.PlayerName,
			Amount:     top.Amount,
			BidID:      top.ID,
			Phase:      store.PhaseRegular,
		})
		allocatedPlayers[top.PlayerID] = true
		allocatedTeams[top.TeamID] = true

		remaining := pool[:0]
		for _, bid := range pool {
			if bid.PlayerID != top.PlayerID && bid.TeamID != top.TeamID {
				remaining = append(remaining, bid)
			}
		}
		pool = remaining
	}

	if len(incompleteTeams) > 0 {
		averageAmount := averageAllocationAmount(allocations)

		incompleteIDs := make([]string, 0, len(incompleteTeams))
		for teamID := range incompleteTeams {
			incompleteIDs = append(incompleteIDs, teamID)
		}
		sort.Strings(incompleteIDs)

		for _, teamID := range incompleteIDs {
			if allocatedTeams[teamID] {
				continue
			}

			var teamBids []store.Bid
			for _, bid := range bids {
				if bid.TeamID == teamID && !allocatedPlayers[bid.PlayerID] {
					teamBids = append(teamBids, bid)
				}
			}
			if len(teamBids) == 0 {
				continue
			}
			sortBidsByAmountDesc(teamBids)

			top := teamBids[0]
			allocations = append(allocations, Allocation{
				TeamID:     top.TeamID,
				TeamName:   top.TeamName,
				PlayerID:   top.PlayerID,
				PlayerName: top.PlayerName,
				Amount:     averageAmount,
				BidID:      top.ID,
				Phase:      store.PhaseIncomplete,
			})
			allocatedPlayers[top.PlayerID] = true
			allocatedTeams[top.TeamID] = true
		}
	}

	return allocations, nil
}

func sortBidsByAmountDesc(bids []store.Bid) {
	sort.SliceStable(bids, func(i, j int) bool {
		return bids[i].Amount > bids[j].Amount
	})
}

func averageAllocationAmount(allocations []Allocation) int64 {
	if len(allocations) == 0 {
		return fallbackIncompleteAmount
	}
	var total int64
	for _, allocation := range allocations {
		total += allocation.Amount
	}
	n := int64(len(allocations))
	return (total + n/2) / n
}
