package auction

import (
	"sort"

	"github.com/Shamsear/ssleague-sub005/internal/store"
)

// DetectTies finds every bid that shares a player's maximal amount with at
// least one other bid. Players whose top bid is strictly unique contribute
// nothing; independent ties on different players are all reported together.
// Pure function over the given bid set.
func DetectTies(bids []store.Bid) []store.Bid {
	byPlayer := make(map[string][]store.Bid)
	for _, bid := range bids {
		byPlayer[bid.PlayerID] = append(byPlayer[bid.PlayerID], bid)
	}

	playerIDs := make([]string, 0, len(byPlayer))
	for playerID := range byPlayer {
		playerIDs = append(playerIDs, playerID)
	}
	sort.Strings(playerIDs)

	var tied []store.Bid
	for _, playerID := range playerIDs {
		playerBids := byPlayer[playerID]
		if len(playerBids) < 2 {
			continue
		}

		sort.SliceStable(playerBids, func(i, j int) bool {
			return playerBids[i].Amount > playerBids[j].Amount
		})

		if playerBids[0].Amount != playerBids[1].Amount {
			continue
		}

		top := playerBids[0].Amount
		for _, bid := range playerBids {
			if bid.Amount == top {
				tied = append(tied, bid)
			}
		}
	}
	return tied
}
