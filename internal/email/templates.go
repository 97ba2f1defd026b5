package email

import (
	"fmt"
	"strings"

	"github.com/Shamsear/ssleague-sub005/internal/auction"
)

type CommitteeEmail struct {
	Subject string
	Body    string
}

// BuildTiebreakerNotice describes a detected tie for the committee, listing
// every tied bid so they can chase the affected teams.
func BuildTiebreakerNotice(roundID, seasonID, tiebreakerID string, tiedBids []auction.TiedBid) CommitteeEmail {
	var b strings.Builder
	fmt.Fprintf(&b, "A tie was detected while previewing round %s (season %s).\n\n", roundID, seasonID)
	fmt.Fprintf(&b, "Tiebreaker: %s\n\n", tiebreakerID)
	b.WriteString("Tied bids:\n")
	for _, bid := range tiedBids {
		fmt.Fprintf(&b, "  - %s bid £%d for %s\n", bid.TeamName, bid.Amount, bid.PlayerName)
	}
	b.WriteString("\nThe round is halted until the tiebreaker is resolved. ")
	b.WriteString("Once resolved, run the preview again.\n")

	return CommitteeEmail{
		Subject: fmt.Sprintf("Tiebreaker required for round %s", roundID),
		Body:    b.String(),
	}
}

// BuildFinalizationNotice confirms a completed round finalization.
func BuildFinalizationNotice(roundID, seasonID string, allocationCount int) CommitteeEmail {
	var b strings.Builder
	fmt.Fprintf(&b, "Round %s (season %s) has been finalized.\n\n", roundID, seasonID)
	fmt.Fprintf(&b, "%d player(s) were allocated. Team budgets and rosters have been updated.\n", allocationCount)

	return CommitteeEmail{
		Subject: fmt.Sprintf("Round %s finalized", roundID),
		Body:    b.String(),
	}
}
