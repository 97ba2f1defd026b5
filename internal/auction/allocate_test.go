package auction

import (
	"testing"

	"github.com/Shamsear/ssleague-sub005/internal/store"
)

func testRound(maxBids int64) store.Round {
	return store.Round{
		ID:             "round-1",
		SeasonID:       "season-1",
		Sport:          store.SportFootball,
		MaxBidsPerTeam: maxBids,
	}
}

func TestComputeAllocations_GreedyHighestFirst(t *testing.T) {
	// Two complete teams, two players each. t1's 800 on p1 wins first, which
	// removes t1 and p1 from the pool, so t2 settles on p2 at 600.
	bids := []store.Bid{
		bid("b1", "t1", "p1", 800),
		bid("b2", "t1", "p2", 700),
		bid("b3", "t2", "p1", 650),
		bid("b4", "t2", "p2", 600),
	}

	allocations, tied := ComputeAllocations(testRound(2), bids)
	if len(tied) != 0 {
		t.Fatalf("unexpected tie: %v", tied)
	}
	if len(allocations) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(allocations))
	}

	if allocations[0].TeamID != "t1" || allocations[0].PlayerID != "p1" || allocations[0].Amount != 800 {
		t.Errorf("first allocation = %+v, want t1/p1/800", allocations[0])
	}
	if allocations[1].TeamID != "t2" || allocations[1].PlayerID != "p2" || allocations[1].Amount != 600 {
		t.Errorf("second allocation = %+v, want t2/p2/600", allocations[1])
	}
	for _, a := range allocations {
		if a.Phase != store.PhaseRegular {
			t.Errorf("allocation %s phase = %q, want regular", a.TeamID, a.Phase)
		}
	}
}

func TestComputeAllocations_OneTeamPerPlayer(t *testing.T) {
	bids := []store.Bid{
		bid("b1", "t1", "p1", 900),
		bid("b2", "t2", "p1", 800),
		bid("b3", "t1", "p2", 700),
		bid("b4", "t2", "p2", 500),
	}

	allocations, tied := ComputeAllocations(testRound(2), bids)
	if len(tied) != 0 {
		t.Fatalf("unexpected tie: %v", tied)
	}

	seenPlayers := make(map[string]bool)
	seenTeams := make(map[string]bool)
	for _, a := range allocations {
		if seenPlayers[a.PlayerID] {
			t.Errorf("player %s allocated twice", a.PlayerID)
		}
		if seenTeams[a.TeamID] {
			t.Errorf("team %s allocated twice", a.TeamID)
		}
		seenPlayers[a.PlayerID] = true
		seenTeams[a.TeamID] = true
	}
}

func TestComputeAllocations_TieEmergesMidSettlement(t *testing.T) {
	// No tie in the raw bid set: p1's top bid is a unique 900. Settling it
	// removes t1, leaving t2 and t3 tied at 500 on p2.
	bids := []store.Bid{
		bid("b1", "t1", "p1", 900),
		bid("b2", "t1", "p2", 600),
		bid("b3", "t2", "p2", 500),
		bid("b4", "t2", "p1", 450),
		bid("b5", "t3", "p2", 500),
		bid("b6", "t3", "p1", 400),
	}

	if tied := DetectTies(bids); len(tied) != 0 {
		t.Fatalf("expected no ties in raw bid set, got %d", len(tied))
	}

	allocations, tied := ComputeAllocations(testRound(2), bids)
	if len(allocations) != 0 {
		t.Fatalf("expected no allocations on tie, got %d", len(allocations))
	}
	if len(tied) != 2 {
		t.Fatalf("expected 2 tied bids, got %d", len(tied))
	}
	for _, b := range tied {
		if b.PlayerID != "p2" || b.Amount != 500 {
			t.Errorf("tied bid %s = %s/%d, want p2/500", b.ID, b.PlayerID, b.Amount)
		}
	}
}

func TestComputeAllocations_IncompleteTeamAveragePricing(t *testing.T) {
	// t1 and t2 are complete; t3 submitted one bid of the required two. The
	// incomplete winner is charged the regular-phase average, not its bid.
	bids := []store.Bid{
		bid("b1", "t1", "p1", 1000),
		bid("b2", "t1", "p2", 900),
		bid("b3", "t2", "p2", 800),
		bid("b4", "t2", "p3", 700),
		bid("b5", "t3", "p4", 50),
	}

	allocations, tied := ComputeAllocations(testRound(2), bids)
	if len(tied) != 0 {
		t.Fatalf("unexpected tie: %v", tied)
	}
	if len(allocations) != 3 {
		t.Fatalf("expected 3 allocations, got %d", len(allocations))
	}

	// Regular phase: t1 takes p1 at 1000, t2 takes p2 at 800. Average 900.
	incomplete := allocations[2]
	if incomplete.TeamID != "t3" || incomplete.PlayerID != "p4" {
		t.Fatalf("incomplete allocation = %+v, want t3/p4", incomplete)
	}
	if incomplete.Phase != store.PhaseIncomplete {
		t.Errorf("incomplete phase = %q, want incomplete", incomplete.Phase)
	}
	if incomplete.Amount != 900 {
		t.Errorf("incomplete amount = %d, want 900 (regular average)", incomplete.Amount)
	}
}

func TestComputeAllocations_IncompleteFallbackAmount(t *testing.T) {
	// Only incomplete teams bid, so there is no regular average to draw on.
	bids := []store.Bid{
		bid("b1", "t1", "p1", 50),
		bid("b2", "t2", "p2", 40),
	}

	allocations, tied := ComputeAllocations(testRound(3), bids)
	if len(tied) != 0 {
		t.Fatalf("unexpected tie: %v", tied)
	}
	if len(allocations) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(allocations))
	}
	for _, a := range allocations {
		if a.Amount != fallbackIncompleteAmount {
			t.Errorf("allocation %s amount = %d, want fallback %d", a.TeamID, a.Amount, fallbackIncompleteAmount)
		}
		if a.Phase != store.PhaseIncomplete {
			t.Errorf("allocation %s phase = %q, want incomplete", a.TeamID, a.Phase)
		}
	}
}

func TestComputeAllocations_IncompleteSkipsAllocatedPlayers(t *testing.T) {
	// Both teams are incomplete. t1 settles p1 first, so t2's higher bid on
	// p1 is unavailable and its bid on p3 wins instead.
	bids := []store.Bid{
		bid("b1", "t1", "p1", 1000),
		bid("b2", "t1", "p2", 900),
		bid("b3", "t2", "p1", 800),
		bid("b4", "t2", "p3", 100),
	}

	allocations, tied := ComputeAllocations(testRound(3), bids)
	if len(tied) != 0 {
		t.Fatalf("unexpected tie: %v", tied)
	}
	if len(allocations) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(allocations))
	}
	if allocations[1].TeamID != "t2" || allocations[1].PlayerID != "p3" {
		t.Errorf("t2 allocation = %+v, want p3 (p1 already settled)", allocations[1])
	}
}

func TestComputeAllocations_EmptyBids(t *testing.T) {
	allocations, tied := ComputeAllocations(testRound(2), nil)
	if len(allocations) != 0 || len(tied) != 0 {
		t.Fatalf("expected empty result, got %d allocations, %d tied", len(allocations), len(tied))
	}
}
