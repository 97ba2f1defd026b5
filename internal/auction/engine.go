package auction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Shamsear/ssleague-sub005/internal/db"
	"github.com/Shamsear/ssleague-sub005/internal/store"
)

// Notifier receives committee-facing events from the engine. Deliveries are
// best-effort: a failed notification never fails the workflow.
type Notifier interface {
	TiebreakerCreated(ctx context.Context, round store.Round, tiebreakerID string, tiedBids []TiedBid) error
	RoundFinalized(ctx context.Context, round store.Round, allocationCount int) error
}

// Engine drives the round finalization state machine:
//
//	active → expired_pending_finalization → {tiebreaker_pending | pending_finalization} → completed
//
// Preview and Apply require the caller to hold the round lease; Cancel is
// safe without it since nothing has been committed yet.
type Engine struct {
	db       *db.DB
	locks    *LockManager
	notifier Notifier
	now      func() time.Time
}

type EngineOption func(*Engine)

// WithNotifier attaches a committee notifier.
func WithNotifier(n Notifier) EngineOption {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithEngineClock injects the time source used for round expiry checks.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(database *db.DB, locks *LockManager, opts ...EngineOption) (*Engine, error) {
	if database == nil {
		return nil, errors.New("finalization engine requires a database")
	}
	if locks == nil {
		return nil, errors.New("finalization engine requires a lock manager")
	}
	e := &Engine{
		db:    database,
		locks: locks,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Summary aggregates a staged allocation set for committee review.
type Summary struct {
	TotalPlayers   int   `json:"total_players"`
	TotalSpent     int64 `json:"total_spent"`
	AverageBid     int64 `json:"average_bid"`
	TeamsAllocated int   `json:"teams_allocated"`
	TeamsSkipped   int   `json:"teams_skipped"`
}

// PreviewResult is returned by a successful preview.
type PreviewResult struct {
	Allocations []Allocation `json:"allocations"`
	Summary     Summary      `json:"summary"`
	Warnings    []string     `json:"warnings,omitempty"`
}

// ApplyResult is returned by a successful apply.
type ApplyResult struct {
	AllocationsApplied int `json:"allocations_count"`
}

// Expire transitions a manual-mode round from active to
// expired_pending_finalization once its end time has passed. Auto-mode
// rounds self-finalize elsewhere and are rejected here. Calling Expire on a
// round that is already expired-pending is a no-op.
func (e *Engine) Expire(ctx context.Context, roundID string) error {
	round, err := e.getRound(ctx, roundID)
	if err != nil {
		return err
	}

	if round.FinalizationMode != store.FinalizationManual {
		return newDatabaseError("Expire is only available for rounds with manual finalization mode")
	}
	if round.Status == store.RoundExpiredPending {
		return nil
	}
	if round.Status != store.RoundActive {
		return newDatabaseError("Cannot expire round in status '%s'", round.Status)
	}
	if e.now().Before(round.EndTime) {
		return newDatabaseError("Round has not expired yet")
	}

	if err := e.db.Queries.UpdateRoundStatus(ctx, round.ID, store.RoundExpiredPending); err != nil {
		return fmt.Errorf("update round status: %w", err)
	}

	log.Ctx(ctx).Info().
		Str("round_id", round.ID).
		Str("season_id", round.SeasonID).
		Msg("Round expired, awaiting committee finalization")
	return nil
}

// ExpireDueRounds expires every manual-mode round whose end time has passed.
// Run from the scheduler sweep; returns how many rounds transitioned.
func (e *Engine) ExpireDueRounds(ctx context.Context) (int, error) {
	due, err := e.db.Queries.ListExpiredManualRounds(ctx, e.now())
	if err != nil {
		return 0, fmt.Errorf("list due rounds: %w", err)
	}

	expired := 0
	for _, round := range due {
		if err := e.Expire(ctx, round.ID); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("round_id", round.ID).Msg("Failed to expire round")
			continue
		}
		expired++
	}
	return expired, nil
}

// PreviewRound settles the round's current bids into proposed allocations
// and stages them. Equivalent to ComputeAllocations followed by Preview,
// with ties detected at either step halting the round in tiebreaker_pending.
func (e *Engine) PreviewRound(ctx context.Context, roundID, holderID string) (*PreviewResult, error) {
	round, err := e.previewChecks(ctx, roundID, holderID)
	if err != nil {
		return nil, err
	}

	bids, err := e.db.Queries.ListActiveBidsForRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	if len(bids) == 0 {
		return nil, newDatabaseError("No active bids found for this round")
	}

	if tied := DetectTies(bids); len(tied) > 0 {
		return nil, e.haltForTiebreaker(ctx, round, tied)
	}

	allocations, tied := ComputeAllocations(round, bids)
	if len(tied) > 0 {
		return nil, e.haltForTiebreaker(ctx, round, tied)
	}

	if err := e.stage(ctx, round, allocations); err != nil {
		return nil, err
	}
	return e.buildPreviewResult(ctx, round, allocations)
}

// Preview stages caller-provided allocations for the round after checking
// the current bid set for ties. Budgets are deliberately not validated here:
// balances may legitimately change between preview and apply, so validation
// happens only at apply time against current state.
func (e *Engine) Preview(ctx context.Context, roundID, holderID string, proposed []Allocation) (*PreviewResult, error) {
	round, err := e.previewChecks(ctx, roundID, holderID)
	if err != nil {
		return nil, err
	}

	bids, err := e.db.Queries.ListActiveBidsForRound(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}

	if tied := DetectTies(bids); len(tied) > 0 {
		return nil, e.haltForTiebreaker(ctx, round, tied)
	}

	if err := e.stage(ctx, round, proposed); err != nil {
		return nil, err
	}
	return e.buildPreviewResult(ctx, round, proposed)
}

func (e *Engine) previewChecks(ctx context.Context, roundID, holderID string) (store.Round, error) {
	if err := e.requireLock(ctx, roundID, holderID); err != nil {
		return store.Round{}, err
	}

	round, err := e.getRound(ctx, roundID)
	if err != nil {
		return store.Round{}, err
	}

	if round.FinalizationMode != store.FinalizationManual {
		return store.Round{}, newDatabaseError("Preview finalization is only available for rounds with manual finalization mode")
	}

	switch round.Status {
	case store.RoundCompleted:
		return store.Round{}, newDatabaseError("Round is already finalized")
	case store.RoundPendingFinalization:
		return store.Round{}, newDatabaseError("Round already has pending allocations. Cancel them first to re-preview.")
	case store.RoundTiebreakerPending:
		return store.Round{}, newDatabaseError("Round has a pending tiebreaker that must be resolved first")
	case store.RoundActive:
		if e.now().Before(round.EndTime) {
			return store.Round{}, newDatabaseError("Round has not expired yet")
		}
	}

	return round, nil
}

// haltForTiebreaker records one tiebreaker per conflicted player, moves the
// round to tiebreaker_pending, and returns the tiebreaker error. No
// allocations are staged.
func (e *Engine) haltForTiebreaker(ctx context.Context, round store.Round, tiedBids []store.Bid) error {
	byPlayer := make(map[string][]store.Bid)
	var playerOrder []string
	for _, bid := range tiedBids {
		if _, seen := byPlayer[bid.PlayerID]; !seen {
			playerOrder = append(playerOrder, bid.PlayerID)
		}
		byPlayer[bid.PlayerID] = append(byPlayer[bid.PlayerID], bid)
	}

	var firstTiebreakerID string
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		for _, playerID := range playerOrder {
			playerBids := byPlayer[playerID]
			tiebreakerID := uuid.NewString()
			if firstTiebreakerID == "" {
				firstTiebreakerID = tiebreakerID
			}

			if err := txdb.Queries.CreateTiebreaker(ctx, store.CreateTiebreakerParams{
				ID:             tiebreakerID,
				RoundID:        round.ID,
				PlayerID:       playerID,
				PlayerName:     playerBids[0].PlayerName,
				OriginalAmount: playerBids[0].Amount,
			}); err != nil {
				return fmt.Errorf("create tiebreaker: %w", err)
			}

			for _, bid := range playerBids {
				if err := txdb.Queries.AddTiebreakerTeam(ctx, store.AddTiebreakerTeamParams{
					TiebreakerID:  tiebreakerID,
					TeamID:        bid.TeamID,
					TeamName:      bid.TeamName,
					OriginalBidID: bid.ID,
				}); err != nil {
					return fmt.Errorf("add tiebreaker team: %w", err)
				}
			}
		}

		return txdb.Queries.UpdateRoundStatus(ctx, round.ID, store.RoundTiebreakerPending)
	})
	if err != nil {
		return fmt.Errorf("record tiebreaker: %w", err)
	}

	details := tiedBidDetails(tiedBids)
	log.Ctx(ctx).Warn().
		Str("round_id", round.ID).
		Str("tiebreaker_id", firstTiebreakerID).
		Int("tied_bids", len(tiedBids)).
		Msg("Tie detected, round halted for tiebreaker")

	if e.notifier != nil {
		if err := e.notifier.TiebreakerCreated(ctx, round, firstTiebreakerID, details); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("Failed to send tiebreaker notification")
		}
	}

	return newTiebreakerError(firstTiebreakerID, details)
}

// stage replaces the round's staged allocation set. A re-preview fully
// replaces any prior set.
func (e *Engine) stage(ctx context.Context, round store.Round, allocations []Allocation) error {
	err := e.db.RunInTx(ctx, func(txdb *db.DB) error {
		if err := txdb.Queries.DeletePendingAllocations(ctx, round.ID); err != nil {
			return fmt.Errorf("clear staged allocations: %w", err)
		}

		for _, allocation := range allocations {
			bidID := sql.NullString{String: allocation.BidID, Valid: allocation.BidID != ""}
			if err := txdb.Queries.InsertPendingAllocation(ctx, store.InsertPendingAllocationParams{
				RoundID:    round.ID,
				TeamID:     allocation.TeamID,
				TeamName:   allocation.TeamName,
				PlayerID:   allocation.PlayerID,
				PlayerName: allocation.PlayerName,
				Amount:     allocation.Amount,
				BidID:      bidID,
				Phase:      allocation.Phase,
			}); err != nil {
				return fmt.Errorf("stage allocation: %w", err)
			}
		}

		return txdb.Queries.UpdateRoundStatus(ctx, round.ID, store.RoundPendingFinalization)
	})
	if err != nil {
		return fmt.Errorf("stage allocations: %w", err)
	}

	log.Ctx(ctx).Info().
		Str("round_id", round.ID).
		Int("allocations", len(allocations)).
		Msg("Pending allocations staged for review")
	return nil
}

// Apply commits the round's staged allocations. Budgets are re-validated
// against current team state inside the same transaction that writes the
// commit, so the whole read-validate-write sequence is one unit: either
// every allocation's effects land or none do, and a budget failure leaves
// balances, rosters, the staged set, and the round status untouched.
func (e *Engine) Apply(ctx context.Context, roundID, holderID string) (*ApplyResult, error) {
	if err := e.requireLock(ctx, roundID, holderID); err != nil {
		return nil, err
	}

	round, err := e.getRound(ctx, roundID)
	if err != nil {
		return nil, err
	}

	switch {
	case round.Status == store.RoundCompleted:
		return nil, newDatabaseError("Round is already finalized")
	case round.Status != store.RoundPendingFinalization:
		return nil, newDatabaseError("Cannot apply pending allocations. Round status is '%s'. Expected 'pending_finalization'.", round.Status)
	}

	var applied int
	err = e.db.RunInTx(ctx, func(txdb *db.DB) error {
		staged, err := txdb.Queries.ListPendingAllocations(ctx, roundID)
		if err != nil {
			return fmt.Errorf("list staged allocations: %w", err)
		}
		if len(staged) == 0 {
			return newDatabaseError("No pending allocations found for this round")
		}

		result, err := ValidateBudgets(ctx, txdb.Queries, round.Sport, staged)
		if err != nil {
			return err
		}
		if !result.OK() {
			return newBudgetError(result.Errors)
		}

		for _, allocation := range staged {
			if err := e.commitAllocation(ctx, txdb, round, allocation); err != nil {
				return err
			}
		}

		if err := txdb.Queries.MarkRemainingBidsLost(ctx, roundID); err != nil {
			return fmt.Errorf("mark losing bids: %w", err)
		}
		if err := txdb.Queries.DeletePendingAllocations(ctx, roundID); err != nil {
			return fmt.Errorf("delete staged allocations: %w", err)
		}
		if err := txdb.Queries.UpdateRoundStatus(ctx, roundID, store.RoundCompleted); err != nil {
			return fmt.Errorf("complete round: %w", err)
		}

		applied = len(staged)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("round_id", round.ID).
		Int("allocations", applied).
		Msg("Round finalized")

	if e.notifier != nil {
		if err := e.notifier.RoundFinalized(ctx, round, applied); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("Failed to send finalization notification")
		}
	}

	return &ApplyResult{AllocationsApplied: applied}, nil
}

// commitAllocation applies one allocation inside the apply transaction:
// deduct the amount from the correct budget, add the player to the roster
// with its acquisition cost, mark the player sold, and settle the winning
// bid. Incomplete-phase winners keep their original bid amount on record
// since the charged price is the round average, not the bid.
func (e *Engine) commitAllocation(ctx context.Context, txdb *db.DB, round store.Round, allocation store.PendingAllocation) error {
	team, err := txdb.Queries.GetTeam(ctx, allocation.TeamID)
	if err != nil {
		return fmt.Errorf("load team %s: %w", allocation.TeamID, err)
	}

	field := team.Balance().Field(round.Sport)
	if err := txdb.Queries.DeductBudget(ctx, team.ID, field, allocation.Amount); err != nil {
		return fmt.Errorf("deduct budget: %w", err)
	}

	if err := txdb.Queries.AddTeamPlayer(ctx, store.AddTeamPlayerParams{
		TeamID:        allocation.TeamID,
		PlayerID:      allocation.PlayerID,
		PlayerName:    allocation.PlayerName,
		PurchasePrice: allocation.Amount,
		RoundID:       round.ID,
	}); err != nil {
		return fmt.Errorf("add player to roster: %w", err)
	}

	if err := txdb.Queries.MarkPlayerSold(ctx, store.MarkPlayerSoldParams{
		PlayerID:         allocation.PlayerID,
		TeamID:           allocation.TeamID,
		AcquisitionValue: allocation.Amount,
		RoundID:          round.ID,
	}); err != nil {
		return fmt.Errorf("mark player sold: %w", err)
	}

	if !allocation.BidID.Valid {
		return nil
	}

	var actualBidAmount sql.NullInt64
	if allocation.Phase == store.PhaseIncomplete {
		bid, err := txdb.Queries.GetBid(ctx, allocation.BidID.String)
		if err != nil {
			return fmt.Errorf("load winning bid: %w", err)
		}
		actualBidAmount = sql.NullInt64{Int64: bid.Amount, Valid: true}
	}
	if err := txdb.Queries.MarkBidWon(ctx, allocation.BidID.String, allocation.Phase, actualBidAmount); err != nil {
		return fmt.Errorf("mark winning bid: %w", err)
	}
	return nil
}

// Cancel discards the round's staged allocations and reverts it to
// expired_pending_finalization so a fresh preview can run. Safe regardless
// of lock state: nothing has been committed yet.
func (e *Engine) Cancel(ctx context.Context, roundID string) error {
	round, err := e.getRound(ctx, roundID)
	if err != nil {
		return err
	}

	if round.Status != store.RoundPendingFinalization {
		return newDatabaseError("Round has no pending allocations to cancel")
	}

	err = e.db.RunInTx(ctx, func(txdb *db.DB) error {
		if err := txdb.Queries.DeletePendingAllocations(ctx, roundID); err != nil {
			return fmt.Errorf("delete staged allocations: %w", err)
		}
		return txdb.Queries.UpdateRoundStatus(ctx, roundID, store.RoundExpiredPending)
	})
	if err != nil {
		return fmt.Errorf("cancel pending allocations: %w", err)
	}

	log.Ctx(ctx).Info().Str("round_id", roundID).Msg("Pending allocations cancelled")
	return nil
}

// PendingAllocations returns the round's staged set with its review
// summary.
func (e *Engine) PendingAllocations(ctx context.Context, roundID string) ([]store.PendingAllocation, Summary, error) {
	round, err := e.getRound(ctx, roundID)
	if err != nil {
		return nil, Summary{}, err
	}

	staged, err := e.db.Queries.ListPendingAllocations(ctx, roundID)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("list staged allocations: %w", err)
	}

	allocations := make([]Allocation, 0, len(staged))
	for _, pa := range staged {
		allocations = append(allocations, Allocation{
			TeamID:     pa.TeamID,
			TeamName:   pa.TeamName,
			PlayerID:   pa.PlayerID,
			PlayerName: pa.PlayerName,
			Amount:     pa.Amount,
			BidID:      pa.BidID.String,
			Phase:      pa.Phase,
		})
	}

	summary, err := e.summarize(ctx, round, allocations)
	if err != nil {
		return nil, Summary{}, err
	}
	return staged, summary, nil
}

func (e *Engine) buildPreviewResult(ctx context.Context, round store.Round, allocations []Allocation) (*PreviewResult, error) {
	summary, err := e.summarize(ctx, round, allocations)
	if err != nil {
		return nil, err
	}

	var warnings []string
	incomplete := 0
	for _, allocation := range allocations {
		if allocation.Phase == store.PhaseIncomplete {
			incomplete++
		}
	}
	if incomplete > 0 {
		warnings = append(warnings, fmt.Sprintf("%d team(s) received incomplete/random allocations", incomplete))
	}
	if summary.TeamsSkipped > 0 {
		warnings = append(warnings, fmt.Sprintf("%d team(s) did not receive any allocation", summary.TeamsSkipped))
	}

	return &PreviewResult{
		Allocations: allocations,
		Summary:     summary,
		Warnings:    warnings,
	}, nil
}

func (e *Engine) summarize(ctx context.Context, round store.Round, allocations []Allocation) (Summary, error) {
	summary := Summary{TotalPlayers: len(allocations)}

	teams := make(map[string]bool)
	for _, allocation := range allocations {
		summary.TotalSpent += allocation.Amount
		teams[allocation.TeamID] = true
	}
	summary.TeamsAllocated = len(teams)
	if len(allocations) > 0 {
		n := int64(len(allocations))
		summary.AverageBid = (summary.TotalSpent + n/2) / n
	}

	totalTeams, err := e.db.Queries.CountTeamsInSeason(ctx, round.SeasonID)
	if err != nil {
		return Summary{}, fmt.Errorf("count season teams: %w", err)
	}
	if skipped := int(totalTeams) - summary.TeamsAllocated; skipped > 0 {
		summary.TeamsSkipped = skipped
	}

	return summary, nil
}

func (e *Engine) requireLock(ctx context.Context, roundID, holderID string) error {
	if holderID == "" {
		return newLockError("A holder identity is required to finalize a round")
	}

	lock, held, err := e.locks.Holder(ctx, roundID)
	if err != nil {
		return err
	}
	if !held {
		return newLockError("The round lock must be acquired before previewing or applying")
	}
	if lock.HolderID != holderID {
		return newLockError("Another operator is already finalizing this round")
	}
	return nil
}

func (e *Engine) getRound(ctx context.Context, roundID string) (store.Round, error) {
	round, err := e.db.Queries.GetRound(ctx, roundID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Round{}, newDatabaseError("Round not found")
	}
	if err != nil {
		return store.Round{}, fmt.Errorf("get round: %w", err)
	}
	return round, nil
}

func tiedBidDetails(tiedBids []store.Bid) []TiedBid {
	details := make([]TiedBid, 0, len(tiedBids))
	for _, bid := range tiedBids {
		details = append(details, TiedBid{
			TeamName:   bid.TeamName,
			PlayerName: bid.PlayerName,
			Amount:     bid.Amount,
		})
	}
	return details
}
