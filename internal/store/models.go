package store

import (
	"database/sql"
	"time"
)

// Round statuses. Status is mutated only by the finalization engine and the
// time-based expiry sweep; RoundCompleted is terminal.
const (
	RoundActive              = "active"
	RoundExpiredPending      = "expired_pending_finalization"
	RoundPendingFinalization = "pending_finalization"
	RoundTiebreakerPending   = "tiebreaker_pending"
	RoundCompleted           = "completed"
)

// Finalization modes.
const (
	FinalizationAuto   = "auto"
	FinalizationManual = "manual"
)

// Bid statuses.
const (
	BidActive = "active"
	BidWon    = "won"
	BidLost   = "lost"
)

// Allocation phases.
const (
	PhaseRegular    = "regular"
	PhaseIncomplete = "incomplete"
)

// Tiebreaker statuses.
const (
	TiebreakerPending  = "pending"
	TiebreakerResolved = "resolved"
)

// Sports recognized by dual-currency seasons.
const (
	SportFootball = "football"
	SportCricket  = "cricket"
)

type Round struct {
	ID               string
	SeasonID         string
	Position         sql.NullString
	Sport            string
	MaxBidsPerTeam   int64
	Status           string
	FinalizationMode string
	EndTime          time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Bid struct {
	ID              string
	RoundID         string
	TeamID          string
	TeamName        string
	PlayerID        string
	PlayerName      string
	Amount          int64
	Status          string
	Phase           sql.NullString
	ActualBidAmount sql.NullInt64
}

type Team struct {
	ID             string
	SeasonID       string
	Name           string
	CurrencySystem string
	Budget         int64
	FootballBudget int64
	CricketBudget  int64
}

// Balance is the discriminated view of a team's funds. Exactly one of the
// two shapes applies to a team, selected by its currency_system column.
type Balance interface {
	// Available reports the spendable amount for the given sport.
	Available(sport string) int64
	// Field names the budget column the given sport draws from.
	Field(sport string) BudgetField
}

type SingleBalance struct {
	Budget int64
}

func (b SingleBalance) Available(string) int64   { return b.Budget }
func (b SingleBalance) Field(string) BudgetField { return BudgetFieldSingle }

type DualBalance struct {
	Football int64
	Cricket  int64
}

func (b DualBalance) Available(sport string) int64 {
	if sport == SportCricket {
		return b.Cricket
	}
	return b.Football
}

func (b DualBalance) Field(sport string) BudgetField {
	if sport == SportCricket {
		return BudgetFieldCricket
	}
	return BudgetFieldFootball
}

// Balance returns the tagged balance for the team's currency system.
func (t Team) Balance() Balance {
	if t.CurrencySystem == "dual" {
		return DualBalance{Football: t.FootballBudget, Cricket: t.CricketBudget}
	}
	return SingleBalance{Budget: t.Budget}
}

// BudgetField identifies which budget column a deduction applies to.
type BudgetField int

const (
	BudgetFieldSingle BudgetField = iota
	BudgetFieldFootball
	BudgetFieldCricket
)

func (f BudgetField) column() string {
	switch f {
	case BudgetFieldFootball:
		return "football_budget"
	case BudgetFieldCricket:
		return "cricket_budget"
	default:
		return "budget"
	}
}

type Player struct {
	ID               string
	SeasonID         string
	Name             string
	Position         sql.NullString
	IsSold           bool
	TeamID           sql.NullString
	AcquisitionValue sql.NullInt64
	RoundID          sql.NullString
}

type TeamPlayer struct {
	ID            int64
	TeamID        string
	PlayerID      string
	PlayerName    string
	PurchasePrice int64
	RoundID       sql.NullString
	AcquiredAt    time.Time
}

type PendingAllocation struct {
	ID         int64
	RoundID    string
	TeamID     string
	TeamName   string
	PlayerID   string
	PlayerName string
	Amount     int64
	BidID      sql.NullString
	Phase      string
	CreatedAt  time.Time
}

type Tiebreaker struct {
	ID             string
	RoundID        string
	PlayerID       string
	PlayerName     string
	OriginalAmount int64
	Status         string
	CreatedAt      time.Time
}

type TiebreakerTeam struct {
	ID            int64
	TiebreakerID  string
	TeamID        string
	TeamName      string
	OriginalBidID string
	Submitted     bool
}

type RoundLock struct {
	RoundID    string
	HolderID   string
	AcquiredAt time.Time
}
