package auction

import (
	"errors"
	"fmt"
)

// ErrorKind classifies workflow failures so calling handlers can translate
// them into user-facing messages without string matching.
type ErrorKind string

const (
	// KindDatabase covers caller errors such as a missing round or an empty
	// staged allocation set. Not retried automatically.
	KindDatabase ErrorKind = "database"
	// KindTiebreaker is raised during preview when tied bids are found. The
	// round halts until the tiebreaker is resolved externally.
	KindTiebreaker ErrorKind = "tiebreaker"
	// KindBudget is raised during apply when staged allocations exceed a
	// team's current balance. The staged set stays intact for retry.
	KindBudget ErrorKind = "budget"
	// KindLock means another operator holds the round lease. Callers should
	// surface "finalization in progress" rather than retry.
	KindLock ErrorKind = "lock"
)

// TiedBid is the caller-facing view of one member of a detected tie.
type TiedBid struct {
	TeamName   string `json:"team_name"`
	PlayerName string `json:"player_name"`
	Amount     int64  `json:"amount"`
}

// ErrorDetails carries structured context for budget and tiebreaker errors.
type ErrorDetails struct {
	Errors       []string  `json:"errors,omitempty"`
	TiebreakerID string    `json:"tiebreakerId,omitempty"`
	TiedBids     []TiedBid `json:"tiedBids,omitempty"`
}

// Error is the structured result returned for every expected failure in the
// finalization workflow.
type Error struct {
	Kind    ErrorKind     `json:"type"`
	Message string        `json:"message"`
	Details *ErrorDetails `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// AsError unwraps err into a workflow *Error when possible.
func AsError(err error) (*Error, bool) {
	var workflowErr *Error
	if errors.As(err, &workflowErr) {
		return workflowErr, true
	}
	return nil, false
}

func newDatabaseError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDatabase, Message: fmt.Sprintf(format, args...)}
}

func newLockError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindLock, Message: fmt.Sprintf(format, args...)}
}

func newBudgetError(validationErrors []string) *Error {
	return &Error{
		Kind:    KindBudget,
		Message: "Budget validation failed",
		Details: &ErrorDetails{Errors: validationErrors},
	}
}

func newTiebreakerError(tiebreakerID string, tiedBids []TiedBid) *Error {
	return &Error{
		Kind:    KindTiebreaker,
		Message: "Tie detected. Tiebreaker must be resolved before finalization.",
		Details: &ErrorDetails{
			TiebreakerID: tiebreakerID,
			TiedBids:     tiedBids,
		},
	}
}
