package auction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Shamsear/ssleague-sub005/internal/db"
	"github.com/Shamsear/ssleague-sub005/internal/store"
)

// DefaultLockTTL is how long a round lease may be held before the reaper
// treats it as abandoned.
const DefaultLockTTL = 5 * time.Minute

// LockManager hands out non-blocking single-holder leases per round.
// Acquire fails fast when a lease exists rather than queueing; the UI is
// expected to tell the second operator that finalization is in progress.
// Expiry is not self-enforced: staleness is an explicit query so a reaper
// job (or any caller) decides when to reclaim abandoned leases.
type LockManager struct {
	db  *db.DB
	ttl time.Duration
	now func() time.Time
}

type LockManagerOption func(*LockManager)

// WithLockTTL overrides the staleness threshold.
func WithLockTTL(ttl time.Duration) LockManagerOption {
	return func(m *LockManager) {
		m.ttl = ttl
	}
}

// WithClock injects the time source, keeping staleness checks deterministic
// in tests.
func WithClock(now func() time.Time) LockManagerOption {
	return func(m *LockManager) {
		m.now = now
	}
}

func NewLockManager(database *db.DB, opts ...LockManagerOption) (*LockManager, error) {
	if database == nil {
		return nil, errors.New("lock manager requires a database")
	}
	m := &LockManager{
		db:  database,
		ttl: DefaultLockTTL,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Acquire attempts to take the round lease for holderID. It returns false
// without side effects when another holder has the lease.
func (m *LockManager) Acquire(ctx context.Context, roundID, holderID string) (bool, error) {
	err := m.db.Queries.InsertRoundLock(ctx, roundID, holderID, m.now())
	if err != nil {
		if store.IsLockConflict(err) {
			return false, nil
		}
		return false, fmt.Errorf("acquire round lock: %w", err)
	}
	return true, nil
}

// Release drops the lease when holderID is the current holder; any other
// caller's release is a no-op.
func (m *LockManager) Release(ctx context.Context, roundID, holderID string) error {
	if err := m.db.Queries.DeleteRoundLock(ctx, roundID, holderID); err != nil {
		return fmt.Errorf("release round lock: %w", err)
	}
	return nil
}

// Holder returns the current lease, if any.
func (m *LockManager) Holder(ctx context.Context, roundID string) (store.RoundLock, bool, error) {
	lock, err := m.db.Queries.GetRoundLock(ctx, roundID)
	if errors.Is(err, sql.ErrNoRows) {
		return store.RoundLock{}, false, nil
	}
	if err != nil {
		return store.RoundLock{}, false, fmt.Errorf("get round lock: %w", err)
	}
	return lock, true, nil
}

// IsStale reports whether a lease acquired at lock.AcquiredAt has outlived
// ttl as of now. The wall clock is an argument so callers stay in control
// of time.
func IsStale(lock store.RoundLock, now time.Time, ttl time.Duration) bool {
	return now.Sub(lock.AcquiredAt) >= ttl
}

// ReapStale clears every lease older than the manager's TTL and returns how
// many were removed. Intended for the background sweeper.
func (m *LockManager) ReapStale(ctx context.Context) (int64, error) {
	cutoff := m.now().Add(-m.ttl)
	reaped, err := m.db.Queries.DeleteStaleRoundLocks(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("reap stale round locks: %w", err)
	}
	if reaped > 0 {
		log.Ctx(ctx).Warn().Int64("reaped", reaped).Msg("Cleared stale round locks")
	}
	return reaped, nil
}
