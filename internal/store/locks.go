package store

import (
	"context"
	"time"

	"github.com/mattn/go-sqlite3"
)

const insertRoundLock = `
INSERT INTO round_locks (round_id, holder_id, acquired_at)
VALUES (?, ?, ?)
`

// InsertRoundLock records a lease for the round. The primary key on
// round_id makes a second insert fail while a lease exists; callers should
// treat a constraint violation as "lock already held".
func (q *Queries) InsertRoundLock(ctx context.Context, roundID, holderID string, acquiredAt time.Time) error {
	_, err := q.db.ExecContext(ctx, insertRoundLock, roundID, holderID, acquiredAt)
	return err
}

// IsLockConflict reports whether err is the primary-key violation raised
// when a lease already exists for the round. Other constraint failures, such
// as a missing round, are real errors and not conflicts.
func IsLockConflict(err error) bool {
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

const getRoundLock = `
SELECT round_id, holder_id, acquired_at
FROM round_locks
WHERE round_id = ?
`

func (q *Queries) GetRoundLock(ctx context.Context, roundID string) (RoundLock, error) {
	row := q.db.QueryRowContext(ctx, getRoundLock, roundID)
	var l RoundLock
	err := row.Scan(&l.RoundID, &l.HolderID, &l.AcquiredAt)
	return l, err
}

const deleteRoundLock = `
DELETE FROM round_locks
WHERE round_id = ? AND holder_id = ?
`

// DeleteRoundLock releases the lease only when holderID matches the current
// holder. Releasing someone else's lease is a no-op.
func (q *Queries) DeleteRoundLock(ctx context.Context, roundID, holderID string) error {
	_, err := q.db.ExecContext(ctx, deleteRoundLock, roundID, holderID)
	return err
}

const deleteStaleRoundLocks = `
DELETE FROM round_locks
WHERE acquired_at < ?
`

// DeleteStaleRoundLocks clears leases acquired before the cutoff. Run by the
// background reaper, not by the lock manager itself.
func (q *Queries) DeleteStaleRoundLocks(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteStaleRoundLocks, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
