package auction

import (
	"context"
	"testing"
	"time"

	"github.com/Shamsear/ssleague-sub005/internal/db"
	"github.com/Shamsear/ssleague-sub005/internal/store"
	"github.com/Shamsear/ssleague-sub005/internal/testutil"
)

func newTestLockManager(t *testing.T, opts ...LockManagerOption) (*db.DB, *LockManager) {
	t.Helper()

	database := testutil.NewTestDB(t)
	manager, err := NewLockManager(database, opts...)
	if err != nil {
		t.Fatalf("create lock manager: %v", err)
	}
	return database, manager
}

func seedRound(t *testing.T, database *db.DB, roundID string) {
	t.Helper()

	err := database.Queries.CreateRound(context.Background(), store.CreateRoundParams{
		ID:               roundID,
		SeasonID:         "season-1",
		Sport:            store.SportFootball,
		MaxBidsPerTeam:   1,
		Status:           store.RoundExpiredPending,
		FinalizationMode: store.FinalizationManual,
		EndTime:          time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("seed round %s: %v", roundID, err)
	}
}

func TestLockManager_AcquireAndRelease(t *testing.T) {
	database, manager := newTestLockManager(t)
	ctx := context.Background()
	seedRound(t, database, "round-1")

	acquired, err := manager.Acquire(ctx, "round-1", "op-a")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !acquired {
		t.Fatal("expected to acquire a free lock")
	}

	lock, held, err := manager.Holder(ctx, "round-1")
	if err != nil {
		t.Fatalf("holder: %v", err)
	}
	if !held || lock.HolderID != "op-a" {
		t.Fatalf("expected op-a to hold the lock, got held=%v holder=%q", held, lock.HolderID)
	}

	if err := manager.Release(ctx, "round-1", "op-a"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, held, _ := manager.Holder(ctx, "round-1"); held {
		t.Fatal("lock should be free after release")
	}

	// A different operator can take the released lease.
	acquired, err = manager.Acquire(ctx, "round-1", "op-b")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	if !acquired {
		t.Fatal("released lock should be acquirable by another operator")
	}
}

func TestLockManager_SecondAcquireFailsFast(t *testing.T) {
	database, manager := newTestLockManager(t)
	ctx := context.Background()
	seedRound(t, database, "round-1")

	if _, err := manager.Acquire(ctx, "round-1", "op-a"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	acquired, err := manager.Acquire(ctx, "round-1", "op-b")
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if acquired {
		t.Fatal("second operator must not acquire a held lock")
	}

	// The original lease is untouched.
	lock, held, err := manager.Holder(ctx, "round-1")
	if err != nil {
		t.Fatalf("holder: %v", err)
	}
	if !held || lock.HolderID != "op-a" {
		t.Fatalf("expected op-a to still hold the lock, got held=%v holder=%q", held, lock.HolderID)
	}
}

func TestLockManager_ReleaseByNonHolderIsNoOp(t *testing.T) {
	database, manager := newTestLockManager(t)
	ctx := context.Background()
	seedRound(t, database, "round-1")

	if _, err := manager.Acquire(ctx, "round-1", "op-a"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := manager.Release(ctx, "round-1", "op-b"); err != nil {
		t.Fatalf("release by non-holder: %v", err)
	}

	if _, held, _ := manager.Holder(ctx, "round-1"); !held {
		t.Fatal("non-holder release must not drop the lease")
	}
}

func TestLockManager_IndependentRounds(t *testing.T) {
	database, manager := newTestLockManager(t)
	ctx := context.Background()
	seedRound(t, database, "round-1")
	seedRound(t, database, "round-2")

	if acquired, _ := manager.Acquire(ctx, "round-1", "op-a"); !acquired {
		t.Fatal("acquire round-1")
	}
	if acquired, _ := manager.Acquire(ctx, "round-2", "op-b"); !acquired {
		t.Fatal("a lease on round-1 must not block round-2")
	}
}

func TestIsStale(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := 5 * time.Minute

	database, manager := newTestLockManager(t, WithLockTTL(ttl), WithClock(func() time.Time { return base }))
	ctx := context.Background()
	seedRound(t, database, "round-1")

	if _, err := manager.Acquire(ctx, "round-1", "op-a"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	lock, _, err := manager.Holder(ctx, "round-1")
	if err != nil {
		t.Fatalf("holder: %v", err)
	}

	if IsStale(lock, base.Add(4*time.Minute), ttl) {
		t.Error("lease within TTL reported stale")
	}
	if !IsStale(lock, base.Add(5*time.Minute), ttl) {
		t.Error("lease at TTL boundary should be stale")
	}
	if !IsStale(lock, base.Add(time.Hour), ttl) {
		t.Error("old lease should be stale")
	}
}

func TestLockManager_ReapStale(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	database, manager := newTestLockManager(t, WithLockTTL(5*time.Minute), WithClock(clock))
	ctx := context.Background()
	seedRound(t, database, "round-old")
	seedRound(t, database, "round-new")

	if _, err := manager.Acquire(ctx, "round-old", "op-a"); err != nil {
		t.Fatalf("acquire old: %v", err)
	}

	// Fresh lease acquired later.
	now = now.Add(10 * time.Minute)
	if _, err := manager.Acquire(ctx, "round-new", "op-b"); err != nil {
		t.Fatalf("acquire new: %v", err)
	}

	reaped, err := manager.ReapStale(ctx)
	if err != nil {
		t.Fatalf("reap: %v", err)
	}
	if reaped != 1 {
		t.Fatalf("expected 1 reaped lease, got %d", reaped)
	}

	if _, held, _ := manager.Holder(ctx, "round-old"); held {
		t.Error("stale lease survived the reaper")
	}
	if _, held, _ := manager.Holder(ctx, "round-new"); !held {
		t.Error("fresh lease was reaped")
	}

	// Once reaped the round can be re-acquired.
	if acquired, _ := manager.Acquire(ctx, "round-old", "op-c"); !acquired {
		t.Error("reaped round should be acquirable")
	}
}
