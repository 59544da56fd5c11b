package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/unsent-letters/internal/domain"
)

func seedCapsule(t *testing.T, db *gorm.DB, unlock time.Time, public bool) *domain.MemoryCapsule {
	t.Helper()
	c := &domain.MemoryCapsule{Content: "open me", UnlockDate: unlock, AllowPublicSharing: public}
	if err := CreateCapsule(context.Background(), db, c); err != nil {
		t.Fatalf("CreateCapsule: %v", err)
	}
	return c
}

func TestCapsules_CreateGetUnlock(t *testing.T) {
	db := newTestDB(t, &domain.MemoryCapsule{})
	ctx := context.Background()
	now := time.Now().UTC()

	c := seedCapsule(t, db, now.Add(time.Hour), true)
	if c.ID == "" || c.CreatedAt.IsZero() || c.IsUnlocked {
		t.Fatalf("unexpected capsule %+v", c)
	}

	got, err := GetCapsule(ctx, db, c.ID)
	if err != nil || got.Content != "open me" {
		t.Fatalf("GetCapsule = %+v, %v", got, err)
	}
	if _, err := GetCapsule(ctx, db, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Not due yet.
	ok, err := UnlockCapsule(ctx, db, c.ID, now)
	if err != nil || ok {
		t.Fatalf("early unlock: ok=%v err=%v", ok, err)
	}

	at := now.Add(2 * time.Hour)
	ok, err = UnlockCapsule(ctx, db, c.ID, at)
	if err != nil || !ok {
		t.Fatalf("unlock: ok=%v err=%v", ok, err)
	}
	// Only the first call transitions.
	ok, err = UnlockCapsule(ctx, db, c.ID, at.Add(time.Minute))
	if err != nil || ok {
		t.Fatalf("second unlock: ok=%v err=%v", ok, err)
	}

	got, _ = GetCapsule(ctx, db, c.ID)
	if !got.IsUnlocked || got.UnlockedAt == nil || !got.UnlockedAt.Equal(at) {
		t.Fatalf("unlock not persisted: %+v", got)
	}
}

func TestCapsules_PublicFeed(t *testing.T) {
	db := newTestDB(t, &domain.MemoryCapsule{})
	ctx := context.Background()
	now := time.Now().UTC()

	older := seedCapsule(t, db, now.Add(-2*time.Hour), true)
	newer := seedCapsule(t, db, now.Add(-time.Hour), true)
	// One private, one not yet due.
	seedCapsule(t, db, now.Add(-time.Hour), false)
	seedCapsule(t, db, now.Add(time.Hour), true)

	if n, newest, err := PublicCapsulesStats(ctx, db); err != nil || n != 0 || newest != nil {
		t.Fatalf("nothing unlocked yet: n=%d newest=%v err=%v", n, newest, err)
	}

	n, err := UnlockDueCapsules(ctx, db, now)
	if err != nil || n != 3 {
		t.Fatalf("UnlockDueCapsules = %d, %v; want 3", n, err)
	}

	total, err := CountPublicCapsules(ctx, db)
	if err != nil || total != 2 {
		t.Fatalf("CountPublicCapsules = %d, %v; want 2", total, err)
	}
	list, err := ListPublicCapsulesPage(ctx, db, 0, 10)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListPublicCapsulesPage = %d, %v", len(list), err)
	}
	if list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Fatalf("order = [%s %s]; want latest unlock date first", list[0].ID, list[1].ID)
	}

	count, newest, err := PublicCapsulesStats(ctx, db)
	if err != nil || count != 2 || newest == nil || !newest.Equal(now) {
		t.Fatalf("stats = (%d, %v, %v)", count, newest, err)
	}
}
