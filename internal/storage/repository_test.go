package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"mykharche/internal/core"
	"mykharche/internal/draft"
	applog "mykharche/internal/log"
)

var _ draft.Store = (*SQLiteRepository)(nil)
var _ draft.Purger = (*SQLiteRepository)(nil)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "drafts.db"), applog.Discard())
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepository_SaveRestoreClear(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	want := core.DraftEntry{ItemName: "Coffee", Amount: decimal.NewFromInt(150), StepIndex: 2}
	if err := repo.Save(ctx, "d1", want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, found, err := repo.Restore(ctx, "d1")
	if err != nil || !found {
		t.Fatalf("Restore() = %v, %v", found, err)
	}
	if got.ItemName != want.ItemName || !got.Amount.Equal(want.Amount) || got.StepIndex != want.StepIndex {
		t.Errorf("Restore() = %+v, want %+v", got, want)
	}

	if err := repo.Clear(ctx, "d1"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, found, _ := repo.Restore(ctx, "d1"); found {
		t.Error("draft should be gone after Clear")
	}
}

func TestSQLiteRepository_SaveReplacesKeys(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_ = repo.Save(ctx, "d1", core.DraftEntry{ItemName: "Coffee", Amount: decimal.NewFromInt(3), StepIndex: 2})
	_ = repo.Save(ctx, "d1", core.DraftEntry{ItemName: "Tea", StepIndex: 1})

	got, _, err := repo.Restore(ctx, "d1")
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got.ItemName != "Tea" || !got.Amount.IsZero() || got.StepIndex != 1 {
		t.Errorf("stale keys survived: %+v", got)
	}
}

func TestSQLiteRepository_PurgeOlderThan(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	clock := base
	repo := newTestRepo(t).WithClock(func() time.Time { return clock })

	_ = repo.Save(ctx, "old", core.DraftEntry{ItemName: "a", Amount: decimal.NewFromInt(1)})
	clock = base.Add(48 * time.Hour)
	_ = repo.Save(ctx, "fresh", core.DraftEntry{ItemName: "b"})

	n, err := repo.PurgeOlderThan(ctx, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("PurgeOlderThan() error = %v", err)
	}
	if n != 1 {
		t.Errorf("PurgeOlderThan() = %d, want 1 drawer", n)
	}
	if _, found, _ := repo.Restore(ctx, "old"); found {
		t.Error("old draft should be purged")
	}
	if _, found, _ := repo.Restore(ctx, "fresh"); !found {
		t.Error("fresh draft should survive")
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	v1, err := MigrateUp(path)
	if err != nil {
		t.Fatalf("first MigrateUp() error = %v", err)
	}
	v2, err := MigrateUp(path)
	if err != nil {
		t.Fatalf("second MigrateUp() error = %v", err)
	}
	if v1 != 1 || v2 != 1 {
		t.Errorf("versions = %d, %d, want 1", v1, v2)
	}
}
