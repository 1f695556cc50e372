package draft

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"mykharche/internal/core"
)

func TestMemoryStore_SaveRestore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	want := core.DraftEntry{ItemName: "Coffee", Amount: decimal.NewFromInt(150), StepIndex: 2}
	if err := s.Save(ctx, "d1", want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, found, err := s.Restore(ctx, "d1")
	if err != nil || !found {
		t.Fatalf("Restore() = %v, %v", found, err)
	}
	if got.ItemName != "Coffee" || !got.Amount.Equal(want.Amount) || got.StepIndex != 2 {
		t.Errorf("Restore() = %+v, want %+v", got, want)
	}
}

func TestMemoryStore_RestoreMissing(t *testing.T) {
	_, found, err := NewMemoryStore().Restore(context.Background(), "nobody")
	if err != nil || found {
		t.Errorf("Restore() = %v, %v, want not found", found, err)
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Save(ctx, "d1", core.DraftEntry{ItemName: "Tea"})
	_ = s.Save(ctx, "d2", core.DraftEntry{ItemName: "Bus"})

	if err := s.Clear(ctx, "d1"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, found, _ := s.Restore(ctx, "d1"); found {
		t.Error("d1 should be cleared")
	}
	if _, found, _ := s.Restore(ctx, "d2"); !found {
		t.Error("d2 should be untouched")
	}
}

func TestMemoryStore_EmptyDrawerID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.Save(ctx, "", core.DraftEntry{}); !errors.Is(err, ErrEmptyDrawerID) {
		t.Errorf("Save() error = %v", err)
	}
	if _, _, err := s.Restore(ctx, ""); !errors.Is(err, ErrEmptyDrawerID) {
		t.Errorf("Restore() error = %v", err)
	}
	if err := s.Clear(ctx, ""); !errors.Is(err, ErrEmptyDrawerID) {
		t.Errorf("Clear() error = %v", err)
	}
}

func TestMemoryStore_PurgeOlderThan(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	clock := now
	s := NewMemoryStore().WithClock(func() time.Time { return clock })

	_ = s.Save(ctx, "old", core.DraftEntry{ItemName: "a"})
	clock = now.Add(2 * time.Hour)
	_ = s.Save(ctx, "fresh", core.DraftEntry{ItemName: "b"})

	n, err := s.PurgeOlderThan(ctx, now.Add(time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("PurgeOlderThan() = %d, %v, want 1", n, err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if _, found, _ := s.Restore(ctx, "fresh"); !found {
		t.Error("fresh draft should survive")
	}
}

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name     string
		values   map[string]string
		want     core.DraftEntry
		wantFind bool
	}{
		{"none", map[string]string{}, core.DraftEntry{}, false},
		{"item only", map[string]string{KeyItemName: "Coffee"}, core.DraftEntry{ItemName: "Coffee"}, true},
		{"counter clamps", map[string]string{KeyNextButtonCounter: "7"}, core.DraftEntry{StepIndex: 2}, true},
		{"bad counter ignored", map[string]string{KeyNextButtonCounter: "x"}, core.DraftEntry{}, true},
		{"amount", map[string]string{KeyAmount: "12.5"}, core.DraftEntry{Amount: decimal.RequireFromString("12.5")}, true},
		{"undefined amount", map[string]string{KeyAmount: "undefined"}, core.DraftEntry{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Decode(tt.values)
			if found != tt.wantFind {
				t.Errorf("found = %v, want %v", found, tt.wantFind)
			}
			if got.ItemName != tt.want.ItemName || got.StepIndex != tt.want.StepIndex || !got.Amount.Equal(tt.want.Amount) {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}

	encoded := Encode(core.DraftEntry{StepIndex: 1})
	if _, ok := encoded[KeyItemName]; ok {
		t.Error("blank item name should not be encoded")
	}
	if encoded[KeyNextButtonCounter] != "1" {
		t.Errorf("counter = %q", encoded[KeyNextButtonCounter])
	}
}
