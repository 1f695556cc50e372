// Package draft keeps the unsaved contents of an entry drawer while the
// user detours through the new-category view.
package draft

import (
	"context"
	"errors"
	"strconv"
	"time"

	"mykharche/internal/core"
)

// Fixed keys, one stored value each.
const (
	KeyItemName          = "itemName"
	KeyAmount            = "amount"
	KeyNextButtonCounter = "nextButtonCounter"
)

// Keys lists every key Clear removes.
var Keys = []string{KeyItemName, KeyAmount, KeyNextButtonCounter}

var ErrEmptyDrawerID = errors.New("draft: empty drawer id")

// Store persists drafts keyed by drawer id.
type Store interface {
	Save(ctx context.Context, drawerID string, entry core.DraftEntry) error
	// Restore reports false when none of the fixed keys are stored.
	Restore(ctx context.Context, drawerID string) (core.DraftEntry, bool, error)
	Clear(ctx context.Context, drawerID string) error
}

// Purger drops drafts not touched since the cutoff.
type Purger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// Encode splits an entry into its stored key/value pairs. Blank values are left out.
func Encode(entry core.DraftEntry) map[string]string {
	values := map[string]string{
		KeyNextButtonCounter: strconv.Itoa(entry.StepIndex),
	}
	if entry.ItemName != "" {
		values[KeyItemName] = entry.ItemName
	}
	if !entry.Amount.IsZero() {
		values[KeyAmount] = entry.Amount.String()
	}
	return values
}

// Decode rebuilds an entry from whichever keys are present.
func Decode(values map[string]string) (core.DraftEntry, bool) {
	var entry core.DraftEntry
	found := false

	if v, ok := values[KeyItemName]; ok {
		entry.ItemName = v
		found = true
	}
	if v, ok := values[KeyAmount]; ok {
		found = true
		if amount, err := core.ParseAmount(v); err == nil || errors.Is(err, core.ErrAmountNegative) {
			entry.Amount = amount
		}
	}
	if v, ok := values[KeyNextButtonCounter]; ok {
		found = true
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			entry.StepIndex = min(n, core.StepCategory)
		}
	}
	return entry, found
}
