package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Expense form steps. A field is visible once StepIndex reaches its step.
const (
	StepItemName = 0
	StepAmount   = 1
	StepCategory = 2
)

// DraftEntry is the unsaved state of an open entry drawer.
type DraftEntry struct {
	ItemName           string
	Amount             decimal.Decimal
	Date               time.Time
	SelectedCategoryID string
	StepIndex          int
}

func (d DraftEntry) ShowAmount() bool   { return d.StepIndex >= StepAmount }
func (d DraftEntry) ShowCategory() bool { return d.StepIndex >= StepCategory }

// IsEmpty reports whether nothing worth persisting was entered.
func (d DraftEntry) IsEmpty() bool {
	return strings.TrimSpace(d.ItemName) == "" && d.Amount.IsZero() && d.StepIndex == 0
}
