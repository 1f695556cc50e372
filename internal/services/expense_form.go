package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"mykharche/internal/api"
	"mykharche/internal/core"
)

const (
	MsgItemNameRequired = "Please enter item name"
	MsgAmountPositive   = "Amount should be positive"
	MsgCategoryRequired = "Please select the category"
	MsgSaving           = "Saving..."
)

// ErrSaveInFlight is returned while an earlier submit of the same drawer
// is still waiting on the backend.
var ErrSaveInFlight = errors.New("save already in progress")

// ExpenseInput is what the browser posts on every step.
type ExpenseInput struct {
	ItemName   string
	Amount     string
	CategoryID string
}

// ExpenseForm is the three step expense form of one drawer.
type ExpenseForm struct {
	ItemName   string
	AmountText string
	CategoryID string
	Step       int
	// EditingID is set when the form updates an existing expense.
	EditingID string
	Error     string
}

func MsgAmountRequired(itemName string) string {
	return fmt.Sprintf("Please enter the amount you spent on %s", itemName)
}

func (f ExpenseForm) Editing() bool { return f.EditingID != "" }

func (f ExpenseForm) ShowAmount() bool   { return f.Step >= core.StepAmount }
func (f ExpenseForm) ShowCategory() bool { return f.Step >= core.StepCategory }

// ButtonLabel is "Save" on the last step and "Next" before it.
func (f ExpenseForm) ButtonLabel() string {
	if f.Step >= core.StepCategory {
		return "Save"
	}
	return "Next"
}

// Apply copies the visible fields of in onto the form.
func (f *ExpenseForm) Apply(in ExpenseInput) {
	f.ItemName = in.ItemName
	if f.ShowAmount() {
		f.AmountText = in.Amount
	}
	if f.ShowCategory() {
		f.CategoryID = in.CategoryID
	}
}

// Validate checks the fields unlocked so far and returns the first problem,
// or an empty string.
func (f ExpenseForm) Validate() string {
	if strings.TrimSpace(f.ItemName) == "" {
		return MsgItemNameRequired
	}
	if f.ShowAmount() {
		_, err := core.ParseAmount(f.AmountText)
		switch {
		case errors.Is(err, core.ErrAmountRequired):
			return MsgAmountRequired(f.ItemName)
		case errors.Is(err, core.ErrAmountNegative):
			return MsgAmountPositive
		}
	}
	if f.ShowCategory() && f.CategoryID == "" {
		return MsgCategoryRequired
	}
	return ""
}

// Draft snapshots the form for the draft store.
func (f ExpenseForm) Draft() core.DraftEntry {
	amount, _ := core.ParseAmount(f.AmountText)
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return core.DraftEntry{
		ItemName:           f.ItemName,
		Amount:             amount,
		SelectedCategoryID: f.CategoryID,
		StepIndex:          f.Step,
	}
}

// Restore loads a stored draft. The selected category is never restored.
func (f *ExpenseForm) Restore(d core.DraftEntry) {
	f.ItemName = d.ItemName
	f.AmountText = core.FormatAmount(d.Amount)
	f.Step = d.StepIndex
	if f.Step > core.StepCategory {
		f.Step = core.StepCategory
	}
	f.CategoryID = ""
}

// Prefill loads an existing expense for editing. A category that no longer
// exists is left unselected.
func (f *ExpenseForm) Prefill(e core.Expense, categories []core.ExpenseCategory) {
	f.EditingID = e.ID
	f.ItemName = e.ItemName
	f.AmountText = core.FormatAmount(e.Amount)
	f.Step = core.StepCategory
	f.CategoryID = ""
	if e.Category.Selectable() {
		if _, ok := core.FindExpenseCategory(categories, e.Category.ID); ok || len(categories) == 0 {
			f.CategoryID = e.Category.ID
		}
	}
	f.Error = ""
}

// Payload builds the backend payload. Only valid after Validate passed on the last step.
func (f ExpenseForm) Payload(dates *core.DateSelector) api.ExpenseInput {
	amount, _ := core.ParseAmount(f.AmountText)
	return api.ExpenseInput{
		Date:       dates.Selected(),
		ItemName:   strings.TrimSpace(f.ItemName),
		Amount:     amount,
		CategoryID: f.CategoryID,
	}
}
