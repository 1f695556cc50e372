package services

import (
	"errors"

	"mykharche/internal/api"
	"mykharche/internal/core"
)

const MsgIncomeAmountRequired = "Please enter the amount"

// IncomeInput is what the browser posts from the income drawer.
type IncomeInput struct {
	Amount     string
	CategoryID string
}

// IncomeForm is the single step income form of one drawer.
type IncomeForm struct {
	AmountText string
	CategoryID string
	EditingID  string
	Error      string
}

func (f IncomeForm) Editing() bool { return f.EditingID != "" }

func (f *IncomeForm) Apply(in IncomeInput) {
	f.AmountText = in.Amount
	f.CategoryID = in.CategoryID
}

// CanSave reports whether the amount is positive and a category is picked.
func (f IncomeForm) CanSave() bool {
	return f.Validate() == ""
}

func (f IncomeForm) Validate() string {
	_, err := core.ParseAmount(f.AmountText)
	switch {
	case errors.Is(err, core.ErrAmountRequired):
		return MsgIncomeAmountRequired
	case errors.Is(err, core.ErrAmountNegative):
		return MsgAmountPositive
	}
	if f.CategoryID == "" {
		return MsgCategoryRequired
	}
	return ""
}

// Prefill loads an existing income for editing.
func (f *IncomeForm) Prefill(in core.Income) {
	f.EditingID = in.ID
	f.AmountText = core.FormatAmount(in.Amount)
	f.CategoryID = in.CategoryID
	f.Error = ""
}

func (f IncomeForm) Payload(dates *core.DateSelector) api.IncomeInput {
	amount, _ := core.ParseAmount(f.AmountText)
	return api.IncomeInput{
		Date:       dates.Selected(),
		Amount:     amount,
		CategoryID: f.CategoryID,
	}
}
