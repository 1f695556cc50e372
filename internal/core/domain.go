package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DeletedCategoryName is the label shown for entries whose category was removed.
const DeletedCategoryName = "Deleted Category"

// CategoryType classifies an expense category.
type CategoryType string

const (
	// Essentials keeps the backend's historical wire spelling.
	Essentials  CategoryType = "Essentails"
	Leisure     CategoryType = "Leisure"
	Loans       CategoryType = "Loans"
	Investments CategoryType = "Investments"
)

// CategoryTypes lists the types in display order.
var CategoryTypes = []CategoryType{Essentials, Leisure, Loans, Investments}

var ErrInvalidCategoryType = errors.New("invalid category type")

// ParseCategoryType accepts the wire value or the display label, case-insensitively.
func ParseCategoryType(s string) (CategoryType, error) {
	s = strings.TrimSpace(s)
	for _, t := range CategoryTypes {
		if strings.EqualFold(s, string(t)) || strings.EqualFold(s, t.Label()) {
			return t, nil
		}
	}
	return "", ErrInvalidCategoryType
}

// Label returns the human readable name.
func (t CategoryType) Label() string {
	if t == Essentials {
		return "Essentials"
	}
	return string(t)
}

// Examples returns the hint shown under the type choice.
func (t CategoryType) Examples() string {
	switch t {
	case Essentials:
		return "Groceries, etc"
	case Leisure:
		return "Eating out, movie, etc"
	case Loans:
		return "Home loan, personal loan, etc"
	case Investments:
		return "Mutual funds, Shares, etc"
	}
	return ""
}

type (
	ExpenseCategory struct {
		ID           string
		CategoryName string
		CategoryType CategoryType
	}

	// IncomeCategory is a read-only system category.
	IncomeCategory struct {
		ID           string
		CategoryName string
	}

	Expense struct {
		ID       string
		ItemName string
		Amount   decimal.Decimal
		Date     time.Time
		Category ExpenseCategory
	}

	DayExpenses struct {
		Expenses []Expense
		Total    decimal.Decimal
	}

	Income struct {
		ID           string
		Amount       decimal.Decimal
		Date         time.Time
		Month        string
		Year         int
		CategoryID   string
		CategoryName string
	}

	MonthIncome struct {
		Incomes       []Income
		SelectedMonth string
		Total         decimal.Decimal
	}
)

// DisplayName falls back to the deleted placeholder for removed categories.
func (c ExpenseCategory) DisplayName() string {
	if strings.TrimSpace(c.CategoryName) == "" {
		return DeletedCategoryName
	}
	return c.CategoryName
}

// Selectable reports whether an edit form may preselect this category.
func (c ExpenseCategory) Selectable() bool {
	return c.ID != "" && c.CategoryName != DeletedCategoryName && strings.TrimSpace(c.CategoryName) != ""
}

// FindExpenseCategory returns the category with the given id.
func FindExpenseCategory(list []ExpenseCategory, id string) (ExpenseCategory, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return ExpenseCategory{}, false
}

// FindIncomeCategory returns the category with the given id.
func FindIncomeCategory(list []IncomeCategory, id string) (IncomeCategory, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return IncomeCategory{}, false
}
