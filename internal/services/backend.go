// Package services holds the entry drawer logic: category lists, the
// step forms and the draft handling around them.
package services

import (
	"context"
	"time"

	"mykharche/internal/api"
	"mykharche/internal/core"
)

// ExpenseBackend is the part of the REST API the expense drawer needs.
type ExpenseBackend interface {
	ExpenseCategories(ctx context.Context) ([]core.ExpenseCategory, error)
	AddExpenseCategory(ctx context.Context, name string, categoryType core.CategoryType) (core.ExpenseCategory, string, error)
	DeleteExpenseCategory(ctx context.Context, id string) ([]core.ExpenseCategory, string, error)
	AddExpense(ctx context.Context, in api.ExpenseInput) (string, error)
	UpdateExpense(ctx context.Context, id string, in api.ExpenseInput) (string, error)
	GetExpenseByID(ctx context.Context, id string) (core.Expense, error)
}

// IncomeBackend is the part of the REST API the income drawer needs.
type IncomeBackend interface {
	IncomeCategories(ctx context.Context) ([]core.IncomeCategory, error)
	AddIncome(ctx context.Context, in api.IncomeInput) (string, error)
	EditIncome(ctx context.Context, id string, in api.IncomeInput) (string, error)
	GetIncomeByID(ctx context.Context, id string) (core.Income, error)
}

// EntriesBackend lists and deletes saved entries.
type EntriesBackend interface {
	ExpensesForDate(ctx context.Context, day string) (core.DayExpenses, error)
	DeleteExpense(ctx context.Context, id string) (string, error)
	IncomeForMonth(ctx context.Context, t time.Time) (core.MonthIncome, error)
	DeleteIncome(ctx context.Context, id string) (string, error)
}

// Backend is everything a signed-in page may call.
type Backend interface {
	ExpenseBackend
	IncomeBackend
	EntriesBackend
}

var _ Backend = (*api.Session)(nil)

const (
	ToastSuccess = "success"
	ToastError   = "error"

	MsgSomethingWentWrong = "Something went wrong, try again"
)

// Toast is a one-shot notification shown after an action.
type Toast struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func SuccessToast(message, fallback string) *Toast {
	if message == "" {
		message = fallback
	}
	return &Toast{Status: ToastSuccess, Message: message}
}

func ErrorToast(message string) *Toast {
	if message == "" {
		message = MsgSomethingWentWrong
	}
	return &Toast{Status: ToastError, Message: message}
}
