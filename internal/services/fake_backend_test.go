package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"mykharche/internal/api"
	"mykharche/internal/core"
)

var errBackend = errors.New("backend unavailable")

// fakeBackend records calls and serves canned data.
type fakeBackend struct {
	mu sync.Mutex

	expenseCategories []core.ExpenseCategory
	incomeCategories  []core.IncomeCategory
	expense           core.Expense
	income            core.Income

	failExpenseCategories bool
	failIncomeCategories  bool
	failAddCategory       bool
	failDeleteCategory    bool
	failSave              bool
	failGet               bool

	addedExpenses   []api.ExpenseInput
	updatedExpenses map[string]api.ExpenseInput
	addedIncomes    []api.IncomeInput
	editedIncomes   map[string]api.IncomeInput
	incomeCatCalls  int
	calls           int

	block chan struct{}
}

func (f *fakeBackend) count() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeBackend) ExpenseCategories(context.Context) ([]core.ExpenseCategory, error) {
	f.count()
	if f.failExpenseCategories {
		return nil, errBackend
	}
	return append([]core.ExpenseCategory(nil), f.expenseCategories...), nil
}

func (f *fakeBackend) AddExpenseCategory(_ context.Context, name string, t core.CategoryType) (core.ExpenseCategory, string, error) {
	f.count()
	if f.failAddCategory {
		return core.ExpenseCategory{}, "", errBackend
	}
	c := core.ExpenseCategory{ID: "new-" + name, CategoryName: name, CategoryType: t}
	f.mu.Lock()
	f.expenseCategories = append(f.expenseCategories, c)
	f.mu.Unlock()
	return c, "Category created", nil
}

func (f *fakeBackend) DeleteExpenseCategory(_ context.Context, id string) ([]core.ExpenseCategory, string, error) {
	f.count()
	if f.failDeleteCategory {
		return nil, "", errBackend
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []core.ExpenseCategory
	for _, c := range f.expenseCategories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	f.expenseCategories = kept
	return append([]core.ExpenseCategory(nil), kept...), "Category deleted", nil
}

func (f *fakeBackend) AddExpense(_ context.Context, in api.ExpenseInput) (string, error) {
	f.count()
	if f.block != nil {
		<-f.block
	}
	if f.failSave {
		return "", errBackend
	}
	f.mu.Lock()
	f.addedExpenses = append(f.addedExpenses, in)
	f.mu.Unlock()
	return "Expense added", nil
}

func (f *fakeBackend) UpdateExpense(_ context.Context, id string, in api.ExpenseInput) (string, error) {
	f.count()
	if f.failSave {
		return "", errBackend
	}
	f.mu.Lock()
	if f.updatedExpenses == nil {
		f.updatedExpenses = map[string]api.ExpenseInput{}
	}
	f.updatedExpenses[id] = in
	f.mu.Unlock()
	return "Expense updated", nil
}

func (f *fakeBackend) GetExpenseByID(context.Context, string) (core.Expense, error) {
	f.count()
	if f.failGet {
		return core.Expense{}, errBackend
	}
	return f.expense, nil
}

func (f *fakeBackend) IncomeCategories(context.Context) ([]core.IncomeCategory, error) {
	f.count()
	f.mu.Lock()
	f.incomeCatCalls++
	f.mu.Unlock()
	if f.failIncomeCategories {
		return nil, errBackend
	}
	return append([]core.IncomeCategory(nil), f.incomeCategories...), nil
}

func (f *fakeBackend) AddIncome(_ context.Context, in api.IncomeInput) (string, error) {
	f.count()
	if f.failSave {
		return "", errBackend
	}
	f.mu.Lock()
	f.addedIncomes = append(f.addedIncomes, in)
	f.mu.Unlock()
	return "Income added", nil
}

func (f *fakeBackend) EditIncome(_ context.Context, id string, in api.IncomeInput) (string, error) {
	f.count()
	if f.failSave {
		return "", errBackend
	}
	f.mu.Lock()
	if f.editedIncomes == nil {
		f.editedIncomes = map[string]api.IncomeInput{}
	}
	f.editedIncomes[id] = in
	f.mu.Unlock()
	return "Income updated", nil
}

func (f *fakeBackend) GetIncomeByID(context.Context, string) (core.Income, error) {
	f.count()
	if f.failGet {
		return core.Income{}, errBackend
	}
	return f.income, nil
}

func (f *fakeBackend) ExpensesForDate(context.Context, string) (core.DayExpenses, error) {
	f.count()
	return core.DayExpenses{}, nil
}

func (f *fakeBackend) DeleteExpense(context.Context, string) (string, error) {
	f.count()
	if f.failSave {
		return "", errBackend
	}
	return "deleted", nil
}

func (f *fakeBackend) IncomeForMonth(context.Context, time.Time) (core.MonthIncome, error) {
	f.count()
	return core.MonthIncome{}, nil
}

func (f *fakeBackend) DeleteIncome(context.Context, string) (string, error) {
	f.count()
	if f.failSave {
		return "", errBackend
	}
	return "Income deleted", nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var _ Backend = (*fakeBackend)(nil)
