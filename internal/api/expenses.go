package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"mykharche/internal/core"
)

func (s *Session) AddExpense(ctx context.Context, in ExpenseInput) (string, error) {
	var msg Message
	err := s.client.do(ctx, http.MethodPost, "/api/expense/addExpense", s.token, in, &msg)
	return string(msg), err
}

func (s *Session) UpdateExpense(ctx context.Context, id string, in ExpenseInput) (string, error) {
	body := struct {
		EditedData ExpenseInput `json:"editedData"`
	}{in}

	var msg Message
	err := s.client.do(ctx, http.MethodPut, "/api/expense/updateExpenseByExpenseId/"+url.PathEscape(id), s.token, body, &msg)
	return string(msg), err
}

func (s *Session) GetExpenseByID(ctx context.Context, id string) (core.Expense, error) {
	var out expenseDTO
	if err := s.client.do(ctx, http.MethodGet, "/api/expense/getExpenseById/"+url.PathEscape(id), s.token, nil, &out); err != nil {
		return core.Expense{}, err
	}
	expense := out.toCore()
	if expense.ID == "" {
		expense.ID = id
	}
	return expense, nil
}

// ExpensesForDate lists the expenses recorded on day (formatted YYYY-MM-DD).
func (s *Session) ExpensesForDate(ctx context.Context, day string) (core.DayExpenses, error) {
	var out struct {
		Expenses           []expenseDTO    `json:"expenses"`
		TotalExpenseAmount decimal.Decimal `json:"totalExpenseAmount"`
	}
	path := "/api/expense/getUserExpensesForSelectedDate/" + url.PathEscape(day)
	if err := s.client.do(ctx, http.MethodGet, path, s.token, nil, &out); err != nil {
		return core.DayExpenses{}, err
	}

	result := core.DayExpenses{Total: out.TotalExpenseAmount}
	for _, e := range out.Expenses {
		result.Expenses = append(result.Expenses, e.toCore())
	}
	return result, nil
}

func (s *Session) DeleteExpense(ctx context.Context, id string) (string, error) {
	var msg Message
	err := s.client.do(ctx, http.MethodDelete, "/api/expense/deleteExpenseById/"+url.PathEscape(id), s.token, nil, &msg)
	return string(msg), err
}

func (s *Session) ExpenseCategories(ctx context.Context) ([]core.ExpenseCategory, error) {
	var out []expenseCategoryDTO
	if err := s.client.do(ctx, http.MethodGet, "/api/expense/getUserExpenseCategories", s.token, nil, &out); err != nil {
		return nil, err
	}
	return expenseCategoriesToCore(out), nil
}

// AddExpenseCategory creates a category and returns it with its server id.
func (s *Session) AddExpenseCategory(ctx context.Context, name string, categoryType core.CategoryType) (core.ExpenseCategory, string, error) {
	body := struct {
		CategoryName string `json:"categoryName"`
		CategoryType string `json:"categoryType"`
	}{name, string(categoryType)}

	var out struct {
		ExpenseCategoryID string `json:"expenseCategoryId"`
		Message           string `json:"message"`
	}
	if err := s.client.do(ctx, http.MethodPost, "/api/expense/addExpenseCategory", s.token, body, &out); err != nil {
		return core.ExpenseCategory{}, "", err
	}
	return core.ExpenseCategory{
		ID:           out.ExpenseCategoryID,
		CategoryName: name,
		CategoryType: categoryType,
	}, out.Message, nil
}

// DeleteExpenseCategory removes a category and returns the server's remaining list.
func (s *Session) DeleteExpenseCategory(ctx context.Context, id string) ([]core.ExpenseCategory, string, error) {
	body := struct {
		ExpenseCategoryID string `json:"expenseCategoryId"`
	}{id}

	var out struct {
		UpdatedCategoriesList []expenseCategoryDTO `json:"updatedCategoriesList"`
		Message               string               `json:"message"`
	}
	if err := s.client.do(ctx, http.MethodDelete, "/api/expense/deleteExpenseCategory", s.token, body, &out); err != nil {
		return nil, "", err
	}
	return expenseCategoriesToCore(out.UpdatedCategoriesList), out.Message, nil
}
