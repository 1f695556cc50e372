package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"mykharche/internal/core"
)

// IncomeCategories returns the default income categories. Both a bare list
// and a {list} wrapper are accepted.
func (s *Session) IncomeCategories(ctx context.Context) ([]core.IncomeCategory, error) {
	var raw json.RawMessage
	if err := s.client.do(ctx, http.MethodGet, "/api/income/getDefaultIncomeCategories", s.token, nil, &raw); err != nil {
		return nil, err
	}

	var list []incomeCategoryDTO
	if err := json.Unmarshal(raw, &list); err != nil {
		var wrapped struct {
			List []incomeCategoryDTO `json:"list"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, err
		}
		list = wrapped.List
	}

	out := make([]core.IncomeCategory, 0, len(list))
	for _, d := range list {
		out = append(out, d.toCore())
	}
	return out, nil
}

func (s *Session) AddIncome(ctx context.Context, in IncomeInput) (string, error) {
	var msg Message
	err := s.client.do(ctx, http.MethodPost, "/api/income/addNewIncome", s.token, in, &msg)
	return string(msg), err
}

func (s *Session) EditIncome(ctx context.Context, id string, in IncomeInput) (string, error) {
	var msg Message
	err := s.client.do(ctx, http.MethodPut, "/api/income/editIncome/"+url.PathEscape(id), s.token, in, &msg)
	return string(msg), err
}

func (s *Session) DeleteIncome(ctx context.Context, id string) (string, error) {
	var msg Message
	err := s.client.do(ctx, http.MethodDelete, "/api/income/deleteIncome/"+url.PathEscape(id), s.token, nil, &msg)
	return string(msg), err
}

func (s *Session) GetIncomeByID(ctx context.Context, id string) (core.Income, error) {
	var out incomeDTO
	if err := s.client.do(ctx, http.MethodGet, "/api/income/getIncome/"+url.PathEscape(id), s.token, nil, &out); err != nil {
		return core.Income{}, err
	}
	income := out.toCore()
	if income.ID == "" {
		income.ID = id
	}
	return income, nil
}

// IncomeForMonth lists incomes for the month containing t. The backend
// expects the English month name, e.g. /month/March/year/2024.
func (s *Session) IncomeForMonth(ctx context.Context, t time.Time) (core.MonthIncome, error) {
	var out struct {
		IncomesForSelectedMonth []incomeDTO     `json:"incomesForSelectedMonth"`
		SelectedMonth           string          `json:"selectedMonth"`
		TotalIncomeForMonth     decimal.Decimal `json:"totalIncomeForMonth"`
	}
	path := "/api/income/getIncome/month/" + t.Month().String() + "/year/" + strconv.Itoa(t.Year())
	if err := s.client.do(ctx, http.MethodGet, path, s.token, nil, &out); err != nil {
		return core.MonthIncome{}, err
	}

	result := core.MonthIncome{SelectedMonth: out.SelectedMonth, Total: out.TotalIncomeForMonth}
	if result.SelectedMonth == "" {
		result.SelectedMonth = t.Month().String()
	}
	for _, in := range out.IncomesForSelectedMonth {
		result.Incomes = append(result.Incomes, in.toCore())
	}
	return result, nil
}
