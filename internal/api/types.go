package api

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"mykharche/internal/core"
)

// Message is a backend reply that is either a bare string or {message}.
type Message string

func (m *Message) UnmarshalJSON(b []byte) error {
	*m = Message(decodeMessage(b))
	return nil
}

// flexTime accepts RFC 3339, plain dates and JS date strings.
type flexTime struct{ time.Time }

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	core.DateLayout,
	"Mon Jan 02 2006",
	"Mon Jan 2 2006",
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || strings.TrimSpace(s) == "" {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return nil
}

type expenseCategoryDTO struct {
	ID           string `json:"id"`
	MongoID      string `json:"_id"`
	CategoryName string `json:"categoryName"`
	CategoryType string `json:"categoryType"`
}

func (d expenseCategoryDTO) toCore() core.ExpenseCategory {
	id := d.ID
	if id == "" {
		id = d.MongoID
	}
	ct, err := core.ParseCategoryType(d.CategoryType)
	if err != nil {
		ct = core.CategoryType(d.CategoryType)
	}
	return core.ExpenseCategory{ID: id, CategoryName: d.CategoryName, CategoryType: ct}
}

func expenseCategoriesToCore(in []expenseCategoryDTO) []core.ExpenseCategory {
	out := make([]core.ExpenseCategory, 0, len(in))
	for _, d := range in {
		out = append(out, d.toCore())
	}
	return out
}

type incomeCategoryDTO struct {
	ID           string `json:"id"`
	MongoID      string `json:"_id"`
	CategoryName string `json:"categoryName"`
}

func (d incomeCategoryDTO) toCore() core.IncomeCategory {
	id := d.ID
	if id == "" {
		id = d.MongoID
	}
	return core.IncomeCategory{ID: id, CategoryName: d.CategoryName}
}

type expenseDTO struct {
	ID       string             `json:"_id"`
	ItemName string             `json:"itemName"`
	Amount   decimal.Decimal    `json:"amount"`
	Date     flexTime           `json:"date"`
	Category expenseCategoryDTO `json:"category"`
}

func (d expenseDTO) toCore() core.Expense {
	return core.Expense{
		ID:       d.ID,
		ItemName: d.ItemName,
		Amount:   d.Amount,
		Date:     d.Date.Time,
		Category: d.Category.toCore(),
	}
}

type incomeDTO struct {
	ID         string          `json:"_id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       flexTime        `json:"date"`
	Month      string          `json:"month"`
	Year       int             `json:"year"`
	CategoryID string          `json:"categoryId"`
	Source     struct {
		CategoryID string `json:"categoryId"`
		MongoID    string `json:"_id"`
		Category   string `json:"category"`
	} `json:"source"`
}

func (d incomeDTO) toCore() core.Income {
	categoryID := d.CategoryID
	if categoryID == "" {
		categoryID = d.Source.CategoryID
	}
	if categoryID == "" {
		categoryID = d.Source.MongoID
	}
	return core.Income{
		ID:           d.ID,
		Amount:       d.Amount,
		Date:         d.Date.Time,
		Month:        d.Month,
		Year:         d.Year,
		CategoryID:   categoryID,
		CategoryName: d.Source.Category,
	}
}

// AuthResult is returned by the signup, login, password and Google endpoints.
type AuthResult struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// Credentials for login and password updates.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// ExpenseInput is the payload for creating or updating an expense.
type ExpenseInput struct {
	Date       time.Time       `json:"date"`
	ItemName   string          `json:"itemName"`
	Amount     decimal.Decimal `json:"amount"`
	CategoryID string          `json:"categoryId"`
}

// IncomeInput is the payload for creating or editing an income.
type IncomeInput struct {
	Date       time.Time       `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	CategoryID string          `json:"categoryId"`
}

// MarshalJSON sends the amount as a JSON number.
func (in ExpenseInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date       time.Time   `json:"date"`
		ItemName   string      `json:"itemName"`
		Amount     json.Number `json:"amount"`
		CategoryID string      `json:"categoryId"`
	}{in.Date, in.ItemName, json.Number(in.Amount.String()), in.CategoryID})
}

// MarshalJSON sends the amount as a JSON number.
func (in IncomeInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date       time.Time   `json:"date"`
		Amount     json.Number `json:"amount"`
		CategoryID string      `json:"categoryId"`
	}{in.Date, json.Number(in.Amount.String()), in.CategoryID})
}
