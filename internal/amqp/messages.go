package amqp

import (
	"encoding/json"
	"time"
)

// Event types double as routing keys.
const (
	EventExpenseSaved    = "expense.saved"
	EventExpenseDeleted  = "expense.deleted"
	EventIncomeSaved     = "income.saved"
	EventIncomeDeleted   = "income.deleted"
	EventCategoryCreated = "category.created"
	EventCategoryDeleted = "category.deleted"
)

// EntryEvent announces a change the user made through the frontend.
// Amounts travel as decimal strings.
type EntryEvent struct {
	Type       string    `json:"type"`
	EntryID    string    `json:"entry_id,omitempty"`
	CategoryID string    `json:"category_id,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	Date       string    `json:"date,omitempty"`
	Edited     bool      `json:"edited,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEntryEvent stamps an event with the current time.
func NewEntryEvent(eventType string) EntryEvent {
	return EntryEvent{Type: eventType, OccurredAt: time.Now().UTC()}
}

func (e EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
