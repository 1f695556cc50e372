package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "mykharche/internal/log"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"amqp closed", amqp091.ErrClosed, true},
		{"wrapped closed", fmt.Errorf("publish message: %w", amqp091.ErrClosed), true},
		{"connection refused", errors.New("connection refused"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"other error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestEntryEvent_JSON(t *testing.T) {
	e := NewEntryEvent(EventExpenseSaved)
	e.EntryID = "e1"
	e.Amount = "150"

	data, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got["type"] != EventExpenseSaved || got["entry_id"] != "e1" || got["amount"] != "150" {
		t.Errorf("payload = %v", got)
	}
	if _, ok := got["category_id"]; ok {
		t.Error("empty category_id should be omitted")
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []EntryEvent
	closed bool
}

func (r *recordingPublisher) Publish(_ context.Context, e EntryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func TestAsyncPublisher_FlushesOnClose(t *testing.T) {
	rec := &recordingPublisher{}
	p := NewAsyncPublisher(rec, 8, applog.Discard())

	for _, typ := range []string{EventExpenseSaved, EventIncomeSaved, EventCategoryDeleted} {
		_ = p.Publish(context.Background(), NewEntryEvent(typ))
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 3 {
		t.Errorf("published %d events, want 3", len(rec.events))
	}
	if !rec.closed {
		t.Error("inner publisher not closed")
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	if err := p.Publish(context.Background(), NewEntryEvent(EventExpenseSaved)); err != nil {
		t.Error(err)
	}
}
