package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"mykharche/internal/amqp"
	"mykharche/internal/cache"
	"mykharche/internal/core"
	applog "mykharche/internal/log"
)

// incomeCategoriesKey is the single key of the shared income category cache.
const incomeCategoriesKey = "default"

var ErrCategoryFieldsRequired = errors.New("category name and type are required")

// CategoryStore holds one drawer's view of the category lists.
type CategoryStore struct {
	mu      sync.RWMutex
	expense []core.ExpenseCategory
	income  []core.IncomeCategory

	incomeCache cache.Cache[[]core.IncomeCategory]
	events      amqp.Publisher
	logger      *applog.Logger
}

// NewCategoryStore returns an empty store. incomeCache and events may be nil.
func NewCategoryStore(incomeCache cache.Cache[[]core.IncomeCategory], events amqp.Publisher, logger *applog.Logger) *CategoryStore {
	if events == nil {
		events = amqp.NoopPublisher{}
	}
	return &CategoryStore{
		incomeCache: incomeCache,
		events:      events,
		logger:      logger.WithComponent(applog.ComponentCategory),
	}
}

func (s *CategoryStore) ExpenseCategories() []core.ExpenseCategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.ExpenseCategory(nil), s.expense...)
}

func (s *CategoryStore) IncomeCategories() []core.IncomeCategory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.IncomeCategory(nil), s.income...)
}

// LoadExpenseCategories replaces the expense list. On failure the list is
// left empty and the error is only logged.
func (s *CategoryStore) LoadExpenseCategories(ctx context.Context, be ExpenseBackend) {
	list, err := be.ExpenseCategories(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load expense categories",
			applog.FieldOperation, applog.OpList,
			applog.FieldError, err)
		list = nil
	}

	s.mu.Lock()
	s.expense = list
	s.mu.Unlock()
}

// LoadIncomeCategories replaces the income list, served from the shared
// cache while it is fresh.
func (s *CategoryStore) LoadIncomeCategories(ctx context.Context, be IncomeBackend) {
	if s.incomeCache != nil {
		if list, ok := s.incomeCache.Get(incomeCategoriesKey); ok {
			s.mu.Lock()
			s.income = list
			s.mu.Unlock()
			return
		}
	}

	list, err := be.IncomeCategories(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load income categories",
			applog.FieldOperation, applog.OpList,
			applog.FieldError, err)
		list = nil
	} else if s.incomeCache != nil && len(list) > 0 {
		s.incomeCache.Set(incomeCategoriesKey, list)
	}

	s.mu.Lock()
	s.income = list
	s.mu.Unlock()
}

// LoadAll fetches both lists concurrently. A failing list never affects the other.
func (s *CategoryStore) LoadAll(ctx context.Context, be interface {
	ExpenseBackend
	IncomeBackend
}) {
	var g errgroup.Group
	g.Go(func() error {
		s.LoadExpenseCategories(ctx, be)
		return nil
	})
	g.Go(func() error {
		s.LoadIncomeCategories(ctx, be)
		return nil
	})
	_ = g.Wait()
}

// AddCategory creates an expense category and appends it on success.
// Blank fields return ErrCategoryFieldsRequired without a backend call.
func (s *CategoryStore) AddCategory(ctx context.Context, be ExpenseBackend, name, categoryType string) (*Toast, error) {
	name = strings.TrimSpace(name)
	typ, err := core.ParseCategoryType(categoryType)
	if name == "" || err != nil {
		return nil, ErrCategoryFieldsRequired
	}

	created, msg, err := be.AddExpenseCategory(ctx, name, typ)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to add expense category",
			applog.FieldOperation, applog.OpCreate,
			applog.FieldCategoryType, string(typ),
			applog.FieldError, err)
		return ErrorToast(MsgSomethingWentWrong), nil
	}

	s.mu.Lock()
	s.expense = append(s.expense, created)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Expense category added",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldCategoryID, created.ID,
		applog.FieldCategoryType, string(typ))

	event := amqp.NewEntryEvent(amqp.EventCategoryCreated)
	event.CategoryID = created.ID
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish category event", applog.FieldError, err)
	}
	return SuccessToast(msg, "Category added successfully"), nil
}

// RemoveCategory deletes an expense category and adopts the list the
// backend returns.
func (s *CategoryStore) RemoveCategory(ctx context.Context, be ExpenseBackend, id string) *Toast {
	list, msg, err := be.DeleteExpenseCategory(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove expense category",
			applog.FieldOperation, applog.OpDelete,
			applog.FieldCategoryID, id,
			applog.FieldError, err)
		return ErrorToast(MsgSomethingWentWrong)
	}

	s.mu.Lock()
	s.expense = list
	s.mu.Unlock()

	event := amqp.NewEntryEvent(amqp.EventCategoryDeleted)
	event.CategoryID = id
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish category event", applog.FieldError, err)
	}
	return SuccessToast(msg, "Category removed successfully")
}
