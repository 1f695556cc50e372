package services

import (
	"context"
	"time"

	"mykharche/internal/amqp"
	"mykharche/internal/core"
	applog "mykharche/internal/log"
)

const MsgExpenseDeleted = "Successfully deleted an expense"

// EntryService backs the expense and income list pages.
type EntryService struct {
	events  amqp.Publisher
	logger  *applog.Logger
	entries *applog.StructuredLogger
}

func NewEntryService(events amqp.Publisher, logger *applog.Logger) *EntryService {
	if events == nil {
		events = amqp.NoopPublisher{}
	}
	logger = logger.WithComponent(applog.ComponentDrawer)
	return &EntryService{
		events:  events,
		logger:  logger,
		entries: applog.NewStructuredLogger(logger),
	}
}

// ExpensesForDay lists the expenses of the selected day.
func (s *EntryService) ExpensesForDay(ctx context.Context, be EntriesBackend, day time.Time) (core.DayExpenses, error) {
	list, err := be.ExpensesForDate(ctx, day.Format(core.DateLayout))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list expenses",
			applog.FieldOperation, applog.OpList,
			applog.FieldDate, day.Format(core.DateLayout),
			applog.FieldError, err)
		return core.DayExpenses{}, err
	}
	return list, nil
}

// IncomeForMonth lists the incomes of the selected month.
func (s *EntryService) IncomeForMonth(ctx context.Context, be EntriesBackend, month time.Time) (core.MonthIncome, error) {
	list, err := be.IncomeForMonth(ctx, month)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list income",
			applog.FieldOperation, applog.OpList,
			applog.FieldDate, month.Format(core.MonthLayout),
			applog.FieldError, err)
		return core.MonthIncome{}, err
	}
	return list, nil
}

func (s *EntryService) DeleteExpense(ctx context.Context, be EntriesBackend, id string) *Toast {
	if _, err := be.DeleteExpense(ctx, id); err != nil {
		s.entries.LogError(ctx, "Failed to delete expense", err, applog.OpDelete,
			applog.NewFields().WithEntry(string(KindExpense), id, "", ""))
		return ErrorToast(MsgSomethingWentWrong)
	}
	s.publishDeleted(ctx, amqp.EventExpenseDeleted, id)
	return SuccessToast(MsgExpenseDeleted, "")
}

func (s *EntryService) DeleteIncome(ctx context.Context, be EntriesBackend, id string) *Toast {
	msg, err := be.DeleteIncome(ctx, id)
	if err != nil {
		s.entries.LogError(ctx, "Failed to delete income", err, applog.OpDelete,
			applog.NewFields().WithEntry(string(KindIncome), id, "", ""))
		return ErrorToast(MsgSomethingWentWrong)
	}
	s.publishDeleted(ctx, amqp.EventIncomeDeleted, id)
	return SuccessToast(msg, "Income deleted successfully")
}

func (s *EntryService) publishDeleted(ctx context.Context, eventType, id string) {
	event := amqp.NewEntryEvent(eventType)
	event.EntryID = id
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish entry event", "type", eventType, applog.FieldError, err)
	}
}
