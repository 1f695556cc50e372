package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mykharche/internal/amqp"
	"mykharche/internal/cache"
	"mykharche/internal/core"
	"mykharche/internal/draft"
	applog "mykharche/internal/log"
)

type EntryKind string

const (
	KindExpense EntryKind = "expense"
	KindIncome  EntryKind = "income"
)

// DrawerBackend is what an open drawer calls.
type DrawerBackend interface {
	ExpenseBackend
	IncomeBackend
}

// Drawer is one open entry drawer. It lives in the session cache between
// requests and is discarded when the drawer closes.
type Drawer struct {
	ID       string
	Kind     EntryKind
	ReturnTo string

	Dates      *core.DateSelector
	Categories *CategoryStore
	Expense    ExpenseForm
	Income     IncomeForm

	// CategoryView is set while the new-category sub-view is open.
	CategoryView  bool
	CategoryError string

	mu     sync.Mutex
	saving bool
}

// DrawerSnapshot is a copy of a drawer's state, safe to render while the
// drawer keeps handling requests.
type DrawerSnapshot struct {
	ID       string
	Kind     EntryKind
	ReturnTo string

	Date      string
	DateLabel string
	MaxDate   string

	Expense           ExpenseForm
	Income            IncomeForm
	ExpenseCategories []core.ExpenseCategory
	IncomeCategories  []core.IncomeCategory

	CategoryView  bool
	CategoryError string
	Saving        bool
}

func (s DrawerSnapshot) IsIncome() bool { return s.Kind == KindIncome }

// Snapshot copies the drawer under its lock.
func (d *Drawer) Snapshot() DrawerSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DrawerSnapshot{
		ID:                d.ID,
		Kind:              d.Kind,
		ReturnTo:          d.ReturnTo,
		Date:              d.Dates.Value(),
		DateLabel:         d.Dates.Label(),
		MaxDate:           d.Dates.Max(),
		Expense:           d.Expense,
		Income:            d.Income,
		ExpenseCategories: d.Categories.ExpenseCategories(),
		IncomeCategories:  d.Categories.IncomeCategories(),
		CategoryView:      d.CategoryView,
		CategoryError:     d.CategoryError,
		Saving:            d.saving,
	}
}

// Outcome is the result of a drawer action. Closed drawers redirect to
// ReturnTo, open ones re-render with the inline error on the form.
type Outcome struct {
	Toast  *Toast
	Closed bool
}

// DrawerService opens, drives and closes drawers.
type DrawerService struct {
	sessions         cache.Cache[*Drawer]
	drafts           draft.Store
	incomeCategories cache.Cache[[]core.IncomeCategory]
	events           amqp.Publisher
	now              func() time.Time
	logger           *applog.Logger
	entries          *applog.StructuredLogger
}

func NewDrawerService(
	sessions cache.Cache[*Drawer],
	drafts draft.Store,
	incomeCategories cache.Cache[[]core.IncomeCategory],
	events amqp.Publisher,
	logger *applog.Logger,
) *DrawerService {
	if events == nil {
		events = amqp.NoopPublisher{}
	}
	logger = logger.WithComponent(applog.ComponentDrawer)
	return &DrawerService{
		sessions:         sessions,
		drafts:           drafts,
		incomeCategories: incomeCategories,
		events:           events,
		now:              time.Now,
		logger:           logger,
		entries:          applog.NewStructuredLogger(logger),
	}
}

// WithClock replaces the clock given to new date selectors.
func (s *DrawerService) WithClock(now func() time.Time) *DrawerService {
	s.now = now
	return s
}

func (s *DrawerService) newDrawer(id string, kind EntryKind, returnTo string) *Drawer {
	return &Drawer{
		ID:         id,
		Kind:       kind,
		ReturnTo:   returnTo,
		Dates:      core.NewDateSelector(s.now),
		Categories: NewCategoryStore(s.incomeCategories, s.events, s.logger),
	}
}

// Get returns the open drawer for id.
func (s *DrawerService) Get(id string) (*Drawer, bool) {
	if id == "" {
		return nil, false
	}
	return s.sessions.Get(id)
}

// Open starts a create drawer at today with both category lists loaded.
// Any stored expense draft for the drawer id is restored.
func (s *DrawerService) Open(ctx context.Context, id string, kind EntryKind, be DrawerBackend, returnTo string) *Drawer {
	d := s.newDrawer(id, kind, returnTo)
	d.Categories.LoadAll(ctx, be)
	if kind == KindExpense {
		s.restoreDraft(ctx, d)
	}
	s.sessions.Set(id, d)

	s.logger.DebugContext(ctx, "Drawer opened",
		applog.FieldDrawerID, id,
		applog.FieldEntryKind, string(kind))
	return d
}

// Resume returns the open drawer for id, or opens a new one if it is gone
// or belongs to another flow.
func (s *DrawerService) Resume(ctx context.Context, id string, kind EntryKind, be DrawerBackend, returnTo string) *Drawer {
	if d, ok := s.Get(id); ok && d.Kind == kind && d.ReturnTo == returnTo {
		return d
	}
	return s.Open(ctx, id, kind, be, returnTo)
}

// EditExpense opens a drawer pre-populated with an existing expense.
// Drafts are never restored here.
func (s *DrawerService) EditExpense(ctx context.Context, id string, be DrawerBackend, expenseID, returnTo string) (*Drawer, error) {
	d := s.newDrawer(id, KindExpense, returnTo)
	d.Categories.LoadAll(ctx, be)

	expense, err := be.GetExpenseByID(ctx, expenseID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load expense for editing",
			applog.FieldDrawerID, id,
			applog.FieldEntryID, expenseID,
			applog.FieldError, err)
		return nil, fmt.Errorf("load expense %s: %w", expenseID, err)
	}

	d.Expense.Prefill(expense, d.Categories.ExpenseCategories())
	d.Dates.Select(expense.Date)
	s.sessions.Set(id, d)
	return d, nil
}

// EditIncome opens a drawer pre-populated with an existing income.
func (s *DrawerService) EditIncome(ctx context.Context, id string, be DrawerBackend, incomeID, returnTo string) (*Drawer, error) {
	d := s.newDrawer(id, KindIncome, returnTo)
	d.Categories.LoadIncomeCategories(ctx, be)

	income, err := be.GetIncomeByID(ctx, incomeID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load income for editing",
			applog.FieldDrawerID, id,
			applog.FieldEntryID, incomeID,
			applog.FieldError, err)
		return nil, fmt.Errorf("load income %s: %w", incomeID, err)
	}

	d.Income.Prefill(income)
	d.Dates.Select(income.Date)
	s.sessions.Set(id, d)
	return d, nil
}

// Advance validates the expense form and moves to the next step, or
// submits it from the last step.
func (s *DrawerService) Advance(ctx context.Context, d *Drawer, be ExpenseBackend, date string, in ExpenseInput) (Outcome, error) {
	d.mu.Lock()
	if d.saving {
		d.Expense.Error = MsgSaving
		d.mu.Unlock()
		return Outcome{}, ErrSaveInFlight
	}

	d.Dates.SelectString(date)
	d.Expense.Apply(in)
	if msg := d.Expense.Validate(); msg != "" {
		d.Expense.Error = msg
		d.mu.Unlock()
		s.logger.DebugContext(ctx, "Expense step rejected",
			applog.FieldDrawerID, d.ID,
			applog.FieldStep, d.Expense.Step,
			"reason", msg)
		return Outcome{}, nil
	}
	d.Expense.Error = ""

	if d.Expense.Step < core.StepCategory {
		d.Expense.Step++
		d.mu.Unlock()
		return Outcome{}, nil
	}

	d.saving = true
	payload := d.Expense.Payload(d.Dates)
	editingID := d.Expense.EditingID
	d.mu.Unlock()

	var (
		msg string
		err error
	)
	if editingID != "" {
		msg, err = be.UpdateExpense(ctx, editingID, payload)
	} else {
		msg, err = be.AddExpense(ctx, payload)
	}

	var toast *Toast
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save expense",
			applog.NewFields().
				WithDrawer(d.ID).
				WithEntry(string(KindExpense), editingID, payload.Amount.String(), payload.CategoryID).
				WithError(err).
				ToSlice()...)
		toast = ErrorToast(MsgSomethingWentWrong)
	} else {
		s.entries.LogEntrySaved(ctx, string(KindExpense), editingID, payload.Amount.String(), payload.CategoryID, saveOp(editingID))
		toast = SuccessToast(msg, "Expense saved successfully")

		event := amqp.NewEntryEvent(amqp.EventExpenseSaved)
		event.EntryID = editingID
		event.CategoryID = payload.CategoryID
		event.Amount = payload.Amount.String()
		event.Date = payload.Date.Format(core.DateLayout)
		event.Edited = editingID != ""
		s.publish(ctx, event)
	}

	s.Close(ctx, d)
	return Outcome{Toast: toast, Closed: true}, nil
}

// SubmitIncome saves the income form. An incomplete form is rejected
// inline without a backend call.
func (s *DrawerService) SubmitIncome(ctx context.Context, d *Drawer, be IncomeBackend, date string, in IncomeInput) (Outcome, error) {
	d.mu.Lock()
	if d.saving {
		d.Income.Error = MsgSaving
		d.mu.Unlock()
		return Outcome{}, ErrSaveInFlight
	}

	d.Dates.SelectString(date)
	d.Income.Apply(in)
	if msg := d.Income.Validate(); msg != "" {
		d.Income.Error = msg
		d.mu.Unlock()
		return Outcome{}, nil
	}
	d.Income.Error = ""
	d.saving = true
	payload := d.Income.Payload(d.Dates)
	editingID := d.Income.EditingID
	d.mu.Unlock()

	var (
		msg string
		err error
	)
	if editingID != "" {
		msg, err = be.EditIncome(ctx, editingID, payload)
	} else {
		msg, err = be.AddIncome(ctx, payload)
	}

	var toast *Toast
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save income",
			applog.NewFields().
				WithDrawer(d.ID).
				WithEntry(string(KindIncome), editingID, payload.Amount.String(), payload.CategoryID).
				WithError(err).
				ToSlice()...)
		toast = ErrorToast(MsgSomethingWentWrong)
	} else {
		s.entries.LogEntrySaved(ctx, string(KindIncome), editingID, payload.Amount.String(), payload.CategoryID, saveOp(editingID))
		toast = SuccessToast(msg, "Income saved successfully")

		event := amqp.NewEntryEvent(amqp.EventIncomeSaved)
		event.EntryID = editingID
		event.CategoryID = payload.CategoryID
		event.Amount = payload.Amount.String()
		event.Date = payload.Date.Format(core.DateLayout)
		event.Edited = editingID != ""
		s.publish(ctx, event)
	}

	s.Close(ctx, d)
	return Outcome{Toast: toast, Closed: true}, nil
}

// OpenNewCategory stores the current expense fields as a draft, clears the
// selected category and shows the category sub-view.
func (s *DrawerService) OpenNewCategory(ctx context.Context, d *Drawer, date string, in ExpenseInput) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Dates.SelectString(date)
	d.Expense.Apply(in)
	d.Expense.CategoryID = ""
	d.Expense.Error = ""
	d.CategoryView = true
	d.CategoryError = ""

	if err := s.drafts.Save(ctx, d.ID, d.Expense.Draft()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save draft",
			applog.FieldDrawerID, d.ID,
			applog.FieldOperation, applog.OpCreate,
			applog.FieldError, err)
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// CloseNewCategory leaves the sub-view without creating anything.
func (s *DrawerService) CloseNewCategory(ctx context.Context, d *Drawer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.CategoryView = false
	d.CategoryError = ""
	if !d.Expense.Editing() {
		s.restoreDraft(ctx, d)
	}
}

// AddCategory creates a category from the sub-view. Missing fields keep the
// sub-view open with an inline error. Otherwise the sub-view closes and the
// draft is restored whatever the backend said.
func (s *DrawerService) AddCategory(ctx context.Context, d *Drawer, be ExpenseBackend, name, categoryType string) (*Toast, error) {
	toast, err := d.Categories.AddCategory(ctx, be, name, categoryType)

	d.mu.Lock()
	defer d.mu.Unlock()
	if errors.Is(err, ErrCategoryFieldsRequired) {
		d.CategoryError = "Please enter the category name and type"
		return nil, err
	}
	d.CategoryView = false
	d.CategoryError = ""
	if !d.Expense.Editing() {
		s.restoreDraft(ctx, d)
	}
	return toast, nil
}

// RemoveCategory deletes a category. A removed selection is cleared.
func (s *DrawerService) RemoveCategory(ctx context.Context, d *Drawer, be ExpenseBackend, categoryID string) *Toast {
	toast := d.Categories.RemoveCategory(ctx, be, categoryID)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := core.FindExpenseCategory(d.Categories.ExpenseCategories(), d.Expense.CategoryID); !ok {
		d.Expense.CategoryID = ""
	}
	return toast
}

// Close clears the draft and discards the session. Every close path calls it.
func (s *DrawerService) Close(ctx context.Context, d *Drawer) {
	if err := s.drafts.Clear(ctx, d.ID); err != nil {
		s.logger.WarnContext(ctx, "Failed to clear draft",
			applog.FieldDrawerID, d.ID,
			applog.FieldOperation, applog.OpClear,
			applog.FieldError, err)
	}
	s.sessions.Delete(d.ID)

	d.mu.Lock()
	d.saving = false
	d.mu.Unlock()
}

// CloseID closes the drawer for id if one is open, and clears its draft either way.
func (s *DrawerService) CloseID(ctx context.Context, id string) {
	if d, ok := s.Get(id); ok {
		s.Close(ctx, d)
		return
	}
	if id == "" {
		return
	}
	if err := s.drafts.Clear(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "Failed to clear draft", applog.FieldDrawerID, id, applog.FieldError, err)
	}
}

// restoreDraft must be called with d.mu held or before d is shared.
func (s *DrawerService) restoreDraft(ctx context.Context, d *Drawer) {
	entry, found, err := s.drafts.Restore(ctx, d.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to restore draft",
			applog.FieldDrawerID, d.ID,
			applog.FieldOperation, applog.OpRestore,
			applog.FieldError, err)
		return
	}
	if found {
		d.Expense.Restore(entry)
	}
}

func saveOp(editingID string) string {
	if editingID != "" {
		return applog.OpUpdate
	}
	return applog.OpCreate
}

func (s *DrawerService) publish(ctx context.Context, event amqp.EntryEvent) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish entry event",
			"type", event.Type,
			applog.FieldError, err)
	}
}
