package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"

	LabelToday         = "Today"
	LabelSelectedDate  = "Selected date"
	LabelThisMonth     = "this month"
	LabelSelectedMonth = "Selected month"
)

// DateSelector holds the date shared by the calendar and the entry forms.
// It never holds a date later than its clock's now.
type DateSelector struct {
	now      func() time.Time
	selected time.Time
}

// NewDateSelector starts at now. A nil clock means time.Now.
func NewDateSelector(now func() time.Time) *DateSelector {
	if now == nil {
		now = time.Now
	}
	return &DateSelector{now: now, selected: now()}
}

// Select sets the selection, silently collapsing future dates to now.
func (d *DateSelector) Select(t time.Time) {
	now := d.now()
	if t.IsZero() || t.After(now) {
		d.selected = now
		return
	}
	d.selected = t
}

// SelectString parses a YYYY-MM-DD value and selects it. Unparseable input selects now.
func (d *DateSelector) SelectString(s string) {
	t, err := ParseDay(s, d.now().Location())
	if err != nil {
		d.selected = d.now()
		return
	}
	// Today's calendar day parses to midnight, keep the real clock time for it.
	if SameDay(t, d.now()) {
		d.selected = d.now()
		return
	}
	d.Select(t)
}

// SelectMonth parses a YYYY-MM value and selects its first day, or now for the current month.
func (d *DateSelector) SelectMonth(s string) {
	t, err := time.ParseInLocation(MonthLayout, strings.TrimSpace(s), d.now().Location())
	if err != nil {
		d.selected = d.now()
		return
	}
	if SameMonth(t, d.now()) {
		d.selected = d.now()
		return
	}
	d.Select(t)
}

func (d *DateSelector) Selected() time.Time { return d.selected }

// Label is "Today" when the selection falls on today's calendar day.
func (d *DateSelector) Label() string {
	if SameDay(d.selected, d.now()) {
		return LabelToday
	}
	return LabelSelectedDate
}

// MonthLabel is the income page variant of Label.
func (d *DateSelector) MonthLabel() string {
	if SameMonth(d.selected, d.now()) {
		return LabelThisMonth
	}
	return LabelSelectedMonth
}

// Value is the selection formatted for a date input.
func (d *DateSelector) Value() string { return d.selected.Format(DateLayout) }

// MonthValue is the selection formatted for a month input.
func (d *DateSelector) MonthValue() string { return d.selected.Format(MonthLayout) }

// Max is today's date formatted for the input's max attribute.
func (d *DateSelector) Max() string { return d.now().Format(DateLayout) }

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

func SameMonth(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// ParseDay parses a YYYY-MM-DD value in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
