package calendar

import (
	"slices"
	"time"

	"github.com/pawcal/pawcal/internal/reminder"
)

// Navigator holds the displayed month, the selected day and the grid built
// from them. Every rebuild repairs the selection.
type Navigator struct {
	now       func() time.Time
	month     time.Time
	selected  string
	reminders []reminder.Reminder
	grid      Grid
}

// NewNavigator opens on the current month with today selected. A nil clock
// means time.Now.
func NewNavigator(now func() time.Time) *Navigator {
	if now == nil {
		now = time.Now
	}
	today := now()
	n := &Navigator{
		now:      now,
		month:    FirstOfMonth(today),
		selected: reminder.FormatDateKey(today),
	}
	n.rebuild()
	return n
}

func (n *Navigator) Month() time.Time {
	return n.month
}

func (n *Navigator) SelectedKey() string {
	return n.selected
}

func (n *Navigator) Grid() Grid {
	return n.grid
}

func (n *Navigator) TodayKey() string {
	return reminder.FormatDateKey(n.now())
}

// SelectedDay returns the grid cell of the selected key.
func (n *Navigator) SelectedDay() (Day, bool) {
	return n.grid.Find(n.selected)
}

// SelectedReminders lists the selected day's reminders in time order.
func (n *Navigator) SelectedReminders() []reminder.Reminder {
	day, ok := n.SelectedDay()
	if !ok {
		return nil
	}
	return day.Reminders
}

// MonthReminders lists the loaded reminders that fall in the displayed month.
func (n *Navigator) MonthReminders() []reminder.Reminder {
	return MonthReminders(n.month, n.reminders)
}

// SetReminders replaces the loaded list wholesale.
func (n *Navigator) SetReminders(list []reminder.Reminder) {
	n.reminders = slices.Clone(list)
	n.rebuild()
}

// ChangeMonth moves the displayed month by offset months, landing on the 1st.
func (n *Navigator) ChangeMonth(offset int) {
	n.month = FirstOfMonth(n.month.AddDate(0, offset, 0))
	n.rebuild()
}

// GoToToday shows the current month and selects today.
func (n *Navigator) GoToToday() {
	today := n.now()
	n.month = FirstOfMonth(today)
	n.selected = reminder.FormatDateKey(today)
	n.rebuild()
}

// SetSelectedDateKey selects key as given. A key outside the grid stays
// selected, with no reminders, until the next rebuild repairs it.
func (n *Navigator) SetSelectedDateKey(key string) {
	n.selected = key
}

// GoTo shows date's month and selects date.
func (n *Navigator) GoTo(date time.Time) {
	n.month = FirstOfMonth(date)
	n.selected = reminder.FormatDateKey(date)
	n.rebuild()
}

// MoveSelection shifts the selected day by days. When the new day falls
// outside the displayed month the month follows it.
func (n *Navigator) MoveSelection(days int) {
	current, ok := reminder.ParseDateKey(n.selected)
	if !ok {
		current = n.month
	}
	target := current.AddDate(0, 0, days)
	if target.Year() != n.month.Year() || target.Month() != n.month.Month() {
		n.GoTo(target)
		return
	}
	n.selected = reminder.FormatDateKey(target)
	n.repair()
}

func (n *Navigator) rebuild() {
	n.grid = Build(n.month, n.reminders, n.now())
	n.repair()
}

func (n *Navigator) repair() {
	if n.grid.Contains(n.selected) {
		return
	}
	if day, ok := n.grid.FirstCurrentMonth(); ok {
		n.selected = day.Key
		return
	}
	if len(n.grid.Days) > 0 {
		n.selected = n.grid.Days[0].Key
	}
}
