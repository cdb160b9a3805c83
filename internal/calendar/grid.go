// Package calendar bins reminders into a fixed six-week month grid and
// tracks which month and day the user is looking at.
package calendar

import (
	"slices"
	"strings"
	"time"

	"github.com/pawcal/pawcal/internal/reminder"
)

const (
	DaysPerWeek = 7
	WeeksShown  = 6
	GridSize    = DaysPerWeek * WeeksShown
)

// Day is one cell of the month grid.
type Day struct {
	Date           time.Time
	Key            string
	IsToday        bool
	IsCurrentMonth bool
	IsWeekend      bool
	Reminders      []reminder.Reminder
}

// Grid is always GridSize days, starting on the Monday on or before the
// first of Month.
type Grid struct {
	Month time.Time
	Days  []Day
}

// FirstOfMonth returns noon on the first day of t's month. Cells are
// anchored at noon so stepping by days never skips or repeats one across a
// DST jump at midnight.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 12, 0, 0, 0, t.Location())
}

// GridStart returns the Monday on or before the first of t's month.
func GridStart(t time.Time) time.Time {
	first := FirstOfMonth(t)
	offset := (int(first.Weekday()) + 6) % DaysPerWeek
	return first.AddDate(0, 0, -offset)
}

// Build lays out the grid for month and drops each reminder into the cell
// matching its date key. Reminders whose date cannot be read land nowhere.
func Build(month time.Time, reminders []reminder.Reminder, today time.Time) Grid {
	first := FirstOfMonth(month)
	start := GridStart(first)
	todayKey := reminder.FormatDateKey(today)

	byKey := make(map[string][]reminder.Reminder)
	for _, r := range reminders {
		key := r.DateKey()
		if key == "" {
			continue
		}
		byKey[key] = append(byKey[key], r)
	}

	days := make([]Day, GridSize)
	for i := range days {
		date := start.AddDate(0, 0, i)
		key := reminder.FormatDateKey(date)
		weekday := date.Weekday()

		days[i] = Day{
			Date:           date,
			Key:            key,
			IsToday:        key == todayKey,
			IsCurrentMonth: date.Year() == first.Year() && date.Month() == first.Month(),
			IsWeekend:      weekday == time.Saturday || weekday == time.Sunday,
			Reminders:      sortByTime(byKey[key]),
		}
	}

	return Grid{Month: first, Days: days}
}

// sortByTime orders reminders by minutes since midnight with untimed
// reminders last. Ties keep their input order.
func sortByTime(list []reminder.Reminder) []reminder.Reminder {
	if len(list) == 0 {
		return nil
	}
	sorted := slices.Clone(list)
	slices.SortStableFunc(sorted, func(a, b reminder.Reminder) int {
		am, aok := a.Minutes()
		bm, bok := b.Minutes()
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		default:
			return am - bm
		}
	})
	return sorted
}

// Find returns the cell for key.
func (g Grid) Find(key string) (Day, bool) {
	for _, d := range g.Days {
		if d.Key == key {
			return d, true
		}
	}
	return Day{}, false
}

func (g Grid) Contains(key string) bool {
	_, ok := g.Find(key)
	return ok
}

// FirstCurrentMonth returns the earliest cell inside Month.
func (g Grid) FirstCurrentMonth() (Day, bool) {
	for _, d := range g.Days {
		if d.IsCurrentMonth {
			return d, true
		}
	}
	return Day{}, false
}

// Weeks splits the grid into display rows.
func (g Grid) Weeks() [][]Day {
	weeks := make([][]Day, 0, WeeksShown)
	for i := 0; i+DaysPerWeek <= len(g.Days); i += DaysPerWeek {
		weeks = append(weeks, g.Days[i:i+DaysPerWeek])
	}
	return weeks
}

func (g Grid) MonthKey() string {
	return reminder.MonthKey(g.Month)
}

// MonthReminders returns the reminders dated inside month.
func MonthReminders(month time.Time, reminders []reminder.Reminder) []reminder.Reminder {
	prefix := reminder.MonthKey(month) + "-"
	var out []reminder.Reminder
	for _, r := range reminders {
		if key := r.DateKey(); key != "" && strings.HasPrefix(key, prefix) {
			out = append(out, r)
		}
	}
	return out
}
