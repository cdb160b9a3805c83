package calendar

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawcal/pawcal/internal/reminder"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// useLocal swaps time.Local for the named zone until the test ends.
func useLocal(t *testing.T, name string) {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
}

func TestNewNavigator(t *testing.T) {
	now := time.Date(2025, 12, 15, 10, 0, 0, 0, time.Local)
	nav := NewNavigator(fixedClock(now))

	assert.Equal(t, reminder.LocalDay(2025, 12, 1), nav.Month())
	assert.Equal(t, "2025-12-15", nav.SelectedKey())
	assert.Equal(t, "2025-12-15", nav.TodayKey())
	assert.Len(t, nav.Grid().Days, GridSize)

	day, ok := nav.SelectedDay()
	require.True(t, ok)
	assert.True(t, day.IsToday)
}

func TestChangeMonthRepairsSelection(t *testing.T) {
	nav := NewNavigator(fixedClock(time.Date(2025, 12, 15, 10, 0, 0, 0, time.Local)))

	nav.ChangeMonth(1)
	assert.Equal(t, reminder.LocalDay(2026, 1, 1), nav.Month())
	// 2025-12-15 is not in January's grid (which starts 2025-12-29).
	assert.Equal(t, "2026-01-01", nav.SelectedKey())

	nav.ChangeMonth(-1)
	assert.Equal(t, reminder.LocalDay(2025, 12, 1), nav.Month())
	// 2026-01-01 is part of December's trailing padding, so it is kept.
	assert.Equal(t, "2026-01-01", nav.SelectedKey())

	nav.ChangeMonth(-13)
	assert.Equal(t, reminder.LocalDay(2024, 11, 1), nav.Month())
	assert.Equal(t, "2024-11-01", nav.SelectedKey())
}

func TestChangeMonthClampsToFirst(t *testing.T) {
	nav := NewNavigator(fixedClock(time.Date(2026, 1, 31, 23, 0, 0, 0, time.Local)))

	nav.ChangeMonth(1)
	assert.Equal(t, reminder.LocalDay(2026, 2, 1), nav.Month(), "January 31 plus a month is still February")
	// February's grid starts on Monday 2026-01-26, so the 31st is kept.
	assert.Equal(t, "2026-01-31", nav.SelectedKey())

	nav.ChangeMonth(1)
	assert.Equal(t, reminder.LocalDay(2026, 3, 1), nav.Month())
	assert.Equal(t, "2026-03-01", nav.SelectedKey())
}

func TestGoToToday(t *testing.T) {
	nav := NewNavigator(fixedClock(time.Date(2025, 12, 15, 10, 0, 0, 0, time.Local)))
	nav.ChangeMonth(5)
	nav.SetSelectedDateKey("2026-05-20")

	nav.GoToToday()
	assert.Equal(t, reminder.LocalDay(2025, 12, 1), nav.Month())
	assert.Equal(t, "2025-12-15", nav.SelectedKey())
}

func TestSetSelectedDateKey(t *testing.T) {
	nav := NewNavigator(fixedClock(time.Date(2025, 12, 15, 10, 0, 0, 0, time.Local)))

	nav.SetSelectedDateKey("2025-12-31")
	assert.Equal(t, "2025-12-31", nav.SelectedKey())

	nav.SetSelectedDateKey("2026-01-10")
	assert.Equal(t, "2026-01-10", nav.SelectedKey())

	nav.SetSelectedDateKey("2030-01-01")
	assert.Equal(t, "2030-01-01", nav.SelectedKey())
	assert.Empty(t, nav.SelectedReminders())

	nav.SetReminders(nil)
	assert.Equal(t, "2025-12-01", nav.SelectedKey(), "the next rebuild repairs the selection")
}

func TestSetRemindersRebuildsGrid(t *testing.T) {
	nav := NewNavigator(fixedClock(time.Date(2025, 12, 9, 8, 0, 0, 0, time.Local)))
	assert.Empty(t, nav.SelectedReminders())

	nav.SetReminders([]reminder.Reminder{
		{ID: "late", Date: "2025-12-09", Time: "16:00"},
		{ID: "early", Date: "2025-12-09", Time: "08:15"},
		{ID: "other", Date: "2025-12-10", Time: "08:15"},
		{ID: "november", Date: "2025-11-20", Time: "08:15"},
	})

	selected := nav.SelectedReminders()
	require.Len(t, selected, 2)
	assert.Equal(t, "early", selected[0].ID)
	assert.Equal(t, "late", selected[1].ID)
	assert.Len(t, nav.MonthReminders(), 3)

	nav.SetReminders(nil)
	assert.Empty(t, nav.SelectedReminders())
}

func TestMoveSelection(t *testing.T) {
	nav := NewNavigator(fixedClock(time.Date(2025, 12, 30, 10, 0, 0, 0, time.Local)))

	nav.MoveSelection(1)
	assert.Equal(t, "2025-12-31", nav.SelectedKey())
	assert.Equal(t, time.December, nav.Month().Month())

	nav.MoveSelection(1)
	assert.Equal(t, "2026-01-01", nav.SelectedKey())
	assert.Equal(t, reminder.LocalDay(2026, 1, 1), nav.Month())

	nav.MoveSelection(-7)
	assert.Equal(t, "2025-12-25", nav.SelectedKey())
	assert.Equal(t, time.December, nav.Month().Month())
}

func TestGoTo(t *testing.T) {
	nav := NewNavigator(fixedClock(time.Date(2025, 12, 30, 10, 0, 0, 0, time.Local)))

	nav.GoTo(time.Date(2027, 3, 14, 0, 0, 0, 0, time.Local))
	assert.Equal(t, reminder.LocalDay(2027, 3, 1), nav.Month())
	assert.Equal(t, "2027-03-14", nav.SelectedKey())
}

// In these zones DST starts at local midnight, so some days have no 00:00.
func TestNavigationAcrossMidnightDSTStart(t *testing.T) {
	tests := []struct {
		zone  string
		clock time.Time
		gap   string
	}{
		{zone: "America/Havana", clock: time.Date(2025, 3, 8, 9, 0, 0, 0, time.UTC), gap: "2025-03-09"},
		{zone: "America/Santiago", clock: time.Date(2025, 9, 6, 9, 0, 0, 0, time.UTC), gap: "2025-09-07"},
		{zone: "America/Asuncion", clock: time.Date(2023, 9, 30, 9, 0, 0, 0, time.UTC), gap: "2023-10-01"},
		{zone: "America/Sao_Paulo", clock: time.Date(2018, 11, 3, 9, 0, 0, 0, time.UTC), gap: "2018-11-04"},
	}

	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			useLocal(t, tt.zone)
			now := tt.clock.In(time.Local)
			nav := NewNavigator(fixedClock(now))

			seen := make(map[string]bool)
			for i, d := range nav.Grid().Days {
				assert.False(t, seen[d.Key], "%s repeated", d.Key)
				seen[d.Key] = true
				if i > 0 {
					prev, _ := reminder.ParseDateKey(nav.Grid().Days[i-1].Key)
					assert.Equal(t, d.Key, reminder.FormatDateKey(prev.AddDate(0, 0, 1)))
				}
			}
			assert.True(t, seen[tt.gap])

			nav.MoveSelection(1)
			assert.Equal(t, tt.gap, nav.SelectedKey())
			nav.MoveSelection(1)
			assert.NotEqual(t, tt.gap, nav.SelectedKey(), "selection moves past the gap day")
			nav.MoveSelection(-2)
			assert.Equal(t, reminder.FormatDateKey(now), nav.SelectedKey())

			day, ok := reminder.ParseDateKey(tt.gap)
			require.True(t, ok)
			nav.GoTo(day)
			assert.Equal(t, tt.gap, nav.SelectedKey())
		})
	}
}
