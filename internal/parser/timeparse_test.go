package parser

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser() *Parser {
	p := New(nil)
	// Friday
	p.SetNow(time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local))
	return p
}

// day is noon of a local day, the instant the parser anchors dates at.
func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}

func TestParseRelativeDates(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		input    string
		wantDate time.Time
		wantTime string
		wantText string
	}{
		{"today vaccination", day(2024, 3, 15), "", "vaccination"},
		{"tomorrow 2pm grooming", day(2024, 3, 16), "14:00", "grooming"},
		{"tmrw", day(2024, 3, 16), "", ""},
		{"yesterday", day(2024, 3, 14), "", ""},
		{"next monday checkup", day(2024, 3, 18), "", "checkup"},
		{"this fri", day(2024, 3, 22), "", ""},
		{"in 3 days deworming", day(2024, 3, 18), "", "deworming"},
		{"in 1 month", day(2024, 4, 15), "", ""},
		{"2 weeks from now booster", day(2024, 3, 29), "", "booster"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := p.Parse(tt.input)
			require.NoError(t, err)
			assert.True(t, result.HasDate)
			assert.Equal(t, tt.wantDate, result.Date)
			assert.Equal(t, tt.wantTime, result.TimeKey)
			assert.Equal(t, tt.wantText, result.Text)
		})
	}
}

func TestParseAbsoluteDates(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		input    string
		wantDate time.Time
		wantText string
	}{
		{"2025-12-09 vaccination", day(2025, 12, 9), "vaccination"},
		{"12/25/2024 checkup", day(2024, 12, 25), "checkup"},
		{"4/1 grooming", day(2024, 4, 1), "grooming"},
		{"December 9, 2025", day(2025, 12, 9), ""},
		{"dec 9", day(2024, 12, 9), ""},
		{"Sept 3 2026 booster", day(2026, 9, 3), "booster"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := p.Parse(tt.input)
			require.NoError(t, err)
			require.True(t, result.HasDate)
			assert.Equal(t, tt.wantDate, result.Date)
			assert.Equal(t, tt.wantText, result.Text)
		})
	}
}

func TestParseWithoutDate(t *testing.T) {
	p := newTestParser()

	result, err := p.Parse("walk the dog")
	require.NoError(t, err)
	assert.False(t, result.HasDate)
	assert.Equal(t, "", result.TimeKey)
	assert.Equal(t, "walk the dog", result.Text)

	_, err = p.Parse("   ")
	assert.Error(t, err)
}

func TestParseTimes(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		input string
		want  string
	}{
		{"14:30", "14:30"},
		{"9:05", "09:05"},
		{"2pm", "14:00"},
		{"2 pm", "14:00"},
		{"2:30pm", "14:30"},
		{"12am", "00:00"},
		{"12pm", "12:00"},
		{"at 10:15", "10:15"},
		{"noon", "12:00"},
		{"midnight", "00:00"},
		{"morning", "09:00"},
		{"evening", "18:00"},
		{"2025-12-09T08:45:00", "08:45"},
		{"25:00", ""},
		{"13pm", ""},
		{"9:75", ""},
		{"7", ""},
		{"soon", ""},
		{"2pm sharp", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, p.TimeKey(tt.input))
		})
	}
}

func TestDateKey(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		input string
		want  string
	}{
		{"2025-12-09", "2025-12-09"},
		{"2025-12-09T10:00:00", "2025-12-09"},
		{"today", "2024-03-15"},
		{"tomorrow", "2024-03-16"},
		{"next mon", "2024-03-18"},
		{"12/25/2024", "2024-12-25"},
		{"3/20", "2024-03-20"},
		{"Jan 5 2025", "2025-01-05"},
		{"2/30/2024", ""},
		{"tomorrow at noon", ""},
		{"whenever", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, p.DateKey(tt.input))
		})
	}
}

func TestSetNowMovesRelativeDates(t *testing.T) {
	p := New(nil)
	p.SetNow(time.Date(2025, 12, 31, 23, 59, 0, 0, time.Local))

	date, ok := p.Date("tomorrow")
	require.True(t, ok)
	assert.Equal(t, day(2026, 1, 1), date)
}

// America/Havana skips from 00:00 to 01:00 on 2025-03-09.
func TestRelativeDatesAcrossMidnightDSTStart(t *testing.T) {
	loc, err := time.LoadLocation("America/Havana")
	require.NoError(t, err)
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })

	p := New(nil)
	p.SetNow(time.Date(2025, 3, 8, 20, 0, 0, 0, loc))

	tests := []struct {
		input string
		want  string
	}{
		{"today", "2025-03-08"},
		{"tomorrow", "2025-03-09"},
		{"in 2 days", "2025-03-10"},
		{"this sunday", "2025-03-09"},
		{"2025-03-09", "2025-03-09"},
		{"3/9", "2025-03-09"},
		{"march 9", "2025-03-09"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			date, ok := p.Date(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, date.Format("2006-01-02"))
		})
	}
}
