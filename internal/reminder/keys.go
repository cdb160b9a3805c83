package reminder

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	dateKeyLayout  = "2006-01-02"
	monthKeyLayout = "2006-01"
	timeKeyLayout  = "15:04"
	minutesPerDay  = 24 * 60
)

var (
	isoDatePrefixRe = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	isoTimeRe       = regexp.MustCompile(`T(\d{2}):(\d{2})`)
	clockRe         = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
)

// Layouts tried for date strings without an ISO prefix. The key keeps the
// calendar fields as written.
var fallbackDateLayouts = []string{
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Mon Jan 2 2006",
	"Mon, 02 Jan 2006 15:04:05 MST",
	time.RFC1123Z,
	time.UnixDate,
	time.ANSIC,
}

// FormatDateKey returns the YYYY-MM-DD key of t in t's own location.
func FormatDateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// MonthKey returns the YYYY-MM prefix shared by all date keys of t's month.
func MonthKey(t time.Time) string {
	return t.Format(monthKeyLayout)
}

// ParseDateKey turns a canonical key back into noon of that local day. Noon
// exists on every day, midnight does not where DST starts at 00:00.
func ParseDateKey(key string) (time.Time, bool) {
	t, err := time.Parse(dateKeyLayout, key)
	if err != nil {
		return time.Time{}, false
	}
	return LocalDay(t.Year(), t.Month(), t.Day()), true
}

// LocalDay returns noon of the given local calendar day. Day arithmetic
// anchored here never lands on the wrong side of a DST jump.
func LocalDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.Local)
}

// DateKey normalises v to a YYYY-MM-DD key. It accepts time values, strings
// and epoch milliseconds, and returns "" for anything it cannot read.
func DateKey(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return dateKeyFromString(x)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return FormatDateKey(x)
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}
		return FormatDateKey(*x)
	case int:
		return dateKeyFromMillis(float64(x))
	case int64:
		return dateKeyFromMillis(float64(x))
	case float32:
		return dateKeyFromMillis(float64(x))
	case float64:
		return dateKeyFromMillis(x)
	case fmt.Stringer:
		return dateKeyFromString(x.String())
	default:
		return ""
	}
}

func dateKeyFromString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	if m := isoDatePrefixRe.FindStringSubmatch(s); m != nil {
		// Built from calendar fields so the key never shifts across zones.
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Year() != year || int(t.Month()) != month || t.Day() != day {
			return ""
		}
		return FormatDateKey(t)
	}

	for _, layout := range fallbackDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return FormatDateKey(t)
		}
	}

	return ""
}

func dateKeyFromMillis(ms float64) string {
	if ms == 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return ""
	}
	return FormatDateKey(time.UnixMilli(int64(ms)).In(time.Local))
}

// TimeKey normalises v to a 24-hour HH:MM key, or "" when v holds no valid
// time. Numbers are fractions of a day (0.5 is noon).
func TimeKey(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return timeKeyFromString(x)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(timeKeyLayout)
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}
		return x.Format(timeKeyLayout)
	case int:
		return timeKeyFromFraction(float64(x))
	case int64:
		return timeKeyFromFraction(float64(x))
	case float32:
		return timeKeyFromFraction(float64(x))
	case float64:
		return timeKeyFromFraction(x)
	case fmt.Stringer:
		return timeKeyFromString(x.String())
	default:
		return ""
	}
}

func timeKeyFromFraction(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	total := int(math.Round(f * minutesPerDay))
	total = ((total % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func timeKeyFromString(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if m := isoTimeRe.FindStringSubmatch(s); m != nil {
		return clockKey(m[1], m[2])
	}
	if m := clockRe.FindStringSubmatch(s); m != nil {
		if m[3] != "" {
			if sec, _ := strconv.Atoi(m[3]); sec > 59 {
				return ""
			}
		}
		return clockKey(m[1], m[2])
	}
	return ""
}

func clockKey(hourStr, minuteStr string) string {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		return ""
	}
	minute, err := strconv.Atoi(minuteStr)
	if err != nil || minute < 0 || minute > 59 {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// MinutesSinceMidnight converts a time key to minutes. An empty or malformed
// key reports false.
func MinutesSinceMidnight(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	h, m, ok := strings.Cut(key, ":")
	if !ok {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return hour*60 + minute, true
}

// Combine joins a date key and a time key into a local instant.
func Combine(dateKey, timeKey string) (time.Time, bool) {
	day, ok := ParseDateKey(dateKey)
	if !ok {
		return time.Time{}, false
	}
	minutes, ok := MinutesSinceMidnight(timeKey)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, time.Local), true
}
