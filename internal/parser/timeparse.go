package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pawcal/pawcal/internal/reminder"
)

// Result is what Parse found in a free-form entry such as
// "tomorrow 2pm vaccination".
type Result struct {
	Date    time.Time
	HasDate bool
	TimeKey string // "" when no time was given
	Text    string // remaining text after the date and time
}

// Parser reads the loose date and time forms people type into the reminder
// form and the go-to-date prompt.
type Parser struct {
	now      func() time.Time
	location *time.Location
}

// New returns a parser relative to now. A nil clock means time.Now.
func New(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{now: now, location: time.Local}
}

// SetNow pins the parser's clock.
func (p *Parser) SetNow(now time.Time) {
	p.now = func() time.Time { return now }
}

var (
	weekdayRe   = regexp.MustCompile(`^(next|this)\s+(mon|monday|tue|tuesday|wed|wednesday|thu|thursday|fri|friday|sat|saturday|sun|sunday)\b`)
	inRe        = regexp.MustCompile(`^in\s+(\d+)\s+(day|days|week|weeks|month|months)\b`)
	fromNowRe   = regexp.MustCompile(`^(\d+)\s+(day|days|week|weeks|month|months)\s+from\s+(now|today)\b`)
	isoDateRe   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	usDateRe    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	shortDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})\b`)
	monthNameRe = regexp.MustCompile(`^(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|sept|september|oct|october|nov|november|dec|december)\s+(\d{1,2})(?:,?\s+(\d{4}))?\b`)
	clockRe     = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?(?:\s|$)`)
)

var namedTimes = []struct {
	name string
	hour int
}{
	{"midnight", 0},
	{"noon", 12},
	{"morning", 9},
	{"afternoon", 14},
	{"evening", 18},
}

// Parse reads an optional date, then an optional time, and returns the rest
// as text.
func (p *Parser) Parse(input string) (Result, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Result{}, fmt.Errorf("empty input")
	}

	var result Result
	remaining := input

	if date, text, ok := p.parseRelativeDate(remaining); ok {
		result.Date, result.HasDate = date, true
		remaining = text
	} else if date, text, ok := p.parseAbsoluteDate(remaining); ok {
		result.Date, result.HasDate = date, true
		remaining = text
	}

	if key, text, ok := p.parseTime(remaining); ok {
		result.TimeKey = key
		remaining = text
	}

	result.Text = strings.TrimSpace(remaining)
	return result, nil
}

// Date parses input as a date and nothing else.
func (p *Parser) Date(input string) (time.Time, bool) {
	input = strings.TrimSpace(input)
	if date, rest, ok := p.parseRelativeDate(input); ok && rest == "" {
		return date, true
	}
	if date, rest, ok := p.parseAbsoluteDate(input); ok && rest == "" {
		return date, true
	}
	return time.Time{}, false
}

// DateKey is Date in canonical YYYY-MM-DD form, "" when input is not a date.
func (p *Parser) DateKey(input string) string {
	if key := reminder.DateKey(input); key != "" {
		return key
	}
	if date, ok := p.Date(input); ok {
		return reminder.FormatDateKey(date)
	}
	return ""
}

// TimeKey parses input as a time of day and nothing else, returning HH:MM or
// "".
func (p *Parser) TimeKey(input string) string {
	if key := reminder.TimeKey(input); key != "" {
		return key
	}
	key, rest, ok := p.parseTime(strings.TrimSpace(input))
	if !ok || rest != "" {
		return ""
	}
	return key
}

func (p *Parser) parseRelativeDate(input string) (time.Time, string, bool) {
	lower := strings.ToLower(input)

	for _, word := range []struct {
		prefix string
		offset int
	}{
		{"today", 0},
		{"tomorrow", 1},
		{"tmrw", 1},
		{"yesterday", -1},
	} {
		if lower == word.prefix || strings.HasPrefix(lower, word.prefix+" ") {
			return p.today().AddDate(0, 0, word.offset), strings.TrimSpace(input[len(word.prefix):]), true
		}
	}

	if matches := weekdayRe.FindStringSubmatch(lower); matches != nil {
		date := p.findNextWeekday(parseWeekday(matches[2]), matches[1] == "next")
		return date, strings.TrimSpace(input[len(matches[0]):]), true
	}

	if matches := inRe.FindStringSubmatch(lower); matches != nil {
		return p.offsetDate(matches[1], matches[2]), strings.TrimSpace(input[len(matches[0]):]), true
	}

	if matches := fromNowRe.FindStringSubmatch(lower); matches != nil {
		return p.offsetDate(matches[1], matches[2]), strings.TrimSpace(input[len(matches[0]):]), true
	}

	return time.Time{}, input, false
}

func (p *Parser) offsetDate(count, unit string) time.Time {
	n, _ := strconv.Atoi(count)
	date := p.today()
	switch {
	case strings.HasPrefix(unit, "day"):
		return date.AddDate(0, 0, n)
	case strings.HasPrefix(unit, "week"):
		return date.AddDate(0, 0, n*7)
	default:
		return date.AddDate(0, n, 0)
	}
}

func (p *Parser) parseAbsoluteDate(input string) (time.Time, string, bool) {
	// YYYY-MM-DD
	if matches := isoDateRe.FindStringSubmatch(input); matches != nil {
		year, _ := strconv.Atoi(matches[1])
		month, _ := strconv.Atoi(matches[2])
		day, _ := strconv.Atoi(matches[3])
		if date, ok := p.date(year, time.Month(month), day); ok {
			return date, strings.TrimSpace(input[len(matches[0]):]), true
		}
		return time.Time{}, input, false
	}

	// MM/DD/YYYY
	if matches := usDateRe.FindStringSubmatch(input); matches != nil {
		month, _ := strconv.Atoi(matches[1])
		day, _ := strconv.Atoi(matches[2])
		year, _ := strconv.Atoi(matches[3])
		if date, ok := p.date(year, time.Month(month), day); ok {
			return date, strings.TrimSpace(input[len(matches[0]):]), true
		}
		return time.Time{}, input, false
	}

	// MM/DD in the current year
	if matches := shortDateRe.FindStringSubmatch(input); matches != nil {
		month, _ := strconv.Atoi(matches[1])
		day, _ := strconv.Atoi(matches[2])
		if date, ok := p.date(p.now().Year(), time.Month(month), day); ok {
			return date, strings.TrimSpace(input[len(matches[0]):]), true
		}
		return time.Time{}, input, false
	}

	// Month DD[, YYYY]
	if matches := monthNameRe.FindStringSubmatch(strings.ToLower(input)); matches != nil {
		day, _ := strconv.Atoi(matches[2])
		year := p.now().Year()
		if matches[3] != "" {
			year, _ = strconv.Atoi(matches[3])
		}
		if date, ok := p.date(year, parseMonth(matches[1]), day); ok {
			return date, strings.TrimSpace(input[len(matches[0]):]), true
		}
	}

	return time.Time{}, input, false
}

// date rejects overflowing days such as February 30.
func (p *Parser) date(year int, month time.Month, day int) (time.Time, bool) {
	t := time.Date(year, month, day, 12, 0, 0, 0, p.location)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func (p *Parser) parseTime(input string) (string, string, bool) {
	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "at ") {
		lower = lower[3:]
		input = input[3:]
	}

	if matches := clockRe.FindStringSubmatch(lower); matches != nil {
		hour, _ := strconv.Atoi(matches[1])
		minute := 0
		if matches[2] != "" {
			minute, _ = strconv.Atoi(matches[2])
		}

		switch matches[3] {
		case "am", "pm":
			if hour < 1 || hour > 12 {
				return "", input, false
			}
			if matches[3] == "pm" && hour < 12 {
				hour += 12
			} else if matches[3] == "am" && hour == 12 {
				hour = 0
			}
		default:
			// A bare number is only a time with minutes attached.
			if matches[2] == "" {
				return "", input, false
			}
		}
		if hour > 23 || minute > 59 {
			return "", input, false
		}
		return fmt.Sprintf("%02d:%02d", hour, minute), strings.TrimSpace(input[len(strings.TrimRight(matches[0], " \t")):]), true
	}

	for _, named := range namedTimes {
		if lower == named.name || strings.HasPrefix(lower, named.name+" ") {
			return fmt.Sprintf("%02d:00", named.hour), strings.TrimSpace(input[len(named.name):]), true
		}
	}

	return "", input, false
}

func parseWeekday(s string) time.Weekday {
	switch s {
	case "mon", "monday":
		return time.Monday
	case "tue", "tuesday":
		return time.Tuesday
	case "wed", "wednesday":
		return time.Wednesday
	case "thu", "thursday":
		return time.Thursday
	case "fri", "friday":
		return time.Friday
	case "sat", "saturday":
		return time.Saturday
	default:
		return time.Sunday
	}
}

func parseMonth(s string) time.Month {
	switch s {
	case "feb", "february":
		return time.February
	case "mar", "march":
		return time.March
	case "apr", "april":
		return time.April
	case "may":
		return time.May
	case "jun", "june":
		return time.June
	case "jul", "july":
		return time.July
	case "aug", "august":
		return time.August
	case "sep", "sept", "september":
		return time.September
	case "oct", "october":
		return time.October
	case "nov", "november":
		return time.November
	case "dec", "december":
		return time.December
	default:
		return time.January
	}
}

// findNextWeekday returns the next target day after today; "next" skips a
// week when the target is still ahead in the current one.
func (p *Parser) findNextWeekday(target time.Weekday, skipThisWeek bool) time.Time {
	date := p.today()
	days := int(target - date.Weekday())
	if days <= 0 || skipThisWeek {
		days += 7
	}
	return date.AddDate(0, 0, days)
}

func (p *Parser) today() time.Time {
	y, m, d := p.now().Date()
	return time.Date(y, m, d, 12, 0, 0, 0, p.location)
}
