package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/pawcal/pawcal/internal/calendar"
	"github.com/pawcal/pawcal/internal/reminder"
)

var weekdayHeaders = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

const (
	minCellWidth   = 6
	minAgendaWidth = 30
)

// cellWidth splits the space left of the agenda over seven columns.
func (m *Model) cellWidth() int {
	w := (m.width - m.agendaWidth() - 4) / calendar.DaysPerWeek
	return max(w, minCellWidth)
}

func (m *Model) agendaWidth() int {
	return max(m.width/3, minAgendaWidth)
}

// renderMonth draws the six-week grid with a reminder count per day.
func (m *Model) renderMonth() string {
	grid := m.nav.Grid()
	width := m.cellWidth()

	var lines []string

	title := grid.Month.Format("January 2006")
	if n := len(m.nav.MonthReminders()); n > 0 {
		title += fmt.Sprintf(" · %d %s", n, plural(n, "reminder", "reminders"))
	}
	lines = append(lines, m.styles.Header.Render(title))

	var header []string
	for i, name := range weekdayHeaders {
		style := m.styles.Help
		if i >= 5 {
			style = m.styles.Weekend
		}
		header = append(header, style.Width(width).Render(name))
	}
	lines = append(lines, strings.Join(header, ""))

	selected := m.nav.SelectedKey()
	for _, week := range grid.Weeks() {
		var cells []string
		for _, day := range week {
			cells = append(cells, m.renderCell(day, day.Key == selected, width))
		}
		lines = append(lines, strings.Join(cells, ""))
	}

	return m.styles.Border.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) renderCell(day calendar.Day, selected bool, width int) string {
	text := fmt.Sprintf("%2d", day.Date.Day())
	if n := len(day.Reminders); n > 0 {
		text += fmt.Sprintf(" •%d", n)
	}

	var style lipgloss.Style
	switch {
	case selected:
		style = m.styles.Selected
	case !day.IsCurrentMonth:
		style = m.styles.Outside
	case day.IsToday:
		style = m.styles.Today
	case len(day.Reminders) > 0:
		style = m.styles.Reminder
	case day.IsWeekend:
		style = m.styles.Weekend
	default:
		style = m.styles.Normal
	}
	return style.Width(width).Render(text)
}

// renderAgenda lists the selected day's reminders in time order.
func (m *Model) renderAgenda() string {
	width := m.agendaWidth()
	textWidth := max(width-4, 20)

	var lines []string

	header := m.nav.SelectedKey()
	if date, ok := reminder.ParseDateKey(header); ok {
		header = date.Format(m.config.DateFormat)
	}
	lines = append(lines, m.styles.Header.Render(wordwrap.String(header, textWidth)))
	lines = append(lines, "")

	list := m.nav.SelectedReminders()
	if len(list) == 0 {
		lines = append(lines, m.styles.Help.Render("(no reminders)"))
		lines = append(lines, m.styles.Help.Render("press n to add one"))
	}

	for i, r := range list {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, m.renderAgendaItem(r, i == m.agendaIndex, textWidth)...)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return m.styles.Border.Width(width).Render(content)
}

func (m *Model) renderAgendaItem(r reminder.Reminder, selected bool, width int) []string {
	var lines []string

	title := reminder.Title(r)
	clock, ok := reminder.TimeLabel(r)
	if !ok {
		clock = "--:--"
	}
	head := fmt.Sprintf("%s  %s", clock, title)
	if selected {
		lines = append(lines, m.styles.Selected.Render(head))
	} else {
		lines = append(lines, m.styles.Reminder.Render(head))
	}

	lines = append(lines, m.styles.Help.Render("["+r.Status.Label()+"]"))

	if sub, ok := reminder.Subtitle(r, title); ok {
		lines = append(lines, m.wrap(sub, width)...)
	}
	if owner, ok := reminder.OwnerLabel(r); ok {
		lines = append(lines, m.wrap("Owner: "+owner, width)...)
	}

	names := r.PetNames
	if len(names) == 0 && len(r.PetIDs) > 0 {
		names = reminder.PetNames(r, m.catalog)
	}
	if len(names) > 0 {
		lines = append(lines, m.wrap("Pets: "+strings.Join(names, ", "), width)...)
	}

	return lines
}

func (m *Model) wrap(text string, width int) []string {
	if !m.config.WrapText {
		return []string{text}
	}
	var lines []string
	for _, line := range strings.Split(wordwrap.String(text, width), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
