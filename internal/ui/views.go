package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pawcal/pawcal/internal/reminder"
	"github.com/pawcal/pawcal/internal/schedule"
)

func (m *Model) viewCalendar() string {
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderMonth(), " ", m.renderAgenda())

	sections := []string{body}
	if m.loadErr != "" {
		sections = append(sections, m.styles.Error.Render("Could not load reminders: "+m.loadErr))
	}
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	switch m.mode {
	case ViewConfirmDelete:
		content = overlay(content, m.styles.Border.Padding(0, 1).Render(m.renderConfirm()))
	case ViewGoto:
		content = overlay(content, m.styles.Border.Padding(0, 1).Render(m.gotoInput.View()))
	}

	gap := m.height - lipgloss.Height(content) - 1
	if gap > 0 {
		content += strings.Repeat("\n", gap)
	}
	return content + "\n" + m.renderStatusBar()
}

func (m *Model) renderConfirm() string {
	if m.confirm == nil {
		return ""
	}
	prompt := fmt.Sprintf("Delete reminder %q? (y/n)", reminder.Title(*m.confirm))
	return m.styles.Error.Render(prompt)
}

func (m *Model) viewHelp() string {
	row := func(action, desc string) string {
		keys := strings.Join(m.config.KeysFor(action), "/")
		return m.styles.Help.Render(fmt.Sprintf("  %-14s - %s", keys, desc))
	}

	help := []string{
		m.styles.Header.Render("pawcal help"),
		"",
		m.styles.Normal.Render("Navigation:"),
		row("next_day", "Next day"),
		row("prev_day", "Previous day"),
		row("next_week", "Next week"),
		row("prev_week", "Previous week"),
		row("next_month", "Next month"),
		row("prev_month", "Previous month"),
		row("today", "Go to today"),
		row("goto_date", "Go to a date"),
		row("next_reminder", "Next reminder on the day"),
		"",
		m.styles.Normal.Render("Actions:"),
		row("new_reminder", "New reminder"),
		row("edit_reminder", "Edit selected reminder"),
		row("delete_reminder", "Delete selected reminder"),
		row("cycle_status", "Cycle status"),
		row("refresh", "Refresh"),
		row("help", "Toggle help"),
		row("quit", "Quit"),
		"",
		m.styles.Normal.Render("Form:"),
		m.styles.Help.Render("  tab/shift+tab  - Next/previous field"),
		m.styles.Help.Render("  space          - Toggle pet, cycle status"),
		m.styles.Help.Render("  ctrl+s         - Save"),
		m.styles.Help.Render("  esc            - Cancel"),
		"",
		m.styles.Help.Render("Press any key to return..."),
	}

	return lipgloss.JoinVertical(lipgloss.Left, help...)
}

func (m *Model) viewForm() string {
	fm := m.form
	if fm == nil {
		return m.viewCalendar()
	}

	title := "New Reminder"
	if fm.form.Editing() {
		title = "Edit Reminder"
	}

	sections := []string{m.styles.Header.Render(title), ""}
	for field := formField(0); field < fieldCount; field++ {
		sections = append(sections, m.renderField(field)...)
	}
	sections = append(sections, "")

	if m.submitting {
		sections = append(sections, m.styles.Help.Render("Saving..."))
	} else {
		sections = append(sections, m.styles.Help.Render("tab next field · ctrl+s save · esc cancel"))
	}

	content := m.styles.Border.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	gap := m.height - lipgloss.Height(content) - 1
	if gap > 0 {
		content += strings.Repeat("\n", gap)
	}
	return content + "\n" + m.renderStatusBar()
}

func (m *Model) renderField(field formField) []string {
	fm := m.form
	label := fmt.Sprintf("%-8s ", field.label())
	if fm.focus == field {
		label = m.styles.Focused.Render("›" + label)
	} else {
		label = m.styles.Normal.Render(" " + label)
	}

	switch field {
	case fieldPets:
		return m.renderPetField(label)

	case fieldStatus:
		var opts []string
		for _, s := range reminder.Statuses() {
			if s == fm.form.Draft.Status {
				opts = append(opts, m.styles.Selected.Render(s.Label()))
			} else {
				opts = append(opts, m.styles.Help.Render(s.Label()))
			}
		}
		return []string{label + strings.Join(opts, " ")}

	case fieldOwner:
		lines := []string{label + fm.owner.View()}
		if fm.focus != fieldOwner || !fm.form.ShowSuggestions {
			return lines
		}
		switch {
		case m.search.Fetching():
			lines = append(lines, m.styles.Help.Render("          searching..."))
		case len(fm.suggestions) > 0:
			for i, o := range fm.suggestions {
				text := fmt.Sprintf("%s  %s", o.Label(), o.Contact())
				if i == fm.suggestion {
					lines = append(lines, "          "+m.styles.Selected.Render(text))
				} else {
					lines = append(lines, "          "+m.styles.Normal.Render(text))
				}
			}
		case m.search.HasQuery():
			lines = append(lines, m.styles.Help.Render("          no matching owners"))
		}
		return lines
	}

	return []string{label + fm.input(field).View()}
}

func (m *Model) renderPetField(label string) []string {
	fm := m.form
	pets := fm.formPets()

	switch {
	case fm.form.Draft.OwnerID == "":
		return []string{label + m.styles.Help.Render("select an owner first")}
	case fm.petsErr != "":
		return []string{label + m.styles.Error.Render(fm.petsErr)}
	case len(pets) == 0 && fm.petsOwner == "":
		return []string{label + m.styles.Help.Render("loading pets...")}
	case len(pets) == 0:
		return []string{label + m.styles.Help.Render("this owner has no pets on file")}
	}

	lines := []string{label + m.styles.Help.Render(fmt.Sprintf("%d selected", len(fm.form.Draft.Pets)))}
	for i, p := range pets {
		box := "[ ]"
		if fm.form.Draft.HasPet(p.ID) {
			box = "[x]"
		}
		name := p.Name
		if name == "" {
			name = reminder.PetCatalog{}.Name(p.ID)
		}
		text := fmt.Sprintf("%s %s", box, name)
		if p.Species != "" {
			text += m.styles.Help.Render(" (" + p.Species + ")")
		}
		if fm.focus == fieldPets && i == fm.petCursor {
			lines = append(lines, "          "+m.styles.Selected.Render(text))
		} else {
			lines = append(lines, "          "+text)
		}
	}
	return lines
}

func (m *Model) renderStatusBar() string {
	left := fmt.Sprintf(" %s | Reminders: %d", m.nav.Month().Format("Jan 2006"), len(m.nav.MonthReminders()))
	if m.loading {
		left += " | loading..."
	}

	right := "? for help | q to quit"
	if m.message != "" {
		switch m.messageType {
		case schedule.NotifyError:
			right = m.styles.Error.Render(m.message)
		case schedule.NotifySuccess:
			right = m.styles.Success.Render(m.message)
		default:
			right = m.styles.Normal.Render(m.message)
		}
	}

	width := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if width < 0 {
		width = 0
	}

	middle := strings.Repeat(" ", width)

	return m.styles.Help.Render(left+middle) + right
}
