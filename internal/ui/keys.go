package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pawcal/pawcal/internal/backend"
	"github.com/pawcal/pawcal/internal/reminder"
	"github.com/pawcal/pawcal/internal/schedule"
)

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ViewForm:
		return m.handleFormKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmKeys(msg)
	case ViewGoto:
		return m.handleGotoKeys(msg)
	case ViewHelp:
		// Any key returns to the calendar.
		m.mode = ViewCalendar
		return m, nil
	}

	return m.handleCalendarKeys(msg)
}

func (m *Model) handleCalendarKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.config.ActionFor(msg.String()) {
	case "quit":
		return m, tea.Quit

	case "help":
		m.mode = ViewHelp

	case "next_day":
		m.moveSelection(1)
	case "prev_day":
		m.moveSelection(-1)
	case "next_week":
		m.moveSelection(7)
	case "prev_week":
		m.moveSelection(-7)

	case "next_month":
		m.nav.ChangeMonth(1)
		m.agendaIndex = 0
	case "prev_month":
		m.nav.ChangeMonth(-1)
		m.agendaIndex = 0

	case "today":
		m.nav.GoToToday()
		m.agendaIndex = 0

	case "next_reminder":
		if n := len(m.nav.SelectedReminders()); n > 0 {
			m.agendaIndex = (m.agendaIndex + 1) % n
		}

	case "refresh":
		m.pets.Invalidate()
		m.loading = true
		return m, tea.Batch(m.loadCmd(true), m.catalogCmd())

	case "goto_date":
		m.mode = ViewGoto
		m.gotoInput.SetValue("")
		return m, m.gotoInput.Focus()

	case "new_reminder":
		return m, m.openForm(nil)

	case "edit_reminder":
		r, ok := m.selectedReminder()
		if !ok {
			return m, m.showMessage(schedule.NotifyInfo, "No reminder selected.")
		}
		return m, m.openForm(&r)

	case "delete_reminder":
		r, ok := m.selectedReminder()
		if !ok {
			return m, m.showMessage(schedule.NotifyInfo, "No reminder selected.")
		}
		if m.config.ConfirmDelete {
			m.confirm = &r
			m.mode = ViewConfirmDelete
			return m, nil
		}
		return m, m.deleteCmd(r.ID)

	case "cycle_status":
		r, ok := m.selectedReminder()
		if !ok {
			return m, nil
		}
		return m, m.cycleStatusCmd(r)
	}

	return m, nil
}

func (m *Model) moveSelection(days int) {
	m.nav.MoveSelection(days)
	m.agendaIndex = 0
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	target := m.confirm
	m.confirm = nil
	m.mode = ViewCalendar

	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		if target != nil {
			return m, m.deleteCmd(target.ID)
		}
	}
	return m, nil
}

func (m *Model) handleGotoKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.gotoInput.Blur()
		m.mode = ViewCalendar
		return m, nil

	case tea.KeyEnter:
		input := strings.TrimSpace(m.gotoInput.Value())
		m.gotoInput.Blur()
		m.mode = ViewCalendar
		if input == "" {
			return m, nil
		}
		date, ok := m.parser.Date(input)
		if !ok {
			return m, m.showMessage(schedule.NotifyError, "Could not understand date: "+input)
		}
		m.nav.GoTo(date)
		m.agendaIndex = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.gotoInput, cmd = m.gotoInput.Update(msg)
	return m, cmd
}

func (m *Model) deleteCmd(id string) tea.Cmd {
	workflow := m.workflow
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return deletedMsg{err: workflow.Delete(ctx, id)}
	}
}

// cycleStatusCmd moves r to the next status. It writes straight to the
// backend: a status change is not a reschedule, so past reminders can still
// be marked done.
func (m *Model) cycleStatusCmd(r reminder.Reminder) tea.Cmd {
	b := m.backend
	cache := m.reminders
	next := r.Status.Next()

	var petID string
	if len(r.PetIDs) > 0 {
		petID = r.PetIDs[0]
	}
	update := backend.ReminderUpdate{
		OwnerID:    r.OwnerID,
		OwnerName:  r.OwnerName,
		OwnerPhone: r.OwnerPhone,
		Date:       r.DateKey(),
		Time:       r.TimeKey(),
		Type:       r.Type,
		Message:    r.Message,
		Status:     next,
	}
	// A multi-pet reminder keeps its pets; naming one would narrow it.
	if len(r.PetIDs) == 1 {
		update.PetID = petID
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		if _, err := b.UpdateReminder(ctx, r.ID, update); err != nil {
			return statusChangedMsg{reminders: cache.Snapshot(), status: next, err: err}
		}
		list, err := cache.Refresh(ctx)
		if err != nil {
			return statusChangedMsg{reminders: list, status: next, err: err}
		}
		return statusChangedMsg{reminders: list, status: next}
	}
}
