package ui

import (
	"context"
	"slices"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/pawcal/pawcal/internal/backend"
	"github.com/pawcal/pawcal/internal/reminder"
	"github.com/pawcal/pawcal/internal/schedule"
)

type formField int

const (
	fieldOwner formField = iota
	fieldPets
	fieldDate
	fieldTime
	fieldType
	fieldMessage
	fieldStatus
	fieldCount
)

func (f formField) label() string {
	switch f {
	case fieldOwner:
		return "Owner"
	case fieldPets:
		return "Pets"
	case fieldDate:
		return "Date"
	case fieldTime:
		return "Time"
	case fieldType:
		return "Type"
	case fieldMessage:
		return "Message"
	case fieldStatus:
		return "Status"
	default:
		return ""
	}
}

// formModel is the reminder editor: a schedule.Form plus the widgets that
// edit it.
type formModel struct {
	form  *schedule.Form
	focus formField

	owner   textinput.Model
	date    textinput.Model
	clock   textinput.Model
	kind    textinput.Model
	message textinput.Model

	suggestions []reminder.OwnerOption
	suggestion  int

	petsOwner string
	ownerPets []reminder.Pet
	petsErr   string
	petCursor int
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

func newFormModel(f *schedule.Form) *formModel {
	fm := &formModel{
		form:    f,
		owner:   newInput("type 2+ letters of a name or phone", 80),
		date:    newInput("YYYY-MM-DD, tomorrow, next mon", 40),
		clock:   newInput("HH:MM, 2pm, noon", 20),
		kind:    newInput("Vaccination, Checkup, Grooming", 60),
		message: newInput("note for the owner", 240),
	}
	fm.owner.SetValue(f.OwnerTerm)
	fm.date.SetValue(f.Draft.Date)
	fm.clock.SetValue(f.Draft.Time)
	fm.kind.SetValue(f.Draft.Type)
	fm.message.SetValue(f.Draft.Message)
	return fm
}

func (fm *formModel) input(field formField) *textinput.Model {
	switch field {
	case fieldOwner:
		return &fm.owner
	case fieldDate:
		return &fm.date
	case fieldTime:
		return &fm.clock
	case fieldType:
		return &fm.kind
	case fieldMessage:
		return &fm.message
	default:
		return nil
	}
}

func (fm *formModel) setFocus(field formField) tea.Cmd {
	if in := fm.input(fm.focus); in != nil {
		in.Blur()
	}
	fm.focus = (field + fieldCount) % fieldCount
	if in := fm.input(fm.focus); in != nil {
		return in.Focus()
	}
	return nil
}

// syncDraft copies the text inputs into the draft.
func (fm *formModel) syncDraft() {
	fm.form.Draft.Date = fm.date.Value()
	fm.form.Draft.Time = fm.clock.Value()
	fm.form.Draft.Type = fm.kind.Value()
	fm.form.Draft.Message = fm.message.Value()
}

// updateInputs forwards non-key messages such as cursor blinks.
func (fm *formModel) updateInputs(msg tea.Msg) tea.Cmd {
	in := fm.input(fm.focus)
	if in == nil {
		return nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return cmd
}

func (fm *formModel) showingSuggestions() bool {
	return fm.focus == fieldOwner && fm.form.ShowSuggestions && len(fm.suggestions) > 0
}

func (fm *formModel) setSuggestions(owners []reminder.OwnerOption) {
	fm.suggestions = owners
	if fm.suggestion >= len(owners) {
		fm.suggestion = 0
	}
}

func (fm *formModel) setOwnerPets(ownerID string, pets []reminder.Pet, err error) {
	if ownerID != fm.form.Draft.OwnerID {
		return
	}
	fm.petsOwner = ownerID
	fm.ownerPets = pets
	fm.petsErr = ""
	if err != nil {
		fm.petsErr = backend.ErrorMessage(err)
	}
	if fm.petCursor >= len(pets) {
		fm.petCursor = 0
	}
}

// openForm starts the editor on the selected day, or on r when editing.
func (m *Model) openForm(r *reminder.Reminder) tea.Cmd {
	f := schedule.NewForm(m.nav.SelectedKey())
	if r != nil {
		f.LoadReminder(*r, m.catalog)
	}

	m.workflow.Reset()
	m.form = newFormModel(f)
	m.mode = ViewForm

	cmds := []tea.Cmd{m.form.setFocus(fieldOwner)}
	if f.Draft.OwnerID != "" {
		cmds = append(cmds, m.ownerPetsCmd(f.Draft.OwnerID))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fm := m.form
	if fm == nil {
		m.mode = ViewCalendar
		return m, nil
	}

	switch msg.String() {
	case "esc":
		if fm.showingSuggestions() {
			fm.form.ShowSuggestions = false
			return m, nil
		}
		m.closeForm()
		return m, nil

	case "ctrl+s":
		return m, m.submit()

	case "tab":
		return m, fm.setFocus(fm.focus + 1)

	case "shift+tab":
		return m, fm.setFocus(fm.focus - 1)
	}

	switch fm.focus {
	case fieldOwner:
		return m, m.handleOwnerKeys(msg)
	case fieldPets:
		return m, m.handlePetKeys(msg)
	case fieldStatus:
		switch msg.String() {
		case " ", "right", "l":
			fm.form.Draft.Status = fm.form.Draft.Status.Next()
		case "left", "h":
			// Three statuses: stepping twice forward is one back.
			fm.form.Draft.Status = fm.form.Draft.Status.Next().Next()
		case "enter":
			return m, m.submit()
		}
		return m, nil
	}

	if msg.Type == tea.KeyEnter || msg.Type == tea.KeyDown {
		return m, fm.setFocus(fm.focus + 1)
	}
	if msg.Type == tea.KeyUp {
		return m, fm.setFocus(fm.focus - 1)
	}

	cmd := fm.updateInputs(msg)
	fm.syncDraft()
	return m, cmd
}

func (m *Model) handleOwnerKeys(msg tea.KeyMsg) tea.Cmd {
	fm := m.form

	if fm.showingSuggestions() {
		switch msg.Type {
		case tea.KeyUp:
			fm.suggestion = (fm.suggestion - 1 + len(fm.suggestions)) % len(fm.suggestions)
			return nil
		case tea.KeyDown:
			fm.suggestion = (fm.suggestion + 1) % len(fm.suggestions)
			return nil
		case tea.KeyEnter:
			return m.selectOwner(fm.suggestions[fm.suggestion])
		}
	}

	if msg.Type == tea.KeyEnter || msg.Type == tea.KeyDown {
		return fm.setFocus(fieldPets)
	}

	before := fm.owner.Value()
	cmd := fm.updateInputs(msg)
	if term := fm.owner.Value(); term != before {
		fm.form.SetOwnerTerm(term)
		if fm.form.Owner == nil {
			fm.ownerPets = nil
			fm.petsOwner = ""
		}
		m.search.SetTerm(term)
		fm.setSuggestions(m.search.Results())
	}
	return cmd
}

func (m *Model) selectOwner(o reminder.OwnerOption) tea.Cmd {
	fm := m.form
	m.search.Cancel()
	fm.form.SelectOwner(o)
	fm.owner.SetValue(fm.form.OwnerTerm)
	fm.owner.CursorEnd()
	fm.suggestions = nil
	fm.ownerPets = nil
	fm.petCursor = 0
	log.Debug().Str("owner", o.ID).Msg("owner selected")
	return tea.Batch(fm.setFocus(fieldPets), m.ownerPetsCmd(o.ID))
}

func (m *Model) handlePetKeys(msg tea.KeyMsg) tea.Cmd {
	fm := m.form
	pets := fm.formPets()

	switch msg.String() {
	case "up", "k":
		if fm.petCursor > 0 {
			fm.petCursor--
		}
	case "down", "j":
		if fm.petCursor < len(pets)-1 {
			fm.petCursor++
		}
	case " ", "x":
		if fm.petCursor < len(pets) {
			fm.form.TogglePet(pets[fm.petCursor])
		}
		if n := len(fm.formPets()); fm.petCursor >= n {
			fm.petCursor = max(n-1, 0)
		}
	case "enter":
		return fm.setFocus(fieldDate)
	}
	return nil
}

// formPets lists the owner's pets plus any selected pet the owner list does
// not include, so an edited reminder never hides its own pets.
func (fm *formModel) formPets() []reminder.Pet {
	pets := slices.Clone(fm.ownerPets)
	for _, p := range fm.form.Draft.Pets {
		if !slices.ContainsFunc(pets, func(q reminder.Pet) bool { return q.ID == p.ID }) {
			pets = append(pets, reminder.Pet{ID: p.ID, Name: p.Name, OwnerID: fm.form.Draft.OwnerID})
		}
	}
	return pets
}

// submit sends the form. A second submit while one is in flight is ignored.
func (m *Model) submit() tea.Cmd {
	if m.form == nil || m.submitting || m.workflow.Submitting() {
		return nil
	}
	m.form.syncDraft()
	m.submitting = true

	workflow := m.workflow
	form := m.form.form.Clone()

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		saved, err := workflow.Submit(ctx, form)
		return submittedMsg{saved: saved, err: err}
	}
}
