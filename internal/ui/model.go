package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/pawcal/pawcal/internal/backend"
	"github.com/pawcal/pawcal/internal/calendar"
	"github.com/pawcal/pawcal/internal/config"
	"github.com/pawcal/pawcal/internal/parser"
	"github.com/pawcal/pawcal/internal/reminder"
	"github.com/pawcal/pawcal/internal/schedule"
)

type ViewMode int

const (
	ViewCalendar ViewMode = iota
	ViewForm
	ViewConfirmDelete
	ViewGoto
	ViewHelp
)

const (
	messageTimeout = 3 * time.Second
	loadTimeout    = 10 * time.Second
)

type Model struct {
	// Core components
	config    *config.Config
	backend   backend.Backend
	reminders *backend.ReminderCache
	pets      *backend.PetCache
	workflow  *schedule.Workflow
	search    *schedule.OwnerSearch
	nav       *calendar.Navigator
	parser    *parser.Parser
	watcher   *backend.Watcher
	now       func() time.Time

	// Owner search results arrive here from the lookup goroutine
	searchResults chan schedule.SearchResult

	// View state
	mode        ViewMode
	agendaIndex int
	catalog     reminder.PetCatalog
	loading     bool
	loadErr     string

	// UI state
	width       int
	height      int
	message     string
	messageType schedule.NotificationType
	messageID   int
	submitting  bool

	// Form, delete confirmation and go-to state
	form      *formModel
	confirm   *reminder.Reminder
	gotoInput textinput.Model

	styles Styles
}

type Styles struct {
	Normal   lipgloss.Style
	Selected lipgloss.Style
	Today    lipgloss.Style
	Weekend  lipgloss.Style
	Outside  lipgloss.Style
	Header   lipgloss.Style
	Reminder lipgloss.Style
	Help     lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Border   lipgloss.Style
	Focused  lipgloss.Style
}

// Options wires a Model. Watcher may be nil; a nil Now means time.Now.
type Options struct {
	Config  *config.Config
	Backend backend.Backend
	Watcher *backend.Watcher
	Now     func() time.Time
}

func NewModel(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	reminders := backend.NewReminderCache(opts.Backend)
	results := make(chan schedule.SearchResult, 8)

	gotoInput := textinput.New()
	gotoInput.Prompt = "Go to: "
	gotoInput.Placeholder = "tomorrow, next friday, 2025-12-24"

	m := &Model{
		config:        cfg,
		backend:       opts.Backend,
		reminders:     reminders,
		pets:          backend.NewPetCache(opts.Backend, cfg.PetsStaleTime),
		workflow:      schedule.NewWorkflow(opts.Backend, reminders, now),
		nav:           calendar.NewNavigator(now),
		parser:        parser.New(now),
		watcher:       opts.Watcher,
		now:           now,
		searchResults: results,
		mode:          ViewCalendar,
		gotoInput:     gotoInput,
		styles:        DefaultStyles(cfg.Colors),
	}

	// The callback runs on the lookup goroutine; a full channel means the
	// UI is behind and a newer result will follow.
	m.search = schedule.NewOwnerSearch(opts.Backend, cfg.SearchDelay, cfg.SearchMinChars, func(r schedule.SearchResult) {
		select {
		case results <- r:
		default:
		}
	})

	return m
}

func DefaultStyles(colors map[string]string) Styles {
	color := func(name, fallback string) lipgloss.Color {
		if c, ok := colors[name]; ok && c != "" {
			return lipgloss.Color(c)
		}
		return lipgloss.Color(fallback)
	}

	return Styles{
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(color("selected", "62")).
			Bold(true),
		Today: lipgloss.NewStyle().
			Foreground(color("today", "11")).
			Bold(true),
		Weekend: lipgloss.NewStyle().
			Foreground(color("weekend", "4")),
		Outside: lipgloss.NewStyle().
			Foreground(color("outside", "240")),
		Header: lipgloss.NewStyle().
			Foreground(color("header", "63")).
			Bold(true),
		Reminder: lipgloss.NewStyle().
			Foreground(color("reminder", "2")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Error: lipgloss.NewStyle().
			Foreground(color("error", "9")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(color("success", "10")),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")),
		Focused: lipgloss.NewStyle().
			Foreground(color("header", "63")).
			Bold(true),
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		m.loadCmd(false),
		m.catalogCmd(),
		m.waitForSearch(),
	}
	if m.config.AutoRefresh {
		cmds = append(cmds, m.tickCmd())
	}
	if m.watcher != nil {
		cmds = append(cmds, m.waitForChange())
	}
	m.loading = true
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tickMsg:
		if !m.config.AutoRefresh {
			return m, nil
		}
		return m, tea.Batch(m.loadCmd(false), m.tickCmd())

	case storeChangedMsg:
		log.Debug().Str("path", msg.Path).Msg("store changed, reloading")
		m.pets.Invalidate()
		return m, tea.Batch(m.loadCmd(false), m.waitForChange())

	case remindersLoadedMsg:
		m.loading = false
		m.nav.SetReminders(msg.reminders)
		m.clampAgenda()
		if msg.err != nil {
			m.loadErr = backend.ErrorMessage(msg.err)
			return m, nil
		}
		m.loadErr = ""
		if msg.manual {
			return m, m.showMessage(schedule.NotifyInfo, "Refreshed.")
		}
		return m, nil

	case catalogLoadedMsg:
		if msg.err != nil {
			log.Warn().Err(msg.err).Msg("pet catalog load failed")
		}
		m.catalog = msg.catalog
		return m, nil

	case ownerPetsMsg:
		if m.form != nil {
			m.form.setOwnerPets(msg.ownerID, msg.pets, msg.err)
		}
		return m, nil

	case searchResultMsg:
		if m.form != nil {
			m.form.setSuggestions(m.search.Results())
		}
		return m, m.waitForSearch()

	case submittedMsg:
		return m.handleSubmitted(msg)

	case deletedMsg:
		m.nav.SetReminders(m.reminders.Snapshot())
		m.clampAgenda()
		return m, m.showWorkflowNotification()

	case statusChangedMsg:
		m.nav.SetReminders(msg.reminders)
		if msg.err != nil {
			return m, m.showMessage(schedule.NotifyError, backend.ErrorMessage(msg.err))
		}
		return m, m.showMessage(schedule.NotifySuccess, "Status set to "+msg.status.Label()+".")

	case messageTimeoutMsg:
		if msg.id == m.messageID {
			m.message = ""
			m.workflow.ClearNotification()
		}
		return m, nil
	}

	if m.mode == ViewForm && m.form != nil {
		return m, m.form.updateInputs(msg)
	}
	return m, nil
}

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	switch m.mode {
	case ViewForm:
		return m.viewForm()
	case ViewHelp:
		return m.viewHelp()
	default:
		return m.viewCalendar()
	}
}

func (m *Model) handleSubmitted(msg submittedMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	if errors.Is(msg.err, schedule.ErrSubmitInProgress) {
		return m, nil
	}

	m.nav.SetReminders(m.reminders.Snapshot())
	notify := m.showWorkflowNotification()
	if msg.err != nil || m.form == nil {
		return m, notify
	}

	// Land on the saved reminder's day.
	if date, ok := reminder.ParseDateKey(msg.saved.DateKey()); ok {
		m.nav.GoTo(date)
	}
	m.closeForm()
	return m, notify
}

func (m *Model) closeForm() {
	m.search.Cancel()
	m.form = nil
	m.mode = ViewCalendar
	m.workflow.Reset()
	m.clampAgenda()
}

// selectedReminder is the agenda entry under the cursor.
func (m *Model) selectedReminder() (reminder.Reminder, bool) {
	list := m.nav.SelectedReminders()
	if len(list) == 0 {
		return reminder.Reminder{}, false
	}
	if m.agendaIndex >= len(list) {
		m.agendaIndex = 0
	}
	return list[m.agendaIndex], true
}

func (m *Model) clampAgenda() {
	if n := len(m.nav.SelectedReminders()); m.agendaIndex >= n {
		m.agendaIndex = 0
	}
}

// showMessage sets the status line and schedules its removal. Only the
// latest message's timeout clears it.
func (m *Model) showMessage(t schedule.NotificationType, msg string) tea.Cmd {
	m.messageID++
	id := m.messageID
	m.message = msg
	m.messageType = t
	return tea.Tick(messageTimeout, func(time.Time) tea.Msg {
		return messageTimeoutMsg{id: id}
	})
}

func (m *Model) showWorkflowNotification() tea.Cmd {
	n := m.workflow.Notification()
	if n == nil {
		return nil
	}
	return m.showMessage(n.Type, n.Message)
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.config.RefreshRate, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadCmd refetches the reminder list. A manual load also asks the backend
// to drop its cached listing first.
func (m *Model) loadCmd(manual bool) tea.Cmd {
	cache := m.reminders
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		var (
			list []reminder.Reminder
			err  error
		)
		if manual {
			list, err = cache.Reload(ctx)
		} else {
			list, err = cache.Refresh(ctx)
		}
		if err != nil {
			log.Error().Err(err).Msg("loading reminders")
		}
		return remindersLoadedMsg{reminders: list, err: err, manual: manual}
	}
}

func (m *Model) catalogCmd() tea.Cmd {
	pets := m.pets
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		catalog, err := pets.Catalog(ctx)
		return catalogLoadedMsg{catalog: catalog, err: err}
	}
}

func (m *Model) ownerPetsCmd(ownerID string) tea.Cmd {
	pets := m.pets
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		list, err := pets.ForOwner(ctx, ownerID)
		return ownerPetsMsg{ownerID: ownerID, pets: list, err: err}
	}
}

func (m *Model) waitForSearch() tea.Cmd {
	results := m.searchResults
	return func() tea.Msg {
		return searchResultMsg(<-results)
	}
}

func (m *Model) waitForChange() tea.Cmd {
	events := m.watcher.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return storeChangedMsg(ev)
	}
}

// Message types
type tickMsg struct{}

type messageTimeoutMsg struct {
	id int
}

type remindersLoadedMsg struct {
	reminders []reminder.Reminder
	err       error
	manual    bool
}

type catalogLoadedMsg struct {
	catalog reminder.PetCatalog
	err     error
}

type ownerPetsMsg struct {
	ownerID string
	pets    []reminder.Pet
	err     error
}

type searchResultMsg schedule.SearchResult

type storeChangedMsg backend.ChangeEvent

type submittedMsg struct {
	saved reminder.Reminder
	err   error
}

type deletedMsg struct {
	err error
}

type statusChangedMsg struct {
	reminders []reminder.Reminder
	status    reminder.Status
	err       error
}
