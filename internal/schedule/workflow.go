package schedule

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pawcal/pawcal/internal/backend"
	"github.com/pawcal/pawcal/internal/parser"
	"github.com/pawcal/pawcal/internal/reminder"
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) inFlight() bool {
	return s == StateValidating || s == StateSubmitting
}

type NotificationType string

const (
	NotifySuccess NotificationType = "success"
	NotifyError   NotificationType = "error"
	NotifyInfo    NotificationType = "info"
)

// Notification is the one-line outcome shown to the user.
type Notification struct {
	Type    NotificationType
	Message string
}

const (
	msgCreated = "Reminder saved."
	msgUpdated = "Reminder updated."
	msgDeleted = "Reminder deleted."
)

// Writer is the persistence side of the backend.
type Writer interface {
	CreateReminder(ctx context.Context, in backend.ReminderInput) (reminder.Reminder, error)
	UpdateReminder(ctx context.Context, id string, in backend.ReminderUpdate) (reminder.Reminder, error)
	DeleteReminder(ctx context.Context, id string) error
}

// ReminderList is the shared reminder list that duplicates are checked
// against and that is refreshed after each change.
type ReminderList interface {
	Snapshot() []reminder.Reminder
	Refresh(ctx context.Context) ([]reminder.Reminder, error)
	Remove(id string)
}

// Validated is a draft that passed every check, normalised and trimmed.
type Validated struct {
	OwnerID    string
	OwnerName  string
	OwnerPhone string
	PetIDs     []string
	PetNames   []string
	Date       string
	Time       string
	Type       string
	Message    string
	Status     reminder.Status
}

// Input is the create payload, carrying every selected pet.
func (v Validated) Input() backend.ReminderInput {
	return backend.ReminderInput{
		OwnerID:    v.OwnerID,
		OwnerName:  v.OwnerName,
		OwnerPhone: v.OwnerPhone,
		PetIDs:     v.PetIDs,
		PetNames:   v.PetNames,
		Date:       v.Date,
		Time:       v.Time,
		Type:       v.Type,
		Message:    v.Message,
		Status:     v.Status,
	}
}

// Update is the update payload. The service updates a single pet, so only
// the first selected pet is sent.
func (v Validated) Update() backend.ReminderUpdate {
	var petID string
	if len(v.PetIDs) > 0 {
		petID = v.PetIDs[0]
	}
	return backend.ReminderUpdate{
		OwnerID:    v.OwnerID,
		OwnerName:  v.OwnerName,
		OwnerPhone: v.OwnerPhone,
		PetID:      petID,
		Date:       v.Date,
		Time:       v.Time,
		Type:       v.Type,
		Message:    v.Message,
		Status:     v.Status,
	}
}

// Workflow validates and submits reminder changes.
type Workflow struct {
	writer    Writer
	reminders ReminderList
	parser    *parser.Parser
	now       func() time.Time

	mu           sync.Mutex
	state        State
	notification *Notification
	lastErr      *Error
}

// NewWorkflow returns an idle workflow. A nil clock means time.Now.
func NewWorkflow(w Writer, list ReminderList, now func() time.Time) *Workflow {
	if now == nil {
		now = time.Now
	}
	return &Workflow{
		writer:    w,
		reminders: list,
		parser:    parser.New(now),
		now:       now,
	}
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Submitting reports an in-flight create or update, from validation until
// the write returns.
func (w *Workflow) Submitting() bool {
	return w.State().inFlight()
}

func (w *Workflow) Notification() *Notification {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.notification == nil {
		return nil
	}
	n := *w.notification
	return &n
}

func (w *Workflow) ClearNotification() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notification = nil
}

// LastError is the failure behind the Failed state, nil otherwise.
func (w *Workflow) LastError() *Error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Reset returns an idle workflow to Idle and clears its notification. It
// does nothing while a submission is in flight.
func (w *Workflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.inFlight() {
		return
	}
	w.state = StateIdle
	w.notification = nil
	w.lastErr = nil
}

// Validate checks d against the loaded reminders. editingID, when set, is
// the reminder being updated and is ignored by the duplicate check.
func (w *Workflow) Validate(d Draft, editingID string) (Validated, error) {
	date := w.parser.DateKey(d.Date)
	if date == "" {
		return Validated{}, invalidError(msgInvalidDate)
	}

	clock := w.parser.TimeKey(d.Time)
	if clock == "" {
		return Validated{}, invalidError(msgInvalidTime)
	}

	at, ok := reminder.Combine(date, clock)
	if !ok {
		return Validated{}, invalidError(msgInvalidDate)
	}
	if at.Before(w.now()) {
		return Validated{}, &Error{Kind: KindPastSchedule, Message: msgPast}
	}

	v := Validated{
		OwnerID:    strings.TrimSpace(d.OwnerID),
		OwnerName:  strings.TrimSpace(d.OwnerName),
		OwnerPhone: strings.TrimSpace(d.OwnerPhone),
		PetIDs:     d.PetIDs(),
		PetNames:   d.PetNames(),
		Date:       date,
		Time:       clock,
		Type:       strings.TrimSpace(d.Type),
		Message:    strings.TrimSpace(d.Message),
		Status:     reminder.NormalizeStatus(string(d.Status)),
	}
	if v.Type == "" || v.Message == "" || v.OwnerID == "" || len(v.PetIDs) == 0 {
		return Validated{}, &Error{Kind: KindIncompleteForm, Message: msgIncomplete}
	}

	for _, r := range w.reminders.Snapshot() {
		if editingID != "" && r.ID == editingID {
			continue
		}
		if r.OwnerID == v.OwnerID && r.DateKey() == v.Date && r.TimeKey() == v.Time {
			return Validated{}, duplicateError(v.OwnerName, r)
		}
	}

	return v, nil
}

// Create validates d and creates a reminder for every selected pet.
func (w *Workflow) Create(ctx context.Context, d Draft) (reminder.Reminder, error) {
	return w.run(ctx, d, "", msgCreated, func(v Validated) (reminder.Reminder, error) {
		return w.writer.CreateReminder(ctx, v.Input())
	})
}

// Update validates d and writes it over reminder id.
func (w *Workflow) Update(ctx context.Context, id string, d Draft) (reminder.Reminder, error) {
	return w.run(ctx, d, id, msgUpdated, func(v Validated) (reminder.Reminder, error) {
		return w.writer.UpdateReminder(ctx, id, v.Update())
	})
}

// Submit creates or updates from f and resets f on success. On failure f is
// left as it was so it can be corrected.
func (w *Workflow) Submit(ctx context.Context, f *Form) (reminder.Reminder, error) {
	var (
		saved reminder.Reminder
		err   error
	)
	if f.Editing() {
		saved, err = w.Update(ctx, f.EditingID, f.Draft)
	} else {
		saved, err = w.Create(ctx, f.Draft)
	}
	if err != nil {
		return saved, err
	}
	f.Reset(w.parser.DateKey(f.Draft.Date))
	return saved, nil
}

func (w *Workflow) run(ctx context.Context, d Draft, editingID, successMsg string, send func(Validated) (reminder.Reminder, error)) (reminder.Reminder, error) {
	w.mu.Lock()
	if w.state.inFlight() {
		w.mu.Unlock()
		return reminder.Reminder{}, ErrSubmitInProgress
	}
	w.state = StateValidating
	w.mu.Unlock()

	v, err := w.Validate(d, editingID)
	if err != nil {
		return reminder.Reminder{}, w.fail(err)
	}

	w.setState(StateSubmitting)
	saved, err := send(v)
	if err != nil {
		return reminder.Reminder{}, w.fail(err)
	}

	w.refresh(ctx)
	w.succeed(successMsg)
	return saved, nil
}

// Delete removes reminder id. The local list drops it straight away and is
// then refreshed from the backend.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	if err := w.writer.DeleteReminder(ctx, id); err != nil {
		se := transportError(err)
		w.notify(NotifyError, se.Message)
		return se
	}

	w.reminders.Remove(id)
	w.refresh(ctx)
	w.notify(NotifySuccess, msgDeleted)
	return nil
}

func (w *Workflow) refresh(ctx context.Context) {
	if _, err := w.reminders.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("reminder refresh after change failed")
	}
}

func (w *Workflow) setState(s State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = s
}

func (w *Workflow) fail(err error) error {
	se := asError(err)
	log.Info().Str("kind", se.Kind.String()).Msg(se.Message)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateFailed
	w.lastErr = se
	w.notification = &Notification{Type: NotifyError, Message: se.Message}
	return se
}

func (w *Workflow) succeed(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateSuccess
	w.lastErr = nil
	w.notification = &Notification{Type: NotifySuccess, Message: msg}
}

func (w *Workflow) notify(t NotificationType, msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notification = &Notification{Type: t, Message: msg}
}
