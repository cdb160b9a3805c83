package backend

import (
	"context"
	"time"

	"github.com/pawcal/pawcal/internal/reminder"
)

// Backend is everything the calendar needs from the reminder service.
type Backend interface {
	// ListReminders returns a full snapshot of the reminder list
	ListReminders(ctx context.Context) ([]reminder.Reminder, error)
	// ListPets returns all pets, or only ownerID's pets when it is set
	ListPets(ctx context.Context, ownerID string) ([]reminder.Pet, error)
	// SearchOwners matches term against owner names and phone numbers
	SearchOwners(ctx context.Context, term string) ([]reminder.OwnerOption, error)
	CreateReminder(ctx context.Context, in ReminderInput) (reminder.Reminder, error)
	UpdateReminder(ctx context.Context, id string, in ReminderUpdate) (reminder.Reminder, error)
	DeleteReminder(ctx context.Context, id string) error
	// InvalidateReminderCache asks the service to drop any cached listing
	InvalidateReminderCache(ctx context.Context) error
}

// ReminderInput is the create payload. It carries every selected pet.
type ReminderInput struct {
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

// ReminderUpdate is the update payload. Updates address a single pet.
type ReminderUpdate struct {
	OwnerID    string
	OwnerName  string
	OwnerPhone string
	PetID      string
	Date       string
	Time       string
	Type       string
	Message    string
	Status     reminder.Status
}

// ChangeEvent reports that the data behind a backend changed outside this
// process.
type ChangeEvent struct {
	Path      string
	Timestamp time.Time
}
