package reminder

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// DefaultStatus is applied to new reminders and to any unrecognised status.
const DefaultStatus = StatusPending

// Statuses lists the selectable statuses in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusCompleted, StatusCancelled}
}

// NormalizeStatus maps empty or unknown values to DefaultStatus.
func NormalizeStatus(s string) Status {
	switch Status(strings.TrimSpace(s)) {
	case StatusPending:
		return StatusPending
	case StatusCompleted:
		return StatusCompleted
	case StatusCancelled:
		return StatusCancelled
	default:
		return DefaultStatus
	}
}

func (s Status) Label() string {
	if s == "" {
		return string(DefaultStatus)
	}
	return string(s)
}

// Next cycles through Statuses, used by the form's status picker.
func (s Status) Next() Status {
	all := Statuses()
	for i, st := range all {
		if st == s {
			return all[(i+1)%len(all)]
		}
	}
	return DefaultStatus
}

// Reminder is a scheduled appointment for one owner and one or more pets.
// Date and Time keep the raw values received from the backend; use DateKey
// and TimeKey to read them in canonical form.
type Reminder struct {
	ID         string
	OwnerID    string
	OwnerName  string
	OwnerPhone string
	PetIDs     []string
	PetNames   []string
	Date       string
	Time       string
	Type       string
	Message    string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (r Reminder) DateKey() string {
	return DateKey(r.Date)
}

func (r Reminder) TimeKey() string {
	return TimeKey(r.Time)
}

// Minutes returns the reminder's minutes since midnight, or false when it
// has no usable time.
func (r Reminder) Minutes() (int, bool) {
	return MinutesSinceMidnight(r.TimeKey())
}

func (r Reminder) PetIDsCSV() string {
	return strings.Join(r.PetIDs, ",")
}

type Pet struct {
	ID      string
	Name    string
	Species string
	Breed   string
	Age     int
	Weight  float64
	OwnerID string
}

type Owner struct {
	ID      string
	Name    string
	Phone   string
	Email   string
	Address string
}

// OwnerOption is an owner search hit.
type OwnerOption struct {
	ID    string
	Name  string
	Phone string
	Email string
}

// Label is the text shown in the owner field once the option is selected.
func (o OwnerOption) Label() string {
	if o.Name != "" {
		return o.Name
	}
	return o.Phone
}

// Contact is the secondary line shown under a suggestion.
func (o OwnerOption) Contact() string {
	switch {
	case o.Phone != "":
		return o.Phone
	case o.Email != "":
		return o.Email
	default:
		return "no contact details"
	}
}

// SplitIDs splits a comma-joined ID list, trimming and dropping empties.
func SplitIDs(csv string) []string {
	var ids []string
	for _, part := range strings.Split(csv, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
