package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pawcal/pawcal/internal/reminder"
)

// Envelope wraps every API response.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Page is the paginated listing payload.
type Page[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
}

// FlexString accepts a JSON string or number and always encodes a string.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = FlexString(n.String())
	return nil
}

// FlexIDs accepts an array of IDs or a comma-joined string and encodes an
// array.
type FlexIDs []string

func (ids *FlexIDs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*ids = nil
		return nil
	case len(data) > 0 && data[0] == '"':
		var csv string
		if err := json.Unmarshal(data, &csv); err != nil {
			return err
		}
		*ids = reminder.SplitIDs(csv)
		return nil
	}

	var items []FlexString
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to parse pet ids: %w", err)
	}
	out := make(FlexIDs, 0, len(items))
	for _, item := range items {
		if id := strings.TrimSpace(string(item)); id != "" {
			out = append(out, id)
		}
	}
	*ids = out
	return nil
}

// WireReminder is a reminder as the API serialises it. ReminderDate and
// ReminderTime may arrive as strings or numbers.
type WireReminder struct {
	ID         FlexString `json:"_id,omitempty"`
	LegacyID   FlexString `json:"ID,omitempty"`
	OwnerID    FlexString `json:"OwnerId"`
	OwnerName  string     `json:"OwnerName"`
	OwnerPhone string     `json:"OwnerPhone,omitempty"`
	PetIDs     FlexIDs    `json:"PetIds,omitempty"`
	PetID      FlexString `json:"PetId,omitempty"`
	PetNames   []string   `json:"PetNames,omitempty"`
	Date       any        `json:"ReminderDate"`
	Time       any        `json:"ReminderTime"`
	Type       string     `json:"ReminderType"`
	Message    string     `json:"Message"`
	Status     string     `json:"Status"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// ToReminder converts the wire form, normalising numeric dates and times.
func (w WireReminder) ToReminder() reminder.Reminder {
	id := string(w.ID)
	if id == "" {
		id = string(w.LegacyID)
	}

	petIDs := []string(w.PetIDs)
	if len(petIDs) == 0 && w.PetID != "" {
		petIDs = reminder.SplitIDs(string(w.PetID))
	}

	r := reminder.Reminder{
		ID:         id,
		OwnerID:    string(w.OwnerID),
		OwnerName:  w.OwnerName,
		OwnerPhone: w.OwnerPhone,
		PetIDs:     petIDs,
		PetNames:   w.PetNames,
		Date:       wireDate(w.Date),
		Time:       wireTime(w.Time),
		Type:       w.Type,
		Message:    w.Message,
		Status:     reminder.NormalizeStatus(w.Status),
	}
	if w.CreatedAt != nil {
		r.CreatedAt = *w.CreatedAt
	}
	if w.UpdatedAt != nil {
		r.UpdatedAt = *w.UpdatedAt
	}
	return r
}

// Raw strings are kept as sent so that bad dates stay visible as bad.
func wireDate(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return reminder.DateKey(x)
	default:
		return ""
	}
}

func wireTime(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return reminder.TimeKey(x)
	default:
		return ""
	}
}

// EncodeReminder is the inverse of ToReminder.
func EncodeReminder(r reminder.Reminder) WireReminder {
	w := WireReminder{
		ID:         FlexString(r.ID),
		OwnerID:    FlexString(r.OwnerID),
		OwnerName:  r.OwnerName,
		OwnerPhone: r.OwnerPhone,
		PetIDs:     FlexIDs(r.PetIDs),
		PetNames:   r.PetNames,
		Date:       r.Date,
		Time:       r.Time,
		Type:       r.Type,
		Message:    r.Message,
		Status:     string(reminder.NormalizeStatus(string(r.Status))),
	}
	if !r.CreatedAt.IsZero() {
		created := r.CreatedAt
		w.CreatedAt = &created
	}
	if !r.UpdatedAt.IsZero() {
		updated := r.UpdatedAt
		w.UpdatedAt = &updated
	}
	return w
}

// WireReminderInput is the create request body.
type WireReminderInput struct {
	OwnerID             FlexString `json:"OwnerId"`
	OwnerName           string     `json:"OwnerName"`
	OwnerPhone          string     `json:"OwnerPhone,omitempty"`
	PetIDs              FlexIDs    `json:"PetIds"`
	PetNames            []string   `json:"PetNames"`
	Date                string     `json:"ReminderDate"`
	Time                string     `json:"ReminderTime"`
	Type                string     `json:"ReminderType"`
	Message             string     `json:"Message"`
	Status              string     `json:"Status"`
	CreateCalendarEvent bool       `json:"createCalendarEvent"`
}

func EncodeInput(in ReminderInput) WireReminderInput {
	return WireReminderInput{
		OwnerID:    FlexString(in.OwnerID),
		OwnerName:  in.OwnerName,
		OwnerPhone: in.OwnerPhone,
		PetIDs:     FlexIDs(in.PetIDs),
		PetNames:   in.PetNames,
		Date:       in.Date,
		Time:       in.Time,
		Type:       in.Type,
		Message:    in.Message,
		Status:     string(in.Status),
	}
}

func (w WireReminderInput) Input() ReminderInput {
	return ReminderInput{
		OwnerID:    string(w.OwnerID),
		OwnerName:  w.OwnerName,
		OwnerPhone: w.OwnerPhone,
		PetIDs:     []string(w.PetIDs),
		PetNames:   w.PetNames,
		Date:       w.Date,
		Time:       w.Time,
		Type:       w.Type,
		Message:    w.Message,
		Status:     reminder.NormalizeStatus(w.Status),
	}
}

// WireReminderUpdate is the update request body.
type WireReminderUpdate struct {
	OwnerID    FlexString `json:"OwnerId"`
	OwnerName  string     `json:"OwnerName"`
	OwnerPhone string     `json:"OwnerPhone"`
	PetID      FlexString `json:"PetId"`
	Date       string     `json:"ReminderDate"`
	Time       string     `json:"ReminderTime"`
	Type       string     `json:"ReminderType"`
	Message    string     `json:"Message"`
	Status     string     `json:"Status"`
}

func EncodeUpdate(in ReminderUpdate) WireReminderUpdate {
	return WireReminderUpdate{
		OwnerID:    FlexString(in.OwnerID),
		OwnerName:  in.OwnerName,
		OwnerPhone: in.OwnerPhone,
		PetID:      FlexString(in.PetID),
		Date:       in.Date,
		Time:       in.Time,
		Type:       in.Type,
		Message:    in.Message,
		Status:     string(in.Status),
	}
}

func (w WireReminderUpdate) Update() ReminderUpdate {
	return ReminderUpdate{
		OwnerID:    string(w.OwnerID),
		OwnerName:  w.OwnerName,
		OwnerPhone: w.OwnerPhone,
		PetID:      string(w.PetID),
		Date:       w.Date,
		Time:       w.Time,
		Type:       w.Type,
		Message:    w.Message,
		Status:     reminder.NormalizeStatus(w.Status),
	}
}

type WirePet struct {
	ID      FlexString `json:"_id"`
	Name    string     `json:"Name"`
	Species string     `json:"Species"`
	Breed   string     `json:"Breed,omitempty"`
	Age     int        `json:"Age,omitempty"`
	Weight  float64    `json:"Weight,omitempty"`
	OwnerID FlexString `json:"OwnerId"`
}

func (w WirePet) ToPet() reminder.Pet {
	return reminder.Pet{
		ID:      string(w.ID),
		Name:    w.Name,
		Species: w.Species,
		Breed:   w.Breed,
		Age:     w.Age,
		Weight:  w.Weight,
		OwnerID: string(w.OwnerID),
	}
}

func EncodePet(p reminder.Pet) WirePet {
	return WirePet{
		ID:      FlexString(p.ID),
		Name:    p.Name,
		Species: p.Species,
		Breed:   p.Breed,
		Age:     p.Age,
		Weight:  p.Weight,
		OwnerID: FlexString(p.OwnerID),
	}
}

// WireOwnerOption also accepts the FullName spelling some deployments use.
type WireOwnerOption struct {
	ID       FlexString `json:"_id"`
	Name     string     `json:"Name"`
	FullName string     `json:"FullName,omitempty"`
	Phone    string     `json:"Phone"`
	Email    string     `json:"Email,omitempty"`
}

func (w WireOwnerOption) ToOption() reminder.OwnerOption {
	name := w.Name
	if name == "" {
		name = w.FullName
	}
	return reminder.OwnerOption{
		ID:    string(w.ID),
		Name:  name,
		Phone: w.Phone,
		Email: w.Email,
	}
}

func EncodeOwnerOption(o reminder.OwnerOption) WireOwnerOption {
	return WireOwnerOption{
		ID:    FlexString(o.ID),
		Name:  o.Name,
		Phone: o.Phone,
		Email: o.Email,
	}
}

// ParseReminders decodes a raw reminder listing in either paginated or bare
// array form.
func ParseReminders(data []byte) ([]reminder.Reminder, error) {
	var wire []WireReminder

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &wire); err != nil {
			return nil, fmt.Errorf("failed to parse reminders: %w", err)
		}
	} else {
		var page Page[WireReminder]
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, fmt.Errorf("failed to parse reminders: %w", err)
		}
		wire = page.Items
	}

	reminders := make([]reminder.Reminder, 0, len(wire))
	for _, w := range wire {
		reminders = append(reminders, w.ToReminder())
	}
	return reminders, nil
}
