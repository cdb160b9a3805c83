package reminder

import (
	"fmt"
	"strings"
)

// FallbackTitle is shown for reminders with neither a type nor a message.
const FallbackTitle = "Reminder"

// Title is the reminder type, else the message, else FallbackTitle.
func Title(r Reminder) string {
	if t := strings.TrimSpace(r.Type); t != "" {
		return t
	}
	if m := strings.TrimSpace(r.Message); m != "" {
		return m
	}
	return FallbackTitle
}

// Subtitle returns the message when it adds something beyond title.
func Subtitle(r Reminder, title string) (string, bool) {
	m := strings.TrimSpace(r.Message)
	if m == "" || m == title {
		return "", false
	}
	return m, true
}

// OwnerLabel renders "name · phone", or whichever half is present.
func OwnerLabel(r Reminder) (string, bool) {
	name := strings.TrimSpace(r.OwnerName)
	phone := strings.TrimSpace(r.OwnerPhone)

	switch {
	case name != "" && phone != "":
		return name + " · " + phone, true
	case name != "":
		return name, true
	case phone != "":
		return phone, true
	default:
		return "", false
	}
}

// TimeLabel is the reminder's canonical HH:MM, if any.
func TimeLabel(r Reminder) (string, bool) {
	key := r.TimeKey()
	return key, key != ""
}

// PetCatalog resolves pet IDs to display names.
type PetCatalog struct {
	names map[string]string
}

// NewPetCatalog indexes pets once; pets without a name get "Pet #<id>".
func NewPetCatalog(pets []Pet) PetCatalog {
	names := make(map[string]string, len(pets))
	for _, p := range pets {
		name := p.Name
		if name == "" {
			name = placeholderPetName(p.ID)
		}
		names[p.ID] = name
	}
	return PetCatalog{names: names}
}

func (c PetCatalog) Name(id string) string {
	if name, ok := c.names[id]; ok {
		return name
	}
	return placeholderPetName(id)
}

// Names resolves a comma-joined ID list, preserving order.
func (c PetCatalog) Names(csv string) []string {
	ids := SplitIDs(csv)
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, c.Name(id))
	}
	return names
}

func (c PetCatalog) Len() int {
	return len(c.names)
}

// PetNames resolves the reminder's pets against the catalog.
func PetNames(r Reminder, catalog PetCatalog) []string {
	return catalog.Names(r.PetIDsCSV())
}

func placeholderPetName(id string) string {
	return fmt.Sprintf("Pet #%s", id)
}
