package schedule

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pawcal/pawcal/internal/reminder"
)

// PetChoice is one selected pet. Keeping ID and name in one value means the
// two can never drift apart.
type PetChoice struct {
	ID   string
	Name string
}

// Draft is the reminder being edited in the form.
type Draft struct {
	OwnerID    string
	OwnerName  string
	OwnerPhone string
	Pets       []PetChoice
	Date       string
	Time       string
	Type       string
	Message    string
	Status     reminder.Status
}

// NewDraft returns an empty draft on dateKey.
func NewDraft(dateKey string) Draft {
	return Draft{Date: dateKey, Status: reminder.DefaultStatus}
}

func (d Draft) PetIDs() []string {
	ids := make([]string, 0, len(d.Pets))
	for _, p := range d.Pets {
		ids = append(ids, p.ID)
	}
	return ids
}

func (d Draft) PetNames() []string {
	names := make([]string, 0, len(d.Pets))
	for _, p := range d.Pets {
		names = append(names, p.Name)
	}
	return names
}

func (d Draft) HasPet(id string) bool {
	return slices.ContainsFunc(d.Pets, func(p PetChoice) bool { return p.ID == id })
}

// TogglePet removes the pet when it is selected and appends it otherwise.
func (d *Draft) TogglePet(pet PetChoice) {
	if d.HasPet(pet.ID) {
		d.RemovePet(pet.ID)
		return
	}
	d.Pets = append(d.Pets, pet)
}

func (d *Draft) RemovePet(id string) {
	idx := slices.IndexFunc(d.Pets, func(p PetChoice) bool { return p.ID == id })
	if idx < 0 {
		return
	}
	d.Pets = slices.Delete(d.Pets, idx, idx+1)
}

func (d *Draft) ClearPets() {
	d.Pets = nil
}

func (d *Draft) clearOwner() {
	d.OwnerID = ""
	d.OwnerName = ""
	d.OwnerPhone = ""
	d.ClearPets()
}

// Form is the owner and pet selection state around a Draft.
type Form struct {
	Draft           Draft
	OwnerTerm       string
	Owner           *reminder.OwnerOption
	ShowSuggestions bool
	EditingID       string
}

// NewForm opens a create form on dateKey.
func NewForm(dateKey string) *Form {
	f := &Form{}
	f.Reset(dateKey)
	return f
}

// Clone returns a copy of f that shares no slices or pointers with it.
func (f *Form) Clone() *Form {
	c := *f
	c.Draft.Pets = slices.Clone(f.Draft.Pets)
	if f.Owner != nil {
		owner := *f.Owner
		c.Owner = &owner
	}
	return &c
}

// Editing reports whether the form edits an existing reminder.
func (f *Form) Editing() bool {
	return f.EditingID != ""
}

// Reset empties the form for a new reminder on dateKey.
func (f *Form) Reset(dateKey string) {
	f.Draft = NewDraft(dateKey)
	f.EditingID = ""
	f.resetOwner()
}

// SetOwnerTerm records what was typed in the owner field. Text that no longer
// matches the selected owner's label drops the owner and its pets.
func (f *Form) SetOwnerTerm(term string) {
	f.OwnerTerm = term
	f.ShowSuggestions = true

	if f.Owner != nil && term != f.Owner.Label() {
		f.Owner = nil
		f.Draft.clearOwner()
	}
}

// SelectOwner takes an owner from the suggestions. Pets chosen for a previous
// owner are cleared.
func (f *Form) SelectOwner(owner reminder.OwnerOption) {
	o := owner
	f.Owner = &o
	f.OwnerTerm = owner.Label()
	f.ShowSuggestions = false
	f.Draft.OwnerID = owner.ID
	f.Draft.OwnerName = owner.Name
	f.Draft.OwnerPhone = owner.Phone
	f.Draft.ClearPets()
}

func (f *Form) ClearOwner() {
	f.resetOwner()
}

func (f *Form) resetOwner() {
	f.Owner = nil
	f.OwnerTerm = ""
	f.ShowSuggestions = false
	f.Draft.clearOwner()
}

// TogglePet selects or deselects pet for the current owner.
func (f *Form) TogglePet(pet reminder.Pet) {
	name := pet.Name
	if name == "" {
		name = fmt.Sprintf("Pet #%s", pet.ID)
	}
	f.Draft.TogglePet(PetChoice{ID: pet.ID, Name: name})
}

func (f *Form) RemovePet(id string) {
	f.Draft.RemovePet(id)
}

// LoadReminder fills the form for editing r. Pet names come from catalog.
func (f *Form) LoadReminder(r reminder.Reminder, catalog reminder.PetCatalog) {
	ids := reminder.SplitIDs(r.PetIDsCSV())
	names := catalog.Names(r.PetIDsCSV())

	pets := make([]PetChoice, 0, len(ids))
	for i, id := range ids {
		pets = append(pets, PetChoice{ID: id, Name: names[i]})
	}

	f.EditingID = r.ID
	f.Draft = Draft{
		OwnerID:    r.OwnerID,
		OwnerName:  r.OwnerName,
		OwnerPhone: r.OwnerPhone,
		Pets:       pets,
		Date:       r.DateKey(),
		Time:       r.TimeKey(),
		Type:       r.Type,
		Message:    r.Message,
		Status:     reminder.NormalizeStatus(string(r.Status)),
	}
	f.ShowSuggestions = false

	if strings.TrimSpace(r.OwnerID) == "" {
		f.Owner = nil
		f.OwnerTerm = ""
		f.Draft.clearOwner()
		return
	}
	f.Owner = &reminder.OwnerOption{
		ID:    r.OwnerID,
		Name:  r.OwnerName,
		Phone: r.OwnerPhone,
	}
	f.OwnerTerm = f.Owner.Label()
}
