package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawcal/pawcal/internal/reminder"
)

var (
	ownerA = reminder.OwnerOption{ID: "1", Name: "Nguyen Van A", Phone: "0901"}
	ownerB = reminder.OwnerOption{ID: "2", Name: "Tran Thi B", Phone: "0902"}
	lucky  = reminder.Pet{ID: "p1", Name: "Lucky", OwnerID: "1"}
	mimi   = reminder.Pet{ID: "p2", Name: "Mimi", OwnerID: "1"}
)

func TestDraftPetListsStayAligned(t *testing.T) {
	var d Draft
	d.TogglePet(PetChoice{ID: "p1", Name: "Lucky"})
	d.TogglePet(PetChoice{ID: "p2", Name: "Mimi"})
	d.TogglePet(PetChoice{ID: "p3", Name: "Max"})

	d.RemovePet("p2")
	assert.Equal(t, []string{"p1", "p3"}, d.PetIDs())
	assert.Equal(t, []string{"Lucky", "Max"}, d.PetNames())

	d.RemovePet("missing")
	assert.Len(t, d.PetIDs(), len(d.PetNames()))
}

func TestTogglePetTwiceRestoresOrder(t *testing.T) {
	f := NewForm("2025-12-09")
	f.SelectOwner(ownerA)
	f.TogglePet(lucky)
	f.TogglePet(mimi)

	ids := f.Draft.PetIDs()
	names := f.Draft.PetNames()

	f.TogglePet(reminder.Pet{ID: "p9", Name: "Extra"})
	f.TogglePet(reminder.Pet{ID: "p9", Name: "Extra"})

	assert.Equal(t, ids, f.Draft.PetIDs())
	assert.Equal(t, names, f.Draft.PetNames())

	f.TogglePet(lucky)
	assert.Equal(t, []string{"p2"}, f.Draft.PetIDs())
	assert.Equal(t, []string{"Mimi"}, f.Draft.PetNames())
}

func TestTogglePetWithoutName(t *testing.T) {
	f := NewForm("")
	f.TogglePet(reminder.Pet{ID: "p7"})
	assert.Equal(t, []string{"Pet #p7"}, f.Draft.PetNames())
}

func TestSelectOwnerClearsPets(t *testing.T) {
	f := NewForm("2025-12-09")
	f.SelectOwner(ownerA)
	f.TogglePet(lucky)
	require.Len(t, f.Draft.Pets, 1)

	f.SelectOwner(ownerB)
	assert.Equal(t, "2", f.Draft.OwnerID)
	assert.Equal(t, "Tran Thi B", f.Draft.OwnerName)
	assert.Equal(t, "0902", f.Draft.OwnerPhone)
	assert.Equal(t, "Tran Thi B", f.OwnerTerm)
	assert.False(t, f.ShowSuggestions)
	assert.Empty(t, f.Draft.Pets)
}

func TestSetOwnerTerm(t *testing.T) {
	f := NewForm("2025-12-09")
	f.SelectOwner(ownerA)
	f.TogglePet(lucky)

	// Retyping the exact label keeps everything.
	f.SetOwnerTerm("Nguyen Van A")
	assert.True(t, f.ShowSuggestions)
	require.NotNil(t, f.Owner)
	assert.Len(t, f.Draft.Pets, 1)

	f.SetOwnerTerm("Nguyen Van")
	assert.Nil(t, f.Owner)
	assert.Equal(t, "", f.Draft.OwnerID)
	assert.Empty(t, f.Draft.Pets)
	assert.Equal(t, "Nguyen Van", f.OwnerTerm)
	assert.Equal(t, "2025-12-09", f.Draft.Date)
}

func TestSetOwnerTermUsesPhoneLabel(t *testing.T) {
	f := NewForm("")
	f.SelectOwner(reminder.OwnerOption{ID: "9", Phone: "0999"})
	assert.Equal(t, "0999", f.OwnerTerm)

	f.SetOwnerTerm("0999")
	assert.NotNil(t, f.Owner)
}

func TestClearOwnerAndReset(t *testing.T) {
	f := NewForm("2025-12-09")
	f.Draft.Type = "Checkup"
	f.SelectOwner(ownerA)
	f.TogglePet(lucky)

	f.ClearOwner()
	assert.Nil(t, f.Owner)
	assert.Equal(t, "", f.OwnerTerm)
	assert.Empty(t, f.Draft.Pets)
	assert.Equal(t, "Checkup", f.Draft.Type)

	f.EditingID = "r1"
	f.Reset("2025-12-10")
	assert.Equal(t, NewDraft("2025-12-10"), f.Draft)
	assert.False(t, f.Editing())
}

func TestLoadReminder(t *testing.T) {
	catalog := reminder.NewPetCatalog([]reminder.Pet{lucky, mimi})
	r := reminder.Reminder{
		ID: "r1", OwnerID: "1", OwnerName: "Nguyen Van A", OwnerPhone: "0901",
		PetIDs: []string{"p1", "p5"}, Date: "2025-12-09T00:00:00Z", Time: "10:00:00",
		Type: "Vaccination", Message: "Rabies", Status: "Completed",
	}

	f := NewForm("")
	f.LoadReminder(r, catalog)

	assert.Equal(t, "r1", f.EditingID)
	assert.True(t, f.Editing())
	assert.Equal(t, []string{"p1", "p5"}, f.Draft.PetIDs())
	assert.Equal(t, []string{"Lucky", "Pet #p5"}, f.Draft.PetNames())
	assert.Equal(t, "2025-12-09", f.Draft.Date)
	assert.Equal(t, "10:00", f.Draft.Time)
	assert.Equal(t, reminder.StatusCompleted, f.Draft.Status)
	require.NotNil(t, f.Owner)
	assert.Equal(t, "Nguyen Van A", f.OwnerTerm)
	assert.False(t, f.ShowSuggestions)
}

func TestLoadReminderWithoutOwner(t *testing.T) {
	f := NewForm("")
	f.LoadReminder(reminder.Reminder{ID: "r2", PetIDs: []string{"p1"}, Date: "2025-12-09"}, reminder.PetCatalog{})

	assert.Nil(t, f.Owner)
	assert.Equal(t, "", f.OwnerTerm)
	assert.Empty(t, f.Draft.Pets)
	assert.Equal(t, "r2", f.EditingID)
}

func TestFormCloneIsIndependent(t *testing.T) {
	f := NewForm("2025-12-09")
	f.SelectOwner(ownerA)
	f.TogglePet(lucky)

	c := f.Clone()
	require.NotNil(t, c.Owner)
	assert.Equal(t, f.Draft, c.Draft)

	c.TogglePet(mimi)
	c.Owner.Name = "changed"
	c.Reset("2025-12-10")

	assert.Equal(t, []string{"p1"}, f.Draft.PetIDs())
	assert.Equal(t, "Nguyen Van A", f.Owner.Name)
	assert.Equal(t, "2025-12-09", f.Draft.Date)
	assert.Equal(t, "1", f.Draft.OwnerID)
}
