package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pawcal/pawcal/internal/reminder"
)

var demoOwners = []reminder.Owner{
	{ID: "1", Name: "Nguyễn Văn A", Phone: "0901234567", Email: "a@example.com"},
	{ID: "2", Name: "Trần Thị B", Phone: "0912345678", Email: "b@example.com"},
	{ID: "3", Name: "Lê Văn C", Phone: "0923456789", Email: "c@example.com"},
}

var demoPets = []reminder.Pet{
	{ID: "p1", Name: "Lucky", Species: "Dog", Breed: "Golden Retriever", Age: 3, OwnerID: "1"},
	{ID: "p2", Name: "Mimi", Species: "Cat", Breed: "Persian", Age: 2, OwnerID: "1"},
	{ID: "p3", Name: "Max", Species: "Dog", Breed: "Poodle", Age: 1, OwnerID: "2"},
	{ID: "p4", Name: "Bella", Species: "Cat", Breed: "Siamese", Age: 4, OwnerID: "3"},
}

var demoReminders = []reminder.Reminder{
	{
		ID: "r1", OwnerID: "1", OwnerName: "Nguyễn Văn A", OwnerPhone: "0901234567",
		PetIDs: []string{"p1"}, PetNames: []string{"Lucky"},
		Date: "2025-12-09", Time: "10:00", Type: "Vaccination",
		Message: "Routine vaccination for Lucky", Status: reminder.StatusPending,
	},
	{
		ID: "r2", OwnerID: "2", OwnerName: "Trần Thị B", OwnerPhone: "0912345678",
		PetIDs: []string{"p3"}, PetNames: []string{"Max"},
		Date: "2025-12-10", Time: "14:30", Type: "Checkup",
		Message: "General health check for Max", Status: reminder.StatusPending,
	},
	{
		ID: "r3", OwnerID: "1", OwnerName: "Nguyễn Văn A", OwnerPhone: "0901234567",
		PetIDs: []string{"p2"}, PetNames: []string{"Mimi"},
		Date: "2025-12-12", Time: "09:00", Type: "Grooming",
		Message: "Bath and trim for Mimi", Status: reminder.StatusPending,
	},
}

// seedIfEmpty loads the demo data into a database with no owners.
func (s *Store) seedIfEmpty(ctx context.Context) error {
	var count int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM owners`).Scan(&count); err != nil {
		return fmt.Errorf("error counting owners: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting seed: %w", err)
	}
	defer tx.Rollback()

	for _, o := range demoOwners {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO owners (id, name, phone, email, address) VALUES (?, ?, ?, ?, ?)`,
			o.ID, o.Name, o.Phone, o.Email, o.Address); err != nil {
			return fmt.Errorf("error seeding owner %s: %w", o.ID, err)
		}
	}

	for _, p := range demoPets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pets (id, name, species, breed, age, weight, owner_id) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Species, p.Breed, p.Age, p.Weight, p.OwnerID); err != nil {
			return fmt.Errorf("error seeding pet %s: %w", p.ID, err)
		}
	}

	now := s.now().UTC().Truncate(time.Second)
	for _, r := range demoReminders {
		r.CreatedAt, r.UpdatedAt = now, now
		if err := s.insertReminder(ctx, tx, r); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing seed: %w", err)
	}

	log.Info().
		Int("owners", len(demoOwners)).
		Int("pets", len(demoPets)).
		Int("reminders", len(demoReminders)).
		Msg("seeded demo data")
	return nil
}
