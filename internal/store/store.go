// Package store is a SQLite stand-in for the clinic's reminder service. It
// backs the local TUI mode and the mock REST server.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	// use the pure-go sqlite driver.
	_ "modernc.org/sqlite"

	"github.com/pawcal/pawcal/internal/backend"
	"github.com/pawcal/pawcal/internal/reminder"
)

//go:embed schema.sql
var schemaSQL string

// ErrInvalidReminder is returned for writes missing the owner or the date.
var ErrInvalidReminder = fmt.Errorf("reminder needs an owner and a date: %w", backend.ErrInvalidInput)

// Store implements backend.Backend on a single SQLite file.
type Store struct {
	conn *sql.DB
	path string
	now  func() time.Time
}

var _ backend.Backend = (*Store)(nil)

// Open connects to the sqlite database at filename and creates the tables
// if they are missing. With seed set, an empty database is filled with the
// demo owners, pets and reminders.
func Open(ctx context.Context, filename string, seed bool) (*Store, error) {
	conn, err := sql.Open("sqlite", filename)
	if err != nil {
		return nil, fmt.Errorf("error connecting to sqlite db at %s: %w", filename, err)
	}
	// One connection serialises writers; the default rollback journal keeps
	// commits in the main file where the watcher sees them.
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn, path: filename, now: time.Now}

	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error running base sql: %w", err)
	}

	if seed {
		if err := s.seedIfEmpty(ctx); err != nil {
			conn.Close()
			return nil, err
		}
	}

	return s, nil
}

// Path is the database file, for the change watcher.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	return s.conn.Close()
}

const reminderColumns = `id, owner_id, owner_name, owner_phone, pet_ids, pet_names,
	reminder_date, reminder_time, reminder_type, message, status, created_at, updated_at`

func (s *Store) ListReminders(ctx context.Context) ([]reminder.Reminder, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders ORDER BY reminder_date, reminder_time, id`)
	if err != nil {
		return nil, fmt.Errorf("error loading reminders: %w", err)
	}
	defer rows.Close()

	var list []reminder.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error scanning reminders: %w", err)
	}

	return list, nil
}

func (s *Store) getReminder(ctx context.Context, id string) (reminder.Reminder, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE id = ?`, id)
	r, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return reminder.Reminder{}, fmt.Errorf("reminder %s: %w", id, backend.ErrNotFound)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReminder(row scanner) (reminder.Reminder, error) {
	var (
		r                    reminder.Reminder
		petIDs, petNames     string
		status               string
		createdAt, updatedAt string
	)

	err := row.Scan(&r.ID, &r.OwnerID, &r.OwnerName, &r.OwnerPhone, &petIDs, &petNames,
		&r.Date, &r.Time, &r.Type, &r.Message, &status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, err
		}
		return r, fmt.Errorf("error scanning reminder: %w", err)
	}

	r.PetIDs = reminder.SplitIDs(petIDs)
	if err := json.Unmarshal([]byte(petNames), &r.PetNames); err != nil {
		log.Warn().Err(err).Str("id", r.ID).Msg("unreadable pet names")
	}
	r.Status = reminder.NormalizeStatus(status)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return r, nil
}

func (s *Store) CreateReminder(ctx context.Context, in backend.ReminderInput) (reminder.Reminder, error) {
	if strings.TrimSpace(in.OwnerID) == "" || reminder.DateKey(in.Date) == "" {
		return reminder.Reminder{}, ErrInvalidReminder
	}

	now := s.now().UTC()
	r := reminder.Reminder{
		ID:         "r" + uuid.NewString(),
		OwnerID:    in.OwnerID,
		OwnerName:  in.OwnerName,
		OwnerPhone: in.OwnerPhone,
		PetIDs:     slices.Clone(in.PetIDs),
		PetNames:   slices.Clone(in.PetNames),
		Date:       reminder.DateKey(in.Date),
		Time:       reminder.TimeKey(in.Time),
		Type:       in.Type,
		Message:    in.Message,
		Status:     reminder.NormalizeStatus(string(in.Status)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.insertReminder(ctx, s.conn, r); err != nil {
		return reminder.Reminder{}, err
	}

	log.Debug().Str("id", r.ID).Str("date", r.Date).Msg("reminder created")
	return r, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertReminder(ctx context.Context, db execer, r reminder.Reminder) error {
	names, err := json.Marshal(nonNil(r.PetNames))
	if err != nil {
		return fmt.Errorf("error encoding pet names: %w", err)
	}

	_, err = db.ExecContext(ctx, `INSERT INTO reminders (`+reminderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.OwnerID, r.OwnerName, r.OwnerPhone, r.PetIDsCSV(), string(names),
		r.Date, r.Time, r.Type, r.Message, string(r.Status),
		r.CreatedAt.Format(time.RFC3339), r.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("error inserting reminder: %w", err)
	}
	return nil
}

// UpdateReminder replaces the editable fields of id. An update names at most
// one pet; when it is empty the stored pets are kept.
func (s *Store) UpdateReminder(ctx context.Context, id string, in backend.ReminderUpdate) (reminder.Reminder, error) {
	r, err := s.getReminder(ctx, id)
	if err != nil {
		return reminder.Reminder{}, err
	}

	if strings.TrimSpace(in.OwnerID) == "" || reminder.DateKey(in.Date) == "" {
		return reminder.Reminder{}, ErrInvalidReminder
	}

	r.OwnerID = in.OwnerID
	r.OwnerName = in.OwnerName
	r.OwnerPhone = in.OwnerPhone
	r.Date = reminder.DateKey(in.Date)
	r.Time = reminder.TimeKey(in.Time)
	r.Type = in.Type
	r.Message = in.Message
	r.Status = reminder.NormalizeStatus(string(in.Status))
	r.UpdatedAt = s.now().UTC()

	if in.PetID != "" {
		name, err := s.petName(ctx, in.PetID)
		if err != nil {
			return reminder.Reminder{}, err
		}
		r.PetIDs = []string{in.PetID}
		r.PetNames = []string{name}
	}

	names, err := json.Marshal(nonNil(r.PetNames))
	if err != nil {
		return reminder.Reminder{}, fmt.Errorf("error encoding pet names: %w", err)
	}

	_, err = s.conn.ExecContext(ctx, `UPDATE reminders SET
		owner_id = ?, owner_name = ?, owner_phone = ?, pet_ids = ?, pet_names = ?,
		reminder_date = ?, reminder_time = ?, reminder_type = ?, message = ?, status = ?,
		updated_at = ?
		WHERE id = ?`,
		r.OwnerID, r.OwnerName, r.OwnerPhone, r.PetIDsCSV(), string(names),
		r.Date, r.Time, r.Type, r.Message, string(r.Status),
		r.UpdatedAt.Format(time.RFC3339), id)
	if err != nil {
		return reminder.Reminder{}, fmt.Errorf("error updating reminder %s: %w", id, err)
	}

	log.Debug().Str("id", id).Msg("reminder updated")
	return r, nil
}

func (s *Store) petName(ctx context.Context, id string) (string, error) {
	var name string
	err := s.conn.QueryRowContext(ctx, `SELECT name FROM pets WHERE id = ?`, id).Scan(&name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return reminder.PetCatalog{}.Name(id), nil
	case err != nil:
		return "", fmt.Errorf("error loading pet %s: %w", id, err)
	}
	return name, nil
}

func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("error deleting reminder %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting reminder %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("reminder %s: %w", id, backend.ErrNotFound)
	}

	log.Debug().Str("id", id).Msg("reminder deleted")
	return nil
}

// InvalidateReminderCache is a no-op: every read goes to the database.
func (s *Store) InvalidateReminderCache(context.Context) error {
	return nil
}

func (s *Store) ListPets(ctx context.Context, ownerID string) ([]reminder.Pet, error) {
	query := `SELECT id, name, species, breed, age, weight, owner_id FROM pets`
	var args []any
	if ownerID != "" {
		query += ` WHERE owner_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY name, id`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading pets: %w", err)
	}
	defer rows.Close()

	var pets []reminder.Pet
	for rows.Next() {
		var p reminder.Pet
		if err := rows.Scan(&p.ID, &p.Name, &p.Species, &p.Breed, &p.Age, &p.Weight, &p.OwnerID); err != nil {
			return nil, fmt.Errorf("error scanning pet: %w", err)
		}
		pets = append(pets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error scanning pets: %w", err)
	}

	return pets, nil
}

// SearchOwners matches term case-insensitively against names and as a
// substring of phone numbers. SQLite's LOWER only folds ASCII, so the
// filtering happens here.
func (s *Store) SearchOwners(ctx context.Context, term string) ([]reminder.OwnerOption, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, name, phone, email FROM owners ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("error loading owners: %w", err)
	}
	defer rows.Close()

	needle := strings.ToLower(strings.TrimSpace(term))
	var owners []reminder.OwnerOption
	for rows.Next() {
		var o reminder.OwnerOption
		if err := rows.Scan(&o.ID, &o.Name, &o.Phone, &o.Email); err != nil {
			return nil, fmt.Errorf("error scanning owner: %w", err)
		}
		if needle == "" || strings.Contains(strings.ToLower(o.Name), needle) || strings.Contains(o.Phone, needle) {
			owners = append(owners, o)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error scanning owners: %w", err)
	}

	return owners, nil
}

// AddOwner inserts or replaces an owner.
func (s *Store) AddOwner(ctx context.Context, o reminder.Owner) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO owners (id, name, phone, email, address) VALUES (?, ?, ?, ?, ?)`,
		o.ID, o.Name, o.Phone, o.Email, o.Address)
	if err != nil {
		return fmt.Errorf("error saving owner %s: %w", o.ID, err)
	}
	return nil
}

// AddPet inserts or replaces a pet.
func (s *Store) AddPet(ctx context.Context, p reminder.Pet) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO pets (id, name, species, breed, age, weight, owner_id) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Species, p.Breed, p.Age, p.Weight, p.OwnerID)
	if err != nil {
		return fmt.Errorf("error saving pet %s: %w", p.ID, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
