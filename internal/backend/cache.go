package backend

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pawcal/pawcal/internal/reminder"
)

// DefaultPetsStaleTime is how long a fetched pets catalog is reused.
const DefaultPetsStaleTime = 5 * time.Minute

// ReminderCache holds the one reminder list shared by every view. It is only
// ever replaced wholesale, except for optimistic removals.
type ReminderCache struct {
	backend Backend
	now     func() time.Time

	mu        sync.RWMutex
	reminders []reminder.Reminder
	loadedAt  time.Time
}

func NewReminderCache(b Backend) *ReminderCache {
	return &ReminderCache{backend: b, now: time.Now}
}

// Refresh refetches the full list. On failure the previous list is kept.
func (c *ReminderCache) Refresh(ctx context.Context) ([]reminder.Reminder, error) {
	list, err := c.backend.ListReminders(ctx)
	if err != nil {
		return c.Snapshot(), err
	}

	c.mu.Lock()
	c.reminders = slices.Clone(list)
	c.loadedAt = c.now()
	c.mu.Unlock()

	return c.Snapshot(), nil
}

// Reload asks the backend to drop its own cache and then refreshes. A failed
// invalidation is logged and does not stop the refresh.
func (c *ReminderCache) Reload(ctx context.Context) ([]reminder.Reminder, error) {
	if err := c.backend.InvalidateReminderCache(ctx); err != nil {
		log.Warn().Err(err).Msg("reminder cache invalidation failed")
	}
	return c.Refresh(ctx)
}

// Remove drops id from the local list without waiting for the backend.
func (c *ReminderCache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reminders = slices.DeleteFunc(c.reminders, func(r reminder.Reminder) bool {
		return r.ID == id
	})
}

// Snapshot returns a copy of the current list.
func (c *ReminderCache) Snapshot() []reminder.Reminder {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.reminders)
}

// LoadedAt is the time of the last successful refresh, zero before the first.
func (c *ReminderCache) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

type petEntry struct {
	pets     []reminder.Pet
	loadedAt time.Time
}

// PetCache keeps the all-pets catalog used for name lookups and the
// per-owner lists used by the pet picker, each reused until stale.
type PetCache struct {
	backend   Backend
	staleTime time.Duration
	now       func() time.Time

	mu      sync.Mutex
	all     *petEntry
	byOwner map[string]*petEntry
}

func NewPetCache(b Backend, staleTime time.Duration) *PetCache {
	if staleTime <= 0 {
		staleTime = DefaultPetsStaleTime
	}
	return &PetCache{
		backend:   b,
		staleTime: staleTime,
		now:       time.Now,
		byOwner:   make(map[string]*petEntry),
	}
}

// All returns every pet, fetching when the cached list is stale. When the
// fetch fails the stale list, if any, is returned along with the error.
func (c *PetCache) All(ctx context.Context) ([]reminder.Pet, error) {
	c.mu.Lock()
	entry := c.all
	c.mu.Unlock()

	if c.fresh(entry) {
		return slices.Clone(entry.pets), nil
	}

	pets, err := c.backend.ListPets(ctx, "")
	if err != nil {
		if entry != nil {
			return slices.Clone(entry.pets), err
		}
		return nil, err
	}

	c.mu.Lock()
	c.all = &petEntry{pets: slices.Clone(pets), loadedAt: c.now()}
	c.mu.Unlock()
	return pets, nil
}

// Catalog indexes All for name lookups.
func (c *PetCache) Catalog(ctx context.Context) (reminder.PetCatalog, error) {
	pets, err := c.All(ctx)
	return reminder.NewPetCatalog(pets), err
}

// ForOwner returns ownerID's pets. An empty ownerID yields nothing.
func (c *PetCache) ForOwner(ctx context.Context, ownerID string) ([]reminder.Pet, error) {
	if ownerID == "" {
		return nil, nil
	}

	c.mu.Lock()
	entry := c.byOwner[ownerID]
	c.mu.Unlock()

	if c.fresh(entry) {
		return slices.Clone(entry.pets), nil
	}

	pets, err := c.backend.ListPets(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.byOwner[ownerID] = &petEntry{pets: slices.Clone(pets), loadedAt: c.now()}
	c.mu.Unlock()
	return pets, nil
}

// Invalidate forgets everything so the next lookup refetches.
func (c *PetCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = nil
	c.byOwner = make(map[string]*petEntry)
}

func (c *PetCache) fresh(entry *petEntry) bool {
	return entry != nil && c.now().Sub(entry.loadedAt) < c.staleTime
}
