// Package server exposes any backend.Backend as the REST API the calendar's
// HTTP client speaks. It is what `pawcal serve` runs.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/pawcal/pawcal/internal/backend"
	"github.com/pawcal/pawcal/internal/reminder"
)

const (
	defaultPerPage = backend.DefaultPageSize
	maxPerPage     = backend.PetsPageSize
)

// Server answers the reminder API. Reminder listings are served from a
// snapshot that writes and the cache-clear endpoint drop.
type Server struct {
	backend backend.Backend
	engine  *gin.Engine

	mu       sync.Mutex
	snapshot []reminder.Reminder
	cached   bool
}

func New(b backend.Backend) *Server {
	s := &Server{backend: b}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := router.Group("/api")
	{
		api.GET("/reminders", s.listReminders)
		api.POST("/reminders", s.createReminder)
		api.PUT("/reminders/:id", s.updateReminder)
		api.DELETE("/reminders/:id", s.deleteReminder)
		api.POST("/cache/clear/reminders", s.clearReminderCache)

		api.GET("/pets", s.listPets)
		api.GET("/owners/search", s.searchOwners)
	}

	s.engine = router
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func (s *Server) reminders(ctx context.Context) ([]reminder.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached {
		return s.snapshot, nil
	}

	list, err := s.backend.ListReminders(ctx)
	if err != nil {
		return nil, err
	}
	s.snapshot = list
	s.cached = true
	return list, nil
}

func (s *Server) invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.cached = false
	s.mu.Unlock()
}

func (s *Server) listReminders(c *gin.Context) {
	list, err := s.reminders(c.Request.Context())
	if err != nil {
		handleError(c, err, "Failed to load reminders")
		return
	}

	page, perPage := pagination(c)
	items := paginate(list, page, perPage)

	wire := make([]backend.WireReminder, 0, len(items))
	for _, r := range items {
		wire = append(wire, backend.EncodeReminder(r))
	}

	respond(c, http.StatusOK, backend.Page[backend.WireReminder]{
		Items:   wire,
		Total:   len(list),
		Page:    page,
		PerPage: perPage,
	}, "")
}

func (s *Server) createReminder(c *gin.Context) {
	var body backend.WireReminderInput
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Invalid input: %s", err.Error()), err)
		return
	}

	created, err := s.backend.CreateReminder(c.Request.Context(), body.Input())
	if err != nil {
		handleError(c, err, "Failed to create reminder")
		return
	}
	s.invalidate()

	respond(c, http.StatusCreated, backend.EncodeReminder(created), "Reminder created")
}

func (s *Server) updateReminder(c *gin.Context) {
	var body backend.WireReminderUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Invalid input: %s", err.Error()), err)
		return
	}

	updated, err := s.backend.UpdateReminder(c.Request.Context(), c.Param("id"), body.Update())
	if err != nil {
		handleError(c, err, "Failed to update reminder")
		return
	}
	s.invalidate()

	respond(c, http.StatusOK, backend.EncodeReminder(updated), "Reminder updated")
}

func (s *Server) deleteReminder(c *gin.Context) {
	if err := s.backend.DeleteReminder(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err, "Failed to delete reminder")
		return
	}
	s.invalidate()

	respond(c, http.StatusOK, nil, "Reminder deleted")
}

func (s *Server) clearReminderCache(c *gin.Context) {
	s.invalidate()
	if err := s.backend.InvalidateReminderCache(c.Request.Context()); err != nil {
		handleError(c, err, "Failed to clear reminder cache")
		return
	}
	respond(c, http.StatusOK, nil, "Reminder cache cleared")
}

func (s *Server) listPets(c *gin.Context) {
	pets, err := s.backend.ListPets(c.Request.Context(), c.Query("OwnerId"))
	if err != nil {
		handleError(c, err, "Failed to load pets")
		return
	}

	page, perPage := pagination(c)
	items := paginate(pets, page, perPage)

	wire := make([]backend.WirePet, 0, len(items))
	for _, p := range items {
		wire = append(wire, backend.EncodePet(p))
	}

	respond(c, http.StatusOK, backend.Page[backend.WirePet]{
		Items:   wire,
		Total:   len(pets),
		Page:    page,
		PerPage: perPage,
	}, "")
}

func (s *Server) searchOwners(c *gin.Context) {
	owners, err := s.backend.SearchOwners(c.Request.Context(), c.Query("term"))
	if err != nil {
		handleError(c, err, "Failed to search owners")
		return
	}

	wire := make([]backend.WireOwnerOption, 0, len(owners))
	for _, o := range owners {
		wire = append(wire, backend.EncodeOwnerOption(o))
	}
	respond(c, http.StatusOK, wire, "")
}

// pagination reads page and perPage, falling back to 1 and the default
// page size for missing or malformed values.
func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(c.Query("perPage"))
	if err != nil || perPage < 1 {
		perPage = defaultPerPage
	}
	return page, min(perPage, maxPerPage)
}

func paginate[T any](items []T, page, perPage int) []T {
	start := (page - 1) * perPage
	if start >= len(items) {
		return nil
	}
	end := min(start+perPage, len(items))
	return items[start:end]
}
