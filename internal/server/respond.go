package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/pawcal/pawcal/internal/backend"
)

func respond(c *gin.Context, status int, data any, message string) {
	body := gin.H{"success": true}
	if data != nil {
		body["data"] = data
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// fail logs err and writes the failure envelope.
func fail(c *gin.Context, status int, message string, err error) {
	log.Error().Err(err).Int("status", status).Str("path", c.FullPath()).Msg(message)
	c.JSON(status, gin.H{"success": false, "message": message})
}

// handleError maps backend errors onto statuses. Unknown errors become a
// 500 carrying fallback as the message.
func handleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, backend.ErrNotFound):
		fail(c, http.StatusNotFound, "Reminder not found", err)
	case errors.Is(err, backend.ErrInvalidInput):
		fail(c, http.StatusBadRequest, err.Error(), err)
	default:
		fail(c, http.StatusInternalServerError, fallback, err)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
