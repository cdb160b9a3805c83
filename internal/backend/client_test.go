package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawcal/pawcal/internal/reminder"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (rec *recorder) all() []recordedRequest {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]recordedRequest(nil), rec.requests...)
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.requests = append(rec.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
		})
		rec.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", time.Second), rec
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func TestClientListReminders(t *testing.T) {
	client, rec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, Envelope{
			Success: true,
			Data:    json.RawMessage(`{"items":[{"_id":"r1","OwnerId":"1","ReminderDate":"2025-12-09","ReminderTime":"10:00","PetIds":"p1,p2"}],"total":1,"page":1,"perPage":500}`),
		})
	})

	list, err := client.ListReminders(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"p1", "p2"}, list[0].PetIDs)

	requests := rec.all()
	require.Len(t, requests, 1)
	req := requests[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/reminders", req.Path)
	assert.Contains(t, req.Query, "perPage=500")
	assert.Contains(t, req.Query, "page=1")
}

func TestClientListPetsByOwner(t *testing.T) {
	client, rec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, Envelope{
			Success: true,
			Data:    json.RawMessage(`{"items":[{"_id":"p1","Name":"Lucky","Species":"Dog","OwnerId":"1"}],"total":1,"page":1,"perPage":1000}`),
		})
	})

	pets, err := client.ListPets(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, []reminder.Pet{{ID: "p1", Name: "Lucky", Species: "Dog", OwnerID: "1"}}, pets)

	requests := rec.all()
	req := requests[0]
	assert.Equal(t, "/api/pets", req.Path)
	assert.Contains(t, req.Query, "OwnerId=1")
	assert.Contains(t, req.Query, "perPage=1000")
}

func TestClientCreateSendsAllPets(t *testing.T) {
	client, rec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusCreated, Envelope{
			Success: true,
			Data:    json.RawMessage(`{"_id":"rnew","OwnerId":"1","PetIds":["p1","p2"],"ReminderDate":"2025-12-20","ReminderTime":"09:30","Status":"Pending"}`),
		})
	})

	created, err := client.CreateReminder(context.Background(), ReminderInput{
		OwnerID:  "1",
		PetIDs:   []string{"p1", "p2"},
		PetNames: []string{"Lucky", "Mimi"},
		Date:     "2025-12-20",
		Time:     "09:30",
		Status:   reminder.StatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, "rnew", created.ID)

	var body map[string]any
	requests := rec.all()
	require.NoError(t, json.Unmarshal([]byte(requests[0].Body), &body))
	assert.Equal(t, []any{"p1", "p2"}, body["PetIds"])
	assert.Equal(t, []any{"Lucky", "Mimi"}, body["PetNames"])
	assert.Equal(t, false, body["createCalendarEvent"])
}

func TestClientUpdateAndDelete(t *testing.T) {
	client, rec := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, Envelope{Success: true, Data: json.RawMessage(`null`)})
	})

	_, err := client.UpdateReminder(context.Background(), "r1", ReminderUpdate{OwnerID: "1", PetID: "p1"})
	require.NoError(t, err)
	require.NoError(t, client.DeleteReminder(context.Background(), "r1"))
	require.NoError(t, client.InvalidateReminderCache(context.Background()))

	requests := rec.all()
	require.Len(t, requests, 3)
	assert.Equal(t, http.MethodPut, requests[0].Method)
	assert.Equal(t, "/api/reminders/r1", requests[0].Path)
	assert.Contains(t, requests[0].Body, `"PetId":"p1"`)
	assert.Equal(t, http.MethodDelete, requests[1].Method)
	assert.Equal(t, http.MethodPost, requests[2].Method)
	assert.Equal(t, "/api/cache/clear/reminders", requests[2].Path)
}

func TestClientErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message field", http.StatusBadRequest, `{"success":false,"message":"Invalid owner"}`, "Invalid owner"},
		{"error field", http.StatusInternalServerError, `{"success":false,"error":"db down"}`, "db down"},
		{"no payload", http.StatusBadGateway, `<html>bad gateway</html>`, GenericErrorMessage},
		{"success false on 200", http.StatusOK, `{"success":false,"message":"Rejected"}`, "Rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.ListReminders(context.Background())
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.want, ErrorMessage(err))
		})
	}
}

func TestClientTimeout(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})
	client.HTTP.Timeout = 50 * time.Millisecond

	_, err := client.ListReminders(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
