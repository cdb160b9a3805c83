package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pawcal/pawcal/internal/reminder"
)

const (
	DefaultTimeout  = 5 * time.Second
	DefaultPageSize = 500
	PetsPageSize    = 1000
)

// Client talks to the reminder REST API.
type Client struct {
	BaseURL  string
	PageSize int
	HTTP     *http.Client
}

// NewClient returns a client for the API rooted at baseURL, for example
// http://localhost:8080/api.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		PageSize: DefaultPageSize,
		HTTP:     &http.Client{Timeout: timeout},
	}
}

var _ Backend = (*Client)(nil)

func (c *Client) ListReminders(ctx context.Context) ([]reminder.Reminder, error) {
	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	q := url.Values{}
	q.Set("page", "1")
	q.Set("perPage", strconv.Itoa(pageSize))

	data, err := c.do(ctx, http.MethodGet, "/reminders", q, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return ParseReminders(data)
}

func (c *Client) ListPets(ctx context.Context, ownerID string) ([]reminder.Pet, error) {
	q := url.Values{}
	q.Set("page", "1")
	q.Set("perPage", strconv.Itoa(PetsPageSize))
	if ownerID != "" {
		q.Set("OwnerId", ownerID)
	}

	data, err := c.do(ctx, http.MethodGet, "/pets", q, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}

	var page Page[WirePet]
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to parse pets: %w", err)
	}
	pets := make([]reminder.Pet, 0, len(page.Items))
	for _, p := range page.Items {
		pets = append(pets, p.ToPet())
	}
	return pets, nil
}

func (c *Client) SearchOwners(ctx context.Context, term string) ([]reminder.OwnerOption, error) {
	q := url.Values{}
	q.Set("term", term)

	data, err := c.do(ctx, http.MethodGet, "/owners/search", q, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to search owners: %w", err)
	}

	var wire []WireOwnerOption
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("failed to parse owners: %w", err)
	}
	owners := make([]reminder.OwnerOption, 0, len(wire))
	for _, o := range wire {
		owners = append(owners, o.ToOption())
	}
	return owners, nil
}

func (c *Client) CreateReminder(ctx context.Context, in ReminderInput) (reminder.Reminder, error) {
	// Calendar sync is the service's concern; this client never asks for it.
	data, err := c.do(ctx, http.MethodPost, "/reminders", nil, EncodeInput(in))
	if err != nil {
		return reminder.Reminder{}, fmt.Errorf("failed to create reminder: %w", err)
	}
	return decodeReminder(data)
}

func (c *Client) UpdateReminder(ctx context.Context, id string, in ReminderUpdate) (reminder.Reminder, error) {
	data, err := c.do(ctx, http.MethodPut, "/reminders/"+url.PathEscape(id), nil, EncodeUpdate(in))
	if err != nil {
		return reminder.Reminder{}, fmt.Errorf("failed to update reminder %s: %w", id, err)
	}
	return decodeReminder(data)
}

func (c *Client) DeleteReminder(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/reminders/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete reminder %s: %w", id, err)
	}
	return nil
}

func (c *Client) InvalidateReminderCache(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodPost, "/cache/clear/reminders", nil, nil); err != nil {
		return fmt.Errorf("failed to clear reminder cache: %w", err)
	}
	return nil
}

func decodeReminder(data []byte) (reminder.Reminder, error) {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return reminder.Reminder{}, nil
	}
	var w WireReminder
	if err := json.Unmarshal(data, &w); err != nil {
		return reminder.Reminder{}, fmt.Errorf("failed to parse reminder: %w", err)
	}
	return w.ToReminder(), nil
}

// do sends one request and returns the envelope's data on success.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	endpoint := c.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	var env Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Message = env.Message
			if apiErr.Message == "" {
				apiErr.Message = env.Error
			}
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to parse response: %w", decodeErr)
	}
	if !env.Success && (env.Message != "" || env.Error != "") {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}
	return env.Data, nil
}
