package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zonicbr/onboarding-platform/pkg/logging"
)

const (
	defaultBaseURL    = "https://api.cal.com/v2"
	defaultAPIVersion = "2024-08-13"
	defaultTimeZone   = "America/Sao_Paulo"

	// slotCacheTTL bounds how stale a served availability snapshot can be.
	slotCacheTTL = 30 * time.Second
)

// Config controls how the scheduling client behaves.
type Config struct {
	BaseURL      string
	APIKey       string
	APIVersion   string
	EventTypeIDs map[string]int
	Timeout      time.Duration
	MaxRetries   int
	Backoff      time.Duration
	HTTPClient   *http.Client
	Logger       *logging.Logger
}

// Client wraps the scheduling provider's REST endpoints used by the wizard.
type Client struct {
	apiKey       string
	baseURL      string
	apiVersion   string
	eventTypeIDs map[string]int
	httpClient   *http.Client
	maxRetries   int
	backoff      time.Duration
	logger       *logging.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
	now   func() time.Time
}

type cacheEntry struct {
	slots   *Slots
	fetched time.Time
}

// Slots maps ISO dates to sorted slot start times.
type Slots struct {
	Status string              `json:"status"`
	Slots  map[string][]string `json:"slots"`
}

// New creates a configured Client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("booking: API key is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	apiVersion := strings.TrimSpace(cfg.APIVersion)
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		apiVersion:   apiVersion,
		eventTypeIDs: cfg.EventTypeIDs,
		httpClient:   httpClient,
		maxRetries:   maxRetries,
		backoff:      backoff,
		logger:       logger,
		cache:        map[string]cacheEntry{},
		now:          time.Now,
	}, nil
}

func (c *Client) eventTypeID(calendarID string) (int, error) {
	id, ok := c.eventTypeIDs[calendarID]
	if !ok || id == 0 {
		return 0, fmt.Errorf("booking: calendar %q not configured", calendarID)
	}
	return id, nil
}

// ListSlots fetches availability for one calendar between two ISO dates
// (inclusive). Results are cached briefly so the wizard's rapid refetches do
// not hammer the provider.
func (c *Client) ListSlots(ctx context.Context, startDate, endDate, calendarID string) (*Slots, error) {
	if err := validateDate(startDate); err != nil {
		return nil, err
	}
	if err := validateDate(endDate); err != nil {
		return nil, err
	}
	eventTypeID, err := c.eventTypeID(calendarID)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("%s:%s:%s", calendarID, startDate, endDate)
	c.mu.Lock()
	entry, ok := c.cache[cacheKey]
	if ok && c.now().Sub(entry.fetched) < slotCacheTTL {
		c.mu.Unlock()
		return entry.slots, nil
	}
	c.mu.Unlock()

	q := url.Values{}
	q.Set("eventTypeId", strconv.Itoa(eventTypeID))
	q.Set("startTime", startDate+"T00:00:00Z")
	q.Set("endTime", endDate+"T23:59:59Z")

	data, err := c.invoke(ctx, http.MethodGet, "/slots/available", q, nil)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Status string `json:"status"`
		Data   struct {
			Slots map[string][]string `json:"slots"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("booking: decode slots response: %w", err)
	}
	if wrapper.Status == "" {
		wrapper.Status = "success"
	}
	if wrapper.Data.Slots == nil {
		wrapper.Data.Slots = map[string][]string{}
	}
	slots := &Slots{Status: wrapper.Status, Slots: wrapper.Data.Slots}

	c.mu.Lock()
	c.cache[cacheKey] = cacheEntry{slots: slots, fetched: c.now()}
	c.mu.Unlock()
	return slots, nil
}

// AggregateSlots unions availability across calendars, de-duplicating and
// sorting each day's slots. A calendar that fails to respond is skipped.
func (c *Client) AggregateSlots(ctx context.Context, startDate, endDate string, calendarIDs []string) (*Slots, error) {
	merged := map[string]map[string]struct{}{}
	var fetched int
	for _, calendarID := range calendarIDs {
		slots, err := c.ListSlots(ctx, startDate, endDate, calendarID)
		if err != nil {
			c.logger.Warn("slot fetch failed for calendar", "calendar", calendarID, "error", err)
			continue
		}
		fetched++
		for date, times := range slots.Slots {
			if merged[date] == nil {
				merged[date] = map[string]struct{}{}
			}
			for _, slot := range times {
				merged[date][slot] = struct{}{}
			}
		}
	}
	if fetched == 0 && len(calendarIDs) > 0 {
		return nil, fmt.Errorf("booking: no calendar responded for %s..%s", startDate, endDate)
	}

	out := map[string][]string{}
	for date, set := range merged {
		times := make([]string, 0, len(set))
		for slot := range set {
			times = append(times, slot)
		}
		sort.Strings(times)
		out[date] = times
	}
	return &Slots{Status: "success", Slots: out}, nil
}

// CreateBookingRequest describes a new booking, or a reschedule when
// RescheduleUID is set.
type CreateBookingRequest struct {
	Start         string
	Name          string
	Email         string
	Phone         string
	Company       string
	Notes         string
	TimeZone      string
	CalendarID    string
	RescheduleUID string
}

func (r *CreateBookingRequest) validate() error {
	if strings.TrimSpace(r.Start) == "" {
		return errors.New("booking: start time required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("booking: attendee name required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return errors.New("booking: attendee email required")
	}
	return nil
}

// CreateBooking books a slot, or moves an existing booking when the request
// carries a reschedule uid. The provider's confirmation payload is returned
// verbatim so the caller can store it alongside the onboarding record.
func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (json.RawMessage, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	timeZone := req.TimeZone
	if timeZone == "" {
		timeZone = defaultTimeZone
	}

	if req.RescheduleUID != "" {
		body, err := json.Marshal(map[string]any{
			"start": req.Start,
			"attendee": map[string]any{
				"name":     req.Name,
				"email":    req.Email,
				"timeZone": timeZone,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("booking: marshal reschedule body: %w", err)
		}
		data, err := c.invoke(ctx, http.MethodPatch, "/bookings/"+req.RescheduleUID, nil, body)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(data), nil
	}

	eventTypeID, err := c.eventTypeID(req.CalendarID)
	if err != nil {
		return nil, err
	}
	company := req.Company
	if company == "" {
		company = "Não informado"
	}
	body, err := json.Marshal(map[string]any{
		"eventTypeId": eventTypeID,
		"start":       req.Start,
		"attendee": map[string]any{
			"name":        req.Name,
			"email":       req.Email,
			"timeZone":    timeZone,
			"phoneNumber": req.Phone,
			"language":    "pt",
		},
		"bookingFieldsResponses": map[string]any{
			"company": company,
		},
		"metadata": map[string]any{
			"notes": req.Notes,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("booking: marshal booking body: %w", err)
	}
	data, err := c.invoke(ctx, http.MethodPost, "/bookings", nil, body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// CancelBooking cancels a booking by uid.
func (c *Client) CancelBooking(ctx context.Context, bookingUID, reason string) (json.RawMessage, error) {
	if strings.TrimSpace(bookingUID) == "" {
		return nil, errors.New("booking: booking uid required")
	}
	if reason == "" {
		reason = "User requested cancellation"
	}
	body, err := json.Marshal(map[string]string{"cancellationReason": reason})
	if err != nil {
		return nil, fmt.Errorf("booking: marshal cancel body: %w", err)
	}
	data, err := c.invoke(ctx, http.MethodPost, "/bookings/"+bookingUID+"/cancel", nil, body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func (c *Client) invoke(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	fullURL := c.buildURL(path, query)
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("booking: build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("cal-api-version", c.apiVersion)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !shouldRetry(0, err) || attempt == c.maxRetries {
				return nil, fmt.Errorf("booking: http error: %w", err)
			}
			lastErr = err
			c.logRetry(path, attempt, 0, err)
			if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("booking: read response: %w", readErr)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return data, nil
		}
		apiErr := decodeAPIError(resp.StatusCode, data)
		if attempt < c.maxRetries && shouldRetry(resp.StatusCode, nil) {
			lastErr = apiErr
			c.logRetry(path, attempt, resp.StatusCode, apiErr)
			if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}
		return nil, apiErr
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("booking: request failed without response")
}

func (c *Client) buildURL(path string, query url.Values) string {
	full := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		full = full + "?" + query.Encode()
	}
	return full
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	delay := c.backoff * time.Duration(1<<attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) logRetry(path string, attempt, status int, err error) {
	c.logger.Warn("scheduling provider retry",
		"path", path,
		"attempt", attempt+1,
		"status", status,
		"error", err,
	)
}

func shouldRetry(status int, err error) bool {
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return true
		}
		return !errors.Is(err, context.Canceled)
	}
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500 && status <= 599
}

func validateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("booking: invalid date %q", date)
	}
	return nil
}

// APIError carries a provider error response.
type APIError struct {
	StatusCode int             `json:"-"`
	Status     string          `json:"status,omitempty"`
	Message    string          `json:"message,omitempty"`
	ErrorBody  json.RawMessage `json:"error,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("booking: %s (status=%d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("booking: http status %d", e.StatusCode)
}

func decodeAPIError(status int, body []byte) error {
	var parsed APIError
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &APIError{StatusCode: status, Message: string(body)}
	}
	parsed.StatusCode = status
	return &parsed
}
