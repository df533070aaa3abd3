package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/zonicbr/onboarding-platform/pkg/logging"
)

// Handler proxies the scheduling provider for the wizard's calendar UI.
type Handler struct {
	client *Client
	logger *logging.Logger
}

func NewHandler(client *Client, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{client: client, logger: logger}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GetSlots handles GET /cal/slots?startDate=&endDate=&calendarId= (or a
// comma-separated calendarIds for aggregation).
func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("startDate")
	endDate := r.URL.Query().Get("endDate")
	if startDate == "" || endDate == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "missing date parameters")
		return
	}
	if validateDate(startDate) != nil || validateDate(endDate) != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "dates must be YYYY-MM-DD")
		return
	}

	var slots *Slots
	var err error
	if raw := r.URL.Query().Get("calendarIds"); raw != "" {
		var ids []string
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		slots, err = h.client.AggregateSlots(r.Context(), startDate, endDate, ids)
	} else {
		calendarID := r.URL.Query().Get("calendarId")
		if calendarID == "" {
			calendarID = "1"
		}
		slots, err = h.client.ListSlots(r.Context(), startDate, endDate, calendarID)
	}
	if err != nil {
		h.writeProviderError(w, "slot fetch failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": slots.Status,
		"data":   map[string]any{"slots": slots.Slots},
	})
}

type bookingRequest struct {
	Start      string `json:"start"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Company    string `json:"company"`
	Notes      string `json:"notes"`
	TimeZone   string `json:"timeZone"`
	CalendarID string `json:"calendarId"`
	BookingID  string `json:"bookingId"`
}

// CreateBooking handles POST /cal/booking. A body with bookingId reschedules
// the existing booking instead of creating a new one.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "malformed request body")
		return
	}
	calendarID := req.CalendarID
	if calendarID == "" {
		calendarID = "1"
	}

	payload, err := h.client.CreateBooking(r.Context(), CreateBookingRequest{
		Start:         req.Start,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Company:       req.Company,
		Notes:         req.Notes,
		TimeZone:      req.TimeZone,
		CalendarID:    calendarID,
		RescheduleUID: req.BookingID,
	})
	if err != nil {
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			writeError(w, http.StatusBadRequest, "validation_error", trimPrefix(err))
			return
		}
		h.writeProviderError(w, "booking failed", err)
		return
	}
	writeRaw(w, http.StatusOK, payload)
}

type cancelRequest struct {
	BookingUID string `json:"bookingUid"`
	Reason     string `json:"reason"`
}

// CancelBooking handles POST /cal/booking/cancel.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "malformed request body")
		return
	}
	if req.BookingUID == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "missing bookingUid")
		return
	}

	payload, err := h.client.CancelBooking(r.Context(), req.BookingUID, req.Reason)
	if err != nil {
		h.writeProviderError(w, "cancel failed", err)
		return
	}
	writeRaw(w, http.StatusOK, payload)
}

// writeProviderError relays the provider's status for API errors and hides
// transport failures behind a 502.
func (h *Handler) writeProviderError(w http.ResponseWriter, msg string, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		h.logger.Error(msg, "error", err, "status", apiErr.StatusCode)
		writeError(w, apiErr.StatusCode, "provider_error", apiErr.Message)
		return
	}
	h.logger.Error(msg, "error", err)
	writeError(w, http.StatusBadGateway, "provider_error", "")
}

func trimPrefix(err error) string {
	return strings.TrimPrefix(err.Error(), "booking: ")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeRaw(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, errorResponse{Error: code, Details: details})
}
