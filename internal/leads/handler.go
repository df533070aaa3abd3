package leads

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zonicbr/onboarding-platform/internal/marketing"
	"github.com/zonicbr/onboarding-platform/pkg/logging"
)

// LeadObserver counts intake outcomes.
type LeadObserver interface {
	ObserveLead(path, status string)
}

// Handler exposes marketing-lead intake over HTTP.
type Handler struct {
	repo       Repository
	dispatcher *marketing.Dispatcher
	logger     *logging.Logger
	metrics    LeadObserver
}

// NewHandler creates a lead intake handler. dispatcher and metrics may be nil.
func NewHandler(repo Repository, dispatcher *marketing.Dispatcher, logger *logging.Logger, metrics LeadObserver) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, dispatcher: dispatcher, logger: logger, metrics: metrics}
}

// UpsertResponse wraps the stored lead.
type UpsertResponse struct {
	OK   bool  `json:"ok"`
	Lead *Lead `json:"lead"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// UpsertLead handles POST /leads. An omitted lead_id inserts; a positive one
// updates. A successful insert that carries a phone fires the marketing
// webhook in the background.
func (h *Handler) UpsertLead(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "malformed request body")
		return
	}

	payload, err := req.BuildPayload()
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidLeadID):
			writeError(w, http.StatusBadRequest, "validation_error", "invalid lead_id")
		case errors.Is(err, ErrInvalidPhone):
			writeError(w, http.StatusBadRequest, "validation_error", "invalid phone format")
		case errors.Is(err, ErrMissingOriginURL):
			writeError(w, http.StatusBadRequest, "validation_error", "origin_url is required")
		default:
			writeError(w, http.StatusBadRequest, "validation_error", "")
		}
		return
	}

	if req.LeadID != nil {
		lead, err := h.repo.Update(r.Context(), *req.LeadID, payload)
		if err != nil {
			if errors.Is(err, ErrLeadNotFound) {
				h.observe("update", "not_found")
				writeError(w, http.StatusNotFound, "not_found", "lead does not exist")
				return
			}
			h.observe("update", "error")
			h.logger.Error("lead update failed", "error", err, "lead_id", *req.LeadID)
			writeError(w, http.StatusInternalServerError, "db_error", "")
			return
		}
		h.observe("update", "ok")
		h.logger.Info("lead updated", "id", lead.ID)
		writeJSON(w, http.StatusOK, UpsertResponse{OK: true, Lead: lead})
		return
	}

	lead, err := h.repo.Insert(r.Context(), payload)
	if err != nil {
		h.observe("insert", "error")
		h.logger.Error("lead insert failed", "error", err)
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	h.observe("insert", "ok")
	h.logger.Info("lead created", "id", lead.ID)

	if _, hasPhone := payload["phone"]; hasPhone {
		event := marketing.LeadEvent{LeadsMkt: marketing.LeadRef{ID: lead.ID}}
		if lead.Name != nil {
			event.Name = *lead.Name
		}
		if lead.Phone != nil {
			event.Phone = *lead.Phone
		}
		if lead.Email != nil {
			event.Email = *lead.Email
		}
		h.dispatcher.DispatchAsync(event)
	}

	writeJSON(w, http.StatusCreated, UpsertResponse{OK: true, Lead: lead})
}

func (h *Handler) observe(path, status string) {
	if h.metrics != nil {
		h.metrics.ObserveLead(path, status)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, errorResponse{Error: code, Details: details})
}
