package onboarding

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zonicbr/onboarding-platform/pkg/logging"
)

// Handler exposes the persistence gateway over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an onboarding records handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// UpsertRequest is the wizard's per-answer submission.
type UpsertRequest struct {
	OnboardingID *int64                 `json:"onboarding_id,omitempty"`
	Data         map[string]AnswerValue `json:"data"`
}

// UpsertResponse wraps the stored record.
type UpsertResponse struct {
	OK     bool    `json:"ok"`
	Record *Record `json:"record"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// UpsertRecord handles POST /onboarding/records. An omitted or zero
// onboarding_id inserts; a positive one updates.
func (h *Handler) UpsertRecord(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode upsert request", "error", err)
		writeError(w, http.StatusBadRequest, "validation_error", "malformed request body")
		return
	}

	if req.OnboardingID != nil && *req.OnboardingID <= 0 {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid onboarding_id")
		return
	}

	rec, err := h.service.Upsert(r.Context(), req.OnboardingID, req.Data)
	if err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound):
			writeError(w, http.StatusNotFound, "not_found", "onboarding record does not exist")
		case errors.Is(err, ErrInvalidRecordID):
			writeError(w, http.StatusBadRequest, "validation_error", "invalid onboarding_id")
		default:
			h.logger.Error("upsert failed", "error", err)
			writeError(w, http.StatusInternalServerError, "db_error", "")
		}
		return
	}

	status := http.StatusOK
	if req.OnboardingID == nil || *req.OnboardingID == 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, UpsertResponse{OK: true, Record: rec})
}

// GetRecord handles GET /admin/records/{id}.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid record id")
		return
	}

	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "")
			return
		}
		h.logger.Error("failed to load record", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	writeJSON(w, http.StatusOK, UpsertResponse{OK: true, Record: rec})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, errorResponse{Error: code, Details: details})
}
