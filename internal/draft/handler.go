package draft

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zonicbr/onboarding-platform/pkg/logging"
)

// Handler exposes the draft store over HTTP, keyed by session id.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

type getResponse struct {
	OK      bool     `json:"ok"`
	State   *State   `json:"state"`
	Summary *Summary `json:"summary,omitempty"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// GetDraft handles GET /onboarding/draft/{session}. A missing or discarded
// snapshot is not an error; state comes back null. The optional total_steps
// query parameter adds a resume summary.
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	session := chi.URLParam(r, "session")
	if session == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "missing session id")
		return
	}

	state, err := h.store.Load(r.Context(), session)
	if err != nil {
		h.logger.Error("failed to load draft", "error", err, "session", session)
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}

	resp := getResponse{OK: true, State: state}
	if raw := r.URL.Query().Get("total_steps"); raw != "" && state != nil {
		if totalSteps, err := strconv.Atoi(raw); err == nil && totalSteps > 0 {
			summary, err := h.store.Summarize(r.Context(), session, totalSteps)
			if err == nil {
				resp.Summary = summary
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// PutDraft handles PUT /onboarding/draft/{session}.
func (h *Handler) PutDraft(w http.ResponseWriter, r *http.Request) {
	session := chi.URLParam(r, "session")
	if session == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "missing session id")
		return
	}

	var state State
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "malformed request body")
		return
	}
	if state.CurrentStepIndex < 0 {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid current_step_index")
		return
	}

	if err := h.store.Save(r.Context(), session, state); err != nil {
		h.logger.Error("failed to save draft", "error", err, "session", session)
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

// DeleteDraft handles DELETE /onboarding/draft/{session}.
func (h *Handler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	session := chi.URLParam(r, "session")
	if session == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "missing session id")
		return
	}

	if err := h.store.Clear(r.Context(), session); err != nil {
		h.logger.Error("failed to clear draft", "error", err, "session", session)
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, errorResponse{Error: code, Details: details})
}
