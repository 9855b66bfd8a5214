package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/finger"
	"github.com/ayusman/mudra/internal/session"
)

// Controller exposes the running pipeline's session to the API.
type Controller interface {
	State() session.State
	SessionID() string
	Reset()
	IsEnabled() bool
	SetEnabled(enabled bool) error
}

// SessionHandler serves GET /api/session and POST /api/session/reset.
type SessionHandler struct {
	ctrl Controller
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(ctrl Controller) *SessionHandler {
	return &SessionHandler{ctrl: ctrl}
}

type sessionResponse struct {
	Phase     session.Phase  `json:"phase"`
	Active    bool           `json:"active"`
	Previous  finger.Pattern `json:"previous"`
	Pattern   string         `json:"pattern"`
	SessionID string         `json:"session_id,omitempty"`
	Enabled   bool           `json:"enabled"`
}

func (h *SessionHandler) snapshot() sessionResponse {
	state := h.ctrl.State()
	return sessionResponse{
		Phase:     state.Phase(),
		Active:    state.Active,
		Previous:  state.Previous,
		Pattern:   state.Previous.Bits(),
		SessionID: h.ctrl.SessionID(),
		Enabled:   h.ctrl.IsEnabled(),
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/session":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.snapshot())

	case "/api/session/reset":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.ctrl.Reset()
		writeJSON(w, http.StatusOK, h.snapshot())

	default:
		http.NotFound(w, r)
	}
}

// EnabledHandler serves GET and PUT /api/enabled.
type EnabledHandler struct {
	ctrl Controller
}

// NewEnabledHandler creates an EnabledHandler.
func NewEnabledHandler(ctrl Controller) *EnabledHandler {
	return &EnabledHandler{ctrl: ctrl}
}

type enabledBody struct {
	Enabled *bool `json:"enabled"`
}

type enabledResponse struct {
	Enabled bool `json:"enabled"`
}

func (h *EnabledHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, enabledResponse{Enabled: h.ctrl.IsEnabled()})

	case http.MethodPut:
		var req enabledBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		if err := h.ctrl.SetEnabled(*req.Enabled); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save enabled state")
			return
		}
		writeJSON(w, http.StatusOK, enabledResponse{Enabled: h.ctrl.IsEnabled()})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
