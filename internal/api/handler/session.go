package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mizucoffee/canislupus-server/internal/api/request"
	"github.com/mizucoffee/canislupus-server/internal/api/response"
	"github.com/mizucoffee/canislupus-server/internal/model"
	"github.com/mizucoffee/canislupus-server/internal/services/sync"
)

// SessionHandler handles session-related endpoints
type SessionHandler struct {
	engine *sync.Engine
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(engine *sync.Engine) *SessionHandler {
	return &SessionHandler{
		engine: engine,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := h.engine.CreateSession(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SessionFromModel(session))
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	session, err := h.engine.GetSession(r.Context(), model.SessionID(id))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(session))
}

// Set handles POST /api/v1/sessions/{id}. Absent fields are left untouched;
// the updated record is persisted before being fanned out to the room.
func (h *SessionHandler) Set(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req request.SetSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	session, err := h.engine.Set(r.Context(), model.SessionID(id), sync.Update{
		Phase: req.Phase,
		State: req.State,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(session))
}
