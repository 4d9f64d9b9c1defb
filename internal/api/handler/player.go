package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mizucoffee/canislupus-server/internal/api/request"
	"github.com/mizucoffee/canislupus-server/internal/api/response"
	"github.com/mizucoffee/canislupus-server/internal/model"
	"github.com/mizucoffee/canislupus-server/internal/qr"
	"github.com/mizucoffee/canislupus-server/internal/services/auth"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	authService *auth.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService *auth.Service) *PlayerHandler {
	return &PlayerHandler{
		authService: authService,
	}
}

// Signup handles POST /api/v1/players
func (h *PlayerHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req request.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.ID == "" {
		WriteError(w, NewInvalidRequestError("id is required"))
		return
	}
	if req.DisplayName == "" {
		WriteError(w, NewInvalidRequestError("display_name is required"))
		return
	}
	if req.Code == "" {
		WriteError(w, NewInvalidRequestError("code is required"))
		return
	}
	if req.VerificationToken == "" {
		WriteError(w, NewInvalidRequestError("verification_token is required"))
		return
	}

	player, err := h.authService.CreatePlayer(r.Context(), model.PlayerID(req.ID), req.DisplayName, req.Code, req.VerificationToken)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SignupResponse{
		Player:   response.PlayerFromModel(player),
		NextCode: h.authService.NewCode(),
	})
}

// NewCode handles GET /api/v1/players/code
func (h *PlayerHandler) NewCode(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.CodeResponse{Code: h.authService.NewCode()})
}

// QRCode handles GET /api/v1/players/{id}/qr
func (h *PlayerHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	player, err := h.authService.GetPlayer(r.Context(), model.PlayerID(id))
	if err != nil {
		WriteError(w, err)
		return
	}

	png, err := qr.Render(player.Code)
	if err != nil {
		WriteError(w, NewInternalError())
		return
	}

	response.PNG(w, http.StatusOK, png)
}

// Authenticate handles POST /api/v1/players/auth
func (h *PlayerHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req request.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.VerificationToken == "" {
		WriteError(w, NewInvalidRequestError("verification_token is required"))
		return
	}
	if (req.ID == "") == (req.Code == "") {
		WriteError(w, NewInvalidRequestError("exactly one of id or code is required"))
		return
	}

	var (
		player *model.Player
		err    error
	)
	if req.ID != "" {
		player, err = h.authService.AuthenticateByID(r.Context(), model.PlayerID(req.ID), req.VerificationToken)
	} else {
		player, err = h.authService.AuthenticateByCode(r.Context(), req.Code, req.VerificationToken)
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}

// RecordResult handles POST /api/v1/players/{id}/results
func (h *PlayerHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req request.RecordResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	result := model.MatchResult(req.Result)
	if !result.Valid() {
		WriteError(w, NewInvalidRequestError("result must be win, loss or draw"))
		return
	}

	// Counters are only mutable by the credential holder
	if _, err := h.authService.AuthenticateByID(r.Context(), model.PlayerID(id), req.VerificationToken); err != nil {
		WriteError(w, err)
		return
	}

	player, err := h.authService.RecordResult(r.Context(), model.PlayerID(id), result)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlayerFromModel(player))
}
