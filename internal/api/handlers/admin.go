package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/quickcdn/qcdn/internal/api/middleware"
	"github.com/quickcdn/qcdn/internal/service"
	"github.com/quickcdn/qcdn/internal/utils"
)

// Stats godoc
// @Summary Storage statistics
// @Description Count, cumulative size and largest file over live records. Admin only.
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 403 {object} utils.ErrorBody
// @Router /stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context(), middleware.CallerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Storage stats",
		Data:    stats,
	})
}

// Me godoc
// @Summary Caller's account profile
// @Description Quota, live usage and the caller's files. Requires authentication.
// @Tags Users
// @Produce json
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.ErrorBody
// @Router /me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.GetProfile(r.Context(), middleware.CallerFrom(r.Context()))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Account profile",
		Data:    profile,
	})
}

// CreateUser godoc
// @Summary Create a user account
// @Description Admin bearer token or a loopback-origin request. Returns the bearer token exactly once.
// @Tags Admin
// @Accept json
// @Produce json
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.ErrorBody
// @Failure 403 {object} utils.ErrorBody
// @Router /users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name      string `json:"name"`
		Quota     int64  `json:"quota"`
		SizeLimit int64  `json:"size_limit"`
		Password  string `json:"password"`
		Admin     bool   `json:"admin"`
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "bad_request", "invalid input")
		return
	}

	result, err := h.svc.CreateUser(r.Context(), service.CreateUserParams{
		Name:      input.Name,
		Quota:     input.Quota,
		SizeLimit: input.SizeLimit,
		Password:  input.Password,
		Admin:     input.Admin,
	}, middleware.CallerFrom(r.Context()), middleware.TrustedOrigin(r))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "User created",
		Data: map[string]any{
			"id":    result.ID.String(),
			"token": result.Token,
		},
	})
}
