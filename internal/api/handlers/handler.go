package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/quickcdn/qcdn/internal/config"
	"github.com/quickcdn/qcdn/internal/service"
	"github.com/quickcdn/qcdn/internal/utils"
)

// Handler carries the handler dependencies; one instance serves all routes.
type Handler struct {
	svc    *service.Service
	cfg    config.Config
	logger *log.Logger
}

func New(svc *service.Service, cfg config.Config, logger *log.Logger) *Handler {
	return &Handler{svc: svc, cfg: cfg, logger: logger}
}

// writeServiceError maps pipeline error kinds onto HTTP statuses. Unmatched
// errors become a generic 500; their detail goes to the log, never the wire.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrBadRequest):
		utils.JSONError(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, service.ErrForbidden):
		utils.JSONError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, service.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, service.ErrGone):
		utils.JSONError(w, http.StatusGone, "gone", err.Error())
	case errors.Is(err, service.ErrTooLarge):
		utils.JSONError(w, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error())
	default:
		h.logger.Error("internal error", "err", err)
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
