package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/quickcdn/qcdn/internal/api/middleware"
	"github.com/quickcdn/qcdn/internal/service"
	"github.com/quickcdn/qcdn/internal/utils"
)

// UploadPage godoc
// @Summary Upload usage hint
// @Description Plain-text pointer for callers that GET the upload endpoint
// @Tags Files
// @Produce plain
// @Success 200 {string} string
// @Router /upload [get]
func (h *Handler) UploadPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "POST a multipart form with a 'file' field (optional 'expire_time', RFC 3339) to upload.")
}

// Upload godoc
// @Summary Upload a file
// @Description Stores the file and returns its metadata, download URL and (in anonymous mode) a one-time modify token
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File content"
// @Param expire_time formData string false "RFC 3339 expiry timestamp"
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.ErrorBody
// @Failure 413 {object} utils.ErrorBody
// @Router /upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// Bound the request before reading anything; small slack on top of the
	// file ceiling for multipart framing.
	maxUpload := h.svc.MaxFileSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+(10<<10))

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "bad_request", "invalid multipart upload form")
		return
	}

	src, header, err := r.FormFile("file")
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "bad_request", "missing 'file' field")
		return
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "bad_request", "could not read upload")
		return
	}

	result, err := h.svc.Upload(r.Context(), service.UploadParams{
		Content:    content,
		Name:       header.Filename,
		ExpireTime: r.FormValue("expire_time"),
		Caller:     middleware.CallerFrom(r.Context()),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	data := map[string]any{
		"file_info": result.Record.View(h.svc.BaseURL()),
	}
	if result.ModifyToken != "" {
		data["modify_token"] = result.ModifyToken
	}
	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "File uploaded",
		Data:    data,
	})
}

// Info godoc
// @Summary File metadata
// @Tags Files
// @Produce json
// @Param id path string true "File id"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.ErrorBody
// @Router /file/{id} [get]
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.GetInfo(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File info",
		Data:    map[string]any{"file_info": rec.View(h.svc.BaseURL())},
	})
}

// Download godoc
// @Summary Download file content
// @Tags Files
// @Produce octet-stream
// @Param id path string true "File id"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorBody
// @Failure 410 {object} utils.ErrorBody
// @Router /file/{id}/download [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	body, rec, err := h.svc.Download(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", rec.Mimetype)
	w.Header().Set("Content-Length", strconv.FormatInt(rec.Size, 10))
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": rec.Name}))

	if _, err := io.Copy(w, body); err != nil {
		// Headers are gone; all we can do is log the broken transfer.
		h.logger.Warn("download interrupted", "id", rec.ID, "err", err)
	}
}

// Delete godoc
// @Summary Delete a file
// @Description Soft-deletes the record after removing the stored bytes. Owner, admin, or a valid modify token.
// @Tags Files
// @Produce json
// @Param id path string true "File id"
// @Param X-Modify-Token header string false "Modify token from upload"
// @Success 200 {object} utils.Payload
// @Failure 403 {object} utils.ErrorBody
// @Failure 404 {object} utils.ErrorBody
// @Router /file/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	modifyToken := r.Header.Get("X-Modify-Token")
	if modifyToken == "" {
		modifyToken = r.URL.Query().Get("modify_token")
	}

	err := h.svc.Delete(r.Context(), r.PathValue("id"), service.DeleteAuth{
		Caller:      middleware.CallerFrom(r.Context()),
		ModifyToken: modifyToken,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File deleted",
	})
}
