package gallery

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pixvault/service/internal/response"
	"github.com/pixvault/service/internal/storage"
)

// Handler holds HTTP handlers for the gallery endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new gallery Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type healthData struct {
	Status  string `json:"status"  example:"ok"`
	Message string `json:"message" example:"storage backend reachable"`
}

type listResponse struct {
	Success   bool           `json:"success"   example:"true"`
	Data      []ListingEntry `json:"data"`
	Count     int            `json:"count"     example:"3"`
	Dropped   int            `json:"dropped"   example:"0"`
	ExpiresIn int            `json:"expiresIn" example:"3600"`
}

// Health godoc
//
//	@Summary		Health check
//	@Description	Liveness probe. Verifies the storage backend is reachable and the bucket exists.
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	healthData
//	@Failure		503	{object}	response.Envelope
//	@Router			/health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Health(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, healthData{Status: "ok", Message: "storage backend reachable"})
}

// Upload godoc
//
//	@Summary		Upload an image
//	@Description	Stores one image file (max 10 MiB). The original filename is kept as metadata; the storage key is server-assigned.
//	@Tags			images
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image	formData	file	true	"Image file"
//	@Success		201		{object}	response.Envelope{data=UploadResult}
//	@Failure		400		{object}	response.Envelope
//	@Failure		503		{object}	response.Envelope
//	@Router			/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("image")
	if err != nil {
		response.BadRequest(w, "no file supplied in field \"image\"")
		return
	}
	defer file.Close()

	result, err := h.svc.Store(r.Context(), file, header.Size, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.Created(w, "image uploaded", result)
}

// List godoc
//
//	@Summary		List images
//	@Description	Enumerates stored images (newest first), each with a fresh pre-signed URL. Objects whose grant could not be issued are dropped and counted.
//	@Tags			images
//	@Produce		json
//	@Param			expiresIn	query		int	false	"Grant validity in seconds (default 3600, max 86400)"
//	@Success		200			{object}	listResponse
//	@Failure		400			{object}	response.Envelope
//	@Failure		503			{object}	response.Envelope
//	@Router			/images [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	expiresIn, ok := h.expiresIn(w, r)
	if !ok {
		return
	}

	listing, err := h.svc.List(r.Context(), expiresIn)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if expiresIn == 0 {
		expiresIn = DefaultGrantSeconds
	}
	response.JSON(w, http.StatusOK, listResponse{
		Success:   true,
		Data:      listing.Entries,
		Count:     len(listing.Entries),
		Dropped:   listing.Dropped,
		ExpiresIn: expiresIn,
	})
}

// Describe godoc
//
//	@Summary		Get image details
//	@Description	Returns one object's full metadata plus a fresh pre-signed URL.
//	@Tags			images
//	@Produce		json
//	@Param			key			path		string	true	"Object key"
//	@Param			expiresIn	query		int		false	"Grant validity in seconds (default 3600, max 86400)"
//	@Success		200			{object}	response.Envelope{data=ObjectDetail}
//	@Failure		400			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Router			/images/{key} [get]
func (h *Handler) Describe(w http.ResponseWriter, r *http.Request) {
	expiresIn, ok := h.expiresIn(w, r)
	if !ok {
		return
	}

	detail, err := h.svc.Describe(r.Context(), chi.URLParam(r, "key"), expiresIn)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, detail)
}

// GrantURL godoc
//
//	@Summary		Issue a pre-signed URL
//	@Description	Issues a time-limited download URL for one object. Durations above 86400 seconds are rejected.
//	@Tags			images
//	@Produce		json
//	@Param			key			path		string	true	"Object key"
//	@Param			expiresIn	query		int		false	"Grant validity in seconds (default 3600, max 86400)"
//	@Success		200			{object}	response.Envelope{data=AccessGrant}
//	@Failure		400			{object}	response.Envelope
//	@Failure		404			{object}	response.Envelope
//	@Router			/images/{key}/url [get]
func (h *Handler) GrantURL(w http.ResponseWriter, r *http.Request) {
	expiresIn, ok := h.expiresIn(w, r)
	if !ok {
		return
	}

	grant, err := h.svc.GrantAccess(r.Context(), chi.URLParam(r, "key"), expiresIn)
	if err != nil {
		h.writeError(w, err)
		return
	}

	response.OK(w, grant)
}

// Delete godoc
//
//	@Summary		Delete an image
//	@Description	Removes the object. Deleting an already-absent key also succeeds.
//	@Tags			images
//	@Produce		json
//	@Param			key	path		string	true	"Object key"
//	@Success		200	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		503	{object}	response.Envelope
//	@Router			/images/{key} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "key")); err != nil {
		h.writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Envelope{Success: true, Message: "image deleted"})
}

// expiresIn parses the optional expiresIn query parameter. Zero means
// "use the default"; a malformed value is reported as a 400.
func (h *Handler) expiresIn(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("expiresIn")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		response.BadRequest(w, "expiresIn must be an integer number of seconds")
		return 0, false
	}
	return n, true
}

// writeError maps service and storage errors onto the wire taxonomy. No raw
// backend error ever reaches the client.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUploadRejected), errors.Is(err, ErrInvalidDuration):
		response.BadRequest(w, err.Error())
		return
	}

	var se *storage.Error
	if errors.As(err, &se) {
		switch se.Kind {
		case storage.KindNotFound:
			response.ErrorDetails(w, http.StatusNotFound, se.Summary, se.Detail)
		case storage.KindAccessDenied:
			response.ErrorDetails(w, http.StatusForbidden, se.Summary, se.Detail)
		case storage.KindInvalidCredentials:
			response.ErrorDetails(w, http.StatusUnauthorized, se.Summary, se.Detail)
		case storage.KindUnavailable:
			response.ErrorDetails(w, http.StatusServiceUnavailable, se.Summary, se.Detail)
		default:
			response.ErrorDetails(w, http.StatusInternalServerError, se.Summary, se.Detail)
		}
		return
	}

	response.InternalError(w)
}
