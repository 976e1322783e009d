package like

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/navidved/bulletin/internal/middleware"
	"github.com/navidved/bulletin/internal/response"
)

// Handler holds HTTP handlers for like endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new like Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Toggle godoc
//
//	@Summary		Toggle like
//	@Tags			likes
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Post ID"
//	@Success		200	{object}	response.Envelope{data=Status}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/posts/{id}/like [put]
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid post id")
		return
	}
	st, err := h.svc.Toggle(r.Context(), postID, middleware.Caller(r.Context()))
	switch {
	case errors.Is(err, ErrUnauthorized):
		response.Unauthorized(w, "authentication required")
	case errors.Is(err, ErrPostNotFound):
		response.NotFound(w, "post not found")
	case err != nil:
		response.InternalError(w)
	default:
		response.OK(w, st)
	}
}

// Get godoc
//
//	@Summary		Like status
//	@Tags			likes
//	@Produce		json
//	@Param			id	path		int	true	"Post ID"
//	@Success		200	{object}	response.Envelope{data=Status}
//	@Failure		400	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/posts/{id}/like [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid post id")
		return
	}
	st, err := h.svc.Get(r.Context(), postID, middleware.Caller(r.Context()))
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, st)
}
