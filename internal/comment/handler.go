package comment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/navidved/bulletin/internal/middleware"
	"github.com/navidved/bulletin/internal/response"
)

var validate = validator.New()

// Handler holds HTTP handlers for comment endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new comment Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type addRequest struct {
	Comment string `json:"comment" validate:"required" example:"nice post"`
}

type addData struct {
	ID int64 `json:"id" example:"7"`
}

// Add godoc
//
//	@Summary		Add comment
//	@Tags			comments
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int			true	"Post ID"
//	@Param			request	body		addRequest	true	"Comment"
//	@Success		201		{object}	response.Envelope{data=addData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/posts/{id}/comments [post]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, ErrBlank.Error())
		return
	}

	id, err := h.svc.Add(r.Context(), postID, req.Comment, middleware.Caller(r.Context()))
	switch {
	case errors.Is(err, ErrUnauthorized):
		response.Unauthorized(w, "authentication required")
	case errors.Is(err, ErrBlank):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrPostNotFound):
		response.NotFound(w, "post not found")
	case err != nil:
		response.InternalError(w)
	default:
		response.Created(w, addData{ID: id})
	}
}

// List godoc
//
//	@Summary		List comments
//	@Tags			comments
//	@Produce		json
//	@Param			id	path		int	true	"Post ID"
//	@Success		200	{object}	response.Envelope{data=[]Comment}
//	@Failure		400	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/posts/{id}/comments [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	comments, err := h.svc.List(r.Context(), postID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, comments)
}

// Delete godoc
//
//	@Summary		Delete comment
//	@Tags			comments
//	@Security		BearerAuth
//	@Param			commentID	path	int	true	"Comment ID"
//	@Success		204
//	@Failure		401	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/comments/{commentID} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "commentID")
	if !ok {
		return
	}
	caller := middleware.Caller(r.Context())
	err := h.svc.Delete(r.Context(), id, caller)
	switch {
	case errors.Is(err, ErrUnauthorized) && caller.Present():
		response.Forbidden(w, "only the writer may delete this comment")
	case errors.Is(err, ErrUnauthorized):
		response.Unauthorized(w, "authentication required")
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "comment not found")
	case err != nil:
		response.InternalError(w)
	default:
		response.NoContent(w)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id < 1 {
		response.BadRequest(w, "invalid "+param)
		return 0, false
	}
	return id, true
}
