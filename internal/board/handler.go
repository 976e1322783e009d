package board

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/navidved/bulletin/internal/member"
	"github.com/navidved/bulletin/internal/middleware"
	"github.com/navidved/bulletin/internal/response"
	"github.com/rs/zerolog/log"
)

// Handler holds HTTP handlers for post endpoints.
type Handler struct {
	svc            *Service
	maxUploadBytes int64
}

// NewHandler creates a new post Handler. maxUploadBytes bounds a multipart body.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, maxUploadBytes: maxUploadBytes}
}

type createdData struct {
	ID int64 `json:"id" example:"42"`
}

// List godoc
//
//	@Summary		List posts
//	@Description	Paginated post summaries, newest first, optionally filtered by a keyword in title or content.
//	@Tags			posts
//	@Produce		json
//	@Param			q		query		string	false	"Keyword"
//	@Param			page	query		int		false	"1-based page number"	default(1)
//	@Success		200		{object}	response.Envelope{data=ListResult}
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/posts [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(w, "page must be a positive integer")
			return
		}
		page = n
	}

	result, err := h.svc.List(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, result)
}

// Get godoc
//
//	@Summary		Get post
//	@Description	Post detail with attachment names and public paths.
//	@Tags			posts
//	@Produce		json
//	@Param			id	path		int	true	"Post ID"
//	@Success		200	{object}	response.Envelope{data=Detail}
//	@Failure		400	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/posts/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	detail, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, detail)
}

// Create godoc
//
//	@Summary		Create post
//	@Description	Create a post with optional file attachments. Empty files are ignored.
//	@Tags			posts
//	@Accept			mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Param			title	formData	string	true	"Title"
//	@Param			content	formData	string	true	"Content"
//	@Param			files	formData	file	false	"Attachments"
//	@Success		201		{object}	response.Envelope{data=createdData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		502		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/posts [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	defer form.RemoveAll() //nolint:errcheck

	id, err := h.svc.Create(r.Context(),
		r.FormValue("title"), r.FormValue("content"),
		filesFromForm(form), middleware.Caller(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, createdData{ID: id})
}

// Update godoc
//
//	@Summary		Update post
//	@Description	Edit title and content, remove attachments by name and add new files. Author only.
//	@Tags			posts
//	@Accept			mpfd
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id			path		int		true	"Post ID"
//	@Param			title		formData	string	true	"Title"
//	@Param			content		formData	string	true	"Content"
//	@Param			files		formData	file	false	"Attachments to add"
//	@Param			removeFiles	formData	[]string	false	"Attachment names to remove"
//	@Success		204
//	@Failure		400	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		502	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/posts/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	defer form.RemoveAll() //nolint:errcheck

	remove := append(append([]string{}, form.Value["removeFiles"]...), form.Value["removeFiles[]"]...)
	err := h.svc.Update(r.Context(), id,
		r.FormValue("title"), r.FormValue("content"),
		filesFromForm(form), remove, middleware.Caller(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// Delete godoc
//
//	@Summary		Delete post
//	@Description	Delete a post with its likes, comments and attachments. Author only.
//	@Tags			posts
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	int	true	"Post ID"
//	@Success		204
//	@Failure		401	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		502	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/posts/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteByID(r.Context(), id, middleware.Caller(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// writeError translates service errors to responses. An anonymous caller gets
// 401 and a foreign one 403.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		response.BadRequest(w, verr.Message)
	case errors.Is(err, ErrUnauthorized):
		if middleware.Caller(r.Context()).Present() {
			response.Forbidden(w, "only the author may change this post")
			return
		}
		response.Unauthorized(w, "authentication required")
	case errors.Is(err, member.ErrNotFound):
		response.Unauthorized(w, "unknown member")
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "post not found")
	case IsStorageError(err):
		response.BadGateway(w, "object storage failure")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("post request failed")
		response.InternalError(w)
	}
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (*multipart.Form, bool) {
	if r.ContentLength > h.maxUploadBytes {
		response.TooLarge(w, "request body too large")
		return nil, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.TooLarge(w, "request body too large")
			return nil, false
		}
		response.BadRequest(w, "invalid multipart form")
		return nil, false
	}
	return r.MultipartForm, true
}

func filesFromForm(form *multipart.Form) []*File {
	headers := append(append([]*multipart.FileHeader{}, form.File["files"]...), form.File["files[]"]...)
	files := make([]*File, 0, len(headers))
	for _, fh := range headers {
		files = append(files, fileFromHeader(fh))
	}
	return files
}

func fileFromHeader(fh *multipart.FileHeader) *File {
	return &File{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		response.BadRequest(w, "invalid post id")
		return 0, false
	}
	return id, true
}
