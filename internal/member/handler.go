package member

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/navidved/bulletin/internal/middleware"
	"github.com/navidved/bulletin/internal/response"
)

var validate = validator.New()

// Handler holds HTTP handlers for member-related endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new member Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type signupRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255" example:"kim@example.com"`
	Password string `json:"password" validate:"required,min=4,max=72"  example:"s3cret"`
	NickName string `json:"nickName" validate:"required,max=100"       example:"kim"`
}

// Signup godoc
//
//	@Summary		Sign up
//	@Description	Register a new member. Email is the identity used for authorship.
//	@Tags			members
//	@Accept			json
//	@Produce		json
//	@Param			request	body		signupRequest	true	"Member details"
//	@Success		201		{object}	response.Envelope{data=Member}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/members [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.NickName = strings.TrimSpace(req.NickName)
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, "email, password and nickName are required")
		return
	}

	m, err := h.svc.Signup(r.Context(), req.Email, req.NickName, req.Password)
	if errors.Is(err, ErrAlreadyExists) {
		response.Conflict(w, "email or nickName already registered")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, m)
}

// GetMe godoc
//
//	@Summary		Get current member
//	@Description	Returns the profile of the currently authenticated member.
//	@Tags			members
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=Member}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/members/me [get]
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	caller := middleware.Caller(r.Context())
	if !caller.Present() {
		response.Unauthorized(w, "unauthorized")
		return
	}

	m, err := h.svc.GetByEmail(r.Context(), caller.Email())
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "member not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, m)
}
