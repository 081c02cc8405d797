package account

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/projectlibrary/internal/auth"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/render"
	"github.com/MrJamesThe3rd/projectlibrary/internal/identity"
	"github.com/MrJamesThe3rd/projectlibrary/internal/validation"
)

type Handler struct {
	svc    *identity.Service
	tokens *auth.Tokens
}

func NewHandler(svc *identity.Service, tokens *auth.Tokens) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(h.tokens.Require)
		r.Get("/me", h.me)
		r.Put("/me/profile", h.updateProfile)
	})
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

type profileResponse struct {
	Phone       string `json:"phone"`
	Institution string `json:"institution"`
	Course      string `json:"course"`
}

type meResponse struct {
	User    userResponse     `json:"user"`
	Profile *profileResponse `json:"profile,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

func toUserResponse(u *identity.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: u.CreatedAt,
	}
}

func toProfileResponse(p *identity.Profile) *profileResponse {
	return &profileResponse{Phone: p.Phone, Institution: p.Institution, Course: p.Course}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var params identity.RegisterParams
	if !render.Decode(w, r, &params) {
		return
	}

	u, err := h.svc.Register(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUsernameTaken):
			err = validation.Field("username", "a user with that username already exists")
		case errors.Is(err, identity.ErrEmailTaken):
			err = validation.Field("email", identity.ErrEmailTaken.Error())
		}

		if render.Validation(w, err) {
			return
		}

		slog.Error("failed to register user", "error", err)
		render.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	slog.Info("user registered", "user_id", u.ID, "username", u.Username)
	h.issue(w, http.StatusCreated, u)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !render.Decode(w, r, &req) {
		return
	}

	u, err := h.svc.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			render.Error(w, http.StatusUnauthorized, err.Error())
			return
		}

		slog.Error("failed to authenticate", "error", err)
		render.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	h.issue(w, http.StatusOK, u)
}

// issue signs a token for u, so registration also logs the user in.
func (h *Handler) issue(w http.ResponseWriter, status int, u *identity.User) {
	token, expiresAt, err := h.tokens.Issue(u.ID, u.Username, u.IsStaff)
	if err != nil {
		slog.Error("failed to issue token", "user_id", u.ID, "error", err)
		render.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	render.JSON(w, status, tokenResponse{Token: token, ExpiresAt: expiresAt, User: toUserResponse(u)})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	u, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			render.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}

		slog.Error("failed to get user", "user_id", userID, "error", err)
		render.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	resp := meResponse{User: toUserResponse(u)}

	p, err := h.svc.GetProfile(r.Context(), userID)
	switch {
	case err == nil:
		resp.Profile = toProfileResponse(p)
	case !errors.Is(err, identity.ErrNotFound):
		slog.Error("failed to get profile", "user_id", userID, "error", err)
		render.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var params identity.ProfileParams
	if !render.Decode(w, r, &params) {
		return
	}

	userID := auth.UserID(r.Context())

	p, err := h.svc.UpdateProfile(r.Context(), userID, params)
	if err != nil {
		if render.Validation(w, err) {
			return
		}

		if errors.Is(err, identity.ErrNotFound) {
			render.Error(w, http.StatusNotFound, "profile not found")
			return
		}

		slog.Error("failed to update profile", "user_id", userID, "error", err)
		render.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	render.JSON(w, http.StatusOK, toProfileResponse(p))
}
