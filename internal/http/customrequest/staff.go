package customrequest

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/projectlibrary/internal/customrequest"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/render"
)

// StaffRoutes expects auth.Tokens.Require and auth.RequireStaff upstream.
func (h *Handler) StaffRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.transition)
}

type requestResponse struct {
	ID          uuid.UUID                 `json:"id"`
	Name        string                    `json:"name"`
	Email       string                    `json:"email"`
	Phone       string                    `json:"phone"`
	ProjectType customrequest.ProjectType `json:"project_type"`
	Deadline    string                    `json:"deadline"`
	Description string                    `json:"description"`
	Budget      decimal.Decimal           `json:"budget"`
	Status      customrequest.Status      `json:"status"`
	UserID      *uuid.UUID                `json:"user_id,omitempty"`
	AdminNotes  string                    `json:"admin_notes,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
}

func toResponse(r *customrequest.Request) requestResponse {
	return requestResponse{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		ProjectType: r.ProjectType,
		Deadline:    r.Deadline.Format(time.DateOnly),
		Description: r.Description,
		Budget:      r.Budget,
		Status:      r.Status,
		UserID:      r.UserID,
		AdminNotes:  r.AdminNotes,
		CreatedAt:   r.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var status *customrequest.Status
	if v := r.URL.Query().Get("status"); v != "" {
		status = new(customrequest.Status(v))
	}

	requests, err := h.svc.List(r.Context(), status)
	if err != nil {
		if render.Validation(w, err) {
			return
		}

		slog.Error("failed to list custom requests", "error", err)
		render.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	resp := make([]requestResponse, len(requests))
	for i, req := range requests {
		resp[i] = toResponse(req)
	}

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Error(w, http.StatusNotFound, "custom request not found")
		return
	}

	req, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, customrequest.ErrNotFound) {
			render.Error(w, http.StatusNotFound, "custom request not found")
			return
		}

		slog.Error("failed to get custom request", "request_id", id, "error", err)
		render.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	render.JSON(w, http.StatusOK, toResponse(req))
}

type transitionRequest struct {
	Status     customrequest.Status `json:"status"`
	AdminNotes string               `json:"admin_notes"`
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		render.Error(w, http.StatusNotFound, "custom request not found")
		return
	}

	var body transitionRequest
	if !render.Decode(w, r, &body) {
		return
	}

	req, err := h.svc.Transition(r.Context(), id, body.Status, body.AdminNotes)
	if err != nil {
		switch {
		case errors.Is(err, customrequest.ErrNotFound):
			render.Error(w, http.StatusNotFound, "custom request not found")
		case errors.Is(err, customrequest.ErrInvalidTransition):
			render.Error(w, http.StatusConflict, err.Error())
		default:
			slog.Error("failed to update custom request", "request_id", id, "error", err)
			render.Error(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	slog.Info("custom request updated", "request_id", req.ID, "status", req.Status)

	render.JSON(w, http.StatusOK, toResponse(req))
}
