package customrequest

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/projectlibrary/internal/auth"
	"github.com/MrJamesThe3rd/projectlibrary/internal/customrequest"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/render"
)

type Handler struct {
	svc *customrequest.Service
}

func NewHandler(svc *customrequest.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes expects auth.Tokens.Optional upstream to link the request to a user.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/project-types", h.projectTypes)
	r.Post("/", h.submit)
}

type submitResponse struct {
	ID        uuid.UUID            `json:"id"`
	Status    customrequest.Status `json:"status"`
	Message   string               `json:"message"`
	CreatedAt time.Time            `json:"created_at"`
}

func (h *Handler) projectTypes(w http.ResponseWriter, _ *http.Request) {
	render.JSON(w, http.StatusOK, customrequest.ProjectTypes)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var params customrequest.SubmitParams

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			render.Error(w, http.StatusBadRequest, "invalid form")
			return
		}

		params = customrequest.SubmitParams{
			Name:        r.FormValue("name"),
			Email:       r.FormValue("email"),
			Phone:       r.FormValue("phone"),
			ProjectType: r.FormValue("project_type"),
			Deadline:    r.FormValue("deadline"),
			Description: r.FormValue("description"),
			Budget:      r.FormValue("budget"),
		}
	} else if !render.Decode(w, r, &params) {
		return
	}

	if userID := auth.UserID(r.Context()); userID != uuid.Nil {
		params.UserID = &userID
	}

	req, err := h.svc.Submit(r.Context(), params)
	if err != nil {
		if render.Validation(w, err) {
			return
		}

		slog.Error("failed to submit custom request", "error", err)
		render.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	render.JSON(w, http.StatusCreated, submitResponse{
		ID:        req.ID,
		Status:    req.Status,
		Message:   "your custom project request has been submitted successfully, we will contact you soon",
		CreatedAt: req.CreatedAt,
	})
}
