package catalog

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/projectlibrary/internal/auth"
	"github.com/MrJamesThe3rd/projectlibrary/internal/catalog"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/render"
)

// Purchases answers whether a user already owns a project.
type Purchases interface {
	HasPurchased(ctx context.Context, userID, projectID uuid.UUID) (bool, error)
}

type Handler struct {
	svc       *catalog.Service
	purchases Purchases
}

func NewHandler(svc *catalog.Service, purchases Purchases) *Handler {
	return &Handler{svc: svc, purchases: purchases}
}

// Routes expects auth.Tokens.Optional upstream so detail can report ownership.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/home", h.home)
	r.Get("/{slug}", h.detail)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))

	result, err := h.svc.List(r.Context(), catalog.ListParams{
		Technology: q.Get("technology"),
		Search:     q.Get("search"),
		Page:       page,
	})
	if err != nil {
		if render.Validation(w, err) {
			return
		}

		slog.Error("failed to list projects", "error", err)
		render.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	render.JSON(w, http.StatusOK, pageResponse{
		Projects:     toResponseList(result.Projects),
		Page:         result.Number,
		TotalPages:   result.TotalPages,
		Total:        result.Total,
		Technologies: catalog.Technologies,
	})
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	featured, recent, err := h.svc.Home(r.Context())
	if err != nil {
		slog.Error("failed to load home projects", "error", err)
		render.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	render.JSON(w, http.StatusOK, homeResponse{
		Featured: toResponseList(featured),
		Recent:   toResponseList(recent),
	})
}

func (h *Handler) detail(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			render.Error(w, http.StatusNotFound, "project not found")
			return
		}

		slog.Error("failed to get project", "error", err)
		render.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	resp := detailResponse{Project: toResponse(p)}
	resp.Project.LongDescription = p.LongDescription

	if userID := auth.UserID(r.Context()); userID != uuid.Nil {
		resp.HasPurchased, err = h.purchases.HasPurchased(r.Context(), userID, p.ID)
		if err != nil {
			slog.Error("failed to check purchase", "project_id", p.ID, "error", err)
			render.Error(w, http.StatusInternalServerError, "internal error")

			return
		}
	}

	related, err := h.svc.Related(r.Context(), p)
	if err != nil {
		slog.Warn("failed to load related projects", "project_id", p.ID, "error", err)
	}

	resp.Related = toResponseList(related)

	render.JSON(w, http.StatusOK, resp)
}
