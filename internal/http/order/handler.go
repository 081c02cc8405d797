package order

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/projectlibrary/internal/auth"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/render"
	"github.com/MrJamesThe3rd/projectlibrary/internal/order"
)

type Handler struct {
	svc *order.Service
}

func NewHandler(svc *order.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes expects auth.Tokens.Require upstream.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/{orderID}", h.get)
}

// DashboardRoutes expects auth.Tokens.Require upstream.
func (h *Handler) DashboardRoutes(r chi.Router) {
	r.Get("/", h.dashboard)
}

type createOrderRequest struct {
	ProjectID uuid.UUID `json:"project_id"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !render.Decode(w, r, &req) {
		return
	}

	userID := auth.UserID(r.Context())

	checkout, err := h.svc.Create(r.Context(), userID, req.ProjectID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrProjectUnavailable):
			render.Error(w, http.StatusNotFound, "project not found")
		case errors.Is(err, order.ErrDuplicatePurchase):
			render.Error(w, http.StatusConflict, "you have already purchased this project")
		case errors.Is(err, order.ErrGateway):
			render.Error(w, http.StatusBadGateway, "error creating order, please try again")
		default:
			slog.Error("failed to create order", "user_id", userID, "project_id", req.ProjectID, "error", err)
			render.Error(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	slog.Info("order created", "order_id", checkout.Order.OrderID, "user_id", userID, "amount", checkout.Amount)

	render.JSON(w, http.StatusCreated, checkoutResponse{
		OrderID:   checkout.Order.RemoteOrderID,
		Amount:    checkout.Amount,
		Currency:  checkout.Currency,
		Name:      checkout.ProjectTitle,
		Key:       checkout.KeyID,
		DBOrderID: checkout.Order.OrderID,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.Get(r.Context(), chi.URLParam(r, "orderID"), auth.UserID(r.Context()))
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			render.Error(w, http.StatusNotFound, "order not found")
			return
		}

		slog.Error("failed to get order", "error", err)
		render.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	render.JSON(w, http.StatusOK, toResponse(o))
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	orders, err := h.svc.Dashboard(r.Context(), userID)
	if err != nil {
		slog.Error("failed to load dashboard", "user_id", userID, "error", err)
		render.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	render.JSON(w, http.StatusOK, map[string]any{
		"orders":          toResponseList(orders),
		"total_purchases": len(orders),
	})
}
