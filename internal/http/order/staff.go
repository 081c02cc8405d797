package order

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/projectlibrary/internal/http/render"
	"github.com/MrJamesThe3rd/projectlibrary/internal/order"
)

// StaffRoutes expects auth.Tokens.Require and auth.RequireStaff upstream.
func (h *Handler) StaffRoutes(r chi.Router) {
	r.Patch("/{orderID}", h.setStatus)
}

type setStatusRequest struct {
	Status order.Status `json:"status"`
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var body setStatusRequest
	if !render.Decode(w, r, &body) {
		return
	}

	o, err := h.svc.SetStatus(r.Context(), orderID, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			render.Error(w, http.StatusNotFound, "order not found")
		case errors.Is(err, order.ErrInvalidTransition):
			render.Error(w, http.StatusConflict, err.Error())
		default:
			slog.Error("failed to set order status", "order_id", orderID, "error", err)
			render.Error(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	slog.Info("order status changed", "order_id", o.OrderID, "status", o.Status)

	render.JSON(w, http.StatusOK, toResponse(o))
}
