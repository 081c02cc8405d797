package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/projectlibrary/internal/order"
)

type checkoutResponse struct {
	OrderID   string `json:"order_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Name      string `json:"name"`
	Key       string `json:"key"`
	DBOrderID string `json:"db_order_id"`
}

type projectResponse struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Slug  string    `json:"slug"`
	Image string    `json:"image,omitempty"`
}

type orderResponse struct {
	OrderID       string           `json:"order_id"`
	Amount        decimal.Decimal  `json:"amount"`
	Status        order.Status     `json:"status"`
	RemoteOrderID string           `json:"razorpay_order_id,omitempty"`
	Project       *projectResponse `json:"project,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

func toResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		OrderID:       o.OrderID,
		Amount:        o.Amount,
		Status:        o.Status,
		RemoteOrderID: o.RemoteOrderID,
		CreatedAt:     o.CreatedAt,
	}

	if o.Project != nil {
		resp.Project = &projectResponse{
			ID:    o.Project.ID,
			Title: o.Project.Title,
			Slug:  o.Project.Slug,
			Image: o.Project.Image,
		}
	}

	return resp
}

func toResponseList(orders []*order.Order) []orderResponse {
	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toResponse(o)
	}

	return resp
}
