package payment

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/projectlibrary/internal/http/render"
	"github.com/MrJamesThe3rd/projectlibrary/internal/order"
	"github.com/MrJamesThe3rd/projectlibrary/internal/validation"
)

const maxCallbackBytes = 64 << 10

type Handler struct {
	svc *order.Service
}

func NewHandler(svc *order.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/verify", h.verify)
}

type verifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	OrderID string `json:"order_id,omitempty"`
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	params, err := decodeCallback(w, r)
	if err != nil {
		render.JSON(w, http.StatusBadRequest, verifyResponse{Status: "error", Message: "invalid request"})
		return
	}

	o, err := h.svc.Verify(r.Context(), params)
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.Error("payment verification failed", "remote_order_id", params.RemoteOrderID, "error", err)
		}

		render.JSON(w, status, verifyResponse{Status: "error", Message: msg})

		return
	}

	slog.Info("payment verified", "order_id", o.OrderID, "remote_payment_id", o.RemotePaymentID)

	render.JSON(w, http.StatusOK, verifyResponse{
		Status:  "success",
		Message: "payment verified successfully",
		OrderID: o.OrderID,
	})
}

func statusFor(err error) (int, string) {
	if _, ok := validation.AsError(err); ok {
		return http.StatusBadRequest, "missing payment fields"
	}

	switch {
	case errors.Is(err, order.ErrSignatureInvalid):
		return http.StatusBadRequest, "invalid payment signature"
	case errors.Is(err, order.ErrInvalidTransition):
		return http.StatusBadRequest, "order cannot be completed"
	case errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound, "order not found"
	case errors.Is(err, order.ErrAlreadyProcessed), errors.Is(err, order.ErrDuplicateTransaction):
		return http.StatusConflict, "payment already processed"
	default:
		return http.StatusInternalServerError, "payment verification failed"
	}
}

// decodeCallback accepts the gateway fields either as JSON or as a form post.
// The raw JSON body, or the form fields re-encoded as JSON, is kept as the
// transaction payload.
func decodeCallback(w http.ResponseWriter, r *http.Request) (order.VerifyParams, error) {
	var params order.VerifyParams

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, maxCallbackBytes)
		if err := r.ParseForm(); err != nil {
			return params, err
		}

		params.RemoteOrderID = r.PostFormValue("razorpay_order_id")
		params.RemotePaymentID = r.PostFormValue("razorpay_payment_id")
		params.Signature = r.PostFormValue("razorpay_signature")
		params.Payload, _ = json.Marshal(map[string]string{
			"razorpay_order_id":   params.RemoteOrderID,
			"razorpay_payment_id": params.RemotePaymentID,
			"razorpay_signature":  params.Signature,
		})
	default:
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBytes))
		if err != nil {
			return params, err
		}

		if err := json.Unmarshal(raw, &params); err != nil {
			return params, err
		}

		params.Payload = raw
	}

	return params, nil
}
