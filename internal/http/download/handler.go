package download

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/projectlibrary/internal/auth"
	"github.com/MrJamesThe3rd/projectlibrary/internal/download"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/render"
)

type Handler struct {
	svc *download.Service
}

func NewHandler(svc *download.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes expects auth.Tokens.Require upstream.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/{orderID}", h.download)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	asset, err := h.svc.Release(r.Context(), download.Request{
		OrderID:   chi.URLParam(r, "orderID"),
		UserID:    auth.UserID(r.Context()),
		IPAddress: clientIP(r),
	})
	if err != nil {
		if errors.Is(err, download.ErrNotEntitled) {
			render.Error(w, http.StatusNotFound, "not found")
			return
		}

		slog.Error("failed to release download", "order_id", chi.URLParam(r, "orderID"), "error", err)
		render.Error(w, http.StatusInternalServerError, "internal error")

		return
	}
	defer asset.Body.Close()

	w.Header().Set("Content-Type", asset.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": asset.Name}))

	if asset.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(asset.Size, 10))
	}

	if _, err := io.Copy(w, asset.Body); err != nil {
		slog.Warn("download interrupted", "file", asset.Name, "error", err)
	}
}

// clientIP strips the port from RemoteAddr. middleware.RealIP may already
// have replaced it with a bare address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
