package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/projectlibrary/internal/auth"
	apihttp "github.com/MrJamesThe3rd/projectlibrary/internal/http"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/account"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/catalog"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/customrequest"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/download"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/order"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/payment"
)

var tokens = auth.NewTokens("test-secret", time.Hour)

func newRouter(health func(context.Context) error) http.Handler {

	return apihttp.New(
		apihttp.Options{Tokens: tokens, AllowedOrigins: []string{"*"}, Timeout: time.Second, Health: health},
		catalog.NewHandler(nil, nil),
		account.NewHandler(nil, tokens),
		order.NewHandler(nil),
		payment.NewHandler(nil),
		download.NewHandler(nil),
		customrequest.NewHandler(nil),
	)
}

func TestRouter_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newRouter(func(context.Context) error { return errors.New("db down") }).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	router := newRouter(nil)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/orders/ORD-ABCDEF123456"},
		{http.MethodGet, "/api/v1/dashboard"},
		{http.MethodGet, "/api/v1/downloads/ORD-ABCDEF123456"},
		{http.MethodGet, "/api/v1/accounts/me"},
		{http.MethodGet, "/api/v1/staff/custom-requests"},
		{http.MethodPatch, "/api/v1/staff/orders/ORD-ABCDEF123456"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_StaffRoutesRefuseCustomers(t *testing.T) {
	router := newRouter(nil)

	raw, _, err := tokens.Issue(uuid.New(), "asha", false)
	require.NoError(t, err)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/staff/custom-requests"},
		{http.MethodGet, "/api/v1/staff/custom-requests/" + uuid.NewString()},
		{http.MethodPatch, "/api/v1/staff/custom-requests/" + uuid.NewString()},
		{http.MethodPatch, "/api/v1/staff/orders/ORD-ABCDEF123456"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.Header.Set("Authorization", "Bearer "+raw)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}
