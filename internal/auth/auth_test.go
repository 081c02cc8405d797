package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_IssueParse(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	userID := uuid.New()

	raw, expires, err := tokens.Issue(userID, "asha", true)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "asha", claims.Username)
	assert.True(t, claims.Staff)
}

func TestTokens_Parse_Rejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	raw, _, err := tokens.Issue(uuid.New(), "asha", false)
	require.NoError(t, err)

	type testCase struct {
		name   string
		tokens *Tokens
		raw    string
	}

	expired := NewTokens("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredRaw, _, err := expired.Issue(uuid.New(), "asha", false)
	require.NoError(t, err)

	tests := []testCase{
		{name: "WrongSecret", tokens: NewTokens("other", time.Hour), raw: raw},
		{name: "Garbage", tokens: tokens, raw: "not-a-token"},
		{name: "Expired", tokens: tokens, raw: expiredRaw},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.tokens.Parse(tt.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestRequire(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	userID := uuid.New()

	raw, _, err := tokens.Issue(userID, "asha", false)
	require.NoError(t, err)

	var seen uuid.UUID

	handler := tokens.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, seen)
}

func TestOptional(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	var (
		called bool
		seen   uuid.UUID
	)

	handler := tokens.Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen = UserID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer broken")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, called)
	assert.Equal(t, uuid.Nil, seen)
}

func TestRequireStaff(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	customer, _, err := tokens.Issue(uuid.New(), "asha", false)
	require.NoError(t, err)

	staff, _, err := tokens.Issue(uuid.New(), "ops", true)
	require.NoError(t, err)

	handler := tokens.Require(RequireStaff(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	type testCase struct {
		name     string
		token    string
		wantCode int
	}

	tests := []testCase{
		{name: "Anonymous", wantCode: http.StatusUnauthorized},
		{name: "Customer", token: customer, wantCode: http.StatusForbidden},
		{name: "Staff", token: staff, wantCode: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRequireStaff_WithoutIdentity(t *testing.T) {
	handler := RequireStaff(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached without identity")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
