package customrequest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/projectlibrary/internal/auth"
	"github.com/MrJamesThe3rd/projectlibrary/internal/customrequest"
	handler "github.com/MrJamesThe3rd/projectlibrary/internal/http/customrequest"
	"github.com/MrJamesThe3rd/projectlibrary/internal/validation"
)

func newRouter(repo customrequest.Repository, n customrequest.Notifier) http.Handler {
	r := chi.NewRouter()
	handler.NewHandler(customrequest.NewService(repo, validation.New(), n)).Routes(r)

	return r
}

func formBody() url.Values {
	return url.Values{
		"name":         {"Ravi Kumar"},
		"email":        {"ravi@example.com"},
		"phone":        {"9876543210"},
		"project_type": {"Web Application"},
		"deadline":     {"2026-12-01"},
		"description":  {"Inventory tracker with barcode scanning"},
		"budget":       {"15000"},
	}
}

func TestHandler_Submit_Form(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()

	repo := customrequest.NewMockRepository(ctrl)
	repo.EXPECT().
		CreateRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *customrequest.Request) error {
			require.NotNil(t, r.UserID)
			assert.Equal(t, userID, *r.UserID)
			assert.Equal(t, customrequest.StatusPending, r.Status)
			r.ID = uuid.New()

			return nil
		})

	notifier := customrequest.NewMockNotifier(ctrl)
	notifier.EXPECT().CustomRequestReceived(gomock.Any(), gomock.Any()).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(formBody().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UserID: userID}))

	rec := httptest.NewRecorder()
	newRouter(repo, notifier).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "pending", body.Status)
}

func TestHandler_Submit_JSONValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	body := `{"name":"Ravi","email":"not-an-email","phone":"9876543210","project_type":"Web Application",` +
		`"deadline":"2026-12-01","description":"x","budget":"-5"}`

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	newRouter(customrequest.NewMockRepository(ctrl), nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Fields, "email")
}

func TestHandler_ProjectTypes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rec := httptest.NewRecorder()
	newRouter(customrequest.NewMockRepository(ctrl), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/project-types", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Web Application")
}
