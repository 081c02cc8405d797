package order_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/projectlibrary/internal/auth"
	"github.com/MrJamesThe3rd/projectlibrary/internal/catalog"
	handler "github.com/MrJamesThe3rd/projectlibrary/internal/http/order"
	"github.com/MrJamesThe3rd/projectlibrary/internal/order"
	"github.com/MrJamesThe3rd/projectlibrary/internal/validation"
)

type mocks struct {
	repo     *order.MockRepository
	projects *order.MockProjects
	gateway  *order.MockGateway
}

func (m *mocks) router(userID uuid.UUID) http.Handler {
	svc := order.NewService(m.repo, m.projects, m.gateway, validation.New(), "INR")
	h := handler.NewHandler(svc)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := auth.WithIdentity(req.Context(), auth.Identity{UserID: userID, Username: "asha"})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/orders", h.Routes)
	r.Route("/dashboard", h.DashboardRoutes)
	r.Route("/staff/orders", h.StaffRoutes)

	return r
}

func TestHandler_Create(t *testing.T) {
	userID := uuid.New()
	project := &catalog.Project{
		ID:       uuid.New(),
		Title:    "Attendance System",
		Price:    decimal.RequireFromString("499.00"),
		IsActive: true,
	}

	type testCase struct {
		name       string
		setupMock  func(m *mocks)
		wantStatus int
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *mocks) {
				m.projects.EXPECT().Get(gomock.Any(), project.ID).Return(project, nil)
				m.repo.EXPECT().HasCompletedOrder(gomock.Any(), userID, project.ID).Return(false, nil)
				m.gateway.EXPECT().CreateOrder(gomock.Any(), int64(49900), "INR", gomock.Any()).Return("order_remote_1", nil)
				m.gateway.EXPECT().KeyID().Return("rzp_test_key")
				m.repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "AlreadyPurchased",
			setupMock: func(m *mocks) {
				m.projects.EXPECT().Get(gomock.Any(), project.ID).Return(project, nil)
				m.repo.EXPECT().HasCompletedOrder(gomock.Any(), userID, project.ID).Return(true, nil)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "GatewayDown",
			setupMock: func(m *mocks) {
				m.projects.EXPECT().Get(gomock.Any(), project.ID).Return(project, nil)
				m.repo.EXPECT().HasCompletedOrder(gomock.Any(), userID, project.ID).Return(false, nil)
				m.gateway.EXPECT().CreateOrder(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("timeout"))
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "UnknownProject",
			setupMock: func(m *mocks) {
				m.projects.EXPECT().Get(gomock.Any(), project.ID).Return(nil, catalog.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := &mocks{
				repo:     order.NewMockRepository(ctrl),
				projects: order.NewMockProjects(ctrl),
				gateway:  order.NewMockGateway(ctrl),
			}
			tt.setupMock(m)

			body := strings.NewReader(`{"project_id":"` + project.ID.String() + `"}`)

			rec := httptest.NewRecorder()
			m.router(userID).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders", body))

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusCreated {
				return
			}

			var resp struct {
				OrderID   string `json:"order_id"`
				Amount    int64  `json:"amount"`
				Currency  string `json:"currency"`
				Name      string `json:"name"`
				Key       string `json:"key"`
				DBOrderID string `json:"db_order_id"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, "order_remote_1", resp.OrderID)
			assert.Equal(t, int64(49900), resp.Amount)
			assert.Equal(t, "INR", resp.Currency)
			assert.Equal(t, "Attendance System", resp.Name)
			assert.Equal(t, "rzp_test_key", resp.Key)
			assert.True(t, strings.HasPrefix(resp.DBOrderID, "ORD-"))
		})
	}
}

func TestHandler_Get_OtherUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := &mocks{
		repo:     order.NewMockRepository(ctrl),
		projects: order.NewMockProjects(ctrl),
		gateway:  order.NewMockGateway(ctrl),
	}
	m.repo.EXPECT().GetOrder(gomock.Any(), "ORD-ABCDEF123456").Return(&order.Order{OrderID: "ORD-ABCDEF123456", UserID: uuid.New()}, nil)

	rec := httptest.NewRecorder()
	m.router(uuid.New()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/ORD-ABCDEF123456", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Dashboard(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()

	m := &mocks{
		repo:     order.NewMockRepository(ctrl),
		projects: order.NewMockProjects(ctrl),
		gateway:  order.NewMockGateway(ctrl),
	}
	m.repo.EXPECT().
		ListByUser(gomock.Any(), userID, order.StatusCompleted).
		DoAndReturn(func(context.Context, uuid.UUID, order.Status) ([]*order.Order, error) {
			return []*order.Order{{
				OrderID: "ORD-ABCDEF123456",
				Status:  order.StatusCompleted,
				Project: &order.ProjectSummary{Title: "Attendance System", File: "projects/files/a.zip"},
			}}, nil
		})

	rec := httptest.NewRecorder()
	m.router(userID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_purchases":1`)
	assert.Contains(t, rec.Body.String(), "Attendance System")
	assert.NotContains(t, rec.Body.String(), "projects/files/a.zip")
}
