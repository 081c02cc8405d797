package account_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/projectlibrary/internal/auth"
	"github.com/MrJamesThe3rd/projectlibrary/internal/http/account"
	"github.com/MrJamesThe3rd/projectlibrary/internal/identity"
	"github.com/MrJamesThe3rd/projectlibrary/internal/validation"
)

const secret = "test-secret"

func newRouter(repo identity.Repository) (http.Handler, *auth.Tokens) {
	tokens := auth.NewTokens(secret, time.Hour)
	svc := identity.NewService(repo, validation.New()).WithHashCost(bcrypt.MinCost)

	r := chi.NewRouter()
	account.NewHandler(svc, tokens).Routes(r)

	return r, tokens
}

const registerBody = `{
	"username": "asha",
	"email": "asha@example.com",
	"first_name": "Asha",
	"last_name": "Rao",
	"password1": "correct-horse",
	"password2": "correct-horse"
}`

func TestHandler_Register(t *testing.T) {
	type testCase struct {
		name       string
		body       string
		setupMock  func(m *identity.MockRepository)
		wantStatus int
		wantField  string
	}

	tests := []testCase{
		{
			name: "Success",
			body: registerBody,
			setupMock: func(m *identity.MockRepository) {
				m.EXPECT().EmailExists(gomock.Any(), "asha@example.com").Return(false, nil)
				m.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u *identity.User) error {
						u.ID = uuid.New()
						return nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "UsernameTaken",
			body: registerBody,
			setupMock: func(m *identity.MockRepository) {
				m.EXPECT().EmailExists(gomock.Any(), gomock.Any()).Return(false, nil)
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(identity.ErrUsernameTaken)
			},
			wantStatus: http.StatusBadRequest,
			wantField:  "username",
		},
		{
			name: "EmailTaken",
			body: registerBody,
			setupMock: func(m *identity.MockRepository) {
				m.EXPECT().EmailExists(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantStatus: http.StatusBadRequest,
			wantField:  "email",
		},
		{
			name:       "PasswordMismatch",
			body:       strings.Replace(registerBody, `"password2": "correct-horse"`, `"password2": "other-horse"`, 1),
			setupMock:  func(m *identity.MockRepository) {},
			wantStatus: http.StatusBadRequest,
			wantField:  "password2",
		},
		{
			name:       "MalformedBody",
			body:       `{"username":`,
			setupMock:  func(m *identity.MockRepository) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := identity.NewMockRepository(ctrl)
			tt.setupMock(repo)

			router, tokens := newRouter(repo)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(tt.body)))

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusCreated {
				var body struct {
					Token string `json:"token"`
				}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

				claims, err := tokens.Parse(body.Token)
				require.NoError(t, err)
				assert.Equal(t, "asha", claims.Username)

				return
			}

			if tt.wantField != "" {
				var body struct {
					Fields map[string]string `json:"fields"`
				}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Contains(t, body.Fields, tt.wantField)
			}
		})
	}
}

func TestHandler_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &identity.User{ID: uuid.New(), Username: "asha", PasswordHash: string(hash)}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := identity.NewMockRepository(ctrl)
	repo.EXPECT().GetUserByUsername(gomock.Any(), "asha").Return(user, nil).Times(2)

	router, _ := newRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"asha","password":"correct-horse"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"asha","password":"wrong-horse"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_Me(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	user := &identity.User{ID: uuid.New(), Username: "asha", Email: "asha@example.com"}

	repo := identity.NewMockRepository(ctrl)
	repo.EXPECT().GetUser(gomock.Any(), user.ID).Return(user, nil)
	repo.EXPECT().GetProfile(gomock.Any(), user.ID).Return(&identity.Profile{UserID: user.ID, Institution: "VIT"}, nil)

	router, tokens := newRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, _, err := tokens.Issue(user.ID, user.Username, false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
		Profile struct {
			Institution string `json:"institution"`
		} `json:"profile"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "asha@example.com", body.User.Email)
	assert.Equal(t, "VIT", body.Profile.Institution)
}
