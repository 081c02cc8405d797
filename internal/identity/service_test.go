package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MrJamesThe3rd/projectlibrary/internal/identity"
	"github.com/MrJamesThe3rd/projectlibrary/internal/validation"
)

func newService(repo identity.Repository) *identity.Service {
	return identity.NewService(repo, validation.New()).WithHashCost(bcrypt.MinCost)
}

func registerParams() identity.RegisterParams {
	return identity.RegisterParams{
		Username:        "asha",
		Email:           " Asha@Example.com ",
		FirstName:       "Asha",
		LastName:        "Rao",
		Password:        "correct-horse",
		PasswordConfirm: "correct-horse",
	}
}

func TestService_Register(t *testing.T) {
	type testCase struct {
		name      string
		mutate    func(p *identity.RegisterParams)
		setupMock func(m *identity.MockRepository)
		wantErr   error
		wantField string
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *identity.MockRepository) {
				m.EXPECT().EmailExists(gomock.Any(), "asha@example.com").Return(false, nil)
				m.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u *identity.User) error {
						assert.NotEqual(t, "correct-horse", u.PasswordHash)
						assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("correct-horse")))
						u.ID = uuid.New()

						return nil
					})
			},
		},
		{
			name: "EmailTaken",
			setupMock: func(m *identity.MockRepository) {
				m.EXPECT().EmailExists(gomock.Any(), "asha@example.com").Return(true, nil)
			},
			wantErr: identity.ErrEmailTaken,
		},
		{
			name: "UsernameTaken",
			setupMock: func(m *identity.MockRepository) {
				m.EXPECT().EmailExists(gomock.Any(), gomock.Any()).Return(false, nil)
				m.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(identity.ErrUsernameTaken)
			},
			wantErr: identity.ErrUsernameTaken,
		},
		{
			name:      "PasswordMismatch",
			mutate:    func(p *identity.RegisterParams) { p.PasswordConfirm = "different-horse" },
			wantField: "password2",
		},
		{
			name:      "ShortPassword",
			mutate:    func(p *identity.RegisterParams) { p.Password, p.PasswordConfirm = "short", "short" },
			wantField: "password1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := identity.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			params := registerParams()
			if tt.mutate != nil {
				tt.mutate(&params)
			}

			got, err := newService(repo).Register(context.Background(), params)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			case tt.wantField != "":
				verr, ok := validation.AsError(err)
				require.True(t, ok, "expected validation error, got %v", err)
				assert.Contains(t, verr.Fields, tt.wantField)
			default:
				require.NoError(t, err)
				assert.Equal(t, "asha@example.com", got.Email)
				assert.NotEqual(t, uuid.Nil, got.ID)
			}
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &identity.User{ID: uuid.New(), Username: "asha", PasswordHash: string(hash)}

	type testCase struct {
		name      string
		password  string
		setupMock func(m *identity.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:     "Success",
			password: "correct-horse",
			setupMock: func(m *identity.MockRepository) {
				m.EXPECT().GetUserByUsername(gomock.Any(), "asha").Return(user, nil)
			},
		},
		{
			name:     "WrongPassword",
			password: "battery-staple",
			setupMock: func(m *identity.MockRepository) {
				m.EXPECT().GetUserByUsername(gomock.Any(), "asha").Return(user, nil)
			},
			wantErr: identity.ErrInvalidCredentials,
		},
		{
			name:     "UnknownUser",
			password: "correct-horse",
			setupMock: func(m *identity.MockRepository) {
				m.EXPECT().GetUserByUsername(gomock.Any(), "asha").Return(nil, identity.ErrNotFound)
			},
			wantErr: identity.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := identity.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := newService(repo).Authenticate(context.Background(), "asha", tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)
		})
	}
}

func TestService_UpdateProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	userID := uuid.New()

	repo := identity.NewMockRepository(ctrl)
	repo.EXPECT().GetProfile(gomock.Any(), userID).Return(&identity.Profile{UserID: userID}, nil)
	repo.EXPECT().
		UpdateProfile(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *identity.Profile) error {
			assert.Equal(t, userID, p.UserID)
			assert.Equal(t, "9876543210", p.Phone)

			return nil
		})

	got, err := newService(repo).UpdateProfile(context.Background(), userID, identity.ProfileParams{
		Phone:       " 9876543210 ",
		Institution: "VIT",
		Course:      "B.Tech CSE",
	})
	require.NoError(t, err)
	assert.Equal(t, "VIT", got.Institution)
}

func TestService_UpdateProfile_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := identity.NewMockRepository(ctrl)
	repo.EXPECT().GetProfile(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))

	_, err := newService(repo).UpdateProfile(context.Background(), uuid.New(), identity.ProfileParams{})
	assert.Error(t, err)
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Asha Rao", (&identity.User{Username: "asha", FirstName: "Asha", LastName: "Rao"}).DisplayName())
	assert.Equal(t, "asha", (&identity.User{Username: "asha"}).DisplayName())
}
