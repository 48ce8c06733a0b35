package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vslbak/gymflow-web/internal/api"
	"github.com/vslbak/gymflow-web/internal/auth"
	"github.com/vslbak/gymflow-web/internal/email"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, username, email, phone, passwordHash, role string) (*User, error) {
	args := m.Called(ctx, username, email, phone, passwordHash, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendWelcome(ctx context.Context, to, name string) error {
	return m.Called(ctx, to, name).Error(0)
}

func (m *MockNotifier) SendBookingConfirmation(ctx context.Context, to, name string, d email.BookingDetails) error {
	return m.Called(ctx, to, name, d).Error(0)
}

func (m *MockNotifier) SendCancellation(ctx context.Context, to, name string, d email.BookingDetails) error {
	return m.Called(ctx, to, name, d).Error(0)
}

func newTestIssuer(t *testing.T) *auth.TokenIssuer {
	t.Helper()
	issuer, err := auth.NewTokenIssuer("test-secret")
	require.NoError(t, err)
	return issuer
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := auth.HashPassword(password)
	require.NoError(t, err)
	return h
}

func TestService_Register(t *testing.T) {
	tests := []struct {
		name          string
		req           api.SignupRequest
		setupMock     func(*MockRepository, *MockNotifier)
		expectedError error
	}{
		{
			name: "successful registration",
			req:  api.SignupRequest{Username: "Jane", Email: " Jane@Example.com ", Phone: "555", Password: "password123"},
			setupMock: func(m *MockRepository, n *MockNotifier) {
				m.On("EmailExists", mock.Anything, "jane@example.com").Return(false, nil)
				m.On("Create", mock.Anything, "Jane", "jane@example.com", "555", mock.Anything, api.RoleUser).Return(&User{
					ID:       "3",
					Username: "Jane",
					Email:    "jane@example.com",
					Role:     api.RoleUser,
				}, nil)
				n.On("SendWelcome", mock.Anything, "jane@example.com", "Jane").Return(nil)
			},
		},
		{
			name: "email already exists",
			req:  api.SignupRequest{Username: "John", Email: "test@gymflow.com", Password: "password123"},
			setupMock: func(m *MockRepository, _ *MockNotifier) {
				m.On("EmailExists", mock.Anything, "test@gymflow.com").Return(true, nil)
			},
			expectedError: ErrEmailExists,
		},
		{
			name: "welcome email failure does not fail registration",
			req:  api.SignupRequest{Username: "Kim", Email: "kim@example.com", Password: "password123"},
			setupMock: func(m *MockRepository, n *MockNotifier) {
				m.On("EmailExists", mock.Anything, "kim@example.com").Return(false, nil)
				m.On("Create", mock.Anything, "Kim", "kim@example.com", "", mock.Anything, api.RoleUser).Return(&User{
					ID: "4", Username: "Kim", Email: "kim@example.com", Role: api.RoleUser,
				}, nil)
				n.On("SendWelcome", mock.Anything, "kim@example.com", "Kim").Return(errors.New("redis down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			notifier := new(MockNotifier)
			tt.setupMock(repo, notifier)

			svc := NewService(repo, newTestIssuer(t), notifier)
			user, tokens, err := svc.Register(context.Background(), tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, tokens.AccessToken)
				assert.NotEmpty(t, tokens.RefreshToken)
				assert.Equal(t, int64(900), tokens.ExpiresIn)
			}
			repo.AssertExpectations(t)
			notifier.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	stored := &User{ID: "1", Email: "test@gymflow.com", Role: api.RoleUser, PasswordHash: hashed(t, "password123")}

	tests := []struct {
		name          string
		req           api.LoginRequest
		setupMock     func(*MockRepository)
		expectedError error
	}{
		{
			name: "valid credentials",
			req:  api.LoginRequest{Email: "TEST@gymflow.com", Password: "password123"},
			setupMock: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "test@gymflow.com").Return(stored, nil)
			},
		},
		{
			name: "wrong password",
			req:  api.LoginRequest{Email: "test@gymflow.com", Password: "nope"},
			setupMock: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "test@gymflow.com").Return(stored, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name: "unknown email",
			req:  api.LoginRequest{Email: "ghost@gymflow.com", Password: "password123"},
			setupMock: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "ghost@gymflow.com").Return(nil, ErrUserNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name: "database error",
			req:  api.LoginRequest{Email: "test@gymflow.com", Password: "password123"},
			setupMock: func(m *MockRepository) {
				m.On("FindByEmail", mock.Anything, "test@gymflow.com").Return(nil, assert.AnError)
			},
			expectedError: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			tt.setupMock(repo)

			svc := NewService(repo, newTestIssuer(t), nil)
			user, tokens, err := svc.Login(context.Background(), tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "1", user.ID)
			assert.NotEmpty(t, tokens.AccessToken)
		})
	}
}

func TestService_Refresh(t *testing.T) {
	issuer := newTestIssuer(t)
	pair, err := issuer.Issue("2", "admin@gymflow.com", api.RoleUser)
	require.NoError(t, err)

	t.Run("reissues with current role", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByID", mock.Anything, "2").Return(&User{ID: "2", Email: "admin@gymflow.com", Role: api.RoleAdmin}, nil)

		svc := NewService(repo, issuer, nil)
		user, tokens, err := svc.Refresh(context.Background(), pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, "2", user.ID)

		claims, err := issuer.ValidateAccess(tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, api.RoleAdmin, claims.Role)
	})

	t.Run("access token rejected", func(t *testing.T) {
		svc := NewService(new(MockRepository), issuer, nil)
		_, _, err := svc.Refresh(context.Background(), pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("empty token", func(t *testing.T) {
		svc := NewService(new(MockRepository), issuer, nil)
		_, _, err := svc.Refresh(context.Background(), "")
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("deleted user", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("FindByID", mock.Anything, "2").Return(nil, ErrUserNotFound)

		svc := NewService(repo, issuer, nil)
		_, _, err := svc.Refresh(context.Background(), pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}

func TestService_GetByID(t *testing.T) {
	repo := new(MockRepository)
	repo.On("FindByID", mock.Anything, "9").Return(nil, ErrUserNotFound)

	svc := NewService(repo, newTestIssuer(t), nil)
	_, err := svc.GetByID(context.Background(), "9")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
