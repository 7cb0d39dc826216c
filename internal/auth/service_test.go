package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"beatsbook/internal/shared/config"
	"beatsbook/internal/users"
	"beatsbook/pkg/clock"
	"beatsbook/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*users.User
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{users: make(map[uuid.UUID]*users.User)}
}

func (f *fakeRepository) Create(_ context.Context, user *users.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, id uuid.UUID) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (f *fakeRepository) GetByEmail(_ context.Context, email string) (*users.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeRepository) ExistsByEmailOrUsername(_ context.Context, email, username string, excludeID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.ID == excludeID {
			continue
		}
		if user.Email == email || user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) Update(_ context.Context, user *users.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return ErrUserNotFound
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func newTestService() Service {
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			JWTExpiresIn:     15 * time.Minute,
			RefreshExpiresIn: 24 * time.Hour,
		},
	}
	// Token expiry is checked against the wall clock during parsing, so the
	// fixed clock must be anchored to the present.
	return NewService(newFakeRepository(), cfg, clock.NewFixed(time.Now()), logger.GetDefault())
}

func registerReq(email, username string) *RegisterRequest {
	return &RegisterRequest{
		FirstName: "Asha",
		LastName:  "Patel",
		Username:  username,
		Email:     email,
		Password:  "super-secret-1",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account and issues tokens", func(t *testing.T) {
		svc := newTestService()
		result, err := svc.Register(ctx, registerReq("Asha@Example.com", "asha"))
		require.NoError(t, err)

		assert.Equal(t, "asha@example.com", result.User.Email)
		assert.Equal(t, users.RoleUser, result.User.Role)
		assert.NotEmpty(t, result.Tokens.AccessToken)
		assert.NotEmpty(t, result.Tokens.RefreshToken)
		assert.Equal(t, "Bearer", result.Tokens.TokenType)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc := newTestService()
		_, err := svc.Register(ctx, registerReq("asha@example.com", "asha"))
		require.NoError(t, err)

		_, err = svc.Register(ctx, registerReq("asha@example.com", "other"))
		assert.ErrorIs(t, err, ErrDuplicateIdentifier)
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		svc := newTestService()
		_, err := svc.Register(ctx, registerReq("asha@example.com", "asha"))
		require.NoError(t, err)

		_, err = svc.Register(ctx, registerReq("other@example.com", "asha"))
		assert.ErrorIs(t, err, ErrDuplicateIdentifier)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	_, err := svc.Register(ctx, registerReq("asha@example.com", "asha"))
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		result, err := svc.Login(ctx, &LoginRequest{Email: "asha@example.com", Password: "super-secret-1"})
		require.NoError(t, err)
		assert.Equal(t, "asha", result.User.Username)
	})

	t.Run("wrong password and unknown email read the same", func(t *testing.T) {
		_, err := svc.Login(ctx, &LoginRequest{Email: "asha@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "super-secret-1"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	registered, err := svc.Register(ctx, registerReq("asha@example.com", "asha"))
	require.NoError(t, err)

	t.Run("refresh token yields a new pair", func(t *testing.T) {
		tokens, err := svc.Refresh(ctx, &RefreshRequest{RefreshToken: registered.Tokens.RefreshToken})
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
	})

	t.Run("access token is not accepted as refresh token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, &RefreshRequest{RefreshToken: registered.Tokens.AccessToken})
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := svc.Refresh(ctx, &RefreshRequest{RefreshToken: "not-a-token"})
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}

func TestUpdateAccount(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	first, err := svc.Register(ctx, registerReq("asha@example.com", "asha"))
	require.NoError(t, err)
	_, err = svc.Register(ctx, registerReq("ravi@example.com", "ravi"))
	require.NoError(t, err)

	t.Run("cannot take another user's email", func(t *testing.T) {
		email := "ravi@example.com"
		_, err := svc.UpdateAccount(ctx, first.User.ID, &UpdateAccountRequest{Email: &email})
		assert.ErrorIs(t, err, ErrDuplicateIdentifier)
	})

	t.Run("keeping own email is not a conflict", func(t *testing.T) {
		name := "Aasha"
		updated, err := svc.UpdateAccount(ctx, first.User.ID, &UpdateAccountRequest{FirstName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Aasha", updated.FirstName)
		assert.Equal(t, "asha@example.com", updated.Email)
	})

	t.Run("email is normalised", func(t *testing.T) {
		email := "  New.Asha@Example.com "
		updated, err := svc.UpdateAccount(ctx, first.User.ID, &UpdateAccountRequest{Email: &email})
		require.NoError(t, err)
		assert.Equal(t, "new.asha@example.com", updated.Email)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	registered, err := svc.Register(ctx, registerReq("asha@example.com", "asha"))
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, registered.User.ID, &ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "even-more-secret-2",
	})
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = svc.ChangePassword(ctx, registered.User.ID, &ChangePasswordRequest{
		CurrentPassword: "super-secret-1",
		NewPassword:     "even-more-secret-2",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &LoginRequest{Email: "asha@example.com", Password: "even-more-secret-2"})
	assert.NoError(t, err)
}
