package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanCamilo2002/gamer-buy-api/internal/models"
)

var device = DeviceMeta{UserAgent: "test-agent", IP: "127.0.0.1"}

func TestAuthService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.Auth.Register(ctx, " A@X.com ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.NotEqual(t, "pw", u.PasswordHash)
	assert.NotEqual(t, uuid.Nil, u.ID)

	_, err = env.Auth.Register(ctx, "a@x.com", "other")
	require.ErrorIs(t, err, ErrConflict)

	require.Len(t, env.Events.OfType("user_registered"), 1)
}

func TestAuthService_Register_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "secret"},
		{name: "not an email", email: "nope", password: "secret"},
		{name: "display name form", email: "Bob <bob@x.com>", password: "secret"},
		{name: "empty password", email: "b@x.com", password: ""},
		{name: "password over bcrypt limit", email: "c@x.com", password: string(make([]byte, 73))},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Auth.Register(ctx, tt.email, tt.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Login_IssuesDistinctPairs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "a@x.com")

	first, err := env.Auth.Login(ctx, "a@x.com", "pw", device)
	require.NoError(t, err)
	second, err := env.Auth.Login(ctx, "a@x.com", "pw", device)
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, first.RefreshToken)

	claims, err := env.Auth.Signer.ParseAccess(first.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, string(models.RoleCustomer), claims.Role)

	assert.WithinDuration(t, time.Now().Add(DefaultSessionTTL), first.SessionExpiresAt, time.Minute)
}

func TestAuthService_Login_StoresOnlyHashedRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "a@x.com")

	pair, err := env.Auth.Login(ctx, "a@x.com", "pw", device)
	require.NoError(t, err)

	sessions, err := env.Repo.ListActiveSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	s := sessions[0]
	assert.NotEqual(t, pair.RefreshToken, s.TokenHash)
	assert.NotContains(t, s.TokenHash, pair.RefreshToken)
	assert.True(t, env.Auth.Hasher.CheckToken(s.TokenHash, pair.RefreshToken))
	assert.Equal(t, "test-agent", s.UserAgent)
	assert.Equal(t, "127.0.0.1", s.IP)
	assert.False(t, s.Revoked)
}

func TestAuthService_Login_EnumerationResistance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "a@x.com")

	_, errWrongPw := env.Auth.Login(ctx, "a@x.com", "nope", device)
	_, errUnknown := env.Auth.Login(ctx, "ghost@x.com", "pw", device)

	require.ErrorIs(t, errWrongPw, ErrAuth)
	require.ErrorIs(t, errUnknown, ErrAuth)
	assert.Equal(t, errWrongPw.Error(), errUnknown.Error())
	assert.Equal(t, "invalid credentials", errUnknown.Error())

	// reasons differ internally only
	assert.Equal(t, "bad_password", ReasonOf(errWrongPw))
	assert.Equal(t, "unknown_email", ReasonOf(errUnknown))
}

func TestAuthService_Refresh_Rotates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "a@x.com")

	pair, err := env.Auth.Login(ctx, "a@x.com", "pw", device)
	require.NoError(t, err)

	rotated, err := env.Auth.Refresh(ctx, pair.RefreshToken, DeviceMeta{UserAgent: "phone", IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, rotated.AccessToken)

	active, err := env.Repo.ListActiveSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, active, 1, "old session revoked, new one active")
	assert.Equal(t, "phone", active[0].UserAgent)

	// reuse after rotation
	_, err = env.Auth.Refresh(ctx, pair.RefreshToken, device)
	require.ErrorIs(t, err, ErrAuth)
	assert.Equal(t, "invalid refresh token", err.Error())
	assert.Equal(t, "no_match", ReasonOf(err))

	// the rotated token keeps working
	_, err = env.Auth.Refresh(ctx, rotated.RefreshToken, device)
	require.NoError(t, err)
}

func TestAuthService_Refresh_ConcurrentReuseHasOneWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "a@x.com")

	pair, err := env.Auth.Login(ctx, "a@x.com", "pw", device)
	require.NoError(t, err)

	const callers = 5
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		failures int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.Auth.Refresh(ctx, pair.RefreshToken, device)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				return
			}
			assert.ErrorIs(t, err, ErrAuth)
			failures++
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, callers-1, failures)
}

func TestAuthService_Refresh_FailuresLookAlike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "a@x.com")

	pair, err := env.Auth.Login(ctx, "a@x.com", "pw", device)
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		_, err := env.Auth.Refresh(ctx, "not-a-valid-jwt", device)
		require.ErrorIs(t, err, ErrAuth)
		assert.Equal(t, "invalid refresh token", err.Error())
		assert.Equal(t, "bad_token", ReasonOf(err))
	})

	t.Run("access token presented", func(t *testing.T) {
		_, err := env.Auth.Refresh(ctx, pair.AccessToken, device)
		require.ErrorIs(t, err, ErrAuth)
		assert.Equal(t, "bad_token", ReasonOf(err))
	})

	t.Run("expired session is rejected but not revoked", func(t *testing.T) {
		env.Auth.now = func() time.Time { return time.Now().Add(DefaultSessionTTL + time.Hour) }
		defer func() { env.Auth.now = nil }()

		_, err := env.Auth.Refresh(ctx, pair.RefreshToken, device)
		require.ErrorIs(t, err, ErrAuth)
		assert.Equal(t, "invalid refresh token", err.Error())
		assert.Equal(t, "expired", ReasonOf(err))

		active, err := env.Repo.ListActiveSessions(ctx, u.ID)
		require.NoError(t, err)
		assert.Len(t, active, 1)
	})

	t.Run("store failure collapses to auth error", func(t *testing.T) {
		sqlDB, err := env.Repo.DB.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		_, err = env.Auth.Refresh(ctx, pair.RefreshToken, device)
		require.ErrorIs(t, err, ErrAuth)
		assert.Equal(t, "invalid refresh token", err.Error())
		assert.Equal(t, "store_error", ReasonOf(err))
	})
}

func TestAuthService_Refresh_UserDeleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "a@x.com")

	pair, err := env.Auth.Login(ctx, "a@x.com", "pw", device)
	require.NoError(t, err)
	require.NoError(t, env.Repo.DB.Delete(&models.User{}, "id = ?", u.ID).Error)

	_, err = env.Auth.Refresh(ctx, pair.RefreshToken, device)
	require.ErrorIs(t, err, ErrAuth)
	assert.Equal(t, "user_missing", ReasonOf(err))

	// the revoke was rolled back with the rest of the transaction
	active, err := env.Repo.ListActiveSessions(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestAuthService_Logout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "a@x.com")

	require.NoError(t, env.Auth.Logout(ctx, ""))
	require.NoError(t, env.Auth.Logout(ctx, "garbage"))

	laptop, err := env.Auth.Login(ctx, "a@x.com", "pw", device)
	require.NoError(t, err)
	phone, err := env.Auth.Login(ctx, "a@x.com", "pw", device)
	require.NoError(t, err)

	require.NoError(t, env.Auth.Logout(ctx, laptop.RefreshToken))
	require.NoError(t, env.Auth.Logout(ctx, laptop.RefreshToken), "second logout is a silent no-op")

	active, err := env.Repo.ListActiveSessions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)

	_, err = env.Auth.Refresh(ctx, laptop.RefreshToken, device)
	require.ErrorIs(t, err, ErrAuth)
	_, err = env.Auth.Refresh(ctx, phone.RefreshToken, device)
	require.NoError(t, err)
}

func TestAuthService_LogoutAll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "a@x.com")
	env.user(t, "b@x.com")

	var pairs []*TokenPair
	for i := 0; i < 3; i++ {
		p, err := env.Auth.Login(ctx, "a@x.com", "pw", device)
		require.NoError(t, err)
		pairs = append(pairs, p)
	}
	otherPair, err := env.Auth.Login(ctx, "b@x.com", "pw", device)
	require.NoError(t, err)

	n, err := env.Auth.LogoutAll(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = env.Auth.LogoutAll(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "idempotent")

	for _, p := range pairs {
		_, err := env.Auth.Refresh(ctx, p.RefreshToken, device)
		require.ErrorIs(t, err, ErrAuth)
	}

	fresh, err := env.Auth.Login(ctx, "a@x.com", "pw", device)
	require.NoError(t, err)
	_, err = env.Auth.Refresh(ctx, fresh.RefreshToken, device)
	require.NoError(t, err, "sessions created after logout-all are unaffected")

	_, err = env.Auth.Refresh(ctx, otherPair.RefreshToken, device)
	require.NoError(t, err, "other users keep their sessions")
}
