package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner() *Signer {
	return NewSigner([]byte("test-access-secret"), []byte("test-refresh-secret"), 15*time.Minute, 24*time.Hour)
}

func TestSigner_SignAccess_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	s := newTestSigner()
	userID := uuid.NewString()

	token, exp, err := s.SignAccess(userID, "ADMIN", "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := s.ParseAccess(token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.Subject)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, TypeAccess, claims.Type)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)
}

func TestSigner_TokensAreDistinct(t *testing.T) {
	t.Parallel()

	s := newTestSigner()
	a, _, err := s.SignRefresh("u", "CUSTOMER", "a@x.com")
	require.NoError(t, err)
	b, _, err := s.SignRefresh("u", "CUSTOMER", "a@x.com")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestSigner_SecretsAndTypesAreNotInterchangeable(t *testing.T) {
	t.Parallel()

	s := newTestSigner()
	access, _, err := s.SignAccess("u", "CUSTOMER", "a@x.com")
	require.NoError(t, err)
	refresh, _, err := s.SignRefresh("u", "CUSTOMER", "a@x.com")
	require.NoError(t, err)

	_, err = s.ParseRefresh(access)
	assert.Error(t, err)
	_, err = s.ParseAccess(refresh)
	assert.Error(t, err)

	// same secret on both sides still rejects the other token type
	shared := NewSigner([]byte("k"), []byte("k"), time.Minute, time.Minute)
	access, _, err = shared.SignAccess("u", "CUSTOMER", "a@x.com")
	require.NoError(t, err)
	_, err = shared.ParseRefresh(access)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestSigner_Expired(t *testing.T) {
	t.Parallel()

	s := newTestSigner()
	s.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	token, _, err := s.SignRefresh("u", "CUSTOMER", "a@x.com")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.ParseRefresh(token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	claims, err := s.ParseRefreshSignature(token)
	require.NoError(t, err)
	assert.Equal(t, "u", claims.Subject)
}

func TestSigner_RejectsGarbageAndOtherAlgorithms(t *testing.T) {
	t.Parallel()

	s := newTestSigner()

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-valid-jwt"},
		{name: "empty", token: ""},
		{name: "none alg", token: func() string {
			tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Type: TypeRefresh, RegisteredClaims: jwt.RegisteredClaims{
				Subject: "u", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			}})
			str, _ := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
			return str
		}()},
		{name: "foreign secret", token: func() string {
			other := NewSigner([]byte("x"), []byte("y"), time.Minute, time.Minute)
			str, _, _ := other.SignRefresh("u", "CUSTOMER", "a@x.com")
			return str
		}()},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := s.ParseRefresh(tt.token)
			assert.Error(t, err)
			_, err = s.ParseRefreshSignature(tt.token)
			assert.Error(t, err)
		})
	}
}
