package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_Password(t *testing.T) {
	t.Parallel()

	h := New(bcrypt.MinCost)
	hashed, err := h.HashPassword("pw")
	require.NoError(t, err)

	assert.NotEqual(t, "pw", hashed)
	assert.True(t, h.CheckPassword(hashed, "pw"))
	assert.False(t, h.CheckPassword(hashed, "other"))
}

func TestHasher_PasswordTooLong(t *testing.T) {
	t.Parallel()

	_, err := New(bcrypt.MinCost).HashPassword(strings.Repeat("a", 73))
	require.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestHasher_TokenLongerThanBcryptLimit(t *testing.T) {
	t.Parallel()

	h := New(bcrypt.MinCost)
	prefix := strings.Repeat("x", 100)
	tokenA := prefix + "A"
	tokenB := prefix + "B"

	hashed, err := h.HashToken(tokenA)
	require.NoError(t, err)

	assert.True(t, h.CheckToken(hashed, tokenA))
	assert.False(t, h.CheckToken(hashed, tokenB), "tokens sharing a 72-byte prefix must not collide")
}

func TestHasher_TokenHashIsSalted(t *testing.T) {
	t.Parallel()

	h := New(bcrypt.MinCost)
	a, err := h.HashToken("same")
	require.NoError(t, err)
	b, err := h.HashToken("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestNew_InvalidCostFallsBack(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bcrypt.DefaultCost, New(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, New(99).cost)
	assert.Equal(t, bcrypt.MinCost, New(bcrypt.MinCost).cost)
}

func TestSha256Hex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Sha256Hex(""))
	assert.Len(t, Sha256Hex("anything"), 64)
}
