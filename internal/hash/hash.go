package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// Hasher produces salted one-way digests for passwords and refresh tokens.
type Hasher struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *Hasher) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashToken digests a signed token. Tokens exceed bcrypt's 72-byte input
// limit, so they are reduced with SHA-256 first.
func (h *Hasher) HashToken(token string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(Sha256Hex(token)), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *Hasher) CheckToken(hash, token string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(Sha256Hex(token))) == nil
}

// CheckAgainstDummy spends the same work as CheckPassword on a hash that never
// matches. Used when there is no stored hash to compare against.
func (h *Hasher) CheckAgainstDummy(password string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("no-such-user"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}

func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
