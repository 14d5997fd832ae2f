package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var ErrWrongType = errors.New("wrong token type")

type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

// Signer mints and verifies HS256 tokens. Access and refresh tokens use
// independent secrets and lifetimes.
type Signer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewSigner(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *Signer {
	return &Signer{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func NewJTI() string {
	return uuid.NewString()
}

func (s *Signer) SignAccess(subject, role, email string) (string, time.Time, error) {
	return s.sign(TypeAccess, s.accessSecret, s.accessTTL, subject, role, email)
}

func (s *Signer) SignRefresh(subject, role, email string) (string, time.Time, error) {
	return s.sign(TypeRefresh, s.refreshSecret, s.refreshTTL, subject, role, email)
}

func (s *Signer) sign(typ string, secret []byte, ttl time.Duration, subject, role, email string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(ttl)
	claims := Claims{
		Role:  role,
		Email: email,
		Type:  typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        NewJTI(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (s *Signer) ParseAccess(token string) (*Claims, error) {
	return s.parse(token, TypeAccess, s.accessSecret, jwt.WithExpirationRequired())
}

func (s *Signer) ParseRefresh(token string) (*Claims, error) {
	return s.parse(token, TypeRefresh, s.refreshSecret, jwt.WithExpirationRequired())
}

// ParseRefreshSignature checks only the signature and token type, accepting
// expired refresh tokens.
func (s *Signer) ParseRefreshSignature(token string) (*Claims, error) {
	return s.parse(token, TypeRefresh, s.refreshSecret, jwt.WithoutClaimsValidation())
}

func (s *Signer) parse(token, typ string, secret []byte, opts ...jwt.ParserOption) (*Claims, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	var claims Claims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if claims.Type != typ {
		return nil, ErrWrongType
	}
	return &claims, nil
}
