// Package authmw guards routes with bearer access tokens and role checks.
package authmw

import (
	"net/http"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/juanCamilo2002/gamer-buy-api/internal/logging"
	"github.com/juanCamilo2002/gamer-buy-api/internal/models"
	"github.com/juanCamilo2002/gamer-buy-api/internal/tokens"
)

const (
	ClaimsKey = "claims"
	UserIDKey = "user_id"
	RoleKey   = "role"
)

// Permission describes who may call a route.
type Permission struct {
	authenticated bool
	roles         []models.Role
}

func Public() Permission { return Permission{} }

func Authenticated() Permission { return Permission{authenticated: true} }

// Roles admits authenticated callers holding any of roles.
func Roles(roles ...models.Role) Permission {
	return Permission{authenticated: true, roles: roles}
}

func (p Permission) allows(role models.Role) bool {
	if len(p.roles) == 0 {
		return true
	}
	for _, r := range p.roles {
		if r == role {
			return true
		}
	}
	return false
}

type Authorizer struct {
	signer *tokens.Signer
}

func NewAuthorizer(signer *tokens.Signer) *Authorizer {
	return &Authorizer{signer: signer}
}

// Require returns middleware enforcing p. Missing, malformed, expired or
// refresh-typed tokens yield 401; a valid token with the wrong role yields 403.
func (a *Authorizer) Require(p Permission) echo.MiddlewareFunc {
	if !p.authenticated {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey:  ClaimsKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(_ echo.Context, auth string) (interface{}, error) {
			return a.signer.ParseAccess(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).Warn("auth_error", "status", 401, "reason", "invalid access token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(c echo.Context) error {
			claims, ok := c.Get(ClaimsKey).(*tokens.Claims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			role := models.Role(claims.Role)
			if !p.allows(role) {
				logging.FromContext(c.Request().Context()).Warn("auth_error", "status", 403, "reason", "role not allowed", "user_id", userID, "role", role)
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}

			c.Set(UserIDKey, userID)
			c.Set(RoleKey, role)
			return next(c)
		})
	}
}

// UserIDFrom returns the caller set by Require.
func UserIDFrom(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(UserIDKey).(uuid.UUID)
	return id, ok
}

func RoleFrom(c echo.Context) models.Role {
	r, _ := c.Get(RoleKey).(models.Role)
	return r
}
