package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/juanCamilo2002/gamer-buy-api/internal/logging"
	authmw "github.com/juanCamilo2002/gamer-buy-api/internal/middleware/auth"
	"github.com/juanCamilo2002/gamer-buy-api/internal/service"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func deviceMeta(c echo.Context) service.DeviceMeta {
	return service.DeviceMeta{UserAgent: c.Request().UserAgent(), IP: c.RealIP()}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req credentialsRequest
	if err := bind(c, &req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return err
	}

	user, err := h.Svc.Register(ctx, req.Email, req.Password)
	if err != nil {
		return toHTTP(l, "register", err)
	}

	l.Info("register_success", "status", 201, "user_id", user.ID)
	return c.JSON(http.StatusCreated, userResponse{ID: user.ID, Email: user.Email, Role: user.Role})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	pair, err := h.Svc.Login(ctx, req.Email, req.Password, deviceMeta(c))
	if err != nil {
		return toHTTP(l, "login", err)
	}

	c.SetCookie(refreshCookie(pair.RefreshToken, pair.SessionExpiresAt, h.CookieSecure))
	return c.JSON(http.StatusOK, accessTokenResponse{AccessToken: pair.AccessToken})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		l.Warn("refresh_error", "status", 401, "reason", "missing_cookie")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	pair, err := h.Svc.Refresh(ctx, cookie.Value, deviceMeta(c))
	if err != nil {
		c.SetCookie(expiredRefreshCookie(h.CookieSecure))
		return toHTTP(l, "refresh", err)
	}

	c.SetCookie(refreshCookie(pair.RefreshToken, pair.SessionExpiresAt, h.CookieSecure))
	return c.JSON(http.StatusOK, accessTokenResponse{AccessToken: pair.AccessToken})
}

// LogOut always answers 200 and clears the cookie; store failures are only logged.
func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		if err := h.Svc.Logout(ctx, cookie.Value); err != nil {
			l.Error("logout_error", "status", 200, "reason", "cannot revoke session", "error", err)
		}
	}

	c.SetCookie(expiredRefreshCookie(h.CookieSecure))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) LogOutAll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout_all")

	userID, ok := authmw.UserIDFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	}

	n, err := h.Svc.LogoutAll(ctx, userID)
	if err != nil {
		return toHTTP(l, "logout_all", err)
	}

	c.SetCookie(expiredRefreshCookie(h.CookieSecure))
	return c.JSON(http.StatusOK, echo.Map{"revoked": n})
}
