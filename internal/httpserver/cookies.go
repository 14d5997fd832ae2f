package httpserver

import (
	"net/http"
	"time"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/auth"
)

func refreshCookie(value string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     refreshCookiePath,
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func expiredRefreshCookie(secure bool) *http.Cookie {
	c := refreshCookie("", time.Unix(0, 0), secure)
	c.MaxAge = -1
	return c
}
