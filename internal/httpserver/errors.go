package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/juanCamilo2002/gamer-buy-api/internal/service"
)

// toHTTP maps a service error to the response the caller sees. Errors outside
// the service taxonomy become a generic 500 and are logged in full.
func toHTTP(l *slog.Logger, op string, err error) error {
	var code int
	switch {
	case errors.Is(err, service.ErrAuth):
		code = http.StatusUnauthorized
	case errors.Is(err, service.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		code = http.StatusConflict
	default:
		l.Error(op+"_error", "status", 500, "reason", "internal", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	l.Warn(op+"_error", "status", code, "reason", service.ReasonOf(err))
	return echo.NewHTTPError(code, service.Message(err))
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
