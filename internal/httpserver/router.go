package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/juanCamilo2002/gamer-buy-api/internal/metrics"
	authmw "github.com/juanCamilo2002/gamer-buy-api/internal/middleware/auth"
	loggingmw "github.com/juanCamilo2002/gamer-buy-api/internal/middleware/logging"
	"github.com/juanCamilo2002/gamer-buy-api/internal/models"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	CatalogHandler *CatalogHTTP
	Authorizer     *authmw.Authorizer
	Metrics        *metrics.Metrics

	// Ready reports whether dependencies can serve traffic. nil means always ready.
	Ready func(ctx context.Context) error
	// AuthRateLimit caps requests per second per client IP on /auth. 0 disables it.
	AuthRateLimit float64
	CORSOrigins   []string
}

// New builds the echo instance with the middleware stack and all routes.
func New(d *Deps, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	if len(d.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     d.CORSOrigins,
			AllowCredentials: true,
		}))
	}
	e.Use(d.Metrics.Middleware())
	e.Use(loggingmw.RequestLogger(logger))

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))

	authenticated := d.Authorizer.Require(authmw.Authenticated())
	admin := d.Authorizer.Require(authmw.Roles(models.RoleAdmin))

	auth := e.Group("/auth")
	if d.AuthRateLimit > 0 {
		auth.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(d.AuthRateLimit), Burst: int(d.AuthRateLimit * 2), ExpiresIn: 3 * time.Minute},
		)))
	}
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.LogOut)
	auth.POST("/logout-all", d.AuthHandler.LogOutAll, authenticated)

	cart := e.Group("/cart", authenticated)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("/items", d.CartHandler.AddItem)
	cart.PATCH("/items/:productId", d.CartHandler.UpdateItem)
	cart.DELETE("/items/:productId", d.CartHandler.RemoveItem)
	cart.DELETE("/clear", d.CartHandler.Clear)

	orders := e.Group("/orders")
	orders.POST("/checkout", d.OrderHandler.Checkout, authenticated)
	orders.GET("", d.OrderHandler.ListOrders, authenticated)
	orders.GET("/:id", d.OrderHandler.GetOrder, authenticated)
	orders.PATCH("/:id/status", d.OrderHandler.UpdateStatus, admin)

	categories := e.Group("/categories")
	categories.GET("", d.CatalogHandler.ListCategories)
	categories.GET("/:slug", d.CatalogHandler.GetCategory)
	categories.POST("", d.CatalogHandler.CreateCategory, admin)
	categories.PATCH("/:id", d.CatalogHandler.PatchCategory, admin)
	categories.DELETE("/:id", d.CatalogHandler.DeleteCategory, admin)

	products := e.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.POST("", d.CatalogHandler.CreateProduct, admin)
	products.PATCH("/:id", d.CatalogHandler.PatchProduct, admin)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, admin)
}
