package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/juanCamilo2002/gamer-buy-api/internal/config"
	"github.com/juanCamilo2002/gamer-buy-api/internal/db"
	"github.com/juanCamilo2002/gamer-buy-api/internal/events"
	"github.com/juanCamilo2002/gamer-buy-api/internal/hash"
	"github.com/juanCamilo2002/gamer-buy-api/internal/httpserver"
	"github.com/juanCamilo2002/gamer-buy-api/internal/logging"
	"github.com/juanCamilo2002/gamer-buy-api/internal/metrics"
	authmw "github.com/juanCamilo2002/gamer-buy-api/internal/middleware/auth"
	"github.com/juanCamilo2002/gamer-buy-api/internal/repo"
	"github.com/juanCamilo2002/gamer-buy-api/internal/search"
	"github.com/juanCamilo2002/gamer-buy-api/internal/service"
	"github.com/juanCamilo2002/gamer-buy-api/internal/tokens"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.ServiceName, cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err == nil {
		err = db.Migrate(initCtx, gdb)
	}
	cancel()
	if err != nil {
		logger.Error("db init error", "error", err)
		os.Exit(1)
	}

	r := repo.New(gdb)
	m := metrics.New()
	publisher := events.New(cfg.KafkaBrokers, logger)
	signer := tokens.NewSigner(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	catalog := &service.CatalogService{Repo: r, Events: publisher}
	if cfg.ESURL != "" {
		esCtx, esCancel := context.WithTimeout(context.Background(), 10*time.Second)
		idx, err := search.NewClient(esCtx, search.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		}, logger)
		esCancel()
		if err != nil {
			logger.Warn("search disabled, falling back to database", "error", err)
		} else {
			catalog.Index = idx
		}
	}

	e := httpserver.New(&httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{
			Svc: &service.AuthService{
				Repo:       r,
				Signer:     signer,
				Hasher:     hash.New(cfg.BcryptCost),
				SessionTTL: cfg.SessionTTL,
				Events:     publisher,
				Metrics:    m,
			},
			CookieSecure: cfg.CookieSecure,
		},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: r}},
		OrderHandler:   &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: publisher, Metrics: m}},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog},
		Authorizer:     authmw.NewAuthorizer(signer),
		Metrics:        m,
		Ready:          r.Ping,
		AuthRateLimit:  10,
		CORSOrigins:    cfg.CORSOrigins,
	}, logger)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		logger.Warn("force exit")
		os.Exit(1)
	}()

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("event publisher close error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close error", "error", err)
	}

	logger.Info("shutdown complete")
}
