package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/juanCamilo2002/gamer-buy-api/internal/events"
	"github.com/juanCamilo2002/gamer-buy-api/internal/hash"
	"github.com/juanCamilo2002/gamer-buy-api/internal/metrics"
	"github.com/juanCamilo2002/gamer-buy-api/internal/models"
	"github.com/juanCamilo2002/gamer-buy-api/internal/repo"
	"github.com/juanCamilo2002/gamer-buy-api/internal/testdb"
	"github.com/juanCamilo2002/gamer-buy-api/internal/tokens"
)

type testEnv struct {
	Repo    *repo.GormRepo
	Auth    *AuthService
	Orders  *OrderService
	Cart    *CartService
	Catalog *CatalogService
	Events  *events.Recorder
	Metrics *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := repo.New(testdb.New(t))
	rec := &events.Recorder{}
	m := metrics.New()

	return &testEnv{
		Repo: r,
		Auth: &AuthService{
			Repo:    r,
			Signer:  tokens.NewSigner([]byte("test-access-secret"), []byte("test-refresh-secret"), 15*time.Minute, 7*24*time.Hour),
			Hasher:  hash.New(bcrypt.MinCost),
			Events:  rec,
			Metrics: m,
		},
		Orders:  &OrderService{Repo: r, Events: rec, Metrics: m},
		Cart:    &CartService{Repo: r},
		Catalog: &CatalogService{Repo: r, Events: rec},
		Events:  rec,
		Metrics: m,
	}
}

func (env *testEnv) product(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	ctx := context.Background()

	cat := models.Category{Name: "Games", Slug: "games-" + uuid.NewString()[:8]}
	require.NoError(t, env.Repo.CreateCategory(ctx, &cat))

	p := models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock, CategoryID: cat.ID}
	require.NoError(t, env.Repo.CreateProduct(ctx, &p))
	return &p
}

func (env *testEnv) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := env.Auth.Register(context.Background(), email, "pw")
	require.NoError(t, err)
	return u
}

func (env *testEnv) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := env.Repo.FindProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}
