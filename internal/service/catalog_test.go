package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanCamilo2002/gamer-buy-api/internal/models"
)

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[uuid.UUID]string
	deleted []uuid.UUID
	hits    []uuid.UUID
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: map[uuid.UUID]string{}}
}

func (f *fakeIndex) IndexProduct(_ context.Context, p models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[p.ID] = p.Name
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _, _ int) (int64, []uuid.UUID, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	return int64(len(f.hits)), f.hits, nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCatalogService_Categories(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cat, err := env.Catalog.CreateCategory(ctx, CategoryInput{Name: strPtr("Consoles"), Slug: strPtr("consoles")})
	require.NoError(t, err)

	_, err = env.Catalog.CreateCategory(ctx, CategoryInput{Name: strPtr("Again"), Slug: strPtr("consoles")})
	require.ErrorIs(t, err, ErrConflict)

	_, err = env.Catalog.CreateCategory(ctx, CategoryInput{Name: strPtr("Bad"), Slug: strPtr("Bad Slug")})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Catalog.CreateCategory(ctx, CategoryInput{Slug: strPtr("nameless")})
	require.ErrorIs(t, err, ErrValidation)

	got, err := env.Catalog.GetCategoryBySlug(ctx, "consoles")
	require.NoError(t, err)
	assert.Equal(t, cat.ID, got.ID)

	_, err = env.Catalog.GetCategoryBySlug(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	updated, err := env.Catalog.UpdateCategory(ctx, cat.ID, CategoryInput{Description: strPtr("Home consoles")})
	require.NoError(t, err)
	assert.Equal(t, "Home consoles", updated.Description)
	assert.Equal(t, "Consoles", updated.Name)

	_, err = env.Catalog.UpdateCategory(ctx, cat.ID, CategoryInput{})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Catalog.UpdateCategory(ctx, uuid.New(), CategoryInput{Name: strPtr("Ghost")})
	require.ErrorIs(t, err, ErrNotFound)

	cats, err := env.Catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestCatalogService_DeleteCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := env.product(t, "Joystick", "25.00", 1)

	err := env.Catalog.DeleteCategory(ctx, p.CategoryID)
	require.ErrorIs(t, err, ErrConflict)

	require.NoError(t, env.Catalog.DeleteProduct(ctx, p.ID))
	require.NoError(t, env.Catalog.DeleteCategory(ctx, p.CategoryID))

	err = env.Catalog.DeleteCategory(ctx, p.CategoryID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogService_CreateProduct(t *testing.T) {
	env := newTestEnv(t)
	env.Catalog.Index = newFakeIndex()
	ctx := context.Background()

	cat, err := env.Catalog.CreateCategory(ctx, CategoryInput{Name: strPtr("Audio"), Slug: strPtr("audio")})
	require.NoError(t, err)

	p, err := env.Catalog.CreateProduct(ctx, ProductInput{
		Name:       strPtr(" Headphones "),
		Price:      price("79.999"),
		Stock:      intPtr(4),
		CategoryID: &cat.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Headphones", p.Name)
	assert.Equal(t, "80.00", p.Price.StringFixed(2))
	assert.Equal(t, 4, p.Stock)
	require.NotNil(t, p.Category)
	assert.Equal(t, "audio", p.Category.Slug)

	idx := env.Catalog.Index.(*fakeIndex)
	assert.Equal(t, "Headphones", idx.indexed[p.ID])
	require.Len(t, env.Events.OfType("product_created"), 1)

	tests := []struct {
		name string
		in   ProductInput
		want error
	}{
		{name: "missing fields", in: ProductInput{Name: strPtr("X")}, want: ErrValidation},
		{name: "negative price", in: ProductInput{Name: strPtr("X"), Price: price("-1"), CategoryID: &cat.ID}, want: ErrValidation},
		{name: "negative stock", in: ProductInput{Name: strPtr("X"), Price: price("1"), Stock: intPtr(-1), CategoryID: &cat.ID}, want: ErrValidation},
		{name: "blank name", in: ProductInput{Name: strPtr("  "), Price: price("1"), CategoryID: &cat.ID}, want: ErrValidation},
		{name: "unknown category", in: ProductInput{Name: strPtr("X"), Price: price("1"), CategoryID: func() *uuid.UUID { id := uuid.New(); return &id }()}, want: ErrNotFound},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Catalog.CreateProduct(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCatalogService_UpdateAndDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	idx := newFakeIndex()
	env.Catalog.Index = idx
	ctx := context.Background()

	p := env.product(t, "Monitor", "199.00", 2)

	updated, err := env.Catalog.UpdateProduct(ctx, p.ID, ProductInput{Stock: intPtr(9), Name: strPtr("Monitor 27")})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Stock)
	assert.Equal(t, "Monitor 27", updated.Name)
	assert.Equal(t, "Monitor 27", idx.indexed[p.ID])

	_, err = env.Catalog.UpdateProduct(ctx, p.ID, ProductInput{})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Catalog.UpdateProduct(ctx, uuid.New(), ProductInput{Stock: intPtr(1)})
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, env.Catalog.DeleteProduct(ctx, p.ID))
	assert.Equal(t, []uuid.UUID{p.ID}, idx.deleted)
	require.Len(t, env.Events.OfType("product_deleted"), 1)

	_, err = env.Catalog.GetProduct(ctx, p.ID)
	require.ErrorIs(t, err, ErrNotFound)

	err = env.Catalog.DeleteProduct(ctx, p.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogService_ListProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.product(t, "Racing Wheel", "300.00", 1)
	env.product(t, "Flight Stick", "150.00", 1)
	env.product(t, "Pedals", "90.00", 1)

	products, meta, err := env.Catalog.ListProducts(ctx, ProductQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, products, 2)
	assert.EqualValues(t, 3, meta.Total)
	assert.EqualValues(t, 2, meta.TotalPages)

	products, meta, err = env.Catalog.ListProducts(ctx, ProductQuery{CategoryID: &a.CategoryID})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, a.ID, products[0].ID)
	assert.EqualValues(t, 1, meta.Total)
}

func TestCatalogService_SearchProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wheel := env.product(t, "Racing Wheel", "300.00", 1)
	stick := env.product(t, "Flight Stick", "150.00", 1)

	_, _, err := env.Catalog.SearchProducts(ctx, "  ", 1, 10)
	require.ErrorIs(t, err, ErrValidation)

	t.Run("database without an index", func(t *testing.T) {
		products, meta, err := env.Catalog.SearchProducts(ctx, "wheel", 1, 10)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, wheel.ID, products[0].ID)
		assert.EqualValues(t, 1, meta.Total)
	})

	t.Run("index hits keep their rank", func(t *testing.T) {
		idx := newFakeIndex()
		idx.hits = []uuid.UUID{stick.ID, uuid.New(), wheel.ID}
		env.Catalog.Index = idx
		defer func() { env.Catalog.Index = nil }()

		products, meta, err := env.Catalog.SearchProducts(ctx, "anything", 1, 10)
		require.NoError(t, err)
		require.Len(t, products, 2, "stale hits are dropped")
		assert.Equal(t, stick.ID, products[0].ID)
		assert.Equal(t, wheel.ID, products[1].ID)
		assert.EqualValues(t, 3, meta.Total)
	})

	t.Run("index failure falls back to database", func(t *testing.T) {
		idx := newFakeIndex()
		idx.err = errors.New("cluster unavailable")
		env.Catalog.Index = idx
		defer func() { env.Catalog.Index = nil }()

		products, _, err := env.Catalog.SearchProducts(ctx, "stick", 1, 10)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, stick.ID, products[0].ID)
	})
}
