package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/juanCamilo2002/gamer-buy-api/internal/events"
	"github.com/juanCamilo2002/gamer-buy-api/internal/logging"
	"github.com/juanCamilo2002/gamer-buy-api/internal/models"
	"github.com/juanCamilo2002/gamer-buy-api/internal/repo"
	"github.com/juanCamilo2002/gamer-buy-api/internal/util"
)

// ProductIndex is the full-text search backend. When it is nil the catalog
// searches the database instead.
type ProductIndex interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, from, size int) (int64, []uuid.UUID, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  ProductIndex
	Events events.Publisher
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type CategoryInput struct {
	Name        *string
	Slug        *string
	Description *string
}

type ProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	ImageURL    *string
	CategoryID  *uuid.UUID
}

type ProductQuery struct {
	Page       int
	Limit      int
	CategoryID *uuid.UUID
	Search     string
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (s *CatalogService) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	cat, err := s.Repo.FindCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundError("category not found")
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return cat, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, validationError("name is required")
	}
	if in.Slug == nil || !slugPattern.MatchString(*in.Slug) {
		return nil, validationError("slug must be lowercase words separated by dashes")
	}

	cat := models.Category{Name: strings.TrimSpace(*in.Name), Slug: *in.Slug}
	if in.Description != nil {
		cat.Description = *in.Description
	}
	if err := s.Repo.CreateCategory(ctx, &cat); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, conflictError("slug already in use")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &cat, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*models.Category, error) {
	fields := map[string]any{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, validationError("name must not be empty")
		}
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		if !slugPattern.MatchString(*in.Slug) {
			return nil, validationError("slug must be lowercase words separated by dashes")
		}
		fields["slug"] = *in.Slug
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if len(fields) == 0 {
		return nil, validationError("nothing to update")
	}

	cat, err := s.Repo.UpdateCategory(ctx, id, fields)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return nil, notFoundError("category not found")
	case errors.Is(err, repo.ErrAlreadyExists):
		return nil, conflictError("slug already in use")
	case err != nil:
		return nil, fmt.Errorf("update category: %w", err)
	}
	return cat, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	n, err := s.Repo.CountProductsInCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		return conflictError("category still has products")
	}
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError("category not found")
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) ([]models.Product, util.PageMeta, error) {
	offset, limit := util.Calculate(q.Page, q.Limit)
	products, total, err := s.Repo.ListProducts(ctx, repo.ProductFilter{
		CategoryID: q.CategoryID,
		Search:     q.Search,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, util.PageMeta{}, fmt.Errorf("list products: %w", err)
	}
	return products, util.Meta(q.Page, q.Limit, total), nil
}

// SearchProducts ranks with the search index when one is configured and
// otherwise matches name and description in the database.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, page, size int) ([]models.Product, util.PageMeta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, util.PageMeta{}, validationError("q is required")
	}
	if s.Index == nil {
		return s.ListProducts(ctx, ProductQuery{Page: page, Limit: size, Search: query})
	}

	from, limit := util.Calculate(page, size)
	total, ids, err := s.Index.Search(ctx, query, from, limit)
	if err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "reason", "falling back to database", "error", err)
		return s.ListProducts(ctx, ProductQuery{Page: page, Limit: size, Search: query})
	}
	products, err := s.Repo.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, util.PageMeta{}, fmt.Errorf("load search hits: %w", err)
	}
	return products, util.Meta(page, size, total), nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.FindProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundError("product not found")
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func (s *CatalogService) checkCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Repo.FindCategory(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFoundError("category not found")
		}
		return fmt.Errorf("find category: %w", err)
	}
	return nil
}

func validateProductFields(in ProductInput) error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return validationError("name must not be empty")
	}
	if in.Price != nil && in.Price.IsNegative() {
		return validationError("price must be >= 0")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return validationError("stock must be >= 0")
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if in.Name == nil || in.Price == nil || in.CategoryID == nil {
		return nil, validationError("name, price and category_id are required")
	}
	if err := validateProductFields(in); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, *in.CategoryID); err != nil {
		return nil, err
	}

	p := models.Product{
		Name:       strings.TrimSpace(*in.Name),
		Price:      in.Price.Round(2),
		CategoryID: *in.CategoryID,
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	created, err := s.Repo.FindProduct(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("reload product: %w", err)
	}
	s.mirror(ctx, "product_created", created)
	return created, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*models.Product, error) {
	if err := validateProductFields(in); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Price != nil {
		fields["price"] = in.Price.Round(2)
	}
	if in.Stock != nil {
		fields["stock"] = *in.Stock
	}
	if in.ImageURL != nil {
		fields["image_url"] = *in.ImageURL
	}
	if in.CategoryID != nil {
		if err := s.checkCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		fields["category_id"] = *in.CategoryID
	}
	if len(fields) == 0 {
		return nil, validationError("nothing to update")
	}

	p, err := s.Repo.UpdateProduct(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFoundError("product not found")
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.mirror(ctx, "product_updated", p)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return notFoundError("product not found")
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return conflictError("product is referenced by carts or orders")
		}
		return fmt.Errorf("delete product: %w", err)
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_index_delete_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProductEvents, id.String(), "product_deleted", map[string]any{
		"product_id": id,
	})
	return nil
}

// mirror pushes a product write to the search index and the event stream.
func (s *CatalogService) mirror(ctx context.Context, typ string, p *models.Product) {
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, *p); err != nil {
			logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProductEvents, p.ID.String(), typ, map[string]any{
		"product_id": p.ID,
		"name":       p.Name,
		"price":      p.Price.StringFixed(2),
		"stock":      p.Stock,
	})
}
