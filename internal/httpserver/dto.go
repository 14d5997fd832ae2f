package httpserver

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juanCamilo2002/gamer-buy-api/internal/models"
	"github.com/juanCamilo2002/gamer-buy-api/internal/util"
)

type credentialsRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type userResponse struct {
	ID    uuid.UUID   `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"   validate:"required,min=1"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type categoryRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=1,max=120"`
	Slug        *string `json:"slug"        validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type productRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"       validate:"omitempty,min=0"`
	ImageURL    *string          `json:"image_url"   validate:"omitempty,url"`
	CategoryID  *uuid.UUID       `json:"category_id"`
}

type pageResponse[T any] struct {
	Data []T           `json:"data"`
	Meta util.PageMeta `json:"meta"`
}
