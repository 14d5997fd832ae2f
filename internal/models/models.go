package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"                  json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"                  json:"email"`
	PasswordHash string    `gorm:"not null"                              json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null"             json:"role"`
	CreatedAt    time.Time `                                             json:"created_at"`
	UpdatedAt    time.Time `                                             json:"updated_at"`
}

// Session is one refresh-token lineage. TokenHash is a bcrypt digest and can
// only be matched by comparing against the presented token.
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                  json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"              json:"user_id"`
	TokenHash string    `gorm:"not null"                              json:"-"`
	UserAgent string    `                                             json:"user_agent"`
	IP        string    `                                             json:"ip"`
	ExpiresAt time.Time `gorm:"not null"                              json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false;index"          json:"revoked"`
	CreatedAt time.Time `                                             json:"created_at"`
}

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"                json:"id"`
	Name        string    `gorm:"not null"                            json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null"                json:"slug"`
	Description string    `                                           json:"description"`
	CreatedAt   time.Time `                                           json:"created_at"`
	UpdatedAt   time.Time `                                           json:"updated_at"`
}

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"                 json:"id"`
	Name        string          `gorm:"not null"                             json:"name"`
	Description string          `                                            json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"          json:"price"`
	Stock       int             `gorm:"not null;default:0;check:stock >= 0"  json:"stock"`
	ImageURL    string          `                                            json:"image_url,omitempty"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;index;not null"             json:"category_id"`
	Category    *Category       `gorm:"constraint:OnDelete:RESTRICT"         json:"category,omitempty"`
	CreatedAt   time.Time       `                                            json:"created_at"`
	UpdatedAt   time.Time       `                                            json:"updated_at"`
}

type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"                   json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"         json:"user_id"`
	Items     []CartItem `gorm:"constraint:OnDelete:CASCADE"            json:"items"`
	CreatedAt time.Time  `                                              json:"created_at"`
	UpdatedAt time.Time  `                                              json:"updated_at"`
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                            json:"id"`
	CartID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Product   *Product  `                                                       json:"product,omitempty"`
	Quantity  int       `gorm:"not null;default:1;check:quantity > 0"           json:"quantity"`
	CreatedAt time.Time `                                                       json:"created_at"`
	UpdatedAt time.Time `                                                       json:"updated_at"`
}

type Order struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"              json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;index;not null"          json:"user_id"`
	Status    OrderStatus     `gorm:"type:varchar(16);not null"         json:"status"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(12,2);not null"       json:"subtotal"`
	Total     decimal.Decimal `gorm:"type:numeric(12,2);not null"       json:"total"`
	Items     []OrderItem     `gorm:"constraint:OnDelete:CASCADE"       json:"items"`
	CreatedAt time.Time       `                                         json:"created_at"`
	UpdatedAt time.Time       `                                         json:"updated_at"`
}

// OrderItem keeps the product price as it was at checkout.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"              json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"          json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;index;not null"          json:"product_id"`
	Product   *Product        `                                         json:"product,omitempty"`
	Position  int             `gorm:"not null"                          json:"position"`
	Quantity  int             `gorm:"not null;check:quantity > 0"       json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"       json:"unit_price"`
}

func All() []any {
	return []any{&User{}, &Session{}, &Category{}, &Product{}, &Cart{}, &CartItem{}, &Order{}, &OrderItem{}}
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
