package dto

import (
	"time"

	"github.com/spec-kit/shop-service/internal/domain"
)

// CategoryRequest payload for category create and rename.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CategoryResponse response.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateProductRequest payload.
type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=4000"`
	PriceCents  *int64 `json:"price_cents" validate:"required,gte=0"`
	InStock     *bool  `json:"in_stock"`
	CategoryID  string `json:"category_id" validate:"required,uuid"`
}

// UpdateProductRequest is a partial product update.
type UpdateProductRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
	PriceCents  *int64  `json:"price_cents" validate:"omitempty,gte=0"`
	InStock     *bool   `json:"in_stock"`
	CategoryID  *string `json:"category_id" validate:"omitempty,uuid"`
}

// CategoryRef is the category embedded in a product.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProductResponse response. CreatedBy is the owner's email.
type ProductResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	PriceCents  int64       `json:"price_cents"`
	InStock     bool        `json:"in_stock"`
	Category    CategoryRef `json:"category"`
	CategoryID  string      `json:"category_id"`
	OwnerID     string      `json:"owner_id"`
	CreatedBy   string      `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ListQuery captures pagination parameters. Page is bounded so Offset cannot overflow.
type ListQuery struct {
	Page     int `json:"page" validate:"gte=1,lte=10000"`
	PageSize int `json:"page_size" validate:"gte=1,lte=100"`
}

// Offset returns the row offset for the page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// ProductListQuery adds product filters to pagination.
type ProductListQuery struct {
	ListQuery
	CategoryID *string
	OwnerID    *string
	Search     *string
}

// NewCategoryResponse maps a category.
func NewCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}

// NewProductResponse maps a product.
func NewProductResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		PriceCents:  product.PriceCents,
		InStock:     product.InStock,
		Category:    CategoryRef{ID: product.CategoryID, Name: product.CategoryName},
		CategoryID:  product.CategoryID,
		OwnerID:     product.OwnerID,
		CreatedBy:   product.OwnerEmail,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}
