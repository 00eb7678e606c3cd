package catalog

import (
	"time"

	"github.com/shopbot/backend/internal/domain/catalog"
)

// AddProductRequest represents a request to add a product to the catalog
type AddProductRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description"`
	Price       string `json:"price" binding:"required"`
	Image       string `json:"image" binding:"omitempty,url"`
}

// ProductResponse represents a product in responses
type ProductResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Image       string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CatalogPageResponse represents one page of the catalog, newest first
type CatalogPageResponse struct {
	Products []ProductResponse `json:"products"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	HasPrev  bool              `json:"has_prev"`
	HasNext  bool              `json:"has_next"`
}

func toProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price.String(),
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
	}
}
