package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"199.90"`
	// Quantity is the stock available for ordering.
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuantityUpdate sets the absolute resulting stock of one product.
type QuantityUpdate struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: not found
	Error string `json:"error"`
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	// search query applied
	Q string `json:"q,omitempty"`
	// limit applied
	Limit int `json:"limit"`
	// offset applied
	Offset int `json:"offset"`
	Items  []Product `json:"items"`
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name        string `json:"name"        validate:"required"            example:"Mechanical Keyboard"`
	Description string `json:"description"                                example:"RGB 60%"`
	Price       string `json:"price"       validate:"required,numeric"    example:"199.90"`
	Quantity    int    `json:"quantity"    validate:"gte=0"               example:"10"`
}

// UpdateProductRequest payload of partial update. Omitted fields keep their value.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"    validate:"omitempty,numeric"`
	Quantity    *int   `json:"quantity" validate:"omitempty,gte=0"`
}

// LookupRequest asks for every product in IDs; unknown ids are left out of the answer.
type LookupRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// QuantitiesRequest carries a batched stock update.
type QuantitiesRequest struct {
	Items []QuantityUpdate `json:"items" validate:"required,min=1,dive"`
}
