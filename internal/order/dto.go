package order

// RequestedProduct is one requested line.
// swagger:model RequestedProduct
type RequestedProduct struct {
	ID       string `json:"id"       validate:"required" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Quantity int    `json:"quantity" validate:"min=1"    example:"2"`
}

// CreateOrderRequest is the payload of POST /orders.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	CustomerID string             `json:"customer_id" validate:"required"           example:"b2f5ff47-2b1e-4f22-8a96-5f3c1f2f2e7b"`
	Products   []RequestedProduct `json:"products"    validate:"required,min=1,dive"`
}

// ErrorResponse is the JSON body of a failed order request.
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason Reason `json:"reason,omitempty"`
	// OrderID is set when the order was stored but a later step failed.
	OrderID string `json:"order_id,omitempty"`
}

// ListResponse is the paginated answer of GET /orders/customer/:customer_id.
// swagger:model OrderListResponse
type ListResponse struct {
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Items  []Order `json:"items"`
}
