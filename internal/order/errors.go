package order

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("order not found")
)

// Reason tells which validation gate rejected a request.
type Reason string

const (
	ReasonCustomerNotFound  Reason = "customer_not_found"
	ReasonProductsNotFound  Reason = "products_not_found"
	ReasonProductNotFound   Reason = "product_not_found"
	ReasonInsufficientStock Reason = "insufficient_stock"
)

// ValidationError is returned when a request fails one of the checks run
// before anything is written.
type ValidationError struct {
	Reason    Reason
	Message   string
	ProductID string
	Quantity  int
}

func (e *ValidationError) Error() string { return e.Message }

func customerNotFound() *ValidationError {
	return &ValidationError{Reason: ReasonCustomerNotFound, Message: "customer with given id not found"}
}

func productsNotFound() *ValidationError {
	return &ValidationError{Reason: ReasonProductsNotFound, Message: "products with given ids not found"}
}

func productNotFound(id string) *ValidationError {
	return &ValidationError{
		Reason:    ReasonProductNotFound,
		Message:   fmt.Sprintf("at least one product couldn't be found: %s", id),
		ProductID: id,
	}
}

func insufficientStock(id string, quantity int) *ValidationError {
	return &ValidationError{
		Reason:    ReasonInsufficientStock,
		Message:   fmt.Sprintf("product with id %s does not have quantity %d", id, quantity),
		ProductID: id,
		Quantity:  quantity,
	}
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// StockUpdateError reports that the order was persisted but the product
// service did not take the new quantities.
type StockUpdateError struct {
	OrderID string
	Err     error
}

func (e *StockUpdateError) Error() string {
	return fmt.Sprintf("update stock for order %s: %v", e.OrderID, e.Err)
}

func (e *StockUpdateError) Unwrap() error { return e.Err }

// IsStockUpdate reports whether err means the order exists but its stock was not decremented.
func IsStockUpdate(err error) (*StockUpdateError, bool) {
	var se *StockUpdateError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
