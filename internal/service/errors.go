package service

import "errors"

// Validation error codes surfaced to the client as HTTP 400.
const (
	CodeEmptyCart            = "EMPTY_CART"
	CodeMissingShippingField = "MISSING_SHIPPING_FIELD"
	CodeProductNotFound      = "PRODUCT_NOT_FOUND"
	CodeProductInactive      = "PRODUCT_INACTIVE"
	CodeInsufficientStock    = "INSUFFICIENT_STOCK"
)

var (
	// ErrUnknownStatus indicates a status value outside the known set.
	ErrUnknownStatus = errors.New("order: unknown status")
	// ErrIllegalTransition indicates a transition outside the intended progression.
	ErrIllegalTransition = errors.New("order: illegal status transition")
	// ErrCategoryHasChildren blocks nesting a category that already has children.
	ErrCategoryHasChildren = errors.New("category: has children, cannot be nested")
)

// ValidationError is a client input error. Message is the human-readable,
// Serbian-language text shown to the buyer.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// AsValidationError unwraps err into a ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
