package submission

import "errors"

var (
	ErrSubmitFailed    = errors.New("failed to submit cart")
	ErrNoItems         = errors.New("submission has no items")
	ErrTotalOutOfRange = errors.New("cart total out of range")
)
