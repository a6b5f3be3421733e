package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientData marks a computation that cannot run on the number
	// of points it was given.
	ErrInsufficientData = errors.New("insufficient data points")

	// ErrNoCustomerColumn is returned when segmentation is invoked on a
	// dataset without a customer_id column. Callers are expected to skip the
	// engine instead.
	ErrNoCustomerColumn = errors.New("dataset has no customer_id column")

	// ErrNoCategoryColumn is the category-analysis equivalent.
	ErrNoCategoryColumn = errors.New("dataset has no category column")
)

// ModelFitError attributes a numerical fit failure to one forecast model so
// the other model's results stay usable.
type ModelFitError struct {
	Model string
	Err   error
}

func (e *ModelFitError) Error() string {
	return fmt.Sprintf("forecast model %s: fit failed: %v", e.Model, e.Err)
}

func (e *ModelFitError) Unwrap() error { return e.Err }
