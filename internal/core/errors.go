package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's error taxonomy. Adapters map these to
// transport-level responses; services match them with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidOrder     = errors.New("invalid order")
	ErrAlreadyCompleted = errors.New("order already completed")
	ErrItemInactive     = errors.New("inventory item inactive")
	ErrInternal         = errors.New("internal error")
)

// InsufficientStockError names the offending ingredient and the amounts
// involved so the caller can act on it.
type InsufficientStockError struct {
	ItemID    string
	ItemName  string
	Required  float64
	Available float64
	Unit      string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (%s): required %.2f %s, available %.2f %s",
		e.ItemName, e.ItemID, e.Required, e.Unit, e.Available, e.Unit)
}

// TransitionError states the current and attempted status/stage of an
// illegal transition.
type TransitionError struct {
	OrderID   string
	From      string
	Attempted string
	Reason    string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid transition for order %s from %q to %q: %s",
			e.OrderID, e.From, e.Attempted, e.Reason)
	}
	return fmt.Sprintf("invalid transition for order %s from %q to %q",
		e.OrderID, e.From, e.Attempted)
}

// AdjustmentError reports a manual stock correction that would violate the
// item's bounds.
type AdjustmentError struct {
	ItemID    string
	ItemName  string
	Current   float64
	Delta     float64
	Resulting float64
	MaxStock  float64
}

func (e *AdjustmentError) Error() string {
	return fmt.Sprintf("invalid adjustment for %q (%s): %.2f %+.2f = %.2f is outside [0, %.2f]",
		e.ItemName, e.ItemID, e.Current, e.Delta, e.Resulting, e.MaxStock)
}

// IsInsufficientStock reports whether err is (or wraps) an insufficient
// stock failure.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

// IsInvalidTransition reports whether err is (or wraps) an illegal
// status/stage transition.
func IsInvalidTransition(err error) bool {
	var target *TransitionError
	return errors.As(err, &target)
}

// IsInvalidAdjustment reports whether err is (or wraps) an out-of-bounds
// manual stock correction.
func IsInvalidAdjustment(err error) bool {
	var target *AdjustmentError
	return errors.As(err, &target)
}
