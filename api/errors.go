package api

import (
	"errors"
	"fmt"
	"net/http"

	orders "github.com/shruggr/utxo-orders"
	"github.com/shruggr/utxo-orders/lib"
)

type HttpError struct {
	StatusCode int
	Err        error
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("%d: %v", e.StatusCode, e.Err)
}

func (e *HttpError) Unwrap() error { return e.Err }

// toHttpError maps order failures onto statuses. NotFound and SpecMismatch
// stay distinct.
func toHttpError(err error) *HttpError {
	var he *HttpError
	if errors.As(err, &he) {
		return he
	}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, orders.ErrNotFound), errors.Is(err, lib.ErrTxNotFound):
		status = http.StatusNotFound
	case errors.Is(err, orders.ErrSpecMismatch):
		status = http.StatusConflict
	case errors.Is(err, orders.ErrInsufficientFunds),
		errors.Is(err, orders.ErrInvalidValue),
		errors.Is(err, orders.ErrRegisterOverflow),
		errors.Is(err, orders.ErrImbalancedValue):
		status = http.StatusUnprocessableEntity
	}
	return &HttpError{StatusCode: status, Err: err}
}
