package utxoorders

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidValue      = errors.New("invalid value")
	ErrRegisterOverflow  = errors.New("register overflow")
	ErrImbalancedValue   = errors.New("imbalanced value")
	ErrSpecMismatch      = errors.New("spec mismatch")
	ErrNotFound          = errors.New("not found")
)

// OrderError carries one of the sentinel kinds above plus detail.
type OrderError struct {
	Kind error
	Msg  string
}

func (e *OrderError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *OrderError) Unwrap() error { return e.Kind }

func errorf(kind error, format string, args ...any) error {
	return &OrderError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
