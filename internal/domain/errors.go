package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork            = errors.New("network error")
	ErrOrderRejected      = errors.New("order rejected")
	ErrWidgetUnavailable  = errors.New("payment widget not loaded")
	ErrPaymentFailed      = errors.New("payment failed")
	ErrVerificationFailed = errors.New("payment verification failed")
	ErrControlBusy        = errors.New("purchase already in progress")
)

// NetworkError is returned when the order service could not be reached
// (Status == 0) or answered with a non-success status code.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: HTTP error! status: %d", e.Op, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": unreachable"
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// Unreachable is true when no response was received at all.
func (e *NetworkError) Unreachable() bool { return e.Status == 0 }

type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string { return e.Message }

func (e *RejectedError) Is(target error) bool { return target == ErrOrderRejected }

type FailureCategory string

const (
	FailureBadRequest FailureCategory = "bad_request"
	FailureGateway    FailureCategory = "gateway"
	FailureGeneric    FailureCategory = "generic"
)

type PaymentFailedError struct {
	Category    FailureCategory
	Code        string
	Description string
}

func (e *PaymentFailedError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("payment failed (%s)", e.Code)
	}
	return fmt.Sprintf("payment failed (%s): %s", e.Code, e.Description)
}

func (e *PaymentFailedError) Is(target error) bool { return target == ErrPaymentFailed }
