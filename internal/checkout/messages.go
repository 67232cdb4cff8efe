package checkout

import (
	"errors"
	"fmt"

	"github.com/mainakxbuilds/makXsensi-frontend/internal/domain"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/widget"
)

// Verification failures and unreachable verification are shown almost the
// same way; the buyer cannot tell a rejected signature from a backend blip.
const (
	msgVerifyFailed      = "Payment verification failed. Please contact support."
	msgVerifyUnreachable = "Payment verification failed. Please contact support with your payment ID."

	msgConnectivity      = "Unable to connect to server. Please check your internet connection and try again."
	msgWidgetUnavailable = "Payment widget not loaded. Please refresh the page and try again."
	msgGenericPrefix     = "Something went wrong. "
	msgPaymentPrefix     = "Payment failed. "
)

// startFailureMessage maps an error raised before the widget opened to the
// text shown to the buyer.
func startFailureMessage(err error) string {
	var netErr *domain.NetworkError
	var rejected *domain.RejectedError
	switch {
	case errors.As(err, &netErr) && netErr.Unreachable():
		return msgConnectivity
	case errors.Is(err, domain.ErrWidgetUnavailable):
		return msgWidgetUnavailable
	case errors.As(err, &rejected):
		return msgGenericPrefix + rejected.Message
	case errors.As(err, &netErr):
		return msgGenericPrefix + fmt.Sprintf("HTTP error! status: %d", netErr.Status)
	}
	if err != nil && err.Error() != "" {
		return msgGenericPrefix + err.Error()
	}
	return msgGenericPrefix + "Please try again later."
}

func classifyFailure(f widget.Failure) *domain.PaymentFailedError {
	pf := &domain.PaymentFailedError{Code: f.Code, Description: f.Description}
	switch f.Code {
	case widget.CodeBadRequest:
		pf.Category = domain.FailureBadRequest
	case widget.CodeGatewayError:
		pf.Category = domain.FailureGateway
	default:
		pf.Category = domain.FailureGeneric
	}
	return pf
}

func paymentFailedMessage(pf *domain.PaymentFailedError) string {
	switch pf.Category {
	case domain.FailureBadRequest:
		return msgPaymentPrefix + orDefault(pf.Description, "Please try again.")
	case domain.FailureGateway:
		return msgPaymentPrefix + "Bank gateway error. Please try again later."
	}
	return msgPaymentPrefix + orDefault(pf.Description, "Please try again or contact support.")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
