// Package widget models the hosted payment widget and bridges it to a thin
// client that drives the vendor checkout SDK.
package widget

import (
	"context"
	"time"

	"github.com/mainakxbuilds/makXsensi-frontend/internal/domain"
)

// Options mirrors the vendor checkout constructor.
type Options struct {
	Key              string            `json:"key"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Image            string            `json:"image,omitempty"`
	OrderID          string            `json:"order_id"`
	Prefill          Prefill           `json:"prefill"`
	Notes            map[string]string `json:"notes,omitempty"`
	Theme            Theme             `json:"theme"`
	Modal            Modal             `json:"modal"`
	Retry            Retry             `json:"retry"`
	Timeout          time.Duration     `json:"-"`
	RememberCustomer bool              `json:"remember_customer"`

	Callbacks Callbacks `json:"-"`
}

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

type Theme struct {
	Color         string `json:"color"`
	BackdropColor string `json:"backdrop_color"`
}

type Modal struct {
	ConfirmClose  bool `json:"confirm_close"`
	Escape        bool `json:"escape"`
	Animation     bool `json:"animation"`
	BackdropClose bool `json:"backdropclose"`
}

type Retry struct {
	Enabled  bool `json:"enabled"`
	MaxCount int  `json:"max_count"`
}

// Callbacks are the three exits of one checkout. At most one fires.
type Callbacks struct {
	Handler   func(ctx context.Context, res domain.PaymentResult)
	OnDismiss func()
	OnFailure func(f Failure)
}

// Failure is the error object of a payment.failed event.
type Failure struct {
	Code        string `json:"code" validate:"required"`
	Description string `json:"description"`
	Source      string `json:"source,omitempty"`
	Step        string `json:"step,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

const (
	CodeBadRequest   = "BAD_REQUEST_ERROR"
	CodeGatewayError = "GATEWAY_ERROR"
)

// Defaults returns the storefront's standard widget configuration.
func Defaults(brand, image string, timeout time.Duration) Options {
	return Options{
		Name:  brand,
		Image: image,
		Theme: Theme{
			Color:         "#ff6b35",
			BackdropColor: "rgba(255, 107, 53, 0.1)",
		},
		Modal: Modal{
			ConfirmClose:  true,
			Escape:        false,
			Animation:     true,
			BackdropClose: false,
		},
		Retry:            Retry{Enabled: true, MaxCount: 3},
		Timeout:          timeout,
		RememberCustomer: true,
	}
}
