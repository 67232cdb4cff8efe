package httpd

import (
	"time"

	"github.com/mainakxbuilds/makXsensi-frontend/internal/domain"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/health"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/notify"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/storefront"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/widget"
)

type HealthResp struct {
	Message string        `json:"message"`
	Backend health.Status `json:"backend"`
}

type PageResp struct {
	PageID   string                        `json:"pageId"`
	Packs    []storefront.Pack             `json:"packs,omitempty"`
	Buttons  map[string]domain.ButtonState `json:"buttons"`
	Overlays []notify.Overlay              `json:"overlays"`
}

type BuyReq struct {
	PackName string `json:"packName" validate:"required"`
	Amount   int64  `json:"amount" validate:"gte=0"`
}

type BuyResp struct {
	AttemptID  string          `json:"attemptId"`
	CheckoutID string          `json:"checkoutId,omitempty"`
	Checkout   *CheckoutConfig `json:"checkout,omitempty"`
	Error      string          `json:"error,omitempty"`
	Page       PageResp        `json:"page"`
}

// CheckoutConfig is what the browser passes to the vendor checkout SDK.
type CheckoutConfig struct {
	widget.Options
	TimeoutSeconds int `json:"timeout"`
}

func toCheckoutConfig(opts widget.Options) *CheckoutConfig {
	return &CheckoutConfig{Options: opts, TimeoutSeconds: int(opts.Timeout / time.Second)}
}

type CheckoutResp struct {
	CheckoutID string          `json:"checkoutId"`
	Outcome    widget.Outcome  `json:"outcome,omitempty"`
	OpenedAt   time.Time       `json:"openedAt"`
	Config     *CheckoutConfig `json:"config"`
}

type PaymentFailedReq struct {
	Error widget.Failure `json:"error"`
}

type ClickReq struct {
	Region notify.Region `json:"region" validate:"required,oneof=backdrop content"`
}

type KeyReq struct {
	Key string `json:"key" validate:"required"`
}

type DismissResp struct {
	Dismissed bool `json:"dismissed"`
}

type AttemptItem struct {
	AttemptID      string     `json:"attemptId"`
	PackName       string     `json:"packName"`
	Amount         string     `json:"amount"`
	Currency       string     `json:"currency,omitempty"`
	GatewayOrderID string     `json:"gatewayOrderId,omitempty"`
	OrderID        string     `json:"orderId,omitempty"`
	Status         string     `json:"status"`
	Message        string     `json:"message,omitempty"`
	StartedAt      time.Time  `json:"startedAt"`
	FinishedAt     *time.Time `json:"finishedAt,omitempty"`
}

func toAttemptItem(a domain.Attempt) AttemptItem {
	return AttemptItem{
		AttemptID:      a.ID,
		PackName:       a.PackName,
		Amount:         domain.FormatMinor(a.AmountMinor),
		Currency:       a.Currency,
		GatewayOrderID: a.GatewayOrderID,
		OrderID:        a.OrderID,
		Status:         string(a.Status),
		Message:        a.Message,
		StartedAt:      a.StartedAt,
		FinishedAt:     a.FinishedAt,
	}
}
