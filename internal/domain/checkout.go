package domain

import (
	"strconv"
	"time"
)

type PurchaseRequest struct {
	PackName string `json:"packName" validate:"required"`
	Amount   int64  `json:"amount" validate:"gt=0"`
}

type OrderReceipt struct {
	OrderID    string
	Amount     int64
	Currency   string
	GatewayKey string
	Success    bool
	Message    string
}

// PaymentResult is what the payment widget hands back after the buyer pays.
// The signature is checked by the order service, never here.
type PaymentResult struct {
	GatewayOrderID   string `json:"razorpay_order_id" validate:"required"`
	GatewayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	GatewaySignature string `json:"razorpay_signature" validate:"required"`
	ContactEmail     string `json:"email,omitempty"`
	ContactPhone     string `json:"contact,omitempty"`
	ContactName      string `json:"name,omitempty"`
}

type VerificationRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	GatewaySignature string `json:"razorpay_signature"`
	PackName         string `json:"packName"`
	Amount           int64  `json:"amount"`
	CustomerEmail    string `json:"customerEmail"`
	CustomerPhone    string `json:"customerPhone"`
	CustomerName     string `json:"customerName"`
}

func NewVerificationRequest(res PaymentResult, req PurchaseRequest) VerificationRequest {
	return VerificationRequest{
		GatewayOrderID:   res.GatewayOrderID,
		GatewayPaymentID: res.GatewayPaymentID,
		GatewaySignature: res.GatewaySignature,
		PackName:         req.PackName,
		Amount:           req.Amount,
		CustomerEmail:    res.ContactEmail,
		CustomerPhone:    res.ContactPhone,
		CustomerName:     res.ContactName,
	}
}

type VerificationOutcome struct {
	Success bool
	OrderID string
	Message string
}

// ButtonState is the display state of the control that started a purchase.
type ButtonState struct {
	Content  string `json:"content"`
	Disabled bool   `json:"disabled"`
}

type AttemptStatus string

const (
	AttemptStarted            AttemptStatus = "STARTED"
	AttemptWidgetOpen         AttemptStatus = "WIDGET_OPEN"
	AttemptPaid               AttemptStatus = "PAID"
	AttemptCancelled          AttemptStatus = "CANCELLED"
	AttemptPaymentFailed      AttemptStatus = "PAYMENT_FAILED"
	AttemptVerificationFailed AttemptStatus = "VERIFICATION_FAILED"
	AttemptOrderFailed        AttemptStatus = "ORDER_FAILED"
)

// Terminal reports whether no further transition can happen for the attempt.
func (s AttemptStatus) Terminal() bool {
	switch s {
	case AttemptStarted, AttemptWidgetOpen:
		return false
	}
	return true
}

type Attempt struct {
	ID             string
	PackName       string
	AmountMinor    int64
	Currency       string
	GatewayOrderID string
	OrderID        string
	Status         AttemptStatus
	Message        string
	StartedAt      time.Time
	FinishedAt     *time.Time
}

func FormatMinor(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}

	intPart := minor / 100
	decPart := minor % 100
	return sign + strconv.FormatInt(intPart, 10) + "." + twoDigits(int(decPart))
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
