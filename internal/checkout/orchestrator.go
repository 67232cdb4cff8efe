// Package checkout runs purchase attempts end to end: order creation, the
// hosted payment widget, verification and the terminal notification.
//
// Every path through Buy leaves the initiating control enabled. Attempts
// share no mutable state; nothing stops two attempts for the same pack from
// running side by side.
package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mainakxbuilds/makXsensi-frontend/internal/domain"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/metrics"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/widget"
)

const (
	ProcessingLabel  = "Processing..."
	DefaultIdleLabel = "Buy Now"
)

type OrderService interface {
	CreateOrder(ctx context.Context, req domain.PurchaseRequest) (domain.OrderReceipt, error)
	Verify(ctx context.Context, req domain.VerificationRequest) (domain.VerificationOutcome, error)
}

type Widget interface {
	Open(ctx context.Context, opts widget.Options) (string, error)
}

// Control is the UI element that started the attempt. Acquire swaps in the
// busy state and returns the previous one, or false if the control is
// already disabled.
type Control interface {
	Acquire(busy domain.ButtonState) (domain.ButtonState, bool)
	SetState(domain.ButtonState)
}

type Notifier interface {
	PresentSuccess(packName string, amount int64, orderID string)
	PresentError(message string)
}

// Journal records attempts for support lookups. Failures are logged only.
type Journal interface {
	Begin(ctx context.Context, a *domain.Attempt) error
	Advance(ctx context.Context, id string, status domain.AttemptStatus, gatewayOrderID string) error
	Finish(ctx context.Context, id string, status domain.AttemptStatus, orderID, message string) error
}

type Config struct {
	IdleLabel     string
	Brand         string
	BrandImage    string
	WidgetTimeout time.Duration
	// VerifyTimeout bounds the verification call made from the widget
	// callback.
	VerifyTimeout time.Duration
}

type Orchestrator struct {
	orders  OrderService
	widget  Widget
	journal Journal
	metrics *metrics.Collector
	log     *zap.Logger
	cfg     Config
}

func New(orders OrderService, w Widget, journal Journal, m *metrics.Collector, log *zap.Logger, cfg Config) *Orchestrator {
	if cfg.IdleLabel == "" {
		cfg.IdleLabel = DefaultIdleLabel
	}
	if cfg.Brand == "" {
		cfg.Brand = "MakXsensi"
	}
	if cfg.WidgetTimeout <= 0 {
		cfg.WidgetTimeout = 5 * time.Minute
	}
	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		orders:  orders,
		widget:  w,
		journal: journal,
		metrics: m,
		log:     log,
		cfg:     cfg,
	}
}

// Attempt describes how far Buy got. Err is set when the attempt ended
// before the widget opened; the buyer has already been notified.
type Attempt struct {
	ID             string
	Request        domain.PurchaseRequest
	GatewayOrderID string
	CheckoutID     string
	Options        widget.Options
	Err            error
}

// Buy runs one purchase attempt. It returns once the widget is open or the
// attempt has failed; the widget callbacks finish the attempt later. A buy
// on a control that is already busy is refused with domain.ErrControlBusy
// and changes nothing.
func (o *Orchestrator) Buy(ctx context.Context, ctl Control, n Notifier, req domain.PurchaseRequest) Attempt {
	saved, ok := ctl.Acquire(domain.ButtonState{Content: ProcessingLabel, Disabled: true})
	if !ok {
		o.log.Debug("buy ignored, control busy", zap.String("pack", req.PackName))
		return Attempt{Request: req, Err: domain.ErrControlBusy}
	}

	a := Attempt{ID: uuid.NewString(), Request: req}
	log := o.log.With(zap.String("attempt_id", a.ID), zap.String("pack", req.PackName), zap.Int64("amount", req.Amount))

	o.begin(ctx, log, &domain.Attempt{
		ID:          a.ID,
		PackName:    req.PackName,
		AmountMinor: req.Amount,
		Status:      domain.AttemptStarted,
		StartedAt:   time.Now(),
	})

	log.Info("creating order")
	receipt, err := o.orders.CreateOrder(ctx, req)
	if err != nil {
		return o.abort(log, ctl, n, a, err)
	}
	a.GatewayOrderID = receipt.OrderID
	log = log.With(zap.String("gateway_order_id", receipt.OrderID))
	log.Info("order created")

	if o.widget == nil {
		return o.abort(log, ctl, n, a, domain.ErrWidgetUnavailable)
	}

	restore := func() { ctl.SetState(saved) }
	var once sync.Once
	exit := func(fn func()) { once.Do(fn) }

	opts := o.widgetOptions(req, receipt)
	opts.Callbacks = widget.Callbacks{
		Handler: func(cbCtx context.Context, res domain.PaymentResult) {
			exit(func() { o.verify(cbCtx, log, restore, n, a, res) })
		},
		OnDismiss: func() {
			exit(func() {
				log.Info("payment cancelled by user")
				restore()
				o.finish(log, a.ID, domain.AttemptCancelled, "", "")
			})
		},
		OnFailure: func(f widget.Failure) {
			exit(func() {
				pfErr := classifyFailure(f)
				log.Warn("payment failed", zap.String("code", f.Code), zap.String("description", f.Description))
				n.PresentError(paymentFailedMessage(pfErr))
				restore()
				o.finish(log, a.ID, domain.AttemptPaymentFailed, "", pfErr.Error())
			})
		},
	}
	a.Options = opts

	o.advance(log, a.ID, domain.AttemptWidgetOpen, receipt.OrderID)
	id, err := o.widget.Open(ctx, opts)
	if err != nil {
		return o.abort(log, ctl, n, a, err)
	}
	a.CheckoutID = id
	return a
}

func (o *Orchestrator) widgetOptions(req domain.PurchaseRequest, receipt domain.OrderReceipt) widget.Options {
	opts := widget.Defaults(o.cfg.Brand, o.cfg.BrandImage, o.cfg.WidgetTimeout)
	opts.Key = receipt.GatewayKey
	opts.Amount = receipt.Amount
	opts.Currency = receipt.Currency
	opts.Description = req.PackName
	opts.OrderID = receipt.OrderID
	opts.Notes = map[string]string{"packName": req.PackName}
	return opts
}

func (o *Orchestrator) verify(ctx context.Context, log *zap.Logger, restore func(), n Notifier, a Attempt, res domain.PaymentResult) {
	defer restore()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.VerifyTimeout)
	defer cancel()

	log.Info("payment completed, verifying", zap.String("payment_id", res.GatewayPaymentID))
	out, err := o.orders.Verify(ctx, domain.NewVerificationRequest(res, a.Request))
	switch {
	case err != nil:
		log.Error("verification call failed", zap.Error(err))
		n.PresentError(msgVerifyUnreachable)
		o.finish(log, a.ID, domain.AttemptVerificationFailed, "", err.Error())
	case !out.Success:
		log.Warn("verification rejected", zap.String("message", out.Message))
		n.PresentError(msgVerifyFailed)
		o.finish(log, a.ID, domain.AttemptVerificationFailed, "", out.Message)
	default:
		log.Info("payment verified", zap.String("order_id", out.OrderID))
		n.PresentSuccess(a.Request.PackName, a.Request.Amount, out.OrderID)
		o.finish(log, a.ID, domain.AttemptPaid, out.OrderID, "")
	}
}

// abort ends an attempt that never reached the widget. The control goes
// back to the idle label rather than the captured one.
func (o *Orchestrator) abort(log *zap.Logger, ctl Control, n Notifier, a Attempt, err error) Attempt {
	log.Error("checkout failed before payment", zap.Error(err))
	n.PresentError(startFailureMessage(err))
	ctl.SetState(domain.ButtonState{Content: o.cfg.IdleLabel, Disabled: false})
	o.finish(log, a.ID, domain.AttemptOrderFailed, "", err.Error())
	a.Err = err
	return a
}

func (o *Orchestrator) begin(ctx context.Context, log *zap.Logger, rec *domain.Attempt) {
	if o.journal == nil {
		return
	}
	if err := o.journal.Begin(context.WithoutCancel(ctx), rec); err != nil {
		log.Warn("journal begin failed", zap.Error(err))
	}
}

func (o *Orchestrator) advance(log *zap.Logger, id string, status domain.AttemptStatus, gatewayOrderID string) {
	if o.journal == nil {
		return
	}
	if err := o.journal.Advance(context.Background(), id, status, gatewayOrderID); err != nil {
		log.Warn("journal update failed", zap.Error(err))
	}
}

func (o *Orchestrator) finish(log *zap.Logger, id string, status domain.AttemptStatus, orderID, message string) {
	o.metrics.Attempt(string(status))
	if o.journal == nil {
		return
	}
	if err := o.journal.Finish(context.Background(), id, status, orderID, message); err != nil {
		log.Warn("journal finish failed", zap.Error(err))
	}
}
