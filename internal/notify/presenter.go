// Package notify renders the terminal checkout notifications: one success
// overlay and one error overlay at most, each dismissed by the close
// control, a backdrop click or the Escape key.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mainakxbuilds/makXsensi-frontend/internal/domain"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/metrics"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type Region string

const (
	RegionBackdrop Region = "backdrop"
	RegionContent  Region = "content"
)

const KeyEscape = "Escape"

type Trigger string

const (
	TriggerClose    Trigger = "close"
	TriggerBackdrop Trigger = "backdrop"
	TriggerEscape   Trigger = "escape"
	TriggerTimeout  Trigger = "timeout"
)

const (
	DefaultAutoDismiss  = 10 * time.Second
	DefaultDetachDelay  = 300 * time.Millisecond
	DefaultSupportEmail = "support@makxsensi.com"
)

type Overlay struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	OrderID string    `json:"orderId,omitempty"`
	Amount  string    `json:"amount,omitempty"`
	Detail  string    `json:"detail"`
	Button  string    `json:"button"`
	Visible bool      `json:"visible"`
	ShownAt time.Time `json:"shownAt"`
}

type Options struct {
	AutoDismiss  time.Duration
	DetachDelay  time.Duration
	SupportEmail string
	Metrics      *metrics.Collector
	Logger       *zap.Logger
}

type Presenter struct {
	mu       sync.Mutex
	opts     Options
	log      *zap.Logger
	overlays map[Kind]*entry
}

// entry is one rendered overlay. Timers hold the entry pointer so they can
// only ever remove the overlay they were started for.
type entry struct {
	Overlay
	hidden      bool
	autoTimer   *time.Timer
	detachTimer *time.Timer
}

func (e *entry) stop() {
	if e.autoTimer != nil {
		e.autoTimer.Stop()
	}
	if e.detachTimer != nil {
		e.detachTimer.Stop()
	}
}

func New(opts Options) *Presenter {
	if opts.AutoDismiss <= 0 {
		opts.AutoDismiss = DefaultAutoDismiss
	}
	if opts.DetachDelay <= 0 {
		opts.DetachDelay = DefaultDetachDelay
	}
	if opts.SupportEmail == "" {
		opts.SupportEmail = DefaultSupportEmail
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Presenter{
		opts:     opts,
		log:      log,
		overlays: make(map[Kind]*entry),
	}
}

func (p *Presenter) PresentSuccess(packName string, amount int64, orderID string) {
	if orderID == "" {
		orderID = "N/A"
	}
	e := &entry{Overlay: Overlay{
		ID:      "successModal",
		Kind:    KindSuccess,
		Title:   "Payment Successful!",
		Message: "Thank you for purchasing " + packName,
		OrderID: orderID,
		Amount:  "₹" + domain.FormatMinor(amount),
		Detail:  "Check your email for the sensitivity settings and setup instructions.",
		Button:  "Awesome!",
	}}

	p.mu.Lock()
	p.showLocked(e)
	e.autoTimer = time.AfterFunc(p.opts.AutoDismiss, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.hideLocked(e, TriggerTimeout)
	})
	p.mu.Unlock()
}

func (p *Presenter) PresentError(message string) {
	e := &entry{Overlay: Overlay{
		ID:      "errorModal",
		Kind:    KindError,
		Title:   "Oops! Something went wrong",
		Message: message,
		Detail:  "Need help? Contact us at " + p.opts.SupportEmail,
		Button:  "Try Again",
	}}

	p.mu.Lock()
	p.showLocked(e)
	p.mu.Unlock()
}

func (p *Presenter) showLocked(e *entry) {
	if old, ok := p.overlays[e.Kind]; ok {
		old.stop()
	}
	e.Visible = true
	e.ShownAt = time.Now()
	p.overlays[e.Kind] = e
	p.opts.Metrics.Overlay(string(e.Kind))
	p.log.Info("overlay presented", zap.String("kind", string(e.Kind)), zap.String("message", e.Message))
}

// hideLocked starts the two-phase dismissal: hide now, detach after the
// exit animation. It returns false when e is no longer the visible overlay.
func (p *Presenter) hideLocked(e *entry, trigger Trigger) bool {
	if e.hidden || p.overlays[e.Kind] != e {
		return false
	}
	e.hidden = true
	e.Visible = false
	if e.autoTimer != nil {
		e.autoTimer.Stop()
	}
	e.detachTimer = time.AfterFunc(p.opts.DetachDelay, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.overlays[e.Kind] == e {
			delete(p.overlays, e.Kind)
		}
	})
	p.log.Debug("overlay dismissed", zap.String("kind", string(e.Kind)), zap.String("trigger", string(trigger)))
	return true
}

func (p *Presenter) dismiss(kind Kind, trigger Trigger) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.overlays[kind]
	if !ok {
		return false
	}
	return p.hideLocked(e, trigger)
}

// Close is the overlay's close control.
func (p *Presenter) Close(kind Kind) bool {
	return p.dismiss(kind, TriggerClose)
}

// Click dismisses only when the click landed outside the content region.
func (p *Presenter) Click(kind Kind, region Region) bool {
	if region != RegionBackdrop {
		return false
	}
	return p.dismiss(kind, TriggerBackdrop)
}

// KeyDown dismisses every visible overlay on Escape.
func (p *Presenter) KeyDown(key string) bool {
	if key != KeyEscape {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	dismissed := false
	for _, e := range p.overlays {
		if p.hideLocked(e, TriggerEscape) {
			dismissed = true
		}
	}
	return dismissed
}

// Overlays returns every attached overlay, including ones that are hidden
// but not yet detached.
func (p *Presenter) Overlays() []Overlay {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Overlay, 0, len(p.overlays))
	for _, kind := range []Kind{KindSuccess, KindError} {
		if e, ok := p.overlays[kind]; ok {
			out = append(out, e.Overlay)
		}
	}
	return out
}

// Visible returns the overlay of kind when it is attached and shown.
func (p *Presenter) Visible(kind Kind) (Overlay, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.overlays[kind]
	if !ok || !e.Visible {
		return Overlay{}, false
	}
	return e.Overlay, true
}

func (p *Presenter) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.overlays {
		e.stop()
	}
}
