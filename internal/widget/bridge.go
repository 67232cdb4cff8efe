package widget

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mainakxbuilds/makXsensi-frontend/internal/domain"
)

var (
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrSessionSettled  = errors.New("checkout session already settled")
)

type Outcome string

const (
	OutcomePending   Outcome = ""
	OutcomeCompleted Outcome = "completed"
	OutcomeDismissed Outcome = "dismissed"
	OutcomeFailed    Outcome = "failed"
	OutcomeExpired   Outcome = "expired"
)

// settled sessions are kept this long so late reports get ErrSessionSettled
// instead of ErrSessionNotFound.
const settledRetention = 15 * time.Minute

// Session is a read-only view of an open checkout.
type Session struct {
	ID        string
	Options   Options
	OpenedAt  time.Time
	Outcome   Outcome
	SettledAt *time.Time
}

type session struct {
	Session
	timer *time.Timer
}

// Bridge is the payment widget as seen from the server: Open registers a
// checkout the thin client renders with the vendor SDK, and the client
// reports back exactly one of Complete, Dismiss or Fail.
type Bridge struct {
	mu       sync.Mutex
	loaded   bool
	sessions map[string]*session
	log      *zap.Logger
}

func NewBridge(log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bridge{
		loaded:   true,
		sessions: make(map[string]*session),
		log:      log,
	}
}

// SetLoaded toggles whether the vendor SDK is available. While unloaded
// Open fails with domain.ErrWidgetUnavailable.
func (b *Bridge) SetLoaded(loaded bool) {
	b.mu.Lock()
	b.loaded = loaded
	b.mu.Unlock()
}

func (b *Bridge) Open(ctx context.Context, opts Options) (string, error) {
	if b == nil {
		return "", domain.ErrWidgetUnavailable
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.loaded {
		return "", domain.ErrWidgetUnavailable
	}
	b.pruneLocked(time.Now())

	s := &session{Session: Session{
		ID:       uuid.NewString(),
		Options:  opts,
		OpenedAt: time.Now(),
	}}
	if opts.Timeout > 0 {
		id := s.ID
		s.timer = time.AfterFunc(opts.Timeout, func() { b.expire(id) })
	}
	b.sessions[s.ID] = s

	b.log.Info("checkout opened",
		zap.String("checkout_id", s.ID),
		zap.String("order_id", opts.OrderID),
		zap.Int64("amount", opts.Amount))
	return s.ID, nil
}

func (b *Bridge) Session(id string) (Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s.Session, nil
}

// Complete reports a finished payment and runs the verification handler.
func (b *Bridge) Complete(ctx context.Context, id string, res domain.PaymentResult) error {
	s, err := b.settle(id, OutcomeCompleted)
	if err != nil {
		return err
	}
	if h := s.Options.Callbacks.Handler; h != nil {
		h(ctx, res)
	}
	return nil
}

func (b *Bridge) Dismiss(id string) error {
	s, err := b.settle(id, OutcomeDismissed)
	if err != nil {
		return err
	}
	if h := s.Options.Callbacks.OnDismiss; h != nil {
		h()
	}
	return nil
}

func (b *Bridge) Fail(id string, f Failure) error {
	s, err := b.settle(id, OutcomeFailed)
	if err != nil {
		return err
	}
	if h := s.Options.Callbacks.OnFailure; h != nil {
		h(f)
	}
	return nil
}

// expire closes a checkout the client never reported on, as if the buyer
// had dismissed it.
func (b *Bridge) expire(id string) {
	s, err := b.settle(id, OutcomeExpired)
	if err != nil {
		return
	}
	b.log.Info("checkout expired", zap.String("checkout_id", id))
	if h := s.Options.Callbacks.OnDismiss; h != nil {
		h()
	}
}

func (b *Bridge) settle(id string, outcome Outcome) (Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if s.Outcome != OutcomePending {
		return Session{}, ErrSessionSettled
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	now := time.Now()
	s.Outcome = outcome
	s.SettledAt = &now
	return s.Session, nil
}

func (b *Bridge) pruneLocked(now time.Time) {
	for id, s := range b.sessions {
		if s.SettledAt != nil && now.Sub(*s.SettledAt) > settledRetention {
			delete(b.sessions, id)
		}
	}
}

// Close stops every pending expiry timer.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.sessions {
		if s.timer != nil {
			s.timer.Stop()
		}
	}
}
