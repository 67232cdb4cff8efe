package widget

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mainakxbuilds/makXsensi-frontend/internal/domain"
)

type recorder struct {
	paid      atomic.Int32
	dismissed atomic.Int32
	failed    atomic.Int32
	lastFail  Failure
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		Handler:   func(ctx context.Context, res domain.PaymentResult) { r.paid.Add(1) },
		OnDismiss: func() { r.dismissed.Add(1) },
		OnFailure: func(f Failure) { r.lastFail = f; r.failed.Add(1) },
	}
}

func open(t *testing.T, b *Bridge, rec *recorder, timeout time.Duration) string {
	t.Helper()
	opts := Defaults("MakXsensi", "", timeout)
	opts.OrderID = "order_1"
	opts.Amount = 9900
	opts.Callbacks = rec.callbacks()
	id, err := b.Open(context.Background(), opts)
	require.NoError(t, err)
	return id
}

func TestBridge_OpenUnavailable(t *testing.T) {
	var nilBridge *Bridge
	_, err := nilBridge.Open(context.Background(), Options{})
	assert.ErrorIs(t, err, domain.ErrWidgetUnavailable)

	b := NewBridge(nil)
	b.SetLoaded(false)
	_, err = b.Open(context.Background(), Options{})
	assert.ErrorIs(t, err, domain.ErrWidgetUnavailable)
}

func TestBridge_ExactlyOneExitFires(t *testing.T) {
	b := NewBridge(nil)
	rec := &recorder{}
	id := open(t, b, rec, 0)

	require.NoError(t, b.Complete(context.Background(), id, domain.PaymentResult{GatewayPaymentID: "pay_1"}))
	assert.ErrorIs(t, b.Dismiss(id), ErrSessionSettled)
	assert.ErrorIs(t, b.Fail(id, Failure{Code: CodeGatewayError}), ErrSessionSettled)
	assert.ErrorIs(t, b.Complete(context.Background(), id, domain.PaymentResult{}), ErrSessionSettled)

	assert.EqualValues(t, 1, rec.paid.Load())
	assert.EqualValues(t, 0, rec.dismissed.Load())
	assert.EqualValues(t, 0, rec.failed.Load())

	s, err := b.Session(id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, s.Outcome)
	assert.NotNil(t, s.SettledAt)
}

func TestBridge_ConcurrentReportsSettleOnce(t *testing.T) {
	b := NewBridge(nil)
	rec := &recorder{}
	id := open(t, b, rec, 0)

	var wg sync.WaitGroup
	for i := range 30 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch i % 3 {
			case 0:
				b.Complete(context.Background(), id, domain.PaymentResult{})
			case 1:
				b.Dismiss(id)
			default:
				b.Fail(id, Failure{Code: CodeBadRequest})
			}
		}()
	}
	wg.Wait()

	total := rec.paid.Load() + rec.dismissed.Load() + rec.failed.Load()
	assert.EqualValues(t, 1, total)
}

func TestBridge_FailPassesFailure(t *testing.T) {
	b := NewBridge(nil)
	rec := &recorder{}
	id := open(t, b, rec, 0)

	require.NoError(t, b.Fail(id, Failure{Code: CodeBadRequest, Description: "Card declined"}))

	assert.Equal(t, "Card declined", rec.lastFail.Description)
}

func TestBridge_UnknownSession(t *testing.T) {
	b := NewBridge(nil)
	assert.ErrorIs(t, b.Dismiss("missing"), ErrSessionNotFound)
	_, err := b.Session("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestBridge_TimeoutDismisses(t *testing.T) {
	b := NewBridge(nil)
	rec := &recorder{}
	id := open(t, b, rec, 20*time.Millisecond)

	assert.Eventually(t, func() bool { return rec.dismissed.Load() == 1 }, time.Second, 5*time.Millisecond)

	s, err := b.Session(id)
	require.NoError(t, err)
	assert.Equal(t, OutcomeExpired, s.Outcome)
	assert.ErrorIs(t, b.Complete(context.Background(), id, domain.PaymentResult{}), ErrSessionSettled)
}
