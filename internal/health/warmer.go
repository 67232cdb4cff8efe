// Package health keeps a cold order service warm by probing it on an
// interval. Probe failures are logged and never reach buyers.
package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mainakxbuilds/makXsensi-frontend/internal/metrics"
)

const DefaultInterval = 5 * time.Minute

type Pinger interface {
	Health(ctx context.Context) (string, error)
}

type Status struct {
	Checked bool      `json:"checked"`
	Up      bool      `json:"up"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at,omitzero"`
}

type Warmer struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	metrics  *metrics.Collector
	log      *zap.Logger

	mu   sync.RWMutex
	last Status
}

func NewWarmer(p Pinger, interval time.Duration, m *metrics.Collector, log *zap.Logger) *Warmer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Warmer{
		pinger:   p,
		interval: interval,
		timeout:  time.Minute,
		metrics:  m,
		log:      log,
	}
}

// Run probes once right away and then on every tick until ctx is done.
func (w *Warmer) Run(ctx context.Context) error {
	w.Probe(ctx)

	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			w.Probe(ctx)
		}
	}
}

func (w *Warmer) Probe(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	msg, err := w.pinger.Health(ctx)
	st := Status{Checked: true, Up: err == nil, Message: msg, At: time.Now()}
	if err != nil {
		w.log.Warn("order service might be sleeping, first request may take 30-50 seconds", zap.Error(err))
	} else {
		w.log.Info("order service is running", zap.String("message", msg))
	}
	w.metrics.Probe(st.Up)

	w.mu.Lock()
	w.last = st
	w.mu.Unlock()
	return st
}

// Ready reports the most recent probe result.
func (w *Warmer) Ready() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}
