package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mainakxbuilds/makXsensi-frontend/internal/domain"
)

func newRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	r, err := NewSQLiteRepo(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func begin(t *testing.T, r *SQLiteRepo, id, pack string) {
	t.Helper()
	require.NoError(t, r.Begin(context.Background(), &domain.Attempt{
		ID:          id,
		PackName:    pack,
		AmountMinor: 9900,
		Status:      domain.AttemptStarted,
		StartedAt:   time.Now(),
	}))
}

func TestAttemptLifecycle(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	begin(t, r, "a1", "Pro Pack")

	require.NoError(t, r.Advance(ctx, "a1", domain.AttemptWidgetOpen, "order_1"))
	require.NoError(t, r.Finish(ctx, "a1", domain.AttemptPaid, "ORD1", ""))

	a, err := r.GetAttempt(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.AttemptPaid, a.Status)
	assert.Equal(t, "order_1", a.GatewayOrderID)
	assert.Equal(t, "ORD1", a.OrderID)
	assert.EqualValues(t, 9900, a.AmountMinor)
	require.NotNil(t, a.FinishedAt)
}

func TestFinish_TerminalIsFinal(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	begin(t, r, "a1", "Pro Pack")

	require.NoError(t, r.Finish(ctx, "a1", domain.AttemptCancelled, "", ""))
	assert.ErrorIs(t, r.Finish(ctx, "a1", domain.AttemptPaid, "ORD1", ""), ErrNotFound)
	assert.ErrorIs(t, r.Advance(ctx, "a1", domain.AttemptWidgetOpen, ""), ErrNotFound)

	a, err := r.GetAttempt(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.AttemptCancelled, a.Status)
}

func TestAdvance_RejectsTerminalStatus(t *testing.T) {
	r := newRepo(t)
	begin(t, r, "a1", "Pro Pack")

	assert.Error(t, r.Advance(context.Background(), "a1", domain.AttemptPaid, ""))
}

func TestGetAttempt_NotFound(t *testing.T) {
	r := newRepo(t)
	_, err := r.GetAttempt(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAttempts(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	begin(t, r, "a1", "Pro Pack")
	begin(t, r, "a2", "Basic Pack")
	begin(t, r, "a3", "Pro Pack")
	require.NoError(t, r.Finish(ctx, "a3", domain.AttemptPaymentFailed, "", "payment failed (GATEWAY_ERROR)"))

	all, err := r.ListAttempts(ctx, AttemptFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a3", all[0].ID, "newest first")

	pro, err := r.ListAttempts(ctx, AttemptFilter{PackName: "Pro Pack"}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, pro, 2)

	failed, err := r.ListAttempts(ctx, AttemptFilter{Status: domain.AttemptPaymentFailed}, 10, 0)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "payment failed (GATEWAY_ERROR)", failed[0].Message)

	page, err := r.ListAttempts(ctx, AttemptFilter{}, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "a2", page[0].ID)
}
