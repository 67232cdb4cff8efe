package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAutoDismiss = 60 * time.Millisecond
	testDetach      = 15 * time.Millisecond
)

func newTestPresenter(t *testing.T) *Presenter {
	t.Helper()
	p := New(Options{AutoDismiss: testAutoDismiss, DetachDelay: testDetach})
	t.Cleanup(p.Stop)
	return p
}

func attached(p *Presenter, kind Kind) bool {
	for _, o := range p.Overlays() {
		if o.Kind == kind {
			return true
		}
	}
	return false
}

func TestPresentSuccess_Content(t *testing.T) {
	p := newTestPresenter(t)

	p.PresentSuccess("Pro Pack", 9900, "ORD1")

	o, ok := p.Visible(KindSuccess)
	require.True(t, ok)
	assert.Equal(t, "ORD1", o.OrderID)
	assert.Equal(t, "₹99.00", o.Amount)
	assert.Contains(t, o.Message, "Pro Pack")
}

func TestPresentSuccess_MissingOrderID(t *testing.T) {
	p := newTestPresenter(t)

	p.PresentSuccess("Pro Pack", 9900, "")

	o, ok := p.Visible(KindSuccess)
	require.True(t, ok)
	assert.Equal(t, "N/A", o.OrderID)
}

func TestPresentError_ContentAndSupport(t *testing.T) {
	p := New(Options{SupportEmail: "help@example.com"})
	t.Cleanup(p.Stop)

	p.PresentError("Invalid pack")

	o, ok := p.Visible(KindError)
	require.True(t, ok)
	assert.Equal(t, "Invalid pack", o.Message)
	assert.Contains(t, o.Detail, "help@example.com")
}

func TestPresent_ReplacesExistingOfSameKind(t *testing.T) {
	p := newTestPresenter(t)

	p.PresentError("first")
	p.PresentError("second")
	p.PresentSuccess("Basic Pack", 4900, "A")
	p.PresentSuccess("Pro Pack", 9900, "B")

	overlays := p.Overlays()
	require.Len(t, overlays, 2)
	assert.Equal(t, "B", overlays[0].OrderID)
	assert.Equal(t, "second", overlays[1].Message)
}

func TestSuccess_AutoDismisses(t *testing.T) {
	p := newTestPresenter(t)

	p.PresentSuccess("Pro Pack", 9900, "ORD1")

	assert.Eventually(t, func() bool {
		_, ok := p.Visible(KindSuccess)
		return !ok
	}, testAutoDismiss+time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return !attached(p, KindSuccess) },
		testDetach+time.Second, 5*time.Millisecond)
}

func TestError_DoesNotAutoDismiss(t *testing.T) {
	p := newTestPresenter(t)

	p.PresentError("boom")
	time.Sleep(testAutoDismiss + 2*testDetach)

	_, ok := p.Visible(KindError)
	assert.True(t, ok)
}

func TestDismissTriggers(t *testing.T) {
	tests := []struct {
		name    string
		dismiss func(p *Presenter) bool
	}{
		{"close control", func(p *Presenter) bool { return p.Close(KindError) }},
		{"backdrop click", func(p *Presenter) bool { return p.Click(KindError, RegionBackdrop) }},
		{"escape key", func(p *Presenter) bool { return p.KeyDown(KeyEscape) }},
	}

	for _, first := range tests {
		for _, second := range tests {
			t.Run(first.name+" then "+second.name, func(t *testing.T) {
				p := newTestPresenter(t)
				p.PresentError("boom")

				assert.True(t, first.dismiss(p))
				_, visible := p.Visible(KindError)
				assert.False(t, visible, "hidden immediately")
				assert.True(t, attached(p, KindError), "detached only after the exit delay")

				assert.False(t, second.dismiss(p), "second trigger is a no-op")

				assert.Eventually(t, func() bool { return !attached(p, KindError) },
					time.Second, 5*time.Millisecond)
				assert.False(t, second.dismiss(p))
			})
		}
	}
}

func TestClickOnContentKeepsOverlay(t *testing.T) {
	p := newTestPresenter(t)
	p.PresentError("boom")

	assert.False(t, p.Click(KindError, RegionContent))

	_, ok := p.Visible(KindError)
	assert.True(t, ok)
}

func TestOtherKeysIgnored(t *testing.T) {
	p := newTestPresenter(t)
	p.PresentError("boom")

	assert.False(t, p.KeyDown("Enter"))

	_, ok := p.Visible(KindError)
	assert.True(t, ok)
}

func TestEscapeDismissesBothKinds(t *testing.T) {
	p := newTestPresenter(t)
	p.PresentError("boom")
	p.PresentSuccess("Pro Pack", 9900, "ORD1")

	assert.True(t, p.KeyDown(KeyEscape))

	_, okErr := p.Visible(KindError)
	_, okSucc := p.Visible(KindSuccess)
	assert.False(t, okErr)
	assert.False(t, okSucc)
}

func TestReplacementSurvivesPredecessorTimers(t *testing.T) {
	p := newTestPresenter(t)

	p.PresentError("first")
	require.True(t, p.Close(KindError))
	p.PresentError("second")

	time.Sleep(3 * testDetach)

	o, ok := p.Visible(KindError)
	require.True(t, ok, "pending detach of the closed overlay must not remove its replacement")
	assert.Equal(t, "second", o.Message)
}
