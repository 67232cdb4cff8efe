package storefront

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mainakxbuilds/makXsensi-frontend/internal/domain"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/notify"
)

func testCatalog() *Catalog {
	return NewCatalog("INR",
		Pack{Name: "Basic Pack", AmountMinor: 4900},
		Pack{Name: "Pro Pack", AmountMinor: 9900},
	)
}

func TestCatalog(t *testing.T) {
	c := testCatalog()

	p, ok := c.Lookup("Pro Pack")
	require.True(t, ok)
	assert.Equal(t, "INR", p.Currency)
	assert.Equal(t, "99.00", p.Price)

	_, ok = c.Lookup("Missing")
	assert.False(t, ok)
	assert.Len(t, c.Packs(), 2)
}

func TestRegistry_OpenGetClose(t *testing.T) {
	r := NewRegistry(testCatalog(), "Buy Now", nil)

	page := r.Open()
	got, err := r.Get(page.ID)
	require.NoError(t, err)
	assert.Same(t, page, got)

	assert.Equal(t, map[string]domain.ButtonState{
		"Basic Pack": {Content: "Buy Now"},
		"Pro Pack":   {Content: "Buy Now"},
	}, page.Buttons())

	_, err = page.Button("Missing")
	assert.ErrorIs(t, err, ErrUnknownPack)

	require.NoError(t, r.Close(page.ID))
	_, err = r.Get(page.ID)
	assert.ErrorIs(t, err, ErrPageNotFound)
	assert.ErrorIs(t, r.Close(page.ID), ErrPageNotFound)
}

func TestRegistry_PagesAreIndependent(t *testing.T) {
	r := NewRegistry(testCatalog(), "Buy Now", nil)
	a, b := r.Open(), r.Open()

	btn, err := a.Button("Pro Pack")
	require.NoError(t, err)
	btn.SetState(domain.ButtonState{Content: "Processing...", Disabled: true})
	a.Offline()

	assert.Equal(t, "Buy Now", b.Buttons()["Pro Pack"].Content)
	assert.Empty(t, b.Presenter.Overlays())

	o, ok := a.Presenter.Visible(notify.KindError)
	require.True(t, ok)
	assert.Contains(t, o.Message, "offline")
}

func TestButton_Acquire(t *testing.T) {
	btn := NewButton("Buy Now")
	busy := domain.ButtonState{Content: "Processing...", Disabled: true}

	prev, ok := btn.Acquire(busy)
	require.True(t, ok)
	assert.Equal(t, domain.ButtonState{Content: "Buy Now"}, prev)
	assert.Equal(t, busy, btn.State())

	_, ok = btn.Acquire(busy)
	assert.False(t, ok)

	btn.SetState(prev)
	_, ok = btn.Acquire(busy)
	assert.True(t, ok)
}

func TestRegistry_CloseIdle(t *testing.T) {
	r := NewRegistry(testCatalog(), "Buy Now", nil)
	old := r.Open()
	old.CreatedAt = time.Now().Add(-2 * time.Hour)
	fresh := r.Open()

	assert.Equal(t, 1, r.CloseIdle(time.Hour))

	_, err := r.Get(old.ID)
	assert.ErrorIs(t, err, ErrPageNotFound)
	_, err = r.Get(fresh.ID)
	assert.NoError(t, err)
}
