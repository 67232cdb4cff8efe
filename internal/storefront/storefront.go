// Package storefront holds the per-visitor page state: a buy button for
// every pack and the page's notification presenter.
package storefront

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mainakxbuilds/makXsensi-frontend/internal/domain"
	"github.com/mainakxbuilds/makXsensi-frontend/internal/notify"
)

var (
	ErrPageNotFound = errors.New("page not found")
	ErrUnknownPack  = errors.New("unknown pack")
)

const offlineMessage = "You are offline. Please check your internet connection."

type Pack struct {
	Name        string `json:"name"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Price       string `json:"price"`
}

type Catalog struct {
	packs []Pack
	index map[string]int
}

func NewCatalog(currency string, packs ...Pack) *Catalog {
	c := &Catalog{index: make(map[string]int, len(packs))}
	for _, p := range packs {
		if p.Currency == "" {
			p.Currency = currency
		}
		p.Price = domain.FormatMinor(p.AmountMinor)
		c.index[p.Name] = len(c.packs)
		c.packs = append(c.packs, p)
	}
	return c
}

func (c *Catalog) Packs() []Pack {
	out := make([]Pack, len(c.packs))
	copy(out, c.packs)
	return out
}

func (c *Catalog) Lookup(name string) (Pack, bool) {
	i, ok := c.index[name]
	if !ok {
		return Pack{}, false
	}
	return c.packs[i], true
}

// Button is a buy control. It is safe for concurrent use.
type Button struct {
	mu    sync.Mutex
	state domain.ButtonState
}

func NewButton(label string) *Button {
	return &Button{state: domain.ButtonState{Content: label}}
}

func (b *Button) State() domain.ButtonState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Acquire sets busy unless the button is already disabled, and returns the
// state it replaced.
func (b *Button) Acquire(busy domain.ButtonState) (domain.ButtonState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state.Disabled {
		return b.state, false
	}
	prev := b.state
	b.state = busy
	return prev, true
}

func (b *Button) SetState(s domain.ButtonState) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

type Page struct {
	ID        string
	CreatedAt time.Time
	Presenter *notify.Presenter
	buttons   map[string]*Button
}

func (p *Page) Button(pack string) (*Button, error) {
	b, ok := p.buttons[pack]
	if !ok {
		return nil, ErrUnknownPack
	}
	return b, nil
}

// Buttons returns the state of every buy button keyed by pack name.
func (p *Page) Buttons() map[string]domain.ButtonState {
	out := make(map[string]domain.ButtonState, len(p.buttons))
	for name, b := range p.buttons {
		out[name] = b.State()
	}
	return out
}

// Offline shows the lost-connection notice.
func (p *Page) Offline() {
	p.Presenter.PresentError(offlineMessage)
}

type Registry struct {
	mu           sync.RWMutex
	pages        map[string]*Page
	catalog      *Catalog
	idleLabel    string
	newPresenter func() *notify.Presenter
}

func NewRegistry(catalog *Catalog, idleLabel string, newPresenter func() *notify.Presenter) *Registry {
	if newPresenter == nil {
		newPresenter = func() *notify.Presenter { return notify.New(notify.Options{}) }
	}
	return &Registry{
		pages:        make(map[string]*Page),
		catalog:      catalog,
		idleLabel:    idleLabel,
		newPresenter: newPresenter,
	}
}

func (r *Registry) Open() *Page {
	p := &Page{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Presenter: r.newPresenter(),
		buttons:   make(map[string]*Button),
	}
	for _, pack := range r.catalog.Packs() {
		p.buttons[pack.Name] = NewButton(r.idleLabel)
	}

	r.mu.Lock()
	r.pages[p.ID] = p
	r.mu.Unlock()
	return p
}

func (r *Registry) Get(id string) (*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pages[id]
	if !ok {
		return nil, ErrPageNotFound
	}
	return p, nil
}

func (r *Registry) Close(id string) error {
	r.mu.Lock()
	p, ok := r.pages[id]
	delete(r.pages, id)
	r.mu.Unlock()
	if !ok {
		return ErrPageNotFound
	}
	p.Presenter.Stop()
	return nil
}

// CloseIdle drops pages older than maxAge and returns how many were closed.
func (r *Registry) CloseIdle(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	var ids []string
	r.mu.RLock()
	for id, p := range r.pages {
		if p.CreatedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	closed := 0
	for _, id := range ids {
		if r.Close(id) == nil {
			closed++
		}
	}
	return closed
}
