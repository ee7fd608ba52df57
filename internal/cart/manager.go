package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/Sarcastic-Soul/storefront/internal/domain"
)

// Gateway is the slice of the remote gateway the manager needs.
type Gateway interface {
	GetCart(ctx context.Context, username string) ([]domain.CartLine, error)
	AddToCart(ctx context.Context, username string, productID, quantity int) ([]domain.CartLine, error)
	RemoveFromCart(ctx context.Context, username string, productID int) ([]domain.CartLine, error)
	ClearCart(ctx context.Context, username string) error
}

// IdentitySource yields the active identity, if any.
type IdentitySource interface {
	Current() (domain.Identity, bool)
}

// Manager owns the in-memory cart snapshot for the active session. The
// remote store is the durable source of truth: every successful mutation
// replaces the snapshot wholesale with the server's response, and a
// failed call leaves it untouched. Mutations for the owner are serialized
// by the manager's mutex, so overlapping increments cannot race each
// other's reads of the in-flight snapshot.
type Manager struct {
	gw  Gateway
	ids IdentitySource
	log zerolog.Logger

	mu        sync.Mutex
	snapshot  domain.CartSnapshot
	listeners []func(count int)
	sfg       singleflight.Group // collapses concurrent loads per user
}

func NewManager(gw Gateway, ids IdentitySource, log zerolog.Logger) *Manager {
	return &Manager{
		gw:  gw,
		ids: ids,
		log: log,
	}
}

// Load fetches the authoritative snapshot for the current user and
// replaces local state wholesale. Concurrent loads for the same user are
// collapsed into one request.
func (m *Manager) Load(ctx context.Context) error {
	id, ok := m.ids.Current()
	if !ok {
		return domain.ErrUnauthenticated
	}

	v, err, _ := m.sfg.Do(id.Username, func() (any, error) {
		return m.gw.GetCart(ctx, id.Username)
	})
	if err != nil {
		m.log.Warn().Err(err).Str("username", id.Username).Msg("cart load failed")
		return fmt.Errorf("load cart: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceLocked(v.([]domain.CartLine))
	return nil
}

// Add puts qty more units of productID into the cart: an existing line
// grows by qty, otherwise a new line is created with qty. The remote
// endpoint takes an absolute quantity, so the target is computed from the
// last acknowledged snapshot under the mutation lock.
func (m *Manager) Add(ctx context.Context, productID, qty int) error {
	if qty < 1 {
		return fmt.Errorf("quantity %d: %w", qty, domain.ErrValidation)
	}
	id, ok := m.ids.Current()
	if !ok {
		return domain.ErrUnauthenticated
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	target := qty
	if line, ok := m.snapshot.Line(productID); ok {
		target = line.Quantity + qty
	}

	lines, err := m.gw.AddToCart(ctx, id.Username, productID, target)
	if err != nil {
		return fmt.Errorf("add product %d: %w", productID, err)
	}
	m.replaceLocked(lines)
	return nil
}

// SetQuantity overwrites the line's quantity. A quantity of zero or less
// removes the line entirely.
func (m *Manager) SetQuantity(ctx context.Context, productID, quantity int) error {
	if quantity <= 0 {
		return m.Remove(ctx, productID)
	}
	id, ok := m.ids.Current()
	if !ok {
		return domain.ErrUnauthenticated
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	lines, err := m.gw.AddToCart(ctx, id.Username, productID, quantity)
	if err != nil {
		return fmt.Errorf("set quantity for product %d: %w", productID, err)
	}
	m.replaceLocked(lines)
	return nil
}

// Adjust changes a line's quantity by delta, as the cart drawer's stepper
// does. A result at or below zero is a no-op: the stepper never drives a
// quantity under 1; removal is its own operation.
func (m *Manager) Adjust(ctx context.Context, productID, delta int) error {
	id, ok := m.ids.Current()
	if !ok {
		return domain.ErrUnauthenticated
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	line, ok := m.snapshot.Line(productID)
	if !ok {
		return fmt.Errorf("product %d not in cart: %w", productID, domain.ErrNotFound)
	}
	target := line.Quantity + delta
	if target <= 0 {
		return nil
	}

	lines, err := m.gw.AddToCart(ctx, id.Username, productID, target)
	if err != nil {
		return fmt.Errorf("adjust product %d: %w", productID, err)
	}
	m.replaceLocked(lines)
	return nil
}

// Remove deletes the line for productID.
func (m *Manager) Remove(ctx context.Context, productID int) error {
	id, ok := m.ids.Current()
	if !ok {
		return domain.ErrUnauthenticated
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	lines, err := m.gw.RemoveFromCart(ctx, id.Username, productID)
	if err != nil {
		return fmt.Errorf("remove product %d: %w", productID, err)
	}
	m.replaceLocked(lines)
	return nil
}

// Clear empties the cart for the current user.
func (m *Manager) Clear(ctx context.Context) error {
	id, ok := m.ids.Current()
	if !ok {
		return domain.ErrUnauthenticated
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.gw.ClearCart(ctx, id.Username); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	m.replaceLocked(nil)
	return nil
}

// Snapshot returns a copy of the last server-acknowledged cart state.
func (m *Manager) Snapshot() domain.CartSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot.Clone()
}

// Total is the sum of price*quantity over the snapshot.
func (m *Manager) Total() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot.Total()
}

// ItemCount is the sum of quantities over the snapshot. This is the value
// the navigation badge subscribes to.
func (m *Manager) ItemCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot.ItemCount()
}

// Subscribe registers a listener for item-count changes, notified after
// every successful mutation or load. Listeners run with the manager lock
// held and must not call back into it.
func (m *Manager) Subscribe(fn func(count int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Reset drops the local snapshot without a server call. Wired to identity
// changes: no cart exists for an absent identity.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceLocked(nil)
}

func (m *Manager) replaceLocked(lines []domain.CartLine) {
	m.snapshot = domain.NewCartSnapshot(lines)
	count := m.snapshot.ItemCount()
	for _, fn := range m.listeners {
		fn(count)
	}
}
