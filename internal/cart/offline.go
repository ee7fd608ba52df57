package cart

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Sarcastic-Soul/storefront/internal/domain"
)

// OfflineCart is the legacy client-held cart: a purely in-memory snapshot
// that never talks to the server and is lost when the process exits. It
// is kept as an offline-cache variant for browsing without a session; the
// server-backed Manager is the primary implementation.
type OfflineCart struct {
	mu        sync.Mutex
	snapshot  domain.CartSnapshot
	listeners []func(count int)
}

func NewOfflineCart() *OfflineCart {
	return &OfflineCart{}
}

// Add puts qty more units of the product into the cart. Unavailable
// products are refused, mirroring the catalog's disabled add button.
func (c *OfflineCart) Add(p domain.Product, qty int) error {
	if qty < 1 {
		return fmt.Errorf("quantity %d: %w", qty, domain.ErrValidation)
	}
	if !p.Available {
		return fmt.Errorf("product %d unavailable: %w", p.ID, domain.ErrValidation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	lines := c.snapshot.Lines
	if line, ok := c.snapshot.Line(p.ID); ok {
		for i := range lines {
			if lines[i].ProductID == p.ID {
				lines[i].Quantity = line.Quantity + qty
			}
		}
	} else {
		lines = append(lines, domain.CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
			Quantity:  qty,
		})
	}
	c.replaceLocked(lines)
	return nil
}

// Adjust changes a line's quantity by delta. A result at or below zero is
// a no-op, as with the server-backed stepper.
func (c *OfflineCart) Adjust(productID, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.snapshot.Line(productID)
	if !ok {
		return fmt.Errorf("product %d not in cart: %w", productID, domain.ErrNotFound)
	}
	target := line.Quantity + delta
	if target <= 0 {
		return nil
	}

	lines := c.snapshot.Lines
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = target
		}
	}
	c.replaceLocked(lines)
	return nil
}

// Remove deletes the line for productID. Removing an absent line is a
// no-op.
func (c *OfflineCart) Remove(productID int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := c.snapshot.Lines[:0]
	for _, l := range c.snapshot.Lines {
		if l.ProductID != productID {
			lines = append(lines, l)
		}
	}
	c.replaceLocked(lines)
}

// Clear empties the cart.
func (c *OfflineCart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replaceLocked(nil)
}

// Snapshot returns a copy of the current cart state.
func (c *OfflineCart) Snapshot() domain.CartSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.Clone()
}

func (c *OfflineCart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.Total()
}

func (c *OfflineCart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.ItemCount()
}

// Subscribe registers an item-count listener. Listeners run with the cart
// lock held and must not call back into it.
func (c *OfflineCart) Subscribe(fn func(count int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *OfflineCart) replaceLocked(lines []domain.CartLine) {
	c.snapshot = domain.NewCartSnapshot(lines)
	count := c.snapshot.ItemCount()
	for _, fn := range c.listeners {
		fn(count)
	}
}
