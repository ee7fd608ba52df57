package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Sarcastic-Soul/storefront/internal/domain"
)

// mockGateway mimics the remote cart store: AddToCart is add-or-update
// with an absolute quantity, and every call answers with the full cart.
type mockGateway struct {
	mu      sync.Mutex
	catalog map[int]domain.Product
	lines   []domain.CartLine
	err     error

	getCalls    int
	addCalls    int
	removeCalls int
	clearCalls  int

	block chan struct{} // when set, GetCart waits on it
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		catalog: map[int]domain.Product{
			1: {ID: 1, Name: "sku-1", Price: decimal.RequireFromString("10.00"), Available: true},
			2: {ID: 2, Name: "sku-2", Price: decimal.RequireFromString("3.50"), Available: true},
		},
	}
}

func (m *mockGateway) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls + m.addCalls + m.removeCalls + m.clearCalls
}

func (m *mockGateway) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *mockGateway) copyLines() []domain.CartLine {
	lines := make([]domain.CartLine, len(m.lines))
	copy(lines, m.lines)
	return lines
}

func (m *mockGateway) GetCart(_ context.Context, _ string) ([]domain.CartLine, error) {
	m.mu.Lock()
	m.getCalls++
	err := m.err
	block := m.block
	m.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyLines(), nil
}

func (m *mockGateway) AddToCart(_ context.Context, _ string, productID, quantity int) ([]domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addCalls++
	if m.err != nil {
		return nil, m.err
	}

	for i := range m.lines {
		if m.lines[i].ProductID == productID {
			m.lines[i].Quantity = quantity
			return m.copyLines(), nil
		}
	}

	p, ok := m.catalog[productID]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", productID, domain.ErrNotFound)
	}
	m.lines = append(m.lines, domain.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		Quantity:  quantity,
	})
	return m.copyLines(), nil
}

func (m *mockGateway) RemoveFromCart(_ context.Context, _ string, productID int) ([]domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeCalls++
	if m.err != nil {
		return nil, m.err
	}

	kept := m.lines[:0]
	for _, l := range m.lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	m.lines = kept
	return m.copyLines(), nil
}

func (m *mockGateway) ClearCart(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	if m.err != nil {
		return m.err
	}
	m.lines = nil
	return nil
}

// mockIdentity is a settable IdentitySource.
type mockIdentity struct {
	mu     sync.Mutex
	id     domain.Identity
	active bool
}

func signedIn(username string) *mockIdentity {
	return &mockIdentity{
		id:     domain.Identity{Username: username, Role: domain.RoleCustomer},
		active: true,
	}
}

func (m *mockIdentity) Current() (domain.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, m.active
}

func (m *mockIdentity) signOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = domain.Identity{}
	m.active = false
}
