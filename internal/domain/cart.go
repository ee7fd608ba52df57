package domain

import "github.com/shopspring/decimal"

// CartLine is one product entry in a cart, as returned by the server.
// Quantity is always >= 1; a line driven to zero is removed, never kept.
type CartLine struct {
	ProductID int             `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"imageUrl"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is Price * Quantity for this line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartSnapshot is the full cart state as last confirmed by the server.
// There is at most one line per product; line order is not significant.
type CartSnapshot struct {
	Lines []CartLine
}

// NewCartSnapshot builds a snapshot from server lines, dropping any line
// with a non-positive quantity.
func NewCartSnapshot(lines []CartLine) CartSnapshot {
	kept := make([]CartLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity >= 1 {
			kept = append(kept, l)
		}
	}
	return CartSnapshot{Lines: kept}
}

// Line returns the line for productID, if present.
func (s CartSnapshot) Line(productID int) (CartLine, bool) {
	for _, l := range s.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLine{}, false
}

// Total is the sum of line subtotals. It is recomputed on every call,
// never stored.
func (s CartSnapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// ItemCount is the sum of line quantities. The navigation badge renders
// this value.
func (s CartSnapshot) ItemCount() int {
	count := 0
	for _, l := range s.Lines {
		count += l.Quantity
	}
	return count
}

// Empty reports whether the snapshot has no lines.
func (s CartSnapshot) Empty() bool {
	return len(s.Lines) == 0
}

// Clone returns a deep copy, so callers can hold a snapshot without
// observing later mutations.
func (s CartSnapshot) Clone() CartSnapshot {
	if s.Lines == nil {
		return CartSnapshot{}
	}
	lines := make([]CartLine, len(s.Lines))
	copy(lines, s.Lines)
	return CartSnapshot{Lines: lines}
}
