package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Sarcastic-Soul/storefront/internal/domain"
)

// GetCart fetches the authoritative cart lines for username.
func (c *Client) GetCart(ctx context.Context, username string) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	err := c.do(ctx, http.MethodGet, "/cart/"+url.PathEscape(username), nil, nil, "", &lines)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return lines, nil
}

// AddToCart sets the line quantity for productID in username's cart,
// creating the line if absent. The endpoint is add-or-update: quantity is
// an absolute value, not a delta. The response is the full updated cart.
func (c *Client) AddToCart(ctx context.Context, username string, productID, quantity int) ([]domain.CartLine, error) {
	query := url.Values{
		"productId": {strconv.Itoa(productID)},
		"quantity":  {strconv.Itoa(quantity)},
	}
	var lines []domain.CartLine
	err := c.do(ctx, http.MethodPost, "/cart/"+url.PathEscape(username)+"/add", query, nil, "", &lines)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	return lines, nil
}

// RemoveFromCart deletes the line for productID and returns the full
// updated cart.
func (c *Client) RemoveFromCart(ctx context.Context, username string, productID int) ([]domain.CartLine, error) {
	query := url.Values{"productId": {strconv.Itoa(productID)}}
	var lines []domain.CartLine
	err := c.do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(username)+"/remove", query, nil, "", &lines)
	if err != nil {
		return nil, fmt.Errorf("remove from cart: %w", err)
	}
	return lines, nil
}

// ClearCart empties username's cart.
func (c *Client) ClearCart(ctx context.Context, username string) error {
	err := c.do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(username)+"/clear", nil, nil, "", nil)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
