package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Sarcastic-Soul/storefront/internal/domain"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show and manage the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.cart.Load(cmd.Context()); err != nil {
			return err
		}
		printCart(cli.cart.Snapshot())
		return nil
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id> [quantity]",
	Short: "Add a product to the cart",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := parseID(args[0])
		if err != nil {
			return err
		}
		qty := 1
		if len(args) == 2 {
			qty, err = strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity %q: %w", args[1], domain.ErrValidation)
			}
		}

		if _, err := cli.requireIdentity(); err != nil {
			return err
		}
		// Adding grows an existing line, so the current server state has
		// to be known before the target quantity is computed.
		if err := cli.cart.Load(cmd.Context()); err != nil {
			return err
		}

		// The product card disables adding unavailable products; the CLI
		// enforces the same rule before touching the cart.
		p, err := cli.gw.GetProduct(cmd.Context(), productID)
		if err != nil {
			return err
		}
		if !p.Available {
			return fmt.Errorf("product %d unavailable: %w", productID, domain.ErrValidation)
		}

		if err := cli.cart.Add(cmd.Context(), productID, qty); err != nil {
			return err
		}
		fmt.Printf("Added %d x %s (%d items in cart)\n", qty, p.Name, cli.cart.ItemCount())
		return nil
	},
}

var cartSetCmd = &cobra.Command{
	Use:   "set <product-id> <quantity>",
	Short: "Set a cart line's quantity (0 removes it)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := parseID(args[0])
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity %q: %w", args[1], domain.ErrValidation)
		}
		if err := cli.cart.Load(cmd.Context()); err != nil {
			return err
		}
		if err := cli.cart.SetQuantity(cmd.Context(), productID, qty); err != nil {
			return err
		}
		printCart(cli.cart.Snapshot())
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := cli.cart.Remove(cmd.Context(), productID); err != nil {
			return err
		}
		printCart(cli.cart.Snapshot())
		return nil
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.cart.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Cart cleared")
		return nil
	},
}

var cartCheckoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Confirm the cart total (checkout stub)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.cart.Load(cmd.Context()); err != nil {
			return err
		}
		snapshot := cli.cart.Snapshot()
		if snapshot.Empty() {
			fmt.Println("Your cart is empty")
			return nil
		}
		fmt.Printf("Checkout complete: %d items, $%s\n", snapshot.ItemCount(), snapshot.Total().StringFixed(2))
		return nil
	},
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("product id %q must be a positive integer: %w", s, domain.ErrValidation)
	}
	return id, nil
}

func printCart(snapshot domain.CartSnapshot) {
	if snapshot.Empty() {
		fmt.Println("Your cart is empty")
		return
	}
	for _, line := range snapshot.Lines {
		fmt.Printf("%4d  %-30s %3d x $%s = $%s\n",
			line.ProductID, line.Name, line.Quantity, line.Price.StringFixed(2), line.Subtotal().StringFixed(2))
	}
	fmt.Printf("Total: %d items, $%s\n", snapshot.ItemCount(), snapshot.Total().StringFixed(2))
}

func init() {
	cartCmd.AddCommand(cartAddCmd, cartSetCmd, cartRemoveCmd, cartClearCmd, cartCheckoutCmd)
}
