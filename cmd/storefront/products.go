package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Sarcastic-Soul/storefront/internal/domain"
	"github.com/Sarcastic-Soul/storefront/internal/search"
)

var productsInteractive bool

var productsCmd = &cobra.Command{
	Use:   "products [keyword]",
	Short: "List the catalog, optionally filtered by a search keyword",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if productsInteractive {
			return runInteractiveSearch(os.Stdin, os.Stdout, cli.gw,
				cli.cfg.SearchDebounce, cli.cfg.SearchDebounce+cli.cfg.RequestTimeout, cli.log)
		}

		var (
			products []domain.Product
			err      error
		)
		if len(args) == 1 && args[0] != "" {
			products, err = cli.gw.SearchProducts(cmd.Context(), args[0])
		} else {
			products, err = cli.gw.GetProducts(cmd.Context())
		}
		if err != nil {
			return err
		}
		printProducts(os.Stdout, products)
		return nil
	},
}

// runInteractiveSearch reads keywords line by line and runs them through
// the debouncer, so pasting or rapid typing coalesces into one request
// and a slow stale response never clobbers a newer one. After input ends
// it waits, up to grace, for the final query to be answered.
func runInteractiveSearch(in io.Reader, out io.Writer, api search.ProductAPI, window, grace time.Duration, log zerolog.Logger) error {
	var (
		mu      sync.Mutex
		pending bool
	)
	settled := make(chan struct{}, 1)
	settle := func() {
		mu.Lock()
		defer mu.Unlock()
		pending = false
		select {
		case settled <- struct{}{}:
		default:
		}
	}

	d := search.NewDebouncer(
		api,
		window,
		func(keyword string, products []domain.Product) {
			fmt.Fprintf(out, "-- results for %q --\n", keyword)
			printProducts(out, products)
			settle()
		},
		func(keyword string, err error) {
			fmt.Fprintf(out, "-- search for %q failed: %v --\n", keyword, err)
			settle()
		},
		log,
	)
	defer d.Close()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		mu.Lock()
		pending = true
		// Drop any settle signal from an earlier query: only an answer
		// arriving after this point counts.
		select {
		case <-settled:
		default:
		}
		mu.Unlock()
		d.Query(scanner.Text())
	}

	mu.Lock()
	wait := pending
	mu.Unlock()
	if wait {
		select {
		case <-settled:
		case <-time.After(grace):
		}
	}
	return scanner.Err()
}

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Inspect and manage products",
}

var productGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		p, err := cli.gw.GetProduct(cmd.Context(), id)
		if err != nil {
			return err
		}
		printProductDetail(p)
		return nil
	},
}

var productFlags struct {
	name        string
	description string
	brand       string
	price       string
	category    string
	quantity    int
	available   bool
	imagePath   string
}

var productCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a product (ADMIN)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.requireAdmin(); err != nil {
			return err
		}

		p, err := productFromFlags(cmd, domain.Product{Available: true})
		if err != nil {
			return err
		}

		if productFlags.imagePath != "" {
			data, err := os.ReadFile(productFlags.imagePath)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			ref, err := cli.gw.UploadImage(cmd.Context(), filepath.Base(productFlags.imagePath), data)
			if err != nil {
				return err
			}
			p.ImageURL = ref
		}

		created, err := cli.gw.CreateProduct(cmd.Context(), p)
		if err != nil {
			return err
		}
		fmt.Printf("Created product %d: %s\n", created.ID, created.Name)
		return nil
	},
}

var productUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a product (ADMIN)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.requireAdmin(); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		existing, err := cli.gw.GetProduct(cmd.Context(), id)
		if err != nil {
			return err
		}
		p, err := productFromFlags(cmd, existing)
		if err != nil {
			return err
		}

		var (
			image     []byte
			imageName string
		)
		if productFlags.imagePath != "" {
			image, err = os.ReadFile(productFlags.imagePath)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			imageName = filepath.Base(productFlags.imagePath)
		}

		updated, err := cli.gw.UpdateProduct(cmd.Context(), id, p, image, imageName)
		if err != nil {
			return err
		}
		fmt.Printf("Updated product %d: %s\n", updated.ID, updated.Name)
		return nil
	},
}

var productDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product (ADMIN)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.requireAdmin(); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := cli.gw.DeleteProduct(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted product %d\n", id)
		return nil
	},
}

var uploadImageCmd = &cobra.Command{
	Use:   "upload-image <path>",
	Short: "Upload an image and print its reference (ADMIN)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.requireAdmin(); err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		ref, err := cli.gw.UploadImage(cmd.Context(), filepath.Base(args[0]), data)
		if err != nil {
			return err
		}
		fmt.Println(ref)
		return nil
	},
}

// productFromFlags overlays the changed flags on base. Flags left at
// their defaults do not touch base, so an update only rewrites what the
// caller asked for.
func productFromFlags(cmd *cobra.Command, base domain.Product) (domain.Product, error) {
	p := base
	if productFlags.name != "" {
		p.Name = productFlags.name
	}
	if productFlags.description != "" {
		p.Description = productFlags.description
	}
	if productFlags.brand != "" {
		p.Brand = productFlags.brand
	}
	if productFlags.price != "" {
		price, err := decimal.NewFromString(productFlags.price)
		if err != nil || price.IsNegative() {
			return domain.Product{}, fmt.Errorf("price %q: %w", productFlags.price, domain.ErrValidation)
		}
		p.Price = price
	}
	if productFlags.category != "" {
		category := domain.Category(productFlags.category)
		if !category.Valid() {
			return domain.Product{}, fmt.Errorf("category %q: %w", productFlags.category, domain.ErrValidation)
		}
		p.Category = category
	}
	if productFlags.quantity >= 0 {
		p.Quantity = productFlags.quantity
	}
	if cmd.Flags().Changed("available") {
		p.Available = productFlags.available
	}
	return p, nil
}

func printProducts(w io.Writer, products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "(no products)")
		return
	}
	for _, p := range products {
		status := ""
		if !p.Available {
			status = " [unavailable]"
		}
		fmt.Fprintf(w, "%4d  %-30s %-12s $%s%s\n", p.ID, p.Name, p.Brand, p.Price.StringFixed(2), status)
	}
}

func printProductDetail(p domain.Product) {
	fmt.Printf("#%d %s\n", p.ID, p.Name)
	fmt.Printf("  Brand:     %s\n", p.Brand)
	fmt.Printf("  Category:  %s\n", p.Category)
	fmt.Printf("  Price:     $%s\n", p.Price.StringFixed(2))
	fmt.Printf("  In stock:  %d (available: %t)\n", p.Quantity, p.Available)
	if p.Description != "" {
		fmt.Printf("  %s\n", p.Description)
	}
}

func init() {
	productsCmd.Flags().BoolVarP(&productsInteractive, "interactive", "i", false, "read search keywords from stdin, debounced")

	for _, cmd := range []*cobra.Command{productCreateCmd, productUpdateCmd} {
		cmd.Flags().StringVar(&productFlags.name, "name", "", "product name")
		cmd.Flags().StringVar(&productFlags.description, "description", "", "product description")
		cmd.Flags().StringVar(&productFlags.brand, "brand", "", "brand")
		cmd.Flags().StringVar(&productFlags.price, "price", "", "unit price, e.g. 19.99")
		cmd.Flags().StringVar(&productFlags.category, "category", "", "category (e.g. ELECTRONICS)")
		cmd.Flags().IntVar(&productFlags.quantity, "quantity", -1, "stock quantity")
		cmd.Flags().BoolVar(&productFlags.available, "available", true, "whether the product is purchasable")
		cmd.Flags().StringVar(&productFlags.imagePath, "image", "", "path to a product image")
	}

	productCmd.AddCommand(productGetCmd, productCreateCmd, productUpdateCmd, productDeleteCmd)
}
