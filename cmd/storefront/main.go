package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Sarcastic-Soul/storefront/internal/cart"
	"github.com/Sarcastic-Soul/storefront/internal/config"
	"github.com/Sarcastic-Soul/storefront/internal/credstore"
	"github.com/Sarcastic-Soul/storefront/internal/domain"
	"github.com/Sarcastic-Soul/storefront/internal/gateway"
	"github.com/Sarcastic-Soul/storefront/internal/session"
)

// app is the wired client, built once per invocation in the root
// command's PersistentPreRunE.
type app struct {
	cfg     config.Config
	log     zerolog.Logger
	gw      *gateway.Client
	session *session.Provider
	cart    *cart.Manager
}

var (
	cli     *app
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "storefront",
	Short:         "Command-line storefront for the e-commerce API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		cli = a
		return nil
	},
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(level)

	store := credstore.NewFileStore(cfg.CredentialFile)

	// The gateway needs the provider's token and the provider needs the
	// gateway's auth endpoints; the closure breaks the cycle.
	var provider *session.Provider
	gw := gateway.NewClient(cfg.APIBaseURL, func() string {
		if provider == nil {
			return ""
		}
		return provider.Token()
	}, logger, &http.Client{Timeout: cfg.RequestTimeout})
	provider = session.NewProvider(gw, store, logger)

	mgr := cart.NewManager(gw, provider, logger)

	// The navigation badge: observes every cart change regardless of
	// which command caused it.
	mgr.Subscribe(func(count int) {
		logger.Debug().Int("items", count).Msg("cart badge updated")
	})

	// Identity changes drive the cart: reload on sign-in, drop on
	// sign-out.
	provider.Subscribe(func(id domain.Identity, active bool) {
		if !active {
			mgr.Reset()
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
		defer cancel()
		if err := mgr.Load(ctx); err != nil {
			logger.Debug().Err(err).Msg("cart reload after sign-in")
		}
	})

	return &app{
		cfg:     cfg,
		log:     logger,
		gw:      gw,
		session: provider,
		cart:    mgr,
	}, nil
}

// requireIdentity returns the active identity or ErrUnauthenticated.
func (a *app) requireIdentity() (domain.Identity, error) {
	id, ok := a.session.Current()
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}

// requireAdmin gates product management the way the admin routes are
// gated in the UI: checked client-side before any request is sent.
func (a *app) requireAdmin() error {
	id, err := a.requireIdentity()
	if err != nil {
		return err
	}
	if !id.Can(domain.ActionManageProducts) {
		return domain.ErrForbidden
	}
	return nil
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(productsCmd, productCmd, uploadImageCmd)
	rootCmd.AddCommand(cartCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
