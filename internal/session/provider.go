package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Sarcastic-Soul/storefront/internal/credstore"
	"github.com/Sarcastic-Soul/storefront/internal/domain"
)

// ErrLoginFailed is the only error surfaced for a failed login. Server
// detail is deliberately not leaked to the caller.
var ErrLoginFailed = errors.New("login failed")

// AuthAPI is the slice of the remote gateway the provider needs.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	Signup(ctx context.Context, username, password string) error
}

// Listener observes identity changes. active is false when the identity
// was destroyed (logout or decode failure).
type Listener func(id domain.Identity, active bool)

// Provider owns the process-wide session: the stored bearer credential
// and the identity derived from it. The identity is re-derived from the
// stored credential at construction, so sessions survive restarts.
type Provider struct {
	api   AuthAPI
	store credstore.Store
	log   zerolog.Logger

	mu        sync.RWMutex
	token     string
	identity  domain.Identity
	active    bool
	listeners []Listener
}

func NewProvider(api AuthAPI, store credstore.Store, log zerolog.Logger) *Provider {
	p := &Provider{
		api:   api,
		store: store,
		log:   log,
	}

	token, err := store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("load stored credential")
		return p
	}
	if token == "" {
		return p
	}

	id, err := DecodeCredential(token)
	if err != nil {
		// A junk stored credential is equivalent to being logged out.
		log.Warn().Err(err).Msg("stored credential rejected")
		if err := store.Clear(); err != nil {
			log.Warn().Err(err).Msg("clear stored credential")
		}
		return p
	}

	p.token = token
	p.identity = id
	p.active = true
	return p
}

type claims struct {
	Subject string   `json:"sub"`
	Role    string   `json:"role"`
	Roles   []string `json:"roles"`
}

// DecodeCredential extracts the identity from a bearer credential without
// a server round-trip: the payload segment is base64-decoded and the
// subject and role claims are read. Signature and expiry are the server's
// concern; every API call is authorized remotely anyway.
func DecodeCredential(token string) (domain.Identity, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return domain.Identity{}, fmt.Errorf("credential has %d segments, want 3", len(parts))
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return domain.Identity{}, fmt.Errorf("decode payload segment: %w", err)
	}

	var c claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return domain.Identity{}, fmt.Errorf("unmarshal claims: %w", err)
	}
	if c.Subject == "" {
		return domain.Identity{}, errors.New("missing sub claim")
	}

	raw := c.Role
	if raw == "" && len(c.Roles) > 0 {
		raw = c.Roles[0]
	}
	if raw == "" {
		return domain.Identity{}, errors.New("missing role claim")
	}

	role, err := domain.ParseRole(raw)
	if err != nil {
		return domain.Identity{}, err
	}

	return domain.Identity{Username: c.Subject, Role: role}, nil
}

func decodeSegment(seg string) ([]byte, error) {
	if data, err := base64.RawURLEncoding.DecodeString(seg); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(seg)
}

// Login authenticates against the remote auth endpoint and adopts the
// returned credential. Any failure surfaces as ErrLoginFailed.
func (p *Provider) Login(ctx context.Context, username, password string) error {
	token, err := p.api.Login(ctx, username, password)
	if err != nil {
		p.log.Debug().Err(err).Str("username", username).Msg("login rejected")
		return ErrLoginFailed
	}

	id, err := DecodeCredential(token)
	if err != nil {
		p.log.Warn().Err(err).Msg("server returned undecodable credential")
		return ErrLoginFailed
	}

	if err := p.store.Save(token); err != nil {
		p.log.Warn().Err(err).Msg("persist credential")
	}

	p.mu.Lock()
	p.token = token
	p.identity = id
	p.active = true
	p.mu.Unlock()

	p.notify(id, true)
	return nil
}

// Signup registers the user and immediately logs in with the same
// credentials. Unlike Login, a signup failure propagates the server's
// message.
func (p *Provider) Signup(ctx context.Context, username, password string) error {
	if err := p.api.Signup(ctx, username, password); err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	return p.Login(ctx, username, password)
}

// Logout clears the stored credential and the identity. It is idempotent
// and never fails.
func (p *Provider) Logout() {
	if err := p.store.Clear(); err != nil {
		p.log.Warn().Err(err).Msg("clear stored credential")
	}

	p.mu.Lock()
	wasActive := p.active
	p.token = ""
	p.identity = domain.Identity{}
	p.active = false
	p.mu.Unlock()

	if wasActive {
		p.notify(domain.Identity{}, false)
	}
}

// Current returns the active identity, if any.
func (p *Provider) Current() (domain.Identity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.identity, p.active
}

// Token returns the raw stored credential, or "" when signed out. The
// gateway uses this as its credential source.
func (p *Provider) Token() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}

// Subscribe registers a listener for identity changes. Listeners are
// invoked on the goroutine performing the change.
func (p *Provider) Subscribe(fn Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *Provider) notify(id domain.Identity, active bool) {
	p.mu.RLock()
	listeners := make([]Listener, len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.RUnlock()

	for _, fn := range listeners {
		fn(id, active)
	}
}
