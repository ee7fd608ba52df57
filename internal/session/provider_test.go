package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sarcastic-Soul/storefront/internal/credstore"
	"github.com/Sarcastic-Soul/storefront/internal/domain"
)

type mockAuthAPI struct {
	mu        sync.Mutex
	token     string
	loginErr  error
	signupErr error
	logins    int
	signups   int
}

func (m *mockAuthAPI) Login(_ context.Context, _, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logins++
	if m.loginErr != nil {
		return "", m.loginErr
	}
	return m.token, nil
}

func (m *mockAuthAPI) Signup(_ context.Context, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signups++
	return m.signupErr
}

func testToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	return "hdr." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func TestDecodeCredential(t *testing.T) {
	t.Run("role claim", func(t *testing.T) {
		id, err := DecodeCredential(testToken(t, map[string]any{"sub": "alice", "role": "ADMIN"}))
		require.NoError(t, err)
		assert.Equal(t, domain.Identity{Username: "alice", Role: domain.RoleAdmin}, id)
	})

	t.Run("first of roles list", func(t *testing.T) {
		id, err := DecodeCredential(testToken(t, map[string]any{"sub": "bob", "roles": []string{"CUSTOMER", "ADMIN"}}))
		require.NoError(t, err)
		assert.Equal(t, domain.RoleCustomer, id.Role)
	})

	t.Run("backend USER role maps to customer", func(t *testing.T) {
		id, err := DecodeCredential(testToken(t, map[string]any{"sub": "bob", "roles": []string{"USER"}}))
		require.NoError(t, err)
		assert.Equal(t, domain.Identity{Username: "bob", Role: domain.RoleCustomer}, id)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := DecodeCredential("not-a-credential")
		assert.Error(t, err)
	})

	t.Run("payload is not json", func(t *testing.T) {
		seg := base64.RawURLEncoding.EncodeToString([]byte("junk"))
		_, err := DecodeCredential("hdr." + seg + ".sig")
		assert.Error(t, err)
	})

	t.Run("missing sub", func(t *testing.T) {
		_, err := DecodeCredential(testToken(t, map[string]any{"role": "ADMIN"}))
		assert.Error(t, err)
	})

	t.Run("missing role", func(t *testing.T) {
		_, err := DecodeCredential(testToken(t, map[string]any{"sub": "alice"}))
		assert.Error(t, err)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := DecodeCredential(testToken(t, map[string]any{"sub": "alice", "role": "ROOT"}))
		assert.Error(t, err)
	})
}

func TestProviderRestoresStoredCredential(t *testing.T) {
	token := testToken(t, map[string]any{"sub": "alice", "role": "CUSTOMER"})
	p := NewProvider(&mockAuthAPI{}, credstore.NewMemStore(token), zerolog.Nop())

	id, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "alice", id.Username)
	assert.Equal(t, token, p.Token())
}

func TestProviderClearsJunkStoredCredential(t *testing.T) {
	store := credstore.NewMemStore("garbage")
	p := NewProvider(&mockAuthAPI{}, store, zerolog.Nop())

	_, ok := p.Current()
	assert.False(t, ok)

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, stored, "junk credential is cleared, same as logout")
}

func TestLogin(t *testing.T) {
	token := testToken(t, map[string]any{"sub": "alice", "role": "ADMIN"})
	api := &mockAuthAPI{token: token}
	store := credstore.NewMemStore("")
	p := NewProvider(api, store, zerolog.Nop())

	require.NoError(t, p.Login(context.Background(), "alice", "pw"))

	id, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, domain.RoleAdmin, id.Role)

	stored, _ := store.Load()
	assert.Equal(t, token, stored, "credential persists across restarts")
}

func TestLoginAcceptsRegularAccountToken(t *testing.T) {
	token := testToken(t, map[string]any{"sub": "bob", "roles": []string{"USER"}})
	api := &mockAuthAPI{token: token}
	store := credstore.NewMemStore("")
	p := NewProvider(api, store, zerolog.Nop())

	require.NoError(t, p.Login(context.Background(), "bob", "pw"))

	id, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, domain.RoleCustomer, id.Role)

	// The same token must survive a restart instead of being cleared.
	restored := NewProvider(api, store, zerolog.Nop())
	id, ok = restored.Current()
	require.True(t, ok)
	assert.Equal(t, "bob", id.Username)
}

func TestLoginFailureIsGeneric(t *testing.T) {
	api := &mockAuthAPI{loginErr: errors.New("user alice not found in table users")}
	p := NewProvider(api, credstore.NewMemStore(""), zerolog.Nop())

	err := p.Login(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, ErrLoginFailed)
	assert.NotContains(t, err.Error(), "table users", "server detail must not leak")

	_, ok := p.Current()
	assert.False(t, ok)
}

func TestSignupAutoLogin(t *testing.T) {
	token := testToken(t, map[string]any{"sub": "bob", "role": "CUSTOMER"})
	api := &mockAuthAPI{token: token}
	p := NewProvider(api, credstore.NewMemStore(""), zerolog.Nop())

	require.NoError(t, p.Signup(context.Background(), "bob", "pw"))

	assert.Equal(t, 1, api.signups)
	assert.Equal(t, 1, api.logins)
	id, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "bob", id.Username)
}

func TestSignupFailurePropagatesServerMessage(t *testing.T) {
	api := &mockAuthAPI{signupErr: errors.New("username already taken")}
	p := NewProvider(api, credstore.NewMemStore(""), zerolog.Nop())

	err := p.Signup(context.Background(), "bob", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username already taken")
	assert.Equal(t, 0, api.logins)
}

func TestLogoutIsIdempotent(t *testing.T) {
	token := testToken(t, map[string]any{"sub": "alice", "role": "CUSTOMER"})
	store := credstore.NewMemStore(token)
	p := NewProvider(&mockAuthAPI{}, store, zerolog.Nop())

	var mu sync.Mutex
	var events []bool
	p.Subscribe(func(_ domain.Identity, active bool) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, active)
	})

	p.Logout()
	p.Logout()

	_, ok := p.Current()
	assert.False(t, ok)
	assert.Empty(t, p.Token())

	stored, _ := store.Load()
	assert.Empty(t, stored)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{false}, events, "second logout must not notify again")
}

func TestListenersSeeLoginAndLogout(t *testing.T) {
	token := testToken(t, map[string]any{"sub": "alice", "role": "CUSTOMER"})
	api := &mockAuthAPI{token: token}
	p := NewProvider(api, credstore.NewMemStore(""), zerolog.Nop())

	var mu sync.Mutex
	type event struct {
		username string
		active   bool
	}
	var events []event
	p.Subscribe(func(id domain.Identity, active bool) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, event{id.Username, active})
	})

	require.NoError(t, p.Login(context.Background(), "alice", "pw"))
	p.Logout()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 2)
	assert.Equal(t, event{"alice", true}, events[0])
	assert.Equal(t, event{"", false}, events[1])
}
