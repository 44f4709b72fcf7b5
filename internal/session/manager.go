package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dropanchor/anchor-go/internal/domain"
)

// State is the credential lifecycle state.
type State int

const (
	StateUnauthenticated State = iota
	StateValid
	StateExpired
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateValid:
		return "valid"
	case StateExpired:
		return "expired"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// API is the remote session surface the manager drives.
type API interface {
	Login(ctx context.Context, identifier, password string) (*domain.Credential, error)
	Validate(ctx context.Context, cred *domain.Credential) (*domain.Credential, error)
	Refresh(ctx context.Context, cred *domain.Credential) (*domain.Credential, error)
	SignOut(ctx context.Context, cred *domain.Credential) error
}

// DefaultExpiryWindow is how close to expiry a credential may get before it
// is treated as expired and refreshed.
const DefaultExpiryWindow = 60 * time.Second

// Manager is the credential lifecycle state machine. Transitions are
// serialized by a mutex (single writer); the credential itself lives in an
// atomic-swap cell so concurrent readers never observe a torn bundle.
type Manager struct {
	store  CredentialStore
	api    API
	window time.Duration
	logger *slog.Logger

	mu    sync.Mutex
	state State
	cred  atomic.Pointer[domain.Credential]
}

type Option func(*Manager)

func WithExpiryWindow(d time.Duration) Option {
	return func(m *Manager) { m.window = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func NewManager(store CredentialStore, api API, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		api:    api,
		window: DefaultExpiryWindow,
		logger: slog.Default(),
		state:  StateUnauthenticated,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load pulls the stored credential bundle, if any, and settles the initial
// state. A load failure is not an error: it just stays unauthenticated.
func (m *Manager) Load() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, err := m.store.Load()
	if err != nil || cred == nil {
		m.state = StateUnauthenticated
		return m.state
	}

	m.cred.Store(cred)
	if cred.ExpiresWithin(m.window) {
		m.state = StateExpired
	} else {
		m.state = StateValid
	}
	return m.state
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns the credential without blocking on writers. May be stale
// across a concurrent refresh, but never partially updated.
func (m *Manager) Current() *domain.Credential {
	return m.cred.Load()
}

// GetValidCredentials returns a credential that is good for at least the
// expiry window, refreshing synchronously if needed. A failed refresh signs
// the session out; callers get NotAuthenticated from then on.
func (m *Manager) GetValidCredentials(ctx context.Context) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateValid:
		cred := m.cred.Load()
		if !cred.ExpiresWithin(m.window) {
			return cred, nil
		}
		m.state = StateExpired
		return m.refreshLocked(ctx)
	case StateExpired:
		return m.refreshLocked(ctx)
	default:
		return nil, domain.NotAuthenticatedError{Reason: "no active session"}
	}
}

// refreshLocked performs a single refresh attempt. Caller holds mu.
func (m *Manager) refreshLocked(ctx context.Context) (*domain.Credential, error) {
	m.state = StateRefreshing

	refreshed, err := m.api.Refresh(ctx, m.cred.Load())
	if err != nil {
		m.logger.Warn("token refresh failed, signing out", "error", err)
		if cerr := m.store.Clear(); cerr != nil {
			m.logger.Warn("failed to clear credential store", "error", cerr)
		}
		m.cred.Store(nil)
		m.state = StateUnauthenticated
		return nil, domain.NotAuthenticatedError{Reason: "token refresh failed"}
	}

	if serr := m.store.Save(refreshed); serr != nil {
		m.logger.Warn("failed to persist refreshed credential", "error", serr)
	}
	m.cred.Store(refreshed)
	m.state = StateValid
	return refreshed, nil
}

// SignIn establishes a fresh session and persists the credential.
func (m *Manager) SignIn(ctx context.Context, identifier, password string) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred, err := m.api.Login(ctx, identifier, password)
	if err != nil {
		return nil, err
	}

	if serr := m.store.Save(cred); serr != nil {
		m.logger.Warn("failed to persist credential", "error", serr)
	}
	m.cred.Store(cred)
	m.state = StateValid
	return cred, nil
}

// SignOut revokes the remote session best-effort and always ends up
// unauthenticated locally.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cred := m.cred.Load(); cred != nil {
		if err := m.api.SignOut(ctx, cred); err != nil {
			m.logger.Warn("remote sign-out failed", "error", err)
		}
	}

	err := m.store.Clear()
	m.cred.Store(nil)
	m.state = StateUnauthenticated
	return err
}

// Validate is the launch/resume hygiene pass: confirm the token is still
// accepted server-side, fall back to one refresh on rejection, sign out if
// that fails too. Transport failures leave the state untouched.
func (m *Manager) Validate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred := m.cred.Load()
	if m.state == StateUnauthenticated || cred == nil {
		return domain.NotAuthenticatedError{Reason: "no active session"}
	}

	updated, err := m.api.Validate(ctx, cred)
	if err == nil {
		m.cred.Store(updated)
		m.state = StateValid
		if serr := m.store.Save(updated); serr != nil {
			m.logger.Warn("failed to persist validated credential", "error", serr)
		}
		return nil
	}

	if errors.Is(err, domain.ErrNetwork) {
		// Can't tell whether the session is bad; keep it for now.
		return err
	}

	if _, rerr := m.refreshLocked(ctx); rerr != nil {
		return rerr
	}
	return nil
}
