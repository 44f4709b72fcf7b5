package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dropanchor/anchor-go/internal/domain"
)

type mockStore struct {
	cred    *domain.Credential
	loadErr error
	saved   *domain.Credential
	cleared int
}

func (m *mockStore) Load() (*domain.Credential, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.cred, nil
}

func (m *mockStore) Save(cred *domain.Credential) error {
	m.saved = cred
	return nil
}

func (m *mockStore) Clear() error {
	m.cleared++
	return nil
}

type mockAPI struct {
	refreshCalls  int
	refreshErr    error
	validateCalls int
	validateErr   error
	signOutCalls  int
}

func (m *mockAPI) Login(ctx context.Context, identifier, password string) (*domain.Credential, error) {
	return &domain.Credential{Handle: identifier, AccessToken: "fresh"}, nil
}

func (m *mockAPI) Validate(ctx context.Context, cred *domain.Credential) (*domain.Credential, error) {
	m.validateCalls++
	if m.validateErr != nil {
		return nil, m.validateErr
	}
	return cred, nil
}

func (m *mockAPI) Refresh(ctx context.Context, cred *domain.Credential) (*domain.Credential, error) {
	m.refreshCalls++
	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	return &domain.Credential{
		Handle:      cred.Handle,
		AccessToken: "refreshed",
		Expiry:      time.Now().Add(time.Hour),
	}, nil
}

func (m *mockAPI) SignOut(ctx context.Context, cred *domain.Credential) error {
	m.signOutCalls++
	return nil
}

func validCred() *domain.Credential {
	return &domain.Credential{
		Handle:      "alice.bsky.social",
		AccessToken: "token",
		Expiry:      time.Now().Add(time.Hour),
	}
}

func expiredCred() *domain.Credential {
	return &domain.Credential{
		Handle:      "alice.bsky.social",
		AccessToken: "stale",
		Expiry:      time.Now().Add(-time.Minute),
	}
}

func TestGetValidCredentialsPassthrough(t *testing.T) {
	store := &mockStore{cred: validCred()}
	api := &mockAPI{}
	m := NewManager(store, api)

	if got := m.Load(); got != StateValid {
		t.Fatalf("expected valid state after load, got %s", got)
	}

	cred, err := m.GetValidCredentials(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred.AccessToken != "token" {
		t.Fatalf("expected stored token, got %s", cred.AccessToken)
	}
	if api.refreshCalls != 0 {
		t.Fatalf("expected no refresh, got %d", api.refreshCalls)
	}
}

func TestGetValidCredentialsRefreshesExpired(t *testing.T) {
	store := &mockStore{cred: expiredCred()}
	api := &mockAPI{}
	m := NewManager(store, api)

	if got := m.Load(); got != StateExpired {
		t.Fatalf("expected expired state after load, got %s", got)
	}

	cred, err := m.GetValidCredentials(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred.AccessToken != "refreshed" {
		t.Fatalf("expected refreshed token, got %s", cred.AccessToken)
	}
	if api.refreshCalls != 1 {
		t.Fatalf("expected exactly one refresh, got %d", api.refreshCalls)
	}
	if store.saved == nil || store.saved.AccessToken != "refreshed" {
		t.Fatalf("expected refreshed credential to be persisted")
	}
	if m.State() != StateValid {
		t.Fatalf("expected valid state, got %s", m.State())
	}
}

func TestRefreshFailureSignsOut(t *testing.T) {
	store := &mockStore{cred: expiredCred()}
	api := &mockAPI{refreshErr: errors.New("expired refresh token")}
	m := NewManager(store, api)
	m.Load()

	_, err := m.GetValidCredentials(context.Background())
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected NotAuthenticated, got %v", err)
	}
	if store.cleared != 1 {
		t.Fatalf("expected stored credential to be cleared once, got %d", store.cleared)
	}
	if m.State() != StateUnauthenticated {
		t.Fatalf("expected unauthenticated state, got %s", m.State())
	}

	// A subsequent call fails fast without a second refresh attempt.
	_, err = m.GetValidCredentials(context.Background())
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected NotAuthenticated, got %v", err)
	}
	if api.refreshCalls != 1 {
		t.Fatalf("expected exactly one refresh attempt, got %d", api.refreshCalls)
	}
}

func TestLoadFailureStaysUnauthenticated(t *testing.T) {
	store := &mockStore{loadErr: domain.ErrMissingCredentials}
	m := NewManager(store, &mockAPI{})

	if got := m.Load(); got != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", got)
	}

	_, err := m.GetValidCredentials(context.Background())
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected NotAuthenticated, got %v", err)
	}
}

func TestSignOutAlwaysEndsUnauthenticated(t *testing.T) {
	store := &mockStore{cred: validCred()}
	api := &mockAPI{}
	m := NewManager(store, api)
	m.Load()

	if err := m.SignOut(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.signOutCalls != 1 {
		t.Fatalf("expected remote sign-out, got %d calls", api.signOutCalls)
	}
	if store.cleared != 1 {
		t.Fatalf("expected store clear, got %d", store.cleared)
	}
	if m.State() != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", m.State())
	}
	if m.Current() != nil {
		t.Fatalf("expected no current credential")
	}
}

func TestValidateRefreshFallback(t *testing.T) {
	store := &mockStore{cred: validCred()}
	api := &mockAPI{validateErr: domain.ServerError{Status: 401, Code: "ExpiredToken"}}
	m := NewManager(store, api)
	m.Load()

	if err := m.Validate(context.Background()); err != nil {
		t.Fatalf("expected refresh fallback to recover, got %v", err)
	}
	if api.refreshCalls != 1 {
		t.Fatalf("expected one refresh, got %d", api.refreshCalls)
	}
	if m.State() != StateValid {
		t.Fatalf("expected valid state, got %s", m.State())
	}
}

func TestValidateRejectionThenRefreshFailureSignsOut(t *testing.T) {
	store := &mockStore{cred: validCred()}
	api := &mockAPI{
		validateErr: domain.ServerError{Status: 401, Code: "ExpiredToken"},
		refreshErr:  errors.New("nope"),
	}
	m := NewManager(store, api)
	m.Load()

	err := m.Validate(context.Background())
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected NotAuthenticated, got %v", err)
	}
	if m.State() != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", m.State())
	}
	if store.cleared != 1 {
		t.Fatalf("expected store clear, got %d", store.cleared)
	}
}

func TestValidateNetworkErrorKeepsSession(t *testing.T) {
	store := &mockStore{cred: validCred()}
	api := &mockAPI{validateErr: domain.NetworkError{Cause: errors.New("timeout")}}
	m := NewManager(store, api)
	m.Load()

	err := m.Validate(context.Background())
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if api.refreshCalls != 0 {
		t.Fatalf("expected no refresh on transport failure, got %d", api.refreshCalls)
	}
	if m.State() != StateValid {
		t.Fatalf("expected session to survive transport failure, got %s", m.State())
	}
}
