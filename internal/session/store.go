// Package session owns the credential lifecycle: loading, expiry-driven
// refresh, and sign-out. It is the only component that mutates credentials.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/dropanchor/anchor-go/internal/domain"
)

// CredentialStore is the opaque persistence collaborator for the credential
// bundle. Implementations must treat the bundle as a single unit.
type CredentialStore interface {
	Load() (*domain.Credential, error)
	Save(cred *domain.Credential) error
	Clear() error
}

// FileStore keeps the credential bundle in a mode-0600 JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() (*domain.Credential, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrMissingCredentials
		}
		return nil, errors.Wrap(err, "failed to read credential file")
	}

	var cred domain.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, errors.Wrap(err, "failed to decode credential file")
	}
	if cred.AccessToken == "" {
		return nil, domain.ErrMissingCredentials
	}

	return &cred, nil
}

func (s *FileStore) Save(cred *domain.Credential) error {
	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode credential")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "failed to create credential dir")
	}

	// Write-then-rename so a crash never leaves a torn bundle.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "failed to write credential file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "failed to replace credential file")
	}

	return nil
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove credential file")
	}
	return nil
}
