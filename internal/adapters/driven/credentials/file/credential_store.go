package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
	"github.com/aguaralabs/facturante-cli/internal/core/ports/driven"
)

// Ensure CredentialStore implements the interface.
var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore is a file-based implementation of driven.CredentialStore.
// The whole store is one JSON file rewritten on every mutation; runs only
// read it, so the coarse lock is never contended.
type CredentialStore struct {
	mu       sync.RWMutex
	filePath string
	creds    map[domain.TaxID]domain.Credential
}

// NewCredentialStore creates a credential store backed by filePath,
// loading existing credentials if the file exists.
func NewCredentialStore(filePath string) (*CredentialStore, error) {
	s := &CredentialStore{
		filePath: filePath,
		creds:    make(map[domain.TaxID]domain.Credential),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get retrieves the credential for an issuer.
func (s *CredentialStore) Get(_ context.Context, issuer domain.TaxID) (*domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.creds[issuer]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCredentialNotFound, issuer)
	}
	return &cred, nil
}

// Save stores a credential and persists immediately. The creation time
// of an existing entry is preserved.
func (s *CredentialStore) Save(_ context.Context, cred domain.Credential) error {
	if !cred.Issuer.IsValid() {
		return fmt.Errorf("%w: issuer CUIT %q is not 11 digits", domain.ErrInvalidInput, cred.Issuer)
	}
	if cred.ClaveFiscal == "" {
		return fmt.Errorf("%w: clave fiscal must not be empty", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, ok := s.creds[cred.Issuer]; ok {
		cred.CreatedAt = existing.CreatedAt
	} else {
		cred.CreatedAt = now
	}
	cred.UpdatedAt = now

	s.creds[cred.Issuer] = cred
	return s.save()
}

// Delete removes an issuer's credential and persists immediately.
func (s *CredentialStore) Delete(_ context.Context, issuer domain.TaxID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.creds[issuer]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, issuer)
	}
	delete(s.creds, issuer)
	return s.save()
}

// List returns all stored credentials ordered by issuer.
func (s *CredentialStore) List(_ context.Context) ([]domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(), nil
}

// Path returns the backing file path.
func (s *CredentialStore) Path() string {
	return s.filePath
}

// sorted returns the credentials ordered by issuer (caller must hold lock).
func (s *CredentialStore) sorted() []domain.Credential {
	list := make([]domain.Credential, 0, len(s.creds))
	for _, cred := range s.creds {
		list = append(list, cred)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Issuer < list[j].Issuer
	})
	return list
}

// save writes the store to disk with restricted permissions (caller must
// hold lock).
func (s *CredentialStore) save() error {
	data, err := json.MarshalIndent(s.sorted(), "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// load reads the store from disk. A missing file starts the store empty.
func (s *CredentialStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var list []domain.Credential
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(s.filePath), err)
	}
	for _, cred := range list {
		s.creds[cred.Issuer] = cred
	}
	return nil
}
