package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultLabel names the credential set used when none is specified
const DefaultLabel = "default"

// Credentials holds one set of Twitter API v2 user-context secrets
type Credentials struct {
	Label             string    `json:"label"`
	APIKey            string    `json:"api_key"`
	APISecret         string    `json:"api_secret"`
	AccessToken       string    `json:"access_token"`
	AccessTokenSecret string    `json:"access_token_secret"`
	LastModified      time.Time `json:"last_modified"`
}

// Complete reports whether all four secrets are present
func (c *Credentials) Complete() bool {
	return c != nil &&
		c.APIKey != "" &&
		c.APISecret != "" &&
		c.AccessToken != "" &&
		c.AccessTokenSecret != ""
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	// Store saves a credential set
	Store(creds *Credentials) error

	// Retrieve gets the credential set with the given label
	Retrieve(label string) (*Credentials, error)

	// Delete removes the credential set with the given label
	Delete(label string) error

	// Exists checks if a credential set exists for the label
	Exists(label string) bool
}

// Sentinel errors shared by all stores
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager backed by the system keychain
// when available, an encrypted file fallback, and the process environment
// as a read-only last resort.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	keyringStore, err := NewKeyringStore()
	if err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager with explicit stores (used by tests)
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves credentials using the first store that accepts them
func (m *Manager) Store(creds *Credentials) error {
	if creds == nil || !creds.Complete() {
		return ErrInvalidCredentials
	}
	if creds.Label == "" {
		creds.Label = DefaultLabel
	}
	creds.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(creds); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return errors.New("no available credential stores")
}

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve(label string) (*Credentials, error) {
	if label == "" {
		label = DefaultLabel
	}
	for _, store := range m.stores {
		if creds, err := store.Retrieve(label); err == nil && creds != nil {
			return creds, nil
		}
	}
	return nil, ErrCredentialsNotFound
}

// Delete removes credentials from every store that has them
func (m *Manager) Delete(label string) error {
	if label == "" {
		label = DefaultLabel
	}
	deleted := false
	for _, store := range m.stores {
		if err := store.Delete(label); err == nil {
			deleted = true
		}
	}
	if !deleted {
		return ErrCredentialsNotFound
	}
	return nil
}

// Exists checks whether any store holds credentials for the label
func (m *Manager) Exists(label string) bool {
	if label == "" {
		label = DefaultLabel
	}
	for _, store := range m.stores {
		if store.Exists(label) {
			return true
		}
	}
	return false
}

// getConfigDir returns the per-user configuration directory for xid
func getConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "xid"), nil
}
