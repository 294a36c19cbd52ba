package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore reading the four TWITTER_*
// environment variables. Read-only; Store and Delete are unsupported.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(creds *Credentials) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve(label string) (*Credentials, error) {
	creds := &Credentials{
		Label:             label,
		APIKey:            os.Getenv("TWITTER_API_KEY"),
		APISecret:         os.Getenv("TWITTER_API_SECRET"),
		AccessToken:       os.Getenv("TWITTER_ACCESS_TOKEN"),
		AccessTokenSecret: os.Getenv("TWITTER_ACCESS_TOKEN_SECRET"),
		LastModified:      time.Now(),
	}
	if creds.Label == "" {
		creds.Label = DefaultLabel
	}

	if !creds.Complete() {
		return nil, ErrCredentialsNotFound
	}

	return creds, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(label string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(label string) bool {
	creds, err := e.Retrieve(label)
	return err == nil && creds.Complete()
}
