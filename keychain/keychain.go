// Package keychain stores secrets (API keys, auth sessions) in the
// operating system credential store, with a file-based fallback for
// headless environments.
package keychain

import "errors"

// Service is the credential-store service name all secrets live under.
const Service = "writecraft"

// Well-known account names.
const (
	// APIKeyAccount holds the Anthropic API key.
	APIKeyAccount = "claude-api-key"

	// AuthSessionAccount holds the serialized auth session.
	AuthSessionAccount = "supabase-auth"
)

// ErrNotFound is returned by Get when no secret is stored for the account.
var ErrNotFound = errors.New("keychain: secret not found")

// Store reads and writes named secrets. Implementations must return
// ErrNotFound (possibly wrapped) from Get and Delete when the account
// has no stored secret.
type Store interface {
	Get(account string) (string, error)
	Set(account, secret string) error
	Delete(account string) error
}
