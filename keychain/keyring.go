package keychain

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// Keyring stores secrets in the operating system credential store
// (macOS Keychain, Windows Credential Manager, Secret Service on Linux).
type Keyring struct {
	service string
}

// NewKeyring creates a Keyring under the default service name.
func NewKeyring() *Keyring {
	return &Keyring{service: Service}
}

func (k *Keyring) Get(account string) (string, error) {
	secret, err := keyring.Get(k.service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, account)
	}
	if err != nil {
		return "", fmt.Errorf("keyring get %s: %w", account, err)
	}
	return secret, nil
}

func (k *Keyring) Set(account, secret string) error {
	if err := keyring.Set(k.service, account, secret); err != nil {
		return fmt.Errorf("keyring set %s: %w", account, err)
	}
	return nil
}

func (k *Keyring) Delete(account string) error {
	err := keyring.Delete(k.service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, account)
	}
	if err != nil {
		return fmt.Errorf("keyring delete %s: %w", account, err)
	}
	return nil
}
