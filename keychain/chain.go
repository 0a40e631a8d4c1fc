package keychain

import (
	"errors"
	"fmt"
)

// Chain layers several stores. Get returns the first hit; Set writes
// to every store and succeeds if any write succeeds; Delete removes
// the secret everywhere.
type Chain struct {
	stores []Store
}

// NewChain creates a chain over the given stores, in lookup order.
func NewChain(stores ...Store) *Chain {
	return &Chain{stores: stores}
}

// DefaultChain is the OS credential store backed by the per-user file
// fallback, so secrets stay available on headless machines. A final
// in-memory store keeps secrets usable for the session even when both
// durable backends are unavailable.
func DefaultChain() (*Chain, error) {
	dir, err := DefaultFileDir()
	if err != nil {
		return nil, err
	}
	return NewChain(NewKeyring(), NewFile(dir), NewMemory()), nil
}

func (c *Chain) Get(account string) (string, error) {
	var lastErr error
	for _, s := range c.stores {
		secret, err := s.Get(account)
		if err == nil {
			return secret, nil
		}
		if !errors.Is(err, ErrNotFound) {
			lastErr = err
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, account)
}

func (c *Chain) Set(account, secret string) error {
	var errs []error
	for _, s := range c.stores {
		if err := s.Set(account, secret); err != nil {
			errs = append(errs, err)
		}
	}
	// Best effort: only fail when no store accepted the secret.
	if len(errs) == len(c.stores) && len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (c *Chain) Delete(account string) error {
	found := false
	var errs []error
	for _, s := range c.stores {
		err := s.Delete(account)
		switch {
		case err == nil:
			found = true
		case errors.Is(err, ErrNotFound):
		default:
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, account)
	}
	return nil
}
