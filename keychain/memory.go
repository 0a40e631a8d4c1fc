package keychain

import (
	"fmt"
	"sync"
)

// Memory is an in-process store, used in tests and as a last-resort
// fallback. Secrets do not survive the process.
type Memory struct {
	mu      sync.RWMutex
	secrets map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{secrets: make(map[string]string)}
}

func (m *Memory) Get(account string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	secret, ok := m.secrets[account]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, account)
	}
	return secret, nil
}

func (m *Memory) Set(account, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.secrets[account] = secret
	return nil
}

func (m *Memory) Delete(account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.secrets[account]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, account)
	}
	delete(m.secrets, account)
	return nil
}
