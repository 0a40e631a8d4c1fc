package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/writecraft/writecraft-go/keychain"
)

// Store persists the active session as JSON in the keychain under the
// auth session account.
type Store struct {
	creds keychain.Store
}

// NewStore creates a session store over the given credential store.
func NewStore(creds keychain.Store) *Store {
	return &Store{creds: creds}
}

// Load returns the stored session, or ErrNotAuthenticated when none is
// stored or the stored blob does not parse.
func (s *Store) Load() (*Session, error) {
	raw, err := s.creds.Get(keychain.AuthSessionAccount)
	if errors.Is(err, keychain.ErrNotFound) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		// A corrupt blob is unrecoverable; treat it as signed out.
		return nil, ErrNotAuthenticated
	}
	return &session, nil
}

// Save stores the session, replacing any previous one.
func (s *Store) Save(session *Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := s.creds.Set(keychain.AuthSessionAccount, string(raw)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes the stored session. Clearing an absent session is not
// an error.
func (s *Store) Clear() error {
	err := s.creds.Delete(keychain.AuthSessionAccount)
	if err != nil && !errors.Is(err, keychain.ErrNotFound) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
