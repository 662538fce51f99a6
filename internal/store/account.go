package store

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/valkyrja/ro2go/internal/model"
)

// createRetries bounds the random-id draw on account creation.
const createRetries = 10

// Dev fixture installed by Init.
const (
	DevAccountID       = 2_000_042
	DevAccountUser     = "sadroeck"
	DevAccountPassword = "olasenor"
)

// AccountStore is the in-memory account database. A secondary index keyed by
// user id backs GetByUser so login does not scan the primary map.
type AccountStore struct {
	mu     sync.RWMutex
	byID   map[uint32]*model.Account
	byUser map[string]uint32
}

// NewAccountStore returns an empty store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		byID:   make(map[uint32]*model.Account),
		byUser: make(map[string]uint32),
	}
}

// Init installs the development fixture account.
func (s *AccountStore) Init() error {
	acc := model.NewAccount(DevAccountID, DevAccountUser,
		model.CleartextPassword(DevAccountPassword), model.Male)
	return s.insert(acc)
}

// Create allocates a random account id and inserts the account. The caller
// leaves ID zero; on return it is filled in. Collisions retry with a fresh
// id up to 10 times before failing with ErrAccountExists.
func (s *AccountStore) Create(acc *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUser[acc.UserID]; taken {
		return fmt.Errorf("user %q: %w", acc.UserID, ErrAccountExists)
	}

	for range createRetries {
		id := rand.Uint32()
		if _, taken := s.byID[id]; taken {
			continue
		}
		acc.ID = id
		cp := *acc
		s.byID[id] = &cp
		s.byUser[acc.UserID] = id
		return nil
	}
	return ErrAccountExists
}

// Delete removes the account and its user-id index entry.
func (s *AccountStore) Delete(id uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	delete(s.byID, id)
	delete(s.byUser, acc.UserID)
	return nil
}

// GetByID returns a copy of the account.
func (s *AccountStore) GetByID(id uint32) (model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.byID[id]
	if !ok {
		return model.Account{}, fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	return *acc, nil
}

// GetByUser returns a copy of the account with the given user id.
func (s *AccountStore) GetByUser(userID string) (model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUser[userID]
	if !ok {
		return model.Account{}, fmt.Errorf("user %q: %w", userID, ErrNotFound)
	}
	return *s.byID[id], nil
}

// Save overwrites an existing account record.
func (s *AccountStore) Save(acc model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byID[acc.ID]
	if !ok {
		return fmt.Errorf("account %d: %w", acc.ID, ErrNotFound)
	}
	if old.UserID != acc.UserID {
		delete(s.byUser, old.UserID)
		s.byUser[acc.UserID] = acc.ID
	}
	cp := acc
	s.byID[acc.ID] = &cp
	return nil
}

// EnableWebToken stores a fresh web-auth token on the account.
func (s *AccountStore) EnableWebToken(id uint32, token [16]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	acc.WebAuthToken = token
	return nil
}

// DisableWebToken clears the account's web-auth token.
func (s *AccountStore) DisableWebToken(id uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("account %d: %w", id, ErrNotFound)
	}
	acc.WebAuthToken = [16]byte{}
	return nil
}

// PurgeWebTokens clears every stored token, e.g. on server shutdown.
func (s *AccountStore) PurgeWebTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range s.byID {
		acc.WebAuthToken = [16]byte{}
	}
}

// Count returns the number of stored accounts.
func (s *AccountStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *AccountStore) insert(acc *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byID[acc.ID]; taken {
		return fmt.Errorf("account %d: %w", acc.ID, ErrAccountExists)
	}
	if _, taken := s.byUser[acc.UserID]; taken {
		return fmt.Errorf("user %q: %w", acc.UserID, ErrAccountExists)
	}
	cp := *acc
	s.byID[acc.ID] = &cp
	s.byUser[acc.UserID] = acc.ID
	return nil
}
