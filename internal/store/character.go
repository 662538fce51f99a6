package store

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/valkyrja/ro2go/internal/model"
)

// Character ids are drawn from [CharacterIDFloor, 2^32). The floor keeps
// them clear of the account-id range the client reserves.
const CharacterIDFloor = 2_000_000

// charCreateRetries bounds the random-id draw; collisions are vanishingly
// rare at realistic densities, so the cap only guards against a full store.
const charCreateRetries = 100

// CharacterStore keeps characters in a primary map by id and a secondary
// index account id -> character ids. Both stay consistent under one lock.
type CharacterStore struct {
	mu        sync.RWMutex
	byID      map[uint32]*model.Character
	byAccount map[uint32][]uint32
}

// NewCharacterStore returns an empty store.
func NewCharacterStore() *CharacterStore {
	return &CharacterStore{
		byID:      make(map[uint32]*model.Character),
		byAccount: make(map[uint32][]uint32),
	}
}

// Create allocates a fresh character id and inserts a default level-1
// character for the account. The caller fills name/slot/class/sex afterwards
// and persists with Update.
func (s *CharacterStore) Create(accountID uint32) (model.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for range charCreateRetries {
		id := CharacterIDFloor + rand.Uint32N(1<<32-CharacterIDFloor)
		if _, taken := s.byID[id]; taken {
			continue
		}
		ch := model.NewCharacter(id, accountID)
		s.byID[id] = ch
		s.byAccount[accountID] = append(s.byAccount[accountID], id)
		return *ch, nil
	}
	return model.Character{}, ErrIDSpaceExhausted
}

// Update overwrites an existing character record.
func (s *CharacterStore) Update(ch model.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.byID[ch.ID]
	if !ok {
		return fmt.Errorf("character %d: %w", ch.ID, ErrNotFound)
	}
	if old.AccountID != ch.AccountID {
		return fmt.Errorf("character %d: account id is immutable", ch.ID)
	}
	cp := ch
	s.byID[ch.ID] = &cp
	return nil
}

// Delete removes the character from both maps.
func (s *CharacterStore) Delete(id uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("character %d: %w", id, ErrNotFound)
	}
	delete(s.byID, id)

	ids := s.byAccount[ch.AccountID]
	ids = slices.DeleteFunc(ids, func(cid uint32) bool { return cid == id })
	if len(ids) == 0 {
		delete(s.byAccount, ch.AccountID)
	} else {
		s.byAccount[ch.AccountID] = ids
	}
	return nil
}

// GetByID returns a copy of the character.
func (s *CharacterStore) GetByID(id uint32) (model.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ch, ok := s.byID[id]
	if !ok {
		return model.Character{}, fmt.Errorf("character %d: %w", id, ErrNotFound)
	}
	return *ch, nil
}

// GetByAccountID returns copies of all characters on the account, ordered
// by slot.
func (s *CharacterStore) GetByAccountID(accountID uint32) []model.Character {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byAccount[accountID]
	out := make([]model.Character, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.byID[id])
	}
	slices.SortFunc(out, func(a, b model.Character) int {
		return int(a.Slot) - int(b.Slot)
	})
	return out
}

// GetBySlot resolves one character by its (account, slot) position.
func (s *CharacterStore) GetBySlot(accountID uint32, slot uint8) (model.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.byAccount[accountID] {
		if ch := s.byID[id]; ch.Slot == slot {
			return *ch, nil
		}
	}
	return model.Character{}, fmt.Errorf("account %d slot %d: %w", accountID, slot, ErrNotFound)
}

// CountByAccount returns how many characters the account holds.
func (s *CharacterStore) CountByAccount(accountID uint32) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byAccount[accountID])
}

// MoveSlot moves the character at from to the to slot. When to is occupied
// the two characters swap places; the whole move is atomic.
func (s *CharacterStore) MoveSlot(accountID uint32, from, to uint8) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var src, dst *model.Character
	for _, id := range s.byAccount[accountID] {
		switch ch := s.byID[id]; ch.Slot {
		case from:
			src = ch
		case to:
			dst = ch
		}
	}
	if src == nil {
		return fmt.Errorf("account %d slot %d: %w", accountID, from, ErrNotFound)
	}
	src.Slot = to
	if dst != nil {
		dst.Slot = from
	}
	return nil
}
