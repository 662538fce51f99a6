package store

import (
	"fmt"

	"github.com/valkyrja/ro2go/internal/model"
)

// Snapshot/Restore pairs back the optional SQL persistence: the binaries
// hydrate the stores at boot and write them back on shutdown.

// Snapshot returns a copy of every account.
func (s *AccountStore) Snapshot() []model.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Account, 0, len(s.byID))
	for _, acc := range s.byID {
		out = append(out, *acc)
	}
	return out
}

// Restore inserts loaded accounts into an empty store.
func (s *AccountStore) Restore(accs []model.Account) error {
	for _, acc := range accs {
		cp := acc
		if err := s.insert(&cp); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns a copy of every character.
func (s *CharacterStore) Snapshot() []model.Character {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Character, 0, len(s.byID))
	for _, ch := range s.byID {
		out = append(out, *ch)
	}
	return out
}

// Restore inserts loaded characters into an empty store.
func (s *CharacterStore) Restore(chars []model.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range chars {
		if _, taken := s.byID[ch.ID]; taken {
			return fmt.Errorf("character %d: duplicate in snapshot", ch.ID)
		}
		cp := ch
		s.byID[ch.ID] = &cp
		s.byAccount[ch.AccountID] = append(s.byAccount[ch.AccountID], ch.ID)
	}
	return nil
}

// Snapshot returns a copy of every inventory.
func (s *InventoryStore) Snapshot() []model.Inventory {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Inventory, 0, len(s.byID))
	for _, inv := range s.byID {
		cp := *inv
		cp.Items = append([]model.Item(nil), inv.Items...)
		out = append(out, cp)
	}
	return out
}

// Restore inserts loaded inventories into an empty store.
func (s *InventoryStore) Restore(invs []model.Inventory) error {
	for _, inv := range invs {
		if err := s.Create(inv.CharacterID, inv.Items); err != nil {
			return err
		}
	}
	return nil
}
