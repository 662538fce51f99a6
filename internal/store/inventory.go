package store

import (
	"fmt"
	"sync"

	"github.com/valkyrja/ro2go/internal/model"
)

// InventoryStore keeps one inventory per character id.
type InventoryStore struct {
	mu   sync.RWMutex
	byID map[uint32]*model.Inventory
}

// NewInventoryStore returns an empty store.
func NewInventoryStore() *InventoryStore {
	return &InventoryStore{byID: make(map[uint32]*model.Inventory)}
}

// Create installs a new inventory for the character, seeded from the
// starting-fixture items.
func (s *InventoryStore) Create(characterID uint32, items []model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byID[characterID]; taken {
		return fmt.Errorf("inventory %d: already exists", characterID)
	}
	s.byID[characterID] = model.NewInventory(characterID, items)
	return nil
}

// Get returns a copy of the character's inventory.
func (s *InventoryStore) Get(characterID uint32) (model.Inventory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.byID[characterID]
	if !ok {
		return model.Inventory{}, fmt.Errorf("inventory %d: %w", characterID, ErrNotFound)
	}
	cp := *inv
	cp.Items = append([]model.Item(nil), inv.Items...)
	return cp, nil
}

// Update overwrites the character's inventory.
func (s *InventoryStore) Update(inv model.Inventory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[inv.CharacterID]; !ok {
		return fmt.Errorf("inventory %d: %w", inv.CharacterID, ErrNotFound)
	}
	s.byID[inv.CharacterID] = model.NewInventory(inv.CharacterID, inv.Items)
	return nil
}

// Delete removes the inventory; cascades with character deletion.
func (s *InventoryStore) Delete(characterID uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, characterID)
}
