package model

// Item is one inventory stack. The JSON shape is the persisted layout for
// fixtures and the optional SQL backend.
type Item struct {
	ID           uint32 `json:"id"`
	Slot         uint16 `json:"slot"`
	Amount       uint16 `json:"amount"`
	Identified   bool   `json:"identified"`
	EquippedSlot *uint8 `json:"equipped_slot,omitempty"`
}

// NewItem builds an identified, unequipped stack.
func NewItem(id uint32, slot, amount uint16) Item {
	return Item{ID: id, Slot: slot, Amount: amount, Identified: true}
}

// Equipped reports whether the stack sits in an equip slot.
func (i Item) Equipped() bool {
	return i.EquippedSlot != nil
}

// Inventory is everything a character carries. Created with the character
// from the starting fixture, destroyed with it.
type Inventory struct {
	CharacterID uint32 `json:"character_id"`
	Items       []Item `json:"items"`
}

// NewInventory clones the fixture items for a fresh character.
func NewInventory(characterID uint32, items []Item) *Inventory {
	inv := &Inventory{
		CharacterID: characterID,
		Items:       make([]Item, len(items)),
	}
	copy(inv.Items, items)
	return inv
}
