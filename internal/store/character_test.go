package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valkyrja/ro2go/internal/model"
)

func createTestCharacter(t *testing.T, s *CharacterStore, accountID uint32, slot uint8, name string) model.Character {
	t.Helper()
	ch, err := s.Create(accountID)
	require.NoError(t, err)
	ch.Slot = slot
	ch.Name = name
	require.NoError(t, s.Update(ch))
	return ch
}

func TestCharacterStoreCreate(t *testing.T) {
	s := NewCharacterStore()

	ch, err := s.Create(42)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, ch.ID, uint32(CharacterIDFloor))
	assert.Equal(t, uint32(42), ch.AccountID)
	assert.Equal(t, uint16(1), ch.Experience.BaseLevel)
	assert.Equal(t, uint32(40), ch.Status.MaxHP)

	got, err := s.GetByID(ch.ID)
	require.NoError(t, err)
	assert.Equal(t, ch, got)
	assert.Equal(t, 1, s.CountByAccount(42))
}

func TestCharacterStoreIndexesStayConsistent(t *testing.T) {
	s := NewCharacterStore()
	a := createTestCharacter(t, s, 42, 0, "first")
	b := createTestCharacter(t, s, 42, 1, "second")
	createTestCharacter(t, s, 77, 0, "other")

	list := s.GetByAccountID(42)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)
	for _, ch := range list {
		got, err := s.GetByID(ch.ID)
		require.NoError(t, err)
		assert.Equal(t, ch.AccountID, got.AccountID)
	}

	require.NoError(t, s.Delete(a.ID))
	list = s.GetByAccountID(42)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
	_, err := s.GetByID(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(b.ID))
	assert.Empty(t, s.GetByAccountID(42))
	assert.Equal(t, 1, s.CountByAccount(77))
}

func TestCharacterStoreGetBySlot(t *testing.T) {
	s := NewCharacterStore()
	createTestCharacter(t, s, 42, 3, "slotted")

	ch, err := s.GetBySlot(42, 3)
	require.NoError(t, err)
	assert.Equal(t, "slotted", ch.Name)

	_, err = s.GetBySlot(42, 0)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetBySlot(99, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCharacterStoreUpdateGuards(t *testing.T) {
	s := NewCharacterStore()
	ch := createTestCharacter(t, s, 42, 0, "hero")

	ch.AccountID = 43
	assert.Error(t, s.Update(ch))

	ghost := model.NewCharacter(1, 42)
	assert.ErrorIs(t, s.Update(*ghost), ErrNotFound)
}

func TestCharacterStoreMoveSlot(t *testing.T) {
	s := NewCharacterStore()
	a := createTestCharacter(t, s, 42, 0, "a")
	b := createTestCharacter(t, s, 42, 5, "b")

	t.Run("move to free slot", func(t *testing.T) {
		require.NoError(t, s.MoveSlot(42, 0, 2))
		got, err := s.GetByID(a.ID)
		require.NoError(t, err)
		assert.Equal(t, uint8(2), got.Slot)
	})

	t.Run("move to occupied slot swaps", func(t *testing.T) {
		require.NoError(t, s.MoveSlot(42, 2, 5))
		gotA, err := s.GetByID(a.ID)
		require.NoError(t, err)
		gotB, err := s.GetByID(b.ID)
		require.NoError(t, err)
		assert.Equal(t, uint8(5), gotA.Slot)
		assert.Equal(t, uint8(2), gotB.Slot)
	})

	t.Run("empty source slot fails", func(t *testing.T) {
		assert.ErrorIs(t, s.MoveSlot(42, 9, 1), ErrNotFound)
	})
}

func TestCharacterStoreConcurrentCreate(t *testing.T) {
	s := NewCharacterStore()

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(42)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list := s.GetByAccountID(42)
	assert.Len(t, list, 32)
	seen := make(map[uint32]bool, len(list))
	for _, ch := range list {
		assert.False(t, seen[ch.ID], "duplicate id %d", ch.ID)
		seen[ch.ID] = true
	}
}

func TestInventoryStore(t *testing.T) {
	s := NewInventoryStore()
	fixture := []model.Item{model.NewItem(1201, 0, 1)}

	require.NoError(t, s.Create(2_000_123, fixture))
	assert.Error(t, s.Create(2_000_123, fixture))

	inv, err := s.Get(2_000_123)
	require.NoError(t, err)
	require.Len(t, inv.Items, 1)

	inv.Items = append(inv.Items, model.NewItem(2301, 1, 1))
	require.NoError(t, s.Update(inv))
	inv, err = s.Get(2_000_123)
	require.NoError(t, err)
	assert.Len(t, inv.Items, 2)

	s.Delete(2_000_123)
	_, err = s.Get(2_000_123)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Update(model.Inventory{CharacterID: 1}), ErrNotFound)
}
