package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/valkyrja/ro2go/internal/model"
)

// InventoryRepository persists inventories. Items ride as one JSONB document
// per character; the shape is model.Item's JSON layout.
type InventoryRepository struct {
	pool *pgxpool.Pool
}

// NewInventoryRepository wraps a pool.
func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

// Upsert writes one inventory, inserting or overwriting by character id.
func (r *InventoryRepository) Upsert(ctx context.Context, inv model.Inventory) error {
	return upsertInventory(ctx, r.pool, inv)
}

func upsertInventory(ctx context.Context, q execer, inv model.Inventory) error {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return fmt.Errorf("encoding inventory %d: %w", inv.CharacterID, err)
	}
	_, err = q.Exec(ctx, `
		INSERT INTO inventories (character_id, items) VALUES ($1, $2)
		ON CONFLICT (character_id) DO UPDATE SET items = EXCLUDED.items`,
		int64(inv.CharacterID), items,
	)
	if err != nil {
		return fmt.Errorf("upserting inventory %d: %w", inv.CharacterID, err)
	}
	return nil
}

// UpsertAll writes the full snapshot in one transaction.
func (r *InventoryRepository) UpsertAll(ctx context.Context, invs []model.Inventory) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning inventory snapshot: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, inv := range invs {
		if err := upsertInventory(ctx, tx, inv); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// LoadAll reads every stored inventory.
func (r *InventoryRepository) LoadAll(ctx context.Context) ([]model.Inventory, error) {
	rows, err := r.pool.Query(ctx, `SELECT character_id, items FROM inventories`)
	if err != nil {
		return nil, fmt.Errorf("loading inventories: %w", err)
	}
	defer rows.Close()

	var out []model.Inventory
	for rows.Next() {
		var (
			id    int64
			items []byte
		)
		if err := rows.Scan(&id, &items); err != nil {
			return nil, fmt.Errorf("scanning inventory: %w", err)
		}
		inv := model.Inventory{CharacterID: uint32(id)}
		if err := json.Unmarshal(items, &inv.Items); err != nil {
			return nil, fmt.Errorf("decoding inventory %d: %w", id, err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading inventories: %w", err)
	}
	return out, nil
}

// Delete removes one inventory.
func (r *InventoryRepository) Delete(ctx context.Context, characterID uint32) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM inventories WHERE character_id = $1`, int64(characterID))
	if err != nil {
		return fmt.Errorf("deleting inventory %d: %w", characterID, err)
	}
	return nil
}
