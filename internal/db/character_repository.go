package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/valkyrja/ro2go/internal/model"
)

// CharacterRepository persists characters. Only selection-screen state is
// durable; party/guild links and skills belong to the zone server's store.
type CharacterRepository struct {
	pool *pgxpool.Pool
}

// NewCharacterRepository wraps a pool.
func NewCharacterRepository(pool *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{pool: pool}
}

// Upsert writes one character, inserting or overwriting by id.
func (r *CharacterRepository) Upsert(ctx context.Context, ch model.Character) error {
	return upsertCharacter(ctx, r.pool, ch)
}

func upsertCharacter(ctx context.Context, q execer, ch model.Character) error {
	_, err := q.Exec(ctx, `
		INSERT INTO characters (
			id, account_id, slot, name, sex, class,
			str, agi, vit, intl, dex, luk,
			base_level, job_level, base_exp, job_exp, status_point, skill_point, zeny,
			hp, max_hp, sp, max_sp, opt, karma, manner,
			hair, hair_color, clothes_color, body,
			weapon, shield, head_top, head_mid, head_bottom, robe,
			map_id, x, y, rename_count, delete_date
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,
		          $20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36,
		          $37,$38,$39,$40,$41)
		ON CONFLICT (id) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			slot = EXCLUDED.slot,
			name = EXCLUDED.name,
			sex = EXCLUDED.sex,
			class = EXCLUDED.class,
			str = EXCLUDED.str, agi = EXCLUDED.agi, vit = EXCLUDED.vit,
			intl = EXCLUDED.intl, dex = EXCLUDED.dex, luk = EXCLUDED.luk,
			base_level = EXCLUDED.base_level,
			job_level = EXCLUDED.job_level,
			base_exp = EXCLUDED.base_exp,
			job_exp = EXCLUDED.job_exp,
			status_point = EXCLUDED.status_point,
			skill_point = EXCLUDED.skill_point,
			zeny = EXCLUDED.zeny,
			hp = EXCLUDED.hp, max_hp = EXCLUDED.max_hp,
			sp = EXCLUDED.sp, max_sp = EXCLUDED.max_sp,
			opt = EXCLUDED.opt, karma = EXCLUDED.karma, manner = EXCLUDED.manner,
			hair = EXCLUDED.hair,
			hair_color = EXCLUDED.hair_color,
			clothes_color = EXCLUDED.clothes_color,
			body = EXCLUDED.body,
			weapon = EXCLUDED.weapon, shield = EXCLUDED.shield,
			head_top = EXCLUDED.head_top, head_mid = EXCLUDED.head_mid,
			head_bottom = EXCLUDED.head_bottom, robe = EXCLUDED.robe,
			map_id = EXCLUDED.map_id, x = EXCLUDED.x, y = EXCLUDED.y,
			rename_count = EXCLUDED.rename_count,
			delete_date = EXCLUDED.delete_date`,
		int64(ch.ID), int64(ch.AccountID), int16(ch.Slot), ch.Name, int16(ch.Sex), int32(ch.Class),
		int16(ch.Stats.Str), int16(ch.Stats.Agi), int16(ch.Stats.Vit),
		int16(ch.Stats.Int), int16(ch.Stats.Dex), int16(ch.Stats.Luk),
		int32(ch.Experience.BaseLevel), int32(ch.Experience.JobLevel),
		int64(ch.Experience.BaseExp), int64(ch.Experience.JobExp),
		int32(ch.Experience.StatusPoint), int32(ch.Experience.SkillPoint),
		int64(ch.Currency.Zeny),
		int32(ch.Status.HP), int32(ch.Status.MaxHP),
		int32(ch.Status.SP), int32(ch.Status.MaxSP),
		int64(ch.Status.Option), int64(ch.Status.Karma), int64(ch.Status.Manner),
		int32(ch.Appearance.Hair), int32(ch.Appearance.HairColor),
		int32(ch.Appearance.ClothesColor), int32(ch.Appearance.Body),
		int32(ch.Equipment.Weapon), int32(ch.Equipment.Shield),
		int32(ch.Equipment.HeadTop), int32(ch.Equipment.HeadMid),
		int32(ch.Equipment.HeadBottom), int64(ch.Equipment.Robe),
		int64(ch.Location.Current.MapID), int32(ch.Location.Current.X), int32(ch.Location.Current.Y),
		int32(ch.Settings.Rename), nullTime(ch.DeleteDate),
	)
	if err != nil {
		return fmt.Errorf("upserting character %d: %w", ch.ID, err)
	}
	return nil
}

// UpsertAll writes the full snapshot in one transaction.
func (r *CharacterRepository) UpsertAll(ctx context.Context, chars []model.Character) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning character snapshot: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, ch := range chars {
		if err := upsertCharacter(ctx, tx, ch); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// LoadAll reads every stored character.
func (r *CharacterRepository) LoadAll(ctx context.Context) ([]model.Character, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, slot, name, sex, class,
		       str, agi, vit, intl, dex, luk,
		       base_level, job_level, base_exp, job_exp, status_point, skill_point, zeny,
		       hp, max_hp, sp, max_sp, opt, karma, manner,
		       hair, hair_color, clothes_color, body,
		       weapon, shield, head_top, head_mid, head_bottom, robe,
		       map_id, x, y, rename_count, delete_date
		FROM characters`)
	if err != nil {
		return nil, fmt.Errorf("loading characters: %w", err)
	}
	defer rows.Close()

	var out []model.Character
	for rows.Next() {
		ch, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading characters: %w", err)
	}
	return out, nil
}

// Delete removes one character. Its inventory cascades.
func (r *CharacterRepository) Delete(ctx context.Context, id uint32) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM characters WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("deleting character %d: %w", id, err)
	}
	return nil
}

func scanCharacter(row pgx.Row) (model.Character, error) {
	var (
		ch                       model.Character
		id, accountID            int64
		slot, sex                int16
		class                    int32
		str, agi, vit            int16
		intl, dex, luk           int16
		baseLevel, jobLevel      int32
		baseExp, jobExp          int64
		statusPoint, skillPoint  int32
		zeny                     int64
		hp, maxHP, sp, maxSP     int32
		option, karma, manner    int64
		hair, hairColor          int32
		clothesColor, body       int32
		weapon, shield           int32
		headTop, headMid         int32
		headBottom               int32
		robe, mapID              int64
		x, y                     int32
		renameCount              int32
		deleteDate               *time.Time
	)
	err := row.Scan(&id, &accountID, &slot, &ch.Name, &sex, &class,
		&str, &agi, &vit, &intl, &dex, &luk,
		&baseLevel, &jobLevel, &baseExp, &jobExp, &statusPoint, &skillPoint, &zeny,
		&hp, &maxHP, &sp, &maxSP, &option, &karma, &manner,
		&hair, &hairColor, &clothesColor, &body,
		&weapon, &shield, &headTop, &headMid, &headBottom, &robe,
		&mapID, &x, &y, &renameCount, &deleteDate)
	if err != nil {
		return model.Character{}, fmt.Errorf("scanning character: %w", err)
	}

	ch.ID = uint32(id)
	ch.AccountID = uint32(accountID)
	ch.Slot = uint8(slot)
	ch.Sex = model.Sex(sex)
	ch.Class = model.Class(class)
	ch.Stats = model.Stats{
		Str: uint8(str), Agi: uint8(agi), Vit: uint8(vit),
		Int: uint8(intl), Dex: uint8(dex), Luk: uint8(luk),
	}
	ch.Experience = model.Experience{
		BaseLevel:   uint16(baseLevel),
		JobLevel:    uint16(jobLevel),
		BaseExp:     uint32(baseExp),
		JobExp:      uint32(jobExp),
		StatusPoint: uint16(statusPoint),
		SkillPoint:  uint16(skillPoint),
	}
	ch.Currency = model.Currency{Zeny: uint32(zeny)}
	ch.Status = model.Status{
		HP: uint32(hp), MaxHP: uint32(maxHP),
		SP: uint16(sp), MaxSP: uint16(maxSP),
		Option: uint32(option), Karma: uint32(karma), Manner: uint32(manner),
	}
	ch.Appearance = model.Appearance{
		Hair:         uint16(hair),
		HairColor:    uint16(hairColor),
		ClothesColor: uint16(clothesColor),
		Body:         uint16(body),
	}
	ch.Equipment = model.Equipment{
		Weapon:     uint16(weapon),
		Shield:     uint16(shield),
		HeadTop:    uint16(headTop),
		HeadMid:    uint16(headMid),
		HeadBottom: uint16(headBottom),
		Robe:       uint32(robe),
	}
	ch.Location.Current = model.Point{MapID: uint32(mapID), X: uint16(x), Y: uint16(y)}
	ch.Settings.Rename = uint16(renameCount)
	ch.DeleteDate = deref(deleteDate)
	return ch, nil
}
