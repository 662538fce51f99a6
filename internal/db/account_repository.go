package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/valkyrja/ro2go/internal/model"
)

// AccountRepository persists accounts. Web-auth tokens are deliberately not
// stored: they die with the process that minted them.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository wraps a pool.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Upsert writes one account, inserting or overwriting by id.
func (r *AccountRepository) Upsert(ctx context.Context, acc model.Account) error {
	return upsertAccount(ctx, r.pool, acc)
}

func upsertAccount(ctx context.Context, q execer, acc model.Account) error {
	_, err := q.Exec(ctx, `
		INSERT INTO accounts (
			id, user_id, password_kind, password_clear, password_hash,
			sex, email, group_id, char_slots, state_kind, state_until,
			login_count, last_login, last_ip, birth_date, pincode, pincode_change
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			password_kind = EXCLUDED.password_kind,
			password_clear = EXCLUDED.password_clear,
			password_hash = EXCLUDED.password_hash,
			sex = EXCLUDED.sex,
			email = EXCLUDED.email,
			group_id = EXCLUDED.group_id,
			char_slots = EXCLUDED.char_slots,
			state_kind = EXCLUDED.state_kind,
			state_until = EXCLUDED.state_until,
			login_count = EXCLUDED.login_count,
			last_login = EXCLUDED.last_login,
			last_ip = EXCLUDED.last_ip,
			birth_date = EXCLUDED.birth_date,
			pincode = EXCLUDED.pincode,
			pincode_change = EXCLUDED.pincode_change`,
		int64(acc.ID), acc.UserID, int16(acc.Password.Kind), acc.Password.Clear,
		acc.Password.Hash[:], int16(acc.Sex), acc.Email, int64(acc.GroupID),
		int16(acc.CharSlots), int16(acc.State.Kind), nullTime(acc.State.Until),
		int64(acc.LoginCount), nullTime(acc.LastLogin), acc.LastIP,
		acc.BirthDate, acc.Pincode[:], nullTime(acc.PincodeChange),
	)
	if err != nil {
		return fmt.Errorf("upserting account %d: %w", acc.ID, err)
	}
	return nil
}

// UpsertAll writes the full snapshot in one transaction.
func (r *AccountRepository) UpsertAll(ctx context.Context, accs []model.Account) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning account snapshot: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, acc := range accs {
		if err := upsertAccount(ctx, tx, acc); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// LoadAll reads every stored account.
func (r *AccountRepository) LoadAll(ctx context.Context) ([]model.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, password_kind, password_clear, password_hash,
		       sex, email, group_id, char_slots, state_kind, state_until,
		       login_count, last_login, last_ip, birth_date, pincode, pincode_change
		FROM accounts`)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	return out, nil
}

// Delete removes one account. Characters and inventories cascade.
func (r *AccountRepository) Delete(ctx context.Context, id uint32) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, int64(id))
	if err != nil {
		return fmt.Errorf("deleting account %d: %w", id, err)
	}
	return nil
}

func scanAccount(row pgx.Row) (model.Account, error) {
	var (
		acc           model.Account
		id, groupID   int64
		pwKind        int16
		pwHash        []byte
		sex           int16
		charSlots     int16
		stateKind     int16
		stateUntil    *time.Time
		loginCount    int64
		lastLogin     *time.Time
		pincode       []byte
		pincodeChange *time.Time
	)
	err := row.Scan(&id, &acc.UserID, &pwKind, &acc.Password.Clear, &pwHash,
		&sex, &acc.Email, &groupID, &charSlots, &stateKind, &stateUntil,
		&loginCount, &lastLogin, &acc.LastIP, &acc.BirthDate, &pincode, &pincodeChange)
	if err != nil {
		return model.Account{}, fmt.Errorf("scanning account: %w", err)
	}

	acc.ID = uint32(id)
	acc.Password.Kind = model.PasswordKind(pwKind)
	copy(acc.Password.Hash[:], pwHash)
	acc.Sex = model.Sex(sex)
	acc.GroupID = uint32(groupID)
	acc.CharSlots = uint8(charSlots)
	acc.State = model.AccountState{Kind: model.AccountStateKind(stateKind), Until: deref(stateUntil)}
	acc.LoginCount = uint32(loginCount)
	acc.LastLogin = deref(lastLogin)
	copy(acc.Pincode[:], pincode)
	acc.PincodeChange = deref(pincodeChange)
	return acc, nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
