package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/vestige-labs/vestige/internal/services/launch/assets"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/address"
	"github.com/vestige-labs/vestige/internal/services/launch/domain/record"
	"github.com/vestige-labs/vestige/internal/services/launch/storage"
)

const selectRecordSQL = `SELECT record_key, kind, owner, executor_id, data, updated_at FROM records WHERE record_key = ?`

// GetRecord reads a committed record.
func (s *Store) GetRecord(ctx context.Context, key address.Key) (record.Envelope, error) {
	return getRecord(ctx, s.sqlDB, key)
}

// GetBalance reads a committed balance.
func (s *Store) GetBalance(ctx context.Context, key, asset address.Key) (uint64, error) {
	return getBalance(ctx, s.sqlDB, key, asset)
}

// ListRecords reads committed records tagged owner in key order.
func (s *Store) ListRecords(ctx context.Context, owner record.Owner) ([]record.Envelope, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT record_key, kind, owner, executor_id, data, updated_at FROM records WHERE owner = ? ORDER BY record_key`,
		string(owner),
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []record.Envelope
	for rows.Next() {
		env, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, env)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// DeleteRecord removes a committed record.
func (s *Store) DeleteRecord(ctx context.Context, key address.Key) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM records WHERE record_key = ?`, key.String()); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

func (t *txn) GetRecord(ctx context.Context, key address.Key) (record.Envelope, error) {
	return getRecord(ctx, t.q, key)
}

func (t *txn) PutRecord(ctx context.Context, env record.Envelope) error {
	if env.Data == nil {
		env.Data = []byte{}
	}
	_, err := t.q.ExecContext(ctx, `
INSERT INTO records (record_key, kind, owner, executor_id, data, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(record_key) DO UPDATE SET
    kind = excluded.kind,
    owner = excluded.owner,
    executor_id = excluded.executor_id,
    data = excluded.data,
    updated_at = excluded.updated_at`,
		env.Key.String(), string(env.Kind), string(env.Owner), env.ExecutorID, env.Data, toMillis(t.store.now()),
	)
	if err != nil {
		return fmt.Errorf("put record %s: %w", address.Describe(env.Kind, env.Key), err)
	}
	return nil
}

func (t *txn) GetAccount(ctx context.Context, key address.Key) (assets.Account, bool, error) {
	var (
		owner     string
		createdAt int64
	)
	err := t.q.QueryRowContext(ctx, `SELECT owner, created_at FROM accounts WHERE account_key = ?`, key.String()).Scan(&owner, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return assets.Account{}, false, nil
	}
	if err != nil {
		return assets.Account{}, false, fmt.Errorf("get account: %w", err)
	}
	ownerKey, err := address.Parse(owner)
	if err != nil {
		return assets.Account{}, false, fmt.Errorf("parse account owner: %w", err)
	}
	return assets.Account{Key: key, Owner: ownerKey, CreatedAt: fromMillis(createdAt)}, true, nil
}

func (t *txn) PutAccount(ctx context.Context, account assets.Account) error {
	_, err := t.q.ExecContext(ctx, `
INSERT INTO accounts (account_key, owner, created_at) VALUES (?, ?, ?)
ON CONFLICT(account_key) DO UPDATE SET owner = excluded.owner`,
		account.Key.String(), account.Owner.String(), toMillis(account.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put account: %w", err)
	}
	return nil
}

func (t *txn) GetBalance(ctx context.Context, key, asset address.Key) (uint64, error) {
	return getBalance(ctx, t.q, key, asset)
}

func (t *txn) PutBalance(ctx context.Context, key, asset address.Key, value uint64) error {
	_, err := t.q.ExecContext(ctx, `
INSERT INTO balances (account_key, asset, amount) VALUES (?, ?, ?)
ON CONFLICT(account_key, asset) DO UPDATE SET amount = excluded.amount`,
		key.String(), asset.String(), strconv.FormatUint(value, 10),
	)
	if err != nil {
		return fmt.Errorf("put balance: %w", err)
	}
	return nil
}

func getRecord(ctx context.Context, q queryer, key address.Key) (record.Envelope, error) {
	env, err := scanRecord(q.QueryRowContext(ctx, selectRecordSQL, key.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return record.Envelope{}, storage.ErrNotFound
	}
	return env, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (record.Envelope, error) {
	var (
		rawKey     string
		kind       string
		owner      string
		executorID string
		data       []byte
		updatedAt  int64
	)
	if err := row.Scan(&rawKey, &kind, &owner, &executorID, &data, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record.Envelope{}, err
		}
		return record.Envelope{}, fmt.Errorf("scan record: %w", err)
	}
	key, err := address.Parse(rawKey)
	if err != nil {
		return record.Envelope{}, fmt.Errorf("parse record key: %w", err)
	}
	return record.Envelope{
		Key:        key,
		Kind:       address.Kind(kind),
		Owner:      record.Owner(owner),
		ExecutorID: executorID,
		Data:       data,
		UpdatedAt:  fromMillis(updatedAt),
	}, nil
}

func getBalance(ctx context.Context, q queryer, key, asset address.Key) (uint64, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT amount FROM balances WHERE account_key = ? AND asset = ?`, key.String(), asset.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse balance: %w", err)
	}
	return value, nil
}
