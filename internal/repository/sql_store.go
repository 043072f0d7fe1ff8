package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
)

// KVTable is the table created by the kv_entries migration.
const KVTable = "kv_entries"

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// SQLStore keeps documents in the kv_entries table of a MySQL database.
// It is the durable store: booking history, best scores, accounts and
// preferences live here when a database is configured.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore returns a SQLStore bound to the given database.
func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// DB exposes the underlying handle, e.g. for health checks.
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) Get(ctx context.Context, key string, dest any) error {
	q, args, err := sqlBuilder.Select("v").From(KVTable).Where(squirrel.Eq{"k": key}).Limit(1).ToSql()
	if err != nil {
		return err
	}
	var raw []byte
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return decode(raw, dest)
}

func (s *SQLStore) Set(ctx context.Context, key string, value any) error {
	raw, err := encode(value)
	if err != nil {
		return err
	}
	q, args, err := upsertQuery(key, raw)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, q, args...)
	return err
}

// upsertQuery inserts or replaces the document under key.  updated_at is
// maintained by the column definition.
func upsertQuery(key string, raw []byte) (string, []any, error) {
	return sqlBuilder.Insert(KVTable).Columns("k", "v").Values(key, raw).
		Suffix("ON DUPLICATE KEY UPDATE v = VALUES(v)").ToSql()
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	q, args, err := sqlBuilder.Delete(KVTable).Where(squirrel.Eq{"k": key}).ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, q, args...)
	return err
}
