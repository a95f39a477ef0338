package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Kotlang/clinicAuthGo/session/migrations"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteStorage is a DeviceStorage backed by a single SQLite table.
type SQLiteStorage struct {
	db *sql.DB
}

// OpenSQLiteStorage opens (or creates) the database at dsn and applies
// migrations.
func OpenSQLiteStorage(ctx context.Context, dsn string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" databases shared and writes serialized
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStorage{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *SQLiteStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM device_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get item[%s]: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStorage) SetItem(ctx context.Context, key, value string) error {
	return s.SetItems(ctx, map[string]string{key: value})
}

func (s *SQLiteStorage) RemoveItem(ctx context.Context, key string) error {
	return s.RemoveItems(ctx, key)
}

func (s *SQLiteStorage) SetItems(ctx context.Context, items map[string]string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for key, value := range items {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO device_storage (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value
			`, key, value)
			if err != nil {
				return fmt.Errorf("failed to set item[%s]: %w", key, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStorage) RemoveItems(ctx context.Context, keys ...string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, key := range keys {
			if _, err := tx.ExecContext(ctx, `DELETE FROM device_storage WHERE key = ?`, key); err != nil {
				return fmt.Errorf("failed to remove item[%s]: %w", key, err)
			}
		}
		return nil
	})
}

// withTx commits when fn succeeds and rolls back on error or panic.
func (s *SQLiteStorage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(tx)
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
