// File: store/sqlite.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// SQLite-backed UserStore with bcrypt password hashes.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/momentics/hioload-httpd/api"
)

const schema = `CREATE TABLE IF NOT EXISTS users (
	username TEXT PRIMARY KEY,
	password TEXT NOT NULL
)`

// SQLiteStore keeps users in a SQLite database. database/sql serializes
// access through its pool, so the store is safe for concurrent use.
type SQLiteStore struct {
	db   *sql.DB
	log  *zap.Logger
	cost int
}

// SQLiteOption customizes a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithBcryptCost overrides the bcrypt cost factor.
func WithBcryptCost(cost int) SQLiteOption {
	return func(s *SQLiteStore) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// WithStoreLogger sets the logger used for store events.
func WithStoreLogger(log *zap.Logger) SQLiteOption {
	return func(s *SQLiteStore) {
		if log != nil {
			s.log = log
		}
	}
}

// OpenSQLite opens or creates the database at path and ensures the schema.
// ":memory:" yields a private in-memory database.
func OpenSQLite(path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open user database: %w", err)
	}
	if path == ":memory:" {
		// each connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}

	s := &SQLiteStore{db: db, log: zap.NewNop(), cost: bcrypt.DefaultCost}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// RegisterUser inserts a new user. Username is the primary key, so a second
// registration under the same name fails without error.
func (s *SQLiteStore) RegisterUser(ctx context.Context, username, password string) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return false, &api.StoreError{Op: "register", Cause: err}
	}

	_, err = s.db.ExecContext(ctx, "INSERT INTO users (username, password) VALUES (?, ?)", username, string(hash))
	if err != nil {
		if isDuplicateKey(err) {
			s.log.Info("register rejected, user exists", zap.String("username", username))
			return false, nil
		}
		return false, &api.StoreError{Op: "register", Cause: err}
	}
	s.log.Info("user registered", zap.String("username", username))
	return true, nil
}

// LoginUser checks password against the stored hash.
func (s *SQLiteStore) LoginUser(ctx context.Context, username, password string) (bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx, "SELECT password FROM users WHERE username = ?", username).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		s.log.Info("login rejected, user not found", zap.String("username", username))
		return false, nil
	}
	if err != nil {
		return false, &api.StoreError{Op: "login", Cause: err}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		s.log.Info("login rejected, bad credentials", zap.String("username", username))
		return false, nil
	}
	s.log.Info("user logged in", zap.String("username", username))
	return true, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isDuplicateKey matches PRIMARY KEY and UNIQUE violations only.
func isDuplicateKey(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
