// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sqlite provides a persistent state store backed by SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/blinklabs-io/txsequencer/ledger/common"
	"github.com/blinklabs-io/txsequencer/store/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Compile-time checks that Store implements the state interfaces
var (
	_ common.StateStore    = (*Store)(nil)
	_ common.StateIterator = (*Store)(nil)
	_ common.EventJournal  = (*Store)(nil)
)

const (
	// MemoryPath opens a private in-memory database
	MemoryPath = ":memory:"

	defaultTimeout = 10 * time.Second
)

var errEmptyKey = errors.New("state key must not be empty")

// Store keeps state cells and the event journal in a SQLite database
type Store struct {
	sqlDB   *sql.DB
	logger  *slog.Logger
	timeout time.Duration
}

type StoreOption func(*Store)

// WithLogger specifies the logger used for store diagnostics
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithTimeout specifies the deadline applied to each database operation
func WithTimeout(timeout time.Duration) StoreOption {
	return func(s *Store) {
		s.timeout = timeout
	}
}

// Open opens a SQLite store at the provided path and applies migrations
func Open(path string, opts ...StoreOption) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, errors.New("storage path is required")
	}
	s := &Store{
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	dsn := cleanPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	if cleanPath != MemoryPath {
		dsn += "&_pragma=journal_mode(WAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// Calls execute sequentially, and an in-memory database only lives as
	// long as its single connection
	sqlDB.SetMaxOpenConns(1)

	ctx, cancel := s.context()
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite store: %w", err)
	}
	applied, err := applyMigrations(ctx, sqlDB, migrations.FS)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite store: %w", err)
	}
	for _, name := range applied {
		s.logger.Debug(
			"applied migration",
			"component", "store",
			"migration", name,
		)
	}
	s.sqlDB = sqlDB
	return s, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

func (s *Store) Get(key common.StateKey) ([]byte, bool, error) {
	ctx, cancel := s.context()
	defer cancel()
	var value []byte
	err := s.sqlDB.QueryRowContext(
		ctx,
		"SELECT value FROM state_cells WHERE key = ?",
		[]byte(key),
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get state cell %s: %w", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

// Apply writes all cells and appends all events in a single SQL transaction
func (s *Store) Apply(delta common.StateDelta) error {
	for _, write := range delta.Writes {
		if len(write.Key) == 0 {
			return errEmptyKey
		}
	}
	for _, record := range delta.Events {
		if record.TxId > math.MaxInt64 {
			return fmt.Errorf("tx id %d exceeds storage range", record.TxId)
		}
	}
	ctx, cancel := s.context()
	defer cancel()
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin apply: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, write := range delta.Writes {
		value := write.Value
		if value == nil {
			value = []byte{}
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO state_cells (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			[]byte(write.Key),
			value,
		); err != nil {
			return fmt.Errorf("write state cell %s: %w", write.Key, err)
		}
	}
	now := time.Now().UTC().UnixMilli()
	for _, record := range delta.Events {
		recordCbor, err := common.EncodeTransactionRecord(record)
		if err != nil {
			return fmt.Errorf("encode transaction record: %w", err)
		}
		identity := []byte(record.Identity)
		if identity == nil {
			identity = []byte{}
		}
		data := record.Data
		if data == nil {
			data = []byte{}
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO transaction_events (
				tx_id, identity, version, key_id, data, record_cbor, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			int64(record.TxId),
			identity,
			int64(record.Version),
			int64(record.KeyId),
			data,
			recordCbor,
			now,
		); err != nil {
			return fmt.Errorf("append transaction record %d: %w", record.TxId, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit apply: %w", err)
	}
	return nil
}

// IteratePrefix calls fn for every cell whose key starts with prefix, in key order
func (s *Store) IteratePrefix(
	prefix common.StateKey,
	fn func(key common.StateKey, value []byte) error,
) error {
	type cell struct {
		key   []byte
		value []byte
	}
	var cells []cell
	err := func() error {
		ctx, cancel := s.context()
		defer cancel()
		rows, err := s.sqlDB.QueryContext(
			ctx,
			"SELECT key, value FROM state_cells WHERE substr(key, 1, ?) = ? ORDER BY key",
			len(prefix),
			[]byte(prefix),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var c cell
			if err := rows.Scan(&c.key, &c.value); err != nil {
				return err
			}
			cells = append(cells, c)
		}
		return rows.Err()
	}()
	if err != nil {
		return fmt.Errorf("iterate state prefix %s: %w", prefix, err)
	}
	// fn runs after the rows are released so it may read the store
	for _, c := range cells {
		if err := fn(common.StateKey(c.key), c.value); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Events(afterTxId uint64, limit int) ([]common.TransactionRecord, error) {
	if afterTxId >= math.MaxInt64 {
		return []common.TransactionRecord{}, nil
	}
	// A negative limit is unbounded in SQLite
	sqlLimit := int64(-1)
	if limit > 0 {
		sqlLimit = int64(limit)
	}
	ctx, cancel := s.context()
	defer cancel()
	rows, err := s.sqlDB.QueryContext(
		ctx,
		"SELECT record_cbor FROM transaction_events WHERE tx_id > ? ORDER BY tx_id LIMIT ?",
		int64(afterTxId),
		sqlLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("query transaction records: %w", err)
	}
	defer rows.Close()
	ret := []common.TransactionRecord{}
	for rows.Next() {
		var recordCbor []byte
		if err := rows.Scan(&recordCbor); err != nil {
			return nil, fmt.Errorf("scan transaction record: %w", err)
		}
		record, err := common.DecodeTransactionRecord(recordCbor)
		if err != nil {
			return nil, err
		}
		ret = append(ret, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction records: %w", err)
	}
	return ret, nil
}
