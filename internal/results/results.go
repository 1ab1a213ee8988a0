// Copyright 2026 Google LLC. All Rights Reserved.
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

// Package results stores run reports in a SQL database.
// This has been tested with sqlite and MariaDB.
package results

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/ddrtest/api"
	"github.com/mattn/go-sqlite3"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// mysqlDupEntry is MySQL's ER_DUP_ENTRY.
const mysqlDupEntry = 1062

// Store provides read/write access to stored runs.
type Store struct {
	db *sql.DB
}

// New returns a Store using the given database connection. Call Init before
// first use.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to a database with the named driver and creates the tables
// if needed.
func Open(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	s := New(db)
	if err := s.Init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Init creates the database tables if needed.
func (s *Store) Init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id VARCHAR(64) PRIMARY KEY,
		device VARCHAR(255),
		started BIGINT,
		finished BIGINT,
		ok INTEGER,
		report BLOB,
		attestation BLOB
		)`)
	return err
}

// NewID returns a fresh random run ID.
func NewID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// AddRun stores r along with an optional attestation, and returns the run's
// ID. If r has no ID one is assigned. Storing a second run with the same ID
// fails with an AlreadyExists status.
func (s *Store) AddRun(ctx context.Context, r api.RunReport, attestation []byte) (string, error) {
	if r.ID == "" {
		id, err := NewID()
		if err != nil {
			return "", fmt.Errorf("failed to create run ID: %w", err)
		}
		r.ID = id
	}
	report, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	ok := 0
	if r.OK() {
		ok = 1
	}
	if _, err := s.db.ExecContext(ctx, "INSERT INTO runs (id, device, started, finished, ok, report, attestation) VALUES (?, ?, ?, ?, ?, ?, ?)",
		r.ID, r.Device, r.Started.UnixNano(), r.Finished.UnixNano(), ok, report, attestation); err != nil {
		if isDuplicate(err) {
			return "", status.Errorf(codes.AlreadyExists, "run %q already stored", r.ID)
		}
		return "", fmt.Errorf("failed to insert run %q: %w", r.ID, err)
	}
	return r.ID, nil
}

// isDuplicate reports whether err is a primary key violation from one of
// the supported drivers.
func isDuplicate(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDupEntry
	}
	return false
}

// Run returns the full report for the run with the given ID.
func (s *Store) Run(ctx context.Context, id string) (api.RunReport, error) {
	var report []byte
	if err := s.db.QueryRowContext(ctx, "SELECT report FROM runs WHERE id = ?", id).Scan(&report); err != nil {
		if err == sql.ErrNoRows {
			return api.RunReport{}, status.Errorf(codes.NotFound, "no run %q", id)
		}
		return api.RunReport{}, err
	}
	var r api.RunReport
	if err := json.Unmarshal(report, &r); err != nil {
		return api.RunReport{}, fmt.Errorf("failed to unmarshal run %q: %w", id, err)
	}
	return r, nil
}

// Runs lists all stored runs, most recent first. Only the ID, device and
// times of each run are filled in.
func (s *Store) Runs(ctx context.Context) ([]api.RunReport, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, device, started, finished FROM runs ORDER BY started DESC, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rs []api.RunReport
	for rows.Next() {
		var r api.RunReport
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.Device, &started, &finished); err != nil {
			return nil, err
		}
		r.Started, r.Finished = time.Unix(0, started).UTC(), time.Unix(0, finished).UTC()
		rs = append(rs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}

// Attestation returns the signed summary stored with a run.
func (s *Store) Attestation(ctx context.Context, id string) ([]byte, error) {
	var att []byte
	if err := s.db.QueryRowContext(ctx, "SELECT attestation FROM runs WHERE id = ?", id).Scan(&att); err != nil {
		if err == sql.ErrNoRows {
			return nil, status.Errorf(codes.NotFound, "no run %q", id)
		}
		return nil, err
	}
	if len(att) == 0 {
		return nil, status.Errorf(codes.NotFound, "run %q has no attestation", id)
	}
	return att, nil
}
