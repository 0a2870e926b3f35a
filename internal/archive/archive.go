// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package archive keeps core dumps collected from the retained region
// in a SQLite database, so that the region can be reset and reused.
package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"golang.org/x/faultdump/coredump"
)

//go:embed schema.sql
var schemaSQL string

var (
	// ErrNotFound is returned for an id that is not in the archive.
	ErrNotFound = errors.New("archive: no such dump")
	// ErrNotSaved is returned by Put for a record without a valid marker.
	ErrNotSaved = errors.New("archive: record holds no core dump")
)

// An Entry is an archived dump.
type Entry struct {
	ID          string
	CollectedAt time.Time
	Source      string // where the dump was collected from
	Record      coredump.Record
}

// An Archive is a database of core dumps.
type Archive struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates or opens the database at path.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Archive{db: db, now: time.Now}, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Put stores rec and returns its new id. Ids sort by collection time.
func (a *Archive) Put(ctx context.Context, rec *coredump.Record, source string) (string, error) {
	if !rec.Valid() {
		return "", ErrNotSaved
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("put dump: %w", err)
	}
	data, err := rec.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("put dump: %w", err)
	}
	_, err = a.db.ExecContext(ctx, `
		INSERT INTO dumps
		(id, collected_at, source, kind, software_version, aux_code, file, line, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id.String(),
		a.now().UnixNano(),
		source,
		uint32(rec.Kind),
		rec.SoftwareVersion,
		rec.AuxCode,
		rec.File(),
		rec.Line,
		data,
	)
	if err != nil {
		return "", fmt.Errorf("put dump: %w", err)
	}
	return id.String(), nil
}

// Get returns the dump with the given id.
func (a *Archive) Get(ctx context.Context, id string) (*Entry, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, collected_at, source, record FROM dumps WHERE id = ?
	`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get dump %s: %w", id, err)
	}
	return e, nil
}

// List returns all dumps, oldest first.
func (a *Archive) List(ctx context.Context) ([]*Entry, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, collected_at, source, record FROM dumps
		ORDER BY collected_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list dumps: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list dumps: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list dumps: %w", err)
	}
	return entries, nil
}

// Delete removes the dump with the given id.
func (a *Archive) Delete(ctx context.Context, id string) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM dumps WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dump %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete dump %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Count returns the number of archived dumps.
func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dumps`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count dumps: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e    Entry
		at   int64
		data []byte
	)
	if err := s.Scan(&e.ID, &at, &e.Source, &data); err != nil {
		return nil, err
	}
	e.CollectedAt = time.Unix(0, at)
	if err := e.Record.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &e, nil
}
