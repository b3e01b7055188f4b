// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// scanTarget names the table/column holding already-issued identifiers for a
// sequence, used once per sequence to bootstrap the counter.
type scanTarget struct {
	table  string
	column string
}

// defaultScanTargets maps the standard sequences to the columns their
// identifiers live in. Soft-deleted rows are intentionally included.
var defaultScanTargets = map[string]scanTarget{
	"staff":      {table: "identity.staff", column: "sequencecode"},
	"department": {table: "identity.department", column: "registrycode"},
}

// PostgresStore implements the [Store] interface over a dedicated counter table.
type PostgresStore struct {
	pool    *pgxpool.Pool
	targets map[string]scanTarget
}

// NewPostgresStore creates a new PostgreSQL implementation of the counter [Store].
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	targets := make(map[string]scanTarget, len(defaultScanTargets))
	for name, target := range defaultScanTargets {
		targets[name] = target
	}
	return &PostgresStore{pool: pool, targets: targets}
}

// RegisterScanTarget adds or overrides the bootstrap scan source for a sequence.
//
// Per-year sequences (superadmin codes) register their target once at wiring
// time since their names are dynamic.
func (store *PostgresStore) RegisterScanTarget(name, table, column string) {
	store.targets[name] = scanTarget{table: table, column: column}
}

/*
Increment atomically advances the counter row and returns the new value.

Description: Single-statement UPDATE .. RETURNING, so concurrent callers are
serialized by the row lock and each observes a distinct value.

Parameters:
  - context: context.Context
  - name: string

Returns:
  - int64: Freshly allocated value
  - error: [ErrNoCounter] when the row does not exist, or execution errors
*/
func (store *PostgresStore) Increment(context context.Context, name string) (int64, error) {
	const query = `
		UPDATE identity.sequencecounter
		SET lastvalue = lastvalue + 1, updatedat = NOW()
		WHERE name = $1
		RETURNING lastvalue`

	var value int64
	err := store.pool.QueryRow(context, query, name).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNoCounter
		}
		return 0, fmt.Errorf("postgres_sequence_increment_failed: %w", err)
	}

	return value, nil
}

/*
InitAndIncrement creates the counter seeded at the last issued value.

Description: INSERT .. ON CONFLICT DO UPDATE in one statement. When two
callers race to initialize the same sequence, the conflict arm turns the
loser into a plain increment, so both still receive distinct values.

Parameters:
  - context: context.Context
  - name: string
  - seed: int64

Returns:
  - int64: Freshly allocated value (seed+1 for the winner)
  - error: Execution errors
*/
func (store *PostgresStore) InitAndIncrement(context context.Context, name string, seed int64) (int64, error) {
	const query = `
		INSERT INTO identity.sequencecounter (name, lastvalue, updatedat)
		VALUES ($1, $2 + 1, NOW())
		ON CONFLICT (name) DO UPDATE
		SET lastvalue = identity.sequencecounter.lastvalue + 1, updatedat = NOW()
		RETURNING lastvalue`

	var value int64
	err := store.pool.QueryRow(context, query, name, seed).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("postgres_sequence_init_failed: %w", err)
	}

	return value, nil
}

/*
LastIssued returns the highest numeric suffix already issued for the sequence.

Description: Scans the registered identifier column, including soft-deleted
rows, and parses the trailing number server-side. Used exactly once per
sequence, at first allocation.

Parameters:
  - context: context.Context
  - name: string
  - prefix: string

Returns:
  - int64: Highest issued suffix, 0 when none exist
  - error: Unknown sequence or execution errors
*/
func (store *PostgresStore) LastIssued(context context.Context, name string, prefix string) (int64, error) {
	target, known := store.targets[name]
	if !known {
		// Per-year superadmin sequences share one scan source.
		if strings.HasPrefix(name, "superadmin-") {
			target = scanTarget{table: "auth.superadmin", column: "code"}
		} else {
			// No scan source registered: the sequence starts fresh at zero.
			return 0, nil
		}
	}

	// The identifier column and table are fixed, compile-time registered
	// values, never user input.
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(
			NULLIF(regexp_replace(%s, '^.*-', ''), '')::BIGINT
		), 0)
		FROM %s
		WHERE %s LIKE $1`,
		target.column, target.table, target.column,
	)

	var last int64
	err := store.pool.QueryRow(context, query, prefix+"-%").Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("postgres_sequence_scan_failed: %w", err)
	}

	return last, nil
}
