// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

/*
Package sequence implements the organization-wide identifier allocator.

Every staff member, department, and superadmin carries a short, human-readable
identifier minted from a named monotonic sequence (e.g. "ORG-0042"). Values
are never reused, even when the owning record is later soft-deleted.

Architecture:

  - Allocator: Domain-level orchestration (formatting, bootstrap, retry).
  - Store: Abstracted atomic counter backed by PostgreSQL.
  - Bootstrap: First use of a sequence reconciles the counter from a scan of
    existing identifiers (including soft-deleted rows), so the allocator can
    be pointed at a database that already contains issued codes.

Concurrency: the counter advance is a single-statement atomic increment, so
two concurrent allocations can never observe the same value.
*/
package sequence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoCounter is returned by [Store.Increment] when the named sequence has
// never been initialized. The caller is expected to bootstrap it.
var ErrNoCounter = errors.New("sequence: counter not initialized")

// # Sequence Definitions

// Sequence describes a named monotonic identifier series and its rendering rule.
type Sequence struct {
	// Name is the counter key, unique per series (e.g. "staff").
	Name string

	// Prefix is rendered before the numeric suffix (e.g. "ORG" -> "ORG-0042").
	Prefix string

	// Width is the minimum zero-padded digit count. Values that outgrow the
	// width render at natural width (9999 -> 10000), never truncated.
	Width int
}

// Staff returns the organization-wide staff identifier sequence (ORG-NNNN).
func Staff(orgPrefix string) Sequence {
	return Sequence{Name: "staff", Prefix: orgPrefix, Width: 4}
}

// Department returns the department registry sequence (ORG-D-NNN).
func Department(orgPrefix string) Sequence {
	return Sequence{Name: "department", Prefix: orgPrefix + "-D", Width: 3}
}

// Superadmin returns the per-year superadmin code sequence (S-YY-NNNN).
//
// Each joining year runs its own series so codes sort naturally by cohort.
func Superadmin(yearTwoDigit int) Sequence {
	return Sequence{
		Name:   fmt.Sprintf("superadmin-%02d", yearTwoDigit),
		Prefix: fmt.Sprintf("S-%02d", yearTwoDigit),
		Width:  4,
	}
}

// # Formatting

// Format renders a sequence value with the given prefix and padding width.
func Format(prefix string, value int64, width int) string {
	return fmt.Sprintf("%s-%0*d", prefix, width, value)
}

// ParseSuffix extracts the numeric suffix from a formatted identifier.
//
// Returns false when the identifier does not carry the expected prefix or
// the suffix is not numeric.
func ParseSuffix(identifier, prefix string) (int64, bool) {
	rest, found := strings.CutPrefix(identifier, prefix+"-")
	if !found || rest == "" {
		return 0, false
	}

	value, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

// # Counter Contract

// Store defines the atomic counter persistence contract.
type Store interface {

	/*
		Increment atomically advances the named counter and returns the new value.

		Parameters:
		  - context: context.Context
		  - name: string (Sequence name)

		Returns:
		  - int64: The freshly allocated value
		  - error: [ErrNoCounter] when the sequence was never initialized,
		    or storage failures
	*/
	Increment(context context.Context, name string) (int64, error)

	/*
		InitAndIncrement creates the counter seeded at the last issued value and
		returns seed+1. Safe under concurrent first use: when two callers race
		to initialize the same sequence, exactly one insert wins and the loser
		increments the winner's row instead.

		Parameters:
		  - context: context.Context
		  - name: string
		  - seed: int64 (Highest previously issued value, 0 when none)

		Returns:
		  - int64: The freshly allocated value
		  - error: Storage failures
	*/
	InitAndIncrement(context context.Context, name string, seed int64) (int64, error)

	/*
		LastIssued scans the identifiers already present for the sequence and
		returns the highest numeric suffix. Soft-deleted rows count: their
		identifiers were issued and must never be minted again.

		Parameters:
		  - context: context.Context
		  - name: string
		  - prefix: string (Identifier prefix to scan for)

		Returns:
		  - int64: Highest issued suffix, 0 when the sequence is empty
		  - error: Storage failures
	*/
	LastIssued(context context.Context, name string, prefix string) (int64, error)
}

// # Allocator

// Allocator mints the next formatted identifier in a named sequence.
//
// # Guarantee
//
// For any number of concurrent [Allocator.Next] calls on the same sequence,
// the returned identifiers are pairwise distinct and contiguous.
type Allocator struct {
	store Store
}

// NewAllocator constructs an [Allocator] over the given counter store.
func NewAllocator(store Store) *Allocator {
	return &Allocator{store: store}
}

/*
Next mints the next identifier in the given sequence.

Description: Fast path is a single atomic increment. On first use of a
sequence the counter is bootstrapped from a scan of existing identifiers,
then advanced through a conflict-safe insert.

Parameters:
  - context: context.Context
  - seq: Sequence

Returns:
  - string: Formatted identifier (e.g. "ORG-0042")
  - error: Storage failures. Allocation failure is fatal to the caller's
    write; a record must never be created without its identifier.
*/
func (allocator *Allocator) Next(context context.Context, seq Sequence) (string, error) {

	// Fast path: the counter row exists and the increment is atomic.
	value, err := allocator.store.Increment(context, seq.Name)

	// Bootstrap path: first allocation for this sequence.
	if errors.Is(err, ErrNoCounter) {
		seed, seedErr := allocator.store.LastIssued(context, seq.Name, seq.Prefix)
		if seedErr != nil {
			return "", fmt.Errorf("sequence_bootstrap_scan_failed: %w", seedErr)
		}
		value, err = allocator.store.InitAndIncrement(context, seq.Name, seed)
	}

	if err != nil {
		return "", fmt.Errorf("sequence_allocation_failed: %w", err)
	}

	return Format(seq.Prefix, value, seq.Width), nil
}
