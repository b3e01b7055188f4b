// Copyright (c) 2026 Kadrio. All rights reserved.
// Author: platform@kadrio.io

package sequence

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory, mutex-serialized counter store.
type fakeStore struct {
	mu       sync.Mutex
	counters map[string]int64
	seeds    map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		counters: make(map[string]int64),
		seeds:    make(map[string]int64),
	}
}

func (store *fakeStore) Increment(_ context.Context, name string) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	value, exists := store.counters[name]
	if !exists {
		return 0, ErrNoCounter
	}
	store.counters[name] = value + 1
	return value + 1, nil
}

func (store *fakeStore) InitAndIncrement(_ context.Context, name string, seed int64) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	// Conflict arm: a concurrent initializer already won the insert race.
	if value, exists := store.counters[name]; exists {
		store.counters[name] = value + 1
		return value + 1, nil
	}
	store.counters[name] = seed + 1
	return seed + 1, nil
}

func (store *fakeStore) LastIssued(_ context.Context, name, _ string) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.seeds[name], nil
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		value  int64
		width  int
		want   string
	}{
		{name: "padded staff id", prefix: "ORG", value: 1, width: 4, want: "ORG-0001"},
		{name: "mid-range", prefix: "ORG", value: 482, width: 4, want: "ORG-0482"},
		{name: "width boundary", prefix: "ORG", value: 9999, width: 4, want: "ORG-9999"},
		{name: "width growth past boundary", prefix: "ORG", value: 10000, width: 4, want: "ORG-10000"},
		{name: "department registry", prefix: "ORG-D", value: 7, width: 3, want: "ORG-D-007"},
		{name: "superadmin cohort", prefix: "S-25", value: 3, width: 4, want: "S-25-0003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.prefix, tt.value, tt.width))
		})
	}
}

func TestParseSuffix(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		prefix     string
		want       int64
		ok         bool
	}{
		{name: "standard", identifier: "ORG-0042", prefix: "ORG", want: 42, ok: true},
		{name: "grown width", identifier: "ORG-10000", prefix: "ORG", want: 10000, ok: true},
		{name: "nested prefix", identifier: "S-25-0003", prefix: "S-25", want: 3, ok: true},
		{name: "wrong prefix", identifier: "INS-0042", prefix: "ORG", ok: false},
		{name: "non-numeric suffix", identifier: "ORG-00AB", prefix: "ORG", ok: false},
		{name: "empty suffix", identifier: "ORG-", prefix: "ORG", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSuffix(tt.identifier, tt.prefix)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestAllocator_BootstrapFromScan(t *testing.T) {
	store := newFakeStore()
	store.seeds["staff"] = 17 // pre-existing identifiers up to ORG-0017

	allocator := NewAllocator(store)

	first, err := allocator.Next(context.Background(), Staff("ORG"))
	require.NoError(t, err)
	assert.Equal(t, "ORG-0018", first)

	second, err := allocator.Next(context.Background(), Staff("ORG"))
	require.NoError(t, err)
	assert.Equal(t, "ORG-0019", second)
}

func TestAllocator_FreshSequenceStartsAtOne(t *testing.T) {
	allocator := NewAllocator(newFakeStore())

	id, err := allocator.Next(context.Background(), Department("ORG"))
	require.NoError(t, err)
	assert.Equal(t, "ORG-D-001", id)
}

func TestAllocator_ConcurrentNextIsDistinctAndContiguous(t *testing.T) {
	const workers = 64

	store := newFakeStore()
	store.seeds["staff"] = 100

	allocator := NewAllocator(store)
	seq := Staff("ORG")

	var wg sync.WaitGroup
	results := make(chan string, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := allocator.Next(context.Background(), seq)
			assert.NoError(t, err)
			results <- id
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool, workers)
	var lowest, highest int64 = 1<<62, 0
	for id := range results {
		assert.False(t, seen[id], "identifier %s allocated twice", id)
		seen[id] = true

		value, ok := ParseSuffix(id, seq.Prefix)
		require.True(t, ok)
		if value < lowest {
			lowest = value
		}
		if value > highest {
			highest = value
		}
	}

	assert.Len(t, seen, workers)
	assert.Equal(t, int64(101), lowest)
	assert.Equal(t, int64(100+workers), highest)
}
