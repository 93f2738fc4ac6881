package tracking

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"cityfixer-be/models"
	"cityfixer-be/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSequencer struct {
	value int64
	name  string
	err   error
}

func (f *fixedSequencer) Next(_ context.Context, name string) (int64, error) {
	f.name = name
	return f.value, f.err
}

func clock(year int) func() time.Time {
	return func() time.Time { return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC) }
}

func TestAllocateFormat(t *testing.T) {
	tests := []struct {
		seq  int64
		want string
	}{
		{7, "CF-2024-00007"},
		{100000, "CF-2024-100000"},
	}
	for _, tt := range tests {
		seq := &fixedSequencer{value: tt.seq}
		a := NewAllocator(seq).WithClock(clock(2024))

		got, err := a.Allocate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, models.TrackingSequence, seq.name)
	}
}

func TestAllocateUsesYearAtAllocation(t *testing.T) {
	counters := store.NewMemoryCounters()
	year := 2024
	a := NewAllocator(counters).WithClock(func() time.Time {
		return time.Date(year, time.December, 31, 23, 59, 0, 0, time.UTC)
	})

	first, err := a.Allocate(context.Background())
	require.NoError(t, err)
	year = 2025
	second, err := a.Allocate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "CF-2024-00001", first)
	// The sequence is not reset when the year changes.
	assert.Equal(t, "CF-2025-00002", second)
}

func TestAllocateWrapsSequencerError(t *testing.T) {
	boom := errors.New("store down")
	a := NewAllocator(&fixedSequencer{err: boom})

	_, err := a.Allocate(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestAllocateConcurrentIsContiguous(t *testing.T) {
	a := NewAllocator(store.NewMemoryCounters()).WithClock(clock(2024))

	const n = 100
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := a.Allocate(context.Background())
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	seen := make(map[int]bool, n)
	for _, id := range ids {
		require.True(t, strings.HasPrefix(id, "CF-2024-"), id)
		seq, err := strconv.Atoi(strings.TrimPrefix(id, "CF-2024-"))
		require.NoError(t, err)
		assert.False(t, seen[seq], "duplicate %s", id)
		seen[seq] = true
	}
	for seq := 1; seq <= n; seq++ {
		assert.True(t, seen[seq], "missing sequence %d", seq)
	}
}
