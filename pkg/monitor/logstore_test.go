package monitor

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogStore_AppendAndSnapshot(t *testing.T) {
	store := NewLogStore(10)
	store.Request("getSlot", "http://localhost:8899", "endpoint: http://localhost:8899")
	store.Response("getSlot", "http://localhost:8899", "current: 100", "200 OK")
	store.Error("getBlock", "http://localhost:8899", "connection refused")
	store.Update("monitor", "started", "OK")

	entries := store.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, KindRequest, entries[0].Kind)
	assert.Equal(t, "Sent", entries[0].Status)
	assert.Equal(t, KindResponse, entries[1].Kind)
	assert.Equal(t, "200 OK", entries[1].Status)
	assert.Equal(t, KindError, entries[2].Kind)
	assert.Equal(t, "Error", entries[2].Status)
	assert.Equal(t, KindUpdate, entries[3].Kind)
	assert.Equal(t, "monitor", entries[3].URL)

	counts := store.CountByKind()
	assert.Equal(t, 1, counts[KindRequest])
	assert.Equal(t, 1, counts[KindResponse])
	assert.Equal(t, 1, counts[KindError])
	assert.Equal(t, 1, counts[KindUpdate])
}

func TestLogStore_EvictsOldestFirst(t *testing.T) {
	const capacity = 10
	store := NewLogStore(capacity)
	for i := 0; i < capacity+5; i++ {
		store.Request(fmt.Sprintf("op-%d", i), "url", "")
	}

	entries := store.Entries()
	require.Len(t, entries, capacity)
	// survivors are the last N, in their original order
	for i, entry := range entries {
		assert.Equal(t, fmt.Sprintf("op-%d", i+5), entry.Operation)
	}
}

func TestLogStore_SnapshotIsolation(t *testing.T) {
	store := NewLogStore(10)
	store.Request("getSlot", "url", "")

	snapshot := store.Entries()
	snapshot[0].Operation = "mutated"

	assert.Equal(t, "getSlot", store.Entries()[0].Operation)
}

func TestLogStore_Clear(t *testing.T) {
	store := NewLogStore(10)
	store.Request("getSlot", "url", "")
	store.Clear()
	assert.Zero(t, store.Len())
}

func TestLogStore_ConcurrentAppends(t *testing.T) {
	const capacity = 50
	store := NewLogStore(capacity)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.Request(fmt.Sprintf("worker-%d", worker), "url", "")
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, capacity, store.Len())
}

func TestLogStore_DefaultCapacity(t *testing.T) {
	store := NewLogStore(0)
	store.Request("getSlot", "url", "")
	assert.Equal(t, 1, store.Len())
}
