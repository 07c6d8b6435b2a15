package monitor

import (
	"sync"
	"time"
)

// EntryKind classifies a log entry.
type EntryKind string

const (
	KindRequest  EntryKind = "request"
	KindResponse EntryKind = "response"
	KindError    EntryKind = "error"
	KindUpdate   EntryKind = "update"

	// DefaultLogCapacity is used when NewLogStore is given a non-positive capacity.
	DefaultLogCapacity = 1000
)

// LogEntry is one observability event. Entries are appended once and never mutated.
type LogEntry struct {
	Time      time.Time
	Kind      EntryKind
	Operation string
	URL       string
	Content   string
	Status    string
}

// LogStore is a bounded, append-only event log shared by all monitor handles.
// Once the store is full, appending evicts the oldest entries first. All
// methods are safe for concurrent use; the store is handed to components
// explicitly, never held as a package global.
type LogStore struct {
	mu       sync.Mutex
	capacity int
	entries  []LogEntry
}

func NewLogStore(capacity int) *LogStore {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &LogStore{capacity: capacity}
}

// Append adds an entry, evicting oldest entries if the store is beyond capacity.
func (s *LogStore) Append(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if excess := len(s.entries) - s.capacity; excess > 0 {
		s.entries = append(s.entries[:0], s.entries[excess:]...)
	}
}

// Entries returns a snapshot copy of the current log, oldest first.
func (s *LogStore) Entries() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]LogEntry, len(s.entries))
	copy(snapshot, s.entries)
	return snapshot
}

// Len returns the current number of entries.
func (s *LogStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// CountByKind returns the number of entries per kind.
func (s *LogStore) CountByKind() map[EntryKind]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[EntryKind]int)
	for _, entry := range s.entries {
		counts[entry.Kind]++
	}
	return counts
}

// Clear removes all entries.
func (s *LogStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Request records an outgoing RPC request, before any network I/O happens.
func (s *LogStore) Request(operation, url, params string) {
	s.Append(LogEntry{Time: time.Now(), Kind: KindRequest, Operation: operation, URL: url, Content: params, Status: "Sent"})
}

// Response records a successful RPC response.
func (s *LogStore) Response(operation, url, content, status string) {
	s.Append(LogEntry{Time: time.Now(), Kind: KindResponse, Operation: operation, URL: url, Content: content, Status: status})
}

// Error records a failed RPC call.
func (s *LogStore) Error(operation, url, message string) {
	s.Append(LogEntry{Time: time.Now(), Kind: KindError, Operation: operation, URL: url, Content: message, Status: "Error"})
}

// Update records a monitor lifecycle event not tied to a single RPC call.
func (s *LogStore) Update(operation, message, status string) {
	s.Append(LogEntry{Time: time.Now(), Kind: KindUpdate, Operation: operation, URL: "monitor", Content: message, Status: status})
}
