package calculator

import (
	"fmt"
	"sync"
	"time"
)

// DefaultHistorySize is the number of completed calculations kept.
const DefaultHistorySize = 10

// Entry is one completed calculation. Entries are never mutated after they
// are appended.
type Entry struct {
	OperandA int
	Operator Operator
	OperandB int
	Result   Result
	At       time.Time
}

// String formats the entry as "A op B = result".
func (e Entry) String() string {
	return fmt.Sprintf("%d %s %d = %s", e.OperandA, e.Operator.Symbol(), e.OperandB, e.Result)
}

// History is a sliding window over the most recent completed calculations.
// Appending past capacity drops the oldest entry. It is safe for one writer
// and any number of concurrent readers.
type History struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
}

// NewHistory creates a History holding at most capacity entries.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

// Append adds e to the end of the log, then truncates to the newest entries.
func (h *History) Append(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, e)
	if over := len(h.entries) - h.capacity; over > 0 {
		h.entries = append(h.entries[:0], h.entries[over:]...)
	}
}

// Load replaces the log contents with entries (oldest first), keeping the
// newest ones when there are more than capacity.
func (h *History) Load(entries []Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if over := len(entries) - h.capacity; over > 0 {
		entries = entries[over:]
	}
	h.entries = append(h.entries[:0], entries...)
}

// Snapshot returns a copy of the entries in insertion order.
func (h *History) Snapshot() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Strings returns the formatted entries in insertion order.
func (h *History) Strings() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.String()
	}
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Capacity returns the maximum number of entries kept.
func (h *History) Capacity() int {
	return h.capacity
}
