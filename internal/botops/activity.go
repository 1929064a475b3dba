package botops

import (
	"sync"
	"time"
)

// DefaultActivityCapacity bounds the in-memory activity log.
const DefaultActivityCapacity = 100

// Entry is one line of bot activity.
type Entry struct {
	At   time.Time
	Text string
}

// ActivityLog is a bounded, thread-safe ring of recent activity. When full,
// the oldest entry is overwritten.
type ActivityLog struct {
	mu       sync.Mutex
	entries  []Entry
	head     int // next write position
	count    int
	capacity int

	dropped int64
}

func NewActivityLog(capacity int) *ActivityLog {
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}
	return &ActivityLog{
		entries:  make([]Entry, capacity),
		capacity: capacity,
	}
}

// Record appends an entry, dropping the oldest if necessary.
func (l *ActivityLog) Record(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count == l.capacity {
		l.dropped++
	} else {
		l.count++
	}
	l.entries[l.head] = e
	l.head = (l.head + 1) % l.capacity
}

// Snapshot returns the retained entries, oldest first.
func (l *ActivityLog) Snapshot() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, l.count)
	start := (l.head - l.count + l.capacity) % l.capacity
	for i := range l.count {
		out[i] = l.entries[(start+i)%l.capacity]
	}
	return out
}

func (l *ActivityLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Dropped returns how many entries were overwritten.
func (l *ActivityLog) Dropped() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}
