// Package logstore is the Log Storage & Streaming component: a bounded ring buffer of
// recent log entries plus live fan-out to admin subscribers. It carries log entries
// only; no task-progress updates are published through it.
package logstore

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/manavgup/ragcore/internal/types"
)

// Store is a fixed-capacity ring buffer of LogEntry, with live subscribers fed from the
// same append path. A full subscriber queue drops the newest entry for that subscriber
// rather than blocking the writer — a slow reader must never stall the pipeline.
type Store struct {
	mu       sync.RWMutex
	capacity int
	buffer   []types.LogEntry
	start    int
	size     int
	seq      uint64

	subMu       sync.Mutex
	subscribers map[uint64]chan types.LogEntry
	nextSubID   uint64
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Store{
		capacity:    capacity,
		buffer:      make([]types.LogEntry, capacity),
		subscribers: make(map[uint64]chan types.LogEntry),
	}
}

// Append adds an entry to the ring buffer and fans it out to every live subscriber.
func (s *Store) Append(entry types.LogEntry) types.LogEntry {
	entry.Seq = atomic.AddUint64(&s.seq, 1)

	s.mu.Lock()
	idx := (s.start + s.size) % s.capacity
	if s.size == s.capacity {
		s.start = (s.start + 1) % s.capacity
	} else {
		s.size++
	}
	s.buffer[idx] = entry
	s.mu.Unlock()

	s.fanOut(entry)
	return entry
}

func (s *Store) fanOut(entry types.LogEntry) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- entry:
		default:
			// subscriber queue full: drop rather than block the writer
		}
	}
}

// Tail returns up to n of the most recent entries, oldest first.
func (s *Store) Tail(n int) []types.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n > s.size {
		n = s.size
	}
	out := make([]types.LogEntry, n)
	for i := 0; i < n; i++ {
		idx := (s.start + s.size - n + i) % s.capacity
		out[i] = s.buffer[idx]
	}
	return out
}

// Subscribe registers a buffered channel that receives every entry appended from now on.
// The returned cancel func must be called when the subscriber disconnects to release the
// channel and stop fan-out work for it.
func (s *Store) Subscribe(ctx context.Context, queueSize int) (<-chan types.LogEntry, func()) {
	if queueSize <= 0 {
		queueSize = 100
	}
	ch := make(chan types.LogEntry, queueSize)

	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.subMu.Unlock()

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(ch)
		}
	}

	go func() {
		<-ctx.Done()
		cancel()
	}()

	return ch, cancel
}

// SubscriberCount reports how many live subscribers are currently fed, for diagnostics.
func (s *Store) SubscriberCount() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subscribers)
}
