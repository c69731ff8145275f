package logstore

import (
	"context"
	"testing"
	"time"

	"github.com/manavgup/ragcore/internal/types"
)

func TestStoreTailReturnsOldestFirst(t *testing.T) {
	s := NewStore(5)
	for i := 0; i < 3; i++ {
		s.Append(types.LogEntry{Message: string(rune('a' + i))})
	}

	tail := s.Tail(10)
	if len(tail) != 3 {
		t.Fatalf("len(tail) = %d, want 3", len(tail))
	}
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if tail[i].Message != w {
			t.Errorf("tail[%d].Message = %q, want %q", i, tail[i].Message, w)
		}
	}
}

func TestStoreEvictsOldestWhenFull(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 5; i++ {
		s.Append(types.LogEntry{Message: string(rune('a' + i))})
	}

	tail := s.Tail(10)
	if len(tail) != 3 {
		t.Fatalf("len(tail) = %d, want 3 (capacity)", len(tail))
	}
	want := []string{"c", "d", "e"}
	for i, w := range want {
		if tail[i].Message != w {
			t.Errorf("tail[%d].Message = %q, want %q", i, tail[i].Message, w)
		}
	}
}

func TestStoreTailLimitsToN(t *testing.T) {
	s := NewStore(10)
	for i := 0; i < 5; i++ {
		s.Append(types.LogEntry{Message: string(rune('a' + i))})
	}
	tail := s.Tail(2)
	if len(tail) != 2 {
		t.Fatalf("len(tail) = %d, want 2", len(tail))
	}
	if tail[0].Message != "d" || tail[1].Message != "e" {
		t.Errorf("tail = %+v, want last 2 entries", tail)
	}
}

func TestStoreSubscribeReceivesAppendedEntries(t *testing.T) {
	s := NewStore(10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, unsubscribe := s.Subscribe(ctx, 10)
	defer unsubscribe()

	s.Append(types.LogEntry{Message: "hello"})

	select {
	case entry := <-ch:
		if entry.Message != "hello" {
			t.Errorf("entry.Message = %q, want %q", entry.Message, "hello")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscriber fan-out")
	}
}

func TestStoreSubscriberCountTracksLiveSubscribers(t *testing.T) {
	s := NewStore(10)
	ctx, cancel := context.WithCancel(context.Background())

	_, unsubscribe := s.Subscribe(ctx, 10)
	if s.SubscriberCount() != 1 {
		t.Fatalf("SubscriberCount() = %d, want 1", s.SubscriberCount())
	}
	unsubscribe()
	cancel()
	if s.SubscriberCount() != 0 {
		t.Fatalf("SubscriberCount() = %d, want 0 after unsubscribe", s.SubscriberCount())
	}
}

func TestStoreAppendAssignsIncrementingSeq(t *testing.T) {
	s := NewStore(10)
	first := s.Append(types.LogEntry{Message: "a"})
	second := s.Append(types.LogEntry{Message: "b"})
	if second.Seq <= first.Seq {
		t.Errorf("second.Seq = %d, want > first.Seq (%d)", second.Seq, first.Seq)
	}
}

func TestStoreSlowSubscriberDoesNotBlockWriter(t *testing.T) {
	s := NewStore(10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, unsubscribe := s.Subscribe(ctx, 1) // tiny queue, never drained
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			s.Append(types.LogEntry{Message: "spam"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Append blocked on a full subscriber queue")
	}
}
