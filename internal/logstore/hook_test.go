package logstore

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestHookFireAppendsEntryWithFields(t *testing.T) {
	store := NewStore(10)
	hook := NewHook(store)

	entry := &logrus.Entry{
		Time:    time.Now(),
		Level:   logrus.WarnLevel,
		Message: "something happened",
		Data: logrus.Fields{
			"request_id": "req-123",
			"count":      5,
		},
	}

	if err := hook.Fire(entry); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}

	tail := store.Tail(1)
	if len(tail) != 1 {
		t.Fatalf("len(tail) = %d, want 1", len(tail))
	}
	got := tail[0]
	if got.Message != "something happened" {
		t.Errorf("Message = %q, want %q", got.Message, "something happened")
	}
	if got.Level != "warning" {
		t.Errorf("Level = %q, want %q", got.Level, "warning")
	}
	if got.RequestID != "req-123" {
		t.Errorf("RequestID = %q, want %q", got.RequestID, "req-123")
	}
	if got.Fields["count"] != "5" {
		t.Errorf("Fields[count] = %q, want %q", got.Fields["count"], "5")
	}
	if _, ok := got.Fields["request_id"]; ok {
		t.Error("Fields should not duplicate request_id, it's hoisted to its own column")
	}
}

func TestHookLevelsReturnsAllLevels(t *testing.T) {
	hook := NewHook(NewStore(10))
	if len(hook.Levels()) != len(logrus.AllLevels) {
		t.Fatalf("Levels() returned %d levels, want %d", len(hook.Levels()), len(logrus.AllLevels))
	}
}
