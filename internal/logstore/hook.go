package logstore

import (
	"time"

	"github.com/manavgup/ragcore/internal/types"
	"github.com/sirupsen/logrus"
)

// Hook is a logrus.Hook that mirrors every log entry into a Store, so the same ring
// buffer and subscriber fan-out used for `/admin/logs` carries ordinary application
// logs without a second logging path.
type Hook struct {
	store *Store
}

func NewHook(store *Store) *Hook {
	return &Hook{store: store}
}

func (h *Hook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *Hook) Fire(entry *logrus.Entry) error {
	fields := make(map[string]string, len(entry.Data))
	var requestID string
	for k, v := range entry.Data {
		if k == "request_id" {
			requestID = toString(v)
			continue
		}
		fields[k] = toString(v)
	}

	h.store.Append(types.LogEntry{
		Timestamp: entry.Time,
		Level:     entry.Level.String(),
		Message:   entry.Message,
		RequestID: requestID,
		Fields:    fields,
	})
	return nil
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return jsonStringify(t)
	}
}
