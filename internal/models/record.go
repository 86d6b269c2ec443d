package models

import (
	"time"

	json "github.com/goccy/go-json"
)

// CachedRecord is the unit of local persistence: one document payload under
// one cache key. It is replaced wholesale on every write, never patched.
type CachedRecord struct {
	Key         string          `json:"key"`
	Payload     json.RawMessage `json:"payload"`
	LastWriteAt time.Time       `json:"last_write_at"`
}
