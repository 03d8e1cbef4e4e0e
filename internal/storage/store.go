// Package storage holds the persistent key/value slots that back the content
// domains. Every backend reports writes made by other writers through Watch.
package storage

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrClosed      = errors.New("storage closed")
	ErrInvalidKey  = errors.New("invalid storage key")
	ErrUnsupported = errors.New("unsupported storage driver")
)

// Change describes a write observed from another writer. Present is false when
// the slot was removed.
type Change struct {
	Key     string
	Value   string
	Present bool
}

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	// Watch streams changes made by other writers until ctx is done. The
	// channel is closed when the watch ends.
	Watch(ctx context.Context) (<-chan Change, error)
	Close() error
}

const watchBuffer = 64

// changeNotice is the payload the networked backends publish next to a write.
type changeNotice struct {
	Key    string  `json:"key"`
	Origin string  `json:"origin"`
	Value  *string `json:"value,omitempty"`
}

func encodeNotice(n changeNotice) (string, error) {
	b, err := json.Marshal(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeNotice(payload string) (changeNotice, error) {
	var n changeNotice
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return changeNotice{}, err
	}
	if n.Key == "" {
		return changeNotice{}, ErrInvalidKey
	}
	return n, nil
}

func validKey(key string) bool {
	if key == "" || len(key) > 128 {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return key != "." && key != ".."
}

// emit delivers c without blocking the writer. A watcher more than a buffer
// behind drops the change; the next sync refresh repairs it.
func emit(ch chan<- Change, c Change) bool {
	select {
	case ch <- c:
		return true
	default:
		return false
	}
}
