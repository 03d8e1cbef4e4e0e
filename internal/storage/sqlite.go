package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS content_slots (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	origin     TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	updated_at TEXT NOT NULL
)`

// SQLite keeps slots in a single database file shared by every process that
// opens it. SQLite has no notification channel, so Watch polls for rows whose
// sequence number moved past the last one seen.
type SQLite struct {
	db     *sql.DB
	origin string
	logger *log.Logger
	poll   time.Duration

	mu      sync.Mutex
	closed  bool
	cancels []context.CancelFunc
}

func OpenSQLite(ctx context.Context, path string, poll time.Duration, logger *log.Logger) (*SQLite, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("empty sqlite path")
	}
	if logger == nil {
		logger = log.Default()
	}
	if poll <= 0 {
		poll = time.Second
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db, origin: uuid.NewString(), logger: logger, poll: poll}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	if !validKey(key) {
		return "", false, ErrInvalidKey
	}
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM content_slots WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	if s.isClosed() {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO content_slots (key, value, origin, seq, updated_at)
		 VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM content_slots), ?)
		 ON CONFLICT (key) DO UPDATE SET
		   value = excluded.value,
		   origin = excluded.origin,
		   seq = excluded.seq,
		   updated_at = excluded.updated_at`,
		key, value, s.origin, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *SQLite) Watch(ctx context.Context) (<-chan Change, error) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	s.cancels = append(s.cancels, cancel)
	s.mu.Unlock()

	var last int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM content_slots`).Scan(&last); err != nil {
		cancel()
		return nil, err
	}

	out := make(chan Change, watchBuffer)
	go func() {
		defer close(out)
		t := time.NewTicker(s.poll)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				next, err := s.pollOnce(ctx, last, out)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					s.logger.Printf("[Store] sqlite poll failed | err=%v", err)
					continue
				}
				last = next
			}
		}
	}()
	return out, nil
}

func (s *SQLite) pollOnce(ctx context.Context, since int64, out chan<- Change) (int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value, origin, seq FROM content_slots WHERE seq > ? ORDER BY seq ASC`,
		since,
	)
	if err != nil {
		return since, err
	}
	defer rows.Close()

	last := since
	for rows.Next() {
		var (
			key, value, origin string
			seq                int64
		)
		if err := rows.Scan(&key, &value, &origin, &seq); err != nil {
			return last, err
		}
		last = seq
		if origin == s.origin {
			continue
		}
		if !emit(out, Change{Key: key, Value: value, Present: true}) {
			s.logger.Printf("[Store] sqlite watch dropped change | key=%s reason=buffer_full", key)
		}
	}
	return last, rows.Err()
}

func (s *SQLite) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *SQLite) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
	s.mu.Unlock()
	return s.db.Close()
}
