package storage

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"portfolio-sync/internal/database"

	"github.com/google/uuid"
)

const postgresChannel = "content_slots"

// Listener is satisfied by the pgx pool: it blocks delivering notification
// payloads for channel until ctx is done or the connection fails.
type Listener interface {
	Listen(ctx context.Context, channel string, fn func(payload string)) error
}

// Postgres stores slots in the content_slots table. Writes raise a NOTIFY
// carrying only the key and the writer's origin; the value is re-read.
//
// All watchers share one LISTEN connection. Notices are queued by key and
// re-read on a separate goroutine, never inside the listen callback.
type Postgres struct {
	db       database.DB
	listener Listener
	origin   string
	logger   *log.Logger

	retry time.Duration

	mu       sync.Mutex
	closed   bool
	watchers map[int]chan Change
	nextID   int
	stopFeed context.CancelFunc
	feed     sync.WaitGroup
}

func NewPostgres(db database.DB, listener Listener, logger *log.Logger) *Postgres {
	if logger == nil {
		logger = log.Default()
	}
	return &Postgres{
		db:       db,
		listener: listener,
		origin:   uuid.NewString(),
		logger:   logger,
		retry:    2 * time.Second,
		watchers: map[int]chan Change{},
	}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	if !validKey(key) {
		return "", false, ErrInvalidKey
	}
	var value string
	row := p.db.QueryRow(ctx, `SELECT value FROM content_slots WHERE key = $1`, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	if p.isClosed() {
		return ErrClosed
	}

	notice, err := encodeNotice(changeNotice{Key: key, Origin: p.origin})
	if err != nil {
		return err
	}

	return p.db.InTx(ctx, func(tx database.Executor) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO content_slots (key, value, origin, updated_at)
			 VALUES ($1, $2, $3, now())
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, origin = EXCLUDED.origin, updated_at = now()`,
			key, value, p.origin,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, postgresChannel, notice)
		return err
	})
}

// Watch registers a watcher on the shared notification feed, starting the
// feed on first use.
func (p *Postgres) Watch(ctx context.Context) (<-chan Change, error) {
	if p.listener == nil {
		return nil, ErrUnsupported
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	if p.stopFeed == nil {
		p.startFeed()
	}

	id := p.nextID
	p.nextID++
	out := make(chan Change, watchBuffer)
	p.watchers[id] = out

	context.AfterFunc(ctx, func() { p.dropWatcher(id) })
	return out, nil
}

// startFeed must be called with p.mu held.
func (p *Postgres) startFeed() {
	ctx, cancel := context.WithCancel(context.Background())
	p.stopFeed = cancel

	keys := make(chan string, watchBuffer)
	p.feed.Add(2)
	go func() {
		defer p.feed.Done()
		defer close(keys)
		p.listen(ctx, keys)
	}()
	go func() {
		defer p.feed.Done()
		p.dispatch(ctx, keys)
	}()
}

func (p *Postgres) listen(ctx context.Context, keys chan<- string) {
	for {
		err := p.listener.Listen(ctx, postgresChannel, func(payload string) {
			p.queueNotice(keys, payload)
		})
		if ctx.Err() != nil {
			return
		}
		p.logger.Printf("[Store] postgres listen interrupted | err=%v retry_in=%s", err, p.retry)
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.retry):
		}
	}
}

// queueNotice runs on the listening connection and must not touch the pool.
func (p *Postgres) queueNotice(keys chan<- string, payload string) {
	n, err := decodeNotice(payload)
	if err != nil {
		p.logger.Printf("[Store] postgres notice ignored | err=%v", err)
		return
	}
	if n.Origin == p.origin {
		return
	}
	select {
	case keys <- n.Key:
	default:
		p.logger.Printf("[Store] postgres notice dropped | key=%s reason=queue_full", n.Key)
	}
}

func (p *Postgres) dispatch(ctx context.Context, keys <-chan string) {
	for key := range keys {
		value, ok, err := p.Get(ctx, key)
		if err != nil {
			if ctx.Err() == nil {
				p.logger.Printf("[Store] postgres re-read failed | key=%s err=%v", key, err)
			}
			continue
		}
		p.fanout(Change{Key: key, Value: value, Present: ok})
	}
}

func (p *Postgres) fanout(c Change) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.watchers {
		if !emit(ch, c) {
			p.logger.Printf("[Store] postgres watch dropped change | key=%s reason=buffer_full", c.Key)
		}
	}
}

func (p *Postgres) dropWatcher(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ch, ok := p.watchers[id]; ok {
		delete(p.watchers, id)
		close(ch)
	}
}

func (p *Postgres) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Close stops the feed and ends every watch. The pool itself belongs to the
// container.
func (p *Postgres) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	for id, ch := range p.watchers {
		delete(p.watchers, id)
		close(ch)
	}
	stop := p.stopFeed
	p.mu.Unlock()

	if stop != nil {
		stop()
		p.feed.Wait()
	}
	return nil
}
