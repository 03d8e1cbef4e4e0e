package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"portfolio-sync/internal/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "portfolio:slot:"
	redisChannel   = "portfolio:slot-changes"
)

// Redis stores each slot under its own key and publishes the written value on
// a shared channel, so watchers never need a second round trip.
type Redis struct {
	client *redis.Client
	origin string
	logger *log.Logger

	mu      sync.Mutex
	closed  bool
	cancels []context.CancelFunc
}

// DialRedis connects and pings; callers own the returned client.
func DialRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(cfg.Port)
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis unavailable: %w", err)
	}
	return client, nil
}

func NewRedis(client *redis.Client, logger *log.Logger) *Redis {
	if logger == nil {
		logger = log.Default()
	}
	return &Redis{client: client, origin: uuid.NewString(), logger: logger}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	if !validKey(key) {
		return "", false, ErrInvalidKey
	}
	v, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	if r.isClosed() {
		return ErrClosed
	}

	notice, err := encodeNotice(changeNotice{Key: key, Origin: r.origin, Value: &value})
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKeyPrefix+key, value, 0)
		pipe.Publish(ctx, redisChannel, notice)
		return nil
	})
	return err
}

func (r *Redis) Watch(ctx context.Context) (<-chan Change, error) {
	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	r.cancels = append(r.cancels, cancel)
	r.mu.Unlock()

	sub := r.client.Subscribe(ctx, redisChannel)
	if _, err := sub.Receive(ctx); err != nil {
		cancel()
		_ = sub.Close()
		return nil, err
	}

	out := make(chan Change, watchBuffer)
	go func() {
		defer close(out)
		defer func() {
			_ = sub.Close()
		}()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				c, ok := r.changeFor(msg.Payload)
				if !ok {
					continue
				}
				if !emit(out, c) {
					r.logger.Printf("[Store] redis watch dropped change | key=%s reason=buffer_full", c.Key)
				}
			}
		}
	}()
	return out, nil
}

// changeFor maps a published notice to the change a watcher reports. Own
// writes and unreadable payloads yield nothing; a notice without a value
// reports the slot as removed.
func (r *Redis) changeFor(payload string) (Change, bool) {
	n, err := decodeNotice(payload)
	if err != nil {
		r.logger.Printf("[Store] redis notice ignored | err=%v", err)
		return Change{}, false
	}
	if n.Origin == r.origin {
		return Change{}, false
	}
	c := Change{Key: n.Key}
	if n.Value != nil {
		c.Value = *n.Value
		c.Present = true
	}
	return c, true
}

func (r *Redis) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Close stops the watchers. The client belongs to the container.
func (r *Redis) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	for _, cancel := range r.cancels {
		cancel()
	}
	r.cancels = nil
	return nil
}
