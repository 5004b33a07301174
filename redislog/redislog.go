// Package redislog is the Redis-streams-backed, resumable log backend
// (§4.2, §6 "reference redis-streams backend"). It gives a body to the
// dependency matgreaves/rig's own connect/redisx submodule declares but
// never implements.
//
// The blocking-read loop is grounded on the Redis Streams reader in
// _examples/other_examples/f9c029d9_Kocoro-lab-Shannon's streaming manager
// (internal/streaming/manager.go): XRead with a block duration, retrying
// on redis.Nil, returning on context cancellation. Any other failed read
// is logged and retried at once, with no delay between attempts.
package redislog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leonj1/river"
)

// Config holds the options recognized by the reference backend (§6).
type Config struct {
	// BackendURL is a redis:// connection string, parsed with
	// redis.ParseURL.
	BackendURL string

	// KeyPrefix prefixes every stream key. Defaults to "river:stream:".
	KeyPrefix string

	// BlockDuration is how long a single XRead blocks waiting for new
	// entries before looping. Defaults to 10ms.
	BlockDuration time.Duration

	// ReadCountCap is the max entries fetched per XRead call. Defaults to
	// 10.
	ReadCountCap int64

	// Logger receives append/mark-end failures (§4.4, §9 open question:
	// "a port should expose a metrics hook"). Defaults to slog.Default().
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.KeyPrefix == "" {
		c.KeyPrefix = "river:stream:"
	}
	if c.BlockDuration <= 0 {
		c.BlockDuration = 10 * time.Millisecond
	}
	if c.ReadCountCap <= 0 {
		c.ReadCountCap = 10
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Backend is the Redis Streams log backend.
type Backend struct {
	client *redis.Client
	cfg    Config
}

// Connect parses cfg.BackendURL and dials Redis.
func Connect(cfg Config) (*Backend, error) {
	cfg = cfg.withDefaults()
	opts, err := redis.ParseURL(cfg.BackendURL)
	if err != nil {
		return nil, err
	}
	return &Backend{client: redis.NewClient(opts), cfg: cfg}, nil
}

// New wraps an already-constructed client, for tests (miniredis) or callers
// that manage their own connection pool.
func New(client *redis.Client, cfg Config) *Backend {
	return &Backend{client: client, cfg: cfg.withDefaults()}
}

func (b *Backend) ProviderID() string { return "redis" }

func (b *Backend) IsResumable() bool { return true }

func (b *Backend) streamKey(key river.LogKey) string {
	return b.cfg.KeyPrefix + key.StorageID + ":" + key.RunID
}

// Append performs a single stream-append with a "data" field containing the
// codec-encoded item (§4.2).
func (b *Backend) Append(ctx context.Context, key river.LogKey, item river.Item) error {
	data, err := river.EncodeItem(item)
	if err != nil {
		return err
	}
	err = b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.streamKey(key),
		Values: map[string]any{"data": string(data)},
	}).Err()
	if err != nil {
		b.cfg.Logger.Error("redislog: append failed", "key", key, "err", err)
	}
	return err
}

// MarkEnd appends a sentinel entry with a distinguished "end" field.
func (b *Backend) MarkEnd(ctx context.Context, key river.LogKey) error {
	err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.streamKey(key),
		Values: map[string]any{"end": "true"},
	}).Err()
	if err != nil {
		b.cfg.Logger.Error("redislog: mark-end failed", "key", key, "err", err)
	}
	return err
}

// Exists reports whether the stream key has been created.
func (b *Backend) Exists(ctx context.Context, key river.LogKey) (bool, error) {
	n, err := b.client.Exists(ctx, b.streamKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Tail starts a blocking stream-read from fromOffset (river.OffsetZero
// means "0", i.e. from the first entry) and yields entries on the returned
// channel until the sentinel is observed or ctx is cancelled. Blocking-read
// timeouts (redis.Nil) are not errors — the loop simply continues (§4.2).
func (b *Backend) Tail(ctx context.Context, key river.LogKey, fromOffset string) (<-chan river.TailEntry, error) {
	out := make(chan river.TailEntry)
	lastID := fromOffset
	if lastID == river.OffsetZero {
		lastID = "0"
	}
	streamKey := b.streamKey(key)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			res, err := b.client.XRead(ctx, &redis.XReadArgs{
				Streams: []string{streamKey, lastID},
				Count:   b.cfg.ReadCountCap,
				Block:   b.cfg.BlockDuration,
			}).Result()

			if errors.Is(err, redis.Nil) {
				continue // no new entries yet — loop
			}
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				b.cfg.Logger.Error("redislog: tail read failed", "key", key, "err", err)
				continue
			}

			for _, stream := range res {
				for _, msg := range stream.Messages {
					lastID = msg.ID

					if _, isEnd := msg.Values["end"]; isEnd {
						select {
						case out <- river.TailEntry{End: true, Offset: lastID}:
						case <-ctx.Done():
						}
						return
					}

					raw, _ := msg.Values["data"].(string)
					item, decodeErr := river.DecodeItem([]byte(raw))
					if decodeErr != nil {
						b.cfg.Logger.Error("redislog: decode failed", "key", key, "err", decodeErr)
						continue
					}

					select {
					case out <- river.TailEntry{Item: item, Offset: lastID}:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return out, nil
}

var _ river.LogBackend = (*Backend)(nil)
