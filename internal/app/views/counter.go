// Package views buffers article view counts in a Redis hash until the flush
// worker applies them to PostgreSQL.
package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Counter struct {
	rdb *redis.Client
	key string
}

func NewCounter(rdb *redis.Client, pendingKey string) *Counter {
	return &Counter{rdb: rdb, key: pendingKey}
}

// Batch is a snapshot of pending counts moved out of the live hash.
type Batch struct {
	Key    string
	Counts map[int64]int64
}

// mergeBackScript folds a batch hash back into the pending hash and drops
// the batch key.
var mergeBackScript = redis.NewScript(`
    local vals = redis.call("hgetall", KEYS[2])
    for i = 1, #vals, 2 do
        redis.call("hincrby", KEYS[1], vals[i], vals[i + 1])
    end
    return redis.call("del", KEYS[2])
`)

func field(articleID int64) string {
	return strconv.FormatInt(articleID, 10)
}

// RecordView adds one pending view and returns the pending total for the
// article.
func (c *Counter) RecordView(ctx context.Context, articleID int64) (int64, error) {
	n, err := c.rdb.HIncrBy(ctx, c.key, field(articleID), 1).Result()
	if err != nil {
		return 0, fmt.Errorf("views.RecordView: %w", err)
	}
	return n, nil
}

// Forget drops the pending count of a deleted article.
func (c *Counter) Forget(ctx context.Context, articleID int64) error {
	if err := c.rdb.HDel(ctx, c.key, field(articleID)).Err(); err != nil {
		return fmt.Errorf("views.Forget: %w", err)
	}
	return nil
}

// Snapshot atomically renames the pending hash to a unique batch key and
// reads it. It returns nil when nothing is pending. Views recorded after the
// rename land in a fresh pending hash.
func (c *Counter) Snapshot(ctx context.Context) (*Batch, error) {
	exists, err := c.rdb.Exists(ctx, c.key).Result()
	if err != nil {
		return nil, fmt.Errorf("views.Snapshot exists: %w", err)
	}
	if exists == 0 {
		return nil, nil
	}

	batchKey := c.key + ":flushing:" + uuid.NewString()
	if err := c.rdb.Rename(ctx, c.key, batchKey).Err(); err != nil {
		// Another flusher may have taken the hash between EXISTS and RENAME.
		if strings.Contains(err.Error(), "no such key") {
			return nil, nil
		}
		return nil, fmt.Errorf("views.Snapshot rename: %w", err)
	}

	raw, err := c.rdb.HGetAll(ctx, batchKey).Result()
	if err != nil {
		if mergeErr := c.mergeBack(ctx, batchKey); mergeErr != nil {
			return nil, fmt.Errorf("views.Snapshot read: %w (batch %s kept: %v)", err, batchKey, mergeErr)
		}
		return nil, fmt.Errorf("views.Snapshot read: %w", err)
	}
	batch := &Batch{Key: batchKey, Counts: make(map[int64]int64, len(raw))}
	for f, v := range raw {
		id, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		batch.Counts[id] = n
	}
	return batch, nil
}

// mergeBack returns an unread batch to the pending hash so its counts are
// picked up by the next snapshot.
func (c *Counter) mergeBack(ctx context.Context, batchKey string) error {
	if err := mergeBackScript.Run(ctx, c.rdb, []string{c.key, batchKey}).Err(); err != nil {
		return fmt.Errorf("views.mergeBack: %w", err)
	}
	return nil
}

// Restore puts n views back into the pending hash after a failed flush.
func (c *Counter) Restore(ctx context.Context, articleID, n int64) error {
	if err := c.rdb.HIncrBy(ctx, c.key, field(articleID), n).Err(); err != nil {
		return fmt.Errorf("views.Restore: %w", err)
	}
	return nil
}

// Discard removes a fully processed batch.
func (c *Counter) Discard(ctx context.Context, batch *Batch) error {
	if err := c.rdb.Del(ctx, batch.Key).Err(); err != nil {
		return fmt.Errorf("views.Discard: %w", err)
	}
	return nil
}
