package worker

import (
	"context"
	"time"

	"travelpoint/internal/app/views"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ViewSink persists buffered view counts.
type ViewSink interface {
	AddViews(ctx context.Context, id int64, n int64) error
}

type ViewFlushConfig struct {
	Interval time.Duration
	LockKey  string
	LockTTL  time.Duration
}

// ViewFlushWorker periodically moves pending article views from Redis into
// PostgreSQL. Only one replica flushes at a time.
type ViewFlushWorker struct {
	rdb     *redis.Client
	counter *views.Counter
	sink    ViewSink
	cfg     ViewFlushConfig
	log     logrus.FieldLogger
}

func NewViewFlushWorker(rdb *redis.Client, counter *views.Counter, sink ViewSink, cfg ViewFlushConfig, log logrus.FieldLogger) *ViewFlushWorker {
	return &ViewFlushWorker{
		rdb:     rdb,
		counter: counter,
		sink:    sink,
		cfg:     cfg,
		log:     log.WithField("component", "view_flush_worker"),
	}
}

var releaseLockScript = redis.NewScript(`
    if redis.call("get", KEYS[1]) == ARGV[1] then
        return redis.call("del", KEYS[1])
    else
        return 0
    end
`)

// Start runs until ctx is cancelled, then performs one last flush.
func (w *ViewFlushWorker) Start(ctx context.Context) {
	w.log.WithField("interval", w.cfg.Interval).Info("View flush worker started")
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("View flush worker stopping, final flush")
			finalCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			w.FlushWithLock(finalCtx)
			cancel()
			return
		case <-ticker.C:
			w.FlushWithLock(ctx)
		}
	}
}

// FlushWithLock flushes pending views if this process can take the flush
// lock. It reports whether a flush ran.
func (w *ViewFlushWorker) FlushWithLock(ctx context.Context) bool {
	lockValue := uuid.NewString()

	ok, err := w.rdb.SetNX(ctx, w.cfg.LockKey, lockValue, w.cfg.LockTTL).Result()
	if err != nil {
		w.log.WithError(err).Error("Failed to attempt flush lock acquisition")
		return false
	}
	if !ok {
		w.log.Debug("Flush lock held by another worker, skipping")
		return false
	}

	defer func() {
		deleted, err := releaseLockScript.Run(ctx, w.rdb, []string{w.cfg.LockKey}, lockValue).Int64()
		if err != nil {
			w.log.WithError(err).Error("Failed to release flush lock")
		} else if deleted != 1 {
			w.log.Warn("Did not release flush lock; it might have expired or been taken by another")
		}
	}()

	w.flush(ctx)
	return true
}

func (w *ViewFlushWorker) flush(ctx context.Context) {
	batch, err := w.counter.Snapshot(ctx)
	if err != nil {
		w.log.WithError(err).Error("Failed to snapshot pending views")
		return
	}
	if batch == nil {
		return
	}

	var applied, restored int
	for id, n := range batch.Counts {
		if err := w.sink.AddViews(ctx, id, n); err != nil {
			w.log.WithError(err).WithField("article_id", id).Warn("Failed to persist views, re-queueing")
			if rErr := w.counter.Restore(ctx, id, n); rErr != nil {
				w.log.WithError(rErr).WithField("article_id", id).Error("Failed to re-queue views; counts lost")
			}
			restored++
			continue
		}
		applied++
	}

	if err := w.counter.Discard(ctx, batch); err != nil {
		w.log.WithError(err).WithField("batch", batch.Key).Error("Failed to discard flushed batch")
	}
	w.log.WithFields(logrus.Fields{"applied": applied, "requeued": restored}).Debug("Flushed article views")
}
