package syncer

import (
	"context"
	"errors"
	"sync"

	"fitsyncd/internal/models"
	"fitsyncd/internal/providers"
	"fitsyncd/internal/storage"

	"go.uber.org/atomic"
)

// ErrNotFound reports that a key has neither a local nor a reachable remote
// copy.
var ErrNotFound = errors.New("record not found")

// Outcome is the user-visible result of a guarded write. Both variants are
// successes; only a local StorageError fails the operation.
type Outcome int

const (
	OutcomeSynced Outcome = iota
	OutcomeSavedOffline
)

func (o Outcome) String() string {
	if o == OutcomeSynced {
		return "synced"
	}
	return "saved-offline"
}

type RemoteWriteFn func(ctx context.Context, payload []byte) error

type RemoteReadFn func(ctx context.Context) ([]byte, error)

type CoordinatorInterface interface {
	GuardedWrite(ctx context.Context, key string, payload []byte, remote RemoteWriteFn) (Outcome, error)
	GuardedRead(ctx context.Context, key string, remote RemoteReadFn) ([]byte, error)
	DrainQueue(ctx context.Context)
	QueueDepth() int
}

// Coordinator generalizes the per-screen "try remote, fall back to local"
// pattern into one guarded read/write contract. The local cache is written
// unconditionally and is the source of truth for reads; the queue records
// which keys still owe the remote store a replay.
type Coordinator struct {
	local    storage.LocalCacheInterface
	remote   storage.RemoteStoreInterface
	queue    QueueInterface
	monitor  providers.ConnectivityInterface
	metrics  providers.MetricsProviderInterface
	logger   providers.Logger
	draining *atomic.Bool
	keys     keyedMutex
}

func NewCoordinator(local storage.LocalCacheInterface, remote storage.RemoteStoreInterface, queue QueueInterface, monitor providers.ConnectivityInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) CoordinatorInterface {
	return &Coordinator{
		local:    local,
		remote:   remote,
		queue:    queue,
		monitor:  monitor,
		metrics:  metrics,
		logger:   logger,
		draining: atomic.NewBool(false),
	}
}

// GuardedWrite lands payload in the local cache first, then tries the remote
// store. Remote failure or disconnection degrades to saved-offline and queues
// the key; only the local write can fail the operation.
func (c *Coordinator) GuardedWrite(ctx context.Context, key string, payload []byte, remote RemoteWriteFn) (Outcome, error) {
	unlock := c.keys.lock(key)
	defer unlock()

	if err := c.local.Write(key, payload); err != nil {
		return OutcomeSavedOffline, err
	}

	if !c.monitor.Current() {
		return c.savedOffline(key)
	}

	if err := remote(ctx, payload); err != nil {
		c.logger.Warnf(providers.TypeSync, "Remote write for %q failed, queued for replay: %s", key, err)
		return c.savedOffline(key)
	}

	if seenAt, queued := c.queue.EnqueuedAt(key); queued {
		if err := c.queue.Acknowledge(key, seenAt); err != nil {
			c.logger.Errorf(providers.TypeSync, "Failed to acknowledge %q: %s", key, err)
		}
	}
	c.metrics.IncWriteOutcome(OutcomeSynced.String())
	return OutcomeSynced, nil
}

func (c *Coordinator) savedOffline(key string) (Outcome, error) {
	if err := c.queue.Enqueue(key); err != nil {
		// the payload has no durable dirty marker; surface as a hard error
		return OutcomeSavedOffline, err
	}
	c.metrics.IncWriteOutcome(OutcomeSavedOffline.String())
	return OutcomeSavedOffline, nil
}

// GuardedRead prefers the local copy whenever the key is queued — a pending
// local write must never be shadowed by a stale remote read. Otherwise it
// refreshes from the remote store when reachable and falls back to the local
// copy when not.
func (c *Coordinator) GuardedRead(ctx context.Context, key string, remote RemoteReadFn) ([]byte, error) {
	unlock := c.keys.lock(key)
	defer unlock()

	if _, queued := c.queue.EnqueuedAt(key); queued {
		record, ok, err := c.local.Read(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotFound
		}
		return record.Payload, nil
	}

	if c.monitor.Current() {
		payload, err := remote(ctx)
		if err == nil {
			if werr := c.local.Write(key, payload); werr != nil {
				return nil, werr
			}
			return payload, nil
		}
		if errors.Is(err, storage.ErrDocNotFound) {
			return nil, ErrNotFound
		}
		c.logger.Warnf(providers.TypeSync, "Remote read for %q failed, using local copy: %s", key, err)
	}

	record, ok, err := c.local.Read(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return record.Payload, nil
}

// DrainQueue replays every queued key's latest local value in first-enqueued
// order. One key's failure never blocks the rest; whatever is still queued
// afterwards waits for the next connectivity-restored event. A drain already
// in progress is not started twice.
func (c *Coordinator) DrainQueue(ctx context.Context) {
	if !c.draining.CompareAndSwap(false, true) {
		return
	}
	defer c.draining.Store(false)

	c.logger.Infof(providers.TypeSync, "Draining sync queue (%d keys)", c.queue.Len())

	for entry := range c.queue.DrainInOrder() {
		c.replay(ctx, entry)
	}

	if remaining := c.queue.Len(); remaining > 0 {
		c.logger.Warnf(providers.TypeSync, "%d keys still queued after drain", remaining)
	}
}

func (c *Coordinator) replay(ctx context.Context, entry QueueEntry) {
	unlock := c.keys.lock(entry.Key)
	defer unlock()

	record, ok, err := c.local.Read(entry.Key)
	if err != nil || !ok {
		c.logger.Errorf(providers.TypeSync, "Queued key %q has no readable local record, dropping: %v", entry.Key, err)
		_ = c.queue.Acknowledge(entry.Key, entry.EnqueuedAt)
		return
	}

	collection, docID, ok := models.CollectionForKey(entry.Key)
	if !ok {
		c.logger.Errorf(providers.TypeSync, "Queued key %q has no remote collection, dropping", entry.Key)
		_ = c.queue.Acknowledge(entry.Key, entry.EnqueuedAt)
		return
	}

	if err := c.remote.SetDoc(ctx, collection, docID, record.Payload); err != nil {
		c.metrics.IncReplayFailures()
		c.logger.Warnf(providers.TypeSync, "Replay of %q failed, will retry on next drain: %s", entry.Key, err)
		return
	}

	if err := c.queue.Acknowledge(entry.Key, entry.EnqueuedAt); err != nil {
		c.logger.Errorf(providers.TypeSync, "Failed to acknowledge %q after replay: %s", entry.Key, err)
		return
	}
	c.metrics.IncReplayed()
}

func (c *Coordinator) QueueDepth() int {
	return c.queue.Len()
}

// keyedMutex hands out one mutex per cache key so a guarded write and a
// concurrent drain replay of the same key cannot interleave their local
// reads and writes.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
