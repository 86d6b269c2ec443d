package syncer

import (
	"iter"
	"slices"
	"sync"
	"time"

	"fitsyncd/internal/models"
	"fitsyncd/internal/providers"
	"fitsyncd/internal/storage"

	json "github.com/goccy/go-json"
)

// QueueEntry is one dirty key waiting for replay. EnqueuedAt refreshes on
// re-enqueue while the key keeps its first-seen position.
type QueueEntry struct {
	Key        string
	EnqueuedAt time.Time
}

type QueueInterface interface {
	Enqueue(key string) error
	EnqueuedAt(key string) (time.Time, bool)
	DrainInOrder() iter.Seq[QueueEntry]
	Acknowledge(key string, seenAt time.Time) error
	Len() int
}

// Queue is the durable set of cache keys whose local copy is ahead of the
// remote one. Membership and order persist under the syncQueue cache key as
// a plain JSON array of key strings, rewritten atomically on every change;
// enqueue timestamps live in memory only — they exist to guard acknowledges
// against re-enqueues during a drain, a race confined to one process
// lifetime.
type Queue struct {
	local   storage.LocalCacheInterface
	clock   providers.Clock
	metrics providers.MetricsProviderInterface
	logger  providers.Logger

	mu    sync.Mutex
	order []string
	at    map[string]time.Time
}

func NewSyncQueue(local storage.LocalCacheInterface, clock providers.Clock, metrics providers.MetricsProviderInterface, logger providers.Logger) (QueueInterface, error) {
	q := &Queue{
		local:   local,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
		at:      make(map[string]time.Time),
	}
	if err := q.load(); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *Queue) load() error {
	record, ok, err := q.local.Read(models.SyncQueueKey)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	var keys []string
	if err := json.Unmarshal(record.Payload, &keys); err != nil {
		q.logger.Warnf(providers.TypeSync, "Discarding unreadable sync queue: %s", err)
		return nil
	}

	now := q.clock.Now()
	for _, key := range keys {
		// every queued key must have a local record to replay from
		if _, present, err := q.local.Read(key); err != nil || !present {
			q.logger.Warnf(providers.TypeSync, "Dropping queued key %q with no local record", key)
			continue
		}
		if _, dup := q.at[key]; dup {
			continue
		}
		q.order = append(q.order, key)
		q.at[key] = now
	}

	q.metrics.SetQueueDepth(len(q.order))
	return nil
}

func (q *Queue) persistLocked() error {
	payload, err := json.Marshal(q.order)
	if err != nil {
		return err
	}
	if err := q.local.Write(models.SyncQueueKey, payload); err != nil {
		return err
	}
	q.metrics.SetQueueDepth(len(q.order))
	return nil
}

// Enqueue marks key dirty. Re-enqueuing refreshes the timestamp but leaves
// the first-seen position (and the persisted order) untouched.
func (q *Queue) Enqueue(key string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.at[key]; ok {
		q.at[key] = q.clock.Now()
		return nil
	}

	q.order = append(q.order, key)
	q.at[key] = q.clock.Now()
	return q.persistLocked()
}

func (q *Queue) EnqueuedAt(key string) (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	at, ok := q.at[key]
	return at, ok
}

// DrainInOrder yields a snapshot of the current entries in first-enqueued
// order without removing anything. Each call takes a fresh snapshot.
func (q *Queue) DrainInOrder() iter.Seq[QueueEntry] {
	q.mu.Lock()
	entries := make([]QueueEntry, 0, len(q.order))
	for _, key := range q.order {
		entries = append(entries, QueueEntry{Key: key, EnqueuedAt: q.at[key]})
	}
	q.mu.Unlock()

	return func(yield func(QueueEntry) bool) {
		for _, entry := range entries {
			if !yield(entry) {
				return
			}
		}
	}
}

// Acknowledge removes key after a successful replay, unless it was
// re-enqueued after seenAt was observed — then the newer local value still
// needs a replay and the key stays queued.
func (q *Queue) Acknowledge(key string, seenAt time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	at, ok := q.at[key]
	if !ok {
		return nil
	}
	if !at.Equal(seenAt) {
		q.logger.Debugf(providers.TypeSync, "Key %q re-enqueued during replay, keeping it queued", key)
		return nil
	}

	delete(q.at, key)
	if i := slices.Index(q.order, key); i >= 0 {
		q.order = slices.Delete(q.order, i, i+1)
	}
	return q.persistLocked()
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}
