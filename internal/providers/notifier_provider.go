package providers

import (
	"sync"
	"time"
)

// NotifierInterface is the capability boundary over the platform notification
// service: fire-and-forget registration of time-triggered alerts keyed by id.
// Canceling an unknown id is a no-op.
type NotifierInterface interface {
	ScheduleAt(id string, at time.Time, title, body string) error
	Cancel(id string) error
	CancelAll() error
	Pending() int
}

// LocalNotifier tracks the pending trigger set in process and logs delivery
// registration. The actual tray delivery belongs to the platform shell; this
// implementation exists so the scheduler has a real pending-set to manage.
type LocalNotifier struct {
	logger  Logger
	mu      sync.Mutex
	pending map[string]time.Time
}

func NewLocalNotifier(logger Logger) NotifierInterface {
	return &LocalNotifier{
		logger:  logger,
		pending: make(map[string]time.Time),
	}
}

func (n *LocalNotifier) ScheduleAt(id string, at time.Time, title, body string) error {
	n.mu.Lock()
	n.pending[id] = at
	n.mu.Unlock()
	n.logger.Infof(TypeNotify, "Scheduled %q (%s) at %s", title, id, at.Format(time.RFC3339))
	n.logger.Debugf(TypeNotify, "Trigger %s body: %s", id, body)
	return nil
}

func (n *LocalNotifier) Cancel(id string) error {
	n.mu.Lock()
	_, existed := n.pending[id]
	delete(n.pending, id)
	n.mu.Unlock()
	if existed {
		n.logger.Debugf(TypeNotify, "Canceled trigger %s", id)
	}
	return nil
}

func (n *LocalNotifier) CancelAll() error {
	n.mu.Lock()
	count := len(n.pending)
	n.pending = make(map[string]time.Time)
	n.mu.Unlock()
	n.logger.Infof(TypeNotify, "Canceled all %d pending triggers", count)
	return nil
}

func (n *LocalNotifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pending)
}
