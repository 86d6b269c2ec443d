package providers

import (
	"context"
	"sync"
	"time"

	"fitsyncd/internal/structures"

	"go.uber.org/atomic"
)

// ProbeFunc checks whether the remote store is reachable right now.
type ProbeFunc func(ctx context.Context) error

type ConnectivityInterface interface {
	// Current returns the last known reachability state synchronously.
	Current() bool
	// Subscribe registers a listener invoked on every transition.
	Subscribe(fn func(connected bool))
	Start()
	Stop()
}

// ConnectivityMonitor polls the remote probe and fires subscribers on
// lost/restored transitions. A device with no probe configured stays
// permanently disconnected.
type ConnectivityMonitor struct {
	probe     ProbeFunc
	interval  time.Duration
	connected *atomic.Bool
	logger    Logger
	metrics   MetricsProviderInterface

	mu   sync.Mutex
	subs []func(connected bool)

	stop chan struct{}
	done chan struct{}
}

func NewConnectivityMonitor(conf *structures.Config, logger Logger, metrics MetricsProviderInterface, probe ProbeFunc) ConnectivityInterface {
	return &ConnectivityMonitor{
		probe:     probe,
		interval:  conf.Remote.ProbeInterval,
		connected: atomic.NewBool(false),
		logger:    logger,
		metrics:   metrics,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (c *ConnectivityMonitor) Current() bool {
	return c.connected.Load()
}

func (c *ConnectivityMonitor) Subscribe(fn func(connected bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}

// Start probes once synchronously so callers observe a real state right
// away, then keeps polling in the background.
func (c *ConnectivityMonitor) Start() {
	c.check()

	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				c.check()
			}
		}
	}()
}

func (c *ConnectivityMonitor) Stop() {
	close(c.stop)
	<-c.done
}

func (c *ConnectivityMonitor) check() {
	now := false
	if c.probe != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		now = c.probe(ctx) == nil
		cancel()
	}

	prev := c.connected.Swap(now)
	if prev == now {
		return
	}

	c.metrics.SetConnected(now)
	if now {
		c.logger.Infof(TypeSync, "Connectivity restored")
	} else {
		c.logger.Warnf(TypeSync, "Connectivity lost")
	}

	c.mu.Lock()
	subs := make([]func(bool), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		fn(now)
	}
}
