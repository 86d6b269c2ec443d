package providers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fitsyncd/internal/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyProbe struct {
	mu  sync.Mutex
	err error
}

func (p *flakyProbe) probe(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *flakyProbe) set(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func monitorConfig() *structures.Config {
	return &structures.Config{
		Remote: structures.RemoteConfig{ProbeInterval: 10 * time.Millisecond},
	}
}

type silentLogger struct{}

func (silentLogger) Errorf(TypeEnum, string, ...interface{}) {}
func (silentLogger) Warnf(TypeEnum, string, ...interface{})  {}
func (silentLogger) Debugf(TypeEnum, string, ...interface{}) {}
func (silentLogger) Infof(TypeEnum, string, ...interface{})  {}
func (silentLogger) Fatalf(TypeEnum, string, ...interface{}) {}
func (silentLogger) Close()                                  {}

type connGauge struct {
	mu     sync.Mutex
	states []bool
}

func (g *connGauge) IncRequestsTotal(string, int)                 {}
func (g *connGauge) ObserveRequestDuration(string, time.Duration) {}
func (g *connGauge) IncWriteOutcome(string)                       {}
func (g *connGauge) IncReplayed()                                 {}
func (g *connGauge) IncReplayFailures()                           {}
func (g *connGauge) SetQueueDepth(int)                            {}
func (g *connGauge) SetConnected(connected bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.states = append(g.states, connected)
}
func (g *connGauge) IncCacheHits()   {}
func (g *connGauge) IncCacheMisses() {}

func (g *connGauge) snapshot() []bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]bool, len(g.states))
	copy(out, g.states)
	return out
}

func TestMonitorStartsWithSynchronousProbe(t *testing.T) {
	probe := &flakyProbe{}
	monitor := NewConnectivityMonitor(monitorConfig(), silentLogger{}, &connGauge{}, probe.probe)

	monitor.Start()
	defer monitor.Stop()

	assert.True(t, monitor.Current(), "first probe runs before Start returns")
}

func TestMonitorStartsDisconnectedWhenProbeFails(t *testing.T) {
	probe := &flakyProbe{err: errors.New("unreachable")}
	monitor := NewConnectivityMonitor(monitorConfig(), silentLogger{}, &connGauge{}, probe.probe)

	monitor.Start()
	defer monitor.Stop()

	assert.False(t, monitor.Current())
}

func TestMonitorFiresSubscribersOnTransition(t *testing.T) {
	probe := &flakyProbe{err: errors.New("unreachable")}
	gauge := &connGauge{}
	monitor := NewConnectivityMonitor(monitorConfig(), silentLogger{}, gauge, probe.probe)

	transitions := make(chan bool, 16)
	monitor.Subscribe(func(connected bool) { transitions <- connected })

	monitor.Start()
	defer monitor.Stop()

	probe.set(nil)
	select {
	case state := <-transitions:
		assert.True(t, state, "restored transition delivered")
	case <-time.After(2 * time.Second):
		t.Fatal("no transition observed")
	}

	probe.set(errors.New("gone again"))
	select {
	case state := <-transitions:
		assert.False(t, state)
	case <-time.After(2 * time.Second):
		t.Fatal("no lost transition observed")
	}

	require.NotEmpty(t, gauge.snapshot())
}

func TestMonitorDoesNotRefireWithoutTransition(t *testing.T) {
	probe := &flakyProbe{}
	monitor := NewConnectivityMonitor(monitorConfig(), silentLogger{}, &connGauge{}, probe.probe)

	var mu sync.Mutex
	fired := 0
	monitor.Subscribe(func(bool) {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	monitor.Start()
	time.Sleep(60 * time.Millisecond)
	monitor.Stop()

	mu.Lock()
	defer mu.Unlock()
	// connected from the very first probe; steady state fires at most once
	assert.LessOrEqual(t, fired, 1)
}

func TestMonitorWithoutProbeStaysDisconnected(t *testing.T) {
	monitor := NewConnectivityMonitor(monitorConfig(), silentLogger{}, &connGauge{}, nil)

	monitor.Start()
	defer monitor.Stop()

	assert.False(t, monitor.Current())
}
