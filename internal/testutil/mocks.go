package testutil

import (
	"context"
	"sync"
	"time"

	"fitsyncd/internal/models"
	"fitsyncd/internal/providers"
	"fitsyncd/internal/storage"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu             sync.Mutex
	WriteOutcomes  map[string]int
	Replayed       int
	ReplayFailures int
	QueueDepths    []int
	Connected      []bool
	CacheHits      int
	CacheMisses    int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncWriteOutcome(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteOutcomes == nil {
		m.WriteOutcomes = make(map[string]int)
	}
	m.WriteOutcomes[outcome]++
}

func (m *MockMetrics) IncReplayed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Replayed++
}

func (m *MockMetrics) IncReplayFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplayFailures++
}

func (m *MockMetrics) SetQueueDepth(depth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueueDepths = append(m.QueueDepths, depth)
}

func (m *MockMetrics) SetConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Connected = append(m.Connected, connected)
}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

// MockClock implements providers.Clock with a settable instant.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now}
}

func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

func (m *MockClock) Set(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// MockLocalCache implements storage.LocalCacheInterface in memory with
// injectable failures.
type MockLocalCache struct {
	mu       sync.Mutex
	Records  map[string]*models.CachedRecord
	WriteErr error
	ReadErr  error
	Writes   []string
}

func NewMockLocalCache() *MockLocalCache {
	return &MockLocalCache{Records: make(map[string]*models.CachedRecord)}
}

func (m *MockLocalCache) Read(key string) (*models.CachedRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, false, m.ReadErr
	}
	record, ok := m.Records[key]
	return record, ok, nil
}

func (m *MockLocalCache) Write(key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	m.Records[key] = &models.CachedRecord{Key: key, Payload: buf, LastWriteAt: time.Now()}
	m.Writes = append(m.Writes, key)
	return nil
}

func (m *MockLocalCache) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Records, key)
	return nil
}

// MockRemoteStore implements storage.RemoteStoreInterface in memory. Failing
// toggles every call into a connectivity error; FailKeys fails SetDoc for the
// listed collection/id pairs only.
type MockRemoteStore struct {
	mu           sync.Mutex
	Docs         map[string][]byte // key: collection/id
	QueryResults map[string][]storage.Document // key: collection?field=value
	Failing      bool
	FailKeys     map[string]bool // collection/id
	SetCalls     []string // collection/id in call order
	GetCalls     []string
}

func NewMockRemoteStore() *MockRemoteStore {
	return &MockRemoteStore{Docs: make(map[string][]byte)}
}

func (m *MockRemoteStore) GetDoc(_ context.Context, collection, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls = append(m.GetCalls, collection+"/"+id)
	if m.Failing {
		return nil, &storage.ConnectivityError{Op: "get", Err: context.DeadlineExceeded}
	}
	doc, ok := m.Docs[collection+"/"+id]
	if !ok {
		return nil, storage.ErrDocNotFound
	}
	return doc, nil
}

func (m *MockRemoteStore) SetDoc(_ context.Context, collection, id string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls = append(m.SetCalls, collection+"/"+id)
	if m.Failing || m.FailKeys[collection+"/"+id] {
		return &storage.ConnectivityError{Op: "set", Err: context.DeadlineExceeded}
	}
	buf := make([]byte, len(payload))
	copy(buf, payload)
	m.Docs[collection+"/"+id] = buf
	return nil
}

func (m *MockRemoteStore) QueryDocs(_ context.Context, collection, field, value string) ([]storage.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Failing {
		return nil, &storage.ConnectivityError{Op: "query", Err: context.DeadlineExceeded}
	}
	return m.QueryResults[collection+"?"+field+"="+value], nil
}

func (m *MockRemoteStore) PutQueryResult(collection, field, value string, docs ...storage.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueryResults == nil {
		m.QueryResults = make(map[string][]storage.Document)
	}
	m.QueryResults[collection+"?"+field+"="+value] = docs
}

func (m *MockRemoteStore) Probe(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Failing {
		return &storage.ConnectivityError{Op: "probe", Err: context.DeadlineExceeded}
	}
	return nil
}

func (m *MockRemoteStore) SetFailing(failing bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failing = failing
}

func (m *MockRemoteStore) FailKey(collection, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailKeys == nil {
		m.FailKeys = make(map[string]bool)
	}
	m.FailKeys[collection+"/"+id] = true
}

// MockConnectivity implements providers.ConnectivityInterface with a fixed
// state toggled by tests.
type MockConnectivity struct {
	mu        sync.Mutex
	connected bool
	subs      []func(bool)
}

func NewMockConnectivity(connected bool) *MockConnectivity {
	return &MockConnectivity{connected: connected}
}

func (m *MockConnectivity) Current() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockConnectivity) Subscribe(fn func(connected bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *MockConnectivity) Start() {}
func (m *MockConnectivity) Stop()  {}

// SetConnected flips the state and fires subscribers on a transition, the
// way the real monitor does.
func (m *MockConnectivity) SetConnected(connected bool) {
	m.mu.Lock()
	changed := m.connected != connected
	m.connected = connected
	subs := make([]func(bool), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(connected)
	}
}

// MockNotifier implements providers.NotifierInterface and records the
// pending trigger set.
type MockNotifier struct {
	mu            sync.Mutex
	Scheduled     map[string]time.Time
	ScheduleCalls []string
	CancelCalls   []string
	CancelAllN    int
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{Scheduled: make(map[string]time.Time)}
}

func (m *MockNotifier) ScheduleAt(id string, at time.Time, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Scheduled[id] = at
	m.ScheduleCalls = append(m.ScheduleCalls, id)
	return nil
}

func (m *MockNotifier) Cancel(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Scheduled, id)
	m.CancelCalls = append(m.CancelCalls, id)
	return nil
}

func (m *MockNotifier) CancelAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Scheduled = make(map[string]time.Time)
	m.CancelAllN++
	return nil
}

func (m *MockNotifier) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Scheduled)
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// MockCompressor implements storage.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}
