package storage

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fitsyncd/internal/models"
	"fitsyncd/internal/providers"
	"fitsyncd/internal/structures"

	json "github.com/goccy/go-json"
)

type LocalCacheInterface interface {
	Read(key string) (*models.CachedRecord, bool, error)
	Write(key string, payload []byte) error
	Delete(key string) error
}

// LocalCache is the durable key-addressed device store: one compressed JSON
// file per key, replaced wholesale on every write. A single mutex keeps
// same-key writes in program order; the in-memory read cache in front of it
// is invalidated on every mutation.
type LocalCache struct {
	dir        string
	compressor CompressorInterface
	readCache  providers.CacheProviderInterface
	metrics    providers.MetricsProviderInterface
	clock      providers.Clock
	mu         sync.Mutex
}

func NewLocalCache(conf *structures.Config, compressor CompressorInterface, readCache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface, clock providers.Clock) (LocalCacheInterface, error) {
	if err := os.MkdirAll(conf.LocalStore.Dir, 0o755); err != nil {
		return nil, &StorageError{Op: "init", Key: "", Err: err}
	}
	return &LocalCache{
		dir:        conf.LocalStore.Dir,
		compressor: compressor,
		readCache:  readCache,
		metrics:    metrics,
		clock:      clock,
	}, nil
}

var keySanitizer = strings.NewReplacer(":", "_", "/", "_")

func (c *LocalCache) path(key string) string {
	return filepath.Join(c.dir, keySanitizer.Replace(key)+".json.zst")
}

func (c *LocalCache) Read(key string) (*models.CachedRecord, bool, error) {
	if raw, ok := c.readCache.Get(key); ok {
		c.metrics.IncCacheHits()
		var record models.CachedRecord
		if err := json.Unmarshal(raw, &record); err == nil {
			return &record, true, nil
		}
		// poisoned entry; fall through to disk
		c.readCache.Del(key)
	}
	c.metrics.IncCacheMisses()

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, &StorageError{Op: "read", Key: key, Err: err}
	}

	raw, err := c.compressor.Decompress(data)
	if err != nil {
		return nil, false, &StorageError{Op: "decompress", Key: key, Err: err}
	}

	var record models.CachedRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, &StorageError{Op: "decode", Key: key, Err: err}
	}

	c.readCache.Set(key, raw)
	return &record, true, nil
}

func (c *LocalCache) Write(key string, payload []byte) error {
	record := models.CachedRecord{
		Key:         key,
		Payload:     payload,
		LastWriteAt: c.clock.Now(),
	}
	raw, err := json.Marshal(&record)
	if err != nil {
		return &StorageError{Op: "encode", Key: key, Err: err}
	}
	data, err := c.compressor.Compress(raw)
	if err != nil {
		return &StorageError{Op: "compress", Key: key, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := atomicWriteFile(c.path(key), data); err != nil {
		return &StorageError{Op: "write", Key: key, Err: err}
	}
	c.readCache.Set(key, raw)
	return nil
}

func (c *LocalCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.readCache.Del(key)
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// atomicWriteFile lands the new content under a temp name, fsyncs, then
// renames over the target so readers never observe a partial file.
func atomicWriteFile(fileName string, data []byte) error {
	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}
