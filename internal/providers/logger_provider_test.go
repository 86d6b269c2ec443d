package providers

import (
	"os"
	"path/filepath"
	"testing"

	"fitsyncd/internal/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogProvider_CreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "debug",
			Mode:  0644,
			Dir:   dir,
		},
	}

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)
	defer logger.Close()

	logger.Infof(TypeApp, "started")
	logger.Debugf(TypeSync, "queued %d keys", 3)
	logger.Warnf(TypeNotify, "reminder skipped")

	data, err := os.ReadFile(filepath.Join(dir, "fitsyncd.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "started")
	assert.Contains(t, string(data), `"type":"sync"`)
}

func TestNewLogProvider_LevelFiltersDebug(t *testing.T) {
	dir := t.TempDir()
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   dir,
		},
	}

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)
	defer logger.Close()

	logger.Debugf(TypeApp, "invisible")

	data, err := os.ReadFile(filepath.Join(dir, "fitsyncd.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "invisible")
}

func TestNewLogProvider_InvalidLevel(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "verbose",
			Mode:  0644,
			Dir:   t.TempDir(),
		},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}

func TestNewLogProvider_InvalidDir(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/nonexistent/directory/path",
		},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}
