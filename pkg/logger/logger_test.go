package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	log, err := New(Config{Level: "debug", Format: "json", OutputPath: path})
	require.NoError(t, err)

	log.Info("hello", zap.String("k", "v"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"timestamp"`)
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	log, err := New(Config{Level: "loud", Format: "console", OutputPath: "stderr"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.DebugLevel))
	assert.True(t, log.Core().Enabled(zap.InfoLevel))
}

func newTestMultiLogger(t *testing.T) *MultiLogger {
	t.Helper()
	ml, err := NewMultiLogger(MultiLoggerConfig{Level: "info", LogsDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { ml.Close() })
	return ml
}

func TestMultiLogger_RequiresLogsDir(t *testing.T) {
	_, err := NewMultiLogger(MultiLoggerConfig{})
	assert.Error(t, err)
}

func TestMultiLogger_WritesCategoryFiles(t *testing.T) {
	ml := newTestMultiLogger(t)

	ml.LogEngineEvent("download_started", zap.String("id", "abc"))
	ml.LogAppError("Failed to persist downloads", zap.String("reason", "disk full"))
	require.NoError(t, ml.Sync())

	reader := NewLogReader(ml.GetLogsDir())
	engine, err := reader.ReadLogs(CategoryEngine, time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, engine, 1)
	assert.Equal(t, "download_started", engine[0].Message)
	assert.Equal(t, "info", engine[0].Level)
	assert.Equal(t, "engine", engine[0].Category)
	assert.Equal(t, "abc", engine[0].Fields["id"])
	assert.NotEmpty(t, engine[0].Timestamp)

	errs, err := reader.ReadLogs(CategoryError, time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "error", errs[0].Level)
}

func TestMultiLogger_UnknownCategoryFallsBackToError(t *testing.T) {
	ml := newTestMultiLogger(t)
	assert.Same(t, ml.Error(), ml.GetLogger(LogCategory("web")))
	assert.True(t, ValidCategory(CategoryEngine))
	assert.False(t, ValidCategory(LogCategory("web")))
}

func TestLogReader_LimitAndSearch(t *testing.T) {
	ml := newTestMultiLogger(t)
	for _, event := range []string{"download_started", "download_paused", "download_resumed", "download_completed"} {
		ml.LogEngineEvent(event, zap.String("owner", "acct/main"))
	}
	ml.LogEngineEvent("download_started", zap.String("owner", "acct/kids"))
	require.NoError(t, ml.Sync())

	reader := NewLogReader(ml.GetLogsDir())
	last, err := reader.ReadLogs(CategoryEngine, time.Now(), 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "download_completed", last[0].Message)

	found, err := reader.SearchLogs(CategoryEngine, time.Now(), "STARTED", 0)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = reader.SearchLogs(CategoryEngine, time.Now(), "kids", 0)
	require.NoError(t, err)
	require.Len(t, found, 1, "fields are searched too")
}

func TestLogReader_MissingFileAndPlainLines(t *testing.T) {
	dir := t.TempDir()
	reader := NewLogReader(dir)

	entries, err := reader.ReadLogs(CategoryEngine, time.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)

	path := reader.GetLogPath(CategoryError, time.Now())
	require.NoError(t, os.WriteFile(path, []byte("not json\n\n"), 0644))
	entries, err = reader.ReadLogs(CategoryError, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "not json", entries[0].Message)
}

func TestLogReader_TailLogs(t *testing.T) {
	ml := newTestMultiLogger(t)
	ml.LogEngineEvent("before_tail")
	require.NoError(t, ml.Sync())

	reader := NewLogReader(ml.GetLogsDir())
	reader.pollInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	entries := make(chan LogEntry, 4)
	done := make(chan error, 1)
	go func() { done <- reader.TailLogs(ctx, CategoryEngine, entries) }()

	// The tailer starts at the end of the file; keep writing until it sees one
	deadline := time.After(2 * time.Second)
	var got LogEntry
loop:
	for {
		ml.LogEngineEvent("after_tail")
		require.NoError(t, ml.Sync())
		select {
		case got = <-entries:
			break loop
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("tail never delivered an entry")
		}
	}
	assert.Equal(t, "after_tail", got.Message)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("tail did not stop")
	}
}

func TestLoggerAdapter_WithoutMultiLogger(t *testing.T) {
	general := zap.NewNop()
	adapter := NewLoggerAdapter(general, nil)

	assert.Same(t, general, adapter.Engine())
	assert.Empty(t, adapter.LogsDir())
	adapter.LogError("boom")
}
