package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsLogger(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "metrics.jsonl")

	logger, err := NewLogger(logPath)
	require.NoError(t, err)
	defer logger.Close()

	logger.LogSearch("auth timeout", "search", 5, 120)
	logger.LogSemSearch("session handling", 20, 3, 340)
	logger.LogIndex(42, 1, false, 980)
	logger.LogReload(42, 42, 1200)
	logger.LogError("search", "index not found")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	content := string(data)

	assert.Contains(t, content, `"event":"search"`)
	assert.Contains(t, content, `"query":"auth timeout"`)
	assert.Contains(t, content, `"query_type":"search"`)

	assert.Contains(t, content, `"event":"semsearch"`)
	assert.Contains(t, content, `"k":20`)

	assert.Contains(t, content, `"event":"index"`)
	assert.Contains(t, content, `"files_indexed":42`)

	assert.Contains(t, content, `"event":"reload"`)
	assert.Contains(t, content, `"vectors":42`)

	assert.Contains(t, content, `"event":"error"`)
	assert.Contains(t, content, `"operation":"search"`)

	lines := strings.Split(strings.TrimSpace(content), "\n")
	assert.Len(t, lines, 5)
}

func TestMetricsLoggerConcurrent(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "metrics.jsonl")

	logger, err := NewLogger(logPath)
	require.NoError(t, err)
	defer logger.Close()

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(n int) {
			logger.LogSearch("query", "search", n, int64(n*10))
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 10)
}
