// Package metrics provides JSONL event logging for the CLI and resident
// server's operational events.
package metrics

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// Logger writes metrics events to a JSONL file.
type Logger struct {
	file *os.File
	mu   sync.Mutex
}

// NewLogger creates a new metrics logger, appending to path.
func NewLogger(path string) (*Logger, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &Logger{file: file}, nil
}

// Close closes the log file.
func (l *Logger) Close() error {
	return l.file.Close()
}

func (l *Logger) log(event string, data map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e := map[string]interface{}{
		"ts":    time.Now().UTC().Format(time.RFC3339),
		"event": event,
	}
	for k, v := range data {
		e[k] = v
	}

	line, _ := json.Marshal(e)
	l.file.Write(line)
	l.file.Write([]byte("\n"))
}

// LogSearch logs a structural query_type event (search, deps, impact,
// calls, called-by, call-chain, dead-code, suggest).
func (l *Logger) LogSearch(query, queryType string, results int, latencyMs int64) {
	l.log("search", map[string]interface{}{
		"query":      query,
		"query_type": queryType,
		"results":    results,
		"latency_ms": latencyMs,
	})
}

// LogSemSearch logs a semantic_search event.
func (l *Logger) LogSemSearch(query string, k, results int, latencyMs int64) {
	l.log("semsearch", map[string]interface{}{
		"query":      query,
		"k":          k,
		"results":    results,
		"latency_ms": latencyMs,
	})
}

// LogIndex logs a full or incremental index build.
func (l *Logger) LogIndex(filesIndexed, filesSkipped int, incremental bool, durationMs int64) {
	l.log("index", map[string]interface{}{
		"files_indexed": filesIndexed,
		"files_skipped": filesSkipped,
		"incremental":   incremental,
		"duration_ms":   durationMs,
	})
}

// LogReload logs a Resident Server reload completing.
func (l *Logger) LogReload(files, vectors int, durationMs int64) {
	l.log("reload", map[string]interface{}{
		"files":       files,
		"vectors":     vectors,
		"duration_ms": durationMs,
	})
}

// LogError logs an error event.
func (l *Logger) LogError(operation, message string) {
	l.log("error", map[string]interface{}{
		"operation": operation,
		"message":   message,
	})
}
