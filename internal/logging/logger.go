// Package logging provides config-driven categorized file-based logging for
// Engram. Logs are written to <cortex>/.activations/logs/ with one file per
// category. Logging is controlled by Logging.DebugMode in engram.yaml —
// when false, no logs are written and every call is a cheap no-op.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category identifies a subsystem for the purpose of log routing.
type Category string

const (
	CategoryCLI        Category = "cli"
	CategoryStore      Category = "store"      // file store read/write/scan
	CategoryGraph      Category = "graph"      // adjacency, traversal, graph.idx
	CategoryIndex      Category = "index"      // BM25 + vector index build/search
	CategoryEmbedding  Category = "embedding"  // GloVe loading and lookup
	CategoryActivation Category = "activation" // neural activation traversal
	CategoryQuery      Category = "query"      // EQL parse + planner dispatch
	CategorySync       Category = "sync"       // sync orchestrator stages
	CategoryValidator  Category = "validator"  // connection legality, state machines
)

// Settings mirrors the relevant part of config.LoggingConfig. Declared
// locally to avoid a dependency cycle with the config package.
type Settings struct {
	DebugMode  bool
	Categories map[string]bool // per-category toggle; absent == enabled
}

// Logger wraps a standard logger bound to one category and log file.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	settings  Settings
	settingMu sync.RWMutex
)

// Configure sets the active logging settings and the directory logs are
// written under. Call once per cortex before the first Get(). Passing
// DebugMode=false disables file output entirely (every Logger is a no-op).
func Configure(cortexDir string, s Settings) error {
	settingMu.Lock()
	settings = s
	settingMu.Unlock()

	CloseAll()

	if !s.DebugMode {
		return nil
	}

	logsDir = filepath.Join(cortexDir, ".activations", "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("create logs directory: %w", err)
	}
	return nil
}

func categoryEnabled(category Category) bool {
	settingMu.RLock()
	defer settingMu.RUnlock()

	if !settings.DebugMode {
		return false
	}
	if settings.Categories == nil {
		return true
	}
	enabled, exists := settings.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or lazily creates) a Logger for category. When logging is
// disabled for that category, it returns a no-op Logger — every method is
// safe to call on it, and does nothing.
func Get(category Category) *Logger {
	if !categoryEnabled(category) || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// StructuredLog writes a log line carrying a JSON-serialized field map,
// useful for recording per-stage sync summaries that later tooling might
// want to grep out of the log file.
func (l *Logger) StructuredLog(level, msg string, fields map[string]interface{}) {
	if l.logger == nil {
		return
	}
	data, err := json.Marshal(fields)
	if err != nil {
		l.logger.Printf("[%s] %s", level, msg)
		return
	}
	l.logger.Printf("[%s] %s | fields=%s", level, msg, data)
}

// CloseAll closes every open log file and forgets cached loggers. Safe to
// call when no loggers are open.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Timer measures and logs the duration of an operation at Debug level, or
// Warn level if it exceeds an optional threshold.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation in the given category.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the elapsed duration at Debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs at Warn level if the operation took longer than
// threshold, Debug level otherwise. Used by the sync orchestrator to flag
// slow stages without needing a dedicated metrics pipeline.
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
