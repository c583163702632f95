package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// terminal is where console logs go. Progress output owns stdout.
var terminal io.Writer = os.Stderr

// levelWriter writes one level's entries to daily directories, rotated by lumberjack.
type levelWriter struct {
	config  Config
	level   string
	mu      sync.RWMutex
	writers map[string]*lumberjack.Logger
}

func newLevelWriter(config Config, level string) *levelWriter {
	return &levelWriter{
		config:  config,
		level:   level,
		writers: make(map[string]*lumberjack.Logger),
	}
}

// Write implements io.Writer.
func (w *levelWriter) Write(p []byte) (n int, err error) {
	date := time.Now().Format("2006-01-02")
	return w.getWriter(date).Write(p)
}

// Sync implements zapcore.WriteSyncer. lumberjack writes through on every call.
func (w *levelWriter) Sync() error {
	return nil
}

func (w *levelWriter) getWriter(date string) *lumberjack.Logger {
	w.mu.RLock()
	if writer, ok := w.writers[date]; ok {
		w.mu.RUnlock()
		return writer
	}
	w.mu.RUnlock()

	w.mu.Lock()
	defer w.mu.Unlock()
	if writer, ok := w.writers[date]; ok {
		return writer
	}

	dirPath := filepath.Join(w.config.Director, date)
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		dirPath = w.config.Director
		_ = os.MkdirAll(dirPath, 0o755)
	}

	writer := &lumberjack.Logger{
		Filename:   filepath.Join(dirPath, w.level+".log"),
		MaxSize:    w.config.MaxSize,
		MaxBackups: w.config.MaxBackups,
		MaxAge:     w.config.MaxAge,
		Compress:   w.config.Compress,
		LocalTime:  true,
	}

	// A new day retires the previous day's files.
	for old, prev := range w.writers {
		_ = prev.Close()
		delete(w.writers, old)
	}
	w.writers[date] = writer
	return writer
}

// Close closes all writers.
func (w *levelWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var lastErr error
	for _, writer := range w.writers {
		if err := writer.Close(); err != nil {
			lastErr = err
		}
	}
	w.writers = make(map[string]*lumberjack.Logger)
	return lastErr
}

var (
	writerRegistry   []*levelWriter
	writerRegistryMu sync.Mutex
)

// CloseAllWriters closes every log file opened so far.
func CloseAllWriters() error {
	writerRegistryMu.Lock()
	defer writerRegistryMu.Unlock()

	var lastErr error
	for _, w := range writerRegistry {
		if err := w.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

func getWriteSyncerWithRegistry(config Config, level string) zapcore.WriteSyncer {
	fileWriter := newLevelWriter(config, level)

	writerRegistryMu.Lock()
	writerRegistry = append(writerRegistry, fileWriter)
	writerRegistryMu.Unlock()

	return zapcore.AddSync(fileWriter)
}

var _ io.WriteCloser = (*levelWriter)(nil)
