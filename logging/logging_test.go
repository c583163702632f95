package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func captureTerminal(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := terminal
	terminal = &buf
	t.Cleanup(func() { terminal = prev })
	return &buf
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Director != "" {
		t.Errorf("expected no log directory, got '%s'", cfg.Director)
	}
	if cfg.Level != "info" {
		t.Errorf("expected Level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected Format 'console', got '%s'", cfg.Format)
	}
	if !cfg.LogInTerminal {
		t.Error("expected LogInTerminal to be true")
	}
}

func TestConfigTransportLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := Config{Level: tt.level}
			if got := cfg.TransportLevel(); got != tt.expected {
				t.Errorf("TransportLevel() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{MaxAge: 3}
	cfg.applyDefaults()

	if cfg.MessageKey != "message" {
		t.Errorf("MessageKey = %q", cfg.MessageKey)
	}
	if cfg.MaxAge != 3 {
		t.Errorf("MaxAge overwritten: %d", cfg.MaxAge)
	}
	if cfg.MaxSize != 100 {
		t.Errorf("MaxSize = %d", cfg.MaxSize)
	}
	if cfg.LogInTerminal {
		t.Error("booleans must not be defaulted")
	}
}

func TestTerminalOutput(t *testing.T) {
	buf := captureTerminal(t)

	cfg := DefaultConfig()
	cfg.EncodeLevel = "CapitalLevelEncoder"
	logger := NewLogger(cfg)
	logger.Info("mask converted", File("mask/a.png"), Modality("mask"))
	logger.Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "INFO") || !strings.Contains(out, "mask converted") {
		t.Errorf("unexpected terminal output: %q", out)
	}
	if !strings.Contains(out, `"file": "mask/a.png"`) {
		t.Errorf("missing file field: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug entry written at info level")
	}
}

func TestJSONOutput(t *testing.T) {
	buf := captureTerminal(t)

	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.EncodeLevel = "LowercaseLevelEncoder"
	NewLogger(cfg).Warn("skipped", Name("0001.png"))

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"message":"skipped"`, `"name":"0001.png"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %q", want, out)
		}
	}
}

func TestLevelFiles(t *testing.T) {
	captureTerminal(t)
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Director = dir
	cfg.LogInTerminal = false
	cfg.EncodeLevel = "CapitalColorLevelEncoder"
	logger := NewLogger(cfg)

	logger.Info("info entry")
	logger.Error("error entry")
	if err := CloseAllWriters(); err != nil {
		t.Fatalf("CloseAllWriters: %v", err)
	}

	date := time.Now().Format("2006-01-02")
	info, err := os.ReadFile(filepath.Join(dir, date, "info.log"))
	if err != nil {
		t.Fatalf("read info log: %v", err)
	}
	if !strings.Contains(string(info), "info entry") || strings.Contains(string(info), "error entry") {
		t.Errorf("info.log holds the wrong entries: %q", info)
	}
	if strings.Contains(string(info), "\x1b[") {
		t.Error("file output must not contain color codes")
	}

	errLog, err := os.ReadFile(filepath.Join(dir, date, "error.log"))
	if err != nil {
		t.Fatalf("read error log: %v", err)
	}
	if !strings.Contains(string(errLog), "error entry") {
		t.Errorf("error.log = %q", errLog)
	}
}

func TestNoOutputsIsNop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogInTerminal = false

	logger := NewLogger(cfg)
	if logger.Zap().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger without outputs should be a no-op")
	}
}

func TestLoggerChildren(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	logger.Named("pipeline").With(RunID("r1")).WithError(os.ErrNotExist).Info("done", Count("items", 3))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.LoggerName != "pipeline" {
		t.Errorf("LoggerName = %q", e.LoggerName)
	}
	fields := e.ContextMap()
	if fields["run_id"] != "r1" || fields["items"] != int64(3) || fields["error"] == nil {
		t.Errorf("unexpected fields: %v", fields)
	}
}

func TestRunIDContext(t *testing.T) {
	ctx := SetRunID(context.Background(), "run-42")
	if got := GetRunID(ctx); got != "run-42" {
		t.Errorf("GetRunID() = %q", got)
	}
	if got := GetRunID(context.Background()); got != "" {
		t.Errorf("GetRunID() on empty context = %q", got)
	}

	core, logs := observer.New(zapcore.InfoLevel)
	WithContext(FromZap(zap.New(core)), ctx).Info("started")
	if logs.All()[0].ContextMap()["run_id"] != "run-42" {
		t.Error("WithContext should add run_id")
	}
}

func TestContextLoggerStorage(t *testing.T) {
	logger := NewNop()
	ctx := ToContext(context.Background(), logger)

	if FromContext(ctx) != logger {
		t.Error("FromContext should return the stored logger")
	}
	if FromContext(context.Background()) == nil {
		t.Error("FromContext should fall back to the global logger")
	}
}

func TestGlobalLogger(t *testing.T) {
	prev := Global()
	t.Cleanup(func() { SetGlobal(prev) })

	core, logs := observer.New(zapcore.InfoLevel)
	SetGlobal(FromZap(zap.New(core)))

	Info("info")
	Warn("warn")
	Error("error")
	Named("cli").Info("named")

	if logs.Len() != 4 {
		t.Errorf("expected 4 entries, got %d", logs.Len())
	}
	if err := Sync(); err != nil {
		t.Errorf("Sync: %v", err)
	}
}

func TestCusTimeEncoder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Prefix = "[prep] "
	cfg.Format = "json"
	enc := zapcore.NewJSONEncoder(getEncoderConfig(cfg))

	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	buf, err := enc.EncodeEntry(zapcore.Entry{Time: ts, Message: "x"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "[prep] 2024/03/01 - 12:30:00") {
		t.Errorf("unexpected time encoding: %s", buf.String())
	}
}
