package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// Config represents the logger configuration.
type Config struct {
	// Director is the directory rotated log files are written to. Empty disables file output.
	Director string `mapstructure:"director" json:"director" yaml:"director"`

	MessageKey    string `mapstructure:"message-key" json:"messageKey" yaml:"message-key" default:"message"`
	LevelKey      string `mapstructure:"level-key" json:"levelKey" yaml:"level-key" default:"level"`
	TimeKey       string `mapstructure:"time-key" json:"timeKey" yaml:"time-key" default:"time"`
	NameKey       string `mapstructure:"name-key" json:"nameKey" yaml:"name-key" default:"logger"`
	CallerKey     string `mapstructure:"caller-key" json:"callerKey" yaml:"caller-key" default:"caller"`
	StacktraceKey string `mapstructure:"stacktrace-key" json:"stacktraceKey" yaml:"stacktrace-key" default:"stacktrace"`

	// Level is the minimum log level (debug, info, warn, error, dpanic, panic, fatal).
	Level string `mapstructure:"level" json:"level" yaml:"level" default:"info" validate:"omitempty,oneof=debug info warn error dpanic panic fatal DEBUG INFO WARN ERROR"`

	// EncodeLevel is the level encoder type (LowercaseLevelEncoder, LowercaseColorLevelEncoder, CapitalLevelEncoder, CapitalColorLevelEncoder).
	EncodeLevel string `mapstructure:"encode-level" json:"encodeLevel" yaml:"encode-level" default:"CapitalColorLevelEncoder"`

	// Prefix is prepended to every timestamp.
	Prefix string `mapstructure:"prefix" json:"prefix" yaml:"prefix"`

	TimeFormat string `mapstructure:"time-format" json:"timeFormat" yaml:"time-format" default:"2006/01/02 - 15:04:05"`

	// Format is the log format (json or console).
	Format string `mapstructure:"format" json:"format" yaml:"format" default:"console" validate:"omitempty,oneof=json console"`

	// LogInTerminal enables logging to stderr in addition to files.
	LogInTerminal bool `mapstructure:"log-in-terminal" json:"logInTerminal" yaml:"log-in-terminal"`

	// MaxAge is the maximum number of days to retain old log files.
	MaxAge int `mapstructure:"max-age" json:"maxAge" yaml:"max-age" default:"7"`

	// MaxSize is the maximum size in megabytes of the log file before it gets rotated.
	MaxSize int `mapstructure:"max-size" json:"maxSize" yaml:"max-size" default:"100"`

	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int `mapstructure:"max-backups" json:"maxBackups" yaml:"max-backups" default:"10"`

	Compress       bool `mapstructure:"compress" json:"compress" yaml:"compress"`
	ShowLineNumber bool `mapstructure:"show-line-number" json:"showLineNumber" yaml:"show-line-number"`
}

// DefaultConfig returns a Config that logs to the terminal only.
func DefaultConfig() Config {
	return Config{
		MessageKey:    "message",
		LevelKey:      "level",
		TimeKey:       "time",
		NameKey:       "logger",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		Level:         "info",
		EncodeLevel:   "CapitalColorLevelEncoder",
		TimeFormat:    "2006/01/02 - 15:04:05",
		Format:        "console",
		LogInTerminal: true,
		MaxAge:        7,
		MaxSize:       100,
		MaxBackups:    10,
		Compress:      true,
	}
}

// TransportLevel converts the string level to zapcore.Level.
func (c Config) TransportLevel() zapcore.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return zapcore.DebugLevel
	case "info", "":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "dpanic":
		return zapcore.DPanicLevel
	case "panic":
		return zapcore.PanicLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.DebugLevel
	}
}

// ZapEncodeLevel returns the zapcore.LevelEncoder based on EncodeLevel.
func (c Config) ZapEncodeLevel() zapcore.LevelEncoder {
	switch c.EncodeLevel {
	case "LowercaseLevelEncoder":
		return zapcore.LowercaseLevelEncoder
	case "LowercaseColorLevelEncoder":
		return zapcore.LowercaseColorLevelEncoder
	case "CapitalLevelEncoder":
		return zapcore.CapitalLevelEncoder
	case "CapitalColorLevelEncoder":
		return zapcore.CapitalColorLevelEncoder
	default:
		return zapcore.LowercaseLevelEncoder
	}
}

// applyDefaults fills empty keys and limits. Booleans are left as given.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	setDefault(&c.MessageKey, d.MessageKey)
	setDefault(&c.LevelKey, d.LevelKey)
	setDefault(&c.TimeKey, d.TimeKey)
	setDefault(&c.NameKey, d.NameKey)
	setDefault(&c.CallerKey, d.CallerKey)
	setDefault(&c.StacktraceKey, d.StacktraceKey)
	setDefault(&c.TimeFormat, d.TimeFormat)
	setDefault(&c.Format, d.Format)
	setDefault(&c.MaxAge, d.MaxAge)
	setDefault(&c.MaxSize, d.MaxSize)
	setDefault(&c.MaxBackups, d.MaxBackups)
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}
