package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CusTimeEncoder creates a custom time encoder that adds the prefix and formats the time.
func CusTimeEncoder(config Config) zapcore.TimeEncoder {
	return func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(config.Prefix + t.Format(config.TimeFormat))
	}
}

// GetEncoder returns a zapcore.Encoder based on the config format.
func GetEncoder(config Config) zapcore.Encoder {
	encoderConfig := getEncoderConfig(config)
	if config.Format == "json" {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func getEncoderConfig(config Config) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     config.MessageKey,
		LevelKey:       config.LevelKey,
		TimeKey:        config.TimeKey,
		NameKey:        config.NameKey,
		CallerKey:      config.CallerKey,
		StacktraceKey:  config.StacktraceKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    config.ZapEncodeLevel(),
		EncodeTime:     CusTimeEncoder(config),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

// fileEncoder never colors levels; escape codes do not belong in files.
func fileEncoder(config Config) zapcore.Encoder {
	switch config.EncodeLevel {
	case "CapitalColorLevelEncoder":
		config.EncodeLevel = "CapitalLevelEncoder"
	case "LowercaseColorLevelEncoder":
		config.EncodeLevel = "LowercaseLevelEncoder"
	}
	return GetEncoder(config)
}

// getLevelPriority returns a LevelEnabler that only enables the exact level.
func getLevelPriority(level zapcore.Level) zap.LevelEnablerFunc {
	return func(l zapcore.Level) bool {
		return l == level
	}
}

// getZapCores returns one terminal core for every level >= config.Level and,
// when a director is set, one rotated file core per level.
func getZapCores(config Config) []zapcore.Core {
	minLevel := config.TransportLevel()
	cores := make([]zapcore.Core, 0, 8)

	if config.LogInTerminal {
		cores = append(cores, zapcore.NewCore(GetEncoder(config), zapcore.Lock(zapcore.AddSync(terminal)), minLevel))
	}
	if config.Director != "" {
		for level := minLevel; level <= zapcore.FatalLevel; level++ {
			writer := getWriteSyncerWithRegistry(config, level.String())
			cores = append(cores, zapcore.NewCore(fileEncoder(config), writer, getLevelPriority(level)))
		}
	}
	return cores
}
