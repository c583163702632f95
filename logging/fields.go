package logging

import (
	"time"

	"go.uber.org/zap"
)

// Field helpers shared by the pipeline and the CLI, so every entry spells keys the same way.

func File(path string) zap.Field { return zap.String("file", path) }

func Name(name string) zap.Field { return zap.String("name", name) }

func Modality(m string) zap.Field { return zap.String("modality", m) }

func Outcome(o string) zap.Field { return zap.String("outcome", o) }

func Count(key string, n int) zap.Field { return zap.Int(key, n) }

func Elapsed(d time.Duration) zap.Field { return zap.Duration("elapsed", d) }
