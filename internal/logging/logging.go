package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var cfg = zap.Config{
	Level:    zap.NewAtomicLevelAt(defaultLevel()),
	Encoding: "console",
	EncoderConfig: zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	},
	OutputPaths:      []string{"stdout"},
	ErrorOutputPaths: []string{"stdout"},
}

// defaultLevel reads LOG_LEVEL before any config struct is parsed so that
// startup validation itself is logged at the requested level.
func defaultLevel() zapcore.Level {
	v, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		return zap.InfoLevel
	}
	var l zapcore.Level
	if err := l.Set(v); err != nil {
		return zap.InfoLevel
	}
	return l
}

// New returns a named sugared logger. One per package.
func New(name string) *zap.SugaredLogger {
	return zap.Must(cfg.Build(zap.AddStacktrace(zapcore.PanicLevel))).Named(name).Sugar()
}
