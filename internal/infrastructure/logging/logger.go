package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the runtime's zap logger with session and component children
type Logger struct {
	*zap.Logger
}

// Config selects level and encoding for the runtime logger
type Config struct {
	Level       string // "debug", "info", "warn", "error"
	Development bool
	// Output receives log lines; nil means stderr so stdout stays free
	// for CLI output such as rendered trees.
	Output io.Writer
}

// New builds a logger writing JSON in production and colored console
// lines in development.
func New(cfg Config) (*Logger, error) {
	level, err := zapcore.ParseLevel(levelOrDefault(cfg.Level))
	if err != nil {
		return nil, err
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	var enc zapcore.Encoder
	if cfg.Development {
		enc = zapcore.NewConsoleEncoder(encoderConfig(true))
	} else {
		enc = zapcore.NewJSONEncoder(encoderConfig(false))
	}
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(out)), level)

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Development {
		opts = append(opts, zap.Development())
	} else {
		opts = append(opts, zap.Fields(zap.String("service", "runtime")))
	}
	return &Logger{Logger: zap.New(core, opts...)}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// ForSession returns a child logger tagged with a session id.
func (l *Logger) ForSession(sessionID string) *zap.Logger {
	return l.Named("session").With(zap.String("session_id", sessionID))
}

// ForComponent returns a named child logger for one runtime component.
func (l *Logger) ForComponent(name string) *zap.Logger {
	return l.Named(name).With(zap.String("component", name))
}

func levelOrDefault(level string) string {
	if level == "" {
		return "info"
	}
	return level
}

func encoderConfig(development bool) zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.MessageKey = "message"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.MillisDurationEncoder
	if development {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.EncodeDuration = zapcore.StringDurationEncoder
	}
	return ec
}

// IsProduction reports whether ENV names a production deployment.
func IsProduction() bool {
	switch os.Getenv("ENV") {
	case "production", "prod":
		return true
	}
	return false
}
