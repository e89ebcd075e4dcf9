package logging

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type settings struct {
	level  zapcore.Level
	dev    bool
	fields []zap.Field
	out    io.Writer
}

// Option configures New.
type Option func(*settings)

// WithLevel sets the minimum level by name; see ParseLevel.
func WithLevel(name string) Option {
	return func(s *settings) {
		s.level = ParseLevel(name)
	}
}

// WithDevelopment switches to zap's development behaviour: caller
// annotations, stack traces on warnings and panics on DPanic.
func WithDevelopment(dev bool) Option {
	return func(s *settings) {
		s.dev = dev
	}
}

// WithFields attaches fields to every log line. Empty keys are skipped.
func WithFields(fields map[string]any) Option {
	return func(s *settings) {
		for key, value := range fields {
			if key == "" {
				continue
			}
			s.fields = append(s.fields, zap.Any(key, value))
		}
	}
}

// WithOutput redirects log lines, stderr by default.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.out = w
		}
	}
}

// New builds a console-encoded logger.
func New(opts ...Option) *zap.Logger {
	s := settings{level: zapcore.InfoLevel, out: os.Stderr}
	for _, opt := range opts {
		opt(&s)
	}

	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	if s.dev {
		enc = zap.NewDevelopmentEncoderConfig()
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(s.out), zap.NewAtomicLevelAt(s.level))
	zopts := []zap.Option{zap.Fields(s.fields...)}
	if s.dev {
		zopts = append(zopts, zap.Development(), zap.AddCaller(), zap.AddStacktrace(zapcore.WarnLevel))
	}
	return zap.New(core, zopts...)
}

// ParseLevel maps a level name to a zap level. Unknown names yield info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
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
		return zapcore.InfoLevel
	}
}
