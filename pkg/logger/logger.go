package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/folio/pkg/config"
)

// Logger is a structured logger wrapper around zerolog.
// Every folio layer logs through a Component child (engine, valuation, yahoo,
// price_cache, scheduler, price_sync) carrying the request_id of the computation.
// ⭐ SSOT: 모든 로깅은 이 패키지를 통해서만 수행
type Logger struct {
	base      zerolog.Logger // fields without the component tag
	component string
	zlog      zerolog.Logger // base + component
}

func wrap(base zerolog.Logger, component string) *Logger {
	zlog := base
	if component != "" {
		zlog = base.With().Str("component", component).Logger()
	}
	return &Logger{base: base, component: component, zlog: zlog}
}

// New creates a Logger from config, writing to stdout.
// LOG_FORMAT=console|pretty switches to the human readable writer used by the CLI.
// ⭐ SSOT: zerolog 인스턴스는 여기서만 생성
func New(cfg *config.Config) *Logger {
	var output io.Writer = os.Stdout
	if cfg.LogFormat == "console" || cfg.LogFormat == "pretty" {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}
	return NewWithWriter(cfg, output)
}

// NewWithWriter creates a Logger writing JSON lines to w
// 테스트에서 출력 캡처용
func NewWithWriter(cfg *config.Config, w io.Writer) *Logger {
	base := zerolog.New(w).
		Level(parseLogLevel(cfg.LogLevel)).
		With().
		Timestamp().
		Str("env", cfg.Env).
		Logger()

	return wrap(base, "")
}

// Nop returns a logger that discards everything (library callers, tests)
func Nop() *Logger {
	return wrap(zerolog.Nop(), "")
}

// parseLogLevel converts string log level to zerolog.Level
func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.zlog.Debug().Msg(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.zlog.Info().Msg(msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.zlog.Warn().Msg(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string) {
	l.zlog.Error().Msg(msg)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.zlog.Info().Msgf(format, args...)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.zlog.Warn().Msgf(format, args...)
}

// Component returns a child logger tagged component=name.
// The tag replaces the parent's, so a request logger handed from the engine
// to the valuation builder carries exactly one component.
func (l *Logger) Component(name string) *Logger {
	return wrap(l.base, name)
}

// Request tags every entry with the computation's request id
func (l *Logger) Request(id string) *Logger {
	return l.WithField("request_id", id)
}

// WithField returns a new logger with an additional field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return wrap(l.base.With().Interface(key, value).Logger(), l.component)
}

// WithFields returns a new logger with multiple fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.base.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return wrap(ctx.Logger(), l.component)
}

// WithError returns a new logger with an error field
func (l *Logger) WithError(err error) *Logger {
	return wrap(l.base.With().Err(err).Logger(), l.component)
}
